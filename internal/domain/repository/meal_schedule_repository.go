package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// MealScheduleRepository define el puerto de lectura/transición de estado
// sobre programaciones. El motor de etiquetas solo lee y ejecuta el flip de
// estado dentro de la transacción de finalización; el resto pertenece al
// subsistema de scheduling.
type MealScheduleRepository interface {
	GetByID(id string) (*entity.MealSchedule, error)
	UpdateStatus(id, status string) error
}
