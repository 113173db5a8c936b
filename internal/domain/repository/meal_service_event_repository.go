package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// MealServiceEventRepository define el puerto de eventos de servicio.
// Create debe apoyarse en el constraint único por schedule_id y devolver
// domain.ErrDuplicate ante una violación: ese es el mecanismo que hace
// atómicos el "¿ya existe?" y el insert frente a llamadores concurrentes.
type MealServiceEventRepository interface {
	Create(event *entity.MealServiceEvent) error
	GetByScheduleID(scheduleID string) (*entity.MealServiceEvent, error)
	SetLabelSnapshotID(eventID, labelSnapshotID string) error
}
