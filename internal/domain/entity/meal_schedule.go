package entity

import "time"

// Estados de una programación de servicio de comida.
const (
	ScheduleStatusPlanned = "PLANNED"
	ScheduleStatusDone    = "DONE"
	ScheduleStatusSkipped = "SKIPPED"
)

// MealSchedule representa un servicio de comida planificado: organización,
// cliente, SKU, fecha/franja y porciones. Las notas libres se usan para
// activar el modo relajado de calidad (backfills históricos).
type MealSchedule struct {
	ID              string
	OrganizationID  string
	ClientID        string
	SKUID           string
	ServiceDate     time.Time
	Slot            string // breakfast | lunch | dinner | snack
	PlannedServings int
	Status          string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
