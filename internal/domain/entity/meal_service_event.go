package entity

import "time"

// MealServiceEvent registra que una programación fue efectivamente servida.
// A lo sumo existe uno por programación (constraint único en schedule_id:
// ese constraint es el mecanismo de idempotencia de finalize).
type MealServiceEvent struct {
	ID              string
	OrganizationID  string
	ScheduleID      string
	ClientID        string
	SKUID           string
	ServedAt        time.Time
	ServedBy        string
	LabelSnapshotID *string // se estampa al final de la finalización
	CreatedAt       time.Time
}
