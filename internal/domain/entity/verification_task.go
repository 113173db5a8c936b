package entity

import "time"

// Tipos y estados de tareas de verificación humana.
const (
	TaskKindPlausibility = "LABEL_PLAUSIBILITY_REVIEW"
	TaskStatusOpen       = "OPEN"
	TaskStatusResolved   = "RESOLVED"
)

// VerificationTask es una tarea de revisión humana abierta cuando la
// validación de plausibilidad de una etiqueta reporta errores. La etiqueta
// se emite igualmente marcada como provisional.
type VerificationTask struct {
	ID             string
	OrganizationID string
	Kind           string
	RefID          string // id del snapshot/evento que originó la tarea
	Title          string
	Details        string
	Status         string
	CreatedAt      time.Time
	CreatedBy      string
}
