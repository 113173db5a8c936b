package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleAuditor  = "auditor"
)

// User es un operador de la organización.
type User struct {
	ID             string
	OrganizationID string
	Email          string
	PasswordHash   string
	Name           string
	Role           string
	Status         string // active | disabled
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
