package entity

import "time"

// Ingredient es un ingrediente culinario de la organización.
type Ingredient struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}
