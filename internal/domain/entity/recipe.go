package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe es la receta activa de un SKU. Inmutable durante una finalización.
type Recipe struct {
	ID             string
	OrganizationID string
	SKUID          string
	SKUName        string
	Active         bool
	CreatedAt      time.Time
	Lines          []*RecipeLine
}

// RecipeLine es una línea de receta: un ingrediente y sus gramos objetivo
// por porción. LineNo define el orden de procesamiento (determinista).
type RecipeLine struct {
	ID                    string
	RecipeID              string
	LineNo                int
	IngredientID          string
	TargetGramsPerServing decimal.Decimal
}
