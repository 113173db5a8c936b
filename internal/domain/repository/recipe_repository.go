package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// RecipeRepository define el puerto de lectura de recetas.
type RecipeRepository interface {
	// GetActiveBySKU devuelve la receta activa del SKU con sus líneas en
	// orden de línea, o nil si no existe.
	GetActiveBySKU(organizationID, skuID string) (*entity.Recipe, error)
}
