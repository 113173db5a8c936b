package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// NutrientEvidenceRepository define el puerto de lectura de evidencia
// nutricional por producto.
type NutrientEvidenceRepository interface {
	ListByProduct(productID string) ([]*entity.NutrientEvidenceRow, error)
}
