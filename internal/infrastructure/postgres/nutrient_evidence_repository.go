package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.NutrientEvidenceRepository = (*NutrientEvidenceRepo)(nil)

// NutrientEvidenceRepo implementación sobre PostgreSQL (usable con pool o tx).
type NutrientEvidenceRepo struct {
	q Querier
}

// NewNutrientEvidenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNutrientEvidenceRepository(q Querier) *NutrientEvidenceRepo {
	return &NutrientEvidenceRepo{q: q}
}

// ListByProduct lista las filas de evidencia nutricional de un producto en
// orden estable por clave de nutriente.
func (r *NutrientEvidenceRepo) ListByProduct(productID string) ([]*entity.NutrientEvidenceRow, error) {
	query := `
		SELECT id, product_id, nutrient_key, value_per_100g, COALESCE(source_type, ''),
		       COALESCE(source_ref, ''), verification, grade, historical_exception,
		       confidence, created_at
		FROM nutrient_evidence
		WHERE product_id = $1
		ORDER BY nutrient_key ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list nutrient evidence: %w", err)
	}
	defer rows.Close()
	var list []*entity.NutrientEvidenceRow
	for rows.Next() {
		var row entity.NutrientEvidenceRow
		if err := rows.Scan(
			&row.ID, &row.ProductID, &row.NutrientKey, &row.ValuePer100g, &row.SourceType,
			&row.SourceRef, &row.Verification, &row.Grade, &row.HistoricalException,
			&row.Confidence, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan nutrient evidence: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}
