package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación sobre PostgreSQL (usable con pool o tx).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetActiveBySKU devuelve la receta activa del SKU con sus líneas en orden
// de línea, o nil si no hay receta activa.
func (r *RecipeRepo) GetActiveBySKU(organizationID, skuID string) (*entity.Recipe, error) {
	query := `
		SELECT id, organization_id, sku_id, sku_name, active, created_at
		FROM recipes
		WHERE organization_id = $1 AND sku_id = $2 AND active = true
		ORDER BY created_at DESC
		LIMIT 1`
	var rec entity.Recipe
	err := r.q.QueryRow(context.Background(), query, organizationID, skuID).Scan(
		&rec.ID, &rec.OrganizationID, &rec.SKUID, &rec.SKUName, &rec.Active, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active recipe: %w", err)
	}

	linesQuery := `
		SELECT id, recipe_id, line_no, ingredient_id, target_grams_per_serving
		FROM recipe_lines
		WHERE recipe_id = $1
		ORDER BY line_no ASC`
	rows, err := r.q.Query(context.Background(), linesQuery, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.RecipeLine
		if err := rows.Scan(&line.ID, &line.RecipeID, &line.LineNo, &line.IngredientID, &line.TargetGramsPerServing); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		rec.Lines = append(rec.Lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}
