package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.InventoryLotRepository = (*InventoryLotRepo)(nil)

// InventoryLotRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryLotRepo struct {
	q Querier
}

// NewInventoryLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLotRepository(q Querier) *InventoryLotRepo {
	return &InventoryLotRepo{q: q}
}

// ListAvailableByIngredient lista los lotes disponibles del ingrediente en
// orden FIFO (vencimiento ascendente con nulos al final, luego recepción
// ascendente), bloqueando las filas de lote (FOR UPDATE OF l) para la
// transacción de finalización.
func (r *InventoryLotRepo) ListAvailableByIngredient(organizationID, ingredientID string) ([]*repository.AvailableLot, error) {
	query := `
		SELECT l.id, l.organization_id, l.product_id, l.lot_code, l.received_at,
		       l.expires_at, l.quantity_received, l.quantity_available,
		       COALESCE(l.source_order_ref, ''), l.created_at,
		       p.id, p.organization_id, p.ingredient_id, p.name, COALESCE(p.brand, ''),
		       COALESCE(p.vendor, ''), COALESCE(p.upc, ''), COALESCE(p.allergen_tags, '{}'),
		       p.created_at,
		       i.id, i.organization_id, i.name, i.created_at
		FROM inventory_lots l
		JOIN products p ON p.id = l.product_id
		JOIN ingredients i ON i.id = p.ingredient_id
		WHERE l.organization_id = $1 AND p.ingredient_id = $2 AND l.quantity_available > 0
		ORDER BY l.expires_at ASC NULLS LAST, l.received_at ASC
		FOR UPDATE OF l`
	rows, err := r.q.Query(context.Background(), query, organizationID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}
	defer rows.Close()

	var list []*repository.AvailableLot
	for rows.Next() {
		var lot entity.InventoryLot
		var product entity.Product
		var ingredient entity.Ingredient
		if err := rows.Scan(
			&lot.ID, &lot.OrganizationID, &lot.ProductID, &lot.LotCode, &lot.ReceivedAt,
			&lot.ExpiresAt, &lot.QuantityReceived, &lot.QuantityAvailable,
			&lot.SourceOrderRef, &lot.CreatedAt,
			&product.ID, &product.OrganizationID, &product.IngredientID, &product.Name, &product.Brand,
			&product.Vendor, &product.UPC, &product.AllergenTags,
			&product.CreatedAt,
			&ingredient.ID, &ingredient.OrganizationID, &ingredient.Name, &ingredient.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan available lot: %w", err)
		}
		list = append(list, &repository.AvailableLot{Lot: &lot, Product: &product, Ingredient: &ingredient})
	}
	return list, rows.Err()
}

// DecrementAvailable resta grams de quantity_available con update
// condicional: la cláusula quantity_available >= grams garantiza que dos
// asignaciones compitiendo por el mismo lote nunca lo dejen en negativo.
// Devuelve domain.ErrConflict si la fila no se afectó.
func (r *InventoryLotRepo) DecrementAvailable(lotID string, grams decimal.Decimal) error {
	query := `
		UPDATE inventory_lots
		SET quantity_available = quantity_available - $2
		WHERE id = $1 AND quantity_available >= $2`
	tag, err := r.q.Exec(context.Background(), query, lotID, grams)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrement lot %s: %w", lotID, domain.ErrConflict)
	}
	return nil
}
