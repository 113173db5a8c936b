package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.LotConsumptionRepository = (*LotConsumptionRepo)(nil)
var _ repository.InventoryLedgerRepository = (*InventoryLedgerRepo)(nil)

// LotConsumptionRepo implementación sobre PostgreSQL (usable con pool o tx).
type LotConsumptionRepo struct {
	q Querier
}

// NewLotConsumptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotConsumptionRepository(q Querier) *LotConsumptionRepo {
	return &LotConsumptionRepo{q: q}
}

// Create persiste un evento de consumo (append-only).
func (r *LotConsumptionRepo) Create(event *entity.LotConsumptionEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lot_consumption_events (id, organization_id, service_event_id, recipe_line_id, lot_id, grams_consumed, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.OrganizationID, event.ServiceEventID, event.RecipeLineID,
		event.LotID, event.GramsConsumed, event.CreatedAt, event.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create consumption event: %w", err)
	}
	return nil
}

// ListByServiceEvent lista los consumos de un evento de servicio.
func (r *LotConsumptionRepo) ListByServiceEvent(serviceEventID string) ([]*entity.LotConsumptionEvent, error) {
	query := `
		SELECT id, organization_id, service_event_id, recipe_line_id, lot_id, grams_consumed, created_at, created_by
		FROM lot_consumption_events
		WHERE service_event_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, serviceEventID)
	if err != nil {
		return nil, fmt.Errorf("list consumption events: %w", err)
	}
	defer rows.Close()
	var list []*entity.LotConsumptionEvent
	for rows.Next() {
		var e entity.LotConsumptionEvent
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.ServiceEventID, &e.RecipeLineID,
			&e.LotID, &e.GramsConsumed, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan consumption event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// InventoryLedgerRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryLedgerRepo struct {
	q Querier
}

// NewInventoryLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLedgerRepository(q Querier) *InventoryLedgerRepo {
	return &InventoryLedgerRepo{q: q}
}

// Append persiste un asiento de ledger (append-only, delta firmado).
func (r *InventoryLedgerRepo) Append(entry *entity.InventoryLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_ledger (id, organization_id, lot_id, delta, reason, ref_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.OrganizationID, entry.LotID, entry.Delta,
		entry.Reason, entry.RefID, entry.CreatedAt, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByLot lista los asientos de un lote en orden de creación.
func (r *InventoryLedgerRepo) ListByLot(lotID string) ([]*entity.InventoryLedgerEntry, error) {
	query := `
		SELECT id, organization_id, lot_id, delta, reason, COALESCE(ref_id, ''), created_at, created_by
		FROM inventory_ledger
		WHERE lot_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLedgerEntry
	for rows.Next() {
		var e entity.InventoryLedgerEntry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.LotID, &e.Delta,
			&e.Reason, &e.RefID, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
