package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// LotConsumptionRepository persiste eventos de consumo (append-only).
type LotConsumptionRepository interface {
	Create(event *entity.LotConsumptionEvent) error
	ListByServiceEvent(serviceEventID string) ([]*entity.LotConsumptionEvent, error)
}

// InventoryLedgerRepository persiste asientos del ledger de inventario
// (append-only, delta firmado por lote).
type InventoryLedgerRepository interface {
	Append(entry *entity.InventoryLedgerEntry) error
	ListByLot(lotID string) ([]*entity.InventoryLedgerEntry, error)
}
