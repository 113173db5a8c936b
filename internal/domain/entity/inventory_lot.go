package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLot es una recepción de stock físico de un producto.
// QuantityAvailable solo decrece, y únicamente dentro de una transacción de
// finalización que también escribe el asiento de ledger y el evento de
// consumo correspondientes.
type InventoryLot struct {
	ID                string
	OrganizationID    string
	ProductID         string
	LotCode           string
	ReceivedAt        time.Time
	ExpiresAt         *time.Time // nil = sin fecha de vencimiento (va al final del FIFO)
	QuantityReceived  decimal.Decimal
	QuantityAvailable decimal.Decimal
	SourceOrderRef    string
	CreatedAt         time.Time
}

// LotConsumptionEvent es un hecho append-only: qué línea de receta consumió
// cuántos gramos de qué lote, para qué evento de servicio. Inmutable.
type LotConsumptionEvent struct {
	ID             string
	OrganizationID string
	ServiceEventID string
	RecipeLineID   string
	LotID          string
	GramsConsumed  decimal.Decimal
	CreatedAt      time.Time
	CreatedBy      string
}

// Razones de asiento en el ledger de inventario.
const (
	LedgerReasonConsumption = "MEAL_SERVICE_CONSUMPTION"
)

// InventoryLedgerEntry es un delta firmado append-only sobre un lote
// (negativo para consumos), para auditoría completa de cambios de cantidad.
type InventoryLedgerEntry struct {
	ID             string
	OrganizationID string
	LotID          string
	Delta          decimal.Decimal
	Reason         string
	RefID          string // id del evento de consumo que originó el delta
	CreatedAt      time.Time
	CreatedBy      string
}
