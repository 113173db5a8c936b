package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
)

// AvailableLot es la fila de trabajo del asignador: el lote junto con el
// producto y el ingrediente que lo resuelven.
type AvailableLot struct {
	Lot        *entity.InventoryLot
	Product    *entity.Product
	Ingredient *entity.Ingredient
}

// InventoryLotRepository define el puerto de lotes de inventario. El motor
// de etiquetas nunca crea ni borra lotes: solo lista disponibles y
// decrementa cantidad con chequeo condicional.
type InventoryLotRepository interface {
	// ListAvailableByIngredient devuelve los lotes con cantidad disponible
	// del ingrediente, bloqueados para update, en orden FIFO: vencimiento
	// ascendente (nulos al final) y luego recepción ascendente.
	ListAvailableByIngredient(organizationID, ingredientID string) ([]*AvailableLot, error)
	// DecrementAvailable resta grams de quantity_available solo si la
	// cantidad alcanza (update condicional). Devuelve domain.ErrConflict
	// si la fila no se afectó: dos asignaciones compitiendo por el mismo
	// lote nunca pueden dejarlo en negativo.
	DecrementAvailable(lotID string, grams decimal.Decimal) error
}
