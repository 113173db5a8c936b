package mealservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
)

// Modos de calidad para la selección de lotes.
type QualityMode int

const (
	// ModeStrict aplica la puerta de calidad completa (operación normal).
	ModeStrict QualityMode = iota
	// ModeRelaxed omite la puerta por completo. Solo para backfills
	// históricos puntuales.
	ModeRelaxed
)

// relaxedModeNote es la nota centinela que cambia la corrida a modo
// relajado. Se compara sin mayúsculas/minúsculas y recortada.
const relaxedModeNote = "allow-unverified-backfill"

// QualityModeFromNotes lee el modo una sola vez al inicio de la corrida;
// aplica uniformemente a todas las líneas de receta.
func QualityModeFromNotes(notes string) QualityMode {
	if strings.EqualFold(strings.TrimSpace(notes), relaxedModeNote) {
		return ModeRelaxed
	}
	return ModeStrict
}

// LotAllocator selecciona y consume parcialmente lotes de inventario en
// orden FIFO (vencimiento más próximo primero) para cubrir los gramos
// requeridos de una línea de receta, aplicando la política de calidad
// activa. Toda mutación pasa por el patrón decremento+ledger+evento.
type LotAllocator struct{}

// NewLotAllocator construye el asignador.
func NewLotAllocator() *LotAllocator { return &LotAllocator{} }

// AllocateInput parámetros de una asignación para una línea de receta.
type AllocateInput struct {
	OrganizationID string
	IngredientID   string
	RequiredGrams  decimal.Decimal
	Mode           QualityMode
	ServiceEventID string
	RecipeLineID   string
	Actor          string
	Now            time.Time
}

// Allocate recorre los lotes disponibles en orden FIFO y consume hasta
// cubrir RequiredGrams. Falla con domain.ErrInsufficientInventory si el
// requerimiento no puede cubrirse, y con domain.ErrQualityGateBlocked
// (solo modo estricto) si existen lotes con cantidad pero ninguno pasa la
// puerta. Debe ejecutarse dentro de la transacción de finalización: los
// decrementos parciales se revierten con ella.
func (a *LotAllocator) Allocate(repos TxRepos, in AllocateInput) ([]*ConsumedLot, error) {
	lots, err := repos.Lots.ListAvailableByIngredient(in.OrganizationID, in.IngredientID)
	if err != nil {
		return nil, err
	}

	remaining := in.RequiredGrams
	var consumed []*ConsumedLot
	gated := 0
	evidenceByProduct := map[string][]*entity.NutrientEvidenceRow{}

	for _, cand := range lots {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		rows, ok := evidenceByProduct[cand.Product.ID]
		if !ok {
			rows, err = repos.Evidence.ListByProduct(cand.Product.ID)
			if err != nil {
				return nil, err
			}
			evidenceByProduct[cand.Product.ID] = rows
		}
		if in.Mode == ModeStrict && !passesQualityGate(cand.Product, rows) {
			gated++
			continue
		}

		use := decimal.Min(remaining, cand.Lot.QuantityAvailable)
		event := &entity.LotConsumptionEvent{
			ID:             uuid.New().String(),
			OrganizationID: in.OrganizationID,
			ServiceEventID: in.ServiceEventID,
			RecipeLineID:   in.RecipeLineID,
			LotID:          cand.Lot.ID,
			GramsConsumed:  use,
			CreatedAt:      in.Now,
			CreatedBy:      in.Actor,
		}
		if err := repos.Consumptions.Create(event); err != nil {
			return nil, err
		}
		if err := repos.Lots.DecrementAvailable(cand.Lot.ID, use); err != nil {
			return nil, err
		}
		entry := &entity.InventoryLedgerEntry{
			ID:             uuid.New().String(),
			OrganizationID: in.OrganizationID,
			LotID:          cand.Lot.ID,
			Delta:          use.Neg(),
			Reason:         entity.LedgerReasonConsumption,
			RefID:          event.ID,
			CreatedAt:      in.Now,
			CreatedBy:      in.Actor,
		}
		if err := repos.Ledger.Append(entry); err != nil {
			return nil, err
		}

		consumed = append(consumed, &ConsumedLot{
			Lot:          cand.Lot,
			Product:      cand.Product,
			Ingredient:   cand.Ingredient,
			RecipeLineID: in.RecipeLineID,
			Grams:        use,
			Evidence:     rows,
		})
		remaining = remaining.Sub(use)
	}

	if remaining.GreaterThan(decimal.Zero) {
		name := in.IngredientID
		if len(lots) > 0 {
			name = lots[0].Ingredient.Name
		}
		// Distinguir "no hay stock" de "hay stock sin verificar": el
		// operador necesita saber si debe comprar o verificar.
		if len(consumed) == 0 && gated > 0 {
			return nil, fmt.Errorf("ingrediente %s: %w", name, domain.ErrQualityGateBlocked)
		}
		return nil, fmt.Errorf("ingrediente %s: faltan %s g: %w", name, remaining.String(), domain.ErrInsufficientInventory)
	}
	return consumed, nil
}

// passesQualityGate aplica la puerta estricta: el lote se rechaza si
// (a) falta alguno de los cinco nutrientes núcleo con valor no nulo,
// (b) el producto es sintético, o (c) alguna fila arrastra excepción
// histórica.
func passesQualityGate(product *entity.Product, rows []*entity.NutrientEvidenceRow) bool {
	if product.IsSynthetic() {
		return false
	}
	covered := map[string]bool{}
	for _, row := range rows {
		if row.IsException() {
			return false
		}
		if row.ValuePer100g != nil {
			covered[row.NutrientKey] = true
		}
	}
	for _, key := range entity.CoreNutrients {
		if !covered[key] {
			return false
		}
	}
	return true
}
