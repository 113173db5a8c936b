package mealservice

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción. Todo el
// trabajo mutante de una finalización pasa por este conjunto: o se commitea
// completo o se revierte completo. Nunca se abren transacciones anidadas.
type TxRepos struct {
	Schedules    repository.MealScheduleRepository
	Recipes      repository.RecipeRepository
	Lots         repository.InventoryLotRepository
	Evidence     repository.NutrientEvidenceRepository
	Consumptions repository.LotConsumptionRepository
	Ledger       repository.InventoryLedgerRepository
	Labels       repository.LabelRepository
	Events       repository.MealServiceEventRepository
	Tasks        repository.VerificationTaskRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// finalización.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// ConsumedLot es el join efímero construido durante una finalización:
// el evento de consumo con su lote, producto, ingrediente y evidencia.
// Solo existe en memoria mientras dura la finalización.
type ConsumedLot struct {
	Lot          *entity.InventoryLot
	Product      *entity.Product
	Ingredient   *entity.Ingredient
	RecipeLineID string
	Grams        decimal.Decimal
	Evidence     []*entity.NutrientEvidenceRow
}

// NutritionComputation es el colaborador externo de cómputo nutricional:
// funciones puras y síncronas invocadas dentro del alcance de la misma
// transacción (no hacen I/O de red).
type NutritionComputation interface {
	// ComputeLabel produce el payload de la etiqueta SKU: valores por
	// porción y totales estilo FDA, valores redondeados de display y
	// declaraciones de ingredientes/alérgenos.
	ComputeLabel(recipe *entity.Recipe, consumed []*ConsumedLot, servings int, summary label.Summary) (*label.SKUPayload, error)
	// ValidatePlausibility revisa los valores por porción y devuelve
	// hallazgos con severidad ERROR o WARNING. Un ERROR no aborta la
	// transacción: la etiqueta se emite provisional y se abre una tarea.
	ValidatePlausibility(perServing map[string]float64) []label.Issue
}
