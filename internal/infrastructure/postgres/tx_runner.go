package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
)

// Ensure TxRunner implements mealservice.TxRunner.
var _ mealservice.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repositorios del motor de
// finalización atados a la tx y hace Commit o Rollback. No hay persistencia
// parcial: todo lo escrito por fn se commitea junto o se revierte junto.
func (r *TxRunner) Run(ctx context.Context, fn func(repos mealservice.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := mealservice.TxRepos{
		Schedules:    NewMealScheduleRepository(tx),
		Recipes:      NewRecipeRepository(tx),
		Lots:         NewInventoryLotRepository(tx),
		Evidence:     NewNutrientEvidenceRepository(tx),
		Consumptions: NewLotConsumptionRepository(tx),
		Ledger:       NewInventoryLedgerRepository(tx),
		Labels:       NewLabelRepository(tx),
		Events:       NewMealServiceEventRepository(tx),
		Tasks:        NewVerificationTaskRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
