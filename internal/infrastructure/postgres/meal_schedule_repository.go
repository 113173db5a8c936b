package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.MealScheduleRepository = (*MealScheduleRepo)(nil)

// MealScheduleRepo implementación sobre PostgreSQL (usable con pool o tx).
type MealScheduleRepo struct {
	q Querier
}

// NewMealScheduleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMealScheduleRepository(q Querier) *MealScheduleRepo {
	return &MealScheduleRepo{q: q}
}

// GetByID obtiene una programación por ID, o nil si no existe.
func (r *MealScheduleRepo) GetByID(id string) (*entity.MealSchedule, error) {
	query := `
		SELECT id, organization_id, client_id, sku_id, service_date, slot,
		       planned_servings, status, COALESCE(notes, ''), created_at, updated_at
		FROM meal_schedules WHERE id = $1`
	var s entity.MealSchedule
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.OrganizationID, &s.ClientID, &s.SKUID, &s.ServiceDate, &s.Slot,
		&s.PlannedServings, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get meal schedule: %w", err)
	}
	return &s, nil
}

// UpdateStatus cambia el estado de la programación.
func (r *MealScheduleRepo) UpdateStatus(id, status string) error {
	query := `UPDATE meal_schedules SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update schedule status: programación %s no encontrada", id)
	}
	return nil
}
