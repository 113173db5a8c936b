package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.MealServiceEventRepository = (*MealServiceEventRepo)(nil)

// MealServiceEventRepo implementación sobre PostgreSQL (usable con pool o tx).
type MealServiceEventRepo struct {
	q Querier
}

// NewMealServiceEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMealServiceEventRepository(q Querier) *MealServiceEventRepo {
	return &MealServiceEventRepo{q: q}
}

// Create persiste el evento de servicio. El constraint único sobre
// schedule_id hace atómicos el chequeo de existencia y el insert: una
// violación 23505 se traduce a domain.ErrDuplicate para que el caller
// re-lea y devuelva los ids existentes.
func (r *MealServiceEventRepo) Create(event *entity.MealServiceEvent) error {
	query := `
		INSERT INTO meal_service_events (id, organization_id, schedule_id, client_id, sku_id, served_at, served_by, label_snapshot_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.OrganizationID, event.ScheduleID, event.ClientID,
		event.SKUID, event.ServedAt, event.ServedBy, event.LabelSnapshotID, event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service event schedule %s: %w", event.ScheduleID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create service event: %w", err)
	}
	return nil
}

// GetByScheduleID obtiene el evento de una programación, o nil si no existe.
func (r *MealServiceEventRepo) GetByScheduleID(scheduleID string) (*entity.MealServiceEvent, error) {
	query := `
		SELECT id, organization_id, schedule_id, client_id, sku_id, served_at, served_by, label_snapshot_id, created_at
		FROM meal_service_events WHERE schedule_id = $1`
	var e entity.MealServiceEvent
	err := r.q.QueryRow(context.Background(), query, scheduleID).Scan(
		&e.ID, &e.OrganizationID, &e.ScheduleID, &e.ClientID,
		&e.SKUID, &e.ServedAt, &e.ServedBy, &e.LabelSnapshotID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service event: %w", err)
	}
	return &e, nil
}

// SetLabelSnapshotID estampa la etiqueta SKU final en el evento.
func (r *MealServiceEventRepo) SetLabelSnapshotID(eventID, labelSnapshotID string) error {
	query := `UPDATE meal_service_events SET label_snapshot_id = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, eventID, labelSnapshotID)
	if err != nil {
		return fmt.Errorf("set label snapshot id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set label snapshot id: evento %s no encontrado", eventID)
	}
	return nil
}
