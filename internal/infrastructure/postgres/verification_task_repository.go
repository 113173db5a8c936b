package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.VerificationTaskRepository = (*VerificationTaskRepo)(nil)

// VerificationTaskRepo implementación sobre PostgreSQL (usable con pool o tx).
type VerificationTaskRepo struct {
	q Querier
}

// NewVerificationTaskRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVerificationTaskRepository(q Querier) *VerificationTaskRepo {
	return &VerificationTaskRepo{q: q}
}

// OpenTask persiste una tarea de revisión humana.
func (r *VerificationTaskRepo) OpenTask(task *entity.VerificationTask) error {
	query := `
		INSERT INTO verification_tasks (id, organization_id, kind, ref_id, title, details, status, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		task.ID, task.OrganizationID, task.Kind, task.RefID,
		task.Title, task.Details, task.Status, task.CreatedAt, task.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("open verification task: %w", err)
	}
	return nil
}
