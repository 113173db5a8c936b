package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

var _ repository.LabelRepository = (*LabelRepo)(nil)

// LabelRepo implementación sobre PostgreSQL (usable con pool o tx).
// Snapshots y aristas son inmutables: solo INSERT y lecturas.
type LabelRepo struct {
	q Querier
}

// NewLabelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLabelRepository(q Querier) *LabelRepo {
	return &LabelRepo{q: q}
}

// CreateSnapshot persiste un snapshot de etiqueta.
func (r *LabelRepo) CreateSnapshot(snapshot *entity.LabelSnapshot) error {
	query := `
		INSERT INTO label_snapshots (id, organization_id, label_type, external_ref_id, title, payload, version, frozen_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		snapshot.ID, snapshot.OrganizationID, snapshot.LabelType, snapshot.ExternalRefID,
		snapshot.Title, snapshot.Payload, snapshot.Version, snapshot.FrozenAt, snapshot.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create label snapshot: %w", err)
	}
	return nil
}

// GetSnapshotByID obtiene un snapshot por ID, o nil si no existe.
func (r *LabelRepo) GetSnapshotByID(id string) (*entity.LabelSnapshot, error) {
	query := `
		SELECT id, organization_id, label_type, external_ref_id, title, payload, version, frozen_at, created_by
		FROM label_snapshots WHERE id = $1`
	var s entity.LabelSnapshot
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.OrganizationID, &s.LabelType, &s.ExternalRefID,
		&s.Title, &s.Payload, &s.Version, &s.FrozenAt, &s.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get label snapshot: %w", err)
	}
	return &s, nil
}

// CountVersions cuenta snapshots existentes por (organización, tipo, ref).
// Debe invocarse dentro de la misma transacción que CreateSnapshot para que
// la versión resultante sea estrictamente creciente y sin huecos.
func (r *LabelRepo) CountVersions(organizationID, labelType, externalRefID string) (int, error) {
	query := `
		SELECT count(*) FROM label_snapshots
		WHERE organization_id = $1 AND label_type = $2 AND external_ref_id = $3`
	var count int
	err := r.q.QueryRow(context.Background(), query, organizationID, labelType, externalRefID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count label versions: %w", err)
	}
	return count, nil
}

// CreateEdge persiste una arista de linaje.
func (r *LabelRepo) CreateEdge(edge *entity.LabelLineageEdge) error {
	query := `
		INSERT INTO label_lineage_edges (id, organization_id, parent_label_id, child_label_id, edge_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		edge.ID, edge.OrganizationID, edge.ParentLabelID, edge.ChildLabelID, edge.EdgeType, edge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lineage edge: %w", err)
	}
	return nil
}

// ListEdgesByParent lista las aristas salientes de una etiqueta en orden de
// creación (estable para reconstrucción determinista del árbol).
func (r *LabelRepo) ListEdgesByParent(parentLabelID string) ([]*entity.LabelLineageEdge, error) {
	query := `
		SELECT id, organization_id, parent_label_id, child_label_id, edge_type, created_at
		FROM label_lineage_edges
		WHERE parent_label_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, parentLabelID)
	if err != nil {
		return nil, fmt.Errorf("list lineage edges: %w", err)
	}
	defer rows.Close()
	var list []*entity.LabelLineageEdge
	for rows.Next() {
		var e entity.LabelLineageEdge
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.ParentLabelID, &e.ChildLabelID, &e.EdgeType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lineage edge: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
