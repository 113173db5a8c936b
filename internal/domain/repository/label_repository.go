package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// LabelRepository define el puerto de snapshots de etiqueta y aristas de
// linaje. Snapshots y aristas son inmutables: solo Create/lecturas.
type LabelRepository interface {
	CreateSnapshot(snapshot *entity.LabelSnapshot) error
	GetSnapshotByID(id string) (*entity.LabelSnapshot, error)
	// CountVersions cuenta los snapshots existentes para
	// (organización, tipo, externalRefID). Se invoca dentro de la misma
	// transacción que el Create para que la versión sea sin huecos.
	CountVersions(organizationID, labelType, externalRefID string) (int, error)
	CreateEdge(edge *entity.LabelLineageEdge) error
	ListEdgesByParent(parentLabelID string) ([]*entity.LabelLineageEdge, error)
}
