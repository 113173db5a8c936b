package mealservice

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
	"github.com/jhoicas/mealtrace-api/pkg/logger"
)

// TreeNode es un nodo del árbol de procedencia reconstruido. Además del
// payload crudo, lleva provisional y evidenceSummary normalizados e
// independientes del tipo de etiqueta, para render uniforme en UI.
type TreeNode struct {
	LabelID         string          `json:"labelId"`
	LabelType       string          `json:"labelType"`
	ExternalRefID   string          `json:"externalRefId"`
	Title           string          `json:"title"`
	Version         int             `json:"version"`
	FrozenAt        string          `json:"frozenAt"`
	EdgeType        string          `json:"edgeType,omitempty"` // arista que lo une a su padre
	Provisional     bool            `json:"provisional"`
	EvidenceSummary label.Summary   `json:"evidenceSummary"`
	Payload         json.RawMessage `json:"payload"`
	Children        []*TreeNode     `json:"children"`
}

// LineageReader reconstruye el árbol de procedencia desde snapshots y
// aristas persistidos. Solo lectura; se invoca fuera de la transacción de
// escritura, contra el grafo ya commiteado.
type LineageReader struct {
	labels repository.LabelRepository
	log    *logger.Logger
}

// NewLineageReader construye el lector.
func NewLineageReader(labels repository.LabelRepository, log *logger.Logger) *LineageReader {
	return &LineageReader{labels: labels, log: log}
}

// BuildTree reconstruye el árbol desde la etiqueta raíz. Devuelve nil si la
// raíz no existe. El recorrido mantiene un set de visitados: el grafo es
// acíclico por construcción, pero el lector no lo asume y no debe entrar en
// bucle con datos malformados. Un nodo revisitado se descarta en silencio
// de los hijos de su segundo padre (se loguea como señal de integridad).
func (r *LineageReader) BuildTree(ctx context.Context, rootLabelID string) (*TreeNode, error) {
	root, err := r.labels.GetSnapshotByID(rootLabelID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	visited := map[string]bool{}
	return r.buildNode(ctx, root, "", visited)
}

func (r *LineageReader) buildNode(ctx context.Context, snapshot *entity.LabelSnapshot, edgeType string, visited map[string]bool) (*TreeNode, error) {
	visited[snapshot.ID] = true

	node := &TreeNode{
		LabelID:       snapshot.ID,
		LabelType:     snapshot.LabelType,
		ExternalRefID: snapshot.ExternalRefID,
		Title:         snapshot.Title,
		Version:       snapshot.Version,
		FrozenAt:      snapshot.FrozenAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		EdgeType:      edgeType,
		Payload:       snapshot.Payload,
		Children:      []*TreeNode{},
	}
	if summary, err := label.ExtractSummary(snapshot.Payload); err == nil {
		node.EvidenceSummary = summary
		node.Provisional = summary.Provisional
	} else {
		r.log.Warn().Err(err).Str("label_id", snapshot.ID).Msg("lineage: payload sin resumen de evidencia")
	}

	edges, err := r.labels.ListEdgesByParent(snapshot.ID)
	if err != nil {
		return nil, err
	}
	for _, edge := range edges {
		if visited[edge.ChildLabelID] {
			// Señal de integridad de datos: el grafo de escritura nunca
			// produce revisitas.
			r.log.Warn().Str("parent_label_id", snapshot.ID).Str("child_label_id", edge.ChildLabelID).
				Msg("lineage: nodo revisitado, descartado del segundo padre")
			continue
		}
		child, err := r.labels.GetSnapshotByID(edge.ChildLabelID)
		if err != nil {
			return nil, err
		}
		if child == nil {
			r.log.Warn().Str("child_label_id", edge.ChildLabelID).Msg("lineage: arista hacia etiqueta inexistente")
			continue
		}
		childNode, err := r.buildNode(ctx, child, edge.EdgeType, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
