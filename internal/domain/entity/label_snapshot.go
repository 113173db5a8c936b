package entity

import (
	"encoding/json"
	"time"
)

// Tipos de etiqueta (un snapshot por nivel del árbol de procedencia).
const (
	LabelTypeSKU        = "SKU"
	LabelTypeIngredient = "INGREDIENT"
	LabelTypeProduct    = "PRODUCT"
	LabelTypeLot        = "LOT"
)

// Tipos de arista de linaje (padre → hijo).
const (
	EdgeSKUContainsIngredient       = "SKU_CONTAINS_INGREDIENT"
	EdgeIngredientResolvedToProduct = "INGREDIENT_RESOLVED_TO_PRODUCT"
	EdgeProductConsumedFromLot      = "PRODUCT_CONSUMED_FROM_LOT"
)

// LabelSnapshot es un artefacto inmutable y versionado: la etiqueta
// nutricional de una entidad (SKU/ingrediente/producto/lote) en un instante.
// Las "correcciones" son versiones nuevas; un snapshot nunca se muta.
// Version es estrictamente creciente y sin huecos por
// (organización, tipo, externalRefID), empezando en 1.
type LabelSnapshot struct {
	ID             string
	OrganizationID string
	LabelType      string
	ExternalRefID  string
	Title          string
	Payload        json.RawMessage
	Version        int
	FrozenAt       time.Time
	CreatedBy      string
}

// LabelLineageEdge es una arista dirigida del grafo de procedencia
// (DAG con raíz en la etiqueta SKU). Append-only.
type LabelLineageEdge struct {
	ID             string
	OrganizationID string
	ParentLabelID  string
	ChildLabelID   string
	EdgeType       string
	CreatedAt      time.Time
}
