package label

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
)

// Severidades de un hallazgo de plausibilidad.
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
)

// Issue es un hallazgo de la validación de plausibilidad fisiológica.
type Issue struct {
	NutrientKey  string   `json:"nutrientKey"`
	Observed     float64  `json:"observed"`
	RuleID       string   `json:"ruleId"`
	Severity     string   `json:"severity"`
	Message      string   `json:"message"`
	SuggestedMin *float64 `json:"suggestedMin,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`
}

// maxPersistedIssues limita los hallazgos embebidos en el payload.
const maxPersistedIssues = 10

// Plausibility es el reporte embebido en el payload SKU.
type Plausibility struct {
	Valid        bool    `json:"valid"`
	ErrorCount   int     `json:"errorCount"`
	WarningCount int     `json:"warningCount"`
	Issues       []Issue `json:"issues"`
}

// NewPlausibility construye el reporte a partir de los hallazgos,
// truncando la lista persistida a maxPersistedIssues.
func NewPlausibility(issues []Issue) Plausibility {
	p := Plausibility{Issues: []Issue{}}
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			p.ErrorCount++
		case SeverityWarning:
			p.WarningCount++
		}
		if len(p.Issues) < maxPersistedIssues {
			p.Issues = append(p.Issues, is)
		}
	}
	p.Valid = p.ErrorCount == 0
	return p
}

// RoundedFDA son los valores de display redondeados según las reglas FDA.
type RoundedFDA struct {
	Calories      string `json:"calories"`
	TotalFatG     string `json:"totalFatG"`
	SodiumMg      string `json:"sodiumMg"`
	TotalCarbG    string `json:"totalCarbG"`
	ProteinG      string `json:"proteinG"`
	ServingsLabel string `json:"servingsLabel"`
}

// SKUPayload es el payload de render de la etiqueta raíz (tipo SKU).
type SKUPayload struct {
	SKUID           string             `json:"skuId"`
	SKUName         string             `json:"skuName"`
	Servings        int                `json:"servings"`
	PerServing      map[string]float64 `json:"perServing"`
	Totals          map[string]float64 `json:"totals"`
	RoundedFDA      RoundedFDA         `json:"roundedFda"`
	IngredientDecl  []string           `json:"ingredientDecl"`
	AllergenDecl    []string           `json:"allergenDecl"`
	ReasonCodes     []string           `json:"reasonCodes"`
	Plausibility    Plausibility       `json:"plausibility"`
	EvidenceSummary Summary            `json:"evidenceSummary"`
}

// IngredientPayload es el payload de un nodo ingrediente.
type IngredientPayload struct {
	IngredientID    string             `json:"ingredientId"`
	Name            string             `json:"name"`
	GramsConsumed   float64            `json:"gramsConsumed"`
	AllergenTags    []string           `json:"allergenTags"`
	PerServing      map[string]float64 `json:"perServing"`
	Totals          map[string]float64 `json:"totals"`
	ReasonCodes     []string           `json:"reasonCodes"`
	EvidenceSummary Summary            `json:"evidenceSummary"`
}

// ProductPayload es el payload de un nodo producto (ingrediente resuelto).
type ProductPayload struct {
	ProductID       string             `json:"productId"`
	IngredientID    string             `json:"ingredientId"`
	Name            string             `json:"name"`
	Brand           string             `json:"brand"`
	Vendor          string             `json:"vendor"`
	UPC             string             `json:"upc"`
	Synthetic       bool               `json:"synthetic"`
	GramsConsumed   float64            `json:"gramsConsumed"`
	PerServing      map[string]float64 `json:"perServing"`
	Totals          map[string]float64 `json:"totals"`
	ReasonCodes     []string           `json:"reasonCodes"`
	EvidenceSummary Summary            `json:"evidenceSummary"`
}

// LotPayload es el payload de un nodo lote.
type LotPayload struct {
	LotID           string             `json:"lotId"`
	ProductID       string             `json:"productId"`
	LotCode         string             `json:"lotCode"`
	ReceivedAt      string             `json:"receivedAt"`
	ExpiresAt       *string            `json:"expiresAt,omitempty"`
	SourceOrderRef  string             `json:"sourceOrderRef,omitempty"`
	GramsConsumed   float64            `json:"gramsConsumed"`
	PerServing      map[string]float64 `json:"perServing"`
	Totals          map[string]float64 `json:"totals"`
	ReasonCodes     []string           `json:"reasonCodes"`
	EvidenceSummary Summary            `json:"evidenceSummary"`
}

// MarshalPayload serializa un payload tipado a JSON en la frontera de
// persistencia. El tipo del snapshot decide la variante.
func MarshalPayload(labelType string, payload any) (json.RawMessage, error) {
	switch labelType {
	case entity.LabelTypeSKU, entity.LabelTypeIngredient, entity.LabelTypeProduct, entity.LabelTypeLot:
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload %s: %w", labelType, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("tipo de etiqueta desconocido: %s", labelType)
	}
}

// payloadEnvelope extrae los campos comunes de cualquier variante de
// payload, para que un lector pueda normalizar sin conocer el tipo.
type payloadEnvelope struct {
	EvidenceSummary Summary `json:"evidenceSummary"`
}

// ExtractSummary lee el resumen de evidencia embebido en un payload
// persistido, sin importar el tipo de etiqueta.
func ExtractSummary(raw json.RawMessage) (Summary, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Summary{}, fmt.Errorf("extract evidence summary: %w", err)
	}
	return env.EvidenceSummary, nil
}
