package nutrition

import (
	"fmt"
	"math"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
)

// IDs de reglas de plausibilidad.
const (
	RuleNegativeValue     = "NEGATIVE_VALUE"
	RuleKcalMacroMismatch = "KCAL_MACRO_MISMATCH"
	RuleRangeExceeded     = "RANGE_EXCEEDED"
)

// Factores Atwater (kcal por gramo de macro).
const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarb    = 4.0
	kcalPerGramFat     = 9.0
)

// Tolerancia del cruce macro↔caloría: el mayor entre 15% del valor
// esperado y 10 kcal absolutas, para no castigar porciones pequeñas.
const (
	kcalTolerancePct = 0.15
	kcalToleranceAbs = 10.0
)

// rangeRule define un techo fisiológico por porción para un nutriente.
type rangeRule struct {
	max      float64
	severity string
}

// Techos por porción. Superar el techo WARNING sugiere revisar la fuente;
// son valores posibles pero atípicos para una porción de comida servida.
var rangeRules = map[string]rangeRule{
	entity.NutrientEnergyKcal:    {max: 2000, severity: label.SeverityWarning},
	entity.NutrientSodiumMg:      {max: 4000, severity: label.SeverityWarning},
	entity.NutrientProteinG:      {max: 250, severity: label.SeverityWarning},
	entity.NutrientCarbohydrateG: {max: 500, severity: label.SeverityWarning},
	entity.NutrientFatG:          {max: 250, severity: label.SeverityWarning},
}

// ValidatePlausibility revisa los valores por porción contra reglas
// fisiológicas. Un ERROR no aborta la finalización: la etiqueta se emite
// provisional y el caller abre una tarea de revisión.
func (c *FDACalculator) ValidatePlausibility(perServing map[string]float64) []label.Issue {
	var issues []label.Issue

	// Valores negativos: imposibles físicamente, siempre ERROR.
	for _, key := range entity.CoreNutrients {
		v, ok := perServing[key]
		if !ok {
			continue
		}
		if v < 0 {
			zero := 0.0
			issues = append(issues, label.Issue{
				NutrientKey:  key,
				Observed:     v,
				RuleID:       RuleNegativeValue,
				Severity:     label.SeverityError,
				Message:      fmt.Sprintf("valor negativo para %s: %.2f", key, v),
				SuggestedMin: &zero,
			})
		}
	}

	// Cruce macro↔caloría: las calorías declaradas deben explicarse por
	// los macros declarados dentro de la tolerancia.
	if issue, ok := c.checkKcalMacro(perServing); ok {
		issues = append(issues, issue)
	}

	// Techos por porción.
	for _, key := range entity.CoreNutrients {
		v, ok := perServing[key]
		if !ok {
			continue
		}
		rule, hasRule := rangeRules[key]
		if hasRule && v > rule.max {
			maxCopy := rule.max
			issues = append(issues, label.Issue{
				NutrientKey:  key,
				Observed:     v,
				RuleID:       RuleRangeExceeded,
				Severity:     rule.severity,
				Message:      fmt.Sprintf("%s por porción (%.1f) supera el techo %.0f", key, v, rule.max),
				SuggestedMax: &maxCopy,
			})
		}
	}
	return issues
}

// checkKcalMacro cruza calorías declaradas contra 4p+4c+9f. Por encima de
// la tolerancia el hallazgo es ERROR; entre media tolerancia y la tolerancia
// completa es WARNING (dentro de lo aceptable, pero vale revisar la fuente).
func (c *FDACalculator) checkKcalMacro(perServing map[string]float64) (label.Issue, bool) {
	kcal, hasKcal := perServing[entity.NutrientEnergyKcal]
	protein, hasProtein := perServing[entity.NutrientProteinG]
	carb, hasCarb := perServing[entity.NutrientCarbohydrateG]
	fat, hasFat := perServing[entity.NutrientFatG]
	if !hasKcal || !hasProtein || !hasCarb || !hasFat {
		return label.Issue{}, false
	}

	expected := protein*kcalPerGramProtein + carb*kcalPerGramCarb + fat*kcalPerGramFat
	tolerance := math.Max(expected*kcalTolerancePct, kcalToleranceAbs)
	deviation := math.Abs(kcal - expected)
	if deviation <= tolerance/2 {
		return label.Issue{}, false
	}
	severity := label.SeverityWarning
	if deviation > tolerance {
		severity = label.SeverityError
	}

	min := expected - tolerance
	max := expected + tolerance
	return label.Issue{
		NutrientKey:  entity.NutrientEnergyKcal,
		Observed:     kcal,
		RuleID:       RuleKcalMacroMismatch,
		Severity:     severity,
		Message:      fmt.Sprintf("calorías (%.1f) no cuadran con macros (esperado %.1f ± %.1f)", kcal, expected, tolerance),
		SuggestedMin: &min,
		SuggestedMax: &max,
	}, true
}
