package nutrition

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
)

var _ mealservice.NutritionComputation = (*FDACalculator)(nil)

// FDACalculator implementa el cómputo nutricional de etiquetas: agregación
// ponderada de perfiles por-100g, redondeo de display según las reglas de
// 21 CFR 101.9 y validación de plausibilidad fisiológica. Todo el cómputo
// es puro y síncrono: sin I/O de red, invocable dentro de una transacción.
type FDACalculator struct {
	collator *collate.Collator
}

// NewFDACalculator construye el calculador.
func NewFDACalculator() *FDACalculator {
	return &FDACalculator{collator: collate.New(language.Spanish)}
}

// ComputeLabel produce el payload de la etiqueta SKU a partir de los lotes
// consumidos: totales y por-porción, valores redondeados de display y
// declaraciones de ingredientes (orden descendente por peso) y alérgenos.
func (c *FDACalculator) ComputeLabel(recipe *entity.Recipe, consumed []*mealservice.ConsumedLot, servings int, summary label.Summary) (*label.SKUPayload, error) {
	if servings <= 0 {
		return nil, fmt.Errorf("servings inválido: %d", servings)
	}

	totals := map[string]float64{}
	for _, lot := range consumed {
		g, _ := lot.Grams.Float64()
		factor := g / 100.0
		for _, row := range lot.Evidence {
			if row.ValuePer100g == nil {
				continue
			}
			totals[row.NutrientKey] += *row.ValuePer100g * factor
		}
	}
	per := map[string]float64{}
	for k, v := range totals {
		per[k] = v / float64(servings)
	}

	payload := &label.SKUPayload{
		SKUID:           recipe.SKUID,
		SKUName:         recipe.SKUName,
		Servings:        servings,
		PerServing:      per,
		Totals:          totals,
		RoundedFDA:      c.roundForDisplay(per, servings),
		IngredientDecl:  c.ingredientDeclaration(consumed),
		AllergenDecl:    c.allergenDeclaration(consumed),
		EvidenceSummary: summary,
	}
	return payload, nil
}

// ingredientDeclaration lista los ingredientes en orden descendente por
// gramos consumidos, con desempate por nombre colado. Es el orden de
// predominancia en peso que exige la declaración de ingredientes.
func (c *FDACalculator) ingredientDeclaration(consumed []*mealservice.ConsumedLot) []string {
	type entry struct {
		name  string
		grams float64
	}
	byID := map[string]*entry{}
	var order []*entry
	for _, lot := range consumed {
		e, ok := byID[lot.Ingredient.ID]
		if !ok {
			e = &entry{name: lot.Ingredient.Name}
			byID[lot.Ingredient.ID] = e
			order = append(order, e)
		}
		g, _ := lot.Grams.Float64()
		e.grams += g
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].grams != order[j].grams {
			return order[i].grams > order[j].grams
		}
		return c.collator.CompareString(order[i].name, order[j].name) < 0
	})
	decl := make([]string, 0, len(order))
	for _, e := range order {
		decl = append(decl, e.name)
	}
	return decl
}

// allergenDeclaration unifica los tags de alérgenos de todos los productos
// consumidos, ordenados con colación para salida estable.
func (c *FDACalculator) allergenDeclaration(consumed []*mealservice.ConsumedLot) []string {
	seen := map[string]bool{}
	var decl []string
	for _, lot := range consumed {
		for _, tag := range lot.Product.AllergenTags {
			if !seen[tag] {
				seen[tag] = true
				decl = append(decl, tag)
			}
		}
	}
	sort.SliceStable(decl, func(i, j int) bool {
		return c.collator.CompareString(decl[i], decl[j]) < 0
	})
	return decl
}

// ── Redondeo FDA ──────────────────────────────────────────────────────────────

// roundForDisplay aplica las reglas de redondeo de 21 CFR 101.9 a los
// valores por porción. Los valores crudos quedan intactos en PerServing;
// solo el display se redondea.
func (c *FDACalculator) roundForDisplay(per map[string]float64, servings int) label.RoundedFDA {
	return label.RoundedFDA{
		Calories:      RoundCalories(per[entity.NutrientEnergyKcal]),
		TotalFatG:     RoundFatGrams(per[entity.NutrientFatG]),
		SodiumMg:      RoundSodiumMg(per[entity.NutrientSodiumMg]),
		TotalCarbG:    RoundMacroGrams(per[entity.NutrientCarbohydrateG]),
		ProteinG:      RoundMacroGrams(per[entity.NutrientProteinG]),
		ServingsLabel: fmt.Sprintf("%d porciones", servings),
	}
}

// RoundCalories redondea calorías: <5 → 0; ≤50 → múltiplo de 5 más
// cercano; >50 → múltiplo de 10 más cercano.
func RoundCalories(kcal float64) string {
	switch {
	case kcal < 5:
		return "0"
	case kcal <= 50:
		return fmt.Sprintf("%d", int(roundToNearest(kcal, 5)))
	default:
		return fmt.Sprintf("%d", int(roundToNearest(kcal, 10)))
	}
}

// RoundFatGrams redondea grasa total: <0.5g → 0; <5g → múltiplo de 0.5g;
// ≥5g → gramo entero más cercano.
func RoundFatGrams(g float64) string {
	switch {
	case g < 0.5:
		return "0"
	case g < 5:
		return trimFloat(roundToNearest(g, 0.5))
	default:
		return fmt.Sprintf("%d", int(roundToNearest(g, 1)))
	}
}

// RoundSodiumMg redondea sodio: <5mg → 0; ≤140mg → múltiplo de 5mg;
// >140mg → múltiplo de 10mg.
func RoundSodiumMg(mg float64) string {
	switch {
	case mg < 5:
		return "0"
	case mg <= 140:
		return fmt.Sprintf("%d", int(roundToNearest(mg, 5)))
	default:
		return fmt.Sprintf("%d", int(roundToNearest(mg, 10)))
	}
}

// RoundMacroGrams redondea carbohidratos y proteína: <0.5g → 0;
// <1g → "<1"; ≥1g → gramo entero más cercano.
func RoundMacroGrams(g float64) string {
	switch {
	case g < 0.5:
		return "0"
	case g < 1:
		return "<1"
	default:
		return fmt.Sprintf("%d", int(roundToNearest(g, 1)))
	}
}

func roundToNearest(v, step float64) float64 {
	return math.Round(v/step) * step
}

// trimFloat formatea sin ceros de cola (2.5 → "2.5", 3.0 → "3").
func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
