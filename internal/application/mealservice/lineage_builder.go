package mealservice

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
)

// LineageBuilder materializa el árbol de procedencia de una finalización:
// un snapshot SKU raíz, uno por ingrediente distinto, uno por par
// (ingrediente, producto) y uno por lote, más las aristas padre→hijo.
// Cada nodo embebe su propio resumen de evidencia calculado sobre
// exactamente las filas relevantes a ese nodo, no heredado del padre.
type LineageBuilder struct {
	collator *collate.Collator
}

// NewLineageBuilder construye el builder con colación es para ordenar
// nombres de ingrediente de forma determinista.
func NewLineageBuilder() *LineageBuilder {
	return &LineageBuilder{collator: collate.New(language.Spanish)}
}

// BuildInput entrada del builder. SKUPayload llega ya completo desde el
// finalizador (cómputo nutricional + plausibilidad + códigos de razón).
type BuildInput struct {
	OrganizationID string
	SKUID          string
	SKUName        string
	Servings       int
	SKUPayload     *label.SKUPayload
	Consumed       []*ConsumedLot
	FrozenAt       time.Time
	Actor          string
}

// Build crea los snapshots y aristas dentro de la transacción activa y
// devuelve el id del snapshot SKU raíz. Cada nivel del recorrido crea
// hijos estrictamente nuevos, por lo que el grafo es acíclico por
// construcción.
func (b *LineageBuilder) Build(repos TxRepos, in BuildInput) (string, error) {
	skuID, err := b.createSnapshot(repos, in, entity.LabelTypeSKU, in.SKUID, in.SKUName, in.SKUPayload)
	if err != nil {
		return "", err
	}

	for _, ig := range b.groupByIngredient(in.Consumed) {
		igPayload := &label.IngredientPayload{
			IngredientID:    ig.ingredient.ID,
			Name:            ig.ingredient.Name,
			GramsConsumed:   grams(ig.grams),
			AllergenTags:    ig.allergens,
			Totals:          nutrientTotals(ig.lots),
			ReasonCodes:     nil,
			EvidenceSummary: label.Summarize(ig.rows, ig.anySynthetic),
		}
		igPayload.PerServing = perServing(igPayload.Totals, in.Servings)
		igPayload.ReasonCodes = igPayload.EvidenceSummary.ReasonCodes
		igLabelID, err := b.createSnapshot(repos, in, entity.LabelTypeIngredient, ig.ingredient.ID, ig.ingredient.Name, igPayload)
		if err != nil {
			return "", err
		}
		if err := b.createEdge(repos, in, skuID, igLabelID, entity.EdgeSKUContainsIngredient); err != nil {
			return "", err
		}

		for _, pg := range groupByProduct(ig.lots) {
			pPayload := &label.ProductPayload{
				ProductID:       pg.product.ID,
				IngredientID:    ig.ingredient.ID,
				Name:            pg.product.Name,
				Brand:           pg.product.Brand,
				Vendor:          pg.product.Vendor,
				UPC:             pg.product.UPC,
				Synthetic:       pg.product.IsSynthetic(),
				GramsConsumed:   grams(pg.grams),
				Totals:          nutrientTotals(pg.lots),
				EvidenceSummary: label.Summarize(pg.rows, pg.product.IsSynthetic()),
			}
			pPayload.PerServing = perServing(pPayload.Totals, in.Servings)
			pPayload.ReasonCodes = pPayload.EvidenceSummary.ReasonCodes
			pLabelID, err := b.createSnapshot(repos, in, entity.LabelTypeProduct, pg.product.ID, pg.product.Name, pPayload)
			if err != nil {
				return "", err
			}
			if err := b.createEdge(repos, in, igLabelID, pLabelID, entity.EdgeIngredientResolvedToProduct); err != nil {
				return "", err
			}

			for _, lg := range groupByLot(pg.lots) {
				lPayload := &label.LotPayload{
					LotID:           lg.lot.ID,
					ProductID:       pg.product.ID,
					LotCode:         lg.lot.LotCode,
					ReceivedAt:      lg.lot.ReceivedAt.Format(time.RFC3339),
					SourceOrderRef:  lg.lot.SourceOrderRef,
					GramsConsumed:   grams(lg.grams),
					Totals:          nutrientTotals(lg.lots),
					EvidenceSummary: label.Summarize(lg.rows, pg.product.IsSynthetic()),
				}
				if lg.lot.ExpiresAt != nil {
					exp := lg.lot.ExpiresAt.Format(time.RFC3339)
					lPayload.ExpiresAt = &exp
				}
				lPayload.PerServing = perServing(lPayload.Totals, in.Servings)
				lPayload.ReasonCodes = lPayload.EvidenceSummary.ReasonCodes
				lLabelID, err := b.createSnapshot(repos, in, entity.LabelTypeLot, lg.lot.ID, lg.lot.LotCode, lPayload)
				if err != nil {
					return "", err
				}
				if err := b.createEdge(repos, in, pLabelID, lLabelID, entity.EdgeProductConsumedFromLot); err != nil {
					return "", err
				}
			}
		}
	}
	return skuID, nil
}

// createSnapshot serializa el payload, calcula la versión dentro de la
// transacción (count+1 por organización+tipo+ref, sin carreras con otras
// creaciones concurrentes) y persiste el snapshot.
func (b *LineageBuilder) createSnapshot(repos TxRepos, in BuildInput, labelType, refID, title string, payload any) (string, error) {
	raw, err := label.MarshalPayload(labelType, payload)
	if err != nil {
		return "", err
	}
	count, err := repos.Labels.CountVersions(in.OrganizationID, labelType, refID)
	if err != nil {
		return "", err
	}
	snapshot := &entity.LabelSnapshot{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		LabelType:      labelType,
		ExternalRefID:  refID,
		Title:          title,
		Payload:        raw,
		Version:        count + 1,
		FrozenAt:       in.FrozenAt,
		CreatedBy:      in.Actor,
	}
	if err := repos.Labels.CreateSnapshot(snapshot); err != nil {
		return "", err
	}
	return snapshot.ID, nil
}

func (b *LineageBuilder) createEdge(repos TxRepos, in BuildInput, parentID, childID, edgeType string) error {
	return repos.Labels.CreateEdge(&entity.LabelLineageEdge{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ParentLabelID:  parentID,
		ChildLabelID:   childID,
		EdgeType:       edgeType,
		CreatedAt:      in.FrozenAt,
	})
}

// ── Agrupación ────────────────────────────────────────────────────────────────

type ingredientGroup struct {
	ingredient   *entity.Ingredient
	lots         []*ConsumedLot
	grams        decimal.Decimal
	allergens    []string
	rows         []*entity.NutrientEvidenceRow
	anySynthetic bool
}

type productGroup struct {
	product *entity.Product
	lots    []*ConsumedLot
	grams   decimal.Decimal
	rows    []*entity.NutrientEvidenceRow
}

type lotGroup struct {
	lot   *entity.InventoryLot
	lots  []*ConsumedLot
	grams decimal.Decimal
	rows  []*entity.NutrientEvidenceRow
}

// groupByIngredient agrupa consumos por ingrediente, unificando tags de
// alérgenos entre lotes (primer avistamiento preservado) y ordenando por
// nombre de ingrediente con colación para determinismo.
func (b *LineageBuilder) groupByIngredient(consumed []*ConsumedLot) []*ingredientGroup {
	byID := map[string]*ingredientGroup{}
	var order []*ingredientGroup
	for _, c := range consumed {
		g, ok := byID[c.Ingredient.ID]
		if !ok {
			g = &ingredientGroup{ingredient: c.Ingredient, grams: decimal.Zero}
			byID[c.Ingredient.ID] = g
			order = append(order, g)
		}
		g.lots = append(g.lots, c)
		g.grams = g.grams.Add(c.Grams)
		g.allergens = unionTags(g.allergens, c.Product.AllergenTags)
		g.rows = appendUniqueRows(g.rows, c.Evidence)
		if c.Product.IsSynthetic() {
			g.anySynthetic = true
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return b.collator.CompareString(order[i].ingredient.Name, order[j].ingredient.Name) < 0
	})
	return order
}

// groupByProduct agrupa los consumos de un ingrediente por producto,
// en orden de primer avistamiento.
func groupByProduct(consumed []*ConsumedLot) []*productGroup {
	byID := map[string]*productGroup{}
	var order []*productGroup
	for _, c := range consumed {
		g, ok := byID[c.Product.ID]
		if !ok {
			g = &productGroup{product: c.Product, grams: decimal.Zero}
			byID[c.Product.ID] = g
			order = append(order, g)
		}
		g.lots = append(g.lots, c)
		g.grams = g.grams.Add(c.Grams)
		g.rows = appendUniqueRows(g.rows, c.Evidence)
	}
	return order
}

// groupByLot agrupa por lote, sumando gramos si el mismo lote aparece
// desde varias líneas de receta.
func groupByLot(consumed []*ConsumedLot) []*lotGroup {
	byID := map[string]*lotGroup{}
	var order []*lotGroup
	for _, c := range consumed {
		g, ok := byID[c.Lot.ID]
		if !ok {
			g = &lotGroup{lot: c.Lot, grams: decimal.Zero}
			byID[c.Lot.ID] = g
			order = append(order, g)
		}
		g.lots = append(g.lots, c)
		g.grams = g.grams.Add(c.Grams)
		g.rows = appendUniqueRows(g.rows, c.Evidence)
	}
	return order
}

// ── Agregación de nutrientes ──────────────────────────────────────────────────

// nutrientTotals escala el perfil por-100g de cada lote por sus gramos
// consumidos (grams/100) y suma por nutriente.
func nutrientTotals(consumed []*ConsumedLot) map[string]float64 {
	totals := map[string]float64{}
	for _, c := range consumed {
		factor := grams(c.Grams) / 100.0
		for _, row := range c.Evidence {
			if row.ValuePer100g == nil {
				continue
			}
			totals[row.NutrientKey] += *row.ValuePer100g * factor
		}
	}
	return totals
}

// perServing divide los totales por las porciones planificadas.
func perServing(totals map[string]float64, servings int) map[string]float64 {
	out := map[string]float64{}
	if servings <= 0 {
		return out
	}
	for k, v := range totals {
		out[k] = v / float64(servings)
	}
	return out
}

func grams(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func unionTags(existing, incoming []string) []string {
	seen := map[string]bool{}
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range incoming {
		if !seen[t] {
			seen[t] = true
			existing = append(existing, t)
		}
	}
	return existing
}

// appendUniqueRows concatena filas deduplicando por id, para que un
// producto consumido desde varios lotes no cuente doble en el resumen.
func appendUniqueRows(existing, incoming []*entity.NutrientEvidenceRow) []*entity.NutrientEvidenceRow {
	seen := map[string]bool{}
	for _, r := range existing {
		seen[r.ID] = true
	}
	for _, r := range incoming {
		if !seen[r.ID] {
			seen[r.ID] = true
			existing = append(existing, r)
		}
	}
	return existing
}
