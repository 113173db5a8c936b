package mealservice_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del constructor de linaje: forma del árbol, versionado por referencia
// y agregación de gramos por nodo.
// ──────────────────────────────────────────────────────────────────────────────

// buildConsumed arma dos ingredientes: pollo resuelto a un producto con dos
// lotes, y arroz resuelto a un producto con un lote.
func buildConsumed() []*mealservice.ConsumedLot {
	pollo := ingredient("ing-pollo", "Pechuga de pollo")
	prodPollo := product("prod-pollo", pollo, "AviCol", "770001112223", "none")
	arroz := ingredient("ing-arroz", "Arroz blanco")
	prodArroz := product("prod-arroz", arroz, "Molinos", "770009990001")

	kcal := 165.0
	rowPollo := &entity.NutrientEvidenceRow{
		ID: "row-pollo-kcal", ProductID: prodPollo.ID, NutrientKey: entity.NutrientEnergyKcal,
		ValuePer100g: &kcal, Verification: entity.VerificationVerified, Grade: entity.GradeMeasured,
	}
	kcalArroz := 360.0
	rowArroz := &entity.NutrientEvidenceRow{
		ID: "row-arroz-kcal", ProductID: prodArroz.ID, NutrientKey: entity.NutrientEnergyKcal,
		ValuePer100g: &kcalArroz, Verification: entity.VerificationVerified, Grade: entity.GradeMeasured,
	}

	lotA := &entity.InventoryLot{ID: "lot-a", OrganizationID: "org-1", ProductID: prodPollo.ID, LotCode: "LC-A", ReceivedAt: testBase}
	lotB := &entity.InventoryLot{ID: "lot-b", OrganizationID: "org-1", ProductID: prodPollo.ID, LotCode: "LC-B", ReceivedAt: testBase}
	lotC := &entity.InventoryLot{ID: "lot-c", OrganizationID: "org-1", ProductID: prodArroz.ID, LotCode: "LC-C", ReceivedAt: testBase}

	return []*mealservice.ConsumedLot{
		{Lot: lotA, Product: prodPollo, Ingredient: pollo, RecipeLineID: "line-1", Grams: decimal.NewFromInt(100), Evidence: []*entity.NutrientEvidenceRow{rowPollo}},
		{Lot: lotB, Product: prodPollo, Ingredient: pollo, RecipeLineID: "line-1", Grams: decimal.NewFromInt(400), Evidence: []*entity.NutrientEvidenceRow{rowPollo}},
		{Lot: lotC, Product: prodArroz, Ingredient: arroz, RecipeLineID: "line-2", Grams: decimal.NewFromInt(600), Evidence: []*entity.NutrientEvidenceRow{rowArroz}},
	}
}

func buildInput(consumed []*mealservice.ConsumedLot) mealservice.BuildInput {
	return mealservice.BuildInput{
		OrganizationID: "org-1",
		SKUID:          "sku-menu",
		SKUName:        "Menú del día",
		Servings:       10,
		SKUPayload:     &label.SKUPayload{SKUID: "sku-menu", SKUName: "Menú del día", Servings: 10},
		Consumed:       consumed,
		FrozenAt:       testBase,
		Actor:          "user-1",
	}
}

// TestBuild_FormaDelArbol: 1 SKU + 2 ingredientes + 2 productos + 3 lotes =
// 8 snapshots y 7 aristas (árbol conexo).
func TestBuild_FormaDelArbol(t *testing.T) {
	s := newMemStore()
	builder := mealservice.NewLineageBuilder()

	rootID, err := builder.Build(reposFor(s), buildInput(buildConsumed()))

	require.NoError(t, err)
	require.NotEmpty(t, rootID)
	assert.Len(t, s.snapshots, 8)
	assert.Len(t, s.edges, 7)

	byType := map[string]int{}
	for _, sn := range s.snapshots {
		byType[sn.LabelType]++
	}
	assert.Equal(t, 1, byType[entity.LabelTypeSKU])
	assert.Equal(t, 2, byType[entity.LabelTypeIngredient])
	assert.Equal(t, 2, byType[entity.LabelTypeProduct])
	assert.Equal(t, 3, byType[entity.LabelTypeLot])

	byEdge := map[string]int{}
	for _, e := range s.edges {
		byEdge[e.EdgeType]++
	}
	assert.Equal(t, 2, byEdge[entity.EdgeSKUContainsIngredient])
	assert.Equal(t, 2, byEdge[entity.EdgeIngredientResolvedToProduct])
	assert.Equal(t, 3, byEdge[entity.EdgeProductConsumedFromLot])
}

// TestBuild_GramosAgregadosPorNodo: el nodo producto del pollo suma los
// gramos de sus dos lotes (100 + 400).
func TestBuild_GramosAgregadosPorNodo(t *testing.T) {
	s := newMemStore()
	builder := mealservice.NewLineageBuilder()

	_, err := builder.Build(reposFor(s), buildInput(buildConsumed()))
	require.NoError(t, err)

	var prodPayload struct {
		ProductID     string  `json:"productId"`
		GramsConsumed float64 `json:"gramsConsumed"`
	}
	found := false
	for _, sn := range s.snapshots {
		if sn.LabelType == entity.LabelTypeProduct && sn.ExternalRefID == "prod-pollo" {
			require.NoError(t, unmarshalPayload(sn, &prodPayload))
			found = true
		}
	}
	require.True(t, found, "debe existir snapshot del producto de pollo")
	assert.InDelta(t, 500.0, prodPayload.GramsConsumed, 0.001)
}

// TestBuild_VersionadoPorReferencia: dos corridas para el mismo SKU emiten
// versiones 1 y 2 del snapshot SKU; un SKU distinto arranca en 1.
func TestBuild_VersionadoPorReferencia(t *testing.T) {
	s := newMemStore()
	builder := mealservice.NewLineageBuilder()

	first, err := builder.Build(reposFor(s), buildInput(buildConsumed()))
	require.NoError(t, err)
	second, err := builder.Build(reposFor(s), buildInput(buildConsumed()))
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "cada corrida congela un snapshot nuevo")

	versions := map[string][]int{}
	for _, sn := range s.snapshots {
		if sn.LabelType == entity.LabelTypeSKU {
			versions[sn.ExternalRefID] = append(versions[sn.ExternalRefID], sn.Version)
		}
	}
	assert.ElementsMatch(t, []int{1, 2}, versions["sku-menu"], "versiones sin huecos desde 1")

	otherInput := buildInput(buildConsumed())
	otherInput.SKUID = "sku-otro"
	_, err = builder.Build(reposFor(s), otherInput)
	require.NoError(t, err)
	for _, sn := range s.snapshots {
		if sn.LabelType == entity.LabelTypeSKU && sn.ExternalRefID == "sku-otro" {
			assert.Equal(t, 1, sn.Version, "otra referencia versiona aparte")
		}
	}
}

// TestBuild_IngredientesOrdenadosPorNombre: los hijos del SKU salen en orden
// de nombre colado (Arroz antes que Pechuga).
func TestBuild_IngredientesOrdenadosPorNombre(t *testing.T) {
	s := newMemStore()
	builder := mealservice.NewLineageBuilder()

	rootID, err := builder.Build(reposFor(s), buildInput(buildConsumed()))
	require.NoError(t, err)

	edges, err := (&fakeLabelRepo{s}).ListEdgesByParent(rootID)
	require.NoError(t, err)
	require.Len(t, edges, 2)

	var titles []string
	for _, e := range edges {
		for _, sn := range s.snapshots {
			if sn.ID == e.ChildLabelID {
				titles = append(titles, sn.Title)
			}
		}
	}
	assert.Equal(t, []string{"Arroz blanco", "Pechuga de pollo"}, titles)
}

// TestBuild_FrozenAtUniforme: todos los snapshots de una corrida comparten
// el mismo instante de congelado.
func TestBuild_FrozenAtUniforme(t *testing.T) {
	s := newMemStore()
	builder := mealservice.NewLineageBuilder()

	_, err := builder.Build(reposFor(s), buildInput(buildConsumed()))
	require.NoError(t, err)

	for _, sn := range s.snapshots {
		assert.True(t, sn.FrozenAt.Equal(testBase), "snapshot %s con frozen_at distinto", sn.ID)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func unmarshalPayload(sn *entity.LabelSnapshot, out any) error {
	return json.Unmarshal(sn.Payload, out)
}
