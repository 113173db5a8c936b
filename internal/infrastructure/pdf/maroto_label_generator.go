// Package pdf implementa la representación gráfica de una etiqueta
// nutricional congelada, al estilo del panel "Nutrition Facts".
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Nombre SKU  │  Versión + Congelada   │
//	│  ───────────────────────────────────────────  │
//	│  PANEL: Calorías grande                       │
//	│         Grasa / Sodio / Carbs / Proteína      │
//	│  ───────────────────────────────────────────  │
//	│  INGREDIENTES: declaración en orden de peso   │
//	│  CONTIENE: alérgenos                          │
//	│  ───────────────────────────────────────────  │
//	│  FOOTER: provisional + códigos de razón       │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
)

var _ mealservice.LabelPDFGenerator = (*MarotoLabelGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 60, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLabelGenerator implementa mealservice.LabelPDFGenerator usando
// Maroto v2.
type MarotoLabelGenerator struct{}

// NewMarotoLabelGenerator construye el generador.
func NewMarotoLabelGenerator() *MarotoLabelGenerator { return &MarotoLabelGenerator{} }

// GenerateLabelPDF genera el PDF del panel nutricional y devuelve sus bytes.
func (g *MarotoLabelGenerator) GenerateLabelPDF(
	_ context.Context,
	snapshot *entity.LabelSnapshot,
	payload *label.SKUPayload,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Etiqueta Nutricional "+payload.SKUName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(snapshot, payload))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.8}))
	m.AddRows(caloriesRow(payload))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range nutrientRows(payload) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.8}))
	m.AddRows(ingredientsRow(payload))
	if len(payload.AllergenDecl) > 0 {
		m.AddRows(allergensRow(payload))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(snapshot, payload) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del SKU (izq) y versión + fecha de congelado (der).
func headerRow(snapshot *entity.LabelSnapshot, payload *label.SKUPayload) core.Row {
	fecha := snapshot.FrozenAt.Format("02/01/2006 15:04")
	return row.New(16).Add(
		col.New(7).Add(
			text.New(payload.SKUName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(payload.RoundedFDA.ServingsLabel, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Versión %d", snapshot.Version), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Congelada: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// caloriesRow: calorías por porción en tamaño grande, estilo panel FDA.
func caloriesRow(payload *label.SKUPayload) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New("Calorías por porción", props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 3,
			}),
		),
		col.New(5).Add(
			text.New(payload.RoundedFDA.Calories, props.Text{
				Style: fontstyle.Bold, Size: 18, Align: align.Right, Top: 1,
			}),
		),
	)
}

// nutrientRows: una fila por nutriente con su valor redondeado de display.
func nutrientRows(payload *label.SKUPayload) []core.Row {
	entries := []struct {
		name  string
		value string
		unit  string
	}{
		{"Grasa total", payload.RoundedFDA.TotalFatG, "g"},
		{"Sodio", payload.RoundedFDA.SodiumMg, "mg"},
		{"Carbohidratos totales", payload.RoundedFDA.TotalCarbG, "g"},
		{"Proteína", payload.RoundedFDA.ProteinG, "g"},
	}
	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, row.New(7).Add(
			col.New(8).Add(text.New(e.name, props.Text{Size: 9, Top: 1, Left: 1})),
			col.New(4).Add(text.New(e.value+" "+e.unit, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return rows
}

// ingredientsRow: declaración de ingredientes en orden de predominancia.
func ingredientsRow(payload *label.SKUPayload) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("INGREDIENTES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(strings.Join(payload.IngredientDecl, ", "), props.Text{
				Size: 8, Top: 6, Color: colorGray,
			}),
		),
	)
}

// allergensRow: declaración "Contiene" de alérgenos.
func allergensRow(payload *label.SKUPayload) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New("CONTIENE: "+strings.Join(payload.AllergenDecl, ", "), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 1,
			}),
		),
	)
}

// footerRows: marca provisional + códigos de razón + resumen de evidencia.
func footerRows(snapshot *entity.LabelSnapshot, payload *label.SKUPayload) []core.Row {
	var rows []core.Row

	if payload.EvidenceSummary.Provisional {
		rows = append(rows, row.New(7).Add(col.New(12).Add(
			text.New("ETIQUETA PROVISIONAL — sujeta a verificación de fuentes", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 1,
			}),
		)))
	}
	if len(payload.ReasonCodes) > 0 {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Motivos: "+strings.Join(payload.ReasonCodes, ", "), props.Text{
				Size: 6.5, Color: colorGray, Top: 1,
			}),
		)))
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf(
			"Evidencia: %d verificadas, %d inferidas, %d excepciones, %d sin verificar. Etiqueta %s.",
			payload.EvidenceSummary.VerifiedCount,
			payload.EvidenceSummary.InferredCount,
			payload.EvidenceSummary.ExceptionCount,
			payload.EvidenceSummary.UnverifiedCount,
			snapshot.ID,
		), props.Text{Size: 6.5, Color: colorGray, Top: 1}),
	)))
	return rows
}
