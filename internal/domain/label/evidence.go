package label

import (
	"sort"

	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
)

// Códigos de razón del conjunto cerrado, en su orden canónico fijo.
// Los códigos de plausibilidad los añade el llamador (no este agregador),
// pero el orden de emisión siempre es este, sin importar el de inserción.
const (
	ReasonPlausibilityError   = "PLAUSIBILITY_ERROR"
	ReasonPlausibilityWarning = "PLAUSIBILITY_WARNING"
	ReasonUnverifiedSource    = "UNVERIFIED_SOURCE"
	ReasonHistoricalException = "HISTORICAL_EXCEPTION"
	ReasonSyntheticLotUsage   = "SYNTHETIC_LOT_USAGE"
)

var reasonPriority = map[string]int{
	ReasonPlausibilityError:   0,
	ReasonPlausibilityWarning: 1,
	ReasonUnverifiedSource:    2,
	ReasonHistoricalException: 3,
	ReasonSyntheticLotUsage:   4,
}

// Summary es el resumen determinista de evidencia de un nodo de etiqueta.
// Se calcula una vez por nodo (SKU, cada ingrediente, cada producto, cada
// lote) sobre exactamente las filas relevantes a ese nodo.
type Summary struct {
	VerifiedCount     int            `json:"verifiedCount"`
	InferredCount     int            `json:"inferredCount"`
	ExceptionCount    int            `json:"exceptionCount"`
	UnverifiedCount   int            `json:"unverifiedCount"`
	TotalNutrientRows int            `json:"totalNutrientRows"`
	Provisional       bool           `json:"provisional"`
	SourceRefs        []string       `json:"sourceRefs"`
	GradeBreakdown    map[string]int `json:"gradeBreakdown"`
	ReasonCodes       []string       `json:"reasonCodes"`
}

// Summarize clasifica filas de evidencia en un resumen determinista.
// Función pura: mismas filas (en cualquier orden) producen siempre los
// mismos conteos, el mismo orden de códigos y el mismo flag provisional.
func Summarize(rows []*entity.NutrientEvidenceRow, syntheticLot bool) Summary {
	s := Summary{
		SourceRefs:     []string{},
		GradeBreakdown: map[string]int{},
	}
	seenRefs := map[string]bool{}
	for _, row := range rows {
		s.TotalNutrientRows++
		if row.Verification == entity.VerificationVerified {
			s.VerifiedCount++
		} else {
			s.UnverifiedCount++
		}
		if row.IsInferred() {
			s.InferredCount++
		}
		if row.IsException() {
			s.ExceptionCount++
		}
		if row.Grade != "" {
			s.GradeBreakdown[row.Grade]++
		}
		if row.SourceRef != "" && !seenRefs[row.SourceRef] {
			seenRefs[row.SourceRef] = true
			s.SourceRefs = append(s.SourceRefs, row.SourceRef)
		}
	}
	sort.Strings(s.SourceRefs)

	s.Provisional = s.UnverifiedCount > 0 || s.ExceptionCount > 0 || s.InferredCount > 0 || syntheticLot

	var codes []string
	if s.UnverifiedCount > 0 {
		codes = append(codes, ReasonUnverifiedSource)
	}
	if s.ExceptionCount > 0 {
		codes = append(codes, ReasonHistoricalException)
	}
	if syntheticLot {
		codes = append(codes, ReasonSyntheticLotUsage)
	}
	s.ReasonCodes = CanonicalReasonCodes(codes)
	return s
}

// CanonicalReasonCodes deduplica y ordena códigos según la prioridad fija
// del conjunto cerrado. Códigos fuera del conjunto se descartan.
func CanonicalReasonCodes(codes []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, known := reasonPriority[c]; !known || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return reasonPriority[out[i]] < reasonPriority[out[j]]
	})
	return out
}
