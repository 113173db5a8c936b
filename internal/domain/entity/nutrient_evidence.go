package entity

import "time"

// Estados de verificación de una fila de evidencia nutricional.
const (
	VerificationVerified    = "VERIFIED"
	VerificationNeedsReview = "NEEDS_REVIEW"
	VerificationRejected    = "REJECTED"
)

// Grados de evidencia: cómo se obtuvo el valor del nutriente.
const (
	GradeMeasured            = "MEASURED"
	GradeVendorDeclared      = "VENDOR_DECLARED"
	GradeInferredCategory    = "INFERRED_CATEGORY"
	GradeInferredRecipe      = "INFERRED_RECIPE"
	GradeHistoricalException = "HISTORICAL_EXCEPTION"
)

// Claves de los cinco nutrientes núcleo exigidos por la puerta de calidad
// en modo estricto.
const (
	NutrientEnergyKcal    = "energy_kcal"
	NutrientProteinG      = "protein_g"
	NutrientCarbohydrateG = "carbohydrate_g"
	NutrientFatG          = "fat_g"
	NutrientSodiumMg      = "sodium_mg"
)

// CoreNutrients son las claves que todo lote debe cubrir con valor no nulo
// para pasar la puerta de calidad estricta.
var CoreNutrients = []string{
	NutrientEnergyKcal,
	NutrientProteinG,
	NutrientCarbohydrateG,
	NutrientFatG,
	NutrientSodiumMg,
}

// NutrientEvidenceRow es el valor de un nutriente para un producto, con su
// procedencia: fuente, estado de verificación, grado de evidencia y
// confianza. ValuePer100g nulo significa "sin dato".
type NutrientEvidenceRow struct {
	ID                  string
	ProductID           string
	NutrientKey         string
	ValuePer100g        *float64
	SourceType          string
	SourceRef           string
	Verification        string
	Grade               string
	HistoricalException bool
	Confidence          float64
	CreatedAt           time.Time
}

// IsInferred indica si el grado pertenece al conjunto "inferido".
func (r *NutrientEvidenceRow) IsInferred() bool {
	return r.Grade == GradeInferredCategory || r.Grade == GradeInferredRecipe
}

// IsException indica si la fila arrastra una excepción histórica
// (flag explícito o grado de excepción).
func (r *NutrientEvidenceRow) IsException() bool {
	return r.HistoricalException || r.Grade == GradeHistoricalException
}
