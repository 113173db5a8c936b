package entity

import (
	"strings"
	"time"
)

// Centinelas de producto sintético: lotes de relleno histórico que nunca
// representan stock físico real.
const (
	SyntheticVendor    = "SYNTHETIC"
	SyntheticUPCPrefix = "000000"
)

// Product es la resolución comercial de un ingrediente: marca, proveedor y
// UPC concretos de los que se recibe stock.
type Product struct {
	ID             string
	OrganizationID string
	IngredientID   string
	Name           string
	Brand          string
	Vendor         string
	UPC            string
	AllergenTags   []string
	CreatedAt      time.Time
}

// IsSynthetic indica si el producto es un placeholder sintético
// (proveedor centinela o prefijo de UPC centinela).
func (p *Product) IsSynthetic() bool {
	if strings.EqualFold(p.Vendor, SyntheticVendor) {
		return true
	}
	return strings.HasPrefix(p.UPC, SyntheticUPCPrefix)
}
