package mealservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

// LabelPDFGenerator renderiza un snapshot SKU como panel nutricional PDF.
type LabelPDFGenerator interface {
	GenerateLabelPDF(ctx context.Context, snapshot *entity.LabelSnapshot, payload *label.SKUPayload) ([]byte, error)
}

// LabelExportUseCase exporta una etiqueta congelada a PDF. Solo etiquetas
// tipo SKU tienen representación gráfica completa.
type LabelExportUseCase struct {
	labels    repository.LabelRepository
	generator LabelPDFGenerator
}

// NewLabelExportUseCase construye el caso de uso.
func NewLabelExportUseCase(labels repository.LabelRepository, generator LabelPDFGenerator) *LabelExportUseCase {
	return &LabelExportUseCase{labels: labels, generator: generator}
}

// ExportPDF carga el snapshot, valida tenencia y tipo, y genera el PDF.
func (uc *LabelExportUseCase) ExportPDF(ctx context.Context, organizationID, labelID string) ([]byte, error) {
	snapshot, err := uc.labels.GetSnapshotByID(labelID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, domain.ErrNotFound
	}
	if organizationID != "" && snapshot.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}
	if snapshot.LabelType != entity.LabelTypeSKU {
		return nil, fmt.Errorf("etiqueta %s tipo %s: %w", labelID, snapshot.LabelType, domain.ErrInvalidInput)
	}
	var payload label.SKUPayload
	if err := json.Unmarshal(snapshot.Payload, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload SKU: %w", err)
	}
	return uc.generator.GenerateLabelPDF(ctx, snapshot, &payload)
}
