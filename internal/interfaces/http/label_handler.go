package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mealtrace-api/internal/application/dto"
	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain"
)

// LabelHandler maneja lectura de linaje y exportación de etiquetas.
type LabelHandler struct {
	lineage *mealservice.LineageReader
	export  *mealservice.LabelExportUseCase
}

// NewLabelHandler construye el handler.
func NewLabelHandler(lineage *mealservice.LineageReader, export *mealservice.LabelExportUseCase) *LabelHandler {
	return &LabelHandler{lineage: lineage, export: export}
}

// Lineage godoc
// @Summary      Árbol de procedencia de una etiqueta
// @Tags         labels
// @Produce      json
// @Param        id  path  string  true  "ID del snapshot raíz"
// @Success      200  {object}  mealservice.TreeNode
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/labels/{id}/lineage [get]
func (h *LabelHandler) Lineage(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	tree, err := h.lineage.BuildTree(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if tree == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "LABEL_NOT_FOUND", Message: "la etiqueta no existe"})
	}
	return c.JSON(tree)
}

// ExportPDF godoc
// @Summary      Exportar una etiqueta SKU como PDF
// @Tags         labels
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del snapshot SKU"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/labels/{id}/pdf [get]
func (h *LabelHandler) ExportPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, err := h.export.ExportPDF(c.UserContext(), GetOrganizationID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "LABEL_NOT_FOUND", Message: "la etiqueta no existe"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "la etiqueta pertenece a otra organización"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "solo etiquetas SKU tienen PDF"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="etiqueta-`+id+`.pdf"`)
	return c.Send(pdfBytes)
}
