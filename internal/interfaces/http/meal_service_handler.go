package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mealtrace-api/internal/application/dto"
	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain"
)

// MealServiceHandler maneja la finalización de servicios de comida.
type MealServiceHandler struct {
	finalize *mealservice.FinalizeUseCase
}

// NewMealServiceHandler construye el handler.
func NewMealServiceHandler(finalize *mealservice.FinalizeUseCase) *MealServiceHandler {
	return &MealServiceHandler{finalize: finalize}
}

// Finalize godoc
// @Summary      Finalizar un servicio de comida
// @Description  Consume inventario FIFO, congela la etiqueta y materializa el
// @Description  linaje en una sola transacción. Idempotente por programación.
// @Tags         meal-services
// @Produce      json
// @Param        scheduleID  path  string  true  "ID de la programación"
// @Success      200  {object}  dto.FinalizeResponse  "ya finalizado (no-op)"
// @Success      201  {object}  dto.FinalizeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/meal-services/{scheduleID}/finalize [post]
func (h *MealServiceHandler) Finalize(c *fiber.Ctx) error {
	scheduleID := c.Params("scheduleID")
	if scheduleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "scheduleID requerido"})
	}

	result, err := h.finalize.Finalize(c.UserContext(), GetOrganizationID(c), scheduleID, GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrScheduleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "SCHEDULE_NOT_FOUND", Message: "la programación no existe"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "la programación pertenece a otra organización"})
		case errors.Is(err, domain.ErrInvalidScheduleState):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_SCHEDULE_STATE", Message: err.Error()})
		case errors.Is(err, domain.ErrNoActiveRecipe):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_ACTIVE_RECIPE", Message: "el SKU no tiene receta activa"})
		case errors.Is(err, domain.ErrQualityGateBlocked):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "QUALITY_GATE_BLOCKED", Message: err.Error()})
		case errors.Is(err, domain.ErrInsufficientInventory):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_INVENTORY", Message: err.Error()})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}

	status := fiber.StatusCreated
	if result.AlreadyExisted {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.FinalizeResponse{
		ServiceEventID:  result.ServiceEventID,
		LabelSnapshotID: result.LabelSnapshotID,
		AlreadyExisted:  result.AlreadyExisted,
	})
}
