package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mealtrace-api/internal/application/auth"
	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	FinalizeUC    *mealservice.FinalizeUseCase
	LineageReader *mealservice.LineageReader
	LabelExportUC *mealservice.LabelExportUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Meal services (protegido; los auditores solo leen)
	mealServices := protected.Group("/meal-services")
	mealServiceHandler := NewMealServiceHandler(deps.FinalizeUC)
	mealServices.Post("/:scheduleID/finalize",
		RequireRole(entity.RoleAdmin, entity.RoleOperator),
		mealServiceHandler.Finalize)

	// Labels (protegido)
	labels := protected.Group("/labels")
	labelHandler := NewLabelHandler(deps.LineageReader, deps.LabelExportUC)
	labels.Get("/:id/lineage", labelHandler.Lineage)
	labels.Get("/:id/pdf", labelHandler.ExportPDF)
}
