package mealservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
	"github.com/jhoicas/mealtrace-api/pkg/logger"
)

// FinalizeResult ids devueltos por una finalización (o por su no-op de
// reintento).
type FinalizeResult struct {
	ServiceEventID  string
	LabelSnapshotID *string
	AlreadyExisted  bool
}

// FinalizeUseCase es el orquestador de la finalización de un servicio de
// comida: valida precondiciones, abre una única transacción atómica,
// asigna lotes por línea de receta, invoca el cómputo nutricional externo,
// materializa el árbol de linaje y estampa la etiqueta SKU en el evento de
// servicio. Idempotente por programación: un reintento devuelve los mismos
// ids sin consumir nada adicional.
type FinalizeUseCase struct {
	txRunner  TxRunner
	nutrition NutritionComputation
	allocator *LotAllocator
	lineage   *LineageBuilder
	log       *logger.Logger
}

// NewFinalizeUseCase construye el caso de uso.
func NewFinalizeUseCase(txRunner TxRunner, nutrition NutritionComputation, log *logger.Logger) *FinalizeUseCase {
	return &FinalizeUseCase{
		txRunner:  txRunner,
		nutrition: nutrition,
		allocator: NewLotAllocator(),
		lineage:   NewLineageBuilder(),
		log:       log,
	}
}

// Finalize ejecuta la finalización completa para una programación. El actor
// (servedBy) proviene de la identidad del llamador, nunca de un literal.
// Cualquier error aborta y revierte la transacción entera: no existe estado
// de éxito parcial.
func (uc *FinalizeUseCase) Finalize(ctx context.Context, organizationID, scheduleID, servedBy string) (*FinalizeResult, error) {
	if scheduleID == "" || servedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *FinalizeResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		r, err := uc.finalizeInTx(repos, organizationID, scheduleID, servedBy)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyExisted {
		uc.log.Info().Str("schedule_id", scheduleID).Str("service_event_id", result.ServiceEventID).
			Msg("finalize: ya finalizado, no-op")
	} else {
		uc.log.Info().Str("schedule_id", scheduleID).Str("service_event_id", result.ServiceEventID).
			Msg("finalize: servicio finalizado")
	}
	return result, nil
}

func (uc *FinalizeUseCase) finalizeInTx(repos TxRepos, organizationID, scheduleID, servedBy string) (*FinalizeResult, error) {
	// Idempotencia: si ya existe el evento, devolver sus ids sin trabajo.
	if existing, err := repos.Events.GetByScheduleID(scheduleID); err != nil {
		return nil, err
	} else if existing != nil {
		return &FinalizeResult{ServiceEventID: existing.ID, LabelSnapshotID: existing.LabelSnapshotID, AlreadyExisted: true}, nil
	}

	sched, err := repos.Schedules.GetByID(scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, domain.ErrScheduleNotFound
	}
	if organizationID != "" && sched.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}
	switch sched.Status {
	case entity.ScheduleStatusDone:
		// ok
	case entity.ScheduleStatusPlanned:
		// Transición PLANNED→DONE atómica con la finalización.
		if err := repos.Schedules.UpdateStatus(sched.ID, entity.ScheduleStatusDone); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("estado %s: %w", sched.Status, domain.ErrInvalidScheduleState)
	}

	recipe, err := repos.Recipes.GetActiveBySKU(sched.OrganizationID, sched.SKUID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNoActiveRecipe
	}

	// El modo se lee una sola vez y aplica a toda la corrida.
	mode := QualityModeFromNotes(sched.Notes)
	now := time.Now().UTC()

	event := &entity.MealServiceEvent{
		ID:             uuid.New().String(),
		OrganizationID: sched.OrganizationID,
		ScheduleID:     sched.ID,
		ClientID:       sched.ClientID,
		SKUID:          sched.SKUID,
		ServedAt:       now,
		ServedBy:       servedBy,
		CreatedAt:      now,
	}
	if err := repos.Events.Create(event); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Carrera perdida contra otra finalización: re-leer y devolver.
			existing, ferr := repos.Events.GetByScheduleID(scheduleID)
			if ferr != nil || existing == nil {
				return nil, err
			}
			return &FinalizeResult{ServiceEventID: existing.ID, LabelSnapshotID: existing.LabelSnapshotID, AlreadyExisted: true}, nil
		}
		return nil, err
	}

	// Asignación por línea, en orden de línea almacenado. Cualquier línea
	// insatisfecha aborta la transacción completa.
	servings := sched.PlannedServings
	var consumed []*ConsumedLot
	for _, line := range recipe.Lines {
		required := line.TargetGramsPerServing.Mul(decimalFromInt(servings))
		lineConsumed, err := uc.allocator.Allocate(repos, AllocateInput{
			OrganizationID: sched.OrganizationID,
			IngredientID:   line.IngredientID,
			RequiredGrams:  required,
			Mode:           mode,
			ServiceEventID: event.ID,
			RecipeLineID:   line.ID,
			Actor:          servedBy,
			Now:            now,
		})
		if err != nil {
			return nil, err
		}
		consumed = append(consumed, lineConsumed...)
	}

	// Resumen SKU sobre todas las filas consumidas (deduplicadas).
	var allRows []*entity.NutrientEvidenceRow
	anySynthetic := false
	for _, c := range consumed {
		allRows = appendUniqueRows(allRows, c.Evidence)
		if c.Product.IsSynthetic() {
			anySynthetic = true
		}
	}
	summary := label.Summarize(allRows, anySynthetic)

	payload, err := uc.nutrition.ComputeLabel(recipe, consumed, servings, summary)
	if err != nil {
		return nil, err
	}

	issues := uc.nutrition.ValidatePlausibility(payload.PerServing)
	payload.Plausibility = label.NewPlausibility(issues)
	codes := append([]string{}, summary.ReasonCodes...)
	if payload.Plausibility.ErrorCount > 0 {
		codes = append(codes, label.ReasonPlausibilityError)
	}
	if payload.Plausibility.WarningCount > 0 {
		codes = append(codes, label.ReasonPlausibilityWarning)
	}
	payload.ReasonCodes = label.CanonicalReasonCodes(codes)
	payload.EvidenceSummary = summary

	skuLabelID, err := uc.lineage.Build(repos, BuildInput{
		OrganizationID: sched.OrganizationID,
		SKUID:          sched.SKUID,
		SKUName:        recipe.SKUName,
		Servings:       servings,
		SKUPayload:     payload,
		Consumed:       consumed,
		FrozenAt:       now,
		Actor:          servedBy,
	})
	if err != nil {
		return nil, err
	}

	// Errores de plausibilidad no abortan: la etiqueta sale provisional y
	// se abre una tarea de revisión humana.
	if payload.Plausibility.ErrorCount > 0 {
		details, _ := json.Marshal(payload.Plausibility)
		task := &entity.VerificationTask{
			ID:             uuid.New().String(),
			OrganizationID: sched.OrganizationID,
			Kind:           entity.TaskKindPlausibility,
			RefID:          skuLabelID,
			Title:          fmt.Sprintf("Revisar plausibilidad de etiqueta %s", recipe.SKUName),
			Details:        string(details),
			Status:         entity.TaskStatusOpen,
			CreatedAt:      now,
			CreatedBy:      servedBy,
		}
		if err := repos.Tasks.OpenTask(task); err != nil {
			return nil, err
		}
	}

	if err := repos.Events.SetLabelSnapshotID(event.ID, skuLabelID); err != nil {
		return nil, err
	}
	return &FinalizeResult{ServiceEventID: event.ID, LabelSnapshotID: &skuLabelID}, nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
