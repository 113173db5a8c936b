package mealservice_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/mealtrace-api/internal/application/mealservice"
	"github.com/jhoicas/mealtrace-api/internal/domain"
	"github.com/jhoicas/mealtrace-api/internal/domain/entity"
	"github.com/jhoicas/mealtrace-api/internal/domain/label"
	"github.com/jhoicas/mealtrace-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para el motor de finalización. memStore es el "estado de
// BD" compartido; fakeTxRunner clona el estado antes de cada corrida y lo
// restaura si el callback falla, imitando el rollback transaccional real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	schedules    map[string]*entity.MealSchedule
	recipes      []*entity.Recipe
	lots         []*repository.AvailableLot
	evidence     map[string][]*entity.NutrientEvidenceRow
	consumptions []*entity.LotConsumptionEvent
	ledger       []*entity.InventoryLedgerEntry
	snapshots    []*entity.LabelSnapshot
	edges        []*entity.LabelLineageEdge
	events       []*entity.MealServiceEvent
	tasks        []*entity.VerificationTask
}

func newMemStore() *memStore {
	return &memStore{
		schedules: map[string]*entity.MealSchedule{},
		evidence:  map[string][]*entity.NutrientEvidenceRow{},
	}
}

// clone copia el estado mutable. Las filas append-only comparten punteros
// (son inmutables en el dominio); programaciones, lotes y eventos se copian
// por valor porque la finalización los muta.
func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, sched := range s.schedules {
		cp := *sched
		c.schedules[id] = &cp
	}
	c.recipes = append([]*entity.Recipe{}, s.recipes...)
	for _, al := range s.lots {
		lotCopy := *al.Lot
		c.lots = append(c.lots, &repository.AvailableLot{
			Lot:        &lotCopy,
			Product:    al.Product,
			Ingredient: al.Ingredient,
		})
	}
	for pid, rows := range s.evidence {
		c.evidence[pid] = rows
	}
	c.consumptions = append([]*entity.LotConsumptionEvent{}, s.consumptions...)
	c.ledger = append([]*entity.InventoryLedgerEntry{}, s.ledger...)
	c.snapshots = append([]*entity.LabelSnapshot{}, s.snapshots...)
	c.edges = append([]*entity.LabelLineageEdge{}, s.edges...)
	for _, ev := range s.events {
		cp := *ev
		c.events = append(c.events, &cp)
	}
	c.tasks = append([]*entity.VerificationTask{}, s.tasks...)
	return c
}

func reposFor(s *memStore) mealservice.TxRepos {
	return mealservice.TxRepos{
		Schedules:    &fakeScheduleRepo{s},
		Recipes:      &fakeRecipeRepo{s},
		Lots:         &fakeLotRepo{s},
		Evidence:     &fakeEvidenceRepo{s},
		Consumptions: &fakeConsumptionRepo{s},
		Ledger:       &fakeLedgerRepo{s},
		Labels:       &fakeLabelRepo{s},
		Events:       &fakeEventRepo{s},
		Tasks:        &fakeTaskRepo{s},
	}
}

// fakeTxRunner imita la atomicidad: restaura el estado previo si fn falla.
type fakeTxRunner struct {
	store *memStore
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(repos mealservice.TxRepos) error) error {
	backup := r.store.clone()
	if err := fn(reposFor(r.store)); err != nil {
		*r.store = *backup
		return err
	}
	return nil
}

// ── Repos fake ────────────────────────────────────────────────────────────────

type fakeScheduleRepo struct{ s *memStore }

func (r *fakeScheduleRepo) GetByID(id string) (*entity.MealSchedule, error) {
	return r.s.schedules[id], nil
}

func (r *fakeScheduleRepo) UpdateStatus(id, status string) error {
	sched, ok := r.s.schedules[id]
	if !ok {
		return domain.ErrNotFound
	}
	sched.Status = status
	return nil
}

type fakeRecipeRepo struct{ s *memStore }

func (r *fakeRecipeRepo) GetActiveBySKU(organizationID, skuID string) (*entity.Recipe, error) {
	for _, rec := range r.s.recipes {
		if rec.OrganizationID == organizationID && rec.SKUID == skuID && rec.Active {
			return rec, nil
		}
	}
	return nil, nil
}

type fakeLotRepo struct{ s *memStore }

func (r *fakeLotRepo) ListAvailableByIngredient(organizationID, ingredientID string) ([]*repository.AvailableLot, error) {
	var out []*repository.AvailableLot
	for _, al := range r.s.lots {
		if al.Lot.OrganizationID != organizationID || al.Ingredient.ID != ingredientID {
			continue
		}
		if al.Lot.QuantityAvailable.LessThanOrEqual(decimal.Zero) {
			continue
		}
		out = append(out, al)
	}
	// Mismo orden FIFO del SQL: expires_at ASC NULLS LAST, received_at ASC.
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].Lot.ExpiresAt, out[j].Lot.ExpiresAt
		switch {
		case ei == nil && ej == nil:
			return out[i].Lot.ReceivedAt.Before(out[j].Lot.ReceivedAt)
		case ei == nil:
			return false
		case ej == nil:
			return true
		case !ei.Equal(*ej):
			return ei.Before(*ej)
		default:
			return out[i].Lot.ReceivedAt.Before(out[j].Lot.ReceivedAt)
		}
	})
	return out, nil
}

func (r *fakeLotRepo) DecrementAvailable(lotID string, grams decimal.Decimal) error {
	for _, al := range r.s.lots {
		if al.Lot.ID != lotID {
			continue
		}
		if al.Lot.QuantityAvailable.LessThan(grams) {
			return fmt.Errorf("lote %s: cantidad insuficiente: %w", lotID, domain.ErrConflict)
		}
		al.Lot.QuantityAvailable = al.Lot.QuantityAvailable.Sub(grams)
		return nil
	}
	return domain.ErrNotFound
}

type fakeEvidenceRepo struct{ s *memStore }

func (r *fakeEvidenceRepo) ListByProduct(productID string) ([]*entity.NutrientEvidenceRow, error) {
	return r.s.evidence[productID], nil
}

type fakeConsumptionRepo struct{ s *memStore }

func (r *fakeConsumptionRepo) Create(event *entity.LotConsumptionEvent) error {
	r.s.consumptions = append(r.s.consumptions, event)
	return nil
}

func (r *fakeConsumptionRepo) ListByServiceEvent(serviceEventID string) ([]*entity.LotConsumptionEvent, error) {
	var out []*entity.LotConsumptionEvent
	for _, e := range r.s.consumptions {
		if e.ServiceEventID == serviceEventID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLedgerRepo struct{ s *memStore }

func (r *fakeLedgerRepo) Append(entry *entity.InventoryLedgerEntry) error {
	r.s.ledger = append(r.s.ledger, entry)
	return nil
}

func (r *fakeLedgerRepo) ListByLot(lotID string) ([]*entity.InventoryLedgerEntry, error) {
	var out []*entity.InventoryLedgerEntry
	for _, e := range r.s.ledger {
		if e.LotID == lotID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLabelRepo struct{ s *memStore }

func (r *fakeLabelRepo) CreateSnapshot(snapshot *entity.LabelSnapshot) error {
	r.s.snapshots = append(r.s.snapshots, snapshot)
	return nil
}

func (r *fakeLabelRepo) GetSnapshotByID(id string) (*entity.LabelSnapshot, error) {
	for _, sn := range r.s.snapshots {
		if sn.ID == id {
			return sn, nil
		}
	}
	return nil, nil
}

func (r *fakeLabelRepo) CountVersions(organizationID, labelType, externalRefID string) (int, error) {
	count := 0
	for _, sn := range r.s.snapshots {
		if sn.OrganizationID == organizationID && sn.LabelType == labelType && sn.ExternalRefID == externalRefID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLabelRepo) CreateEdge(edge *entity.LabelLineageEdge) error {
	r.s.edges = append(r.s.edges, edge)
	return nil
}

func (r *fakeLabelRepo) ListEdgesByParent(parentLabelID string) ([]*entity.LabelLineageEdge, error) {
	var out []*entity.LabelLineageEdge
	for _, e := range r.s.edges {
		if e.ParentLabelID == parentLabelID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEventRepo struct{ s *memStore }

func (r *fakeEventRepo) Create(event *entity.MealServiceEvent) error {
	for _, e := range r.s.events {
		if e.ScheduleID == event.ScheduleID {
			return fmt.Errorf("service event schedule %s: %w", event.ScheduleID, domain.ErrDuplicate)
		}
	}
	r.s.events = append(r.s.events, event)
	return nil
}

func (r *fakeEventRepo) GetByScheduleID(scheduleID string) (*entity.MealServiceEvent, error) {
	for _, e := range r.s.events {
		if e.ScheduleID == scheduleID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) SetLabelSnapshotID(eventID, labelSnapshotID string) error {
	for _, e := range r.s.events {
		if e.ID == eventID {
			e.LabelSnapshotID = &labelSnapshotID
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeTaskRepo struct{ s *memStore }

func (r *fakeTaskRepo) OpenTask(task *entity.VerificationTask) error {
	r.s.tasks = append(r.s.tasks, task)
	return nil
}

// ── Cómputo nutricional fake ──────────────────────────────────────────────────

// fakeNutrition agrega totales igual que el calculador real pero permite
// inyectar hallazgos de plausibilidad fijos.
type fakeNutrition struct {
	issues []label.Issue
}

func (f *fakeNutrition) ComputeLabel(recipe *entity.Recipe, consumed []*mealservice.ConsumedLot, servings int, summary label.Summary) (*label.SKUPayload, error) {
	totals := map[string]float64{}
	for _, c := range consumed {
		g, _ := c.Grams.Float64()
		for _, row := range c.Evidence {
			if row.ValuePer100g != nil {
				totals[row.NutrientKey] += *row.ValuePer100g * g / 100.0
			}
		}
	}
	per := map[string]float64{}
	for k, v := range totals {
		per[k] = v / float64(servings)
	}
	var decl []string
	seen := map[string]bool{}
	for _, c := range consumed {
		if !seen[c.Ingredient.ID] {
			seen[c.Ingredient.ID] = true
			decl = append(decl, c.Ingredient.Name)
		}
	}
	return &label.SKUPayload{
		SKUID:           recipe.SKUID,
		SKUName:         recipe.SKUName,
		Servings:        servings,
		PerServing:      per,
		Totals:          totals,
		IngredientDecl:  decl,
		EvidenceSummary: summary,
	}, nil
}

func (f *fakeNutrition) ValidatePlausibility(_ map[string]float64) []label.Issue {
	return f.issues
}

// ── Builders de datos de prueba ───────────────────────────────────────────────

var testBase = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func seedSchedule(s *memStore, id, org, sku string, servings int, status, notes string) *entity.MealSchedule {
	sched := &entity.MealSchedule{
		ID:              id,
		OrganizationID:  org,
		ClientID:        "client-1",
		SKUID:           sku,
		ServiceDate:     testBase,
		Slot:            "lunch",
		PlannedServings: servings,
		Status:          status,
		Notes:           notes,
		CreatedAt:       testBase,
		UpdatedAt:       testBase,
	}
	s.schedules[id] = sched
	return sched
}

func seedRecipe(s *memStore, org, sku, skuName string, lines ...*entity.RecipeLine) *entity.Recipe {
	rec := &entity.Recipe{
		ID:             "recipe-" + sku,
		OrganizationID: org,
		SKUID:          sku,
		SKUName:        skuName,
		Active:         true,
		CreatedAt:      testBase,
		Lines:          lines,
	}
	s.recipes = append(s.recipes, rec)
	return rec
}

func recipeLine(id, ingredientID string, gramsPerServing float64, lineNo int) *entity.RecipeLine {
	return &entity.RecipeLine{
		ID:                    id,
		LineNo:                lineNo,
		IngredientID:          ingredientID,
		TargetGramsPerServing: decimal.NewFromFloat(gramsPerServing),
	}
}

func seedLot(s *memStore, org string, ing *entity.Ingredient, prod *entity.Product, lotID string, available float64, receivedAt time.Time, expiresAt *time.Time) *entity.InventoryLot {
	lot := &entity.InventoryLot{
		ID:                lotID,
		OrganizationID:    org,
		ProductID:         prod.ID,
		LotCode:           "LC-" + lotID,
		ReceivedAt:        receivedAt,
		ExpiresAt:         expiresAt,
		QuantityReceived:  decimal.NewFromFloat(available),
		QuantityAvailable: decimal.NewFromFloat(available),
		CreatedAt:         receivedAt,
	}
	s.lots = append(s.lots, &repository.AvailableLot{Lot: lot, Product: prod, Ingredient: ing})
	return lot
}

func ingredient(id, name string) *entity.Ingredient {
	return &entity.Ingredient{ID: id, OrganizationID: "org-1", Name: name, CreatedAt: testBase}
}

func product(id string, ing *entity.Ingredient, vendor, upc string, allergens ...string) *entity.Product {
	return &entity.Product{
		ID:             id,
		OrganizationID: "org-1",
		IngredientID:   ing.ID,
		Name:           ing.Name + " " + vendor,
		Brand:          vendor,
		Vendor:         vendor,
		UPC:            upc,
		AllergenTags:   allergens,
		CreatedAt:      testBase,
	}
}

// seedVerifiedEvidence cubre los cinco nutrientes núcleo con filas
// VERIFIED/MEASURED.
func seedVerifiedEvidence(s *memStore, productID string, kcal, protein, carb, fat, sodium float64) {
	values := map[string]float64{
		entity.NutrientEnergyKcal:    kcal,
		entity.NutrientProteinG:      protein,
		entity.NutrientCarbohydrateG: carb,
		entity.NutrientFatG:          fat,
		entity.NutrientSodiumMg:      sodium,
	}
	for _, key := range entity.CoreNutrients {
		v := values[key]
		s.evidence[productID] = append(s.evidence[productID], &entity.NutrientEvidenceRow{
			ID:           productID + "-" + key,
			ProductID:    productID,
			NutrientKey:  key,
			ValuePer100g: &v,
			SourceType:   "LAB",
			SourceRef:    "lab-report-" + productID,
			Verification: entity.VerificationVerified,
			Grade:        entity.GradeMeasured,
			Confidence:   0.99,
			CreatedAt:    testBase,
		})
	}
}

// seedInferredEvidence cubre los núcleo con filas sin verificar inferidas
// por categoría.
func seedInferredEvidence(s *memStore, productID string, kcal, protein, carb, fat, sodium float64) {
	values := map[string]float64{
		entity.NutrientEnergyKcal:    kcal,
		entity.NutrientProteinG:      protein,
		entity.NutrientCarbohydrateG: carb,
		entity.NutrientFatG:          fat,
		entity.NutrientSodiumMg:      sodium,
	}
	for _, key := range entity.CoreNutrients {
		v := values[key]
		s.evidence[productID] = append(s.evidence[productID], &entity.NutrientEvidenceRow{
			ID:           productID + "-" + key,
			ProductID:    productID,
			NutrientKey:  key,
			ValuePer100g: &v,
			SourceType:   "CATEGORY_AVG",
			SourceRef:    "category-" + productID,
			Verification: entity.VerificationNeedsReview,
			Grade:        entity.GradeInferredCategory,
			Confidence:   0.4,
			CreatedAt:    testBase,
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func availableOf(s *memStore, lotID string) decimal.Decimal {
	for _, al := range s.lots {
		if al.Lot.ID == lotID {
			return al.Lot.QuantityAvailable
		}
	}
	return decimal.NewFromInt(-1)
}
