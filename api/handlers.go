/*
handlers.go - HTTP API handlers for the charge engine

PURPOSE:
  Exposes the charge calculator via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the charge and factory packages.

ENDPOINTS:
  Workflow:
    GET    /api/actions                      Actions and their accrual cadences

  Charge definitions:
    GET    /api/charge-definitions           List catalog entries
    POST   /api/charge-definitions           Create or replace a definition
    GET    /api/charge-definitions/{id}      Get one definition
    DELETE /api/charge-definitions/{id}      Remove a definition

  Rates:
    POST   /api/rates/charge                 Rate of one scheduled charge
    POST   /api/rates/periods                Accrual interest rate per repayment period

  Scenarios:
    GET    /api/scenarios                    List worked examples
    POST   /api/scenarios/{name}/run         Run a worked example

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid definitions or schedules
  - 404: Unknown charge definition
  - 422: Definition and schedule disagree (precision mismatch, zero
         durations, missing action period)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Worked examples
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/charge-engine/catalog"
	"github.com/warp/charge-engine/charge"
	"github.com/warp/charge-engine/factory"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog          catalog.Store
	ChargeFactory    *factory.ChargeFactory
	Calculator       charge.Calculator
	DefaultPrecision int
	Logger           *zap.Logger
}

// NewHandler creates a handler backed by store. A nil logger discards output.
func NewHandler(store catalog.Store, logger *zap.Logger, defaultPrecision int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Catalog:          store,
		ChargeFactory:    factory.NewChargeFactory(),
		Calculator:       charge.Calculator{Cadences: workflow.DefaultCadences()},
		DefaultPrecision: defaultPrecision,
		Logger:           logger,
	}
}

// SeedPresets stores every preset definition missing from the catalog and
// returns how many were added. Existing entries are left untouched.
func (h *Handler) SeedPresets(ctx context.Context) (int, error) {
	added := 0
	for _, cfg := range factory.DefaultPresets() {
		def, err := h.ChargeFactory.ParseChargeDefinition(cfg)
		if err != nil {
			return added, err
		}
		_, err = h.Catalog.Get(ctx, def.Identifier)
		if err == nil {
			continue
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return added, err
		}
		if _, err := h.saveDefinition(ctx, def); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// =============================================================================
// WORKFLOW HANDLERS
// =============================================================================

// ListActions returns every workflow action with the accrual cadence the
// calculator uses for it.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	cadences := h.Calculator.Resolver()
	actions := workflow.Actions()
	dtos := make([]ActionDTO, len(actions))
	for i, a := range actions {
		dtos[i] = ActionDTO{Action: a.String()}
		if d, ok := cadences.AccrualCadenceFor(a); ok {
			secs := int64(d / time.Second)
			dtos[i].AccrualCadenceSeconds = &secs
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CHARGE DEFINITION HANDLERS
// =============================================================================

// ListChargeDefinitions returns all catalog entries.
func (h *Handler) ListChargeDefinitions(w http.ResponseWriter, r *http.Request) {
	records, err := h.Catalog.List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list charge definitions", err)
		return
	}

	dtos := make([]ChargeDefinitionDTO, 0, len(records))
	for _, rec := range records {
		dto, err := h.toDefinitionDTO(rec)
		if err != nil {
			h.Logger.Warn("skipping unreadable charge definition", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateChargeDefinition validates and stores a definition. A missing
// identifier is generated.
func (h *Handler) CreateChargeDefinition(w http.ResponseWriter, r *http.Request) {
	var req factory.ChargeDefinitionJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if req.Identifier == "" {
		req.Identifier = uuid.NewString()
	}

	def, err := h.ChargeFactory.FromJSON(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid charge definition", err)
		return
	}

	rec, err := h.saveDefinition(r.Context(), def)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save charge definition", err)
		return
	}
	dto, err := h.toDefinitionDTO(rec)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to read charge definition", err)
		return
	}

	h.Logger.Info("charge definition saved", zap.String("id", rec.ID), zap.Int("version", rec.Version))
	writeJSON(w, http.StatusCreated, dto)
}

// GetChargeDefinition returns one catalog entry.
func (h *Handler) GetChargeDefinition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Catalog.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Charge definition not found", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get charge definition", err)
		return
	}
	dto, err := h.toDefinitionDTO(rec)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to read charge definition", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteChargeDefinition removes one catalog entry.
func (h *Handler) DeleteChargeDefinition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Catalog.Delete(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Charge definition not found", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete charge definition", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// ChargeRate computes the rate of one scheduled charge over its action period.
func (h *Handler) ChargeRate(w http.ResponseWriter, r *http.Request) {
	var req ChargeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	precision, err := h.precision(req.Precision)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid precision", err)
		return
	}

	charges, err := h.ChargeFactory.ScheduledChargesFromJSON(
		[]factory.ScheduledChargeJSON{req.Charge}, h.lookup(r.Context()))
	if err != nil {
		h.writeCalcError(w, err)
		return
	}
	sc := charges[0]

	rate, err := h.Calculator.ChargeAmountPerPeriod(sc, precision)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	flat := !sc.Definition.IsTimeProrated()
	writeJSON(w, http.StatusOK, ChargeRateResponse{
		Rate:      formatRate(rate, precision, flat),
		Precision: precision,
		Flat:      flat,
	})
}

// PeriodRates computes the compounded accrual interest rate of every
// repayment period in the request. Periods are listed chronologically.
func (h *Handler) PeriodRates(w http.ResponseWriter, r *http.Request) {
	var req PeriodRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	precision, err := h.precision(req.Precision)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid precision", err)
		return
	}

	charges, err := h.ChargeFactory.ScheduledChargesFromJSON(req.Charges, h.lookup(r.Context()))
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	rates, err := h.Calculator.PeriodAccrualInterestRates(charges, precision)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PeriodRatesResponse{
		Precision: precision,
		Rates:     toPeriodRateDTOs(rates, precision),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// precision resolves the requested precision, bounded by charge.MaxPrecision.
func (h *Handler) precision(p *int) (int, error) {
	if p == nil {
		return h.DefaultPrecision, nil
	}
	if err := charge.CheckPrecision(*p); err != nil {
		return 0, err
	}
	return *p, nil
}

// lookup resolves definition identifiers against the catalog.
func (h *Handler) lookup(ctx context.Context) factory.DefinitionLookup {
	return func(id string) (charge.ChargeDefinition, error) {
		rec, err := h.Catalog.Get(ctx, id)
		if err != nil {
			return charge.ChargeDefinition{}, fmt.Errorf("%q: %w", id, err)
		}
		return h.ChargeFactory.ParseChargeDefinition(rec.ConfigJSON)
	}
}

func (h *Handler) saveDefinition(ctx context.Context, def charge.ChargeDefinition) (catalog.Record, error) {
	b, err := json.Marshal(h.ChargeFactory.ToJSON(def))
	if err != nil {
		return catalog.Record{}, err
	}
	return h.Catalog.Save(ctx, catalog.Record{
		ID:         def.Identifier,
		Name:       def.Name,
		ConfigJSON: string(b),
	})
}

func (h *Handler) toDefinitionDTO(rec catalog.Record) (ChargeDefinitionDTO, error) {
	def, err := h.ChargeFactory.ParseChargeDefinition(rec.ConfigJSON)
	if err != nil {
		return ChargeDefinitionDTO{}, err
	}
	dto := ChargeDefinitionDTO{
		ID:      rec.ID,
		Name:    rec.Name,
		Config:  h.ChargeFactory.ToJSON(def),
		Version: rec.Version,
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return dto, nil
}

func toPeriodRateDTOs(rates charge.PeriodRates, precision int) []PeriodRateDTO {
	dtos := make([]PeriodRateDTO, 0, len(rates))
	for _, p := range rates.Periods() {
		dtos = append(dtos, PeriodRateDTO{
			RepaymentPeriod: factory.FormatPeriod(p),
			Rate:            rates[p].StringFixed(int32(precision)),
		})
	}
	return dtos
}

// formatRate renders compounded rates with exactly precision digits and flat
// amounts at the scale they were defined with.
func formatRate(d decimal.Decimal, precision int, flat bool) string {
	if !flat {
		return d.StringFixed(int32(precision))
	}
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// statusFor maps calculation errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "Charge definition not found"
	case errors.Is(err, factory.ErrInvalidDefinition), errors.Is(err, factory.ErrInvalidSchedule):
		return http.StatusBadRequest, "Invalid scheduled charge"
	case charge.IsConfigurationError(err):
		return http.StatusUnprocessableEntity, "Charge configuration rejected"
	default:
		return http.StatusInternalServerError, "Failed to compute rate"
	}
}

func (h *Handler) writeCalcError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	h.writeError(w, status, message, err)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
