/*
scenarios.go - Worked examples runnable over the API

PURPOSE:

	Provides pre-built charge schedules that demonstrate how the calculator
	prorates, compounds and rejects configurations. Scenarios are computed
	live; nothing is written to the catalog.

AVAILABLE SCENARIOS:

	daily-interest:      12% yearly interest accrued daily over 30 days
	weekly-mismatch:     Weekly accrual over a 10-day action period (rejected)
	compounding:         Two 5% charges in one repayment period
	flat-fee:            Processing fee returned verbatim

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/daily-interest/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with name, description and charges
 2. Override Cadences when the default daily accrual does not apply

SEE ALSO:
  - handlers.go: Handler and rate endpoints
  - factory/charge.go: ScheduledChargeJSON
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/charge-engine/charge"
	"github.com/warp/charge-engine/factory"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario is a fixed schedule computed on demand.
type Scenario struct {
	Name        string
	Description string
	Precision   int
	// Cadences overrides the handler's accrual cadences when non-nil.
	Cadences workflow.CadenceTable
	Charges  []factory.ScheduledChargeJSON
}

var scenarios = []Scenario{
	{
		Name:        "daily-interest",
		Description: "12% yearly interest accrued daily, collected after 30 days",
		Precision:   10,
		Charges: []factory.ScheduledChargeJSON{
			scenarioCharge(yearlyInterest("interest", "0.12"), "2025-01-01", "2025-01-31", 30),
		},
	},
	{
		Name:        "weekly-mismatch",
		Description: "Weekly accrual cannot divide a 10-day action period",
		Precision:   10,
		Cadences:    workflow.CadenceTable{workflow.ActionApplyInterest: 7 * 24 * time.Hour},
		Charges: []factory.ScheduledChargeJSON{
			scenarioCharge(yearlyInterest("interest", "0.12"), "2025-01-01", "2025-01-31", 10),
		},
	},
	{
		Name:        "compounding",
		Description: "Two 5% daily charges in one repayment period compound to 10.25%",
		Precision:   4,
		Charges: []factory.ScheduledChargeJSON{
			scenarioCharge(dailyInterest("penalty-a", "0.05"), "2025-01-01", "2025-01-31", 1),
			scenarioCharge(dailyInterest("penalty-b", "0.05"), "2025-01-01", "2025-01-31", 1),
		},
	},
	{
		Name:        "flat-fee",
		Description: "A fee with no cycle unit is charged verbatim",
		Precision:   10,
		Charges: []factory.ScheduledChargeJSON{
			{
				ChargeDefinition: &factory.ChargeDefinitionJSON{
					Identifier:   "processing-fee",
					Name:         "Processing Fee",
					Amount:       decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
					ChargeAction: string(workflow.ActionDisburse),
				},
				ScheduledAction: factory.ScheduledActionJSON{
					Action:          string(workflow.ActionDisburse),
					RepaymentPeriod: factory.PeriodJSON{Begin: "2025-01-01", End: "2025-01-31"},
				},
			},
		},
	},
}

func yearlyInterest(id, rate string) *factory.ChargeDefinitionJSON {
	return &factory.ChargeDefinitionJSON{
		Identifier:               id,
		Name:                     "Interest",
		Amount:                   decimal.NewNullDecimal(decimal.RequireFromString(rate)),
		ForCycleSizeUnit:         string(charge.UnitYears),
		ChargeAction:             string(workflow.ActionAcceptPayment),
		AccrueAction:             string(workflow.ActionApplyInterest),
		AccrualAccountDesignator: "interest-accrual",
	}
}

func dailyInterest(id, rate string) *factory.ChargeDefinitionJSON {
	d := yearlyInterest(id, rate)
	d.Name = "Penalty"
	d.ForCycleSizeUnit = string(charge.UnitDays)
	return d
}

// scenarioCharge schedules def for payment with an action period of days
// starting at the repayment period's beginning.
func scenarioCharge(def *factory.ChargeDefinitionJSON, begin, end string, days int) factory.ScheduledChargeJSON {
	start, _ := time.Parse(time.DateOnly, begin)
	action := factory.FormatPeriod(charge.PeriodOfDays(start, days))
	return factory.ScheduledChargeJSON{
		ChargeDefinition: def,
		ScheduledAction: factory.ScheduledActionJSON{
			Action:          string(workflow.ActionAcceptPayment),
			RepaymentPeriod: factory.PeriodJSON{Begin: begin, End: end},
			ActionPeriod:    &action,
		},
	}
}

func findScenario(name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunScenario computes a scenario. A rejected configuration is part of the
// result, not a request failure.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "name"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	result, err := h.runScenario(s)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to run scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) runScenario(s Scenario) (ScenarioResultDTO, error) {
	result := ScenarioResultDTO{Name: s.Name, Precision: s.Precision}

	charges, err := h.ChargeFactory.ScheduledChargesFromJSON(s.Charges, nil)
	if err != nil {
		return result, err
	}

	calc := h.Calculator
	if s.Cadences != nil {
		calc = charge.Calculator{Cadences: s.Cadences}
	}

	for _, sc := range charges {
		rate, err := calc.ChargeAmountPerPeriod(sc, s.Precision)
		if err != nil {
			if !charge.IsConfigurationError(err) {
				return result, err
			}
			result.Error = err.Error()
			return result, nil
		}
		result.ChargeRates = append(result.ChargeRates, formatRate(rate, s.Precision, !sc.Definition.IsTimeProrated()))
	}

	rates, err := calc.PeriodAccrualInterestRates(charges, s.Precision)
	if err != nil {
		return result, err
	}
	result.PeriodRates = toPeriodRateDTOs(rates, s.Precision)
	return result, nil
}
