/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DECIMALS:
  Rates and amounts travel as strings so no client parses them into binary
  floating point. Compounded rates carry exactly `precision` fractional
  digits; flat amounts keep the scale they were defined with.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/charge.go: ChargeDefinitionJSON, ScheduledChargeJSON
*/
package api

import "github.com/warp/charge-engine/factory"

// =============================================================================
// WORKFLOW
// =============================================================================

// ActionDTO describes a workflow action and its accrual cadence, if any.
type ActionDTO struct {
	Action                string `json:"action"`
	AccrualCadenceSeconds *int64 `json:"accrual_cadence_seconds,omitempty"`
}

// =============================================================================
// CHARGE DEFINITIONS
// =============================================================================

// ChargeDefinitionDTO represents a catalog entry.
type ChargeDefinitionDTO struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	Config    factory.ChargeDefinitionJSON `json:"config"`
	Version   int                          `json:"version"`
	CreatedAt string                       `json:"created_at,omitempty"`
	UpdatedAt string                       `json:"updated_at,omitempty"`
}

// =============================================================================
// RATES
// =============================================================================

// ChargeRateRequest asks for the rate of one scheduled charge.
type ChargeRateRequest struct {
	Precision *int                        `json:"precision,omitempty"`
	Charge    factory.ScheduledChargeJSON `json:"charge"`
}

// ChargeRateResponse is the rate of one scheduled charge over its action period.
type ChargeRateResponse struct {
	Rate      string `json:"rate"`
	Precision int    `json:"precision"`
	Flat      bool   `json:"flat"`
}

// PeriodRatesRequest asks for per-period accrual interest rates.
type PeriodRatesRequest struct {
	Precision *int                          `json:"precision,omitempty"`
	Charges   []factory.ScheduledChargeJSON `json:"charges"`
}

// PeriodRateDTO is the compounded rate of one repayment period.
type PeriodRateDTO struct {
	RepaymentPeriod factory.PeriodJSON `json:"repayment_period"`
	Rate            string             `json:"rate"`
}

// PeriodRatesResponse lists periods chronologically.
type PeriodRatesResponse struct {
	Precision int             `json:"precision"`
	Rates     []PeriodRateDTO `json:"rates"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a worked example.
type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenarioResultDTO is the outcome of running a scenario. Error is set when
// the scenario demonstrates a rejected configuration.
type ScenarioResultDTO struct {
	Name        string          `json:"name"`
	Precision   int             `json:"precision"`
	ChargeRates []string        `json:"charge_rates,omitempty"`
	PeriodRates []PeriodRateDTO `json:"period_rates,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
