/*
Package factory converts JSON charge configuration into charge values.

PURPOSE:
  Charge definitions live in a catalog as JSON, and repayment schedules
  arrive over the API as JSON. The factory validates both and produces
  charge.ChargeDefinition / charge.ScheduledCharge values, so the
  calculator only ever sees well-formed input.

JSON SCHEMA (charge definition):
  {
    "identifier": "interest",
    "name": "Interest",
    "amount": "0.12",
    "for_cycle_size_unit": "YEARS",
    "charge_action": "ACCEPT_PAYMENT",
    "accrue_action": "APPLY_INTEREST",
    "accrual_account_designator": "interest-accrual"
  }

  "amount" accepts a JSON string or number. Omit "for_cycle_size_unit" for
  a flat charge.

JSON SCHEMA (scheduled charge):
  {
    "charge_definition_id": "interest",          // or an inline "charge_definition"
    "scheduled_action": {
      "action": "ACCEPT_PAYMENT",
      "repayment_period": {"begin": "2025-01-01", "end": "2025-01-31"},
      "action_period":    {"begin": "2025-01-01", "end": "2025-01-31"}
    }
  }

USAGE:
  f := factory.NewChargeFactory()
  def, err := f.ParseChargeDefinition(factory.InterestChargeJSON("interest", "Interest", "0.12"))

SEE ALSO:
  - presets.go: ready-made charge definitions
  - charge/types.go: the produced values
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/charge-engine/charge"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ChargeDefinitionJSON is the JSON representation of a charge definition.
type ChargeDefinitionJSON struct {
	Identifier               string              `json:"identifier"`
	Name                     string              `json:"name"`
	Description              string              `json:"description,omitempty"`
	Amount                   decimal.NullDecimal `json:"amount"`
	ForCycleSizeUnit         string              `json:"for_cycle_size_unit,omitempty"`
	ChargeAction             string              `json:"charge_action,omitempty"`
	AccrueAction             string              `json:"accrue_action,omitempty"`
	AccrualAccountDesignator string              `json:"accrual_account_designator,omitempty"`
}

// PeriodJSON is a date interval in YYYY-MM-DD form.
type PeriodJSON struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// ScheduledActionJSON places a workflow action on the schedule.
type ScheduledActionJSON struct {
	Action          string      `json:"action"`
	RepaymentPeriod PeriodJSON  `json:"repayment_period"`
	ActionPeriod    *PeriodJSON `json:"action_period,omitempty"`
}

// ScheduledChargeJSON references a catalog definition by id or carries it inline.
type ScheduledChargeJSON struct {
	ChargeDefinitionID string                `json:"charge_definition_id,omitempty"`
	ChargeDefinition   *ChargeDefinitionJSON `json:"charge_definition,omitempty"`
	ScheduledAction    ScheduledActionJSON   `json:"scheduled_action"`
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidDefinition wraps every charge definition validation failure.
	ErrInvalidDefinition = errors.New("invalid charge definition")

	// ErrInvalidSchedule wraps every scheduled charge validation failure.
	ErrInvalidSchedule = errors.New("invalid scheduled charge")
)

// DefinitionLookup resolves a charge definition identifier, typically
// against the catalog.
type DefinitionLookup func(id string) (charge.ChargeDefinition, error)

// =============================================================================
// CHARGE FACTORY
// =============================================================================

// ChargeFactory converts JSON charge configuration to charge values.
type ChargeFactory struct{}

func NewChargeFactory() *ChargeFactory {
	return &ChargeFactory{}
}

// ParseChargeDefinition parses and validates a JSON charge definition.
func (f *ChargeFactory) ParseChargeDefinition(jsonStr string) (charge.ChargeDefinition, error) {
	var dj ChargeDefinitionJSON
	if err := json.Unmarshal([]byte(jsonStr), &dj); err != nil {
		return charge.ChargeDefinition{}, fmt.Errorf("failed to parse charge definition JSON: %w", err)
	}
	return f.FromJSON(dj)
}

// FromJSON validates dj and converts it to a charge.ChargeDefinition.
func (f *ChargeFactory) FromJSON(dj ChargeDefinitionJSON) (charge.ChargeDefinition, error) {
	if dj.Identifier == "" {
		return charge.ChargeDefinition{}, fmt.Errorf("%w: identifier is required", ErrInvalidDefinition)
	}
	if !dj.Amount.Valid {
		return charge.ChargeDefinition{}, fmt.Errorf("%w: %q has no amount", ErrInvalidDefinition, dj.Identifier)
	}

	unit, err := charge.ParseChronoUnit(dj.ForCycleSizeUnit)
	if err != nil {
		return charge.ChargeDefinition{}, fmt.Errorf("%w: %q: %w", ErrInvalidDefinition, dj.Identifier, err)
	}

	for _, a := range []string{dj.ChargeAction, dj.AccrueAction} {
		if a == "" {
			continue
		}
		if _, err := workflow.ParseAction(a); err != nil {
			return charge.ChargeDefinition{}, fmt.Errorf("%w: %q: %w", ErrInvalidDefinition, dj.Identifier, err)
		}
	}

	return charge.ChargeDefinition{
		Identifier:               dj.Identifier,
		Name:                     dj.Name,
		Description:              dj.Description,
		Amount:                   dj.Amount.Decimal,
		ForCycleSizeUnit:         unit,
		ChargeAction:             dj.ChargeAction,
		AccrueAction:             dj.AccrueAction,
		AccrualAccountDesignator: dj.AccrualAccountDesignator,
	}, nil
}

// ToJSON converts a charge definition back to its JSON form.
func (f *ChargeFactory) ToJSON(def charge.ChargeDefinition) ChargeDefinitionJSON {
	return ChargeDefinitionJSON{
		Identifier:               def.Identifier,
		Name:                     def.Name,
		Description:              def.Description,
		Amount:                   decimal.NewNullDecimal(def.Amount),
		ForCycleSizeUnit:         string(def.ForCycleSizeUnit),
		ChargeAction:             def.ChargeAction,
		AccrueAction:             def.AccrueAction,
		AccrualAccountDesignator: def.AccrualAccountDesignator,
	}
}

// ScheduledChargesFromJSON converts scheduled charges, preserving order.
// lookup may be nil when every item carries its definition inline.
func (f *ChargeFactory) ScheduledChargesFromJSON(items []ScheduledChargeJSON, lookup DefinitionLookup) ([]charge.ScheduledCharge, error) {
	result := make([]charge.ScheduledCharge, 0, len(items))
	for i, item := range items {
		sc, err := f.scheduledChargeFromJSON(item, lookup)
		if err != nil {
			return nil, fmt.Errorf("charge %d: %w", i, err)
		}
		result = append(result, sc)
	}
	return result, nil
}

func (f *ChargeFactory) scheduledChargeFromJSON(item ScheduledChargeJSON, lookup DefinitionLookup) (charge.ScheduledCharge, error) {
	var def charge.ChargeDefinition
	var err error
	switch {
	case item.ChargeDefinition != nil:
		def, err = f.FromJSON(*item.ChargeDefinition)
	case item.ChargeDefinitionID != "" && lookup != nil:
		def, err = lookup(item.ChargeDefinitionID)
	case item.ChargeDefinitionID != "":
		err = fmt.Errorf("%w: no catalog to resolve %q", ErrInvalidSchedule, item.ChargeDefinitionID)
	default:
		err = fmt.Errorf("%w: charge_definition or charge_definition_id is required", ErrInvalidSchedule)
	}
	if err != nil {
		return charge.ScheduledCharge{}, err
	}

	action, err := f.scheduledActionFromJSON(item.ScheduledAction)
	if err != nil {
		return charge.ScheduledCharge{}, err
	}
	return charge.NewScheduledCharge(def, action), nil
}

func (f *ChargeFactory) scheduledActionFromJSON(aj ScheduledActionJSON) (charge.ScheduledAction, error) {
	action, err := workflow.ParseAction(aj.Action)
	if err != nil {
		return charge.ScheduledAction{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	repayment, err := parsePeriod(aj.RepaymentPeriod)
	if err != nil {
		return charge.ScheduledAction{}, fmt.Errorf("%w: repayment_period: %w", ErrInvalidSchedule, err)
	}

	sa := charge.ScheduledAction{Action: action, RepaymentPeriod: repayment}
	if aj.ActionPeriod != nil {
		p, err := parsePeriod(*aj.ActionPeriod)
		if err != nil {
			return charge.ScheduledAction{}, fmt.Errorf("%w: action_period: %w", ErrInvalidSchedule, err)
		}
		sa.ActionPeriod = &p
	}
	return sa, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePeriod(pj PeriodJSON) (charge.Period, error) {
	begin, err := time.Parse(time.DateOnly, pj.Begin)
	if err != nil {
		return charge.Period{}, fmt.Errorf("begin: %w", err)
	}
	end, err := time.Parse(time.DateOnly, pj.End)
	if err != nil {
		return charge.Period{}, fmt.Errorf("end: %w", err)
	}
	p := charge.NewPeriod(begin, end)
	if !p.IsValid() {
		return charge.Period{}, charge.ErrInvalidPeriod
	}
	return p, nil
}

// FormatPeriod renders a period in the PeriodJSON form.
func FormatPeriod(p charge.Period) PeriodJSON {
	return PeriodJSON{Begin: p.Begin.Format(time.DateOnly), End: p.End.Format(time.DateOnly)}
}
