/*
Package charge converts a loan's scheduled charges into effective per-period
rates.

PURPOSE:
  A charge definition quotes a nominal amount over a calendar cycle
  (12% per YEAR). The repayment schedule places that charge on concrete
  action periods (a 30-day payment interval). This package breaks the
  nominal amount down to the accrual granularity (daily), then compounds it
  back up to the action period, producing the rate actually charged.

KEY CONCEPTS IN THIS FILE (types.go):
  - ChargeDefinition: nominal amount, cycle unit, accrual configuration
  - ScheduledAction:  a workflow action placed on the schedule
  - ScheduledCharge:  "this definition applies at this scheduled action"

PIPELINE:
  charges -> IsAccrualInterestCharge -> Partition by repayment period
          -> ChargeAmountPerPeriod per charge -> Compound per group
          -> PeriodRates

DESIGN PRINCIPLES:
  1. Immutability: all inputs are values, nothing is mutated
  2. Precision: decimal.Decimal with half-even rounding at every division
     and every compounding step, never binary floating point
  3. Statelessness: Calculator carries only the injected cadence lookup

USAGE:
  calc := charge.Calculator{Cadences: workflow.DefaultCadences()}
  rates, err := calc.PeriodAccrualInterestRates(charges, 10)
  for _, p := range rates.Periods() {
      fmt.Println(p, rates[p])
  }

SEE ALSO:
  - calculator.go: ChargeAmountPerPeriod and the period aggregator
  - rate.go: compounding and half-even division
  - filter.go: accrual-interest eligibility
*/
package charge

import (
	"github.com/shopspring/decimal"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// CHARGE DEFINITION - Nominal charge configuration
// =============================================================================

// ChargeDefinition describes a charge over one full cycle.
// Empty strings mean "absent".
type ChargeDefinition struct {
	Identifier  string
	Name        string
	Description string

	// Amount is the nominal charge over one full ForCycleSizeUnit.
	Amount decimal.Decimal

	// ForCycleSizeUnit is the cycle the amount is quoted over. UnitNone
	// means a flat charge, independent of period length.
	ForCycleSizeUnit ChronoUnit

	// ChargeAction is the action at which the charge is levied.
	ChargeAction string

	// AccrueAction names the action whose cadence drives accrual.
	AccrueAction string

	// AccrualAccountDesignator is opaque here; only its presence matters.
	AccrualAccountDesignator string
}

// IsTimeProrated reports whether the amount is quoted per cycle.
func (d ChargeDefinition) IsTimeProrated() bool { return d.ForCycleSizeUnit != UnitNone }

// =============================================================================
// SCHEDULED ACTION - A workflow action placed on the repayment schedule
// =============================================================================

type ScheduledAction struct {
	Action workflow.Action

	// RepaymentPeriod groups scheduled actions; treated as an opaque key.
	RepaymentPeriod Period

	// ActionPeriod is the interval the action covers. Nil when the action
	// is instantaneous (disbursement, for example).
	ActionPeriod *Period
}

// =============================================================================
// SCHEDULED CHARGE - Definition applied at a scheduled action
// =============================================================================

type ScheduledCharge struct {
	Definition ChargeDefinition
	Scheduled  ScheduledAction
}

func NewScheduledCharge(def ChargeDefinition, action ScheduledAction) ScheduledCharge {
	return ScheduledCharge{Definition: def, Scheduled: action}
}
