/*
calculator.go - Per-period charge rates

PURPOSE:
  Turns a nominal cycle charge into the effective rate for the action
  period it is scheduled on, and aggregates those rates per repayment
  period.

ALGORITHM (ChargeAmountPerPeriod):
  All durations in whole seconds, as decimals.

  accrualPeriodsInCycle        = cycle / accrualPeriod          (half-even)
  accrualPeriodsInActionPeriod = actionPeriod / accrualPeriod   (half-even, must be whole)
  ratePerAccrualPeriod         = amount / accrualPeriodsInCycle (half-even)
  result = Compound(ratePerAccrualPeriod x accrualPeriodsInActionPeriod)

  The accrual period is the cadence of the charge's accrue action. When the
  action has no cadence, or the definition names no accrue action, the
  action period itself is the accrual period.

EXAMPLE:
  12% per YEAR, daily accrual, 30-day action period, precision 10:
    accrualPeriodsInCycle        = 31536000 / 86400 = 365
    accrualPeriodsInActionPeriod = 2592000 / 86400  = 30
    ratePerAccrualPeriod         = 0.12 / 365       = 0.0003287671
    result                       = 0.0099101760

ORDERING:
  Rounding happens at every compounding step, so the fold is not
  associative. Within a repayment period, charges are folded in input
  order. Across periods the order has no numeric effect; PeriodRates.Periods
  returns them chronologically.
*/
package charge

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator holds the injected accrual cadence lookup. The zero value uses
// workflow.DefaultCadences. It keeps no other state and is safe for
// concurrent use.
type Calculator struct {
	Cadences workflow.CadenceResolver
}

// Resolver returns the cadence lookup in effect.
func (c Calculator) Resolver() workflow.CadenceResolver {
	if c.Cadences == nil {
		return workflow.DefaultCadences()
	}
	return c.Cadences
}

// ChargeAmountPerPeriod returns the compounded rate sc charges over its
// action period. Flat charges (no cycle unit) return their amount verbatim.
func (c Calculator) ChargeAmountPerPeriod(sc ScheduledCharge, precision int) (decimal.Decimal, error) {
	def := sc.Definition
	if !def.IsTimeProrated() {
		return def.Amount, nil
	}
	if err := CheckPrecision(precision); err != nil {
		return decimal.Zero, err
	}
	if sc.Scheduled.ActionPeriod == nil {
		return decimal.Zero, fmt.Errorf("charge %q at %s: %w", def.Identifier, sc.Scheduled.Action, ErrMissingActionPeriod)
	}
	if !sc.Scheduled.ActionPeriod.IsValid() {
		return decimal.Zero, fmt.Errorf("charge %q action period %s: %w", def.Identifier, sc.Scheduled.ActionPeriod, ErrInvalidPeriod)
	}

	actionPeriod := seconds(sc.Scheduled.ActionPeriod.Duration())
	if actionPeriod.IsZero() {
		return decimal.Zero, &ZeroDurationError{Quantity: "action period"}
	}

	accrualPeriod, err := c.accrualPeriodSeconds(def, actionPeriod)
	if err != nil {
		return decimal.Zero, err
	}
	if accrualPeriod.IsZero() {
		return decimal.Zero, &ZeroDurationError{Quantity: "accrual period"}
	}

	cycle, err := def.ForCycleSizeUnit.Duration()
	if err != nil {
		return decimal.Zero, err
	}

	periodsInCycle, err := DivideHalfEven(seconds(cycle), accrualPeriod, precision)
	if err != nil {
		return decimal.Zero, err
	}

	periodsInAction, err := DivideHalfEven(actionPeriod, accrualPeriod, precision)
	if err != nil {
		return decimal.Zero, err
	}
	count, ok := exactCount(periodsInAction)
	if !ok {
		return decimal.Zero, &PrecisionMismatchError{
			ActionPeriodSeconds:  actionPeriod,
			AccrualPeriodSeconds: accrualPeriod,
			Quotient:             periodsInAction,
			Precision:            precision,
		}
	}

	if periodsInCycle.IsZero() {
		return decimal.Zero, &ZeroDurationError{Quantity: "accrual periods in cycle"}
	}
	ratePerAccrualPeriod, err := DivideHalfEven(def.Amount, periodsInCycle, precision)
	if err != nil {
		return decimal.Zero, err
	}

	return CompoundRepeated(ratePerAccrualPeriod, count, precision)
}

// accrualPeriodSeconds resolves the accrual granularity, falling back to
// the action period.
func (c Calculator) accrualPeriodSeconds(def ChargeDefinition, actionPeriod decimal.Decimal) (decimal.Decimal, error) {
	if def.AccrueAction == "" {
		return actionPeriod, nil
	}
	action, err := workflow.ParseAction(def.AccrueAction)
	if err != nil {
		return decimal.Zero, fmt.Errorf("charge %q accrue action: %w", def.Identifier, err)
	}
	cadence, ok := c.Resolver().AccrualCadenceFor(action)
	if !ok {
		return actionPeriod, nil
	}
	return seconds(cadence), nil
}

// exactCount accepts non-negative whole numbers that fit an int32.
func exactCount(d decimal.Decimal) (int, bool) {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

func seconds(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second))
}

// =============================================================================
// PERIOD AGGREGATION
// =============================================================================

// PeriodRates maps each repayment period to its compounded accrual rate.
type PeriodRates map[Period]decimal.Decimal

// Periods returns the keys ordered by Begin, then End.
func (r PeriodRates) Periods() []Period {
	periods := make([]Period, 0, len(r))
	for p := range r {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

// Group is the charges of one repayment period, in input order.
type Group struct {
	Period  Period
	Charges []ScheduledCharge
}

// Partition groups charges by repayment period, compared by calendar dates.
// Groups appear in order of first appearance and keep input order within
// each group.
func Partition(charges []ScheduledCharge) []Group {
	index := make(map[Period]int)
	var groups []Group
	for _, sc := range charges {
		key := sc.Scheduled.RepaymentPeriod.Normalized()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Period: key})
		}
		groups[i].Charges = append(groups[i].Charges, sc)
	}
	return groups
}

// PeriodAccrualInterestRates returns, per repayment period, the compounded
// rate of its accrual-interest charges. Periods with no eligible charge are
// absent; no eligible charge at all yields an empty map.
func (c Calculator) PeriodAccrualInterestRates(charges []ScheduledCharge, precision int) (PeriodRates, error) {
	if err := CheckPrecision(precision); err != nil {
		return nil, err
	}

	result := make(PeriodRates)
	for _, g := range Partition(FilterAccrualInterestCharges(charges)) {
		comp, err := NewCompounder(precision)
		if err != nil {
			return nil, err
		}
		for _, sc := range g.Charges {
			rate, err := c.ChargeAmountPerPeriod(sc, precision)
			if err != nil {
				return nil, fmt.Errorf("repayment period %s: %w", g.Period, err)
			}
			comp.Add(rate)
		}
		result[g.Period] = comp.Rate()
	}
	return result, nil
}
