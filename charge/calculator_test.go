package charge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/charge-engine/charge"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func days(begin time.Time, n int) *charge.Period {
	p := charge.PeriodOfDays(begin, n)
	return &p
}

func interestDefinition(amount string, unit charge.ChronoUnit) charge.ChargeDefinition {
	return charge.ChargeDefinition{
		Identifier:               "interest",
		Name:                     "Interest",
		Amount:                   dec(amount),
		ForCycleSizeUnit:         unit,
		ChargeAction:             workflow.ActionAcceptPayment.String(),
		AccrueAction:             workflow.ActionApplyInterest.String(),
		AccrualAccountDesignator: "interest-accrual",
	}
}

func acceptPayment(repayment charge.Period, actionPeriod *charge.Period) charge.ScheduledAction {
	return charge.ScheduledAction{
		Action:          workflow.ActionAcceptPayment,
		RepaymentPeriod: repayment,
		ActionPeriod:    actionPeriod,
	}
}

var (
	jan = charge.PeriodOfDays(date(2025, time.January, 1), 30)
	feb = charge.PeriodOfDays(date(2025, time.January, 31), 30)
	mar = charge.PeriodOfDays(date(2025, time.March, 2), 30)
)

// =============================================================================
// CHARGE AMOUNT PER PERIOD
// =============================================================================

func TestChargeAmountPerPeriod_YearlyRateDailyAccrual(t *testing.T) {
	// GIVEN: 12% per YEAR, daily accrual, 30-day action period, precision 10
	// WHEN: computing the period rate
	// THEN: 0.12/365 = 0.0003287671 compounded 30 times = 0.0099101760

	calc := charge.Calculator{}
	sc := charge.NewScheduledCharge(
		interestDefinition("0.12", charge.UnitYears),
		acceptPayment(jan, days(jan.Begin, 30)),
	)

	got, err := calc.ChargeAmountPerPeriod(sc, 10)

	require.NoError(t, err)
	assertDecimal(t, "0.0099101760", got)
}

func TestChargeAmountPerPeriod_ActionPeriodNotWholeAccrualPeriods(t *testing.T) {
	// GIVEN: weekly accrual cadence over a 10-day action period
	// THEN: 10/7 is not whole at precision 10 -> PrecisionMismatch

	calc := charge.Calculator{Cadences: workflow.CadenceTable{
		workflow.ActionApplyInterest: 7 * 24 * time.Hour,
	}}
	sc := charge.NewScheduledCharge(
		interestDefinition("0.12", charge.UnitYears),
		acceptPayment(jan, days(jan.Begin, 10)),
	)

	_, err := calc.ChargeAmountPerPeriod(sc, 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, charge.ErrPrecisionMismatch)
	assert.True(t, charge.IsConfigurationError(err))

	var mismatch *charge.PrecisionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assertDecimal(t, "864000", mismatch.ActionPeriodSeconds)
	assertDecimal(t, "604800", mismatch.AccrualPeriodSeconds)
	assertDecimal(t, "1.4285714286", mismatch.Quotient)
	assert.Equal(t, 10, mismatch.Precision)
}

func TestChargeAmountPerPeriod_FlatCharge(t *testing.T) {
	// GIVEN: no cycle unit, amount 10.00
	// THEN: amount returned verbatim, whatever the period or precision

	def := charge.ChargeDefinition{Identifier: "processing-fee", Amount: dec("10.00")}
	calc := charge.Calculator{}

	for _, precision := range []int{0, 2, 10, -1} {
		for _, period := range []*charge.Period{nil, days(jan.Begin, 1), days(jan.Begin, 365)} {
			got, err := calc.ChargeAmountPerPeriod(charge.NewScheduledCharge(def, acceptPayment(jan, period)), precision)
			require.NoError(t, err)
			assert.Equal(t, "10.00", got.StringFixed(2))
			assert.True(t, got.Equal(dec("10.00")))
		}
	}
}

func TestChargeAmountPerPeriod_NoAccrueAction_UsesActionPeriod(t *testing.T) {
	// GIVEN: 12% per YEAR with no accrue action, 30-day action period
	// THEN: the action period is the accrual period:
	//   periods in cycle = 31536000/2592000 = 12.1666666667, count = 1
	//   rate = 0.12 / 12.1666666667 = 0.0098630137

	def := interestDefinition("0.12", charge.UnitYears)
	def.AccrueAction = ""

	got, err := charge.Calculator{}.ChargeAmountPerPeriod(
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin, 30))), 10)

	require.NoError(t, err)
	assertDecimal(t, "0.0098630137", got)
}

func TestChargeAmountPerPeriod_ActionWithoutCadence_UsesActionPeriod(t *testing.T) {
	// GIVEN: accrue action ACCEPT_PAYMENT, which has no cadence
	// THEN: same result as no accrue action at all

	def := interestDefinition("0.12", charge.UnitYears)
	def.AccrueAction = workflow.ActionAcceptPayment.String()

	got, err := charge.Calculator{}.ChargeAmountPerPeriod(
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin, 30))), 10)

	require.NoError(t, err)
	assertDecimal(t, "0.0098630137", got)
}

func TestChargeAmountPerPeriod_MonthlyCycle(t *testing.T) {
	// GIVEN: 1% per MONTH (a twelfth of 365 days), daily accrual, 28-day period
	// THEN: 30.4166666667 accruals per month, rate 0.0003287671, 28 compounding steps

	got, err := charge.Calculator{}.ChargeAmountPerPeriod(
		charge.NewScheduledCharge(interestDefinition("0.01", charge.UnitMonths), acceptPayment(feb, days(feb.Begin, 28))), 10)

	require.NoError(t, err)
	assertDecimal(t, "0.0092464529", got)
}

func TestChargeAmountPerPeriod_LowPrecision(t *testing.T) {
	// GIVEN: precision 6 over a 7-day period
	// THEN: 0.12/365 rounds to 0.000329, compounded 7 times = 0.002305

	got, err := charge.Calculator{}.ChargeAmountPerPeriod(
		charge.NewScheduledCharge(interestDefinition("0.12", charge.UnitYears), acceptPayment(jan, days(jan.Begin, 7))), 6)

	require.NoError(t, err)
	assertDecimal(t, "0.002305", got)
}

func TestChargeAmountPerPeriod_Errors(t *testing.T) {
	tests := []struct {
		name     string
		calc     charge.Calculator
		mutate   func(*charge.ScheduledCharge)
		sentinel error
	}{
		{
			name:     "zero action period",
			mutate:   func(sc *charge.ScheduledCharge) { sc.Scheduled.ActionPeriod = days(jan.Begin, 0) },
			sentinel: charge.ErrDivisionByZero,
		},
		{
			name: "zero cadence",
			calc: charge.Calculator{Cadences: workflow.CadenceTable{workflow.ActionApplyInterest: 0}},
			sentinel: charge.ErrDivisionByZero,
		},
		{
			name:     "missing action period",
			mutate:   func(sc *charge.ScheduledCharge) { sc.Scheduled.ActionPeriod = nil },
			sentinel: charge.ErrMissingActionPeriod,
		},
		{
			name:     "unknown accrue action",
			mutate:   func(sc *charge.ScheduledCharge) { sc.Definition.AccrueAction = "ACCRUE_FOREVER" },
			sentinel: charge.ErrUnknownAction,
		},
		{
			name:     "unknown cycle unit",
			mutate:   func(sc *charge.ScheduledCharge) { sc.Definition.ForCycleSizeUnit = "FORTNIGHTS" },
			sentinel: charge.ErrUnknownChronoUnit,
		},
		{
			name:     "reversed action period",
			mutate:   func(sc *charge.ScheduledCharge) { sc.Scheduled.ActionPeriod = &charge.Period{Begin: jan.End, End: jan.Begin} },
			sentinel: charge.ErrInvalidPeriod,
		},
		{
			name: "reversed action period without accrue action",
			mutate: func(sc *charge.ScheduledCharge) {
				sc.Definition.AccrueAction = ""
				sc.Scheduled.ActionPeriod = &charge.Period{Begin: jan.End, End: jan.Begin}
			},
			sentinel: charge.ErrInvalidPeriod,
		},
		{
			name: "reversed action period without cadence",
			calc: charge.Calculator{Cadences: workflow.CadenceTable{}},
			mutate: func(sc *charge.ScheduledCharge) {
				sc.Scheduled.ActionPeriod = &charge.Period{Begin: jan.End, End: jan.Begin}
			},
			sentinel: charge.ErrInvalidPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := charge.NewScheduledCharge(interestDefinition("0.12", charge.UnitYears), acceptPayment(jan, days(jan.Begin, 30)))
			if tt.mutate != nil {
				tt.mutate(&sc)
			}

			_, err := tt.calc.ChargeAmountPerPeriod(sc, 10)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, charge.IsConfigurationError(err))
		})
	}
}

func TestChargeAmountPerPeriod_ZeroPeriodsInCycle(t *testing.T) {
	// GIVEN: a DAYS cycle with weekly accrual at precision 0
	// THEN: 1/7 rounds to 0 accrual periods per cycle -> division by zero

	calc := charge.Calculator{Cadences: workflow.CadenceTable{
		workflow.ActionApplyInterest: 7 * 24 * time.Hour,
	}}
	sc := charge.NewScheduledCharge(interestDefinition("0.01", charge.UnitDays), acceptPayment(jan, days(jan.Begin, 7)))

	_, err := calc.ChargeAmountPerPeriod(sc, 0)

	var zero *charge.ZeroDurationError
	require.ErrorAs(t, err, &zero)
	assert.Equal(t, "accrual periods in cycle", zero.Quantity)
}

func TestChargeAmountPerPeriod_PrecisionOutOfRange(t *testing.T) {
	// GIVEN: precisions that are negative, too large, or wrap when narrowed to int32
	// THEN: rejected rather than computed at a different precision
	sc := charge.NewScheduledCharge(interestDefinition("0.12", charge.UnitYears), acceptPayment(jan, days(jan.Begin, 30)))

	for _, precision := range []int{-1, charge.MaxPrecision + 1, 1<<32 + 2} {
		rate, err := charge.Calculator{}.ChargeAmountPerPeriod(sc, precision)

		assert.ErrorIs(t, err, charge.ErrInvalidPrecision, precision)
		assert.True(t, rate.IsZero(), precision)
	}
}

func TestChargeAmountPerPeriod_CadenceFunc(t *testing.T) {
	// GIVEN: an injected lookup that accrues hourly
	// THEN: 24 compounding steps over one day at 0.12/8760 per hour

	hourly := workflow.CadenceFunc(func(a workflow.Action) (time.Duration, bool) {
		return time.Hour, a == workflow.ActionApplyInterest
	})
	calc := charge.Calculator{Cadences: hourly}
	sc := charge.NewScheduledCharge(interestDefinition("0.12", charge.UnitYears), acceptPayment(jan, days(jan.Begin, 1)))

	got, err := calc.ChargeAmountPerPeriod(sc, 10)

	require.NoError(t, err)
	perHour, err := charge.DivideHalfEven(dec("0.12"), dec("8760"), 10)
	require.NoError(t, err)
	want, err := charge.CompoundRepeated(perHour, 24, 10)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

// =============================================================================
// PERIOD AGGREGATION
// =============================================================================

func TestPeriodAccrualInterestRates_CompoundsWithinPeriod(t *testing.T) {
	// GIVEN: two eligible charges in one period, each 5% per period
	// THEN: 0.1025, not 0.10

	def := interestDefinition("0.05", charge.UnitDays)
	charges := []charge.ScheduledCharge{
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin, 1))),
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin.AddDate(0, 0, 1), 1))),
	}

	rates, err := charge.Calculator{}.PeriodAccrualInterestRates(charges, 4)

	require.NoError(t, err)
	require.Len(t, rates, 1)
	assertDecimal(t, "0.1025", rates[jan])
}

func TestPeriodAccrualInterestRates_GroupsAndFilters(t *testing.T) {
	// GIVEN: Jan with two interest charges, Feb with one,
	//        Mar with only a flat fee and an interest charge at disbursement
	// THEN: Jan and Feb have rates; Mar is absent

	interest := interestDefinition("0.12", charge.UnitYears)
	fee := charge.ChargeDefinition{Identifier: "fee", Amount: dec("10.00"), AccrualAccountDesignator: "fees"}

	charges := []charge.ScheduledCharge{
		charge.NewScheduledCharge(interest, acceptPayment(jan, days(jan.Begin, 30))),
		charge.NewScheduledCharge(fee, acceptPayment(jan, days(jan.Begin, 30))),
		charge.NewScheduledCharge(interest, acceptPayment(feb, days(feb.Begin, 30))),
		charge.NewScheduledCharge(interest, acceptPayment(jan, days(jan.Begin, 30))),
		charge.NewScheduledCharge(fee, acceptPayment(mar, days(mar.Begin, 30))),
		charge.NewScheduledCharge(interest, charge.ScheduledAction{
			Action: workflow.ActionDisburse, RepaymentPeriod: mar, ActionPeriod: days(mar.Begin, 30),
		}),
	}

	rates, err := charge.Calculator{}.PeriodAccrualInterestRates(charges, 10)

	require.NoError(t, err)
	require.Len(t, rates, 2)
	assertDecimal(t, "0.0199185636", rates[jan])
	assertDecimal(t, "0.0099101760", rates[feb])
	_, ok := rates[mar]
	assert.False(t, ok, "period with no eligible charges is absent")

	assert.Equal(t, []charge.Period{jan, feb}, rates.Periods())
}

func TestPeriodAccrualInterestRates_NoEligibleCharges(t *testing.T) {
	rates, err := charge.Calculator{}.PeriodAccrualInterestRates(nil, 10)

	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestPeriodAccrualInterestRates_PropagatesMismatch(t *testing.T) {
	calc := charge.Calculator{Cadences: workflow.CadenceTable{
		workflow.ActionApplyInterest: 7 * 24 * time.Hour,
	}}
	charges := []charge.ScheduledCharge{
		charge.NewScheduledCharge(interestDefinition("0.12", charge.UnitYears), acceptPayment(jan, days(jan.Begin, 10))),
	}

	rates, err := calc.PeriodAccrualInterestRates(charges, 10)

	assert.Nil(t, rates)
	assert.ErrorIs(t, err, charge.ErrPrecisionMismatch)
	assert.Contains(t, err.Error(), jan.String())
}

func TestPeriodAccrualInterestRates_PrecisionOutOfRange(t *testing.T) {
	for _, precision := range []int{-1, charge.MaxPrecision + 1, 1<<32 + 2} {
		_, err := charge.Calculator{}.PeriodAccrualInterestRates(nil, precision)
		assert.ErrorIs(t, err, charge.ErrInvalidPrecision, precision)
	}
}

func TestPeriodAccrualInterestRates_SameDatesDifferentLocation(t *testing.T) {
	// GIVEN: the Jan repayment period once at UTC and once in another
	//        *time.Location naming the same instants, each with a 5% charge
	// THEN: one group compounded to 0.1025

	zone := time.FixedZone("UTC0", 0)
	janElsewhere := charge.Period{Begin: jan.Begin.In(zone), End: jan.End.In(zone)}
	require.True(t, janElsewhere.Begin.Equal(jan.Begin))

	def := interestDefinition("0.05", charge.UnitDays)
	charges := []charge.ScheduledCharge{
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin, 1))),
		charge.NewScheduledCharge(def, acceptPayment(janElsewhere, days(jan.Begin, 1))),
	}

	groups := charge.Partition(charges)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Charges, 2)

	rates, err := charge.Calculator{}.PeriodAccrualInterestRates(charges, 4)

	require.NoError(t, err)
	require.Len(t, rates, 1)
	assertDecimal(t, "0.1025", rates[jan])
}

func TestPartition_FirstAppearanceOrder(t *testing.T) {
	def := interestDefinition("0.12", charge.UnitYears)
	charges := []charge.ScheduledCharge{
		charge.NewScheduledCharge(def, acceptPayment(feb, days(feb.Begin, 30))),
		charge.NewScheduledCharge(def, acceptPayment(jan, days(jan.Begin, 10))),
		charge.NewScheduledCharge(def, acceptPayment(feb, days(feb.Begin, 20))),
	}

	groups := charge.Partition(charges)

	require.Len(t, groups, 2)
	assert.Equal(t, feb, groups[0].Period)
	assert.Equal(t, jan, groups[1].Period)
	require.Len(t, groups[0].Charges, 2)
	assert.Equal(t, 30, groups[0].Charges[0].Scheduled.ActionPeriod.Days())
	assert.Equal(t, 20, groups[0].Charges[1].Scheduled.ActionPeriod.Days())
}
