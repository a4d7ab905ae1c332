/*
errors.go - Error types for the charge engine

ERROR CATEGORIES:
  1. Configuration mismatches - the charge definition and the schedule
     disagree (action period not a whole number of accrual periods)
  2. Contract violations - zero durations, missing action periods,
     out-of-range precision
  3. Vocabulary errors - unknown workflow actions or calendar units

  Every error here is deterministic and non-retryable: it describes bad
  input, not a transient condition.

USAGE:
  rate, err := calc.ChargeAmountPerPeriod(sc, 10)
  if errors.Is(err, charge.ErrPrecisionMismatch) {
      var pm *charge.PrecisionMismatchError
      errors.As(err, &pm) // pm.Quotient holds the offending value
  }
*/
package charge

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/charge-engine/workflow"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPrecisionMismatch is returned when the action period is not a whole
	// number of accrual periods at the requested precision.
	ErrPrecisionMismatch = errors.New("action period is not a whole number of accrual periods")

	// ErrDivisionByZero is returned when a divisor (an accrual period, an
	// action period or the accrual periods in a cycle) resolves to zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnknownAction is the workflow sentinel, re-exported for callers that
	// only import this package.
	ErrUnknownAction = workflow.ErrUnknownAction

	// ErrUnknownChronoUnit is returned for an unrecognised cycle size unit.
	ErrUnknownChronoUnit = errors.New("unknown chrono unit")

	// ErrMissingActionPeriod is returned when a time-prorated charge is
	// scheduled without an action period.
	ErrMissingActionPeriod = errors.New("scheduled action has no action period")

	// ErrInvalidPrecision is returned for a precision outside 0..MaxPrecision.
	ErrInvalidPrecision = errors.New("precision out of range")

	// ErrInvalidPeriod is returned when a period ends before it begins.
	ErrInvalidPeriod = errors.New("invalid period: end before begin")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PrecisionMismatchError describes an action period that does not divide
// into accrual periods.
type PrecisionMismatchError struct {
	ActionPeriodSeconds  decimal.Decimal
	AccrualPeriodSeconds decimal.Decimal
	Quotient             decimal.Decimal // rounded half-even to Precision
	Precision            int
}

func (e *PrecisionMismatchError) Error() string {
	return fmt.Sprintf("action period of %ss holds %s accrual periods of %ss at precision %d, want a whole number",
		e.ActionPeriodSeconds, e.Quotient, e.AccrualPeriodSeconds, e.Precision)
}

func (e *PrecisionMismatchError) Unwrap() error {
	return ErrPrecisionMismatch
}

// ZeroDurationError names the quantity that resolved to zero.
type ZeroDurationError struct {
	Quantity string // "action period", "accrual period", "accrual periods in cycle"
}

func (e *ZeroDurationError) Error() string {
	return fmt.Sprintf("division by zero: %s is zero", e.Quantity)
}

func (e *ZeroDurationError) Unwrap() error {
	return ErrDivisionByZero
}

// UnknownChronoUnitError carries the unit text that failed to resolve.
type UnknownChronoUnitError struct {
	Unit string
}

func (e *UnknownChronoUnitError) Error() string {
	return fmt.Sprintf("unknown chrono unit %q", e.Unit)
}

func (e *UnknownChronoUnitError) Unwrap() error {
	return ErrUnknownChronoUnit
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError reports whether err stems from invalid charge or
// schedule input. Such errors never succeed on retry.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrPrecisionMismatch) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrUnknownChronoUnit) ||
		errors.Is(err, ErrMissingActionPeriod) ||
		errors.Is(err, ErrInvalidPrecision) ||
		errors.Is(err, ErrInvalidPeriod)
}
