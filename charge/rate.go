package charge

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPrecision bounds the fractional digits any rate is computed with.
const MaxPrecision = 64

// CheckPrecision rejects a precision outside 0..MaxPrecision.
func CheckPrecision(precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return fmt.Errorf("%w: %d, want 0..%d", ErrInvalidPrecision, precision, MaxPrecision)
	}
	return nil
}

// =============================================================================
// COMPOUNDING - Effective rate of sequential sub-period rates
// =============================================================================

var one = decimal.NewFromInt(1)

// Compounder folds rates one at a time:
//
//	acc = round_half_even((1 + acc) * (1 + r) - 1, precision)
//
// Rounding after every step makes the fold order-sensitive, so callers must
// feed rates in schedule order.
type Compounder struct {
	precision int32
	acc       decimal.Decimal
}

func NewCompounder(precision int) (*Compounder, error) {
	if err := CheckPrecision(precision); err != nil {
		return nil, err
	}
	return &Compounder{precision: int32(precision), acc: decimal.Zero}, nil
}

// Add folds one more sub-period rate into the accumulator.
func (c *Compounder) Add(rate decimal.Decimal) {
	c.acc = one.Add(c.acc).Mul(one.Add(rate)).Sub(one).RoundBank(c.precision)
}

// Rate returns the compounded rate so far. Zero before any Add.
func (c *Compounder) Rate() decimal.Decimal { return c.acc }

// Compound combines rates in slice order.
func Compound(rates []decimal.Decimal, precision int) (decimal.Decimal, error) {
	c, err := NewCompounder(precision)
	if err != nil {
		return decimal.Zero, err
	}
	for _, r := range rates {
		c.Add(r)
	}
	return c.Rate(), nil
}

// CompoundRepeated compounds the same rate count times.
func CompoundRepeated(rate decimal.Decimal, count, precision int) (decimal.Decimal, error) {
	c, err := NewCompounder(precision)
	if err != nil {
		return decimal.Zero, err
	}
	for i := 0; i < count; i++ {
		c.Add(rate)
	}
	return c.Rate(), nil
}

// =============================================================================
// DIVISION - Exact quotient rounded half-to-even
// =============================================================================

// DivideHalfEven returns d / d2 rounded half-to-even to precision places.
// decimal.DivRound rounds half away from zero, so the tie is resolved here
// from the exact remainder.
func DivideHalfEven(d, d2 decimal.Decimal, precision int) (decimal.Decimal, error) {
	if err := CheckPrecision(precision); err != nil {
		return decimal.Zero, err
	}
	if d2.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	places := int32(precision)

	// q is truncated toward zero; |r| < |d2| * 10^-places
	q, r := d.QuoRem(d2, places)
	if r.IsZero() {
		return q, nil
	}

	ulp := decimal.New(1, -places)
	cmp := r.Abs().Add(r.Abs()).Cmp(d2.Abs().Mul(ulp))
	if cmp > 0 || (cmp == 0 && isOddAt(q, places)) {
		if d.Sign()*d2.Sign() < 0 {
			return q.Sub(ulp), nil
		}
		return q.Add(ulp), nil
	}
	return q, nil
}

// isOddAt reports whether the last digit of q at places is odd.
func isOddAt(q decimal.Decimal, places int32) bool {
	return !q.Shift(places).Mod(decimal.NewFromInt(2)).IsZero()
}
