package workflow

import "time"

// =============================================================================
// ACCRUAL CADENCE - How often an action accrues
// =============================================================================

// CadenceResolver returns the accrual cadence attached to an action.
// ok is false when the action has no cadence of its own.
type CadenceResolver interface {
	AccrualCadenceFor(a Action) (cadence time.Duration, ok bool)
}

// CadenceFunc adapts a plain function to CadenceResolver.
type CadenceFunc func(a Action) (time.Duration, bool)

func (f CadenceFunc) AccrualCadenceFor(a Action) (time.Duration, bool) { return f(a) }

// CadenceTable is a fixed lookup table. Missing actions have no cadence.
type CadenceTable map[Action]time.Duration

func (t CadenceTable) AccrualCadenceFor(a Action) (time.Duration, bool) {
	d, ok := t[a]
	return d, ok
}

// DefaultCadences interest accrues daily; no other action carries a cadence.
func DefaultCadences() CadenceTable {
	return CadenceTable{
		ActionApplyInterest: 24 * time.Hour,
	}
}

// Compile-time checks
var (
	_ CadenceResolver = CadenceFunc(nil)
	_ CadenceResolver = CadenceTable(nil)
)
