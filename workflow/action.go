/*
Package workflow holds the loan workflow vocabulary the charge engine
compares against.

PURPOSE:
  The loan workflow is a state machine owned elsewhere. The charge engine
  only needs two things from it:
  - a closed set of action identifiers (Action)
  - the accrual cadence attached to some of those actions (CadenceResolver)

  Both are modelled as plain values so the charge core never depends on the
  state machine itself.

ACTIONS (workflow order):
  OPEN, DENY, APPROVE, DISBURSE, APPLY_INTEREST, ACCEPT_PAYMENT,
  MARK_LATE, WRITE_OFF, CLOSE, RECOVER

USAGE:
  action, err := workflow.ParseAction("APPLY_INTEREST")
  if err != nil {
      // errors.Is(err, workflow.ErrUnknownAction)
  }

  cadence, ok := workflow.DefaultCadences().AccrualCadenceFor(action)
  // cadence == 24h, ok == true

SEE ALSO:
  - cadence.go: accrual cadence lookup
  - charge/calculator.go: the consumer of both
*/
package workflow

import (
	"errors"
	"fmt"
)

// =============================================================================
// ACTION - Closed set of workflow steps
// =============================================================================

// Action identifies a discrete step in the loan workflow.
type Action string

const (
	ActionOpen          Action = "OPEN"
	ActionDeny          Action = "DENY"
	ActionApprove       Action = "APPROVE"
	ActionDisburse      Action = "DISBURSE"
	ActionApplyInterest Action = "APPLY_INTEREST"
	ActionAcceptPayment Action = "ACCEPT_PAYMENT"
	ActionMarkLate      Action = "MARK_LATE"
	ActionWriteOff      Action = "WRITE_OFF"
	ActionClose         Action = "CLOSE"
	ActionRecover       Action = "RECOVER"
)

var actions = []Action{
	ActionOpen,
	ActionDeny,
	ActionApprove,
	ActionDisburse,
	ActionApplyInterest,
	ActionAcceptPayment,
	ActionMarkLate,
	ActionWriteOff,
	ActionClose,
	ActionRecover,
}

func (a Action) String() string { return string(a) }

// Actions returns every known action in workflow order.
func Actions() []Action {
	result := make([]Action, len(actions))
	copy(result, actions)
	return result
}

// IsValid reports whether a is one of the known actions.
func (a Action) IsValid() bool {
	for _, known := range actions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAction maps an identifier to its Action. The match is exact and
// case-sensitive, the same way stored charge definitions spell them.
func ParseAction(id string) (Action, error) {
	a := Action(id)
	if !a.IsValid() {
		return "", &UnknownActionError{Identifier: id}
	}
	return a, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnknownAction is returned when an identifier names no workflow action.
var ErrUnknownAction = errors.New("unknown workflow action")

// UnknownActionError carries the identifier that failed to resolve.
type UnknownActionError struct {
	Identifier string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown workflow action %q", e.Identifier)
}

func (e *UnknownActionError) Unwrap() error {
	return ErrUnknownAction
}
