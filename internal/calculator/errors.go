package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports an expense (or the member list) that cannot contribute to
// balances. No balances are produced when it is returned.
type ValidationError struct {
	// ExpenseID is the offending expense's ID. Empty when the member list itself is invalid.
	ExpenseID string
	// Index is the position of the expense in the input, or -1 for the member list.
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid members: %s", e.Reason)
	}
	if e.ExpenseID == "" {
		return fmt.Sprintf("invalid expense #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid expense %s (#%d): %s", e.ExpenseID, e.Index, e.Reason)
}

// InconsistencyError signals a broken arithmetic postcondition. It is a defect, never a
// user error.
type InconsistencyError struct {
	Op       string
	Residual decimal.Decimal
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: value not conserved (residual %s)", e.Op, e.Residual.String())
}
