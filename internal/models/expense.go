package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Expense represents a cost paid by one member and split equally among some members.
// Expenses are created and deleted, never edited.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Description is a human-readable label (e.g., "Groceries").
	Description string `json:"description"`

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// Payer is the name of the member who paid.
	Payer string `json:"payer"`

	// SplitBetween lists the members who share the cost equally.
	// The payer may or may not be included.
	SplitBetween []string `json:"split_between"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}

// References reports whether the expense mentions member as payer or in its split.
func (e *Expense) References(member string) bool {
	return e.Payer == member || slices.Contains(e.SplitBetween, member)
}
