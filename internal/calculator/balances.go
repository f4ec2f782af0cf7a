package calculator

import (
	"github.com/shopspring/decimal"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	ID           string
	Amount       decimal.Decimal
	Payer        string
	SplitBetween []string
}

// MemberSummary represents the balance information for one group member.
type MemberSummary struct {
	MemberName string
	TotalPaid  decimal.Decimal // Sum of amounts this member paid
	TotalShare decimal.Decimal // Sum of this member's shares of split expenses
	Net        decimal.Decimal // TotalPaid - TotalShare
}

// ComputeBalances reduces a group's members and expenses into one net balance per member.
//
// Algorithm:
//   - Every member starts at zero
//   - For each expense: payer gets +amount, each split member gets -amount/len(split)
//
// All expenses are validated before any of them is applied, so the result is either
// complete or an error. The returned balances are at internal precision; use
// Balances.Rounded for reporting.
func ComputeBalances(members []string, expenses []ExpenseForBalance) (Balances, error) {
	summaries, err := Summarize(members, expenses)
	if err != nil {
		return nil, err
	}

	balances := make(Balances, len(summaries))
	for _, s := range summaries {
		balances[s.MemberName] = s.Net
	}
	return balances, nil
}

// Summarize works like ComputeBalances but keeps paid and owed totals apart and returns
// one entry per member in member order.
func Summarize(members []string, expenses []ExpenseForBalance) ([]MemberSummary, error) {
	index, err := memberIndex(members)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		if err := validateExpense(i, &expenses[i], index); err != nil {
			return nil, err
		}
	}

	summaries := make([]MemberSummary, len(members))
	for i, name := range members {
		summaries[i] = MemberSummary{
			MemberName: name,
			TotalPaid:  decimal.Zero,
			TotalShare: decimal.Zero,
		}
	}

	for _, e := range expenses {
		payer := &summaries[index[e.Payer]]
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.SplitBetween))))
		for _, name := range e.SplitBetween {
			m := &summaries[index[name]]
			m.TotalShare = m.TotalShare.Add(share)
		}
	}

	sum := decimal.Zero
	for i := range summaries {
		summaries[i].Net = summaries[i].TotalPaid.Sub(summaries[i].TotalShare)
		sum = sum.Add(summaries[i].Net)
	}
	if sum.Abs().GreaterThan(sumTolerance) {
		return nil, &InconsistencyError{Op: "compute balances", Residual: sum}
	}

	return summaries, nil
}

// memberIndex maps each member name to its position, rejecting duplicates.
func memberIndex(members []string) (map[string]int, error) {
	index := make(map[string]int, len(members))
	for i, name := range members {
		if _, dup := index[name]; dup {
			return nil, &ValidationError{Index: -1, Reason: "duplicate member " + quote(name)}
		}
		index[name] = i
	}
	return index, nil
}

func validateExpense(i int, e *ExpenseForBalance, members map[string]int) error {
	invalid := func(reason string) error {
		return &ValidationError{ExpenseID: e.ID, Index: i, Reason: reason}
	}

	if !e.Amount.IsPositive() {
		return invalid("amount must be positive, got " + e.Amount.String())
	}
	if _, ok := members[e.Payer]; !ok {
		return invalid("payer " + quote(e.Payer) + " is not a member")
	}
	if len(e.SplitBetween) == 0 {
		return invalid("split_between is empty")
	}

	seen := make(map[string]bool, len(e.SplitBetween))
	for _, name := range e.SplitBetween {
		if _, ok := members[name]; !ok {
			return invalid("split member " + quote(name) + " is not a member")
		}
		if seen[name] {
			return invalid("split member " + quote(name) + " listed twice")
		}
		seen[name] = true
	}
	return nil
}

func quote(s string) string {
	return "'" + s + "'"
}
