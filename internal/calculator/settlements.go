package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Settlement is a single planned payment from a debtor to a creditor.
type Settlement struct {
	From   string          // Person who owes
	To     string          // Person who is owed
	Amount decimal.Decimal // Rounded to currency precision, always > Epsilon
}

// party is a debtor or creditor with the magnitude still to be settled.
type party struct {
	name      string
	remaining decimal.Decimal
}

// PlanSettlements turns net balances into an ordered list of payments that zeroes them.
//
// Greedy two-pointer matching: debtors are walked largest debt first, creditors largest
// credit first, and each step moves min(debt, credit). Balances within Epsilon of zero
// are ignored and transfers that round to a cent or less are not emitted. The output is
// deterministic for a given mapping and contains at most n-1 payments.
//
// If what is left once either side is exhausted cannot be explained by the amounts
// ignored on the other side, the input did not conserve value and an
// *InconsistencyError is returned.
func PlanSettlements(balances Balances) ([]Settlement, error) {
	settlements := []Settlement{}

	var debtors, creditors []party
	droppedDebt, droppedCredit := decimal.Zero, decimal.Zero
	nonZero := 0
	for name, b := range balances {
		if !b.IsZero() {
			nonZero++
		}
		switch {
		case b.LessThan(Epsilon.Neg()):
			debtors = append(debtors, party{name: name, remaining: b.Neg()})
		case b.GreaterThan(Epsilon):
			creditors = append(creditors, party{name: name, remaining: b})
		case b.IsNegative():
			droppedDebt = droppedDebt.Add(b.Neg())
		default:
			droppedCredit = droppedCredit.Add(b)
		}
	}

	// Largest magnitude first on both sides, ties by name.
	byMagnitude := func(a, b party) int {
		if c := b.remaining.Cmp(a.remaining); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	}
	slices.SortFunc(debtors, byMagnitude)
	slices.SortFunc(creditors, byMagnitude)

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		if rounded := RoundCurrency(amount); rounded.GreaterThan(Epsilon) {
			settlements = append(settlements, Settlement{
				From:   debtor.name,
				To:     creditor.name,
				Amount: rounded,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThan(Epsilon) {
			droppedDebt = droppedDebt.Add(debtor.remaining)
			i++
		}
		if creditor.remaining.LessThan(Epsilon) {
			droppedCredit = droppedCredit.Add(creditor.remaining)
			j++
		}
	}

	leftoverDebt := sumRemaining(debtors[i:])
	leftoverCredit := sumRemaining(creditors[j:])
	residual := leftoverCredit.Add(droppedCredit).Sub(leftoverDebt).Sub(droppedDebt)
	if residual.Abs().GreaterThan(planTolerance(nonZero)) {
		return nil, &InconsistencyError{Op: "plan settlements", Residual: residual}
	}

	return settlements, nil
}

// planTolerance is the imbalance allowed across n non-zero balances. Each may already be
// rounded to currency precision and carry half a cent; a zero balance carries nothing.
func planTolerance(n int) decimal.Decimal {
	return decimal.Max(Epsilon, halfCent.Mul(decimal.NewFromInt(int64(n))))
}

func sumRemaining(parties []party) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range parties {
		sum = sum.Add(p.remaining)
	}
	return sum
}
