package calculator

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimals amounts are reported with.
const CurrencyPlaces = 2

var (
	// Epsilon is the smallest amount worth a payment (one cent).
	Epsilon = decimal.New(1, -CurrencyPlaces)

	// halfCent is the rounding slack a single reported balance can carry.
	halfCent = decimal.New(5, -3)

	// sumTolerance bounds |Σ balances| at internal precision.
	sumTolerance = decimal.New(1, -6)
)

// RoundCurrency rounds an internal-precision amount to currency precision.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Balances maps a member name to its net position at internal precision.
// Positive means the group owes the member, negative means the member owes the group.
type Balances map[string]decimal.Decimal

// Rounded returns a copy of the balances rounded to currency precision.
func (b Balances) Rounded() Balances {
	out := make(Balances, len(b))
	for name, v := range b {
		out[name] = RoundCurrency(v)
	}
	return out
}

// Sum returns the sum of all balances.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}
