package calculator

import "github.com/shopspring/decimal"

// MinorUnitPlaces is the number of decimal places of the currency's minor unit.
const MinorUnitPlaces = 2

// Tolerance is the smallest balance worth reporting. Anything below is rounding noise.
var Tolerance = decimal.New(1, -MinorUnitPlaces)

// MaxAmount is the largest amount an expense, split or settlement can hold:
// twelve integer digits and two decimals, the width of the amount columns.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var hundred = decimal.NewFromInt(100)

// Round rounds d to the minor unit using banker's rounding.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MinorUnitPlaces)
}

// IsNegligible reports whether |d| is below Tolerance.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}

// HasMinorPrecision reports whether d has no digits beyond the minor unit.
func HasMinorPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MinorUnitPlaces))
}

// ValidAmount reports whether d is a positive amount within MaxAmount with no
// digits beyond the minor unit.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(MaxAmount) && HasMinorPrecision(d)
}

// SplitTolerance is the allowed gap between an expense total and the sum of its
// n splits: one minor unit per participant beyond the first.
func SplitTolerance(n int) decimal.Decimal {
	if n <= 1 {
		return decimal.Zero
	}
	return Tolerance.Mul(decimal.NewFromInt(int64(n - 1)))
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
