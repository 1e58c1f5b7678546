// Package money holds the decimal helpers shared by pricing, shipping and checkout.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundUnits rounds an amount half away from zero to the given number of
// minor-unit places. The storefront rounds to whole units (places = 0).
func RoundUnits(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}

// ApplyDiscount returns base × (1 − percent/100) without rounding.
func ApplyDiscount(base, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return base
	}
	factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
	return base.Mul(factor)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// LineTotal is unitPrice × quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// MustParse parses a literal amount and panics on malformed input. Intended for
// package-level defaults and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
