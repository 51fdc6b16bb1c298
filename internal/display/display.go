// Package display formats amounts and changes for people to read. The HTTP
// handlers and the command line tool share it so both render money the same way.
package display

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money renders amount in currency using its symbol and minor units,
// e.g. "$11,000.00" or "NT$590.00". Unknown currencies fall back to the code.
func Money(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		if currency == "" {
			return amount.StringFixed(2)
		}
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Direction classifies a change for the up/down badge.
func Direction(change decimal.Decimal) string {
	switch change.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "flat"
	}
}

// Percent renders a percentage with two decimals and an explicit sign,
// e.g. "+3.33%" or "-0.93%".
func Percent(pct decimal.Decimal) string {
	s := pct.StringFixed(2) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}
