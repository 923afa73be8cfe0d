package money

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used when reconciling tendered amounts against a
// sale total. It absorbs rounding noise only, never business slack.
var Epsilon = decimal.RequireFromString("0.01")

// DefaultTaxRate is applied when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.17")

// Totals aggregates the computed pricing components of a cart or sale.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Round2 rounds an amount to two decimal places (half away from zero).
// Every externally observable amount goes through this.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotals derives subtotal, tax and total from line totals.
// total = subtotal + tax - discount, clamped to zero.
func ComputeTotals(lineTotals []decimal.Decimal, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	subtotal = Round2(subtotal)
	tax := Round2(subtotal.Mul(taxRate))
	discount = Round2(discount)

	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    Round2(total),
	}
}
