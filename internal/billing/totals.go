// Package billing derives invoice money fields from line items.
//
// Values keep full precision; rounding to cents happens only when a value is
// presented (see Round and FormatMoney). Negative quantities or rates are not
// rejected here.
package billing

import (
	"github.com/andy/billbook/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals are the three money fields snapshotted onto an invoice at save time
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal returns quantity × rate
func LineTotal(item domain.LineItem) decimal.Decimal {
	return decimal.NewFromInt(int64(item.Quantity)).Mul(item.Rate)
}

// Subtotal sums the line totals. An empty list is zero.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineTotal(item))
	}
	return sum
}

// TaxAmount returns subtotal × taxRate / 100. taxRate is a percentage.
func TaxAmount(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Shift(-2)
}

// Compute derives subtotal, tax and total for items at taxRate percent
func Compute(items []domain.LineItem, taxRate decimal.Decimal) Totals {
	subtotal := Subtotal(items)
	tax := TaxAmount(subtotal, taxRate)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Apply writes the totals onto inv
func (t Totals) Apply(inv *domain.Invoice) {
	inv.SetTotals(t.Subtotal, t.TaxAmount, t.Total)
}

// Round rounds d to two decimal places (half away from zero)
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatMoney renders d with the currency prefix and exactly two decimals, e.g. "Rs. 2750.00"
func FormatMoney(prefix string, d decimal.Decimal) string {
	s := d.StringFixed(2)
	if prefix == "" {
		return s
	}
	return prefix + " " + s
}

// FormatRate renders a tax percentage without trailing zeros, e.g. "10" or "8.25"
func FormatRate(rate decimal.Decimal) string {
	return rate.String()
}
