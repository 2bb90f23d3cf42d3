package tui

import (
	"github.com/andy/billbook/internal/billing"
	"github.com/shopspring/decimal"
)

// formatMoney formats money as "<currency> X,XXX.XX" with comma separators
func formatMoney(currency string, amount decimal.Decimal) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, intPart[i])
	}

	out := string(result) + decPart
	if negative {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}

// formatRate formats a tax percentage, e.g. "10%"
func formatRate(rate decimal.Decimal) string {
	return billing.FormatRate(rate) + "%"
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// clampCursor keeps a list cursor within [0, n)
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// fieldLabel renders a form label, highlighted when focused
func fieldLabel(label string, focused bool) string {
	indicator := "  "
	style := subtitleStyle
	if focused {
		indicator = "> "
		style = titleStyle
	}
	return indicator + style.Render(label)
}
