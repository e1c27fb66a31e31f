package utils

import (
	"fmt"
	"math"
)

// FormatINR formats a number in Indian Rupee format (₹12,34,567.89),
// using the Indian numbering system: last 3 digits, then groups of 2.
func FormatINR(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	intPart := int64(amount)
	decStr := fmt.Sprintf("%.2f", amount-float64(intPart))[1:] // ".xx"

	formatted := formatIndianNumber(intPart) + decStr
	if negative {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatPct formats a fractional value as a signed percentage (+12.34%).
func FormatPct(frac float64) string {
	return fmt.Sprintf("%+.2f%%", frac*100)
}

// formatIndianNumber groups an integer Indian-style: 1234567 → "12,34,567".
func formatIndianNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	head := s[:len(s)-3]
	tail := s[len(s)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	out := ""
	for _, g := range groups {
		out += g + ","
	}
	return out + tail
}
