// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a monetary amount with the given currency symbol,
// two decimals, and comma separators. e.g., 1234567.5 -> "$1,234,567.50"
func FormatMoney(currency string, amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(fixed, ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	out := currency + FormatNumber(n) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatQty formats a quantity trimming trailing zeros.
// e.g., "12.500" -> "12.5", "3.000" -> "3"
func FormatQty(q decimal.Decimal) string {
	s := q.StringFixed(3)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatWeekday returns a 3-letter day abbreviation.
func FormatWeekday(d time.Weekday) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if int(d) >= 0 && int(d) < 7 {
		return days[d]
	}
	return "???"
}

// FormatPeriod renders a month/year pair, e.g. "03/2026".
func FormatPeriod(month, year int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}
