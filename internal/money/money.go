// Package money parses catalog price cells and formats totals for display.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is appended to every formatted amount.
const Currency = "원"

var ErrInvalidAmount = errors.New("invalid amount")

// Parse turns a display price such as "10,000" into a decimal.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// Format renders an amount with grouped thousands, e.g. "20,000원".
// Fractional amounts keep up to two digits.
func Format(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	out := sign + group(whole.String())

	frac := d.Sub(whole)
	if !frac.IsZero() {
		// "0.5" -> ".5"
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out + Currency
}

// group inserts a comma every three digits of an unsigned integer string.
// It works on the decimal text so amounts of any size format correctly.
func group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + (n-1)/3)
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
