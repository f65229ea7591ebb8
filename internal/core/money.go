// Package core holds the bookkeeping domain model: money in cents,
// calendar-dated revenue entries, receipt items, audit events and the
// summary aggregation over them.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Cents is a monetary amount in minor currency units (1/100). Amounts
// are never negative; derived values that may go below zero (net) are
// plain int64.
type Cents int64

var ErrInvalidAmount = errors.New("invalid amount")

// NewCents rejects negative amounts at construction. Zero is valid: a
// day can legitimately have no cash or no card revenue.
func NewCents(v int64) (Cents, error) {
	if v < 0 {
		return 0, ErrInvalidAmount
	}
	return Cents(v), nil
}

func (c Cents) Validate() error {
	if c < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Cents) Int64() int64 { return int64(c) }

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma
// (12,34) separators are accepted. Negative values are rejected, zero
// is allowed.
func ParseDecimalToCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when scaling to cents.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Cents(iv*100 + fracCents), nil
}

// FormatEuros renders an amount (possibly negative, e.g. a net) as a
// Euro string with a decimal comma, e.g. "-12,34".
func FormatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d,%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
