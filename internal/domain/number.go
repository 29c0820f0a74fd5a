package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Number is a decimal value that encodes as a bare JSON number.
// Stored drafts written as float values decode into it unchanged.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps a decimal
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// NumberFromInt returns a Number holding i
func NumberFromInt(i int64) Number {
	return Number{Decimal: decimal.NewFromInt(i)}
}

// MustNumber parses s and panics on malformed input. Intended for constants and tests.
func MustNumber(s string) Number {
	return Number{Decimal: decimal.RequireFromString(s)}
}

// MarshalJSON writes the value without quotes
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers, quoted numbers and null
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	return n.Decimal.UnmarshalJSON(data)
}

// ParseNumber converts form input into a non-negative decimal.
// Malformed or negative input becomes zero.
func ParseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
