package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemField names an editable line item field
type LineItemField string

const (
	LineItemDescription LineItemField = "description"
	LineItemQuantity    LineItemField = "quantity"
	LineItemRate        LineItemField = "rate"
)

// ParseLineItemField validates a field name typed by the user
func ParseLineItemField(s string) (LineItemField, error) {
	switch f := LineItemField(strings.ToLower(strings.TrimSpace(s))); f {
	case LineItemDescription, LineItemQuantity, LineItemRate:
		return f, nil
	}
	return "", fmt.Errorf("unknown line item field %q (expected description, quantity or rate)", s)
}

type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	Rate        Number `json:"rate"`
}

// NewLineItem creates an empty row with quantity 1 and rate 0
func NewLineItem() *LineItem {
	return &LineItem{
		ID:       uuid.NewString(),
		Quantity: NumberFromInt(1),
		Rate:     NumberFromInt(0),
	}
}

// Amount returns quantity * rate
func (li *LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.Rate.Decimal)
}

// IsBillable reports whether the row has a description and a positive rate
func (li *LineItem) IsBillable() bool {
	return strings.TrimSpace(li.Description) != "" && li.Rate.IsPositive()
}

// Set replaces one field. Numeric values go through ParseNumber.
func (li *LineItem) Set(field LineItemField, value string) {
	switch field {
	case LineItemDescription:
		li.Description = value
	case LineItemQuantity:
		li.Quantity = NewNumber(ParseNumber(value))
	case LineItemRate:
		li.Rate = NewNumber(ParseNumber(value))
	}
}

func (li *LineItem) clone() *LineItem {
	c := *li
	return &c
}
