package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrClientNameRequired = errors.New("client name is required")
	ErrNoBillableItem     = errors.New("at least one line item needs a description and a rate above zero")
	ErrUnknownField       = errors.New("unknown invoice field")
)

// DraftField names an editable header, client or adjustment field
type DraftField string

const (
	FieldClientName    DraftField = "clientName"
	FieldClientEmail   DraftField = "clientEmail"
	FieldClientAddress DraftField = "clientAddress"
	FieldDate          DraftField = "date"
	FieldTax           DraftField = "tax"
	FieldDiscount      DraftField = "discount"
	FieldNotes         DraftField = "notes"
	FieldPaymentLink   DraftField = "paymentLink"
)

// DraftFields lists the editable fields in form order
var DraftFields = []DraftField{
	FieldClientName,
	FieldClientEmail,
	FieldClientAddress,
	FieldDate,
	FieldTax,
	FieldDiscount,
	FieldNotes,
	FieldPaymentLink,
}

// ParseDraftField matches a field name case-insensitively, also accepting
// kebab-case spellings such as "client-name"
func ParseDraftField(s string) (DraftField, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s)))
	for _, f := range DraftFields {
		if strings.ToLower(string(f)) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// InvoiceDraft is the single active, editable invoice.
// Totals are derived from LineItems, Tax and Discount on every call.
type InvoiceDraft struct {
	InvoiceNumber string      `json:"invoiceNumber"`
	ClientName    string      `json:"clientName"`
	ClientEmail   string      `json:"clientEmail"`
	ClientAddress string      `json:"clientAddress"`
	LineItems     []*LineItem `json:"lineItems"`
	Tax           Number      `json:"tax"`      // percent of subtotal
	Discount      Number      `json:"discount"` // percent of subtotal
	Date          Date        `json:"date"`
	Notes         string      `json:"notes"`
	PaymentLink   string      `json:"paymentLink"`
	Generated     bool        `json:"generated,omitempty"`
}

// NewInvoiceDraft creates an empty draft with one default line item
func NewInvoiceDraft(invoiceNumber string, today time.Time) *InvoiceDraft {
	return &InvoiceDraft{
		InvoiceNumber: invoiceNumber,
		LineItems:     []*LineItem{NewLineItem()},
		Tax:           NumberFromInt(0),
		Discount:      NumberFromInt(0),
		Date:          NewDate(today),
	}
}

// AddLineItem appends a default row and returns it
func (d *InvoiceDraft) AddLineItem() *LineItem {
	item := NewLineItem()
	d.LineItems = append(d.LineItems, item)
	return item
}

// RemoveLineItem deletes the row with the given id. The last remaining row
// is never removed. Returns false when nothing changed.
func (d *InvoiceDraft) RemoveLineItem(id string) bool {
	if len(d.LineItems) <= 1 {
		return false
	}
	for i, item := range d.LineItems {
		if item.ID == id {
			d.LineItems = append(d.LineItems[:i:i], d.LineItems[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateLineItem replaces one field of a row. Unknown ids are ignored.
func (d *InvoiceDraft) UpdateLineItem(id string, field LineItemField, value string) bool {
	item := d.FindLineItem(id)
	if item == nil {
		return false
	}
	item.Set(field, value)
	return true
}

// FindLineItem returns the row with the given id or nil
func (d *InvoiceDraft) FindLineItem(id string) *LineItem {
	for _, item := range d.LineItems {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Set replaces a header, client or adjustment field
func (d *InvoiceDraft) Set(field DraftField, value string) error {
	switch field {
	case FieldClientName:
		d.ClientName = value
	case FieldClientEmail:
		d.ClientEmail = value
	case FieldClientAddress:
		d.ClientAddress = value
	case FieldDate:
		date, err := ParseDate(value)
		if err != nil {
			return err
		}
		d.Date = date
	case FieldTax:
		d.Tax = NewNumber(ParseNumber(value))
	case FieldDiscount:
		d.Discount = NewNumber(ParseNumber(value))
	case FieldNotes:
		d.Notes = value
	case FieldPaymentLink:
		d.PaymentLink = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the display value of a field
func (d *InvoiceDraft) Get(field DraftField) string {
	switch field {
	case FieldClientName:
		return d.ClientName
	case FieldClientEmail:
		return d.ClientEmail
	case FieldClientAddress:
		return d.ClientAddress
	case FieldDate:
		return d.Date.String()
	case FieldTax:
		return d.Tax.String()
	case FieldDiscount:
		return d.Discount.String()
	case FieldNotes:
		return d.Notes
	case FieldPaymentLink:
		return d.PaymentLink
	}
	return ""
}

// Subtotal returns the sum of all line amounts
func (d *InvoiceDraft) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.LineItems {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// TaxAmount returns subtotal * tax / 100
func (d *InvoiceDraft) TaxAmount() decimal.Decimal {
	return d.Subtotal().Mul(d.Tax.Decimal).Div(hundred)
}

// DiscountAmount returns subtotal * discount / 100
func (d *InvoiceDraft) DiscountAmount() decimal.Decimal {
	return d.Subtotal().Mul(d.Discount.Decimal).Div(hundred)
}

// Total returns subtotal + tax - discount
func (d *InvoiceDraft) Total() decimal.Decimal {
	return d.Subtotal().Add(d.TaxAmount()).Sub(d.DiscountAmount())
}

// ValidateForSave checks the precondition shared by save and generate
func (d *InvoiceDraft) ValidateForSave() error {
	if strings.TrimSpace(d.ClientName) == "" {
		return ErrClientNameRequired
	}
	return nil
}

// ValidateForGenerate additionally requires one billable line item
func (d *InvoiceDraft) ValidateForGenerate() error {
	if err := d.ValidateForSave(); err != nil {
		return err
	}
	for _, item := range d.LineItems {
		if item.IsBillable() {
			return nil
		}
	}
	return ErrNoBillableItem
}

// Normalize repairs drafts loaded from storage so the line item invariant holds
func (d *InvoiceDraft) Normalize() {
	if len(d.LineItems) == 0 {
		d.LineItems = []*LineItem{NewLineItem()}
	}
	for _, item := range d.LineItems {
		if item.ID == "" {
			item.ID = NewLineItem().ID
		}
	}
}

// Clone returns a deep copy
func (d *InvoiceDraft) Clone() *InvoiceDraft {
	c := *d
	c.LineItems = make([]*LineItem, len(d.LineItems))
	for i, item := range d.LineItems {
		c.LineItems[i] = item.clone()
	}
	return &c
}
