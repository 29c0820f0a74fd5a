package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SavedInvoice is a frozen history entry
type SavedInvoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	ClientName    string        `json:"clientName"`
	Date          Date          `json:"date"`
	Total         Number        `json:"total"`
	SavedAt       *time.Time    `json:"savedAt,omitempty"`
	Data          *InvoiceDraft `json:"data"`
}

// NewSavedInvoice snapshots the draft and freezes its total
func NewSavedInvoice(d *InvoiceDraft, now time.Time) *SavedInvoice {
	snapshot := d.Clone()
	return &SavedInvoice{
		ID:            uuid.NewString(),
		InvoiceNumber: snapshot.InvoiceNumber,
		ClientName:    snapshot.ClientName,
		Date:          snapshot.Date,
		Total:         NewNumber(snapshot.Total()),
		SavedAt:       &now,
		Data:          snapshot,
	}
}

// FormatInvoiceNumber builds "<prefix><n>", e.g. "INV-1001"
func FormatInvoiceNumber(prefix string, n int64) string {
	return prefix + strconv.FormatInt(n, 10)
}

// ParseInvoiceNumber extracts the counter value from an invoice number.
// Returns false when the number was not produced with the prefix.
func ParseInvoiceNumber(prefix, s string) (int64, bool) {
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(s, prefix), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
