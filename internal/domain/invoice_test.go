package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWithItems(items ...*LineItem) *InvoiceDraft {
	d := NewInvoiceDraft("INV-1001", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	d.LineItems = items
	return d
}

func item(desc, qty, rate string) *LineItem {
	li := NewLineItem()
	li.Description = desc
	li.Quantity = MustNumber(qty)
	li.Rate = MustNumber(rate)
	return li
}

func TestInvoiceDraft_Totals(t *testing.T) {
	tests := []struct {
		name         string
		items        []*LineItem
		tax          string
		discount     string
		wantSubtotal string
		wantTax      string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "tax and discount",
			items:        []*LineItem{item("Design", "2", "50"), item("Build", "1", "100")},
			tax:          "10",
			discount:     "5",
			wantSubtotal: "200",
			wantTax:      "20",
			wantDiscount: "10",
			wantTotal:    "210",
		},
		{
			name:         "single default item",
			items:        []*LineItem{NewLineItem()},
			tax:          "0",
			discount:     "0",
			wantSubtotal: "0",
			wantTax:      "0",
			wantDiscount: "0",
			wantTotal:    "0",
		},
		{
			name:         "fractional quantities stay exact",
			items:        []*LineItem{item("Support", "0.1", "0.2"), item("Support", "0.2", "0.1")},
			tax:          "0",
			discount:     "0",
			wantSubtotal: "0.04",
			wantTax:      "0",
			wantDiscount: "0",
			wantTotal:    "0.04",
		},
		{
			name:         "fractional percentages",
			items:        []*LineItem{item("Hosting", "3", "33.33")},
			tax:          "7.5",
			discount:     "2.5",
			wantSubtotal: "99.99",
			wantTax:      "7.49925",
			wantDiscount: "2.49975",
			wantTotal:    "104.9895",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draftWithItems(tt.items...)
			d.Tax = MustNumber(tt.tax)
			d.Discount = MustNumber(tt.discount)

			assert.True(t, d.Subtotal().Equal(decimal.RequireFromString(tt.wantSubtotal)), "subtotal = %s", d.Subtotal())
			assert.True(t, d.TaxAmount().Equal(decimal.RequireFromString(tt.wantTax)), "tax = %s", d.TaxAmount())
			assert.True(t, d.DiscountAmount().Equal(decimal.RequireFromString(tt.wantDiscount)), "discount = %s", d.DiscountAmount())
			assert.True(t, d.Total().Equal(decimal.RequireFromString(tt.wantTotal)), "total = %s", d.Total())
		})
	}
}

func TestInvoiceDraft_TotalFollowsEdits(t *testing.T) {
	d := draftWithItems(item("Design", "2", "50"))
	require.Equal(t, "$100.00", FormatMoney(d.Total()))

	li := d.AddLineItem()
	d.UpdateLineItem(li.ID, LineItemRate, "25")
	assert.Equal(t, "$125.00", FormatMoney(d.Total()))

	d.UpdateLineItem(li.ID, LineItemQuantity, "4")
	assert.Equal(t, "$200.00", FormatMoney(d.Total()))
	assert.True(t, li.Amount().Equal(decimal.NewFromInt(100)))
}

func TestInvoiceDraft_RemoveLineItem(t *testing.T) {
	a := item("A", "1", "10")
	b := item("B", "1", "20")
	d := draftWithItems(a, b)

	assert.False(t, d.RemoveLineItem("missing"))
	assert.Len(t, d.LineItems, 2)

	assert.True(t, d.RemoveLineItem(a.ID))
	require.Len(t, d.LineItems, 1)
	assert.Equal(t, b.ID, d.LineItems[0].ID)

	// the last row always stays
	assert.False(t, d.RemoveLineItem(b.ID))
	assert.Len(t, d.LineItems, 1)
}

func TestInvoiceDraft_UpdateLineItemUnknownID(t *testing.T) {
	d := draftWithItems(item("A", "1", "10"))
	assert.False(t, d.UpdateLineItem("nope", LineItemRate, "99"))
	assert.True(t, d.Total().Equal(decimal.NewFromInt(10)))
}

func TestInvoiceDraft_MalformedInputBecomesZero(t *testing.T) {
	d := draftWithItems(item("A", "1", "10"))
	id := d.LineItems[0].ID

	d.UpdateLineItem(id, LineItemQuantity, "two")
	assert.True(t, d.LineItems[0].Quantity.IsZero())

	d.UpdateLineItem(id, LineItemRate, "-5")
	assert.True(t, d.LineItems[0].Rate.IsZero())

	require.NoError(t, d.Set(FieldTax, "abc"))
	assert.True(t, d.Tax.IsZero())
}

func TestInvoiceDraft_Validation(t *testing.T) {
	d := draftWithItems(NewLineItem())
	assert.ErrorIs(t, d.ValidateForSave(), ErrClientNameRequired)
	assert.ErrorIs(t, d.ValidateForGenerate(), ErrClientNameRequired)

	d.ClientName = "  "
	assert.ErrorIs(t, d.ValidateForSave(), ErrClientNameRequired)

	d.ClientName = "Acme"
	assert.NoError(t, d.ValidateForSave())
	assert.ErrorIs(t, d.ValidateForGenerate(), ErrNoBillableItem)

	// a description without a rate is still not billable
	d.LineItems[0].Description = "Consulting"
	assert.ErrorIs(t, d.ValidateForGenerate(), ErrNoBillableItem)

	// a rate without a description is not billable either
	d.LineItems[0].Description = ""
	d.LineItems[0].Rate = MustNumber("80")
	assert.ErrorIs(t, d.ValidateForGenerate(), ErrNoBillableItem)

	d.LineItems[0].Description = "Consulting"
	assert.NoError(t, d.ValidateForGenerate())
}

func TestInvoiceDraft_Set(t *testing.T) {
	d := draftWithItems(NewLineItem())

	require.NoError(t, d.Set(FieldClientName, "Acme"))
	require.NoError(t, d.Set(FieldDate, "2026-01-31"))
	require.NoError(t, d.Set(FieldDiscount, "12.5"))
	assert.Equal(t, "Acme", d.Get(FieldClientName))
	assert.Equal(t, "2026-01-31", d.Get(FieldDate))
	assert.Equal(t, "12.5", d.Get(FieldDiscount))

	err := d.Set(FieldDate, "31/01/2026")
	require.Error(t, err)
	assert.Equal(t, "2026-01-31", d.Date.String())

	assert.True(t, errors.Is(d.Set(DraftField("logo"), "x"), ErrUnknownField))
}

func TestParseDraftField(t *testing.T) {
	f, err := ParseDraftField("client-name")
	require.NoError(t, err)
	assert.Equal(t, FieldClientName, f)

	f, err = ParseDraftField("PAYMENTLINK")
	require.NoError(t, err)
	assert.Equal(t, FieldPaymentLink, f)

	_, err = ParseDraftField("total")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestInvoiceDraft_CloneIsDeep(t *testing.T) {
	d := draftWithItems(item("A", "1", "10"))
	c := d.Clone()
	c.LineItems[0].Description = "changed"
	c.AddLineItem()

	assert.Equal(t, "A", d.LineItems[0].Description)
	assert.Len(t, d.LineItems, 1)
}

func TestInvoiceDraft_JSONCompatibility(t *testing.T) {
	// shape written by the browser version of the app
	raw := `{
		"invoiceNumber": "INV-1004",
		"clientName": "Acme",
		"clientEmail": "ap@acme.test",
		"clientAddress": "1 Road\nTown",
		"lineItems": [{"id": "1", "description": "Design", "quantity": 2, "rate": 49.5}],
		"tax": 10,
		"discount": 0,
		"date": "2025-11-03",
		"notes": "",
		"paymentLink": ""
	}`

	var d InvoiceDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "INV-1004", d.InvoiceNumber)
	assert.Equal(t, "2025-11-03", d.Date.String())
	assert.True(t, d.Total().Equal(decimal.RequireFromString("108.9")))

	out, err := json.Marshal(&d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"quantity":2`)
	assert.Contains(t, string(out), `"rate":49.5`)
	assert.Contains(t, string(out), `"date":"2025-11-03"`)
	assert.NotContains(t, string(out), "generated")
}

func TestInvoiceDraft_Normalize(t *testing.T) {
	d := &InvoiceDraft{LineItems: nil}
	d.Normalize()
	require.Len(t, d.LineItems, 1)
	assert.NotEmpty(t, d.LineItems[0].ID)
}
