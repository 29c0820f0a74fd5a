package render

import (
	"strings"

	"github.com/andy/invoicer/internal/domain"
)

// Issuer is the sender identity and fixed copy printed on every invoice
type Issuer struct {
	Name        string
	Address     string
	Email       string
	Intro       string
	Footer      string
	PaymentNote string
}

const (
	clientPlaceholder      = "Client Name"
	descriptionPlaceholder = "—"
)

var itemColumns = []Column{
	{Title: "Description", Align: AlignLeft, Width: 0.46},
	{Title: "Qty", Align: AlignRight, Width: 0.14},
	{Title: "Rate", Align: AlignRight, Width: 0.20},
	{Title: "Amount", Align: AlignRight, Width: 0.20},
}

// Render lays out the draft. It is a pure function of its inputs.
func Render(d *domain.InvoiceDraft, issuer Issuer) *Page {
	page := &Page{
		Width:         PageWidth,
		Padding:       PagePadding,
		InvoiceNumber: d.InvoiceNumber,
		Title:         "Invoice " + d.InvoiceNumber,
	}

	page.Blocks = append(page.Blocks, Block{
		Kind:  BlockHeader,
		Lines: nonEmpty(append(append([]string{issuer.Name}, splitLines(issuer.Address)...), issuer.Email)...),
		Aside: []string{"INVOICE", "Invoice Number", d.InvoiceNumber, d.Date.Display()},
	})

	client := strings.TrimSpace(d.ClientName)
	if client == "" {
		client = clientPlaceholder
	}
	billTo := []string{client}
	if d.ClientEmail != "" {
		billTo = append(billTo, d.ClientEmail)
	}
	billTo = append(billTo, splitLines(d.ClientAddress)...)
	page.Blocks = append(page.Blocks, Block{Kind: BlockBillTo, Title: "Bill To", Lines: billTo})

	if issuer.Intro != "" {
		page.Blocks = append(page.Blocks, Block{Kind: BlockIntro, Lines: []string{issuer.Intro}})
	}

	rows := make([][]string, 0, len(d.LineItems))
	for _, item := range d.LineItems {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			desc = descriptionPlaceholder
		}
		rows = append(rows, []string{
			desc,
			item.Quantity.String(),
			domain.FormatMoney(item.Rate.Decimal),
			domain.FormatMoney(item.Amount()),
		})
	}
	page.Blocks = append(page.Blocks, Block{
		Kind:  BlockItems,
		Table: &Table{Columns: itemColumns, Rows: rows},
	})

	pairs := []Pair{{Label: "Subtotal", Value: domain.FormatMoney(d.Subtotal())}}
	if d.Tax.IsPositive() {
		pairs = append(pairs, Pair{
			Label: "Tax (" + domain.FormatPercent(d.Tax.Decimal) + "%)",
			Value: domain.FormatMoney(d.TaxAmount()),
		})
	}
	if d.Discount.IsPositive() {
		pairs = append(pairs, Pair{
			Label: "Discount (" + domain.FormatPercent(d.Discount.Decimal) + "%)",
			Value: "-" + domain.FormatMoney(d.DiscountAmount()),
		})
	}
	pairs = append(pairs, Pair{Label: "Total", Value: domain.FormatMoney(d.Total()), Emphasis: true})
	page.Blocks = append(page.Blocks, Block{Kind: BlockTotals, Pairs: pairs})

	if link := strings.TrimSpace(d.PaymentLink); link != "" {
		page.Blocks = append(page.Blocks, Block{
			Kind:  BlockPayment,
			Title: "Payment Details",
			Lines: nonEmpty("Payment Link: "+link, issuer.PaymentNote),
			Link:  link,
		})
	}

	if strings.TrimSpace(d.Notes) != "" {
		page.Blocks = append(page.Blocks, Block{Kind: BlockNotes, Title: "Notes", Lines: splitLines(d.Notes)})
	}

	if issuer.Footer != "" {
		page.Blocks = append(page.Blocks, Block{Kind: BlockFooter, Lines: []string{issuer.Footer}})
	}

	return page
}

func splitLines(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func nonEmpty(lines ...string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
