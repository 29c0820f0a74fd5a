package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andy/invoicer/internal/domain"
)

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveItemID accepts a 1-based row number, a full id or a unique id prefix
func resolveItemID(d *domain.InvoiceDraft, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(d.LineItems) {
		return d.LineItems[n-1].ID, nil
	}
	var match string
	for _, item := range d.LineItems {
		if item.ID == ref {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("line item %q is ambiguous", ref)
			}
			match = item.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("line item %q not found", ref)
	}
	return match, nil
}

func printDraft(w io.Writer, d *domain.InvoiceDraft) {
	status := "draft"
	if d.Generated {
		status = "generated"
	}
	fmt.Fprintf(w, "Invoice %s (%s)\n", d.InvoiceNumber, status)
	fmt.Fprintf(w, "Date:     %s\n", d.Date.Display())
	fmt.Fprintf(w, "Client:   %s\n", valueOr(d.ClientName, "(not set)"))
	if d.ClientEmail != "" {
		fmt.Fprintf(w, "Email:    %s\n", d.ClientEmail)
	}
	if d.ClientAddress != "" {
		fmt.Fprintf(w, "Address:  %s\n", strings.ReplaceAll(d.ClientAddress, "\n", ", "))
	}
	if d.PaymentLink != "" {
		fmt.Fprintf(w, "Payment:  %s\n", d.PaymentLink)
	}
	if d.Notes != "" {
		fmt.Fprintf(w, "Notes:    %s\n", strings.ReplaceAll(d.Notes, "\n", " "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-3s %-8s %-30s %8s %12s %12s\n", "#", "ID", "Description", "Qty", "Rate", "Amount")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for i, item := range d.LineItems {
		fmt.Fprintf(w, "%-3d %-8s %-30s %8s %12s %12s\n",
			i+1,
			shortID(item.ID),
			truncate(valueOr(item.Description, "—"), 30),
			item.Quantity.String(),
			domain.FormatMoney(item.Rate.Decimal),
			domain.FormatMoney(item.Amount()),
		)
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))

	fmt.Fprintf(w, "%64s %13s\n", "Subtotal", domain.FormatMoney(d.Subtotal()))
	if d.Tax.IsPositive() {
		fmt.Fprintf(w, "%64s %13s\n", "Tax ("+domain.FormatPercent(d.Tax.Decimal)+"%)", domain.FormatMoney(d.TaxAmount()))
	}
	if d.Discount.IsPositive() {
		fmt.Fprintf(w, "%64s %13s\n", "Discount ("+domain.FormatPercent(d.Discount.Decimal)+"%)", "-"+domain.FormatMoney(d.DiscountAmount()))
	}
	fmt.Fprintf(w, "%64s %13s\n", "Total", domain.FormatMoney(d.Total()))
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
