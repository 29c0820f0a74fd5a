package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved invoices",
	Long: `Manage saved invoices. Entries are referenced by id (a unique prefix
is enough) or by invoice number.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		list, err := appInstance.HistoryService.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No saved invoices. Use 'invoicer save' or 'invoicer generate' to add one.")
			return nil
		}

		fmt.Fprintf(out, "%-8s %-12s %-25s %-12s %12s  %s\n", "ID", "Number", "Client", "Date", "Total", "Saved")
		fmt.Fprintln(out, strings.Repeat("-", 88))
		for _, inv := range list {
			saved := "-"
			if inv.SavedAt != nil {
				saved = humanize.Time(*inv.SavedAt)
			}
			fmt.Fprintf(out, "%-8s %-12s %-25s %-12s %12s  %s\n",
				shortID(inv.ID),
				truncate(inv.InvoiceNumber, 12),
				truncate(inv.ClientName, 25),
				inv.Date.String(),
				domain.FormatMoney(inv.Total.Decimal),
				saved,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id|number>",
	Short: "Print a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := resolveSaved(context.Background(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "History entry %s\n", saved.ID)
		if saved.SavedAt != nil {
			fmt.Fprintf(out, "Saved %s\n", humanize.Time(*saved.SavedAt))
		}
		fmt.Fprintln(out)
		printDraft(out, saved.Data)
		return nil
	},
}

var historyLoadCmd = &cobra.Command{
	Use:   "load <id|number>",
	Short: "Replace the active draft with a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		saved, err := resolveSaved(ctx, args[0])
		if err != nil {
			return err
		}
		d, err := appInstance.DraftService.LoadFromHistory(ctx, saved.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %s for %s into the editor\n", d.InvoiceNumber, valueOr(d.ClientName, "(no client)"))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id|number>",
	Short: "Delete a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		saved, err := resolveSaved(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(cmd, fmt.Sprintf("Delete %s for %s?", saved.InvoiceNumber, saved.ClientName)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err := appInstance.HistoryService.Delete(ctx, saved.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", saved.InvoiceNumber)
		return nil
	},
}

// resolveSaved finds a history entry by id, unique id prefix or invoice
// number. Invoice numbers can repeat, the newest entry wins.
func resolveSaved(ctx context.Context, ref string) (*domain.SavedInvoice, error) {
	list, err := appInstance.HistoryService.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var byPrefix []*domain.SavedInvoice
	for _, inv := range list {
		if inv.ID == ref {
			return inv, nil
		}
		if strings.HasPrefix(inv.ID, ref) {
			byPrefix = append(byPrefix, inv)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}
	for _, inv := range list {
		if strings.EqualFold(inv.InvoiceNumber, ref) {
			return inv, nil
		}
	}
	if len(byPrefix) > 1 {
		return nil, fmt.Errorf("invoice %q is ambiguous", ref)
	}
	return nil, fmt.Errorf("invoice %q not found in history", ref)
}

func init() {
	historyDeleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyLoadCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}
