package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/domain"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the active draft to history",
	Long:  `Save a snapshot of the active draft to history. Requires a client name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := appInstance.DraftService.Save(context.Background())
		if err != nil {
			return commitError("save", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s for %s (%s)\n", saved.InvoiceNumber, saved.ClientName, domain.FormatMoney(saved.Total.Decimal))
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Finalize the active draft and save it to history",
	Long: `Generate the invoice: requires a client name and at least one line item
with a description and a rate. The invoice is saved to history and can then
be exported.

Examples:
  invoicer generate
  invoicer generate --export pdf
  invoicer generate --export all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		saved, err := appInstance.DraftService.Generate(ctx)
		if err != nil {
			return commitError("generate", err)
		}
		fmt.Fprintf(out, "✓ Generated %s for %s (%s)\n", saved.InvoiceNumber, saved.ClientName, domain.FormatMoney(saved.Total.Decimal))

		format, _ := cmd.Flags().GetString("export")
		if format == "" {
			fmt.Fprintln(out, "Run 'invoicer export pdf|png|html' to export it.")
			return nil
		}
		return runExport(ctx, cmd, format, appInstance.RenderDraft(saved.Data))
	},
}

func commitError(action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrClientNameRequired):
		return fmt.Errorf("cannot %s: client name is required (invoicer draft set client-name <name>)", action)
	case errors.Is(err, domain.ErrNoBillableItem):
		return fmt.Errorf("cannot %s: add at least one line item with a description and rate", action)
	}
	return fmt.Errorf("failed to %s invoice: %w", action, err)
}

func init() {
	generateCmd.Flags().String("export", "", "export after generating (pdf, png, html or all)")
}
