package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored invoice data",
	Long: `Reset stored invoice data.

Examples:
  invoicer reset draft      # Discard the active draft
  invoicer reset history    # Delete all saved invoices
  invoicer reset all        # Wipe everything, numbering starts over`,
}

var resetDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Discard the active draft and start a new invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, "This will discard the active draft. Continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		d, err := appInstance.DraftService.NewInvoice(context.Background())
		if err != nil {
			return fmt.Errorf("failed to reset draft: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Draft discarded. Started invoice %s.\n", d.InvoiceNumber)
		return nil
	},
}

var resetHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Delete all saved invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, "This will delete ALL saved invoices. Continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err := appInstance.HistoryService.Clear(context.Background()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All saved invoices have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: history, draft and invoice numbering",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, "This will delete ALL data (history, draft, invoice numbering). Continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		ctx := context.Background()

		// numbering must be reset before the new draft peeks at it
		if err := appInstance.HistoryService.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		if err := appInstance.CounterRepo.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset numbering: %w", err)
		}
		d, err := appInstance.DraftService.NewInvoice(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset draft: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "All data has been deleted. Next invoice is %s.\n", d.InvoiceNumber)
		return nil
	},
}

func confirmed(cmd *cobra.Command, message string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	return confirmPrompt(cmd, message)
}

func confirmPrompt(cmd *cobra.Command, message string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", message)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.PersistentFlags().BoolP("yes", "y", false, "skip confirmation")

	resetCmd.AddCommand(resetDraftCmd)
	resetCmd.AddCommand(resetHistoryCmd)
	resetCmd.AddCommand(resetAllCmd)
}
