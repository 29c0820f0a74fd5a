package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/domain"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Show and edit the active invoice",
	Long:  `Show and edit the active invoice draft. Every change is saved immediately.`,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active draft with its totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := appInstance.DraftService.Current(context.Background())
		if err != nil {
			return err
		}
		printDraft(cmd.OutOrStdout(), d)
		return nil
	},
}

var draftNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Discard the active draft and start a new invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := appInstance.DraftService.NewInvoice(context.Background())
		if err != nil {
			return fmt.Errorf("failed to start new invoice: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started invoice %s\n", d.InvoiceNumber)
		return nil
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a header, client or adjustment field",
	Long: `Set a header, client or adjustment field of the active draft.

Fields: client-name, client-email, client-address, date, tax, discount, notes, payment-link

Examples:
  invoicer draft set client-name "Acme Corp"
  invoicer draft set date 2026-03-01
  invoicer draft set tax 8.25`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := domain.ParseDraftField(args[0])
		if err != nil {
			return err
		}
		value := strings.Join(args[1:], " ")

		d, err := appInstance.DraftService.SetField(context.Background(), field, value)
		if err != nil {
			return fmt.Errorf("failed to set %s: %w", field, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s (total %s)\n", field, d.Get(field), domain.FormatMoney(d.Total()))
		return nil
	},
}

var draftAddItemCmd = &cobra.Command{
	Use:   "add-item [description]",
	Short: "Append a line item",
	Long: `Append a line item. Without flags the row starts with quantity 1 and rate 0.

Example:
  invoicer draft add-item "Logo design" --qty 2 --rate 150`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		item, err := appInstance.DraftService.AddLineItem(ctx)
		if err != nil {
			return fmt.Errorf("failed to add line item: %w", err)
		}

		updates := map[domain.LineItemField]string{}
		if len(args) > 0 {
			updates[domain.LineItemDescription] = strings.Join(args, " ")
		}
		if cmd.Flags().Changed("qty") {
			updates[domain.LineItemQuantity], _ = cmd.Flags().GetString("qty")
		}
		if cmd.Flags().Changed("rate") {
			updates[domain.LineItemRate], _ = cmd.Flags().GetString("rate")
		}

		d, err := appInstance.DraftService.Current(ctx)
		if err != nil {
			return err
		}
		for _, field := range []domain.LineItemField{domain.LineItemDescription, domain.LineItemQuantity, domain.LineItemRate} {
			value, ok := updates[field]
			if !ok {
				continue
			}
			if d, err = appInstance.DraftService.UpdateLineItem(ctx, item.ID, field, value); err != nil {
				return fmt.Errorf("failed to update line item: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added line item #%d (%s), total %s\n", len(d.LineItems), shortID(item.ID), domain.FormatMoney(d.Total()))
		return nil
	},
}

var draftUpdateItemCmd = &cobra.Command{
	Use:   "update-item <row|id> <field> <value>",
	Short: "Change the description, quantity or rate of a line item",
	Long: `Change one field of a line item. The item is referenced by its row
number from 'draft show' or by its id (a unique prefix is enough).

Example:
  invoicer draft update-item 2 rate 95.50`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		field, err := domain.ParseLineItemField(args[1])
		if err != nil {
			return err
		}
		d, err := appInstance.DraftService.Current(ctx)
		if err != nil {
			return err
		}
		id, err := resolveItemID(d, args[0])
		if err != nil {
			return err
		}

		d, err = appInstance.DraftService.UpdateLineItem(ctx, id, field, strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to update line item: %w", err)
		}
		item := d.FindLineItem(id)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Line item %s: %s x %s = %s (total %s)\n",
			shortID(id),
			item.Quantity.String(),
			domain.FormatMoney(item.Rate.Decimal),
			domain.FormatMoney(item.Amount()),
			domain.FormatMoney(d.Total()),
		)
		return nil
	},
}

var draftRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <row|id>",
	Short: "Remove a line item (the last remaining item is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		d, err := appInstance.DraftService.Current(ctx)
		if err != nil {
			return err
		}
		id, err := resolveItemID(d, args[0])
		if err != nil {
			return err
		}
		before := len(d.LineItems)

		d, err = appInstance.DraftService.RemoveLineItem(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to remove line item: %w", err)
		}
		if len(d.LineItems) == before {
			fmt.Fprintln(cmd.OutOrStdout(), "An invoice needs at least one line item; nothing removed.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed line item %s, total %s\n", shortID(id), domain.FormatMoney(d.Total()))
		return nil
	},
}

func init() {
	draftAddItemCmd.Flags().String("qty", "", "quantity")
	draftAddItemCmd.Flags().String("rate", "", "rate per unit")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftNewCmd)
	draftCmd.AddCommand(draftSetCmd)
	draftCmd.AddCommand(draftAddItemCmd)
	draftCmd.AddCommand(draftUpdateItemCmd)
	draftCmd.AddCommand(draftRemoveItemCmd)
}
