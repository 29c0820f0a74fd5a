package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/render"
)

var exportCmd = &cobra.Command{
	Use:       "export <pdf|png|html|all>",
	Short:     "Export the active invoice or a saved one",
	ValidArgs: []string{"pdf", "png", "image", "html", "all"},
	Long: `Export the rendered invoice document.

  pdf    A4 pages with the document image
  png    The full document as one image
  html   A standalone HTML file
  all    All three formats

Examples:
  invoicer export pdf
  invoicer export all --out ~/Invoices
  invoicer export html --from-history 3f2a`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			appInstance.Exporter.SetOutputDir(dir)
		}

		page, err := exportSource(ctx, cmd)
		if err != nil {
			return err
		}
		return runExport(ctx, cmd, args[0], page)
	},
}

func exportSource(ctx context.Context, cmd *cobra.Command) (*render.Page, error) {
	ref, _ := cmd.Flags().GetString("from-history")
	if ref == "" {
		return appInstance.RenderCurrent(ctx)
	}
	saved, err := resolveSaved(ctx, ref)
	if err != nil {
		return nil, err
	}
	return appInstance.RenderDraft(saved.Data), nil
}

func runExport(ctx context.Context, cmd *cobra.Command, format string, page *render.Page) error {
	if strings.EqualFold(format, "all") {
		results, err := appInstance.Exporter.ExportAll(ctx, page)
		for _, res := range results {
			printResult(cmd, res)
		}
		return err
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	res := appInstance.Exporter.Export(ctx, f, page)
	printResult(cmd, res)
	return res.Err
}

func printResult(cmd *cobra.Command, res export.Result) {
	status, _ := appInstance.Exporter.Status().Get(res.Format.Operation())
	msg := status.Message
	if res.Err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", msg, res.Err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s (%s)\n", msg, res.Path, humanize.Bytes(uint64(res.Size)))
}

func init() {
	exportCmd.Flags().String("out", "", "output directory (default from config)")
	exportCmd.Flags().String("from-history", "", "export a saved invoice by id or invoice number")
}
