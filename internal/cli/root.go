package cli

import (
	"github.com/andy/invoicer/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "A terminal invoice builder",
	Long: `Invoicer builds invoices from line items, keeps a history of saved
invoices and exports them as PDF, PNG or standalone HTML.

By default, running invoicer without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE:         launchTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep all data in memory for this run only")

	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
