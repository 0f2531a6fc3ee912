// Package cmd provides the invoicepdf commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "invoicepdf",
	Short: "Render invoices and format amounts offline",
	Long: `invoicepdf renders an invoice stored as JSON to a PDF with the same
layout engine the API uses, and formats amounts the way invoices print them.

Example:
  invoicepdf render --invoice invoice.json --settings settings.json --out invoice.pdf
  invoicepdf format 1234.5 --currency EUR`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(formatCmd)
}
