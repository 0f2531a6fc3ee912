package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"invoice-backend/billing"
	"invoice-backend/models"
	"invoice-backend/pdf"
)

var (
	invoicePath  string
	settingsPath string
	outPath      string
	recompute    bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an invoice JSON file to PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		var inv models.Invoice
		if err := readJSON(invoicePath, &inv); err != nil {
			return err
		}
		if recompute {
			if err := recomputeTotals(&inv); err != nil {
				return err
			}
		}

		var settings *models.Settings
		if settingsPath != "" {
			settings = &models.Settings{}
			if err := readJSON(settingsPath, settings); err != nil {
				return err
			}
		}

		doc, err := pdf.NewRenderer(pdf.WithLogger(slog.Default())).Render(&inv, settings)
		if err != nil {
			return fmt.Errorf("render %s: %w", invoicePath, err)
		}
		if err := os.WriteFile(outPath, doc.Bytes, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}

		for _, w := range doc.Warnings {
			slog.Warn("rendered with warning", "warning", w)
		}
		slog.Info("invoice rendered", "out", outPath, "pages", doc.Pages, "bytes", len(doc.Bytes))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&invoicePath, "invoice", "", "invoice JSON file")
	renderCmd.Flags().StringVar(&settingsPath, "settings", "", "settings JSON file with logo and signature")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "invoice.pdf", "output PDF path")
	renderCmd.Flags().BoolVar(&recompute, "recompute", true, "recompute line totals and totals from the items")
	_ = renderCmd.MarkFlagRequired("invoice")
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func recomputeTotals(inv *models.Invoice) error {
	lines := make([]billing.Line, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = billing.Line{Name: it.ItemName, Quantity: it.Quantity, Price: it.Price}
	}
	res, err := billing.Compute(lines, inv.Discount, inv.TaxPercentage, inv.Currency)
	if err != nil {
		return err
	}
	for i := range inv.Items {
		inv.Items[i].Total = res.LineTotals[i]
	}
	inv.SubTotal = res.Subtotal
	inv.Total = res.Total
	for _, w := range res.Warnings {
		slog.Warn("totals adjusted", "warning", w)
	}
	return nil
}
