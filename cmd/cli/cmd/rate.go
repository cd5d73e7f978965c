// Package cmd - rate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"lanewise/internal/rating"
)

var (
	rateInput      string
	rateFormat     string
	rateFlatInBase bool
)

// rateCmd rates a request from a JSON file with the same calculator the
// server uses.
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate a quote request from a JSON file",
	Long: `Run the premium calculator against a rate request read from a file.

The input file uses the same JSON shape as POST /v1/quotes. No server,
database, or network access is involved; vehicle data lookups are skipped,
so value and safety driven factors fall back to neutral unless the file
supplies them.

Examples:
  lanewise rate --input quote.json
  lanewise rate --input quote.json --format json`,
	RunE: runRate,
}

func init() {
	rateCmd.Flags().StringVarP(&rateInput, "input", "i", "", "rate request JSON file (required)")
	rateCmd.Flags().StringVarP(&rateFormat, "format", "f", "table", "output format (table, json)")
	rateCmd.Flags().BoolVar(&rateFlatInBase, "flat-in-percentage-base", false, "include flat adjustments in the percentage base")
	_ = rateCmd.MarkFlagRequired("input")
}

func runRate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(rateInput)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var req rating.RateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	calc := rating.NewCalculator(rating.Convention{FlatInPercentageBase: rateFlatInBase}, nil, nil)
	breakdown, err := calc.Calculate(context.Background(), req)
	if err != nil {
		return err
	}

	if rateFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(breakdown)
	}
	printBreakdown(breakdown)
	return nil
}

func printBreakdown(b *rating.PremiumBreakdown) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Base premium\t%s\n", money(b.BasePremium))
	for _, f := range b.AllFactors() {
		fmt.Fprintf(w, "  x %s\t%.2f\n", f.Name, f.Value)
	}
	fmt.Fprintf(w, "Subtotal\t%s\n", money(b.Subtotal))

	for _, d := range b.Discounts {
		fmt.Fprintf(w, "  - %s\t%s\n", d.Code, money(d.Amount))
	}
	for _, s := range b.Surcharges {
		fmt.Fprintf(w, "  + %s\t%s\n", s.Code, money(s.Amount))
	}
	fmt.Fprintf(w, "Tax (%s%%)\t%s\n", b.TaxRate.StringFixed(2), money(b.TaxAmount))
	for _, fee := range b.Fees {
		fmt.Fprintf(w, "  + %s\t%s\n", fee.Name, money(fee.Amount))
	}
	fmt.Fprintf(w, "Total\t%s\n", money(b.Total))
	_ = w.Flush()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
