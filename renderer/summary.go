package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/costbasis"
)

// PositionMarkdown renders a position snapshot.
func PositionMarkdown(snap costbasis.PositionSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Position in %s\n\n", snap.Asset)
	if snap.IsZero() {
		fmt.Fprint(&b, "Position is closed.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Quantity | %s |\n", snap.Quantity)
	fmt.Fprintf(&b, "| Cost Basis | %s |\n", snap.CostBasis)
	fmt.Fprintf(&b, "| Average Cost | %s |\n", snap.AverageCost)
	fmt.Fprintf(&b, "| Price | %s |\n", snap.Price)
	fmt.Fprintf(&b, "| Market Value | %s |\n", snap.MarketValue)
	fmt.Fprintf(&b, "| Unrealized Gain | %s |\n", snap.UnrealizedGain.SignedString())
	return b.String()
}

// TaxMarkdown renders the realized gains of every asset and the tax
// estimated on their total. Gains settled in different currencies are
// totalled and taxed separately.
func TaxMarkdown(results []costbasis.AssetResult, rule costbasis.TaxRule) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Tax Estimate\n\n")
	fmt.Fprint(&b, "Illustrative only, not tax advice.\n\n")
	fmt.Fprintln(&b, "| Asset | Sales | Realized |")
	fmt.Fprintln(&b, "|:---|---:|---:|")

	var all []costbasis.RealizedGain
	for _, res := range results {
		all = append(all, res.Records...)
		fmt.Fprintf(&b, "| %s | %d | %s |\n", res.Asset, len(res.Records), signedTotals(costbasis.RealizedByCurrency(res.Records)))
	}
	totals := costbasis.RealizedByCurrency(all)
	for _, total := range totals {
		fmt.Fprintf(&b, "| **%s** | **%d** | **%s** |\n", "Total", sales(all, total.Currency()), total.SignedString())
	}
	fmt.Fprintln(&b)
	if len(totals) == 0 {
		fmt.Fprint(&b, "No realized gain.\n")
	}
	for _, total := range totals {
		fmt.Fprintf(&b, "Estimated tax: **%s**\n", costbasis.EstimateTax(total, rule))
	}
	return b.String()
}

func signedTotals(totals []costbasis.Money) string {
	if len(totals) == 0 {
		return "-"
	}
	s := make([]string, len(totals))
	for i, t := range totals {
		s[i] = t.SignedString()
	}
	return strings.Join(s, ", ")
}

// sales counts the records settled in currency.
func sales(records []costbasis.RealizedGain, currency string) int {
	n := 0
	for _, r := range records {
		if r.Gain.Currency() == currency {
			n++
		}
	}
	return n
}
