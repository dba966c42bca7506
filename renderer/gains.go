// Package renderer formats the engine outputs as markdown.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/costbasis"
)

const timeLayout = "2006-01-02 15:04"

// GainsMarkdown renders the realized gains of one asset.
func GainsMarkdown(asset string, records []costbasis.RealizedGain) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized Gains of %s\n\n", asset)
	fmt.Fprintf(&b, "Method: fifo\n\n")

	if len(records) == 0 {
		fmt.Fprint(&b, "No sale.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Sale | Quantity | Proceeds | Cost Basis | Gain |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, r := range records {
		id := r.TxID
		if r.Flagged() {
			id += " ⚠"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Timestamp.Format(timeLayout),
			id,
			r.Quantity,
			r.Proceeds,
			r.CostBasis,
			r.Gain.SignedString(),
		)
	}
	for _, total := range costbasis.RealizedByCurrency(records) {
		fmt.Fprintf(&b, "| **%s** | | | | | **%s** |\n", "Total", total.SignedString())
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Warnings\n\n")
		flagged := false
		for _, r := range records {
			if r.Flagged() {
				flagged = true
				fmt.Fprintf(w, "- %s: %s short, %s\n", r.TxID, r.Shortfall, r.Warning)
			}
		}
		return flagged
	})

	return b.String()
}

// LotsMarkdown renders the open lots of a book.
func LotsMarkdown(book *costbasis.LotBook) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Lots of %s\n\n", book.Asset())
	if book.Len() == 0 {
		fmt.Fprint(&b, "No open lot.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Acquired | Buy | Remaining | Unit Cost | Cost Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, l := range book.Lots() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			l.Acquired.Format(timeLayout),
			l.BuyID,
			l.Remaining,
			l.UnitCost,
			l.Cost().Round(book.FiatScale()),
		)
	}
	fmt.Fprintf(&b, "| **%s** | | **%s** | | **%s** |\n",
		"Total",
		book.TotalQuantity(),
		book.TotalCost().Round(book.FiatScale()),
	)
	return b.String()
}
