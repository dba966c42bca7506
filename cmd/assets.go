package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/costbasis"
)

type assetsCmd struct{}

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "lists the assets found in the ledger" }
func (*assetsCmd) Usage() string {
	return `cb assets

  Lists the assets of the ledger with their number of transactions.
`
}

func (c *assetsCmd) SetFlags(f *flag.FlagSet) {}

func (c *assetsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	count := make(map[string]int)
	for _, r := range s.raw {
		count[assetName(r.Asset)]++
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Assets\n\n")
	fmt.Fprintln(&b, "| Asset | Transactions |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, asset := range costbasis.Assets(s.raw) {
		fmt.Fprintf(&b, "| %s | %d |\n", asset, count[asset])
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
