package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/renderer"
	"github.com/etnz/costbasis/store"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	asset  string
	json   bool
	stored bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains of an asset, matched first-in first-out" }
func (*gainsCmd) Usage() string {
	return `cb gains -asset <asset> [-json] [-stored]

  Matches every sale of the asset against the oldest open lots and displays
  the realized gain of each sale.

Usage Examples:
$ cb gains -asset BTC
$ cb -lenient gains -asset BTC -json
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset to report on (required)")
	f.BoolVar(&c.json, "json", false, "Print the records as JSONL instead of markdown")
	f.BoolVar(&c.stored, "stored", false, "Read the records saved in the database instead of the ledger")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "-asset is required")
		return subcommands.ExitUsageError
	}
	asset := assetName(c.asset)

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var records []costbasis.RealizedGain
	if c.stored {
		records, err = storedGains(ctx, s.cfg.Database, asset)
	} else {
		var res costbasis.AssetResult
		res, err = s.match(asset)
		records = res.Records
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := costbasis.EncodeRealizedGains(stdout, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing records: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.GainsMarkdown(asset, records))
	return subcommands.ExitSuccess
}

func storedGains(ctx context.Context, path, asset string) ([]costbasis.RealizedGain, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if _, err := db.LastRun(ctx, asset); err != nil {
		return nil, err
	}
	return db.RealizedGains(ctx, asset)
}
