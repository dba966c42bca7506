package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/store"
)

type saveCmd struct {
	asset string
}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "saves realized gains and open lots into the database" }
func (*saveCmd) Usage() string {
	return `cb save [-asset <asset>]

  Matches the ledger and replaces, in the configured SQLite database, the
  realized gains and open lots of every asset, or of a single one.

  Saving twice the same ledger leaves the database unchanged, except for the
  run history.
`
}

func (c *saveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Restrict to a single asset")
}

func (c *saveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var results []costbasis.AssetResult
	if c.asset != "" {
		var res costbasis.AssetResult
		res, err = s.match(c.asset)
		results = append(results, res)
	} else {
		results, err = s.matchAll()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := store.Open(s.cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	for _, res := range results {
		runID, err := db.SaveRun(ctx, res.Asset, res.Records, res.Book)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving %s: %v\n", res.Asset, err)
			return subcommands.ExitFailure
		}
		s.logger.Info("run saved", zap.String("asset", res.Asset), zap.String("run", runID), zap.Int("sales", len(res.Records)))
		fmt.Fprintf(stdout, "%s: saved %d sales and %d open lots (run %s)\n", res.Asset, len(res.Records), res.Book.Len(), runID)
	}
	return subcommands.ExitSuccess
}
