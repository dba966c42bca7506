package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/renderer"
)

type taxCmd struct {
	asset string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "illustrative tax on the realized gains" }
func (*taxCmd) Usage() string {
	return `cb tax [-asset <asset>]

  Totals the realized gains of every asset, or of a single one, and applies
  the tax rule of the configuration file (none, flat or progressive).
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Restrict to a single asset")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rule, err := s.cfg.TaxRule()
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

	printMarkdown(renderer.TaxMarkdown(results, rule))
	return subcommands.ExitSuccess
}
