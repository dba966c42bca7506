package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/costbasis/renderer"
)

type lotsCmd struct {
	asset string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "open lots of an asset after all its transactions" }
func (*lotsCmd) Usage() string {
	return `cb lots -asset <asset>

  Displays the lots still open once every transaction of the asset has been
  matched, oldest first.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset to report on (required)")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "-asset is required")
		return subcommands.ExitUsageError
	}

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := s.match(c.asset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching lots: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LotsMarkdown(res.Book))
	return subcommands.ExitSuccess
}
