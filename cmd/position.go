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

type positionCmd struct {
	asset     string
	price     string
	priceFile string
	pricePath string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "values the open position of an asset at a given price" }
func (*positionCmd) Usage() string {
	return `cb position -asset <asset> (-price <price> | -price-file <file> -price-path <jsonpath>)

  Values the remaining lots of the asset at the given market price and
  displays the unrealized gain.

  The price is either given directly, or extracted from a JSON quote document,
  for instance the answer of a quote API saved to a file.

Usage Examples:
$ cb position -asset BTC -price 42000
$ cb position -asset BTC -price-file quote.json -price-path '$.bitcoin.eur'
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset to value (required)")
	f.StringVar(&c.price, "price", "", "Market price of one unit")
	f.StringVar(&c.priceFile, "price-file", "", "JSON document containing the market price")
	f.StringVar(&c.pricePath, "price-path", "", "JSONPath of the price in -price-file")
}

func (c *positionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "-asset is required")
		return subcommands.ExitUsageError
	}
	if (c.price == "") == (c.priceFile == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -price and -price-file is required")
		return subcommands.ExitUsageError
	}
	if c.priceFile != "" && c.pricePath == "" {
		fmt.Fprintln(os.Stderr, "-price-path is required with -price-file")
		return subcommands.ExitUsageError
	}

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	price, err := c.readPrice(s.cfg.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading price: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, err := s.match(c.asset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching lots: %v\n", err)
		return subcommands.ExitFailure
	}

	snap, err := costbasis.ValuePosition(res.Book, price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing position: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.PositionMarkdown(snap))
	return subcommands.ExitSuccess
}

func (c *positionCmd) readPrice(currency string) (costbasis.Money, error) {
	if c.price != "" {
		return costbasis.ParsePrice(c.price, currency)
	}
	f, err := os.Open(c.priceFile)
	if err != nil {
		return costbasis.Money{}, err
	}
	defer f.Close()
	return costbasis.PriceFromJSON(f, c.pricePath, currency)
}
