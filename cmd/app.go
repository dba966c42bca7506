// Package cmd implements the CLI application computing FIFO cost basis.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/config"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&assetsCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&positionCmd{}, "reports")
	c.Register(&taxCmd{}, "reports")

	c.Register(&saveCmd{}, "database")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "costbasis.yaml", "Path to the YAML configuration file")
var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var lenient = flag.Bool("lenient", false, "Allow sales exceeding the inventory, matched against a zero-cost lot")
var currency = flag.String("currency", "", "Currency of the ledger rows that do not state one")
var verbose = flag.Bool("v", false, "Verbose logging")
var rawOutput = flag.Bool("raw", false, "Print plain markdown instead of rendering it")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// session is what every subcommand needs: the configuration, the ledger rows and a logger.
type session struct {
	cfg    config.Config
	raw    []costbasis.RawTransaction
	logger *zap.Logger
}

// openSession loads the configuration, applies the command line overrides and decodes the ledger.
func openSession() (*session, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *lenient {
		cfg.AllowNegativeInventory = true
	}
	if *currency != "" {
		cfg.Currency = strings.ToUpper(strings.TrimSpace(*currency))
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	raw, err := DecodeLedger(*ledgerFile, cfg.Currency)
	if err != nil {
		return nil, err
	}
	logger.Debug("ledger loaded", zap.String("file", *ledgerFile), zap.Int("rows", len(raw)))
	return &session{cfg: cfg, raw: raw, logger: logger}, nil
}

func newLogger() (*zap.Logger, error) {
	if *verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// DecodeLedger reads the JSONL ledger at path. Rows without a currency get
// currency.
func DecodeLedger(path, currency string) ([]costbasis.RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening ledger")
	}
	defer f.Close()

	raw, err := costbasis.DecodeTransactions(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %q", path)
	}
	for i := range raw {
		if raw[i].Currency == "" {
			raw[i].Currency = currency
		}
	}
	return raw, nil
}

// matchAll matches every asset of the ledger.
func (s *session) matchAll() ([]costbasis.AssetResult, error) {
	return costbasis.MatchAssets(s.raw, s.cfg.Engine(), s.logger)
}

// match matches a single asset of the ledger.
func (s *session) match(asset string) (costbasis.AssetResult, error) {
	asset = assetName(asset)
	var rows []costbasis.RawTransaction
	for _, r := range s.raw {
		if assetName(r.Asset) == asset {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return costbasis.AssetResult{}, errors.Errorf("no transaction for asset %q in %s", asset, *ledgerFile)
	}
	results, err := costbasis.MatchAssets(rows, s.cfg.Engine(), s.logger)
	if err != nil {
		return costbasis.AssetResult{}, err
	}
	return results[0], nil
}

// assetName is the canonical form of an asset symbol.
func assetName(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// printMarkdown renders md to the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
