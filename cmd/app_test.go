package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/costbasis"
)

const testLedger = `{"id":"b1","asset":"btc","time":"2024-01-01T00:00:00Z","kind":"buy","quantity":1,"amount":20000}
{"id":"b2","asset":"BTC","time":"2024-01-02T00:00:00Z","kind":"buy","quantity":1,"amount":30000}
{"id":"s1","asset":"BTC","time":"2024-01-03T00:00:00Z","kind":"sell","quantity":1.5,"amount":45000}
{"id":"e1","asset":"ETH","time":"2024-01-01T00:00:00Z","kind":"buy","quantity":10,"amount":1000}
{"id":"e2","asset":"ETH","time":"2024-01-05T00:00:00Z","kind":"sell","quantity":4,"amount":600}
`

// setup points the global flags to a temporary workspace and captures the output.
func setup(t *testing.T, ledger, config string) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()

	ledgerPath := filepath.Join(dir, "transactions.jsonl")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(ledger), 0644))
	configPath := filepath.Join(dir, "costbasis.yaml")
	config = "database: " + filepath.Join(dir, "costbasis.db") + "\n" + config
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	out := &bytes.Buffer{}
	saved := struct {
		config, ledger, currency string
		lenient, raw             bool
		stdout                   io.Writer
	}{*configFile, *ledgerFile, *currency, *lenient, *rawOutput, stdout}
	t.Cleanup(func() {
		*configFile, *ledgerFile, *currency = saved.config, saved.ledger, saved.currency
		*lenient, *rawOutput = saved.lenient, saved.raw
		stdout = saved.stdout
	})

	*configFile, *ledgerFile, *currency = configPath, ledgerPath, "EUR"
	*lenient, *rawOutput = false, true
	stdout = out
	return out
}

// run executes cmd with the command line args.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestAssets(t *testing.T) {
	out := setup(t, testLedger, "")
	require.Equal(t, subcommands.ExitSuccess, run(t, &assetsCmd{}))
	assert.Contains(t, out.String(), "| BTC | 3 |")
	assert.Contains(t, out.String(), "| ETH | 2 |")
}

func TestGains_JSON(t *testing.T) {
	out := setup(t, testLedger, "")
	require.Equal(t, subcommands.ExitSuccess, run(t, &gainsCmd{}, "-asset", "btc", "-json"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"id":"s1"`)
	assert.Contains(t, lines[0], `"gain":10000`)
	assert.Contains(t, lines[0], `"currency":"EUR"`)
}

func TestGains_RequiresAsset(t *testing.T) {
	setup(t, testLedger, "")
	assert.Equal(t, subcommands.ExitUsageError, run(t, &gainsCmd{}))
}

func TestGains_UnknownAsset(t *testing.T) {
	setup(t, testLedger, "")
	assert.Equal(t, subcommands.ExitFailure, run(t, &gainsCmd{}, "-asset", "DOGE"))
}

func TestGains_InsufficientInventory(t *testing.T) {
	ledger := `{"id":"b1","asset":"BTC","time":"2024-01-01T00:00:00Z","kind":"buy","quantity":1,"amount":100}
{"id":"s1","asset":"BTC","time":"2024-01-02T00:00:00Z","kind":"sell","quantity":3,"amount":600}
`
	out := setup(t, ledger, "")
	assert.Equal(t, subcommands.ExitFailure, run(t, &gainsCmd{}, "-asset", "BTC"))

	*lenient = true
	require.Equal(t, subcommands.ExitSuccess, run(t, &gainsCmd{}, "-asset", "BTC"))
	assert.Contains(t, out.String(), "## Warnings")
	assert.Contains(t, out.String(), costbasis.WarningNegativeInventory)
}

func TestLots(t *testing.T) {
	out := setup(t, testLedger, "")
	require.Equal(t, subcommands.ExitSuccess, run(t, &lotsCmd{}, "-asset", "BTC"))
	assert.Contains(t, out.String(), "# Open Lots of BTC")
	assert.Contains(t, out.String(), "| b2 | 0.5 |")
}

func TestPosition(t *testing.T) {
	out := setup(t, testLedger, "")
	require.Equal(t, subcommands.ExitSuccess, run(t, &positionCmd{}, "-asset", "ETH", "-price", "150"))
	assert.Contains(t, out.String(), "| Quantity | 6 |")
	assert.Contains(t, out.String(), "| Market Value | "+costbasis.M(900, "EUR").String()+" |")
}

func TestPosition_PriceFile(t *testing.T) {
	out := setup(t, testLedger, "")
	quote := filepath.Join(t.TempDir(), "quote.json")
	require.NoError(t, os.WriteFile(quote, []byte(`{"ethereum":{"eur":"150"}}`), 0644))

	require.Equal(t, subcommands.ExitSuccess, run(t, &positionCmd{}, "-asset", "ETH", "-price-file", quote, "-price-path", "$.ethereum.eur"))
	assert.Contains(t, out.String(), "| Market Value | "+costbasis.M(900, "EUR").String()+" |")
}

func TestPosition_Usage(t *testing.T) {
	setup(t, testLedger, "")
	assert.Equal(t, subcommands.ExitUsageError, run(t, &positionCmd{}, "-asset", "ETH"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &positionCmd{}, "-asset", "ETH", "-price", "1", "-price-file", "x.json"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &positionCmd{}, "-asset", "ETH", "-price-file", "x.json"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &positionCmd{}, "-asset", "ETH", "-price", "0"))
}

func TestTax(t *testing.T) {
	out := setup(t, testLedger, "tax:\n  method: flat\n  rate: \"0.30\"\n")
	require.Equal(t, subcommands.ExitSuccess, run(t, &taxCmd{}))
	// BTC +10000, ETH +200
	assert.Contains(t, out.String(), "Estimated tax: **"+costbasis.M(3060, "EUR").String()+"**")
}

func TestSave_Idempotent(t *testing.T) {
	out := setup(t, testLedger, "")
	require.Equal(t, subcommands.ExitSuccess, run(t, &saveCmd{}))
	assert.Contains(t, out.String(), "BTC: saved 1 sales and 1 open lots")
	assert.Contains(t, out.String(), "ETH: saved 1 sales and 1 open lots")
	require.Equal(t, subcommands.ExitSuccess, run(t, &saveCmd{}))

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &gainsCmd{}, "-asset", "BTC", "-stored", "-json"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"gain":10000`)
}

func TestGains_StoredWithoutSave(t *testing.T) {
	setup(t, testLedger, "")
	assert.Equal(t, subcommands.ExitFailure, run(t, &gainsCmd{}, "-asset", "BTC", "-stored"))
}

func TestPosition_CurrencyMismatch(t *testing.T) {
	ledger := `{"id":"b1","asset":"BTC","time":"2024-01-01T00:00:00Z","kind":"buy","quantity":1,"amount":100,"currency":"USD"}
`
	setup(t, ledger, "")
	assert.Equal(t, subcommands.ExitFailure, run(t, &positionCmd{}, "-asset", "BTC", "-price", "200"))
}

func TestTax_MixedCurrencies(t *testing.T) {
	ledger := testLedger + `{"id":"u1","asset":"SOL","time":"2024-01-01T00:00:00Z","kind":"buy","quantity":1,"amount":10,"currency":"USD"}
{"id":"u2","asset":"SOL","time":"2024-01-02T00:00:00Z","kind":"sell","quantity":1,"amount":20,"currency":"USD"}
`
	out := setup(t, ledger, "tax:\n  method: flat\n  rate: \"0.50\"\n")
	require.Equal(t, subcommands.ExitSuccess, run(t, &taxCmd{}))
	assert.Contains(t, out.String(), "Estimated tax: **"+costbasis.M(5100, "EUR").String()+"**")
	assert.Contains(t, out.String(), "Estimated tax: **"+costbasis.M(5, "USD").String()+"**")
}
