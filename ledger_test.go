package costbasis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLedger_OrdersByTimeThenID(t *testing.T) {
	raw := []RawTransaction{
		row("c", "BTC", "sell", day(2), "1", "300"),
		row("b", "BTC", "buy", day(1), "1", "200"),
		row("a", "BTC", "buy", day(2), "1", "100"),
		row("z", "ETH", "buy", day(1), "1", "100"),
	}

	txs, err := BuildLedger(raw, "BTC")
	require.NoError(t, err)

	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, Sell, txs[2].Kind)
	assertDecimal(t, "300", txs[2].Amount)
	assert.Equal(t, "EUR", txs[2].Amount.Currency())
}

func TestBuildLedger_NormalizesAsset(t *testing.T) {
	raw := []RawTransaction{
		row("a", " btc ", "BUY", day(1), "1", "100"),
		row("b", "BTC", "Sell", day(2), "1", "100"),
	}
	txs, err := BuildLedger(raw, "btc")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "BTC", txs[0].Asset)
	assert.Equal(t, Buy, txs[0].Kind)
}

func TestBuildLedger_Rejects(t *testing.T) {
	missingQuantity := row("t", "BTC", "buy", day(1), "1", "100")
	missingQuantity.Quantity = nil
	missingAmount := row("t", "BTC", "buy", day(1), "1", "100")
	missingAmount.Amount = nil

	testCases := []struct {
		name string
		raw  RawTransaction
	}{
		{"missing id", row("", "BTC", "buy", day(1), "1", "100")},
		{"missing timestamp", RawTransaction{ID: "t", Asset: "BTC", Kind: "buy", Quantity: dec("1"), Amount: dec("1")}},
		{"deposit kind", row("t", "BTC", "deposit", day(1), "1", "100")},
		{"staking kind", row("t", "BTC", "staking", day(1), "1", "0")},
		{"missing quantity", missingQuantity},
		{"negative quantity", row("t", "BTC", "buy", day(1), "-1", "100")},
		{"zero quantity", row("t", "BTC", "sell", day(1), "0", "100")},
		{"missing amount", missingAmount},
		{"negative amount", row("t", "BTC", "buy", day(1), "1", "-100")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildLedger([]RawTransaction{tc.raw}, "BTC")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestBuildLedger_IgnoresOtherAssets(t *testing.T) {
	raw := []RawTransaction{
		row("t1", "BTC", "buy", day(1), "1", "100"),
		row("t2", "ETH", "deposit", day(1), "-1", "100"), // invalid, but not BTC
	}
	txs, err := BuildLedger(raw, "BTC")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestBuildLedger_DuplicatedID(t *testing.T) {
	raw := []RawTransaction{
		row("t1", "BTC", "buy", day(1), "1", "100"),
		row("t1", "BTC", "sell", day(2), "1", "100"),
	}
	_, err := BuildLedger(raw, "BTC")
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	// ids are only unique within one asset.
	raw[1].Asset = "ETH"
	_, err = BuildLedger(raw, "BTC")
	assert.NoError(t, err)
}

func TestBuildLedger_MissingAssetFilter(t *testing.T) {
	_, err := BuildLedger(nil, " ")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestAssets(t *testing.T) {
	raw := []RawTransaction{
		row("1", "eth", "buy", day(1), "1", "1"),
		row("2", "BTC", "buy", day(1), "1", "1"),
		row("3", "ETH", "buy", day(1), "1", "1"),
		row("4", "", "buy", day(1), "1", "1"),
	}
	assert.Equal(t, []string{"BTC", "ETH"}, Assets(raw))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Buy")
	require.NoError(t, err)
	assert.Equal(t, Buy, k)
	assert.Equal(t, "sell", Sell.String())

	_, err = ParseKind("reward")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}
