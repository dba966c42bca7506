package costbasis

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is a transaction as supplied by an importer, before
// validation. Pointer fields are nil when the value is missing.
type RawTransaction struct {
	ID        string           `json:"id"`
	Asset     string           `json:"asset"`
	Timestamp time.Time        `json:"time"`
	Kind      string           `json:"kind"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Currency  string           `json:"currency,omitempty"`
}

// Transaction is a validated buy or sell of a single asset.
type Transaction struct {
	ID        string
	Asset     string
	Timestamp time.Time
	Kind      Kind
	Quantity  Quantity // asset quantity, strictly positive
	Amount    Money    // fiat paid or received, positive or zero
}

// NewBuy creates a buy transaction.
func NewBuy(id, asset string, on time.Time, quantity Quantity, cost Money) Transaction {
	return Transaction{ID: id, Asset: normalizeAsset(asset), Timestamp: on, Kind: Buy, Quantity: quantity, Amount: cost}
}

// NewSell creates a sell transaction.
func NewSell(id, asset string, on time.Time, quantity Quantity, proceeds Money) Transaction {
	return Transaction{ID: id, Asset: normalizeAsset(asset), Timestamp: on, Kind: Sell, Quantity: quantity, Amount: proceeds}
}

// before reports whether t sorts strictly before u in ledger order.
func (t Transaction) before(u Transaction) bool {
	if !t.Timestamp.Equal(u.Timestamp) {
		return t.Timestamp.Before(u.Timestamp)
	}
	return t.ID < u.ID
}

func normalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}
