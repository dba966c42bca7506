package costbasis

import (
	"slices"
)

// BuildLedger validates the raw transactions of asset and returns them in
// ledger order: by timestamp, then by id.
//
// Rows of other assets are ignored. Any row of asset that is not a well
// formed buy or sell fails the whole build with an error matching
// ErrInvalidTransaction.
func BuildLedger(raw []RawTransaction, asset string) ([]Transaction, error) {
	asset = normalizeAsset(asset)
	if asset == "" {
		return nil, invalid("", "missing asset filter")
	}

	seen := make(map[string]struct{})
	var txs []Transaction
	for _, r := range raw {
		if normalizeAsset(r.Asset) != asset {
			continue
		}
		tx, err := r.validate()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tx.ID]; dup {
			return nil, invalid(tx.ID, "duplicated id")
		}
		seen[tx.ID] = struct{}{}
		txs = append(txs, tx)
	}

	slices.SortStableFunc(txs, compareTransactions)
	return txs, nil
}

// Assets returns the distinct assets referenced by raw, sorted.
func Assets(raw []RawTransaction) []string {
	set := make(map[string]struct{})
	for _, r := range raw {
		if a := normalizeAsset(r.Asset); a != "" {
			set[a] = struct{}{}
		}
	}
	assets := make([]string, 0, len(set))
	for a := range set {
		assets = append(assets, a)
	}
	slices.Sort(assets)
	return assets
}

func compareTransactions(a, b Transaction) int {
	switch {
	case a.before(b):
		return -1
	case b.before(a):
		return 1
	default:
		return 0
	}
}

// validate converts a raw row into a Transaction.
func (r RawTransaction) validate() (Transaction, error) {
	if r.ID == "" {
		return Transaction{}, invalid("", "missing id")
	}
	if r.Timestamp.IsZero() {
		return Transaction{}, invalid(r.ID, "missing timestamp")
	}
	kind, err := ParseKind(r.Kind)
	if err != nil {
		return Transaction{}, invalid(r.ID, "unsupported kind %q", r.Kind)
	}
	if r.Quantity == nil {
		return Transaction{}, invalid(r.ID, "missing quantity")
	}
	if !r.Quantity.IsPositive() {
		return Transaction{}, invalid(r.ID, "quantity must be positive, got %s", r.Quantity)
	}
	if r.Amount == nil {
		return Transaction{}, invalid(r.ID, "missing amount")
	}
	if r.Amount.IsNegative() {
		return Transaction{}, invalid(r.ID, "amount must not be negative, got %s", r.Amount)
	}

	return Transaction{
		ID:        r.ID,
		Asset:     normalizeAsset(r.Asset),
		Timestamp: r.Timestamp,
		Kind:      kind,
		Quantity:  Q(*r.Quantity),
		Amount:    M(*r.Amount, r.Currency),
	}, nil
}
