package costbasis

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultQuantityScale is the default, and minimum, number of fractional
	// digits kept for asset quantities.
	DefaultQuantityScale = 8
	// DefaultFiatScale is the default number of fractional digits kept for
	// fiat amounts.
	DefaultFiatScale = 2
	// MaxFiatScale is the maximum number of fractional digits for fiat amounts.
	MaxFiatScale = 8
)

// Config holds the parameters of a matching run. Its zero value selects the
// strict mode and the default scales.
type Config struct {
	// AllowNegativeInventory matches sales exceeding the open lots against a
	// zero-cost lot instead of failing. Records concerned are flagged.
	AllowNegativeInventory bool
	// QuantityScale is the number of fractional digits of asset quantities,
	// at least DefaultQuantityScale. 0 selects the default.
	QuantityScale uint8
	// FiatScale is the number of fractional digits of fiat amounts, between
	// DefaultFiatScale and MaxFiatScale. 0 selects the default.
	FiatScale uint8
}

// Validate checks the scales.
func (c Config) Validate() error {
	if c.QuantityScale != 0 && c.QuantityScale < DefaultQuantityScale {
		return errors.Wrapf(ErrInvalidConfig, "quantity scale %d is below %d", c.QuantityScale, DefaultQuantityScale)
	}
	if c.FiatScale != 0 && (c.FiatScale < DefaultFiatScale || c.FiatScale > MaxFiatScale) {
		return errors.Wrapf(ErrInvalidConfig, "fiat scale %d is outside [%d, %d]", c.FiatScale, DefaultFiatScale, MaxFiatScale)
	}
	return nil
}

func (c Config) quantityScale() int32 {
	if c.QuantityScale == 0 {
		return DefaultQuantityScale
	}
	return int32(c.QuantityScale)
}

func (c Config) fiatScale() int32 {
	if c.FiatScale == 0 {
		return DefaultFiatScale
	}
	return int32(c.FiatScale)
}

// WarningNegativeInventory flags a record matched partly against a zero-cost
// lot because the book ran out of lots.
const WarningNegativeInventory = "negative inventory: unmatched quantity valued at zero cost"

// RealizedGain is the outcome of one sale.
type RealizedGain struct {
	TxID      string
	Asset     string
	Timestamp time.Time
	Quantity  Quantity // quantity sold
	Proceeds  Money    // fiat received for the whole sale
	CostBasis Money    // cost of the lots consumed
	Gain      Money    // Proceeds - CostBasis, negative for a loss
	Lots      int      // number of lots the sale was matched against

	// Set in lenient mode only, when the sale exceeded the open lots.
	Shortfall Quantity
	Warning   string
}

// Flagged reports whether the record was matched against a zero-cost lot.
func (r RealizedGain) Flagged() bool { return r.Warning != "" }

// Matcher applies transactions of one asset to its Lot Book in FIFO order.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	cfg      Config
	book     *LotBook
	currency string
	last     *Transaction
	records  []RealizedGain

	bought    Quantity
	sold      Quantity
	synthetic Quantity
}

// NewMatcher returns a matcher with an empty book for asset.
func NewMatcher(asset string, cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	book := NewLotBook(asset)
	if book.asset == "" {
		return nil, invalid("", "missing asset")
	}
	book.fiatScale = cfg.fiatScale()
	book.costScale = costScale(cfg.quantityScale(), cfg.fiatScale())
	return &Matcher{cfg: cfg, book: book}, nil
}

// Book returns the Lot Book. It must not be used while transactions are still
// being applied from another goroutine.
func (m *Matcher) Book() *LotBook { return m.book }

// Records returns the realized gains emitted so far, in sale order.
func (m *Matcher) Records() []RealizedGain {
	out := make([]RealizedGain, len(m.records))
	copy(out, m.records)
	return out
}

// Bought returns the total quantity bought so far.
func (m *Matcher) Bought() Quantity { return m.bought }

// Sold returns the total quantity sold so far.
func (m *Matcher) Sold() Quantity { return m.sold }

// Synthetic returns the total quantity matched against zero-cost lots.
func (m *Matcher) Synthetic() Quantity { return m.synthetic }

// Apply processes one transaction. Buys open a lot and return a nil record,
// sells consume lots and return the realized gain.
//
// When Apply fails, the matcher is left unchanged.
func (m *Matcher) Apply(tx Transaction) (*RealizedGain, error) {
	if err := m.check(tx); err != nil {
		return nil, err
	}

	var rec *RealizedGain
	switch tx.Kind {
	case Buy:
		if err := m.buy(tx); err != nil {
			return nil, err
		}
	case Sell:
		r, err := m.sell(tx)
		if err != nil {
			return nil, err
		}
		rec = &r
	}

	if tx.Amount.Currency() != "" {
		m.currency = tx.Amount.Currency()
	}
	m.last = &tx
	return rec, nil
}

// check verifies what the ledger should already have guaranteed.
func (m *Matcher) check(tx Transaction) error {
	if tx.Kind != Buy && tx.Kind != Sell {
		return invalid(tx.ID, "unsupported kind %s", tx.Kind)
	}
	if normalizeAsset(tx.Asset) != m.book.asset {
		return invalid(tx.ID, "asset %q does not belong to the %s lot book", tx.Asset, m.book.asset)
	}
	if tx.Amount.IsNegative() {
		return invalid(tx.ID, "amount must not be negative, got %s", tx.Amount.Decimal())
	}
	if s := m.cfg.quantityScale(); !tx.Quantity.Round(s).Equal(tx.Quantity) {
		return invalid(tx.ID, "quantity %s exceeds scale %d", tx.Quantity, s)
	}
	if s := m.cfg.fiatScale(); !tx.Amount.Round(s).Equal(tx.Amount) {
		return invalid(tx.ID, "amount %s exceeds scale %d", tx.Amount.Decimal(), s)
	}
	if c := tx.Amount.Currency(); c != "" && m.currency != "" && c != m.currency {
		return invalid(tx.ID, "currency %s differs from %s", c, m.currency)
	}
	if m.last != nil && tx.before(*m.last) {
		return invalid(tx.ID, "out of order, it precedes %q", m.last.ID)
	}
	return nil
}

func (m *Matcher) buy(tx Transaction) error {
	q := tx.Quantity
	if q.IsZero() {
		return errors.Wrapf(ErrDivideByZero, "buy %q has no quantity", tx.ID)
	}
	if q.IsNegative() {
		return invalid(tx.ID, "quantity must be positive, got %s", q)
	}
	unitCost := tx.Amount.DivRound(q, m.cfg.quantityScale()+m.cfg.fiatScale())
	m.book.push(Lot{
		BuyID:         tx.ID,
		Acquired:      tx.Timestamp,
		Remaining:     q,
		UnitCost:      unitCost,
		RemainingCost: tx.Amount,
	})
	m.bought = m.bought.Add(q)
	return nil
}

func (m *Matcher) sell(tx Transaction) (RealizedGain, error) {
	q := tx.Quantity
	if !q.IsPositive() {
		return RealizedGain{}, invalid(tx.ID, "quantity must be positive, got %s", q)
	}

	var shortfall Quantity
	if available := m.book.TotalQuantity(); available.LessThan(q) {
		shortfall = q.Sub(available)
		if !m.cfg.AllowNegativeInventory {
			return RealizedGain{}, &InsufficientInventoryError{Asset: m.book.asset, TxID: tx.ID, Shortfall: shortfall}
		}
	}

	cost, touched, left := m.book.consume(q)
	if !left.Equal(shortfall) {
		// consume and TotalQuantity disagree, the book is corrupted.
		panic("lot book inconsistency: unmatched " + left.String() + " expected " + shortfall.String())
	}

	rec := RealizedGain{
		TxID:      tx.ID,
		Asset:     m.book.asset,
		Timestamp: tx.Timestamp,
		Quantity:  q,
		Proceeds:  tx.Amount,
		CostBasis: cost.Round(m.cfg.fiatScale()),
		Lots:      touched,
	}
	if shortfall.IsPositive() {
		// the synthetic zero-cost lot adds nothing to the cost basis.
		rec.Shortfall = shortfall
		rec.Warning = WarningNegativeInventory
		rec.Lots++
		m.synthetic = m.synthetic.Add(shortfall)
	}
	if rec.CostBasis.Currency() == "" {
		rec.CostBasis = rec.CostBasis.WithCurrency(tx.Amount.Currency())
	}
	rec.Gain = rec.Proceeds.Sub(rec.CostBasis)

	m.sold = m.sold.Add(q)
	m.records = append(m.records, rec)
	return rec, nil
}

// MatchFIFO matches the sales of txs against its buys, in the given order,
// and returns one RealizedGain per sale and the final Lot Book.
//
// txs must all belong to the same asset and be in ledger order, as returned
// by BuildLedger.
func MatchFIFO(txs []Transaction, cfg Config) ([]RealizedGain, *LotBook, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(txs) == 0 {
		return nil, &LotBook{fiatScale: cfg.fiatScale(), costScale: costScale(cfg.quantityScale(), cfg.fiatScale())}, nil
	}
	m, err := NewMatcher(txs[0].Asset, cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, tx := range txs {
		if _, err := m.Apply(tx); err != nil {
			return nil, nil, err
		}
	}
	return m.records, m.book, nil
}
