package costbasis

import (
	"time"
)

// Lot is the still unsold part of a purchase.
type Lot struct {
	BuyID     string    // id of the buy that opened the lot
	Acquired  time.Time // time of the buy
	Remaining Quantity  // strictly positive while the lot is in a book
	UnitCost  Money     // cost of one unit, fixed for the life of the lot, rounded

	// RemainingCost is the exact part of the purchase amount not consumed
	// yet. Closing the lot consumes all of it.
	RemainingCost Money
}

// Cost returns the cost basis of the remaining quantity.
func (l Lot) Cost() Money { return l.RemainingCost }

// LotBook is the queue of open lots of a single asset, oldest first.
//
// A LotBook is only mutated by the Matcher that owns it, everything else
// reads it.
type LotBook struct {
	asset     string
	fiatScale int32
	costScale int32 // fractional digits of partially consumed costs
	lots      []Lot
	total     Quantity
}

// NewLotBook returns an empty book for asset.
func NewLotBook(asset string) *LotBook {
	return &LotBook{
		asset:     normalizeAsset(asset),
		fiatScale: DefaultFiatScale,
		costScale: costScale(DefaultQuantityScale, DefaultFiatScale),
	}
}

// Asset returns the asset of the lots.
func (b *LotBook) Asset() string { return b.asset }

// FiatScale returns the number of fractional digits fiat amounts are reported with.
func (b *LotBook) FiatScale() int32 { return b.fiatScale }

// Len returns the number of open lots.
func (b *LotBook) Len() int { return len(b.lots) }

// Lots returns a copy of the open lots, oldest first.
func (b *LotBook) Lots() []Lot {
	out := make([]Lot, len(b.lots))
	copy(out, b.lots)
	return out
}

// Front returns the oldest open lot.
func (b *LotBook) Front() (Lot, bool) {
	if len(b.lots) == 0 {
		return Lot{}, false
	}
	return b.lots[0], true
}

// TotalQuantity returns the sum of the remaining quantities.
func (b *LotBook) TotalQuantity() Quantity { return b.total }

// TotalCost returns the exact cost basis of the remaining quantities.
func (b *LotBook) TotalCost() Money {
	var total Money
	for _, l := range b.lots {
		total = total.Add(l.Cost())
	}
	return total
}

// push appends a lot at the back of the queue.
func (b *LotBook) push(l Lot) {
	b.lots = append(b.lots, l)
	b.total = b.total.Add(l.Remaining)
}

// consume takes up to q from the front of the queue.
// It returns the exact cost of what was taken, the number of lots touched,
// and the quantity that could not be matched because the book ran empty.
func (b *LotBook) consume(q Quantity) (cost Money, touched int, left Quantity) {
	left = q
	for left.IsPositive() && len(b.lots) > 0 {
		front := &b.lots[0]
		take := left.Min(front.Remaining)
		taken := front.RemainingCost
		if take.LessThan(front.Remaining) {
			taken = front.RemainingCost.Mul(take).DivRound(front.Remaining, b.costScale)
		}
		cost = cost.Add(taken)
		front.RemainingCost = front.RemainingCost.Sub(taken)
		front.Remaining = front.Remaining.Sub(take)
		b.total = b.total.Sub(take)
		left = left.Sub(take)
		touched++
		if front.Remaining.IsZero() {
			b.lots[0] = Lot{}
			b.lots = b.lots[1:]
		}
	}
	return cost, touched, left
}

// costScale is the precision of the cost of a partial take, well beyond what
// reports are rounded to.
func costScale(quantityScale, fiatScale int32) int32 {
	return 2*quantityScale + fiatScale
}
