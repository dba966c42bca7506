package costbasis

import (
	"github.com/pkg/errors"
)

// PositionSnapshot is the valuation of the open lots at a given price.
type PositionSnapshot struct {
	Asset          string
	Quantity       Quantity // total remaining quantity
	CostBasis      Money    // cost basis of the remaining quantity
	AverageCost    Money    // CostBasis / Quantity
	Price          Money    // price of one unit
	MarketValue    Money    // Quantity * Price
	UnrealizedGain Money    // MarketValue - CostBasis
}

// IsZero reports whether the snapshot describes a closed position.
func (p PositionSnapshot) IsZero() bool { return p.Quantity.IsZero() }

// ValuePosition values the open lots of book at price, the fiat value of one
// unit of the asset. price must be strictly positive, and in the currency of
// the lots when both state one.
//
// A book without open lots yields a zero snapshot.
func ValuePosition(book *LotBook, price Money) (PositionSnapshot, error) {
	if !price.IsPositive() {
		return PositionSnapshot{}, errors.Wrapf(ErrInvalidPrice, "price must be positive, got %s", price.Decimal())
	}
	if book == nil {
		return PositionSnapshot{}, nil
	}

	snap := PositionSnapshot{Asset: book.Asset()}
	total := book.TotalQuantity()
	if total.IsZero() {
		return snap, nil
	}

	scale := book.FiatScale()
	cost := book.TotalCost().Round(scale)
	if c, p := cost.Currency(), price.Currency(); c != "" && p != "" && c != p {
		return PositionSnapshot{}, errors.Wrapf(ErrInvalidPrice, "price in %s, lots in %s", p, c)
	}
	if cost.Currency() == "" {
		cost = cost.WithCurrency(price.Currency())
	}
	snap.Quantity = total
	snap.CostBasis = cost
	snap.AverageCost = cost.DivRound(total, scale)
	snap.Price = price
	snap.MarketValue = price.Mul(total).Round(scale)
	snap.UnrealizedGain = snap.MarketValue.Sub(cost)
	return snap, nil
}
