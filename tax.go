package costbasis

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TaxRule computes the tax owed on a total realized gain.
//
// Tax rules are supplied by the caller, the rules in this package are
// illustrations and not a statement of any tax law.
type TaxRule func(totalRealized Money) Money

// EstimateTax applies rule to the total realized gain. A nil rule owes nothing.
func EstimateTax(totalRealized Money, rule TaxRule) Money {
	if rule == nil {
		return M(0, totalRealized.Currency())
	}
	return rule(totalRealized)
}

// TotalRealized sums the gains of records. Records settled in different
// currencies cannot be summed and fail with ErrInvalidTransaction.
func TotalRealized(records []RealizedGain) (Money, error) {
	totals := RealizedByCurrency(records)
	switch len(totals) {
	case 0:
		return Money{}, nil
	case 1:
		return totals[0], nil
	default:
		return Money{}, errors.Wrapf(ErrInvalidTransaction, "gains settled in %d currencies: %s", len(totals), currencies(totals))
	}
}

// RealizedByCurrency sums the gains of records per currency, sorted by
// currency code.
func RealizedByCurrency(records []RealizedGain) []Money {
	index := make(map[string]int)
	var totals []Money
	for _, r := range records {
		c := r.Gain.Currency()
		i, ok := index[c]
		if !ok {
			i = len(totals)
			index[c] = i
			totals = append(totals, M(0, c))
		}
		totals[i] = totals[i].Add(r.Gain)
	}
	slices.SortFunc(totals, func(a, b Money) int { return strings.Compare(a.Currency(), b.Currency()) })
	return totals
}

func currencies(totals []Money) string {
	codes := make([]string, len(totals))
	for i, t := range totals {
		codes[i] = t.Currency()
	}
	return strings.Join(codes, ", ")
}

// NoTax owes nothing.
func NoTax(totalRealized Money) Money { return M(0, totalRealized.Currency()) }

// FlatRate taxes a positive total at rate. Losses owe nothing.
func FlatRate(rate decimal.Decimal) TaxRule {
	return func(total Money) Money {
		if !total.IsPositive() {
			return M(0, total.Currency())
		}
		return total.MulRate(rate)
	}
}

// Bracket is a slice of a progressive tax. UpTo is the upper bound of the
// bracket, the zero value means no upper bound.
type Bracket struct {
	UpTo decimal.Decimal
	Rate decimal.Decimal
}

// Progressive taxes a positive total using marginal brackets, in increasing
// order of their upper bound. The part of the total above the last bound is
// not taxed unless the last bracket is unbounded.
func Progressive(brackets ...Bracket) (TaxRule, error) {
	var prev decimal.Decimal
	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return nil, errors.Wrapf(ErrInvalidConfig, "bracket %d has a negative rate", i)
		}
		unbounded := b.UpTo.IsZero()
		if unbounded && i != len(brackets)-1 {
			return nil, errors.Wrapf(ErrInvalidConfig, "bracket %d is unbounded but is not the last one", i)
		}
		if !unbounded && !b.UpTo.GreaterThan(prev) {
			return nil, errors.Wrapf(ErrInvalidConfig, "bracket %d upper bound %s is not above %s", i, b.UpTo, prev)
		}
		prev = b.UpTo
	}

	return func(total Money) Money {
		owed := M(0, total.Currency())
		if !total.IsPositive() {
			return owed
		}
		amount := total.Decimal()
		var lower decimal.Decimal
		for _, b := range brackets {
			upper := b.UpTo
			if upper.IsZero() || upper.GreaterThan(amount) {
				upper = amount
			}
			if upper.GreaterThan(lower) {
				owed = owed.Add(M(upper.Sub(lower).Mul(b.Rate), total.Currency()))
			}
			if upper.Equal(amount) {
				break
			}
			lower = upper
		}
		return owed
	}, nil
}
