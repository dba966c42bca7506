package costbasis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// day returns midnight UTC of the n-th day of January 2024.
func day(n int) time.Time { return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC) }

// EUR is a helper for test to create euro money from a decimal string.
func EUR(s string) Money { return M(decimal.RequireFromString(s), "EUR") }

// qty is a helper for test to create a quantity from a decimal string.
func qty(s string) Quantity { return Q(decimal.RequireFromString(s)) }

// dec returns a pointer to a decimal, as used by RawTransaction.
func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// row creates a raw transaction in euros.
func row(id, asset, kind string, on time.Time, quantity, amount string) RawTransaction {
	return RawTransaction{
		ID:        id,
		Asset:     asset,
		Timestamp: on,
		Kind:      kind,
		Quantity:  dec(quantity),
		Amount:    dec(amount),
		Currency:  "EUR",
	}
}

type decimaler interface{ Decimal() decimal.Decimal }

// assertDecimal checks that got numerically equals want, whatever the
// exponent of the underlying decimal.
func assertDecimal(t *testing.T, want string, got decimaler, msgAndArgs ...any) {
	t.Helper()
	w := decimal.RequireFromString(want)
	assert.Truef(t, w.Equal(got.Decimal()), "want %s, got %s %v", w, got.Decimal(), msgAndArgs)
}
