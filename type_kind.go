package costbasis

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is the side of a trade.
type Kind int

const (
	// Buy acquires some asset in exchange of fiat, it opens a new lot.
	Buy Kind = iota + 1
	// Sell disposes of some asset in exchange of fiat, it consumes lots.
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, errors.Wrapf(ErrInvalidTransaction, "unsupported kind %q", s)
	}
}
