package costbasis

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParsePrice parses a valuation price. The price must be strictly positive.
func ParsePrice(s, currency string) (Money, error) {
	p, err := ParseMoney(strings.TrimSpace(s), currency)
	if err != nil {
		return Money{}, errors.Wrapf(ErrInvalidPrice, "cannot parse %q: %v", s, err)
	}
	if !p.IsPositive() {
		return Money{}, errors.Wrapf(ErrInvalidPrice, "price must be positive, got %s", s)
	}
	return p, nil
}

// PriceFromJSON reads a quote document and extracts the price located at the
// JSONPath path, for instance "$.bitcoin.eur" for
//
//	{"bitcoin":{"eur":35000.12}}
//
// Numbers and numeric strings are accepted.
func PriceFromJSON(r io.Reader, path, currency string) (Money, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return Money{}, errors.Wrap(err, "decoding quote document")
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return Money{}, errors.Wrapf(err, "evaluating %q", path)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var s string
	switch v := jval.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	case float64:
		s = decimal.NewFromFloat(v).String()
	default:
		return Money{}, errors.Wrapf(ErrInvalidPrice, "value at %q is not a number: %v", path, jval)
	}
	return ParsePrice(s, currency)
}
