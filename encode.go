package costbasis

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeTransactions reads raw transactions from a stream of JSONL data, one
// object per line:
//
//	{"id":"t1","asset":"BTC","time":"2024-01-02T15:04:05Z","kind":"buy","quantity":1,"amount":20000,"currency":"EUR"}
//
// Rows are decoded as is, validation is the job of BuildLedger.
func DecodeTransactions(r io.Reader) ([]RawTransaction, error) {
	var raw []RawTransaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var tx RawTransaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		raw = append(raw, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading transactions")
	}
	return raw, nil
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (r RealizedGain) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.TxID)
	w.Append("asset", r.Asset)
	w.Append("time", r.Timestamp)
	w.Append("quantity", r.Quantity)
	w.Append("proceeds", r.Proceeds.Decimal())
	w.Append("costBasis", r.CostBasis.Decimal())
	w.Append("gain", r.Gain.Decimal())
	w.Optional("currency", r.Gain.Currency())
	w.Append("lots", r.Lots)
	if r.Shortfall.IsPositive() {
		w.Append("shortfall", r.Shortfall)
	}
	w.Optional("warning", r.Warning)
	return w.MarshalJSON()
}

// EncodeRealizedGains writes records as JSONL, one record per line.
func EncodeRealizedGains(w io.Writer, records []RealizedGain) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return errors.Wrapf(err, "encoding sale %q", r.TxID)
		}
	}
	return nil
}
