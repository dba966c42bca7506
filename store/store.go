// Package store persists the outcome of matching runs in a SQLite database.
//
// Saving the same asset twice replaces its rows, run included, so that
// running the engine again on the same ledger leaves the same content, only
// the run id and its creation time change.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/etnz/costbasis"
)

// ErrNoRun is returned by LastRun when the asset was never saved.
var ErrNoRun = errors.New("no run saved")

const schema = `
CREATE TABLE IF NOT EXISTS run (
	id         TEXT PRIMARY KEY,
	asset      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	sales      INTEGER NOT NULL,
	open_lots  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS realized_gain (
	asset      TEXT NOT NULL,
	tx_id      TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	timestamp  TEXT NOT NULL,
	quantity   TEXT NOT NULL,
	proceeds   TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	gain       TEXT NOT NULL,
	currency   TEXT NOT NULL,
	lots       INTEGER NOT NULL,
	shortfall  TEXT NOT NULL,
	warning    TEXT NOT NULL,
	PRIMARY KEY (asset, tx_id)
);
CREATE TABLE IF NOT EXISTS lot (
	asset     TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	buy_id    TEXT NOT NULL,
	acquired  TEXT NOT NULL,
	remaining TEXT NOT NULL,
	unit_cost TEXT NOT NULL,
	remaining_cost TEXT NOT NULL,
	currency  TEXT NOT NULL,
	PRIMARY KEY (asset, seq)
);
`

// Run describes a saved run.
type Run struct {
	ID        string
	Asset     string
	CreatedAt time.Time
	Sales     int
	OpenLots  int
}

// Store is a SQLite backed store of runs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens, and creates if needed, the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun replaces the records and lots of asset with the given ones, in a
// single transaction, and returns the id of the new run.
func (s *Store) SaveRun(ctx context.Context, asset string, records []costbasis.RealizedGain, book *costbasis.LotBook) (runID string, err error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	var lots []costbasis.Lot
	if book != nil {
		lots = book.Lots()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "beginTx")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, q := range []string{
		`DELETE FROM realized_gain WHERE asset = ?`,
		`DELETE FROM lot WHERE asset = ?`,
		`DELETE FROM run WHERE asset = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, asset); err != nil {
			return "", errors.Wrap(err, "clearing previous run")
		}
	}

	for i, r := range records {
		_, err = tx.ExecContext(ctx, `INSERT INTO realized_gain
			(asset, tx_id, seq, timestamp, quantity, proceeds, cost_basis, gain, currency, lots, shortfall, warning)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			asset, r.TxID, i, r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Quantity.String(), r.Proceeds.Decimal().String(), r.CostBasis.Decimal().String(), r.Gain.Decimal().String(),
			r.Gain.Currency(), r.Lots, r.Shortfall.String(), r.Warning)
		if err != nil {
			return "", errors.Wrapf(err, "inserting sale %q", r.TxID)
		}
	}

	for i, l := range lots {
		_, err = tx.ExecContext(ctx, `INSERT INTO lot
			(asset, seq, buy_id, acquired, remaining, unit_cost, remaining_cost, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			asset, i, l.BuyID, l.Acquired.UTC().Format(time.RFC3339Nano),
			l.Remaining.String(), l.UnitCost.Decimal().String(), l.RemainingCost.Decimal().String(), l.UnitCost.Currency())
		if err != nil {
			return "", errors.Wrapf(err, "inserting lot %q", l.BuyID)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO run (id, asset, created_at, sales, open_lots) VALUES (?, ?, ?, ?, ?)`,
		id.String(), asset, s.now().UTC().Format(time.RFC3339Nano), len(records), len(lots))
	if err != nil {
		return "", errors.Wrap(err, "inserting run")
	}

	if err = tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	return id.String(), nil
}

// RealizedGains returns the saved records of asset, in sale order.
func (s *Store) RealizedGains(ctx context.Context, asset string) ([]costbasis.RealizedGain, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tx_id, timestamp, quantity, proceeds, cost_basis, gain, currency, lots, shortfall, warning
		FROM realized_gain WHERE asset = ? ORDER BY seq`, asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []costbasis.RealizedGain
	for rows.Next() {
		var r costbasis.RealizedGain
		var ts, quantity, proceeds, cost, gain, short, currency string
		if err := rows.Scan(&r.TxID, &ts, &quantity, &proceeds, &cost, &gain, &currency, &r.Lots, &short, &r.Warning); err != nil {
			return nil, err
		}
		r.Asset = asset
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, err
		}
		if r.Quantity, err = costbasis.ParseQuantity(quantity); err != nil {
			return nil, err
		}
		if r.Shortfall, err = costbasis.ParseQuantity(short); err != nil {
			return nil, err
		}
		if r.Proceeds, err = costbasis.ParseMoney(proceeds, currency); err != nil {
			return nil, err
		}
		if r.CostBasis, err = costbasis.ParseMoney(cost, currency); err != nil {
			return nil, err
		}
		if r.Gain, err = costbasis.ParseMoney(gain, currency); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Lots returns the saved open lots of asset, oldest first.
func (s *Store) Lots(ctx context.Context, asset string) ([]costbasis.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT buy_id, acquired, remaining, unit_cost, remaining_cost, currency
		FROM lot WHERE asset = ? ORDER BY seq`, asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []costbasis.Lot
	for rows.Next() {
		var l costbasis.Lot
		var acquired, remaining, unit, cost, currency string
		if err := rows.Scan(&l.BuyID, &acquired, &remaining, &unit, &cost, &currency); err != nil {
			return nil, err
		}
		if l.Acquired, err = time.Parse(time.RFC3339Nano, acquired); err != nil {
			return nil, err
		}
		if l.Remaining, err = costbasis.ParseQuantity(remaining); err != nil {
			return nil, err
		}
		if l.UnitCost, err = costbasis.ParseMoney(unit, currency); err != nil {
			return nil, err
		}
		if l.RemainingCost, err = costbasis.ParseMoney(cost, currency); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// LastRun returns the run that saved the current rows of asset.
func (s *Store) LastRun(ctx context.Context, asset string) (Run, error) {
	var (
		r       Run
		created string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, asset, created_at, sales, open_lots
		FROM run WHERE asset = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, asset).
		Scan(&r.ID, &r.Asset, &created, &r.Sales, &r.OpenLots)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrNoRun, "asset %s", asset)
	}
	if err != nil {
		return Run{}, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, err
	}
	return r, nil
}

// TotalRealized sums the saved gains of asset.
func (s *Store) TotalRealized(ctx context.Context, asset string) (costbasis.Money, error) {
	records, err := s.RealizedGains(ctx, asset)
	if err != nil {
		return costbasis.Money{}, err
	}
	return costbasis.TotalRealized(records)
}
