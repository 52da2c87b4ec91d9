package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DefaultQuoteTable is the table QuoteStore reads and writes when none is configured.
//
//	CREATE TABLE curve_quotes (
//	    curve_date date NOT NULL,
//	    seq        integer NOT NULL,
//	    instrument text NOT NULL,
//	    price      double precision NOT NULL,
//	    PRIMARY KEY (curve_date, instrument)
//	);
const DefaultQuoteTable = "curve_quotes"

// QuoteStore persists price ladders in Postgres, one row per instrument and curve date.
type QuoteStore struct {
	db    *sql.DB
	table string
}

// OpenQuoteStore connects with a lib/pq DSN and pings the server.
func OpenQuoteStore(ctx context.Context, dsn, table string) (*QuoteStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenQuoteStore: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenQuoteStore: ping: %w", err)
	}
	return NewQuoteStore(db, table), nil
}

// NewQuoteStore wraps an open database handle.
func NewQuoteStore(db *sql.DB, table string) *QuoteStore {
	if table == "" {
		table = DefaultQuoteTable
	}
	return &QuoteStore{db: db, table: table}
}

func (s *QuoteStore) Close() error { return s.db.Close() }

// LoadLadder returns the quotes saved for date in their saved order.
func (s *QuoteStore) LoadLadder(ctx context.Context, date time.Time) (*PriceLadder, error) {
	q := fmt.Sprintf("SELECT instrument, price FROM %s WHERE curve_date = $1 ORDER BY seq", pq.QuoteIdentifier(s.table))
	rows, err := s.db.QueryContext(ctx, q, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("LoadLadder: %w", err)
	}
	defer rows.Close()

	l := NewPriceLadder()
	for rows.Next() {
		var name string
		var price float64
		if err := rows.Scan(&name, &price); err != nil {
			return nil, fmt.Errorf("LoadLadder: %w", err)
		}
		l.Set(name, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadLadder: %w", err)
	}
	if l.Len() == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoQuotes, date.Format("2006-01-02"))
	}
	return l, nil
}

// SaveLadder replaces the quotes for date with ladder using COPY.
func (s *QuoteStore) SaveLadder(ctx context.Context, date time.Time, ladder *PriceLadder) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveLadder: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	day := date.Format("2006-01-02")
	del := fmt.Sprintf("DELETE FROM %s WHERE curve_date = $1", pq.QuoteIdentifier(s.table))
	if _, err = tx.ExecContext(ctx, del, day); err != nil {
		return fmt.Errorf("SaveLadder: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, "curve_date", "seq", "instrument", "price"))
	if err != nil {
		return fmt.Errorf("SaveLadder: %w", err)
	}
	for i, q := range ladder.Quotes() {
		if _, err = stmt.ExecContext(ctx, day, i, q.Instrument, q.Price); err != nil {
			stmt.Close()
			return fmt.Errorf("SaveLadder: instrument %s: %w", q.Instrument, err)
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("SaveLadder: flush: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("SaveLadder: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("SaveLadder: commit: %w", err)
	}
	return nil
}
