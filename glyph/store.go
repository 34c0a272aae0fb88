package glyph

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS shape_counts (
	hash  TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);`

// Store persists shape occurrence counts across capture batches in an
// SQLite database, so font selection can draw on more than one run.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the count database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "glyph: open store %s", path)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "glyph: %s", pragma)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "glyph: create schema")
	}
	return &Store{db: db}, nil
}

// Merge folds a counter's tallies into the store in one transaction.
func (s *Store) Merge(ctx context.Context, c *Counter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "glyph: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shape_counts (hash, count) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET count = count + excluded.count`)
	if err != nil {
		return errors.Wrap(err, "glyph: prepare")
	}
	defer stmt.Close()

	for h, n := range c.Counts() {
		if _, err := stmt.ExecContext(ctx, h, n); err != nil {
			return errors.Wrapf(err, "glyph: merge %s", h)
		}
	}
	return errors.Wrap(tx.Commit(), "glyph: commit")
}

// Counts loads every stored tally into a fresh counter.
func (s *Store) Counts(ctx context.Context) (*Counter, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT hash, count FROM shape_counts")
	if err != nil {
		return nil, errors.Wrap(err, "glyph: query counts")
	}
	defer rows.Close()

	c := NewCounter()
	for rows.Next() {
		var h string
		var n int
		if err := rows.Scan(&h, &n); err != nil {
			return nil, errors.Wrap(err, "glyph: scan count")
		}
		c.AddHash(h, n)
	}
	return c, errors.Wrap(rows.Err(), "glyph: iterate counts")
}

// Frequent returns digests with a stored count of at least limit.
func (s *Store) Frequent(ctx context.Context, limit int) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT hash FROM shape_counts WHERE count >= ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "glyph: query frequent")
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, errors.Wrap(err, "glyph: scan hash")
		}
		out[h] = true
	}
	return out, errors.Wrap(rows.Err(), "glyph: iterate frequent")
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
