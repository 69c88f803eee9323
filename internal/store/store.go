// Package store is the persistence layer: tracked events, the append-only
// price history, run records, subscribers and the derived aggregates built
// from them. It exclusively owns all persisted state.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store wraps the SQLite database holding all tracker state.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Parent directories are created for file paths.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA journal_mode = WAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS tracked_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  last_scraped_at TEXT,
  lowest_price_value REAL,
  lowest_price_raw TEXT,
  lowest_currency TEXT,
  lowest_seen_at TEXT
);

CREATE TABLE IF NOT EXISTS price_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES tracked_events(id),
  scraped_at TEXT NOT NULL,
  title TEXT,
  date_label TEXT,
  price_raw TEXT,
  price_value REAL,
  currency TEXT,
  listing_url TEXT
);

CREATE TABLE IF NOT EXISTS scrape_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id INTEGER NOT NULL REFERENCES tracked_events(id),
  started_at TEXT NOT NULL,
  finished_at TEXT,
  status TEXT NOT NULL,
  error TEXT,
  items_found INTEGER NOT NULL DEFAULT 0,
  items_saved INTEGER NOT NULL DEFAULT 0,
  min_price_found REAL
);

CREATE TABLE IF NOT EXISTS subscribers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL,
  event_id INTEGER REFERENCES tracked_events(id),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  UNIQUE(email, event_id)
);

CREATE INDEX IF NOT EXISTS idx_price_history_event_time
  ON price_history(event_id, scraped_at);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_event_time
  ON scrape_runs(event_id, started_at);
CREATE INDEX IF NOT EXISTS idx_subscribers_event
  ON subscribers(event_id, active);
`
	_, err := db.Exec(schema)
	return err
}

// NowUTC returns the current time as the UTC RFC3339 millisecond string
// used for every persisted timestamp. The format sorts lexicographically.
func NowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
