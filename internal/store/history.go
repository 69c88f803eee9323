package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eddychk/viagoscrap/internal/models"
)

// AppendHistory inserts one run's batch of price observations as a single
// transaction. Rows are append-only: nothing here ever updates or deletes
// an existing entry. An empty batch is a no-op.
func (s *Store) AppendHistory(eventID int64, rows []models.PriceEntry) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin history append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		_, err := tx.Exec(`
			INSERT INTO price_history(
				event_id, scraped_at, title, date_label,
				price_raw, price_value, currency, listing_url)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		`, eventID, r.ScrapedAt, r.Title, r.DateLabel,
			r.PriceRaw, r.PriceValue, r.Currency, r.ListingURL)
		if err != nil {
			return 0, fmt.Errorf("append history row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history append: %w", err)
	}
	return len(rows), nil
}

// RecomputeEventSummary rebuilds the event's cached rolling summary from
// the full persisted history. The cached fields are never mutated any
// other way, so they always stay derivable from price_history. Both reads
// and the write happen in one transaction so the summary reflects a
// consistent snapshot.
func (s *Store) RecomputeEventSummary(eventID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin summary recompute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lowest struct {
		PriceValue *float64 `db:"price_value"`
		PriceRaw   *string  `db:"price_raw"`
		Currency   *string  `db:"currency"`
		ScrapedAt  *string  `db:"scraped_at"`
	}
	err = tx.Get(&lowest, `
		SELECT price_value, price_raw, currency, scraped_at
		FROM price_history
		WHERE event_id = ? AND price_value IS NOT NULL
		ORDER BY price_value ASC, scraped_at ASC
		LIMIT 1
	`, eventID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lowest price lookup: %w", err)
	}

	var lastScraped *string
	err = tx.Get(&lastScraped, `
		SELECT MAX(scraped_at) FROM price_history WHERE event_id = ?
	`, eventID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("last scrape lookup: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE tracked_events
		SET last_scraped_at = ?,
			lowest_price_value = ?,
			lowest_price_raw = ?,
			lowest_currency = ?,
			lowest_seen_at = ?
		WHERE id = ?
	`, lastScraped, lowest.PriceValue, lowest.PriceRaw, lowest.Currency,
		lowest.ScrapedAt, eventID)
	if err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	return tx.Commit()
}

// HistorySeries returns the newest history entries for an event, limit
// clamped to [1, 5000].
func (s *Store) HistorySeries(eventID int64, limit int) ([]models.PriceEntry, error) {
	limit = clamp(limit, 1, 5000)
	var out []models.PriceEntry
	err := s.db.Select(&out, `
		SELECT id, event_id, scraped_at,
			COALESCE(title, '') AS title,
			COALESCE(date_label, '') AS date_label,
			COALESCE(price_raw, '') AS price_raw,
			price_value, currency,
			COALESCE(listing_url, '') AS listing_url
		FROM price_history
		WHERE event_id = ?
		ORDER BY scraped_at DESC, id DESC
		LIMIT ?
	`, eventID, limit)
	return out, err
}

// ChartPoints aggregates the history into one point per distinct scrape
// timestamp: the minimum priced entry observed at that timestamp.
func (s *Store) ChartPoints(eventID int64) ([]models.ChartPoint, error) {
	var out []models.ChartPoint
	err := s.db.Select(&out, `
		SELECT scraped_at, MIN(price_value) AS min_price
		FROM price_history
		WHERE event_id = ? AND price_value IS NOT NULL
		GROUP BY scraped_at
		ORDER BY scraped_at
	`, eventID)
	return out, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
