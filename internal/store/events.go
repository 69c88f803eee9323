package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eddychk/viagoscrap/internal/models"
)

const eventColumns = `id, name, url, active, created_at, last_scraped_at,
	lowest_price_value, lowest_price_raw, lowest_currency, lowest_seen_at`

// UpsertEvent creates or updates a tracked event keyed on its URL.
// Re-adding a known URL updates name and active but preserves the id and
// all accumulated history.
func (s *Store) UpsertEvent(name, url string, active bool) (int64, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)

	_, err := s.db.Exec(`
		INSERT INTO tracked_events(name, url, active, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			active = excluded.active
	`, name, url, boolToInt(active), NowUTC())
	if err != nil {
		return 0, fmt.Errorf("upsert event: %w", err)
	}

	var id int64
	if err := s.db.Get(&id, `SELECT id FROM tracked_events WHERE url = ?`, url); err != nil {
		return 0, fmt.Errorf("resolve event id after upsert: %w", err)
	}
	return id, nil
}

// GetEvent returns the event with the given id, or nil when unknown.
func (s *Store) GetEvent(id int64) (*models.TrackedEvent, error) {
	var ev models.TrackedEvent
	err := s.db.Get(&ev, `SELECT `+eventColumns+` FROM tracked_events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return &ev, nil
}

// ListEvents returns all tracked events, newest first.
func (s *Store) ListEvents() ([]models.TrackedEvent, error) {
	var out []models.TrackedEvent
	err := s.db.Select(&out, `
		SELECT `+eventColumns+`
		FROM tracked_events
		ORDER BY created_at DESC
	`)
	return out, err
}

// ActiveEvents returns the events under surveillance, in id order.
func (s *Store) ActiveEvents() ([]models.TrackedEvent, error) {
	var out []models.TrackedEvent
	err := s.db.Select(&out, `
		SELECT `+eventColumns+`
		FROM tracked_events
		WHERE active = 1
		ORDER BY id
	`)
	return out, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
