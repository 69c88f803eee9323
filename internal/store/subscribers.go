package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eddychk/viagoscrap/internal/models"
)

// UpsertSubscriber registers an email for price-drop alerts, scoped to one
// event or global when eventID is nil. Re-adding a known (email, event)
// pair reactivates it instead of duplicating. SQLite treats NULLs as
// distinct in unique constraints, so the global scope is upserted by hand.
func (s *Store) UpsertSubscriber(email string, eventID *int64) (int64, error) {
	clean := strings.ToLower(strings.TrimSpace(email))

	if eventID == nil {
		var id int64
		err := s.db.Get(&id, `
			SELECT id FROM subscribers WHERE email = ? AND event_id IS NULL
		`, clean)
		if err == nil {
			if _, err := s.db.Exec(`UPDATE subscribers SET active = 1 WHERE id = ?`, id); err != nil {
				return 0, fmt.Errorf("reactivate subscriber: %w", err)
			}
			return id, nil
		}
		res, err := s.db.Exec(`
			INSERT INTO subscribers(email, event_id, active, created_at)
			VALUES(?, NULL, 1, ?)
		`, clean, NowUTC())
		if err != nil {
			return 0, fmt.Errorf("insert subscriber: %w", err)
		}
		return res.LastInsertId()
	}

	_, err := s.db.Exec(`
		INSERT INTO subscribers(email, event_id, active, created_at)
		VALUES(?, ?, 1, ?)
		ON CONFLICT(email, event_id) DO UPDATE SET active = 1
	`, clean, *eventID, NowUTC())
	if err != nil {
		return 0, fmt.Errorf("upsert subscriber: %w", err)
	}

	var id int64
	err = s.db.Get(&id, `
		SELECT id FROM subscribers WHERE email = ? AND event_id = ?
	`, clean, *eventID)
	if err != nil {
		return 0, fmt.Errorf("resolve subscriber id after upsert: %w", err)
	}
	return id, nil
}

// GetSubscriber returns one subscriber row, or nil when unknown.
func (s *Store) GetSubscriber(id int64) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := s.db.Get(&sub, `
		SELECT id, email, event_id, active, created_at
		FROM subscribers WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscribers returns active subscribers. With an event id, the scope
// is that event's subscribers plus the global ones; with nil, everyone.
func (s *Store) ListSubscribers(eventID *int64) ([]models.Subscriber, error) {
	var out []models.Subscriber
	if eventID == nil {
		err := s.db.Select(&out, `
			SELECT id, email, event_id, active, created_at
			FROM subscribers
			WHERE active = 1
			ORDER BY created_at DESC
		`)
		return out, err
	}
	err := s.db.Select(&out, `
		SELECT id, email, event_id, active, created_at
		FROM subscribers
		WHERE active = 1 AND (event_id IS NULL OR event_id = ?)
		ORDER BY created_at DESC
	`, *eventID)
	return out, err
}

// DeactivateSubscriber is a soft delete: the row stays, alerts stop.
func (s *Store) DeactivateSubscriber(id int64) error {
	_, err := s.db.Exec(`UPDATE subscribers SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscriber %d: %w", id, err)
	}
	return nil
}
