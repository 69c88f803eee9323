package store

import (
	"fmt"

	"github.com/eddychk/viagoscrap/internal/models"
)

// StartRun inserts a run record in the running state and returns its id.
func (s *Store) StartRun(eventID int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scrape_runs(event_id, started_at, status)
		VALUES(?, ?, ?)
	`, eventID, NowUTC(), models.RunRunning)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun finalizes a run into ok or error. Each run is finalized
// exactly once; callers own that guarantee.
func (s *Store) FinishRun(runID int64, status string, errMsg *string, itemsFound, itemsSaved int, minPrice *float64) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs
		SET finished_at = ?, status = ?, error = ?,
			items_found = ?, items_saved = ?, min_price_found = ?
		WHERE id = ?
	`, NowUTC(), status, errMsg, itemsFound, itemsSaved, minPrice, runID)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

// ListRuns returns recent runs, newest first, optionally scoped to one
// event. Limit is clamped to [1, 1000].
func (s *Store) ListRuns(eventID *int64, limit int) ([]models.ScrapeRun, error) {
	limit = clamp(limit, 1, 1000)

	query := `
		SELECT id, event_id, started_at, finished_at, status, error,
			items_found, items_saved, min_price_found
		FROM scrape_runs
	`
	args := []any{}
	if eventID != nil {
		query += ` WHERE event_id = ?`
		args = append(args, *eventID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	var out []models.ScrapeRun
	err := s.db.Select(&out, query, args...)
	return out, err
}
