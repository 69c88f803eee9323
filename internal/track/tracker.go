// Package track orchestrates one tracking cycle per event: extract
// listings, normalize and persist prices, recompute the event summary,
// decide whether the minimum dropped, and alert subscribers.
package track

import (
	"context"
	"log/slog"

	"github.com/eddychk/viagoscrap/internal/models"
	"github.com/eddychk/viagoscrap/internal/price"
	"github.com/eddychk/viagoscrap/internal/store"
)

// Extractor produces the raw listings for one page load.
type Extractor interface {
	Extract(ctx context.Context, url string) ([]models.Listing, error)
}

// Notifier dispatches price-drop alerts. It never fails a run; outcomes
// come back in the AlertResult.
type Notifier interface {
	SendPriceDrop(ctx context.Context, eventName, eventURL string, oldPrice, newPrice float64, currency string, recipients []string) *models.AlertResult
}

// Tracker drives tracking cycles against one store.
type Tracker struct {
	Store     *store.Store
	Extractor Extractor
	Notifier  Notifier
	Logger    *slog.Logger
}

func New(st *store.Store, ex Extractor, nf Notifier, logger *slog.Logger) *Tracker {
	return &Tracker{Store: st, Extractor: ex, Notifier: nf, Logger: logger}
}

// IsDrop reports whether the current cycle's minimum undercuts the
// previously cached one. A first-ever observation has no baseline and is
// never a drop; equal prices are not drops either.
func IsDrop(previousLow, newLow *float64) bool {
	return previousLow != nil && newLow != nil && *newLow < *previousLow
}

// RunOnce executes one tracking cycle for one event. An extraction
// failure finalizes the run as error and comes back inside the result; a
// returned error means the store itself failed, which is fatal to the
// cycle. Either way the run record never stays in the running state.
func (t *Tracker) RunOnce(ctx context.Context, event models.TrackedEvent) (models.RunResult, error) {
	runID, err := t.Store.StartRun(event.ID)
	if err != nil {
		return models.RunResult{EventID: event.ID, Status: models.RunError, Error: err.Error()}, err
	}

	// Baseline read before this cycle's extraction.
	previousLow := event.LowestPriceValue

	listings, err := t.Extractor.Extract(ctx, event.URL)
	if err != nil {
		msg := err.Error()
		if ferr := t.Store.FinishRun(runID, models.RunError, &msg, 0, 0, nil); ferr != nil {
			return models.RunResult{EventID: event.ID, Status: models.RunError, Error: msg}, ferr
		}
		t.logWarn("scrape failed", "event_id", event.ID, "error", msg)
		return models.RunResult{EventID: event.ID, Status: models.RunError, Error: msg}, nil
	}

	now := store.NowUTC()
	rows := make([]models.PriceEntry, 0, len(listings))
	for _, l := range listings {
		value, currency := price.Normalize(l.PriceRaw)
		rows = append(rows, models.PriceEntry{
			EventID:    event.ID,
			ScrapedAt:  now,
			Title:      l.Title,
			DateLabel:  l.DateLabel,
			PriceRaw:   l.PriceRaw,
			PriceValue: value,
			Currency:   currency,
			ListingURL: l.URL,
		})
	}

	saved, err := t.Store.AppendHistory(event.ID, rows)
	if err != nil {
		return t.failRun(runID, event.ID, err)
	}
	if err := t.Store.RecomputeEventSummary(event.ID); err != nil {
		return t.failRun(runID, event.ID, err)
	}

	minPrice := batchMin(rows)

	result := models.RunResult{
		EventID:       event.ID,
		Status:        models.RunOK,
		ItemsFound:    len(listings),
		ItemsSaved:    saved,
		MinPriceFound: minPrice,
	}

	if IsDrop(previousLow, minPrice) {
		result.Alert = t.alertDrop(ctx, event, *previousLow, *minPrice, rows)
	}

	if err := t.Store.FinishRun(runID, models.RunOK, nil, len(listings), saved, minPrice); err != nil {
		return result, err
	}
	t.logInfo("run finished", "event_id", event.ID,
		"items_found", len(listings), "items_saved", saved)
	return result, nil
}

// failRun finalizes the run as error on a store failure, then propagates
// the failure. Finalization is best effort: if even that write fails, the
// original failure still wins.
func (t *Tracker) failRun(runID, eventID int64, err error) (models.RunResult, error) {
	msg := err.Error()
	_ = t.Store.FinishRun(runID, models.RunError, &msg, 0, 0, nil)
	return models.RunResult{EventID: eventID, Status: models.RunError, Error: msg}, err
}

// alertDrop resolves the recipient set (event-scoped plus global
// subscribers) and dispatches the notification. The currency comes from
// the first batch entry, defaulting to EUR.
func (t *Tracker) alertDrop(ctx context.Context, event models.TrackedEvent, oldPrice, newPrice float64, rows []models.PriceEntry) *models.AlertResult {
	var recipients []string
	subs, err := t.Store.ListSubscribers(&event.ID)
	if err != nil {
		t.logWarn("subscriber lookup failed", "event_id", event.ID, "error", err)
	} else {
		for _, s := range subs {
			if s.Email != "" {
				recipients = append(recipients, s.Email)
			}
		}
	}

	currency := "EUR"
	if len(rows) > 0 && rows[0].Currency != nil {
		currency = *rows[0].Currency
	}

	if t.Notifier == nil {
		return &models.AlertResult{Sent: false, Reason: "no_notifier"}
	}
	return t.Notifier.SendPriceDrop(ctx, event.Name, event.URL, oldPrice, newPrice, currency, recipients)
}

func batchMin(rows []models.PriceEntry) *float64 {
	var min *float64
	for _, r := range rows {
		if r.PriceValue == nil {
			continue
		}
		if min == nil || *r.PriceValue < *min {
			v := *r.PriceValue
			min = &v
		}
	}
	return min
}

func (t *Tracker) logInfo(msg string, args ...any) {
	if t.Logger != nil {
		t.Logger.Info(msg, args...)
	}
}

func (t *Tracker) logWarn(msg string, args ...any) {
	if t.Logger != nil {
		t.Logger.Warn(msg, args...)
	}
}
