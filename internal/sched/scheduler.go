// Package sched triggers periodic tracking passes over all active events.
// It owns the run-overlap guard: only one pass is in flight at a time, so
// the per-event no-overlap obligation of the tracker holds for scheduled
// work and dashboard-triggered scrape-alls alike.
package sched

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/eddychk/viagoscrap/internal/models"
	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

// Scheduler runs tracking passes on a fixed, runtime-adjustable interval.
type Scheduler struct {
	Store   *store.Store
	Tracker *track.Tracker
	Logger  *slog.Logger

	intervalMin   atomic.Int64
	passInFlight  atomic.Bool
	limiter       *rate.Limiter
	maxConcurrent int
}

// New creates a scheduler. maxConcurrent bounds how many events one pass
// works in parallel; the limiter paces run starts to stay polite toward
// the scraped site.
func New(st *store.Store, tr *track.Tracker, logger *slog.Logger, intervalMin, maxConcurrent int) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	s := &Scheduler{
		Store:         st,
		Tracker:       tr,
		Logger:        logger,
		limiter:       rate.NewLimiter(rate.Every(2*time.Second), 1),
		maxConcurrent: maxConcurrent,
	}
	s.SetInterval(intervalMin)
	return s
}

// Interval returns the current pass interval in minutes.
func (s *Scheduler) Interval() int {
	return int(s.intervalMin.Load())
}

// SetInterval updates the pass interval (clamped to at least one minute).
// It takes effect on the next tick.
func (s *Scheduler) SetInterval(min int) {
	if min < 1 {
		min = 1
	}
	s.intervalMin.Store(int64(min))
}

// Run blocks until ctx is cancelled, firing one pass per interval. The
// interval is re-read every cycle so dashboard updates apply without
// rescheduling machinery.
func (s *Scheduler) Run(ctx context.Context) {
	s.logInfo("scheduler started", "interval_min", s.Interval())
	for {
		timer := time.NewTimer(time.Duration(s.Interval()) * time.Minute)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logInfo("scheduler stopped")
			return
		case <-timer.C:
			s.RunAll(ctx)
		}
	}
}

// RunAll performs one tracking pass over all active events. When a pass is
// already in flight the call is skipped and returns nil, mirroring
// single-instance job semantics. Store failures abort the pass.
func (s *Scheduler) RunAll(ctx context.Context) []models.RunResult {
	if !s.passInFlight.CompareAndSwap(false, true) {
		s.logInfo("pass already in flight, skipping")
		return nil
	}
	defer s.passInFlight.Store(false)

	events, err := s.Store.ActiveEvents()
	if err != nil {
		s.logError("list active events", err)
		return nil
	}
	if len(events) == 0 {
		return []models.RunResult{}
	}

	results := make([]models.RunResult, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, ev := range events {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				results[i] = models.RunResult{EventID: ev.ID, Status: models.RunError, Error: err.Error()}
				return nil
			}
			res, err := s.Tracker.RunOnce(gctx, ev)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logError("tracking pass", err)
	}
	return results
}

func (s *Scheduler) logInfo(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, args...)
	}
}

func (s *Scheduler) logError(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Error(msg, "error", err)
	}
}
