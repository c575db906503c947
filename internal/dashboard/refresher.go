package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/supporthub/backend/internal/db"
	"github.com/supporthub/backend/internal/models"
	"github.com/supporthub/backend/internal/stats"
)

// Source is the slice of storage the dashboard reads from.
type Source interface {
	ActivePhase(ctx context.Context) (*models.Phase, error)
	ListFeedbacks(ctx context.Context, filters db.FeedbackFilters) ([]models.Feedback, error)
}

// PhaseScopedFetch builds a Fetch that re-resolves the open phase on every
// pass and lists only its records. Phase transitions publish on the bus, so
// the next pass picks up the new scope. With no open phase the dashboard
// shows an empty snapshot.
func PhaseScopedFetch(src Source) func(ctx context.Context) ([]models.Feedback, error) {
	return func(ctx context.Context) ([]models.Feedback, error) {
		phase, err := src.ActivePhase(ctx)
		if err != nil {
			return nil, err
		}
		if phase == nil {
			return nil, nil
		}
		return src.ListFeedbacks(ctx, db.FeedbackFilters{PhaseID: phase.ID})
	}
}

// Snapshot is one complete recomputation of the dashboard aggregates over a
// freshly fetched record set. Snapshots are immutable once installed.
type Snapshot struct {
	Overview    stats.Overview `json:"overview"`
	Windows     Windows        `json:"windows"`
	RefreshedAt time.Time      `json:"refreshed_at"`
	Generation  uint64         `json:"generation"`
}

// Windows are the quick-stat cards at the top of the dashboard.
type Windows struct {
	LastHour       int           `json:"last_hour"`
	LastTenMinutes int           `json:"last_ten_minutes"`
	TopIssues      []stats.Entry `json:"top_issues"`
	TopCities      []stats.Entry `json:"top_cities"`
}

func buildWindows(now time.Time, records []models.Feedback) Windows {
	w := Windows{
		TopIssues: stats.TopN(records, stats.IssueType, 5),
		TopCities: stats.TopN(records, stats.City, 5),
	}
	hourAgo := now.Add(-time.Hour)
	tenAgo := now.Add(-10 * time.Minute)
	for _, r := range records {
		if r.CreatedAt.After(hourAgo) {
			w.LastHour++
		}
		if r.CreatedAt.After(tenAgo) {
			w.LastTenMinutes++
		}
	}
	return w
}

// Refresher funnels the two refresh producers (realtime invalidations and
// the polling ticker) into one fetch-and-recompute handler. Every pass owns
// a private accumulator; a monotonically increasing generation counter
// discards results of fetches that were superseded while in flight.
type Refresher struct {
	Fetch    func(ctx context.Context) ([]models.Feedback, error)
	Bucketer stats.Bucketer
	Interval time.Duration
	Logger   zerolog.Logger

	gen     atomic.Uint64
	mu      sync.RWMutex
	current Snapshot
}

// Snapshot returns the latest installed aggregates.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Refresh runs one fetch-and-recompute pass. If a newer pass finished while
// this one was fetching, its result is dropped (last-fetch-wins). The
// returned snapshot is whatever is installed afterwards.
func (r *Refresher) Refresh(ctx context.Context) (Snapshot, error) {
	gen := r.gen.Add(1)
	records, err := r.Fetch(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	now := time.Now().UTC()
	snap := Snapshot{
		Overview:    stats.BuildOverview(r.Bucketer, records),
		Windows:     buildWindows(now, records),
		RefreshedAt: now,
		Generation:  gen,
	}

	r.mu.Lock()
	if gen > r.current.Generation {
		r.current = snap
	}
	installed := r.current
	r.mu.Unlock()
	return installed, nil
}

// Run blocks until ctx is cancelled, refreshing on every invalidation
// signal and on the polling interval. Both producers are safe to fire
// concurrently; they only ever trigger a fresh pass.
func (r *Refresher) Run(ctx context.Context, invalidations <-chan struct{}) {
	interval := r.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := r.Refresh(ctx); err != nil {
		r.Logger.Warn().Err(err).Msg("initial dashboard refresh failed")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-invalidations:
		case <-ticker.C:
		}
		if _, err := r.Refresh(ctx); err != nil {
			r.Logger.Warn().Err(err).Msg("dashboard refresh failed")
		}
	}
}
