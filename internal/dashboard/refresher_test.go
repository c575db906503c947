package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/supporthub/backend/internal/db"
	"github.com/supporthub/backend/internal/models"
	"github.com/supporthub/backend/internal/stats"
)

func newRefresher(fetch func(ctx context.Context) ([]models.Feedback, error)) *Refresher {
	b, _ := stats.NewBucketer(stats.DefaultBucketWidth)
	return &Refresher{Fetch: fetch, Bucketer: b, Logger: zerolog.Nop()}
}

func records(n int, issue string) []models.Feedback {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	out := make([]models.Feedback, n)
	for i := range out {
		out[i] = models.Feedback{IssueType: issue, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func TestRefreshInstallsSnapshot(t *testing.T) {
	r := newRefresher(func(ctx context.Context) ([]models.Feedback, error) {
		return records(3, "قطعی"), nil
	})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Overview.Total != 3 || snap.Generation != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if got := r.Snapshot(); got.Generation != 1 {
		t.Fatalf("snapshot not installed: %+v", got)
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	release := make(chan struct{})
	slowStarted := make(chan struct{})
	calls := 0
	var mu sync.Mutex

	r := newRefresher(func(ctx context.Context) ([]models.Feedback, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(slowStarted)
			<-release // first fetch finishes after the second
			return records(1, "old"), nil
		}
		return records(5, "new"), nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := r.Refresh(context.Background()); err != nil {
			t.Errorf("slow refresh failed: %v", err)
		}
	}()
	<-slowStarted

	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("fast refresh failed: %v", err)
	}
	close(release)
	wg.Wait()

	snap := r.Snapshot()
	if snap.Generation != 2 {
		t.Fatalf("expected newest generation to win, got %d", snap.Generation)
	}
	if snap.Overview.Total != 5 || snap.Overview.Issues[0].Label != "new" {
		t.Fatalf("stale fetch overwrote newer snapshot: %+v", snap.Overview)
	}
}

type fakeSource struct {
	phase       *models.Phase
	records     []models.Feedback
	lastFilters db.FeedbackFilters
	listed      bool
}

func (f *fakeSource) ActivePhase(ctx context.Context) (*models.Phase, error) {
	return f.phase, nil
}

func (f *fakeSource) ListFeedbacks(ctx context.Context, filters db.FeedbackFilters) ([]models.Feedback, error) {
	f.lastFilters = filters
	f.listed = true
	return f.records, nil
}

func TestPhaseScopedFetch(t *testing.T) {
	src := &fakeSource{
		phase:   &models.Phase{ID: "ph-7", Status: models.PhaseOpen},
		records: records(4, "قطعی"),
	}
	fetch := PhaseScopedFetch(src)

	got, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	if src.lastFilters.PhaseID != "ph-7" {
		t.Fatalf("fetch must scope to the open phase, got filters %+v", src.lastFilters)
	}
}

func TestPhaseScopedFetchNoOpenPhase(t *testing.T) {
	src := &fakeSource{records: records(4, "قطعی")}
	fetch := PhaseScopedFetch(src)

	got, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected empty result without an open phase, got %d records", len(got))
	}
	if src.listed {
		t.Fatal("no list query may run without an open phase")
	}
}

func TestBuildWindows(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	recs := []models.Feedback{
		{IssueType: "قطعی", CreatedAt: now.Add(-5 * time.Minute)},
		{IssueType: "قطعی", CreatedAt: now.Add(-30 * time.Minute)},
		{IssueType: "کندی", CreatedAt: now.Add(-2 * time.Hour)},
	}
	w := buildWindows(now, recs)
	if w.LastHour != 2 || w.LastTenMinutes != 1 {
		t.Fatalf("unexpected window counts: %+v", w)
	}
	if len(w.TopIssues) != 2 || w.TopIssues[0].Label != "قطعی" || w.TopIssues[0].Count != 2 {
		t.Fatalf("unexpected top issues: %+v", w.TopIssues)
	}
}

func TestRefreshErrorKeepsLastSnapshot(t *testing.T) {
	fail := false
	r := newRefresher(func(ctx context.Context) ([]models.Feedback, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return records(2, "قطعی"), nil
	})
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail = true
	snap, err := r.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if snap.Overview.Total != 2 {
		t.Fatalf("failed pass must not clobber the installed snapshot: %+v", snap)
	}
}

func TestRunRespondsToInvalidations(t *testing.T) {
	var mu sync.Mutex
	fetches := 0
	r := newRefresher(func(ctx context.Context) ([]models.Feedback, error) {
		mu.Lock()
		fetches++
		mu.Unlock()
		return nil, nil
	})
	r.Interval = time.Hour // only invalidations should trigger after the first pass

	ctx, cancel := context.WithCancel(context.Background())
	invalidations := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		r.Run(ctx, invalidations)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := fetches
		mu.Unlock()
		if n >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial refresh never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	invalidations <- struct{}{}
	deadline = time.After(2 * time.Second)
	for {
		mu.Lock()
		n := fetches
		mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("invalidation did not trigger a refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
