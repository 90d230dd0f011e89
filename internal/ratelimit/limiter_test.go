package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "github.com/bughunter/bughunter/internal/domain/ratelimit"
)

type recordingRepo struct {
	mu    sync.Mutex
	saved []domain.Window
}

func (r *recordingRepo) Save(ctx context.Context, w *domain.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *w)
	return nil
}

func (r *recordingRepo) Find(ctx context.Context, actor, endpoint string) (*domain.Window, error) {
	return nil, nil
}

func (r *recordingRepo) FindAll(ctx context.Context) ([]*domain.Window, error) {
	return nil, nil
}

func newTestLimiter(limit int, window time.Duration) (*Limiter, *time.Time) {
	l := NewLimiter(Config{Limit: limit, Window: window}, nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterAllowsUpToLimitThenDenies(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "alice", "scan_submit") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "alice", "scan_submit") {
		t.Error("6th request inside the window should be denied")
	}
}

func TestLimiterResetsAfterWindowExpiry(t *testing.T) {
	ctx := context.Background()
	l, now := newTestLimiter(2, time.Hour)

	l.Allow(ctx, "alice", "scan_submit")
	l.Allow(ctx, "alice", "scan_submit")
	if l.Allow(ctx, "alice", "scan_submit") {
		t.Fatal("window should be exhausted")
	}

	*now = now.Add(time.Hour + time.Second)
	if !l.Allow(ctx, "alice", "scan_submit") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestLimiterTracksActorsIndependently(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(1, time.Hour)

	if !l.Allow(ctx, "alice", "scan_submit") {
		t.Fatal("alice's first request should be allowed")
	}
	if l.Allow(ctx, "alice", "scan_submit") {
		t.Error("alice's second request should be denied")
	}
	if !l.Allow(ctx, "bob", "scan_submit") {
		t.Error("bob's window is independent of alice's")
	}
}

func TestLimiterTracksEndpointsIndependently(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(1, time.Hour)

	l.Allow(ctx, "alice", "scan_submit")
	if !l.Allow(ctx, "alice", "schedule_add") {
		t.Error("endpoints must have separate windows")
	}
}

func TestLimiterPersistsWindowSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := &recordingRepo{}
	l := NewLimiter(Config{Limit: 3, Window: time.Hour}, repo)

	l.Allow(ctx, "alice", "scan_submit")
	l.Allow(ctx, "alice", "scan_submit")

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(repo.saved))
	}
	if repo.saved[1].Count != 2 {
		t.Errorf("expected count 2 in second snapshot, got %d", repo.saved[1].Count)
	}
}

func TestLimiterConcurrentAllowNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(10, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "alice", "scan_submit") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("expected exactly 10 allowed, got %d", allowed)
	}
}
