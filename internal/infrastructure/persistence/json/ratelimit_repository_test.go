package json

import (
	"context"
	"testing"
	"time"

	"github.com/bughunter/bughunter/internal/domain/ratelimit"
)

func TestRateLimitRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRateLimitRepository(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := ratelimit.NewWindow("alice", "scan_submit", 100, time.Hour, now)
	w.Allow(now)
	w.Allow(now)

	if err := repo.Save(ctx, w); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := repo.Find(ctx, "alice", "scan_submit")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a persisted window")
	}
	if loaded.Count != 2 || loaded.Limit != 100 {
		t.Errorf("unexpected window state: count=%d limit=%d", loaded.Count, loaded.Limit)
	}
	if !loaded.WindowStart.Equal(now) {
		t.Errorf("window start mismatch: %s", loaded.WindowStart)
	}
}

func TestRateLimitRepositoryFindMissingReturnsNil(t *testing.T) {
	repo, _ := NewRateLimitRepository(t.TempDir())
	loaded, err := repo.Find(context.Background(), "nobody", "nothing")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for unknown pair, got %+v", loaded)
	}
}

func TestRateLimitRepositorySaveOverwritesSamePair(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewRateLimitRepository(t.TempDir())

	now := time.Now().UTC()
	w := ratelimit.NewWindow("alice", "scan_submit", 10, time.Hour, now)
	_ = repo.Save(ctx, w)
	w.Allow(now)
	_ = repo.Save(ctx, w)

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 window, got %d", len(all))
	}
	if all[0].Count != 1 {
		t.Errorf("expected latest snapshot, got count %d", all[0].Count)
	}
}
