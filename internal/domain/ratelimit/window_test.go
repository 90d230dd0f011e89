package ratelimit

import (
	"testing"
	"time"
)

func TestWindowAllowsUpToLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewWindow("alice", "scan_submit", 5, time.Hour, now)

	for i := 0; i < 5; i++ {
		if !w.Allow(now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if w.Allow(now) {
		t.Error("6th request inside the window should be denied")
	}
	if w.Count != 5 {
		t.Errorf("denied request must not increment count, got %d", w.Count)
	}
}

func TestWindowResetsAfterExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewWindow("alice", "scan_submit", 2, time.Hour, now)

	w.Allow(now)
	w.Allow(now)
	if w.Allow(now) {
		t.Fatal("window should be exhausted")
	}

	later := now.Add(time.Hour + time.Second)
	if !w.Allow(later) {
		t.Error("expired window should reset and allow again")
	}
	if !w.WindowStart.Equal(later) {
		t.Errorf("expected window start %s, got %s", later, w.WindowStart)
	}
	if w.Count != 1 {
		t.Errorf("expected count 1 after reset, got %d", w.Count)
	}
}

func TestWindowExpiredBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewWindow("alice", "scan_submit", 1, time.Hour, now)

	if w.Expired(now.Add(time.Hour)) {
		t.Error("window should not be expired exactly at its boundary")
	}
	if !w.Expired(now.Add(time.Hour + time.Nanosecond)) {
		t.Error("window should be expired past its boundary")
	}
}

func TestWindowKey(t *testing.T) {
	w := NewWindow("alice", "scan_submit", 1, time.Hour, time.Now())
	if w.Key() != "alice|scan_submit" {
		t.Errorf("unexpected key: %s", w.Key())
	}
}
