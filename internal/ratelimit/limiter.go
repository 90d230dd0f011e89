// Package ratelimit implements the sliding-window limiter bounding
// submissions per actor and endpoint.
package ratelimit

import (
	"context"
	"sync"
	"time"

	domain "github.com/bughunter/bughunter/internal/domain/ratelimit"
)

// Config sets the per-window policy applied to every (actor, endpoint)
// pair.
type Config struct {
	Limit  int
	Window time.Duration
}

// Limiter tracks one window per (actor, endpoint) pair. Increments are
// serialized behind a mutex so concurrent submissions cannot lose
// updates. Windows are written through the repository when one is
// configured; persistence failures do not affect the allow decision.
type Limiter struct {
	cfg  Config
	repo domain.Repository
	now  func() time.Time

	mu      sync.Mutex
	windows map[string]*domain.Window
}

// NewLimiter creates a limiter. repo may be nil for purely in-memory
// operation (tests, ephemeral runs).
func NewLimiter(cfg Config, repo domain.Repository) *Limiter {
	return &Limiter{
		cfg:     cfg,
		repo:    repo,
		now:     time.Now,
		windows: make(map[string]*domain.Window),
	}
}

// Allow consumes one slot for the pair, creating the window on first
// use and resetting it on expiry. Returns false when the active window
// is exhausted; it never queues or retries.
func (l *Limiter) Allow(ctx context.Context, actor, endpoint string) bool {
	now := l.now().UTC()

	l.mu.Lock()
	key := actor + "|" + endpoint
	window, ok := l.windows[key]
	if !ok {
		window = domain.NewWindow(actor, endpoint, l.cfg.Limit, l.cfg.Window, now)
		l.windows[key] = window
	}
	allowed := window.Allow(now)
	snapshot := *window
	l.mu.Unlock()

	if l.repo != nil {
		// Window state is persisted best-effort; the decision above is
		// already made and must not be blocked by storage.
		_ = l.repo.Save(ctx, &snapshot)
	}

	return allowed
}

// Windows returns a snapshot of all tracked windows.
func (l *Limiter) Windows() []domain.Window {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Window, 0, len(l.windows))
	for _, w := range l.windows {
		out = append(out, *w)
	}
	return out
}
