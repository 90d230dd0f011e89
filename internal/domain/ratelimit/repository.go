package ratelimit

import "context"

// Repository defines the interface for rate limit window persistence
type Repository interface {
	// Save persists the current state of a window
	Save(ctx context.Context, window *Window) error

	// Find retrieves the window for an (actor, endpoint) pair, or nil
	// when none has been created yet
	Find(ctx context.Context, actor, endpoint string) (*Window, error)

	// FindAll retrieves every tracked window
	FindAll(ctx context.Context) ([]*Window, error)
}
