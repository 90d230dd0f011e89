package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bughunter/bughunter/internal/domain/ratelimit"
	"github.com/bughunter/bughunter/internal/shared/security"
)

// RateLimitRepository implements the ratelimit.Repository interface
// using a single JSON document keyed by (actor, endpoint).
type RateLimitRepository struct {
	filePath string
	mu       sync.RWMutex
}

// NewRateLimitRepository creates a new JSON-based rate limit repository
func NewRateLimitRepository(resultsDir string) (*RateLimitRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	filePath, err := security.ResolveWithin(resultsDir, "rate_limits.json")
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit store path: %w", err)
	}

	return &RateLimitRepository{filePath: filePath}, nil
}

// Save persists the current state of a window
func (r *RateLimitRepository) Save(ctx context.Context, window *ratelimit.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	windows, err := r.load()
	if err != nil {
		return err
	}

	windows[window.Key()] = window
	return r.store(windows)
}

// Find retrieves the window for an (actor, endpoint) pair, or nil
func (r *RateLimitRepository) Find(ctx context.Context, actor, endpoint string) (*ratelimit.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	windows, err := r.load()
	if err != nil {
		return nil, err
	}
	return windows[actor+"|"+endpoint], nil
}

// FindAll retrieves every tracked window
func (r *RateLimitRepository) FindAll(ctx context.Context) ([]*ratelimit.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	windows, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]*ratelimit.Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, w)
	}
	return out, nil
}

func (r *RateLimitRepository) load() (map[string]*ratelimit.Window, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*ratelimit.Window{}, nil
		}
		return nil, fmt.Errorf("failed to read rate limit store: %w", err)
	}

	var windows map[string]*ratelimit.Window
	if err := json.Unmarshal(data, &windows); err != nil {
		return nil, fmt.Errorf("failed to parse rate limit store: %w", err)
	}
	if windows == nil {
		windows = map[string]*ratelimit.Window{}
	}
	return windows, nil
}

func (r *RateLimitRepository) store(windows map[string]*ratelimit.Window) error {
	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit store: %w", err)
	}
	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save rate limit store: %w", err)
	}
	return nil
}
