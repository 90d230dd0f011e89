// Package backend contains the pluggable checking mechanisms invoked
// by the scan orchestrator. Every backend implements the same probe
// contract and is safe to run concurrently with other backends against
// the same target; backends share no mutable state.
package backend

import (
	"context"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

// Backend is the capability interface all checking mechanisms satisfy.
type Backend interface {
	// Probe runs the check against the target. A returned error is a
	// recoverable backend-level failure: sibling backends continue and
	// the job can still complete. Cancellation is cooperative through
	// ctx; backends check it at safe points.
	Probe(ctx context.Context, target scan.Target) ([]scan.Finding, error)

	// Name returns the backend identifier (e.g. "security-headers")
	Name() string
}

// Outcome records how a single backend concluded within one job.
type Outcome struct {
	Backend         string  `json:"backend"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
	FindingCount    int     `json:"finding_count"`
	DurationSeconds float64 `json:"duration_seconds"`
}
