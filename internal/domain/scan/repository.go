package scan

import "context"

// Repository defines the interface for scan job persistence
type Repository interface {
	// Save persists a scan job with all its findings
	Save(ctx context.Context, job *Job) error

	// FindByID retrieves a scan job by its scan ID
	FindByID(ctx context.Context, id string) (*Job, error)

	// FindAll retrieves all persisted scan jobs
	FindAll(ctx context.Context) ([]*Job, error)

	// FindRecent retrieves the most recent scan jobs, newest first
	FindRecent(ctx context.Context, limit int) ([]*Job, error)

	// Delete removes a scan job by its scan ID
	Delete(ctx context.Context, id string) error
}
