package schedule

import "context"

// Repository defines the interface for scan schedule persistence
type Repository interface {
	// Save persists a schedule
	Save(ctx context.Context, sched *Schedule) error

	// FindByID retrieves a schedule by its ID
	FindByID(ctx context.Context, id string) (*Schedule, error)

	// FindAll retrieves all schedules
	FindAll(ctx context.Context) ([]*Schedule, error)

	// Delete removes a schedule by its ID
	Delete(ctx context.Context, id string) error
}
