package report

import "context"

// Repository defines the persistence contract for report records.
type Repository interface {
	// Save persists a report record
	Save(ctx context.Context, rep *Report) error

	// FindByScan retrieves all report records for one scan
	FindByScan(ctx context.Context, scanID string) ([]*Report, error)

	// FindAll retrieves all report records
	FindAll(ctx context.Context) ([]*Report, error)
}
