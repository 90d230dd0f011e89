package audit

import "context"

// Repository defines the interface for audit log persistence.
// Append must never fail silently: a persistence error propagates to
// the caller so the triggering action's outcome is not hidden.
type Repository interface {
	// Append adds an entry to the audit log
	Append(ctx context.Context, entry *Entry) error

	// FindAll retrieves all audit entries in append order
	FindAll(ctx context.Context) ([]*Entry, error)

	// FindByEntity retrieves entries for one entity, in append order
	FindByEntity(ctx context.Context, entityType, entityID string) ([]*Entry, error)
}
