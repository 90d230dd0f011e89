package audit

import (
	"context"
	"fmt"

	"github.com/bughunter/bughunter/internal/domain/audit"
)

// Service provides application-level audit log operations
type Service struct {
	repo audit.Repository
}

// NewService creates a new audit service
func NewService(repo audit.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Record appends an audit entry for a security-relevant action. The
// error is returned, never swallowed, so the triggering action's
// outcome is not hidden by a silent audit failure.
func (s *Service) Record(ctx context.Context, actor, action, entityType, entityID string, success bool, details map[string]string) error {
	entry, err := audit.NewEntry(actor, action, entityType, entityID, success, details)
	if err != nil {
		return fmt.Errorf("failed to build audit entry: %w", err)
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// List retrieves all audit entries in append order
func (s *Service) List(ctx context.Context) ([]*audit.Entry, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return entries, nil
}

// ListForEntity retrieves the audit entries for one entity
func (s *Service) ListForEntity(ctx context.Context, entityType, entityID string) ([]*audit.Entry, error) {
	entries, err := s.repo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return entries, nil
}
