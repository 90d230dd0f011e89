// Package schedule provides application-level operations for recurring
// scan schedules.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/schedule"
)

// Service provides schedule management operations
type Service struct {
	repo schedule.Repository
}

// NewService creates a new schedule service
func NewService(repo schedule.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Add validates the target and registers a new recurring schedule.
func (s *Service) Add(ctx context.Context, rawTarget string, frequency schedule.Frequency, createdBy string) (*schedule.Schedule, error) {
	target, err := scan.NewTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	sched, err := schedule.NewSchedule(target.URL(), frequency, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	return sched, nil
}

// List retrieves all schedules ordered by creation time
func (s *Service) List(ctx context.Context) ([]*schedule.Schedule, error) {
	schedules, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Due retrieves the schedules whose next run time has passed
func (s *Service) Due(ctx context.Context, now time.Time) ([]*schedule.Schedule, error) {
	schedules, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	var due []*schedule.Schedule
	for _, sched := range schedules {
		if sched.Due(now) {
			due = append(due, sched)
		}
	}
	return due, nil
}

// MarkRun records an execution of the schedule and persists the
// advanced next run time.
func (s *Service) MarkRun(ctx context.Context, id string, now time.Time) error {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	sched.MarkRun(now)
	if err := s.repo.Save(ctx, sched); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

// Remove deletes a schedule by its ID
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
