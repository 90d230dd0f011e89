package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/bughunter/bughunter/internal/domain/schedule"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
	"github.com/bughunter/bughunter/internal/shared/security"
)

// ScheduleRepository implements the schedule.Repository interface
// using a single JSON document.
type ScheduleRepository struct {
	filePath string
	mu       sync.RWMutex
}

// NewScheduleRepository creates a new JSON-based schedule repository
func NewScheduleRepository(resultsDir string) (*ScheduleRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	filePath, err := security.ResolveWithin(resultsDir, "scan_schedules.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schedule store path: %w", err)
	}

	return &ScheduleRepository{filePath: filePath}, nil
}

// Save persists a schedule
func (r *ScheduleRepository) Save(ctx context.Context, sched *schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return err
	}

	schedules[sched.ID] = sched
	return r.store(schedules)
}

// FindByID retrieves a schedule by its ID
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedules, err := r.load()
	if err != nil {
		return nil, err
	}

	sched, ok := schedules[id]
	if !ok {
		return nil, sharedErrors.ErrRepositoryOperation
	}
	return sched, nil
}

// FindAll retrieves all schedules ordered by creation time
func (r *ScheduleRepository) FindAll(ctx context.Context) ([]*schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedules, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]*schedule.Schedule, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a schedule by its ID
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return err
	}

	if _, ok := schedules[id]; !ok {
		return sharedErrors.ErrRepositoryOperation
	}
	delete(schedules, id)
	return r.store(schedules)
}

func (r *ScheduleRepository) load() (map[string]*schedule.Schedule, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*schedule.Schedule{}, nil
		}
		return nil, fmt.Errorf("failed to read schedule store: %w", err)
	}

	var schedules map[string]*schedule.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("failed to parse schedule store: %w", err)
	}
	if schedules == nil {
		schedules = map[string]*schedule.Schedule{}
	}
	return schedules, nil
}

func (r *ScheduleRepository) store(schedules map[string]*schedule.Schedule) error {
	data, err := json.MarshalIndent(schedules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule store: %w", err)
	}
	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save schedule store: %w", err)
	}
	return nil
}
