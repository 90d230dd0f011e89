// Package schedule defines recurring scan schedules.
package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frequency enumerates the supported recurrence intervals.
type Frequency string

const (
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Interval returns the duration between runs.
func (f Frequency) Interval() (time.Duration, error) {
	switch f {
	case FrequencyHourly:
		return time.Hour, nil
	case FrequencyDaily:
		return 24 * time.Hour, nil
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, nil
	case FrequencyMonthly:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, errors.New("unknown schedule frequency")
	}
}

// Schedule represents a recurring scan against a target.
type Schedule struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"target_url"`
	Frequency Frequency `json:"frequency"`
	LastRun   time.Time `json:"last_run,omitempty"`
	NextRun   time.Time `json:"next_run"`
	CreatedBy string    `json:"created_by"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSchedule creates an active schedule whose first run is due one
// interval from now.
func NewSchedule(targetURL string, frequency Frequency, createdBy string) (*Schedule, error) {
	if targetURL == "" {
		return nil, errors.New("schedule target cannot be empty")
	}
	interval, err := frequency.Interval()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Schedule{
		ID:        "sched-" + uuid.NewString(),
		TargetURL: targetURL,
		Frequency: frequency,
		NextRun:   now.Add(interval),
		CreatedBy: createdBy,
		Active:    true,
		CreatedAt: now,
	}, nil
}

// Due reports whether the schedule should run at the given time.
func (s *Schedule) Due(now time.Time) bool {
	return s.Active && !s.NextRun.After(now)
}

// MarkRun records an execution and advances the next run time.
func (s *Schedule) MarkRun(now time.Time) {
	interval, err := s.Frequency.Interval()
	if err != nil {
		interval = 24 * time.Hour
	}
	s.LastRun = now
	s.NextRun = now.Add(interval)
}
