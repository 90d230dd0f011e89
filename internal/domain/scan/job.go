package scan

import (
	"time"

	"github.com/google/uuid"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// Status represents the lifecycle state of a scan job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job represents one scan execution against a target. It serves as an
// aggregate root owning the findings produced by the scan's backends.
// A job is mutated only by the orchestrator and is terminal once its
// status is completed or failed.
type Job struct {
	id         string
	target     Target
	status     Status
	createdBy  string
	backends   []string
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	findings   []Finding
	reason     string
}

// NewJob creates a pending scan job with a generated scan ID.
func NewJob(target Target, createdBy string, backends []string) (*Job, error) {
	if createdBy == "" {
		return nil, sharedErrors.ErrEmptyActor
	}
	if len(backends) == 0 {
		return nil, sharedErrors.ErrNoBackendsSelected
	}

	selected := make([]string, len(backends))
	copy(selected, backends)

	return &Job{
		id:        "scan-" + uuid.NewString(),
		target:    target,
		status:    StatusPending,
		createdBy: createdBy,
		backends:  selected,
		createdAt: time.Now().UTC(),
		findings:  make([]Finding, 0),
	}, nil
}

// Reconstruct creates a job from persisted data.
func Reconstruct(id string, target Target, status Status, createdBy string, backends []string,
	createdAt, startedAt, finishedAt time.Time, findings []Finding, reason string) *Job {
	return &Job{
		id:         id,
		target:     target,
		status:     status,
		createdBy:  createdBy,
		backends:   backends,
		createdAt:  createdAt,
		startedAt:  startedAt,
		finishedAt: finishedAt,
		findings:   findings,
		reason:     reason,
	}
}

// Business methods

// Start marks the job as running. Only a pending job can start.
func (j *Job) Start() error {
	if j.status != StatusPending {
		return sharedErrors.ErrScanAlreadyStarted
	}
	j.status = StatusRunning
	j.startedAt = time.Now().UTC()
	return nil
}

// Complete marks the job as completed with its final finding set.
func (j *Job) Complete(findings []Finding) error {
	if j.status != StatusRunning {
		return sharedErrors.ErrInvalidScanStatus
	}
	j.status = StatusCompleted
	j.findings = findings
	j.finishedAt = time.Now().UTC()
	return nil
}

// Fail marks the job as failed with a human-readable reason. Partial
// findings collected before the failure are retained.
func (j *Job) Fail(reason string, partial []Finding) error {
	if j.status == StatusCompleted || j.status == StatusFailed {
		return sharedErrors.ErrScanFinished
	}
	j.status = StatusFailed
	j.reason = reason
	j.findings = partial
	j.finishedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the job reached a final state.
func (j *Job) IsTerminal() bool {
	return j.status == StatusCompleted || j.status == StatusFailed
}

// Getters

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Target() Target {
	return j.target
}

func (j *Job) Status() Status {
	return j.status
}

func (j *Job) CreatedBy() string {
	return j.createdBy
}

func (j *Job) Backends() []string {
	backends := make([]string, len(j.backends))
	copy(backends, j.backends)
	return backends
}

func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

func (j *Job) StartedAt() time.Time {
	return j.startedAt
}

func (j *Job) FinishedAt() time.Time {
	return j.finishedAt
}

// Findings returns a copy of the job's findings to prevent external
// modification. For a completed job this is the immutable list handed
// to report rendering.
func (j *Job) Findings() []Finding {
	findings := make([]Finding, len(j.findings))
	copy(findings, j.findings)
	return findings
}

// Reason returns the failure reason, empty unless the job failed.
func (j *Job) Reason() string {
	return j.reason
}
