// Package scan contains the orchestrator owning the scan job
// lifecycle: submission, scheduling under a concurrency cap, backend
// dispatch, aggregation and finalization.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bughunter/bughunter/internal/aggregator"
	"github.com/bughunter/bughunter/internal/backend"
	"github.com/bughunter/bughunter/internal/domain/audit"
	domain "github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/ratelimit"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

const submitEndpoint = "scan_submit"

// Config tunes orchestrator behavior. All fields map to recognized
// configuration options validated at startup.
type Config struct {
	// MaxConcurrentScans bounds how many jobs run simultaneously.
	MaxConcurrentScans int

	// ScanTimeout is the per-job deadline enforced regardless of
	// backend cooperation.
	ScanTimeout time.Duration

	// RequestsPerSecond paces backend dispatch across jobs. Zero
	// disables pacing.
	RequestsPerSecond int
}

// probeResult is what one backend task reports back to its job. The
// index is the backend's position in the job's selected-backend list,
// so findings can be reassembled in a completion-order-independent
// order before aggregation.
type probeResult struct {
	index    int
	findings []domain.Finding
	outcome  backend.Outcome
}

// jobState tracks one job while the orchestrator owns it.
type jobState struct {
	job       *domain.Job
	cancel    context.CancelFunc
	cancelled bool
	done      chan struct{}
}

// Orchestrator coordinates scan execution across backends, the rate
// limiter, the aggregator and persistence.
type Orchestrator struct {
	cfg      Config
	backends map[string]backend.Backend
	limiter  *ratelimit.Limiter
	jobRepo  domain.Repository
	audits   audit.Repository
	logger   *zap.SugaredLogger

	slots chan struct{}
	pacer *rate.Limiter

	mu   sync.RWMutex
	jobs map[string]*jobState

	wg sync.WaitGroup
}

// NewOrchestrator creates an orchestrator over the given backends.
func NewOrchestrator(cfg Config, backends []backend.Backend, limiter *ratelimit.Limiter,
	jobRepo domain.Repository, audits audit.Repository, logger *zap.SugaredLogger) *Orchestrator {
	if cfg.MaxConcurrentScans <= 0 {
		cfg.MaxConcurrentScans = 1
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 30 * time.Minute
	}

	byName := make(map[string]backend.Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}

	pacer := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond)
	}

	return &Orchestrator{
		cfg:      cfg,
		backends: byName,
		limiter:  limiter,
		jobRepo:  jobRepo,
		audits:   audits,
		logger:   logger,
		slots:    make(chan struct{}, cfg.MaxConcurrentScans),
		pacer:    pacer,
		jobs:     make(map[string]*jobState),
	}
}

// BackendNames lists the registered backend identifiers.
func (o *Orchestrator) BackendNames() []string {
	names := make([]string, 0, len(o.backends))
	for name := range o.backends {
		names = append(names, name)
	}
	return names
}

// Submit validates the target, consumes one rate limiter slot for the
// submitter, creates a pending job and queues it for execution. The
// job stays pending until a concurrency slot frees, then runs its
// selected backends concurrently. Returns the generated scan ID.
func (o *Orchestrator) Submit(ctx context.Context, rawTarget, requestedBy string, selected []string) (string, error) {
	if o.limiter != nil && !o.limiter.Allow(ctx, requestedBy, submitEndpoint) {
		o.appendAudit(ctx, requestedBy, "scan_submit", "scan", "", false,
			map[string]string{"reason": "rate limit exceeded", "target": rawTarget})
		return "", sharedErrors.ErrRateLimitExceeded
	}

	target, err := domain.NewTarget(rawTarget)
	if err != nil {
		o.appendAudit(ctx, requestedBy, "scan_submit", "scan", "", false,
			map[string]string{"reason": "target validation failed", "target": rawTarget})
		return "", err
	}

	if len(selected) == 0 {
		selected = o.BackendNames()
	}
	for _, name := range selected {
		if _, ok := o.backends[name]; !ok {
			return "", fmt.Errorf("%w: %s", sharedErrors.ErrUnknownBackend, name)
		}
	}

	job, err := domain.NewJob(target, requestedBy, selected)
	if err != nil {
		return "", err
	}

	state := &jobState{
		job:  job,
		done: make(chan struct{}),
	}

	o.mu.Lock()
	o.jobs[job.ID()] = state
	o.mu.Unlock()

	o.appendAudit(ctx, requestedBy, "scan_submit", "scan", job.ID(), true,
		map[string]string{"target": target.URL()})

	o.wg.Add(1)
	go o.runJob(state)

	return job.ID(), nil
}

// Status retrieves a job by scan ID, consulting in-flight jobs first
// and falling back to persistence.
func (o *Orchestrator) Status(ctx context.Context, scanID string) (*domain.Job, error) {
	o.mu.RLock()
	state, ok := o.jobs[scanID]
	if ok {
		// Snapshot under the read lock so callers never observe a job
		// mid-transition.
		j := state.job
		snapshot := domain.Reconstruct(j.ID(), j.Target(), j.Status(), j.CreatedBy(), j.Backends(),
			j.CreatedAt(), j.StartedAt(), j.FinishedAt(), j.Findings(), j.Reason())
		o.mu.RUnlock()
		return snapshot, nil
	}
	o.mu.RUnlock()

	if o.jobRepo != nil {
		return o.jobRepo.FindByID(ctx, scanID)
	}
	return nil, sharedErrors.ErrScanNotFound
}

// Cancel requests cooperative cancellation of a pending or running
// job. It is best-effort: backends observe the cancellation at safe
// points, so the job may take a moment to reach its terminal state.
// Returns false when the job is unknown or already terminal.
func (o *Orchestrator) Cancel(scanID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	state, ok := o.jobs[scanID]
	if !ok || state.job.IsTerminal() {
		return false
	}

	state.cancelled = true
	if state.cancel != nil {
		state.cancel()
	}
	return true
}

// Await blocks until the job reaches a terminal state or ctx expires.
func (o *Orchestrator) Await(ctx context.Context, scanID string) (*domain.Job, error) {
	o.mu.RLock()
	state, ok := o.jobs[scanID]
	o.mu.RUnlock()
	if !ok {
		// Terminal jobs are evicted once persisted; serve them from
		// the repository.
		if o.jobRepo != nil {
			return o.jobRepo.FindByID(ctx, scanID)
		}
		return nil, sharedErrors.ErrScanNotFound
	}

	select {
	case <-state.done:
		return state.job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until every submitted job has finalized.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// runJob holds a pending job until a concurrency slot frees, then
// executes its backends and finalizes the result.
func (o *Orchestrator) runJob(state *jobState) {
	defer o.wg.Done()
	defer close(state.done)

	o.slots <- struct{}{}
	defer func() { <-o.slots }()

	jobCtx, cancel := context.WithTimeout(context.Background(), o.cfg.ScanTimeout)
	defer cancel()

	o.mu.Lock()
	state.cancel = cancel
	alreadyCancelled := state.cancelled
	if err := state.job.Start(); err != nil {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	job := state.job

	if alreadyCancelled {
		o.finalizeFailed(state, "scan cancelled before start", nil)
		return
	}

	selected := job.Backends()
	results := make(chan probeResult, len(selected))

	for i, name := range selected {
		b := o.backends[name]
		go func(i int, b backend.Backend) {
			start := time.Now()
			// Pace dispatch across all jobs.
			_ = o.pacer.Wait(jobCtx)

			findings, err := b.Probe(jobCtx, job.Target())
			outcome := backend.Outcome{
				Backend:         b.Name(),
				Success:         err == nil,
				FindingCount:    len(findings),
				DurationSeconds: time.Since(start).Seconds(),
			}
			if err != nil {
				outcome.Error = err.Error()
			}
			// Buffered channel: a late completion after finalize is
			// simply never read and its results are discarded.
			results <- probeResult{index: i, findings: findings, outcome: outcome}
		}(i, b)
	}

	perBackend := make([][]domain.Finding, len(selected))
	var outcomes []backend.Outcome
	timedOut := false

collect:
	for range selected {
		select {
		case r := <-results:
			perBackend[r.index] = r.findings
			outcomes = append(outcomes, r.outcome)
			if !r.outcome.Success {
				o.logger.Warnw("backend failed",
					"scan_id", job.ID(), "backend", r.outcome.Backend, "error", r.outcome.Error)
			}
		case <-jobCtx.Done():
			timedOut = true
			break collect
		}
	}

	// Assemble raw findings in selected-backend order, not completion
	// order, so the aggregated list is identical across runs.
	var raw []domain.Finding
	for _, findings := range perBackend {
		raw = append(raw, findings...)
	}

	aggregated := aggregator.Aggregate(raw)

	o.mu.Lock()
	cancelled := state.cancelled
	o.mu.Unlock()

	switch {
	case cancelled:
		o.finalizeFailed(state, fmt.Sprintf("scan cancelled: %d of %d backends finished", len(outcomes), len(selected)), aggregated)
	case timedOut:
		o.finalizeFailed(state, fmt.Sprintf("scan timed out after %s: %d of %d backends finished", o.cfg.ScanTimeout, len(outcomes), len(selected)), aggregated)
	case allFailed(outcomes):
		o.finalizeFailed(state, "all backends failed: "+firstError(outcomes), aggregated)
	default:
		o.finalizeCompleted(state, aggregated)
	}
}

func (o *Orchestrator) finalizeCompleted(state *jobState, findings []domain.Finding) {
	o.mu.Lock()
	err := state.job.Complete(findings)
	o.mu.Unlock()
	if err != nil {
		return
	}

	job := state.job
	o.logger.Infow("scan completed", "scan_id", job.ID(), "target", job.Target().URL(), "findings", len(findings))
	if o.persistAndAudit(job, "scan_completed", true, map[string]string{
		"findings": fmt.Sprintf("%d", len(findings)),
	}) {
		o.evict(job.ID())
	}
}

func (o *Orchestrator) finalizeFailed(state *jobState, reason string, partial []domain.Finding) {
	o.mu.Lock()
	err := state.job.Fail(reason, partial)
	o.mu.Unlock()
	if err != nil {
		return
	}

	job := state.job
	o.logger.Warnw("scan failed", "scan_id", job.ID(), "target", job.Target().URL(), "reason", reason)
	if o.persistAndAudit(job, "scan_failed", false, map[string]string{
		"reason":   reason,
		"findings": fmt.Sprintf("%d", len(partial)),
	}) {
		o.evict(job.ID())
	}
}

// evict drops a terminal job from the in-flight map once it is durably
// saved, so the map stays bounded in a long-lived process. Status and
// Await fall back to the repository afterwards.
func (o *Orchestrator) evict(scanID string) {
	o.mu.Lock()
	delete(o.jobs, scanID)
	o.mu.Unlock()
}

// persistAndAudit saves the terminal job and appends the audit entry.
// Persistence errors are reported, never swallowed: they are logged
// and recorded in the audit log while the in-memory job state stays
// intact for Status callers. Returns whether the job is durably saved.
func (o *Orchestrator) persistAndAudit(job *domain.Job, action string, success bool, details map[string]string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	saved := false
	if o.jobRepo != nil {
		if err := o.jobRepo.Save(ctx, job); err != nil {
			o.logger.Errorw("failed to persist scan job", "scan_id", job.ID(), "error", err)
			details["persistence_error"] = err.Error()
		} else {
			saved = true
		}
	}

	o.appendAudit(ctx, job.CreatedBy(), action, "scan", job.ID(), success, details)
	return saved
}

func (o *Orchestrator) appendAudit(ctx context.Context, actor, action, entityType, entityID string, success bool, details map[string]string) {
	if o.audits == nil {
		return
	}
	entry, err := audit.NewEntry(actor, action, entityType, entityID, success, details)
	if err != nil {
		o.logger.Errorw("failed to build audit entry", "action", action, "error", err)
		return
	}
	if err := o.audits.Append(ctx, entry); err != nil {
		o.logger.Errorw("failed to append audit entry", "action", action, "error", err)
	}
}

func allFailed(outcomes []backend.Outcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, oc := range outcomes {
		if oc.Success {
			return false
		}
	}
	return true
}

func firstError(outcomes []backend.Outcome) string {
	for _, oc := range outcomes {
		if !oc.Success {
			return oc.Error
		}
	}
	return ""
}
