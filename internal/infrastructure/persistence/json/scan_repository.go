package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
	"github.com/bughunter/bughunter/internal/shared/security"
)

// scanJobDTO is the data transfer object for JSON serialization
type scanJobDTO struct {
	ScanID     string       `json:"scan_id"`
	TargetURL  string       `json:"target_url"`
	Status     string       `json:"status"`
	CreatedBy  string       `json:"created_by"`
	Backends   []string     `json:"backends"`
	CreatedAt  string       `json:"created_at"`
	StartedAt  string       `json:"started_at,omitempty"`
	FinishedAt string       `json:"finished_at,omitempty"`
	Findings   []findingDTO `json:"findings"`
	Reason     string       `json:"reason,omitempty"`
}

type findingDTO struct {
	Type          string   `json:"type"`
	Target        string   `json:"target"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	Details       []string `json:"details,omitempty"`
	SourceBackend string   `json:"source_backend"`
	TemplateID    string   `json:"template_id,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
	Verified      bool     `json:"verified"`
	FalsePositive bool     `json:"false_positive"`
	CVSSScore     float64  `json:"cvss_score,omitempty"`
	DiscoveredAt  string   `json:"discovered_at"`
}

// ScanRepository implements the scan.Repository interface using JSON
// file storage, one document per scan job.
type ScanRepository struct {
	scansDir string
	mu       sync.RWMutex
}

// NewScanRepository creates a new JSON-based scan job repository
func NewScanRepository(resultsDir string) (*ScanRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	scansDir := filepath.Join(resultsDir, "scans")
	if err := os.MkdirAll(scansDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scans directory: %w", err)
	}

	return &ScanRepository{scansDir: scansDir}, nil
}

// Save persists a scan job with all its findings
func (r *ScanRepository) Save(ctx context.Context, job *scan.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := security.ResolveWithin(r.scansDir, job.ID()+".json")
	if err != nil {
		return fmt.Errorf("invalid scan file path: %w", err)
	}

	data, err := json.MarshalIndent(toDTO(job), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scan job: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save scan job: %w", err)
	}

	return nil
}

// FindByID retrieves a scan job by its scan ID
func (r *ScanRepository) FindByID(ctx context.Context, id string) (*scan.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filePath, err := security.ResolveWithin(r.scansDir, id+".json")
	if err != nil {
		return nil, sharedErrors.ErrScanNotFound
	}

	job, err := r.loadFromFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sharedErrors.ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to load scan job: %w", err)
	}

	return job, nil
}

// FindAll retrieves all persisted scan jobs
func (r *ScanRepository) FindAll(ctx context.Context) ([]*scan.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadAll()
}

// FindRecent retrieves the most recent scan jobs, newest first
func (r *ScanRepository) FindRecent(ctx context.Context, limit int) ([]*scan.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs, err := r.loadAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt().After(jobs[j].CreatedAt())
	})

	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// Delete removes a scan job by its scan ID
func (r *ScanRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := security.ResolveWithin(r.scansDir, id+".json")
	if err != nil {
		return sharedErrors.ErrScanNotFound
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return sharedErrors.ErrScanNotFound
		}
		return fmt.Errorf("failed to delete scan job: %w", err)
	}
	return nil
}

// Helper methods

func (r *ScanRepository) loadAll() ([]*scan.Job, error) {
	entries, err := os.ReadDir(r.scansDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scans directory: %w", err)
	}

	var jobs []*scan.Job
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		job, err := r.loadFromFile(filepath.Join(r.scansDir, entry.Name()))
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r *ScanRepository) loadFromFile(filePath string) (*scan.Job, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var dto scanJobDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}

	return fromDTO(dto)
}

func toDTO(job *scan.Job) scanJobDTO {
	dto := scanJobDTO{
		ScanID:    job.ID(),
		TargetURL: job.Target().URL(),
		Status:    string(job.Status()),
		CreatedBy: job.CreatedBy(),
		Backends:  job.Backends(),
		CreatedAt: job.CreatedAt().Format(time.RFC3339Nano),
		Findings:  make([]findingDTO, 0),
		Reason:    job.Reason(),
	}

	if !job.StartedAt().IsZero() {
		dto.StartedAt = job.StartedAt().Format(time.RFC3339Nano)
	}
	if !job.FinishedAt().IsZero() {
		dto.FinishedAt = job.FinishedAt().Format(time.RFC3339Nano)
	}

	for _, f := range job.Findings() {
		dto.Findings = append(dto.Findings, findingDTO{
			Type:          f.Type,
			Target:        f.Target,
			Severity:      string(f.Severity),
			Description:   f.Description,
			Details:       f.Details,
			SourceBackend: f.SourceBackend,
			TemplateID:    f.TemplateID,
			Confidence:    f.Confidence,
			Verified:      f.Verified,
			FalsePositive: f.FalsePositive,
			CVSSScore:     f.CVSSScore,
			DiscoveredAt:  f.DiscoveredAt.Format(time.RFC3339Nano),
		})
	}

	return dto
}

func fromDTO(dto scanJobDTO) (*scan.Job, error) {
	target, err := scan.NewTarget(dto.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse persisted target: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created at time: %w", err)
	}

	var startedAt, finishedAt time.Time
	if dto.StartedAt != "" {
		if startedAt, err = time.Parse(time.RFC3339Nano, dto.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started at time: %w", err)
		}
	}
	if dto.FinishedAt != "" {
		if finishedAt, err = time.Parse(time.RFC3339Nano, dto.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to parse finished at time: %w", err)
		}
	}

	findings := make([]scan.Finding, 0, len(dto.Findings))
	for _, f := range dto.Findings {
		discoveredAt, _ := time.Parse(time.RFC3339Nano, f.DiscoveredAt)
		findings = append(findings, scan.Finding{
			Type:          f.Type,
			Target:        f.Target,
			Severity:      scan.Severity(f.Severity),
			Description:   f.Description,
			Details:       f.Details,
			SourceBackend: f.SourceBackend,
			TemplateID:    f.TemplateID,
			Confidence:    f.Confidence,
			Verified:      f.Verified,
			FalsePositive: f.FalsePositive,
			CVSSScore:     f.CVSSScore,
			DiscoveredAt:  discoveredAt,
		})
	}

	return scan.Reconstruct(dto.ScanID, target, scan.Status(dto.Status), dto.CreatedBy, dto.Backends,
		createdAt, startedAt, finishedAt, findings, dto.Reason), nil
}
