package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/bughunter/bughunter/internal/domain/report"
	"github.com/bughunter/bughunter/internal/shared/security"
)

// ReportRepository implements the report.Repository interface using a
// single JSON document.
type ReportRepository struct {
	filePath string
	mu       sync.RWMutex
}

// NewReportRepository creates a new JSON-based report repository
func NewReportRepository(resultsDir string) (*ReportRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	filePath, err := security.ResolveWithin(resultsDir, "reports.json")
	if err != nil {
		return nil, fmt.Errorf("invalid report store path: %w", err)
	}

	return &ReportRepository{filePath: filePath}, nil
}

// Save persists a report record
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports, err := r.load()
	if err != nil {
		return err
	}

	reports[rep.ID] = rep
	return r.store(reports)
}

// FindByScan retrieves all report records for one scan
func (r *ReportRepository) FindByScan(ctx context.Context, scanID string) ([]*report.Report, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []*report.Report
	for _, rep := range all {
		if rep.ScanID == scanID {
			out = append(out, rep)
		}
	}
	return out, nil
}

// FindAll retrieves all report records ordered by creation time
func (r *ReportRepository) FindAll(ctx context.Context) ([]*report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]*report.Report, 0, len(reports))
	for _, rep := range reports {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ReportRepository) load() (map[string]*report.Report, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*report.Report{}, nil
		}
		return nil, fmt.Errorf("failed to read report store: %w", err)
	}

	var reports map[string]*report.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse report store: %w", err)
	}
	if reports == nil {
		reports = map[string]*report.Report{}
	}
	return reports, nil
}

func (r *ReportRepository) store(reports map[string]*report.Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report store: %w", err)
	}
	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save report store: %w", err)
	}
	return nil
}
