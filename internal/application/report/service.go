// Package report registers report records against completed scans.
// Rendering the report file is left to external collaborators; the
// service only validates the scan and exposes its finalized findings.
package report

import (
	"context"
	"fmt"

	"github.com/bughunter/bughunter/internal/domain/report"
	"github.com/bughunter/bughunter/internal/domain/scan"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// Service provides report handoff operations
type Service struct {
	reports report.Repository
	scans   scan.Repository
}

// NewService creates a new report service
func NewService(reports report.Repository, scans scan.Repository) *Service {
	return &Service{
		reports: reports,
		scans:   scans,
	}
}

// Create registers a report record for a terminal scan and returns the
// record together with the scan's finalized findings.
func (s *Service) Create(ctx context.Context, scanID, format, createdBy string) (*report.Report, []scan.Finding, error) {
	job, err := s.scans.FindByID(ctx, scanID)
	if err != nil {
		return nil, nil, err
	}
	if !job.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: scan %s has not finished", sharedErrors.ErrInvalidScanStatus, scanID)
	}

	rep, err := report.NewReport(scanID, format, createdBy)
	if err != nil {
		return nil, nil, err
	}

	if err := s.reports.Save(ctx, rep); err != nil {
		return nil, nil, fmt.Errorf("failed to save report record: %w", err)
	}
	return rep, job.Findings(), nil
}

// List retrieves all report records
func (s *Service) List(ctx context.Context) ([]*report.Report, error) {
	return s.reports.FindAll(ctx)
}

// ListForScan retrieves the report records for one scan
func (s *Service) ListForScan(ctx context.Context, scanID string) ([]*report.Report, error) {
	return s.reports.FindByScan(ctx, scanID)
}
