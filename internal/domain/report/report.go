// Package report defines the report record handed to external
// rendering collaborators. The core only tracks report metadata and
// exposes the finalized finding list of a completed scan; file format
// export happens outside this module.
package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Report links a completed scan to a rendered artifact.
type Report struct {
	ID        string    `json:"report_id"`
	ScanID    string    `json:"scan_id"`
	Format    string    `json:"format"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReport creates a report record for a completed scan.
func NewReport(scanID, format, createdBy string) (*Report, error) {
	if scanID == "" {
		return nil, errors.New("report scan ID cannot be empty")
	}
	if format == "" {
		return nil, errors.New("report format cannot be empty")
	}

	return &Report{
		ID:        "report-" + uuid.NewString(),
		ScanID:    scanID,
		Format:    format,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}, nil
}
