package json

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bughunter/bughunter/internal/domain/audit"
	"github.com/bughunter/bughunter/internal/shared/security"
)

// AuditRepository implements the audit.Repository interface as an
// append-only JSON-lines file. Entries are never rewritten or deleted.
type AuditRepository struct {
	filePath string
	mu       sync.Mutex
}

// NewAuditRepository creates a new file-backed audit repository
func NewAuditRepository(resultsDir string) (*AuditRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	filePath, err := security.ResolveWithin(resultsDir, "audit.jsonl")
	if err != nil {
		return nil, fmt.Errorf("invalid audit log path: %w", err)
	}

	return &AuditRepository{filePath: filePath}, nil
}

// Append adds an entry to the audit log. Appends are serialized so
// concurrent actions produce a single global ordering.
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	file, err := os.OpenFile(r.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// FindAll retrieves all audit entries in append order
func (r *AuditRepository) FindAll(ctx context.Context) ([]*audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readAll()
}

// FindByEntity retrieves entries for one entity, in append order
func (r *AuditRepository) FindByEntity(ctx context.Context, entityType, entityID string) ([]*audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readAll()
	if err != nil {
		return nil, err
	}

	var filtered []*audit.Entry
	for _, e := range entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Path returns the audit log file location.
func (r *AuditRepository) Path() string {
	return filepath.Clean(r.filePath)
}

func (r *AuditRepository) readAll() ([]*audit.Entry, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*audit.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	var entries []*audit.Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry audit.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	return entries, nil
}
