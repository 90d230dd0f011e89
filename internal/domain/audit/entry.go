// Package audit defines the append-only audit log recording
// security-relevant actions. Entries are never mutated or deleted.
package audit

import (
	"time"

	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// Entry represents a single audit log record.
type Entry struct {
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Success    bool              `json:"success"`
	Details    map[string]string `json:"details,omitempty"`
}

// NewEntry creates an audit entry stamped with the current time.
func NewEntry(actor, action, entityType, entityID string, success bool, details map[string]string) (*Entry, error) {
	if actor == "" {
		return nil, sharedErrors.ErrEmptyActor
	}
	if action == "" {
		return nil, sharedErrors.ErrEmptyAction
	}

	return &Entry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
		Success:    success,
		Details:    details,
	}, nil
}
