package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrInvalidTarget = errors.New("invalid target: scheme or host missing")
	ErrEmptyTarget   = errors.New("target cannot be empty")

	// Scan errors
	ErrScanNotFound       = errors.New("scan not found")
	ErrInvalidScanStatus  = errors.New("invalid scan status")
	ErrScanAlreadyStarted = errors.New("scan already started")
	ErrScanFinished       = errors.New("scan already finished")
	ErrNoBackendsSelected = errors.New("no backends selected")
	ErrUnknownBackend     = errors.New("unknown backend")

	// Rate limit errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Template errors
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidSeverity  = errors.New("invalid severity level")

	// Audit errors
	ErrEmptyActor  = errors.New("actor cannot be empty")
	ErrEmptyAction = errors.New("action cannot be empty")

	// Repository errors
	ErrRepositoryOperation = errors.New("repository operation failed")
)
