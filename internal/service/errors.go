package service

import (
	"errors"
	"fmt"
)

// Common service errors. Sentinel errors used across service implementations;
// callers check for them with errors.Is(), and the API layer maps them to
// HTTP status codes.
var (
	// ErrInsufficientItems indicates the item pool could not fill the
	// requested worksheet even after the relaxed backfill pass. Nothing is
	// persisted when this is returned.
	// API layer should map this to HTTP 409 Conflict.
	ErrInsufficientItems = errors.New("not enough eligible items to fill the worksheet")

	// ErrInvalidParams indicates the generation parameters were rejected
	// before any item selection ran.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidParams = errors.New("invalid generation parameters")

	// ErrSessionNotGradable indicates the session is in a lifecycle state
	// that cannot accept the attempted grading operation.
	// API layer should map this to HTTP 409 Conflict.
	ErrSessionNotGradable = errors.New("session state does not allow grading")
)

// PracticeServiceError is a custom error type for practice service errors.
type PracticeServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for PracticeServiceError.
func (e *PracticeServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("practice service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("practice service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PracticeServiceError) Unwrap() error {
	return e.Err
}

// NewPracticeServiceError creates a new PracticeServiceError.
func NewPracticeServiceError(operation, message string, err error) *PracticeServiceError {
	return &PracticeServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
