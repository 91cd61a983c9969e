package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., an item with the same collection/unit/prompt).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrStudentNotFound indicates that the requested student does not exist in the store.
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	// ErrItemNotFound indicates that the requested knowledge item does not exist in the store.
	ErrItemNotFound = fmt.Errorf("%w: knowledge item", ErrNotFound)

	// ErrSessionNotFound indicates that the requested practice session does not exist in the store.
	ErrSessionNotFound = fmt.Errorf("%w: practice session", ErrNotFound)

	// ErrSubmissionNotFound indicates that the requested submission does not exist in the store.
	ErrSubmissionNotFound = fmt.Errorf("%w: submission", ErrNotFound)

	// ErrStatNotFound indicates that the requested student item stat does not exist in the store.
	ErrStatNotFound = fmt.Errorf("%w: student item stat", ErrNotFound)

	// ErrSettingNotFound indicates that the requested setting key does not exist in the store.
	ErrSettingNotFound = fmt.Errorf("%w: setting", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "item", "session")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
