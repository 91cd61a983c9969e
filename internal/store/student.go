package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// StudentStore defines the interface for student persistence.
type StudentStore interface {
	// Create saves a new student.
	Create(ctx context.Context, student *domain.Student) error

	// GetByID retrieves a student by their unique ID.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)

	// Delete removes a student. Sessions, submissions, results, and stats
	// are removed by the database cascade; the store performs no manual
	// cleanup.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a StudentStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StudentStore
}
