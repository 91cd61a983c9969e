package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// SubmissionStore defines the interface for submission and result persistence.
type SubmissionStore interface {
	// Create saves a new submission.
	// Returns ErrInvalidEntity if the session does not exist.
	Create(ctx context.Context, sub *domain.Submission) error

	// GetByID retrieves a submission by its unique ID.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// ReplaceResults deletes any existing result rows for the submission
	// and inserts the given rows in their place. MUST be run within a
	// transaction so a failed confirmation never leaves partial rows.
	ReplaceResults(ctx context.Context, submissionID uuid.UUID, results []*domain.PracticeResult) error

	// ListResults returns the submission's result rows ordered by position.
	ListResults(ctx context.Context, submissionID uuid.UUID) ([]*domain.PracticeResult, error)

	// WithTx returns a SubmissionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SubmissionStore
}
