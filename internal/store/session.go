package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// SessionStore defines the interface for practice session persistence.
type SessionStore interface {
	// Create saves a session together with its ordered exercise-item
	// snapshots. MUST be run within a transaction: a session without its
	// items is not a valid worksheet.
	Create(ctx context.Context, session *domain.PracticeSession) error

	// GetByID retrieves a session with its exercise items, ordered by
	// position. Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)

	// UpdateStatus persists the session's current status and transition
	// timestamps. The caller performs the lifecycle transition on the
	// domain object first; this method only writes it.
	UpdateStatus(ctx context.Context, session *domain.PracticeSession) error

	// ListCorrectedBefore returns sessions in CORRECTED status whose
	// corrected_at is older than the cutoff, up to limit, oldest first.
	// Used by the retention job to find archival candidates.
	ListCorrectedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error)

	// Delete removes a session. Its exercise items, submissions, and
	// results are removed by the database cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a SessionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}
