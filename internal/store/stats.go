package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// StatsStore defines the interface for student item stat persistence.
type StatsStore interface {
	// Get retrieves the stat row for a student/item pair.
	// Returns ErrStatNotFound if no attempt has been recorded yet.
	Get(ctx context.Context, studentID, itemID uuid.UUID) (*domain.StudentItemStat, error)

	// Upsert inserts the stat row or replaces the existing one for its
	// (student, item) key. Stat rows are created lazily on first attempt.
	Upsert(ctx context.Context, stat *domain.StudentItemStat) error

	// WithTx returns a StatsStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StatsStore
}
