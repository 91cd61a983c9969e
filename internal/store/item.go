package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// EligibleItemQuery describes one ranked fetch of selectable items for a
// student. The zero Category means any category (used by the relaxed
// backfill pass); the zero Unit means no unit filter.
type EligibleItemQuery struct {
	StudentID    uuid.UUID
	CollectionID uuid.UUID
	Unit         string
	Category     domain.ItemCategory
	Limit        int
}

// RankedItem pairs a knowledge item with the student's mastery stat for it.
// Stat is nil when the student has never attempted the item.
type RankedItem struct {
	Item domain.KnowledgeItem
	Stat *domain.StudentItemStat
}

// ItemStore defines the interface for knowledge item persistence.
type ItemStore interface {
	// Create saves a new knowledge item.
	// Returns ErrDuplicate if an item with the same
	// (collection, unit, category, prompt) key already exists.
	Create(ctx context.Context, item *domain.KnowledgeItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeItem, error)

	// Update replaces the mutable fields of an existing item.
	// Returns ErrItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.KnowledgeItem) error

	// Delete removes an item. Mastery stats referencing it are removed by
	// the database cascade; exercise snapshots survive because they copied
	// the item at generation time.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindEligible returns enabled, write-difficulty items matching the
	// query, left-joined with the student's stats and ordered by remediation
	// priority: highest consecutive-wrong streak first, then highest
	// lifetime wrong count, then attempted before never-attempted, then
	// oldest last attempt, then newest item ID. The caller over-fetches and
	// de-duplicates; the store does not.
	FindEligible(ctx context.Context, q EligibleItemQuery) ([]RankedItem, error)

	// WithTx returns an ItemStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ItemStore
}
