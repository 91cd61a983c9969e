package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.KnowledgeItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO knowledge_items
			(id, collection_id, unit, category, prompt, answer, answer_normalized,
			 difficulty, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.CollectionID,
		item.Unit,
		item.Category,
		item.Prompt,
		item.Answer,
		item.AnswerNormalized,
		item.Difficulty,
		item.Enabled,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create knowledge item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	log.Debug("knowledge item created",
		slog.String("item_id", item.ID.String()),
		slog.String("category", string(item.Category)))
	return nil
}

// GetByID implements store.ItemStore.GetByID
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, collection_id, unit, category, prompt, answer, answer_normalized,
		       difficulty, enabled, created_at, updated_at
		FROM knowledge_items
		WHERE id = $1
	`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get knowledge item by ID",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, MapError(err)
	}
	return item, nil
}

// Update implements store.ItemStore.Update
func (s *PostgresItemStore) Update(ctx context.Context, item *domain.KnowledgeItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE knowledge_items
		SET unit = $2, category = $3, prompt = $4, answer = $5,
		    answer_normalized = $6, difficulty = $7, enabled = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Unit,
		item.Category,
		item.Prompt,
		item.Answer,
		item.AnswerNormalized,
		item.Difficulty,
		item.Enabled,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update knowledge item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "knowledge item")
}

// Delete implements store.ItemStore.Delete
func (s *PostgresItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_items WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete knowledge item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "knowledge item")
}

// FindEligible implements store.ItemStore.FindEligible.
//
// The ordering encodes the remediation priority the item selector depends
// on. Never-attempted items (NULL stat join) sort after any item with
// attempt history when the wrong counters are tied: an untouched item is a
// lower priority than one the student has already seen. The final id DESC
// tie-break puts newest-imported items first.
func (s *PostgresItemStore) FindEligible(
	ctx context.Context,
	q store.EligibleItemQuery,
) ([]store.RankedItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT i.id, i.collection_id, i.unit, i.category, i.prompt, i.answer,
		       i.answer_normalized, i.difficulty, i.enabled, i.created_at, i.updated_at,
		       s.total_attempts, s.correct_attempts, s.wrong_attempts,
		       s.consecutive_correct, s.consecutive_wrong, s.last_attempt_at,
		       s.created_at, s.updated_at
		FROM knowledge_items i
		LEFT JOIN student_item_stats s
		       ON s.item_id = i.id AND s.student_id = $1
		WHERE i.collection_id = $2
		  AND i.enabled
		  AND i.difficulty = 'write'
		  AND ($3 = '' OR i.unit = $3)
		  AND ($4 = '' OR i.category = $4)
		ORDER BY COALESCE(s.consecutive_wrong, 0) DESC,
		         COALESCE(s.wrong_attempts, 0) DESC,
		         (s.student_id IS NULL) ASC,
		         s.last_attempt_at ASC NULLS LAST,
		         i.id DESC
		LIMIT $5
	`

	rows, err := s.db.QueryContext(
		ctx,
		query,
		q.StudentID,
		q.CollectionID,
		q.Unit,
		string(q.Category),
		q.Limit,
	)
	if err != nil {
		log.Error("failed to query eligible items",
			slog.String("error", err.Error()),
			slog.String("student_id", q.StudentID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ranked []store.RankedItem
	for rows.Next() {
		var item domain.KnowledgeItem
		var category, difficulty string
		var totalAttempts, correctAttempts, wrongAttempts sql.NullInt64
		var consecCorrect, consecWrong sql.NullInt64
		var lastAttemptAt, statCreatedAt, statUpdatedAt sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.CollectionID,
			&item.Unit,
			&category,
			&item.Prompt,
			&item.Answer,
			&item.AnswerNormalized,
			&difficulty,
			&item.Enabled,
			&item.CreatedAt,
			&item.UpdatedAt,
			&totalAttempts,
			&correctAttempts,
			&wrongAttempts,
			&consecCorrect,
			&consecWrong,
			&lastAttemptAt,
			&statCreatedAt,
			&statUpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		item.Category = domain.ItemCategory(category)
		item.Difficulty = domain.Difficulty(difficulty)

		ri := store.RankedItem{Item: item}
		if totalAttempts.Valid {
			ri.Stat = &domain.StudentItemStat{
				StudentID:          q.StudentID,
				ItemID:             item.ID,
				TotalAttempts:      int(totalAttempts.Int64),
				CorrectAttempts:    int(correctAttempts.Int64),
				WrongAttempts:      int(wrongAttempts.Int64),
				ConsecutiveCorrect: int(consecCorrect.Int64),
				ConsecutiveWrong:   int(consecWrong.Int64),
				LastAttemptAt:      lastAttemptAt.Time,
				CreatedAt:          statCreatedAt.Time,
				UpdatedAt:          statUpdatedAt.Time,
			}
		}
		ranked = append(ranked, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("eligible items fetched",
		slog.Int("count", len(ranked)),
		slog.String("category", string(q.Category)))
	return ranked, nil
}

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanItem scans a single knowledge item row.
func scanItem(row *sql.Row) (*domain.KnowledgeItem, error) {
	var item domain.KnowledgeItem
	var category, difficulty string

	err := row.Scan(
		&item.ID,
		&item.CollectionID,
		&item.Unit,
		&category,
		&item.Prompt,
		&item.Answer,
		&item.AnswerNormalized,
		&difficulty,
		&item.Enabled,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Category = domain.ItemCategory(category)
	item.Difficulty = domain.Difficulty(difficulty)
	return &item, nil
}
