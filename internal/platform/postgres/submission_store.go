package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// PostgresSubmissionStore implements the store.SubmissionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubmissionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubmissionStore creates a new PostgreSQL implementation of the SubmissionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubmissionStore(db store.DBTX, logger *slog.Logger) *PostgresSubmissionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubmissionStore{
		db:     db,
		logger: logger.With(slog.String("component", "submission_store")),
	}
}

// Ensure PostgresSubmissionStore implements store.SubmissionStore interface
var _ store.SubmissionStore = (*PostgresSubmissionStore)(nil)

// Create implements store.SubmissionStore.Create
func (s *PostgresSubmissionStore) Create(ctx context.Context, sub *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("submission validation failed during create",
			slog.String("error", err.Error()),
			slog.String("submission_id", sub.ID.String()))
		return err
	}

	query := `
		INSERT INTO submissions (id, session_id, source, image_path, raw_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.SessionID,
		sub.Source,
		sub.ImagePath,
		sub.RawText,
		sub.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return MapError(err)
		}
		log.Error("failed to create submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", sub.ID.String()))
		return MapError(err)
	}

	log.Info("submission created",
		slog.String("submission_id", sub.ID.String()),
		slog.String("session_id", sub.SessionID.String()),
		slog.String("source", string(sub.Source)))
	return nil
}

// GetByID implements store.SubmissionStore.GetByID
func (s *PostgresSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, session_id, source, image_path, raw_text, created_at
		FROM submissions
		WHERE id = $1
	`

	var sub domain.Submission
	var source string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.SessionID,
		&source,
		&sub.ImagePath,
		&sub.RawText,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSubmissionNotFound
		}
		log.Error("failed to get submission by ID",
			slog.String("error", err.Error()),
			slog.String("submission_id", id.String()))
		return nil, MapError(err)
	}

	sub.Source = domain.SubmissionSource(source)
	return &sub, nil
}

// ReplaceResults implements store.SubmissionStore.ReplaceResults.
// Existing result rows are deleted and the new ones inserted as one logical
// unit, which is why this method must run inside a transaction: a failed
// confirmation must not leave partial result rows behind.
func (s *PostgresSubmissionStore) ReplaceResults(
	ctx context.Context,
	submissionID uuid.UUID,
	results []*domain.PracticeResult,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM practice_results WHERE submission_id = $1`, submissionID)
	if err != nil {
		log.Error("failed to delete existing results",
			slog.String("error", err.Error()),
			slog.String("submission_id", submissionID.String()))
		return MapError(err)
	}

	query := `
		INSERT INTO practice_results
			(id, submission_id, exercise_item_id, position, raw_answer,
			 normalized_answer, is_correct, error_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, r := range results {
		_, err := s.db.ExecContext(
			ctx,
			query,
			r.ID,
			r.SubmissionID,
			r.ExerciseItemID,
			r.Position,
			r.RawAnswer,
			r.NormalizedAnswer,
			r.IsCorrect,
			r.ErrorType,
			r.CreatedAt,
		)
		if err != nil {
			log.Error("failed to insert practice result",
				slog.String("error", err.Error()),
				slog.String("submission_id", submissionID.String()),
				slog.Int("position", r.Position))
			return MapError(err)
		}
	}

	log.Info("submission results replaced",
		slog.String("submission_id", submissionID.String()),
		slog.Int("result_count", len(results)))
	return nil
}

// ListResults implements store.SubmissionStore.ListResults
func (s *PostgresSubmissionStore) ListResults(
	ctx context.Context,
	submissionID uuid.UUID,
) ([]*domain.PracticeResult, error) {
	query := `
		SELECT id, submission_id, exercise_item_id, position, raw_answer,
		       normalized_answer, is_correct, error_type, created_at
		FROM practice_results
		WHERE submission_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var results []*domain.PracticeResult
	for rows.Next() {
		var r domain.PracticeResult
		var errType string
		err := rows.Scan(
			&r.ID,
			&r.SubmissionID,
			&r.ExerciseItemID,
			&r.Position,
			&r.RawAnswer,
			&r.NormalizedAnswer,
			&r.IsCorrect,
			&errType,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		r.ErrorType = domain.ErrorType(errType)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return results, nil
}

// WithTx implements store.SubmissionStore.WithTx
func (s *PostgresSubmissionStore) WithTx(tx *sql.Tx) store.SubmissionStore {
	return &PostgresSubmissionStore{
		db:     tx,
		logger: s.logger,
	}
}
