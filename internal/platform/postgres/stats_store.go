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

// PostgresStatsStore implements the store.StatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// Get implements store.StatsStore.Get
func (s *PostgresStatsStore) Get(
	ctx context.Context,
	studentID, itemID uuid.UUID,
) (*domain.StudentItemStat, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT student_id, item_id, total_attempts, correct_attempts, wrong_attempts,
		       consecutive_correct, consecutive_wrong, last_attempt_at, created_at, updated_at
		FROM student_item_stats
		WHERE student_id = $1 AND item_id = $2
	`

	var stat domain.StudentItemStat
	var lastAttemptAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, studentID, itemID).Scan(
		&stat.StudentID,
		&stat.ItemID,
		&stat.TotalAttempts,
		&stat.CorrectAttempts,
		&stat.WrongAttempts,
		&stat.ConsecutiveCorrect,
		&stat.ConsecutiveWrong,
		&lastAttemptAt,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStatNotFound
		}
		log.Error("failed to get student item stat",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()),
			slog.String("item_id", itemID.String()))
		return nil, MapError(err)
	}

	if lastAttemptAt.Valid {
		stat.LastAttemptAt = lastAttemptAt.Time
	}
	return &stat, nil
}

// Upsert implements store.StatsStore.Upsert
func (s *PostgresStatsStore) Upsert(ctx context.Context, stat *domain.StudentItemStat) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stat.Validate(); err != nil {
		log.Warn("stat validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("student_id", stat.StudentID.String()),
			slog.String("item_id", stat.ItemID.String()))
		return err
	}

	query := `
		INSERT INTO student_item_stats
			(student_id, item_id, total_attempts, correct_attempts, wrong_attempts,
			 consecutive_correct, consecutive_wrong, last_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (student_id, item_id) DO UPDATE
		SET total_attempts = EXCLUDED.total_attempts,
		    correct_attempts = EXCLUDED.correct_attempts,
		    wrong_attempts = EXCLUDED.wrong_attempts,
		    consecutive_correct = EXCLUDED.consecutive_correct,
		    consecutive_wrong = EXCLUDED.consecutive_wrong,
		    last_attempt_at = EXCLUDED.last_attempt_at,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		stat.StudentID,
		stat.ItemID,
		stat.TotalAttempts,
		stat.CorrectAttempts,
		stat.WrongAttempts,
		stat.ConsecutiveCorrect,
		stat.ConsecutiveWrong,
		stat.LastAttemptAt,
		stat.CreatedAt,
		stat.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert student item stat",
			slog.String("error", err.Error()),
			slog.String("student_id", stat.StudentID.String()),
			slog.String("item_id", stat.ItemID.String()))
		return MapError(err)
	}

	return nil
}

// WithTx implements store.StatsStore.WithTx
func (s *PostgresStatsStore) WithTx(tx *sql.Tx) store.StatsStore {
	return &PostgresStatsStore{
		db:     tx,
		logger: s.logger,
	}
}
