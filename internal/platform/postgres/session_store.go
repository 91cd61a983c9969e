package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create.
// It inserts the session row and its exercise-item snapshots. Callers must
// run it inside a transaction so a worksheet is never persisted half-built.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.PracticeSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	paramsJSON, err := json.Marshal(session.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal generation params: %w", err)
	}

	query := `
		INSERT INTO practice_sessions
			(id, student_id, collection_id, title, status, params, created_at,
			 published_at, completed_at, corrected_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.StudentID,
		session.CollectionID,
		session.Title,
		session.Status,
		paramsJSON,
		session.CreatedAt,
		session.PublishedAt,
		session.CompletedAt,
		session.CorrectedAt,
		session.ArchivedAt,
	)
	if err != nil {
		log.Error("failed to create practice session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	itemQuery := `
		INSERT INTO exercise_items
			(id, session_id, item_id, position, category, prompt, answer, answer_normalized)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range session.Items {
		ei := &session.Items[i]
		_, err = s.db.ExecContext(
			ctx,
			itemQuery,
			ei.ID,
			ei.SessionID,
			ei.ItemID,
			ei.Position,
			ei.Category,
			ei.Prompt,
			ei.Answer,
			ei.AnswerNormalized,
		)
		if err != nil {
			log.Error("failed to create exercise item",
				slog.String("error", err.Error()),
				slog.String("session_id", session.ID.String()),
				slog.Int("position", ei.Position))
			return MapError(err)
		}
	}

	log.Info("practice session created",
		slog.String("session_id", session.ID.String()),
		slog.String("student_id", session.StudentID.String()),
		slog.Int("item_count", len(session.Items)))
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, collection_id, title, status, params, created_at,
		       published_at, completed_at, corrected_at, archived_at
		FROM practice_sessions
		WHERE id = $1
	`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get practice session by ID",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Items = items

	return session, nil
}

// UpdateStatus implements store.SessionStore.UpdateStatus
func (s *PostgresSessionStore) UpdateStatus(ctx context.Context, session *domain.PracticeSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE practice_sessions
		SET status = $2, published_at = $3, completed_at = $4,
		    corrected_at = $5, archived_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.Status,
		session.PublishedAt,
		session.CompletedAt,
		session.CorrectedAt,
		session.ArchivedAt,
	)
	if err != nil {
		log.Error("failed to update session status",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("status", string(session.Status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "practice session"); err != nil {
		return err
	}

	log.Debug("session status updated",
		slog.String("session_id", session.ID.String()),
		slog.String("status", string(session.Status)))
	return nil
}

// ListCorrectedBefore implements store.SessionStore.ListCorrectedBefore
func (s *PostgresSessionStore) ListCorrectedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, collection_id, title, status, params, created_at,
		       published_at, completed_at, corrected_at, archived_at
		FROM practice_sessions
		WHERE status = 'corrected' AND corrected_at < $1
		ORDER BY corrected_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		log.Error("failed to list corrected sessions",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.PracticeSession
	for rows.Next() {
		session, err := scanSessionRows(rows)
		if err != nil {
			return nil, MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return sessions, nil
}

// Delete implements store.SessionStore.Delete
func (s *PostgresSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM practice_sessions WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete practice session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "practice session")
}

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// loadItems fetches a session's exercise items ordered by position.
func (s *PostgresSessionStore) loadItems(ctx context.Context, sessionID uuid.UUID) ([]domain.ExerciseItem, error) {
	query := `
		SELECT id, session_id, item_id, position, category, prompt, answer, answer_normalized
		FROM exercise_items
		WHERE session_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.ExerciseItem
	for rows.Next() {
		var ei domain.ExerciseItem
		var category string
		err := rows.Scan(
			&ei.ID,
			&ei.SessionID,
			&ei.ItemID,
			&ei.Position,
			&category,
			&ei.Prompt,
			&ei.Answer,
			&ei.AnswerNormalized,
		)
		if err != nil {
			return nil, MapError(err)
		}
		ei.Category = domain.ItemCategory(category)
		items = append(items, ei)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// rowScanner abstracts sql.Row and sql.Rows for session scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.PracticeSession, error) {
	var session domain.PracticeSession
	var status string
	var paramsJSON []byte

	err := row.Scan(
		&session.ID,
		&session.StudentID,
		&session.CollectionID,
		&session.Title,
		&status,
		&paramsJSON,
		&session.CreatedAt,
		&session.PublishedAt,
		&session.CompletedAt,
		&session.CorrectedAt,
		&session.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = domain.SessionStatus(status)
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &session.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generation params: %w", err)
		}
	}
	return &session, nil
}

func scanSessionRows(rows *sql.Rows) (*domain.PracticeSession, error) {
	return scanSession(rows)
}
