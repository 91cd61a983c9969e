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

// PostgresStudentStore implements the store.StudentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStudentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudentStore creates a new PostgreSQL implementation of the StudentStore interface.
func NewPostgresStudentStore(db store.DBTX, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudentStore{
		db:     db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

// Ensure PostgresStudentStore implements store.StudentStore interface
var _ store.StudentStore = (*PostgresStudentStore)(nil)

// Create implements store.StudentStore.Create
func (s *PostgresStudentStore) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO students (id, name, grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		student.ID,
		student.Name,
		student.Grade,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return MapError(err)
	}

	log.Info("student created", slog.String("student_id", student.ID.String()))
	return nil
}

// GetByID implements store.StudentStore.GetByID
func (s *PostgresStudentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	query := `
		SELECT id, name, grade, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	var student domain.Student
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.Grade,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStudentNotFound
		}
		return nil, MapError(err)
	}

	return &student, nil
}

// Delete implements store.StudentStore.Delete.
// Sessions, submissions, results, and stats go with the student via the
// ON DELETE CASCADE constraints in the schema.
func (s *PostgresStudentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete student",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "student")
}

// WithTx implements store.StudentStore.WithTx
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{
		db:     tx,
		logger: s.logger,
	}
}
