package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// GenerateSessionRequest carries the parameters for one worksheet
// generation.
type GenerateSessionRequest struct {
	StudentID    uuid.UUID
	CollectionID uuid.UUID
	Title        string
	TotalCount   int
	MixRatio     map[domain.ItemCategory]int
	UnitFilter   string
}

// PracticeService provides worksheet generation and session lifecycle
// operations.
type PracticeService interface {
	// GenerateSession selects items for a new worksheet and persists the
	// session with its snapshots atomically. On ErrInsufficientItems
	// nothing is persisted.
	GenerateSession(ctx context.Context, req GenerateSessionRequest) (*domain.PracticeSession, error)

	// GetSession retrieves a session with its exercise items.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)

	// PublishSession marks a draft worksheet as issued to the student.
	PublishSession(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)

	// DeleteSession removes a session and everything hanging off it.
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// practiceServiceImpl implements the PracticeService interface.
type practiceServiceImpl struct {
	db           *sql.DB
	itemStore    store.ItemStore
	sessionStore store.SessionStore
	studentStore store.StudentStore
	logger       *slog.Logger
}

// NewPracticeService creates a new PracticeService.
// It returns an error if any of the required dependencies are nil.
func NewPracticeService(
	db *sql.DB,
	itemStore store.ItemStore,
	sessionStore store.SessionStore,
	studentStore store.StudentStore,
	log *slog.Logger,
) (PracticeService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", ErrInvalidParams)
	}
	if itemStore == nil {
		return nil, fmt.Errorf("%w: itemStore cannot be nil", ErrInvalidParams)
	}
	if sessionStore == nil {
		return nil, fmt.Errorf("%w: sessionStore cannot be nil", ErrInvalidParams)
	}
	if studentStore == nil {
		return nil, fmt.Errorf("%w: studentStore cannot be nil", ErrInvalidParams)
	}
	if log == nil {
		log = slog.Default()
	}

	return &practiceServiceImpl{
		db:           db,
		itemStore:    itemStore,
		sessionStore: sessionStore,
		studentStore: studentStore,
		logger:       log.With(slog.String("component", "practice_service")),
	}, nil
}

// GenerateSession implements PracticeService.GenerateSession.
//
// Selection runs outside the transaction: it is read-only and the ranked
// queries are the expensive part. Only the final persist of the session and
// its snapshots is transactional.
func (s *practiceServiceImpl) GenerateSession(
	ctx context.Context,
	req GenerateSessionRequest,
) (*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.studentStore.GetByID(ctx, req.StudentID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewPracticeServiceError("generate_session", "student not found", err)
		}
		return nil, NewPracticeServiceError("generate_session", "failed to load student", err)
	}

	params := domain.GenerationParams{
		TotalCount: req.TotalCount,
		MixRatio:   req.MixRatio,
		UnitFilter: req.UnitFilter,
	}

	items, err := selectItems(ctx, s.itemStore, req.StudentID, params, req.CollectionID)
	if err != nil {
		log.Warn("item selection failed",
			slog.String("student_id", req.StudentID.String()),
			slog.Int("total_count", req.TotalCount),
			slog.String("error", err.Error()))
		return nil, err
	}

	session, err := domain.NewPracticeSession(req.StudentID, req.CollectionID, req.Title, params, items)
	if err != nil {
		return nil, NewPracticeServiceError("generate_session", "failed to build session", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.sessionStore.WithTx(tx).Create(ctx, session)
	})
	if err != nil {
		log.Error("failed to persist generated session",
			slog.String("session_id", session.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewPracticeServiceError("generate_session", "failed to save session", err)
	}

	log.Info("generated practice session",
		slog.String("session_id", session.ID.String()),
		slog.String("student_id", req.StudentID.String()),
		slog.Int("item_count", len(session.Items)))

	return session, nil
}

// validateGenerateRequest rejects parameter combinations before any
// selection query runs.
func validateGenerateRequest(req GenerateSessionRequest) error {
	if req.StudentID == uuid.Nil {
		return fmt.Errorf("%w: student ID is required", ErrInvalidParams)
	}
	if req.TotalCount <= 0 {
		return fmt.Errorf("%w: total count must be positive", ErrInvalidParams)
	}
	ratioSum := 0
	for cat, weight := range req.MixRatio {
		switch cat {
		case domain.CategoryWord, domain.CategoryPhrase, domain.CategorySentence, domain.CategoryGrammar:
		default:
			return fmt.Errorf("%w: unknown category %q in mix ratio", ErrInvalidParams, cat)
		}
		if weight < 0 {
			return fmt.Errorf("%w: negative weight for category %q", ErrInvalidParams, cat)
		}
		ratioSum += weight
	}
	if ratioSum == 0 {
		return fmt.Errorf("%w: mix ratio must have at least one positive weight", ErrInvalidParams)
	}
	return nil
}

// GetSession implements PracticeService.GetSession.
func (s *practiceServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessionStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to retrieve session",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
		return nil, NewPracticeServiceError("get_session", "failed to retrieve session", err)
	}
	return session, nil
}

// PublishSession implements PracticeService.PublishSession.
func (s *practiceServiceImpl) PublishSession(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := session.Publish(time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotGradable, err)
	}

	if err := s.sessionStore.UpdateStatus(ctx, session); err != nil {
		log.Error("failed to persist publish transition",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
		return nil, NewPracticeServiceError("publish_session", "failed to update status", err)
	}

	log.Info("published session", slog.String("session_id", id.String()))
	return session, nil
}

// DeleteSession implements PracticeService.DeleteSession.
func (s *practiceServiceImpl) DeleteSession(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.sessionStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrSessionNotFound
		}
		log.Error("failed to delete session",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
		return NewPracticeServiceError("delete_session", "failed to delete session", err)
	}

	log.Info("deleted session", slog.String("session_id", id.String()))
	return nil
}
