package grading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/domain/mastery"
	"github.com/ssl2010/englishlearn-api/internal/grading"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/service"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// Mode selects the provider chain.
const (
	// ModeAuto tries the vision provider first and falls back to the
	// ink-mark heuristic.
	ModeAuto = "auto"

	// ModeHeuristic skips the vision provider entirely.
	ModeHeuristic = "heuristic"
)

// Proposal is the outcome of grading an upload: a persisted submission plus
// the provider's unconfirmed marks for the caller to review.
type Proposal struct {
	SubmissionID uuid.UUID                `json:"submission_id"`
	SessionID    uuid.UUID                `json:"session_id"`
	Grading      *grading.ProposedGrading `json:"grading"`
}

// ConfirmedMark is one human-verified verdict for a worksheet position.
type ConfirmedMark struct {
	Position    int    `json:"position"`
	IsCorrect   bool   `json:"is_correct"`
	StudentText string `json:"student_text,omitempty"`
}

// ManualAnswer is one parent-transcribed student answer.
type ManualAnswer struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Service provides the grading use cases.
type Service interface {
	// GradeMarkedPhoto records a marked-photo submission, moves the session
	// to COMPLETED, and returns the provider's grading proposal. Mastery
	// statistics are untouched until ConfirmGrading.
	GradeMarkedPhoto(ctx context.Context, sessionID uuid.UUID, photos [][]byte) (*Proposal, error)

	// ConfirmGrading commits human-verified marks: result rows are replaced,
	// mastery statistics are updated, and the session becomes CORRECTED, all
	// atomically. Marks for positions with no exercise item are skipped.
	// Re-confirming the same submission is an explicit re-grade.
	ConfirmGrading(ctx context.Context, submissionID uuid.UUID, marks []ConfirmedMark) ([]*domain.PracticeResult, error)

	// SubmitManualAnswers grades parent-typed transcriptions with the exact
	// match rule and commits them directly: manual entry is already a human
	// verdict, so no separate confirmation step applies.
	SubmitManualAnswers(ctx context.Context, sessionID uuid.UUID, answers []ManualAnswer) ([]*domain.PracticeResult, error)
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db          *sql.DB
	sessions    store.SessionStore
	submissions store.SubmissionStore
	stats       store.StatsStore
	settings    store.SettingsStore
	vision      grading.Grader // nil when no API key is configured
	heuristic   grading.Grader
	mode        string
	logger      *slog.Logger
}

// NewService creates a grading Service. vision may be nil; the service then
// behaves as if mode were heuristic. heuristic must never be nil, it is the
// floor the provider chain always lands on. Mastery parameters are loaded
// from the settings store per confirmation, not fixed at construction.
func NewService(
	db *sql.DB,
	sessions store.SessionStore,
	submissions store.SubmissionStore,
	stats store.StatsStore,
	settings store.SettingsStore,
	vision grading.Grader,
	heuristic grading.Grader,
	mode string,
	log *slog.Logger,
) (Service, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if sessions == nil || submissions == nil || stats == nil || settings == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if heuristic == nil {
		return nil, errors.New("heuristic grader cannot be nil")
	}
	if mode != ModeAuto && mode != ModeHeuristic {
		return nil, fmt.Errorf("unknown grading mode %q", mode)
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		db:          db,
		sessions:    sessions,
		submissions: submissions,
		stats:       stats,
		settings:    settings,
		vision:      vision,
		heuristic:   heuristic,
		mode:        mode,
		logger:      log.With(slog.String("component", "grading_service")),
	}, nil
}

// GradeMarkedPhoto implements Service.GradeMarkedPhoto.
func (s *serviceImpl) GradeMarkedPhoto(
	ctx context.Context,
	sessionID uuid.UUID,
	photos [][]byte,
) (*Proposal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionStatusArchived {
		return nil, fmt.Errorf("%w: session is archived", service.ErrSessionNotGradable)
	}

	sub, err := domain.NewSubmission(sessionID, domain.SourceMarkedPhoto)
	if err != nil {
		return nil, err
	}

	// The submission and the COMPLETED transition persist even if the
	// provider later fails: an upload happened, and the parent can retry
	// grading or fall through to manual entry.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if txErr := s.submissions.WithTx(tx).Create(ctx, sub); txErr != nil {
			return txErr
		}
		if session.Status == domain.SessionStatusDraft || session.Status == domain.SessionStatusPublished {
			if txErr := session.Complete(time.Now().UTC()); txErr != nil {
				return txErr
			}
			return s.sessions.WithTx(tx).UpdateStatus(ctx, session)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to record submission",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("recording submission: %w", err)
	}

	proposed, err := s.propose(ctx, photos, session.Items)
	if err != nil {
		return nil, err
	}

	log.Info("grading proposal ready",
		slog.String("session_id", sessionID.String()),
		slog.String("submission_id", sub.ID.String()),
		slog.String("provider", string(proposed.Provider)),
		slog.Int("marks", len(proposed.Marks)))

	return &Proposal{
		SubmissionID: sub.ID,
		SessionID:    sessionID,
		Grading:      proposed,
	}, nil
}

// propose runs the provider chain. Vision failures that have a meaningful
// heuristic answer degrade rather than error; anything else propagates.
func (s *serviceImpl) propose(
	ctx context.Context,
	photos [][]byte,
	items []domain.ExerciseItem,
) (*grading.ProposedGrading, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.mode == ModeAuto && s.vision != nil {
		proposed, err := s.vision.GradeMarkedPhoto(ctx, photos, items)
		if err == nil {
			return proposed, nil
		}
		switch {
		case errors.Is(err, grading.ErrProviderUnavailable):
			log.Warn("vision provider unavailable, falling back to heuristic",
				slog.String("error", err.Error()))
		case errors.Is(err, grading.ErrUngradeableResponse),
			errors.Is(err, grading.ErrTruncatedResponse):
			log.Warn("vision response unusable, falling back to heuristic",
				slog.String("error", err.Error()))
		default:
			return nil, err
		}
	}

	return s.heuristic.GradeMarkedPhoto(ctx, photos, items)
}

// ConfirmGrading implements Service.ConfirmGrading.
func (s *serviceImpl) ConfirmGrading(
	ctx context.Context,
	submissionID uuid.UUID,
	marks []ConfirmedMark,
) ([]*domain.PracticeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("loading submission: %w", err)
	}

	session, err := s.loadSession(ctx, sub.SessionID)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.PracticeResult, 0, len(marks))
	for _, m := range marks {
		item := session.ItemAt(m.Position)
		if item == nil {
			log.Warn("confirmed mark references unknown position, skipping",
				slog.String("session_id", session.ID.String()),
				slog.Int("position", m.Position))
			continue
		}
		results = append(results, domain.NewConfirmedResult(submissionID, *item, m.StudentText, m.IsCorrect))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no confirmable marks", service.ErrInvalidParams)
	}

	if err := s.commit(ctx, session, submissionID, results); err != nil {
		return nil, err
	}

	log.Info("grading confirmed",
		slog.String("session_id", session.ID.String()),
		slog.String("submission_id", submissionID.String()),
		slog.Int("results", len(results)))

	return results, nil
}

// SubmitManualAnswers implements Service.SubmitManualAnswers.
func (s *serviceImpl) SubmitManualAnswers(
	ctx context.Context,
	sessionID uuid.UUID,
	answers []ManualAnswer,
) ([]*domain.PracticeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionStatusArchived {
		return nil, fmt.Errorf("%w: session is archived", service.ErrSessionNotGradable)
	}

	sub, err := domain.NewSubmission(sessionID, domain.SourceManual)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.PracticeResult, 0, len(answers))
	for _, a := range answers {
		item := session.ItemAt(a.Position)
		if item == nil {
			log.Warn("manual answer references unknown position, skipping",
				slog.String("session_id", sessionID.String()),
				slog.Int("position", a.Position))
			continue
		}
		results = append(results, domain.NewPracticeResult(sub.ID, *item, a.Text))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no answers to grade", service.ErrInvalidParams)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if txErr := s.submissions.WithTx(tx).Create(ctx, sub); txErr != nil {
			return txErr
		}
		if session.Status == domain.SessionStatusDraft || session.Status == domain.SessionStatusPublished {
			if txErr := session.Complete(time.Now().UTC()); txErr != nil {
				return txErr
			}
			if txErr := s.sessions.WithTx(tx).UpdateStatus(ctx, session); txErr != nil {
				return txErr
			}
		}
		return s.applyResults(ctx, tx, session, sub.ID, results)
	})
	if err != nil {
		return nil, err
	}

	log.Info("manual answers graded",
		slog.String("session_id", sessionID.String()),
		slog.String("submission_id", sub.ID.String()),
		slog.Int("results", len(results)))

	return results, nil
}

// commit replaces the submission's results, applies mastery updates, and
// marks the session corrected in one transaction.
func (s *serviceImpl) commit(
	ctx context.Context,
	session *domain.PracticeSession,
	submissionID uuid.UUID,
	results []*domain.PracticeResult,
) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.applyResults(ctx, tx, session, submissionID, results)
	})
}

// applyResults is the transactional core shared by the confirmation and
// manual paths. The caller is responsible for running it inside tx. Mastery
// parameters are read from the settings store once at the start so a
// concurrent settings write cannot split one submission across two
// thresholds.
func (s *serviceImpl) applyResults(
	ctx context.Context,
	tx *sql.Tx,
	session *domain.PracticeSession,
	submissionID uuid.UUID,
	results []*domain.PracticeResult,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	txSubs := s.submissions.WithTx(tx)
	txStats := s.stats.WithTx(tx)
	txSessions := s.sessions.WithTx(tx)

	if err := txSubs.ReplaceResults(ctx, submissionID, results); err != nil {
		return fmt.Errorf("replacing results: %w", err)
	}

	params := service.LoadMasteryParams(ctx, s.settings, s.logger)
	tracker := mastery.NewServiceWithParams(&params)

	now := time.Now().UTC()
	for _, res := range results {
		item := session.ItemAt(res.Position)
		if item == nil {
			continue
		}

		stat, err := txStats.Get(ctx, session.StudentID, item.ItemID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("loading stat for item %s: %w", item.ItemID, err)
			}
			stat, err = domain.NewStudentItemStat(session.StudentID, item.ItemID)
			if err != nil {
				return err
			}
		}

		updated, err := tracker.RecordAttempt(stat, res.IsCorrect, now)
		if err != nil {
			return fmt.Errorf("recording attempt for item %s: %w", item.ItemID, err)
		}
		if err := txStats.Upsert(ctx, updated); err != nil {
			// The knowledge item may have been deleted after the worksheet
			// snapshot was taken. The result still stands; only the mastery
			// update is skipped.
			if errors.Is(err, store.ErrInvalidEntity) {
				log.Warn("skipping mastery update for removed item",
					slog.String("student_id", session.StudentID.String()),
					slog.String("item_id", item.ItemID.String()))
				continue
			}
			return fmt.Errorf("saving stat for item %s: %w", item.ItemID, err)
		}
		if tracker.IsMastered(updated) && !tracker.IsMastered(stat) {
			log.Info("item mastered",
				slog.String("student_id", session.StudentID.String()),
				slog.String("item_id", item.ItemID.String()),
				slog.Int("streak", updated.ConsecutiveCorrect))
		}
	}

	if err := session.MarkCorrected(now); err != nil {
		return fmt.Errorf("%w: %v", service.ErrSessionNotGradable, err)
	}
	return txSessions.UpdateStatus(ctx, session)
}

// loadSession fetches a session, mapping not-found to the store sentinel.
func (s *serviceImpl) loadSession(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}
