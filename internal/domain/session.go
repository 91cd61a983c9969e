package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

// Session lifecycle states, in order. Transitions are one-directional;
// states may be skipped (generation yields DRAFT, uploading a marked photo
// jumps straight to COMPLETED, any grading confirmation yields CORRECTED).
// CORRECTED is the only re-enterable state: re-confirming a submission
// re-applies it and overwrites CorrectedAt. ARCHIVED is reached only by the
// retention job, never by grading.
const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusPublished SessionStatus = "published"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCorrected SessionStatus = "corrected"
	SessionStatusArchived  SessionStatus = "archived"
)

// Session-specific errors.
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionStudentIDEmpty is returned when a session's student ID is empty or nil.
	ErrSessionStudentIDEmpty = errors.New("session student ID cannot be empty")

	// ErrSessionNoItems is returned when a session is created without exercise items.
	ErrSessionNoItems = errors.New("session must contain at least one exercise item")

	// ErrInvalidTransition is returned when a lifecycle transition would move
	// the session backwards or re-enter a one-shot state.
	ErrInvalidTransition = errors.New("invalid session status transition")
)

// statusRank orders the lifecycle states for transition checks.
var statusRank = map[SessionStatus]int{
	SessionStatusDraft:     0,
	SessionStatusPublished: 1,
	SessionStatusCompleted: 2,
	SessionStatusCorrected: 3,
	SessionStatusArchived:  4,
}

// GenerationParams records how a worksheet was generated so the selection
// can be audited and reproduced against the same mastery state.
type GenerationParams struct {
	TotalCount int                  `json:"total_count"`
	MixRatio   map[ItemCategory]int `json:"mix_ratio"`
	UnitFilter string               `json:"unit_filter,omitempty"`
}

// ExerciseItem is an immutable per-session snapshot of a knowledge item,
// copied at generation time so later edits to the source item do not
// retroactively change an already-issued worksheet.
type ExerciseItem struct {
	ID               uuid.UUID    `json:"id"`
	SessionID        uuid.UUID    `json:"session_id"`
	ItemID           uuid.UUID    `json:"item_id"`
	Position         int          `json:"position"`
	Category         ItemCategory `json:"category"`
	Prompt           string       `json:"prompt"`
	Answer           string       `json:"answer"`
	AnswerNormalized string       `json:"answer_normalized"`
}

// PracticeSession is one worksheet instance: an ordered list of exercise
// snapshots plus the lifecycle state and its transition timestamps.
type PracticeSession struct {
	ID           uuid.UUID        `json:"id"`
	StudentID    uuid.UUID        `json:"student_id"`
	CollectionID uuid.UUID        `json:"collection_id"`
	Title        string           `json:"title"`
	Status       SessionStatus    `json:"status"`
	Params       GenerationParams `json:"params"`
	Items        []ExerciseItem   `json:"items"`
	CreatedAt    time.Time        `json:"created_at"`
	PublishedAt  *time.Time       `json:"published_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	CorrectedAt  *time.Time       `json:"corrected_at,omitempty"`
	ArchivedAt   *time.Time       `json:"archived_at,omitempty"`
}

// NewPracticeSession creates a DRAFT session snapshotting the given items in
// order. Positions are assigned sequentially starting at 1.
func NewPracticeSession(
	studentID, collectionID uuid.UUID,
	title string,
	params GenerationParams,
	items []*KnowledgeItem,
) (*PracticeSession, error) {
	if studentID == uuid.Nil {
		return nil, ErrSessionStudentIDEmpty
	}
	if len(items) == 0 {
		return nil, ErrSessionNoItems
	}

	session := &PracticeSession{
		ID:           uuid.New(),
		StudentID:    studentID,
		CollectionID: collectionID,
		Title:        title,
		Status:       SessionStatusDraft,
		Params:       params,
		CreatedAt:    time.Now().UTC(),
	}

	session.Items = make([]ExerciseItem, 0, len(items))
	for pos, item := range items {
		session.Items = append(session.Items, ExerciseItem{
			ID:               uuid.New(),
			SessionID:        session.ID,
			ItemID:           item.ID,
			Position:         pos + 1,
			Category:         item.Category,
			Prompt:           item.Prompt,
			Answer:           item.Answer,
			AnswerNormalized: item.AnswerNormalized,
		})
	}

	return session, nil
}

// Publish marks the worksheet as issued to the student.
func (s *PracticeSession) Publish(at time.Time) error {
	if err := s.checkForward(SessionStatusPublished); err != nil {
		return err
	}
	s.Status = SessionStatusPublished
	s.PublishedAt = &at
	return nil
}

// Complete marks the worksheet as filled in by the student. Reached directly
// from DRAFT when a marked photo is uploaded without an explicit publish.
func (s *PracticeSession) Complete(at time.Time) error {
	if err := s.checkForward(SessionStatusCompleted); err != nil {
		return err
	}
	s.Status = SessionStatusCompleted
	s.CompletedAt = &at
	return nil
}

// MarkCorrected records a confirmed grading. Unlike the other transitions it
// may be re-applied: re-confirming a submission is an idempotent re-grade,
// and the later CorrectedAt fully overwrites the earlier one.
func (s *PracticeSession) MarkCorrected(at time.Time) error {
	if s.Status == SessionStatusArchived {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, SessionStatusCorrected)
	}
	s.Status = SessionStatusCorrected
	s.CorrectedAt = &at
	return nil
}

// Archive moves the session into long-term retention. Only the retention
// job calls this; grading never does.
func (s *PracticeSession) Archive(at time.Time) error {
	if err := s.checkForward(SessionStatusArchived); err != nil {
		return err
	}
	s.Status = SessionStatusArchived
	s.ArchivedAt = &at
	return nil
}

// checkForward rejects transitions that do not move strictly forward.
func (s *PracticeSession) checkForward(next SessionStatus) error {
	if statusRank[next] <= statusRank[s.Status] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	return nil
}

// ItemAt returns the exercise item at the given 1-based worksheet position,
// or nil when no item occupies it.
func (s *PracticeSession) ItemAt(position int) *ExerciseItem {
	for i := range s.Items {
		if s.Items[i].Position == position {
			return &s.Items[i]
		}
	}
	return nil
}
