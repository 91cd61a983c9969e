package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SubmissionSource distinguishes how a graded attempt reached the system.
type SubmissionSource string

// Possible submission sources.
const (
	SourceManual      SubmissionSource = "manual"       // parent typed the answers in
	SourcePhoto       SubmissionSource = "photo"        // unmarked worksheet photo
	SourceMarkedPhoto SubmissionSource = "marked_photo" // parent-marked worksheet photo
)

// Submission-specific validation errors.
var (
	// ErrSubmissionIDEmpty is returned when a submission ID is empty or nil.
	ErrSubmissionIDEmpty = errors.New("submission ID cannot be empty")

	// ErrSubmissionSessionIDEmpty is returned when a submission's session ID is empty or nil.
	ErrSubmissionSessionIDEmpty = errors.New("submission session ID cannot be empty")

	// ErrSubmissionSourceInvalid is returned when a submission source is not recognized.
	ErrSubmissionSourceInvalid = errors.New("invalid submission source")
)

// Submission is one graded attempt against a session. A session owns its
// submissions; a submission owns its result rows (both cascade-deleted).
type Submission struct {
	ID        uuid.UUID        `json:"id"`
	SessionID uuid.UUID        `json:"session_id"`
	Source    SubmissionSource `json:"source"`
	ImagePath string           `json:"image_path,omitempty"`
	RawText   string           `json:"raw_text,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewSubmission creates a submission for the given session.
func NewSubmission(sessionID uuid.UUID, source SubmissionSource) (*Submission, error) {
	sub := &Submission{
		ID:        uuid.New(),
		SessionID: sessionID,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Validate checks if the Submission has valid data.
func (s *Submission) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSubmissionIDEmpty
	}
	if s.SessionID == uuid.Nil {
		return ErrSubmissionSessionIDEmpty
	}
	switch s.Source {
	case SourceManual, SourcePhoto, SourceMarkedPhoto:
	default:
		return ErrSubmissionSourceInvalid
	}
	return nil
}

// PracticeResult is one graded row per (submission, exercise item). Rows are
// write-once: re-confirming a submission deletes and regenerates them as an
// explicit overwrite, never an append.
type PracticeResult struct {
	ID               uuid.UUID `json:"id"`
	SubmissionID     uuid.UUID `json:"submission_id"`
	ExerciseItemID   uuid.UUID `json:"exercise_item_id"`
	Position         int       `json:"position"`
	RawAnswer        string    `json:"raw_answer"`
	NormalizedAnswer string    `json:"normalized_answer"`
	IsCorrect        bool      `json:"is_correct"`
	ErrorType        ErrorType `json:"error_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewPracticeResult grades a raw answer against an exercise snapshot,
// normalizing it and deriving the error classification.
func NewPracticeResult(submissionID uuid.UUID, item ExerciseItem, rawAnswer string) *PracticeResult {
	normalized := NormalizeAnswer(rawAnswer)
	errType := ClassifyError(item.AnswerNormalized, normalized)

	return &PracticeResult{
		ID:               uuid.New(),
		SubmissionID:     submissionID,
		ExerciseItemID:   item.ID,
		Position:         item.Position,
		RawAnswer:        rawAnswer,
		NormalizedAnswer: normalized,
		IsCorrect:        errType == ErrorTypeNone,
		ErrorType:        errType,
		CreatedAt:        time.Now().UTC(),
	}
}

// NewConfirmedResult records a human-confirmed correctness verdict for an
// exercise snapshot, used when grading comes from a photo rather than a
// transcription. The student text may be empty when the grader could not
// read it.
func NewConfirmedResult(
	submissionID uuid.UUID,
	item ExerciseItem,
	studentText string,
	isCorrect bool,
) *PracticeResult {
	normalized := NormalizeAnswer(studentText)
	errType := ErrorTypeNone
	if !isCorrect {
		if normalized == "" {
			errType = ErrorTypeBlank
		} else if errType = ClassifyError(item.AnswerNormalized, normalized); errType == ErrorTypeNone {
			// The confirmer overruled the exact match; trust the human.
			errType = ErrorTypeWrong
		}
	}

	return &PracticeResult{
		ID:               uuid.New(),
		SubmissionID:     submissionID,
		ExerciseItemID:   item.ID,
		Position:         item.Position,
		RawAnswer:        studentText,
		NormalizedAnswer: normalized,
		IsCorrect:        isCorrect,
		ErrorType:        errType,
		CreatedAt:        time.Now().UTC(),
	}
}
