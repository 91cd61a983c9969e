package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// Common request/response structures.

// CreateStudentRequest defines the payload for registering a student.
type CreateStudentRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=100"`
	Grade int    `json:"grade" validate:"required,gte=1,lte=12"`
}

// StudentResponse represents the response data for a student.
type StudentResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Grade int       `json:"grade"`
}

// CreateItemRequest defines the payload for adding one knowledge item.
type CreateItemRequest struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
	Unit         string    `json:"unit"`
	Category     string    `json:"category"   validate:"required,oneof=word phrase sentence grammar"`
	Prompt       string    `json:"prompt"     validate:"required"`
	Answer       string    `json:"answer"     validate:"required"`
	Difficulty   string    `json:"difficulty" validate:"required,oneof=write recognize"`
}

// ItemResponse represents the response data for a knowledge item.
type ItemResponse struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Unit         string    `json:"unit,omitempty"`
	Category     string    `json:"category"`
	Prompt       string    `json:"prompt"`
	Answer       string    `json:"answer"`
	Difficulty   string    `json:"difficulty"`
	Enabled      bool      `json:"enabled"`
}

// GenerateSessionRequest defines the payload for worksheet generation.
type GenerateSessionRequest struct {
	StudentID    uuid.UUID      `json:"student_id"    validate:"required"`
	CollectionID uuid.UUID      `json:"collection_id" validate:"required"`
	Title        string         `json:"title"         validate:"max=200"`
	TotalCount   int            `json:"total_count"   validate:"required,gt=0,lte=100"`
	MixRatio     map[string]int `json:"mix_ratio"     validate:"required,min=1"`
	UnitFilter   string         `json:"unit_filter"`
}

// ExerciseItemResponse represents one worksheet slot.
type ExerciseItemResponse struct {
	Position int    `json:"position"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer"`
}

// SessionResponse represents the response data for a practice session.
type SessionResponse struct {
	ID          uuid.UUID              `json:"id"`
	StudentID   uuid.UUID              `json:"student_id"`
	Title       string                 `json:"title,omitempty"`
	Status      string                 `json:"status"`
	Items       []ExerciseItemResponse `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CorrectedAt *time.Time             `json:"corrected_at,omitempty"`
}

// sessionToResponse transforms a domain session into its API shape.
func sessionToResponse(s *domain.PracticeSession) SessionResponse {
	items := make([]ExerciseItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ExerciseItemResponse{
			Position: it.Position,
			Category: string(it.Category),
			Prompt:   it.Prompt,
			Answer:   it.Answer,
		})
	}
	return SessionResponse{
		ID:          s.ID,
		StudentID:   s.StudentID,
		Title:       s.Title,
		Status:      string(s.Status),
		Items:       items,
		CreatedAt:   s.CreatedAt,
		PublishedAt: s.PublishedAt,
		CompletedAt: s.CompletedAt,
		CorrectedAt: s.CorrectedAt,
	}
}

// ConfirmedMarkRequest is one human-verified verdict in a confirmation.
type ConfirmedMarkRequest struct {
	Position    int    `json:"position"     validate:"required,gt=0"`
	IsCorrect   *bool  `json:"is_correct"   validate:"required"`
	StudentText string `json:"student_text" validate:"max=200"`
}

// ConfirmGradingRequest defines the payload for committing a grading.
type ConfirmGradingRequest struct {
	Marks []ConfirmedMarkRequest `json:"marks" validate:"required,min=1,dive"`
}

// ManualAnswerRequest is one parent-transcribed answer.
type ManualAnswerRequest struct {
	Position int    `json:"position" validate:"required,gt=0"`
	Text     string `json:"text"     validate:"max=500"`
}

// SubmitManualAnswersRequest defines the payload for the manual path.
type SubmitManualAnswersRequest struct {
	Answers []ManualAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// ResultResponse represents one graded result row.
type ResultResponse struct {
	Position         int    `json:"position"`
	RawAnswer        string `json:"raw_answer"`
	NormalizedAnswer string `json:"normalized_answer,omitempty"`
	IsCorrect        bool   `json:"is_correct"`
	ErrorType        string `json:"error_type"`
}

// resultsToResponse transforms graded result rows into their API shape.
func resultsToResponse(results []*domain.PracticeResult) []ResultResponse {
	out := make([]ResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, ResultResponse{
			Position:         res.Position,
			RawAnswer:        res.RawAnswer,
			NormalizedAnswer: res.NormalizedAnswer,
			IsCorrect:        res.IsCorrect,
			ErrorType:        string(res.ErrorType),
		})
	}
	return out
}

// SettingsResponse represents the tunable grading parameters.
type SettingsResponse struct {
	MasteryThreshold int `json:"mastery_threshold"`
	WeeklyTargetDays int `json:"weekly_target_days"`
}

// UpdateSettingsRequest defines the payload for the settings update. Both
// fields are optional; omitted fields keep their current value.
type UpdateSettingsRequest struct {
	MasteryThreshold *int `json:"mastery_threshold,omitempty"  validate:"omitempty,gte=1,lte=10"`
	WeeklyTargetDays *int `json:"weekly_target_days,omitempty" validate:"omitempty,gte=1,lte=7"`
}
