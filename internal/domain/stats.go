package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stats-specific validation errors.
var (
	// ErrEmptyStatStudentID is returned when a stat's student ID is empty or nil.
	ErrEmptyStatStudentID = errors.New("student item stat student ID cannot be empty")

	// ErrEmptyStatItemID is returned when a stat's item ID is empty or nil.
	ErrEmptyStatItemID = errors.New("student item stat item ID cannot be empty")

	// ErrStatStreakConflict is returned when both consecutive streak counters
	// are non-zero, which violates the stat invariant.
	ErrStatStreakConflict = errors.New("consecutive correct and wrong streaks cannot both be non-zero")
)

// StudentItemStat tracks a student's rolling performance for one knowledge
// item. Exactly one of ConsecutiveCorrect/ConsecutiveWrong is non-zero at
// any time: each attempt resets the other streak to zero. Rows are created
// lazily on the first attempt and are only removed when the student is
// cascade-deleted.
type StudentItemStat struct {
	StudentID          uuid.UUID `json:"student_id"`
	ItemID             uuid.UUID `json:"item_id"`
	TotalAttempts      int       `json:"total_attempts"`
	CorrectAttempts    int       `json:"correct_attempts"`
	WrongAttempts      int       `json:"wrong_attempts"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	ConsecutiveWrong   int       `json:"consecutive_wrong"`
	LastAttemptAt      time.Time `json:"last_attempt_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewStudentItemStat creates a fresh all-zero stat row for a student/item pair.
func NewStudentItemStat(studentID, itemID uuid.UUID) (*StudentItemStat, error) {
	now := time.Now().UTC()
	stat := &StudentItemStat{
		StudentID: studentID,
		ItemID:    itemID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := stat.Validate(); err != nil {
		return nil, err
	}
	return stat, nil
}

// Validate checks if the StudentItemStat has valid data.
func (s *StudentItemStat) Validate() error {
	if s.StudentID == uuid.Nil {
		return ErrEmptyStatStudentID
	}
	if s.ItemID == uuid.Nil {
		return ErrEmptyStatItemID
	}
	if s.ConsecutiveCorrect > 0 && s.ConsecutiveWrong > 0 {
		return ErrStatStreakConflict
	}
	return nil
}

// Note: the stat is mutated only through mastery.Service.RecordAttempt,
// which returns a new instance rather than modifying the receiver.
