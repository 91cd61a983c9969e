package mastery

import (
	"errors"
	"time"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// Common errors
var (
	ErrNilStats = errors.New("student item stat cannot be nil")
)

// Service defines the interface for mastery tracking operations.
type Service interface {
	// RecordAttempt computes new stats for a graded attempt. It returns a
	// new instance rather than mutating the input.
	RecordAttempt(
		stat *domain.StudentItemStat,
		isCorrect bool,
		now time.Time,
	) (*domain.StudentItemStat, error)

	// IsMastered reports whether the stat meets the configured
	// consecutive-correct threshold. This is a derived property, not
	// stored state.
	IsMastered(stat *domain.StudentItemStat) bool
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a mastery service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a mastery service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

// RecordAttempt implements the Service interface.
//
// On a correct attempt the total and correct counters increment, the
// consecutive-correct streak grows, and the consecutive-wrong streak resets
// to zero. On an incorrect attempt the mirror image applies. Exactly one of
// the two streaks is non-zero afterwards, which is the stat invariant the
// item selector's ranking depends on.
func (s *defaultService) RecordAttempt(
	stat *domain.StudentItemStat,
	isCorrect bool,
	now time.Time,
) (*domain.StudentItemStat, error) {
	if stat == nil {
		return nil, ErrNilStats
	}

	newStat := &domain.StudentItemStat{
		StudentID:          stat.StudentID,
		ItemID:             stat.ItemID,
		TotalAttempts:      stat.TotalAttempts + 1,
		CorrectAttempts:    stat.CorrectAttempts,
		WrongAttempts:      stat.WrongAttempts,
		ConsecutiveCorrect: stat.ConsecutiveCorrect,
		ConsecutiveWrong:   stat.ConsecutiveWrong,
		LastAttemptAt:      now,
		CreatedAt:          stat.CreatedAt,
		UpdatedAt:          now,
	}

	if isCorrect {
		newStat.CorrectAttempts++
		newStat.ConsecutiveCorrect++
		newStat.ConsecutiveWrong = 0
	} else {
		newStat.WrongAttempts++
		newStat.ConsecutiveWrong++
		newStat.ConsecutiveCorrect = 0
	}

	return newStat, nil
}

// IsMastered implements the Service interface.
func (s *defaultService) IsMastered(stat *domain.StudentItemStat) bool {
	if stat == nil {
		return false
	}
	return stat.ConsecutiveCorrect >= s.params.MasteryThreshold
}
