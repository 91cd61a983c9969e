package mastery

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

func TestRecordAttemptSequence(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Now().UTC()

	stat, err := domain.NewStudentItemStat(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("building stat: %v", err)
	}

	// correct, correct, wrong, correct
	for i, isCorrect := range []bool{true, true, false, true} {
		stat, err = svc.RecordAttempt(stat, isCorrect, now.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	if stat.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", stat.TotalAttempts)
	}
	if stat.CorrectAttempts != 3 {
		t.Errorf("CorrectAttempts = %d, want 3", stat.CorrectAttempts)
	}
	if stat.WrongAttempts != 1 {
		t.Errorf("WrongAttempts = %d, want 1", stat.WrongAttempts)
	}
	if stat.ConsecutiveCorrect != 1 {
		t.Errorf("ConsecutiveCorrect = %d, want 1", stat.ConsecutiveCorrect)
	}
	if stat.ConsecutiveWrong != 0 {
		t.Errorf("ConsecutiveWrong = %d, want 0", stat.ConsecutiveWrong)
	}
}

func TestRecordAttemptStreakInvariant(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Now().UTC()

	stat, err := domain.NewStudentItemStat(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("building stat: %v", err)
	}

	for i, isCorrect := range []bool{true, false, false, true, false, true, true} {
		stat, err = svc.RecordAttempt(stat, isCorrect, now)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if stat.ConsecutiveCorrect != 0 && stat.ConsecutiveWrong != 0 {
			t.Fatalf("attempt %d: both streaks non-zero (%d, %d)",
				i, stat.ConsecutiveCorrect, stat.ConsecutiveWrong)
		}
	}
}

func TestRecordAttemptReturnsNewInstance(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	stat, err := domain.NewStudentItemStat(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("building stat: %v", err)
	}

	updated, err := svc.RecordAttempt(stat, true, time.Now().UTC())
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if updated == stat {
		t.Error("RecordAttempt returned the input instance")
	}
	if stat.TotalAttempts != 0 {
		t.Errorf("input stat mutated: TotalAttempts = %d", stat.TotalAttempts)
	}
}

func TestRecordAttemptNilStat(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	if _, err := svc.RecordAttempt(nil, true, time.Now().UTC()); err != ErrNilStats {
		t.Errorf("Expected ErrNilStats, got %v", err)
	}
}

func TestIsMastered(t *testing.T) {
	t.Parallel()

	svc := NewServiceWithParams(&Params{MasteryThreshold: 3, WeeklyTargetDays: 5})
	stat, err := domain.NewStudentItemStat(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("building stat: %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if svc.IsMastered(stat) {
			t.Fatalf("mastered after %d correct attempts, threshold is 3", i)
		}
		stat, err = svc.RecordAttempt(stat, true, now)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if !svc.IsMastered(stat) {
		t.Error("not mastered after reaching the threshold")
	}

	// A wrong attempt resets the streak and the mastered property with it.
	stat, err = svc.RecordAttempt(stat, false, now)
	if err != nil {
		t.Fatalf("wrong attempt: %v", err)
	}
	if svc.IsMastered(stat) {
		t.Error("still mastered after a wrong attempt reset the streak")
	}

	if svc.IsMastered(nil) {
		t.Error("nil stat reported as mastered")
	}
}
