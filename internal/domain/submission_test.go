package domain

import (
	"testing"

	"github.com/google/uuid"
)

func snapshotItem(t *testing.T, answer string) ExerciseItem {
	t.Helper()
	return ExerciseItem{
		ID:               uuid.New(),
		SessionID:        uuid.New(),
		ItemID:           uuid.New(),
		Position:         1,
		Category:         CategoryWord,
		Prompt:           "prompt",
		Answer:           answer,
		AnswerNormalized: NormalizeAnswer(answer),
	}
}

func TestNewSubmissionValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewSubmission(uuid.Nil, SourceManual); err != ErrSubmissionSessionIDEmpty {
		t.Errorf("Expected ErrSubmissionSessionIDEmpty, got %v", err)
	}
	if _, err := NewSubmission(uuid.New(), SubmissionSource("fax")); err != ErrSubmissionSourceInvalid {
		t.Errorf("Expected ErrSubmissionSourceInvalid, got %v", err)
	}

	sub, err := NewSubmission(uuid.New(), SourceMarkedPhoto)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if sub.ID == uuid.Nil {
		t.Error("Expected non-nil submission ID")
	}
}

func TestNewPracticeResult(t *testing.T) {
	t.Parallel()

	item := snapshotItem(t, "Hello World")
	subID := uuid.New()

	cases := []struct {
		name        string
		raw         string
		wantCorrect bool
		wantType    ErrorType
	}{
		{"exact after normalization", "  hello,  WORLD! ", true, ErrorTypeNone},
		{"blank", "   ", false, ErrorTypeBlank},
		{"partial", "hello moon", false, ErrorTypeMisspelled},
		{"wrong", "goodbye moon", false, ErrorTypeWrong},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := NewPracticeResult(subID, item, tc.raw)
			if res.IsCorrect != tc.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tc.wantCorrect)
			}
			if res.ErrorType != tc.wantType {
				t.Errorf("ErrorType = %q, want %q", res.ErrorType, tc.wantType)
			}
			if res.Position != item.Position || res.ExerciseItemID != item.ID {
				t.Error("result not linked to the exercise snapshot")
			}
		})
	}
}

func TestNewConfirmedResult(t *testing.T) {
	t.Parallel()

	item := snapshotItem(t, "hello world")
	subID := uuid.New()

	t.Run("correct verdict", func(t *testing.T) {
		t.Parallel()
		res := NewConfirmedResult(subID, item, "hello world", true)
		if !res.IsCorrect || res.ErrorType != ErrorTypeNone {
			t.Errorf("got IsCorrect=%v ErrorType=%q, want correct/none", res.IsCorrect, res.ErrorType)
		}
	})

	t.Run("incorrect with blank text", func(t *testing.T) {
		t.Parallel()
		res := NewConfirmedResult(subID, item, "", false)
		if res.IsCorrect || res.ErrorType != ErrorTypeBlank {
			t.Errorf("got IsCorrect=%v ErrorType=%q, want incorrect/blank", res.IsCorrect, res.ErrorType)
		}
	})

	t.Run("incorrect with partial text", func(t *testing.T) {
		t.Parallel()
		res := NewConfirmedResult(subID, item, "hello moon", false)
		if res.ErrorType != ErrorTypeMisspelled {
			t.Errorf("ErrorType = %q, want misspelled", res.ErrorType)
		}
	})

	t.Run("human overrules exact match", func(t *testing.T) {
		t.Parallel()
		// Text matches the expected answer but the confirmer said wrong,
		// for example because the photo showed a different word than the
		// transcription.
		res := NewConfirmedResult(subID, item, "hello world", false)
		if res.IsCorrect {
			t.Error("human verdict must win over the exact match")
		}
		if res.ErrorType != ErrorTypeWrong {
			t.Errorf("ErrorType = %q, want wrong", res.ErrorType)
		}
	})
}
