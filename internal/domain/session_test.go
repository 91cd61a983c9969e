package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testItems(t *testing.T, n int) []*KnowledgeItem {
	t.Helper()
	collectionID := uuid.New()
	items := make([]*KnowledgeItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := NewKnowledgeItem(
			collectionID,
			"unit-1",
			CategoryWord,
			"prompt-"+string(rune('a'+i)),
			"answer-"+string(rune('a'+i)),
			DifficultyWrite,
		)
		if err != nil {
			t.Fatalf("building item %d: %v", i, err)
		}
		items = append(items, item)
	}
	return items
}

func TestNewPracticeSession(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	items := testItems(t, 3)

	session, err := NewPracticeSession(studentID, items[0].CollectionID, "Week 12", GenerationParams{TotalCount: 3}, items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.Status != SessionStatusDraft {
		t.Errorf("Expected status %q, got %q", SessionStatusDraft, session.Status)
	}
	if len(session.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(session.Items))
	}
	for i, it := range session.Items {
		if it.Position != i+1 {
			t.Errorf("item %d: expected position %d, got %d", i, i+1, it.Position)
		}
		if it.SessionID != session.ID {
			t.Errorf("item %d: session ID not propagated", i)
		}
		if it.AnswerNormalized == "" {
			t.Errorf("item %d: normalized answer missing from snapshot", i)
		}
	}

	// Snapshot independence: editing the source item must not change the session.
	if err := items[0].UpdateAnswer("something else"); err != nil {
		t.Fatalf("updating item: %v", err)
	}
	if session.Items[0].Answer == "something else" {
		t.Error("exercise item snapshot mutated by source item edit")
	}
}

func TestNewPracticeSessionValidation(t *testing.T) {
	t.Parallel()

	items := testItems(t, 1)

	if _, err := NewPracticeSession(uuid.Nil, uuid.New(), "", GenerationParams{}, items); !errors.Is(err, ErrSessionStudentIDEmpty) {
		t.Errorf("Expected ErrSessionStudentIDEmpty, got %v", err)
	}
	if _, err := NewPracticeSession(uuid.New(), uuid.New(), "", GenerationParams{}, nil); !errors.Is(err, ErrSessionNoItems) {
		t.Errorf("Expected ErrSessionNoItems, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	newSession := func(t *testing.T) *PracticeSession {
		items := testItems(t, 2)
		s, err := NewPracticeSession(uuid.New(), items[0].CollectionID, "", GenerationParams{}, items)
		if err != nil {
			t.Fatalf("building session: %v", err)
		}
		return s
	}
	now := time.Now().UTC()

	t.Run("full forward path", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		if err := s.Publish(now); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		if err := s.Complete(now); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if err := s.MarkCorrected(now); err != nil {
			t.Fatalf("MarkCorrected: %v", err)
		}
		if err := s.Archive(now); err != nil {
			t.Fatalf("Archive: %v", err)
		}
		if s.PublishedAt == nil || s.CompletedAt == nil || s.CorrectedAt == nil || s.ArchivedAt == nil {
			t.Error("transition timestamps not all recorded")
		}
	})

	t.Run("states may be skipped", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		if err := s.Complete(now); err != nil {
			t.Fatalf("Complete from draft: %v", err)
		}
		if s.PublishedAt != nil {
			t.Error("skipped state recorded a timestamp")
		}
	})

	t.Run("no backward transitions", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		if err := s.Complete(now); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if err := s.Publish(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("corrected is re-enterable", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		if err := s.MarkCorrected(now); err != nil {
			t.Fatalf("first MarkCorrected: %v", err)
		}
		later := now.Add(time.Hour)
		if err := s.MarkCorrected(later); err != nil {
			t.Fatalf("second MarkCorrected: %v", err)
		}
		if !s.CorrectedAt.Equal(later) {
			t.Errorf("Expected CorrectedAt %v, got %v", later, *s.CorrectedAt)
		}
	})

	t.Run("archived blocks correction", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		if err := s.Archive(now); err != nil {
			t.Fatalf("Archive: %v", err)
		}
		if err := s.MarkCorrected(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestSessionItemAt(t *testing.T) {
	t.Parallel()

	items := testItems(t, 3)
	s, err := NewPracticeSession(uuid.New(), items[0].CollectionID, "", GenerationParams{}, items)
	if err != nil {
		t.Fatalf("building session: %v", err)
	}

	if it := s.ItemAt(2); it == nil || it.Position != 2 {
		t.Errorf("ItemAt(2) = %+v, want item at position 2", it)
	}
	if it := s.ItemAt(99); it != nil {
		t.Errorf("ItemAt(99) = %+v, want nil", it)
	}
	if it := s.ItemAt(0); it != nil {
		t.Errorf("ItemAt(0) = %+v, want nil", it)
	}
}
