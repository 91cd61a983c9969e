package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// fakeItemStore serves canned ranked results keyed by category. The empty
// category key holds the relaxed backfill pool.
type fakeItemStore struct {
	pools   map[domain.ItemCategory][]store.RankedItem
	queries []store.EligibleItemQuery
}

func (f *fakeItemStore) Create(ctx context.Context, item *domain.KnowledgeItem) error { return nil }
func (f *fakeItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeItem, error) {
	return nil, store.ErrItemNotFound
}
func (f *fakeItemStore) Update(ctx context.Context, item *domain.KnowledgeItem) error { return nil }
func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) error               { return nil }
func (f *fakeItemStore) WithTx(tx *sql.Tx) store.ItemStore                            { return f }

func (f *fakeItemStore) FindEligible(ctx context.Context, q store.EligibleItemQuery) ([]store.RankedItem, error) {
	f.queries = append(f.queries, q)
	pool := f.pools[q.Category]
	if len(pool) > q.Limit {
		pool = pool[:q.Limit]
	}
	return pool, nil
}

func rankedItems(t *testing.T, category domain.ItemCategory, prompts ...string) []store.RankedItem {
	t.Helper()
	out := make([]store.RankedItem, 0, len(prompts))
	for _, p := range prompts {
		item, err := domain.NewKnowledgeItem(uuid.New(), "u1", category, p, "ans "+p, domain.DifficultyWrite)
		require.NoError(t, err)
		out = append(out, store.RankedItem{Item: *item})
	}
	return out
}

func TestSplitCounts(t *testing.T) {
	t.Parallel()

	t.Run("sums to exactly total", func(t *testing.T) {
		t.Parallel()
		mix := map[domain.ItemCategory]int{
			domain.CategoryWord:     15,
			domain.CategoryPhrase:   8,
			domain.CategorySentence: 6,
		}
		counts := splitCounts(20, mix)

		sum := 0
		for _, n := range counts {
			sum += n
		}
		assert.Equal(t, 20, sum)
		assert.Equal(t, 11, counts[domain.CategoryWord])
		assert.Equal(t, 5, counts[domain.CategoryPhrase])
		assert.Equal(t, 4, counts[domain.CategorySentence])
		assert.Zero(t, counts[domain.CategoryGrammar])
	})

	t.Run("remainder never lands on zero-weight categories", func(t *testing.T) {
		t.Parallel()
		mix := map[domain.ItemCategory]int{
			domain.CategoryWord:   1,
			domain.CategoryPhrase: 1,
		}
		counts := splitCounts(7, mix)
		assert.Equal(t, 7, counts[domain.CategoryWord]+counts[domain.CategoryPhrase])
		assert.Zero(t, counts[domain.CategorySentence])
		assert.Zero(t, counts[domain.CategoryGrammar])
	})

	t.Run("empty mix yields nothing", func(t *testing.T) {
		t.Parallel()
		counts := splitCounts(10, nil)
		assert.Empty(t, counts)
	})
}

func TestSelectItems(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	collectionID := uuid.New()

	t.Run("fills per-category counts", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{
			domain.CategoryWord:   rankedItems(t, domain.CategoryWord, "w1", "w2", "w3", "w4"),
			domain.CategoryPhrase: rankedItems(t, domain.CategoryPhrase, "p1", "p2"),
		}}
		params := domain.GenerationParams{
			TotalCount: 4,
			MixRatio: map[domain.ItemCategory]int{
				domain.CategoryWord:   1,
				domain.CategoryPhrase: 1,
			},
		}

		selected, err := selectItems(context.Background(), items, studentID, params, collectionID)
		require.NoError(t, err)
		require.Len(t, selected, 4)

		// Words come first in the worksheet order.
		assert.Equal(t, domain.CategoryWord, selected[0].Category)
		assert.Equal(t, domain.CategoryPhrase, selected[3].Category)
	})

	t.Run("duplicate prompts are skipped", func(t *testing.T) {
		t.Parallel()
		pool := rankedItems(t, domain.CategoryWord, "same", "other")
		dup := rankedItems(t, domain.CategoryWord, "same")
		items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{
			domain.CategoryWord: {pool[0], dup[0], pool[1]},
		}}
		params := domain.GenerationParams{
			TotalCount: 2,
			MixRatio:   map[domain.ItemCategory]int{domain.CategoryWord: 1},
		}

		selected, err := selectItems(context.Background(), items, studentID, params, collectionID)
		require.NoError(t, err)
		require.Len(t, selected, 2)
		assert.NotEqual(t, selected[0].Prompt, selected[1].Prompt)
	})

	t.Run("backfill tops up a short category", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{
			domain.CategoryWord: rankedItems(t, domain.CategoryWord, "w1"),
			// The relaxed pool, served for the zero-category query.
			"": rankedItems(t, domain.CategorySentence, "s1", "s2", "s3"),
		}}
		params := domain.GenerationParams{
			TotalCount: 3,
			MixRatio:   map[domain.ItemCategory]int{domain.CategoryWord: 1},
		}

		selected, err := selectItems(context.Background(), items, studentID, params, collectionID)
		require.NoError(t, err)
		require.Len(t, selected, 3)

		// Last query must have been the relaxed any-category pass.
		relaxed := items.queries[len(items.queries)-1]
		assert.Empty(t, string(relaxed.Category))
		assert.Equal(t, params.TotalCount*relaxedOverfetch, relaxed.Limit)
	})

	t.Run("short pool yields a shorter worksheet", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{
			domain.CategoryWord: rankedItems(t, domain.CategoryWord, "w1", "w2"),
		}}
		params := domain.GenerationParams{
			TotalCount: 5,
			MixRatio:   map[domain.ItemCategory]int{domain.CategoryWord: 1},
		}

		selected, err := selectItems(context.Background(), items, studentID, params, collectionID)
		require.NoError(t, err)
		assert.Len(t, selected, 2)
	})

	t.Run("empty pool returns sentinel", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{}}
		params := domain.GenerationParams{
			TotalCount: 5,
			MixRatio:   map[domain.ItemCategory]int{domain.CategoryWord: 1},
		}

		_, err := selectItems(context.Background(), items, studentID, params, collectionID)
		assert.ErrorIs(t, err, ErrInsufficientItems)
	})
}

// recordingSessionStore fails the test if any write reaches it.
type recordingSessionStore struct {
	store.SessionStore
	created int
}

func (r *recordingSessionStore) Create(ctx context.Context, s *domain.PracticeSession) error {
	r.created++
	return nil
}
func (r *recordingSessionStore) WithTx(tx *sql.Tx) store.SessionStore { return r }

type fakeStudentStore struct{ student *domain.Student }

func (f *fakeStudentStore) Create(ctx context.Context, s *domain.Student) error { return nil }
func (f *fakeStudentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, store.ErrStudentNotFound
	}
	return f.student, nil
}
func (f *fakeStudentStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeStudentStore) WithTx(tx *sql.Tx) store.StudentStore           { return f }

func TestGenerateSessionPersistsNothingOnEmptyPool(t *testing.T) {
	t.Parallel()

	student, err := domain.NewStudent("Mia", 3)
	require.NoError(t, err)

	items := &fakeItemStore{pools: map[domain.ItemCategory][]store.RankedItem{}}
	sessions := &recordingSessionStore{}
	svc, err := NewPracticeService(&sql.DB{}, items, sessions, &fakeStudentStore{student: student}, nil)
	require.NoError(t, err)

	_, err = svc.GenerateSession(context.Background(), GenerateSessionRequest{
		StudentID:    student.ID,
		CollectionID: uuid.New(),
		TotalCount:   10,
		MixRatio:     map[domain.ItemCategory]int{domain.CategoryWord: 1},
	})
	require.ErrorIs(t, err, ErrInsufficientItems)
	assert.Zero(t, sessions.created, "no session should be persisted when the pool is empty")
}

func TestGenerateSessionValidation(t *testing.T) {
	t.Parallel()

	svc, err := NewPracticeService(&sql.DB{}, &fakeItemStore{}, &recordingSessionStore{}, &fakeStudentStore{}, nil)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  GenerateSessionRequest
	}{
		{"missing student", GenerateSessionRequest{TotalCount: 5, MixRatio: map[domain.ItemCategory]int{domain.CategoryWord: 1}}},
		{"zero count", GenerateSessionRequest{StudentID: uuid.New(), MixRatio: map[domain.ItemCategory]int{domain.CategoryWord: 1}}},
		{"empty mix", GenerateSessionRequest{StudentID: uuid.New(), TotalCount: 5}},
		{"negative weight", GenerateSessionRequest{StudentID: uuid.New(), TotalCount: 5, MixRatio: map[domain.ItemCategory]int{domain.CategoryWord: -1}}},
		{"unknown category", GenerateSessionRequest{StudentID: uuid.New(), TotalCount: 5, MixRatio: map[domain.ItemCategory]int{"poem": 1}}},
	}
	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("%d_%s", i, tc.name), func(t *testing.T) {
			t.Parallel()
			_, err := svc.GenerateSession(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
