package inkmark

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/grading"
)

func exerciseItems(positions ...int) []domain.ExerciseItem {
	items := make([]domain.ExerciseItem, 0, len(positions))
	sessionID := uuid.New()
	for _, pos := range positions {
		items = append(items, domain.ExerciseItem{
			ID:        uuid.New(),
			SessionID: sessionID,
			Position:  pos,
			Category:  domain.CategoryWord,
			Prompt:    "apple",
			Answer:    "apple",
		})
	}
	return items
}

func newTestGrader(layout PageLayout) *Grader {
	return NewGrader(NewDetector(layout, 0.02, nil), layout, nil)
}

func TestGradeMarkedPhotoSinglePage(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	grader := newTestGrader(layout)
	photo := worksheetPhoto(t, layout, 3)

	proposal, err := grader.GradeMarkedPhoto(context.Background(),
		[][]byte{photo}, exerciseItems(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, grading.ProviderInkMark, proposal.Provider)
	require.Len(t, proposal.Marks, 3)

	assert.Equal(t, grading.MarkCorrect, proposal.Marks[0].Mark)
	assert.Equal(t, grading.MarkCorrect, proposal.Marks[1].Mark)
	assert.Equal(t, grading.MarkIncorrect, proposal.Marks[2].Mark)
	assert.Contains(t, proposal.Marks[2].Note, "ink ratio")
}

func TestGradeMarkedPhotoSecondPage(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	grader := newTestGrader(layout)

	// Position 22 sits on page 1 as local position 2.
	blank := worksheetPhoto(t, layout)
	marked := worksheetPhoto(t, layout, 2)

	proposal, err := grader.GradeMarkedPhoto(context.Background(),
		[][]byte{blank, marked}, exerciseItems(1, 22))
	require.NoError(t, err)
	require.Len(t, proposal.Marks, 2)

	assert.Equal(t, 1, proposal.Marks[0].Position)
	assert.Equal(t, grading.MarkCorrect, proposal.Marks[0].Mark)
	assert.Equal(t, 22, proposal.Marks[1].Position)
	assert.Equal(t, grading.MarkIncorrect, proposal.Marks[1].Mark)
}

func TestGradeMarkedPhotoMissingPage(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	grader := newTestGrader(layout)
	photo := worksheetPhoto(t, layout)

	// Only the first page was uploaded; position 25 lands on page 1.
	proposal, err := grader.GradeMarkedPhoto(context.Background(),
		[][]byte{photo}, exerciseItems(1, 25))
	require.NoError(t, err)
	require.Len(t, proposal.Marks, 2)

	assert.Equal(t, grading.MarkCorrect, proposal.Marks[0].Mark)
	assert.Equal(t, grading.MarkUnknown, proposal.Marks[1].Mark)
	assert.Equal(t, "no photo covers this position", proposal.Marks[1].Note)
}

func TestGradeMarkedPhotoNoItems(t *testing.T) {
	t.Parallel()

	grader := newTestGrader(DefaultLayout())
	_, err := grader.GradeMarkedPhoto(context.Background(), [][]byte{{1}}, nil)
	assert.ErrorIs(t, err, grading.ErrNoExpectedItems)
}
