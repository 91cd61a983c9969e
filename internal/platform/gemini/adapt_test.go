package gemini

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl2010/englishlearn-api/internal/grading"
)

func mustSchema(t *testing.T, raw string) *responseSchema {
	t.Helper()
	var schema responseSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))
	return &schema
}

func TestAdaptResponseAlternateKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{name: "questions", raw: `{"questions":[{"position":1,"mark":"correct"}]}`},
		{name: "results", raw: `{"results":[{"position":1,"mark":"correct"}]}`},
		{name: "answers", raw: `{"answers":[{"position":1,"mark":"correct"}]}`},
		{name: "data", raw: `{"data":[{"position":1,"mark":"correct"}]}`},
		{name: "nested result", raw: `{"result":{"items":[{"position":1,"mark":"correct"}]}}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			marks := adaptResponse(mustSchema(t, tc.raw))
			require.Len(t, marks, 1)
			assert.Equal(t, 1, marks[0].Position)
			assert.Equal(t, grading.MarkCorrect, marks[0].Mark)
		})
	}
}

func TestAdaptResponseSections(t *testing.T) {
	t.Parallel()

	raw := `{"sections":[
		{"category":"word","items":[{"position":1,"mark":"correct"}]},
		{"category":"phrase","entries":[{"p":2,"m":"incorrect","c":0.8,"t":"their","n":"spelling"}]}
	]}`
	marks := adaptResponse(mustSchema(t, raw))
	require.Len(t, marks, 2)

	assert.Equal(t, 1, marks[0].Position)
	assert.Equal(t, grading.MarkCorrect, marks[0].Mark)

	assert.Equal(t, 2, marks[1].Position)
	assert.Equal(t, grading.MarkIncorrect, marks[1].Mark)
	assert.Equal(t, 0.8, marks[1].Confidence)
	assert.Equal(t, "their", marks[1].StudentText)
	assert.Equal(t, "spelling", marks[1].Note)
}

func TestAdaptResponseCategoryArrays(t *testing.T) {
	t.Parallel()

	raw := `{
		"words":[{"position":1,"mark":"correct"}],
		"phrases":[{"position":2,"mark":"incorrect"}],
		"sentences":[{"position":3,"mark":"unknown"}]
	}`
	marks := adaptResponse(mustSchema(t, raw))
	require.Len(t, marks, 3)
	assert.Equal(t, grading.MarkCorrect, marks[0].Mark)
	assert.Equal(t, grading.MarkIncorrect, marks[1].Mark)
	assert.Equal(t, grading.MarkUnknown, marks[2].Mark)
}

func TestAdaptResponseSequentialPositionFallback(t *testing.T) {
	t.Parallel()

	// Second entry has no position of its own; it continues after the
	// highest explicit one.
	raw := `{"items":[
		{"position":3,"mark":"correct"},
		{"mark":"incorrect"}
	]}`
	marks := adaptResponse(mustSchema(t, raw))
	require.Len(t, marks, 2)
	assert.Equal(t, 3, marks[0].Position)
	assert.Equal(t, 4, marks[1].Position)
}

func TestNormalizeEntryPositionSpellings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, normalizeEntry(responseEntry{Position: 5}, 1).Position)
	assert.Equal(t, 6, normalizeEntry(responseEntry{Index: 6}, 1).Position)
	assert.Equal(t, 7, normalizeEntry(responseEntry{No: 7}, 1).Position)
	assert.Equal(t, 9, normalizeEntry(responseEntry{}, 9).Position)
}

func TestNormalizeEntryStringPosition(t *testing.T) {
	t.Parallel()

	marks := adaptResponse(mustSchema(t, `{"items":[{"position":"4","mark":"correct"}]}`))
	require.Len(t, marks, 1)
	assert.Equal(t, 4, marks[0].Position)
}

func TestNormalizeEntryConfidenceClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, normalizeEntry(responseEntry{Confidence: -0.5}, 1).Confidence)
	assert.Equal(t, 1.0, normalizeEntry(responseEntry{Confidence: 1.7}, 1).Confidence)
	assert.Equal(t, 0.42, normalizeEntry(responseEntry{Confidence: 0.42}, 1).Confidence)
}

func TestNormalizeEntryTextAndNoteFallbacks(t *testing.T) {
	t.Parallel()

	m := normalizeEntry(responseEntry{Answer: "cat", Comment: "neat handwriting"}, 1)
	assert.Equal(t, "cat", m.StudentText)
	assert.Equal(t, "neat handwriting", m.Note)

	m = normalizeEntry(responseEntry{StudentText: "dog", Text: "ignored"}, 1)
	assert.Equal(t, "dog", m.StudentText)
}

func TestNormalizeEntryTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", maxStudentTextLen+50)
	m := normalizeEntry(responseEntry{StudentText: long}, 1)
	assert.Len(t, m.StudentText, maxStudentTextLen)

	// Truncation never splits a multi-byte rune.
	multi := strings.Repeat("字", maxNoteLen)
	m = normalizeEntry(responseEntry{Note: multi}, 1)
	assert.True(t, len(m.Note) <= maxNoteLen)
	for _, r := range m.Note {
		assert.NotEqual(t, '�', r)
	}
}

func TestNormalizeMark(t *testing.T) {
	t.Parallel()

	correct := true
	incorrect := false

	cases := []struct {
		name  string
		entry responseEntry
		want  grading.Mark
	}{
		{name: "correct", entry: responseEntry{Mark: "correct"}, want: grading.MarkCorrect},
		{name: "right", entry: responseEntry{Mark: "right"}, want: grading.MarkCorrect},
		{name: "check mark", entry: responseEntry{Mark: "✓"}, want: grading.MarkCorrect},
		{name: "uppercase", entry: responseEntry{Mark: "CORRECT"}, want: grading.MarkCorrect},
		{name: "padded", entry: responseEntry{Mark: " yes "}, want: grading.MarkCorrect},
		{name: "wrong", entry: responseEntry{Mark: "wrong"}, want: grading.MarkIncorrect},
		{name: "x", entry: responseEntry{Mark: "x"}, want: grading.MarkIncorrect},
		{name: "result field", entry: responseEntry{Result: "incorrect"}, want: grading.MarkIncorrect},
		{name: "illegible", entry: responseEntry{Mark: "illegible"}, want: grading.MarkUnknown},
		{name: "gibberish", entry: responseEntry{Mark: "maybe?"}, want: grading.MarkUnknown},
		{name: "empty", entry: responseEntry{}, want: grading.MarkUnknown},
		{name: "bool true", entry: responseEntry{Correct: &correct}, want: grading.MarkCorrect},
		{name: "bool false", entry: responseEntry{Correct: &incorrect}, want: grading.MarkIncorrect},
		{name: "mark beats bool", entry: responseEntry{Mark: "wrong", Correct: &correct}, want: grading.MarkIncorrect},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, normalizeMark(tc.entry))
		})
	}
}

func TestIntValueUnmarshal(t *testing.T) {
	t.Parallel()

	var v struct {
		N intValue `json:"n"`
	}
	for raw, want := range map[string]intValue{
		`{"n":3}`:     3,
		`{"n":"3"}`:   3,
		`{"n":3.0}`:   3,
		`{"n":null}`:  0,
		`{"n":"abc"}`: 0,
	} {
		v.N = -1
		require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
		assert.Equal(t, want, v.N, raw)
	}
}
