package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	items := []domain.ExerciseItem{
		{Position: 1, Category: domain.CategoryWord, Prompt: "苹果", Answer: "apple"},
		{Position: 2, Category: domain.CategorySentence, Prompt: "我喜欢读书。", Answer: "I like reading."},
	}

	prompt, err := buildPrompt(items)
	require.NoError(t, err)

	assert.Contains(t, prompt, "2 numbered answers")
	assert.Contains(t, prompt, "1. [word] 苹果 (expected answer: apple)")
	assert.Contains(t, prompt, "2. [sentence] 我喜欢读书。 (expected answer: I like reading.)")
}

func TestBuildPromptCapsLongAnswers(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("very ", 30) + "long answer"
	items := []domain.ExerciseItem{
		{Position: 1, Category: domain.CategorySentence, Prompt: "p", Answer: long},
	}

	prompt, err := buildPrompt(items)
	require.NoError(t, err)

	assert.NotContains(t, prompt, long)
	assert.Contains(t, prompt, truncateRunes(long, promptAnswerRunes))
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	// Multi-byte runes are never split.
	assert.Equal(t, "苹果", truncateRunes("苹果汁", 2))
}
