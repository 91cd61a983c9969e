package domain

import (
	"strings"
	"unicode"
)

// apostropheVariants maps the curly and backtick apostrophe characters that
// show up in imported material and in transcribed answers to the single
// straight apostrophe used by the canonical form.
var apostropheVariants = strings.NewReplacer(
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"`", "'",
)

// NormalizeAnswer canonicalizes free text for exact-match comparison.
// It is the sole arbiter of correctness for manually transcribed answers,
// so it must stay rule-based and reproducible: grading audits depend on
// byte-identical output across runs.
//
// Rules, applied in order:
//  1. Trim surrounding whitespace.
//  2. Unify apostrophe variants to a single straight apostrophe.
//  3. Lowercase.
//  4. Strip all punctuation except the apostrophe.
//  5. Collapse interior whitespace runs to a single space.
//
// Empty input yields the empty string. The function is idempotent:
// NormalizeAnswer(NormalizeAnswer(x)) == NormalizeAnswer(x) for all x.
func NormalizeAnswer(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = apostropheVariants.Replace(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case r == '\'':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// Dropped: punctuation carries no grading signal.
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// ErrorType classifies how a graded answer differed from the expected one.
type ErrorType string

// Possible error classifications for a practice result.
const (
	ErrorTypeNone       ErrorType = "none"       // answer was correct
	ErrorTypeBlank      ErrorType = "blank"      // nothing was written
	ErrorTypeMisspelled ErrorType = "misspelled" // most of the answer matches
	ErrorTypeWrong      ErrorType = "wrong"      // a different answer entirely
)

// ClassifyError derives the error type for a normalized expected/actual pair.
// Both arguments must already be normalized with NormalizeAnswer.
func ClassifyError(expected, actual string) ErrorType {
	if actual == expected {
		return ErrorTypeNone
	}
	if actual == "" {
		return ErrorTypeBlank
	}

	expTokens := strings.Fields(expected)
	actTokens := strings.Fields(actual)
	if len(expTokens) == 0 {
		return ErrorTypeWrong
	}

	shared := 0
	seen := make(map[string]int, len(expTokens))
	for _, tok := range expTokens {
		seen[tok]++
	}
	for _, tok := range actTokens {
		if seen[tok] > 0 {
			seen[tok]--
			shared++
		}
	}

	// More than half the expected tokens present reads as a spelling or
	// word-order slip rather than a wrong answer.
	if shared*2 > len(expTokens) {
		return ErrorTypeMisspelled
	}
	return ErrorTypeWrong
}
