package domain

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims and lowercases", "  Hello World  ", "hello world"},
		{"collapses inner whitespace", "a \t b\n c", "a b c"},
		{"keeps apostrophes", " Cat's!  toy ", "cat's toy"},
		{"unifies curly apostrophes", "don’t", "don't"},
		{"unifies backtick apostrophe", "don`t", "don't"},
		{"strips punctuation", "Hello, world!?", "hello world"},
		{"empty input", "", ""},
		{"whitespace only", "   \t ", ""},
		{"punctuation only", "!?.,", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeAnswer(tc.in)
			if got != tc.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeAnswerIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"  Hello,  World! ", "don’t STOP", "a    b", "Cat's toy"}
	for _, in := range inputs {
		once := NormalizeAnswer(in)
		twice := NormalizeAnswer(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		expected string
		actual   string
		want     ErrorType
	}{
		{"exact match", "hello world", "hello world", ErrorTypeNone},
		{"blank answer", "hello world", "", ErrorTypeBlank},
		{"partial overlap is misspelled", "the quick brown fox", "the quick brown dog", ErrorTypeMisspelled},
		{"no overlap is wrong", "hello world", "goodbye moon", ErrorTypeWrong},
		{"single word typo is wrong", "banana", "bananna", ErrorTypeWrong},
		{"single word match", "banana", "banana", ErrorTypeNone},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyError(tc.expected, tc.actual)
			if got != tc.want {
				t.Errorf("ClassifyError(%q, %q) = %q, want %q", tc.expected, tc.actual, got, tc.want)
			}
		})
	}
}
