package gemini

import (
	"strings"

	"github.com/ssl2010/englishlearn-api/internal/grading"
)

// Caps on free-text fields coming back from the model. Anything longer is
// truncated rather than rejected.
const (
	maxStudentTextLen = 200
	maxNoteLen        = 500
)

// adaptResponse flattens whichever shape the recovered schema carries into
// a single entry list, then normalizes each entry into a proposed mark.
// Entries without a usable position are assigned sequential positions
// starting after the highest explicit one.
func adaptResponse(schema *responseSchema) []grading.ProposedMark {
	entries := schema.entries()

	if len(entries) == 0 && len(schema.Sections) > 0 {
		for _, section := range schema.Sections {
			entries = append(entries, section.Items...)
			for _, se := range section.Entries {
				entries = append(entries, responseEntry{
					Position:    se.P,
					Mark:        se.M,
					Confidence:  se.C,
					StudentText: se.T,
					Note:        se.N,
				})
			}
		}
	}

	if len(entries) == 0 {
		entries = append(entries, schema.Words...)
		entries = append(entries, schema.Phrases...)
		entries = append(entries, schema.Sentences...)
	}

	marks := make([]grading.ProposedMark, 0, len(entries))
	next := 1
	for _, e := range entries {
		m := normalizeEntry(e, next)
		if m.Position >= next {
			next = m.Position + 1
		}
		marks = append(marks, m)
	}
	return marks
}

// normalizeEntry coerces one raw entry into a well-formed proposed mark.
// fallbackPos is used when the entry carries no position of its own.
func normalizeEntry(e responseEntry, fallbackPos int) grading.ProposedMark {
	pos := int(e.Position)
	if pos <= 0 {
		pos = int(e.Index)
	}
	if pos <= 0 {
		pos = int(e.No)
	}
	if pos <= 0 {
		pos = fallbackPos
	}

	conf := e.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	text := e.StudentText
	if text == "" {
		text = e.Answer
	}
	if text == "" {
		text = e.Text
	}
	note := e.Note
	if note == "" {
		note = e.Comment
	}

	return grading.ProposedMark{
		Position:    pos,
		Mark:        normalizeMark(e),
		Confidence:  conf,
		StudentText: truncate(text, maxStudentTextLen),
		Note:        truncate(note, maxNoteLen),
	}
}

// normalizeMark maps the entry's verdict fields onto the mark enum.
// Unrecognized values become unknown, never a guess in either direction.
func normalizeMark(e responseEntry) grading.Mark {
	raw := e.Mark
	if raw == "" {
		raw = e.Result
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "correct", "right", "ok", "true", "yes", "✓":
		return grading.MarkCorrect
	case "incorrect", "wrong", "false", "no", "x", "✗":
		return grading.MarkIncorrect
	case "unknown", "unclear", "illegible", "":
		// Fall through to the boolean form below when present.
	default:
		return grading.MarkUnknown
	}
	if e.Correct != nil {
		if *e.Correct {
			return grading.MarkCorrect
		}
		return grading.MarkIncorrect
	}
	return grading.MarkUnknown
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut at a rune boundary.
	for max > 0 && s[max]&0xC0 == 0x80 {
		max--
	}
	return s[:max]
}
