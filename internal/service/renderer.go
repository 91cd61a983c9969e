package service

import (
	"bytes"
	"fmt"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// WorksheetRenderer turns a session into a printable document. The layout
// the renderer produces must agree with the page geometry the ink-mark
// detector assumes, so the two are configured from the same layout version.
type WorksheetRenderer interface {
	// Render produces the document bytes and their MIME content type.
	// With includeAnswers set it renders the answer key for the parent
	// instead of the blank worksheet for the student.
	Render(session *domain.PracticeSession, includeAnswers bool) ([]byte, string, error)
}

// TextRenderer renders a worksheet as plain text: one numbered prompt per
// line with a ruled blank for the answer. It exists for printer-less
// testing and as the fallback when no richer renderer is wired.
type TextRenderer struct{}

// Interface conformance check.
var _ WorksheetRenderer = (*TextRenderer)(nil)

// Render implements WorksheetRenderer.
func (r *TextRenderer) Render(session *domain.PracticeSession, includeAnswers bool) ([]byte, string, error) {
	if session == nil || len(session.Items) == 0 {
		return nil, "", fmt.Errorf("%w: session has no items to render", ErrInvalidParams)
	}

	var buf bytes.Buffer
	if session.Title != "" {
		fmt.Fprintf(&buf, "%s\n\n", session.Title)
	}
	for _, item := range session.Items {
		if includeAnswers {
			fmt.Fprintf(&buf, "%2d. [%s] %s\n    %s\n\n",
				item.Position, item.Category, item.Prompt, item.Answer)
			continue
		}
		fmt.Fprintf(&buf, "%2d. [%s] %s\n    ________________________\n\n",
			item.Position, item.Category, item.Prompt)
	}
	return buf.Bytes(), "text/plain; charset=utf-8", nil
}
