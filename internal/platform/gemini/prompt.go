package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// gradingPromptText asks for one verdict per printed item. The contract is
// spelled out twice (shape and rules) because the model honors explicit
// repetition better than a single schema description.
const gradingPromptText = `You are grading a photographed English dictation worksheet that a teacher
has already corrected by hand with a red pen.

The worksheet contains {{len .Items}} numbered answers. For each one, decide
whether the teacher marked it correct or incorrect, and transcribe what the
student wrote if it is legible.

Expected items, by position:
{{range .Items}}{{.Position}}. [{{.Category}}] {{.Prompt}} (expected answer: {{.Answer}})
{{end}}
Respond with ONLY a JSON object, no markdown, in exactly this shape:

{"items": [{"position": 1, "mark": "correct", "confidence": 0.95, "student_text": "...", "note": ""}]}

Rules:
- "mark" must be "correct", "incorrect", or "unknown". Use "unknown" when
  the region is not visible or the teacher's marking is ambiguous.
- "position" matches the printed number on the worksheet.
- "confidence" is between 0 and 1.
- Include every position exactly once.
- Do not add any text before or after the JSON object.`

// gradingPrompt is parsed once at init; a malformed template is a
// programming error, not a runtime condition.
var gradingPrompt = template.Must(template.New("grading").Parse(gradingPromptText))

// promptAnswerRunes caps the expected answer shown per item so one long
// sentence cannot crowd the instruction block.
const promptAnswerRunes = 40

// promptItem is the template's view of an exercise snapshot.
type promptItem struct {
	Position int
	Category domain.ItemCategory
	Prompt   string
	Answer   string
}

// promptData feeds the grading template.
type promptData struct {
	Items []promptItem
}

// buildPrompt renders the grading instruction block for the given
// expected items.
func buildPrompt(items []domain.ExerciseItem) (string, error) {
	view := make([]promptItem, 0, len(items))
	for _, it := range items {
		view = append(view, promptItem{
			Position: it.Position,
			Category: it.Category,
			Prompt:   it.Prompt,
			Answer:   truncateRunes(it.Answer, promptAnswerRunes),
		})
	}

	var buf bytes.Buffer
	if err := gradingPrompt.Execute(&buf, promptData{Items: view}); err != nil {
		return "", fmt.Errorf("executing grading prompt template: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
