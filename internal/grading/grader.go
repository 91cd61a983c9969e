package grading

import (
	"context"

	"github.com/ssl2010/englishlearn-api/internal/domain"
)

// Provider identifies which source produced a proposed grading.
type Provider string

// Known grading providers.
const (
	// ProviderVision is the vision-capable language model path.
	ProviderVision Provider = "vision"

	// ProviderInkMark is the computer-vision ink-color heuristic.
	ProviderInkMark Provider = "inkmark"

	// ProviderManual is a parent-entered transcription.
	ProviderManual Provider = "manual"
)

// Mark is the three-value correctness verdict a provider can assign.
type Mark string

// Possible mark values.
const (
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
	MarkUnknown   Mark = "unknown"
)

// ValidMark reports whether m is one of the three allowed values.
func ValidMark(m Mark) bool {
	switch m {
	case MarkCorrect, MarkIncorrect, MarkUnknown:
		return true
	}
	return false
}

// ProposedMark is a provider's unconfirmed verdict for one worksheet
// position.
type ProposedMark struct {
	// Position is the 1-based worksheet position the mark applies to.
	Position int `json:"position"`

	// Mark is the provider's verdict, MarkUnknown when it could not tell.
	Mark Mark `json:"mark"`

	// Confidence is the provider's self-reported certainty in [0,1].
	Confidence float64 `json:"confidence"`

	// StudentText is the transcribed student answer, when legible.
	StudentText string `json:"student_text,omitempty"`

	// Note carries any free-form remark from the provider.
	Note string `json:"note,omitempty"`
}

// ProposedGrading is the provider-tagged output of a grading attempt. It is
// a proposal only: correctness is not committed to mastery statistics until
// a human confirms it.
type ProposedGrading struct {
	Provider Provider       `json:"provider"`
	Marks    []ProposedMark `json:"marks"`
}

// Grader defines the interface for grading a photographed, manually-marked
// worksheet. This interface is the boundary between the application core and
// the external vision provider.
type Grader interface {
	// GradeMarkedPhoto inspects the photographed page(s) and proposes a
	// verdict for every expected exercise item.
	//
	// The returned errors distinguish the failure categories the caller
	// must branch on: ErrProviderUnavailable means credentials are missing
	// or the transport failed (the caller falls back to the heuristic
	// detector); ErrUngradeableResponse means the provider answered but no
	// JSON shape could be recovered.
	GradeMarkedPhoto(
		ctx context.Context,
		photos [][]byte,
		items []domain.ExerciseItem,
	) (*ProposedGrading, error)
}
