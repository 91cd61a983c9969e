package inkmark

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/grading"
)

// Grader adapts the red-ink detector to the grading provider interface.
// Worksheet pages are assigned to photos in order: photo 0 carries
// positions 1..PerPageCapacity, photo 1 the next capacity-sized block,
// and so on.
type Grader struct {
	detector *Detector
	layout   PageLayout
	logger   *slog.Logger
}

// Interface conformance check.
var _ grading.Grader = (*Grader)(nil)

// NewGrader creates a heuristic grader backed by the given detector.
func NewGrader(detector *Detector, layout PageLayout, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{
		detector: detector,
		layout:   layout,
		logger:   logger.With(slog.String("component", "inkmark_grader")),
	}
}

// GradeMarkedPhoto runs red-ink detection over each page and returns one
// proposed mark per expected item. Items whose page photo is missing get
// an unknown mark rather than being dropped.
func (g *Grader) GradeMarkedPhoto(
	ctx context.Context,
	photos [][]byte,
	items []domain.ExerciseItem,
) (*grading.ProposedGrading, error) {
	if len(items) == 0 {
		return nil, grading.ErrNoExpectedItems
	}

	// Group item positions by page. Position is 1-based across the whole
	// session; within a page the detector sees positions 1..capacity.
	pageCap := g.layout.PerPageCapacity
	pages := make(map[int][]int)
	for _, it := range items {
		page := (it.Position - 1) / pageCap
		pages[page] = append(pages[page], it.Position)
	}

	byPosition := make(map[int]Detection, len(items))
	for page, positions := range pages {
		if page >= len(photos) {
			g.logger.Warn("no photo uploaded for page",
				slog.Int("page", page),
				slog.Int("photos", len(photos)))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("grading cancelled: %w", err)
		}

		local := make([]int, len(positions))
		for i, p := range positions {
			local[i] = (p-1)%pageCap + 1
		}
		detections, err := g.detector.Detect(photos[page], local)
		if err != nil {
			return nil, fmt.Errorf("detecting marks on page %d: %w", page, err)
		}
		for _, d := range detections {
			global := page*pageCap + d.Position
			byPosition[global] = d
		}
	}

	marks := make([]grading.ProposedMark, 0, len(items))
	for _, it := range items {
		d, ok := byPosition[it.Position]
		if !ok {
			marks = append(marks, grading.ProposedMark{
				Position: it.Position,
				Mark:     grading.MarkUnknown,
				Note:     "no photo covers this position",
			})
			continue
		}
		mark := grading.MarkIncorrect
		if d.IsCorrect {
			mark = grading.MarkCorrect
		}
		marks = append(marks, grading.ProposedMark{
			Position:   it.Position,
			Mark:       mark,
			Confidence: d.Confidence,
			Note:       fmt.Sprintf("ink ratio %.4f", d.InkRatio),
		})
	}

	return &grading.ProposedGrading{
		Provider: grading.ProviderInkMark,
		Marks:    marks,
	}, nil
}
