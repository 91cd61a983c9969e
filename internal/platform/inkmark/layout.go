// Package inkmark infers correctness from colored hand-marks on a
// photographed worksheet. The photo is warped to a fixed reference page,
// red-hue pixels are masked, and the ink fraction inside each answer-line
// region decides the verdict.
package inkmark

import "image"

// PageLayout is the versioned worksheet geometry shared between the
// worksheet renderer and this detector. No layout metadata travels with a
// photo, so both sides must be built against the same version: if the
// renderer's layout changes, this structure must change with it.
type PageLayout struct {
	// Version increments whenever any geometry field changes.
	Version int

	// RefWidth and RefHeight are the warped reference page dimensions in
	// pixels, approximating an A4 page.
	RefWidth  int
	RefHeight int

	// MarginTop and MarginLeft locate the first answer line.
	MarginTop  int
	MarginLeft int

	// LineHeight is the vertical distance between consecutive answer lines.
	LineHeight int

	// AnswerOffsetX is where the answer region starts, right of the prompt
	// column.
	AnswerOffsetX int

	// AnswerWidth and AnswerHeight bound one answer-line region.
	AnswerWidth  int
	AnswerHeight int

	// PerPageCapacity is how many answer lines fit on one page. Positions
	// beyond it are on later pages, which the detector does not cover.
	PerPageCapacity int
}

// DefaultLayout returns the geometry of the current worksheet template
// (A4 at 150 dpi).
func DefaultLayout() PageLayout {
	return PageLayout{
		Version:         1,
		RefWidth:        1240,
		RefHeight:       1754,
		MarginTop:       220,
		MarginLeft:      100,
		LineHeight:      72,
		AnswerOffsetX:   340,
		AnswerWidth:     700,
		AnswerHeight:    60,
		PerPageCapacity: 20,
	}
}

// AnswerRegion returns the expected pixel region of the answer line for a
// 1-based worksheet position on the first page. ok is false when the
// position is beyond the page capacity.
func (l PageLayout) AnswerRegion(position int) (r image.Rectangle, ok bool) {
	if position < 1 || position > l.PerPageCapacity {
		return image.Rectangle{}, false
	}

	y := l.MarginTop + (position-1)*l.LineHeight
	x := l.MarginLeft + l.AnswerOffsetX
	return image.Rect(x, y, x+l.AnswerWidth, y+l.AnswerHeight), true
}
