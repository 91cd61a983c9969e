package inkmark

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worksheetPhoto renders a synthetic photo of a blank worksheet at the
// reference page size, with the answer regions of markedPositions filled
// with red ink. The fill is padded a few pixels so the warp's rounding
// cannot move ink outside the measured region.
func worksheetPhoto(t *testing.T, layout PageLayout, markedPositions ...int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, layout.RefWidth, layout.RefHeight))
	white := color.RGBA{R: 245, G: 245, B: 240, A: 255}
	for y := 0; y < layout.RefHeight; y++ {
		for x := 0; x < layout.RefWidth; x++ {
			img.SetRGBA(x, y, white)
		}
	}

	red := color.RGBA{R: 210, G: 30, B: 40, A: 255}
	for _, pos := range markedPositions {
		region, ok := layout.AnswerRegion(pos)
		require.True(t, ok, "position %d beyond page capacity", pos)
		region = region.Inset(-4)
		for y := region.Min.Y; y < region.Max.Y; y++ {
			for x := region.Min.X; x < region.Max.X; x++ {
				img.SetRGBA(x, y, red)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectFindsRedMarks(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	photo := worksheetPhoto(t, layout, 2)
	detector := NewDetector(layout, 0.02, nil)

	detections, err := detector.Detect(photo, []int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, detections, 3)

	byPos := make(map[int]Detection, len(detections))
	for _, d := range detections {
		byPos[d.Position] = d
	}

	assert.True(t, byPos[1].IsCorrect)
	assert.True(t, byPos[3].IsCorrect)
	assert.False(t, byPos[2].IsCorrect, "marked region must read as incorrect")
	assert.Greater(t, byPos[2].InkRatio, 0.5)
	assert.Less(t, byPos[1].InkRatio, 0.01)
	assert.InDelta(t, 1.0, byPos[2].Confidence, 1e-9)
}

func TestDetectSkipsPositionsBeyondCapacity(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	photo := worksheetPhoto(t, layout)
	detector := NewDetector(layout, 0.02, nil)

	detections, err := detector.Detect(photo, []int{1, layout.PerPageCapacity + 1})
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, 1, detections[0].Position)
}

func TestDetectRejectsUndecodablePhoto(t *testing.T) {
	t.Parallel()

	detector := NewDetector(DefaultLayout(), 0.02, nil)
	_, err := detector.Detect([]byte("not an image"), []int{1})
	assert.Error(t, err)
}

func TestNewDetectorThresholdFallback(t *testing.T) {
	t.Parallel()

	for _, bad := range []float64{-1, 0, 1, 2.5} {
		d := NewDetector(DefaultLayout(), bad, nil)
		assert.Equal(t, 0.02, d.threshold, "threshold %v should fall back", bad)
	}

	d := NewDetector(DefaultLayout(), 0.05, nil)
	assert.Equal(t, 0.05, d.threshold)
}

func TestAnswerRegionBounds(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()

	_, ok := layout.AnswerRegion(0)
	assert.False(t, ok)
	_, ok = layout.AnswerRegion(layout.PerPageCapacity + 1)
	assert.False(t, ok)

	first, ok := layout.AnswerRegion(1)
	require.True(t, ok)
	second, ok := layout.AnswerRegion(2)
	require.True(t, ok)

	assert.Equal(t, layout.LineHeight, second.Min.Y-first.Min.Y)
	assert.True(t, first.In(image.Rect(0, 0, layout.RefWidth, layout.RefHeight)),
		"answer region must lie on the reference page")
}

func TestIsRedInk(t *testing.T) {
	t.Parallel()

	assert.True(t, isRedInk(210, 30, 40), "red pen")
	assert.True(t, isRedInk(255, 0, 0), "pure red")
	assert.False(t, isRedInk(245, 245, 240), "paper")
	assert.False(t, isRedInk(30, 30, 30), "pencil")
	assert.False(t, isRedInk(40, 80, 200), "blue pen")
	assert.False(t, isRedInk(50, 10, 12), "too dark to call")
}
