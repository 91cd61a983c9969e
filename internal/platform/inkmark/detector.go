// Package inkmark detects teacher correction marks on photographed
// worksheets by measuring red ink density inside the printed answer
// regions of a known page layout.
package inkmark

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	// Registered decoders for the photo formats accepted on upload.
	_ "image/jpeg"
	_ "image/png"
)

// Detection is the per-position outcome of a red-ink scan.
type Detection struct {
	Position   int
	IsCorrect  bool
	Confidence float64
	InkRatio   float64
}

// Detector scans worksheet photos for red correction marks. A red marking
// over an answer region is read as an incorrect mark; an unmarked region
// as correct.
type Detector struct {
	layout    PageLayout
	threshold float64
	logger    *slog.Logger
}

// NewDetector creates a Detector for the given page layout. threshold is
// the red-pixel fraction above which a region counts as marked; values
// outside (0,1) fall back to a conservative default.
func NewDetector(layout PageLayout, threshold float64, logger *slog.Logger) *Detector {
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.02
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		layout:    layout,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "inkmark_detector")),
	}
}

// Detect decodes the photo, warps it onto the reference page, and returns
// one Detection per requested position. Positions beyond the page capacity
// are skipped; the caller pairs results by Position, not by index.
func (d *Detector) Detect(photo []byte, positions []int) ([]Detection, error) {
	img, format, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}
	d.logger.Debug("decoded worksheet photo",
		slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()))

	page := warpToReference(img, d.layout)

	detections := make([]Detection, 0, len(positions))
	for _, pos := range positions {
		region, ok := d.layout.AnswerRegion(pos)
		if !ok {
			d.logger.Warn("position beyond page capacity, skipping",
				slog.Int("position", pos),
				slog.Int("capacity", d.layout.PerPageCapacity))
			continue
		}

		ratio := redInkRatio(page, region)
		det := Detection{
			Position:   pos,
			IsCorrect:  ratio <= d.threshold,
			Confidence: d.confidence(ratio),
			InkRatio:   ratio,
		}
		detections = append(detections, det)
	}
	return detections, nil
}

// confidence grows linearly with the distance of the measured ratio from
// the decision threshold, saturating at one threshold-width away.
func (d *Detector) confidence(ratio float64) float64 {
	dist := ratio - d.threshold
	if dist < 0 {
		dist = -dist
	}
	c := dist / d.threshold
	if c > 1 {
		c = 1
	}
	return c
}

// redInkRatio returns the fraction of pixels inside region whose color
// reads as red pen ink.
func redInkRatio(img *image.RGBA, region image.Rectangle) float64 {
	region = region.Intersect(img.Bounds())
	total := region.Dx() * region.Dy()
	if total <= 0 {
		return 0
	}

	red := 0
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			i := img.PixOffset(x, y)
			if isRedInk(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) {
				red++
			}
		}
	}
	return float64(red) / float64(total)
}

// isRedInk classifies a pixel as red pen ink. Hue is tested against two
// ranges because red wraps around the hue circle; saturation and value
// floors reject paper texture and shadows.
func isRedInk(r, g, b uint8) bool {
	h, s, v := rgbToHSV(r, g, b)
	if s < 0.35 || v < 0.25 {
		return false
	}
	return h <= 12 || h >= 340
}

// rgbToHSV converts 8-bit RGB to hue in degrees [0,360) and saturation and
// value in [0,1].
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255

	max := rf
	if gf > max {
		max = gf
	}
	if bf > max {
		max = bf
	}
	min := rf
	if gf < min {
		min = gf
	}
	if bf < min {
		min = bf
	}

	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case rf:
		h = 60 * ((gf - bf) / delta)
	case gf:
		h = 60 * (2 + (bf-rf)/delta)
	default:
		h = 60 * (4 + (rf-gf)/delta)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
