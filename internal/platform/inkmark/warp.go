package inkmark

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// luminance returns the perceived brightness of a color in [0,255].
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// findPageQuad locates the corners of the largest bright quadrilateral in
// the photo, assumed to be the worksheet against a darker background. It
// binarizes by luminance and takes the extreme bright pixels toward each
// image corner. ok is false when no plausible page-sized region is found,
// in which case the caller falls back to a plain resize.
func findPageQuad(img image.Image) (quad [4]image.Point, ok bool) {
	bounds := img.Bounds()
	const brightCutoff = 160.0

	// Corner scores: top-left minimizes x+y, bottom-right maximizes it,
	// top-right maximizes x-y, bottom-left minimizes it.
	var tl, tr, bl, br image.Point
	minSum, maxSum := 1<<30, -(1 << 30)
	minDiff, maxDiff := 1<<30, -(1 << 30)
	brightCount := 0

	// Sampling every other pixel halves the work without moving the
	// corners by more than a pixel.
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 2 {
			if luminance(img.At(x, y)) < brightCutoff {
				continue
			}
			brightCount++
			sum, diff := x+y, x-y
			if sum < minSum {
				minSum, tl = sum, image.Pt(x, y)
			}
			if sum > maxSum {
				maxSum, br = sum, image.Pt(x, y)
			}
			if diff > maxDiff {
				maxDiff, tr = diff, image.Pt(x, y)
			}
			if diff < minDiff {
				minDiff, bl = diff, image.Pt(x, y)
			}
		}
	}

	// The bright region must cover a meaningful share of the photo to be a
	// page rather than glare.
	sampled := ((bounds.Dx() + 1) / 2) * ((bounds.Dy() + 1) / 2)
	if sampled == 0 || float64(brightCount)/float64(sampled) < 0.10 {
		return quad, false
	}

	quadArea := quadrilateralArea(tl, tr, br, bl)
	imgArea := float64(bounds.Dx() * bounds.Dy())
	if quadArea < 0.20*imgArea {
		return quad, false
	}

	return [4]image.Point{tl, tr, br, bl}, true
}

// quadrilateralArea computes the area of a quadrilateral given its corners
// in clockwise order, via the shoelace formula.
func quadrilateralArea(a, b, c, d image.Point) float64 {
	pts := [4]image.Point{a, b, c, d}
	area := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		area += float64(pts[i].X*pts[j].Y - pts[j].X*pts[i].Y)
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}

// warpToReference maps the photo onto the fixed reference page. When a page
// quadrilateral is found it applies a perspective warp from its corners;
// otherwise it falls back to a plain bilinear resize of the whole photo.
func warpToReference(img image.Image, layout PageLayout) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, layout.RefWidth, layout.RefHeight))

	quad, ok := findPageQuad(img)
	if !ok {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		return dst
	}

	h, ok := homographyFromQuad(quad, layout.RefWidth, layout.RefHeight)
	if !ok {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		return dst
	}

	bounds := img.Bounds()
	for y := 0; y < layout.RefHeight; y++ {
		for x := 0; x < layout.RefWidth; x++ {
			sx, sy := h.apply(float64(x), float64(y))
			ix, iy := int(sx+0.5), int(sy+0.5)
			if ix < bounds.Min.X || ix >= bounds.Max.X || iy < bounds.Min.Y || iy >= bounds.Max.Y {
				continue
			}
			dst.Set(x, y, img.At(ix, iy))
		}
	}
	return dst
}

// homography holds the 3x3 projective transform from reference-page
// coordinates back to photo coordinates (inverse mapping).
type homography struct {
	m [9]float64
}

// apply maps a reference-page point to photo coordinates.
func (h homography) apply(x, y float64) (float64, float64) {
	w := h.m[6]*x + h.m[7]*y + h.m[8]
	if w == 0 {
		return -1, -1
	}
	return (h.m[0]*x + h.m[1]*y + h.m[2]) / w,
		(h.m[3]*x + h.m[4]*y + h.m[5]) / w
}

// homographyFromQuad solves for the projective transform taking the
// reference rectangle corners (0,0)-(w,0)-(w,h)-(0,h) to the given photo
// quadrilateral corners (tl, tr, br, bl). The standard 8-unknown direct
// linear system is solved by Gaussian elimination with partial pivoting.
func homographyFromQuad(quad [4]image.Point, refW, refH int) (homography, bool) {
	src := [4][2]float64{
		{0, 0},
		{float64(refW - 1), 0},
		{float64(refW - 1), float64(refH - 1)},
		{0, float64(refH - 1)},
	}
	dst := [4][2]float64{
		{float64(quad[0].X), float64(quad[0].Y)},
		{float64(quad[1].X), float64(quad[1].Y)},
		{float64(quad[2].X), float64(quad[2].Y)},
		{float64(quad[3].X), float64(quad[3].Y)},
	}

	// Build the 8x9 augmented system A * h = b for h = (a,b,c,d,e,f,g,hh).
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		sx, sy := src[i][0], src[i][1]
		dx, dy := dst[i][0], dst[i][1]
		a[2*i] = [9]float64{sx, sy, 1, 0, 0, 0, -dx * sx, -dx * sy, dx}
		a[2*i+1] = [9]float64{0, 0, 0, sx, sy, 1, -dy * sx, -dy * sy, dy}
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if abs(a[row][col]) > abs(a[pivot][col]) {
				pivot = row
			}
		}
		if abs(a[pivot][col]) < 1e-10 {
			return homography{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < 8; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 9; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	var h [8]float64
	for row := 7; row >= 0; row-- {
		sum := a[row][8]
		for k := row + 1; k < 8; k++ {
			sum -= a[row][k] * h[k]
		}
		h[row] = sum / a[row][row]
	}

	return homography{m: [9]float64{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}}, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
