package binarizer

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

const maxThresholdCandidates = 16

// Global marks a pixel dark when its luminance is at most a fixed threshold.
type Global struct {
	source    *GrayImage
	threshold int
}

// NewGlobal creates a fixed threshold binarizer.
func NewGlobal(source *GrayImage, threshold int) *Global {
	return &Global{source: source, threshold: threshold}
}

// Threshold returns the luminance threshold.
func (b *Global) Threshold() int { return b.threshold }

// BlackMatrix implements codeglyphx.Binarizer.
func (b *Global) BlackMatrix() (*bitutil.BitMatrix, error) {
	g := b.source
	matrix := bitutil.NewBitMatrixWithSize(g.width, g.height)
	for y := 0; y < g.height; y++ {
		row := g.lum[y*g.width : (y+1)*g.width]
		for x, l := range row {
			if int(l) <= b.threshold {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

// Name implements codeglyphx.Binarizer.
func (b *Global) Name() string { return fmt.Sprintf("threshold-%d", b.threshold) }

// Adaptive compares each pixel against the mean of the window around it
// minus an offset. Window sums come from an integral image.
type Adaptive struct {
	source *GrayImage
	window int
	offset int
}

// NewAdaptive creates a local mean binarizer. The window is forced odd and
// at least 3.
func NewAdaptive(source *GrayImage, window, offset int) *Adaptive {
	window = max(window, 3)
	if window%2 == 0 {
		window++
	}
	return &Adaptive{source: source, window: window, offset: offset}
}

// BlackMatrix implements codeglyphx.Binarizer.
func (b *Adaptive) BlackMatrix() (*bitutil.BitMatrix, error) {
	g := b.source
	w, h := g.width, g.height
	stride := w + 1
	integral := make([]int, stride*(h+1))
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(g.lum[y*w+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := b.window / 2
	matrix := bitutil.NewBitMatrixWithSize(w, h)
	for y := 0; y < h; y++ {
		y0, y1 := max(y-half, 0), min(y+half+1, h)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-half, 0), min(x+half+1, w)
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] - integral[y1*stride+x0] + integral[y0*stride+x0]
			count := (x1 - x0) * (y1 - y0)
			threshold := clampLuminance(sum/count - b.offset)
			if int(g.lum[y*w+x]) <= threshold {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

// Name implements codeglyphx.Binarizer.
func (b *Adaptive) Name() string { return fmt.Sprintf("adaptive-%d/%d", b.window, b.offset) }

func clampLuminance(v int) int {
	return min(max(v, 0), 0xFF)
}

// ThresholdCandidates lists the global thresholds worth trying, most likely
// first: the min/max midpoint, Otsu, both shifted by 16 (and by 32 when
// extended), the quartiles, the range thirds and the two extremes moved 12
// inwards. Values are clamped to 0..255 and deduplicated.
func ThresholdCandidates(g *GrayImage, extended bool) []int {
	mid := (g.min + g.max) / 2
	otsu := g.Otsu()
	spread := g.max - g.min

	var out []int
	add := func(t int) {
		if len(out) >= maxThresholdCandidates {
			return
		}
		t = clampLuminance(t)
		for _, v := range out {
			if v == t {
				return
			}
		}
		out = append(out, t)
	}

	add(mid)
	add(otsu)
	add(mid - 16)
	add(mid + 16)
	add(otsu - 16)
	add(otsu + 16)
	if extended {
		add(mid - 32)
		add(mid + 32)
		add(otsu - 32)
		add(otsu + 32)
	}
	add(g.Percentile(25))
	add(g.Percentile(50))
	add(g.Percentile(75))
	if spread > 0 {
		add(g.min + spread/3)
		add(g.min + spread*2/3)
	}
	add(g.min + 12)
	add(g.max - 12)
	return out
}

// Binarizations returns the ordered binarization strategies for an image:
// the global threshold candidates, the adaptive windows 15/8 and 25/4 (plus
// 31/0 when extended) and the block based hybrid.
func Binarizations(g *GrayImage, extended bool) []codeglyphx.Binarizer {
	var out []codeglyphx.Binarizer
	for _, t := range ThresholdCandidates(g, extended) {
		out = append(out, NewGlobal(g, t))
	}
	out = append(out, NewAdaptive(g, 15, 8), NewAdaptive(g, 25, 4))
	if extended {
		out = append(out, NewAdaptive(g, 31, 0))
	}
	return append(out, NewHybrid(g))
}
