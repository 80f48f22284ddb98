package detector

import (
	"math"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/transform"
)

// Module space tweaks tried around the top-left finder center.
var (
	refinePhases = []float64{0, -0.25, 0.25}
	refineScales = []float64{1, 0.97, 1.03}
)

const (
	refineStep     = 0.125
	maxRefinePhase = 0.5
	maxRefineSteps = 4
)

// mappingScore rates a grid mapping by how well the format words and timing
// patterns read through it.
type mappingScore struct {
	formatDistance int
	timing         int
	scalePenalty   float64
}

func (s mappingScore) better(o mappingScore) bool {
	if s.formatDistance != o.formatDistance {
		return s.formatDistance < o.formatDistance
	}
	if s.timing != o.timing {
		return s.timing > o.timing
	}
	return s.scalePenalty < o.scalePenalty
}

// refine nudges the mapping by fractions of a module and by small scale
// changes, keeping the variant whose format words sit closest to a valid
// codeword and whose timing rows alternate most. A coarse grid is searched
// first, then the phase is walked in eighth module steps around the best.
func (d *Detector) refine(sampler *transform.GridSampler, base *transform.Transform, dimension int) *transform.Transform {
	best := base
	bestScore := d.scoreMapping(sampler, base, dimension, 0)
	perfect := func(s mappingScore) bool {
		return s.formatDistance == 0 && s.timing == 2*(dimension-17)
	}
	if perfect(bestScore) {
		return best
	}

	var bpx, bpy, bsx, bsy float64 = 0, 0, 1, 1
	try := func(px, py, sx, sy float64) bool {
		candidate := adjustMapping(base, dimension, px, py, sx, sy)
		score := d.scoreMapping(sampler, candidate, dimension, math.Abs(sx-1)+math.Abs(sy-1))
		if !score.better(bestScore) {
			return false
		}
		best, bestScore = candidate, score
		bpx, bpy, bsx, bsy = px, py, sx, sy
		return true
	}

	for _, sy := range refineScales {
		for _, sx := range refineScales {
			for _, py := range refinePhases {
				for _, px := range refinePhases {
					if sx == 1 && sy == 1 && px == 0 && py == 0 {
						continue
					}
					if try(px, py, sx, sy) && perfect(bestScore) {
						return best
					}
				}
			}
		}
	}

	for range maxRefineSteps {
		moved := false
		cx, cy := bpx, bpy
		for _, dy := range []float64{0, -refineStep, refineStep} {
			for _, dx := range []float64{0, -refineStep, refineStep} {
				px, py := cx+dx, cy+dy
				if dx == 0 && dy == 0 || math.Abs(px) > maxRefinePhase || math.Abs(py) > maxRefinePhase {
					continue
				}
				if try(px, py, bsx, bsy) {
					moved = true
					if perfect(bestScore) {
						return best
					}
				}
			}
		}
		if !moved {
			break
		}
	}
	return best
}

// adjustMapping composes base with a module space shift and scale pivoting
// on the top-left finder center.
func adjustMapping(base *transform.Transform, dimension int, px, py, sx, sy float64) *transform.Transform {
	n := float64(dimension)
	square := transform.Quad{{X: 0, Y: 0}, {X: n, Y: 0}, {X: n, Y: n}, {X: 0, Y: n}}
	var moved transform.Quad
	for i, p := range square {
		x, y := base.Map(3.5+(p.X-3.5)*sx+px, 3.5+(p.Y-3.5)*sy+py)
		moved[i] = codeglyphx.ResultPoint{X: x, Y: y}
	}
	return transform.QuadToQuad(square, moved)
}

func (d *Detector) scoreMapping(sampler *transform.GridSampler, t *transform.Transform, dimension int, scalePenalty float64) mappingScore {
	a, b := decoder.FormatInfoPositions(dimension)
	read := func(cells [15][2]int) int {
		word := 0
		for i := 14; i >= 0; i-- {
			word <<= 1
			if d.module(sampler, t, cells[i][0], cells[i][1]) {
				word |= 1
			}
		}
		return word
	}
	_, distance := decoder.FormatCandidates(read(a), read(b))

	timing := 0
	prevRow, prevCol := d.module(sampler, t, 8, 6), d.module(sampler, t, 6, 8)
	for k := 9; k <= dimension-9; k++ {
		row, col := d.module(sampler, t, k, 6), d.module(sampler, t, 6, k)
		if row != prevRow {
			timing++
		}
		if col != prevCol {
			timing++
		}
		prevRow, prevCol = row, col
	}
	return mappingScore{formatDistance: distance, timing: timing, scalePenalty: scalePenalty}
}

// module samples one module, reading light when it maps outside the image.
func (d *Detector) module(sampler *transform.GridSampler, t *transform.Transform, x, y int) bool {
	px, py := t.Map(float64(x)+0.5, float64(y)+0.5)
	if math.IsNaN(px) || math.IsNaN(py) || px < 0 || py < 0 ||
		px >= float64(d.image.Width()) || py >= float64(d.image.Height()) {
		return false
	}
	return sampler.Module(d.image, t, x, y)
}
