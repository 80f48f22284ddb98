package detector

import (
	"math"
	"sort"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

const (
	// maxTripleCandidates bounds the centers combined into triples.
	maxTripleCandidates = 10

	maxModuleSizeRatio = 1.75
	maxSideRatio       = 1.8
)

// Triple is three finder patterns ordered as a symbol's corners.
type Triple struct {
	TopLeft, TopRight, BottomLeft FinderPattern
	Score                         float64
}

// ModuleSize is the mean module size of the three patterns.
func (t Triple) ModuleSize() float64 {
	return (t.TopLeft.ModuleSize + t.TopRight.ModuleSize + t.BottomLeft.ModuleSize) / 3
}

// Points returns the centers as bottom-left, top-left, top-right.
func (t Triple) Points() []codeglyphx.ResultPoint {
	return []codeglyphx.ResultPoint{t.BottomLeft.Point(), t.TopLeft.Point(), t.TopRight.Point()}
}

// SelectTriples combines the strongest candidates into ordered triples,
// best scoring first. Combinations with mismatched module sizes or a
// lopsided right angle are dropped.
func SelectTriples(candidates []FinderPattern) []Triple {
	n := min(len(candidates), maxTripleCandidates)
	var triples []Triple
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if t, ok := scoreTriple(candidates[i], candidates[j], candidates[k]); ok {
					triples = append(triples, t)
				}
			}
		}
	}
	sort.SliceStable(triples, func(i, j int) bool { return triples[i].Score > triples[j].Score })
	return triples
}

func scoreTriple(a, b, c FinderPattern) (Triple, bool) {
	msMin := min(a.ModuleSize, b.ModuleSize, c.ModuleSize)
	msMax := max(a.ModuleSize, b.ModuleSize, c.ModuleSize)
	if msMin <= 0 || msMax > msMin*maxModuleSizeRatio {
		return Triple{}, false
	}

	sides := []float64{
		codeglyphx.SquaredDistance(a.Point(), b.Point()),
		codeglyphx.SquaredDistance(b.Point(), c.Point()),
		codeglyphx.SquaredDistance(a.Point(), c.Point()),
	}
	sort.Float64s(sides)
	if sides[0] <= 0 || sides[1]/sides[0] > maxSideRatio {
		return Triple{}, false
	}

	ordered := codeglyphx.OrderBestPatterns([3]codeglyphx.ResultPoint{a.Point(), b.Point(), c.Point()})
	byPoint := func(p codeglyphx.ResultPoint) FinderPattern {
		switch p {
		case a.Point():
			return a
		case b.Point():
			return b
		default:
			return c
		}
	}
	msAvg := (a.ModuleSize + b.ModuleSize + c.ModuleSize) / 3
	score := float64(a.Count+b.Count+c.Count)*10 +
		math.Sqrt(sides[2]) -
		4*math.Abs(math.Sqrt(sides[0])-math.Sqrt(sides[1])) -
		0.5*math.Abs(msAvg-msMin)
	return Triple{
		TopLeft:    byPoint(ordered[0]),
		TopRight:   byPoint(ordered[1]),
		BottomLeft: byPoint(ordered[2]),
		Score:      score,
	}, true
}

// nearestValidDimension rounds to the nearest size of the form 4k+1,
// preferring the smaller one on ties.
func nearestValidDimension(d int) int {
	best, bestDelta := d, 3
	for delta := -2; delta <= 2; delta++ {
		if v := d + delta; v%4 == 1 && abs(delta) < bestDelta {
			best, bestDelta = v, abs(delta)
		}
	}
	return best
}

// DimensionCandidates estimates the symbol size from finder distances. The
// combined estimate comes first, then the per-axis estimates and one
// version either side; extended adds two versions either side.
func DimensionCandidates(t Triple, extended bool) []int {
	ms := t.ModuleSize()
	dimH := int(math.Round(codeglyphx.Distance(t.TopLeft.Point(), t.TopRight.Point())/ms)) + 7
	dimV := int(math.Round(codeglyphx.Distance(t.TopLeft.Point(), t.BottomLeft.Point())/ms)) + 7
	base := nearestValidDimension((dimH + dimV) / 2)

	list := []int{base, nearestValidDimension(dimH), nearestValidDimension(dimV), base - 4, base + 4}
	if extended {
		list = append(list, base-8, base+8)
	}
	var dims []int
	seen := make(map[int]bool, len(list))
	for _, d := range list {
		if d < 21 || d > 177 || seen[d] {
			continue
		}
		seen[d] = true
		dims = append(dims, d)
	}
	return dims
}
