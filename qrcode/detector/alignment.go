package detector

import (
	"math"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

// alignmentCandidate is a 1:1:1 hit awaiting confirmation by a second row.
type alignmentCandidate struct {
	x, y, moduleSize float64
}

func (a alignmentCandidate) aboutEquals(moduleSize, x, y float64) bool {
	if math.Abs(y-a.y) > moduleSize || math.Abs(x-a.x) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - a.moduleSize)
	return diff <= 1 || diff <= a.moduleSize
}

func (a alignmentCandidate) combine(moduleSize, x, y float64) alignmentCandidate {
	return alignmentCandidate{(a.x + x) / 2, (a.y + y) / 2, (a.moduleSize + moduleSize) / 2}
}

// estimateAlignment predicts the bottom-right alignment center, three
// modules in from the bottom-right finder corner.
func estimateAlignment(t Triple, dimension int) (float64, float64) {
	tl, tr, bl := t.TopLeft, t.TopRight, t.BottomLeft
	brX := tr.X - tl.X + bl.X
	brY := tr.Y - tl.Y + bl.Y
	correction := 1 - 3/float64(dimension-7)
	return tl.X + correction*(brX-tl.X), tl.Y + correction*(brY-tl.Y)
}

// findAlignment searches growing windows around the estimate.
func (d *Detector) findAlignment(moduleSize, estX, estY float64) (codeglyphx.ResultPoint, bool) {
	for factor := 4; factor <= 16; factor <<= 1 {
		if p, ok := d.findAlignmentInRegion(moduleSize, estX, estY, float64(factor)); ok {
			return p, true
		}
	}
	return codeglyphx.ResultPoint{}, false
}

func (d *Detector) findAlignmentInRegion(moduleSize, estX, estY, allowanceFactor float64) (codeglyphx.ResultPoint, bool) {
	allowance := int(allowanceFactor * moduleSize)
	left := max(0, int(estX)-allowance)
	right := min(d.image.Width()-1, int(estX)+allowance)
	top := max(0, int(estY)-allowance)
	bottom := min(d.image.Height()-1, int(estY)+allowance)
	if float64(right-left) < moduleSize*3 || float64(bottom-top) < moduleSize*3 {
		return codeglyphx.ResultPoint{}, false
	}
	return d.findAlignmentPattern(left, top, right-left, bottom-top, moduleSize)
}

// findAlignmentPattern scans rows from the middle of the window outwards
// for a white-black-white run of one module each. A center seen on two rows
// wins; otherwise the first unconfirmed one is used.
func (d *Detector) findAlignmentPattern(startX, startY, width, height int, moduleSize float64) (codeglyphx.ResultPoint, bool) {
	maxJ := startX + width
	middleI := startY + height/2
	var possible []alignmentCandidate

	handle := func(stateCount [3]int, i, j int) (codeglyphx.ResultPoint, bool) {
		total := stateCount[0] + stateCount[1] + stateCount[2]
		centerJ := float64(j-stateCount[2]) - float64(stateCount[1])/2
		centerI, ok := d.crossCheckVerticalAlignment(i, int(centerJ), 2*stateCount[1], total, moduleSize)
		if !ok {
			return codeglyphx.ResultPoint{}, false
		}
		size := float64(total) / 3
		for k, c := range possible {
			if c.aboutEquals(size, centerJ, centerI) {
				c = c.combine(size, centerJ, centerI)
				possible[k] = c
				return codeglyphx.ResultPoint{X: c.x, Y: c.y}, true
			}
		}
		possible = append(possible, alignmentCandidate{centerJ, centerI, size})
		return codeglyphx.ResultPoint{}, false
	}

	for gen := 0; gen < height; gen++ {
		offset := (gen + 1) / 2
		if gen&1 == 1 {
			offset = -offset
		}
		i := middleI + offset
		if i < 0 || i >= d.image.Height() {
			continue
		}

		var stateCount [3]int
		j := startX
		for j < maxJ && !d.image.Get(j, i) {
			j++
		}
		state := 0
		for ; j < maxJ; j++ {
			if !d.image.Get(j, i) {
				if state == 1 {
					state++
				}
				stateCount[state]++
				continue
			}
			switch state {
			case 1:
				stateCount[1]++
			case 2:
				if foundAlignmentPattern(stateCount, moduleSize) {
					if p, ok := handle(stateCount, i, j); ok {
						return p, true
					}
				}
				stateCount = [3]int{stateCount[2], 1, 0}
				state = 1
			default:
				state++
				stateCount[state]++
			}
		}
		if foundAlignmentPattern(stateCount, moduleSize) {
			if p, ok := handle(stateCount, i, maxJ); ok {
				return p, true
			}
		}
	}
	if len(possible) > 0 {
		return codeglyphx.ResultPoint{X: possible[0].x, Y: possible[0].y}, true
	}
	return codeglyphx.ResultPoint{}, false
}

func foundAlignmentPattern(stateCount [3]int, moduleSize float64) bool {
	maxVariance := moduleSize / 2
	for _, count := range stateCount {
		if math.Abs(moduleSize-float64(count)) >= maxVariance {
			return false
		}
	}
	return true
}

// crossCheckVerticalAlignment confirms a black run at column centerJ going
// up and down from startI, returning the vertical center.
func (d *Detector) crossCheckVerticalAlignment(startI, centerJ, maxCount, originalTotal int, moduleSize float64) (float64, bool) {
	maxI := d.image.Height()
	var stateCount [3]int

	i := startI
	for i >= 0 && d.image.Get(centerJ, i) && stateCount[1] <= maxCount {
		stateCount[1]++
		i--
	}
	if i < 0 || stateCount[1] > maxCount {
		return 0, false
	}
	for i >= 0 && !d.image.Get(centerJ, i) && stateCount[0] <= maxCount {
		stateCount[0]++
		i--
	}
	if stateCount[0] > maxCount {
		return 0, false
	}

	i = startI + 1
	for i < maxI && d.image.Get(centerJ, i) && stateCount[1] <= maxCount {
		stateCount[1]++
		i++
	}
	if i == maxI || stateCount[1] > maxCount {
		return 0, false
	}
	for i < maxI && !d.image.Get(centerJ, i) && stateCount[2] <= maxCount {
		stateCount[2]++
		i++
	}
	if stateCount[2] > maxCount {
		return 0, false
	}

	total := stateCount[0] + stateCount[1] + stateCount[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !foundAlignmentPattern(stateCount, moduleSize) {
		return 0, false
	}
	return float64(i-stateCount[2]) - float64(stateCount[1])/2, true
}
