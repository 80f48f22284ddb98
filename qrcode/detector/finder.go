package detector

import (
	"context"
	"fmt"
	"math"
	"sort"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

// FinderPattern is a located finder pattern center.
type FinderPattern struct {
	X, Y       float64
	ModuleSize float64

	// Count is the number of scan rows that confirmed the center.
	Count int
}

// Point returns the center as a result point.
func (f FinderPattern) Point() codeglyphx.ResultPoint {
	return codeglyphx.ResultPoint{X: f.X, Y: f.Y}
}

func (f FinderPattern) aboutEquals(other FinderPattern) bool {
	tol := f.ModuleSize * 1.5
	return math.Abs(f.X-other.X) <= tol &&
		math.Abs(f.Y-other.Y) <= tol &&
		math.Abs(f.ModuleSize-other.ModuleSize) <= f.ModuleSize
}

func (f FinderPattern) combine(other FinderPattern) FinderPattern {
	n := float64(f.Count + 1)
	return FinderPattern{
		X:          (f.X*float64(f.Count) + other.X) / n,
		Y:          (f.Y*float64(f.Count) + other.Y) / n,
		ModuleSize: (f.ModuleSize*float64(f.Count) + other.ModuleSize) / n,
		Count:      f.Count + 1,
	}
}

// rowStep skips rows on large images.
func rowStep(width, height int) int {
	switch m := min(width, height); {
	case m >= 1400:
		return 3
	case m >= 900:
		return 2
	default:
		return 1
	}
}

// FindFinderPatterns scans rows for 1:1:3:1:1 runs, confirms each hit with
// vertical, horizontal and diagonal cross checks, and merges nearby centers.
// Large images are scanned every second or third row; when that yields
// fewer than three centers every row is scanned. Centers are returned most
// confirmed first.
func (d *Detector) FindFinderPatterns(ctx context.Context) ([]FinderPattern, error) {
	step := rowStep(d.image.Width(), d.image.Height())
	centers, err := d.scanFinders(ctx, step)
	if err != nil {
		return nil, err
	}
	if step > 1 && len(centers) < 3 {
		full, err := d.scanFinders(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(full) > len(centers) {
			centers = full
		}
	}
	sort.SliceStable(centers, func(i, j int) bool { return centers[i].Count > centers[j].Count })
	return centers, nil
}

func (d *Detector) scanFinders(ctx context.Context, step int) ([]FinderPattern, error) {
	width, height := d.image.Width(), d.image.Height()
	var centers []FinderPattern
	for y := 0; y < height; y += step {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", codeglyphx.ErrCancelled, err)
		}
		var stateCount [5]int
		state := 0
		for x := 0; x < width; x++ {
			if d.image.Get(x, y) {
				if state&1 == 1 {
					state++
				}
				stateCount[state]++
				continue
			}
			if state&1 == 1 {
				stateCount[state]++
				continue
			}
			if state != 4 {
				state++
				stateCount[state]++
				continue
			}
			if foundPatternCross(stateCount) && d.handlePossibleCenter(&centers, stateCount, x, y) {
				state = 0
				stateCount = [5]int{}
				continue
			}
			shiftCounts(&stateCount)
			state = 3
		}
		if state == 4 && foundPatternCross(stateCount) {
			d.handlePossibleCenter(&centers, stateCount, width, y)
		}
	}
	return centers, nil
}

// shiftCounts drops the leading black and white runs, keeping the last
// black run as the new first one.
func shiftCounts(stateCount *[5]int) {
	stateCount[0] = stateCount[2]
	stateCount[1] = stateCount[3]
	stateCount[2] = stateCount[4]
	stateCount[3] = 1
	stateCount[4] = 0
}

// foundPatternCross accepts runs within half a module of 1:1:3:1:1, and
// within a module and a half for the center.
func foundPatternCross(stateCount [5]int) bool {
	total := 0
	for _, c := range stateCount {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7
	maxVariance := moduleSize * 0.5
	return math.Abs(moduleSize-float64(stateCount[0])) <= maxVariance &&
		math.Abs(moduleSize-float64(stateCount[1])) <= maxVariance &&
		math.Abs(3*moduleSize-float64(stateCount[2])) <= 3*maxVariance &&
		math.Abs(moduleSize-float64(stateCount[3])) <= maxVariance &&
		math.Abs(moduleSize-float64(stateCount[4])) <= maxVariance
}

func centerFromEnd(stateCount [5]int, end int) float64 {
	return float64(end-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2
}

func (d *Detector) handlePossibleCenter(centers *[]FinderPattern, stateCount [5]int, endX, y int) bool {
	total := stateCount[0] + stateCount[1] + stateCount[2] + stateCount[3] + stateCount[4]
	centerX := centerFromEnd(stateCount, endX)
	if centerX < 0 || centerX >= float64(d.image.Width()) {
		return false
	}
	maxCount := stateCount[2]

	cx := int(math.Round(centerX))
	offsetY, sizeV, ok := d.crossCheck(cx, y, 0, 1, maxCount, total)
	if !ok {
		return false
	}
	centerY := float64(y) + offsetY
	cy := int(math.Round(centerY))
	offsetX, sizeH, ok := d.crossCheck(cx, cy, 1, 0, maxCount, total)
	if !ok {
		return false
	}
	centerX = float64(cx) + offsetX
	if _, _, ok := d.crossCheck(int(math.Round(centerX)), cy, 1, 1, maxCount, total); !ok {
		return false
	}

	candidate := FinderPattern{X: centerX, Y: centerY, ModuleSize: (sizeV + sizeH) / 2, Count: 1}
	for i, c := range *centers {
		if c.aboutEquals(candidate) {
			(*centers)[i] = c.combine(candidate)
			return true
		}
	}
	*centers = append(*centers, candidate)
	return true
}

// crossCheck walks the line through (x0, y0) with step (dx, dy) and checks
// for a 1:1:3:1:1 pattern centered on the start pixel. It returns the
// center offset in steps from the start and the module size.
func (d *Detector) crossCheck(x0, y0, dx, dy, maxCount, originalTotal int) (float64, float64, bool) {
	width, height := d.image.Width(), d.image.Height()
	at := func(k int) (dark, inside bool) {
		x, y := x0+k*dx, y0+k*dy
		if x < 0 || y < 0 || x >= width || y >= height {
			return false, false
		}
		return d.image.Get(x, y), true
	}
	// run advances k while the pixel color is dark and the count is below
	// limit, returning whether the walk stayed inside the image.
	run := func(k *int, step int, dark bool, count *int, limit int, strict bool) bool {
		for {
			v, inside := at(*k)
			if !inside {
				return false
			}
			if v != dark || (limit >= 0 && (*count > limit || strict && *count >= limit)) {
				return true
			}
			*count++
			*k += step
		}
	}

	var sc [5]int
	k := 0
	if !run(&k, -1, true, &sc[2], -1, false) {
		return 0, 0, false
	}
	if !run(&k, -1, false, &sc[1], maxCount, false) || sc[1] > maxCount {
		return 0, 0, false
	}
	run(&k, -1, true, &sc[0], maxCount, false)
	if sc[0] > maxCount {
		return 0, 0, false
	}

	k = 1
	if !run(&k, 1, true, &sc[2], -1, false) {
		return 0, 0, false
	}
	if !run(&k, 1, false, &sc[3], maxCount, true) || sc[3] >= maxCount {
		return 0, 0, false
	}
	run(&k, 1, true, &sc[4], maxCount, true)
	if sc[4] >= maxCount {
		return 0, 0, false
	}

	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !foundPatternCross(sc) {
		return 0, 0, false
	}
	return centerFromEnd(sc, k), float64(total) / 7, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// recenter re-measures a finder center with vertical and horizontal cross
// checks through the center stone. The pattern is returned unchanged when
// either check fails or the center moves by more than a module.
func (d *Detector) recenter(f FinderPattern) FinderPattern {
	if f.ModuleSize < 1 {
		return f
	}
	maxCount := int(math.Ceil(3 * f.ModuleSize))
	total := int(math.Round(7 * f.ModuleSize))
	x, y := f.X, f.Y
	for range 2 {
		cx, cy := int(math.Floor(x)), int(math.Floor(y))
		if cx < 0 || cy < 0 || cx >= d.image.Width() || cy >= d.image.Height() || !d.image.Get(cx, cy) {
			return f
		}
		offsetY, _, ok := d.crossCheck(cx, cy, 0, 1, maxCount, total)
		if !ok {
			return f
		}
		y = float64(cy) + offsetY
		cy = int(math.Floor(y))
		offsetX, _, ok := d.crossCheck(cx, cy, 1, 0, maxCount, total)
		if !ok {
			return f
		}
		x = float64(cx) + offsetX
	}
	if math.Hypot(x-f.X, y-f.Y) > f.ModuleSize {
		return f
	}
	f.X, f.Y = x, y
	return f
}
