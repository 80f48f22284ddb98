package detector

import (
	"context"
	"fmt"
	"math"
	"sort"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/transform"
)

// Box is an inclusive pixel rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the box width in pixels.
func (b Box) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the box height in pixels.
func (b Box) Height() int { return b.MaxY - b.MinY + 1 }

// minEdgeDarkFraction is the dark share below which an outer row or column
// counts as noise.
const minEdgeDarkFraction = 0.1

// DarkBoundingBox returns the rectangle enclosing every dark pixel, with
// sparse edge rows and columns trimmed while the trim stays within a
// twentieth of the side.
func (d *Detector) DarkBoundingBox() (Box, bool) {
	rect := d.image.EnclosingRectangle()
	if rect == nil {
		return Box{}, false
	}
	b := Box{MinX: rect[0], MinY: rect[1], MaxX: rect[0] + rect[2] - 1, MaxY: rect[1] + rect[3] - 1}

	darkRow := func(y int) int {
		n := 0
		for x := b.MinX; x <= b.MaxX; x++ {
			if d.image.Get(x, y) {
				n++
			}
		}
		return n
	}
	darkCol := func(x int) int {
		n := 0
		for y := b.MinY; y <= b.MaxY; y++ {
			if d.image.Get(x, y) {
				n++
			}
		}
		return n
	}
	maxTrimX, maxTrimY := max(1, b.Width()/20), max(1, b.Height()/20)
	for trim := 0; trim < maxTrimY && b.Height() > 1 && float64(darkRow(b.MinY)) < minEdgeDarkFraction*float64(b.Width()); trim++ {
		b.MinY++
	}
	for trim := 0; trim < maxTrimY && b.Height() > 1 && float64(darkRow(b.MaxY)) < minEdgeDarkFraction*float64(b.Width()); trim++ {
		b.MaxY--
	}
	for trim := 0; trim < maxTrimX && b.Width() > 1 && float64(darkCol(b.MinX)) < minEdgeDarkFraction*float64(b.Height()); trim++ {
		b.MinX++
	}
	for trim := 0; trim < maxTrimX && b.Width() > 1 && float64(darkCol(b.MaxX)) < minEdgeDarkFraction*float64(b.Height()); trim++ {
		b.MaxX--
	}
	return b, true
}

// BoxDimensions lists symbol sizes whose horizontal and vertical module
// pitch agree within 20% for the box, with at least a pixel per module.
// Sizes giving a whole number of pixels per module come first.
func BoxDimensions(b Box) []int {
	type fit struct {
		dimension int
		residue   float64
	}
	var fits []fit
	for dim := 21; dim <= 177; dim += 4 {
		msx := float64(b.Width()) / float64(dim)
		msy := float64(b.Height()) / float64(dim)
		if msx < 1 || msy < 1 || math.Abs(msx-msy) > 0.2*max(msx, msy) {
			continue
		}
		ms := (msx + msy) / 2
		fits = append(fits, fit{dim, math.Abs(ms - math.Round(ms))})
	}
	sort.SliceStable(fits, func(i, j int) bool { return fits[i].residue < fits[j].residue })
	dims := make([]int, len(fits))
	for i, f := range fits {
		dims[i] = f.dimension
	}
	return dims
}

// SampleBox samples the box as a dimension x dimension grid.
func (d *Detector) SampleBox(ctx context.Context, b Box, dimension int) (*internal.DetectorResult, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: grid dimension %d", codeglyphx.ErrInvalidInput, dimension)
	}
	n := float64(dimension)
	x0, y0 := float64(b.MinX), float64(b.MinY)
	x1, y1 := float64(b.MaxX+1), float64(b.MaxY+1)
	xform := transform.QuadToQuad(
		transform.Quad{{X: 0, Y: 0}, {X: n, Y: 0}, {X: n, Y: n}, {X: 0, Y: n}},
		transform.Quad{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}},
	)
	moduleSize := (x1 - x0 + y1 - y0) / (2 * n)
	bits, err := transform.NewGridSampler(moduleSize).SampleGrid(ctx, d.image, dimension, xform)
	if err != nil {
		return nil, err
	}
	points := []codeglyphx.ResultPoint{{X: x0, Y: y1}, {X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}}
	return internal.NewDetectorResult(bits, points, moduleSize, MethodBoundingBox), nil
}
