package transform

import (
	"context"
	"fmt"
	"math"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// Window is the sampling footprint used per module.
type Window int

const (
	WindowPoint Window = iota
	Window3x3
	Window5x5
	Window9Point
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case WindowPoint:
		return "point"
	case Window3x3:
		return "3x3"
	case Window5x5:
		return "5x5"
	case Window9Point:
		return "9-point"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// WindowForModuleSize picks the footprint for a module size in pixels.
func WindowForModuleSize(moduleSize float64) Window {
	switch {
	case moduleSize >= 10:
		return Window9Point
	case moduleSize >= 6:
		return Window5x5
	case moduleSize >= 3:
		return Window3x3
	default:
		return WindowPoint
	}
}

// GridSampler reads a dimension x dimension module grid out of a binarized
// image. Each module is the majority of its window around the mapped center.
type GridSampler struct {
	Window Window
}

// NewGridSampler returns a sampler sized for moduleSize pixel modules.
func NewGridSampler(moduleSize float64) *GridSampler {
	return &GridSampler{Window: WindowForModuleSize(moduleSize)}
}

// SampleGrid maps module (x, y) through t at (x+0.5, y+0.5). It fails with
// codeglyphx.ErrNotFound when a row leaves the image by more than a pixel,
// and with codeglyphx.ErrCancelled once ctx is done.
func (s *GridSampler) SampleGrid(ctx context.Context, image *bitutil.BitMatrix, dimension int, t *Transform) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: grid dimension %d", codeglyphx.ErrInvalidInput, dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	points := make([]float64, 2*dimension)
	for y := 0; y < dimension; y++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", codeglyphx.ErrCancelled, err)
		}
		my := float64(y) + 0.5
		for x := 0; x < dimension; x++ {
			points[2*x] = float64(x) + 0.5
			points[2*x+1] = my
		}
		t.MapPoints(points)
		if err := CheckAndNudgePoints(image, points); err != nil {
			return nil, err
		}
		for x := 0; x < dimension; x++ {
			if s.sample(image, t, float64(x)+0.5, my, points[2*x], points[2*x+1]) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// Module samples the single module (x, y) with the sampler's window.
func (s *GridSampler) Module(image *bitutil.BitMatrix, t *Transform, x, y int) bool {
	mx, my := float64(x)+0.5, float64(y)+0.5
	px, py := t.Map(mx, my)
	return s.sample(image, t, mx, my, px, py)
}

// sample votes over the window at image point (px, py), the image of module
// point (mx, my).
func (s *GridSampler) sample(image *bitutil.BitMatrix, t *Transform, mx, my, px, py float64) bool {
	switch s.Window {
	case Window3x3:
		return vote(image, px, py, 1, 1, 5)
	case Window5x5:
		return vote(image, px, py, 2, 0.85, 13)
	case Window9Point:
		dark := 0
		for _, o := range ninePoint {
			x, y := t.Map(mx+o[0], my+o[1])
			if pixel(image, x, y) {
				dark++
			}
		}
		return dark >= 5
	default:
		return pixel(image, px, py)
	}
}

// ninePoint holds module space offsets of the center, axes and diagonals.
var ninePoint = [9][2]float64{
	{0, 0},
	{-0.25, 0}, {0.25, 0}, {0, -0.25}, {0, 0.25},
	{-0.25, -0.25}, {0.25, -0.25}, {-0.25, 0.25}, {0.25, 0.25},
}

// vote counts dark pixels on a (2r+1)^2 lattice with the given pixel step.
func vote(image *bitutil.BitMatrix, px, py float64, r int, step float64, need int) bool {
	dark := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if pixel(image, px+float64(dx)*step, py+float64(dy)*step) {
				dark++
			}
		}
	}
	return dark >= need
}

// pixel reads the pixel containing (x, y), clamped to the image.
func pixel(image *bitutil.BitMatrix, x, y float64) bool {
	ix := min(max(int(math.Floor(x)), 0), image.Width()-1)
	iy := min(max(int(math.Floor(y)), 0), image.Height()-1)
	return image.Get(ix, iy)
}

// CheckAndNudgePoints verifies that mapped points lie in the image. Points
// at most one pixel outside at either end of the row are pulled onto the
// border; anything further out is an error.
func CheckAndNudgePoints(image *bitutil.BitMatrix, points []float64) error {
	width, height := image.Width(), image.Height()
	nudge := func(offset int) (bool, error) {
		x, y := int(math.Floor(points[offset])), int(math.Floor(points[offset+1]))
		if x < -1 || x > width || y < -1 || y > height {
			return false, fmt.Errorf("%w: sample point (%d,%d) outside %dx%d image", codeglyphx.ErrNotFound, x, y, width, height)
		}
		nudged := false
		switch x {
		case -1:
			points[offset], nudged = 0, true
		case width:
			points[offset], nudged = float64(width-1), true
		}
		switch y {
		case -1:
			points[offset+1], nudged = 0, true
		case height:
			points[offset+1], nudged = float64(height-1), true
		}
		return nudged, nil
	}

	for offset, more := 0, true; offset+1 < len(points) && more; offset += 2 {
		var err error
		if more, err = nudge(offset); err != nil {
			return err
		}
	}
	for offset, more := len(points)-2, true; offset >= 0 && more; offset -= 2 {
		var err error
		if more, err = nudge(offset); err != nil {
			return err
		}
	}

	// Interior points are not nudged; they must already be inside.
	for offset := 0; offset+1 < len(points); offset += 2 {
		x, y := points[offset], points[offset+1]
		if x < 0 || y < 0 || x >= float64(width) || y >= float64(height) || math.IsNaN(x) || math.IsNaN(y) {
			return fmt.Errorf("%w: sample point (%.1f,%.1f) outside %dx%d image", codeglyphx.ErrNotFound, x, y, width, height)
		}
	}
	return nil
}
