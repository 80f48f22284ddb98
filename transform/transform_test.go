package transform

import (
	"context"
	"errors"
	"math"
	"testing"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

func pt(x, y float64) codeglyphx.ResultPoint { return codeglyphx.ResultPoint{X: x, Y: y} }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestQuadToQuadCorners(t *testing.T) {
	src := Quad{pt(3.5, 3.5), pt(17.5, 3.5), pt(14.5, 14.5), pt(3.5, 17.5)}
	dst := Quad{pt(40, 52), pt(301, 70), pt(250, 268), pt(31, 310)}
	tr := QuadToQuad(src, dst)
	for i := range src {
		x, y := tr.Map(src[i].X, src[i].Y)
		if !near(x, dst[i].X) || !near(y, dst[i].Y) {
			t.Errorf("corner %d maps to (%.4f,%.4f), want (%.1f,%.1f)", i, x, y, dst[i].X, dst[i].Y)
		}
	}

	back := QuadToQuad(dst, src)
	x, y := tr.Map(9, 11)
	x, y = back.Map(x, y)
	if !near(x, 9) || !near(y, 11) {
		t.Errorf("round trip gives (%.4f,%.4f), want (9,11)", x, y)
	}
}

func TestSquareToQuadAffine(t *testing.T) {
	tr := SquareToQuad(Quad{pt(10, 20), pt(30, 20), pt(30, 60), pt(10, 60)})
	x, y := tr.Map(0.5, 0.5)
	if !near(x, 20) || !near(y, 40) {
		t.Errorf("center maps to (%.3f,%.3f), want (20,40)", x, y)
	}
	points := []float64{0, 0, 1, 1}
	tr.MapPoints(points)
	if !near(points[0], 10) || !near(points[1], 20) || !near(points[2], 30) || !near(points[3], 60) {
		t.Errorf("MapPoints = %v", points)
	}
}

func TestWindowForModuleSize(t *testing.T) {
	tests := []struct {
		size float64
		want Window
	}{
		{1, WindowPoint},
		{2.9, WindowPoint},
		{3, Window3x3},
		{5.5, Window3x3},
		{6, Window5x5},
		{9.9, Window5x5},
		{10, Window9Point},
		{25, Window9Point},
	}
	for _, tt := range tests {
		if got := WindowForModuleSize(tt.size); got != tt.want {
			t.Errorf("WindowForModuleSize(%.1f) = %s, want %s", tt.size, got, tt.want)
		}
	}
}

// renderModules draws a pattern at scale pixels per module with an offset.
func renderModules(modules *bitutil.BitMatrix, scale, offset int) *bitutil.BitMatrix {
	side := modules.Width()*scale + 2*offset
	img := bitutil.NewBitMatrix(side)
	for y := 0; y < modules.Height(); y++ {
		for x := 0; x < modules.Width(); x++ {
			if modules.Get(x, y) {
				img.SetRegion(offset+x*scale, offset+y*scale, scale, scale)
			}
		}
	}
	return img
}

func testPattern(dimension int) *bitutil.BitMatrix {
	m := bitutil.NewBitMatrix(dimension)
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			if (x*7+y*3+x*y)%5 < 2 {
				m.Set(x, y)
			}
		}
	}
	return m
}

func TestGridSamplerWindows(t *testing.T) {
	const dimension = 21
	modules := testPattern(dimension)
	for _, scale := range []int{1, 4, 7, 12} {
		offset := 2 * scale
		img := renderModules(modules, scale, offset)
		o, d := float64(offset), float64(offset+dimension*scale)
		tr := QuadToQuad(
			Quad{pt(0, 0), pt(dimension, 0), pt(dimension, dimension), pt(0, dimension)},
			Quad{pt(o, o), pt(d, o), pt(d, d), pt(o, d)},
		)
		sampler := NewGridSampler(float64(scale))
		got, err := sampler.SampleGrid(context.Background(), img, dimension, tr)
		if err != nil {
			t.Fatalf("scale %d: %v", scale, err)
		}
		if !got.Equals(modules) {
			t.Errorf("scale %d (%s): sampled grid differs", scale, sampler.Window)
		}
	}
}

func TestGridSamplerMajorityIgnoresSpeckle(t *testing.T) {
	const dimension = 21
	modules := testPattern(dimension)
	img := renderModules(modules, 6, 0)
	// Flip the center pixel of every module.
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			img.Flip(x*6+3, y*6+3)
		}
	}
	tr := QuadToQuad(
		Quad{pt(0, 0), pt(dimension, 0), pt(dimension, dimension), pt(0, dimension)},
		Quad{pt(0, 0), pt(126, 0), pt(126, 126), pt(0, 126)},
	)
	got, err := NewGridSampler(6).SampleGrid(context.Background(), img, dimension, tr)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(modules) {
		t.Error("a single flipped pixel changed the majority")
	}
}

func TestGridSamplerErrors(t *testing.T) {
	img := bitutil.NewBitMatrix(50)
	inside := QuadToQuad(
		Quad{pt(0, 0), pt(21, 0), pt(21, 21), pt(0, 21)},
		Quad{pt(2, 2), pt(44, 2), pt(44, 44), pt(2, 44)},
	)
	outside := QuadToQuad(
		Quad{pt(0, 0), pt(21, 0), pt(21, 21), pt(0, 21)},
		Quad{pt(2, 2), pt(90, 2), pt(90, 90), pt(2, 90)},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tests := []struct {
		name string
		ctx  context.Context
		dim  int
		tr   *Transform
		want error
	}{
		{"cancelled", ctx, 21, inside, codeglyphx.ErrCancelled},
		{"outside", context.Background(), 21, outside, codeglyphx.ErrNotFound},
		{"zero dimension", context.Background(), 0, inside, codeglyphx.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGridSampler(2).SampleGrid(tt.ctx, img, tt.dim, tt.tr)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	_, err := NewGridSampler(2).SampleGrid(ctx, img, 21, inside)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error %v does not wrap context.Canceled", err)
	}
}

func TestCheckAndNudgePoints(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	points := []float64{-0.5, 3, 4, 4, 10.2, 9}
	if err := CheckAndNudgePoints(img, points); err != nil {
		t.Fatal(err)
	}
	if points[0] != 0 || points[4] != 9 {
		t.Errorf("points not nudged: %v", points)
	}
	if err := CheckAndNudgePoints(img, []float64{-3, 0}); !errors.Is(err, codeglyphx.ErrNotFound) {
		t.Errorf("far point: err = %v", err)
	}
}
