// Package transform maps symbol module coordinates onto image pixels and
// samples module colors through that mapping.
package transform

import codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"

// Quad lists four corners in order: (0,0), (1,0), (1,1) and (0,1) of the
// unit square they correspond to.
type Quad [4]codeglyphx.ResultPoint

// Transform is a plane homography. Points are row vectors, so Map computes
// (x y 1) * A and divides by the third coordinate.
type Transform struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// QuadToQuad returns the transform taking src onto dst corner by corner.
func QuadToQuad(src, dst Quad) *Transform {
	return SquareToQuad(dst).times(QuadToSquare(src))
}

// SquareToQuad returns the transform from the unit square onto q. A
// parallelogram gives an affine transform.
func SquareToQuad(q Quad) *Transform {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return &Transform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a33: 1,
		}
	}

	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return &Transform{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// QuadToSquare returns the transform from q onto the unit square.
func QuadToSquare(q Quad) *Transform {
	return SquareToQuad(q).adjoint()
}

// adjoint is the inverse up to scale, which is all a homography needs.
func (t *Transform) adjoint() *Transform {
	return &Transform{
		a11: t.a22*t.a33 - t.a23*t.a32,
		a21: t.a23*t.a31 - t.a21*t.a33,
		a31: t.a21*t.a32 - t.a22*t.a31,
		a12: t.a13*t.a32 - t.a12*t.a33,
		a22: t.a11*t.a33 - t.a13*t.a31,
		a32: t.a12*t.a31 - t.a11*t.a32,
		a13: t.a12*t.a23 - t.a13*t.a22,
		a23: t.a13*t.a21 - t.a11*t.a23,
		a33: t.a11*t.a22 - t.a12*t.a21,
	}
}

// times returns t applied after o.
func (t *Transform) times(o *Transform) *Transform {
	return &Transform{
		a11: t.a11*o.a11 + t.a21*o.a12 + t.a31*o.a13,
		a21: t.a11*o.a21 + t.a21*o.a22 + t.a31*o.a23,
		a31: t.a11*o.a31 + t.a21*o.a32 + t.a31*o.a33,
		a12: t.a12*o.a11 + t.a22*o.a12 + t.a32*o.a13,
		a22: t.a12*o.a21 + t.a22*o.a22 + t.a32*o.a23,
		a32: t.a12*o.a31 + t.a22*o.a32 + t.a32*o.a33,
		a13: t.a13*o.a11 + t.a23*o.a12 + t.a33*o.a13,
		a23: t.a13*o.a21 + t.a23*o.a22 + t.a33*o.a23,
		a33: t.a13*o.a31 + t.a23*o.a32 + t.a33*o.a33,
	}
}

// Map transforms one point.
func (t *Transform) Map(x, y float64) (float64, float64) {
	den := t.a13*x + t.a23*y + t.a33
	return (t.a11*x + t.a21*y + t.a31) / den, (t.a12*x + t.a22*y + t.a32) / den
}

// MapPoints transforms interleaved x, y pairs in place.
func (t *Transform) MapPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		points[i], points[i+1] = t.Map(points[i], points[i+1])
	}
}
