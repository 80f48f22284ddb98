package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(3, 5)
	if !bm.Get(3, 5) {
		t.Error("bit (3,5) should be set")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
}

func TestBitMatrixFlip(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Flip(1, 2)
	if !bm.Get(1, 2) {
		t.Error("bit should be set after flip")
	}
	bm.Flip(1, 2)
	if bm.Get(1, 2) {
		t.Error("bit should be unset after double flip")
	}
}

func TestBitMatrixUnset(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Set(2, 3)
	bm.Unset(2, 3)
	if bm.Get(2, 3) {
		t.Error("bit should be unset")
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.SetRegion(2, 2, 4, 4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			expected := x >= 2 && x < 6 && y >= 2 && y < 6
			if bm.Get(x, y) != expected {
				t.Errorf("(%d,%d) = %v, want %v", x, y, bm.Get(x, y), expected)
			}
		}
	}
}

func TestBitMatrixFlipAllKeepsPadding(t *testing.T) {
	bm := NewBitMatrixWithSize(21, 21)
	bm.Set(0, 0)
	bm.FlipAll()
	if bm.Get(0, 0) || !bm.Get(20, 20) {
		t.Error("FlipAll did not invert modules")
	}
	if got, want := bm.CountSet(), 21*21-1; got != want {
		t.Errorf("CountSet = %d, want %d", got, want)
	}
	if !bm.Inverted().Equals(func() *BitMatrix { m := NewBitMatrix(21); m.Set(0, 0); return m }()) {
		t.Error("double inversion should restore the matrix")
	}
}

func TestBitMatrixTransposed(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 3)
	bm.Set(3, 0)
	tr := bm.Transposed()
	if tr.Width() != 3 || tr.Height() != 4 {
		t.Fatalf("dimensions after transpose: %dx%d, want 3x4", tr.Width(), tr.Height())
	}
	if !tr.Get(0, 3) {
		t.Error("(0,3) should be set after transpose")
	}
}

func TestParseStringMatrix(t *testing.T) {
	bm := ParseStringMatrix("X X \n  X \n", "X ", "  ")
	if bm == nil {
		t.Fatal("parse failed")
	}
	if bm.Width() != 2 || bm.Height() != 2 {
		t.Fatalf("size %dx%d, want 2x2", bm.Width(), bm.Height())
	}
	if !bm.Get(0, 0) || !bm.Get(1, 0) || bm.Get(0, 1) || !bm.Get(1, 1) {
		t.Errorf("unexpected bits:\n%s", bm)
	}
	if got := ParseStringMatrix(bm.String(), "X ", "  "); !got.Equals(bm) {
		t.Error("String/ParseStringMatrix round trip differs")
	}
	if ParseStringMatrix("X X \nX \n", "X ", "  ") != nil {
		t.Error("ragged rows should be rejected")
	}
}

func TestParseBoolMatrix(t *testing.T) {
	bm := ParseBoolMatrix([][]bool{{true, false}, {false, true}})
	if bm == nil || !bm.Get(0, 0) || bm.Get(1, 0) || !bm.Get(1, 1) {
		t.Fatal("unexpected matrix")
	}
	rows := bm.Bools()
	if !rows[1][1] || rows[0][1] {
		t.Errorf("Bools() = %v", rows)
	}
	if ParseBoolMatrix(nil) != nil {
		t.Error("empty input should give nil")
	}
}

func TestBitMatrixEnclosingRectangle(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(3, 2)
	bm.Set(7, 8)
	rect := bm.EnclosingRectangle()
	if rect == nil {
		t.Fatal("rect should not be nil")
	}
	if rect[0] != 3 || rect[1] != 2 || rect[2] != 5 || rect[3] != 7 {
		t.Errorf("rect = %v, want [3 2 5 7]", rect)
	}
}

func TestBitMatrixTopLeftOnBit(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(5, 3)
	pt := bm.TopLeftOnBit()
	if pt == nil || pt[0] != 5 || pt[1] != 3 {
		t.Errorf("TopLeftOnBit = %v, want [5 3]", pt)
	}
}

func TestBitMatrixClone(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Error("modifying clone should not affect original")
	}
}

func TestBitMatrixEquals(t *testing.T) {
	a := NewBitMatrixWithSize(4, 4)
	b := NewBitMatrixWithSize(4, 4)
	a.Set(1, 2)
	b.Set(1, 2)
	if !a.Equals(b) {
		t.Error("equal matrices should be equal")
	}
	b.Set(3, 3)
	if a.Equals(b) {
		t.Error("different matrices should not be equal")
	}
}
