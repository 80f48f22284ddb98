package encoder

import "github.com/EvotecIT/CodeGlyphX-sub011/bitutil"

// empty marks a cell no pattern or data bit has been written to.
const empty byte = 0xFF

// ByteMatrix is a 2D module grid used while building a symbol. Cells hold
// 0 (light), 1 (dark) or 0xFF while still empty.
type ByteMatrix struct {
	Data          [][]byte
	Width, Height int
}

// NewByteMatrix creates a new ByteMatrix.
func NewByteMatrix(width, height int) *ByteMatrix {
	data := make([][]byte, height)
	for i := range data {
		data[i] = make([]byte, width)
	}
	return &ByteMatrix{Data: data, Width: width, Height: height}
}

// Get returns the value at (x, y).
func (bm *ByteMatrix) Get(x, y int) byte { return bm.Data[y][x] }

// Set sets the value at (x, y).
func (bm *ByteMatrix) Set(x, y int, value byte) { bm.Data[y][x] = value }

// SetBool sets the value at (x, y) as 1 (true) or 0 (false).
func (bm *ByteMatrix) SetBool(x, y int, value bool) {
	if value {
		bm.Data[y][x] = 1
	} else {
		bm.Data[y][x] = 0
	}
}

// Clear fills the matrix with the given value.
func (bm *ByteMatrix) Clear(value byte) {
	for y := range bm.Data {
		for x := range bm.Data[y] {
			bm.Data[y][x] = value
		}
	}
}

// Clone returns a deep copy.
func (bm *ByteMatrix) Clone() *ByteMatrix {
	c := NewByteMatrix(bm.Width, bm.Height)
	for y := range bm.Data {
		copy(c.Data[y], bm.Data[y])
	}
	return c
}

// BitMatrix converts the grid into a BitMatrix, dark cells set.
func (bm *ByteMatrix) BitMatrix() *bitutil.BitMatrix {
	out := bitutil.NewBitMatrixWithSize(bm.Width, bm.Height)
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			if bm.Data[y][x] == 1 {
				out.Set(x, y)
			}
		}
	}
	return out
}

// ByteMatrixFromBits converts a BitMatrix into a ByteMatrix.
func ByteMatrixFromBits(bits *bitutil.BitMatrix) *ByteMatrix {
	bm := NewByteMatrix(bits.Width(), bits.Height())
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			bm.SetBool(x, y, bits.Get(x, y))
		}
	}
	return bm
}
