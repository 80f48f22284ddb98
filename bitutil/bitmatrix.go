package bitutil

import (
	"math/bits"
	"strings"
)

// BitMatrix is a packed 2D grid of bits. x is the column, y is the row, and
// the origin is the top-left corner. A set bit is a dark module or pixel.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix creates a square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a BitMatrix with the given width and height.
// Both must be positive.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseBoolMatrix creates a BitMatrix from rows of booleans. It returns nil
// for an empty or ragged input.
func ParseBoolMatrix(image [][]bool) *BitMatrix {
	height := len(image)
	if height == 0 || len(image[0]) == 0 {
		return nil
	}
	width := len(image[0])
	bm := NewBitMatrixWithSize(width, height)
	for y, row := range image {
		if len(row) != width {
			return nil
		}
		for x, v := range row {
			if v {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// ParseStringMatrix creates a BitMatrix from rows of text such as those
// produced by StringWithChars. It returns nil when rows differ in length or an
// unknown character is found.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	var rows [][]bool
	for _, line := range strings.Split(strings.ReplaceAll(repr, "\r", ""), "\n") {
		if line == "" {
			continue
		}
		var row []bool
		for len(line) > 0 {
			switch {
			case strings.HasPrefix(line, setStr):
				row = append(row, true)
				line = line[len(setStr):]
			case strings.HasPrefix(line, unsetStr):
				row = append(row, false)
				line = line[len(unsetStr):]
			default:
				return nil
			}
		}
		rows = append(rows, row)
	}
	return ParseBoolMatrix(rows)
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	offset := y*bm.rowSize + x/32
	return (bm.data[offset]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] |= 1 << uint(x&0x1f)
}

// SetTo sets or clears the bit at (x, y).
func (bm *BitMatrix) SetTo(x, y int, on bool) {
	if on {
		bm.Set(x, y)
	} else {
		bm.Unset(x, y)
	}
}

// Unset clears the bit at (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] &^= 1 << uint(x&0x1f)
}

// Flip flips the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] ^= 1 << uint(x&0x1f)
}

// FlipAll flips every bit in the matrix. Padding bits past the width are
// cleared again so Equals and the scan helpers stay exact.
func (bm *BitMatrix) FlipAll() {
	for i := range bm.data {
		bm.data[i] = ^bm.data[i]
	}
	if tail := bm.width & 0x1f; tail != 0 {
		mask := uint32(1)<<uint(tail) - 1
		for y := 0; y < bm.height; y++ {
			bm.data[y*bm.rowSize+bm.rowSize-1] &= mask
		}
	}
}

// Inverted returns a flipped copy of the matrix.
func (bm *BitMatrix) Inverted() *BitMatrix {
	c := bm.Clone()
	c.FlipAll()
	return c
}

// Transposed returns the matrix mirrored about its main diagonal.
func (bm *BitMatrix) Transposed() *BitMatrix {
	t := NewBitMatrixWithSize(bm.height, bm.width)
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				t.Set(y, x)
			}
		}
	}
	return t
}

// Clear clears all bits.
func (bm *BitMatrix) Clear() {
	for i := range bm.data {
		bm.data[i] = 0
	}
}

// SetRegion sets a rectangular region of bits. The region is clipped to the
// matrix.
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	right := min(left+width, bm.width)
	bottom := min(top+height, bm.height)
	for y := max(top, 0); y < bottom; y++ {
		offset := y * bm.rowSize
		for x := max(left, 0); x < right; x++ {
			bm.data[offset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// CountSet returns the number of set bits.
func (bm *BitMatrix) CountSet() int {
	n := 0
	for _, w := range bm.data {
		n += bits.OnesCount32(w)
	}
	return n
}

// EnclosingRectangle returns [left, top, width, height] of the enclosing
// rectangle of all set bits, or nil if all bits are unset.
func (bm *BitMatrix) EnclosingRectangle() []int {
	left := bm.width
	top := bm.height
	right := -1
	bottom := -1

	for y := 0; y < bm.height; y++ {
		for x32 := 0; x32 < bm.rowSize; x32++ {
			theBits := bm.data[y*bm.rowSize+x32]
			if theBits == 0 {
				continue
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
			if lo := x32*32 + bits.TrailingZeros32(theBits); lo < left {
				left = lo
			}
			if hi := x32*32 + 31 - bits.LeadingZeros32(theBits); hi > right {
				right = hi
			}
		}
	}

	if right < left || bottom < top {
		return nil
	}
	return []int{left, top, right - left + 1, bottom - top + 1}
}

// TopLeftOnBit returns the [x, y] of the top-left set bit, or nil if none are set.
func (bm *BitMatrix) TopLeftOnBit() []int {
	bitsOffset := 0
	for bitsOffset < len(bm.data) && bm.data[bitsOffset] == 0 {
		bitsOffset++
	}
	if bitsOffset == len(bm.data) {
		return nil
	}
	y := bitsOffset / bm.rowSize
	x := (bitsOffset%bm.rowSize)*32 + bits.TrailingZeros32(bm.data[bitsOffset])
	return []int{x, y}
}

// BottomRightOnBit returns the [x, y] of the bottom-right set bit, or nil if none are set.
func (bm *BitMatrix) BottomRightOnBit() []int {
	bitsOffset := len(bm.data) - 1
	for bitsOffset >= 0 && bm.data[bitsOffset] == 0 {
		bitsOffset--
	}
	if bitsOffset < 0 {
		return nil
	}
	y := bitsOffset / bm.rowSize
	x := (bitsOffset%bm.rowSize)*32 + 31 - bits.LeadingZeros32(bm.data[bitsOffset])
	return []int{x, y}
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// Bools returns the matrix as rows of booleans.
func (bm *BitMatrix) Bools() [][]bool {
	out := make([][]bool, bm.height)
	for y := range out {
		row := make([]bool, bm.width)
		for x := range row {
			row[x] = bm.Get(x, y)
		}
		out[y] = row
	}
	return out
}

// String returns a string representation using "X " for set and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars returns a string representation using the given set/unset strings.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width*len(setString) + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals returns true if two BitMatrices are equal.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if other == nil || bm.width != other.width || bm.height != other.height {
		return false
	}
	for i := range bm.data {
		if bm.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
