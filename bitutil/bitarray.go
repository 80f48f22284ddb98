// Package bitutil provides the bit-level building blocks of the codec: a
// growable bit buffer for building codeword streams, a bit reader for parsing
// them, and a packed boolean matrix for modules and binarized images.
package bitutil

import (
	"errors"
	"fmt"
	"strings"
)

// MaxFieldBits is the widest field AppendBits and ReadBits accept.
const MaxFieldBits = 31

// ErrBitWidth is returned when a field width is out of range or a value does
// not fit in the requested width.
var ErrBitWidth = errors.New("bitutil: invalid bit width")

// BitArray is an append-only buffer of bits stored most significant bit
// first, so the backing bytes are the codeword stream itself. Bits at or past
// Size are always zero.
type BitArray struct {
	data []byte
	size int
}

// NewBitArray creates a BitArray holding size zero bits.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{data: make([]byte, (size+7)/8), size: size}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// SizeInBytes returns the number of bytes needed to hold the bits.
func (ba *BitArray) SizeInBytes() int {
	return (ba.size + 7) / 8
}

// grow extends the array by n zero bits.
func (ba *BitArray) grow(n int) {
	ba.size += n
	for len(ba.data) < ba.SizeInBytes() {
		ba.data = append(ba.data, 0)
	}
}

func bitMask(i int) byte { return 0x80 >> uint(i&7) }

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return ba.data[i>>3]&bitMask(i) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.data[i>>3] |= bitMask(i)
}

// AppendBit appends a single bit.
func (ba *BitArray) AppendBit(bit bool) {
	i := ba.size
	ba.grow(1)
	if bit {
		ba.Set(i)
	}
}

// AppendBits appends the low numBits bits of value, most significant first.
// numBits must be in [0, MaxFieldBits] and value must fit in numBits bits.
func (ba *BitArray) AppendBits(value uint32, numBits int) error {
	if numBits < 0 || numBits > MaxFieldBits {
		return fmt.Errorf("%w: %d bits", ErrBitWidth, numBits)
	}
	if value>>uint(numBits) != 0 {
		return fmt.Errorf("%w: value %d does not fit in %d bits", ErrBitWidth, value, numBits)
	}
	start := ba.size
	ba.grow(numBits)
	for k := 0; k < numBits; k++ {
		if value&(1<<uint(numBits-1-k)) != 0 {
			ba.Set(start + k)
		}
	}
	return nil
}

// AppendBitArray appends the bits of other.
func (ba *BitArray) AppendBitArray(other *BitArray) {
	start := ba.size
	ba.grow(other.size)
	if start&7 == 0 {
		copy(ba.data[start>>3:], other.data[:other.SizeInBytes()])
		return
	}
	for i := 0; i < other.size; i++ {
		if other.Get(i) {
			ba.Set(start + i)
		}
	}
}

// ToBytes packs numBytes bytes starting at bitOffset into array[offset:].
// Bits past Size read as zero.
func (ba *BitArray) ToBytes(bitOffset int, array []byte, offset, numBytes int) {
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			if pos := bitOffset + 8*i + j; pos < ba.size && ba.Get(pos) {
				b |= bitMask(j)
			}
		}
		array[offset+i] = b
	}
}

// Bytes returns a copy of the bits packed into SizeInBytes bytes; a trailing
// partial byte is zero filled.
func (ba *BitArray) Bytes() []byte {
	out := make([]byte, ba.SizeInBytes())
	copy(out, ba.data)
	return out
}

// Clone returns a copy of this BitArray.
func (ba *BitArray) Clone() *BitArray {
	return &BitArray{data: ba.Bytes(), size: ba.size}
}

// String returns the bits as 'X' and '.', grouped by byte.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size + ba.size/8 + 1)
	for i := 0; i < ba.size; i++ {
		if i&7 == 0 {
			sb.WriteByte(' ')
		}
		if ba.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
