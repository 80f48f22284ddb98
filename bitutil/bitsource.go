package bitutil

import (
	"errors"
	"fmt"
)

// ErrNotEnoughBits is returned by ReadBits when fewer bits remain than were
// requested. The cursor is left unchanged.
var ErrNotEnoughBits = errors.New("bitutil: not enough bits")

// BitSource reads fields of 1 to 31 bits from a byte sequence, most
// significant bit first. The readable length may end inside a byte.
type BitSource struct {
	bytes  []byte
	bitLen int
	pos    int
}

// NewBitSource creates a BitSource over every bit of bytes.
func NewBitSource(bytes []byte) *BitSource {
	return &BitSource{bytes: bytes, bitLen: len(bytes) * 8}
}

// NewBitSourceLen creates a BitSource over the first bitLen bits of bytes.
// bitLen is clamped to the bits actually present.
func NewBitSourceLen(bytes []byte, bitLen int) *BitSource {
	if bitLen < 0 {
		bitLen = 0
	}
	if bitLen > len(bytes)*8 {
		bitLen = len(bytes) * 8
	}
	return &BitSource{bytes: bytes, bitLen: bitLen}
}

// BitOffset returns the index of the next bit within the current byte.
func (bs *BitSource) BitOffset() int {
	return bs.pos & 7
}

// ByteOffset returns the index of the byte holding the next bit.
func (bs *BitSource) ByteOffset() int {
	return bs.pos >> 3
}

// Position returns the absolute index of the next bit.
func (bs *BitSource) Position() int {
	return bs.pos
}

// ReadBits reads numBits bits and returns them as the low bits of an int.
func (bs *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > MaxFieldBits {
		return 0, fmt.Errorf("%w: read of %d bits", ErrBitWidth, numBits)
	}
	if numBits > bs.Available() {
		return 0, ErrNotEnoughBits
	}

	result := 0
	for numBits > 0 {
		cur := int(bs.bytes[bs.pos>>3])
		bitsLeft := 8 - bs.pos&7
		toRead := numBits
		if toRead > bitsLeft {
			toRead = bitsLeft
		}
		shift := bitsLeft - toRead
		result = result<<uint(toRead) | (cur>>uint(shift))&(1<<uint(toRead)-1)
		bs.pos += toRead
		numBits -= toRead
	}
	return result, nil
}

// Available returns the number of bits that can still be read.
func (bs *BitSource) Available() int {
	return bs.bitLen - bs.pos
}

// RemainingZero reports whether every unread bit is zero.
func (bs *BitSource) RemainingZero() bool {
	for i := bs.pos; i < bs.bitLen; i++ {
		if bs.bytes[i>>3]&(0x80>>uint(i&7)) != 0 {
			return false
		}
	}
	return true
}
