package decoder

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// BitMatrixParser reads format, version and codewords from a module matrix.
// It never modifies the matrix.
type BitMatrixParser struct {
	bits      *bitutil.BitMatrix
	dimension int
	mirror    bool
}

// NewBitMatrixParser creates a new parser for the given BitMatrix.
func NewBitMatrixParser(bits *bitutil.BitMatrix) (*BitMatrixParser, error) {
	if bits == nil {
		return nil, fmt.Errorf("%w: nil matrix", codeglyphx.ErrInvalidInput)
	}
	dimension := bits.Height()
	if bits.Width() != dimension {
		return nil, fmt.Errorf("%w: matrix %dx%d is not square", codeglyphx.ErrInvalidInput, bits.Width(), dimension)
	}
	if dimension < 21 || dimension > 177 || dimension%4 != 1 {
		return nil, fmt.Errorf("%w: side %d is not a QR version", codeglyphx.ErrInvalidInput, dimension)
	}
	return &BitMatrixParser{bits: bits, dimension: dimension}, nil
}

// SetMirror makes later reads treat the matrix as transposed.
func (p *BitMatrixParser) SetMirror(mirror bool) {
	p.mirror = mirror
}

// Dimension returns the side of the matrix.
func (p *BitMatrixParser) Dimension() int { return p.dimension }

func (p *BitMatrixParser) get(x, y int) bool {
	if p.mirror {
		return p.bits.Get(y, x)
	}
	return p.bits.Get(x, y)
}

func (p *BitMatrixParser) readWord(cells [][2]int) int {
	word := 0
	for i := len(cells) - 1; i >= 0; i-- {
		word <<= 1
		if p.get(cells[i][0], cells[i][1]) {
			word |= 1
		}
	}
	return word
}

// ReadFormatWords returns the two raw 15-bit format information copies.
func (p *BitMatrixParser) ReadFormatWords() (wordA, wordB int) {
	a, b := FormatInfoPositions(p.dimension)
	return p.readWord(a[:]), p.readWord(b[:])
}

// ReadVersion returns the symbol version. Below version 7 it follows from
// the dimension. Otherwise either version information copy within distance
// 3 that agrees with the dimension is used; when neither does, the
// dimension decides and distance is -1.
func (p *BitMatrixParser) ReadVersion() (version *Version, distance int, err error) {
	provisional, err := GetProvisionalVersionForDimension(p.dimension)
	if err != nil {
		return nil, -1, err
	}
	if provisional.Number < 7 {
		return provisional, 0, nil
	}
	topRight, bottomLeft := VersionInfoPositions(p.dimension)
	for _, cells := range [][18][2]int{topRight, bottomLeft} {
		v, d := DecodeVersionInformation(p.readWord(cells[:]))
		if v != nil && v.DimensionForVersion() == p.dimension {
			return v, d, nil
		}
	}
	return provisional, -1, nil
}

// ReadCodewords unmasks the data region on the fly and reads the codewords
// along the two-column zigzag, skipping function modules and the vertical
// timing column.
func (p *BitMatrixParser) ReadCodewords(version *Version, mask int) ([]byte, error) {
	if version.DimensionForVersion() != p.dimension {
		return nil, fmt.Errorf("%w: version %d does not fit side %d", errInvalidVersion, version.Number, p.dimension)
	}
	functionPattern := version.BuildFunctionPattern()
	maskFunc := DataMasks[mask&0x07]

	result := make([]byte, version.TotalCodewords)
	offset := 0
	current := 0
	bitsRead := 0
	readingUp := true
	dimension := p.dimension

	for right := dimension - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for count := 0; count < dimension; count++ {
			y := count
			if readingUp {
				y = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				x := right - col
				if functionPattern.Get(x, y) || offset == len(result) {
					continue
				}
				bit := p.get(x, y) != maskFunc(y, x)
				current <<= 1
				if bit {
					current |= 1
				}
				bitsRead++
				if bitsRead == 8 {
					result[offset] = byte(current)
					offset++
					current, bitsRead = 0, 0
				}
			}
		}
		readingUp = !readingUp
	}

	if offset != version.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d of %d codewords", codeglyphx.ErrPayloadMalformed, offset, version.TotalCodewords)
	}
	return result, nil
}
