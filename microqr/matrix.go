package microqr

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/encoder"
)

// dataMasks are QR masks 1, 4, 6 and 7, in Micro QR mask order.
var dataMasks = [numMaskPatterns]decoder.DataMaskFunc{
	decoder.DataMasks[1],
	decoder.DataMasks[4],
	decoder.DataMasks[6],
	decoder.DataMasks[7],
}

// functionPattern marks the finder, its separator, the timing patterns and
// the format information area.
func functionPattern(version *Version) *bitutil.BitMatrix {
	dimension := version.Dimension()
	bits := bitutil.NewBitMatrix(dimension)
	bits.SetRegion(0, 0, 9, 9)
	bits.SetRegion(9, 0, dimension-9, 1)
	bits.SetRegion(0, 9, 1, dimension-9)
	return bits
}

// formatCells lists the format information cells, least significant bit
// first: column 8 rows 1 to 8, then row 8 columns 7 to 1.
func formatCells() [15][2]int {
	var cells [15][2]int
	for i := 0; i < 8; i++ {
		cells[i] = [2]int{8, i + 1}
	}
	for i := 0; i < 7; i++ {
		cells[8+i] = [2]int{7 - i, 8}
	}
	return cells
}

// dataCells returns the cells outside the function pattern in placement
// order: two-column zigzag from the bottom-right corner, starting upward.
// Column 0 holds the timing pattern, so there is no column to skip.
func dataCells(version *Version) [][2]int {
	dimension := version.Dimension()
	function := functionPattern(version)
	cells := make([][2]int, 0, dimension*dimension)
	upward := true
	for right := dimension - 1; right > 0; right -= 2 {
		for count := 0; count < dimension; count++ {
			y := count
			if upward {
				y = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				x := right - col
				if !function.Get(x, y) {
					cells = append(cells, [2]int{x, y})
				}
			}
		}
		upward = !upward
	}
	return cells
}

// buildMatrix lays out the function patterns, the format information and
// the masked codeword bits.
func buildMatrix(bits *bitutil.BitArray, version *Version, ecLevel decoder.ErrorCorrectionLevel, mask int) (*encoder.ByteMatrix, error) {
	dimension := version.Dimension()
	matrix := encoder.NewByteMatrix(dimension, dimension)

	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			ring := max(abs(x-3), abs(y-3))
			matrix.SetBool(x, y, ring != 2)
		}
	}
	for i := 8; i < dimension; i++ {
		matrix.SetBool(i, 0, i%2 == 0)
		matrix.SetBool(0, i, i%2 == 0)
	}

	word := version.FormatWord(ecLevel, mask)
	if word < 0 {
		return nil, fmt.Errorf("%w: level %s with mask %d in %s", codeglyphx.ErrInvalidInput, ecLevel, mask, version)
	}
	for i, cell := range formatCells() {
		matrix.SetBool(cell[0], cell[1], word>>uint(i)&1 == 1)
	}

	cells := dataCells(version)
	if len(cells) != bits.Size() {
		return nil, fmt.Errorf("%w: %d codeword bits for %d cells", codeglyphx.ErrInvalidInput, bits.Size(), len(cells))
	}
	maskFunc := dataMasks[mask]
	for i, cell := range cells {
		x, y := cell[0], cell[1]
		matrix.SetBool(x, y, bits.Get(i) != maskFunc(y, x))
	}
	return matrix, nil
}

// chooseMaskPattern builds the symbol under every mask concurrently and
// returns the one with the highest score. Ties go to the lowest mask.
func chooseMaskPattern(bits *bitutil.BitArray, version *Version, ecLevel decoder.ErrorCorrectionLevel) (int, *encoder.ByteMatrix, error) {
	var (
		matrices [numMaskPatterns]*encoder.ByteMatrix
		scores   [numMaskPatterns]int
		g        errgroup.Group
	)
	for i := 0; i < numMaskPatterns; i++ {
		g.Go(func() error {
			matrix, err := buildMatrix(bits, version, ecLevel, i)
			if err != nil {
				return err
			}
			matrices[i] = matrix
			scores[i] = MaskScore(matrix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best, matrices[best], nil
}

// MaskScore rates a finished symbol by the dark modules along its right
// column and bottom row, timing modules excluded. Higher is better.
func MaskScore(matrix *encoder.ByteMatrix) int {
	last := matrix.Width - 1
	sum1, sum2 := 0, 0
	for i := 1; i <= last; i++ {
		if matrix.Get(last, i) == 1 {
			sum1++
		}
		if matrix.Get(i, last) == 1 {
			sum2++
		}
	}
	return 16*min(sum1, sum2) + max(sum1, sum2)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
