package encoder

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

// Penalty weights of rules N1 to N4.
const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// chooseMaskPattern builds the symbol under all eight masks concurrently and
// returns the lowest penalty one. Ties go to the lowest mask index.
func chooseMaskPattern(bits *bitutil.BitArray, ecLevel decoder.ErrorCorrectionLevel, version *decoder.Version) (int, *ByteMatrix, error) {
	dimension := version.DimensionForVersion()
	var (
		matrices  [numMaskPatterns]*ByteMatrix
		penalties [numMaskPatterns]int
		g         errgroup.Group
	)
	for i := 0; i < numMaskPatterns; i++ {
		g.Go(func() error {
			matrix := NewByteMatrix(dimension, dimension)
			if err := buildMatrix(bits, ecLevel, version, i, matrix); err != nil {
				return err
			}
			matrices[i] = matrix
			penalties[i] = MaskPenalty(matrix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	best, minPenalty := 0, math.MaxInt
	for i, p := range penalties {
		if p < minPenalty {
			best, minPenalty = i, p
		}
	}
	return best, matrices[best], nil
}

// MaskPenalty returns the sum of the four penalty rules for a finished
// symbol.
func MaskPenalty(matrix *ByteMatrix) int {
	return applyMaskPenaltyRule1(matrix) +
		applyMaskPenaltyRule2(matrix) +
		applyMaskPenaltyRule3(matrix) +
		applyMaskPenaltyRule4(matrix)
}

// Rule 1: runs of five or more same colored modules in a row or column.
func applyMaskPenaltyRule1(matrix *ByteMatrix) int {
	return applyMaskPenaltyRule1Internal(matrix, true) + applyMaskPenaltyRule1Internal(matrix, false)
}

func applyMaskPenaltyRule1Internal(matrix *ByteMatrix, isHorizontal bool) int {
	penalty := 0
	iLimit, jLimit := matrix.Height, matrix.Width
	if !isHorizontal {
		iLimit, jLimit = matrix.Width, matrix.Height
	}
	for i := 0; i < iLimit; i++ {
		run := 0
		prevBit := empty
		for j := 0; j < jLimit; j++ {
			bit := matrix.Get(j, i)
			if !isHorizontal {
				bit = matrix.Get(i, j)
			}
			if bit == prevBit {
				run++
				continue
			}
			if run >= 5 {
				penalty += penaltyN1 + (run - 5)
			}
			run, prevBit = 1, bit
		}
		if run >= 5 {
			penalty += penaltyN1 + (run - 5)
		}
	}
	return penalty
}

// Rule 2: 2x2 blocks of one color.
func applyMaskPenaltyRule2(matrix *ByteMatrix) int {
	penalty := 0
	for y := 0; y < matrix.Height-1; y++ {
		row, next := matrix.Data[y], matrix.Data[y+1]
		for x := 0; x < matrix.Width-1; x++ {
			value := row[x]
			if value == row[x+1] && value == next[x] && value == next[x+1] {
				penalty += penaltyN2
			}
		}
	}
	return penalty
}

// finderLike holds the two 11 module windows of rule 3: 1011101 followed
// or preceded by four light modules.
var finderLike = [2][11]byte{
	{1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 0, 1, 1, 1, 0, 1},
}

// Rule 3: finder-like 1:1:3:1:1 patterns next to four light modules, in
// rows and columns. Windows must lie fully inside the symbol.
func applyMaskPenaltyRule3(matrix *ByteMatrix) int {
	penalty := 0
	for y := 0; y < matrix.Height; y++ {
		for x := 0; x+11 <= matrix.Width; x++ {
			for _, pattern := range finderLike {
				if matchesWindow(matrix, x, y, 1, 0, pattern) {
					penalty += penaltyN3
				}
			}
		}
	}
	for x := 0; x < matrix.Width; x++ {
		for y := 0; y+11 <= matrix.Height; y++ {
			for _, pattern := range finderLike {
				if matchesWindow(matrix, x, y, 0, 1, pattern) {
					penalty += penaltyN3
				}
			}
		}
	}
	return penalty
}

func matchesWindow(matrix *ByteMatrix, x, y, dx, dy int, pattern [11]byte) bool {
	for k, want := range pattern {
		if matrix.Get(x+k*dx, y+k*dy) != want {
			return false
		}
	}
	return true
}

// Rule 4: every full 5% the dark ratio deviates from one half.
func applyMaskPenaltyRule4(matrix *ByteMatrix) int {
	numDarkCells := 0
	for _, row := range matrix.Data {
		for _, v := range row {
			if v == 1 {
				numDarkCells++
			}
		}
	}
	// The dark percentage is truncated before counting whole 5% steps from 50.
	total := matrix.Height * matrix.Width
	percent := numDarkCells * 100 / total
	return abs(percent-50) / 5 * penaltyN4
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
