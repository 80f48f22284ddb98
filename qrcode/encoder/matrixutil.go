package encoder

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

// Position detection pattern (7x7 finder pattern)
var positionDetectionPattern = [7][7]byte{
	{1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 1, 1, 1, 1, 1, 1},
}

// Position adjustment pattern (5x5 alignment pattern)
var positionAdjustmentPattern = [5][5]byte{
	{1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1},
	{1, 0, 1, 0, 1},
	{1, 0, 0, 0, 1},
	{1, 1, 1, 1, 1},
}

// buildMatrix lays out function patterns, format and version information
// and the masked data bits.
func buildMatrix(dataBits *bitutil.BitArray, ecLevel decoder.ErrorCorrectionLevel,
	version *decoder.Version, maskPattern int, matrix *ByteMatrix) error {

	matrix.Clear(empty)
	embedBasicPatterns(version, matrix)
	embedFormatInfo(ecLevel, maskPattern, matrix)
	embedVersionInfo(version, matrix)
	return embedDataBits(dataBits, maskPattern, matrix)
}

func embedBasicPatterns(version *decoder.Version, matrix *ByteMatrix) {
	dimension := matrix.Width
	for _, corner := range [3][2]int{{0, 0}, {dimension - 7, 0}, {0, dimension - 7}} {
		embedPositionDetectionPattern(corner[0], corner[1], matrix)
	}

	// Separators
	embedHorizontalSeparator(0, 7, matrix)
	embedHorizontalSeparator(dimension-8, 7, matrix)
	embedHorizontalSeparator(0, dimension-8, matrix)
	embedVerticalSeparator(7, 0, matrix)
	embedVerticalSeparator(dimension-8, 0, matrix)
	embedVerticalSeparator(7, dimension-7, matrix)

	embedPositionAdjustmentPatterns(version, matrix)
	embedTimingPatterns(matrix)

	// Dark module
	matrix.Set(8, dimension-8, 1)
}

func embedPositionDetectionPattern(xStart, yStart int, matrix *ByteMatrix) {
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			matrix.Set(xStart+x, yStart+y, positionDetectionPattern[y][x])
		}
	}
}

func embedHorizontalSeparator(xStart, yStart int, matrix *ByteMatrix) {
	for x := 0; x < 8; x++ {
		matrix.Set(xStart+x, yStart, 0)
	}
}

func embedVerticalSeparator(xStart, yStart int, matrix *ByteMatrix) {
	for y := 0; y < 7; y++ {
		matrix.Set(xStart, yStart+y, 0)
	}
}

// embedPositionAdjustmentPatterns skips centers whose cell a finder already
// covers.
func embedPositionAdjustmentPatterns(version *decoder.Version, matrix *ByteMatrix) {
	centers := version.AlignmentPatternCenters
	for _, cy := range centers {
		for _, cx := range centers {
			if matrix.Get(cx, cy) != empty {
				continue
			}
			for y := 0; y < 5; y++ {
				for x := 0; x < 5; x++ {
					matrix.Set(cx-2+x, cy-2+y, positionAdjustmentPattern[y][x])
				}
			}
		}
	}
}

func embedTimingPatterns(matrix *ByteMatrix) {
	for i := 8; i < matrix.Width-8; i++ {
		bit := byte((i + 1) % 2)
		if matrix.Get(i, 6) == empty {
			matrix.Set(i, 6, bit)
		}
		if matrix.Get(6, i) == empty {
			matrix.Set(6, i, bit)
		}
	}
}

func embedFormatInfo(ecLevel decoder.ErrorCorrectionLevel, maskPattern int, matrix *ByteMatrix) {
	word := decoder.FormatInfoWord(ecLevel, maskPattern)
	a, b := decoder.FormatInfoPositions(matrix.Width)
	for i := 0; i < 15; i++ {
		bit := byte(word>>uint(i)) & 1
		matrix.Set(a[i][0], a[i][1], bit)
		matrix.Set(b[i][0], b[i][1], bit)
	}
}

func embedVersionInfo(version *decoder.Version, matrix *ByteMatrix) {
	if version.Number < 7 {
		return
	}
	word := version.VersionBits()
	topRight, bottomLeft := decoder.VersionInfoPositions(matrix.Width)
	for k := 0; k < 18; k++ {
		bit := byte(word>>uint(k)) & 1
		matrix.Set(topRight[k][0], topRight[k][1], bit)
		matrix.Set(bottomLeft[k][0], bottomLeft[k][1], bit)
	}
}

// embedDataBits fills the empty cells along the two-column zigzag from the
// bottom-right corner, skipping the vertical timing column. Remainder cells
// past the data are light before masking.
func embedDataBits(dataBits *bitutil.BitArray, maskPattern int, matrix *ByteMatrix) error {
	mask := decoder.DataMasks[maskPattern]
	bitIndex := 0
	dimension := matrix.Height
	upward := true

	for right := dimension - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for count := 0; count < dimension; count++ {
			y := count
			if upward {
				y = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				x := right - col
				if matrix.Get(x, y) != empty {
					continue
				}
				bit := false
				if bitIndex < dataBits.Size() {
					bit = dataBits.Get(bitIndex)
					bitIndex++
				}
				matrix.SetBool(x, y, bit != mask(y, x))
			}
		}
		upward = !upward
	}

	if bitIndex != dataBits.Size() {
		return fmt.Errorf("%w: placed %d of %d data bits", codeglyphx.ErrInvalidInput, bitIndex, dataBits.Size())
	}
	return nil
}
