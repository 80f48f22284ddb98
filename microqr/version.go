package microqr

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

const (
	MinVersion = 1
	MaxVersion = 4

	numMaskPatterns = 4
)

// Version is one of the Micro QR symbol versions M1 to M4.
type Version struct {
	Number int

	// ecCodewords is indexed by level ordinal L, M, Q. Zero marks a level
	// the version does not offer.
	ecCodewords [3]int

	// symbolNumbers is the 3-bit symbol number of each level in the format
	// information, -1 when unsupported.
	symbolNumbers [3]int
}

var versions = [MaxVersion]Version{
	{Number: 1, ecCodewords: [3]int{2, 0, 0}, symbolNumbers: [3]int{0, -1, -1}},
	{Number: 2, ecCodewords: [3]int{5, 6, 0}, symbolNumbers: [3]int{1, 2, -1}},
	{Number: 3, ecCodewords: [3]int{6, 8, 0}, symbolNumbers: [3]int{3, 4, -1}},
	{Number: 4, ecCodewords: [3]int{8, 10, 14}, symbolNumbers: [3]int{5, 6, 7}},
}

// Character count indicator widths per mode, indexed by version - 1.
var countBits = map[decoder.Mode][MaxVersion]int{
	decoder.ModeNumeric:      {3, 4, 5, 6},
	decoder.ModeAlphanumeric: {0, 3, 4, 5},
	decoder.ModeByte:         {0, 0, 4, 5},
	decoder.ModeKanji:        {0, 0, 3, 4},
}

// indicatorModes maps a mode indicator value onto its mode.
var indicatorModes = [4]decoder.Mode{
	decoder.ModeNumeric,
	decoder.ModeAlphanumeric,
	decoder.ModeByte,
	decoder.ModeKanji,
}

// formatWords holds the masked 15-bit format word by mask and symbol
// number.
var formatWords = [numMaskPatterns][8]int{
	{0x4445, 0x55ae, 0x6793, 0x7678, 0x06de, 0x1735, 0x2508, 0x34e3},
	{0x4172, 0x5099, 0x62a4, 0x734f, 0x03e9, 0x1202, 0x203f, 0x31d4},
	{0x4e2b, 0x5fc0, 0x6dfd, 0x7c16, 0x0cb0, 0x1d5b, 0x2f66, 0x3e8d},
	{0x4b1c, 0x5af7, 0x68ca, 0x7921, 0x0987, 0x186c, 0x2a51, 0x3bba},
}

// GetVersionForNumber returns version M1 to M4 by number.
func GetVersionForNumber(number int) (*Version, error) {
	if number < MinVersion || number > MaxVersion {
		return nil, fmt.Errorf("%w: micro version M%d", codeglyphx.ErrInvalidInput, number)
	}
	return &versions[number-1], nil
}

// VersionForDimension returns the version whose symbol is dimension modules
// wide.
func VersionForDimension(dimension int) (*Version, error) {
	if dimension < 11 || dimension > 17 || dimension%2 == 0 {
		return nil, fmt.Errorf("%w: %d is not a Micro QR dimension", codeglyphx.ErrInvalidInput, dimension)
	}
	return &versions[(dimension-9)/2-1], nil
}

// Dimension returns the side of the symbol in modules.
func (v *Version) Dimension() int { return 2*v.Number + 9 }

// Supports reports whether the version offers ecLevel.
func (v *Version) Supports(ecLevel decoder.ErrorCorrectionLevel) bool {
	return ecLevel >= decoder.ECLevelL && ecLevel <= decoder.ECLevelQ && v.ecCodewords[ecLevel] > 0
}

// ECCodewords returns the number of Reed-Solomon codewords at ecLevel, or 0.
func (v *Version) ECCodewords(ecLevel decoder.ErrorCorrectionLevel) int {
	if !v.Supports(ecLevel) {
		return 0
	}
	return v.ecCodewords[ecLevel]
}

// DataBits returns the data capacity in bits at ecLevel, or 0.
func (v *Version) DataBits(ecLevel decoder.ErrorCorrectionLevel) int {
	ecc := v.ECCodewords(ecLevel)
	if ecc == 0 {
		return 0
	}
	side := v.Dimension() - 1
	return side*side - 64 - 8*ecc
}

// DataCodewords returns the number of data codewords at ecLevel. M1 and M3
// end in a 4-bit codeword, which counts as one.
func (v *Version) DataCodewords(ecLevel decoder.ErrorCorrectionLevel) int {
	return (v.DataBits(ecLevel) + 4) / 8
}

// ModeBits returns the width of the mode indicator.
func (v *Version) ModeBits() int { return v.Number - 1 }

// TerminatorBits returns the width of the terminator.
func (v *Version) TerminatorBits() int { return 2*v.Number + 1 }

// CountBits returns the width of the character count indicator of mode, or
// 0 when the version cannot hold the mode.
func (v *Version) CountBits(mode decoder.Mode) int {
	return countBits[mode][v.Number-1]
}

// FormatWord returns the masked format word for ecLevel and mask, or -1
// when the version does not offer ecLevel.
func (v *Version) FormatWord(ecLevel decoder.ErrorCorrectionLevel, mask int) int {
	if !v.Supports(ecLevel) || mask < 0 || mask >= numMaskPatterns {
		return -1
	}
	return formatWords[mask][v.symbolNumbers[ecLevel]]
}

func (v *Version) String() string { return fmt.Sprintf("M%d", v.Number) }

func modeIndicator(mode decoder.Mode) int {
	for i, m := range indicatorModes {
		if m == mode {
			return i
		}
	}
	return -1
}
