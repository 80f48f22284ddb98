package decoder

import (
	"fmt"
	"math/bits"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// ECB is a group of equally sized error correction blocks.
type ECB struct {
	Count         int
	DataCodewords int
}

// ECBlocks describes the block structure of one version at one level.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

// NumBlocks returns the total number of blocks.
func (ecb *ECBlocks) NumBlocks() int {
	total := 0
	for _, b := range ecb.Blocks {
		total += b.Count
	}
	return total
}

// TotalECCodewords returns the total number of error-correction codewords.
func (ecb *ECBlocks) TotalECCodewords() int {
	return ecb.ECCodewordsPerBlock * ecb.NumBlocks()
}

// TotalDataCodewords returns the number of data codewords over all blocks.
func (ecb *ECBlocks) TotalDataCodewords() int {
	total := 0
	for _, b := range ecb.Blocks {
		total += b.Count * b.DataCodewords
	}
	return total
}

// Version represents a QR code version (1-40).
type Version struct {
	Number                  int
	AlignmentPatternCenters []int
	ECBlocksArray           [4]ECBlocks // L, M, Q, H
	TotalCodewords          int
}

const (
	MinVersion = 1
	MaxVersion = 40
)

// Error correction codewords per block, indexed by level ordinal then
// version-1.
var eccCodewordsPerBlock = [4][40]int{
	{7, 10, 15, 20, 26, 18, 20, 24, 30, 18, 20, 24, 26, 30, 22, 24, 28, 30, 28, 28, 28, 28, 30, 30, 26, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	{10, 16, 26, 18, 24, 16, 18, 22, 22, 26, 30, 22, 22, 24, 24, 28, 28, 26, 26, 26, 26, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28},
	{13, 22, 18, 26, 18, 24, 18, 22, 20, 24, 28, 26, 24, 20, 30, 24, 28, 28, 26, 30, 28, 30, 30, 30, 30, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	{17, 28, 22, 16, 22, 28, 26, 26, 24, 28, 24, 28, 22, 24, 24, 30, 28, 28, 26, 28, 30, 24, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
}

// Number of error correction blocks, same indexing.
var numErrorCorrectionBlocks = [4][40]int{
	{1, 1, 1, 1, 1, 2, 2, 2, 2, 4, 4, 4, 4, 4, 6, 6, 6, 6, 7, 8, 8, 9, 9, 10, 12, 12, 12, 13, 14, 15, 16, 17, 18, 19, 19, 20, 21, 22, 24, 25},
	{1, 1, 1, 2, 2, 4, 4, 4, 5, 5, 5, 8, 9, 9, 10, 10, 11, 13, 14, 16, 17, 17, 18, 20, 21, 23, 25, 26, 28, 29, 31, 33, 35, 37, 38, 40, 43, 45, 47, 49},
	{1, 1, 2, 2, 4, 4, 6, 6, 8, 8, 8, 10, 12, 16, 12, 17, 16, 18, 21, 20, 23, 23, 25, 27, 29, 34, 34, 35, 38, 40, 43, 45, 48, 51, 53, 56, 59, 62, 65, 68},
	{1, 1, 2, 4, 4, 4, 5, 6, 8, 8, 11, 11, 16, 16, 18, 16, 19, 21, 25, 25, 25, 34, 30, 32, 35, 37, 40, 42, 45, 48, 51, 54, 57, 60, 63, 66, 70, 74, 77, 81},
}

const versionInfoPoly = 0x1F25

var (
	versions    [MaxVersion]Version
	versionBits [MaxVersion + 1]int
)

func init() {
	for i := range versions {
		versions[i] = buildVersion(i + 1)
	}
	for v := 7; v <= MaxVersion; v++ {
		versionBits[v] = v<<12 | bchRemainder(v, versionInfoPoly, 12)
	}
}

func buildVersion(number int) Version {
	raw := numRawDataModules(number) / 8
	v := Version{
		Number:                  number,
		AlignmentPatternCenters: alignmentPatternCenters(number),
		TotalCodewords:          raw,
	}
	for ec := 0; ec < 4; ec++ {
		ecc := eccCodewordsPerBlock[ec][number-1]
		numBlocks := numErrorCorrectionBlocks[ec][number-1]
		numShort := numBlocks - raw%numBlocks
		shortLen := raw / numBlocks
		blocks := []ECB{{Count: numShort, DataCodewords: shortLen - ecc}}
		if numShort < numBlocks {
			blocks = append(blocks, ECB{Count: numBlocks - numShort, DataCodewords: shortLen - ecc + 1})
		}
		v.ECBlocksArray[ec] = ECBlocks{ECCodewordsPerBlock: ecc, Blocks: blocks}
	}
	return v
}

// numRawDataModules counts the modules left for codewords after function
// patterns and format/version areas.
func numRawDataModules(number int) int {
	result := (16*number+128)*number + 64
	if number >= 2 {
		numAlign := number/7 + 2
		result -= (25*numAlign-10)*numAlign - 55
		if number >= 7 {
			result -= 36
		}
	}
	return result
}

func alignmentPatternCenters(number int) []int {
	if number == 1 {
		return nil
	}
	numAlign := number/7 + 2
	step := 26
	if number != 32 {
		step = (number*4 + numAlign*2 + 1) / (numAlign*2 - 2) * 2
	}
	centers := make([]int, numAlign)
	centers[0] = 6
	pos := 17 + 4*number - 7
	for i := numAlign - 1; i >= 1; i-- {
		centers[i] = pos
		pos -= step
	}
	return centers
}

// bchRemainder returns the check bits of value over the generator poly, for a
// code with checkBits parity bits.
func bchRemainder(value, poly, checkBits int) int {
	polyDegree := bits.Len(uint(poly)) - 1
	v := value << checkBits
	for bits.Len(uint(v))-1 >= polyDegree {
		v ^= poly << (bits.Len(uint(v)) - 1 - polyDegree)
	}
	return v
}

// DimensionForVersion returns the module dimension for this version.
func (v *Version) DimensionForVersion() int {
	return 17 + 4*v.Number
}

// ECBlocksForLevel returns the ECBlocks for the given error correction level.
func (v *Version) ECBlocksForLevel(ecLevel ErrorCorrectionLevel) *ECBlocks {
	return &v.ECBlocksArray[ecLevel.Ordinal()]
}

// NumDataCodewords returns the data capacity in codewords at ecLevel.
func (v *Version) NumDataCodewords(ecLevel ErrorCorrectionLevel) int {
	return v.ECBlocksForLevel(ecLevel).TotalDataCodewords()
}

// VersionBits returns the 18-bit version information word, or 0 below
// version 7.
func (v *Version) VersionBits() int {
	return versionBits[v.Number]
}

// BuildFunctionPattern builds a BitMatrix indicating function pattern modules.
func (v *Version) BuildFunctionPattern() *bitutil.BitMatrix {
	dimension := v.DimensionForVersion()
	bm := bitutil.NewBitMatrix(dimension)

	// Finders with separators and format areas.
	bm.SetRegion(0, 0, 9, 9)
	bm.SetRegion(dimension-8, 0, 8, 9)
	bm.SetRegion(0, dimension-8, 9, 8)

	last := len(v.AlignmentPatternCenters) - 1
	for i, cy := range v.AlignmentPatternCenters {
		for j, cx := range v.AlignmentPatternCenters {
			if overlapsFinder(i, j, last) {
				continue
			}
			bm.SetRegion(cx-2, cy-2, 5, 5)
		}
	}

	// Timing
	bm.SetRegion(6, 9, 1, dimension-17)
	bm.SetRegion(9, 6, dimension-17, 1)

	if v.Number >= 7 {
		bm.SetRegion(dimension-11, 0, 3, 6)
		bm.SetRegion(0, dimension-11, 6, 3)
	}
	return bm
}

// overlapsFinder reports whether the alignment pattern at center indexes
// (i, j) sits on a finder pattern.
func overlapsFinder(i, j, last int) bool {
	return (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0)
}

// GetVersionForNumber returns the Version for the given version number (1-40).
func GetVersionForNumber(number int) (*Version, error) {
	if number < MinVersion || number > MaxVersion {
		return nil, fmt.Errorf("%w: version %d", errInvalidVersion, number)
	}
	return &versions[number-1], nil
}

// GetProvisionalVersionForDimension returns the Version for a QR code of the given dimension.
func GetProvisionalVersionForDimension(dimension int) (*Version, error) {
	if dimension < 21 || dimension > 177 || dimension%4 != 1 {
		return nil, fmt.Errorf("%w: dimension %d", errInvalidVersion, dimension)
	}
	return GetVersionForNumber((dimension - 17) / 4)
}

// DecodeVersionInformation returns the version whose 18-bit word is nearest
// to versionBits, with the distance, or nil when no word is within 3 bits.
func DecodeVersionInformation(word int) (*Version, int) {
	bestDifference := 32
	bestVersion := 0
	for v := 7; v <= MaxVersion; v++ {
		diff := bits.OnesCount(uint(word ^ versionBits[v]))
		if diff < bestDifference {
			bestVersion = v
			bestDifference = diff
		}
	}
	if bestDifference <= 3 {
		return &versions[bestVersion-1], bestDifference
	}
	return nil, bestDifference
}
