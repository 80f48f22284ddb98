package decoder

import (
	"math/bits"
	"sort"
)

const (
	formatInfoMaskQR = 0x5412
	formatInfoPoly   = 0x537

	// MaxFormatDistance is the correction radius of the (15,5) format code.
	MaxFormatDistance = 3
)

// FormatInformation encapsulates a QR code's format info (EC level + data mask).
type FormatInformation struct {
	ECLevel  ErrorCorrectionLevel
	DataMask byte
}

// formatWords holds the masked 15-bit word for each 5-bit data value.
var formatWords [32]int

func init() {
	for data := range formatWords {
		formatWords[data] = (data<<10 | bchRemainder(data, formatInfoPoly, 10)) ^ formatInfoMaskQR
	}
}

// FormatInfoWord returns the masked 15-bit format word for ecLevel and mask.
func FormatInfoWord(ecLevel ErrorCorrectionLevel, mask int) int {
	return formatWords[ecLevel.Bits()<<3|mask&0x07]
}

func newFormatInformation(data int) FormatInformation {
	ecLevel, _ := ECLevelForBits((data >> 3) & 0x03)
	return FormatInformation{ECLevel: ecLevel, DataMask: byte(data & 0x07)}
}

// FormatCandidate is a format codeword within correction distance of at
// least one of the two copies read from a symbol.
type FormatCandidate struct {
	FormatInformation
	DistanceA int
	DistanceB int
}

// MinDistance returns the distance to the nearer copy.
func (c FormatCandidate) MinDistance() int { return min(c.DistanceA, c.DistanceB) }

// MaxDistance returns the distance to the farther copy.
func (c FormatCandidate) MaxDistance() int { return max(c.DistanceA, c.DistanceB) }

func (c FormatCandidate) bothWithin() bool {
	return c.MaxDistance() <= MaxFormatDistance
}

// FormatCandidates returns every format codeword within MaxFormatDistance of
// either copy, most plausible first: agreement of both copies, then the sum,
// max and min of the distances. best is the smallest distance over all 32
// codewords.
func FormatCandidates(wordA, wordB int) (candidates []FormatCandidate, best int) {
	best = 32
	for data, target := range formatWords {
		c := FormatCandidate{
			FormatInformation: newFormatInformation(data),
			DistanceA:         bits.OnesCount(uint(wordA ^ target)),
			DistanceB:         bits.OnesCount(uint(wordB ^ target)),
		}
		best = min(best, c.MinDistance())
		if c.MinDistance() <= MaxFormatDistance {
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.bothWithin() != b.bothWithin() {
			return a.bothWithin()
		}
		if sa, sb := a.DistanceA+a.DistanceB, b.DistanceA+b.DistanceB; sa != sb {
			return sa < sb
		}
		if a.MaxDistance() != b.MaxDistance() {
			return a.MaxDistance() < b.MaxDistance()
		}
		return a.MinDistance() < b.MinDistance()
	})
	return candidates, best
}

// DecodeFormatInformation returns the most plausible format for two read
// copies, or nil when neither is within MaxFormatDistance of a codeword.
func DecodeFormatInformation(wordA, wordB int) *FormatInformation {
	candidates, _ := FormatCandidates(wordA, wordB)
	if len(candidates) == 0 {
		return nil
	}
	fi := candidates[0].FormatInformation
	return &fi
}

// FormatInfoPositions returns the (x, y) cell of each format bit, least
// significant bit first, for the copy around the top-left finder and for the
// copy split between the top-right and bottom-left finders.
func FormatInfoPositions(dimension int) (a, b [15][2]int) {
	a = [15][2]int{
		{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
		{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
	}
	for i := 0; i < 15; i++ {
		if i < 8 {
			b[i] = [2]int{dimension - 1 - i, 8}
		} else {
			b[i] = [2]int{8, dimension - 15 + i}
		}
	}
	return a, b
}

// VersionInfoPositions returns the (x, y) cell of each version bit, least
// significant first, for the top-right and bottom-left copies.
func VersionInfoPositions(dimension int) (topRight, bottomLeft [18][2]int) {
	for k := 0; k < 18; k++ {
		topRight[k] = [2]int{dimension - 11 + k%3, k / 3}
		bottomLeft[k] = [2]int{k / 3, dimension - 11 + k%3}
	}
	return topRight, bottomLeft
}
