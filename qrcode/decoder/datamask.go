package decoder

import "github.com/EvotecIT/CodeGlyphX-sub011/bitutil"

// DataMaskFunc reports whether the module at row i, column j is flipped.
type DataMaskFunc func(i, j int) bool

// DataMasks contains the 8 QR code data mask patterns, indexed by the mask
// reference in the format information.
var DataMasks = [8]DataMaskFunc{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, j int) bool { return i%2 == 0 },
	func(i, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return (i*j)%2+(i*j)%3 == 0 },
	func(i, j int) bool { return ((i*j)%2+(i*j)%3)%2 == 0 },
	func(i, j int) bool { return ((i+j)%2+(i*j)%3)%2 == 0 },
}

// UnmaskBitMatrix flips every masked cell that is not set in functionPattern.
// A nil functionPattern flips the whole matrix.
func UnmaskBitMatrix(bits, functionPattern *bitutil.BitMatrix, maskIndex int) {
	mask := DataMasks[maskIndex&0x07]
	dimension := bits.Height()
	for i := 0; i < dimension; i++ {
		for j := 0; j < dimension; j++ {
			if functionPattern != nil && functionPattern.Get(j, i) {
				continue
			}
			if mask(i, j) {
				bits.Flip(j, i)
			}
		}
	}
}
