package internal

import (
	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// DetectorResult is a sampled module matrix with the image points it was
// located by.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []codeglyphx.ResultPoint

	// ModuleSize is the estimated module pitch in pixels.
	ModuleSize float64

	// Method names the location strategy, such as "finder" or "bounding-box".
	Method string
}

// NewDetectorResult creates a new DetectorResult.
func NewDetectorResult(bits *bitutil.BitMatrix, points []codeglyphx.ResultPoint, moduleSize float64, method string) *DetectorResult {
	return &DetectorResult{Bits: bits, Points: points, ModuleSize: moduleSize, Method: method}
}
