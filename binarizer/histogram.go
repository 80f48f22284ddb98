package binarizer

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// GlobalHistogram picks one black point from a coarse histogram of the
// central region. Hybrid falls back to it on small images.
type GlobalHistogram struct {
	source codeglyphx.LuminanceSource
}

// NewGlobalHistogram creates a GlobalHistogram binarizer.
func NewGlobalHistogram(source codeglyphx.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

// BlackMatrix implements codeglyphx.Binarizer.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := g.source.Width(), g.source.Height()

	// Sample four rows across the middle three fifths.
	var buckets [luminanceBuckets]int
	row := make([]byte, width)
	for i := 1; i < 5; i++ {
		row = g.source.Row(height*i/5, row)
		for x := width / 5; x < width*4/5; x++ {
			buckets[row[x]>>luminanceShift]++
		}
	}
	blackPoint, err := estimateBlackPoint(buckets[:])
	if err != nil {
		return nil, err
	}

	lum := g.source.Matrix()
	matrix := bitutil.NewBitMatrixWithSize(width, height)
	for y := 0; y < height; y++ {
		for x, l := range lum[y*width : (y+1)*width] {
			if int(l) < blackPoint {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

// Name implements codeglyphx.Binarizer.
func (g *GlobalHistogram) Name() string { return "histogram" }

// estimateBlackPoint finds the two tallest well separated peaks and returns
// the deepest valley between them, favouring the dark side.
func estimateBlackPoint(buckets []int) (int, error) {
	numBuckets := len(buckets)
	maxBucketCount, firstPeak := 0, 0
	for x, c := range buckets {
		if c > maxBucketCount {
			firstPeak, maxBucketCount = x, c
		}
	}

	secondPeak, secondPeakScore := 0, 0
	for x, c := range buckets {
		dist := x - firstPeak
		if score := c * dist * dist; score > secondPeakScore {
			secondPeak, secondPeakScore = x, score
		}
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}
	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, fmt.Errorf("%w: flat luminance histogram", codeglyphx.ErrNotFound)
	}

	bestValley, bestValleyScore := secondPeak-1, -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley, bestValleyScore = x, score
		}
	}
	return bestValley << luminanceShift, nil
}
