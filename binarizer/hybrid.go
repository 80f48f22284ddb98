package binarizer

import (
	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	blockSizeMask    = blockSize - 1
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// Hybrid thresholds 8x8 blocks against the average black point of the 5x5
// surrounding blocks. Low contrast blocks inherit their neighbours' black
// point, which keeps flat areas inside large modules stable.
type Hybrid struct {
	source codeglyphx.LuminanceSource
	matrix *bitutil.BitMatrix
}

// NewHybrid creates a Hybrid binarizer.
func NewHybrid(source codeglyphx.LuminanceSource) *Hybrid {
	return &Hybrid{source: source}
}

// Name implements codeglyphx.Binarizer.
func (h *Hybrid) Name() string { return "hybrid" }

// BlackMatrix implements codeglyphx.Binarizer. The result is cached.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	width, height := h.source.Width(), h.source.Height()
	if width < minimumDimension || height < minimumDimension {
		m, err := NewGlobalHistogram(h.source).BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}

	lum := h.source.Matrix()
	subWidth := (width + blockSizeMask) >> blockSizePower
	subHeight := (height + blockSizeMask) >> blockSizePower
	blackPoints := blockBlackPoints(lum, subWidth, subHeight, width, height)

	matrix := bitutil.NewBitMatrixWithSize(width, height)
	maxYOffset, maxXOffset := height-blockSize, width-blockSize
	for y := 0; y < subHeight; y++ {
		yoffset := min(y<<blockSizePower, maxYOffset)
		top := clampBlock(y, subHeight-3)
		for x := 0; x < subWidth; x++ {
			xoffset := min(x<<blockSizePower, maxXOffset)
			left := clampBlock(x, subWidth-3)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += blackPoints[top+dy][left+dx]
				}
			}
			thresholdBlock(lum, xoffset, yoffset, sum/25, width, matrix)
		}
	}
	h.matrix = matrix
	return matrix, nil
}

// clampBlock keeps a 5x5 neighbourhood centered at value inside the grid.
func clampBlock(value, hi int) int {
	return min(max(value, 2), hi)
}

func thresholdBlock(lum []byte, xoffset, yoffset, threshold, stride int, matrix *bitutil.BitMatrix) {
	for y := 0; y < blockSize; y++ {
		offset := (yoffset+y)*stride + xoffset
		for x := 0; x < blockSize; x++ {
			if int(lum[offset+x]) <= threshold {
				matrix.Set(xoffset+x, yoffset+y)
			}
		}
	}
}

// blockBlackPoints computes one black point per block: the mean for blocks
// with enough dynamic range, otherwise half the minimum or the neighbours'
// average when that is darker.
func blockBlackPoints(lum []byte, subWidth, subHeight, width, height int) [][]int {
	maxYOffset, maxXOffset := height-blockSize, width-blockSize
	blackPoints := make([][]int, subHeight)
	for i := range blackPoints {
		blackPoints[i] = make([]int, subWidth)
	}

	for y := 0; y < subHeight; y++ {
		yoffset := min(y<<blockSizePower, maxYOffset)
		for x := 0; x < subWidth; x++ {
			xoffset := min(x<<blockSizePower, maxXOffset)
			sum, lo, hi := 0, 0xFF, 0
			for yy := 0; yy < blockSize; yy++ {
				offset := (yoffset+yy)*width + xoffset
				for xx := 0; xx < blockSize; xx++ {
					pixel := int(lum[offset+xx])
					sum += pixel
					lo = min(lo, pixel)
					hi = max(hi, pixel)
				}
			}

			average := sum >> (blockSizePower * 2)
			if hi-lo <= minDynamicRange {
				average = lo / 2
				if y > 0 && x > 0 {
					neighbours := (blackPoints[y-1][x] + 2*blackPoints[y][x-1] + blackPoints[y-1][x-1]) / 4
					if lo < neighbours {
						average = neighbours
					}
				}
			}
			blackPoints[y][x] = average
		}
	}
	return blackPoints
}
