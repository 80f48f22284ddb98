// Package codeglyphx is a QR Code and Micro QR codec. This package holds the
// shared result, option and error types; the symbologies live in the qrcode
// and microqr packages.
package codeglyphx

import (
	"math"
	"time"
)

// Format represents a symbology.
type Format int

const (
	FormatQRCode Format = iota
	FormatMicroQR
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatQRCode:
		return "QR_CODE"
	case FormatMicroQR:
		return "MICRO_QR_CODE"
	default:
		return "UNKNOWN"
	}
}

// ResultMetadataKey identifies a type of metadata about a decode result.
type ResultMetadataKey int

const (
	MetadataOther ResultMetadataKey = iota
	MetadataByteSegments
	MetadataErrorCorrectionLevel
	MetadataErrorsCorrected
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	MetadataSymbologyIdentifier
	MetadataMirrored
)

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y))
}

// SquaredDistance returns the squared distance between two points.
func SquaredDistance(a, b ResultPoint) float64 {
	return (a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y)
}

// CrossProductZ computes the z component of the cross product between vectors
// (bX-aX, bY-aY) and (cX-aX, cY-aY).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder centers as top-left, top-right,
// bottom-left. Top-left is opposite the longest side; the other two are
// swapped when the winding is negative.
func OrderBestPatterns(patterns [3]ResultPoint) [3]ResultPoint {
	d01 := SquaredDistance(patterns[0], patterns[1])
	d12 := SquaredDistance(patterns[1], patterns[2])
	d02 := SquaredDistance(patterns[0], patterns[2])

	var topLeft, b, c ResultPoint
	switch {
	case d12 >= d01 && d12 >= d02:
		topLeft, b, c = patterns[0], patterns[1], patterns[2]
	case d02 >= d01 && d02 >= d12:
		topLeft, b, c = patterns[1], patterns[0], patterns[2]
	default:
		topLeft, b, c = patterns[2], patterns[0], patterns[1]
	}

	if CrossProductZ(topLeft, b, c) < 0 {
		b, c = c, b
	}
	return [3]ResultPoint{topLeft, b, c}
}

// Result encapsulates a decoded symbol.
type Result struct {
	Text     string
	RawBytes []byte
	NumBits  int

	Version int
	ECLevel string
	Mask    int

	Points    []ResultPoint
	Format    Format
	Metadata  map[ResultMetadataKey]interface{}
	Timestamp time.Time
}

// NewResult creates a new Result with the given text, format, and points.
func NewResult(text string, rawBytes []byte, points []ResultPoint, format Format) *Result {
	numBits := 0
	if rawBytes != nil {
		numBits = 8 * len(rawBytes)
	}
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   numBits,
		Mask:      -1,
		Points:    points,
		Format:    format,
		Metadata:  make(map[ResultMetadataKey]interface{}),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value interface{}) {
	r.Metadata[key] = value
}

// AddResultPoints appends additional result points.
func (r *Result) AddResultPoints(points []ResultPoint) {
	r.Points = append(r.Points, points...)
}

// ByteSegments returns the raw byte mode segments, if any were decoded.
func (r *Result) ByteSegments() [][]byte {
	segs, _ := r.Metadata[MetadataByteSegments].([][]byte)
	return segs
}
