// Package internal holds result types shared by the symbology packages.
package internal

// DecoderResult is the outcome of decoding one module matrix.
type DecoderResult struct {
	RawBytes     []byte
	NumBits      int
	Text         string
	ByteSegments [][]byte

	Version int
	ECLevel string
	Mask    int

	ErrorsCorrected int
	Mirrored        bool

	// ECIValues lists the assignment numbers in stream order.
	ECIValues []int

	StructuredAppendParity         int
	StructuredAppendSequenceNumber int
	SymbologyModifier              int
}

// NewDecoderResult creates a DecoderResult with no structured append.
func NewDecoderResult(rawBytes []byte, numBits int, text string, byteSegments [][]byte, ecLevel string) *DecoderResult {
	if numBits < 0 {
		numBits = 8 * len(rawBytes)
	}
	return &DecoderResult{
		RawBytes:                       rawBytes,
		NumBits:                        numBits,
		Text:                           text,
		ByteSegments:                   byteSegments,
		ECLevel:                        ecLevel,
		Mask:                           -1,
		StructuredAppendParity:         -1,
		StructuredAppendSequenceNumber: -1,
	}
}

// HasStructuredAppend returns true if this result has structured append info.
func (d *DecoderResult) HasStructuredAppend() bool {
	return d.StructuredAppendParity >= 0 && d.StructuredAppendSequenceNumber >= 0
}
