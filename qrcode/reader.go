// Package qrcode provides QR code reading and writing.
package qrcode

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

// Reader decodes QR codes from module matrices and pixel buffers. It holds
// no per-call state and is safe for concurrent use.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a new QR code Reader.
func NewReader() *Reader {
	return &Reader{
		dec: decoder.NewDecoder(),
	}
}

// DecodeMatrix decodes a matrix with one cell per module and no quiet zone.
func DecodeMatrix(bits *bitutil.BitMatrix, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	return NewReader().DecodeMatrix(bits, opts)
}

// DecodeMatrix implements codeglyphx.Reader.
func (r *Reader) DecodeMatrix(bits *bitutil.BitMatrix, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	if bits == nil {
		diag := codeglyphx.NewDiagnostics()
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, fmt.Errorf("%w: nil matrix", codeglyphx.ErrInvalidInput)
	}
	dr, diag, err := r.dec.Decode(bits, decoderHints(opts))
	if err != nil {
		return nil, diag, err
	}
	return newResult(dr, nil), diag, nil
}

func decoderHints(opts *codeglyphx.DecodeOptions) *decoder.Hints {
	if opts == nil {
		return &decoder.Hints{}
	}
	return &decoder.Hints{CharacterSet: opts.CharacterSet}
}

func newResult(dr *internal.DecoderResult, points []codeglyphx.ResultPoint) *codeglyphx.Result {
	result := codeglyphx.NewResult(dr.Text, dr.RawBytes, points, codeglyphx.FormatQRCode)
	result.NumBits = dr.NumBits
	result.Version = dr.Version
	result.ECLevel = dr.ECLevel
	result.Mask = dr.Mask
	populateMetadata(result, dr)
	return result
}

func populateMetadata(result *codeglyphx.Result, dr *internal.DecoderResult) {
	if dr.ByteSegments != nil {
		result.PutMetadata(codeglyphx.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		result.PutMetadata(codeglyphx.MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	if dr.HasStructuredAppend() {
		result.PutMetadata(codeglyphx.MetadataStructuredAppendSequence, dr.StructuredAppendSequenceNumber)
		result.PutMetadata(codeglyphx.MetadataStructuredAppendParity, dr.StructuredAppendParity)
	}
	if dr.Mirrored {
		result.PutMetadata(codeglyphx.MetadataMirrored, true)
	}
	result.PutMetadata(codeglyphx.MetadataErrorsCorrected, dr.ErrorsCorrected)
	result.PutMetadata(codeglyphx.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
}
