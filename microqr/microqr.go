// Package microqr reads and writes Micro QR symbols M1 to M4. It shares the
// segment, bit stream and Reed-Solomon machinery of package qrcode but has
// its own symbol tables, layout and masks.
package microqr

import (
	"fmt"
	"strings"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/encoder"
)

const defaultQuietZoneSize = 2

func init() {
	codeglyphx.RegisterReader(codeglyphx.FormatMicroQR, func() codeglyphx.Reader {
		return NewReader()
	})
	codeglyphx.RegisterWriter(codeglyphx.FormatMicroQR, func() codeglyphx.Writer {
		return NewWriter()
	})
}

// Reader decodes Micro QR module matrices.
type Reader struct {
	dec *Decoder
}

// NewReader creates a new Micro QR Reader.
func NewReader() *Reader {
	return &Reader{dec: NewDecoder()}
}

// Decode decodes a matrix with one cell per module and no quiet zone.
func Decode(bits *bitutil.BitMatrix, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	return NewReader().DecodeMatrix(bits, opts)
}

// DecodeMatrix implements codeglyphx.Reader.
func (r *Reader) DecodeMatrix(bits *bitutil.BitMatrix, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	hints := &decoder.Hints{}
	if opts != nil {
		hints.CharacterSet = opts.CharacterSet
	}
	dr, diag, err := r.dec.Decode(bits, hints)
	if err != nil {
		return nil, diag, err
	}
	result := codeglyphx.NewResult(dr.Text, dr.RawBytes, nil, codeglyphx.FormatMicroQR)
	result.NumBits = dr.NumBits
	result.Version = dr.Version
	result.ECLevel = dr.ECLevel
	result.Mask = dr.Mask
	if dr.ByteSegments != nil {
		result.PutMetadata(codeglyphx.MetadataByteSegments, dr.ByteSegments)
	}
	result.PutMetadata(codeglyphx.MetadataErrorCorrectionLevel, dr.ECLevel)
	if dr.Mirrored {
		result.PutMetadata(codeglyphx.MetadataMirrored, true)
	}
	result.PutMetadata(codeglyphx.MetadataErrorsCorrected, dr.ErrorsCorrected)
	result.PutMetadata(codeglyphx.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	return result, diag, nil
}

// Writer encodes Micro QR symbols.
type Writer struct{}

// NewWriter creates a new Micro QR Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes contents and renders it at opts.ModuleSize pixels per
// module with a quiet zone of opts.Margin modules, 2 by default.
func (w *Writer) Encode(contents string, opts *codeglyphx.EncodeOptions) (*bitutil.BitMatrix, error) {
	code, err := EncodeText(contents, opts)
	if err != nil {
		return nil, err
	}
	quietZone, moduleSize := defaultQuietZoneSize, 1
	if opts != nil {
		if opts.Margin != nil {
			quietZone = *opts.Margin
		}
		moduleSize = max(opts.ModuleSize, 1)
	}
	return encoder.RenderMatrix(code.Matrix, moduleSize, quietZone), nil
}

// EncodeText encodes contents with facade options. ECI and GS1 options are
// rejected since Micro QR cannot carry them.
func EncodeText(contents string, opts *codeglyphx.EncodeOptions) (*Code, error) {
	if opts == nil {
		opts = &codeglyphx.EncodeOptions{}
	}
	if opts.GS1Format {
		return nil, fmt.Errorf("%w: Micro QR has no FNC1 mode", codeglyphx.ErrInvalidInput)
	}
	ecLevel, err := decoder.ParseECLevel(opts.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	return Encode(contents, ecLevel, &EncodeHints{
		MinVersion:   opts.MinVersion,
		MaxVersion:   opts.MaxVersion,
		MaskPattern:  opts.MaskPattern,
		Mode:         mode,
		CharacterSet: opts.CharacterSet,
	})
}

func parseMode(name string) (decoder.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return encoder.ModeAuto, nil
	case "numeric":
		return decoder.ModeNumeric, nil
	case "alphanumeric":
		return decoder.ModeAlphanumeric, nil
	case "byte":
		return decoder.ModeByte, nil
	case "kanji":
		return decoder.ModeKanji, nil
	}
	return 0, fmt.Errorf("%w: mode %q", codeglyphx.ErrInvalidInput, name)
}
