package qrcode

import (
	"fmt"
	"strings"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/encoder"
)

const defaultQuietZoneSize = 4

// Writer encodes QR codes.
type Writer struct{}

// NewWriter creates a new QR code Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes contents and renders it at opts.ModuleSize pixels per
// module with a quiet zone of opts.Margin modules, 4 by default.
func (w *Writer) Encode(contents string, opts *codeglyphx.EncodeOptions) (*bitutil.BitMatrix, error) {
	code, err := Encode(contents, opts)
	if err != nil {
		return nil, err
	}
	return render(code, opts), nil
}

func render(code *encoder.QRCode, opts *codeglyphx.EncodeOptions) *bitutil.BitMatrix {
	quietZone, moduleSize := defaultQuietZoneSize, 1
	if opts != nil {
		if opts.Margin != nil {
			quietZone = *opts.Margin
		}
		moduleSize = max(opts.ModuleSize, 1)
	}
	return encoder.Render(code, moduleSize, quietZone)
}

// Encode encodes text into a QR code symbol.
func Encode(contents string, opts *codeglyphx.EncodeOptions) (*encoder.QRCode, error) {
	ecLevel, hints, err := encodeHints(opts)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(contents, ecLevel, hints)
}

// EncodeBytes encodes binary data as a single byte mode segment.
func EncodeBytes(data []byte, opts *codeglyphx.EncodeOptions) (*encoder.QRCode, error) {
	ecLevel, hints, err := encodeHints(opts)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeBytes(data, ecLevel, hints)
}

func encodeHints(opts *codeglyphx.EncodeOptions) (decoder.ErrorCorrectionLevel, *encoder.EncodeHints, error) {
	if opts == nil {
		return decoder.ECLevelL, &encoder.EncodeHints{}, nil
	}
	ecLevel, err := decoder.ParseECLevel(opts.ErrorCorrection)
	if err != nil {
		return 0, nil, err
	}
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return 0, nil, err
	}
	if opts.MaskPattern != nil && (*opts.MaskPattern < 0 || *opts.MaskPattern > 7) {
		return 0, nil, fmt.Errorf("%w: mask pattern %d", codeglyphx.ErrInvalidInput, *opts.MaskPattern)
	}
	return ecLevel, &encoder.EncodeHints{
		MinVersion:   opts.MinVersion,
		MaxVersion:   opts.MaxVersion,
		MaskPattern:  opts.MaskPattern,
		Mode:         mode,
		CharacterSet: opts.CharacterSet,
		DisableECI:   opts.DisableECI,
		GS1Format:    opts.GS1Format,
	}, nil
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
