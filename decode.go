package codeglyphx

import (
	"log/slog"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// DecodeOptions configures decoding. The zero value is usable.
type DecodeOptions struct {
	// TryHarder enables larger downsampling scales on small images and a
	// wider dimension search.
	TryHarder bool

	// MaxScale caps the grayscale downsampling factor (1 to 3). Zero means 3.
	MaxScale int

	// MinContrast is the smallest max-min luminance spread a grayscale image
	// must show to be searched. Zero means 24.
	MinContrast int

	// CharacterSet names the charset for byte segments not preceded by an
	// ECI. Empty means guess from the bytes.
	CharacterSet string

	// PossibleFormats limits which formats DecodeMatrix dispatches to.
	PossibleFormats []Format

	// DisableBoundingBox skips the bounding box fallback of pixel decodes.
	DisableBoundingBox bool

	// Accept, when set, may reject a structurally valid result. The search
	// then continues with the next hypothesis.
	Accept func(*Result) bool

	// Logger receives debug traces of the pixel decode search.
	Logger *slog.Logger
}

// Reader decodes a module matrix of one symbology.
type Reader interface {
	// DecodeMatrix decodes a matrix with one module per cell and no quiet zone.
	DecodeMatrix(bits *bitutil.BitMatrix, opts *DecodeOptions) (*Result, Diagnostics, error)
}
