package codeglyphx

import "github.com/EvotecIT/CodeGlyphX-sub011/bitutil"

// EncodeOptions configures encoding. The zero value is usable.
type EncodeOptions struct {
	// ErrorCorrection is the level name: L, M, Q or H. Empty means L.
	ErrorCorrection string

	// MinVersion and MaxVersion bound the version search. Zero means the
	// smallest and largest version of the symbology.
	MinVersion int
	MaxVersion int

	// MaskPattern forces a mask pattern instead of penalty based selection.
	MaskPattern *int

	// Mode forces a segment mode: numeric, alphanumeric, byte or kanji.
	Mode string

	// CharacterSet specifies the character set for byte mode text. Empty
	// means UTF-8.
	CharacterSet string

	// DisableECI omits the ECI header for a non-default character set.
	DisableECI bool

	// GS1Format prefixes the data with the FNC1 first position indicator.
	GS1Format bool

	// Margin specifies the quiet zone in modules. Nil means the symbology
	// default.
	Margin *int

	// ModuleSize is the rendered size of one module in pixels. Zero means 1.
	ModuleSize int
}

// Writer encodes text into a rendered module matrix.
type Writer interface {
	// Encode returns the symbol scaled to the module size with quiet zone.
	Encode(contents string, opts *EncodeOptions) (*bitutil.BitMatrix, error)
}
