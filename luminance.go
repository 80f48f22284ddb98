package codeglyphx

import "github.com/EvotecIT/CodeGlyphX-sub011/bitutil"

// LuminanceSource provides access to greyscale luminance values for an image.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it should be reused.
	Row(y int, row []byte) []byte

	// Matrix returns the entire luminance matrix, row major.
	Matrix() []byte

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int
}

// Binarizer converts luminance data to dark/light modules.
type Binarizer interface {
	// BlackMatrix returns the 2D matrix of dark cells.
	BlackMatrix() (*bitutil.BitMatrix, error)

	// Name describes the binarization for diagnostics.
	Name() string
}
