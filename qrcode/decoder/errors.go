package decoder

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

var (
	errInvalidECLevel = fmt.Errorf("%w: invalid error correction level", codeglyphx.ErrInvalidInput)
	errInvalidMode    = fmt.Errorf("%w: invalid mode", codeglyphx.ErrPayloadMalformed)
	errInvalidVersion = fmt.Errorf("%w: invalid version", codeglyphx.ErrInvalidInput)
)
