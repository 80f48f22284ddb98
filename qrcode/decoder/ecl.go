// Package decoder implements the QR code symbol tables and decodes a module
// matrix back into its payload.
package decoder

import (
	"fmt"
	"strings"
)

// ErrorCorrectionLevel represents the four QR code error correction levels.
type ErrorCorrectionLevel int

const (
	ECLevelL ErrorCorrectionLevel = iota // ~7% correction
	ECLevelM                             // ~15% correction
	ECLevelQ                             // ~25% correction
	ECLevelH                             // ~30% correction
)

// formatBits holds the 2-bit field of each level in ordinal order.
var formatBits = [4]int{0x01, 0x00, 0x03, 0x02}

// Bits returns the 2-bit encoding of this level.
func (ecl ErrorCorrectionLevel) Bits() int {
	if ecl < ECLevelL || ecl > ECLevelH {
		return 0
	}
	return formatBits[ecl]
}

// Ordinal returns the ordinal position (L=0, M=1, Q=2, H=3).
func (ecl ErrorCorrectionLevel) Ordinal() int {
	return int(ecl)
}

// String returns the level name.
func (ecl ErrorCorrectionLevel) String() string {
	if ecl < ECLevelL || ecl > ECLevelH {
		return "?"
	}
	return "LMQH"[ecl : ecl+1]
}

// ECLevelForBits returns the ErrorCorrectionLevel for the given 2-bit value.
func ECLevelForBits(bits int) (ErrorCorrectionLevel, error) {
	for i, b := range formatBits {
		if b == bits {
			return ErrorCorrectionLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %d", errInvalidECLevel, bits)
}

// ParseECLevel parses a level name, case insensitive. Empty means L.
func ParseECLevel(name string) (ErrorCorrectionLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return 0, fmt.Errorf("%w: %q", errInvalidECLevel, name)
}
