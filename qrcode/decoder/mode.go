package decoder

import "fmt"

// Mode represents a QR code data encoding mode. The value is its 4-bit
// indicator.
type Mode int

const (
	ModeTerminator         Mode = 0x00
	ModeNumeric            Mode = 0x01
	ModeAlphanumeric       Mode = 0x02
	ModeStructuredAppend   Mode = 0x03
	ModeByte               Mode = 0x04
	ModeFNC1FirstPosition  Mode = 0x05
	ModeECI                Mode = 0x07
	ModeKanji              Mode = 0x08
	ModeFNC1SecondPosition Mode = 0x09
)

// ModeForBits returns the Mode for the given 4-bit value.
func ModeForBits(bits int) (Mode, error) {
	switch m := Mode(bits); m {
	case ModeTerminator, ModeNumeric, ModeAlphanumeric, ModeStructuredAppend,
		ModeByte, ModeFNC1FirstPosition, ModeECI, ModeKanji, ModeFNC1SecondPosition:
		return m, nil
	}
	return 0, fmt.Errorf("%w: indicator %04b", errInvalidMode, bits)
}

// CharacterCountBits returns the width of the character count field for
// this mode in the given version.
func (m Mode) CharacterCountBits(version *Version) int {
	return m.CharacterCountBitsForNumber(version.Number)
}

// CharacterCountBitsForNumber is CharacterCountBits by version number.
func (m Mode) CharacterCountBitsForNumber(number int) int {
	band := 0
	switch {
	case number >= 27:
		band = 2
	case number >= 10:
		band = 1
	}
	switch m {
	case ModeNumeric:
		return [3]int{10, 12, 14}[band]
	case ModeAlphanumeric:
		return [3]int{9, 11, 13}[band]
	case ModeByte:
		return [3]int{8, 16, 16}[band]
	case ModeKanji:
		return [3]int{8, 10, 12}[band]
	}
	return 0
}

// Bits returns the 4-bit encoding of this mode.
func (m Mode) Bits() int {
	return int(m)
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "TERMINATOR"
	case ModeNumeric:
		return "NUMERIC"
	case ModeAlphanumeric:
		return "ALPHANUMERIC"
	case ModeStructuredAppend:
		return "STRUCTURED_APPEND"
	case ModeByte:
		return "BYTE"
	case ModeFNC1FirstPosition:
		return "FNC1_FIRST_POSITION"
	case ModeECI:
		return "ECI"
	case ModeKanji:
		return "KANJI"
	case ModeFNC1SecondPosition:
		return "FNC1_SECOND_POSITION"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}
