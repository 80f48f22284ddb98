package encoder

import (
	"fmt"
	"unicode/utf8"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/charset"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

// ModeAuto lets ChooseMode pick the segment mode. It is the zero Mode.
const ModeAuto = decoder.ModeTerminator

// Segment is one mode run of the data bit stream.
type Segment struct {
	Mode decoder.Mode

	// Data holds ASCII digits or characters for numeric and alphanumeric
	// segments, raw bytes for byte segments and Shift_JIS pairs for kanji.
	Data []byte

	// Count is the value of the character count indicator.
	Count int

	// ECI is the assignment number of an ECI segment.
	ECI int
}

// alphanumericTable maps ASCII values to alphanumeric codes.
var alphanumericTable = [128]int8{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	36, -1, -1, -1, 37, 38, -1, -1, -1, -1, 39, 40, -1, 41, 42, 43,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 44, -1, -1, -1, -1, -1,
	-1, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
}

// GetAlphanumericCode returns the alphanumeric code for a character, or -1.
func GetAlphanumericCode(c rune) int {
	if c >= 0 && c < 128 {
		return int(alphanumericTable[c])
	}
	return -1
}

// ChooseMode picks the most compact single mode for content: numeric,
// alphanumeric, kanji for text made only of Shift_JIS kanji, else byte.
func ChooseMode(content string) decoder.Mode {
	if content == "" {
		return decoder.ModeByte
	}
	numeric, alphanumeric := true, true
	for _, c := range content {
		if c < '0' || c > '9' {
			numeric = false
		}
		if GetAlphanumericCode(c) == -1 {
			alphanumeric = false
		}
	}
	switch {
	case numeric:
		return decoder.ModeNumeric
	case alphanumeric:
		return decoder.ModeAlphanumeric
	case isOnlyDoubleByteKanji(content):
		return decoder.ModeKanji
	}
	return decoder.ModeByte
}

func isOnlyDoubleByteKanji(content string) bool {
	if content == "" {
		return false
	}
	sjis, err := charset.ECISJIS.Encode(content)
	if err != nil || len(sjis)%2 != 0 || len(sjis) != 2*utf8.RuneCountInString(content) {
		return false
	}
	for i := 0; i < len(sjis); i += 2 {
		if _, ok := kanjiValue(sjis[i], sjis[i+1]); !ok {
			return false
		}
	}
	return true
}

// kanjiValue returns the 13-bit kanji mode value of a Shift_JIS pair.
func kanjiValue(hi, lo byte) (int, bool) {
	code := int(hi)<<8 | int(lo)
	switch {
	case code >= 0x8140 && code <= 0x9FFC:
		code -= 0x8140
	case code >= 0xE040 && code <= 0xEBBF:
		code -= 0xC140
	default:
		return 0, false
	}
	return (code>>8)*0xC0 + code&0xFF, true
}

// NewNumericSegment creates a numeric segment from ASCII digits.
func NewNumericSegment(digits string) (Segment, error) {
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Segment{}, fmt.Errorf("%w: %q at offset %d is not a digit", codeglyphx.ErrUnsupportedCharacter, digits[i], i)
		}
	}
	return Segment{Mode: decoder.ModeNumeric, Data: []byte(digits), Count: len(digits)}, nil
}

// NewAlphanumericSegment creates an alphanumeric segment.
func NewAlphanumericSegment(text string) (Segment, error) {
	for i, c := range text {
		if GetAlphanumericCode(c) == -1 {
			return Segment{}, fmt.Errorf("%w: %q at offset %d is not alphanumeric", codeglyphx.ErrUnsupportedCharacter, c, i)
		}
	}
	return Segment{Mode: decoder.ModeAlphanumeric, Data: []byte(text), Count: len(text)}, nil
}

// NewByteSegment creates a byte segment.
func NewByteSegment(data []byte) Segment {
	return Segment{Mode: decoder.ModeByte, Data: data, Count: len(data)}
}

// NewKanjiSegment creates a kanji segment. Every character must map to a
// double byte Shift_JIS code in the kanji ranges.
func NewKanjiSegment(text string) (Segment, error) {
	sjis, err := charset.ECISJIS.Encode(text)
	if err != nil {
		return Segment{}, err
	}
	if len(sjis)%2 != 0 {
		return Segment{}, fmt.Errorf("%w: odd Shift_JIS length", codeglyphx.ErrUnsupportedCharacter)
	}
	for i := 0; i < len(sjis); i += 2 {
		if _, ok := kanjiValue(sjis[i], sjis[i+1]); !ok {
			return Segment{}, fmt.Errorf("%w: Shift_JIS %02X%02X outside kanji mode", codeglyphx.ErrUnsupportedCharacter, sjis[i], sjis[i+1])
		}
	}
	return Segment{Mode: decoder.ModeKanji, Data: sjis, Count: len(sjis) / 2}, nil
}

// NewECISegment creates an ECI designator segment.
func NewECISegment(value int) (Segment, error) {
	if value < 0 || value > charset.MaxECIValue {
		return Segment{}, fmt.Errorf("%w: ECI %d out of range", codeglyphx.ErrInvalidInput, value)
	}
	return Segment{Mode: decoder.ModeECI, ECI: value}, nil
}

// BitLength returns the size in bits of the segment, indicators included,
// in the given version.
func (s Segment) BitLength(version *decoder.Version) int {
	header := 4 + s.Mode.CharacterCountBits(version)
	switch s.Mode {
	case decoder.ModeECI:
		switch {
		case s.ECI < 1<<7:
			return 4 + 8
		case s.ECI < 1<<14:
			return 4 + 16
		}
		return 4 + 24
	case decoder.ModeFNC1FirstPosition:
		return 4
	case decoder.ModeNumeric:
		return header + 10*(s.Count/3) + [3]int{0, 4, 7}[s.Count%3]
	case decoder.ModeAlphanumeric:
		return header + 11*(s.Count/2) + 6*(s.Count%2)
	case decoder.ModeByte:
		return header + 8*s.Count
	case decoder.ModeKanji:
		return header + 13*s.Count
	}
	return 0
}

// fits reports whether the count indicator can hold Count in version.
func (s Segment) fits(version *decoder.Version) bool {
	bits := s.Mode.CharacterCountBits(version)
	return bits == 0 || s.Count < 1<<uint(bits)
}

// AppendTo writes the mode indicator, count and payload into bits.
func (s Segment) AppendTo(bits *bitutil.BitArray, version *decoder.Version) error {
	if err := bits.AppendBits(uint32(s.Mode.Bits()), 4); err != nil {
		return err
	}
	switch s.Mode {
	case decoder.ModeECI:
		return appendECI(s.ECI, bits)
	case decoder.ModeFNC1FirstPosition:
		return nil
	}
	if !s.fits(version) {
		return fmt.Errorf("%w: count %d overflows %s indicator", codeglyphx.ErrCapacityExceeded, s.Count, s.Mode)
	}
	if err := bits.AppendBits(uint32(s.Count), s.Mode.CharacterCountBits(version)); err != nil {
		return err
	}
	return s.AppendData(bits)
}

// AppendData writes the segment payload without mode or count indicators.
func (s Segment) AppendData(bits *bitutil.BitArray) error {
	switch s.Mode {
	case decoder.ModeNumeric:
		return appendNumericBytes(s.Data, bits)
	case decoder.ModeAlphanumeric:
		return appendAlphanumericBytes(s.Data, bits)
	case decoder.ModeByte:
		for _, b := range s.Data {
			if err := bits.AppendBits(uint32(b), 8); err != nil {
				return err
			}
		}
		return nil
	case decoder.ModeKanji:
		return appendKanjiBytes(s.Data, bits)
	}
	return fmt.Errorf("%w: cannot encode mode %s", codeglyphx.ErrInvalidInput, s.Mode)
}

func appendECI(value int, bits *bitutil.BitArray) error {
	switch {
	case value < 1<<7:
		return bits.AppendBits(uint32(value), 8)
	case value < 1<<14:
		return bits.AppendBits(uint32(0b10<<14|value), 16)
	}
	return bits.AppendBits(uint32(0b110<<21|value), 24)
}

func appendNumericBytes(content []byte, bits *bitutil.BitArray) error {
	length := len(content)
	for i := 0; i < length; {
		num1 := int(content[i] - '0')
		var err error
		switch {
		case i+2 < length:
			num2, num3 := int(content[i+1]-'0'), int(content[i+2]-'0')
			err = bits.AppendBits(uint32(num1*100+num2*10+num3), 10)
			i += 3
		case i+1 < length:
			num2 := int(content[i+1] - '0')
			err = bits.AppendBits(uint32(num1*10+num2), 7)
			i += 2
		default:
			err = bits.AppendBits(uint32(num1), 4)
			i++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func appendAlphanumericBytes(content []byte, bits *bitutil.BitArray) error {
	length := len(content)
	for i := 0; i < length; {
		code1 := GetAlphanumericCode(rune(content[i]))
		if code1 == -1 {
			return fmt.Errorf("%w: %q is not alphanumeric", codeglyphx.ErrUnsupportedCharacter, content[i])
		}
		if i+1 < length {
			code2 := GetAlphanumericCode(rune(content[i+1]))
			if code2 == -1 {
				return fmt.Errorf("%w: %q is not alphanumeric", codeglyphx.ErrUnsupportedCharacter, content[i+1])
			}
			if err := bits.AppendBits(uint32(code1*45+code2), 11); err != nil {
				return err
			}
			i += 2
			continue
		}
		if err := bits.AppendBits(uint32(code1), 6); err != nil {
			return err
		}
		i++
	}
	return nil
}

func appendKanjiBytes(sjis []byte, bits *bitutil.BitArray) error {
	for i := 0; i+1 < len(sjis); i += 2 {
		value, ok := kanjiValue(sjis[i], sjis[i+1])
		if !ok {
			return fmt.Errorf("%w: Shift_JIS %02X%02X outside kanji mode", codeglyphx.ErrUnsupportedCharacter, sjis[i], sjis[i+1])
		}
		if err := bits.AppendBits(uint32(value), 13); err != nil {
			return err
		}
	}
	return nil
}
