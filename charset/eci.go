// Package charset maps ECI assignment numbers to character sets and converts
// between them and UTF-8.
package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

// ECI represents a Character Set Extended Channel Interpretation.
type ECI struct {
	Value   int
	Name    string
	Aliases []string

	// enc is nil for UTF-8 and US-ASCII, which are handled directly.
	enc encoding.Encoding
}

// pre-defined ECIs
var (
	ECICp437      = &ECI{0, "Cp437", []string{"IBM437"}, charmap.CodePage437}
	ECIISO8859_1  = &ECI{3, "ISO-8859-1", []string{"ISO8859_1", "Latin1"}, charmap.ISO8859_1}
	ECIISO8859_2  = &ECI{4, "ISO-8859-2", []string{"ISO8859_2"}, charmap.ISO8859_2}
	ECIISO8859_3  = &ECI{5, "ISO-8859-3", []string{"ISO8859_3"}, charmap.ISO8859_3}
	ECIISO8859_4  = &ECI{6, "ISO-8859-4", []string{"ISO8859_4"}, charmap.ISO8859_4}
	ECIISO8859_5  = &ECI{7, "ISO-8859-5", []string{"ISO8859_5"}, charmap.ISO8859_5}
	ECIISO8859_6  = &ECI{8, "ISO-8859-6", []string{"ISO8859_6"}, charmap.ISO8859_6}
	ECIISO8859_7  = &ECI{9, "ISO-8859-7", []string{"ISO8859_7"}, charmap.ISO8859_7}
	ECIISO8859_8  = &ECI{10, "ISO-8859-8", []string{"ISO8859_8"}, charmap.ISO8859_8}
	ECIISO8859_9  = &ECI{11, "ISO-8859-9", []string{"ISO8859_9"}, charmap.ISO8859_9}
	ECIISO8859_10 = &ECI{12, "ISO-8859-10", []string{"ISO8859_10"}, charmap.ISO8859_10}
	ECIISO8859_11 = &ECI{13, "ISO-8859-11", []string{"ISO8859_11"}, charmap.Windows874}
	ECIISO8859_13 = &ECI{15, "ISO-8859-13", []string{"ISO8859_13"}, charmap.ISO8859_13}
	ECIISO8859_14 = &ECI{16, "ISO-8859-14", []string{"ISO8859_14"}, charmap.ISO8859_14}
	ECIISO8859_15 = &ECI{17, "ISO-8859-15", []string{"ISO8859_15"}, charmap.ISO8859_15}
	ECIISO8859_16 = &ECI{18, "ISO-8859-16", []string{"ISO8859_16"}, charmap.ISO8859_16}
	ECISJIS       = &ECI{20, "Shift_JIS", []string{"SJIS"}, japanese.ShiftJIS}
	ECICp1250     = &ECI{21, "windows-1250", []string{"Cp1250"}, charmap.Windows1250}
	ECICp1251     = &ECI{22, "windows-1251", []string{"Cp1251"}, charmap.Windows1251}
	ECICp1252     = &ECI{23, "windows-1252", []string{"Cp1252"}, charmap.Windows1252}
	ECICp1256     = &ECI{24, "windows-1256", []string{"Cp1256"}, charmap.Windows1256}
	ECIUTF16BE    = &ECI{25, "UTF-16BE", []string{"UnicodeBig", "UnicodeBigUnmarked"}, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	ECIUTF8       = &ECI{26, "UTF-8", []string{"UTF8"}, nil}
	ECIASCII      = &ECI{27, "US-ASCII", []string{"ASCII"}, nil}
	ECIBig5       = &ECI{28, "Big5", nil, traditionalchinese.Big5}
	ECIGB18030    = &ECI{29, "GB18030", []string{"GB2312", "EUC_CN", "GBK"}, simplifiedchinese.GB18030}
	ECIEUCKR      = &ECI{30, "EUC-KR", []string{"EUC_KR"}, korean.EUCKR}
)

var (
	valueToECI = map[int]*ECI{}
	nameToECI  = map[string]*ECI{}
)

func init() {
	all := []*ECI{
		ECICp437, ECIISO8859_1, ECIISO8859_2, ECIISO8859_3, ECIISO8859_4,
		ECIISO8859_5, ECIISO8859_6, ECIISO8859_7, ECIISO8859_8, ECIISO8859_9,
		ECIISO8859_10, ECIISO8859_11, ECIISO8859_13, ECIISO8859_14,
		ECIISO8859_15, ECIISO8859_16, ECISJIS, ECICp1250, ECICp1251,
		ECICp1252, ECICp1256, ECIUTF16BE, ECIUTF8, ECIASCII, ECIBig5,
		ECIGB18030, ECIEUCKR,
	}
	for _, eci := range all {
		valueToECI[eci.Value] = eci
		nameToECI[strings.ToUpper(eci.Name)] = eci
		for _, alias := range eci.Aliases {
			nameToECI[strings.ToUpper(alias)] = eci
		}
	}
	// Assignment numbers that share a character set.
	valueToECI[1] = ECIISO8859_1
	valueToECI[2] = ECICp437
	valueToECI[170] = ECIASCII
}

// MaxECIValue is the largest assignment number a 21-bit designator holds.
const MaxECIValue = 999999

// ForValue returns the ECI for an assignment number, or nil when the number
// names no known character set.
func ForValue(value int) *ECI {
	return valueToECI[value]
}

// ForName returns the ECI for a character set name, case insensitive.
func ForName(name string) *ECI {
	return nameToECI[strings.ToUpper(strings.TrimSpace(name))]
}

// String returns the character set name.
func (e *ECI) String() string {
	return e.Name
}

// Decode converts bytes in this character set to UTF-8. Undecodable bytes
// become U+FFFD.
func (e *ECI) Decode(data []byte) string {
	switch {
	case e == nil || e == ECIUTF8:
		return string(data)
	case e == ECIASCII:
		return ECIISO8859_1.Decode(data)
	}
	decoded, err := e.enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// Encode converts UTF-8 text into this character set. A character the set
// cannot represent yields ErrUnsupportedCharacter.
func (e *ECI) Encode(text string) ([]byte, error) {
	switch {
	case e == nil || e == ECIUTF8:
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("%w: invalid UTF-8", codeglyphx.ErrUnsupportedCharacter)
		}
		return []byte(text), nil
	case e == ECIASCII:
		for i, r := range text {
			if r >= 0x80 {
				return nil, fmt.Errorf("%w: %q at offset %d not in %s", codeglyphx.ErrUnsupportedCharacter, r, i, e.Name)
			}
		}
		return []byte(text), nil
	}
	out, err := e.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", codeglyphx.ErrUnsupportedCharacter, e.Name, err)
	}
	return out, nil
}

// CanEncode reports whether every character of text is representable.
func (e *ECI) CanEncode(text string) bool {
	_, err := e.Encode(text)
	return err == nil
}
