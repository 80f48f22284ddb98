package decoder

import (
	"fmt"
	"strconv"
	"strings"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/charset"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
)

// AlphanumericChars is the 45 symbol table of alphanumeric mode.
const AlphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// SegmentDecoder reads segment payloads from a bit stream and accumulates
// the decoded text. The mode loop belongs to the caller, since QR and Micro
// QR lay out mode and count indicators differently.
type SegmentDecoder struct {
	src  *bitutil.BitSource
	hint string

	text         strings.Builder
	byteSegments [][]byte
	eci          *charset.ECI
	eciValues    []int
	fnc1         bool
}

// NewSegmentDecoder reads from src. hint names the character set of byte
// segments not preceded by an ECI; empty means guess.
func NewSegmentDecoder(src *bitutil.BitSource, hint string) *SegmentDecoder {
	return &SegmentDecoder{src: src, hint: hint}
}

// Source returns the underlying bit source.
func (d *SegmentDecoder) Source() *bitutil.BitSource { return d.src }

// Text returns the text decoded so far.
func (d *SegmentDecoder) Text() string { return d.text.String() }

// ByteSegments returns the raw payload of every byte segment.
func (d *SegmentDecoder) ByteSegments() [][]byte { return d.byteSegments }

// ECIValues returns the ECI assignment numbers seen, in order.
func (d *SegmentDecoder) ECIValues() []int { return d.eciValues }

// SetFNC1 turns on GS1 handling of '%' in alphanumeric segments.
func (d *SegmentDecoder) SetFNC1() { d.fnc1 = true }

// ReadBits reads n bits, mapping exhaustion onto ErrPayloadMalformed.
func (d *SegmentDecoder) ReadBits(n int) (int, error) {
	v, err := d.src.ReadBits(n)
	if err != nil {
		return 0, malformed("truncated %d-bit field: %v", n, err)
	}
	return v, nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", codeglyphx.ErrPayloadMalformed, fmt.Sprintf(format, args...))
}

// Numeric decodes count digits packed three per 10 bits.
func (d *SegmentDecoder) Numeric(count int) error {
	for count > 0 {
		width, digits, limit := 10, 3, 1000
		switch count {
		case 2:
			width, digits, limit = 7, 2, 100
		case 1:
			width, digits, limit = 4, 1, 10
		}
		v, err := d.ReadBits(width)
		if err != nil {
			return err
		}
		if v >= limit {
			return malformed("numeric group %d out of range", v)
		}
		s := strconv.Itoa(v)
		for len(s) < digits {
			s = "0" + s
		}
		d.text.WriteString(s)
		count -= digits
	}
	return nil
}

// Alphanumeric decodes count characters packed two per 11 bits. Under FNC1
// "%%" is a literal percent sign and a lone '%' is the GS separator.
func (d *SegmentDecoder) Alphanumeric(count int) error {
	var seg []byte
	for count > 1 {
		v, err := d.ReadBits(11)
		if err != nil {
			return err
		}
		if v >= 45*45 {
			return malformed("alphanumeric pair %d out of range", v)
		}
		seg = append(seg, AlphanumericChars[v/45], AlphanumericChars[v%45])
		count -= 2
	}
	if count == 1 {
		v, err := d.ReadBits(6)
		if err != nil {
			return err
		}
		if v >= 45 {
			return malformed("alphanumeric value %d out of range", v)
		}
		seg = append(seg, AlphanumericChars[v])
	}
	if !d.fnc1 {
		d.text.Write(seg)
		return nil
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] != '%' {
			d.text.WriteByte(seg[i])
			continue
		}
		if i+1 < len(seg) && seg[i+1] == '%' {
			d.text.WriteByte('%')
			i++
		} else {
			d.text.WriteByte(0x1D)
		}
	}
	return nil
}

// Byte decodes count raw bytes in the current ECI character set.
func (d *SegmentDecoder) Byte(count int) error {
	if 8*count > d.src.Available() {
		return malformed("byte segment of %d exceeds %d remaining bits", count, d.src.Available())
	}
	raw := make([]byte, count)
	for i := range raw {
		v, err := d.ReadBits(8)
		if err != nil {
			return err
		}
		raw[i] = byte(v)
	}
	eci := d.eci
	if eci == nil {
		eci = charset.GuessEncoding(raw, d.hint)
	}
	d.text.WriteString(eci.Decode(raw))
	d.byteSegments = append(d.byteSegments, raw)
	return nil
}

// Kanji decodes count 13-bit Shift_JIS characters.
func (d *SegmentDecoder) Kanji(count int) error {
	if 13*count > d.src.Available() {
		return malformed("kanji segment of %d exceeds %d remaining bits", count, d.src.Available())
	}
	buf := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, err := d.ReadBits(13)
		if err != nil {
			return err
		}
		assembled := (v/0xC0)<<8 | v%0xC0
		if assembled < 0x1F00 {
			assembled += 0x8140
		} else {
			assembled += 0xC140
		}
		buf = append(buf, byte(assembled>>8), byte(assembled))
	}
	d.text.WriteString(charset.ECISJIS.Decode(buf))
	return nil
}

// ECI reads an assignment number and switches the character set of later
// byte segments. Unknown numbers keep the current set.
func (d *SegmentDecoder) ECI() error {
	value, err := d.readECIValue()
	if err != nil {
		return err
	}
	d.eciValues = append(d.eciValues, value)
	if eci := charset.ForValue(value); eci != nil {
		d.eci = eci
	}
	return nil
}

func (d *SegmentDecoder) readECIValue() (int, error) {
	first, err := d.ReadBits(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first&0x80 == 0:
		return first, nil
	case first&0xC0 == 0x80:
		second, err := d.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := d.ReadBits(16)
		if err != nil {
			return 0, err
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, malformed("ECI designator prefix %08b", first)
}

// HasECI reports whether any ECI switched the character set.
func (d *SegmentDecoder) HasECI() bool { return d.eci != nil }

// DecodeBitStream parses corrected data codewords into a DecoderResult.
func DecodeBitStream(data []byte, version *Version, ecLevel ErrorCorrectionLevel, hint string) (*internal.DecoderResult, error) {
	src := bitutil.NewBitSource(data)
	seg := NewSegmentDecoder(src, hint)
	symbolSequence, parityData := -1, -1
	hasFNC1first, hasFNC1second := false, false

loop:
	for {
		if src.Available() < 4 {
			if !src.RemainingZero() {
				return nil, malformed("%d trailing non-zero bits", src.Available())
			}
			break
		}
		modeBits, _ := src.ReadBits(4)
		mode, err := ModeForBits(modeBits)
		if err != nil {
			return nil, err
		}

		switch mode {
		case ModeTerminator:
			break loop
		case ModeFNC1FirstPosition:
			hasFNC1first = true
			seg.SetFNC1()
		case ModeFNC1SecondPosition:
			hasFNC1second = true
			seg.SetFNC1()
			if _, err := seg.ReadBits(8); err != nil {
				return nil, err
			}
		case ModeStructuredAppend:
			if symbolSequence, err = seg.ReadBits(8); err != nil {
				return nil, err
			}
			if parityData, err = seg.ReadBits(8); err != nil {
				return nil, err
			}
		case ModeECI:
			if err := seg.ECI(); err != nil {
				return nil, err
			}
		default:
			count, err := seg.ReadBits(mode.CharacterCountBits(version))
			if err != nil {
				return nil, err
			}
			if err := decodeSegment(seg, mode, count); err != nil {
				return nil, err
			}
		}
	}

	result := internal.NewDecoderResult(data, -1, seg.Text(), seg.ByteSegments(), ecLevel.String())
	result.Version = version.Number
	result.ECIValues = seg.ECIValues()
	result.StructuredAppendSequenceNumber = symbolSequence
	result.StructuredAppendParity = parityData
	result.SymbologyModifier = symbologyModifier(seg.HasECI(), hasFNC1first, hasFNC1second)
	return result, nil
}

func decodeSegment(seg *SegmentDecoder, mode Mode, count int) error {
	switch mode {
	case ModeNumeric:
		return seg.Numeric(count)
	case ModeAlphanumeric:
		return seg.Alphanumeric(count)
	case ModeByte:
		return seg.Byte(count)
	case ModeKanji:
		return seg.Kanji(count)
	}
	return malformed("unexpected mode %s", mode)
}

func symbologyModifier(hasECI, fnc1First, fnc1Second bool) int {
	modifier := 1
	switch {
	case fnc1First:
		modifier = 3
	case fnc1Second:
		modifier = 5
	}
	if hasECI {
		modifier++
	}
	return modifier
}
