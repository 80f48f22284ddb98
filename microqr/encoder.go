package microqr

import (
	"fmt"
	"strings"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/charset"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/encoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/reedsolomon"
)

// EncodeHints tune encoding. The zero value is usable.
type EncodeHints struct {
	// MinVersion and MaxVersion bound the version search. Zero means M1 and
	// M4.
	MinVersion int
	MaxVersion int

	// MaskPattern forces one of the four masks. Nil selects by score.
	MaskPattern *int

	// Mode forces the segment mode of text payloads. encoder.ModeAuto
	// chooses.
	Mode decoder.Mode

	// CharacterSet names the charset of byte mode text. Micro QR has no ECI
	// designator, so readers must be told or guess. Empty means UTF-8.
	CharacterSet string
}

func (h *EncodeHints) versionRange() (lo, hi int, err error) {
	lo, hi = MinVersion, MaxVersion
	if h.MinVersion != 0 {
		lo = h.MinVersion
	}
	if h.MaxVersion != 0 {
		hi = h.MaxVersion
	}
	if lo < MinVersion || hi > MaxVersion || lo > hi {
		return 0, 0, fmt.Errorf("%w: micro version range M%d..M%d", codeglyphx.ErrInvalidInput, lo, hi)
	}
	return lo, hi, nil
}

// Code is an encoded Micro QR symbol. It is not modified after Encode
// returns.
type Code struct {
	Mode        decoder.Mode
	ECLevel     decoder.ErrorCorrectionLevel
	Version     *Version
	MaskPattern int
	Segments    []encoder.Segment
	Matrix      *encoder.ByteMatrix
}

// BitMatrix returns the module matrix without quiet zone.
func (c *Code) BitMatrix() *bitutil.BitMatrix {
	return c.Matrix.BitMatrix()
}

// String returns a visual representation of the symbol.
func (c *Code) String() string {
	var sb strings.Builder
	for y := 0; y < c.Matrix.Height; y++ {
		for x := 0; x < c.Matrix.Width; x++ {
			if c.Matrix.Get(x, y) == 1 {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Encode encodes text into a single segment Micro QR symbol.
func Encode(content string, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*Code, error) {
	if hints == nil {
		hints = &EncodeHints{}
	}
	mode := hints.Mode
	if mode == encoder.ModeAuto {
		mode = encoder.ChooseMode(content)
	}

	var (
		segment encoder.Segment
		err     error
	)
	switch mode {
	case decoder.ModeNumeric:
		segment, err = encoder.NewNumericSegment(content)
	case decoder.ModeAlphanumeric:
		segment, err = encoder.NewAlphanumericSegment(content)
	case decoder.ModeKanji:
		segment, err = encoder.NewKanjiSegment(content)
	case decoder.ModeByte:
		var data []byte
		data, err = encodeText(content, hints.CharacterSet)
		segment = encoder.NewByteSegment(data)
	default:
		return nil, fmt.Errorf("%w: mode %s is not available in Micro QR", codeglyphx.ErrInvalidInput, mode)
	}
	if err != nil {
		return nil, err
	}
	return EncodeSegments([]encoder.Segment{segment}, ecLevel, hints)
}

// EncodeBytes encodes binary data as a single byte segment.
func EncodeBytes(data []byte, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*Code, error) {
	return EncodeSegments([]encoder.Segment{encoder.NewByteSegment(data)}, ecLevel, hints)
}

func encodeText(content, name string) ([]byte, error) {
	if name == "" {
		return []byte(content), nil
	}
	eci := charset.ForName(name)
	if eci == nil {
		return nil, fmt.Errorf("%w: unknown character set %q", codeglyphx.ErrInvalidInput, name)
	}
	return eci.Encode(content)
}

// EncodeSegments encodes a prepared segment list. ECI and FNC1 segments do
// not exist in Micro QR.
func EncodeSegments(segments []encoder.Segment, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*Code, error) {
	if hints == nil {
		hints = &EncodeHints{}
	}
	if hints.MaskPattern != nil && (*hints.MaskPattern < 0 || *hints.MaskPattern >= numMaskPatterns) {
		return nil, fmt.Errorf("%w: micro mask pattern %d", codeglyphx.ErrInvalidInput, *hints.MaskPattern)
	}
	lo, hi, err := hints.versionRange()
	if err != nil {
		return nil, err
	}
	for _, s := range segments {
		if modeIndicator(s.Mode) < 0 {
			return nil, fmt.Errorf("%w: %s segment in Micro QR", codeglyphx.ErrInvalidInput, s.Mode)
		}
	}

	version, err := chooseVersion(segments, ecLevel, lo, hi)
	if err != nil {
		return nil, err
	}

	dataBits := bitutil.NewBitArray(0)
	for _, s := range segments {
		if err := appendSegment(s, version, dataBits); err != nil {
			return nil, err
		}
	}
	if err := terminateBits(version, ecLevel, dataBits); err != nil {
		return nil, err
	}
	finalBits, err := appendECBytes(dataBits, version, ecLevel)
	if err != nil {
		return nil, err
	}

	code := &Code{
		Mode:     decoder.ModeByte,
		ECLevel:  ecLevel,
		Version:  version,
		Segments: segments,
	}
	if len(segments) > 0 {
		code.Mode = segments[0].Mode
	}
	if hints.MaskPattern != nil {
		code.MaskPattern = *hints.MaskPattern
		code.Matrix, err = buildMatrix(finalBits, version, ecLevel, code.MaskPattern)
		if err != nil {
			return nil, err
		}
		return code, nil
	}
	code.MaskPattern, code.Matrix, err = chooseMaskPattern(finalBits, version, ecLevel)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// payloadBits returns the size of a segment without its indicators.
func payloadBits(s encoder.Segment) int {
	switch s.Mode {
	case decoder.ModeNumeric:
		return 10*(s.Count/3) + [3]int{0, 4, 7}[s.Count%3]
	case decoder.ModeAlphanumeric:
		return 11*(s.Count/2) + 6*(s.Count%2)
	case decoder.ModeByte:
		return 8 * s.Count
	case decoder.ModeKanji:
		return 13 * s.Count
	}
	return 0
}

// segmentBits returns the size of s in version, or -1 when the version
// cannot carry the mode or the count overflows its indicator.
func segmentBits(s encoder.Segment, version *Version) int {
	width := version.CountBits(s.Mode)
	if width == 0 || s.Count >= 1<<uint(width) {
		return -1
	}
	return version.ModeBits() + width + payloadBits(s)
}

// chooseVersion returns the smallest version in [lo, hi] that offers ecLevel
// and holds the segments.
func chooseVersion(segments []encoder.Segment, ecLevel decoder.ErrorCorrectionLevel, lo, hi int) (*Version, error) {
	offered := false
	needed := 0
	for number := lo; number <= hi; number++ {
		version := &versions[number-1]
		if !version.Supports(ecLevel) {
			continue
		}
		offered = true
		needed = 0
		fits := true
		for _, s := range segments {
			n := segmentBits(s, version)
			if n < 0 {
				fits = false
				break
			}
			needed += n
		}
		if fits && needed <= version.DataBits(ecLevel) {
			return version, nil
		}
	}
	if !offered {
		return nil, fmt.Errorf("%w: level %s is not offered by M%d..M%d", codeglyphx.ErrInvalidInput, ecLevel, lo, hi)
	}
	return nil, fmt.Errorf("%w: payload does not fit M%d..M%d at level %s",
		codeglyphx.ErrCapacityExceeded, lo, hi, ecLevel)
}

func appendSegment(s encoder.Segment, version *Version, bits *bitutil.BitArray) error {
	if n := version.ModeBits(); n > 0 {
		if err := bits.AppendBits(uint32(modeIndicator(s.Mode)), n); err != nil {
			return err
		}
	}
	if err := bits.AppendBits(uint32(s.Count), version.CountBits(s.Mode)); err != nil {
		return err
	}
	return s.AppendData(bits)
}

// terminateBits appends the terminator, truncated at capacity, zero pads to
// a codeword boundary and fills the remaining full codewords with 0xEC 0x11.
// A trailing 4-bit codeword is left zero.
func terminateBits(version *Version, ecLevel decoder.ErrorCorrectionLevel, bits *bitutil.BitArray) error {
	capacity := version.DataBits(ecLevel)
	if bits.Size() > capacity {
		return fmt.Errorf("%w: %d data bits exceed %d", codeglyphx.ErrCapacityExceeded, bits.Size(), capacity)
	}
	for i := 0; i < version.TerminatorBits() && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	fullBytes := capacity / 8
	if bits.Size() < 8*fullBytes {
		for bits.Size()&0x07 != 0 {
			bits.AppendBit(false)
		}
		for i := 0; bits.Size() < 8*fullBytes; i++ {
			pad := uint32(0xEC)
			if i%2 == 1 {
				pad = 0x11
			}
			if err := bits.AppendBits(pad, 8); err != nil {
				return err
			}
		}
	}
	for bits.Size() < capacity {
		bits.AppendBit(false)
	}
	return nil
}

// appendECBytes returns the data bits followed by the Reed-Solomon
// codewords. A 4-bit final data codeword takes part in the division as the
// high nibble of a byte but only its four bits are placed.
func appendECBytes(dataBits *bitutil.BitArray, version *Version, ecLevel decoder.ErrorCorrectionLevel) (*bitutil.BitArray, error) {
	data := dataBits.Bytes()
	if len(data) != version.DataCodewords(ecLevel) {
		return nil, fmt.Errorf("%w: %d data codewords, want %d", codeglyphx.ErrInvalidInput, len(data), version.DataCodewords(ecLevel))
	}
	ecBytes := reedsolomon.ComputeRemainder(data, reedsolomon.ComputeDivisor(version.ECCodewords(ecLevel)))

	result := dataBits.Clone()
	for _, b := range ecBytes {
		if err := result.AppendBits(uint32(b), 8); err != nil {
			return nil, err
		}
	}
	return result, nil
}
