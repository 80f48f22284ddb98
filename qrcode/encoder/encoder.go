// Package encoder builds QR code symbols: it splits the payload into
// segments, fits a version, adds Reed-Solomon codewords, places everything
// in the module matrix and picks the mask with the lowest penalty.
package encoder

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/charset"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/reedsolomon"
)

const numMaskPatterns = 8

// EncodeHints tune encoding. The zero value is usable.
type EncodeHints struct {
	// MinVersion and MaxVersion bound the version search. Zero means 1 and 40.
	MinVersion int
	MaxVersion int

	// MaskPattern forces a mask. Nil selects by penalty.
	MaskPattern *int

	// Mode forces the segment mode of text payloads. ModeAuto chooses.
	Mode decoder.Mode

	// CharacterSet names the charset of byte mode text. Empty means UTF-8
	// without an ECI designator.
	CharacterSet string

	// DisableECI suppresses the ECI designator of an explicit CharacterSet.
	DisableECI bool

	// GS1Format inserts the FNC1 first position indicator.
	GS1Format bool
}

func (h *EncodeHints) versionRange() (lo, hi int, err error) {
	lo, hi = decoder.MinVersion, decoder.MaxVersion
	if h.MinVersion != 0 {
		lo = h.MinVersion
	}
	if h.MaxVersion != 0 {
		hi = h.MaxVersion
	}
	if lo < decoder.MinVersion || hi > decoder.MaxVersion || lo > hi {
		return 0, 0, fmt.Errorf("%w: version range %d..%d", codeglyphx.ErrInvalidInput, lo, hi)
	}
	return lo, hi, nil
}

func (h *EncodeHints) characterSet() (*charset.ECI, error) {
	if h.CharacterSet == "" {
		return charset.ECIUTF8, nil
	}
	eci := charset.ForName(h.CharacterSet)
	if eci == nil {
		return nil, fmt.Errorf("%w: unknown character set %q", codeglyphx.ErrInvalidInput, h.CharacterSet)
	}
	return eci, nil
}

// Encode encodes text into a QRCode.
func Encode(content string, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*QRCode, error) {
	if hints == nil {
		hints = &EncodeHints{}
	}
	mode := hints.Mode
	if mode == ModeAuto {
		mode = ChooseMode(content)
	}

	var segments []Segment
	switch mode {
	case decoder.ModeNumeric:
		s, err := NewNumericSegment(content)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	case decoder.ModeAlphanumeric:
		s, err := NewAlphanumericSegment(content)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	case decoder.ModeKanji:
		s, err := NewKanjiSegment(content)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	case decoder.ModeByte:
		eci, err := hints.characterSet()
		if err != nil {
			return nil, err
		}
		data, err := eci.Encode(content)
		if err != nil {
			return nil, err
		}
		return encodeByteSegment(data, eci, ecLevel, hints)
	default:
		return nil, fmt.Errorf("%w: mode %s cannot carry text", codeglyphx.ErrInvalidInput, mode)
	}
	return EncodeSegments(withPrefix(segments, hints, nil), ecLevel, hints)
}

// EncodeBytes encodes binary data as a single byte segment. The bytes are
// taken as is; an explicit CharacterSet only adds its ECI designator.
func EncodeBytes(data []byte, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*QRCode, error) {
	if hints == nil {
		hints = &EncodeHints{}
	}
	eci, err := hints.characterSet()
	if err != nil {
		return nil, err
	}
	return encodeByteSegment(data, eci, ecLevel, hints)
}

func encodeByteSegment(data []byte, eci *charset.ECI, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*QRCode, error) {
	var designator *charset.ECI
	if hints.CharacterSet != "" && !hints.DisableECI {
		designator = eci
	}
	return EncodeSegments(withPrefix([]Segment{NewByteSegment(data)}, hints, designator), ecLevel, hints)
}

// withPrefix puts the ECI designator and the FNC1 indicator in front.
func withPrefix(segments []Segment, hints *EncodeHints, eci *charset.ECI) []Segment {
	var prefix []Segment
	if eci != nil {
		prefix = append(prefix, Segment{Mode: decoder.ModeECI, ECI: eci.Value})
	}
	if hints.GS1Format {
		prefix = append(prefix, Segment{Mode: decoder.ModeFNC1FirstPosition})
	}
	return append(prefix, segments...)
}

// EncodeSegments encodes a prepared segment list into a QRCode.
func EncodeSegments(segments []Segment, ecLevel decoder.ErrorCorrectionLevel, hints *EncodeHints) (*QRCode, error) {
	if hints == nil {
		hints = &EncodeHints{}
	}
	if ecLevel < decoder.ECLevelL || ecLevel > decoder.ECLevelH {
		return nil, fmt.Errorf("%w: error correction level %d", codeglyphx.ErrInvalidInput, ecLevel)
	}
	if hints.MaskPattern != nil && (*hints.MaskPattern < 0 || *hints.MaskPattern >= numMaskPatterns) {
		return nil, fmt.Errorf("%w: mask pattern %d", codeglyphx.ErrInvalidInput, *hints.MaskPattern)
	}
	lo, hi, err := hints.versionRange()
	if err != nil {
		return nil, err
	}

	version, err := chooseVersion(segments, ecLevel, lo, hi)
	if err != nil {
		return nil, err
	}

	dataBits := bitutil.NewBitArray(0)
	for _, s := range segments {
		if err := s.AppendTo(dataBits, version); err != nil {
			return nil, err
		}
	}
	numDataBytes := version.NumDataCodewords(ecLevel)
	if err := terminateBits(numDataBytes, dataBits); err != nil {
		return nil, err
	}

	finalBits, err := interleaveWithECBytes(dataBits, version, ecLevel)
	if err != nil {
		return nil, err
	}

	qr := &QRCode{
		Mode:        primaryMode(segments),
		ECLevel:     ecLevel,
		Version:     version,
		MaskPattern: -1,
		Segments:    segments,
	}
	if hints.MaskPattern != nil {
		qr.MaskPattern = *hints.MaskPattern
		matrix := NewByteMatrix(version.DimensionForVersion(), version.DimensionForVersion())
		if err := buildMatrix(finalBits, ecLevel, version, qr.MaskPattern, matrix); err != nil {
			return nil, err
		}
		qr.Matrix = matrix
		return qr, nil
	}

	qr.MaskPattern, qr.Matrix, err = chooseMaskPattern(finalBits, ecLevel, version)
	if err != nil {
		return nil, err
	}
	return qr, nil
}

// primaryMode reports the mode of the first data segment.
func primaryMode(segments []Segment) decoder.Mode {
	for _, s := range segments {
		switch s.Mode {
		case decoder.ModeECI, decoder.ModeFNC1FirstPosition:
			continue
		}
		return s.Mode
	}
	return decoder.ModeByte
}

// chooseVersion returns the smallest version in [lo, hi] that holds the
// segments. Count indicator widths change between version bands, so the
// size is recomputed per version.
func chooseVersion(segments []Segment, ecLevel decoder.ErrorCorrectionLevel, lo, hi int) (*decoder.Version, error) {
	needed := 0
	for number := lo; number <= hi; number++ {
		version, err := decoder.GetVersionForNumber(number)
		if err != nil {
			return nil, err
		}
		needed = 0
		fits := true
		for _, s := range segments {
			needed += s.BitLength(version)
			fits = fits && s.fits(version)
		}
		if fits && needed <= 8*version.NumDataCodewords(ecLevel) {
			return version, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bits do not fit versions %d..%d at level %s",
		codeglyphx.ErrCapacityExceeded, needed, lo, hi, ecLevel)
}

// terminateBits appends up to four terminator bits, zero pads to a byte
// boundary and fills the remaining capacity with 0xEC 0x11.
func terminateBits(numDataBytes int, bits *bitutil.BitArray) error {
	capacity := numDataBytes * 8
	if bits.Size() > capacity {
		return fmt.Errorf("%w: %d data bits exceed %d", codeglyphx.ErrCapacityExceeded, bits.Size(), capacity)
	}
	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	for bits.Size()&0x07 != 0 {
		bits.AppendBit(false)
	}
	for i := 0; bits.SizeInBytes() < numDataBytes; i++ {
		pad := uint32(0xEC)
		if i%2 == 1 {
			pad = 0x11
		}
		if err := bits.AppendBits(pad, 8); err != nil {
			return err
		}
	}
	return nil
}

type blockPair struct {
	dataBytes []byte
	ecBytes   []byte
}

// interleaveWithECBytes splits the data codewords into the version's blocks,
// computes their ECC and interleaves data then ECC round-robin. The extra
// data codeword of long blocks follows the common data columns.
func interleaveWithECBytes(bits *bitutil.BitArray, version *decoder.Version, ecLevel decoder.ErrorCorrectionLevel) (*bitutil.BitArray, error) {
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	if bits.SizeInBytes() != ecBlocks.TotalDataCodewords() {
		return nil, fmt.Errorf("%w: %d data bytes, want %d", codeglyphx.ErrInvalidInput, bits.SizeInBytes(), ecBlocks.TotalDataCodewords())
	}
	data := bits.Bytes()
	divisor := reedsolomon.ComputeDivisor(ecBlocks.ECCodewordsPerBlock)

	var blocks []blockPair
	maxNumDataBytes := 0
	offset := 0
	for _, group := range ecBlocks.Blocks {
		for i := 0; i < group.Count; i++ {
			dataBytes := data[offset : offset+group.DataCodewords]
			offset += group.DataCodewords
			blocks = append(blocks, blockPair{
				dataBytes: dataBytes,
				ecBytes:   reedsolomon.ComputeRemainder(dataBytes, divisor),
			})
			maxNumDataBytes = max(maxNumDataBytes, group.DataCodewords)
		}
	}

	result := bitutil.NewBitArray(0)
	for i := 0; i < maxNumDataBytes; i++ {
		for _, block := range blocks {
			if i < len(block.dataBytes) {
				if err := result.AppendBits(uint32(block.dataBytes[i]), 8); err != nil {
					return nil, err
				}
			}
		}
	}
	for i := 0; i < ecBlocks.ECCodewordsPerBlock; i++ {
		for _, block := range blocks {
			if err := result.AppendBits(uint32(block.ecBytes[i]), 8); err != nil {
				return nil, err
			}
		}
	}

	if result.SizeInBytes() != version.TotalCodewords {
		return nil, fmt.Errorf("%w: interleaved %d of %d codewords", codeglyphx.ErrInvalidInput, result.SizeInBytes(), version.TotalCodewords)
	}
	return result, nil
}
