package microqr

import (
	"fmt"
	"math/bits"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/reedsolomon"
)

// Decoder decodes Micro QR module matrices. It holds no state and is safe
// for concurrent use.
type Decoder struct {
	rsDecoder *reedsolomon.Decoder
}

// NewDecoder creates a new Micro QR Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		rsDecoder: reedsolomon.NewDecoder(reedsolomon.QRCodeField256),
	}
}

// formatInformation is a recovered format word.
type formatInformation struct {
	ecLevel  decoder.ErrorCorrectionLevel
	mask     int
	distance int
}

// readFormat returns the format word of version nearest to the one read
// from bits. The second result is false when none lies within
// decoder.MaxFormatDistance.
func readFormat(bits *bitutil.BitMatrix, version *Version) (formatInformation, bool) {
	word := 0
	for i, cell := range formatCells() {
		if bits.Get(cell[0], cell[1]) {
			word |= 1 << uint(i)
		}
	}
	best := formatInformation{distance: 16}
	for _, ecLevel := range []decoder.ErrorCorrectionLevel{decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ} {
		for mask := 0; mask < numMaskPatterns; mask++ {
			expected := version.FormatWord(ecLevel, mask)
			if expected < 0 {
				continue
			}
			if d := popCount(word ^ expected); d < best.distance {
				best = formatInformation{ecLevel: ecLevel, mask: mask, distance: d}
			}
		}
	}
	return best, best.distance <= decoder.MaxFormatDistance
}

func popCount(x int) int { return bits.OnesCount(uint(x)) }

// Decode decodes a matrix with one cell per module and no quiet zone. When
// the normal read fails the transposed symbol is tried; the returned
// diagnostics and error then describe the normal read.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, hints *decoder.Hints) (*internal.DecoderResult, codeglyphx.Diagnostics, error) {
	if hints == nil {
		hints = &decoder.Hints{}
	}
	diag := codeglyphx.NewDiagnostics()
	if bits == nil || bits.Width() != bits.Height() {
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, fmt.Errorf("%w: Micro QR matrix must be square", codeglyphx.ErrInvalidInput)
	}
	version, err := VersionForDimension(bits.Width())
	if err != nil {
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, err
	}

	result, diag, err := d.decode(bits, version, hints)
	if err == nil || hints.DisableMirror {
		return result, diag, err
	}
	mirrored, mirrorDiag, mirrorErr := d.decode(bits.Transposed(), version, hints)
	if mirrorErr != nil {
		return nil, diag, err
	}
	mirrored.Mirrored = true
	return mirrored, mirrorDiag, nil
}

func (d *Decoder) decode(bits *bitutil.BitMatrix, version *Version, hints *decoder.Hints) (*internal.DecoderResult, codeglyphx.Diagnostics, error) {
	diag := codeglyphx.NewDiagnostics()
	diag.Version = version.Number

	fi, ok := readFormat(bits, version)
	diag.FormatDistance = fi.distance
	if !ok {
		diag.Failure = codeglyphx.FailureFormatInfo
		return nil, diag, fmt.Errorf("%w: nearest %s format word at distance %d", codeglyphx.ErrFormatInfo, version, fi.distance)
	}
	diag.ECLevel = fi.ecLevel.String()
	diag.Mask = fi.mask

	codewords, numDataBits := readCodewords(bits, version, fi)
	ecc := version.ECCodewords(fi.ecLevel)
	corrected, err := d.rsDecoder.Decode(codewords, ecc)
	if err == nil && corrected > 0 && version.Number == 1 {
		// M1 codewords detect errors but may not correct them.
		err = fmt.Errorf("%w: %d codewords in error", reedsolomon.ErrReedSolomon, corrected)
	}
	if err != nil {
		diag.Failure = codeglyphx.FailureReedSolomon
		return nil, diag, fmt.Errorf("%w: %s-%s: %v", codeglyphx.ErrReedSolomon, version, fi.ecLevel, err)
	}

	data := codewords[:len(codewords)-ecc]
	result, err := decodeBitStream(data, numDataBits, version, fi.ecLevel, hints.CharacterSet)
	if err != nil {
		diag.Failure = codeglyphx.FailurePayload
		return nil, diag, err
	}
	result.Mask = fi.mask
	result.ErrorsCorrected = corrected
	return result, diag, nil
}

// readCodewords unmasks bits and gathers the data codewords followed by
// the ECC codewords. A 4-bit final data codeword lands in the high nibble.
func readCodewords(bits *bitutil.BitMatrix, version *Version, fi formatInformation) ([]byte, int) {
	numDataBits := version.DataBits(fi.ecLevel)
	numData := version.DataCodewords(fi.ecLevel)
	codewords := make([]byte, numData+version.ECCodewords(fi.ecLevel))
	mask := dataMasks[fi.mask]
	for i, cell := range dataCells(version) {
		x, y := cell[0], cell[1]
		if bits.Get(x, y) == mask(y, x) {
			continue
		}
		pos := i
		if i >= numDataBits {
			pos = 8*numData + i - numDataBits
		}
		codewords[pos/8] |= 0x80 >> uint(pos%8)
	}
	return codewords, numDataBits
}

// decodeBitStream parses numBits of corrected data codewords. Segments run
// until the terminator or until fewer bits than a terminator remain.
func decodeBitStream(data []byte, numBits int, version *Version, ecLevel decoder.ErrorCorrectionLevel, hint string) (*internal.DecoderResult, error) {
	src := bitutil.NewBitSourceLen(data, numBits)
	seg := decoder.NewSegmentDecoder(src, hint)

	for src.Available() > 0 {
		if src.Available() < version.TerminatorBits() {
			if !src.RemainingZero() {
				return nil, fmt.Errorf("%w: %d trailing non-zero bits", codeglyphx.ErrPayloadMalformed, src.Available())
			}
			break
		}
		if zeroRun(data, src.Position(), version.TerminatorBits()) {
			break
		}

		mode := decoder.ModeNumeric
		if n := version.ModeBits(); n > 0 {
			indicator, err := seg.ReadBits(n)
			if err != nil {
				return nil, err
			}
			if indicator >= len(indicatorModes) {
				return nil, fmt.Errorf("%w: mode indicator %d in %s", codeglyphx.ErrPayloadMalformed, indicator, version)
			}
			mode = indicatorModes[indicator]
		}
		width := version.CountBits(mode)
		if width == 0 {
			return nil, fmt.Errorf("%w: %s mode in %s", codeglyphx.ErrPayloadMalformed, mode, version)
		}
		count, err := seg.ReadBits(width)
		if err != nil {
			return nil, err
		}
		if err := decodeSegment(seg, mode, count); err != nil {
			return nil, err
		}
	}

	result := internal.NewDecoderResult(data, numBits, seg.Text(), seg.ByteSegments(), ecLevel.String())
	result.Version = version.Number
	result.SymbologyModifier = 1
	return result, nil
}

func decodeSegment(seg *decoder.SegmentDecoder, mode decoder.Mode, count int) error {
	switch mode {
	case decoder.ModeNumeric:
		return seg.Numeric(count)
	case decoder.ModeAlphanumeric:
		return seg.Alphanumeric(count)
	case decoder.ModeByte:
		return seg.Byte(count)
	}
	return seg.Kanji(count)
}

// zeroRun reports whether the n bits of data from bit offset pos are zero.
func zeroRun(data []byte, pos, n int) bool {
	for i := pos; i < pos+n; i++ {
		if data[i/8]&(0x80>>uint(i%8)) != 0 {
			return false
		}
	}
	return true
}
