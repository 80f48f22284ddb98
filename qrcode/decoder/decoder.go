package decoder

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/reedsolomon"
)

// Hints tune matrix decoding.
type Hints struct {
	// CharacterSet names the charset of byte segments without an ECI.
	CharacterSet string

	// DisableMirror skips the transposed read after a failed normal read.
	DisableMirror bool
}

// Decoder decodes QR code module matrices. It holds no state and is safe
// for concurrent use.
type Decoder struct {
	rsDecoder *reedsolomon.Decoder
}

// NewDecoder creates a new QR code Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		rsDecoder: reedsolomon.NewDecoder(reedsolomon.QRCodeField256),
	}
}

// DecodeModules decodes a matrix given as rows of dark flags.
func (d *Decoder) DecodeModules(modules [][]bool, hints *Hints) (*internal.DecoderResult, codeglyphx.Diagnostics, error) {
	bits := bitutil.ParseBoolMatrix(modules)
	if bits == nil {
		diag := codeglyphx.NewDiagnostics()
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, fmt.Errorf("%w: empty or ragged module rows", codeglyphx.ErrInvalidInput)
	}
	return d.Decode(bits, hints)
}

// Decode decodes a matrix with one cell per module and no quiet zone. When
// the normal read fails the transposed symbol is tried; the returned
// diagnostics and error then describe the normal read.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, hints *Hints) (*internal.DecoderResult, codeglyphx.Diagnostics, error) {
	if hints == nil {
		hints = &Hints{}
	}
	parser, err := NewBitMatrixParser(bits)
	if err != nil {
		diag := codeglyphx.NewDiagnostics()
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, err
	}

	result, diag, err := d.decodeParser(parser, hints)
	if err == nil || hints.DisableMirror {
		return result, diag, err
	}

	parser.SetMirror(true)
	mirrored, mirrorDiag, mirrorErr := d.decodeParser(parser, hints)
	if mirrorErr != nil {
		return nil, diag, err
	}
	mirrored.Mirrored = true
	return mirrored, mirrorDiag, nil
}

func (d *Decoder) decodeParser(parser *BitMatrixParser, hints *Hints) (*internal.DecoderResult, codeglyphx.Diagnostics, error) {
	diag := codeglyphx.NewDiagnostics()

	wordA, wordB := parser.ReadFormatWords()
	candidates, best := FormatCandidates(wordA, wordB)
	diag.FormatDistance = best
	if len(candidates) == 0 {
		diag.Failure = codeglyphx.FailureFormatInfo
		return nil, diag, fmt.Errorf("%w: nearest format codeword at distance %d", codeglyphx.ErrFormatInfo, best)
	}

	version, _, err := parser.ReadVersion()
	if err != nil {
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, err
	}
	diag.Version = version.Number
	diag.ECLevel = candidates[0].ECLevel.String()
	diag.Mask = int(candidates[0].DataMask)

	var parseErr, rsErr error
	for _, c := range candidates {
		result, stage, err := d.decodeWithFormat(parser, version, c.FormatInformation, hints)
		if err == nil {
			diag.ECLevel = c.ECLevel.String()
			diag.Mask = int(c.DataMask)
			diag.FormatDistance = c.MinDistance()
			return result, diag, nil
		}
		if stage == codeglyphx.FailurePayload {
			if parseErr == nil {
				parseErr = err
			}
		} else if rsErr == nil {
			rsErr = err
		}
	}

	if parseErr != nil {
		diag.Failure = codeglyphx.FailurePayload
		return nil, diag, parseErr
	}
	diag.Failure = codeglyphx.FailureReedSolomon
	return nil, diag, rsErr
}

// decodeWithFormat reads, corrects and parses the codewords under one
// format hypothesis. The returned stage says where it failed.
func (d *Decoder) decodeWithFormat(parser *BitMatrixParser, version *Version, fi FormatInformation, hints *Hints) (*internal.DecoderResult, codeglyphx.Failure, error) {
	codewords, err := parser.ReadCodewords(version, int(fi.DataMask))
	if err != nil {
		return nil, codeglyphx.FailureReedSolomon, err
	}
	blocks, err := GetDataBlocks(codewords, version, fi.ECLevel)
	if err != nil {
		return nil, codeglyphx.FailureReedSolomon, err
	}

	data := make([]byte, 0, version.NumDataCodewords(fi.ECLevel))
	errorsCorrected := 0
	for i, block := range blocks {
		n, err := d.rsDecoder.Decode(block.Codewords, len(block.Codewords)-block.NumDataCodewords)
		if err != nil {
			return nil, codeglyphx.FailureReedSolomon,
				fmt.Errorf("%w: block %d of %d: %v", codeglyphx.ErrReedSolomon, i+1, len(blocks), err)
		}
		errorsCorrected += n
		data = append(data, block.Codewords[:block.NumDataCodewords]...)
	}

	result, err := DecodeBitStream(data, version, fi.ECLevel, hints.CharacterSet)
	if err != nil {
		return nil, codeglyphx.FailurePayload, err
	}
	result.Mask = int(fi.DataMask)
	result.ErrorsCorrected = errorsCorrected
	return result, codeglyphx.FailureNone, nil
}
