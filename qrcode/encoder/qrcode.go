package encoder

import (
	"strings"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

// QRCode is an encoded symbol. It is not modified after Encode returns.
type QRCode struct {
	Mode        decoder.Mode
	ECLevel     decoder.ErrorCorrectionLevel
	Version     *decoder.Version
	MaskPattern int
	Segments    []Segment
	Matrix      *ByteMatrix
}

// BitMatrix returns the module matrix without quiet zone.
func (qr *QRCode) BitMatrix() *bitutil.BitMatrix {
	return qr.Matrix.BitMatrix()
}

// Render scales the symbol to scale pixels per module and surrounds it with
// quietZone light modules.
func Render(code *QRCode, scale, quietZone int) *bitutil.BitMatrix {
	return RenderMatrix(code.Matrix, scale, quietZone)
}

// RenderMatrix scales a finished module grid to scale pixels per module
// and surrounds it with quietZone light modules.
func RenderMatrix(input *ByteMatrix, scale, quietZone int) *bitutil.BitMatrix {
	scale = max(scale, 1)
	quietZone = max(quietZone, 0)
	side := (input.Width + 2*quietZone) * scale
	output := bitutil.NewBitMatrix(side)
	for y := 0; y < input.Height; y++ {
		outputY := (quietZone + y) * scale
		for x := 0; x < input.Width; x++ {
			if input.Get(x, y) == 1 {
				output.SetRegion((quietZone+x)*scale, outputY, scale, scale)
			}
		}
	}
	return output
}

// String returns a visual representation of the symbol.
func (qr *QRCode) String() string {
	var sb strings.Builder
	for y := 0; y < qr.Matrix.Height; y++ {
		for x := 0; x < qr.Matrix.Width; x++ {
			if qr.Matrix.Get(x, y) == 1 {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
