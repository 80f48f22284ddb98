package codeglyphx

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// PixelFormat is the byte order of a 32-bit pixel buffer.
type PixelFormat int

const (
	PixelFormatRGBA32 PixelFormat = iota
	PixelFormatBGRA32
)

// String returns the format name.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatRGBA32:
		return "RGBA32"
	case PixelFormatBGRA32:
		return "BGRA32"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(p))
	}
}

// CheckPixels validates the shape of a pixel buffer.
func CheckPixels(pix []byte, width, height, stride int, format PixelFormat) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidInput, width, height)
	}
	if format != PixelFormatRGBA32 && format != PixelFormatBGRA32 {
		return fmt.Errorf("%w: pixel format %s", ErrInvalidInput, format)
	}
	if stride < width*4 {
		return fmt.Errorf("%w: stride %d below %d", ErrInvalidInput, stride, width*4)
	}
	if need := (height-1)*stride + width*4; len(pix) < need {
		return fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidInput, len(pix), need)
	}
	return nil
}

// ImageToPixels converts any image to a non-premultiplied RGBA buffer.
func ImageToPixels(img image.Image) (pix []byte, width, height, stride int) {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix, b.Dx(), b.Dy(), dst.Stride
}

// BitMatrixToImage renders dark cells black and light cells white, each cell
// scaled to moduleSize pixels with a light border of quietZone cells.
func BitMatrixToImage(matrix *bitutil.BitMatrix, moduleSize, quietZone int) *image.Gray {
	if moduleSize < 1 {
		moduleSize = 1
	}
	if quietZone < 0 {
		quietZone = 0
	}
	w := matrix.Width()
	h := matrix.Height()
	src := image.NewGray(image.Rect(0, 0, w+2*quietZone, h+2*quietZone))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				src.SetGray(x+quietZone, y+quietZone, color.Gray{Y: 0})
			}
		}
	}
	if moduleSize == 1 {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, src.Bounds().Dx()*moduleSize, src.Bounds().Dy()*moduleSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
