// Package binarizer turns raw pixel buffers into luminance images and
// luminance images into dark/light matrices.
package binarizer

import (
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

const (
	// DefaultMinContrast is the smallest max-min luminance spread searched.
	DefaultMinContrast = 24

	// MaxScale is the largest downsampling factor NewGrayImage accepts.
	MaxScale = 8
)

// GrayImage is an 8-bit luminance image. It implements
// codeglyphx.LuminanceSource.
type GrayImage struct {
	width  int
	height int
	scale  int
	lum    []byte
	min    int
	max    int
}

// NewGrayImage converts a 32-bit pixel buffer to luminance, box averaging
// scale x scale pixel blocks. Luminance is (299R+587G+114B+500)/1000 and
// fully transparent pixels count as white. An image whose luminance spread
// is below minContrast (zero means DefaultMinContrast) is rejected with
// codeglyphx.ErrNotFound.
func NewGrayImage(pix []byte, width, height, stride int, format codeglyphx.PixelFormat, scale, minContrast int) (*GrayImage, error) {
	if err := codeglyphx.CheckPixels(pix, width, height, stride, format); err != nil {
		return nil, err
	}
	if scale < 1 || scale > MaxScale {
		return nil, fmt.Errorf("%w: scale %d", codeglyphx.ErrInvalidInput, scale)
	}
	if minContrast <= 0 {
		minContrast = DefaultMinContrast
	}
	w, h := width/scale, height/scale
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d image too small for scale %d", codeglyphx.ErrInvalidInput, width, height, scale)
	}

	rOff, bOff := 0, 2
	if format == codeglyphx.PixelFormatBGRA32 {
		rOff, bOff = 2, 0
	}
	g := &GrayImage{width: w, height: h, scale: scale, lum: make([]byte, w*h), min: 0xFF}
	n := scale * scale
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB int
			for dy := 0; dy < scale; dy++ {
				offset := (y*scale+dy)*stride + x*scale*4
				for dx := 0; dx < scale; dx++ {
					p := pix[offset+dx*4 : offset+dx*4+4]
					if p[3] == 0 {
						sumR += 0xFF
						sumG += 0xFF
						sumB += 0xFF
						continue
					}
					sumR += int(p[rOff])
					sumG += int(p[1])
					sumB += int(p[bOff])
				}
			}
			l := (299*sumR + 587*sumG + 114*sumB + 500*n) / (1000 * n)
			g.lum[y*w+x] = byte(l)
			g.min = min(g.min, l)
			g.max = max(g.max, l)
		}
	}
	if g.max-g.min < minContrast {
		return nil, fmt.Errorf("%w: contrast %d below %d", codeglyphx.ErrNotFound, g.max-g.min, minContrast)
	}
	return g, nil
}

// NewGrayImageFromLuminance wraps an existing row-major luminance buffer.
func NewGrayImageFromLuminance(lum []byte, width, height int) (*GrayImage, error) {
	if width <= 0 || height <= 0 || len(lum) < width*height {
		return nil, fmt.Errorf("%w: %d luminance bytes for %dx%d", codeglyphx.ErrInvalidInput, len(lum), width, height)
	}
	g := &GrayImage{width: width, height: height, scale: 1, lum: lum[:width*height], min: 0xFF}
	for _, l := range g.lum {
		g.min = min(g.min, int(l))
		g.max = max(g.max, int(l))
	}
	return g, nil
}

// Width returns the image width.
func (g *GrayImage) Width() int { return g.width }

// Height returns the image height.
func (g *GrayImage) Height() int { return g.height }

// Scale returns the downsampling factor the image was built with.
func (g *GrayImage) Scale() int { return g.scale }

// Min returns the darkest luminance.
func (g *GrayImage) Min() int { return g.min }

// Max returns the brightest luminance.
func (g *GrayImage) Max() int { return g.max }

// At returns the luminance at (x, y).
func (g *GrayImage) At(x, y int) byte { return g.lum[y*g.width+x] }

// Row copies row y into row, allocating when row is too small.
func (g *GrayImage) Row(y int, row []byte) []byte {
	if len(row) < g.width {
		row = make([]byte, g.width)
	}
	copy(row, g.lum[y*g.width:(y+1)*g.width])
	return row
}

// Matrix returns the luminance buffer. Callers must not modify it.
func (g *GrayImage) Matrix() []byte { return g.lum }

// Histogram counts pixels per luminance value.
func (g *GrayImage) Histogram() [256]int {
	var hist [256]int
	for _, l := range g.lum {
		hist[l]++
	}
	return hist
}

// Otsu returns the threshold maximising the between-class variance of the
// dark (at most threshold) and light classes.
func (g *GrayImage) Otsu() int {
	hist := g.Histogram()
	total := len(g.lum)
	sumAll := 0
	for i, c := range hist {
		sumAll += i * c
	}

	best, bestVariance := (g.min+g.max)/2, -1.0
	sumDark, weightDark := 0, 0
	for t := 0; t < 256; t++ {
		weightDark += hist[t]
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		sumDark += t * hist[t]
		meanDark := float64(sumDark) / float64(weightDark)
		meanLight := float64(sumAll-sumDark) / float64(weightLight)
		v := float64(weightDark) * float64(weightLight) * (meanDark - meanLight) * (meanDark - meanLight)
		if v > bestVariance {
			best, bestVariance = t, v
		}
	}
	return best
}

// Percentile returns the smallest luminance at or below which at least
// percent of the pixels lie.
func (g *GrayImage) Percentile(percent int) int {
	target := len(g.lum) * percent / 100
	if target <= 0 {
		return 0
	}
	hist := g.Histogram()
	sum := 0
	for i, c := range hist {
		sum += c
		if sum >= target {
			return i
		}
	}
	return 0xFF
}
