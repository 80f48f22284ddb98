package qrcode

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"sort"
	"testing"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
)

// sideBySide places the images left to right on a white canvas.
func sideBySide(imgs ...*image.Gray) *image.Gray {
	width, height := 0, 0
	for _, img := range imgs {
		width += img.Bounds().Dx()
		height = max(height, img.Bounds().Dy())
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	for i := range out.Pix {
		out.Pix[i] = 0xFF
	}
	x := 0
	for _, img := range imgs {
		r := img.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+r.Dx(), r.Dy()), img, r.Min, draw.Src)
		x += r.Dx()
	}
	return out
}

func decodeAllGray(t *testing.T, img *image.Gray, opts *codeglyphx.DecodeOptions) ([]*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	t.Helper()
	pix, w, h, stride := codeglyphx.ImageToPixels(img)
	return DecodeAllPixels(context.Background(), pix, w, h, stride, codeglyphx.PixelFormatRGBA32, opts)
}

func texts(results []*codeglyphx.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	sort.Strings(out)
	return out
}

func TestDecodeAllPixels(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		want     []string
	}{
		{"two symbols", []string{"first symbol", "second symbol"}, []string{"first symbol", "second symbol"}},
		{"three symbols", []string{"one", "two", "three"}, []string{"one", "three", "two"}},
		{"same payload twice", []string{"twin", "twin"}, []string{"twin"}},
		{"single symbol", []string{"alone"}, []string{"alone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var imgs []*image.Gray
			for _, c := range tt.contents {
				imgs = append(imgs, symbolImage(t, c, "M", 4))
			}
			results, diag, err := decodeAllGray(t, sideBySide(imgs...), nil)
			if err != nil {
				t.Fatalf("DecodeAllPixels: %v (%s)", err, diag)
			}
			got := texts(results)
			if len(got) != len(tt.want) {
				t.Fatalf("decoded %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("decoded %q, want %q", got, tt.want)
					break
				}
			}
			if diag.Failure != codeglyphx.FailureNone || diag.Version == 0 {
				t.Errorf("diagnostics = %s", diag)
			}
			for _, r := range results {
				if len(r.Points) < 3 {
					t.Errorf("%q has %d points", r.Text, len(r.Points))
				}
			}
		})
	}
}

func TestDecodeAllPixelsPointsSeparate(t *testing.T) {
	left := symbolImage(t, "left", "M", 4)
	right := symbolImage(t, "right", "M", 4)
	results, _, err := decodeAllGray(t, sideBySide(left, right), nil)
	if err != nil {
		t.Fatal(err)
	}
	split := float64(left.Bounds().Dx())
	for _, r := range results {
		for _, p := range r.Points {
			if (r.Text == "left") != (p.X < split) {
				t.Errorf("%q point (%.1f,%.1f) on the wrong side of %.0f", r.Text, p.X, p.Y, split)
			}
		}
	}
}

func TestDecodeAllPixelsAccept(t *testing.T) {
	img := sideBySide(symbolImage(t, "keep", "M", 4), symbolImage(t, "drop", "M", 4))
	results, _, err := decodeAllGray(t, img, &codeglyphx.DecodeOptions{
		Accept: func(r *codeglyphx.Result) bool { return r.Text == "keep" },
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(results); len(got) != 1 || got[0] != "keep" {
		t.Errorf("decoded %q, want [keep]", got)
	}
}

func TestDecodeAllPixelsFailures(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range blank.Pix {
		blank.Pix[i] = 0xFF
	}
	results, diag, err := decodeAllGray(t, blank, nil)
	if !errors.Is(err, codeglyphx.ErrNotFound) || results != nil {
		t.Errorf("blank image: %d results, err = %v", len(results), err)
	}
	if diag.Failure == codeglyphx.FailureNone {
		t.Errorf("blank image diagnostics = %s", diag)
	}

	if _, diag, err := DecodeAllPixels(context.Background(), make([]byte, 10), 4, 4, 16, codeglyphx.PixelFormatRGBA32, nil); !errors.Is(err, codeglyphx.ErrInvalidInput) || diag.Failure != codeglyphx.FailureInvalidSize {
		t.Errorf("short buffer: err = %v, failure %s", err, diag.Failure)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pix, w, h, stride := codeglyphx.ImageToPixels(symbolImage(t, "cancel", "M", 4))
	if _, diag, err := DecodeAllPixels(ctx, pix, w, h, stride, codeglyphx.PixelFormatRGBA32, nil); !errors.Is(err, codeglyphx.ErrCancelled) || diag.Failure != codeglyphx.FailureCancelled {
		t.Errorf("cancelled: err = %v, failure %s", err, diag.Failure)
	}
}
