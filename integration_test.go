package codeglyphx_test

import (
	"context"
	"errors"
	"testing"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"

	// Import format packages to trigger init() registration.
	_ "github.com/EvotecIT/CodeGlyphX-sub011/microqr"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode"
)

var roundTrips = []struct {
	name    string
	content string
	format  codeglyphx.Format
	level   string
}{
	{"QRNumeric", "0123456789012345", codeglyphx.FormatQRCode, "M"},
	{"QRAlphanumeric", "HELLO WORLD $%*+-./:", codeglyphx.FormatQRCode, "Q"},
	{"QRByte", "Hello, World! https://example.com/?q=1", codeglyphx.FormatQRCode, "H"},
	{"QRKanji", "漢字テスト", codeglyphx.FormatQRCode, "L"},
	{"MicroNumeric", "12345", codeglyphx.FormatMicroQR, "L"},
	{"MicroAlphanumeric", "MICRO QR", codeglyphx.FormatMicroQR, "M"},
	{"MicroByte", "micro", codeglyphx.FormatMicroQR, "Q"},
}

// encodeModules renders content with one pixel per module and no quiet zone.
func encodeModules(t testing.TB, content string, format codeglyphx.Format, level string) *bitutil.BitMatrix {
	t.Helper()
	margin := 0
	matrix, err := codeglyphx.Encode(content, format, &codeglyphx.EncodeOptions{
		ErrorCorrection: level,
		Margin:          &margin,
	})
	if err != nil {
		t.Fatalf("Encode(%q, %s): %v", content, format, err)
	}
	return matrix
}

func TestMatrixRoundTrip(t *testing.T) {
	for _, tc := range roundTrips {
		t.Run(tc.name, func(t *testing.T) {
			matrix := encodeModules(t, tc.content, tc.format, tc.level)
			result, diag, err := codeglyphx.DecodeMatrix(matrix, nil)
			if err != nil {
				t.Fatalf("DecodeMatrix: %v (%s)", err, diag)
			}
			if result.Text != tc.content {
				t.Errorf("got %q, want %q", result.Text, tc.content)
			}
			if result.Format != tc.format {
				t.Errorf("format %s, want %s", result.Format, tc.format)
			}
			if result.ECLevel != tc.level {
				t.Errorf("level %s, want %s", result.ECLevel, tc.level)
			}
		})
	}
}

func TestPixelRoundTrip(t *testing.T) {
	for _, tc := range roundTrips {
		if tc.format != codeglyphx.FormatQRCode {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			img := codeglyphx.BitMatrixToImage(encodeModules(t, tc.content, tc.format, tc.level), 4, 4)
			pix, w, h, stride := codeglyphx.ImageToPixels(img)
			result, diag, err := qrcode.DecodePixels(context.Background(), pix, w, h, stride, codeglyphx.PixelFormatRGBA32, nil)
			if err != nil {
				t.Fatalf("DecodePixels: %v (%s)", err, diag)
			}
			if result.Text != tc.content {
				t.Errorf("got %q, want %q", result.Text, tc.content)
			}
		})
	}
}

func TestPossibleFormats(t *testing.T) {
	matrix := encodeModules(t, "12345", codeglyphx.FormatMicroQR, "L")
	_, diag, err := codeglyphx.DecodeMatrix(matrix, &codeglyphx.DecodeOptions{
		PossibleFormats: []codeglyphx.Format{codeglyphx.FormatQRCode},
	})
	if !errors.Is(err, codeglyphx.ErrInvalidInput) || diag.Failure != codeglyphx.FailureInvalidSize {
		t.Errorf("QR reader on an M1 matrix: %v (%s)", err, diag)
	}
}

func BenchmarkEncode(b *testing.B) {
	for _, tc := range roundTrips {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				encodeModules(b, tc.content, tc.format, tc.level)
			}
		})
	}
}

func BenchmarkDecodeMatrix(b *testing.B) {
	for _, tc := range roundTrips {
		b.Run(tc.name, func(b *testing.B) {
			matrix := encodeModules(b, tc.content, tc.format, tc.level)
			opts := &codeglyphx.DecodeOptions{PossibleFormats: []codeglyphx.Format{tc.format}}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := codeglyphx.DecodeMatrix(matrix, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodePixels(b *testing.B) {
	matrix := encodeModules(b, "Hello, World! This is a QR code benchmark test.", codeglyphx.FormatQRCode, "M")
	pix, w, h, stride := codeglyphx.ImageToPixels(codeglyphx.BitMatrixToImage(matrix, 4, 4))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := qrcode.DecodePixels(context.Background(), pix, w, h, stride, codeglyphx.PixelFormatRGBA32, nil); err != nil {
			b.Fatal(err)
		}
	}
}
