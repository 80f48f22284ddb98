package codeglyphx

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

func TestFailureOf(t *testing.T) {
	tests := []struct {
		err  error
		want Failure
	}{
		{nil, FailureNone},
		{fmt.Errorf("block 2: %w", ErrReedSolomon), FailureReedSolomon},
		{fmt.Errorf("%w: mode 0xE", ErrPayloadMalformed), FailurePayload},
		{ErrUnsupportedCharacter, FailurePayload},
		{fmt.Errorf("wrapped: %w", fmt.Errorf("%w: distance 5", ErrFormatInfo)), FailureFormatInfo},
		{ErrInvalidInput, FailureInvalidSize},
		{ErrCancelled, FailureCancelled},
		{errors.New("something else"), FailureNotFound},
	}
	for _, tt := range tests {
		if got := FailureOf(tt.err); got != tt.want {
			t.Errorf("FailureOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}

	for f := FailureNone; f <= FailureCancelled; f++ {
		if got := FailureOf(f.Err()); got != f {
			t.Errorf("FailureOf(%s.Err()) = %s", f, got)
		}
	}
}

func TestFailureRank(t *testing.T) {
	order := []Failure{FailureNotFound, FailureInvalidSize, FailureFormatInfo, FailureReedSolomon, FailurePayload}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("%s ranks %d, not above %s at %d", order[i], order[i].Rank(), order[i-1], order[i-1].Rank())
		}
	}
}

func diagnostics(f Failure, distance int) Diagnostics {
	d := NewDiagnostics()
	d.Failure = f
	d.FormatDistance = distance
	return d
}

func TestDiagnosticsBetter(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Diagnostics
		wantA bool
	}{
		{"later stage", diagnostics(FailureReedSolomon, 2), diagnostics(FailureFormatInfo, 0), true},
		{"earlier stage", diagnostics(FailureFormatInfo, 0), diagnostics(FailurePayload, 3), false},
		{"closer format", diagnostics(FailureFormatInfo, 4), diagnostics(FailureFormatInfo, 6), true},
		{"unread format", diagnostics(FailureNotFound, -1), diagnostics(FailureNotFound, 9), false},
		{"equal", diagnostics(FailureReedSolomon, 1), diagnostics(FailureReedSolomon, 1), false},
	}
	for _, tt := range tests {
		if got := tt.a.Better(tt.b); got != tt.wantA {
			t.Errorf("%s: Better = %t, want %t", tt.name, got, tt.wantA)
		}
	}
}

func TestDiagnosticsErr(t *testing.T) {
	if err := NewDiagnostics().Err(); err != nil {
		t.Errorf("empty diagnostics error = %v", err)
	}
	d := diagnostics(FailureReedSolomon, 1)
	d.Version = 7
	d.ECLevel = "Q"
	d.Mask = 3
	err := d.Err()
	if !errors.Is(err, ErrReedSolomon) {
		t.Fatalf("Err() = %v, want ErrReedSolomon", err)
	}
	for _, want := range []string{"failure=reed-solomon", "version=7", "ec=Q", "mask=3", "format-distance=1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%q lacks %q", err, want)
		}
	}
	if s := NewDiagnostics().String(); s != "failure=none" {
		t.Errorf("String() = %q", s)
	}
}

func TestOrderBestPatterns(t *testing.T) {
	tl, tr, bl := ResultPoint{10, 10}, ResultPoint{110, 12}, ResultPoint{8, 108}
	perms := [][3]ResultPoint{
		{tl, tr, bl}, {tl, bl, tr}, {tr, tl, bl},
		{tr, bl, tl}, {bl, tl, tr}, {bl, tr, tl},
	}
	want := [3]ResultPoint{tl, tr, bl}
	for _, p := range perms {
		if got := OrderBestPatterns(p); got != want {
			t.Errorf("OrderBestPatterns(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestCheckPixels(t *testing.T) {
	tests := []struct {
		name            string
		n, w, h, stride int
		format          PixelFormat
		wantErr         bool
	}{
		{"exact", 32, 4, 2, 16, PixelFormatRGBA32, false},
		{"padded stride", 20 + 16, 4, 2, 20, PixelFormatBGRA32, false},
		{"zero width", 32, 0, 2, 16, PixelFormatRGBA32, true},
		{"short stride", 32, 4, 2, 12, PixelFormatRGBA32, true},
		{"short buffer", 31, 4, 2, 16, PixelFormatRGBA32, true},
		{"bad format", 32, 4, 2, 16, PixelFormat(7), true},
	}
	for _, tt := range tests {
		err := CheckPixels(make([]byte, tt.n), tt.w, tt.h, tt.stride, tt.format)
		if tt.wantErr != (err != nil) {
			t.Errorf("%s: err = %v, wantErr %t", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: %v is not ErrInvalidInput", tt.name, err)
		}
	}
}

func TestImageToPixels(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 4, 4))
	full.SetGray(1, 2, color.Gray{Y: 0x40})
	full.SetGray(2, 2, color.Gray{Y: 0xC0})
	sub := full.SubImage(image.Rect(1, 2, 3, 4))

	pix, w, h, stride := ImageToPixels(sub)
	if w != 2 || h != 2 || stride != 8 {
		t.Fatalf("got %dx%d stride %d, want 2x2 stride 8", w, h, stride)
	}
	want := []byte{0x40, 0x40, 0x40, 0xFF, 0xC0, 0xC0, 0xC0, 0xFF}
	for i, b := range want {
		if pix[i] != b {
			t.Fatalf("first row = % x, want % x", pix[:8], want)
		}
	}
}

func TestBitMatrixToImage(t *testing.T) {
	m := bitutil.NewBitMatrix(2)
	m.Set(0, 0)
	img := BitMatrixToImage(m, 2, 1)
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("bounds %v, want 8x8", b)
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0xFF}, {2, 2, 0}, {3, 3, 0}, {4, 4, 0xFF}, {7, 7, 0xFF},
	}
	for _, tt := range tests {
		if got := img.GrayAt(tt.x, tt.y).Y; got != tt.want {
			t.Errorf("pixel (%d,%d) = %#x, want %#x", tt.x, tt.y, got, tt.want)
		}
	}
}

type stubReader struct {
	result *Result
	diag   Diagnostics
	err    error
}

func (r stubReader) DecodeMatrix(*bitutil.BitMatrix, *DecodeOptions) (*Result, Diagnostics, error) {
	return r.result, r.diag, r.err
}

type stubWriter struct{}

func (stubWriter) Encode(contents string, _ *EncodeOptions) (*bitutil.BitMatrix, error) {
	return bitutil.NewBitMatrix(len(contents)), nil
}

func TestRegistry(t *testing.T) {
	const (
		formatA Format = 100 + iota
		formatB
		formatC
	)
	RegisterReader(formatA, func() Reader {
		return stubReader{diag: diagnostics(FailureFormatInfo, 5), err: ErrFormatInfo}
	})
	RegisterReader(formatB, func() Reader {
		return stubReader{diag: diagnostics(FailureReedSolomon, 0), err: ErrReedSolomon}
	})
	RegisterReader(formatC, func() Reader {
		return stubReader{result: NewResult("ok", nil, nil, formatC)}
	})
	RegisterWriter(formatA, func() Writer { return stubWriter{} })

	bits := bitutil.NewBitMatrix(21)
	_, diag, err := DecodeMatrix(bits, &DecodeOptions{PossibleFormats: []Format{formatA, formatB}})
	if !errors.Is(err, ErrReedSolomon) || diag.Failure != FailureReedSolomon {
		t.Errorf("best failure = %s, %v; want reed-solomon", diag.Failure, err)
	}

	result, _, err := DecodeMatrix(bits, &DecodeOptions{PossibleFormats: []Format{formatA, formatC}})
	if err != nil || result.Text != "ok" {
		t.Errorf("DecodeMatrix = %v, %v", result, err)
	}

	if _, _, err := DecodeMatrix(bits, &DecodeOptions{PossibleFormats: []Format{Format(999)}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unregistered format error = %v", err)
	}

	m, err := Encode("abc", formatA, nil)
	if err != nil || m.Width() != 3 {
		t.Errorf("Encode = %v, %v", m, err)
	}
	if _, err := Encode("abc", formatB, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Encode without writer error = %v", err)
	}
}

func TestResultByteSegments(t *testing.T) {
	r := NewResult("hi", []byte{1, 2}, nil, FormatQRCode)
	if r.NumBits != 16 || r.Mask != -1 {
		t.Errorf("NumBits %d Mask %d", r.NumBits, r.Mask)
	}
	if r.ByteSegments() != nil {
		t.Error("unexpected byte segments")
	}
	r.PutMetadata(MetadataByteSegments, [][]byte{[]byte("hi")})
	if segs := r.ByteSegments(); len(segs) != 1 || string(segs[0]) != "hi" {
		t.Errorf("ByteSegments = %q", segs)
	}
	r.AddResultPoints([]ResultPoint{{1, 2}})
	if len(r.Points) != 1 {
		t.Errorf("Points = %v", r.Points)
	}
}
