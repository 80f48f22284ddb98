package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode"
)

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(append([]string{"qrcodec"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEncodeDecodePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.png")
	if code, _, stderr := runCLI("encode", "-e", "M", "-o", path, "hello", "world"); code != exitOK {
		t.Fatalf("encode exit %d: %s", code, stderr)
	}
	code, stdout, stderr := runCLI("decode", path)
	if code != exitOK {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	if got := strings.TrimSpace(stdout); got != "hello world" {
		t.Errorf("decoded %q, want %q", got, "hello world")
	}
}

func TestEncodeText(t *testing.T) {
	code, stdout, stderr := runCLI("encode", "--margin", "0", "HELLO")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 21 {
		t.Fatalf("got %d rows, want 21", len(lines))
	}
	// Top left finder pattern starts with seven dark modules.
	if !strings.HasPrefix(lines[0], strings.Repeat("##", 7)+"  ") {
		t.Errorf("row 0 = %q", lines[0])
	}
	for i, line := range lines {
		if len(line) != 42 {
			t.Errorf("row %d has %d characters, want 42", i, len(line))
		}
	}
}

func TestEncodeMicro(t *testing.T) {
	code, stdout, stderr := runCLI("encode", "--micro", "-m", "0", "12345")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if rows := strings.Count(stdout, "\n"); rows != 11 {
		t.Errorf("got %d rows, want 11 for M1", rows)
	}
}

func TestPrintHalfBlocks(t *testing.T) {
	m := bitutil.NewBitMatrixWithSize(2, 3)
	m.Set(0, 0)
	m.Set(0, 1)
	m.Set(1, 1)
	m.Set(1, 2)

	var sb strings.Builder
	if err := printHalfBlocks(&sb, m, 0, false); err != nil {
		t.Fatal(err)
	}
	if want := "█▄\n ▀\n"; sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}

	sb.Reset()
	if err := printHalfBlocks(&sb, m, 1, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if want := "█▀██"; lines[0] != want {
		t.Errorf("inverted line 0 = %q, want %q", lines[0], want)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"scan"}},
		{"encode without text", []string{"encode"}},
		{"bad level", []string{"encode", "-e", "X", "hi"}},
		{"bad scale", []string{"encode", "-s", "0", "hi"}},
		{"unknown flag", []string{"encode", "--frobnicate", "hi"}},
		{"decode without files", []string{"decode"}},
		{"mask out of range", []string{"encode", "--mask", "9", "hi"}},
		{"text too long", []string{"encode", "--max-version", "1", strings.Repeat("x", 100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(tt.args...); code != exitUsage {
				t.Errorf("exit %d, want %d", code, exitUsage)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{{"help"}, {"encode", "--help"}, {"decode", "-h"}} {
		code, stdout, _ := runCLI(args...)
		if code != exitOK || !strings.Contains(stdout, "Usage") {
			t.Errorf("%v: exit %d, output %q", args, code, stdout)
		}
	}
}

func TestDecodeFailures(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.png")
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	writeImage(t, blank, func(f *os.File) error { return png.Encode(f, img) })

	notImage := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notImage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{blank, notImage, filepath.Join(dir, "missing.png")} {
		if code, _, stderr := runCLI("decode", path); code != exitFailure {
			t.Errorf("%s: exit %d, want %d", filepath.Base(path), code, exitFailure)
		} else if !strings.Contains(stderr, filepath.Base(path)) {
			t.Errorf("%s: stderr %q does not name the file", filepath.Base(path), stderr)
		}
	}
}

func TestDecodeFormats(t *testing.T) {
	code, err := qrcode.Encode("https://example.com/bmp-tiff", &codeglyphx.EncodeOptions{ErrorCorrection: "Q"})
	if err != nil {
		t.Fatal(err)
	}
	img := codeglyphx.BitMatrixToImage(code.BitMatrix(), 3, 4)
	rgba := image.NewRGBA(img.Bounds())
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			rgba.Set(x, y, color.RGBAModel.Convert(img.At(x, y)))
		}
	}

	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.bmp"), filepath.Join(dir, "b.tiff")}
	writeImage(t, files[0], func(f *os.File) error { return bmp.Encode(f, img) })
	writeImage(t, files[1], func(f *os.File) error { return tiff.Encode(f, rgba, nil) })

	exit, stdout, stderr := runCLI(append([]string{"decode", "--timeout", "10s", "-v"}, files...)...)
	if exit != exitOK {
		t.Fatalf("exit %d: %s", exit, stderr)
	}
	for _, path := range files {
		if want := path + ": https://example.com/bmp-tiff"; !strings.Contains(stdout, want) {
			t.Errorf("output %q lacks %q", stdout, want)
		}
	}
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("verbose decode logged nothing at debug level: %q", stderr)
	}
}

func writeImage(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := encode(f); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeAll(t *testing.T) {
	var symbols []*image.Gray
	for _, text := range []string{"north", "south"} {
		code, err := qrcode.Encode(text, &codeglyphx.EncodeOptions{ErrorCorrection: "M"})
		if err != nil {
			t.Fatal(err)
		}
		symbols = append(symbols, codeglyphx.BitMatrixToImage(code.BitMatrix(), 4, 4))
	}
	w, h := symbols[0].Bounds().Dx(), symbols[0].Bounds().Dy()
	img := image.NewGray(image.Rect(0, 0, w, 2*h))
	for i, s := range symbols {
		for y := 0; y < h; y++ {
			copy(img.Pix[(i*h+y)*img.Stride:], s.Pix[y*s.Stride:y*s.Stride+w])
		}
	}
	path := filepath.Join(t.TempDir(), "pair.png")
	writeImage(t, path, func(f *os.File) error { return png.Encode(f, img) })

	exit, stdout, stderr := runCLI("decode", "--all", path)
	if exit != exitOK {
		t.Fatalf("exit %d: %s", exit, stderr)
	}
	lines := strings.Fields(stdout)
	if len(lines) != 2 || !strings.Contains(stdout, "north") || !strings.Contains(stdout, "south") {
		t.Errorf("decode --all printed %q", stdout)
	}
}
