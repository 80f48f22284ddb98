package main

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/microqr"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode"
)

type encodeConfig struct {
	minVersion int    // smallest version searched
	maxVersion int    // largest version searched
	mask       int    // forced mask pattern
	micro      bool   // Micro QR symbol
	eci        string // character set of byte mode text
	output     string // PNG output file
	scale      int    // PNG pixels per module
	margin     int    // quiet zone in modules, -1 for the default
	invert     bool   // swap dark and light in terminal output
	help       bool
}

func runEncode(args []string, stdout, stderr io.Writer) int {
	cfg := &encodeConfig{scale: 4, margin: -1}

	set := getopt.New()
	set.SetProgram("qrcodec encode")
	set.SetParameters("text...")
	level := set.EnumLong("level", 'e', []string{"L", "M", "Q", "H", "l", "m", "q", "h"}, "L",
		"error correction level, lowest to highest", "L|M|Q|H")
	set.FlagLong(&cfg.minVersion, "min-version", 0, "smallest version to use", "n")
	set.FlagLong(&cfg.maxVersion, "max-version", 0, "largest version to use", "n")
	maskOpt := set.FlagLong(&cfg.mask, "mask", 0, "force a mask pattern instead of choosing by penalty", "n")
	set.FlagLong(&cfg.micro, "micro", 'M', "encode a Micro QR symbol")
	set.FlagLong(&cfg.eci, "eci", 0, "character set of byte mode text, e.g. ISO-8859-2 or Shift_JIS", "charset")
	set.FlagLong(&cfg.output, "output", 'o', "write a PNG image instead of printing", "file")
	set.FlagLong(&cfg.scale, "scale", 's', "PNG pixels per module", "n")
	set.FlagLong(&cfg.margin, "margin", 'm', "quiet zone in modules [4, 2 for Micro QR]", "n")
	set.FlagLong(&cfg.invert, "invert", 'i', "print light modules as blocks")
	set.FlagLong(&cfg.help, "help", 'h', "show this help")

	if err := set.Getopt(args, nil); err != nil {
		fmt.Fprintln(stderr, err)
		set.PrintUsage(stderr)
		return exitUsage
	}
	if cfg.help {
		set.PrintUsage(stdout)
		return exitOK
	}
	if len(set.Args()) == 0 {
		fmt.Fprintln(stderr, "qrcodec encode: no text given")
		set.PrintUsage(stderr)
		return exitUsage
	}
	if cfg.scale < 1 {
		fmt.Fprintf(stderr, "qrcodec encode: scale %d must be positive\n", cfg.scale)
		return exitUsage
	}

	opts := &codeglyphx.EncodeOptions{
		ErrorCorrection: strings.ToUpper(*level),
		MinVersion:      cfg.minVersion,
		MaxVersion:      cfg.maxVersion,
		CharacterSet:    cfg.eci,
	}
	if maskOpt.Seen() {
		opts.MaskPattern = &cfg.mask
	}
	matrix, margin, err := encodeMatrix(strings.Join(set.Args(), " "), cfg.micro, opts)
	if err != nil {
		fmt.Fprintf(stderr, "qrcodec encode: %v\n", err)
		return exitUsage
	}
	if cfg.margin >= 0 {
		margin = cfg.margin
	}

	if cfg.output != "" {
		if err := writePNG(cfg.output, matrix, cfg.scale, margin); err != nil {
			fmt.Fprintf(stderr, "qrcodec encode: %v\n", err)
			return exitFailure
		}
		return exitOK
	}
	if isTerminal(stdout) {
		err = printHalfBlocks(stdout, matrix, margin, cfg.invert)
	} else {
		err = printRows(stdout, matrix, margin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "qrcodec encode: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// encodeMatrix returns the symbol without quiet zone and the default quiet
// zone of its symbology.
func encodeMatrix(text string, micro bool, opts *codeglyphx.EncodeOptions) (*bitutil.BitMatrix, int, error) {
	if micro {
		code, err := microqr.EncodeText(text, opts)
		if err != nil {
			return nil, 0, err
		}
		return code.BitMatrix(), 2, nil
	}
	code, err := qrcode.Encode(text, opts)
	if err != nil {
		return nil, 0, err
	}
	return code.BitMatrix(), 4, nil
}

func writePNG(path string, matrix *bitutil.BitMatrix, scale, margin int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, codeglyphx.BitMatrixToImage(matrix, scale, margin)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// dark reports whether the module at (x, y) of the symbol surrounded by
// margin light modules is dark.
func dark(matrix *bitutil.BitMatrix, margin, x, y int) bool {
	x, y = x-margin, y-margin
	if x < 0 || y < 0 || x >= matrix.Width() || y >= matrix.Height() {
		return false
	}
	return matrix.Get(x, y)
}

// printHalfBlocks draws two module rows per text line.
func printHalfBlocks(w io.Writer, matrix *bitutil.BitMatrix, margin int, invert bool) error {
	width, height := matrix.Width()+2*margin, matrix.Height()+2*margin
	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := dark(matrix, margin, x, y) != invert
			bottom := y+1 < height && dark(matrix, margin, x, y+1) != invert
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// printRows draws each module as two characters, '#' for dark.
func printRows(w io.Writer, matrix *bitutil.BitMatrix, margin int) error {
	width, height := matrix.Width()+2*margin, matrix.Height()+2*margin
	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if dark(matrix, margin, x, y) {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
