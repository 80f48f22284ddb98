package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pborman/getopt/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode"
)

type decodeConfig struct {
	tryHarder bool          // wider scale and dimension search
	timeout   time.Duration // per image, 0 for none
	charset   string        // charset of byte segments without ECI
	all       bool          // print every symbol in the image
	verbose   bool          // debug logging
	help      bool
}

func runDecode(args []string, stdout, stderr io.Writer) int {
	cfg := &decodeConfig{}

	set := getopt.New()
	set.SetProgram("qrcodec decode")
	set.SetParameters("image...")
	set.FlagLong(&cfg.tryHarder, "try-harder", 0, "spend more time looking for symbols")
	set.FlagLong(&cfg.timeout, "timeout", 't', "give up on an image after this long, e.g. 2s", "duration")
	set.FlagLong(&cfg.charset, "charset", 'c', "character set of byte segments without an ECI", "name")
	set.FlagLong(&cfg.all, "all", 'a', "print every symbol found, one per line")
	set.FlagLong(&cfg.verbose, "verbose", 'v', "log the search at debug level")
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
	files := set.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "qrcodec decode: no image given")
		set.PrintUsage(stderr)
		return exitUsage
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts := &codeglyphx.DecodeOptions{
		TryHarder:    cfg.tryHarder,
		CharacterSet: cfg.charset,
		Logger:       logger,
	}

	status := exitOK
	for _, path := range files {
		results, diag, err := decodeFile(path, cfg.timeout, cfg.all, opts)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			logger.Debug("decode failed", "file", path, "diagnostics", diag.String())
			status = exitFailure
			continue
		}
		for _, result := range results {
			if len(files) > 1 {
				fmt.Fprintf(stdout, "%s: ", path)
			}
			fmt.Fprintln(stdout, result.Text)
			logger.Debug("decoded",
				"file", path,
				"version", result.Version,
				"level", result.ECLevel,
				"mask", result.Mask,
				"scale", diag.Scale,
				"method", diag.Method)
		}
	}
	return status
}

func decodeFile(path string, timeout time.Duration, all bool, opts *codeglyphx.DecodeOptions) ([]*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, codeglyphx.NewDiagnostics(), err
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	pix, width, height, stride := codeglyphx.ImageToPixels(img)
	if all {
		return qrcode.DecodeAllPixels(ctx, pix, width, height, stride, codeglyphx.PixelFormatRGBA32, opts)
	}
	result, diag, err := qrcode.DecodePixels(ctx, pix, width, height, stride, codeglyphx.PixelFormatRGBA32, opts)
	if err != nil {
		return nil, diag, err
	}
	return []*codeglyphx.Result{result}, diag, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
