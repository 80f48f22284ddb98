package qrcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/binarizer"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/detector"
)

const (
	defaultMaxScale = 3

	// Triples and box sizes tried per binarization, doubled by TryHarder.
	maxTriples        = 8
	maxBoxDimensions  = 6
	tryHarderMultiple = 2
)

// Scales returns the downsampling factors searched for an image, smallest
// first.
func Scales(width, height int, opts *codeglyphx.DecodeOptions) []int {
	if opts == nil {
		opts = &codeglyphx.DecodeOptions{}
	}
	limit := opts.MaxScale
	if limit <= 0 {
		limit = defaultMaxScale
	}
	limit = min(limit, binarizer.MaxScale)

	m := min(width, height)
	scales := []int{1}
	if limit >= 2 && (m >= 400 || opts.TryHarder) {
		scales = append(scales, 2)
	}
	if limit >= 3 && (m >= 800 || opts.TryHarder && m >= 240) {
		scales = append(scales, 3)
	}
	return scales
}

// DecodePixels locates and decodes a QR code in a 32-bit pixel buffer.
func DecodePixels(ctx context.Context, pix []byte, width, height, stride int, format codeglyphx.PixelFormat, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	return NewReader().DecodePixels(ctx, pix, width, height, stride, format, opts)
}

// DecodePixels searches every scale, binarization and polarity in order,
// trying finder triples and then the dark bounding box on each, and returns
// the first decode opts.Accept does not reject. On failure the diagnostics
// of the attempt that got furthest are returned with their error.
func (r *Reader) DecodePixels(ctx context.Context, pix []byte, width, height, stride int, format codeglyphx.PixelFormat, opts *codeglyphx.DecodeOptions) (*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	if opts == nil {
		opts = &codeglyphx.DecodeOptions{}
	}
	if err := codeglyphx.CheckPixels(pix, width, height, stride, format); err != nil {
		diag := codeglyphx.NewDiagnostics()
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, err
	}

	s := newSearch(r, opts)
	var found *codeglyphx.Result
	err := s.walk(ctx, pix, width, height, stride, format, func(st strategy, image *bitutil.BitMatrix) (bool, error) {
		result, err := s.run(ctx, st, image)
		found = result
		return result != nil, err
	})
	if err != nil {
		return nil, s.failed(err), err
	}
	if found != nil {
		return found, s.found, nil
	}
	if s.rejected > 0 {
		return nil, s.best, fmt.Errorf("%w: %d decoded symbols rejected", codeglyphx.ErrNotFound, s.rejected)
	}
	return nil, s.best, s.best.Err()
}

// strategy is one binarized image in one polarity.
type strategy struct {
	scale        int
	binarization string
	inverted     bool
}

func (st strategy) diagnostics() codeglyphx.Diagnostics {
	d := codeglyphx.NewDiagnostics()
	d.Failure = codeglyphx.FailureNotFound
	d.Scale = st.scale
	d.Binarization = st.binarization
	d.Inverted = st.inverted
	return d
}

// search carries the state of one pixel decode call.
type search struct {
	reader *Reader
	opts   *codeglyphx.DecodeOptions
	logger *slog.Logger

	best     codeglyphx.Diagnostics
	seen     bool
	found    codeglyphx.Diagnostics
	rejected int
}

func newSearch(r *Reader, opts *codeglyphx.DecodeOptions) *search {
	s := &search{
		reader: r,
		opts:   opts,
		logger: opts.Logger,
		best:   codeglyphx.NewDiagnostics(),
	}
	s.best.Failure = codeglyphx.FailureNotFound
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// walk binarizes the image at every scale and binarization and hands each
// polarity to visit until visit reports it is done. Errors from visit mean
// the context ended and are returned wrapped in ErrCancelled.
func (s *search) walk(ctx context.Context, pix []byte, width, height, stride int, format codeglyphx.PixelFormat, visit func(strategy, *bitutil.BitMatrix) (bool, error)) error {
	for _, scale := range Scales(width, height, s.opts) {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		gray, err := binarizer.NewGrayImage(pix, width, height, stride, format, scale, s.opts.MinContrast)
		if errors.Is(err, codeglyphx.ErrNotFound) {
			s.logger.Debug("scale skipped", "scale", scale, "err", err)
			continue
		}
		if err != nil {
			return err
		}
		for _, b := range binarizer.Binarizations(gray, s.opts.TryHarder) {
			matrix, err := b.BlackMatrix()
			if err != nil {
				s.logger.Debug("binarization failed", "scale", scale, "binarization", b.Name(), "err", err)
				continue
			}
			for _, inverted := range []bool{false, true} {
				image := matrix
				if inverted {
					image = matrix.Inverted()
				}
				done, err := visit(strategy{scale: scale, binarization: b.Name(), inverted: inverted}, image)
				if err != nil {
					return cancelled(err)
				}
				if done {
					return nil
				}
			}
		}
	}
	return nil
}

func cancelled(err error) error {
	if errors.Is(err, codeglyphx.ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", codeglyphx.ErrCancelled, err)
}

// failed returns the diagnostics reported with a walk error.
func (s *search) failed(err error) codeglyphx.Diagnostics {
	d := s.best
	if errors.Is(err, codeglyphx.ErrCancelled) {
		d.Failure = codeglyphx.FailureCancelled
	}
	return d
}

func (s *search) consider(d codeglyphx.Diagnostics) {
	if !s.seen || d.Better(s.best) {
		s.best, s.seen = d, true
	}
}

// run tries every hypothesis of one strategy. A non-nil error means the
// context ended.
func (s *search) run(ctx context.Context, st strategy, image *bitutil.BitMatrix) (*codeglyphx.Result, error) {
	det := detector.NewDetector(image)
	centers, err := det.FindFinderPatterns(ctx)
	if err != nil {
		return nil, err
	}
	base := st.diagnostics()
	base.Candidates = len(centers)

	limit, boxLimit := maxTriples, maxBoxDimensions
	if s.opts.TryHarder {
		limit *= tryHarderMultiple
		boxLimit *= tryHarderMultiple
	}
	triples := detector.SelectTriples(centers)
	if len(triples) > limit {
		triples = triples[:limit]
	}
	s.logger.Debug("strategy",
		"scale", st.scale,
		"binarization", st.binarization,
		"inverted", st.inverted,
		"candidates", len(centers),
		"triples", len(triples))
	s.consider(base)

	for i, t := range triples {
		for _, dim := range detector.DimensionCandidates(t, s.opts.TryHarder) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			d := base
			d.TriplesTried = i + 1
			d.Dimension = dim
			d.Method = detector.MethodFinder
			dr, err := det.SampleTriple(ctx, t, dim)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				s.consider(d)
				continue
			}
			if result := s.attempt(dr, st, d); result != nil {
				return result, nil
			}
		}
	}

	if s.opts.DisableBoundingBox {
		return nil, nil
	}
	box, ok := det.DarkBoundingBox()
	if !ok {
		return nil, nil
	}
	dims := detector.BoxDimensions(box)
	if len(dims) > boxLimit {
		dims = dims[:boxLimit]
	}
	for _, dim := range dims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := base
		d.TriplesTried = len(triples)
		d.Dimension = dim
		d.Method = detector.MethodBoundingBox
		dr, err := det.SampleBox(ctx, box, dim)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		if result := s.attempt(dr, st, d); result != nil {
			return result, nil
		}
	}
	return nil, nil
}

// attempt decodes one sampled grid, then its inverse, merging the matrix
// decoder's findings into the hypothesis diagnostics.
func (s *search) attempt(dr *internal.DetectorResult, st strategy, hyp codeglyphx.Diagnostics) *codeglyphx.Result {
	var res *internal.DecoderResult
	for _, bits := range []*bitutil.BitMatrix{dr.Bits, dr.Bits.Inverted()} {
		r, md, err := s.reader.dec.Decode(bits, decoderHints(s.opts))
		d := hyp
		d.Failure = md.Failure
		d.Version = md.Version
		d.ECLevel = md.ECLevel
		d.Mask = md.Mask
		d.FormatDistance = md.FormatDistance
		if err != nil {
			s.consider(d)
			continue
		}
		res, hyp = r, d
		break
	}
	if res == nil {
		return nil
	}

	points := make([]codeglyphx.ResultPoint, len(dr.Points))
	for i, p := range dr.Points {
		points[i] = codeglyphx.ResultPoint{X: p.X * float64(st.scale), Y: p.Y * float64(st.scale)}
	}
	result := newResult(res, points)
	if s.opts.Accept != nil && !s.opts.Accept(result) {
		s.rejected++
		s.logger.Debug("result rejected", "scale", st.scale, "binarization", st.binarization, "method", hyp.Method)
		return nil
	}
	hyp.Failure = codeglyphx.FailureNone
	s.found = hyp
	s.logger.Debug("decoded",
		"scale", st.scale,
		"binarization", st.binarization,
		"inverted", st.inverted,
		"method", hyp.Method,
		"version", hyp.Version,
		"dimension", hyp.Dimension)
	return result
}
