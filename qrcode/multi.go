package qrcode

import (
	"context"
	"math"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/detector"
)

// maxMultiTriples bounds the triples tried per binarization when collecting
// every symbol, doubled by TryHarder.
const maxMultiTriples = 48

// DecodeAllPixels locates and decodes every QR code in a 32-bit pixel buffer.
func DecodeAllPixels(ctx context.Context, pix []byte, width, height, stride int, format codeglyphx.PixelFormat, opts *codeglyphx.DecodeOptions) ([]*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	return NewReader().DecodeAllPixels(ctx, pix, width, height, stride, format, opts)
}

// DecodeAllPixels walks the same scales, binarizations and polarities as
// DecodePixels but keeps going after a decode, collecting one result per
// distinct payload. Finder patterns that belong to a decoded symbol are not
// combined into further triples. The diagnostics describe the first symbol
// found, or the attempt that got furthest when none was.
func (r *Reader) DecodeAllPixels(ctx context.Context, pix []byte, width, height, stride int, format codeglyphx.PixelFormat, opts *codeglyphx.DecodeOptions) ([]*codeglyphx.Result, codeglyphx.Diagnostics, error) {
	if opts == nil {
		opts = &codeglyphx.DecodeOptions{}
	}
	if err := codeglyphx.CheckPixels(pix, width, height, stride, format); err != nil {
		diag := codeglyphx.NewDiagnostics()
		diag.Failure = codeglyphx.FailureInvalidSize
		return nil, diag, err
	}

	c := &collector{search: newSearch(r, opts), payloads: make(map[string]bool)}
	err := c.walk(ctx, pix, width, height, stride, format, func(st strategy, image *bitutil.BitMatrix) (bool, error) {
		return false, c.collect(ctx, st, image)
	})
	if err != nil {
		return c.results, c.failed(err), err
	}
	if len(c.results) == 0 {
		return nil, c.best, c.best.Err()
	}
	return c.results, c.first, nil
}

// collector gathers distinct symbols across strategies.
type collector struct {
	*search

	results  []*codeglyphx.Result
	first    codeglyphx.Diagnostics
	payloads map[string]bool

	// claimed holds finder centers of decoded symbols in full resolution.
	claimed []claim
}

type claim struct {
	x, y, radius float64
}

func (c *collector) isClaimed(f detector.FinderPattern, scale int) bool {
	x, y := f.X*float64(scale), f.Y*float64(scale)
	for _, cl := range c.claimed {
		if math.Hypot(x-cl.x, y-cl.y) <= cl.radius {
			return true
		}
	}
	return false
}

// collect tries every triple of one strategy whose finders are unclaimed.
// A non-nil error means the context ended.
func (c *collector) collect(ctx context.Context, st strategy, image *bitutil.BitMatrix) error {
	det := detector.NewDetector(image)
	centers, err := det.FindFinderPatterns(ctx)
	if err != nil {
		return err
	}
	base := st.diagnostics()
	base.Candidates = len(centers)
	c.consider(base)

	limit := maxMultiTriples
	if c.opts.TryHarder {
		limit *= tryHarderMultiple
	}
	triples := detector.SelectTriples(centers)
	if len(triples) > limit {
		triples = triples[:limit]
	}
	c.logger.Debug("collect",
		"scale", st.scale,
		"binarization", st.binarization,
		"inverted", st.inverted,
		"candidates", len(centers),
		"triples", len(triples))

	for i, t := range triples {
		if c.isClaimed(t.TopLeft, st.scale) || c.isClaimed(t.TopRight, st.scale) || c.isClaimed(t.BottomLeft, st.scale) {
			continue
		}
		for _, dim := range detector.DimensionCandidates(t, c.opts.TryHarder) {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := base
			d.TriplesTried = i + 1
			d.Dimension = dim
			d.Method = detector.MethodFinder
			dr, err := det.SampleTriple(ctx, t, dim)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				c.consider(d)
				continue
			}
			result := c.attempt(dr, st, d)
			if result == nil {
				continue
			}
			c.add(result, t, st.scale)
			break
		}
	}
	return nil
}

// add records a decoded symbol and claims its finders. Payloads already
// collected under another strategy are dropped.
func (c *collector) add(result *codeglyphx.Result, t detector.Triple, scale int) {
	radius := 3.5 * t.ModuleSize() * float64(scale)
	for _, f := range []detector.FinderPattern{t.TopLeft, t.TopRight, t.BottomLeft} {
		c.claimed = append(c.claimed, claim{x: f.X * float64(scale), y: f.Y * float64(scale), radius: radius})
	}
	key := result.Text + "\x00" + string(result.RawBytes)
	if c.payloads[key] {
		return
	}
	c.payloads[key] = true
	if len(c.results) == 0 {
		c.first = c.found
	}
	c.results = append(c.results, result)
}
