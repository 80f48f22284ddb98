// Package detector locates QR symbols in binarized images and samples their
// module grids.
package detector

import (
	"context"
	"fmt"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
	"github.com/EvotecIT/CodeGlyphX-sub011/transform"
)

// Location methods recorded in detector results.
const (
	MethodFinder      = "finder"
	MethodBoundingBox = "bounding-box"
)

// Detector detects QR codes in binary images.
type Detector struct {
	image *bitutil.BitMatrix
}

// NewDetector creates a new Detector for the given image.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image}
}

// Image returns the binarized image being searched.
func (d *Detector) Image() *bitutil.BitMatrix { return d.image }

// Detect samples the best triple at its first plausible dimension. Callers
// that can verify a grid should walk FindFinderPatterns, SelectTriples and
// DimensionCandidates themselves.
func (d *Detector) Detect(ctx context.Context) (*internal.DetectorResult, error) {
	centers, err := d.FindFinderPatterns(ctx)
	if err != nil {
		return nil, err
	}
	triples := SelectTriples(centers)
	if len(triples) == 0 {
		return nil, fmt.Errorf("%w: %d finder candidates form no triple", codeglyphx.ErrNotFound, len(centers))
	}
	lastErr := error(codeglyphx.ErrNotFound)
	for _, t := range triples {
		for _, dim := range DimensionCandidates(t, false) {
			result, err := d.SampleTriple(ctx, t, dim)
			if err == nil {
				return result, nil
			}
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
		}
	}
	return nil, lastErr
}

// SampleTriple maps a dimension x dimension grid onto the triple, anchored on
// the bottom-right alignment pattern when one is found, refines the mapping
// against the format and timing patterns, and samples it. The finder centers
// are re-measured first so they agree with the alignment pattern.
func (d *Detector) SampleTriple(ctx context.Context, t Triple, dimension int) (*internal.DetectorResult, error) {
	t.TopLeft, t.TopRight, t.BottomLeft = d.recenter(t.TopLeft), d.recenter(t.TopRight), d.recenter(t.BottomLeft)
	moduleSize := t.ModuleSize()
	if moduleSize < 1 {
		return nil, fmt.Errorf("%w: module size %.2f", codeglyphx.ErrNotFound, moduleSize)
	}
	version, err := decoder.GetProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codeglyphx.ErrNotFound, err)
	}

	points := t.Points()
	var alignment *codeglyphx.ResultPoint
	if len(version.AlignmentPatternCenters) > 0 {
		estX, estY := estimateAlignment(t, dimension)
		if p, ok := d.findAlignment(moduleSize, estX, estY); ok {
			alignment = &p
			points = append(points, p)
		}
	}

	sampler := transform.NewGridSampler(moduleSize)
	xform := d.refine(sampler, createTransform(t, alignment, dimension), dimension)
	bits, err := sampler.SampleGrid(ctx, d.image, dimension, xform)
	if err != nil {
		return nil, err
	}
	return internal.NewDetectorResult(bits, points, moduleSize, MethodFinder), nil
}

func createTransform(t Triple, alignment *codeglyphx.ResultPoint, dimension int) *transform.Transform {
	dimMinusThree := float64(dimension) - 3.5
	tl, tr, bl := t.TopLeft.Point(), t.TopRight.Point(), t.BottomLeft.Point()

	var bottomRight codeglyphx.ResultPoint
	var sourceBottomRight float64
	if alignment != nil {
		bottomRight = *alignment
		sourceBottomRight = dimMinusThree - 3
	} else {
		bottomRight = codeglyphx.ResultPoint{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
		sourceBottomRight = dimMinusThree
	}

	return transform.QuadToQuad(
		transform.Quad{
			{X: 3.5, Y: 3.5},
			{X: dimMinusThree, Y: 3.5},
			{X: sourceBottomRight, Y: sourceBottomRight},
			{X: 3.5, Y: dimMinusThree},
		},
		transform.Quad{tl, tr, bottomRight, bl},
	)
}
