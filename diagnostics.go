package codeglyphx

import (
	"fmt"
	"strings"
)

// Diagnostics records how far a decode attempt got. Pixel decodes also fill
// the hypothesis fields.
type Diagnostics struct {
	Failure Failure

	Version int
	ECLevel string
	Mask    int

	// FormatDistance is the smallest Hamming distance between a format
	// information copy and a valid codeword, or -1 when it was never read.
	FormatDistance int

	// Pixel decode hypothesis.
	Scale        int
	Binarization string
	Inverted     bool
	Candidates   int
	TriplesTried int
	Dimension    int
	Method       string
}

// NewDiagnostics returns empty diagnostics with unknown mask and distance.
func NewDiagnostics() Diagnostics {
	return Diagnostics{Mask: -1, FormatDistance: -1}
}

// Better reports whether d describes a more promising failed attempt than
// other: a later failure stage, then a smaller format distance.
func (d Diagnostics) Better(other Diagnostics) bool {
	if r, o := d.Failure.Rank(), other.Failure.Rank(); r != o {
		return r > o
	}
	return distanceKey(d.FormatDistance) < distanceKey(other.FormatDistance)
}

func distanceKey(d int) int {
	if d < 0 {
		return 1 << 30
	}
	return d
}

// Err returns the failure's sentinel wrapped with the diagnostics summary.
func (d Diagnostics) Err() error {
	err := d.Failure.Err()
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", err, d)
}

// String implements fmt.Stringer.
func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failure=%s", d.Failure)
	if d.Version > 0 {
		fmt.Fprintf(&b, " version=%d", d.Version)
	}
	if d.ECLevel != "" {
		fmt.Fprintf(&b, " ec=%s", d.ECLevel)
	}
	if d.Mask >= 0 {
		fmt.Fprintf(&b, " mask=%d", d.Mask)
	}
	if d.FormatDistance >= 0 {
		fmt.Fprintf(&b, " format-distance=%d", d.FormatDistance)
	}
	if d.Scale > 0 {
		fmt.Fprintf(&b, " scale=%d binarization=%s inverted=%t", d.Scale, d.Binarization, d.Inverted)
	}
	if d.Method != "" {
		fmt.Fprintf(&b, " method=%s", d.Method)
	}
	if d.Candidates > 0 {
		fmt.Fprintf(&b, " candidates=%d triples=%d", d.Candidates, d.TriplesTried)
	}
	if d.Dimension > 0 {
		fmt.Fprintf(&b, " dimension=%d", d.Dimension)
	}
	return b.String()
}
