package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrReedSolomon indicates a block with more errors than its ECC codewords
// can correct.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder corrects errors in codeword blocks.
type Decoder struct {
	field *Field
}

// NewDecoder creates a new Decoder for the given field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

var defaultDecoder = NewDecoder(QRCodeField256)

// TryCorrectInPlace corrects block, whose last eccLen bytes are ECC
// codewords, with the QR field. See Decoder.Decode.
func TryCorrectInPlace(block []byte, eccLen int) (int, error) {
	return defaultDecoder.Decode(block, eccLen)
}

// Decode corrects errors in block in place and returns the number of
// corrected codewords. On failure block is left unmodified.
func (d *Decoder) Decode(block []byte, eccLen int) (int, error) {
	if eccLen <= 0 || eccLen > len(block) || len(block) > 255 {
		return 0, fmt.Errorf("%w: block of %d with %d ecc codewords", ErrReedSolomon, len(block), eccLen)
	}
	syndromes, clean := d.syndromes(block, eccLen)
	if clean {
		return 0, nil
	}

	locator := d.berlekampMassey(syndromes)
	numErrors := locator.Degree()
	if numErrors == 0 || numErrors > eccLen/2 {
		return 0, fmt.Errorf("%w: locator degree %d exceeds %d", ErrReedSolomon, numErrors, eccLen/2)
	}

	positions := d.chienSearch(locator, len(block))
	if len(positions) != numErrors {
		return 0, fmt.Errorf("%w: %d locator roots inside block, want %d", ErrReedSolomon, len(positions), numErrors)
	}

	// Omega(x) = S(x) * Lambda(x) mod x^eccLen, with S(x) = sum S_i x^i.
	synCoeffs := make([]int, eccLen)
	for i, s := range syndromes {
		synCoeffs[eccLen-1-i] = s
	}
	omega := newPoly(d.field, synCoeffs).Multiply(locator).Truncate(eccLen)
	deriv := locator.Derivative()

	saved := append([]byte(nil), block...)
	for _, exp := range positions {
		x := d.field.Exp(exp)
		xInv := d.field.Inverse(x)
		denom := deriv.EvaluateAt(xInv)
		if denom == 0 {
			copy(block, saved)
			return 0, fmt.Errorf("%w: zero derivative at error locator", ErrReedSolomon)
		}
		magnitude := d.field.Multiply(x, d.field.Divide(omega.EvaluateAt(xInv), denom))
		if g := d.field.generatorBase; g != 0 {
			magnitude = d.field.Multiply(magnitude, d.field.Inverse(d.field.Exp(exp*g)))
		}
		idx := len(block) - 1 - exp
		block[idx] ^= byte(magnitude)
	}

	if _, ok := d.syndromes(block, eccLen); !ok {
		copy(block, saved)
		return 0, fmt.Errorf("%w: residual syndromes after correction", ErrReedSolomon)
	}
	return numErrors, nil
}

// syndromes evaluates the received polynomial at the generator roots and
// reports whether all of them are zero.
func (d *Decoder) syndromes(block []byte, eccLen int) ([]int, bool) {
	coeffs := make([]int, len(block))
	for i, b := range block {
		coeffs[i] = int(b)
	}
	received := &Poly{field: d.field, coefficients: coeffs}
	out := make([]int, eccLen)
	clean := true
	for i := range out {
		out[i] = received.EvaluateAt(d.field.Exp(i + d.field.generatorBase))
		if out[i] != 0 {
			clean = false
		}
	}
	return out, clean
}

// berlekampMassey returns the error locator Lambda(x) = prod (1 + X_k x)
// for the syndrome sequence.
func (d *Decoder) berlekampMassey(s []int) *Poly {
	f := d.field
	// Low-order-first working copies.
	c := make([]int, len(s)+1)
	b := make([]int, len(s)+1)
	c[0], b[0] = 1, 1
	l, m, lastDiscrepancy := 0, 1, 1

	for n := range s {
		delta := s[n]
		for i := 1; i <= l; i++ {
			delta ^= f.Multiply(c[i], s[n-i])
		}
		if delta == 0 {
			m++
			continue
		}
		coef := f.Divide(delta, lastDiscrepancy)
		if 2*l <= n {
			t := append([]int(nil), c...)
			for i := 0; i+m < len(c); i++ {
				c[i+m] ^= f.Multiply(coef, b[i])
			}
			l = n + 1 - l
			b = t
			lastDiscrepancy = delta
			m = 1
		} else {
			for i := 0; i+m < len(c); i++ {
				c[i+m] ^= f.Multiply(coef, b[i])
			}
			m++
		}
	}

	high := make([]int, len(c))
	for i, v := range c {
		high[len(c)-1-i] = v
	}
	locator := newPoly(f, high)
	if locator.Degree() != l {
		// Inconsistent sequence; report an impossible degree.
		return f.BuildMonomial(len(s)+1, 1)
	}
	return locator
}

// chienSearch returns the exponents e in [0, n) with Lambda(alpha^-e) = 0.
// Exponent e is codeword index n-1-e.
func (d *Decoder) chienSearch(locator *Poly, n int) []int {
	var out []int
	for e := 0; e < n; e++ {
		if locator.EvaluateAt(d.field.Inverse(d.field.Exp(e))) == 0 {
			out = append(out, e)
		}
	}
	return out
}
