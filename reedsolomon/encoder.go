package reedsolomon

import (
	"fmt"
	"sync"
)

// Encoder generates error correction codewords. Generator polynomials are
// cached per degree; an Encoder is safe for concurrent use.
type Encoder struct {
	field *Field

	mu         sync.Mutex
	generators []*Poly
}

// NewEncoder creates a new Encoder for the given field.
func NewEncoder(field *Field) *Encoder {
	return &Encoder{
		field:      field,
		generators: []*Poly{field.one},
	}
}

var defaultEncoder = NewEncoder(QRCodeField256)

// generator returns prod (x - alpha^(i+base)) for i in [0, degree).
func (e *Encoder) generator(degree int) *Poly {
	e.mu.Lock()
	defer e.mu.Unlock()
	for d := len(e.generators); d <= degree; d++ {
		last := e.generators[d-1]
		next := last.Multiply(newPoly(e.field, []int{1, e.field.Exp(d - 1 + e.field.generatorBase)}))
		e.generators = append(e.generators, next)
	}
	return e.generators[degree]
}

// Divisor returns the generator polynomial for eccLen codewords without its
// leading 1, highest degree first.
func (e *Encoder) Divisor(eccLen int) []byte {
	if eccLen <= 0 {
		return nil
	}
	coeffs := e.generator(eccLen).Coefficients()
	out := make([]byte, eccLen)
	for i := range out {
		out[i] = byte(coeffs[i+1])
	}
	return out
}

// Remainder divides data(x)*x^len(divisor) by the monic divisor and returns
// the len(divisor) remainder bytes, which are the ECC codewords.
func (e *Encoder) Remainder(data, divisor []byte) []byte {
	result := make([]byte, len(divisor))
	if len(divisor) == 0 {
		return result
	}
	for _, b := range data {
		factor := int(b ^ result[0])
		copy(result, result[1:])
		result[len(result)-1] = 0
		for i, coef := range divisor {
			result[i] ^= byte(e.field.Multiply(int(coef), factor))
		}
	}
	return result
}

// ComputeDivisor returns the QR generator polynomial for eccLen codewords
// without its leading coefficient.
func ComputeDivisor(eccLen int) []byte {
	return defaultEncoder.Divisor(eccLen)
}

// ComputeRemainder returns the ECC codewords of data for a divisor from
// ComputeDivisor.
func ComputeRemainder(data, divisor []byte) []byte {
	return defaultEncoder.Remainder(data, divisor)
}

// Encode writes ecBytes ECC codewords into the tail of toEncode, computed
// over the leading data codewords.
func (e *Encoder) Encode(toEncode []int, ecBytes int) error {
	if ecBytes <= 0 {
		return fmt.Errorf("%w: no error correction bytes", ErrReedSolomon)
	}
	dataBytes := len(toEncode) - ecBytes
	if dataBytes <= 0 {
		return fmt.Errorf("%w: no data bytes provided", ErrReedSolomon)
	}
	data := make([]byte, dataBytes)
	for i := range data {
		if toEncode[i] < 0 || toEncode[i] > 255 {
			return fmt.Errorf("%w: codeword %d out of range", ErrReedSolomon, toEncode[i])
		}
		data[i] = byte(toEncode[i])
	}
	ecc := e.Remainder(data, e.Divisor(ecBytes))
	for i, b := range ecc {
		toEncode[dataBytes+i] = int(b)
	}
	return nil
}
