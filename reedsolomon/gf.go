// Package reedsolomon implements GF(256) arithmetic and the Reed-Solomon code
// used by QR and Micro QR symbols: generator construction, remainder based
// encoding, and Berlekamp-Massey decoding with Chien search and Forney
// magnitudes.
package reedsolomon

import "fmt"

// Field is GF(2^8) defined by a primitive polynomial. The exp table is
// doubled so products need no modulo reduction.
type Field struct {
	expTable      [512]int
	logTable      [256]int
	zero          *Poly
	one           *Poly
	primitive     int
	generatorBase int
}

// QRCodeField256 is the QR code field, x^8 + x^4 + x^3 + x^2 + 1, with
// generator roots starting at alpha^0.
var QRCodeField256 = NewField(0x011D, 0)

// NewField builds the exp/log tables for the given primitive polynomial.
func NewField(primitive, generatorBase int) *Field {
	f := &Field{primitive: primitive, generatorBase: generatorBase}
	x := 1
	for i := 0; i < 255; i++ {
		f.expTable[i] = x
		f.expTable[i+255] = x
		f.logTable[x] = i
		x <<= 1
		if x >= 256 {
			x = (x ^ primitive) & 0xFF
		}
	}
	f.expTable[510] = f.expTable[0]
	f.expTable[511] = f.expTable[1]
	f.zero = newPoly(f, []int{0})
	f.one = newPoly(f, []int{1})
	return f
}

// Zero returns the zero polynomial.
func (f *Field) Zero() *Poly { return f.zero }

// One returns the one polynomial.
func (f *Field) One() *Poly { return f.one }

// BuildMonomial returns coefficient * x^degree. degree must not be negative.
func (f *Field) BuildMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newPoly(f, coefficients)
}

// AddOrSubtract computes a XOR b; addition and subtraction coincide in GF(2^n).
func AddOrSubtract(a, b int) int {
	return a ^ b
}

// Exp returns alpha^a for a >= 0.
func (f *Field) Exp(a int) int {
	return f.expTable[a%255]
}

// Log returns log_alpha(a). a must not be zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return f.logTable[a]
}

// Inverse returns the multiplicative inverse of a. a must not be zero.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return f.expTable[255-f.logTable[a]]
}

// Multiply returns a * b in this field.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[f.logTable[a]+f.logTable[b]]
}

// Divide returns a / b. b must not be zero.
func (f *Field) Divide(a, b int) int {
	if a == 0 {
		return 0
	}
	return f.Multiply(a, f.Inverse(b))
}

// GeneratorBase returns the exponent of the first generator root.
func (f *Field) GeneratorBase() int { return f.generatorBase }

// String returns a string representation.
func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,256)", f.primitive)
}
