package reedsolomon

// Poly is an immutable polynomial over a Field. Coefficients are ordered
// from the highest degree to the lowest.
type Poly struct {
	field        *Field
	coefficients []int
}

// newPoly strips leading zero coefficients. coefficients must not be empty.
func newPoly(field *Field, coefficients []int) *Poly {
	if len(coefficients) == 0 {
		panic("reedsolomon: empty coefficients")
	}
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			coefficients = []int{0}
		} else {
			coefficients = append([]int(nil), coefficients[firstNonZero:]...)
		}
	}
	return &Poly{field: field, coefficients: coefficients}
}

// NewPoly creates a polynomial from coefficients ordered high to low.
func (f *Field) NewPoly(coefficients []int) *Poly {
	return newPoly(f, append([]int(nil), coefficients...))
}

// Coefficients returns the polynomial coefficients, highest degree first.
func (p *Poly) Coefficients() []int {
	return p.coefficients
}

// Degree returns the degree of this polynomial.
func (p *Poly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero returns true if this is the zero polynomial.
func (p *Poly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Coefficient returns the coefficient of x^degree.
func (p *Poly) Coefficient(degree int) int {
	if degree < 0 || degree > p.Degree() {
		return 0
	}
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates this polynomial at a using Horner's rule.
func (p *Poly) EvaluateAt(a int) int {
	if a == 0 {
		return p.Coefficient(0)
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = AddOrSubtract(p.field.Multiply(a, result), p.coefficients[i])
	}
	return result
}

// AddOrSubtract adds (or subtracts) another polynomial.
func (p *Poly) AddOrSubtract(other *Poly) *Poly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	smaller := p.coefficients
	larger := other.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}

	sumDiff := make([]int, len(larger))
	lengthDiff := len(larger) - len(smaller)
	copy(sumDiff, larger[:lengthDiff])
	for i := lengthDiff; i < len(larger); i++ {
		sumDiff[i] = AddOrSubtract(smaller[i-lengthDiff], larger[i])
	}
	return newPoly(p.field, sumDiff)
}

// Multiply multiplies by another polynomial.
func (p *Poly) Multiply(other *Poly) *Poly {
	if p.IsZero() || other.IsZero() {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, ac := range p.coefficients {
		for j, bc := range other.coefficients {
			product[i+j] = AddOrSubtract(product[i+j], p.field.Multiply(ac, bc))
		}
	}
	return newPoly(p.field, product)
}

// MultiplyScalar multiplies by a scalar.
func (p *Poly) MultiplyScalar(scalar int) *Poly {
	if scalar == 0 {
		return p.field.zero
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return newPoly(p.field, product)
}

// MultiplyByMonomial multiplies by coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}

// Derivative returns the formal derivative. In characteristic 2 only the odd
// powers survive.
func (p *Poly) Derivative() *Poly {
	deg := p.Degree()
	if deg == 0 {
		return p.field.zero
	}
	out := make([]int, deg)
	for d := 1; d <= deg; d += 2 {
		out[deg-d] = p.Coefficient(d)
	}
	return newPoly(p.field, out)
}

// Truncate returns p mod x^n.
func (p *Poly) Truncate(n int) *Poly {
	if p.Degree() < n {
		return p
	}
	if n <= 0 {
		return p.field.zero
	}
	return newPoly(p.field, append([]int(nil), p.coefficients[len(p.coefficients)-n:]...))
}

// Divide divides by another polynomial, returning quotient and remainder.
// other must not be zero.
func (p *Poly) Divide(other *Poly) (quotient, remainder *Poly) {
	if other.IsZero() {
		panic("reedsolomon: divide by zero")
	}

	quotient = p.field.zero
	remainder = p

	inverseDLT := p.field.Inverse(other.Coefficient(other.Degree()))
	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		degreeDiff := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), inverseDLT)
		quotient = quotient.AddOrSubtract(p.field.BuildMonomial(degreeDiff, scale))
		remainder = remainder.AddOrSubtract(other.MultiplyByMonomial(degreeDiff, scale))
	}
	return quotient, remainder
}
