package tecdsa

import (
	"fmt"
)

// Polynomial represents a polynomial over the scalar field
type Polynomial struct {
	curve        Curve
	coefficients []Scalar
}

// NewRandomPolynomial creates a random polynomial of the given degree whose
// constant term is a copy of constantTerm.
func NewRandomPolynomial(curve Curve, degree int, constantTerm Scalar) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative, got %d", degree)
	}

	coefficients := make([]Scalar, degree+1)
	// Own copy, so Zeroize never clears the caller's secret.
	coefficients[0] = constantTerm.Add(curve.ScalarZero())

	for i := 1; i <= degree; i++ {
		coeff, err := curve.ScalarRandom()
		if err != nil {
			ZeroizeScalarSlice(coefficients[:i])
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{
		curve:        curve,
		coefficients: coefficients,
	}, nil
}

// NewPolynomial wraps explicit coefficients, lowest degree first.
func NewPolynomial(curve Curve, coefficients []Scalar) *Polynomial {
	owned := make([]Scalar, len(coefficients))
	for i, c := range coefficients {
		owned[i] = c.Add(curve.ScalarZero())
	}
	return &Polynomial{curve: curve, coefficients: owned}
}

// Evaluate evaluates the polynomial at x using Horner's method
func (p *Polynomial) Evaluate(x Scalar) Scalar {
	// f(x) = a0 + x(a1 + x(a2 + ...)). Starting from zero keeps the result
	// independent of the coefficient values Zeroize clears.
	result := p.curve.ScalarZero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}

	return result
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Zeroize securely clears the polynomial coefficients
func (p *Polynomial) Zeroize() {
	ZeroizeScalarSlice(p.coefficients)
	for i := range p.coefficients {
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}
