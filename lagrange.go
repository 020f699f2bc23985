package tecdsa

// InterpolationPoint is one (x, f(x)) sample of a polynomial over the scalar
// field, with x given as a participant index.
type InterpolationPoint struct {
	Index ParticipantIndex
	Value Scalar
}

// LagrangeCoefficients returns the weights λ_i with Σ λ_i·f(x_i) = f(x) for
// every polynomial f of degree < len(indices).
func LagrangeCoefficients(curve Curve, indices []ParticipantIndex, x Scalar) ([]Scalar, error) {
	if len(indices) == 0 {
		return nil, ErrInsufficientPartials.WithContext("points", 0)
	}

	seen := make(map[ParticipantIndex]struct{}, len(indices))
	for _, idx := range indices {
		if _, dup := seen[idx]; dup {
			return nil, ErrDegenerateInterpolationSet.WithContext("index", uint32(idx))
		}
		seen[idx] = struct{}{}
	}

	xs := make([]Scalar, len(indices))
	for i, idx := range indices {
		xs[i] = idx.ToScalar(curve)
	}

	numerators := make([]Scalar, len(xs))
	denominators := make([]Scalar, len(xs))
	for i, xi := range xs {
		num := curve.ScalarOne()
		den := curve.ScalarOne()
		for j, xj := range xs {
			if i == j {
				continue
			}
			// (x - x_j) / (x_i - x_j)
			num = num.Mul(x.Sub(xj))
			den = den.Mul(xi.Sub(xj))
		}
		numerators[i] = num
		denominators[i] = den
	}

	inverses, err := BatchInvert(denominators)
	if err != nil {
		return nil, ErrDegenerateInterpolationSet.WithCause(err)
	}

	coefficients := make([]Scalar, len(xs))
	for i := range xs {
		coefficients[i] = numerators[i].Mul(inverses[i])
	}
	return coefficients, nil
}

// LagrangeInterpolate evaluates at x the unique polynomial of degree
// < len(points) passing through points.
func LagrangeInterpolate(curve Curve, points []InterpolationPoint, x Scalar) (Scalar, error) {
	indices := make([]ParticipantIndex, len(points))
	for i, p := range points {
		indices[i] = p.Index
	}

	coefficients, err := LagrangeCoefficients(curve, indices, x)
	if err != nil {
		return nil, err
	}

	result := curve.ScalarZero()
	for i, p := range points {
		result = result.Add(p.Value.Mul(coefficients[i]))
	}
	return result, nil
}

// InterpolateAtZero is LagrangeInterpolate at x = 0, the secret's position.
func InterpolateAtZero(curve Curve, points []InterpolationPoint) (Scalar, error) {
	return LagrangeInterpolate(curve, points, curve.ScalarZero())
}
