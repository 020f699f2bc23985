package tecdsa

import (
	"fmt"
)

// Share is one participant's Shamir share of the signing key: the key
// polynomial evaluated at the participant's index.
type Share struct {
	Index ParticipantIndex // x-coordinate, never 0
	Value Scalar           // f(Index)
}

// NewShare creates a new share
func NewShare(index ParticipantIndex, value Scalar) *Share {
	return &Share{
		Index: index,
		Value: value,
	}
}

// Zeroize clears the share value
func (s *Share) Zeroize() {
	if s.Value != nil {
		s.Value.Zeroize()
	}
}

func (s *Share) validate() error {
	if s == nil || s.Value == nil {
		return ErrInvalidShare.WithDetails("share or share value is nil")
	}
	if s.Index == 0 {
		return ErrInvalidShare.WithDetails("participant index 0 is reserved for the secret")
	}
	return nil
}

// GenerateShares splits secret into n shares at indices 1..n such that any t
// of them reconstruct it. The polynomial is zeroized before returning.
func GenerateShares(curve Curve, secret Scalar, n, t int) ([]*Share, error) {
	if t < 1 || t > n {
		return nil, ErrInvalidThreshold.
			WithContext("threshold", t).
			WithContext("participants", n)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret must not be nil")
	}

	polynomial, err := NewRandomPolynomial(curve, t-1, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create polynomial: %w", err)
	}
	defer polynomial.Zeroize()

	shares := make([]*Share, n)
	for i := 0; i < n; i++ {
		index := ParticipantIndex(i + 1)
		shares[i] = NewShare(index, polynomial.Evaluate(index.ToScalar(curve)))
	}

	return shares, nil
}

// ReconstructSecret interpolates shares at x = 0. It is a dealer-side and
// test utility; signing never reconstructs the key.
func ReconstructSecret(curve Curve, shares []*Share) (Scalar, error) {
	points := make([]InterpolationPoint, len(shares))
	for i, share := range shares {
		if err := share.validate(); err != nil {
			return nil, err
		}
		points[i] = InterpolationPoint{Index: share.Index, Value: share.Value}
	}
	return InterpolateAtZero(curve, points)
}

// VerifyShares checks that every share lies on the same polynomial of degree
// t-1: the first t shares are interpolated at each remaining share's index
// and compared against it.
func VerifyShares(curve Curve, shares []*Share, t int) error {
	if t < 1 || t > len(shares) {
		return ErrInvalidThreshold.
			WithContext("threshold", t).
			WithContext("shares", len(shares))
	}

	base := make([]InterpolationPoint, t)
	for i, share := range shares[:t] {
		if err := share.validate(); err != nil {
			return err
		}
		base[i] = InterpolationPoint{Index: share.Index, Value: share.Value}
	}

	for _, share := range shares[t:] {
		if err := share.validate(); err != nil {
			return err
		}
		expected, err := LagrangeInterpolate(curve, base, share.Index.ToScalar(curve))
		if err != nil {
			return err
		}
		if !expected.Equal(share.Value) {
			return ErrInvalidShare.
				WithContext("index", uint32(share.Index)).
				WithDetails("share is not on the dealer polynomial")
		}
	}

	return nil
}

// PublicKeyFromSecret returns secret·G, the aggregate public key of a sharing.
func PublicKeyFromSecret(curve Curve, secret Scalar) Point {
	return curve.BasePoint().Mul(secret)
}
