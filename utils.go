package tecdsa

import (
	"crypto/subtle"
	"math/big"
	"strings"
)

// SecureCompare performs constant-time comparison of byte slices
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ZeroizeBytes securely clears a byte slice
func ZeroizeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// ZeroizeScalarSlice securely clears a slice of scalars
func ZeroizeScalarSlice(scalars []Scalar) {
	for _, scalar := range scalars {
		if scalar != nil {
			scalar.Zeroize()
		}
	}
}

// BatchInvert inverts every scalar with a single field inversion
// (Montgomery's trick). Any zero input fails the whole batch.
func BatchInvert(scalars []Scalar) ([]Scalar, error) {
	n := len(scalars)
	if n == 0 {
		return nil, nil
	}

	for i, scalar := range scalars {
		if scalar.IsZero() {
			return nil, ErrSingularElement.WithContext("position", i)
		}
	}

	// prefix[i] = scalars[0] * ... * scalars[i]
	prefix := make([]Scalar, n)
	prefix[0] = scalars[0]
	for i := 1; i < n; i++ {
		prefix[i] = prefix[i-1].Mul(scalars[i])
	}

	acc, err := prefix[n-1].Invert()
	if err != nil {
		return nil, err
	}

	// acc holds (scalars[0] * ... * scalars[i])^-1 at the top of each step.
	inverses := make([]Scalar, n)
	for i := n - 1; i > 0; i-- {
		inverses[i] = acc.Mul(prefix[i-1])
		acc = acc.Mul(scalars[i])
	}
	inverses[0] = acc

	return inverses, nil
}

func parseHexBig(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 16)
}
