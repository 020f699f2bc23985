package tecdsa

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Curve is the curve context every operation in this package is handed
// explicitly. It carries the group order, the base point, and the public-key
// recovery capability; nothing about the curve is held in package state.
type Curve interface {
	// Metadata
	Name() string
	ScalarSize() int
	PointSize() int
	Order() *big.Int
	HalfOrder() *big.Int

	// Scalar construction
	ScalarFromBytes([]byte) (Scalar, error)
	ScalarFromUniformBytes([]byte) (Scalar, error)
	ScalarFromUint64(uint64) Scalar
	ScalarRandom() (Scalar, error)
	ScalarZero() Scalar
	ScalarOne() Scalar

	// Point construction
	PointFromBytes([]byte) (Point, error)
	BasePoint() Point
	PointIdentity() Point

	// RecoverPublicKey returns the public key that produced (r, s) over digest
	// for the given recovery id.
	RecoverPublicKey(digest []byte, r, s Scalar, recoveryID byte) (Point, error)
}

// Scalar is an element of the scalar field modulo the curve order. Every
// method returns a fresh value and leaves its operands untouched.
type Scalar interface {
	// Serialization
	Bytes() []byte
	String() string
	BigInt() *big.Int

	// Arithmetic operations
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Exp(*big.Int) Scalar
	Negate() Scalar
	Invert() (Scalar, error)

	// Comparison
	Equal(Scalar) bool
	IsZero() bool
	IsOverHalfOrder() bool

	// Security
	Zeroize()
}

// Point is a point on the curve.
type Point interface {
	// Serialization
	Bytes() []byte
	CompressedBytes() []byte
	String() string

	// Arithmetic operations
	Add(Point) Point
	Mul(Scalar) Point
	Negate() Point

	// Comparison
	Equal(Point) bool
	IsIdentity() bool

	// XScalar returns the affine x-coordinate reduced modulo the group order.
	XScalar() Scalar
}

// CurveType names a supported curve.
type CurveType string

const (
	Secp256k1 CurveType = "secp256k1"
)

// NewCurve creates a new curve instance
func NewCurve(curveType CurveType) (Curve, error) {
	switch curveType {
	case Secp256k1:
		return NewSecp256k1Curve(), nil
	default:
		return nil, ErrInvalidCurve.WithContext("curve", string(curveType))
	}
}

var (
	ErrInvalidScalarLength = errors.New("invalid scalar length")
	ErrInvalidPointLength  = errors.New("invalid point length")
	ErrInvalidPoint        = errors.New("invalid point")
)

// readRandom is the randomness source for every sampled scalar.
var readRandom = rand.Read

// SecureRandom generates cryptographically secure random bytes
func SecureRandom(size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := readRandom(buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}
