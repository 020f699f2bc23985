package tecdsa

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"runtime"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// compactSigMagicOffset is the header offset of a compact recoverable
// signature: header = 27 + recovery id (uncompressed key requested).
const compactSigMagicOffset = 27

// Secp256k1Curve implements the Curve interface for secp256k1
type Secp256k1Curve struct {
	order     *big.Int
	halfOrder *big.Int
}

// NewSecp256k1Curve creates a new secp256k1 curve instance
func NewSecp256k1Curve() *Secp256k1Curve {
	order := new(big.Int).Set(btcec.S256().Params().N)
	return &Secp256k1Curve{
		order:     order,
		halfOrder: new(big.Int).Rsh(order, 1),
	}
}

func (c *Secp256k1Curve) Name() string { return string(Secp256k1) }
func (c *Secp256k1Curve) ScalarSize() int { return 32 }
func (c *Secp256k1Curve) PointSize() int { return 65 } // Uncompressed
func (c *Secp256k1Curve) Order() *big.Int { return new(big.Int).Set(c.order) }

// HalfOrder returns floor(n/2), the largest canonical s value.
func (c *Secp256k1Curve) HalfOrder() *big.Int { return new(big.Int).Set(c.halfOrder) }

// ScalarFromBytes interprets 32 big-endian bytes as an integer and reduces it
// modulo the group order.
func (c *Secp256k1Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("%w: got %d, want 32", ErrInvalidScalarLength, len(data))
	}

	scalar := new(btcec.ModNScalar)
	scalar.SetByteSlice(data)
	return &Secp256k1Scalar{inner: scalar}, nil
}

// ScalarFromUniformBytes reduces a wide byte string modulo the group order.
// At least 48 bytes keep the bias of the reduction negligible.
func (c *Secp256k1Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("need at least 32 bytes for uniform scalar generation, got %d", len(data))
	}

	wide := new(big.Int).SetBytes(data)
	wide.Mod(wide, c.order)
	return c.scalarFromBig(wide), nil
}

func (c *Secp256k1Curve) ScalarFromUint64(v uint64) Scalar {
	var buf [32]byte
	new(big.Int).SetUint64(v).FillBytes(buf[:])
	scalar := new(btcec.ModNScalar)
	scalar.SetBytes(&buf)
	return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) ScalarRandom() (Scalar, error) {
	for {
		var buf [32]byte
		if _, err := readRandom(buf[:]); err != nil {
			return nil, ErrRandomnessGeneration.WithCause(err)
		}

		scalar := new(btcec.ModNScalar)
		overflow := scalar.SetBytes(&buf)
		ZeroizeBytes(buf[:])
		if overflow == 0 {
			return &Secp256k1Scalar{inner: scalar}, nil
		}
		// Rejection sampling keeps the draw uniform in [0, n).
	}
}

func (c *Secp256k1Curve) ScalarZero() Scalar {
	return &Secp256k1Scalar{inner: new(btcec.ModNScalar)}
}

func (c *Secp256k1Curve) ScalarOne() Scalar {
	scalar := new(btcec.ModNScalar)
	scalar.SetInt(1)
	return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != 33 && len(data) != 65 {
		return nil, ErrInvalidPointLength
	}

	pubKey, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}

	return &Secp256k1Point{inner: pubKey}, nil
}

func (c *Secp256k1Curve) BasePoint() Point {
	return &Secp256k1Point{inner: btcec.Generator()}
}

func (c *Secp256k1Curve) PointIdentity() Point {
	return &Secp256k1Point{inner: nil}
}

// RecoverPublicKey runs SEC1 4.1.6 public-key recovery through btcec's
// compact signature format.
func (c *Secp256k1Curve) RecoverPublicKey(digest []byte, r, s Scalar, recoveryID byte) (Point, error) {
	if len(digest) != 32 {
		return nil, ErrInvalidDigest.WithContext("length", len(digest))
	}
	if recoveryID > 3 {
		return nil, fmt.Errorf("invalid recovery id %d", recoveryID)
	}

	compact := make([]byte, 65)
	compact[0] = compactSigMagicOffset + recoveryID
	copy(compact[1:33], r.Bytes())
	copy(compact[33:65], s.Bytes())

	pubKey, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, fmt.Errorf("recover public key: %w", err)
	}
	return &Secp256k1Point{inner: pubKey}, nil
}

func (c *Secp256k1Curve) scalarFromBig(v *big.Int) *Secp256k1Scalar {
	var buf [32]byte
	v.FillBytes(buf[:])
	scalar := new(btcec.ModNScalar)
	scalar.SetBytes(&buf)
	return &Secp256k1Scalar{inner: scalar}
}

// Secp256k1Scalar implements the Scalar interface
type Secp256k1Scalar struct {
	inner *btcec.ModNScalar
}

func castSecp256k1Scalar(s Scalar) *Secp256k1Scalar {
	out, ok := s.(*Secp256k1Scalar)
	if !ok {
		panic(fmt.Sprintf("tecdsa: scalar %T is not a secp256k1 scalar", s))
	}
	return out
}

func (s *Secp256k1Scalar) Bytes() []byte {
	var buf [32]byte
	s.inner.PutBytes(&buf)
	return buf[:]
}

func (s *Secp256k1Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Secp256k1Scalar) BigInt() *big.Int {
	return new(big.Int).SetBytes(s.Bytes())
}

func (s *Secp256k1Scalar) Add(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Add2(s.inner, castSecp256k1Scalar(other).inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Sub(other Scalar) Scalar {
	negated := new(btcec.ModNScalar)
	negated.NegateVal(castSecp256k1Scalar(other).inner)
	result := new(btcec.ModNScalar)
	result.Add2(s.inner, negated)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Mul(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Mul2(s.inner, castSecp256k1Scalar(other).inner)
	return &Secp256k1Scalar{inner: result}
}

// Exp raises s to a non-negative exponent by square-and-multiply.
func (s *Secp256k1Scalar) Exp(exponent *big.Int) Scalar {
	result := new(btcec.ModNScalar)
	result.SetInt(1)
	if exponent == nil || exponent.Sign() <= 0 {
		return &Secp256k1Scalar{inner: result}
	}
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		result.Square()
		if exponent.Bit(i) == 1 {
			result.Mul(s.inner)
		}
	}
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Negate() Scalar {
	result := new(btcec.ModNScalar)
	result.NegateVal(s.inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrSingularElement
	}

	result := new(btcec.ModNScalar)
	// Variable time; inputs here are public (r, Lagrange denominators) or a
	// per-event nonce that is already shared with every signer.
	result.InverseValNonConst(s.inner)
	return &Secp256k1Scalar{inner: result}, nil
}

func (s *Secp256k1Scalar) Equal(other Scalar) bool {
	return s.inner.Equals(castSecp256k1Scalar(other).inner)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.inner.IsZero()
}

func (s *Secp256k1Scalar) IsOverHalfOrder() bool {
	return s.inner.IsOverHalfOrder()
}

func (s *Secp256k1Scalar) Zeroize() {
	s.inner.Zero()
	runtime.KeepAlive(s)
}

// Secp256k1Point implements the Point interface. A nil inner key is the
// point at infinity.
type Secp256k1Point struct {
	inner *btcec.PublicKey
}

// PublicKey exposes the underlying btcec key, nil for the identity.
func (p *Secp256k1Point) PublicKey() *btcec.PublicKey {
	return p.inner
}

func (p *Secp256k1Point) Bytes() []byte {
	if p.inner == nil {
		return make([]byte, 65)
	}
	return p.inner.SerializeUncompressed()
}

func (p *Secp256k1Point) CompressedBytes() []byte {
	if p.inner == nil {
		return make([]byte, 33)
	}
	return p.inner.SerializeCompressed()
}

func (p *Secp256k1Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *Secp256k1Point) Add(other Point) Point {
	o := other.(*Secp256k1Point)
	if p.inner == nil {
		return o
	}
	if o.inner == nil {
		return p
	}

	var a, b, result btcec.JacobianPoint
	p.inner.AsJacobian(&a)
	o.inner.AsJacobian(&b)
	btcec.AddNonConst(&a, &b, &result)
	return pointFromJacobian(&result)
}

func (p *Secp256k1Point) Mul(scalar Scalar) Point {
	if p.inner == nil {
		return p
	}

	var point, result btcec.JacobianPoint
	p.inner.AsJacobian(&point)
	btcec.ScalarMultNonConst(castSecp256k1Scalar(scalar).inner, &point, &result)
	return pointFromJacobian(&result)
}

func (p *Secp256k1Point) Negate() Point {
	if p.inner == nil {
		return p
	}

	var jac btcec.JacobianPoint
	p.inner.AsJacobian(&jac)
	jac.Y.Negate(1)
	jac.Y.Normalize()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&jac.X, &jac.Y)}
}

func (p *Secp256k1Point) Equal(other Point) bool {
	o, ok := other.(*Secp256k1Point)
	if !ok {
		return false
	}
	if p.inner == nil || o.inner == nil {
		return p.inner == nil && o.inner == nil
	}
	return p.inner.IsEqual(o.inner)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return p.inner == nil
}

func (p *Secp256k1Point) XScalar() Scalar {
	scalar := new(btcec.ModNScalar)
	if p.inner == nil {
		return &Secp256k1Scalar{inner: scalar}
	}
	var x [32]byte
	p.inner.X().FillBytes(x[:])
	// x < p, and p < 2n, so a single conditional subtraction reduces it.
	scalar.SetBytes(&x)
	return &Secp256k1Scalar{inner: scalar}
}

func pointFromJacobian(jac *btcec.JacobianPoint) *Secp256k1Point {
	if jac.Z.IsZero() || (jac.X.IsZero() && jac.Y.IsZero()) {
		return &Secp256k1Point{inner: nil}
	}
	jac.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&jac.X, &jac.Y)}
}
