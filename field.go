package tecdsa

import (
	"encoding/binary"
	"fmt"
)

// ParticipantIndex is the x-coordinate of a share. Index 0 is reserved for
// the secret itself.
type ParticipantIndex uint32

// ToScalar converts participant index to a scalar
func (pi ParticipantIndex) ToScalar(curve Curve) Scalar {
	return curve.ScalarFromUint64(uint64(pi))
}

// ParticipantIndexFromScalar returns the low 32 bits of a scalar as an index
func ParticipantIndexFromScalar(scalar Scalar) ParticipantIndex {
	if scalar == nil {
		return ParticipantIndex(0)
	}

	bytes := scalar.Bytes()
	if len(bytes) < 4 {
		return ParticipantIndex(0)
	}
	return ParticipantIndex(binary.BigEndian.Uint32(bytes[len(bytes)-4:]))
}

// DigestToScalar interprets a 32-byte message digest as a big-endian integer
// reduced modulo the group order, the same conversion ECDSA verification uses.
func DigestToScalar(curve Curve, digest []byte) (Scalar, error) {
	if len(digest) != curve.ScalarSize() {
		return nil, ErrInvalidDigest.WithContext("length", len(digest))
	}
	return curve.ScalarFromBytes(digest)
}

// ScalarFromHex parses a big-endian hex string, with or without 0x prefix,
// into a reduced scalar.
func ScalarFromHex(curve Curve, s string) (Scalar, error) {
	v, ok := parseHexBig(s)
	if !ok || v.Sign() < 0 {
		return nil, ErrMalformedEncoding.WithDetails("invalid hex scalar %q", s)
	}
	if v.BitLen() > curve.ScalarSize()*8 {
		return nil, fmt.Errorf("%w: hex value exceeds %d bytes", ErrInvalidScalarLength, curve.ScalarSize())
	}
	buf := make([]byte, curve.ScalarSize())
	v.FillBytes(buf)
	return curve.ScalarFromBytes(buf)
}
