package tecdsa

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
)

type shareMarshal struct {
	Index ParticipantIndex
	Value []byte
}

type partialMarshal struct {
	Index ParticipantIndex
	R, S  []byte
}

type signatureMarshal struct {
	R, S []byte
	V    byte
}

// MarshalBinary encodes the share as CBOR
func (s *Share) MarshalBinary() ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return cbor.Marshal(&shareMarshal{Index: s.Index, Value: s.Value.Bytes()})
}

// UnmarshalShare decodes a CBOR share. The curve is needed to decode the
// share value.
func UnmarshalShare(curve Curve, data []byte) (*Share, error) {
	var sm shareMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return nil, ErrMalformedEncoding.WithCause(err)
	}
	value, err := decodeScalar(curve, sm.Value)
	if err != nil {
		return nil, err
	}
	share := NewShare(sm.Index, value)
	if err := share.validate(); err != nil {
		return nil, err
	}
	return share, nil
}

// MarshalBinary encodes the partial signature as CBOR
func (p *PartialSignature) MarshalBinary() ([]byte, error) {
	if p.R == nil || p.S == nil {
		return nil, ErrInvalidShare.WithDetails("partial signature is incomplete")
	}
	return cbor.Marshal(&partialMarshal{Index: p.Index, R: p.R.Bytes(), S: p.S.Bytes()})
}

// UnmarshalPartialSignature decodes a CBOR partial signature
func UnmarshalPartialSignature(curve Curve, data []byte) (*PartialSignature, error) {
	var pm partialMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return nil, ErrMalformedEncoding.WithCause(err)
	}
	if pm.Index == 0 {
		return nil, ErrInvalidShare.WithDetails("participant index 0 is reserved for the secret")
	}
	r, err := decodeScalar(curve, pm.R)
	if err != nil {
		return nil, err
	}
	s, err := decodeScalar(curve, pm.S)
	if err != nil {
		return nil, err
	}
	return &PartialSignature{Index: pm.Index, R: r, S: s}, nil
}

// MarshalBinary encodes the combined signature as CBOR
func (c *CombinedSignature) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&signatureMarshal{R: c.R[:], S: c.S[:], V: c.V})
}

// UnmarshalBinary decodes a CBOR combined signature
func (c *CombinedSignature) UnmarshalBinary(data []byte) error {
	var sm signatureMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return ErrMalformedEncoding.WithCause(err)
	}
	if len(sm.R) != 32 || len(sm.S) != 32 {
		return ErrMalformedEncoding.WithDetails("r and s must be 32 bytes")
	}
	if sm.V > 1 {
		return ErrMalformedEncoding.WithDetails("recovery id must be 0 or 1, got %d", sm.V)
	}
	copy(c.R[:], sm.R)
	copy(c.S[:], sm.S)
	c.V = sm.V
	return nil
}

// decodeScalar rejects encodings that are not already reduced, so every
// scalar has exactly one wire form.
func decodeScalar(curve Curve, data []byte) (Scalar, error) {
	scalar, err := curve.ScalarFromBytes(data)
	if err != nil {
		return nil, ErrMalformedEncoding.WithCause(err)
	}
	if !bytes.Equal(scalar.Bytes(), data) {
		return nil, ErrMalformedEncoding.WithDetails("scalar is not reduced modulo the group order")
	}
	return scalar, nil
}
