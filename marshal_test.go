package tecdsa

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareEncoding(t *testing.T) {
	curve := NewSecp256k1Curve()
	shares, err := GenerateShares(curve, scalarU64(curve, 777), 3, 2)
	require.NoError(t, err)

	data, err := shares[1].MarshalBinary()
	require.NoError(t, err)
	decoded, err := UnmarshalShare(curve, data)
	require.NoError(t, err)
	assert.Equal(t, shares[1].Index, decoded.Index)
	assert.True(t, shares[1].Value.Equal(decoded.Value))

	_, err = UnmarshalShare(curve, []byte{0xff, 0x00})
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	zeroIndex, err := cbor.Marshal(&shareMarshal{Index: 0, Value: shares[0].Value.Bytes()})
	require.NoError(t, err)
	_, err = UnmarshalShare(curve, zeroIndex)
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestPartialSignatureEncoding(t *testing.T) {
	curve := NewSecp256k1Curve()
	shares, err := GenerateShares(curve, scalarU64(curve, 777), 3, 2)
	require.NoError(t, err)
	k := mustScalarHex(t, curve, scenarioNonce)
	partial := partialsFor(t, curve, testDigest("wire"), shares[:1], k)[0]

	data, err := partial.MarshalBinary()
	require.NoError(t, err)
	decoded, err := UnmarshalPartialSignature(curve, data)
	require.NoError(t, err)
	assert.Equal(t, partial.Index, decoded.Index)
	assert.True(t, partial.R.Equal(decoded.R))
	assert.True(t, partial.S.Equal(decoded.S))

	_, err = (&PartialSignature{Index: 1}).MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestScalarEncodingMustBeReduced(t *testing.T) {
	curve := NewSecp256k1Curve()

	// n itself reduces to zero and has a shorter canonical form.
	order := curve.Order().FillBytes(make([]byte, 32))
	data, err := cbor.Marshal(&partialMarshal{Index: 1, R: order, S: bytes.Repeat([]byte{1}, 32)})
	require.NoError(t, err)
	_, err = UnmarshalPartialSignature(curve, data)
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	short, err := cbor.Marshal(&partialMarshal{Index: 1, R: []byte{1}, S: bytes.Repeat([]byte{1}, 32)})
	require.NoError(t, err)
	_, err = UnmarshalPartialSignature(curve, short)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestCombinedSignatureCBOR(t *testing.T) {
	sig := &CombinedSignature{V: 1}
	sig.R[0], sig.S[31] = 0xaa, 0x55

	data, err := sig.MarshalBinary()
	require.NoError(t, err)
	var decoded CombinedSignature
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, *sig, decoded)

	bad, err := cbor.Marshal(&signatureMarshal{R: sig.R[:], S: sig.S[:], V: 2})
	require.NoError(t, err)
	assert.ErrorIs(t, decoded.UnmarshalBinary(bad), ErrMalformedEncoding)

	assert.ErrorIs(t, decoded.UnmarshalBinary([]byte("nope")), ErrMalformedEncoding)
}
