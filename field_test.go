package tecdsa

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantIndexScalar(t *testing.T) {
	curve := NewSecp256k1Curve()

	for _, idx := range []ParticipantIndex{1, 2, 255, 256, 1 << 20} {
		s := idx.ToScalar(curve)
		assert.True(t, s.Equal(scalarU64(curve, uint64(idx))))
		assert.Equal(t, idx, ParticipantIndexFromScalar(s))
	}
	assert.Equal(t, ParticipantIndex(0), ParticipantIndexFromScalar(nil))
}

func TestDigestToScalar(t *testing.T) {
	curve := NewSecp256k1Curve()

	digest := testDigest("digest")
	h, err := DigestToScalar(curve, digest)
	require.NoError(t, err)
	want := new(big.Int).Mod(new(big.Int).SetBytes(digest), curve.Order())
	assert.Equal(t, 0, h.BigInt().Cmp(want))

	_, err = DigestToScalar(curve, digest[:31])
	assert.ErrorIs(t, err, ErrInvalidDigest)
	assert.Equal(t, 31, GetErrorContext(err)["length"])
}

func TestScalarFromHex(t *testing.T) {
	curve := NewSecp256k1Curve()

	s, err := ScalarFromHex(curve, "0x3039")
	require.NoError(t, err)
	assert.True(t, s.Equal(scalarU64(curve, 12345)))

	_, err = ScalarFromHex(curve, "not hex")
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	_, err = ScalarFromHex(curve, "-1")
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	// 33 bytes
	_, err = ScalarFromHex(curve, "01"+strings.Repeat("00", 32))
	assert.ErrorIs(t, err, ErrInvalidScalarLength)
}

func TestBatchInvert(t *testing.T) {
	curve := NewSecp256k1Curve()

	for n := 1; n <= 6; n++ {
		scalars := make([]Scalar, n)
		for i := range scalars {
			scalars[i] = scalarU64(curve, uint64(3*i+2))
		}

		inverses, err := BatchInvert(scalars)
		require.NoError(t, err)
		require.Len(t, inverses, n)
		for i := range scalars {
			assert.True(t, scalars[i].Mul(inverses[i]).Equal(curve.ScalarOne()), "n=%d i=%d", n, i)
		}
	}

	inverses, err := BatchInvert(nil)
	require.NoError(t, err)
	assert.Nil(t, inverses)

	_, err = BatchInvert([]Scalar{curve.ScalarOne(), curve.ScalarZero()})
	assert.ErrorIs(t, err, ErrSingularElement)
}

func TestSecureCompareAndZeroize(t *testing.T) {
	assert.True(t, SecureCompare([]byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.False(t, SecureCompare([]byte{1, 2, 3}, []byte{1, 2, 4}))
	assert.False(t, SecureCompare([]byte{1, 2}, []byte{1, 2, 3}))

	buf := []byte{9, 9, 9}
	ZeroizeBytes(buf)
	assert.Equal(t, []byte{0, 0, 0}, buf)

	curve := NewSecp256k1Curve()
	s := scalarU64(curve, 42)
	ZeroizeScalarSlice([]Scalar{s, nil})
	assert.True(t, s.IsZero())
}
