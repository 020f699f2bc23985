package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

func TestSelectShares(t *testing.T) {
	curve := tecdsa.NewSecp256k1Curve()
	shares, err := tecdsa.GenerateShares(curve, curve.ScalarFromUint64(5), 3, 2)
	require.NoError(t, err)

	first, err := selectShares(shares, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []*tecdsa.Share{shares[0], shares[1]}, first)

	chosen, err := selectShares(shares, []uint{3, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, tecdsa.ParticipantIndex(3), chosen[0].Index)
	assert.Equal(t, tecdsa.ParticipantIndex(1), chosen[1].Index)

	_, err = selectShares(shares, []uint{4}, 2)
	assert.Error(t, err)
	_, err = selectShares(shares, nil, 4)
	assert.ErrorIs(t, err, tecdsa.ErrInsufficientPartials)
}

func TestLoadOrGenerateKey(t *testing.T) {
	curve := tecdsa.NewSecp256k1Curve()

	key, err := loadOrGenerateKey(curve, "0x01")
	require.NoError(t, err)
	assert.True(t, key.Equal(curve.ScalarOne()))

	random, err := loadOrGenerateKey(curve, "")
	require.NoError(t, err)
	assert.False(t, random.IsZero())

	_, err = loadOrGenerateKey(curve, "00")
	assert.Error(t, err)
	_, err = loadOrGenerateKey(curve, "zz")
	assert.Error(t, err)
}

func TestSignVerbose(t *testing.T) {
	globalFlags = GlobalFlags{Participants: 3, Threshold: 2, MaxNonceAttempts: 4}
	session, err := newSession()
	require.NoError(t, err)
	curve := session.Curve()

	shares, pub, err := session.Deal(curve.ScalarFromUint64(808))
	require.NoError(t, err)

	digest := make([]byte, 32)
	digest[31] = 1
	sig, partials, err := signVerbose(context.Background(), curve, digest, shares[1:], pub)
	require.NoError(t, err)
	assert.Len(t, partials, 2)
	assert.NoError(t, tecdsa.VerifyCombinedSignature(curve, digest, sig, pub))
}
