package tecdsa

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioNonce = "1f4c2d8e9a7b6c5d4e3f2a1b0c9d8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a3b2c1d"

// singleSignerS is the low-s value an ordinary signer holding secret would
// produce with nonce k.
func singleSignerS(t *testing.T, curve Curve, digest []byte, secret, k Scalar) Scalar {
	t.Helper()
	h, err := DigestToScalar(curve, digest)
	require.NoError(t, err)
	r, err := NonceCommitment(curve, k)
	require.NoError(t, err)
	kInv, err := k.Invert()
	require.NoError(t, err)
	s := kInv.Mul(h.Add(secret.Mul(r)))
	if s.IsOverHalfOrder() {
		s = s.Negate()
	}
	return s
}

func verifyWithBtcec(t *testing.T, digest []byte, sig *CombinedSignature, pub Point) bool {
	t.Helper()
	var r, s btcec.ModNScalar
	r.SetByteSlice(sig.R[:])
	s.SetByteSlice(sig.S[:])
	return ecdsa.NewSignature(&r, &s).Verify(digest, pub.(*Secp256k1Point).PublicKey())
}

func TestCombineScenario12345(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("threshold ecdsa scenario")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	combiner, err := NewCombiner(curve, 2, nil)
	require.NoError(t, err)

	sig12, err := combiner.Combine(partialsFor(t, curve, digest, pick(shares, 1, 2), k), digest, pub)
	require.NoError(t, err)
	sig23, err := combiner.Combine(partialsFor(t, curve, digest, pick(shares, 2, 3), k), digest, pub)
	require.NoError(t, err)
	sig13, err := combiner.Combine(partialsFor(t, curve, digest, pick(shares, 3, 1), k), digest, pub)
	require.NoError(t, err)

	assert.Equal(t, sig12, sig23)
	assert.Equal(t, sig12, sig13)
	assert.LessOrEqual(t, sig12.V, byte(1))

	require.NoError(t, VerifyCombinedSignature(curve, digest, sig12, pub))
	assert.True(t, verifyWithBtcec(t, digest, sig12, pub))

	want := singleSignerS(t, curve, digest, secret, k)
	assert.Equal(t, want.Bytes(), sig12.S[:])
}

func TestCombineRoundTripAndLowS(t *testing.T) {
	curve := NewSecp256k1Curve()
	combiner, err := NewCombiner(curve, 3, nil)
	require.NoError(t, err)

	seenV := map[byte]bool{}
	for i := 0; i < 24; i++ {
		secret, err := curve.ScalarRandom()
		require.NoError(t, err)
		pub := PublicKeyFromSecret(curve, secret)
		shares, err := GenerateShares(curve, secret, 5, 3)
		require.NoError(t, err)
		k, err := curve.ScalarRandom()
		require.NoError(t, err)
		digest := testDigest(strings.Repeat("m", i+1))

		sig, err := combiner.Combine(partialsFor(t, curve, digest, pick(shares, 5, 2, 4), k), digest, pub)
		require.NoError(t, err)

		s, err := curve.ScalarFromBytes(sig.S[:])
		require.NoError(t, err)
		assert.False(t, s.IsOverHalfOrder())

		r, s, err := sig.Scalars(curve)
		require.NoError(t, err)
		recovered, err := curve.RecoverPublicKey(digest, r, s, sig.V)
		require.NoError(t, err)
		assert.True(t, recovered.Equal(pub))
		seenV[sig.V] = true
	}
	// Both recovery ids occur with overwhelming probability over 24 runs.
	assert.Len(t, seenV, 2)
}

func TestCombineMoreThanThresholdPartials(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 4242)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("all five")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 5, 2)
	require.NoError(t, err)

	all, err := CombineSignatures(curve, 2, partialsFor(t, curve, digest, shares, k), digest, pub)
	require.NoError(t, err)
	two, err := CombineSignatures(curve, 2, partialsFor(t, curve, digest, pick(shares, 4, 5), k), digest, pub)
	require.NoError(t, err)
	assert.Equal(t, all, two)
}

func TestCombineInsufficientPartials(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("one share")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	_, err = CombineSignatures(curve, 2, partialsFor(t, curve, digest, pick(shares, 1), k), digest, pub)
	assert.ErrorIs(t, err, ErrInsufficientPartials)
	assert.False(t, IsRecoverableError(err))
}

func TestCombineBelowKeyThresholdFailsRecovery(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("one share, lax combiner")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	// A combiner configured for t = 1 accepts the lone partial; the
	// recovery-id search must still reject the result.
	trace := &recordingTrace{}
	lax, err := NewCombiner(curve, 1, trace)
	require.NoError(t, err)

	_, err = lax.Combine(partialsFor(t, curve, digest, pick(shares, 2), k), digest, pub)
	assert.ErrorIs(t, err, ErrRecoveryMismatch)
	assert.True(t, IsRecoverableError(err))
	assert.Len(t, trace.candidates, 2)
	for _, c := range trace.candidates {
		assert.False(t, c.Matched)
	}
	assert.Empty(t, trace.combined)
}

func TestCombineInconsistentNonce(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("two nonces")

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	p1 := partialsFor(t, curve, digest, pick(shares, 1), scalarU64(curve, 1001))
	p2 := partialsFor(t, curve, digest, pick(shares, 2), scalarU64(curve, 1002))

	_, err = CombineSignatures(curve, 2, append(p1, p2...), digest, pub)
	assert.ErrorIs(t, err, ErrInconsistentNonce)
	assert.Equal(t, uint32(2), GetErrorContext(err)["index"])
}

func TestCombineDuplicateIndices(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("duplicate")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	partials := partialsFor(t, curve, digest, pick(shares, 1, 1), k)
	_, err = CombineSignatures(curve, 2, partials, digest, pub)
	assert.ErrorIs(t, err, ErrDegenerateInterpolationSet)
}

func TestCombineWrongPublicKey(t *testing.T) {
	curve := NewSecp256k1Curve()
	digest := testDigest("wrong key")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, scalarU64(curve, 12345), 3, 2)
	require.NoError(t, err)
	other := PublicKeyFromSecret(curve, scalarU64(curve, 54321))

	_, err = CombineSignatures(curve, 2, partialsFor(t, curve, digest, pick(shares, 1, 2), k), digest, other)
	assert.ErrorIs(t, err, ErrRecoveryMismatch)

	_, err = CombineSignatures(curve, 2, partialsFor(t, curve, digest, pick(shares, 1, 2), k), digest, curve.PointIdentity())
	assert.ErrorIs(t, err, ErrRecoveryMismatch)
}

func TestCombineRejectsBadInput(t *testing.T) {
	curve := NewSecp256k1Curve()
	pub := PublicKeyFromSecret(curve, scalarU64(curve, 1))

	_, err := NewCombiner(curve, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	_, err = NewCombiner(nil, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = CombineSignatures(curve, 1, nil, make([]byte, 31), pub)
	assert.ErrorIs(t, err, ErrInvalidDigest)

	_, err = CombineSignatures(curve, 1, []*PartialSignature{{Index: 1}}, testDigest("x"), pub)
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestCombineTracesAcceptedCandidate(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("traced")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)

	trace := &recordingTrace{}
	combiner, err := NewCombiner(curve, 2, trace)
	require.NoError(t, err)

	sig, err := combiner.Combine(partialsFor(t, curve, digest, pick(shares, 2, 3), k), digest, pub)
	require.NoError(t, err)

	require.Len(t, trace.combined, 1)
	event := trace.combined[0]
	assert.Equal(t, sig.RHex(), event.R)
	assert.Equal(t, sig.SHex(), event.S)
	assert.Equal(t, sig.V, event.V)
	assert.Equal(t, []ParticipantIndex{2, 3}, event.Participants)

	// The search stops at the first match.
	last := trace.candidates[len(trace.candidates)-1]
	assert.True(t, last.Matched)
	assert.Equal(t, sig.V, last.RecoveryID)
	assert.Len(t, trace.candidates, int(sig.V)+1)
}

func TestCombinedSignatureEncoding(t *testing.T) {
	sig := &CombinedSignature{V: 1}
	sig.R[31] = 0x01
	sig.S[0] = 0x7f

	assert.Equal(t, "0x"+strings.Repeat("00", 31)+"01", sig.RHex())
	assert.Len(t, sig.SHex(), 66)
	assert.Contains(t, sig.String(), "v=1")

	raw := sig.Bytes()
	require.Len(t, raw, 65)
	assert.Equal(t, byte(1), raw[64])

	parsed, err := CombinedSignatureFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	raw[64] = 27
	_, err = CombinedSignatureFromBytes(raw)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
	_, err = CombinedSignatureFromBytes(raw[:64])
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestVerifyCombinedSignatureRejectsHighS(t *testing.T) {
	curve := NewSecp256k1Curve()
	secret := scalarU64(curve, 12345)
	pub := PublicKeyFromSecret(curve, secret)
	digest := testDigest("high s")
	k := mustScalarHex(t, curve, scenarioNonce)

	shares, err := GenerateShares(curve, secret, 3, 2)
	require.NoError(t, err)
	sig, err := CombineSignatures(curve, 2, partialsFor(t, curve, digest, pick(shares, 1, 2), k), digest, pub)
	require.NoError(t, err)

	_, s, err := sig.Scalars(curve)
	require.NoError(t, err)
	high := *sig
	copy(high.S[:], s.Negate().Bytes())
	high.V ^= 1

	assert.ErrorIs(t, VerifyCombinedSignature(curve, digest, &high, pub), ErrRecoveryMismatch)

	flipped := *sig
	flipped.V ^= 1
	assert.ErrorIs(t, VerifyCombinedSignature(curve, digest, &flipped, pub), ErrRecoveryMismatch)
}
