package tecdsa

import (
	"context"
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func scalarU64(curve Curve, v uint64) Scalar {
	return curve.ScalarFromUint64(v)
}

func mustScalarHex(t *testing.T, curve Curve, s string) Scalar {
	t.Helper()
	v, err := ScalarFromHex(curve, s)
	require.NoError(t, err)
	return v
}

func testDigest(label string) []byte {
	sum := sha256.Sum256([]byte(label))
	return sum[:]
}

func copyScalar(curve Curve, s Scalar) Scalar {
	return s.Add(curve.ScalarZero())
}

// pick returns the shares with the given 1-based indices
func pick(shares []*Share, indices ...ParticipantIndex) []*Share {
	out := make([]*Share, 0, len(indices))
	for _, idx := range indices {
		for _, share := range shares {
			if share.Index == idx {
				out = append(out, share)
			}
		}
	}
	return out
}

// combinations returns every k-element subset of items
func combinations(items []*Share, k int) [][]*Share {
	var out [][]*Share
	var rec func(start int, cur []*Share)
	rec = func(start int, cur []*Share) {
		if len(cur) == k {
			out = append(out, append([]*Share(nil), cur...))
			return
		}
		for i := start; i < len(items); i++ {
			rec(i+1, append(cur, items[i]))
		}
	}
	rec(0, nil)
	return out
}

func partialsFor(t *testing.T, curve Curve, digest []byte, shares []*Share, k Scalar) []*PartialSignature {
	t.Helper()
	partials := make([]*PartialSignature, len(shares))
	for i, share := range shares {
		p, err := CreatePartialSignature(curve, digest, share, k)
		require.NoError(t, err)
		partials[i] = p
	}
	return partials
}

// scriptedNonce replays a fixed list of nonces, repeating the last one.
type scriptedNonce struct {
	mu     sync.Mutex
	curve  Curve
	script []Scalar
	calls  int
}

func (s *scriptedNonce) AgreeNonce(ctx context.Context, req *NonceRequest) (Scalar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	s.calls++
	// The session zeroizes the nonce after each attempt.
	return copyScalar(s.curve, s.script[i]), nil
}

func (s *scriptedNonce) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingTrace collects every event it receives.
type recordingTrace struct {
	mu         sync.Mutex
	shares     []*TraceEvent
	nonces     []*TraceEvent
	partials   []*TraceEvent
	candidates []*RecoveryCandidateEvent
	combined   []*CombineEvent
	failures   []*TraceEvent
}

func (r *recordingTrace) OnSharesGenerated(e *TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shares = append(r.shares, e)
}

func (r *recordingTrace) OnNonceAgreed(e *TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonces = append(r.nonces, e)
}

func (r *recordingTrace) OnPartialSignature(e *TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = append(r.partials, e)
}

func (r *recordingTrace) OnRecoveryCandidate(e *RecoveryCandidateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append(r.candidates, e)
}

func (r *recordingTrace) OnSignatureCombined(e *CombineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combined = append(r.combined, e)
}

func (r *recordingTrace) OnAttemptFailed(e *TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, e)
}
