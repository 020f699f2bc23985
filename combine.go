package tecdsa

import (
	"encoding/hex"
	"fmt"
	"time"
)

// CombinedSignature is an ordinary recoverable ECDSA signature. S is always
// in low-s form and V is the raw recovery id, 0 or 1. Chain-specific offsets
// are applied by adapters.
type CombinedSignature struct {
	R [32]byte
	S [32]byte
	V byte
}

// RHex returns r as 0x-prefixed, zero-padded hex
func (c *CombinedSignature) RHex() string {
	return "0x" + hex.EncodeToString(c.R[:])
}

// SHex returns s as 0x-prefixed, zero-padded hex
func (c *CombinedSignature) SHex() string {
	return "0x" + hex.EncodeToString(c.S[:])
}

// Bytes returns the 65-byte r || s || v encoding
func (c *CombinedSignature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], c.R[:])
	copy(out[32:64], c.S[:])
	out[64] = c.V
	return out
}

// CombinedSignatureFromBytes parses the 65-byte r || s || v encoding
func CombinedSignatureFromBytes(data []byte) (*CombinedSignature, error) {
	if len(data) != 65 {
		return nil, ErrMalformedEncoding.WithDetails("signature must be 65 bytes, got %d", len(data))
	}
	if data[64] > 1 {
		return nil, ErrMalformedEncoding.WithDetails("recovery id must be 0 or 1, got %d", data[64])
	}
	sig := &CombinedSignature{V: data[64]}
	copy(sig.R[:], data[:32])
	copy(sig.S[:], data[32:64])
	return sig, nil
}

// Scalars returns r and s as scalars of curve
func (c *CombinedSignature) Scalars(curve Curve) (r, s Scalar, err error) {
	if r, err = curve.ScalarFromBytes(c.R[:]); err != nil {
		return nil, nil, err
	}
	if s, err = curve.ScalarFromBytes(c.S[:]); err != nil {
		return nil, nil, err
	}
	return r, s, nil
}

func (c *CombinedSignature) String() string {
	return fmt.Sprintf("r=%s s=%s v=%d", c.RHex(), c.SHex(), c.V)
}

// Combiner joins partial signatures of one signing event into a single
// signature. It performs no retries; every failure is terminal for the
// attempt.
type Combiner struct {
	curve     Curve
	threshold int
	trace     TraceHandler

	sessionID string
	attempt   int
}

// NewCombiner creates a combiner requiring at least threshold partials
func NewCombiner(curve Curve, threshold int, trace TraceHandler) (*Combiner, error) {
	if curve == nil {
		return nil, ErrInvalidCurve.WithDetails("curve cannot be nil")
	}
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	return &Combiner{
		curve:     curve,
		threshold: threshold,
		trace:     traceOrNull(trace),
	}, nil
}

// forAttempt tags trace events of this combiner with a session and attempt.
func (c *Combiner) forAttempt(sessionID string, attempt int) *Combiner {
	tagged := *c
	tagged.sessionID = sessionID
	tagged.attempt = attempt
	return &tagged
}

func (c *Combiner) event(eventType TraceEventType) *TraceEventBuilder {
	return NewTraceEventBuilder(eventType).
		WithSession(c.sessionID, c.attempt).
		WithCurve(c.curve.Name())
}

// Combine interpolates the partial s values at x = 0, canonicalizes s to low
// form, and searches the recovery id that reproduces aggregatePublicKey.
func (c *Combiner) Combine(partials []*PartialSignature, msgHash []byte, aggregatePublicKey Point) (*CombinedSignature, error) {
	start := time.Now()

	if len(msgHash) != 32 {
		return nil, ErrInvalidDigest.WithContext("length", len(msgHash))
	}
	if aggregatePublicKey == nil || aggregatePublicKey.IsIdentity() {
		return nil, ErrRecoveryMismatch.WithDetails("aggregate public key is missing or the identity")
	}
	if len(partials) < c.threshold {
		return nil, ErrInsufficientPartials.
			WithContext("have", len(partials)).
			WithContext("need", c.threshold)
	}

	// Every partial must commit to the same nonce.
	points := make([]InterpolationPoint, len(partials))
	indices := make([]ParticipantIndex, len(partials))
	var r Scalar
	for i, p := range partials {
		if p == nil || p.R == nil || p.S == nil {
			return nil, ErrInvalidShare.WithDetails("partial signature %d is incomplete", i)
		}
		if r == nil {
			r = p.R
		} else if !p.R.Equal(r) {
			return nil, ErrInconsistentNonce.WithContext("index", uint32(p.Index))
		}
		points[i] = InterpolationPoint{Index: p.Index, Value: p.S}
		indices[i] = p.Index
	}
	if r.IsZero() {
		return nil, ErrDegenerateNonceOrR.WithContext("check", "r = 0")
	}

	s, err := InterpolateAtZero(c.curve, points)
	if err != nil {
		return nil, err
	}
	if s.IsZero() {
		return nil, ErrRecoveryMismatch.WithDetails("interpolated s is zero")
	}

	// Low-s form. Negating s flips the parity of the recovered R, which the
	// search below absorbs.
	canonicalized := false
	if s.IsOverHalfOrder() {
		s = s.Negate()
		canonicalized = true
	}

	for v := byte(0); v <= 1; v++ {
		candidate, err := c.curve.RecoverPublicKey(msgHash, r, s, v)
		builder := c.event(TraceEventRecoveryCandidate).WithParticipants(indices)
		if err != nil {
			c.trace.OnRecoveryCandidate(builder.WithError(err).BuildRecoveryCandidate(v, false, nil))
			continue
		}

		matched := candidate.Equal(aggregatePublicKey)
		c.trace.OnRecoveryCandidate(builder.BuildRecoveryCandidate(v, matched, candidate))
		if !matched {
			continue
		}

		sig := &CombinedSignature{V: v}
		copy(sig.R[:], r.Bytes())
		copy(sig.S[:], s.Bytes())

		c.trace.OnSignatureCombined(c.event(TraceEventSignatureCombined).
			WithParticipants(indices).
			BuildCombine(sig, canonicalized, time.Since(start)))
		return sig, nil
	}

	return nil, ErrRecoveryMismatch.
		WithContext("participants", indices).
		WithContext("canonicalized", canonicalized)
}

// CombineSignatures is Combine on a combiner without tracing.
func CombineSignatures(curve Curve, threshold int, partials []*PartialSignature, msgHash []byte, aggregatePublicKey Point) (*CombinedSignature, error) {
	combiner, err := NewCombiner(curve, threshold, nil)
	if err != nil {
		return nil, err
	}
	return combiner.Combine(partials, msgHash, aggregatePublicKey)
}

// VerifyCombinedSignature checks sig against digest by recovering the public
// key with sig.V and comparing it with publicKey.
func VerifyCombinedSignature(curve Curve, digest []byte, sig *CombinedSignature, publicKey Point) error {
	r, s, err := sig.Scalars(curve)
	if err != nil {
		return err
	}
	if s.IsOverHalfOrder() {
		return ErrRecoveryMismatch.WithDetails("s is not in low form")
	}
	recovered, err := curve.RecoverPublicKey(digest, r, s, sig.V)
	if err != nil {
		return ErrRecoveryMismatch.WithCause(err)
	}
	if !recovered.Equal(publicKey) {
		return ErrRecoveryMismatch.WithContext("v", sig.V)
	}
	return nil
}
