package tecdsa

import (
	"context"
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// SigningSession drives signing events for one threshold key: nonce
// agreement, concurrent partial signing, and combination, retried with a
// fresh nonce when an attempt fails recoverably.
type SigningSession struct {
	curve    Curve
	config   *Config
	nonces   NonceAgreement
	combiner *Combiner
	trace    TraceHandler
}

// NewSigningSession creates a session for config. A nil trace handler
// disables tracing.
func NewSigningSession(config *Config, nonces NonceAgreement, trace TraceHandler) (*SigningSession, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if nonces == nil {
		return nil, ErrConfigurationMismatch.WithDetails("nonce agreement is required")
	}

	curve, err := NewCurve(config.Curve)
	if err != nil {
		return nil, err
	}

	trace = traceOrNull(trace)
	combiner, err := NewCombiner(curve, config.Threshold, trace)
	if err != nil {
		return nil, err
	}

	return &SigningSession{
		curve:    curve,
		config:   config,
		nonces:   nonces,
		combiner: combiner,
		trace:    trace,
	}, nil
}

// Curve returns the curve the session signs on
func (s *SigningSession) Curve() Curve {
	return s.curve
}

// Deal splits secret into the configured number of shares and returns them
// with the aggregate public key.
func (s *SigningSession) Deal(secret Scalar) ([]*Share, Point, error) {
	shares, err := GenerateShares(s.curve, secret, s.config.Participants, s.config.Threshold)
	if err != nil {
		return nil, nil, err
	}

	indices := make([]ParticipantIndex, len(shares))
	for i, share := range shares {
		indices[i] = share.Index
	}
	s.trace.OnSharesGenerated(NewTraceEventBuilder(TraceEventSharesGenerated).
		WithCurve(s.curve.Name()).
		WithParticipants(indices).
		WithMetadata("threshold", s.config.Threshold).
		Build())

	return shares, PublicKeyFromSecret(s.curve, secret), nil
}

// SessionID derives a stable identifier for a signing event from the digest
// and the signing set.
func SessionID(msgHash []byte, participants []ParticipantIndex) string {
	h := blake3.New()
	_, _ = h.Write([]byte("tecdsa-session-v1"))
	_, _ = h.Write(msgHash)
	var buf [4]byte
	for _, p := range participants {
		binary.BigEndian.PutUint32(buf[:], uint32(p))
		_, _ = h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Sign produces a combined signature over msgHash from shares. Recoverable
// failures (degenerate nonce, inconsistent r, recovery mismatch) restart the
// event with a newly agreed nonce, at most Config.MaxNonceAttempts times.
// Cancelling ctx abandons the event.
func (s *SigningSession) Sign(ctx context.Context, msgHash []byte, shares []*Share, aggregatePublicKey Point) (*CombinedSignature, error) {
	if len(msgHash) != 32 {
		return nil, ErrInvalidDigest.WithContext("length", len(msgHash))
	}

	indices := make([]ParticipantIndex, len(shares))
	for i, share := range shares {
		if err := share.validate(); err != nil {
			return nil, err
		}
		indices[i] = share.Index
	}
	if err := ValidateSigningSet(s.config.Threshold, indices); err != nil {
		return nil, err
	}

	sessionID := SessionID(msgHash, indices)

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxNonceAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sig, err := s.attempt(ctx, sessionID, attempt, msgHash, shares, indices, aggregatePublicKey)
		if err == nil {
			return sig, nil
		}

		s.trace.OnAttemptFailed(NewTraceEventBuilder(TraceEventAttemptFailed).
			WithSession(sessionID, attempt).
			WithCurve(s.curve.Name()).
			WithParticipants(indices).
			WithError(err).
			WithMetadata("retry", IsRecoverableError(err)).
			Build())

		if !IsRecoverableError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, ErrRetriesExhausted.
		WithContext("session", sessionID).
		WithContext("attempts", s.config.MaxNonceAttempts).
		WithCause(lastErr)
}

func (s *SigningSession) attempt(
	ctx context.Context,
	sessionID string,
	attempt int,
	msgHash []byte,
	shares []*Share,
	indices []ParticipantIndex,
	aggregatePublicKey Point,
) (*CombinedSignature, error) {
	nonce, err := s.nonces.AgreeNonce(ctx, &NonceRequest{
		SessionID:    sessionID,
		Attempt:      attempt,
		MessageHash:  msgHash,
		Participants: indices,
	})
	if err != nil {
		return nil, err
	}
	defer nonce.Zeroize()

	// Reject a degenerate nonce before any signer spends work on it.
	r, err := NonceCommitment(s.curve, nonce)
	if err != nil {
		return nil, err
	}
	s.trace.OnNonceAgreed(NewTraceEventBuilder(TraceEventNonceAgreed).
		WithSession(sessionID, attempt).
		WithCurve(s.curve.Name()).
		WithParticipants(indices).
		WithMetadata("r", r.String()).
		Build())

	partials := make([]*PartialSignature, len(shares))
	g, gctx := errgroup.WithContext(ctx)
	for i, share := range shares {
		i, share := i, share
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partial, err := CreatePartialSignature(s.curve, msgHash, share, nonce)
			if err != nil {
				return err
			}
			partials[i] = partial
			s.trace.OnPartialSignature(NewTraceEventBuilder(TraceEventPartialSignature).
				WithSession(sessionID, attempt).
				WithCurve(s.curve.Name()).
				WithParticipant(share.Index).
				WithMetadata("s", partial.S.String()).
				Build())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.combiner.forAttempt(sessionID, attempt).Combine(partials, msgHash, aggregatePublicKey)
}
