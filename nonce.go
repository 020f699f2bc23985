package tecdsa

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// NonceRequest identifies the signing attempt a nonce is agreed for.
type NonceRequest struct {
	SessionID    string
	Attempt      int
	MessageHash  []byte
	Participants []ParticipantIndex
}

// NonceAgreement produces the ephemeral nonce k shared by every participant
// of one signing attempt. It runs before any partial signature is computed.
type NonceAgreement interface {
	AgreeNonce(ctx context.Context, req *NonceRequest) (Scalar, error)
}

// TrustedDealerNonce draws k uniformly at random in one place and hands the
// same value to every signer. Whoever runs it learns k, and k together with
// one signature reveals the key: it is not production-safe for distributed
// trust.
type TrustedDealerNonce struct {
	curve Curve
}

// NewTrustedDealerNonce creates a random, centralized nonce source
func NewTrustedDealerNonce(curve Curve) *TrustedDealerNonce {
	return &TrustedDealerNonce{curve: curve}
}

func (d *TrustedDealerNonce) AgreeNonce(ctx context.Context, req *NonceRequest) (Scalar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.curve.ScalarRandom()
}

// DeterministicDealerNonce derives k with HKDF-SHA256 from a dealer seed,
// the message digest, and the attempt. It shares the trust model of
// TrustedDealerNonce and exists for reproducible fixtures.
type DeterministicDealerNonce struct {
	curve Curve
	seed  []byte
}

// NewDeterministicDealerNonce creates a seeded nonce source. The seed must
// carry at least 32 bytes of entropy.
func NewDeterministicDealerNonce(curve Curve, seed []byte) (*DeterministicDealerNonce, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("nonce seed must be at least 32 bytes, got %d", len(seed))
	}
	owned := make([]byte, len(seed))
	copy(owned, seed)
	return &DeterministicDealerNonce{curve: curve, seed: owned}, nil
}

func (d *DeterministicDealerNonce) AgreeNonce(ctx context.Context, req *NonceRequest) (Scalar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info := make([]byte, 0, 64)
	info = append(info, "tecdsa-nonce-v1"...)
	info = append(info, d.curve.Name()...)
	info = binary.BigEndian.AppendUint32(info, uint32(req.Attempt))
	for _, p := range req.Participants {
		info = binary.BigEndian.AppendUint32(info, uint32(p))
	}

	// 48 bytes keep the modular reduction bias below 2^-128.
	wide := make([]byte, 48)
	defer ZeroizeBytes(wide)
	reader := hkdf.New(sha256.New, d.seed, req.MessageHash, info)
	if _, err := io.ReadFull(reader, wide); err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	return d.curve.ScalarFromUniformBytes(wide)
}

// DistributedNonce marks where a joint nonce generation protocol plugs in,
// so that no single party learns k. No such protocol is implemented.
type DistributedNonce struct{}

func (DistributedNonce) AgreeNonce(ctx context.Context, req *NonceRequest) (Scalar, error) {
	return nil, ErrNonceAgreementUnsupported.WithContext("session", req.SessionID)
}
