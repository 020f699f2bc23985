package adapters

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

// ChainType represents different blockchain types
type ChainType string

const (
	ChainTypeEthereum ChainType = "ethereum"
	ChainTypeBitcoin  ChainType = "bitcoin"
)

// ThresholdKey is the signing material an adapter drives: a session, the
// shares of the signers taking part, and the aggregate public key.
type ThresholdKey struct {
	Session   *tecdsa.SigningSession
	Shares    []*tecdsa.Share
	PublicKey tecdsa.Point
}

// Validate checks that the key is usable for signing
func (k *ThresholdKey) Validate() error {
	if k == nil || k.Session == nil {
		return fmt.Errorf("threshold key has no signing session")
	}
	if k.PublicKey == nil || k.PublicKey.IsIdentity() {
		return fmt.Errorf("threshold key has no aggregate public key")
	}
	if len(k.Shares) == 0 {
		return fmt.Errorf("threshold key has no shares")
	}
	return nil
}

func (k *ThresholdKey) sign(ctx context.Context, digest []byte) (*tecdsa.CombinedSignature, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k.Session.Sign(ctx, digest, k.Shares, k.PublicKey)
}

func btcecPublicKey(point tecdsa.Point) (*btcec.PublicKey, error) {
	p, ok := point.(*tecdsa.Secp256k1Point)
	if !ok || p.PublicKey() == nil {
		return nil, fmt.Errorf("point must be a non-identity secp256k1 point")
	}
	return p.PublicKey(), nil
}
