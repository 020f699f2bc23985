package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

const (
	bitcoinMessageMagic = "Bitcoin Signed Message:\n"

	// compactHeaderBase is 27 plus 4 for a compressed public key
	compactHeaderBase = 27 + 4
)

// BitcoinMessageHash returns the double-SHA256 digest of a signmessage payload
func BitcoinMessageHash(message []byte) []byte {
	var buf bytes.Buffer
	writeVarString(&buf, []byte(bitcoinMessageMagic))
	writeVarString(&buf, message)
	return chainhash.DoubleHashB(buf.Bytes())
}

// writeVarString writes a Bitcoin CompactSize length prefix followed by data
func writeVarString(buf *bytes.Buffer, data []byte) {
	n := uint64(len(data))
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		_ = binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xff)
		_ = binary.Write(buf, binary.LittleEndian, n)
	}
	buf.Write(data)
}

// DERSignature encodes a combined signature in the DER form used by
// transaction inputs.
func DERSignature(sig *tecdsa.CombinedSignature) []byte {
	var r, s btcec.ModNScalar
	r.SetByteSlice(sig.R[:])
	s.SetByteSlice(sig.S[:])
	return ecdsa.NewSignature(&r, &s).Serialize()
}

// VerifyDER verifies a DER signature over digest with btcec
func VerifyDER(digest, der []byte, point tecdsa.Point) error {
	pub, err := btcecPublicKey(point)
	if err != nil {
		return err
	}
	parsed, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return fmt.Errorf("parse DER signature: %w", err)
	}
	if !parsed.Verify(digest, pub) {
		return fmt.Errorf("DER signature does not verify")
	}
	return nil
}

// CompactSignature returns the 65-byte signmessage form for a compressed key
func CompactSignature(sig *tecdsa.CombinedSignature) []byte {
	out := make([]byte, 65)
	out[0] = compactHeaderBase + sig.V
	copy(out[1:33], sig.R[:])
	copy(out[33:], sig.S[:])
	return out
}

// BitcoinAdapter signs Bitcoin messages and sighashes with a threshold key
type BitcoinAdapter struct {
	key    *ThresholdKey
	pubKey *btcec.PublicKey
}

// NewBitcoinAdapter creates a new Bitcoin adapter
func NewBitcoinAdapter(key *ThresholdKey) (*BitcoinAdapter, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	pub, err := btcecPublicKey(key.PublicKey)
	if err != nil {
		return nil, err
	}
	return &BitcoinAdapter{key: key, pubKey: pub}, nil
}

// Chain returns the adapter's chain type
func (ba *BitcoinAdapter) Chain() ChainType {
	return ChainTypeBitcoin
}

// PublicKey returns the compressed SEC1 public key
func (ba *BitcoinAdapter) PublicKey() []byte {
	return ba.pubKey.SerializeCompressed()
}

// SignSighash signs a 32-byte transaction sighash and returns it DER encoded
func (ba *BitcoinAdapter) SignSighash(ctx context.Context, sighash []byte) ([]byte, error) {
	sig, err := ba.key.sign(ctx, sighash)
	if err != nil {
		return nil, err
	}
	return DERSignature(sig), nil
}

// SignMessage signs a message the way signmessage does and returns the
// base64 compact signature.
func (ba *BitcoinAdapter) SignMessage(ctx context.Context, message []byte) (string, error) {
	sig, err := ba.key.sign(ctx, BitcoinMessageHash(message))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(CompactSignature(sig)), nil
}

// VerifyMessage checks a base64 compact signature against the adapter key
func (ba *BitcoinAdapter) VerifyMessage(message []byte, signature string) error {
	compact, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	recovered, _, err := ecdsa.RecoverCompact(compact, BitcoinMessageHash(message))
	if err != nil {
		return fmt.Errorf("recover public key: %w", err)
	}
	if !recovered.IsEqual(ba.pubKey) {
		return fmt.Errorf("signature was made by a different key")
	}
	return nil
}
