package adapters

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

// ethereumVOffset is added to the recovery id in the 65-byte signature form
// used by personal_sign and ecrecover.
const ethereumVOffset = 27

// Keccak256 hashes data with legacy Keccak-256
func Keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

// EthereumAddress returns the address of a secp256k1 public key: the last
// 20 bytes of keccak256(x || y).
func EthereumAddress(point tecdsa.Point) (common.Address, error) {
	pub, err := btcecPublicKey(point)
	if err != nil {
		return common.Address{}, err
	}
	uncompressed := pub.SerializeUncompressed()
	return common.BytesToAddress(Keccak256(uncompressed[1:])[12:]), nil
}

// PersonalMessageHash returns the EIP-191 digest signed by personal_sign
func PersonalMessageHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return Keccak256([]byte(prefix), message)
}

// EthereumSignatureBytes returns r || s || (27 + v)
func EthereumSignatureBytes(sig *tecdsa.CombinedSignature) []byte {
	out := sig.Bytes()
	out[64] += ethereumVOffset
	return out
}

// RecoverAddress recovers the signer address of digest with go-ethereum's
// ecrecover, which takes the raw recovery id.
func RecoverAddress(digest []byte, sig *tecdsa.CombinedSignature) (common.Address, error) {
	pub, err := crypto.SigToPub(digest, sig.Bytes())
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// EthereumAdapter signs Ethereum messages and transactions with a threshold key
type EthereumAdapter struct {
	key     *ThresholdKey
	address common.Address
}

// NewEthereumAdapter creates a new Ethereum adapter
func NewEthereumAdapter(key *ThresholdKey) (*EthereumAdapter, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	address, err := EthereumAddress(key.PublicKey)
	if err != nil {
		return nil, err
	}
	return &EthereumAdapter{key: key, address: address}, nil
}

// Chain returns the adapter's chain type
func (ea *EthereumAdapter) Chain() ChainType {
	return ChainTypeEthereum
}

// Address returns the account address controlled by the threshold key
func (ea *EthereumAdapter) Address() common.Address {
	return ea.address
}

// SignMessage signs an EIP-191 personal message and returns the 65-byte
// signature with v in {27, 28}.
func (ea *EthereumAdapter) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	sig, err := ea.key.sign(ctx, PersonalMessageHash(message))
	if err != nil {
		return nil, err
	}
	return EthereumSignatureBytes(sig), nil
}

// VerifyMessage checks a 65-byte personal_sign signature against the adapter address
func (ea *EthereumAdapter) VerifyMessage(message, signature []byte) error {
	if len(signature) != 65 {
		return fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}
	raw := make([]byte, 65)
	copy(raw, signature)
	if raw[64] >= ethereumVOffset {
		raw[64] -= ethereumVOffset
	}
	sig, err := tecdsa.CombinedSignatureFromBytes(raw)
	if err != nil {
		return err
	}
	recovered, err := RecoverAddress(PersonalMessageHash(message), sig)
	if err != nil {
		return err
	}
	if recovered != ea.address {
		return fmt.Errorf("signature recovers %s, want %s", recovered.Hex(), ea.address.Hex())
	}
	return nil
}

// SignTransaction signs tx for chainID with the latest signer for that chain,
// which also selects the v encoding (EIP-155 for legacy, raw parity for typed
// transactions). The sender of the returned transaction is checked against
// the adapter address.
func (ea *EthereumAdapter) SignTransaction(ctx context.Context, chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(chainID)
	hash := signer.Hash(tx)

	sig, err := ea.key.sign(ctx, hash[:])
	if err != nil {
		return nil, fmt.Errorf("threshold sign transaction: %w", err)
	}

	signed, err := tx.WithSignature(signer, sig.Bytes())
	if err != nil {
		return nil, fmt.Errorf("attach signature: %w", err)
	}

	sender, err := types.Sender(signer, signed)
	if err != nil {
		return nil, fmt.Errorf("recover sender: %w", err)
	}
	if sender != ea.address {
		return nil, fmt.Errorf("transaction sender %s does not match threshold address %s", sender.Hex(), ea.address.Hex())
	}
	return signed, nil
}

// NewDynamicFeeTx builds an unsigned EIP-1559 transfer
func NewDynamicFeeTx(chainID *big.Int, nonce uint64, to common.Address, value *big.Int, gasLimit uint64, tipCap, feeCap *big.Int, data []byte) *types.Transaction {
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})
}
