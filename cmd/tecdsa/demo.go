package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/canopy-network/canopy/lib/tecdsa"
	"github.com/canopy-network/canopy/lib/tecdsa/adapters"
)

var (
	demoKey      string
	demoChainID  int64
	demoTo       string
	demoValueWei string
	demoSigners  []uint
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Split a key and threshold-sign an EIP-1559 transfer",
	Long: `demo walks one signing event end to end and prints every
intermediate value: key, shares, address, unsigned transaction hash,
partial signatures, combined signature, and the recovered sender.

Example:
  tecdsa demo -n 3 -t 2 --signers 2,3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.Context())
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoKey, "key", "", "private key as hex (random when empty)")
	demoCmd.Flags().Int64Var(&demoChainID, "chain-id", 11155111, "EIP-155 chain id")
	demoCmd.Flags().StringVar(&demoTo, "to", "0x14BdDd8fCb538099eC3832f3Bc53CC657570374a", "recipient address")
	demoCmd.Flags().StringVar(&demoValueWei, "value-wei", "1000000000000000", "transfer value in wei")
	demoCmd.Flags().UintSliceVar(&demoSigners, "signers", nil, "participant indices that sign (first t when empty)")
}

func runDemo(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	session, err := newSession()
	if err != nil {
		return err
	}
	curve := session.Curve()

	secret, err := loadOrGenerateKey(curve, demoKey)
	if err != nil {
		return err
	}
	defer secret.Zeroize()

	shares, pub, err := session.Deal(secret)
	if err != nil {
		return err
	}

	address, err := adapters.EthereumAddress(pub)
	if err != nil {
		return err
	}

	printSection("Key")
	printKeyValues([][]string{
		{"Private key", secret.String()},
		{"Public key", pub.String()},
		{"Ethereum address", address.Hex()},
	})

	printSection("Shares")
	if err := printShares(shares); err != nil {
		return err
	}

	value, ok := new(big.Int).SetString(demoValueWei, 10)
	if !ok {
		return fmt.Errorf("invalid --value-wei %q", demoValueWei)
	}
	if !common.IsHexAddress(demoTo) {
		return fmt.Errorf("invalid --to address %q", demoTo)
	}
	chainID := big.NewInt(demoChainID)
	tx := adapters.NewDynamicFeeTx(
		chainID, 0, common.HexToAddress(demoTo), value, 21000,
		big.NewInt(1_000_000_000), big.NewInt(20_000_000_000), nil,
	)
	signer := types.LatestSignerForChainID(chainID)
	txHash := signer.Hash(tx)

	printSection("Unsigned transaction")
	printKeyValues([][]string{
		{"Signing hash", txHash.Hex()},
		{"To", demoTo},
		{"Value (wei)", value.String()},
		{"Chain id", chainID.String()},
	})

	selected, err := selectShares(shares, demoSigners, globalFlags.Threshold)
	if err != nil {
		return err
	}

	sig, partials, err := signVerbose(ctx, curve, txHash[:], selected, pub)
	if err != nil {
		return err
	}

	printSection("Partial signatures")
	printPartials(partials)

	printSection("Combined signature")
	printSignature(sig)

	recovered, err := adapters.RecoverAddress(txHash[:], sig)
	if err != nil {
		return err
	}

	signed, err := tx.WithSignature(signer, sig.Bytes())
	if err != nil {
		return fmt.Errorf("attach signature: %w", err)
	}
	sender, err := types.Sender(signer, signed)
	if err != nil {
		return fmt.Errorf("recover sender: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return err
	}

	printSection("Verification")
	printKeyValues([][]string{
		{"Recovered address", recovered.Hex()},
		{"Transaction sender", sender.Hex()},
		{"Signed transaction", fmt.Sprintf("0x%x", raw)},
	})
	printCheck("recovered address matches", recovered == address)
	printCheck("transaction sender matches", sender == address)

	if sender != address {
		return fmt.Errorf("sender %s does not match %s", sender.Hex(), address.Hex())
	}
	return nil
}

// signVerbose runs the signing event step by step so the partials can be
// shown, retrying with a fresh nonce on recoverable failures.
func signVerbose(ctx context.Context, curve tecdsa.Curve, digest []byte, shares []*tecdsa.Share, pub tecdsa.Point) (*tecdsa.CombinedSignature, []*tecdsa.PartialSignature, error) {
	dealer := tecdsa.NewTrustedDealerNonce(curve)
	combiner, err := tecdsa.NewCombiner(curve, globalFlags.Threshold, tecdsa.NewZapTraceHandler(logger))
	if err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= globalFlags.MaxNonceAttempts; attempt++ {
		sig, partials, err := signOnce(ctx, curve, dealer, combiner, attempt, digest, shares, pub)
		if err == nil {
			return sig, partials, nil
		}
		if !tecdsa.IsRecoverableError(err) {
			return nil, nil, err
		}
		pterm.Warning.Printfln("attempt %d failed, agreeing on a new nonce: %v", attempt, err)
		lastErr = err
	}
	return nil, nil, tecdsa.ErrRetriesExhausted.WithCause(lastErr)
}

func signOnce(
	ctx context.Context,
	curve tecdsa.Curve,
	dealer tecdsa.NonceAgreement,
	combiner *tecdsa.Combiner,
	attempt int,
	digest []byte,
	shares []*tecdsa.Share,
	pub tecdsa.Point,
) (*tecdsa.CombinedSignature, []*tecdsa.PartialSignature, error) {
	k, err := dealer.AgreeNonce(ctx, &tecdsa.NonceRequest{Attempt: attempt, MessageHash: digest})
	if err != nil {
		return nil, nil, err
	}
	defer k.Zeroize()

	partials := make([]*tecdsa.PartialSignature, len(shares))
	for i, share := range shares {
		partials[i], err = tecdsa.CreatePartialSignature(curve, digest, share, k)
		if err != nil {
			return nil, nil, err
		}
	}

	sig, err := combiner.Combine(partials, digest, pub)
	if err != nil {
		return nil, nil, err
	}
	return sig, partials, nil
}

func loadOrGenerateKey(curve tecdsa.Curve, keyHex string) (tecdsa.Scalar, error) {
	if keyHex == "" {
		return curve.ScalarRandom()
	}
	key, err := tecdsa.ScalarFromHex(curve, keyHex)
	if err != nil {
		return nil, err
	}
	if key.IsZero() {
		return nil, fmt.Errorf("private key must be non-zero")
	}
	return key, nil
}

// selectShares picks the shares with the given indices, or the first
// threshold shares when indices is empty.
func selectShares(shares []*tecdsa.Share, indices []uint, threshold int) ([]*tecdsa.Share, error) {
	if len(indices) == 0 {
		if threshold > len(shares) {
			return nil, tecdsa.ErrInsufficientPartials.WithContext("have", len(shares)).WithContext("need", threshold)
		}
		return shares[:threshold], nil
	}

	byIndex := make(map[tecdsa.ParticipantIndex]*tecdsa.Share, len(shares))
	for _, share := range shares {
		byIndex[share.Index] = share
	}

	selected := make([]*tecdsa.Share, 0, len(indices))
	for _, idx := range indices {
		share, ok := byIndex[tecdsa.ParticipantIndex(idx)]
		if !ok {
			return nil, fmt.Errorf("no share with index %d", idx)
		}
		selected = append(selected, share)
	}
	return selected, nil
}
