package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

var (
	signDigest string
	signShares []string
	signPubKey string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Threshold-sign a 32-byte digest with encoded shares",
	Long: `sign runs one signing session over the given shares: nonce
agreement, concurrent partial signing, interpolation, low-s
canonicalization, and recovery-id search against the public key.

Example:
  tecdsa sign --digest <64 hex> --pubkey <33 byte hex> \
    --share <cbor hex> --share <cbor hex>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		curve := session.Curve()

		digest, err := decodeHex(signDigest)
		if err != nil {
			return fmt.Errorf("--digest: %w", err)
		}

		pubBytes, err := decodeHex(signPubKey)
		if err != nil {
			return fmt.Errorf("--pubkey: %w", err)
		}
		pub, err := curve.PointFromBytes(pubBytes)
		if err != nil {
			return fmt.Errorf("--pubkey: %w", err)
		}

		shares := make([]*tecdsa.Share, 0, len(signShares))
		for _, encoded := range signShares {
			data, err := decodeHex(encoded)
			if err != nil {
				return fmt.Errorf("--share: %w", err)
			}
			share, err := tecdsa.UnmarshalShare(curve, data)
			if err != nil {
				return fmt.Errorf("--share: %w", err)
			}
			shares = append(shares, share)
		}

		sig, err := session.Sign(cmd.Context(), digest, shares, pub)
		if err != nil {
			return err
		}

		printSection("Combined signature")
		printSignature(sig)
		printCheck("signature recovers the aggregate public key",
			tecdsa.VerifyCombinedSignature(curve, digest, sig, pub) == nil)
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signDigest, "digest", "", "32-byte message digest as hex")
	signCmd.Flags().StringArrayVar(&signShares, "share", nil, "CBOR-encoded share as hex (repeat per signer)")
	signCmd.Flags().StringVar(&signPubKey, "pubkey", "", "aggregate public key as SEC1 hex")
	_ = signCmd.MarkFlagRequired("digest")
	_ = signCmd.MarkFlagRequired("share")
	_ = signCmd.MarkFlagRequired("pubkey")
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}

func formatHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
