package main

import (
	"github.com/spf13/cobra"
)

var splitKey string

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a private key into Shamir shares",
	Long: `split evaluates a random polynomial of degree t-1 whose constant
term is the key at indices 1..n. The Encoded column is the CBOR form
accepted by "tecdsa sign --share".

Example:
  tecdsa split --key 3039 -n 3 -t 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}

		secret, err := loadOrGenerateKey(session.Curve(), splitKey)
		if err != nil {
			return err
		}
		defer secret.Zeroize()

		shares, pub, err := session.Deal(secret)
		if err != nil {
			return err
		}

		printSection("Aggregate public key")
		printKeyValues([][]string{
			{"Compressed", formatHex(pub.CompressedBytes())},
			{"Uncompressed", formatHex(pub.Bytes())},
		})

		printSection("Shares")
		return printShares(shares)
	},
}

func init() {
	splitCmd.Flags().StringVar(&splitKey, "key", "", "private key as hex (random when empty)")
}
