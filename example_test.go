package tecdsa_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

func Example() {
	config := tecdsa.DefaultConfig()
	session, err := tecdsa.NewSigningSession(config, tecdsa.NewTrustedDealerNonce(tecdsa.NewSecp256k1Curve()), nil)
	if err != nil {
		panic(err)
	}
	curve := session.Curve()

	shares, pub, err := session.Deal(curve.ScalarFromUint64(12345))
	if err != nil {
		panic(err)
	}

	digest := sha256.Sum256([]byte("transfer 1 coin"))
	sig, err := session.Sign(context.Background(), digest[:], []*tecdsa.Share{shares[0], shares[2]}, pub)
	if err != nil {
		panic(err)
	}

	fmt.Println("signed by participants 1 and 3")
	fmt.Println("verifies:", tecdsa.VerifyCombinedSignature(curve, digest[:], sig, pub) == nil)

	r, s, err := sig.Scalars(curve)
	if err != nil {
		panic(err)
	}
	recovered, err := curve.RecoverPublicKey(digest[:], r, s, sig.V)
	if err != nil {
		panic(err)
	}
	fmt.Println("recovers key:", bytes.Equal(recovered.Bytes(), pub.Bytes()))
	fmt.Println("low s:", !s.IsOverHalfOrder())
	// Output:
	// signed by participants 1 and 3
	// verifies: true
	// recovers key: true
	// low s: true
}

func ExampleGenerateShares() {
	curve := tecdsa.NewSecp256k1Curve()
	secret := curve.ScalarFromUint64(12345)

	shares, err := tecdsa.GenerateShares(curve, secret, 5, 3)
	if err != nil {
		panic(err)
	}

	recovered, err := tecdsa.ReconstructSecret(curve, []*tecdsa.Share{shares[4], shares[1], shares[3]})
	if err != nil {
		panic(err)
	}
	fmt.Println(recovered.BigInt())
	// Output: 12345
}
