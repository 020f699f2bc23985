package tecdsa

// PartialSignature is one participant's contribution to a signing event.
// R is the same for every partial of the event; S = k⁻¹·(h + y·R).
type PartialSignature struct {
	Index ParticipantIndex
	R     Scalar
	S     Scalar
}

// NonceCommitment returns r = x(k·G) mod n. A zero nonce or a zero r cannot
// produce a valid signature and is reported as ErrDegenerateNonceOrR; the
// caller must discard k and agree on a fresh one.
func NonceCommitment(curve Curve, nonce Scalar) (Scalar, error) {
	r, err := nonceCommitment(curve, nonce)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func nonceCommitment(curve Curve, nonce Scalar) (Scalar, *Error) {
	if nonce == nil || nonce.IsZero() {
		return nil, ErrDegenerateNonceOrR.WithContext("check", "k = 0")
	}

	r := curve.BasePoint().Mul(nonce).XScalar()
	if r.IsZero() {
		return nil, ErrDegenerateNonceOrR.WithContext("check", "r = 0")
	}
	return r, nil
}

// CreatePartialSignature computes share's partial signature over msgHash
// with the agreed nonce. The share value enters s linearly, so interpolating
// partials at x = 0 yields the single-signer s without reconstructing the key.
func CreatePartialSignature(curve Curve, msgHash []byte, share *Share, nonce Scalar) (*PartialSignature, error) {
	h, err := DigestToScalar(curve, msgHash)
	if err != nil {
		return nil, err
	}
	if err := share.validate(); err != nil {
		return nil, err
	}

	r, degenerate := nonceCommitment(curve, nonce)
	if degenerate != nil {
		return nil, degenerate.WithContext("index", uint32(share.Index))
	}

	kInv, err := nonce.Invert()
	if err != nil {
		return nil, err
	}

	s := kInv.Mul(h.Add(share.Value.Mul(r)))
	kInv.Zeroize()

	return &PartialSignature{
		Index: share.Index,
		R:     r,
		S:     s,
	}, nil
}
