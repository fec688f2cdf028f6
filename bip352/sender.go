package bip352

// Recipient is one requested silent-payment destination: a code and the
// amount the sender intends to pay it.
type Recipient struct {
	Code   SilentPaymentCode
	Amount uint64
}

// Output is a derived destination: the taproot x-only output key a
// recipient will discover when scanning, and the amount carried over from
// the request.
type Output struct {
	XOnly  [32]byte
	Amount uint64
}

// SenderOutputs derives one output per requested recipient, in request
// order. Recipients sharing a scan public key share a single ECDH
// computation and a contiguous k-counter (k = 0, 1, 2... in the order those
// recipients first appear), regardless of whether they carry the same
// spend key - matching the reference shared-secret cache, which is keyed
// only by scan pubkey. An empty recipient list yields an empty, non-error
// result.
func SenderOutputs(aSum Scalar, outpointHash Scalar, recipients []Recipient) ([]Output, error) {
	return SenderOutputsFromEcdh(EcdhSecret(aSum, outpointHash), recipients)
}

// SenderOutputsFromEcdh is SenderOutputs split at the point where the
// a_sum*outpoint_hash product has already been computed - the PSBT glue
// layer reuses this directly when a caller supplies that scalar (or its
// cooperative-signing equivalent) without exposing a_sum itself.
func SenderOutputsFromEcdh(ecdh Scalar, recipients []Recipient) ([]Output, error) {
	if len(recipients) == 0 {
		return nil, nil
	}

	type scanGroup struct {
		scanKey Point
		members []int
	}

	groupOrder := make([][33]byte, 0, len(recipients))
	groups := make(map[[33]byte]*scanGroup, len(recipients))

	for i, r := range recipients {
		key := r.Code.ScanKey.Compressed()
		g, ok := groups[key]
		if !ok {
			g = &scanGroup{scanKey: r.Code.ScanKey}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		g.members = append(g.members, i)
	}

	outputs := make([]Output, len(recipients))

	for _, key := range groupOrder {
		g := groups[key]

		shared, err := SharedSecretFromEcdh(ecdh, g.scanKey)
		if err != nil {
			return nil, err
		}

		for k, idx := range g.members {
			tweak, err := outputTweak(shared, uint32(k))
			if err != nil {
				return nil, err
			}

			outputKey, err := recipients[idx].Code.SpendKey.Add(tweak.PubKey())
			if err != nil {
				return nil, err
			}

			outputs[idx] = Output{
				XOnly:  outputKey.XOnly(),
				Amount: recipients[idx].Amount,
			}
		}
	}

	return outputs, nil
}
