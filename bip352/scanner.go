package bip352

// Owned describes one transaction output identified as belonging to the
// scanning wallet: its position in the caller-supplied output list, the
// scalar to add to the spend private key to recover the output's spending
// key, and - for label-matched outputs - which label matched.
type Owned struct {
	OutputIndex int
	Tweak       Scalar
	Label       *uint32
}

// ScanTransaction reconstructs the shared secret from a broadcast input-sum
// public key and outpoint hash, then walks candidate output keys k=0,1,2...
// matching each against the transaction's taproot x-only output keys (and,
// failing that, against every label in the table) until the first k that
// matches nothing at all. Matching terminates there because a conforming
// sender assigns k contiguously per recipient; a sender that skips a k
// only costs the receiver that one output, never correctness.
func ScanTransaction(bScan Scalar, spendPub Point, aSum Point, outpointHash Scalar, outputs [][32]byte, labels LabelTable) ([]Owned, error) {
	ecdh, err := SharedSecretReceiver(bScan, outpointHash, aSum)
	if err != nil {
		if shareErr, ok := err.(*ShareError); ok && shareErr.Kind == ShareErrIdentity {
			return nil, nil
		}
		return nil, err
	}

	remaining := make([]int, len(outputs))
	for i := range outputs {
		remaining[i] = i
	}

	var found []Owned

	for k := uint32(0); ; k++ {
		tweak, err := outputTweak(ecdh, k)
		if err != nil {
			// Tag-hash overflow for this k (probability ~2^-128):
			// the spec has the caller retry with the next k rather
			// than treat it as a scan failure.
			continue
		}

		pk, err := spendPub.Add(tweak.PubKey())
		if err != nil {
			break
		}
		xk := pk.XOnly()

		if idx, ok := matchPlain(outputs, remaining, xk); ok {
			found = append(found, Owned{OutputIndex: idx, Tweak: tweak})
			remaining = removeIndex(remaining, idx)
			continue
		}

		idx, labelTweak, ok := matchLabelled(outputs, remaining, pk, labels)
		if !ok {
			break
		}

		m := labelTweak.M
		found = append(found, Owned{
			OutputIndex: idx,
			Tweak:       tweak.Add(labelTweak.Tweak),
			Label:       &m,
		})
		remaining = removeIndex(remaining, idx)
	}

	return found, nil
}

func matchPlain(outputs [][32]byte, remaining []int, candidate [32]byte) (int, bool) {
	for _, idx := range remaining {
		if outputs[idx] == candidate {
			return idx, true
		}
	}
	return 0, false
}

// matchLabelled tries every still-unmatched output against both sign
// choices of the label offset, since the scanner only knows P_k (no
// label), while the actual output is xonly(P_k + L) for whichever parity
// the sender's point happened to have before x-only flattening.
func matchLabelled(outputs [][32]byte, remaining []int, pk Point, labels LabelTable) (int, LabelTweak, bool) {
	negPk := pk.Negate()

	for _, idx := range remaining {
		liftY, err := PointFromXOnlyEven(outputs[idx])
		if err != nil {
			continue
		}

		if d, err := liftY.Add(negPk); err == nil {
			if l, ok := labels.Lookup(d.Compressed()); ok {
				return idx, l, true
			}
		}
		if d, err := liftY.Add(pk); err == nil {
			if l, ok := labels.Lookup(d.Compressed()); ok {
				return idx, l, true
			}
		}
	}

	return 0, LabelTweak{}, false
}

func removeIndex(s []int, idx int) []int {
	out := s[:0]
	for _, v := range s {
		if v != idx {
			out = append(out, v)
		}
	}
	return out
}

// ScanTransactionPrefix is a light-client optimization over ScanTransaction:
// it compares only the leading prefixLen bytes of each candidate x-only key
// against the leading bytes of the transaction's outputs, suitable for a
// quick pre-filter (e.g. against a compact block filter's short hints)
// before paying for a full ScanTransaction pass. It shares ScanTransaction's
// k-termination rule: the loop stops at the first k with no prefix match.
func ScanTransactionPrefix(bScan Scalar, spendPub Point, aSum Point, outpointHash Scalar, outputPrefixes [][]byte, prefixLen int) ([]int, error) {
	ecdh, err := SharedSecretReceiver(bScan, outpointHash, aSum)
	if err != nil {
		if shareErr, ok := err.(*ShareError); ok && shareErr.Kind == ShareErrIdentity {
			return nil, nil
		}
		return nil, err
	}

	remaining := make([]int, len(outputPrefixes))
	for i := range outputPrefixes {
		remaining[i] = i
	}

	var candidates []int

	for k := uint32(0); ; k++ {
		tweak, err := outputTweak(ecdh, k)
		if err != nil {
			continue
		}
		pk, err := spendPub.Add(tweak.PubKey())
		if err != nil {
			break
		}
		xk := pk.XOnly()

		matched := false
		for _, idx := range remaining {
			if bytesEqualPrefix(outputPrefixes[idx], xk[:], prefixLen) {
				candidates = append(candidates, idx)
				remaining = removeIndex(remaining, idx)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		break
	}

	return candidates, nil
}

func bytesEqualPrefix(a, b []byte, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
