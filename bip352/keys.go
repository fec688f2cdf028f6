package bip352

import (
	"encoding/binary"
)

// LabelTweak is a derived per-label scalar/point pair. Label m=0 is
// reserved by convention for the wallet's own "change" outputs and is
// rejected by DeriveLabelTweak.
type LabelTweak struct {
	M      uint32
	Tweak  Scalar
	PubKey Point
}

// LabelErrorKind enumerates label-derivation and label-table failures.
type LabelErrorKind int

const (
	LabelErrReservedM LabelErrorKind = iota
	LabelErrDuplicate
)

// LabelError reports a problem deriving a label or building a LabelTable.
type LabelError struct {
	Kind LabelErrorKind
}

func (e *LabelError) Error() string {
	switch e.Kind {
	case LabelErrReservedM:
		return "bip352: label m=0 is reserved"
	case LabelErrDuplicate:
		return "bip352: duplicate label m"
	default:
		return "bip352: label error"
	}
}

// DeriveLabelTweak computes t_m = H_tag("BIP0352/Label", scan_priv || be32(m))
// and L_m = t_m*G. m=0 is reserved and rejected; a tagged-hash result that
// does not reduce to a usable scalar surfaces as a ScalarError.
func DeriveLabelTweak(scanPriv Scalar, m uint32) (LabelTweak, error) {
	if m == 0 {
		return LabelTweak{}, &LabelError{Kind: LabelErrReservedM}
	}
	return deriveLabelTweak(scanPriv, m)
}

// DeriveChangeLabelTweak derives the reserved m=0 label tweak a wallet uses
// for its own change outputs. DeriveLabelTweak refuses m=0 for anything a
// caller might hand out as a shareable label; this is the one sanctioned way
// to produce it, for a wallet's internal use only.
func DeriveChangeLabelTweak(scanPriv Scalar) (LabelTweak, error) {
	return deriveLabelTweak(scanPriv, 0)
}

func deriveLabelTweak(scanPriv Scalar, m uint32) (LabelTweak, error) {
	scanPrivBytes := scanPriv.Bytes()
	var mBytes [4]byte
	binary.BigEndian.PutUint32(mBytes[:], m)

	h := TaggedHash(TagLabel, scanPrivBytes[:], mBytes[:])
	tweak, err := scalarFromTaggedHash(h)
	if err != nil {
		return LabelTweak{}, err
	}

	return LabelTweak{M: m, Tweak: tweak, PubKey: tweak.PubKey()}, nil
}

// LabelTable maps a compressed public key to the label that produced it.
// Both L_m and -L_m are stored, per the scanner's double-sign-choice lookup
// (see ScanTransaction), so the scanner's inner loop never needs a second
// point negation.
type LabelTable struct {
	entries map[[33]byte]LabelTweak
}

// NewLabelTable builds a LabelTable from a set of labels, rejecting m=0 and
// repeated m values.
func NewLabelTable(labels []LabelTweak) (LabelTable, error) {
	seen := make(map[uint32]bool, len(labels))
	entries := make(map[[33]byte]LabelTweak, 2*len(labels))

	for _, l := range labels {
		if l.M == 0 {
			return LabelTable{}, &LabelError{Kind: LabelErrReservedM}
		}
		if seen[l.M] {
			return LabelTable{}, &LabelError{Kind: LabelErrDuplicate}
		}
		seen[l.M] = true

		entries[l.PubKey.Compressed()] = l
		entries[l.PubKey.Negate().Compressed()] = l
	}

	return LabelTable{entries: entries}, nil
}

// Lookup returns the label associated with a compressed candidate point,
// which may be either L_m or -L_m.
func (t LabelTable) Lookup(compressed [33]byte) (LabelTweak, bool) {
	l, ok := t.entries[compressed]
	return l, ok
}

// Len reports the number of distinct labels (not table entries).
func (t LabelTable) Len() int {
	return len(t.entries) / 2
}
