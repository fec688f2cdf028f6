package bip352

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// bip0341NUMSPoint is BIP-341's unspendable internal key. A taproot input
// whose control block carries it as the internal key proves no key-path
// spend was ever possible, so it carries no recoverable public key and does
// not contribute to the input sum.
var bip0341NUMSPoint = []byte{
	0x50, 0x92, 0x9b, 0x74, 0xc1, 0xa0, 0x49, 0x54,
	0xb7, 0x8b, 0x4b, 0x60, 0x35, 0xe9, 0x7a, 0x5e,
	0x07, 0x8a, 0x5a, 0x0f, 0x28, 0xec, 0x96, 0xd5,
	0x47, 0xbf, 0xee, 0x9a, 0xce, 0x80, 0x3a, 0xc0,
}

// InputClass is the pkScript shape of a transaction input, as relevant to
// silent payment input-sum contribution.
type InputClass int

const (
	InputOther InputClass = iota
	InputP2PKH
	InputP2SHP2WPKH
	InputP2WPKH
	InputP2TRKeyPath
)

// ClassifyInput inspects a previous output's pkScript and reports which of
// the four contributing input shapes it is, or InputOther if it does not
// contribute to the input sum.
func ClassifyInput(pkScript []byte) (InputClass, error) {
	script, err := txscript.ParsePkScript(pkScript)
	if err != nil {
		// A pkScript the library can't even parse simply doesn't
		// contribute; this is not an input_sum failure by itself.
		return InputOther, nil
	}

	switch script.Class() {
	case txscript.PubKeyHashTy:
		return InputP2PKH, nil
	case txscript.ScriptHashTy:
		return InputP2SHP2WPKH, nil
	case txscript.WitnessV0PubKeyHashTy:
		return InputP2WPKH, nil
	case txscript.WitnessV1TaprootTy:
		return InputP2TRKeyPath, nil
	default:
		return InputOther, nil
	}
}

// ExtractInputPubKey recovers an input's public key from its scriptSig and
// witness, for the four pkScript shapes ClassifyInput recognizes. class must
// be the value ClassifyInput already returned for prevPkScript; callers that
// don't already have it can get it for free by calling ClassifyInput first.
// It returns InputErrUnknownPubkey for anything that doesn't parse as one of
// those shapes, including a taproot script-path spend whose control block
// proves the internal key was never spendable (the BIP-0341 NUMS point).
func ExtractInputPubKey(class InputClass, scriptSig []byte, witness wire.TxWitness, prevPkScript []byte) (Point, error) {
	switch class {
	case InputP2PKH:
		if len(witness) != 0 || len(scriptSig) < 2 {
			return Point{}, &InputError{Kind: InputErrUnknownPubkey}
		}
		targetHash := prevPkScript[3:23]
		for i := len(scriptSig); i >= 33; i-- {
			candidate := scriptSig[i-33 : i]
			if bytes.Equal(targetHash, btcutil.Hash160(candidate)) {
				return PointFromCompressed(candidate)
			}
		}
		return Point{}, &InputError{Kind: InputErrUnknownPubkey}

	case InputP2SHP2WPKH:
		if len(scriptSig) == 0 || len(witness) != 2 || len(witness[1]) != 33 {
			return Point{}, &InputError{Kind: InputErrUnknownPubkey}
		}
		return PointFromCompressed(witness[1])

	case InputP2WPKH:
		if len(witness) != 2 || len(witness[1]) != 33 {
			return Point{}, &InputError{Kind: InputErrUnknownPubkey}
		}
		return PointFromCompressed(witness[1])

	case InputP2TRKeyPath:
		if len(witness) < 1 {
			return Point{}, &InputError{Kind: InputErrUnknownPubkey}
		}
		stack := witness
		if len(stack) > 1 && len(stack[len(stack)-1]) > 0 && stack[len(stack)-1][0] == 0x50 {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 1 {
			controlBlock := stack[len(stack)-1]
			if len(controlBlock) < 33 || bytes.Equal(controlBlock[1:33], bip0341NUMSPoint) {
				return Point{}, &InputError{Kind: InputErrUnknownPubkey}
			}
		}
		if len(prevPkScript) != 34 {
			return Point{}, &InputError{Kind: InputErrUnknownPubkey}
		}
		var xonly [32]byte
		copy(xonly[:], prevPkScript[2:])
		pt, err := PointFromXOnlyEven(xonly)
		if err != nil {
			// The witness parses as a taproot key-path spend, but the
			// output's x-only key is not a valid curve coordinate, so
			// lifting it to the canonical even-parity point fails - a
			// distinct failure from never finding a candidate pubkey at
			// all.
			return Point{}, &InputError{Kind: InputErrParityRecoveryFailed}
		}
		return pt, nil

	default:
		return Point{}, &InputError{Kind: InputErrUnknownPubkey}
	}
}

// Input describes one transaction input as presented to the shared-secret
// engine: its outpoint, its previous output's pkScript (used to classify
// it), the input's public key as recovered from the witness/scriptSig by
// the host, and - on the sending side only - the matching private key.
type Input struct {
	OutPoint wire.OutPoint
	PkScript []byte
	PubKey   Point
	PrivKey  *Scalar
}

// InputErrorKind enumerates shared-secret input-sum failures.
type InputErrorKind int

const (
	InputErrNoContributingInputs InputErrorKind = iota
	InputErrUnknownPubkey
	InputErrParityRecoveryFailed
)

// InputError reports a problem computing an input sum.
type InputError struct {
	Kind InputErrorKind
}

func (e *InputError) Error() string {
	switch e.Kind {
	case InputErrNoContributingInputs:
		return "bip352: no contributing inputs"
	case InputErrUnknownPubkey:
		return "bip352: input has no derivable public key"
	case InputErrParityRecoveryFailed:
		return "bip352: taproot output key is not a valid curve coordinate"
	default:
		return "bip352: input error"
	}
}

// ShareErrorKind enumerates shared-secret derivation failures.
type ShareErrorKind int

const (
	ShareErrIdentity ShareErrorKind = iota
	ShareErrWrongNetwork
)

// ShareError reports a failure deriving a shared secret.
type ShareError struct {
	Kind ShareErrorKind
}

func (e *ShareError) Error() string {
	switch e.Kind {
	case ShareErrIdentity:
		return "bip352: shared secret input is the point at infinity"
	case ShareErrWrongNetwork:
		return "bip352: code network does not match wallet network"
	default:
		return "bip352: share error"
	}
}

// InputSum is the result of combining a transaction's contributing inputs:
// the summed public key, the outpoint hash scalar derived from it, and -
// when every contributing input's private key was supplied - the summed
// private key.
type InputSum struct {
	PrivKeySum   *Scalar
	PubKeySum    Point
	OutpointHash Scalar
}

func serializeOutpoint(op wire.OutPoint) [36]byte {
	var buf bytes.Buffer
	_ = wire.WriteOutPoint(&buf, 0, 0, &op)
	var out [36]byte
	copy(out[:], buf.Bytes())
	return out
}

// ComputeInputSum classifies every input, sums the contributing public
// (and, if fully known, private) keys with the P2TR parity adjustment
// applied, and derives the outpoint hash scalar from the lexicographically
// smallest contributing outpoint.
func ComputeInputSum(inputs []Input) (InputSum, error) {
	var pubAcc PointAccumulator
	var privAcc ScalarAccumulator
	haveAllPriv := true
	var outpoints []wire.OutPoint

	for _, in := range inputs {
		class, err := ClassifyInput(in.PkScript)
		if err != nil {
			return InputSum{}, err
		}
		if class == InputOther {
			continue
		}

		pub := in.PubKey
		priv := in.PrivKey

		if class == InputP2TRKeyPath && pub.IsOddY() {
			pub = pub.Negate()
			if priv != nil {
				negated := priv.Negate()
				priv = &negated
			}
		}

		pubAcc.Add(pub)
		if priv != nil {
			privAcc.Add(*priv)
		} else {
			haveAllPriv = false
		}
		outpoints = append(outpoints, in.OutPoint)
	}

	if len(outpoints) == 0 {
		return InputSum{}, &InputError{Kind: InputErrNoContributingInputs}
	}

	pubSum, err := pubAcc.Finish()
	if err != nil {
		return InputSum{}, &ShareError{Kind: ShareErrIdentity}
	}

	sort.Slice(outpoints, func(i, j int) bool {
		a := serializeOutpoint(outpoints[i])
		b := serializeOutpoint(outpoints[j])
		return bytes.Compare(a[:], b[:]) < 0
	})
	smallest := serializeOutpoint(outpoints[0])

	pubSumCompressed := pubSum.Compressed()
	h := TaggedHash(TagInputs, smallest[:], pubSumCompressed[:])
	outpointHash, err := scalarFromTaggedHash(h)
	if err != nil {
		return InputSum{}, err
	}

	sum := InputSum{
		PubKeySum:    pubSum,
		OutpointHash: outpointHash,
	}

	if haveAllPriv {
		privSum, err := privAcc.Finish()
		if err != nil {
			return InputSum{}, &ShareError{Kind: ShareErrIdentity}
		}
		sum.PrivKeySum = &privSum
	}

	return sum, nil
}

// SharedSecretSender computes S = (a_sum * outpoint_hash) * B_scan. The
// a_sum*outpoint_hash product is computed once per transaction by the
// caller (see EcdhSecret) and reused across recipients.
func EcdhSecret(privSum Scalar, outpointHash Scalar) Scalar {
	return privSum.Mul(outpointHash)
}

// SharedSecretFromEcdh multiplies a precomputed a_sum*outpoint_hash scalar
// by a recipient's scan public key, yielding the sender-side shared secret.
func SharedSecretFromEcdh(ecdh Scalar, scanPub Point) (Point, error) {
	s, err := scanPub.Mul(ecdh)
	if err != nil {
		return Point{}, &ShareError{Kind: ShareErrIdentity}
	}
	return s, nil
}

// SharedSecretReceiver computes S = (b_scan * outpoint_hash) * A_sum.
func SharedSecretReceiver(scanPriv Scalar, outpointHash Scalar, pubSum Point) (Point, error) {
	ecdh := scanPriv.Mul(outpointHash)
	s, err := pubSum.Mul(ecdh)
	if err != nil {
		return Point{}, &ShareError{Kind: ShareErrIdentity}
	}
	return s, nil
}

// outputTweak computes t_k = H_tag("BIP0352/SharedSecret", compressed(shared)
// || be32(k)), the per-output spend tweak shared by the sender and scanner
// paths.
func outputTweak(shared Point, k uint32) (Scalar, error) {
	compressed := shared.Compressed()
	var kBytes [4]byte
	binary.BigEndian.PutUint32(kBytes[:], k)

	h := TaggedHash(TagSharedSecret, compressed[:], kBytes[:])
	return scalarFromTaggedHash(h)
}
