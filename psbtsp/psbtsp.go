// Package psbtsp reads and writes the silent-payment-specific proprietary
// PSBT fields and resolves them into final transaction outputs, grounded on
// btcutil/psbt's own SilentPaymentShare field (the shape of the per-input
// ECDH share) and the teacher wallet package's unsigned-PSBT construction
// flow. The proprietary identifier is the two ASCII bytes "sp" (0x73 0x70).
package psbtsp

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/setavenger/go-silentpayments/bip352"
	"github.com/setavenger/go-silentpayments/utils"
)

var spIdentifier = []byte{0x73, 0x70}

const (
	subtypeOutputCode   byte = 0x00
	subtypeOutputAmount byte = 0x01
	subtypeECDHShare    byte = 0x02

	codeFieldLen = 1 + 33 + 33
)

// PsbtErrorKind enumerates the ways reading or finalizing silent-payment
// PSBT fields can fail.
type PsbtErrorKind int

const (
	PsbtErrMalformedField PsbtErrorKind = iota
	PsbtErrMissingAmount
	PsbtErrMismatchedCode
)

// PsbtError reports a problem with a silent-payment proprietary PSBT field.
type PsbtError struct {
	Kind PsbtErrorKind
}

func (e *PsbtError) Error() string {
	switch e.Kind {
	case PsbtErrMalformedField:
		return "psbtsp: malformed proprietary field"
	case PsbtErrMissingAmount:
		return "psbtsp: output has no amount on either the unsigned tx or the proprietary field"
	case PsbtErrMismatchedCode:
		return "psbtsp: resolved output count does not match requested recipients"
	default:
		return "psbtsp: error"
	}
}

// proprietaryKey builds the raw key bytes (BIP-174 proprietary type 0xFC,
// the "sp" identifier, and a subtype byte) used as psbt.Unknown.Key.
func proprietaryKey(subtype byte) []byte {
	key := make([]byte, 0, 2+len(spIdentifier)+1)
	key = append(key, 0xFC)
	key = append(key, byte(len(spIdentifier)))
	key = append(key, spIdentifier...)
	key = append(key, subtype)
	return key
}

func findUnknown(unknowns []*psbt.Unknown, subtype byte) *psbt.Unknown {
	key := proprietaryKey(subtype)
	for _, u := range unknowns {
		if bytes.Equal(u.Key, key) {
			return u
		}
	}
	return nil
}

func setUnknown(unknowns *[]*psbt.Unknown, subtype byte, value []byte) {
	key := proprietaryKey(subtype)
	for _, u := range *unknowns {
		if bytes.Equal(u.Key, key) {
			u.Value = value
			return
		}
	}
	*unknowns = append(*unknowns, &psbt.Unknown{Key: key, Value: value})
}

func removeUnknown(unknowns *[]*psbt.Unknown, subtype byte) {
	key := proprietaryKey(subtype)
	filtered := (*unknowns)[:0]
	for _, u := range *unknowns {
		if !bytes.Equal(u.Key, key) {
			filtered = append(filtered, u)
		}
	}
	*unknowns = filtered
}

// SetOutputCode attaches SP_OUTPUT_CODE: the code's version, scan, and
// spend public keys, serialized exactly as the bech32m payload would be.
func SetOutputCode(out *psbt.POutput, code bip352.SilentPaymentCode) {
	value := make([]byte, 0, codeFieldLen)
	value = append(value, code.Version)
	scan := code.ScanKey.Compressed()
	spend := code.SpendKey.Compressed()
	value = append(value, scan[:]...)
	value = append(value, spend[:]...)
	setUnknown(&out.Unknowns, subtypeOutputCode, value)
}

// GetOutputCode reads SP_OUTPUT_CODE, if present. network is attached to
// the decoded code since the field itself carries no network tag.
func GetOutputCode(out *psbt.POutput, network bip352.Network) (bip352.SilentPaymentCode, bool, error) {
	u := findUnknown(out.Unknowns, subtypeOutputCode)
	if u == nil {
		return bip352.SilentPaymentCode{}, false, nil
	}
	if len(u.Value) != codeFieldLen {
		return bip352.SilentPaymentCode{}, false, &PsbtError{Kind: PsbtErrMalformedField}
	}

	scan, err := bip352.PointFromCompressed(u.Value[1:34])
	if err != nil {
		return bip352.SilentPaymentCode{}, false, &PsbtError{Kind: PsbtErrMalformedField}
	}
	spend, err := bip352.PointFromCompressed(u.Value[34:67])
	if err != nil {
		return bip352.SilentPaymentCode{}, false, &PsbtError{Kind: PsbtErrMalformedField}
	}

	return bip352.SilentPaymentCode{
		Version:  u.Value[0],
		ScanKey:  scan,
		SpendKey: spend,
		Network:  network,
	}, true, nil
}

// SetOutputAmount attaches SP_OUTPUT_AMOUNT, used when the amount cannot yet
// be carried on the unsigned output itself.
func SetOutputAmount(out *psbt.POutput, amount uint64) {
	value := make([]byte, 8)
	binary.LittleEndian.PutUint64(value, amount)
	setUnknown(&out.Unknowns, subtypeOutputAmount, value)
}

// SetOutputAmountBTC is SetOutputAmount for a caller quoting the amount in
// BTC (as a wallet UI or RPC request typically does) rather than satoshis.
func SetOutputAmountBTC(out *psbt.POutput, amountBTC float64) {
	SetOutputAmount(out, utils.ConvertFloatBTCtoSats(amountBTC))
}

// GetOutputAmount reads SP_OUTPUT_AMOUNT, if present.
func GetOutputAmount(out *psbt.POutput) (uint64, bool, error) {
	u := findUnknown(out.Unknowns, subtypeOutputAmount)
	if u == nil {
		return 0, false, nil
	}
	if len(u.Value) != 8 {
		return 0, false, &PsbtError{Kind: PsbtErrMalformedField}
	}
	return binary.LittleEndian.Uint64(u.Value), true, nil
}

// SetECDHShare attaches SP_ECDH_SHARE: one signer's contribution
// a_i*outpoint_hash*G towards a cooperatively-computed input sum tweak.
// Combining shares from multiple signers into a usable shared secret is a
// multi-party ECDH protocol this package does not implement; the field is
// provided so such shares round-trip through a PSBT untouched.
func SetECDHShare(in *psbt.PInput, share [33]byte) {
	setUnknown(&in.Unknowns, subtypeECDHShare, share[:])
}

// GetECDHShare reads SP_ECDH_SHARE, if present.
func GetECDHShare(in *psbt.PInput) ([33]byte, bool, error) {
	u := findUnknown(in.Unknowns, subtypeECDHShare)
	if u == nil {
		return [33]byte{}, false, nil
	}
	if len(u.Value) != 33 {
		return [33]byte{}, false, &PsbtError{Kind: PsbtErrMalformedField}
	}
	var share [33]byte
	copy(share[:], u.Value)
	return share, true, nil
}

// FinalizeSilentPayments walks every output carrying SP_OUTPUT_CODE,
// groups recipients as bip352.SenderOutputsFromEcdh does, rewrites
// packet.UnsignedTx.TxOut[i].PkScript to OP_1 <x-only-key> in place
// preserving output order, and strips the proprietary fields from every
// output it resolved. ecdh is the caller's already-computed
// a_sum*outpoint_hash scalar for this transaction's inputs (see
// bip352.EcdhSecret); this package does not itself derive it from PSBT
// input data, since the private material that produces it never appears in
// a PSBT.
func FinalizeSilentPayments(packet *psbt.Packet, ecdh bip352.Scalar, network bip352.Network) error {
	type pendingOutput struct {
		index  int
		amount uint64
	}

	var recipients []bip352.Recipient
	var pending []pendingOutput

	for i := range packet.Outputs {
		code, ok, err := GetOutputCode(&packet.Outputs[i], network)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if code.Version != bip352.CodeVersion0 {
			// Higher versions are parseable but rejected on use.
			continue
		}

		amount, hasAmount, err := GetOutputAmount(&packet.Outputs[i])
		if err != nil {
			return err
		}
		if !hasAmount {
			if i >= len(packet.UnsignedTx.TxOut) {
				return &PsbtError{Kind: PsbtErrMissingAmount}
			}
			amount = uint64(packet.UnsignedTx.TxOut[i].Value)
		}

		recipients = append(recipients, bip352.Recipient{Code: code, Amount: amount})
		pending = append(pending, pendingOutput{index: i, amount: amount})
	}

	if len(recipients) == 0 {
		return nil
	}

	outputs, err := bip352.SenderOutputsFromEcdh(ecdh, recipients)
	if err != nil {
		return err
	}
	if len(outputs) != len(pending) {
		return &PsbtError{Kind: PsbtErrMismatchedCode}
	}

	for i, p := range pending {
		pkScript := make([]byte, 0, 34)
		pkScript = append(pkScript, 0x51, 0x20)
		pkScript = append(pkScript, outputs[i].XOnly[:]...)

		packet.UnsignedTx.TxOut[p.index].PkScript = pkScript
		packet.UnsignedTx.TxOut[p.index].Value = int64(outputs[i].Amount)

		removeUnknown(&packet.Outputs[p.index].Unknowns, subtypeOutputCode)
		removeUnknown(&packet.Outputs[p.index].Unknowns, subtypeOutputAmount)
	}

	return nil
}
