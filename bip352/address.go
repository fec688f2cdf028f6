package bip352

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Network identifies which chain a silent payment code targets. Testnet and
// signet are not distinguishable from the encoded code alone - both share
// the tsp human-readable part - so they decode to the same tag and the
// caller must disambiguate by context.
type Network int

const (
	NetworkMainnet Network = iota
	NetworkRegtest
	NetworkTestnetOrSignet
)

const (
	hrpMainnet = "sp"
	hrpRegtest = "sprt"
	hrpTestnet = "tsp"

	pubKeyLen  = 33
	payloadLen = 2 * pubKeyLen

	// CodeVersion0 is the only version this implementation produces or
	// fully validates. Higher versions parse but are rejected on use.
	CodeVersion0 = 0
)

func hrpForNetwork(n Network) (string, error) {
	switch n {
	case NetworkMainnet:
		return hrpMainnet, nil
	case NetworkRegtest:
		return hrpRegtest, nil
	case NetworkTestnetOrSignet:
		return hrpTestnet, nil
	default:
		return "", &CodeError{Kind: CodeErrHrp}
	}
}

func networkForHRP(hrp string) (Network, error) {
	switch hrp {
	case hrpMainnet:
		return NetworkMainnet, nil
	case hrpRegtest:
		return NetworkRegtest, nil
	case hrpTestnet:
		return NetworkTestnetOrSignet, nil
	default:
		return 0, &CodeError{Kind: CodeErrHrp}
	}
}

// CodeErrorKind enumerates the ways a silent payment code can fail to
// encode or decode.
type CodeErrorKind int

const (
	CodeErrBech32 CodeErrorKind = iota
	CodeErrHrp
	CodeErrVersion
	CodeErrLength
	CodeErrInvalidScan
	CodeErrInvalidSpend
	CodeErrMixedCase
)

// CodeError reports a failure parsing or building a SilentPaymentCode.
type CodeError struct {
	Kind CodeErrorKind
	Err  error
}

func (e *CodeError) Error() string {
	msg := map[CodeErrorKind]string{
		CodeErrBech32:       "malformed bech32m string",
		CodeErrHrp:          "unrecognized human-readable part",
		CodeErrVersion:      "unsupported code version",
		CodeErrLength:       "invalid payload length",
		CodeErrInvalidScan:  "invalid scan public key",
		CodeErrInvalidSpend: "invalid spend public key",
		CodeErrMixedCase:    "mixed-case bech32 string",
	}[e.Kind]
	if e.Err != nil {
		return "bip352: " + msg + ": " + e.Err.Error()
	}
	return "bip352: " + msg
}

func (e *CodeError) Unwrap() error { return e.Err }

// SilentPaymentCode is a recipient identifier: a version tag plus a scan and
// spend public key, scoped to a network. Version 0 is the only version this
// package derives outputs for; higher versions round-trip through Encode/
// Decode but are rejected by every operation that consumes a code.
type SilentPaymentCode struct {
	Version  uint8
	ScanKey  Point
	SpendKey Point
	Network  Network
}

// NewSilentPaymentCode builds a version-0 code from a scan and spend key.
func NewSilentPaymentCode(scan, spend Point, net Network) SilentPaymentCode {
	return SilentPaymentCode{
		Version:  CodeVersion0,
		ScanKey:  scan,
		SpendKey: spend,
		Network:  net,
	}
}

// WithLabel returns a labelled variant: the spend key becomes spend+L_m
// while the scan key is unchanged, so a labelled recipient still shares the
// sender's ECDH computation with every other recipient under the same scan
// key - only the spend-side tweak differs.
func (c SilentPaymentCode) WithLabel(label LabelTweak) (SilentPaymentCode, error) {
	labelled, err := c.SpendKey.Add(label.PubKey)
	if err != nil {
		return SilentPaymentCode{}, err
	}
	out := c
	out.SpendKey = labelled
	return out, nil
}

// Encode serializes the code to its bech32m string form.
func (c SilentPaymentCode) Encode() (string, error) {
	hrp, err := hrpForNetwork(c.Network)
	if err != nil {
		return "", err
	}

	var payload [payloadLen]byte
	scanC := c.ScanKey.Compressed()
	spendC := c.SpendKey.Compressed()
	copy(payload[:pubKeyLen], scanC[:])
	copy(payload[pubKeyLen:], spendC[:])

	converted, err := bech32.ConvertBits(payload[:], 8, 5, true)
	if err != nil {
		return "", &CodeError{Kind: CodeErrBech32, Err: err}
	}

	combined := make([]byte, len(converted)+1)
	combined[0] = c.Version
	copy(combined[1:], converted)

	encoded, err := bech32.EncodeM(hrp, combined)
	if err != nil {
		return "", &CodeError{Kind: CodeErrBech32, Err: err}
	}

	return encoded, nil
}

// DecodeSilentPaymentCode parses a bech32m silent payment code string.
func DecodeSilentPaymentCode(s string) (SilentPaymentCode, error) {
	if s != strings.ToLower(s) && s != strings.ToUpper(s) {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrMixedCase}
	}

	hrp, data, version, err := bech32.DecodeNoLimitWithVersion(s)
	if err != nil {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrBech32, Err: err}
	}
	if version != bech32.VersionM {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrBech32}
	}
	if len(data) == 0 {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrLength}
	}

	net, err := networkForHRP(hrp)
	if err != nil {
		return SilentPaymentCode{}, err
	}

	codeVersion := data[0]

	regrouped, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrBech32, Err: err}
	}

	switch {
	case codeVersion == CodeVersion0:
		if len(regrouped) != payloadLen {
			return SilentPaymentCode{}, &CodeError{Kind: CodeErrLength}
		}
	case codeVersion > 30:
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrVersion}
	default:
		if len(regrouped) < payloadLen {
			return SilentPaymentCode{}, &CodeError{Kind: CodeErrLength}
		}
		regrouped = regrouped[:payloadLen]
	}

	scanKey, err := PointFromCompressed(regrouped[:pubKeyLen])
	if err != nil {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrInvalidScan}
	}

	spendKey, err := PointFromCompressed(regrouped[pubKeyLen:payloadLen])
	if err != nil {
		return SilentPaymentCode{}, &CodeError{Kind: CodeErrInvalidSpend}
	}

	return SilentPaymentCode{
		Version:  codeVersion,
		ScanKey:  scanKey,
		SpendKey: spendKey,
		Network:  net,
	}, nil
}
