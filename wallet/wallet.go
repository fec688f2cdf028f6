// Package wallet is the host-side convenience layer around package bip352:
// it owns scan/spend keypairs and a label table snapshot, and derives
// addresses from them. All cryptography is delegated to bip352 - this
// package adds no curve operations of its own.
package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/setavenger/go-silentpayments/bip352"
	"github.com/setavenger/go-silentpayments/types"
)

// Wallet aggregates a scan/spend keypair, the network it is scoped to, and
// the set of labels it currently recognizes.
type Wallet struct {
	Network   types.Network
	ScanPriv  bip352.Scalar
	ScanPub   bip352.Point
	SpendPriv bip352.Scalar
	SpendPub  bip352.Point

	labels     []bip352.LabelTweak
	labelsByM  map[uint32]bip352.LabelTweak
	labelTable bip352.LabelTable
	change     *bip352.LabelTweak
}

// NewWallet builds a Wallet from an already-derived scan/spend keypair, as
// produced by DeriveScanSpendKeys.
func NewWallet(network types.Network, scanPriv, spendPriv bip352.Scalar) Wallet {
	w := Wallet{
		Network:   network,
		ScanPriv:  scanPriv,
		ScanPub:   scanPriv.PubKey(),
		SpendPriv: spendPriv,
		SpendPub:  spendPriv.PubKey(),
		labelsByM: make(map[uint32]bip352.LabelTweak),
	}
	return w
}

// Code returns the wallet's unlabelled silent payment code.
func (w *Wallet) Code() bip352.SilentPaymentCode {
	return bip352.NewSilentPaymentCode(w.ScanPub, w.SpendPub, w.Network.CodeNetwork())
}

// Address encodes the wallet's unlabelled receiving address.
func (w *Wallet) Address() (string, error) {
	return w.Code().Encode()
}

// AddLabel derives label m and adds it to the wallet's label table snapshot,
// rejecting m=0 (reserved for change) and repeats. The label table is
// rebuilt, matching the core's "mutations produce a new snapshot" rule.
func (w *Wallet) AddLabel(m uint32) (bip352.LabelTweak, error) {
	if _, exists := w.labelsByM[m]; exists {
		return bip352.LabelTweak{}, &bip352.LabelError{Kind: bip352.LabelErrDuplicate}
	}

	label, err := bip352.DeriveLabelTweak(w.ScanPriv, m)
	if err != nil {
		return bip352.LabelTweak{}, err
	}

	w.labels = append(w.labels, label)
	w.labelsByM[m] = label

	table, err := bip352.NewLabelTable(w.labels)
	if err != nil {
		return bip352.LabelTweak{}, err
	}
	w.labelTable = table

	return label, nil
}

// LabelAddress encodes a labelled receiving address for label m, deriving
// and caching the label if it has not been added yet. m=0 is the wallet's
// reserved change label and is routed to ChangeAddress rather than AddLabel,
// which rejects m=0 outright for user-added labels.
func (w *Wallet) LabelAddress(m uint32) (string, error) {
	if m == 0 {
		return w.ChangeAddress()
	}

	label, ok := w.labelsByM[m]
	if !ok {
		var err error
		label, err = w.AddLabel(m)
		if err != nil {
			return "", err
		}
	}

	code, err := w.Code().WithLabel(label)
	if err != nil {
		return "", err
	}
	return code.Encode()
}

// changeLabel derives and caches the wallet's own m=0 label, via
// DeriveChangeLabelTweak rather than AddLabel/DeriveLabelTweak - both of
// which reject m=0 since it is never meant to be handed out as a user
// label. The derived label is kept off w.labels/labelTable so it never
// reaches NewLabelTable, which rejects m=0 for the same reason.
func (w *Wallet) changeLabel() (bip352.LabelTweak, error) {
	if w.change != nil {
		return *w.change, nil
	}

	label, err := bip352.DeriveChangeLabelTweak(w.ScanPriv)
	if err != nil {
		return bip352.LabelTweak{}, err
	}
	w.change = &label
	return label, nil
}

// ChangeAddress is the wallet's label-0 address, reserved by convention for
// change outputs.
func (w *Wallet) ChangeAddress() (string, error) {
	label, err := w.changeLabel()
	if err != nil {
		return "", err
	}

	code, err := w.Code().WithLabel(label)
	if err != nil {
		return "", err
	}
	return code.Encode()
}

// LabelTable returns the wallet's current label lookup table, built from
// every label added via AddLabel so far.
func (w *Wallet) LabelTable() bip352.LabelTable {
	return w.labelTable
}

// Labels returns a copy of the wallet's known labels.
func (w *Wallet) Labels() []bip352.LabelTweak {
	out := make([]bip352.LabelTweak, len(w.labels))
	copy(out, w.labels)
	return out
}

func (w *Wallet) String() string {
	addr, err := w.Address()
	if err != nil {
		return fmt.Sprintf("wallet<error: %v>", err)
	}
	return addr
}

// walletConfig is the JSON-persisted form of a Wallet: network plus keypair,
// using the hex-encoded fixed-length key types from package types. Label
// bookkeeping is runtime state rebuilt via AddLabel on load, not persisted.
type walletConfig struct {
	Network   types.Network   `json:"network"`
	ScanPriv  types.SecretKey `json:"sec_key_scan"`
	ScanPub   types.PublicKey `json:"pub_key_scan"`
	SpendPriv types.SecretKey `json:"sec_key_spend"`
	SpendPub  types.PublicKey `json:"pub_key_spend"`
}

// MarshalJSON encodes the wallet's network and keypair as config, the way
// the host is expected to persist it between runs.
func (w *Wallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(walletConfig{
		Network:   w.Network,
		ScanPriv:  types.SecretKey(w.ScanPriv.Bytes()),
		ScanPub:   types.PublicKey(w.ScanPub.Compressed()),
		SpendPriv: types.SecretKey(w.SpendPriv.Bytes()),
		SpendPub:  types.PublicKey(w.SpendPub.Compressed()),
	})
}

// UnmarshalJSON rebuilds a Wallet from persisted config, re-deriving the
// public keys and label bookkeeping from the decoded private scalars rather
// than trusting the encoded public keys.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	var cfg walletConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}

	scanPriv, err := bip352.ScalarFromBytes(cfg.ScanPriv.ToArray())
	if err != nil {
		return err
	}
	spendPriv, err := bip352.ScalarFromBytes(cfg.SpendPriv.ToArray())
	if err != nil {
		return err
	}

	*w = NewWallet(cfg.Network, scanPriv, spendPriv)
	return nil
}
