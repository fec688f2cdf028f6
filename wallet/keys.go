package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/setavenger/go-silentpayments/bip352"
	"github.com/setavenger/go-silentpayments/types"
	"github.com/tyler-smith/go-bip39"
)

// ChildKeyDeriver is the "derive child key" capability the core defers BIP-32
// to: given a derivation path, it returns the two private keys at
// m/352'/coin'/account'/{1',0'}/0.
type ChildKeyDeriver interface {
	DeriveChild(path []uint32) (privKey [32]byte, err error)
}

// Bip32Deriver implements ChildKeyDeriver over github.com/btcsuite/btcd/btcutil/hdkeychain,
// generalizing the teacher's ad hoc double-SHA256 key split into the real
// hardened BIP-32 paths the silent payments descriptors name.
type Bip32Deriver struct {
	master *hdkeychain.ExtendedKey
}

// NewBip32Deriver builds a deriver from a BIP-39 mnemonic and chain params,
// failing if the mnemonic does not checksum.
func NewBip32Deriver(mnemonic string, params *chaincfg.Params) (*Bip32Deriver, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("wallet: invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")

	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("wallet: deriving master key: %w", err)
	}

	return &Bip32Deriver{master: master}, nil
}

// DeriveChild walks path from the master key and returns the private key at
// the leaf, each path element already including the hardened-offset bit
// where required by the caller.
func (d *Bip32Deriver) DeriveChild(path []uint32) ([32]byte, error) {
	key := d.master
	for _, idx := range path {
		child, err := key.Derive(idx)
		if err != nil {
			return [32]byte{}, fmt.Errorf("wallet: deriving child %d: %w", idx, err)
		}
		key = child
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return [32]byte{}, fmt.Errorf("wallet: extracting private key: %w", err)
	}

	var out [32]byte
	copy(out[:], priv.Serialize())
	return out, nil
}

// ScanSpendPath builds the two hardened descriptor paths
// m/352'/coin'/account'/1'/0 (scan) and m/352'/coin'/account'/0'/0 (spend)
// for the given coin type and account.
func ScanSpendPath(coinType, account uint32) (scanPath, spendPath []uint32) {
	const purpose = 352
	h := uint32(hdkeychain.HardenedKeyStart)

	base := []uint32{
		h + purpose,
		h + coinType,
		h + account,
	}

	scanPath = append(append([]uint32{}, base...), h+1, 0)
	spendPath = append(append([]uint32{}, base...), h+0, 0)
	return scanPath, spendPath
}

// DeriveScanSpendKeys derives the scan and spend private keys for a network
// using the standard silent payments descriptor paths. Mainnet uses coin
// type 0'; testnet and regtest share coin type 1', per BIP-44 convention.
func DeriveScanSpendKeys(deriver ChildKeyDeriver, network types.Network, account uint32) (scanPriv, spendPriv bip352.Scalar, err error) {
	var coinType uint32
	if network == types.NetworkMainnet {
		coinType = 0
	} else {
		coinType = 1
	}

	scanPath, spendPath := ScanSpendPath(coinType, account)

	scanBytes, err := deriver.DeriveChild(scanPath)
	if err != nil {
		return bip352.Scalar{}, bip352.Scalar{}, err
	}
	spendBytes, err := deriver.DeriveChild(spendPath)
	if err != nil {
		return bip352.Scalar{}, bip352.Scalar{}, err
	}

	scanPriv, err = bip352.ScalarFromBytes(scanBytes)
	if err != nil {
		return bip352.Scalar{}, bip352.Scalar{}, err
	}
	spendPriv, err = bip352.ScalarFromBytes(spendBytes)
	if err != nil {
		return bip352.Scalar{}, bip352.Scalar{}, err
	}

	return scanPriv, spendPriv, nil
}
