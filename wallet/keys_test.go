package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/setavenger/go-silentpayments/types"
	"github.com/stretchr/testify/require"
)

func TestScanSpendPathMainnetUsesCoinType0(t *testing.T) {
	h := uint32(1) << 31 // hdkeychain.HardenedKeyStart

	scan, spend := ScanSpendPath(0, 0)
	require.Equal(t, []uint32{h + 352, h, h, h + 1, 0}, scan)
	require.Equal(t, []uint32{h + 352, h, h, h, 0}, spend)
}

func TestScanSpendPathDiffersOnlyInChangeBit(t *testing.T) {
	scan, spend := ScanSpendPath(1, 2)
	require.Len(t, scan, 5)
	require.Len(t, spend, 5)
	require.Equal(t, scan[:3], spend[:3])
	require.NotEqual(t, scan[3], spend[3])
}

// fakeDeriver returns the path's final element as a (non-zero) private key
// byte, letting tests assert on which path was actually requested without
// pulling in real BIP-32 derivation.
type fakeDeriver struct {
	paths [][]uint32
}

func (d *fakeDeriver) DeriveChild(path []uint32) ([32]byte, error) {
	d.paths = append(d.paths, path)
	var out [32]byte
	out[31] = byte(len(d.paths))
	return out, nil
}

func TestDeriveScanSpendKeysRequestsBothPaths(t *testing.T) {
	d := &fakeDeriver{}
	scanPriv, spendPriv, err := DeriveScanSpendKeys(d, types.NetworkMainnet, 0)
	require.NoError(t, err)
	require.Len(t, d.paths, 2)
	require.NotEqual(t, scanPriv.Bytes(), spendPriv.Bytes())
}

func TestDeriveScanSpendKeysUsesTestnetCoinTypeForNonMainnet(t *testing.T) {
	d := &fakeDeriver{}
	_, _, err := DeriveScanSpendKeys(d, types.NetworkRegtest, 0)
	require.NoError(t, err)

	h := uint32(1) << 31
	require.Equal(t, h+1, d.paths[0][1])
}

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewBip32DeriverRejectsInvalidMnemonic(t *testing.T) {
	_, err := NewBip32Deriver("not a real mnemonic at all", &chaincfg.MainNetParams)
	require.Error(t, err)
}

func TestBip32DeriverIsDeterministic(t *testing.T) {
	d, err := NewBip32Deriver(testMnemonic, &chaincfg.MainNetParams)
	require.NoError(t, err)

	scanPath, spendPath := ScanSpendPath(0, 0)

	scanA, err := d.DeriveChild(scanPath)
	require.NoError(t, err)
	scanB, err := d.DeriveChild(scanPath)
	require.NoError(t, err)
	require.Equal(t, scanA, scanB)

	spendKey, err := d.DeriveChild(spendPath)
	require.NoError(t, err)
	require.NotEqual(t, scanA, spendKey)
}

func TestDeriveScanSpendKeysEndToEnd(t *testing.T) {
	d, err := NewBip32Deriver(testMnemonic, &chaincfg.MainNetParams)
	require.NoError(t, err)

	scanPriv, spendPriv, err := DeriveScanSpendKeys(d, types.NetworkMainnet, 0)
	require.NoError(t, err)
	require.NotEqual(t, scanPriv.Bytes(), spendPriv.Bytes())
}
