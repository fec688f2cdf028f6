package wallet

import (
	"encoding/json"
	"testing"

	"github.com/setavenger/go-silentpayments/bip352"
	"github.com/setavenger/go-silentpayments/types"
	"github.com/stretchr/testify/require"
)

func scalarFromByte(b byte) bip352.Scalar {
	var buf [32]byte
	buf[31] = b
	s, err := bip352.ScalarFromBytes(buf)
	if err != nil {
		panic(err)
	}
	return s
}

func testWallet() Wallet {
	return NewWallet(types.NetworkMainnet, scalarFromByte(1), scalarFromByte(2))
}

func TestWalletAddressRoundTrips(t *testing.T) {
	w := testWallet()
	addr, err := w.Address()
	require.NoError(t, err)

	decoded, err := bip352.DecodeSilentPaymentCode(addr)
	require.NoError(t, err)
	require.True(t, w.Code().ScanKey.Equal(decoded.ScanKey))
	require.True(t, w.Code().SpendKey.Equal(decoded.SpendKey))
}

func TestWalletAddLabelRejectsDuplicateAndReservedM(t *testing.T) {
	w := testWallet()

	_, err := w.AddLabel(0)
	require.Error(t, err)
	var labelErr *bip352.LabelError
	require.ErrorAs(t, err, &labelErr)
	require.Equal(t, bip352.LabelErrReservedM, labelErr.Kind)

	_, err = w.AddLabel(3)
	require.NoError(t, err)

	_, err = w.AddLabel(3)
	require.Error(t, err)
	require.ErrorAs(t, err, &labelErr)
	require.Equal(t, bip352.LabelErrDuplicate, labelErr.Kind)

	require.Equal(t, uint32(3), w.Labels()[0].M)
}

func TestWalletLabelAddressDiffersFromBaseAddress(t *testing.T) {
	w := testWallet()
	base, err := w.Address()
	require.NoError(t, err)

	labelled, err := w.LabelAddress(1)
	require.NoError(t, err)
	require.NotEqual(t, base, labelled)

	// Requesting the same label again must reuse the cached tweak, not
	// derive (and therefore encode) a different one.
	again, err := w.LabelAddress(1)
	require.NoError(t, err)
	require.Equal(t, labelled, again)
}

func TestWalletChangeAddressUsesLabelZero(t *testing.T) {
	w := testWallet()
	change, err := w.ChangeAddress()
	require.NoError(t, err)

	viaLabel, err := w.LabelAddress(0)
	require.NoError(t, err)
	require.Equal(t, viaLabel, change)
}

func TestWalletJSONRoundTrips(t *testing.T) {
	w := testWallet()

	data, err := json.Marshal(&w)
	require.NoError(t, err)
	require.Contains(t, string(data), `"network":"mainnet"`)

	var loaded Wallet
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Equal(t, w.Network, loaded.Network)
	require.Equal(t, w.ScanPriv.Bytes(), loaded.ScanPriv.Bytes())
	require.Equal(t, w.SpendPriv.Bytes(), loaded.SpendPriv.Bytes())

	addr, err := w.Address()
	require.NoError(t, err)
	loadedAddr, err := loaded.Address()
	require.NoError(t, err)
	require.Equal(t, addr, loadedAddr)
}

func TestWalletLabelTableContainsAddedLabels(t *testing.T) {
	w := testWallet()
	_, err := w.AddLabel(1)
	require.NoError(t, err)
	_, err = w.AddLabel(2)
	require.NoError(t, err)

	require.Equal(t, 2, w.LabelTable().Len())
}
