package psbtsp

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/go-silentpayments/bip352"
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

func testCode() bip352.SilentPaymentCode {
	return bip352.NewSilentPaymentCode(scalarFromByte(1).PubKey(), scalarFromByte(2).PubKey(), bip352.NetworkMainnet)
}

func TestSetGetOutputCodeRoundTrip(t *testing.T) {
	out := &psbt.POutput{}
	code := testCode()

	SetOutputCode(out, code)

	got, ok, err := GetOutputCode(out, bip352.NetworkMainnet)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, code.Version, got.Version)
	require.True(t, code.ScanKey.Equal(got.ScanKey))
	require.True(t, code.SpendKey.Equal(got.SpendKey))
}

func TestGetOutputCodeAbsent(t *testing.T) {
	out := &psbt.POutput{}
	_, ok, err := GetOutputCode(out, bip352.NetworkMainnet)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetGetOutputAmountRoundTrip(t *testing.T) {
	out := &psbt.POutput{}
	SetOutputAmount(out, 123456)

	got, ok, err := GetOutputAmount(out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(123456), got)
}

func TestSetOutputAmountBTCConvertsToSats(t *testing.T) {
	out := &psbt.POutput{}
	SetOutputAmountBTC(out, 0.00123456)

	got, ok, err := GetOutputAmount(out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(123456), got)
}

func TestSetGetECDHShareRoundTrip(t *testing.T) {
	in := &psbt.PInput{}
	var share [33]byte
	compressed := scalarFromByte(9).PubKey().Compressed()
	copy(share[:], compressed[:])

	SetECDHShare(in, share)

	got, ok, err := GetECDHShare(in)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, share, got)
}

func TestFinalizeSilentPaymentsRewritesOutputs(t *testing.T) {
	code := testCode()
	aSum := scalarFromByte(50)
	outpointHash := scalarFromByte(51)
	ecdh := bip352.EcdhSecret(aSum, outpointHash)

	packet := &psbt.Packet{
		UnsignedTx: &wire.MsgTx{
			TxOut: []*wire.TxOut{
				{Value: 1000, PkScript: []byte{0x51, 0x20}},
			},
		},
		Outputs: []psbt.POutput{{}},
	}
	SetOutputCode(&packet.Outputs[0], code)

	err := FinalizeSilentPayments(packet, ecdh, bip352.NetworkMainnet)
	require.NoError(t, err)

	require.Len(t, packet.UnsignedTx.TxOut[0].PkScript, 34)
	require.Equal(t, byte(0x51), packet.UnsignedTx.TxOut[0].PkScript[0])
	require.Equal(t, byte(0x20), packet.UnsignedTx.TxOut[0].PkScript[1])
	require.Equal(t, int64(1000), packet.UnsignedTx.TxOut[0].Value)

	_, ok, err := GetOutputCode(&packet.Outputs[0], bip352.NetworkMainnet)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFinalizeSilentPaymentsUsesExplicitAmountOverTxOut(t *testing.T) {
	code := testCode()
	ecdh := bip352.EcdhSecret(scalarFromByte(60), scalarFromByte(61))

	packet := &psbt.Packet{
		UnsignedTx: &wire.MsgTx{
			TxOut: []*wire.TxOut{
				{Value: 999, PkScript: []byte{0x51, 0x20}},
			},
		},
		Outputs: []psbt.POutput{{}},
	}
	SetOutputCode(&packet.Outputs[0], code)
	SetOutputAmount(&packet.Outputs[0], 42)

	err := FinalizeSilentPayments(packet, ecdh, bip352.NetworkMainnet)
	require.NoError(t, err)
	require.Equal(t, int64(42), packet.UnsignedTx.TxOut[0].Value)
}

func TestFinalizeSilentPaymentsNoOpWithoutCodes(t *testing.T) {
	packet := &psbt.Packet{
		UnsignedTx: &wire.MsgTx{
			TxOut: []*wire.TxOut{{Value: 1, PkScript: []byte{0x00, 0x14}}},
		},
		Outputs: []psbt.POutput{{}},
	}
	original := packet.UnsignedTx.TxOut[0].PkScript

	err := FinalizeSilentPayments(packet, scalarFromByte(1), bip352.NetworkMainnet)
	require.NoError(t, err)
	require.Equal(t, original, packet.UnsignedTx.TxOut[0].PkScript)
}
