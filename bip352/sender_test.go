package bip352

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSenderOutputsFromEcdhEmptyRecipients(t *testing.T) {
	outputs, err := SenderOutputsFromEcdh(scalarFromByte(1), nil)
	require.NoError(t, err)
	require.Nil(t, outputs)
}

func TestSenderOutputsGroupsStrictlyByScanKey(t *testing.T) {
	ecdh := scalarFromByte(77)
	scanA := scalarFromByte(1).PubKey()
	spendA1 := scalarFromByte(2).PubKey()
	spendA2 := scalarFromByte(3).PubKey()
	scanB := scalarFromByte(4).PubKey()
	spendB := scalarFromByte(5).PubKey()

	recipients := []Recipient{
		{Code: SilentPaymentCode{ScanKey: scanA, SpendKey: spendA1}, Amount: 1},
		{Code: SilentPaymentCode{ScanKey: scanB, SpendKey: spendB}, Amount: 2},
		{Code: SilentPaymentCode{ScanKey: scanA, SpendKey: spendA2}, Amount: 3},
	}

	outputs, err := SenderOutputsFromEcdh(ecdh, recipients)
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	// The two scanA recipients must land on k=0 and k=1 of the same shared
	// secret even though recipient[1] (scanB) is interleaved between them
	// in request order.
	sharedA, err := SharedSecretFromEcdh(ecdh, scanA)
	require.NoError(t, err)

	tweak0, err := outputTweak(sharedA, 0)
	require.NoError(t, err)
	expected0, err := spendA1.Add(tweak0.PubKey())
	require.NoError(t, err)
	require.Equal(t, expected0.XOnly(), outputs[0].XOnly)

	tweak1, err := outputTweak(sharedA, 1)
	require.NoError(t, err)
	expected1, err := spendA2.Add(tweak1.PubKey())
	require.NoError(t, err)
	require.Equal(t, expected1.XOnly(), outputs[2].XOnly)

	// scanB's lone recipient gets k=0 of its own shared secret, not k=1.
	sharedB, err := SharedSecretFromEcdh(ecdh, scanB)
	require.NoError(t, err)
	tweakB0, err := outputTweak(sharedB, 0)
	require.NoError(t, err)
	expectedB, err := spendB.Add(tweakB0.PubKey())
	require.NoError(t, err)
	require.Equal(t, expectedB.XOnly(), outputs[1].XOnly)

	require.Equal(t, uint64(1), outputs[0].Amount)
	require.Equal(t, uint64(2), outputs[1].Amount)
	require.Equal(t, uint64(3), outputs[2].Amount)
}
