package bip352

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveLabelTweakRejectsM0(t *testing.T) {
	_, err := DeriveLabelTweak(scalarFromByte(1), 0)
	require.Error(t, err)

	var labelErr *LabelError
	require.ErrorAs(t, err, &labelErr)
	require.Equal(t, LabelErrReservedM, labelErr.Kind)
}

func TestDeriveLabelTweakIsDeterministic(t *testing.T) {
	scan := scalarFromByte(4)

	a, err := DeriveLabelTweak(scan, 9)
	require.NoError(t, err)
	b, err := DeriveLabelTweak(scan, 9)
	require.NoError(t, err)

	require.Equal(t, a.Tweak.Bytes(), b.Tweak.Bytes())
}

func TestLabelTableLookupMatchesBothParities(t *testing.T) {
	scan := scalarFromByte(6)
	label, err := DeriveLabelTweak(scan, 2)
	require.NoError(t, err)

	table, err := NewLabelTable([]LabelTweak{label})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	got, ok := table.Lookup(label.PubKey.Compressed())
	require.True(t, ok)
	require.Equal(t, label.M, got.M)

	negated, ok := table.Lookup(label.PubKey.Negate().Compressed())
	require.True(t, ok)
	require.Equal(t, label.M, negated.M)
}

func TestNewLabelTableRejectsDuplicateM(t *testing.T) {
	scan := scalarFromByte(6)
	label, err := DeriveLabelTweak(scan, 2)
	require.NoError(t, err)

	_, err = NewLabelTable([]LabelTweak{label, label})
	require.Error(t, err)

	var labelErr *LabelError
	require.ErrorAs(t, err, &labelErr)
	require.Equal(t, LabelErrDuplicate, labelErr.Kind)
}
