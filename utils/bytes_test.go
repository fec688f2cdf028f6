package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseBytesCopyLeavesOriginalUntouched(t *testing.T) {
	original := []byte{1, 2, 3, 4}
	reversed := ReverseBytesCopy(original)

	require.Equal(t, []byte{1, 2, 3, 4}, original)
	require.Equal(t, []byte{4, 3, 2, 1}, reversed)
}

func TestReverseBytesInPlace(t *testing.T) {
	b := []byte{1, 2, 3}
	ReverseBytes(b)
	require.Equal(t, []byte{3, 2, 1}, b)
}

func TestConvertToFixedLength32PanicsOnWrongLength(t *testing.T) {
	require.Panics(t, func() {
		ConvertToFixedLength32([]byte{1, 2, 3})
	})
}
