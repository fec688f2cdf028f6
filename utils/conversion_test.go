package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertFloatBTCtoSats(t *testing.T) {
	require.Equal(t, uint64(100_000_000), ConvertFloatBTCtoSats(1.0))
	require.Equal(t, uint64(50_000_000), ConvertFloatBTCtoSats(0.5))
	require.Equal(t, uint64(1), ConvertFloatBTCtoSats(0.00000001))
}
