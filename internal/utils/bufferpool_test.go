package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetBuffer(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "zero size", size: 0},
		{name: "very small size", size: 1},
		{name: "small buffer within pool capacity", size: 1024},
		{name: "exact pool default size", size: 4096},
		{name: "larger than pool capacity", size: 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := GetBuffer(tt.size)
			require.NotNil(t, buf)
			require.Equal(t, tt.size, len(buf), "buffer length should match requested size")
			require.GreaterOrEqual(t, cap(buf), tt.size)
			ReleaseBuffer(buf)
		})
	}
}

func TestGetZeroBuffer(t *testing.T) {
	buf := GetBuffer(256)
	for i := range buf {
		buf[i] = 0xFF
	}
	ReleaseBuffer(buf)

	zero := GetZeroBuffer(256)
	defer ReleaseBuffer(zero)
	for i, b := range zero {
		require.Zero(t, b, "byte %d not cleared", i)
	}
}
