package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckMultiplyOverflow(t *testing.T) {
	tests := []struct {
		name    string
		a       uint64
		b       uint64
		wantErr bool
	}{
		{name: "no overflow - small numbers", a: 10, b: 20},
		{name: "no overflow - one zero", a: 0, b: math.MaxUint64},
		{name: "no overflow - both zero", a: 0, b: 0},
		{name: "overflow", a: math.MaxUint64 / 2, b: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMultiplyOverflow(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegionSize(t *testing.T) {
	size, err := RegionSize(10000, 14)
	require.NoError(t, err)
	require.Equal(t, uint64(140000), size)

	size, err = RegionSize(0, 14)
	require.NoError(t, err)
	require.Zero(t, size)

	_, err = RegionSize(1<<30, 8)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds 4 GiB")

	_, err = RegionSize(math.MaxUint64, 2)
	require.Error(t, err)
}

func TestCheckOffset(t *testing.T) {
	require.NoError(t, CheckOffset(0))
	require.NoError(t, CheckOffset(MaxOffset))
	require.Error(t, CheckOffset(MaxOffset+1))
}
