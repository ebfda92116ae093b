// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrowCapacity(t *testing.T) {
	tests := []struct {
		capacity, required, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 5, 5},
		{4, 4, 4},
		{4, 5, 8},
		{4, 9, 9},
		{16, 17, 32},
		{300, 301, 600},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, GrowCapacity(tc.capacity, tc.required), "GrowCapacity(%d, %d)", tc.capacity, tc.required)
	}
}

func TestSliceAppendWithArena(t *testing.T) {
	a := NewCountingArena(nil)

	s := AllocateSlice[int](a, 3, 3)
	s[0] = 1
	s[1] = 2
	s[2] = 3
	require.Equal(t, 1, a.Allocs())

	result := SliceAppend(a, s, 4, 5)
	require.Equal(t, []int{1, 2, 3, 4, 5}, result)
	require.Equal(t, 6, cap(result))
	require.Equal(t, 2, a.Allocs())

	// Fits in the spare capacity
	result = SliceAppend(a, result, 6)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, result)
	require.Equal(t, 2, a.Allocs())
}

func TestSliceAppendWithoutArena(t *testing.T) {
	s := SliceAppend[int](nil, nil, 1, 2, 3)
	require.Equal(t, []int{1, 2, 3}, s)
}

func TestAllocateSliceFallsBackToHeap(t *testing.T) {
	s, err := NewStackAllocator(16)
	require.NoError(t, err)

	// 4 * 8 bytes do not fit in 16 reserved bytes
	ints := AllocateSlice[int64](s, 4, 4)
	require.Len(t, ints, 4)
	require.True(t, s.Empty())
	s.Release()
}
