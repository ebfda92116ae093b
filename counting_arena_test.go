// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountingArenaHeap(t *testing.T) {
	a := NewCountingArena(nil)

	p := a.Alloc(24, 8)
	require.NotNil(t, p)
	require.Zero(t, uintptr(p)%8)

	p = a.Alloc(3, 64)
	require.NotNil(t, p)
	require.Zero(t, uintptr(p)%64)

	require.NotNil(t, a.Alloc(0, 1))

	require.Equal(t, 3, a.Allocs())
	require.Equal(t, 27, a.Bytes())
	require.Equal(t, 27, a.Len())
	require.Equal(t, 27, a.Peak())

	a.Reset()
	require.Zero(t, a.Allocs())
	require.Zero(t, a.Bytes())
	require.Zero(t, a.Len())
	require.Equal(t, 27, a.Peak())
}

func TestCountingArenaForwards(t *testing.T) {
	parent := NewMonotonicArena(WithMinBufferSize(256))
	a := NewCountingArena(parent)

	require.NotNil(t, a.Alloc(100, 1))
	require.Equal(t, 1, a.Allocs())
	require.Equal(t, 100, a.Len())
	require.Equal(t, 256, a.Cap())

	a.Reset()
	require.Equal(t, 0, parent.Len())
	require.Equal(t, 100, a.Peak())
}
