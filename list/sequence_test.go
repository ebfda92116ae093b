// SPDX-License-Identifier: Apache-2.0

package list

import (
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	arena "github.com/brotbox/bbe-arena"
	"github.com/brotbox/bbe-arena/fault"
)

func requireViolation(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		err, ok := fault.AsViolation(recover())
		require.True(t, ok, "expected a contract violation panic")
		require.ErrorIs(t, err, fault.ErrPrecondition)
	}()
	f()
}

func requireValues[T any](t *testing.T, want []T, s Reader[T]) {
	t.Helper()
	got := s.Values()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected contents (-want +got):\n%s", diff)
	}
}

func TestSequenceAppendAndGrowth(t *testing.T) {
	s := New[int]()
	require.Zero(t, s.Len())
	require.Zero(t, s.Cap())
	require.True(t, s.IsEmpty())

	s.Append(1)
	require.Equal(t, 1, s.Cap())
	s.Append(2)
	require.Equal(t, 2, s.Cap())
	s.Append(3)
	require.Equal(t, 4, s.Cap())

	// Large requests grow to exactly what is needed
	s.AppendN(7, 10)
	require.Equal(t, 13, s.Len())
	require.Equal(t, 13, s.Cap())

	s.AppendAll(8, 9)
	require.Equal(t, 26, s.Cap())
	requireValues(t, []int{1, 2, 3, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 8, 9}, s)
}

func TestSequenceCapacityNeverBelowLength(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := New[int]()

	for i := 0; i < 2000; i++ {
		switch rng.IntN(8) {
		case 0, 1, 2:
			s.Append(rng.IntN(100))
		case 3:
			s.AppendN(rng.IntN(100), rng.IntN(5))
		case 4:
			s.RemoveAt(rng.IntN(s.Len() + 1))
		case 5:
			v := rng.IntN(100)
			RemoveAll(s, v)
		case 6:
			s.ShrinkToFit()
		case 7:
			if rng.IntN(10) == 0 {
				s.Clear()
			}
		}
		require.GreaterOrEqual(t, s.Cap(), s.Len())
	}
}

func TestSequenceGrowthIsAmortized(t *testing.T) {
	counter := arena.NewCountingArena(nil)
	s := New[int64](WithArena(counter))

	const n = 1000
	for i := 0; i < n; i++ {
		s.Append(int64(i))
	}
	require.Equal(t, n, s.Len())
	require.Equal(t, 1024, s.Cap())

	// Capacities 1, 2, 4, ..., 1024
	require.Equal(t, 11, counter.Allocs())
	require.LessOrEqual(t, counter.Bytes(), 4*n*int(unsafe.Sizeof(int64(0))))

	for i := 0; i < n; i++ {
		require.Equal(t, int64(i), s.At(i))
	}
}

func TestSequenceShrinkToFitThenAppend(t *testing.T) {
	s := Of(1, 2, 3)
	s.Append(4)
	require.Equal(t, 6, s.Cap())

	require.True(t, s.ShrinkToFit())
	require.Equal(t, 4, s.Cap())
	require.False(t, s.ShrinkToFit())

	s.Append(5)
	requireValues(t, []int{1, 2, 3, 4, 5}, s)

	s.Clear()
	require.Equal(t, 8, s.Cap())
	require.True(t, s.ShrinkToFit())
	require.Zero(t, s.Cap())

	s.Append(6)
	requireValues(t, []int{6}, s)
}

func TestSequenceResizeCapacity(t *testing.T) {
	s := Of("a", "b", "c")

	err := s.ResizeCapacity(2)
	require.ErrorIs(t, err, fault.ErrIllegalArgument)
	require.Equal(t, 3, s.Cap())

	require.NoError(t, s.ResizeCapacity(10))
	require.Equal(t, 10, s.Cap())
	requireValues(t, []string{"a", "b", "c"}, s)

	require.NoError(t, s.ResizeCapacity(3))
	require.Equal(t, 3, s.Cap())
	requireValues(t, []string{"a", "b", "c"}, s)
}

func TestSequenceRemoveAt(t *testing.T) {
	s := Of(10, 20, 30, 40)

	require.True(t, s.RemoveAt(1))
	requireValues(t, []int{10, 30, 40}, s)

	require.True(t, s.RemoveAt(2))
	requireValues(t, []int{10, 30}, s)

	require.False(t, s.RemoveAt(2))
	require.False(t, s.RemoveAt(-1))
	requireValues(t, []int{10, 30}, s)

	// Vacated slots hold the zero value again
	require.Zero(t, s.Values()[:4][2])
}

func TestSequenceRemoveMatching(t *testing.T) {
	s := Of(1, 2, 3, 2, 4, 2, 5)

	require.Equal(t, 3, RemoveAll(s, 2))
	requireValues(t, []int{1, 3, 4, 5}, s)

	require.Equal(t, 2, s.RemoveAllFunc(func(v int) bool { return v%2 == 1 && v > 1 }))
	requireValues(t, []int{1, 4}, s)

	require.Zero(t, RemoveAll(s, 42))

	s = Of(1, 2, 3, 2)
	require.True(t, RemoveFirst(s, 2))
	requireValues(t, []int{1, 3, 2}, s)
	require.False(t, s.RemoveFirstFunc(func(v int) bool { return v > 10 }))
}

func TestSequenceFindAndContains(t *testing.T) {
	type entry struct {
		key, value int
	}
	s := Of(entry{1, 10}, entry{2, 20}, entry{1, 30})

	first := s.FindFunc(func(e entry) bool { return e.key == 1 })
	require.NotNil(t, first)
	require.Equal(t, 10, first.value)

	last := s.FindLastFunc(func(e entry) bool { return e.key == 1 })
	require.NotNil(t, last)
	require.Equal(t, 30, last.value)

	require.Nil(t, s.FindFunc(func(e entry) bool { return e.key == 3 }))
	require.Nil(t, New[entry]().FindLastFunc(func(entry) bool { return true }))

	// Find returns a pointer into the storage
	first.value = 11
	require.Equal(t, 11, s.At(0).value)

	require.Equal(t, 2, s.CountFunc(func(e entry) bool { return e.key == 1 }))
	require.True(t, s.ContainsFunc(func(e entry) bool { return e.key == 2 }))
	require.True(t, s.ContainsExactlyOneFunc(func(e entry) bool { return e.key == 2 }))
	require.False(t, s.ContainsExactlyOneFunc(func(e entry) bool { return e.key == 1 }))

	ints := Of(4, 5, 4, 6)
	require.Same(t, ints.Ptr(0), Find(ints, 4))
	require.Same(t, ints.Ptr(2), FindLast(ints, 4))
	require.Nil(t, Find(ints, 42))
	require.Equal(t, 2, Count(ints, 4))
	require.True(t, Contains(ints, 6))
	require.False(t, Contains(ints, 7))
	require.True(t, ContainsExactlyOne(ints, 5))
	require.False(t, ContainsExactlyOne(ints, 4))
}

func TestSequenceSort(t *testing.T) {
	s := Of(5, 1, 4, 2, 3)
	Sort(s)
	requireValues(t, []int{1, 2, 3, 4, 5}, s)

	s.SortFunc(func(a, b int) int { return b - a })
	requireValues(t, []int{5, 4, 3, 2, 1}, s)

	empty := New[int]()
	Sort(empty)
	require.True(t, empty.IsEmpty())
}

func TestSequenceFirstLast(t *testing.T) {
	s := New[int]()
	_, err := s.First()
	require.ErrorIs(t, err, fault.ErrContainerEmpty)
	_, err = s.Last()
	require.ErrorIs(t, err, fault.ErrContainerEmpty)

	// Capacity without elements is still empty
	require.NoError(t, s.ResizeCapacity(4))
	_, err = s.First()
	require.ErrorIs(t, err, fault.ErrContainerEmpty)

	s.AppendAll(7, 8, 9)
	first, err := s.First()
	require.NoError(t, err)
	require.Equal(t, 7, first)
	last, err := s.Last()
	require.NoError(t, err)
	require.Equal(t, 9, last)
}

func TestSequenceIndexViolations(t *testing.T) {
	s := Of(1, 2)

	requireViolation(t, func() { s.At(2) })
	requireViolation(t, func() { s.At(-1) })
	requireViolation(t, func() { s.Ptr(5) })
	requireViolation(t, func() { s.Set(2, 0) })
	requireViolation(t, func() { s.PopBack(3) })

	s.Set(1, 5)
	require.Equal(t, 5, s.At(1))
}

func TestSequencePopBack(t *testing.T) {
	s := Of(1, 2, 3, 4)
	s.PopBack(2)
	requireValues(t, []int{1, 2}, s)
	require.Equal(t, 4, s.Cap())
	s.PopBack(0)
	require.Equal(t, 2, s.Len())
}

func TestSequenceEqualAndHash(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(1, 2, 3)
	c := Of(1, 2)
	d := Of(3, 2, 1)

	require.True(t, Equal[int](a, b))
	require.False(t, Equal[int](a, c))
	require.False(t, Equal[int](a, d))
	require.True(t, Equal[int](New[int](), New[int]()))
	require.True(t, EqualFunc[int](a, d, func(x, y int) bool { return x%2 == y%2 }))

	id := func(v int) uint32 { return uint32(v) }
	require.Equal(t, uint32(6), a.Hash(id))
	require.Equal(t, a.Hash(id), d.Hash(id))
	require.Zero(t, New[int]().Hash(id))

	// Only the first 16 elements contribute
	long := Make(16, 1)
	require.Equal(t, uint32(16), long.Hash(id))
	long.Append(100)
	require.Equal(t, uint32(16), long.Hash(id))
}

func TestSequenceCloneIsIndependent(t *testing.T) {
	s := Of(1, 2, 3)
	c := s.Clone()
	c.Set(0, 100)
	c.Append(4)

	requireValues(t, []int{1, 2, 3}, s)
	requireValues(t, []int{100, 2, 3, 4}, c)
}

func TestSequenceIterators(t *testing.T) {
	s := Of("a", "b", "c")

	var forward []string
	for i, v := range s.All() {
		require.Equal(t, s.At(i), v)
		forward = append(forward, v)
	}
	require.Equal(t, []string{"a", "b", "c"}, forward)

	var backward []string
	for _, v := range s.Backward() {
		backward = append(backward, v)
		if v == "b" {
			break
		}
	}
	require.Equal(t, []string{"c", "b"}, backward)
}

func TestSequenceInitialCapacity(t *testing.T) {
	cfg, err := arena.ParseConfig([]byte("sequence_capacity: 12\n"))
	require.NoError(t, err)

	s := New[float32](WithConfig(cfg))
	require.Equal(t, 12, s.Cap())
	require.Equal(t, cfg.SequenceCapacity, s.Cap())
	require.Zero(t, s.Len())

	s.AppendN(1, 12)
	require.Equal(t, 12, s.Cap())

	// Later options win
	require.Equal(t, 3, New[int](WithConfig(cfg), WithCapacity(3)).Cap())
	require.Zero(t, New[int](WithConfig(arena.Config{})).Cap())
}

func TestSequenceBackedByStackAllocator(t *testing.T) {
	type vertex struct {
		x, y, z float32
	}

	frame, err := arena.NewStackAllocator(4096)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		m := frame.Mark()
		vertices := New[vertex](WithArena(frame))
		for j := 0; j < 100; j++ {
			vertices.Append(vertex{x: float32(j)})
		}
		require.Equal(t, 100, vertices.Len())
		require.Equal(t, float32(99), vertices.At(99).x)
		require.Greater(t, frame.Len(), 0)

		frame.Rollback(m)
		require.True(t, frame.Empty())
	}
	frame.Release()
}

func BenchmarkSequenceAppend(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := New[int]()
		for j := 0; j < 1024; j++ {
			s.Append(j)
		}
	}
}
