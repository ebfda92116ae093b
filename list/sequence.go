// SPDX-License-Identifier: Apache-2.0

// Package list provides growable sequence containers: Sequence, its
// order-maintaining variant Sorted, and a Stack built on top of them.
//
// Storage is a contiguous run of slots. Slots in [0, Len) hold live values,
// slots in [Len, Cap) hold the zero value. Growth moves the live values to
// new storage of at least twice the previous capacity, drawn from an
// injected arena.Arena or, by default, from the Go heap.
//
// Indexing outside [0, Len) is a contract violation and panics with an
// error wrapping fault.ErrPrecondition.
package list

import (
	"cmp"
	"iter"
	"slices"

	"github.com/pkg/errors"

	arena "github.com/brotbox/bbe-arena"
	"github.com/brotbox/bbe-arena/fault"
)

// hashPrefix is the number of leading elements that contribute to Hash.
const hashPrefix = 16

// Reader is the capability shared by Sequence and Sorted.
type Reader[T any] interface {
	Len() int
	Cap() int
	IsEmpty() bool
	At(i int) T
	Ptr(i int) *T
	Values() []T
	All() iter.Seq2[int, T]
	First() (T, error)
	Last() (T, error)
	FindFunc(match func(T) bool) *T
	FindLastFunc(match func(T) bool) *T
	CountFunc(match func(T) bool) int
	ContainsFunc(match func(T) bool) bool
}

var (
	_ Reader[int] = (*Sequence[int])(nil)
	_ Reader[int] = (*Sorted[int])(nil)
)

// Option configures a Sequence or Sorted.
type Option func(*options)

type options struct {
	capacity int
	arena    arena.Arena
}

// WithCapacity reserves capacity slots up front.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithConfig reserves cfg.SequenceCapacity slots up front.
func WithConfig(cfg arena.Config) Option {
	return WithCapacity(cfg.SequenceCapacity)
}

// WithArena draws the container's storage from a. Element types stored this
// way must not hold the only reference to Go heap objects.
func WithArena(a arena.Arena) Option {
	return func(o *options) {
		o.arena = a
	}
}

// Sequence is a growable contiguous container.
//
// A Sequence owns its storage: copying a Sequence value aliases it. Use Clone.
type Sequence[T any] struct {
	data  []T
	arena arena.Arena
}

// New returns an empty Sequence.
func New[T any](opts ...Option) *Sequence[T] {
	s := &Sequence[T]{}
	s.init(opts)
	return s
}

func (s *Sequence[T]) init(opts []Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s.arena = o.arena
	if o.capacity > 0 {
		s.data = arena.AllocateSlice[T](s.arena, 0, o.capacity)
	}
}

// Of returns a Sequence holding values, in order.
func Of[T any](values ...T) *Sequence[T] {
	s := New[T](WithCapacity(len(values)))
	s.AppendAll(values...)
	return s
}

// Make returns a Sequence holding n copies of v.
func Make[T any](n int, v T, opts ...Option) *Sequence[T] {
	s := New[T](opts...)
	s.AppendN(v, n)
	return s
}

// Len returns the number of live elements.
func (s *Sequence[T]) Len() int {
	return len(s.data)
}

// Cap returns the number of reserved slots.
func (s *Sequence[T]) Cap() int {
	return cap(s.data)
}

// IsEmpty reports whether the sequence holds no elements.
func (s *Sequence[T]) IsEmpty() bool {
	return len(s.data) == 0
}

func (s *Sequence[T]) checkIndex(i int) {
	if i < 0 || i >= len(s.data) {
		fault.Violation("index %d out of range [0, %d)", i, len(s.data))
	}
}

// At returns the element at i.
func (s *Sequence[T]) At(i int) T {
	s.checkIndex(i)
	return s.data[i]
}

// Ptr returns a pointer to the element at i. It is valid until the next
// operation that grows, shrinks or shifts the sequence.
func (s *Sequence[T]) Ptr(i int) *T {
	s.checkIndex(i)
	return &s.data[i]
}

// Set replaces the element at i.
func (s *Sequence[T]) Set(i int, v T) {
	s.checkIndex(i)
	s.data[i] = v
}

// Values returns the live range. The slice aliases the sequence's storage
// and is valid until the next mutating operation.
func (s *Sequence[T]) Values() []T {
	return s.data
}

// All iterates over the live range in order.
func (s *Sequence[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.data {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Backward iterates over the live range from the last element to the first.
func (s *Sequence[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := len(s.data) - 1; i >= 0; i-- {
			if !yield(i, s.data[i]) {
				return
			}
		}
	}
}

// grow makes room for n more elements. Live values are moved to the new
// storage and the old slots are cleared.
func (s *Sequence[T]) grow(n int) {
	newCap := arena.GrowCapacity(cap(s.data), len(s.data)+n)
	if newCap == cap(s.data) {
		return
	}
	s.moveTo(newCap)
}

// moveTo moves the live values to fresh storage of exactly capacity slots.
func (s *Sequence[T]) moveTo(capacity int) {
	data := arena.AllocateSlice[T](s.arena, len(s.data), capacity)
	copy(data, s.data)
	clear(s.data[:cap(s.data)])
	s.data = data
}

// Append adds v at the end.
func (s *Sequence[T]) Append(v T) {
	s.grow(1)
	s.data = append(s.data, v)
}

// AppendN adds count copies of v at the end.
func (s *Sequence[T]) AppendN(v T, count int) {
	if count <= 0 {
		return
	}
	s.grow(count)
	n := len(s.data)
	s.data = s.data[:n+count]
	for i := n; i < n+count; i++ {
		s.data[i] = v
	}
}

// AppendAll adds values at the end, in order.
func (s *Sequence[T]) AppendAll(values ...T) {
	s.grow(len(values))
	s.data = append(s.data, values...)
}

// PopBack removes the last n elements. Removing more elements than the
// sequence holds is a contract violation.
func (s *Sequence[T]) PopBack(n int) {
	if n < 0 || n > len(s.data) {
		fault.Violation("cannot pop %d of %d elements", n, len(s.data))
	}
	end := len(s.data) - n
	clear(s.data[end:])
	s.data = s.data[:end]
}

// RemoveAt removes the element at i and shifts the later elements down.
// It returns false, leaving the sequence unchanged, when i is out of range.
func (s *Sequence[T]) RemoveAt(i int) bool {
	if i < 0 || i >= len(s.data) {
		return false
	}
	last := len(s.data) - 1
	copy(s.data[i:], s.data[i+1:])
	var zero T
	s.data[last] = zero
	s.data = s.data[:last]
	return true
}

// RemoveAllFunc removes every element for which match returns true, keeping
// the relative order of the rest, and returns how many it removed.
func (s *Sequence[T]) RemoveAllFunc(match func(T) bool) int {
	kept := 0
	for i, v := range s.data {
		if match(v) {
			continue
		}
		if kept != i {
			s.data[kept] = v
		}
		kept++
	}
	removed := len(s.data) - kept
	clear(s.data[kept:])
	s.data = s.data[:kept]
	return removed
}

// RemoveFirstFunc removes the first element for which match returns true.
func (s *Sequence[T]) RemoveFirstFunc(match func(T) bool) bool {
	for i, v := range s.data {
		if match(v) {
			return s.RemoveAt(i)
		}
	}
	return false
}

// Clear removes every element. The capacity is kept.
func (s *Sequence[T]) Clear() {
	clear(s.data)
	s.data = s.data[:0]
}

// ShrinkToFit moves the elements to storage of exactly Len slots, or drops
// the storage when the sequence is empty. It reports whether anything changed.
func (s *Sequence[T]) ShrinkToFit() bool {
	if len(s.data) == cap(s.data) {
		return false
	}
	if len(s.data) == 0 {
		s.data = nil
		return true
	}
	s.moveTo(len(s.data))
	return true
}

// ResizeCapacity moves the elements to storage of exactly capacity slots.
// It fails with fault.ErrIllegalArgument when capacity is below Len.
func (s *Sequence[T]) ResizeCapacity(capacity int) error {
	if capacity < len(s.data) {
		return errors.Wrapf(fault.ErrIllegalArgument, "capacity %d is below length %d", capacity, len(s.data))
	}
	if capacity == cap(s.data) {
		return nil
	}
	s.moveTo(capacity)
	return nil
}

// FindFunc returns a pointer to the first element for which match returns
// true, or nil.
func (s *Sequence[T]) FindFunc(match func(T) bool) *T {
	for i := range s.data {
		if match(s.data[i]) {
			return &s.data[i]
		}
	}
	return nil
}

// FindLastFunc returns a pointer to the last element for which match returns
// true, or nil.
func (s *Sequence[T]) FindLastFunc(match func(T) bool) *T {
	for i := len(s.data) - 1; i >= 0; i-- {
		if match(s.data[i]) {
			return &s.data[i]
		}
	}
	return nil
}

// CountFunc returns the number of elements for which match returns true.
func (s *Sequence[T]) CountFunc(match func(T) bool) int {
	n := 0
	for _, v := range s.data {
		if match(v) {
			n++
		}
	}
	return n
}

// ContainsFunc reports whether match returns true for any element.
func (s *Sequence[T]) ContainsFunc(match func(T) bool) bool {
	return s.FindFunc(match) != nil
}

// ContainsExactlyOneFunc reports whether match returns true for exactly one element.
func (s *Sequence[T]) ContainsExactlyOneFunc(match func(T) bool) bool {
	return s.CountFunc(match) == 1
}

// SortFunc sorts the elements by cmp. Equal elements keep their order.
func (s *Sequence[T]) SortFunc(cmp func(a, b T) int) {
	slices.SortStableFunc(s.data, cmp)
}

// First returns the first element, or fault.ErrContainerEmpty.
func (s *Sequence[T]) First() (T, error) {
	if len(s.data) == 0 {
		var zero T
		return zero, errors.Wrap(fault.ErrContainerEmpty, "first element")
	}
	return s.data[0], nil
}

// Last returns the last element, or fault.ErrContainerEmpty.
func (s *Sequence[T]) Last() (T, error) {
	if len(s.data) == 0 {
		var zero T
		return zero, errors.Wrap(fault.ErrContainerEmpty, "last element")
	}
	return s.data[len(s.data)-1], nil
}

// Clone returns a copy holding the same elements, drawing storage from the
// same arena.
func (s *Sequence[T]) Clone() *Sequence[T] {
	c := &Sequence[T]{arena: s.arena}
	c.AppendAll(s.data...)
	return c
}

// Hash sums hash over at most the first 16 elements. It is deterministic and
// order-insensitive within that prefix; use it for debugging and
// deduplication only.
func (s *Sequence[T]) Hash(hash func(T) uint32) uint32 {
	var h uint32
	for _, v := range s.data[:min(len(s.data), hashPrefix)] {
		h += hash(v)
	}
	return h
}

// Find returns a pointer to the first element equal to v, or nil.
func Find[T comparable](s Reader[T], v T) *T {
	return s.FindFunc(func(e T) bool { return e == v })
}

// FindLast returns a pointer to the last element equal to v, or nil.
func FindLast[T comparable](s Reader[T], v T) *T {
	return s.FindLastFunc(func(e T) bool { return e == v })
}

// Count returns the number of elements equal to v.
func Count[T comparable](s Reader[T], v T) int {
	return s.CountFunc(func(e T) bool { return e == v })
}

// Contains reports whether any element equals v.
func Contains[T comparable](s Reader[T], v T) bool {
	return s.ContainsFunc(func(e T) bool { return e == v })
}

// ContainsExactlyOne reports whether exactly one element equals v.
func ContainsExactlyOne[T comparable](s Reader[T], v T) bool {
	return Count(s, v) == 1
}

// RemoveAll removes every element equal to v and returns how many it removed.
func RemoveAll[T comparable](s *Sequence[T], v T) int {
	return s.RemoveAllFunc(func(e T) bool { return e == v })
}

// RemoveFirst removes the first element equal to v.
func RemoveFirst[T comparable](s *Sequence[T], v T) bool {
	return s.RemoveFirstFunc(func(e T) bool { return e == v })
}

// Sort sorts s in ascending order.
func Sort[T cmp.Ordered](s *Sequence[T]) {
	s.SortFunc(cmp.Compare[T])
}

// Equal reports whether a and b hold equal elements in the same order.
func Equal[T comparable](a, b Reader[T]) bool {
	return slices.Equal(a.Values(), b.Values())
}

// EqualFunc is Equal with a custom element comparison.
func EqualFunc[T any](a, b Reader[T], eq func(T, T) bool) bool {
	return slices.EqualFunc(a.Values(), b.Values(), eq)
}
