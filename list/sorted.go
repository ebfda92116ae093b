// SPDX-License-Identifier: Apache-2.0

package list

import (
	"cmp"

	"github.com/brotbox/bbe-arena/fault"
)

// Sorted is a Sequence that keeps its elements in non-descending order after
// every insertion.
//
// Ties are resolved one way everywhere: a new element equal to stored ones is
// placed after all of them. Inserting several equal values therefore keeps
// them contiguous and leaves the order of the existing equal run untouched.
//
// Set, Ptr and the embedded Sequence's SortFunc can break the order; callers
// using them are responsible for restoring it, e.g. with Sort.
//
// The zero value has no order. Use NewSorted or NewSortedFunc: inserting
// into or searching a zero Sorted is a contract violation.
type Sorted[T any] struct {
	Sequence[T]
	cmp func(a, b T) int
}

// NewSorted returns an empty Sorted ordered by the natural order of T.
func NewSorted[T cmp.Ordered](opts ...Option) *Sorted[T] {
	return NewSortedFunc(cmp.Compare[T], opts...)
}

// NewSortedFunc returns an empty Sorted ordered by cmp, which must not be nil.
func NewSortedFunc[T any](cmp func(a, b T) int, opts ...Option) *Sorted[T] {
	if cmp == nil {
		fault.Violation("sorted sequence needs a comparison function")
	}
	s := &Sorted[T]{cmp: cmp}
	s.init(opts)
	return s
}

func (s *Sorted[T]) order() func(a, b T) int {
	if s.cmp == nil {
		fault.Violation("sorted sequence has no comparison function; create it with NewSorted or NewSortedFunc")
	}
	return s.cmp
}

// InsertionIndex returns the index at which v would be inserted: the first
// index whose element is greater than v, or Len when there is none.
func (s *Sorted[T]) InsertionIndex(v T) int {
	compare := s.order()
	lo, hi := 0, len(s.data)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if compare(s.data[mid], v) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Search returns the index of the first element equal to v and whether one
// exists. When none does, the index is where v would be inserted.
func (s *Sorted[T]) Search(v T) (int, bool) {
	compare := s.order()
	lo, hi := 0, len(s.data)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if compare(s.data[mid], v) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(s.data) && compare(s.data[lo], v) == 0
}

// Neighbors returns the elements that would sit immediately left and right
// of v if it were inserted now. Either is nil at the sequence boundary.
func (s *Sorted[T]) Neighbors(v T) (left, right *T) {
	i := s.InsertionIndex(v)
	if i > 0 {
		left = &s.data[i-1]
	}
	if i < len(s.data) {
		right = &s.data[i]
	}
	return left, right
}

// Append inserts v at its ordered position.
func (s *Sorted[T]) Append(v T) {
	s.AppendN(v, 1)
}

// AppendN inserts count copies of v at their ordered position. Only the
// elements greater than v are shifted.
func (s *Sorted[T]) AppendN(v T, count int) {
	if count <= 0 {
		return
	}
	s.order()
	s.grow(count)
	at := s.InsertionIndex(v)
	n := len(s.data)
	s.data = s.data[:n+count]
	copy(s.data[at+count:], s.data[at:n])
	for i := at; i < at+count; i++ {
		s.data[i] = v
	}
}

// AppendAll inserts every value at its ordered position.
func (s *Sorted[T]) AppendAll(values ...T) {
	s.grow(len(values))
	for _, v := range values {
		s.AppendN(v, 1)
	}
}

// Merge inserts every element of other, which must be sorted by the same
// order. Existing elements precede merged elements they compare equal to.
func (s *Sorted[T]) Merge(other *Sorted[T]) {
	compare := s.order()
	m := len(other.data)
	if m == 0 {
		return
	}
	// Copy first: other may be s.
	incoming := make([]T, m)
	copy(incoming, other.data)

	s.grow(m)
	n := len(s.data)
	s.data = s.data[:n+m]

	// Fill from the back so no live element is overwritten before it moves.
	i, j := n-1, m-1
	for k := n + m - 1; j >= 0; k-- {
		if i >= 0 && compare(s.data[i], incoming[j]) > 0 {
			s.data[k] = s.data[i]
			i--
		} else {
			s.data[k] = incoming[j]
			j--
		}
	}
}

// Sort restores the order after direct element modification.
func (s *Sorted[T]) Sort() {
	s.SortFunc(s.order())
}

// Clone returns a copy holding the same elements with the same order.
func (s *Sorted[T]) Clone() *Sorted[T] {
	return &Sorted[T]{Sequence: *s.Sequence.Clone(), cmp: s.cmp}
}

// IsSorted reports whether the elements are in non-descending order.
func (s *Sorted[T]) IsSorted() bool {
	compare := s.order()
	for i := 1; i < len(s.data); i++ {
		if compare(s.data[i-1], s.data[i]) > 0 {
			return false
		}
	}
	return true
}
