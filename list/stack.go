// SPDX-License-Identifier: Apache-2.0

package list

import (
	"github.com/pkg/errors"

	"github.com/brotbox/bbe-arena/fault"
)

// Stack is a LIFO container backed by a Sequence.
type Stack[T any] struct {
	data Sequence[T]
}

// NewStack returns an empty Stack.
func NewStack[T any](opts ...Option) *Stack[T] {
	s := &Stack[T]{}
	s.data.init(opts)
	return s
}

// Push adds v on top.
func (s *Stack[T]) Push(v T) {
	s.data.Append(v)
}

// Pop removes and returns the top element, or fails with
// fault.ErrContainerEmpty.
func (s *Stack[T]) Pop() (T, error) {
	v, err := s.Peek()
	if err != nil {
		return v, err
	}
	s.data.PopBack(1)
	return v, nil
}

// Peek returns the top element without removing it, or fails with
// fault.ErrContainerEmpty.
func (s *Stack[T]) Peek() (T, error) {
	v, err := s.data.Last()
	if err != nil {
		return v, errors.Wrap(fault.ErrContainerEmpty, "stack is empty")
	}
	return v, nil
}

// Len returns the number of elements.
func (s *Stack[T]) Len() int {
	return s.data.Len()
}

// IsEmpty reports whether the stack holds no elements.
func (s *Stack[T]) IsEmpty() bool {
	return s.data.IsEmpty()
}
