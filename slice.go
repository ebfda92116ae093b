// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

// GrowCapacity returns the capacity a container should move to so that it
// can hold required elements. It returns capacity unchanged when it already
// suffices; otherwise the larger of twice the current capacity and required.
// Doubling keeps the total number of element moves across n appends in O(n).
func GrowCapacity(capacity, required int) int {
	if capacity >= required {
		return capacity
	}
	newCap := capacity * 2
	if newCap < required {
		newCap = required
	}
	return newCap
}

// AllocateSlice returns a slice of length len and capacity cap whose backing
// array comes from a. When a is nil, or cannot satisfy the request, the slice
// is made on the Go heap.
func AllocateSlice[T any](a Arena, len, cap int) []T {
	if a != nil {
		var x T
		bufSize := unsafe.Sizeof(x) * uintptr(cap)
		if ptr := (*T)(a.Alloc(bufSize, unsafe.Alignof(x))); ptr != nil {
			s := unsafe.Slice(ptr, cap)
			return s[:len]
		}
	}
	return make([]T, len, cap)
}

// SliceAppend appends data to s, moving s to storage from a when it has to grow.
func SliceAppend[T any](a Arena, s []T, data ...T) []T {
	if a == nil {
		return append(s, data...)
	}
	s = growSlice(a, s, len(data))
	return append(s, data...)
}

// growSlice returns s, or a copy of s with room for dataLen more elements.
func growSlice[T any](a Arena, s []T, dataLen int) []T {
	newCap := GrowCapacity(cap(s), len(s)+dataLen)
	if newCap == cap(s) {
		return s
	}
	s2 := AllocateSlice[T](a, len(s), newCap)
	copy(s2, s)
	return s2
}
