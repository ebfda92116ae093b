// SPDX-License-Identifier: Apache-2.0

// Package arena provides the allocation backends used by the list and text
// containers: an upstream Arena contract, a monotonic arena that hands out
// lazily reserved buffers, and a StackAllocator that bumps through one fixed
// block and releases memory only by rolling back to a Marker.
//
// None of the types in this package are safe for concurrent use.
//
// Memory handed out by an Arena is not scanned by the garbage collector.
// Values stored in it must not hold the only reference to Go heap objects.
package arena

import (
	"unsafe"
)

// Arena is the upstream allocator contract. The containers in this module
// draw their storage from an Arena when one is injected, and from the Go heap
// otherwise.
type Arena interface {
	// Alloc returns size bytes aligned to alignment, or nil when the arena
	// cannot satisfy the request. Alignment must be a power of two.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Reset makes every byte handed out so far available again.
	// Pointers returned by Alloc are invalid afterwards.
	Reset()

	// Release hands the arena's memory back. The arena must not be used after.
	Release()

	// Len returns the number of bytes currently handed out, alignment padding included.
	Len() int

	// Cap returns the number of bytes the arena has reserved.
	Cap() int

	// Peak returns the high-water mark of Len. Reset does not lower it.
	Peak() int
}

// Allocate returns a zeroed *T taken from a, or from the Go heap when a is
// nil or cannot satisfy the request.
func Allocate[T any](a Arena) *T {
	if a != nil {
		var x T
		if ptr := a.Alloc(unsafe.Sizeof(x), unsafe.Alignof(x)); ptr != nil {
			return (*T)(ptr)
		}
	}
	return new(T)
}

// alignUp rounds p up to the next multiple of alignment, a power of two.
func alignUp(p, alignment uintptr) uintptr {
	return (p + alignment - 1) &^ (alignment - 1)
}

func validAlignment(alignment uintptr) bool {
	return alignment != 0 && alignment&(alignment-1) == 0
}
