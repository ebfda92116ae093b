// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

// CountingArena wraps another Arena and counts the requests that reach it.
// With a nil parent every request is served from the Go heap.
//
// It is the injection point for observing allocation behaviour, e.g. that a
// short text.String never touches its allocator.
type CountingArena struct {
	parent Arena

	allocs int
	bytes  int
	len    int
	peak   int
}

// NewCountingArena returns a CountingArena forwarding to parent.
func NewCountingArena(parent Arena) *CountingArena {
	return &CountingArena{parent: parent}
}

// Allocs returns the number of Alloc calls since creation or the last Reset.
func (c *CountingArena) Allocs() int {
	return c.allocs
}

// Bytes returns the number of bytes requested since creation or the last Reset.
func (c *CountingArena) Bytes() int {
	return c.bytes
}

// Alloc satisfies the Arena interface.
func (c *CountingArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	c.allocs++
	c.bytes += int(size)

	if c.parent != nil {
		ptr := c.parent.Alloc(size, alignment)
		if ptr != nil {
			c.track(int(size))
		}
		return ptr
	}

	if size == 0 {
		return unsafe.Pointer(&zeroSized)
	}
	// Over-allocate by the alignment so the returned pointer can be aligned
	// without knowing how the runtime sized the underlying object.
	buf := make([]byte, size+alignment)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	c.track(int(size))
	return unsafe.Pointer(&buf[alignUp(base, alignment)-base])
}

func (c *CountingArena) track(size int) {
	c.len += size
	if c.len > c.peak {
		c.peak = c.len
	}
}

// Reset satisfies the Arena interface. It clears the counters too.
func (c *CountingArena) Reset() {
	c.allocs = 0
	c.bytes = 0
	c.len = 0
	if c.parent != nil {
		c.parent.Reset()
	}
}

// Release satisfies the Arena interface.
func (c *CountingArena) Release() {
	c.len = 0
	if c.parent != nil {
		c.parent.Release()
	}
}

// Len satisfies the Arena interface.
func (c *CountingArena) Len() int {
	if c.parent != nil {
		return c.parent.Len()
	}
	return c.len
}

// Cap satisfies the Arena interface.
func (c *CountingArena) Cap() int {
	if c.parent != nil {
		return c.parent.Cap()
	}
	return c.len
}

// Peak satisfies the Arena interface.
func (c *CountingArena) Peak() int {
	if c.parent != nil {
		return c.parent.Peak()
	}
	return c.peak
}

// zeroSized is the address handed out for zero-byte requests.
var zeroSized [0]byte
