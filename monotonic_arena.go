// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

// monotonicArena keeps a list of buffers and bumps through them. A request
// that fits in none of them adds a new buffer, so Alloc never fails.
// It is the default upstream of a StackAllocator.
type monotonicArena struct {
	buffers            []*monotonicBuffer
	peak               uintptr
	minBufferSize      uintptr
	initialBufferCount int
}

type monotonicBuffer struct {
	buf    []byte
	offset uintptr
	size   uintptr
}

func newMonotonicBuffer(size uintptr) *monotonicBuffer {
	return &monotonicBuffer{size: size}
}

func (b *monotonicBuffer) alloc(size, alignment uintptr) (unsafe.Pointer, bool) {
	if b.buf == nil {
		// Reserved lazily so an arena created with spare buffers costs nothing.
		b.buf = make([]byte, b.size)
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(b.buf)))
	start := alignUp(base+b.offset, alignment) - base
	if start > b.size || b.size-start < size {
		return nil, false
	}
	if size == 0 {
		return unsafe.Pointer(&zeroSized), true
	}
	b.offset = start + size

	mem := b.buf[start : start+size]
	clear(mem)
	return unsafe.Pointer(&mem[0]), true
}

func (b *monotonicBuffer) reset() {
	b.offset = 0
}

func (b *monotonicBuffer) release() {
	b.offset = 0
	b.buf = nil
}

// NewMonotonicArena creates a monotonic arena. Without options it reserves one
// buffer of DefaultMonotonicBufferSize bytes.
func NewMonotonicArena(opts ...MonotonicArenaOption) Arena {
	a := &monotonicArena{
		minBufferSize:      DefaultMonotonicBufferSize,
		initialBufferCount: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	for i := 0; i < a.initialBufferCount; i++ {
		a.buffers = append(a.buffers, newMonotonicBuffer(a.minBufferSize))
	}
	return a
}

// DefaultMonotonicBufferSize is the buffer size of a monotonic arena created
// without WithMinBufferSize.
const DefaultMonotonicBufferSize = 32 * 1024

// MonotonicArenaOption configures a monotonic arena.
type MonotonicArenaOption func(*monotonicArena)

// WithMinBufferSize sets the size of the initial buffers and the lower bound
// for buffers added later.
func WithMinBufferSize(size int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.minBufferSize = uintptr(size)
	}
}

// WithInitialBufferCount sets how many buffers are reserved up front.
func WithInitialBufferCount(count int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.initialBufferCount = count
	}
}

// Alloc satisfies the Arena interface.
func (a *monotonicArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	for _, b := range a.buffers {
		if ptr, ok := b.alloc(size, alignment); ok {
			a.updatePeak()
			return ptr
		}
	}

	// Room for the worst-case alignment padding, since the buffer address is
	// not known until it is made.
	newSize := size + alignment - 1
	if newSize < a.minBufferSize {
		newSize = a.minBufferSize
	}
	b := newMonotonicBuffer(newSize)
	a.buffers = append(a.buffers, b)

	ptr, ok := b.alloc(size, alignment)
	if !ok {
		panic("arena: allocation does not fit a buffer sized for it")
	}
	a.updatePeak()
	return ptr
}

func (a *monotonicArena) updatePeak() {
	if l := a.len(); l > a.peak {
		a.peak = l
	}
}

// Reset satisfies the Arena interface.
func (a *monotonicArena) Reset() {
	for _, b := range a.buffers {
		b.reset()
	}
}

// Release satisfies the Arena interface.
func (a *monotonicArena) Release() {
	for _, b := range a.buffers {
		b.release()
	}
}

func (a *monotonicArena) len() uintptr {
	var total uintptr
	for _, b := range a.buffers {
		total += b.offset
	}
	return total
}

// Len satisfies the Arena interface.
func (a *monotonicArena) Len() int {
	return int(a.len())
}

// Cap satisfies the Arena interface.
func (a *monotonicArena) Cap() int {
	var total uintptr
	for _, b := range a.buffers {
		total += b.size
	}
	return int(total)
}

// Peak satisfies the Arena interface.
func (a *monotonicArena) Peak() int {
	return int(a.peak)
}
