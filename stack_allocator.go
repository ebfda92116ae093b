// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/brotbox/bbe-arena/fault"
)

// DefaultStackSize is the number of bytes a StackAllocator reserves when
// created with a non-positive size.
const DefaultStackSize = 1024

// Finalizer is implemented by values that need cleanup when a StackAllocator
// rolls back past them. Finalize runs exactly once per allocated element,
// in reverse allocation order.
type Finalizer interface {
	Finalize()
}

// finalizer is one pending cleanup: the element and the function that knows
// its type.
type finalizer struct {
	ptr unsafe.Pointer
	run func(unsafe.Pointer)
}

func runFinalizer[T any](ptr unsafe.Pointer) {
	any((*T)(ptr)).(Finalizer).Finalize()
}

// Marker is a snapshot of a StackAllocator's cursor and finalizer depth.
// It is only meaningful for the allocator that produced it, and only while
// no marker taken before it has been rolled back.
type Marker struct {
	head  uintptr
	depth int
}

// StackAllocator hands out memory from one fixed block by advancing a cursor.
// Memory is never freed individually: Rollback returns the cursor to a Marker
// and runs the finalizers of everything allocated since, newest first.
//
// Markers must be rolled back in LIFO order. Rolling back an outer marker
// invalidates every marker taken after it.
//
// A StackAllocator also satisfies Arena, so containers can draw per-scope
// storage from it.
type StackAllocator struct {
	upstream     Arena
	ownsUpstream bool

	block unsafe.Pointer
	head  uintptr
	size  uintptr
	peak  uintptr
	// demand is the largest cursor a rejected request would have needed.
	demand uintptr

	finalizers []finalizer

	logger  log.Logger
	metrics *StackAllocatorMetrics
}

// StackAllocatorOption configures a StackAllocator.
type StackAllocatorOption func(*StackAllocator)

// WithUpstream makes the allocator reserve its block from a. The block is
// then reclaimed when a itself is reset or released, not by the allocator.
func WithUpstream(a Arena) StackAllocatorOption {
	return func(s *StackAllocator) {
		s.upstream = a
	}
}

// WithLogger sets the logger used for lifecycle and out-of-memory events.
func WithLogger(logger log.Logger) StackAllocatorOption {
	return func(s *StackAllocator) {
		s.logger = logger
	}
}

// WithMetrics makes the allocator report to m. Several allocators may share m.
func WithMetrics(m *StackAllocatorMetrics) StackAllocatorOption {
	return func(s *StackAllocator) {
		s.metrics = m
	}
}

// NewStackAllocator reserves size bytes and returns an empty allocator over
// them. A non-positive size selects DefaultStackSize.
func NewStackAllocator(size int, opts ...StackAllocatorOption) (*StackAllocator, error) {
	if size <= 0 {
		size = DefaultStackSize
	}
	s := &StackAllocator{
		size:   uintptr(size),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.upstream == nil {
		s.upstream = NewMonotonicArena(WithMinBufferSize(size))
		s.ownsUpstream = true
	}

	s.block = s.upstream.Alloc(s.size, unsafe.Alignof(uintptr(0)))
	if s.block == nil {
		return nil, errors.Wrapf(fault.ErrOutOfMemory, "upstream cannot reserve %s for stack allocator", humanize.IBytes(uint64(size)))
	}

	level.Debug(s.logger).Log("msg", "stack allocator created", "reserved", humanize.IBytes(uint64(size)), "owns_upstream", s.ownsUpstream)
	return s, nil
}

// NewStackAllocatorFromConfig creates a StackAllocator reserving cfg.StackSize bytes.
func NewStackAllocatorFromConfig(cfg Config, opts ...StackAllocatorOption) (*StackAllocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewStackAllocator(int(cfg.StackSize), opts...)
}

// reserve moves the cursor past size bytes aligned to alignment and returns
// the offset of the first byte. The cursor does not move when the request
// does not fit.
func (s *StackAllocator) reserve(size, alignment uintptr) (uintptr, error) {
	base := uintptr(s.block)
	start := alignUp(base+s.head, alignment) - base
	if start > s.size || s.size-start < size {
		s.outOfMemory(size, alignment)
		return 0, errors.Wrapf(fault.ErrOutOfMemory, "requested %d bytes aligned to %d with %d of %d bytes in use", size, alignment, s.head, s.size)
	}
	s.head = start + size
	if s.head > s.peak {
		s.peak = s.head
	}
	s.metrics.allocated(s.head)
	return start, nil
}

// outOfMemory records a rejected request of size bytes.
func (s *StackAllocator) outOfMemory(size, alignment uintptr) {
	need := ^uintptr(0)
	if size <= need-s.head {
		need = s.head + size
	}
	s.demand = max(s.demand, need)
	s.metrics.outOfMemory()
	level.Debug(s.logger).Log("msg", "stack allocator out of memory", "requested", size, "alignment", alignment, "used", humanize.IBytes(uint64(s.head)), "reserved", humanize.IBytes(uint64(s.size)))
}

func (s *StackAllocator) at(offset uintptr) unsafe.Pointer {
	return unsafe.Add(s.block, offset)
}

// AllocateBytes reserves size zeroed bytes aligned to alignment.
// Alignment must be a power of two.
func (s *StackAllocator) AllocateBytes(size, alignment int) ([]byte, error) {
	if size < 0 {
		return nil, errors.Wrapf(fault.ErrIllegalArgument, "negative allocation size %d", size)
	}
	if alignment <= 0 || !validAlignment(uintptr(alignment)) {
		return nil, errors.Wrapf(fault.ErrIllegalArgument, "alignment %d is not a power of two", alignment)
	}
	if size == 0 {
		return []byte{}, nil
	}
	offset, err := s.reserve(uintptr(size), uintptr(alignment))
	if err != nil {
		return nil, err
	}
	b := unsafe.Slice((*byte)(s.at(offset)), size)
	clear(b)
	return b, nil
}

// AllocateObjects reserves count zeroed elements of type T and calls init on
// each, in order. When *T implements Finalizer, one finalizer per element is
// queued for the next Rollback past this allocation. init may be nil.
//
// T must not hold the only reference to Go heap objects: the block is not
// scanned by the garbage collector.
func AllocateObjects[T any](s *StackAllocator, count int, init func(*T)) ([]T, error) {
	if count < 0 {
		return nil, errors.Wrapf(fault.ErrIllegalArgument, "negative object count %d", count)
	}
	if count == 0 {
		return []T{}, nil
	}

	var x T
	elemSize, alignment := unsafe.Sizeof(x), unsafe.Alignof(x)
	if elemSize != 0 && uintptr(count) > s.size/elemSize {
		requested := ^uintptr(0)
		if uintptr(count) <= requested/elemSize {
			requested = elemSize * uintptr(count)
		}
		s.outOfMemory(requested, alignment)
		return nil, errors.Wrapf(fault.ErrOutOfMemory, "%d objects of %d bytes exceed the %d reserved bytes", count, elemSize, s.size)
	}

	var objects []T
	if elemSize == 0 {
		objects = make([]T, count)
	} else {
		offset, err := s.reserve(elemSize*uintptr(count), alignment)
		if err != nil {
			return nil, err
		}
		objects = unsafe.Slice((*T)(s.at(offset)), count)
		clear(objects)
	}

	_, finalize := any((*T)(nil)).(Finalizer)
	for i := range objects {
		if init != nil {
			init(&objects[i])
		}
		if finalize {
			s.finalizers = append(s.finalizers, finalizer{
				ptr: unsafe.Pointer(&objects[i]),
				run: runFinalizer[T],
			})
		}
	}
	return objects, nil
}

// AllocateObject is AllocateObjects for a single element.
func AllocateObject[T any](s *StackAllocator, init func(*T)) (*T, error) {
	objects, err := AllocateObjects(s, 1, init)
	if err != nil {
		return nil, err
	}
	return &objects[0], nil
}

// Mark returns a Marker for the current cursor and finalizer depth.
func (s *StackAllocator) Mark() Marker {
	return Marker{head: s.head, depth: len(s.finalizers)}
}

// Rollback runs, newest first, the finalizers queued since m was taken and
// moves the cursor back to m. A marker ahead of the allocator's current
// state was invalidated by an earlier rollback and is a contract violation.
func (s *StackAllocator) Rollback(m Marker) {
	if m.head > s.head || m.depth > len(s.finalizers) {
		fault.Violation("rollback to marker (head %d, depth %d) ahead of allocator (head %d, depth %d)", m.head, m.depth, s.head, len(s.finalizers))
	}

	ran := 0
	for len(s.finalizers) > m.depth {
		last := len(s.finalizers) - 1
		f := s.finalizers[last]
		s.finalizers[last] = finalizer{}
		s.finalizers = s.finalizers[:last]
		f.run(f.ptr)
		ran++
	}
	s.head = m.head
	s.metrics.rolledBack(ran, s.head)
}

// Reset rolls back to the allocator's initial, empty state.
func (s *StackAllocator) Reset() {
	s.Rollback(Marker{})
}

// Release hands the block back to an owned upstream. Every marker must have
// been rolled back first: releasing with live allocations is a contract
// violation.
func (s *StackAllocator) Release() {
	if s.head != 0 || len(s.finalizers) != 0 {
		fault.Violation("stack allocator released with %d bytes and %d finalizers outstanding", s.head, len(s.finalizers))
	}
	if s.ownsUpstream && s.upstream != nil {
		s.upstream.Release()
	}
	level.Debug(s.logger).Log("msg", "stack allocator released", "reserved", humanize.IBytes(uint64(s.size)), "peak", humanize.IBytes(uint64(s.peak)))
	s.upstream = nil
	s.block = nil
	s.size = 0
}

// Alloc satisfies the Arena interface. It returns nil instead of an error
// when the block is exhausted.
func (s *StackAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	if !validAlignment(alignment) {
		return nil
	}
	if size == 0 {
		return unsafe.Pointer(&zeroSized)
	}
	offset, err := s.reserve(size, alignment)
	if err != nil {
		return nil
	}
	ptr := s.at(offset)
	clear(unsafe.Slice((*byte)(ptr), size))
	return ptr
}

// Empty reports whether nothing is allocated.
func (s *StackAllocator) Empty() bool {
	return s.head == 0
}

// Pending returns the number of queued finalizers.
func (s *StackAllocator) Pending() int {
	return len(s.finalizers)
}

// Available returns the number of bytes left before alignment padding.
func (s *StackAllocator) Available() int {
	return int(s.size - s.head)
}

// Len satisfies the Arena interface.
func (s *StackAllocator) Len() int {
	return int(s.head)
}

// Cap satisfies the Arena interface.
func (s *StackAllocator) Cap() int {
	return int(s.size)
}

// Peak satisfies the Arena interface.
func (s *StackAllocator) Peak() int {
	return int(s.peak)
}

// Demand returns the largest number of bytes a rejected allocation would
// have needed in use, or zero if nothing was ever rejected. Like Peak it
// survives Rollback and Reset. It saturates at math.MaxInt.
func (s *StackAllocator) Demand() int {
	if s.demand > math.MaxInt {
		return math.MaxInt
	}
	return int(s.demand)
}

func (s *StackAllocator) String() string {
	return fmt.Sprintf("StackAllocator{used: %s, reserved: %s, pending finalizers: %d}",
		humanize.IBytes(uint64(s.head)), humanize.IBytes(uint64(s.size)), len(s.finalizers))
}
