// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"math"
	"weak"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Pool reuses StackAllocators across scopes such as frames, keyed by use case.
//
// Idle allocators are held through weak pointers, so the garbage collector
// may reclaim them under memory pressure; Acquire then creates a fresh one.
// New allocators are sized from the average need recorded for their key:
// the allocator's peak, or the largest request it had to reject.
//
// Pool is not safe for concurrent use.
type Pool struct {
	idle        []weak.Pointer[PoolItem]
	sizes       map[uint64]*poolItemSize
	defaultSize int
	opts        []StackAllocatorOption
	logger      log.Logger
}

// poolItemSize tracks the need of recent allocators for one key.
// The average is taken over at most maxSizeSamples releases.
type poolItemSize struct {
	count      int
	totalBytes int
}

const (
	maxSizeSamples = 50
	// maxSizeSample bounds one recorded size so a window's total fits an int.
	maxSizeSample = math.MaxInt / (maxSizeSamples + 1)
)

// PoolItem is a StackAllocator checked out of a Pool.
type PoolItem struct {
	Allocator *StackAllocator
	Key       uint64
}

// NewPool returns a Pool whose allocators reserve defaultSize bytes until a
// key has recorded usage. opts are applied to every allocator it creates.
func NewPool(defaultSize int, logger log.Logger, opts ...StackAllocatorOption) *Pool {
	if defaultSize <= 0 {
		defaultSize = DefaultStackSize
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Pool{
		sizes:       make(map[uint64]*poolItemSize),
		defaultSize: defaultSize,
		opts:        opts,
		logger:      logger,
	}
}

// Acquire returns an empty allocator for key, reusing an idle one when the
// garbage collector has not reclaimed it yet.
func (p *Pool) Acquire(key uint64) (*PoolItem, error) {
	want := p.sizeFor(key)
	for len(p.idle) > 0 {
		last := len(p.idle) - 1
		wp := p.idle[last]
		p.idle = p.idle[:last]

		if item := wp.Value(); item != nil {
			if item.Allocator.Cap() < want {
				// Too small for what this key has needed before.
				continue
			}
			item.Key = key
			return item, nil
		}
	}

	s, err := NewStackAllocator(want, p.opts...)
	if err != nil {
		return nil, err
	}
	level.Debug(p.logger).Log("msg", "pool created stack allocator", "key", key, "reserved", humanize.IBytes(uint64(want)))
	return &PoolItem{Allocator: s, Key: key}, nil
}

// Release rolls item's allocator back to empty, records what it needed for
// the item's key and makes it available to Acquire again. A request the
// allocator rejected counts as needed, so keys that run out of memory get
// larger allocators from later Acquire calls. An allocator that rejected a
// request is released instead of kept idle.
func (p *Pool) Release(item *PoolItem) {
	need := min(max(item.Allocator.Peak(), item.Allocator.Demand()), maxSizeSample)
	item.Allocator.Reset()

	if size, ok := p.sizes[item.Key]; ok {
		if size.count == maxSizeSamples {
			size.count = 1
			size.totalBytes = size.totalBytes / maxSizeSamples
		}
		size.count++
		size.totalBytes += need
	} else {
		p.sizes[item.Key] = &poolItemSize{count: 1, totalBytes: need}
	}

	if item.Allocator.Demand() > 0 {
		level.Debug(p.logger).Log("msg", "pool dropped undersized stack allocator", "key", item.Key, "demand", humanize.IBytes(uint64(item.Allocator.Demand())))
		item.Allocator.Release()
		item.Key = 0
		return
	}
	item.Key = 0
	p.idle = append(p.idle, weak.Make(item))
}

// ReleaseMany releases every item.
func (p *Pool) ReleaseMany(items []*PoolItem) {
	for _, item := range items {
		p.Release(item)
	}
}

// sizeFor returns the reservation for a new allocator for key: the average
// recorded need, never below the pool default.
func (p *Pool) sizeFor(key uint64) int {
	if size, ok := p.sizes[key]; ok && size.count > 0 {
		if avg := size.totalBytes / size.count; avg > p.defaultSize {
			return avg
		}
	}
	return p.defaultSize
}
