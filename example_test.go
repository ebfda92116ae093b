// SPDX-License-Identifier: Apache-2.0

package arena_test

import (
	"fmt"

	arena "github.com/brotbox/bbe-arena"
	"github.com/brotbox/bbe-arena/list"
)

type particle struct {
	x, y float32
}

// handle lives in arena memory, so it holds no Go pointers.
type handle struct {
	frame int
}

func (h *handle) Finalize() {
	fmt.Println("closing frame", h.frame)
}

func ExampleStackAllocator() {
	frame, err := arena.NewStackAllocator(4096)
	if err != nil {
		panic(err)
	}

	for i := 0; i < 2; i++ {
		m := frame.Mark()

		particles := list.New[particle](list.WithArena(frame))
		for j := 0; j < 10; j++ {
			particles.Append(particle{x: float32(j)})
		}
		_, _ = arena.AllocateObject(frame, func(h *handle) { h.frame = i })
		fmt.Println(particles.Len(), "particles")

		frame.Rollback(m)
	}
	fmt.Println(frame.Empty())
	frame.Release()

	// Output:
	// 10 particles
	// closing frame 0
	// 10 particles
	// closing frame 1
	// true
}

func ExampleStackAllocator_outOfMemory() {
	frame, err := arena.NewStackAllocator(16)
	if err != nil {
		panic(err)
	}
	defer frame.Release()

	_, err = frame.AllocateBytes(32, 8)
	fmt.Println(err)
	fmt.Println(frame.Len())

	// Output:
	// requested 32 bytes aligned to 8 with 0 of 16 bytes in use: allocator out of memory
	// 0
}

func ExampleParseConfig() {
	cfg, err := arena.ParseConfig([]byte("stack_size: 4KiB\nsequence_capacity: 8\n"))
	if err != nil {
		panic(err)
	}
	frame, err := arena.NewStackAllocatorFromConfig(cfg)
	if err != nil {
		panic(err)
	}
	defer frame.Release()

	fmt.Println(cfg.StackSize, frame.Cap())
	fmt.Println(list.New[int](list.WithConfig(cfg)).Cap())

	// Output:
	// 4KiB 4096
	// 8
}
