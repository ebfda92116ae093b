// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StackAllocatorMetrics holds the Prometheus metrics of one or more
// StackAllocators. A nil *StackAllocatorMetrics records nothing.
type StackAllocatorMetrics struct {
	allocations   prometheus.Counter
	outOfMemories prometheus.Counter
	rollbacks     prometheus.Counter
	finalizersRun prometheus.Counter
	bytesInUse    prometheus.Gauge
}

// NewStackAllocatorMetrics registers the stack allocator metrics with reg.
// A nil reg creates unregistered metrics.
func NewStackAllocatorMetrics(reg prometheus.Registerer) *StackAllocatorMetrics {
	return &StackAllocatorMetrics{
		allocations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "bbe_stack_allocator_allocations_total",
			Help: "Total number of successful stack allocator reservations.",
		}),
		outOfMemories: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "bbe_stack_allocator_out_of_memory_total",
			Help: "Total number of stack allocator requests rejected because the reserved block was exhausted.",
		}),
		rollbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "bbe_stack_allocator_rollbacks_total",
			Help: "Total number of rollbacks to a marker, resets included.",
		}),
		finalizersRun: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "bbe_stack_allocator_finalizers_run_total",
			Help: "Total number of finalizers run by rollbacks.",
		}),
		bytesInUse: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "bbe_stack_allocator_bytes_in_use",
			Help: "Bytes in use by the most recently active stack allocator, alignment padding included.",
		}),
	}
}

func (m *StackAllocatorMetrics) allocated(inUse uintptr) {
	if m == nil {
		return
	}
	m.allocations.Inc()
	m.bytesInUse.Set(float64(inUse))
}

func (m *StackAllocatorMetrics) outOfMemory() {
	if m == nil {
		return
	}
	m.outOfMemories.Inc()
}

func (m *StackAllocatorMetrics) rolledBack(finalizers int, inUse uintptr) {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
	m.finalizersRun.Add(float64(finalizers))
	m.bytesInUse.Set(float64(inUse))
}
