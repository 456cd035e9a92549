// Package metrics records per-operation counters and timings.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector receives one record per dispatched operation.
// Implementations must be safe for concurrent use.
type Collector interface {
	// RecordOp is called after each operation with the executing backend
	// ("cpu" or "gpu"), the register size and the outcome.
	RecordOp(op, backend string, qubits int, took time.Duration, err error)

	// RecordFallback is called when a GPU dispatch failed and the
	// operation was rerun on the CPU.
	RecordFallback(op string)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordOp(string, string, int, time.Duration, error) {}
func (Noop) RecordFallback(string)                              {}

// Basic keeps in-memory totals per operation name.
type Basic struct {
	mu  sync.Mutex
	ops map[string]*opTotals
}

type opTotals struct {
	count     atomic.Int64
	errors    atomic.Int64
	fallbacks atomic.Int64
	nanos     atomic.Int64
}

// NewBasic returns an empty collector.
func NewBasic() *Basic {
	return &Basic{ops: make(map[string]*opTotals)}
}

func (b *Basic) totals(op string) *opTotals {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.ops[op]
	if !ok {
		t = &opTotals{}
		b.ops[op] = t
	}
	return t
}

// RecordOp implements Collector.
func (b *Basic) RecordOp(op, _ string, _ int, took time.Duration, err error) {
	t := b.totals(op)
	t.count.Add(1)
	t.nanos.Add(took.Nanoseconds())
	if err != nil {
		t.errors.Add(1)
	}
}

// RecordFallback implements Collector.
func (b *Basic) RecordFallback(op string) {
	b.totals(op).fallbacks.Add(1)
}

// OpStats is a snapshot of one operation's totals.
type OpStats struct {
	Count     int64
	Errors    int64
	Fallbacks int64
	AvgNanos  int64
}

// Stats returns a snapshot keyed by operation name.
func (b *Basic) Stats() map[string]OpStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]OpStats, len(b.ops))
	for op, t := range b.ops {
		s := OpStats{
			Count:     t.count.Load(),
			Errors:    t.errors.Load(),
			Fallbacks: t.fallbacks.Load(),
		}
		if s.Count > 0 {
			s.AvgNanos = t.nanos.Load() / s.Count
		}
		out[op] = s
	}
	return out
}

// Multi fans every record out to each collector in order.
type Multi []Collector

// RecordOp implements Collector.
func (m Multi) RecordOp(op, backend string, qubits int, took time.Duration, err error) {
	for _, c := range m {
		c.RecordOp(op, backend, qubits, took, err)
	}
}

// RecordFallback implements Collector.
func (m Multi) RecordFallback(op string) {
	for _, c := range m {
		c.RecordFallback(op)
	}
}
