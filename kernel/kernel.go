// Package kernel is the CPU executor for the register operations: unitary
// application and the two index permutations.
//
// Every operation is a data-parallel pass with one independent computation
// per output cell. Inputs are read-only and each call writes into a freshly
// allocated grid, so a cell's reads never race with another cell's write.
package kernel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of cells one task computes.
const DefaultChunkSize = 4096

// Options tunes the fan-out of a pass.
type Options struct {
	Workers   int // concurrent tasks; <= 0 means GOMAXPROCS
	ChunkSize int // cells per task; <= 0 means DefaultChunkSize
}

// Executor runs passes with a fixed fan-out. It holds no per-call state
// and is safe for concurrent use.
type Executor struct {
	workers   int
	chunkSize int
}

// New returns an executor for opts.
func New(opts Options) *Executor {
	e := &Executor{workers: opts.Workers, chunkSize: opts.ChunkSize}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.chunkSize <= 0 {
		e.chunkSize = DefaultChunkSize
	}
	return e
}

// Default is the executor behind the package-level functions.
var Default = New(Options{})

// Workers returns the task limit.
func (e *Executor) Workers() int { return e.workers }

// pass runs fn over [0, n) in contiguous chunks. Chunks write disjoint
// output ranges. Cancellation is observed between chunks.
func (e *Executor) pass(ctx context.Context, n int, fn func(lo, hi int)) error {
	if n <= e.chunkSize || e.workers == 1 {
		for lo := 0; lo < n; lo += e.chunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(lo, min(lo+e.chunkSize, n))
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < n; lo += e.chunkSize {
		hi := min(lo+e.chunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}
