package kernel

import (
	"context"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/internal/bits"
)

// CycleAllBits rotates every state index of the register: output state i
// takes the amplitude of input state rotl(i, (-shift) mod n). Whole cells
// move, all channels included.
func (e *Executor) CycleAllBits(ctx context.Context, in *grid.Grid, shift int) (*grid.Grid, error) {
	if err := ValidateGrid(in); err != nil {
		return nil, err
	}
	n := in.Qubits()
	k := CycleDistance(n, shift)

	if k == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return in.Clone(), nil
	}

	out := in.Like()
	err := e.pass(ctx, in.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			copy(out.Cell(i), in.Cell(bits.CycleIndex(i, k, n)))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CycleAllBits runs on the Default executor.
func CycleAllBits(ctx context.Context, in *grid.Grid, shift int) (*grid.Grid, error) {
	return Default.CycleAllBits(ctx, in, shift)
}

// Increment adds amount, modulo 2^span, to the span-bit sub-register
// starting at qubit index, for every state allowed by mask. Bits outside
// the field are untouched.
func (e *Executor) Increment(ctx context.Context, in *grid.Grid, mask *grid.Mask, index, span, amount int) (*grid.Grid, error) {
	if err := ValidateIncrement(in, mask, index, span); err != nil {
		return nil, err
	}
	offset := IncrementOffset(span, amount)

	out := in.Like()
	err := e.pass(ctx, in.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			src := i
			if mask == nil || mask.Allows(i) {
				src = bits.WithField(i, index, span, bits.Field(i, index, span)-offset)
			}
			copy(out.Cell(i), in.Cell(src))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Increment runs on the Default executor.
func Increment(ctx context.Context, in *grid.Grid, mask *grid.Mask, index, span, amount int) (*grid.Grid, error) {
	return Default.Increment(ctx, in, mask, index, span, amount)
}
