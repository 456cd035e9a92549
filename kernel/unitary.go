package kernel

import (
	"context"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

// ApplyUnitary applies m to the qubits [target, target+k) of in, where m
// is 2^k x 2^k. States whose mask flag is 0 are copied unchanged; a nil
// mask gates nothing. The result is a new grid.
func (e *Executor) ApplyUnitary(ctx context.Context, in *grid.Grid, m *matrix.Matrix, target int, mask *grid.Mask) (*grid.Grid, error) {
	k, err := ValidateUnitary(in, m, target, mask)
	if err != nil {
		return nil, err
	}

	out := in.Like()
	if k == 1 {
		err = e.pass(ctx, in.Len(), func(lo, hi int) {
			singleQubit(in, out, m, 1<<target, mask, lo, hi)
		})
	} else {
		err = e.pass(ctx, in.Len(), func(lo, hi int) {
			multiQubit(in, out, m, target, k, mask, lo, hi)
		})
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyUnitary runs on the Default executor.
func ApplyUnitary(ctx context.Context, in *grid.Grid, m *matrix.Matrix, target int, mask *grid.Mask) (*grid.Grid, error) {
	return Default.ApplyUnitary(ctx, in, m, target, mask)
}

// singleQubit pairs each state with the one differing in the target bit and
// applies the matrix row selected by the state's own bit value.
func singleQubit(in, out *grid.Grid, m *matrix.Matrix, bit int, mask *grid.Mask, lo, hi int) {
	a, b := m.At(0, 0), m.At(0, 1)
	c, d := m.At(1, 0), m.At(1, 1)
	for i := lo; i < hi; i++ {
		if mask != nil && !mask.Allows(i) {
			copy(out.Cell(i), in.Cell(i))
			continue
		}
		c1, c2 := a, b
		if i&bit != 0 {
			c1, c2 = d, c
		}
		out.SetAmplitude(i, c1*in.Amplitude(i)+c2*in.Amplitude(i^bit))
	}
}

// multiQubit computes row r of the matrix product for each state, where r
// is the value of the k-bit field at target.
func multiQubit(in, out *grid.Grid, m *matrix.Matrix, target, k int, mask *grid.Mask, lo, hi int) {
	size := 1 << k
	field := (size - 1) << target
	for i := lo; i < hi; i++ {
		if mask != nil && !mask.Allows(i) {
			copy(out.Cell(i), in.Cell(i))
			continue
		}
		row := (i & field) >> target
		base := i &^ field
		var t complex128
		for col := 0; col < size; col++ {
			t += m.At(row, col) * in.Amplitude(base|col<<target)
		}
		out.SetAmplitude(i, t)
	}
}
