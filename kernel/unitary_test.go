package kernel

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

func unitaryFixture(t *testing.T) *grid.Grid {
	return rgba(t, 4, 2,
		2, 3, 0, 0,
		4, 5, 0, 0,
		6, 7, 0, 0,
		8, 9, 0, 0,
		2, 3, 0, 0,
		5, 7, 0, 0,
		11, 13, 0, 0,
		17, 19, 0, 0,
	)
}

func TestApplyUnitaryControls(t *testing.T) {
	ctx := context.Background()
	in := unitaryFixture(t)
	m := matrix.MustSquare(1, -1i, 1i, -1)

	tests := []struct {
		name   string
		target int
		ctl    controls.Controls
		want   []float32
	}{
		{"bit 3 off", 0, controls.Bit(3, false), []float32{
			7, -1, 0, 0,
			-7, -3, 0, 0,
			15, -1, 0, 0,
			-15, -3, 0, 0,
			9, -2, 0, 0,
			-8, -5, 0, 0,
			30, -4, 0, 0,
			-30, -8, 0, 0,
		}},
		{"bit 1 off", 0, controls.Bit(1, false), []float32{
			7, -1, 0, 0,
			-7, -3, 0, 0,
			6, 7, 0, 0,
			8, 9, 0, 0,
			9, -2, 0, 0,
			-8, -5, 0, 0,
			11, 13, 0, 0,
			17, 19, 0, 0,
		}},
		{"bit 1 on", 0, controls.Bit(1, true), []float32{
			2, 3, 0, 0,
			4, 5, 0, 0,
			15, -1, 0, 0,
			-15, -3, 0, 0,
			2, 3, 0, 0,
			5, 7, 0, 0,
			30, -4, 0, 0,
			-30, -8, 0, 0,
		}},
		{"bit 2 off", 0, controls.Bit(2, false), []float32{
			7, -1, 0, 0,
			-7, -3, 0, 0,
			15, -1, 0, 0,
			-15, -3, 0, 0,
			2, 3, 0, 0,
			5, 7, 0, 0,
			11, 13, 0, 0,
			17, 19, 0, 0,
		}},
		{"target 1", 1, controls.Bit(3, false), []float32{
			9, -3, 0, 0,
			13, -3, 0, 0,
			-9, -5, 0, 0,
			-13, -5, 0, 0,
			15, -8, 0, 0,
			24, -10, 0, 0,
			-14, -11, 0, 0,
			-24, -14, 0, 0,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyUnitary(ctx, in, m, tt.target, mask(t, in, tt.ctl))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Data)
		})
	}

	t.Run("zero matrix", func(t *testing.T) {
		out, err := ApplyUnitary(ctx, in, matrix.Zero(2), 0, mask(t, in, controls.Bit(3, false)))
		require.NoError(t, err)
		assert.Equal(t, make([]float32, 32), out.Data)
	})
}

func TestApplyUnitaryMatrixEntries(t *testing.T) {
	in := rgba(t, 2, 1,
		1, 2, 0, 0,
		3, 27, 0, 0,
	)
	full := mask(t, in, controls.None)
	tests := []struct {
		m    *matrix.Matrix
		want []float32
	}{
		{matrix.MustSquare(1, 0, 0, 0), []float32{1, 2, 0, 0, 0, 0, 0, 0}},
		{matrix.MustSquare(0, 1, 0, 0), []float32{3, 27, 0, 0, 0, 0, 0, 0}},
		{matrix.MustSquare(0, 0, 1, 0), []float32{0, 0, 0, 0, 1, 2, 0, 0}},
		{matrix.MustSquare(0, 0, 0, 1), []float32{0, 0, 0, 0, 3, 27, 0, 0}},
	}
	for _, tt := range tests {
		out, err := ApplyUnitary(context.Background(), in, tt.m, 0, full)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.Data, tt.m.String())
	}
}

func TestApplyUnitaryDoesNotTouchInput(t *testing.T) {
	in := unitaryFixture(t)
	before := in.Clone()
	out, err := ApplyUnitary(context.Background(), in, matrix.Hadamard, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, before.Data, in.Data)
	assert.NotSame(t, &in.Data[0], &out.Data[0])
}

func TestApplyUnitaryValidation(t *testing.T) {
	ctx := context.Background()
	in := unitaryFixture(t)

	wrongShape, err := grid.FullMask(2, 4)
	require.NoError(t, err)
	_, err = ApplyUnitary(ctx, in, matrix.PauliX, 0, wrongShape)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = ApplyUnitary(ctx, in, matrix.Identity(3), 0, nil)
	require.ErrorIs(t, err, ErrUnsupportedSize)

	big, err := grid.New(64, 32)
	require.NoError(t, err)
	_, err = ApplyUnitary(ctx, big, matrix.Identity(32), 0, nil)
	require.ErrorIs(t, err, ErrUnsupportedSize)

	_, err = ApplyUnitary(ctx, in, matrix.Identity(1), 0, nil)
	require.ErrorIs(t, err, ErrUnsupportedSize)

	_, err = ApplyUnitary(ctx, in, matrix.Swap, 2, nil)
	require.ErrorIs(t, err, ErrQubitRange)

	_, err = ApplyUnitary(ctx, in, matrix.PauliX, -1, nil)
	require.ErrorIs(t, err, ErrQubitRange)

	single, err := grid.NewWithChannels(2, 2, 1)
	require.NoError(t, err)
	_, err = ApplyUnitary(ctx, single, matrix.PauliX, 0, nil)
	require.ErrorIs(t, err, ErrChannels)
}

func TestApplyUnitaryIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for qubits := 1; qubits <= 6; qubits++ {
		in := randomGrid(t, r, qubits)
		full, err := grid.FullMask(in.Width, in.Height)
		require.NoError(t, err)
		for target := 0; target < qubits; target++ {
			out, err := smallChunks.ApplyUnitary(context.Background(), in, matrix.Identity(2), target, full)
			require.NoError(t, err)
			assert.Equal(t, in.Data, out.Data)
		}
	}
}

func TestApplyUnitaryPreservesNorm(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for k := 1; k <= MaxUnitaryQubits; k++ {
		u := randomUnitary(r, k)
		require.True(t, u.IsUnitary(1e-9))
		in := randomGrid(t, r, 6)
		for target := 0; target+k <= 6; target++ {
			out, err := smallChunks.ApplyUnitary(context.Background(), in, u, target, nil)
			require.NoError(t, err)
			assert.InEpsilon(t, in.Norm(), out.Norm(), 1e-4, "k=%d target=%d", k, target)
		}
	}
}

func TestApplyUnitaryGating(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for k := 1; k <= MaxUnitaryQubits; k++ {
		in := randomGrid(t, r, 5)
		m := randomMask(t, r, in)
		out, err := smallChunks.ApplyUnitary(context.Background(), in, randomUnitary(r, k), 5-k, m)
		require.NoError(t, err)
		for i := 0; i < in.Len(); i++ {
			if !m.Allows(i) {
				assert.Equal(t, in.Cell(i), out.Cell(i), "k=%d i=%d", k, i)
			}
		}
	}
}

func TestPathAgreement(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(7, 8))
	in := randomGrid(t, r, 5)
	ctl := mask(t, in, controls.Bit(4, true))
	for target := 0; target+2 <= 4; target++ {
		low, high := oneQubitUnitary(r), oneQubitUnitary(r)

		step, err := ApplyUnitary(ctx, in, low, target, ctl)
		require.NoError(t, err)
		sequential, err := ApplyUnitary(ctx, step, high, target+1, ctl)
		require.NoError(t, err)

		combined, err := ApplyUnitary(ctx, in, high.Kron(low), target, ctl)
		require.NoError(t, err)

		assert.True(t, sequential.ApproxEqual(combined, 1e-5), "target=%d", target)
	}
}

func TestGeneralizedPathMatchesDenseProduct(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	for k := 2; k <= MaxUnitaryQubits; k++ {
		in := randomGrid(t, r, k)
		u := randomUnitary(r, k)
		out, err := ApplyUnitary(context.Background(), in, u, 0, nil)
		require.NoError(t, err)
		amps := in.Amplitudes()
		for row := 0; row < u.Dim(); row++ {
			var want complex128
			for col := 0; col < u.Dim(); col++ {
				want += u.At(row, col) * amps[col]
			}
			got := out.Amplitude(row)
			assert.InDelta(t, real(want), real(got), 1e-5)
			assert.InDelta(t, imag(want), imag(got), 1e-5)
		}
	}
}

func TestApplyUnitaryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := unitaryFixture(t)
	out, err := smallChunks.ApplyUnitary(ctx, in, matrix.PauliX, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}
