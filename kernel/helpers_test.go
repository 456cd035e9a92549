package kernel

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

// rgba builds a 4-channel grid the way the reference fixtures lay out data.
func rgba(t *testing.T, width, height int, data ...float32) *grid.Grid {
	t.Helper()
	g, err := grid.FromData(width, height, 4, data)
	require.NoError(t, err)
	return g
}

// seq returns 1..n as float32.
func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

func mask(t *testing.T, g *grid.Grid, c controls.Controls) *grid.Mask {
	t.Helper()
	m, err := c.MaskFor(g)
	require.NoError(t, err)
	return m
}

func randomGrid(t *testing.T, r *rand.Rand, qubits int) *grid.Grid {
	t.Helper()
	s := grid.ShapeFor(qubits)
	g, err := grid.New(s.Width, s.Height)
	require.NoError(t, err)
	for i := range g.Data {
		g.Data[i] = float32(r.NormFloat64())
	}
	return g
}

func randomMask(t *testing.T, r *rand.Rand, g *grid.Grid) *grid.Mask {
	t.Helper()
	m, err := grid.MaskFromFunc(g.Width, g.Height, func(int) bool { return r.IntN(2) == 1 })
	require.NoError(t, err)
	return m
}

// randomUnitary composes rotations and phases into a k-qubit unitary.
func randomUnitary(r *rand.Rand, k int) *matrix.Matrix {
	u := oneQubitUnitary(r)
	for i := 1; i < k; i++ {
		u = oneQubitUnitary(r).Kron(u)
	}
	if k >= 2 {
		mixed := matrix.Identity(1)
		for i := 2; i < k; i++ {
			mixed = mixed.Kron(matrix.Identity(2))
		}
		swap := mixed.Kron(matrix.Swap)
		u, _ = u.Mul(swap)
		u, _ = u.Mul(mixed.Kron(matrix.Identity(2).Kron(matrix.Hadamard)))
	}
	return u
}

func oneQubitUnitary(r *rand.Rand) *matrix.Matrix {
	a, _ := matrix.RotationX(r.Float64() * 6).Mul(matrix.Phase(r.Float64() * 6))
	b, _ := a.Mul(matrix.RotationY(r.Float64() * 6))
	return b
}

// smallChunks forces the errgroup fan-out even on tiny grids.
var smallChunks = New(Options{Workers: 4, ChunkSize: 3})
