package kernel

import (
	"fmt"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/internal/bits"
	"github.com/openfluke/qgrid/matrix"
)

// MaxUnitaryQubits caps the width of a unitary. Per-cell cost grows with
// the square of the matrix dimension.
const MaxUnitaryQubits = 4

// ValidateGrid checks the structural invariants of an amplitude grid.
func ValidateGrid(g *grid.Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", grid.ErrInvalidShape)
	}
	if err := g.Shape().Validate(); err != nil {
		return err
	}
	if g.Channels < 1 || len(g.Data) != g.Len()*g.Channels {
		return fmt.Errorf("%w: %d values for %d cells of %d channels",
			grid.ErrDataLength, len(g.Data), g.Len(), g.Channels)
	}
	return nil
}

// ValidateMask checks that mask gates g. A nil mask lets every state through.
func ValidateMask(g *grid.Grid, mask *grid.Mask) error {
	if mask == nil {
		return nil
	}
	if mask.Shape() != g.Shape() {
		return fmt.Errorf("%w: mask %dx%d, grid %dx%d",
			ErrShapeMismatch, mask.Width, mask.Height, g.Width, g.Height)
	}
	if len(mask.Data) != g.Len() {
		return fmt.Errorf("%w: mask has %d flags for %d states", ErrShapeMismatch, len(mask.Data), g.Len())
	}
	return nil
}

// ValidateUnitary checks every precondition of ApplyUnitary and returns
// the number of qubits k the matrix acts on.
func ValidateUnitary(in *grid.Grid, m *matrix.Matrix, target int, mask *grid.Mask) (int, error) {
	if err := ValidateGrid(in); err != nil {
		return 0, err
	}
	if err := ValidateMask(in, mask); err != nil {
		return 0, err
	}
	if m == nil {
		return 0, fmt.Errorf("%w: nil matrix", ErrUnsupportedSize)
	}
	dim := m.Dim()
	if dim < 2 || !bits.IsPowerOf2(dim) {
		return 0, fmt.Errorf("%w: matrix size %d isn't a power of 2", ErrUnsupportedSize, dim)
	}
	k := bits.Log2(dim)
	if k > MaxUnitaryQubits {
		return 0, fmt.Errorf("%w: matrix is past %d qubits (%d)", ErrUnsupportedSize, MaxUnitaryQubits, k)
	}
	if in.Channels < grid.AmplitudeChannels {
		return 0, fmt.Errorf("%w: have %d", ErrChannels, in.Channels)
	}
	if target < 0 || target+k > in.Qubits() {
		return 0, fmt.Errorf("%w: qubits [%d, %d) on a %d-qubit register",
			ErrQubitRange, target, target+k, in.Qubits())
	}
	return k, nil
}

// ValidateIncrement checks every precondition of Increment.
func ValidateIncrement(in *grid.Grid, mask *grid.Mask, index, span int) error {
	if err := ValidateGrid(in); err != nil {
		return err
	}
	if err := ValidateMask(in, mask); err != nil {
		return err
	}
	if span < 1 || index < 0 || index+span > in.Qubits() {
		return fmt.Errorf("%w: field [%d, %d) on a %d-qubit register",
			ErrQubitRange, index, index+span, in.Qubits())
	}
	return nil
}

// CycleDistance converts a shift amount into the left-rotation distance
// applied to every state index: (-shift) mod n. A register with no qubits
// has distance 0.
func CycleDistance(qubits, shift int) int {
	if qubits == 0 {
		return 0
	}
	return bits.ProperMod(-shift, qubits)
}

// IncrementOffset converts an amount into the value subtracted from the
// field of each output index: amount mod 2^span.
func IncrementOffset(span, amount int) int {
	return bits.ProperMod(amount, 1<<span)
}
