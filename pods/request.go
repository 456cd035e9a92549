package pods

import (
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

// Opcode names an operation.
type Opcode string

const (
	OpUnitary   Opcode = "unitary"
	OpCycleAll  Opcode = "cycle_all"
	OpIncrement Opcode = "increment"
)

// Request is one operation with its parameters. Only the fields of Op
// are read: Matrix, Target and Mask for unitary; Shift for cycle_all;
// Mask, Index, Span and Amount for increment. A nil Mask allows every
// state.
type Request struct {
	Op     Opcode
	Input  *grid.Grid
	Mask   *grid.Mask
	Matrix *matrix.Matrix
	Target int
	Shift  int
	Index  int
	Span   int
	Amount int
}

// Qubits is the register width of the input, or 0 without one.
func (r Request) Qubits() int {
	if r.Input == nil {
		return 0
	}
	return r.Input.Qubits()
}
