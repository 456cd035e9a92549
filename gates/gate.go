// Package gates defines gates: display metadata plus either a matrix the
// executors apply or an effect callback that transforms the state itself.
package gates

import (
	"context"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/internal/bits"
	"github.com/openfluke/qgrid/matrix"
	"github.com/openfluke/qgrid/pods"
)

// Info is the metadata every gate carries.
type Info struct {
	SerializedID string // stable identifier used in program files
	Symbol       string // short label drawn on the gate
	Title        string
	Blurb        string
	Drawer       string // painting style, e.g. "default" or "highlighted:red"
}

// Gate is either a *MatrixGate or an *EffectGate.
type Gate interface {
	Info() Info
	// Width is the number of consecutive qubits the gate acts on.
	Width() int
	gate()
}

// MatrixGate applies a fixed unitary through the operation boundary.
type MatrixGate struct {
	info   Info
	Matrix *matrix.Matrix
}

func (g *MatrixGate) Info() Info { return g.info }
func (g *MatrixGate) Width() int { return bits.Log2(g.Matrix.Dim()) }
func (*MatrixGate) gate()        {}

// EffectContext is what an effect sees: the current state, where the gate
// sits and how to dispatch register operations.
type EffectContext struct {
	Ctx      context.Context
	State    *grid.Grid
	Qubit    int
	Controls controls.Controls
	Exec     *pods.ExecContext
}

// EffectFunc computes the state after the gate. It must not modify
// ec.State.
type EffectFunc func(ec EffectContext) (*grid.Grid, error)

// EffectGate updates the state through a callback.
type EffectGate struct {
	info   Info
	width  int
	stable bool
	Effect EffectFunc
}

func (g *EffectGate) Info() Info { return g.info }
func (g *EffectGate) Width() int { return g.width }
func (*EffectGate) gate()        {}

// Stable reports whether the effect does not depend on time.
func (g *EffectGate) Stable() bool { return g.stable }
