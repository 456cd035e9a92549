// Package circuit evaluates a sequence of gate placements against a state.
package circuit

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/gates"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/pods"
)

// ErrNoState is returned when an effect produces neither a grid nor an error.
var ErrNoState = errors.New("qgrid/circuit: effect returned no state")

// Step places a gate with its lowest qubit at Qubit.
type Step struct {
	Gate     gates.Gate
	Qubit    int
	Controls controls.Controls
}

// StepError reports the step a circuit failed at.
type StepError struct {
	Index int
	Gate  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Gate, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Evaluate applies steps to state in order and returns the final grid.
// On failure it returns the last grid that was fully produced, which is
// state itself if the first step fails, and a *StepError. No grid handed
// in or produced is modified.
func Evaluate(ctx context.Context, ec *pods.ExecContext, state *grid.Grid, steps []Step) (*grid.Grid, error) {
	cur := state
	err := walk(ctx, ec, state, steps, func(_ int, g *grid.Grid) { cur = g })
	return cur, err
}

// Trace is Evaluate that also returns the grid after every completed step.
func Trace(ctx context.Context, ec *pods.ExecContext, state *grid.Grid, steps []Step) ([]*grid.Grid, error) {
	out := make([]*grid.Grid, 0, len(steps))
	err := walk(ctx, ec, state, steps, func(_ int, g *grid.Grid) { out = append(out, g) })
	return out, err
}

func walk(ctx context.Context, ec *pods.ExecContext, state *grid.Grid, steps []Step, emit func(int, *grid.Grid)) error {
	if ec == nil {
		ec = pods.NewContext(ctx)
	}
	ec = ec.WithContext(ctx)

	cur := state
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i, Gate: gateID(s.Gate), Err: err}
		}
		next, err := apply(ctx, ec, cur, s)
		if err != nil {
			ec.Log.WarnContext(ctx, "circuit step failed", "step", i, "gate", gateID(s.Gate), "error", err)
			return &StepError{Index: i, Gate: gateID(s.Gate), Err: err}
		}
		cur = next
		emit(i, cur)
	}
	return nil
}

func apply(ctx context.Context, ec *pods.ExecContext, cur *grid.Grid, s Step) (*grid.Grid, error) {
	switch g := s.Gate.(type) {
	case *gates.MatrixGate:
		req := pods.Request{Op: pods.OpUnitary, Input: cur, Matrix: g.Matrix, Target: s.Qubit}
		if !s.Controls.IsNone() {
			mask, err := s.Controls.MaskFor(cur)
			if err != nil {
				return nil, err
			}
			req.Mask = mask
		}
		return pods.Dispatch(ec, req)
	case *gates.EffectGate:
		next, err := g.Effect(gates.EffectContext{
			Ctx:      ctx,
			State:    cur,
			Qubit:    s.Qubit,
			Controls: s.Controls,
			Exec:     ec,
		})
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, ErrNoState
		}
		return next, nil
	case nil:
		return nil, fmt.Errorf("%w: nil gate", gates.ErrIncomplete)
	default:
		return nil, fmt.Errorf("%w: unsupported gate %T", gates.ErrIncomplete, g)
	}
}

func gateID(g gates.Gate) string {
	if g == nil {
		return "<nil>"
	}
	return g.Info().SerializedID
}
