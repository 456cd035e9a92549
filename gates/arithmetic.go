package gates

import (
	"fmt"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/pods"
)

// Cycle returns an effect gate rotating the whole register by shift bits.
// It ignores its qubit position.
func Cycle(shift int) Gate {
	return NewBuilder().
		SerializedID(fmt.Sprintf("cycle%+d", shift)).
		Symbol("↻").
		Title("Cycle Bits Gate").
		Blurb("Rotates every qubit of the register.").
		Effect(1, func(ec EffectContext) (*grid.Grid, error) {
			if !ec.Controls.IsNone() {
				return nil, fmt.Errorf("%w: %v", ErrUncontrollable, ec.Controls)
			}
			return pods.Dispatch(ec.Exec.WithContext(ec.Ctx), pods.Request{
				Op:    pods.OpCycleAll,
				Input: ec.State,
				Shift: shift,
			})
		}).
		StableEffect().
		MustBuild()
}

// Increment returns an effect gate adding amount, modulo 2^span, to the
// span-qubit sub-register starting at its qubit position.
func Increment(span, amount int) Gate {
	return NewBuilder().
		SerializedID(fmt.Sprintf("inc%d%+d", span, amount)).
		Symbol(fmt.Sprintf("%+d", amount)).
		Title("Increment Gate").
		Blurb("Adds a constant into a little-endian sub-register.").
		Effect(span, func(ec EffectContext) (*grid.Grid, error) {
			mask, err := maskFor(ec.Controls, ec.State)
			if err != nil {
				return nil, err
			}
			return pods.Dispatch(ec.Exec.WithContext(ec.Ctx), pods.Request{
				Op:     pods.OpIncrement,
				Input:  ec.State,
				Mask:   mask,
				Index:  ec.Qubit,
				Span:   span,
				Amount: amount,
			})
		}).
		StableEffect().
		MustBuild()
}

// maskFor materializes c over g, or returns nil when c constrains nothing.
func maskFor(c controls.Controls, g *grid.Grid) (*grid.Mask, error) {
	if c.IsNone() {
		return nil, nil
	}
	return c.MaskFor(g)
}
