// Package controls describes which branches of a superposition an
// operation may touch, and rasterizes that predicate into a grid.Mask.
package controls

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openfluke/qgrid/grid"
)

// Controls is a conjunction of (bit, required value) constraints.
// The zero value has no constraints and matches every state.
type Controls struct {
	inclusion uint64 // bits that are constrained
	desired   uint64 // required values of the constrained bits
	never     bool   // a bit was required to be both 0 and 1
}

// MaxBit is the highest qubit position a predicate can constrain.
const MaxBit = 63

// ErrBitRange is returned by NewBit for a position outside [0, MaxBit].
var ErrBitRange = errors.New("qgrid/controls: bit position out of range")

// None matches every state.
var None = Controls{}

// Bit requires qubit pos to be on (true) or off (false).
//
// State indices never set a bit above MaxBit, so requiring such a bit on
// matches nothing and requiring it off matches everything. A negative
// position matches nothing; use NewBit to reject it instead.
func Bit(pos int, on bool) Controls {
	switch {
	case pos < 0:
		return Controls{never: true}
	case pos > MaxBit:
		return Controls{never: on}
	}
	c := Controls{inclusion: 1 << uint(pos)}
	if on {
		c.desired = 1 << uint(pos)
	}
	return c
}

// NewBit is Bit for untrusted positions.
func NewBit(pos int, on bool) (Controls, error) {
	if pos < 0 || pos > MaxBit {
		return Controls{}, fmt.Errorf("%w: %d", ErrBitRange, pos)
	}
	return Bit(pos, on), nil
}

// And combines two predicates. Conflicting requirements on the same bit
// produce a predicate that matches nothing.
func (c Controls) And(other Controls) Controls {
	shared := c.inclusion & other.inclusion
	return Controls{
		inclusion: c.inclusion | other.inclusion,
		desired:   c.desired | other.desired,
		never:     c.never || other.never || (c.desired^other.desired)&shared != 0,
	}
}

// IsNone reports whether the predicate has no constraints.
func (c Controls) IsNone() bool { return c.inclusion == 0 && !c.never }

// Allows reports whether state index i satisfies every constraint.
func (c Controls) Allows(i int) bool {
	return !c.never && uint64(i)&c.inclusion == c.desired
}

// Mask rasterizes the predicate onto a width x height grid.
func (c Controls) Mask(width, height int) (*grid.Mask, error) {
	return grid.MaskFromFunc(width, height, c.Allows)
}

// MaskFor rasterizes the predicate onto the shape of g.
func (c Controls) MaskFor(g *grid.Grid) (*grid.Mask, error) {
	return c.Mask(g.Width, g.Height)
}

func (c Controls) String() string {
	if c.never {
		return "Controls(never)"
	}
	if c.inclusion == 0 {
		return "Controls(none)"
	}
	var parts []string
	for b := 0; b < 64; b++ {
		if c.inclusion&(1<<uint(b)) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%t", b, c.desired&(1<<uint(b)) != 0))
	}
	return "Controls(" + strings.Join(parts, ", ") + ")"
}
