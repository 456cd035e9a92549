package gates

import (
	"errors"
	"fmt"

	"github.com/openfluke/qgrid/internal/bits"
	"github.com/openfluke/qgrid/matrix"
)

// ErrIncomplete is returned by Build for a gate without an identifier or
// with other than exactly one of a matrix and an effect.
var ErrIncomplete = errors.New("qgrid/gates: incomplete gate")

// Builder assembles a gate.
type Builder struct {
	info   Info
	m      *matrix.Matrix
	effect EffectFunc
	width  int
	stable bool
}

// NewBuilder returns an empty builder with the default drawer.
func NewBuilder() *Builder {
	return &Builder{info: Info{Drawer: "default"}, width: 1}
}

func (b *Builder) SerializedID(id string) *Builder { b.info.SerializedID = id; return b }
func (b *Builder) Symbol(s string) *Builder        { b.info.Symbol = s; return b }
func (b *Builder) Title(s string) *Builder         { b.info.Title = s; return b }
func (b *Builder) Blurb(s string) *Builder         { b.info.Blurb = s; return b }
func (b *Builder) Drawer(s string) *Builder        { b.info.Drawer = s; return b }

// Matrix makes the gate a matrix gate.
func (b *Builder) Matrix(m *matrix.Matrix) *Builder {
	b.m = m
	return b
}

// Effect makes the gate an effect gate spanning width qubits.
func (b *Builder) Effect(width int, fn EffectFunc) *Builder {
	b.width = width
	b.effect = fn
	return b
}

// StableEffect marks the effect as time-independent.
func (b *Builder) StableEffect() *Builder {
	b.stable = true
	return b
}

// Build returns the gate.
func (b *Builder) Build() (Gate, error) {
	if b.info.SerializedID == "" {
		return nil, fmt.Errorf("%w: no serialized id", ErrIncomplete)
	}
	if b.info.Symbol == "" {
		b.info.Symbol = b.info.SerializedID
	}
	switch {
	case b.m != nil && b.effect != nil:
		return nil, fmt.Errorf("%w: %s has both a matrix and an effect", ErrIncomplete, b.info.SerializedID)
	case b.m != nil:
		if !bits.IsPowerOf2(b.m.Dim()) || b.m.Dim() < 2 {
			return nil, fmt.Errorf("%w: %s matrix size %d", ErrIncomplete, b.info.SerializedID, b.m.Dim())
		}
		return &MatrixGate{info: b.info, Matrix: b.m}, nil
	case b.effect != nil:
		if b.width < 1 {
			return nil, fmt.Errorf("%w: %s effect width %d", ErrIncomplete, b.info.SerializedID, b.width)
		}
		return &EffectGate{info: b.info, width: b.width, stable: b.stable, Effect: b.effect}, nil
	default:
		return nil, fmt.Errorf("%w: %s has neither a matrix nor an effect", ErrIncomplete, b.info.SerializedID)
	}
}

// MustBuild is Build for package-level gate definitions.
func (b *Builder) MustBuild() Gate {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
