package gates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
	"github.com/openfluke/qgrid/pods"
)

func TestErrorInjectionGate(t *testing.T) {
	info := ErrorInjectionGate.Info()
	assert.Equal(t, "__error__", info.SerializedID)
	assert.Equal(t, "ERR!", info.Symbol)
	assert.Equal(t, "Error Injection Gate", info.Title)

	eg, ok := ErrorInjectionGate.(*EffectGate)
	require.True(t, ok)
	assert.True(t, eg.Stable())
	assert.Equal(t, 1, eg.Width())

	out, err := eg.Effect(EffectContext{Qubit: 3})
	assert.Nil(t, out)

	var gerr *GateEffectError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 3, gerr.Context["qubit"])
	assert.Equal(t, "927, I am a potato", gerr.Context["recognition_code"])
	assert.Equal(t, "Applied an Error Injection Gate (qubit=3, recognition_code=927, I am a potato)", err.Error())
}

func TestGateEffectErrorThroughWrapping(t *testing.T) {
	base := &GateEffectError{Message: "boom"}
	wrapped := errors.Join(errors.New("step 2"), base)

	var gerr *GateEffectError
	require.ErrorAs(t, wrapped, &gerr)
	assert.Same(t, base, gerr)
	assert.Equal(t, "boom", gerr.Error())
}

func TestBuilder(t *testing.T) {
	g, err := NewBuilder().SerializedID("H2").Title("Double Hadamard").
		Matrix(matrix.Hadamard.Kron(matrix.Hadamard)).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Width())
	assert.Equal(t, "H2", g.Info().Symbol, "symbol defaults to the id")
	assert.Equal(t, "default", g.Info().Drawer)
	_, ok := g.(*MatrixGate)
	assert.True(t, ok)

	noop := func(ec EffectContext) (*grid.Grid, error) { return ec.State.Clone(), nil }
	tests := map[string]*Builder{
		"no id":     NewBuilder().Matrix(matrix.PauliX),
		"neither":   NewBuilder().SerializedID("a"),
		"both":      NewBuilder().SerializedID("b").Matrix(matrix.PauliX).Effect(1, noop),
		"bad width": NewBuilder().SerializedID("c").Effect(0, noop),
		"bad dim":   NewBuilder().SerializedID("d").Matrix(matrix.Identity(3)),
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build()
			require.ErrorIs(t, err, ErrIncomplete)
		})
	}
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{"H", "Swap", "X", "Y", "Z", "__error__"}, IDs())

	g, ok := Lookup("Swap")
	require.True(t, ok)
	assert.Equal(t, 2, g.Width())

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestParametric(t *testing.T) {
	g, ok := Parametric("RX", 0)
	require.True(t, ok)
	mg := g.(*MatrixGate)
	assert.True(t, mg.Matrix.ApproxEqual(matrix.Identity(2), 1e-12))

	g, ok = Parametric("H", 1)
	require.True(t, ok)
	assert.Same(t, H, g)

	_, ok = Parametric("teleport", 0)
	assert.False(t, ok)
}

func TestArithmeticGates(t *testing.T) {
	ec := pods.NewContext(context.Background())
	in, err := grid.Basis(3, 1)
	require.NoError(t, err)

	out, err := Cycle(1).(*EffectGate).Effect(EffectContext{Ctx: context.Background(), State: in, Exec: ec})
	require.NoError(t, err)
	assert.Equal(t, complex128(1), out.Amplitude(2))

	inc := Increment(2, 3).(*EffectGate)
	assert.Equal(t, 2, inc.Width())
	out, err = inc.Effect(EffectContext{Ctx: context.Background(), State: in, Qubit: 1, Exec: ec})
	require.NoError(t, err)
	assert.Equal(t, complex128(1), out.Amplitude(7))

	// Controlled on qubit 0 being off: state 1 is left alone.
	out, err = inc.Effect(EffectContext{Ctx: context.Background(), State: in, Qubit: 1,
		Controls: controls.Bit(0, false), Exec: ec})
	require.NoError(t, err)
	assert.Equal(t, complex128(1), out.Amplitude(1))

	_, err = Cycle(-1).(*EffectGate).Effect(EffectContext{Ctx: context.Background(), State: in,
		Controls: controls.Bit(0, true), Exec: ec})
	require.ErrorIs(t, err, ErrUncontrollable)
	assert.NotErrorIs(t, err, ErrIncomplete)
}
