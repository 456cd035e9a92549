package circuit

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/gates"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/pods"
)

const tol = 1e-6

func basis(t *testing.T, qubits, index int) *grid.Grid {
	t.Helper()
	g, err := grid.Basis(qubits, index)
	require.NoError(t, err)
	return g
}

func TestEvaluateBellPair(t *testing.T) {
	in := basis(t, 2, 0)
	out, err := Evaluate(context.Background(), nil, in, []Step{
		{Gate: gates.H, Qubit: 0},
		{Gate: gates.X, Qubit: 1, Controls: controls.Bit(0, true)},
	})
	require.NoError(t, err)

	h := 1 / math.Sqrt2
	p := out.Probabilities()
	assert.InDelta(t, h*h, p[0], tol)
	assert.InDelta(t, 0, p[1], tol)
	assert.InDelta(t, 0, p[2], tol)
	assert.InDelta(t, h*h, p[3], tol)
	assert.Equal(t, complex128(1), in.Amplitude(0), "input untouched")
}

func TestEvaluateErrorInjection(t *testing.T) {
	in := basis(t, 3, 0)
	steps := []Step{
		{Gate: gates.X, Qubit: 0},
		{Gate: gates.ErrorInjectionGate, Qubit: 2},
		{Gate: gates.X, Qubit: 1},
	}
	out, err := Evaluate(context.Background(), pods.NewContext(context.Background()), in, steps)
	require.Error(t, err)

	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Index)
	assert.Equal(t, "__error__", serr.Gate)

	var gerr *gates.GateEffectError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 2, gerr.Context["qubit"])
	assert.Equal(t, "927, I am a potato", gerr.Context["recognition_code"])

	require.NotNil(t, out)
	assert.Equal(t, complex128(1), out.Amplitude(1), "last good grid is after step 0")
	assert.Equal(t, complex128(1), in.Amplitude(0))

	states, err := Trace(context.Background(), nil, in, steps)
	require.Error(t, err)
	require.Len(t, states, 1)
	assert.True(t, states[0].ApproxEqual(out, 0))
}

func TestEvaluateFirstStepFailure(t *testing.T) {
	in := basis(t, 1, 0)
	out, err := Evaluate(context.Background(), nil, in, []Step{{Gate: gates.Swap, Qubit: 0}})
	require.Error(t, err)
	assert.Same(t, in, out)
}

func TestEvaluateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := basis(t, 2, 0)
	out, err := Evaluate(ctx, nil, in, []Step{{Gate: gates.H, Qubit: 0}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Same(t, in, out)
}

func TestEvaluateEffectWithoutState(t *testing.T) {
	g := gates.NewBuilder().SerializedID("void").
		Effect(1, func(gates.EffectContext) (*grid.Grid, error) { return nil, nil }).
		MustBuild()
	_, err := Evaluate(context.Background(), nil, basis(t, 1, 0), []Step{{Gate: g}})
	require.ErrorIs(t, err, ErrNoState)

	_, err = Evaluate(context.Background(), nil, basis(t, 1, 0), []Step{{}})
	require.ErrorIs(t, err, gates.ErrIncomplete)
}

const program = `
qubits: 3
initial: 1
steps:
  - gate: increment
    qubit: 0
    span: 3
    amount: 2
  - gate: cycle
    shift: 1
  - gate: RX
    qubit: 2
    theta: 0
  - gate: X
    qubit: 2
    controls:
      - {qubit: 0, on: false}
`

func TestProgram(t *testing.T) {
	p, err := ParseProgram([]byte(program))
	require.NoError(t, err)
	steps, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, "Controls(0:false)", steps[3].Controls.String())

	state, err := p.State()
	require.NoError(t, err)

	// 1 +2 -> 3, rotated left -> 6, identity, bit 0 off so flip bit 2 -> 2.
	out, err := Evaluate(context.Background(), nil, state, steps)
	require.NoError(t, err)
	assert.InDelta(t, 1, out.Probabilities()[2], tol)
}

func TestLoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(program), 0o644))
	p, err := LoadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Qubits)
}

func TestProgramErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown gate":           "qubits: 1\nsteps: [{gate: teleport}]",
		"bad increment":          "qubits: 2\nsteps: [{gate: increment, span: 0}]",
		"negative control":       "qubits: 2\nsteps: [{gate: X, qubit: 1, controls: [{qubit: -1, on: true}]}]",
		"control above register": "qubits: 2\nsteps: [{gate: X, qubit: 1, controls: [{qubit: 64, on: true}]}]",
	} {
		t.Run(name, func(t *testing.T) {
			p, err := ParseProgram([]byte(src))
			require.NoError(t, err)
			_, err = p.Compile()
			require.ErrorIs(t, err, ErrProgram)
		})
	}

	_, err := ParseProgram([]byte("qubits: [1"))
	require.ErrorIs(t, err, ErrProgram)

	_, err = (&Program{Qubits: 2, Initial: 4}).State()
	require.ErrorIs(t, err, ErrProgram)
	_, err = (&Program{}).State()
	require.True(t, errors.Is(err, ErrProgram))
}

func TestProgramRun(t *testing.T) {
	p, err := ParseProgram([]byte(program))
	require.NoError(t, err)
	out, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, out.Probabilities()[2], tol)

	_, err = (&Program{Qubits: 0}).Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrProgram)
}

func TestProgramRegisterCap(t *testing.T) {
	p, err := ParseProgram([]byte("qubits: 62\nsteps: []"))
	require.NoError(t, err)
	require.NotPanics(t, func() {
		_, err = p.Run(context.Background(), nil)
	})
	require.ErrorIs(t, err, ErrProgram)
}
