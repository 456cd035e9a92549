package gates

import (
	"sort"
	"sync"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

// ErrorInjectionGate fails whenever it is applied. It exercises the error
// paths of circuit evaluation.
var ErrorInjectionGate = NewBuilder().
	SerializedID("__error__").
	Symbol("ERR!").
	Title("Error Injection Gate").
	Blurb("Fails during circuit evaluation, for testing error paths.").
	Drawer("highlighted:red").
	Effect(1, func(ec EffectContext) (*grid.Grid, error) {
		return nil, &GateEffectError{
			Message: "Applied an Error Injection Gate",
			Context: map[string]any{
				"qubit":            ec.Qubit,
				"recognition_code": "927, I am a potato",
			},
		}
	}).
	StableEffect().
	MustBuild()

// Standard matrix gates.
var (
	X = NewBuilder().SerializedID("X").Title("Pauli X Gate").Blurb("The NOT gate.").Matrix(matrix.PauliX).MustBuild()
	Y = NewBuilder().SerializedID("Y").Title("Pauli Y Gate").Blurb("A combination of the X and Z gates.").Matrix(matrix.PauliY).MustBuild()
	Z = NewBuilder().SerializedID("Z").Title("Pauli Z Gate").Blurb("The phase flip gate.").Matrix(matrix.PauliZ).MustBuild()
	H = NewBuilder().SerializedID("H").Title("Hadamard Gate").Blurb("Creates simple superpositions.").Matrix(matrix.Hadamard).MustBuild()

	Swap = NewBuilder().SerializedID("Swap").Symbol("×").Title("Swap Gate").
		Blurb("Swaps the values of two adjacent qubits.").Matrix(matrix.Swap).MustBuild()
)

var (
	catalogMu sync.RWMutex
	catalog   = map[string]Gate{}
)

func init() {
	for _, g := range []Gate{X, Y, Z, H, Swap, ErrorInjectionGate} {
		Register(g)
	}
}

// Register makes g resolvable by its serialized id.
func Register(g Gate) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog[g.Info().SerializedID] = g
}

// Lookup resolves a serialized id.
func Lookup(id string) (Gate, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	g, ok := catalog[id]
	return g, ok
}

// IDs lists the registered serialized ids in order.
func IDs() []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make([]string, 0, len(catalog))
	for id := range catalog {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Parametric returns a matrix gate for a named rotation or phase with
// angle theta ("P", "RX", "RY"), or any name Lookup resolves.
func Parametric(name string, theta float64) (Gate, bool) {
	if g, ok := Lookup(name); ok {
		return g, true
	}
	m, ok := matrix.ByName(name, theta)
	if !ok {
		return nil, false
	}
	g, err := NewBuilder().SerializedID(name).Matrix(m).Build()
	if err != nil {
		return nil, false
	}
	return g, true
}
