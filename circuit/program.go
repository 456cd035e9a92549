package circuit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openfluke/qgrid/controls"
	"github.com/openfluke/qgrid/gates"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/pods"
)

// ErrProgram is returned for a program that cannot be compiled.
var ErrProgram = errors.New("qgrid/circuit: invalid program")

// Program is the YAML form of a circuit:
//
//	qubits: 3
//	initial: 0
//	steps:
//	  - gate: H
//	    qubit: 0
//	  - gate: X
//	    qubit: 1
//	    controls: [{qubit: 0, on: true}]
//	  - gate: increment
//	    qubit: 1
//	    span: 2
//	    amount: 1
//	  - gate: cycle
//	    shift: -1
type Program struct {
	Qubits  int           `yaml:"qubits"`
	Initial int           `yaml:"initial"`
	Steps   []ProgramStep `yaml:"steps"`
}

// ProgramStep is one gate placement. Theta is read by parametric gates,
// Span and Amount by increment, Shift by cycle.
type ProgramStep struct {
	Gate     string    `yaml:"gate"`
	Qubit    int       `yaml:"qubit"`
	Theta    float64   `yaml:"theta"`
	Span     int       `yaml:"span"`
	Amount   int       `yaml:"amount"`
	Shift    int       `yaml:"shift"`
	Controls []Control `yaml:"controls"`
}

// Control requires a qubit to be on or off.
type Control struct {
	Qubit int  `yaml:"qubit"`
	On    bool `yaml:"on"`
}

// ParseProgram decodes YAML.
func ParseProgram(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProgram, err)
	}
	return &p, nil
}

// LoadProgram reads and decodes the YAML file at path.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProgram(data)
}

// State returns the basis state the program starts from.
func (p *Program) State() (*grid.Grid, error) {
	if p.Qubits < 1 || p.Qubits > grid.MaxQubits {
		return nil, fmt.Errorf("%w: qubits must be in [1, %d], got %d", ErrProgram, grid.MaxQubits, p.Qubits)
	}
	if p.Initial < 0 || p.Initial >= 1<<p.Qubits {
		return nil, fmt.Errorf("%w: initial state %d out of range", ErrProgram, p.Initial)
	}
	return grid.Basis(p.Qubits, p.Initial)
}

// Compile resolves every step's gate.
func (p *Program) Compile() ([]Step, error) {
	steps := make([]Step, 0, len(p.Steps))
	for i, ps := range p.Steps {
		g, err := ps.resolve()
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrProgram, i, err)
		}
		c := controls.None
		for _, ctl := range ps.Controls {
			if ctl.Qubit < 0 || ctl.Qubit >= p.Qubits {
				return nil, fmt.Errorf("%w: step %d: control qubit %d outside register", ErrProgram, i, ctl.Qubit)
			}
			bit, err := controls.NewBit(ctl.Qubit, ctl.On)
			if err != nil {
				return nil, fmt.Errorf("%w: step %d: %v", ErrProgram, i, err)
			}
			c = c.And(bit)
		}
		steps = append(steps, Step{Gate: g, Qubit: ps.Qubit, Controls: c})
	}
	return steps, nil
}

func (ps ProgramStep) resolve() (gates.Gate, error) {
	switch ps.Gate {
	case "cycle":
		return gates.Cycle(ps.Shift), nil
	case "increment":
		if ps.Span < 1 {
			return nil, fmt.Errorf("increment span must be >= 1, got %d", ps.Span)
		}
		return gates.Increment(ps.Span, ps.Amount), nil
	}
	g, ok := gates.Parametric(ps.Gate, ps.Theta)
	if !ok {
		return nil, fmt.Errorf("unknown gate %q", ps.Gate)
	}
	return g, nil
}

// Run compiles p and evaluates it from its initial state. Like Evaluate,
// a failed step still returns the last good grid.
func (p *Program) Run(ctx context.Context, ec *pods.ExecContext) (*grid.Grid, error) {
	state, err := p.State()
	if err != nil {
		return nil, err
	}
	steps, err := p.Compile()
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, ec, state, steps)
}
