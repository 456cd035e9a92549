package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
	"github.com/openfluke/qgrid/pods"
)

func newBenchCmd(g *globalFlags) *cobra.Command {
	var (
		qubits     int
		iterations int
		op         string
		width      int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated dispatches of one register operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if qubits < 1 || qubits > grid.MaxQubits {
				return fmt.Errorf("%w: --qubits must be in [1, %d]", errUsage, grid.MaxQubits)
			}
			if iterations < 1 {
				return fmt.Errorf("%w: --iterations must be >= 1", errUsage)
			}
			if width < 1 || width > qubits {
				return fmt.Errorf("%w: --width must be in [1, %d]", errUsage, qubits)
			}
			s, err := newSession(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			state, err := randomState(qubits)
			if err != nil {
				return err
			}
			m := hadamards(width)

			var elapsed time.Duration
			for i := 0; i < iterations; i++ {
				req := pods.Request{Op: pods.Opcode(op), Input: state}
				switch req.Op {
				case pods.OpUnitary:
					req.Matrix, req.Target = m, i%(qubits-width+1)
				case pods.OpCycleAll:
					req.Shift = 1
				case pods.OpIncrement:
					req.Span, req.Amount = width, 1
				}
				start := time.Now()
				next, err := pods.Dispatch(s.ec, req)
				if err != nil {
					return err
				}
				elapsed += time.Since(start)
				state = next
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "op=%s backend=%s qubits=%d iterations=%d\n", op, s.ec.BackendName(), qubits, iterations)
			fmt.Fprintf(w, "total=%s avg=%s norm=%.6f\n", elapsed, elapsed/time.Duration(iterations), state.Norm())
			st := s.basic.Stats()[op]
			fmt.Fprintf(w, "count=%d errors=%d fallbacks=%d\n", st.Count, st.Errors, st.Fallbacks)
			return s.report(w)
		},
	}
	f := cmd.Flags()
	f.IntVar(&qubits, "qubits", 20, "register width")
	f.IntVar(&iterations, "iterations", 10, "dispatches to time")
	f.StringVar(&op, "op", string(pods.OpUnitary), "unitary, cycle_all or increment")
	f.IntVar(&width, "width", 1, "qubits spanned by the unitary or increment")
	return cmd
}

// hadamards returns H tensored width times.
func hadamards(width int) *matrix.Matrix {
	m := matrix.Hadamard
	for i := 1; i < width; i++ {
		m = m.Kron(matrix.Hadamard)
	}
	return m
}

// randomState returns a normalized random register.
func randomState(qubits int) (*grid.Grid, error) {
	s := grid.ShapeFor(qubits)
	g, err := grid.New(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	r := rand.New(rand.NewPCG(uint64(qubits), 1))
	for i := range g.Data {
		g.Data[i] = float32(r.NormFloat64())
	}
	norm := float32(math.Sqrt(g.Norm()))
	for i := range g.Data {
		g.Data[i] /= norm
	}
	return g, nil
}
