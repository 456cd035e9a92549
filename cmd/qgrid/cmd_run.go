package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/openfluke/qgrid/circuit"
	"github.com/openfluke/qgrid/grid"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		programPath string
		qubits      int
		threshold   float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a YAML circuit program and print the outcome probabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if programPath == "" {
				return fmt.Errorf("%w: --program is required", errUsage)
			}
			s, err := newSession(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := circuit.LoadProgram(programPath)
			if err != nil {
				return err
			}
			if qubits > 0 {
				p.Qubits = qubits
			}
			out, err := p.Run(cmd.Context(), s.ec)
			if out == nil {
				return err
			}
			printProbabilities(cmd.OutOrStdout(), out, threshold)
			if rerr := s.report(cmd.OutOrStdout()); rerr != nil {
				return rerr
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&programPath, "program", "", "YAML program file")
	f.IntVar(&qubits, "qubits", 0, "register width (overrides the program)")
	f.Float64Var(&threshold, "threshold", 1e-9, "hide outcomes below this probability")
	return cmd
}

// printProbabilities lists outcomes by state index in binary.
func printProbabilities(w io.Writer, g *grid.Grid, threshold float64) {
	n := g.Qubits()
	for i, p := range g.Probabilities() {
		if p < threshold {
			continue
		}
		fmt.Fprintf(w, "|%0*b>  %.6f\n", n, i, p)
	}
}
