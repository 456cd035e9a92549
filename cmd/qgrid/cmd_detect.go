package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfluke/qgrid/detector"
)

func newDetectCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report the GPU adapter and host CPU capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := detector.Detect()
			if err != nil {
				// No adapter is a valid answer: report the host alone.
				rep = &detector.Report{Runtime: "native", Backend: "none", Host: detector.Host()}
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep, err)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(w io.Writer, rep *detector.Report, probeErr error) {
	h := rep.Host
	fmt.Fprintf(w, "Host:      %s/%s, %d CPUs, GOMAXPROCS=%d\n", h.GOOS, h.GOARCH, h.NumCPU, h.GOMAXPROCS)
	if len(h.Features) > 0 {
		fmt.Fprintf(w, "CPU:       %s\n", strings.Join(h.Features, " "))
	}
	if probeErr != nil {
		fmt.Fprintf(w, "GPU:       unavailable (%v)\n", probeErr)
		return
	}
	fmt.Fprintf(w, "GPU:       %s (%s, %s)\n", rep.Name, rep.AdapterType, rep.Backend)
	fmt.Fprintf(w, "Workgroup: %d\n", rep.Recommended.WorkgroupX)
	fmt.Fprintf(w, "Budget:    %d MiB\n", rep.Recommended.BudgetBytes>>20)
	fmt.Fprintf(w, "MaxQubits: %d\n", rep.MaxQubits)
}
