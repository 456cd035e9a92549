package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	backend    string
	logLevel   string
	metrics    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "qgrid",
		Short:         "Data-parallel state-vector operations on CPU and WebGPU",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file")
	pf.StringVar(&g.backend, "backend", "", "cpu, gpu or auto (overrides config)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.BoolVar(&g.metrics, "metrics", false, "collect Prometheus metrics and print them on exit")

	root.AddCommand(newDetectCmd(g), newRunCmd(g), newBenchCmd(g))
	return root
}
