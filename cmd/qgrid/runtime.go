package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openfluke/qgrid/config"
	"github.com/openfluke/qgrid/detector"
	"github.com/openfluke/qgrid/gpu"
	"github.com/openfluke/qgrid/kernel"
	"github.com/openfluke/qgrid/logging"
	"github.com/openfluke/qgrid/metrics"
	"github.com/openfluke/qgrid/pods"
)

// session bundles what a command needs to dispatch operations.
type session struct {
	cfg   config.Config
	log   *logging.Logger
	ec    *pods.ExecContext
	basic *metrics.Basic
	reg   *prometheus.Registry
}

// loadConfig applies flag overrides on top of the file and environment.
func loadConfig(g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.backend != "" {
		cfg.Backend = g.backend
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.metrics {
		cfg.Metrics = true
	}
	return cfg, cfg.Validate()
}

func newSession(ctx context.Context, g *globalFlags, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	log := logging.FromConfig(logOut, cfg.Log.Format, cfg.Log.Level)
	gpu.SetLogger(log)

	rt := &session{cfg: cfg, log: log, basic: metrics.NewBasic()}
	var collector metrics.Collector = rt.basic
	if cfg.Metrics {
		rt.reg = prometheus.NewRegistry()
		collector = metrics.Multi{rt.basic, metrics.NewPrometheus(rt.reg)}
	}

	rt.ec = pods.NewContext(ctx).
		WithCPU(kernel.New(kernel.Options{Workers: cfg.CPU.Workers, ChunkSize: cfg.CPU.ChunkSize})).
		WithLogger(log).
		WithMetrics(collector)

	if cfg.Backend == config.BackendCPU {
		return rt, nil
	}

	opts := gpu.Options{
		DynamicIndexing: cfg.GPU.DynamicIndexing,
		WorkgroupSize:   cfg.GPU.WorkgroupSize,
		BudgetBytes:     cfg.BudgetBytes(),
		ReadbackTimeout: cfg.GPU.ReadbackTimeout,
		Logger:          log,
	}
	if rep, err := detector.Detect(); err == nil {
		rt.ec.Report = rep
		if opts.WorkgroupSize == 0 {
			opts.WorkgroupSize = int(rep.Recommended.WorkgroupX)
		}
	}
	backend, err := pods.OpenGPU(opts)
	if err != nil {
		if cfg.Backend == config.BackendGPU {
			return nil, err
		}
		log.Info("gpu unavailable, using cpu", "error", err)
		return rt, nil
	}
	rt.ec.WithGPU(backend)
	return rt, nil
}

// report writes the Prometheus families gathered during the command.
func (rt *session) report(w io.Writer) error {
	if rt.reg == nil {
		return nil
	}
	families, err := rt.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%v %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s%v count=%d sum=%g\n", mf.GetName(), labels, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

var errUsage = errors.New("usage")
