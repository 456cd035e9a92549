// Package pods is the operation boundary: every register operation enters
// as a Request, is routed to the pod registered for its opcode and runs on
// the CPU executor or the GPU backend.
package pods

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfluke/qgrid/detector"
	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/kernel"
	"github.com/openfluke/qgrid/logging"
	"github.com/openfluke/qgrid/matrix"
	"github.com/openfluke/qgrid/metrics"
)

// Pod runs one opcode.
type Pod interface {
	Name() Opcode
	Run(ec *ExecContext, req Request) (*grid.Grid, error)
}

// Backend is an executor of the register operations. *kernel.Executor and
// *gpu.Executor both satisfy it.
type Backend interface {
	ApplyUnitary(ctx context.Context, in *grid.Grid, m *matrix.Matrix, target int, mask *grid.Mask) (*grid.Grid, error)
	CycleAllBits(ctx context.Context, in *grid.Grid, shift int) (*grid.Grid, error)
	Increment(ctx context.Context, in *grid.Grid, mask *grid.Mask, index, span, amount int) (*grid.Grid, error)
}

// GPUHooks is the optional GPU backend. It is noopGPU unless built with
// -tags=gpu and a device opened.
type GPUHooks = Backend

type noopGPU struct{}

func (noopGPU) ApplyUnitary(context.Context, *grid.Grid, *matrix.Matrix, int, *grid.Mask) (*grid.Grid, error) {
	return nil, ErrNoGPU
}

func (noopGPU) CycleAllBits(context.Context, *grid.Grid, int) (*grid.Grid, error) {
	return nil, ErrNoGPU
}

func (noopGPU) Increment(context.Context, *grid.Grid, *grid.Mask, int, int, int) (*grid.Grid, error) {
	return nil, ErrNoGPU
}

// ExecContext carries execution choices and capabilities.
type ExecContext struct {
	Ctx     context.Context
	UseGPU  bool             // route to GPU first; fall back to CPU on device failure
	Report  *detector.Report // detector output, nil when not probed
	GPU     GPUHooks
	CPU     *kernel.Executor
	Log     *logging.Logger
	Metrics metrics.Collector
	Tracer  trace.Tracer
}

// NewContext returns a CPU-only context on the default executor with
// logging and metrics disabled.
func NewContext(ctx context.Context) *ExecContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecContext{
		Ctx:     ctx,
		GPU:     noopGPU{},
		CPU:     kernel.Default,
		Log:     logging.Noop(),
		Metrics: metrics.Noop{},
		Tracer:  otel.Tracer(tracerName),
	}
}

const tracerName = "qgrid.pods"

// WithGPU routes operations to g first.
func (ec *ExecContext) WithGPU(g GPUHooks) *ExecContext {
	ec.GPU = g
	ec.UseGPU = g != nil
	if g == nil {
		ec.GPU = noopGPU{}
	}
	return ec
}

// WithCPU replaces the CPU executor.
func (ec *ExecContext) WithCPU(e *kernel.Executor) *ExecContext {
	if e != nil {
		ec.CPU = e
	}
	return ec
}

// WithLogger sets the logger.
func (ec *ExecContext) WithLogger(l *logging.Logger) *ExecContext {
	if l != nil {
		ec.Log = l
	}
	return ec
}

// WithMetrics sets the collector.
func (ec *ExecContext) WithMetrics(m metrics.Collector) *ExecContext {
	if m != nil {
		ec.Metrics = m
	}
	return ec
}

// WithTracer sets the tracer.
func (ec *ExecContext) WithTracer(t trace.Tracer) *ExecContext {
	if t != nil {
		ec.Tracer = t
	}
	return ec
}

// WithContext returns a shallow copy bound to ctx.
func (ec *ExecContext) WithContext(ctx context.Context) *ExecContext {
	cp := *ec
	cp.Ctx = ctx
	return &cp
}

// Backend returns the executor pods run on.
func (ec *ExecContext) Backend() Backend {
	if ec.UseGPU && ec.GPU != nil {
		return ec.GPU
	}
	return ec.CPU
}

// BackendName is "gpu" or "cpu".
func (ec *ExecContext) BackendName() string {
	if ec.UseGPU && ec.GPU != nil {
		return "gpu"
	}
	return "cpu"
}

// fitsGPU reports whether req's register fits the probed device. Without
// a report every size is tried.
func (ec *ExecContext) fitsGPU(req Request) bool {
	return ec.Report == nil || req.Qubits() <= ec.Report.MaxQubits
}

// withDefaults returns a copy with unset fields filled in, so contexts
// built as struct literals dispatch like NewContext ones.
func (ec *ExecContext) withDefaults() *ExecContext {
	if ec == nil {
		return NewContext(context.Background())
	}
	cp := *ec
	if cp.Ctx == nil {
		cp.Ctx = context.Background()
	}
	if cp.CPU == nil {
		cp.CPU = kernel.Default
	}
	if cp.Log == nil {
		cp.Log = logging.Noop()
	}
	if cp.Metrics == nil {
		cp.Metrics = metrics.Noop{}
	}
	if cp.Tracer == nil {
		cp.Tracer = otel.Tracer(tracerName)
	}
	return &cp
}

func (ec *ExecContext) cpuOnly() *ExecContext {
	cp := *ec
	cp.UseGPU = false
	return &cp
}
