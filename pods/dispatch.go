package pods

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfluke/qgrid/grid"
)

// Dispatch runs req on the pod registered for req.Op. When the context
// routes to the GPU and the device fails for a reason other than a bad
// request, the operation is retried once on the CPU executor. Registers
// wider than the probed device (ExecContext.Report) go straight to the CPU.
func Dispatch(ec *ExecContext, req Request) (*grid.Grid, error) {
	p, err := Lookup(req.Op)
	if err != nil {
		return nil, err
	}
	op := string(req.Op)

	ec = ec.withDefaults()
	oversized := ec.UseGPU && !ec.fitsGPU(req)
	if oversized {
		ec = ec.cpuOnly()
	}

	ctx, span := ec.Tracer.Start(ec.Ctx, "pods."+op,
		trace.WithAttributes(
			attribute.String("qgrid.op", op),
			attribute.String("qgrid.backend", ec.BackendName()),
			attribute.Int("qgrid.qubits", req.Qubits()),
		),
	)
	defer span.End()
	ec = ec.WithContext(ctx)
	if oversized {
		span.AddEvent("register exceeds device", trace.WithAttributes(
			attribute.Int("qgrid.max_qubits", ec.Report.MaxQubits)))
		ec.Log.DebugContext(ctx, "register exceeds device, using cpu",
			"op", op, "qubits", req.Qubits(), "max_qubits", ec.Report.MaxQubits)
	}

	backend := ec.BackendName()
	start := time.Now()
	out, err := p.Run(ec, req)

	if err != nil && ec.UseGPU && !caller(err) {
		ec.Log.LogFallback(ctx, op, err)
		ec.Metrics.RecordFallback(op)
		span.AddEvent("cpu fallback", trace.WithAttributes(attribute.String("error", err.Error())))
		backend = "cpu"
		out, err = p.Run(ec.cpuOnly(), req)
	}

	took := time.Since(start)
	ec.Metrics.RecordOp(op, backend, req.Qubits(), took, err)
	ec.Log.WithBackend(backend).LogOp(ctx, op, req.Qubits(), took, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}
