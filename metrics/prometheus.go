package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exports operation metrics to a prometheus.Registerer.
type Prometheus struct {
	ops       *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

// NewPrometheus registers the qgrid metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qgrid_operations_total",
			Help: "Register operations by opcode, backend and outcome.",
		}, []string{"op", "backend", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qgrid_operation_duration_seconds",
			Help:    "Wall time of register operations.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"op", "backend", "qubits"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qgrid_gpu_fallbacks_total",
			Help: "GPU dispatches rerun on the CPU executor.",
		}, []string{"op"}),
	}
}

// RecordOp implements Collector.
func (p *Prometheus) RecordOp(op, backend string, qubits int, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.ops.WithLabelValues(op, backend, status).Inc()
	p.duration.WithLabelValues(op, backend, strconv.Itoa(qubits)).Observe(took.Seconds())
}

// RecordFallback implements Collector.
func (p *Prometheus) RecordFallback(op string) {
	p.fallbacks.WithLabelValues(op).Inc()
}
