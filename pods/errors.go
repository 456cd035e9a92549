package pods

import (
	"context"
	"errors"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/kernel"
)

// Single canonical error used across CPU/GPU builds.
var ErrNoGPU = errors.New("qgrid/pods: gpu unavailable (build with -tags=gpu to enable)")

// ErrUnknownOp is returned for an opcode with no registered pod.
var ErrUnknownOp = errors.New("qgrid/pods: unknown op")

// caller reports whether err is the caller's fault or a cancellation.
// Such errors are returned as-is instead of triggering a CPU fallback.
func caller(err error) bool {
	for _, target := range []error{
		kernel.ErrShapeMismatch,
		kernel.ErrUnsupportedSize,
		kernel.ErrQubitRange,
		kernel.ErrChannels,
		grid.ErrInvalidShape,
		grid.ErrDataLength,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
