//go:build gpu

package pods

import (
	"fmt"

	"github.com/openfluke/qgrid/gpu"
)

// OpenGPU opens the shared WebGPU device and returns an executor on it.
func OpenGPU(opts gpu.Options) (Backend, error) {
	e, err := gpu.NewExecutor(opts)
	if err != nil {
		return noopGPU{}, fmt.Errorf("%w: %v", ErrNoGPU, err)
	}
	return e, nil
}
