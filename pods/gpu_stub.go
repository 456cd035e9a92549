//go:build !gpu

package pods

import "github.com/openfluke/qgrid/gpu"

// OpenGPU returns the noop backend; build with -tags=gpu for the WebGPU
// executor.
func OpenGPU(gpu.Options) (Backend, error) {
	return noopGPU{}, ErrNoGPU
}
