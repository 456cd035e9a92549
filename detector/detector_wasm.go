//go:build js && wasm

package detector

// Detect has no adapter probe under wasm; browsers expose WebGPU through
// navigator.gpu, which the native bindings cannot reach.
func Detect() (*Report, error) {
	return nil, ErrUnsupported
}
