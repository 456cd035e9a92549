package kernel

import "errors"

// Sentinel errors returned by the kernels. Every check runs before any
// output cell is written.
var (
	// ErrShapeMismatch is returned when a control mask does not have the
	// shape of the amplitude grid it gates.
	ErrShapeMismatch = errors.New("qgrid/kernel: control mask shape mismatch")

	// ErrUnsupportedSize is returned when a unitary's dimension is not a
	// power of two, or acts on more than MaxUnitaryQubits qubits.
	ErrUnsupportedSize = errors.New("qgrid/kernel: unsupported operation size")

	// ErrQubitRange is returned when the targeted qubits fall outside the
	// register.
	ErrQubitRange = errors.New("qgrid/kernel: qubit range outside register")

	// ErrChannels is returned when a grid cannot hold complex amplitudes.
	ErrChannels = errors.New("qgrid/kernel: grid needs two channels for amplitudes")
)
