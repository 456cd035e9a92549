package matrix

import (
	"math"
	"math/cmplx"
)

// Common single- and two-qubit unitaries.
var (
	PauliX   = MustSquare(0, 1, 1, 0)
	PauliY   = MustSquare(0, -1i, 1i, 0)
	PauliZ   = MustSquare(1, 0, 0, -1)
	Hadamard = MustSquare(
		complex(math.Sqrt2/2, 0), complex(math.Sqrt2/2, 0),
		complex(math.Sqrt2/2, 0), complex(-math.Sqrt2/2, 0),
	)
	Swap = MustSquare(
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	)
)

// Phase returns diag(1, e^{i theta}).
func Phase(theta float64) *Matrix {
	return MustSquare(1, 0, 0, cmplx.Exp(complex(0, theta)))
}

// RotationX returns exp(-i theta X / 2).
func RotationX(theta float64) *Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return MustSquare(c, s, s, c)
}

// RotationY returns exp(-i theta Y / 2).
func RotationY(theta float64) *Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return MustSquare(c, -s, s, c)
}

// ByName resolves the names accepted in program files.
func ByName(name string, theta float64) (*Matrix, bool) {
	switch name {
	case "X", "x":
		return PauliX, true
	case "Y", "y":
		return PauliY, true
	case "Z", "z":
		return PauliZ, true
	case "H", "h":
		return Hadamard, true
	case "SWAP", "swap":
		return Swap, true
	case "P", "phase":
		return Phase(theta), true
	case "RX", "rx":
		return RotationX(theta), true
	case "RY", "ry":
		return RotationY(theta), true
	}
	return nil, false
}
