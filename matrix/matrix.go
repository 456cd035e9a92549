// Package matrix provides the small dense complex matrices that gates
// apply to a register.
package matrix

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// ErrNotSquare is returned when a value list does not form a square matrix.
var ErrNotSquare = errors.New("qgrid/matrix: not square")

// Matrix is a square complex matrix stored row-major.
type Matrix struct {
	n    int
	data []complex128
}

// New builds an n x n matrix from row-major values.
func New(n int, values []complex128) (*Matrix, error) {
	if n <= 0 || len(values) != n*n {
		return nil, fmt.Errorf("%w: %d values for dimension %d", ErrNotSquare, len(values), n)
	}
	data := make([]complex128, len(values))
	copy(data, values)
	return &Matrix{n: n, data: data}, nil
}

// Square builds a matrix from row-major values whose count is a perfect
// square.
func Square(values ...complex128) (*Matrix, error) {
	n := int(math.Round(math.Sqrt(float64(len(values)))))
	return New(n, values)
}

// MustSquare is Square for literals known to be well formed.
func MustSquare(values ...complex128) *Matrix {
	m, err := Square(values...)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the n x n identity.
func Identity(n int) *Matrix {
	m := Zero(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Zero returns the n x n zero matrix.
func Zero(n int) *Matrix {
	return &Matrix{n: n, data: make([]complex128, n*n)}
}

// Dim returns the number of rows (and columns).
func (m *Matrix) Dim() int { return m.n }

// At returns entry (r, c).
func (m *Matrix) At(r, c int) complex128 { return m.data[r*m.n+c] }

// set stores entry (r, c). Matrices are immutable once built, so only
// constructors in this package write.
func (m *Matrix) set(r, c int, v complex128) { m.data[r*m.n+c] = v }

// Mul returns m * other.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.n != other.n {
		return nil, fmt.Errorf("%w: %dx%d times %dx%d", ErrNotSquare, m.n, m.n, other.n, other.n)
	}
	out := Zero(m.n)
	for r := 0; r < m.n; r++ {
		for c := 0; c < m.n; c++ {
			var t complex128
			for k := 0; k < m.n; k++ {
				t += m.At(r, k) * other.At(k, c)
			}
			out.set(r, c, t)
		}
	}
	return out, nil
}

// Kron returns the tensor product m (x) other. When applied to a register,
// other acts on the low qubits and m on the qubits above them.
func (m *Matrix) Kron(other *Matrix) *Matrix {
	n := m.n * other.n
	out := Zero(n)
	for r1 := 0; r1 < m.n; r1++ {
		for c1 := 0; c1 < m.n; c1++ {
			a := m.At(r1, c1)
			for r2 := 0; r2 < other.n; r2++ {
				for c2 := 0; c2 < other.n; c2++ {
					out.set(r1*other.n+r2, c1*other.n+c2, a*other.At(r2, c2))
				}
			}
		}
	}
	return out
}

// Adjoint returns the conjugate transpose.
func (m *Matrix) Adjoint() *Matrix {
	out := Zero(m.n)
	for r := 0; r < m.n; r++ {
		for c := 0; c < m.n; c++ {
			out.set(c, r, cmplx.Conj(m.At(r, c)))
		}
	}
	return out
}

// IsUnitary reports whether m * m^dagger is the identity within tol.
func (m *Matrix) IsUnitary(tol float64) bool {
	p, err := m.Mul(m.Adjoint())
	if err != nil {
		return false
	}
	return p.ApproxEqual(Identity(m.n), tol)
}

// ApproxEqual compares entries within tol.
func (m *Matrix) ApproxEqual(other *Matrix, tol float64) bool {
	if m.n != other.n {
		return false
	}
	for i, v := range m.data {
		if cmplx.Abs(v-other.data[i]) > tol {
			return false
		}
	}
	return true
}

// RawBuffer returns the coefficients as float32 pairs, row-major: entry
// (r, c) sits at offset (r*Dim + c)*2, real part first.
func (m *Matrix) RawBuffer() []float32 {
	out := make([]float32, 2*len(m.data))
	for i, v := range m.data {
		out[2*i] = float32(real(v))
		out[2*i+1] = float32(imag(v))
	}
	return out
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for r := 0; r < m.n; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("{")
		for c := 0; c < m.n; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%v", m.At(r, c))
		}
		sb.WriteString("}")
	}
	sb.WriteString("}")
	return sb.String()
}
