// Package grid holds the raster data model of a superposition: an
// AmplitudeGrid of complex amplitudes and the ControlMask that gates
// operations on it.
//
// A register of n qubits occupies a Width x Height raster with
// Width*Height = 2^n. State index i lives at x = i mod Width,
// y = i / Width. Every cell stores Channels float32 values; amplitude
// grids use the first two for (re, im).
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/openfluke/qgrid/internal/bits"
)

var (
	// ErrInvalidShape is returned when a raster does not cover a power-of-two
	// number of states exactly.
	ErrInvalidShape = errors.New("qgrid/grid: invalid shape")

	// ErrDataLength is returned when backing data does not match the shape.
	ErrDataLength = errors.New("qgrid/grid: data length mismatch")
)

// AmplitudeChannels is the channel count of a plain amplitude grid.
const AmplitudeChannels = 2

// MaxQubits is the largest register a grid can hold.
const MaxQubits = 30

const maxCells = 1 << MaxQubits

// Shape is the raster size shared by a grid and its masks.
type Shape struct {
	Width  int
	Height int
}

// Len returns the number of cells (basis states) covered by the shape.
func (s Shape) Len() int { return s.Width * s.Height }

// Qubits returns n for a shape covering 2^n states.
func (s Shape) Qubits() int { return bits.Log2(s.Len()) }

// Validate checks that the shape covers exactly 2^n states, n >= 0.
func (s Shape) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > maxCells || s.Height > maxCells/s.Width ||
		!bits.IsPowerOf2(s.Len()) {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, s.Width, s.Height)
	}
	return nil
}

// checkChannels rejects channel counts whose backing slice would not fit.
func (s Shape) checkChannels(channels int) error {
	if channels < 1 || channels > math.MaxInt/s.Len() {
		return fmt.Errorf("%w: %d channels", ErrInvalidShape, channels)
	}
	return nil
}

// XY maps a state index to raster coordinates.
func (s Shape) XY(i int) (x, y int) {
	return i % s.Width, i / s.Width
}

// Index maps raster coordinates to a state index.
func (s Shape) Index(x, y int) int {
	return y*s.Width + x
}

// ShapeFor returns a near-square raster holding 2^qubits states, wider than
// tall when qubits is odd.
func ShapeFor(qubits int) Shape {
	h := qubits / 2
	return Shape{Width: 1 << (qubits - h), Height: 1 << h}
}

// Grid is an AmplitudeGrid. Data is row-major, Channels values per cell.
type Grid struct {
	Width    int
	Height   int
	Channels int
	Data     []float32
}

// New allocates a zeroed amplitude grid.
func New(width, height int) (*Grid, error) {
	return NewWithChannels(width, height, AmplitudeChannels)
}

// NewWithChannels allocates a zeroed grid with the given channel count.
func NewWithChannels(width, height, channels int) (*Grid, error) {
	s := Shape{Width: width, Height: height}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkChannels(channels); err != nil {
		return nil, err
	}
	return &Grid{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float32, s.Len()*channels),
	}, nil
}

// FromData wraps existing data. The slice is owned by the grid afterwards.
func FromData(width, height, channels int, data []float32) (*Grid, error) {
	g := &Grid{Width: width, Height: height, Channels: channels}
	if err := g.Shape().Validate(); err != nil {
		return nil, err
	}
	if err := g.Shape().checkChannels(channels); err != nil {
		return nil, err
	}
	if len(data) != g.Len()*channels {
		return nil, fmt.Errorf("%w: have %d values, want %d", ErrDataLength, len(data), g.Len()*channels)
	}
	g.Data = data
	return g, nil
}

// FromAmplitudes builds a two-channel grid from complex amplitudes.
func FromAmplitudes(width, height int, amps []complex128) (*Grid, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(amps) != g.Len() {
		return nil, fmt.Errorf("%w: have %d amplitudes, want %d", ErrDataLength, len(amps), g.Len())
	}
	for i, a := range amps {
		g.SetAmplitude(i, a)
	}
	return g, nil
}

// Basis returns the classical state |index> on a register of the given size.
func Basis(qubits, index int) (*Grid, error) {
	if qubits < 0 || qubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits outside [0, %d]", ErrInvalidShape, qubits, MaxQubits)
	}
	s := ShapeFor(qubits)
	g, err := New(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= g.Len() {
		return nil, fmt.Errorf("%w: basis index %d outside %d states", ErrInvalidShape, index, g.Len())
	}
	g.SetAmplitude(index, 1)
	return g, nil
}

// Shape returns the raster size.
func (g *Grid) Shape() Shape { return Shape{Width: g.Width, Height: g.Height} }

// Len returns the number of basis states.
func (g *Grid) Len() int { return g.Width * g.Height }

// Qubits returns the register size n.
func (g *Grid) Qubits() int { return bits.Log2(g.Len()) }

// Cell returns the channel values of state i. The slice aliases Data.
func (g *Grid) Cell(i int) []float32 {
	return g.Data[i*g.Channels : (i+1)*g.Channels]
}

// Amplitude returns the complex amplitude of state i.
func (g *Grid) Amplitude(i int) complex128 {
	o := i * g.Channels
	if g.Channels < 2 {
		return complex(float64(g.Data[o]), 0)
	}
	return complex(float64(g.Data[o]), float64(g.Data[o+1]))
}

// SetAmplitude stores a complex amplitude for state i.
func (g *Grid) SetAmplitude(i int, a complex128) {
	o := i * g.Channels
	g.Data[o] = float32(real(a))
	if g.Channels > 1 {
		g.Data[o+1] = float32(imag(a))
	}
}

// Amplitudes returns a copy of all amplitudes.
func (g *Grid) Amplitudes() []complex128 {
	out := make([]complex128, g.Len())
	for i := range out {
		out[i] = g.Amplitude(i)
	}
	return out
}

// Like allocates a zeroed grid of the same shape and channel count.
func (g *Grid) Like() *Grid {
	return &Grid{
		Width:    g.Width,
		Height:   g.Height,
		Channels: g.Channels,
		Data:     make([]float32, len(g.Data)),
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := g.Like()
	copy(out.Data, g.Data)
	return out
}

// Norm returns the total squared magnitude sum(re^2 + im^2).
func (g *Grid) Norm() float64 {
	var total float64
	for i := 0; i < g.Len(); i++ {
		a := g.Amplitude(i)
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return total
}

// Probabilities returns |amplitude|^2 per state.
func (g *Grid) Probabilities() []float64 {
	out := make([]float64, g.Len())
	for i := range out {
		a := g.Amplitude(i)
		out[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return out
}

// ApproxEqual reports whether two grids have the same shape and all values
// within tol of each other.
func (g *Grid) ApproxEqual(other *Grid, tol float64) bool {
	if g.Shape() != other.Shape() || g.Channels != other.Channels {
		return false
	}
	for i, v := range g.Data {
		if math.Abs(float64(v)-float64(other.Data[i])) > tol {
			return false
		}
	}
	return true
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, %d qubits, %d channels)", g.Width, g.Height, g.Qubits(), g.Channels)
}
