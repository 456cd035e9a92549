package grid

import "fmt"

// Mask is a ControlMask: one flag per state, exactly 0 or 1.
// A state takes part in an operation iff its flag is 1.
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

// NewMask allocates an all-zero mask (nothing participates).
func NewMask(width, height int) (*Mask, error) {
	s := Shape{Width: width, Height: height}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Mask{Width: width, Height: height, Data: make([]float32, s.Len())}, nil
}

// FullMask returns an all-one mask (every state participates).
func FullMask(width, height int) (*Mask, error) {
	m, err := NewMask(width, height)
	if err != nil {
		return nil, err
	}
	for i := range m.Data {
		m.Data[i] = 1
	}
	return m, nil
}

// MaskFromFunc builds a mask whose flag for state i is keep(i).
func MaskFromFunc(width, height int, keep func(i int) bool) (*Mask, error) {
	m, err := NewMask(width, height)
	if err != nil {
		return nil, err
	}
	for i := range m.Data {
		if keep(i) {
			m.Data[i] = 1
		}
	}
	return m, nil
}

// Shape returns the raster size.
func (m *Mask) Shape() Shape { return Shape{Width: m.Width, Height: m.Height} }

// Allows reports whether state i participates.
func (m *Mask) Allows(i int) bool { return m.Data[i] != 0 }

// Validate checks the 0/1 invariant and the data length.
func (m *Mask) Validate() error {
	if err := m.Shape().Validate(); err != nil {
		return err
	}
	if len(m.Data) != m.Shape().Len() {
		return fmt.Errorf("%w: mask has %d flags, want %d", ErrDataLength, len(m.Data), m.Shape().Len())
	}
	for i, v := range m.Data {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: mask flag %d is %v", ErrInvalidShape, i, v)
		}
	}
	return nil
}
