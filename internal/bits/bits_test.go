package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOf2(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 1 << 20} {
		assert.True(t, IsPowerOf2(n), "n=%d", n)
	}
	for _, n := range []int{-4, 0, 3, 6, 12, 17} {
		assert.False(t, IsPowerOf2(n), "n=%d", n)
	}
}

func TestLog2(t *testing.T) {
	assert.Equal(t, 0, Log2(1))
	assert.Equal(t, 1, Log2(2))
	assert.Equal(t, 4, Log2(16))
	assert.Equal(t, 10, Log2(1024))
}

func TestProperMod(t *testing.T) {
	assert.Equal(t, 1, ProperMod(-1, 2))
	assert.Equal(t, 3, ProperMod(-1, 4))
	assert.Equal(t, 0, ProperMod(-8, 4))
	assert.Equal(t, 2, ProperMod(10, 4))
}

func TestFieldRoundTrip(t *testing.T) {
	i := 0b1011_0110
	assert.Equal(t, 0b10, Field(i, 3, 2))
	assert.Equal(t, 0b1011_1110, WithField(i, 3, 2, 0b11))
	assert.Equal(t, 0b1010_0110, WithField(i, 3, 2, 0b100), "overflow bits are dropped")
	assert.Equal(t, i, WithField(i, 3, 2, Field(i, 3, 2)))
}

func TestCycleIndexMatchesRotateLeft(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for k := 0; k < n; k++ {
			for x := 0; x < 1<<n; x++ {
				assert.Equal(t, RotateLeft(x, k, n), CycleIndex(x, k, n), "x=%d k=%d n=%d", x, k, n)
			}
		}
	}
}

func TestRotateLeft(t *testing.T) {
	assert.Equal(t, 0b0011, RotateLeft(0b1001, 1, 4))
	assert.Equal(t, 0b1001, RotateLeft(0b1001, 4, 4))
	assert.Equal(t, 0b1100, RotateLeft(0b1001, -1, 4))
	assert.Equal(t, 0b1111, RotateLeft(0b1111, 3, 4))
}
