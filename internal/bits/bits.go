// Package bits holds the index arithmetic shared by the grid, the CPU
// kernels and the WGSL generators.
package bits

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the base-2 logarithm of n (assuming n is a power of 2).
func Log2(n int) int {
	result := 0
	for n > 1 {
		n >>= 1
		result++
	}
	return result
}

// ProperMod returns x mod m in [0, m) for m > 0, also for negative x.
func ProperMod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// Field extracts the width-bit field of i starting at bit offset.
func Field(i, offset, width int) int {
	return (i >> offset) & (1<<width - 1)
}

// WithField returns i with its width-bit field at offset replaced by v.
// Bits of v above width are discarded.
func WithField(i, offset, width, v int) int {
	mask := (1<<width - 1) << offset
	return i&^mask | (v<<offset)&mask
}

// RotateLeft rotates the low n bits of x left by k positions.
// Bits of x above n must be zero.
func RotateLeft(x, k, n int) int {
	if n == 0 {
		return x
	}
	k = ProperMod(k, n)
	if k == 0 {
		return x
	}
	mask := 1<<n - 1
	return (x<<k | x>>(n-k)) & mask
}

// CycleIndex is the multiplicative form of RotateLeft used by the
// cycle-all kernel: (x*2^k) mod 2^n + floor(x*2^k / 2^n).
// It equals RotateLeft(x, k, n) for 0 <= k < n and x < 2^n.
func CycleIndex(x, k, n int) int {
	span := 1 << n
	shifted := x << k
	return shifted%span + shifted/span
}
