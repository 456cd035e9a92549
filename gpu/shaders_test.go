package gpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitaryShaderUnrolled(t *testing.T) {
	for k := 2; k <= 4; k++ {
		src := UnitaryShader(k, false)
		dim := 1 << k
		assert.Equal(t, dim, strings.Count(src, "\t\tcase "), "one case per row for k=%d", k)
		assert.Equal(t, dim*dim, strings.Count(src, "acc += cmul(coeff("), "one term per coefficient for k=%d", k)
		assert.NotContains(t, src, "row * DIM + c")
		assert.Contains(t, src, "default: {}")
	}
}

func TestUnitaryShaderDynamic(t *testing.T) {
	src := UnitaryShader(3, true)
	assert.Contains(t, src, "const DIM: u32 = 8u;")
	assert.Contains(t, src, "coeff(row * DIM + c)")
	assert.NotContains(t, src, "switch row")
}

func TestUnitaryShaderFastPath(t *testing.T) {
	dyn, unrolled := UnitaryShader(1, true), UnitaryShader(1, false)
	assert.Equal(t, dyn, unrolled)
	assert.Contains(t, dyn, "amp(i ^ bit)")
	assert.NotContains(t, dyn, "switch row")
}

func TestShaderBindings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		dst  int
	}{
		{"unitary", UnitaryShader(2, true), 4},
		{"cycle", CycleAllShader(), 2},
		{"increment", IncrementShader(), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.src, "@binding(0) var<uniform> params: Params;")
			assert.Contains(t, tt.src, "@binding(1) var<storage, read> src: array<f32>;")
			assert.Contains(t, tt.src, "var<storage, read_write> dst")
			assert.Contains(t, tt.src, "@binding("+string(rune('0'+tt.dst))+") var<storage, read_write> dst")
			assert.Contains(t, tt.src, "@compute @workgroup_size(256)")
			assert.Equal(t, strings.Count(tt.src, "{"), strings.Count(tt.src, "}"))
		})
	}
}

func TestWorkgroupSizeIsBaked(t *testing.T) {
	assert.Contains(t, unitaryShader(2, false, 64), "@workgroup_size(64)")
	assert.Contains(t, cycleAllShader(32), "const WG: u32 = 32u;")
	assert.Contains(t, incrementShader(128), "@workgroup_size(128)")
}

func TestWorkgroups(t *testing.T) {
	x, y := workgroups(8, 256)
	assert.Equal(t, uint32(1), x)
	assert.Equal(t, uint32(1), y)

	x, y = workgroups(1<<20, 256)
	assert.Equal(t, uint32(4096), x)
	assert.Equal(t, uint32(1), y)

	x, y = workgroups(1<<26, 256)
	assert.Equal(t, uint32(maxGroupsPerDim), x)
	assert.GreaterOrEqual(t, int(x)*int(y)*256, 1<<26)
}

func TestParamsLayout(t *testing.T) {
	p := params{count: 16, channels: 2, offset: 1, width: 2, amount: 3, hasMask: 1}
	w := p.words()
	assert.Len(t, w, 8)
	assert.Equal(t, []uint32{16, 2, 1, 2, 3, 1, 0, 0}, w)
}

func TestMaskBuffer(t *testing.T) {
	data, has := maskBuffer(nil)
	assert.Equal(t, []float32{1}, data)
	assert.Zero(t, has)
}
