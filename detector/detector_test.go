package detector

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseWorkgroup(t *testing.T) {
	tests := []struct {
		name   string
		limits Limits
		want   uint32
	}{
		{"generous", Limits{MaxComputeWorkgroupSizeX: 1024, MaxComputeInvocationsPerWorkgroup: 1024}, 256},
		{"webgpu minimum", Limits{MaxComputeWorkgroupSizeX: 256, MaxComputeInvocationsPerWorkgroup: 256}, 256},
		{"capped by invocations", Limits{MaxComputeWorkgroupSizeX: 1024, MaxComputeInvocationsPerWorkgroup: 100}, 64},
		{"zero", Limits{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseWorkgroup(tt.limits))
		})
	}
}

func TestMaxQubits(t *testing.T) {
	assert.Zero(t, MaxQubits(nil))

	// 128 MiB binding, no budget: 2^24 cells * 8 bytes = 128 MiB.
	r := &Report{Limits: Limits{MaxStorageBufferBindingSize: 128 << 20}}
	assert.Equal(t, 24, MaxQubits(r))

	// Buffer size below binding size wins.
	r.Limits.MaxBufferSize = 1 << 20
	assert.Equal(t, 17, MaxQubits(r))

	// Three copies of the grid must fit the budget.
	r.Limits.MaxBufferSize = 0
	r.Recommended.BudgetBytes = 3 << 20
	assert.Equal(t, 17, MaxQubits(r))
}

func TestBudgetBytes(t *testing.T) {
	t.Setenv("QGRID_BUDGET_MB", "")
	assert.Equal(t, uint64(DefaultBudgetBytes), budgetBytes())

	t.Setenv("QGRID_BUDGET_MB", "64")
	assert.Equal(t, uint64(64<<20), budgetBytes())
	assert.Equal(t, map[string]string{"QGRID_BUDGET_MB": "64"}, pickEnv("QGRID_BUDGET_MB"))

	t.Setenv("QGRID_BUDGET_MB", "nope")
	assert.Equal(t, uint64(DefaultBudgetBytes), budgetBytes())
}

func TestHost(t *testing.T) {
	h := Host()
	assert.Equal(t, runtime.GOARCH, h.GOARCH)
	assert.Positive(t, h.NumCPU)
	assert.Equal(t, runtime.GOMAXPROCS(0), h.GOMAXPROCS)
}

func TestDetect(t *testing.T) {
	rep, err := Detect()
	if err != nil {
		t.Skipf("no WebGPU adapter: %v", err)
	}
	assert.NotZero(t, rep.Recommended.WorkgroupX)
	assert.Equal(t, MaxQubits(rep), rep.MaxQubits)
}
