// Package detector reports the WebGPU adapter and host CPU capabilities
// the executors are sized from.
package detector

import (
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/cpu"

	"github.com/openfluke/qgrid/grid"
)

// ErrUnsupported is returned where no adapter probe exists.
var ErrUnsupported = errors.New("qgrid/detector: gpu detection unavailable")

// DefaultBudgetBytes is the soft device budget when QGRID_BUDGET_MB is unset.
const DefaultBudgetBytes = 128 << 20

// Report is a portable summary of the current adapter/device caps.
type Report struct {
	WhenISO     string            `json:"when_iso"`
	Runtime     string            `json:"runtime"` // "native" or "wasm"
	Backend     string            `json:"backend"`
	AdapterType string            `json:"adapter_type"`
	VendorID    string            `json:"vendor_id_hex"`
	DeviceID    string            `json:"device_id_hex"`
	Name        string            `json:"name"`
	Driver      string            `json:"driver"`
	Recommended Recommendations   `json:"recommended"`
	Limits      Limits            `json:"limits"`
	Features    []string          `json:"features"`
	MaxQubits   int               `json:"max_qubits"`
	Host        HostInfo          `json:"host"`
	Env         map[string]string `json:"env,omitempty"`
}

type Limits struct {
	MaxComputeInvocationsPerWorkgroup uint32 `json:"max_compute_invocations_per_workgroup"`
	MaxComputeWorkgroupSizeX          uint32 `json:"max_compute_workgroup_size_x"`
	MaxComputeWorkgroupsPerDimension  uint32 `json:"max_compute_workgroups_per_dimension"`
	MaxStorageBufferBindingSize       uint64 `json:"max_storage_buffer_binding_size"`
	MaxBufferSize                     uint64 `json:"max_buffer_size"`
}

type Recommendations struct {
	// Conservative 1-D workgroup that should run everywhere.
	WorkgroupX uint32 `json:"workgroup_x"`

	// Soft budget in bytes for one operation's buffers.
	BudgetBytes uint64 `json:"budget_bytes"`
}

// HostInfo describes the CPU executor's resources.
type HostInfo struct {
	GOOS       string   `json:"goos"`
	GOARCH     string   `json:"goarch"`
	NumCPU     int      `json:"num_cpu"`
	GOMAXPROCS int      `json:"gomaxprocs"`
	Features   []string `json:"features,omitempty"`
}

// Host reports the CPU features and parallelism available to the CPU
// executor.
func Host() HostInfo {
	h := HostInfo{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"avx2", cpu.X86.HasAVX2},
		{"avx512f", cpu.X86.HasAVX512F},
		{"fma", cpu.X86.HasFMA},
		{"sse4.1", cpu.X86.HasSSE41},
		{"asimd", cpu.ARM64.HasASIMD},
		{"sve", cpu.ARM64.HasSVE},
		{"sve2", cpu.ARM64.HasSVE2},
	} {
		if f.on {
			h.Features = append(h.Features, f.name)
		}
	}
	return h
}

// MaxQubits returns the widest register whose two-channel grid fits both
// one storage binding and the recommended budget. A register needs a
// source, destination and staging copy.
func MaxQubits(r *Report) int {
	if r == nil {
		return 0
	}
	limit := r.Limits.MaxStorageBufferBindingSize
	if r.Limits.MaxBufferSize > 0 && r.Limits.MaxBufferSize < limit {
		limit = r.Limits.MaxBufferSize
	}
	budget := r.Recommended.BudgetBytes
	n := 0
	for q := 1; q < 31; q++ {
		size := uint64(1) << q * grid.AmplitudeChannels * 4
		if size > limit || (budget > 0 && 3*size > budget) {
			break
		}
		n = q
	}
	return n
}

// DetectJSON runs a probe and returns the indented JSON report.
func DetectJSON() (string, error) {
	rep, err := Detect()
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func chooseWorkgroup(l Limits) uint32 {
	for _, c := range []uint32{256, 128, 64, 32, 16, 8, 4, 1} {
		if c <= l.MaxComputeWorkgroupSizeX && c <= l.MaxComputeInvocationsPerWorkgroup {
			return c
		}
	}
	return 1
}

func budgetBytes() uint64 {
	if s := os.Getenv("QGRID_BUDGET_MB"); s != "" {
		if mb, err := strconv.Atoi(s); err == nil && mb > 0 {
			return uint64(mb) << 20
		}
	}
	return DefaultBudgetBytes
}

func pickEnv(keys ...string) map[string]string {
	out := map[string]string{}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
