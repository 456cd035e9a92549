// Package config loads qgrid settings from YAML and QGRID_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendCPU  = "cpu"
	BackendGPU  = "gpu"
	BackendAuto = "auto"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("qgrid/config: invalid configuration")

// Config is the full set of tunables.
//
// Safe to read concurrently; not safe to modify after creation.
type Config struct {
	// Backend selects the executor: cpu, gpu, or auto (gpu when a device
	// is available, cpu otherwise).
	Backend string `yaml:"backend"`

	CPU CPUConfig `yaml:"cpu"`
	GPU GPUConfig `yaml:"gpu"`
	Log LogConfig `yaml:"log"`

	// Metrics enables the Prometheus collector.
	Metrics bool `yaml:"metrics"`
}

// CPUConfig tunes the CPU executor fan-out.
type CPUConfig struct {
	Workers   int `yaml:"workers"`
	ChunkSize int `yaml:"chunk_size"`
}

// GPUConfig tunes the WGSL executor.
type GPUConfig struct {
	// DynamicIndexing selects coefficient rows by direct indexing. When
	// false the generated shaders use an unrolled constant match.
	DynamicIndexing bool `yaml:"dynamic_indexing"`

	// WorkgroupSize overrides the detected recommendation when > 0.
	WorkgroupSize int `yaml:"workgroup_size"`

	// BudgetMB caps device memory used by one operation's buffers.
	BudgetMB int `yaml:"budget_mb"`

	// ReadbackTimeout bounds the wait for a mapped staging buffer.
	ReadbackTimeout time.Duration `yaml:"readback_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendCPU,
		CPU: CPUConfig{
			Workers:   0,
			ChunkSize: 4096,
		},
		GPU: GPUConfig{
			DynamicIndexing: true,
			WorkgroupSize:   0,
			BudgetMB:        128,
			ReadbackTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load merges defaults, the YAML file at path (optional; a missing file is
// not an error) and the environment, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without consulting the environment.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("QGRID_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("QGRID_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.CPU.Workers = i
		}
	}
	if v := os.Getenv("QGRID_CHUNK_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.CPU.ChunkSize = i
		}
	}
	if v := os.Getenv("QGRID_DYNAMIC_INDEXING"); v != "" {
		cfg.GPU.DynamicIndexing = v == "true" || v == "1"
	}
	if v := os.Getenv("QGRID_WORKGROUP_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.GPU.WorkgroupSize = i
		}
	}
	if v := os.Getenv("QGRID_BUDGET_MB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.GPU.BudgetMB = i
		}
	}
	if v := os.Getenv("QGRID_READBACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GPU.ReadbackTimeout = d
		}
	}
	if v := os.Getenv("QGRID_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QGRID_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("QGRID_METRICS"); v != "" {
		cfg.Metrics = v == "true" || v == "1"
	}
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendCPU, BackendGPU, BackendAuto:
	default:
		return fmt.Errorf("%w: backend %q (want cpu, gpu or auto)", ErrInvalid, c.Backend)
	}
	if c.CPU.Workers < 0 {
		return fmt.Errorf("%w: cpu.workers must be >= 0", ErrInvalid)
	}
	if c.CPU.ChunkSize < 0 {
		return fmt.Errorf("%w: cpu.chunk_size must be >= 0", ErrInvalid)
	}
	if c.GPU.WorkgroupSize < 0 || c.GPU.WorkgroupSize > 1024 {
		return fmt.Errorf("%w: gpu.workgroup_size must be in [0, 1024]", ErrInvalid)
	}
	if c.GPU.BudgetMB < 1 {
		return fmt.Errorf("%w: gpu.budget_mb must be >= 1", ErrInvalid)
	}
	if c.GPU.ReadbackTimeout <= 0 {
		return fmt.Errorf("%w: gpu.readback_timeout must be > 0", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want text or json)", ErrInvalid, c.Log.Format)
	}
	return nil
}

// BudgetBytes returns GPU.BudgetMB in bytes.
func (c Config) BudgetBytes() uint64 {
	return uint64(c.GPU.BudgetMB) * 1024 * 1024
}
