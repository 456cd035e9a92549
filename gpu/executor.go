package gpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/kernel"
	"github.com/openfluke/qgrid/logging"
	"github.com/openfluke/qgrid/matrix"
	"github.com/openfluke/webgpu/wgpu"
)

// ErrBudget is returned when an operation's buffers would exceed
// Options.BudgetBytes.
var ErrBudget = errors.New("qgrid/gpu: over memory budget")

// maxGroupsPerDim is the portable limit on workgroups per dispatch
// dimension.
const maxGroupsPerDim = 65535

// Kernel names in the cache.
const (
	OpUnitary   = "unitary"
	OpCycleAll  = "cycle_all"
	OpIncrement = "increment"
)

// Options configures an Executor.
type Options struct {
	// DynamicIndexing selects coefficient rows by direct indexing instead
	// of an unrolled switch.
	DynamicIndexing bool

	// WorkgroupSize is the 1-D workgroup size; <= 0 means
	// DefaultWorkgroupSize.
	WorkgroupSize int

	// BudgetBytes caps the device memory of one operation; 0 means no cap.
	BudgetBytes uint64

	// ReadbackTimeout bounds the staging map; <= 0 means 2s.
	ReadbackTimeout time.Duration

	Logger *logging.Logger
}

type kernelKey struct {
	op     string
	qubits int
}

// Executor runs the register operations on the shared WebGPU device. Its
// kernel cache only grows; pipelines live until process exit. Operations
// are serialized on the device queue.
type Executor struct {
	gc   *Context
	opts Options
	log  *logging.Logger

	mu      sync.Mutex
	kernels map[kernelKey]*wgpu.ComputePipeline
}

// NewExecutor opens the shared context and returns an executor bound to it.
func NewExecutor(opts Options) (*Executor, error) {
	gc, err := GetContext()
	if err != nil {
		return nil, err
	}
	if opts.WorkgroupSize <= 0 {
		opts.WorkgroupSize = DefaultWorkgroupSize
	}
	if opts.ReadbackTimeout <= 0 {
		opts.ReadbackTimeout = 2 * time.Second
	}
	l := opts.Logger
	if l == nil {
		l = logging.Noop()
	}
	return &Executor{
		gc:      gc,
		opts:    opts,
		log:     l.WithBackend("gpu"),
		kernels: make(map[kernelKey]*wgpu.ComputePipeline),
	}, nil
}

// Device returns the adapter name.
func (e *Executor) Device() string { return e.gc.Name }

// Kernels returns the number of compiled pipelines.
func (e *Executor) Kernels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.kernels)
}

// pipeline returns the cached pipeline for key, compiling src on a miss.
// Callers hold e.mu.
func (e *Executor) pipeline(key kernelKey, src func() string) (*wgpu.ComputePipeline, error) {
	if p, ok := e.kernels[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("%s_%d", key.op, key.qubits)
	module, err := e.gc.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + "_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src()},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	defer module.Release()

	p, err := e.gc.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   label + "_Pipe",
		Compute: wgpu.ProgrammableStageDescriptor{Module: module, EntryPoint: "main"},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", label, err)
	}
	e.kernels[key] = p
	e.log.Debug("kernel compiled", "kernel", label)
	return p, nil
}

// ApplyUnitary is the device counterpart of kernel.Executor.ApplyUnitary.
func (e *Executor) ApplyUnitary(ctx context.Context, in *grid.Grid, m *matrix.Matrix, target int, mask *grid.Mask) (*grid.Grid, error) {
	k, err := kernel.ValidateUnitary(in, m, target, mask)
	if err != nil {
		return nil, err
	}
	maskData, hasMask := maskBuffer(mask)
	p := params{
		count:    uint32(in.Len()),
		channels: uint32(in.Channels),
		offset:   uint32(target),
		width:    uint32(k),
		hasMask:  hasMask,
	}
	key := kernelKey{op: OpUnitary, qubits: k}
	return e.run(ctx, key, func() string {
		return unitaryShader(k, e.opts.DynamicIndexing, e.opts.WorkgroupSize)
	}, p, in, maskData, m.RawBuffer())
}

// CycleAllBits is the device counterpart of kernel.Executor.CycleAllBits.
func (e *Executor) CycleAllBits(ctx context.Context, in *grid.Grid, shift int) (*grid.Grid, error) {
	if err := kernel.ValidateGrid(in); err != nil {
		return nil, err
	}
	n := in.Qubits()
	k := kernel.CycleDistance(n, shift)
	if k == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return in.Clone(), nil
	}
	p := params{
		count:    uint32(in.Len()),
		channels: uint32(in.Channels),
		width:    uint32(n),
		amount:   uint32(k),
	}
	key := kernelKey{op: OpCycleAll}
	return e.run(ctx, key, func() string {
		return cycleAllShader(e.opts.WorkgroupSize)
	}, p, in)
}

// Increment is the device counterpart of kernel.Executor.Increment.
func (e *Executor) Increment(ctx context.Context, in *grid.Grid, mask *grid.Mask, index, span, amount int) (*grid.Grid, error) {
	if err := kernel.ValidateIncrement(in, mask, index, span); err != nil {
		return nil, err
	}
	maskData, hasMask := maskBuffer(mask)
	p := params{
		count:    uint32(in.Len()),
		channels: uint32(in.Channels),
		offset:   uint32(index),
		width:    uint32(span),
		amount:   uint32(kernel.IncrementOffset(span, amount)),
		hasMask:  hasMask,
	}
	key := kernelKey{op: OpIncrement}
	return e.run(ctx, key, func() string {
		return incrementShader(e.opts.WorkgroupSize)
	}, p, in, maskData)
}

// params mirrors the WGSL Params block.
type params struct {
	count, channels, offset, width, amount, hasMask uint32
}

func (p params) words() []uint32 {
	return []uint32{p.count, p.channels, p.offset, p.width, p.amount, p.hasMask, 0, 0}
}

// maskBuffer returns the mask flags, or a one-element placeholder and a
// zero has_mask flag when every state is allowed.
func maskBuffer(mask *grid.Mask) ([]float32, uint32) {
	if mask == nil {
		return []float32{1}, 0
	}
	return mask.Data, 1
}

// workgroups splits n cells into a dispatch grid within the per-dimension
// limit.
func workgroups(n, wg int) (x, y uint32) {
	groups := (n + wg - 1) / wg
	gx := min(groups, maxGroupsPerDim)
	gy := (groups + gx - 1) / gx
	return uint32(gx), uint32(gy)
}

// run uploads in and the extra read-only arrays, dispatches the kernel for
// key into a fresh destination buffer and reads the result back. Bindings
// are params, source, extras in order, destination.
func (e *Executor) run(ctx context.Context, key kernelKey, src func() string, p params, in *grid.Grid, extras ...[]float32) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	size := uint64(len(in.Data) * 4)

	need := 3 * size
	for _, x := range extras {
		need += uint64(len(x) * 4)
	}
	if e.opts.BudgetBytes > 0 && need > e.opts.BudgetBytes {
		return nil, fmt.Errorf("%w: %d bytes needed, budget %d", ErrBudget, need, e.opts.BudgetBytes)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pipe, err := e.pipeline(key, src)
	if err != nil {
		return nil, err
	}
	c := e.gc

	var buffers []*wgpu.Buffer
	defer func() {
		for _, b := range buffers {
			b.Destroy()
		}
	}()

	uni, err := newBuffer(c, key.op+"_Params", p.words(), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	buffers = append(buffers, uni)

	srcBuf, err := newBuffer(c, key.op+"_Src", in.Data, storageUsage)
	if err != nil {
		return nil, err
	}
	buffers = append(buffers, srcBuf)

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: uni, Size: uni.GetSize()},
		{Binding: 1, Buffer: srcBuf, Size: srcBuf.GetSize()},
	}
	for i, x := range extras {
		b, err := newBuffer(c, fmt.Sprintf("%s_Extra%d", key.op, i), x, storageUsage)
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, b)
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(2 + i), Buffer: b, Size: b.GetSize()})
	}

	dst, err := newEmptyBuffer(c, key.op+"_Dst", size, storageUsage)
	if err != nil {
		return nil, err
	}
	buffers = append(buffers, dst)
	entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(2 + len(extras)), Buffer: dst, Size: dst.GetSize()})

	staging, err := newEmptyBuffer(c, key.op+"_Staging", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	buffers = append(buffers, staging)

	bg, err := c.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   key.op + "_Bind",
		Layout:  pipe.GetBindGroupLayout(0),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %s: %w", key.op, err)
	}
	defer bg.Release()

	enc, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("command encoder: %w", err)
	}
	gx, gy := workgroups(in.Len(), e.opts.WorkgroupSize)
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(pipe)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(gx, gy, 1)
	pass.End()
	enc.CopyBufferToBuffer(dst, 0, staging, 0, size)
	cmd, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return nil, fmt.Errorf("finish commands: %w", err)
	}
	c.Queue.Submit(cmd)
	cmd.Release()

	data, err := readStaging(ctx, c, staging, len(in.Data), e.opts.ReadbackTimeout)
	if err != nil {
		return nil, err
	}
	out, err := grid.FromData(in.Width, in.Height, in.Channels, data)
	if err != nil {
		return nil, err
	}
	e.log.Debug("kernel dispatched", "kernel", key.op, "cells", in.Len(),
		"groups_x", gx, "groups_y", gy, "took", time.Since(start))
	return out, nil
}
