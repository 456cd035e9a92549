package gpu

import (
	"context"
	"fmt"
	"time"

	"github.com/openfluke/webgpu/wgpu"
)

const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

func newBuffer[T float32 | uint32](c *Context, label string, data []T, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	return buf, nil
}

func newEmptyBuffer(c *Context, label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	return buf, nil
}

// readStaging maps a MapRead buffer holding n float32 values and copies
// them out. The wait is bounded by timeout and by ctx.
func readStaging(ctx context.Context, c *Context, staging *wgpu.Buffer, n int, timeout time.Duration) ([]float32, error) {
	size := uint64(n * 4)
	done := make(chan struct{})
	var mapErr error

	err := staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("map staging: status %v", status)
		}
		close(done)
	})
	if err != nil {
		return nil, fmt.Errorf("map staging: %w", err)
	}

	deadline := time.After(timeout)
loop:
	for {
		c.Device.Poll(false, nil)
		select {
		case <-done:
			break loop
		case <-deadline:
			return nil, fmt.Errorf("readback timed out after %s", timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			time.Sleep(100 * time.Microsecond)
		}
	}
	if mapErr != nil {
		return nil, mapErr
	}

	data := staging.GetMappedRange(0, uint(size))
	if data == nil {
		return nil, fmt.Errorf("map staging: empty mapped range")
	}
	out := make([]float32, n)
	copy(out, wgpu.FromBytes[float32](data))
	staging.Unmap()
	return out, nil
}
