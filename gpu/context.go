// Package gpu is the WebGPU executor for the register operations. Kernels
// are generated as WGSL, compiled lazily and cached per executor.
package gpu

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openfluke/qgrid/logging"
	"github.com/openfluke/webgpu/wgpu"
)

// ErrNoDevice is returned when no WebGPU adapter or device can be opened.
var ErrNoDevice = errors.New("qgrid/gpu: no device")

// Context holds the single WebGPU context for the process.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Name     string
	once     sync.Once
	err      error
}

var (
	ctx Context
	log = logging.Noop()
)

// SetLogger routes device selection messages to l. Call before the first
// GetContext.
func SetLogger(l *logging.Logger) {
	if l != nil {
		log = l
	}
}

// GetContext returns the process-wide context, initializing it on first
// use. A failed initialization is remembered.
func GetContext() (*Context, error) {
	ctx.once.Do(func() {
		ctx.err = ctx.init()
	})
	if ctx.err != nil {
		return nil, ctx.err
	}
	if ctx.Device == nil || ctx.Queue == nil {
		return nil, fmt.Errorf("%w: device or queue not initialized", ErrNoDevice)
	}
	return &ctx, nil
}

func (c *Context) init() error {
	c.Instance = wgpu.CreateInstance(nil)
	if c.Instance == nil {
		return fmt.Errorf("%w: failed to create WebGPU instance", ErrNoDevice)
	}

	// Prefer a discrete adapter when one is enumerable.
	for _, a := range c.Instance.EnumerateAdapters(nil) {
		info := a.GetInfo()
		log.Debug("gpu adapter", "name", info.Name, "vendor", info.VendorName,
			"type", info.AdapterType.String(), "backend", info.BackendType.String())
		if strings.Contains(strings.ToLower(info.AdapterType.String()), "discrete") {
			c.Adapter = a
			break
		}
	}

	var err error
	for _, opts := range []*wgpu.RequestAdapterOptions{
		{PowerPreference: wgpu.PowerPreferenceHighPerformance},
		{PowerPreference: wgpu.PowerPreferenceLowPower},
		nil,
	} {
		if c.Adapter != nil {
			break
		}
		c.Adapter, err = c.Instance.RequestAdapter(opts)
		if err != nil {
			log.Debug("gpu adapter request failed, falling back", "err", err)
		}
	}
	if c.Adapter == nil {
		return fmt.Errorf("%w: all adapter attempts failed: %v", ErrNoDevice, err)
	}

	info := c.Adapter.GetInfo()
	c.Name = strings.TrimSpace(info.Name)
	log.Info("gpu adapter selected", "name", c.Name, "vendor", info.VendorName)

	c.Device, err = c.Adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("%w: request device: %v", ErrNoDevice, err)
	}
	c.Queue = c.Device.GetQueue()
	return nil
}

// Available reports whether GetContext succeeds.
func Available() bool {
	_, err := GetContext()
	return err == nil
}
