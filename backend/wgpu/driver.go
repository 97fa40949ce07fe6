// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/sharetex/backend"
	"github.com/gogpu/sharetex/driver"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	backend.Register(backend.BackendWGPU, func() driver.Driver {
		return New()
	})
}

// Errors returned by the wgpu driver.
var (
	// ErrNoGPU is returned when no HAL backend or adapter is available.
	ErrNoGPU = errors.New("wgpu: no GPU adapter available")

	// ErrNoHALDevice is returned when a device provider does not expose
	// hal.Device and hal.Queue.
	ErrNoHALDevice = errors.New("wgpu: provider does not expose HAL device")

	// ErrDeviceReleased is returned when creating a texture on a released
	// device.
	ErrDeviceReleased = errors.New("wgpu: device released")
)

// Option configures a Driver.
type Option func(*Driver)

// WithDeviceProvider makes the driver borrow the provider's device instead
// of opening its own.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(d *Driver) { d.provider = p }
}

// Driver is the wgpu HAL driver. It is safe for concurrent use.
type Driver struct {
	provider gpucontext.DeviceProvider

	mu     sync.Mutex
	shares *shareTable

	logger atomic.Pointer[slog.Logger]
}

// Interface compliance check.
var _ driver.Driver = (*Driver)(nil)

// New creates a wgpu driver. No GPU work happens until OpenInstance.
func New(opts ...Option) *Driver {
	d := &Driver{shares: newShareTable()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger.Store(slog.New(slog.DiscardHandler))
	return d
}

// Name returns the backend identifier.
func (d *Driver) Name() string { return backend.BackendWGPU }

// SetLogger sets the logger used for driver diagnostics.
func (d *Driver) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d.logger.Store(l)
}

func (d *Driver) log() *slog.Logger { return d.logger.Load() }

// Interop returns nil: wgpu textures cannot be bound into the secondary
// API.
func (d *Driver) Interop() driver.Interop { return nil }

// OpenInstance opens a HAL instance and selects an adapter, or wraps the
// configured device provider.
func (d *Driver) OpenInstance() (driver.Instance, error) {
	if d.provider != nil {
		return &providerInstance{d: d, provider: d.provider}, nil
	}
	inst, err := openHALInstance(d)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// SharedAllocations returns the number of live allocations in the share
// table.
func (d *Driver) SharedAllocations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shares.len()
}
