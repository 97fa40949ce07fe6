//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
	"github.com/gogpu/wgpu/hal"
)

// halInstance owns a HAL instance and the adapter selected from it.
type halInstance struct {
	d        *Driver
	instance hal.Instance
	adapter  *hal.ExposedAdapter
}

// openHALInstance creates a Vulkan HAL instance and picks the first
// discrete or integrated GPU, falling back to the first adapter.
func openHALInstance(d *Driver) (*halInstance, error) {
	b, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoGPU)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if isHardware(adapters[i].Info.DeviceType) {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	d.log().Debug("wgpu: adapter selected", "adapter", selected.Info.Name)
	return &halInstance{d: d, instance: instance, adapter: selected}, nil
}

func isHardware(t gputypes.DeviceType) bool {
	return t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU
}

func (i *halInstance) Caps() (driver.Caps, error) {
	return driver.Caps{
		HardwareVertexProcessing: isHardware(i.adapter.Info.DeviceType),
		AdapterName:              i.adapter.Info.Name,
	}, nil
}

// DisplayMode reports BGRA8, the format HAL surfaces prefer. A headless
// instance has no display to query.
func (i *halInstance) DisplayMode() (driver.DisplayMode, error) {
	return driver.DisplayMode{Format: gputypes.TextureFormatBGRA8Unorm}, nil
}

func (i *halInstance) CreateDevice(params driver.DeviceParams) (driver.Device, error) {
	openDev, err := i.adapter.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	i.d.log().Info("wgpu: device opened",
		"adapter", i.adapter.Info.Name,
		"vertexProcessing", params.VertexProcessing.String())
	return &device{d: i.d, hal: openDev.Device}, nil
}

func (i *halInstance) Release() {
	if i.instance != nil {
		i.instance.Destroy()
		i.instance = nil
	}
}

// providerInstance borrows the device of a gpucontext.DeviceProvider.
type providerInstance struct {
	d        *Driver
	provider gpucontext.DeviceProvider
}

func (i *providerInstance) Caps() (driver.Caps, error) {
	return driver.Caps{HardwareVertexProcessing: true, AdapterName: "external"}, nil
}

func (i *providerInstance) DisplayMode() (driver.DisplayMode, error) {
	return driver.DisplayMode{Format: i.provider.SurfaceFormat()}, nil
}

// CreateDevice extracts the provider's HAL device. The provider keeps
// ownership of it.
func (i *providerInstance) CreateDevice(driver.DeviceParams) (driver.Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := i.provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	if q, ok := hp.HalQueue().(hal.Queue); !ok || q == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	i.d.log().Info("wgpu: using provider device")
	return &device{d: i.d, hal: dev, external: true}, nil
}

func (i *providerInstance) Release() {}

// device creates share-table textures on a HAL device.
type device struct {
	d        *Driver
	hal      hal.Device
	external bool
	released bool
}

// CreateTexture allocates a HAL texture when token is zero, otherwise it
// references the allocation already in the share table.
func (v *device) CreateTexture(desc driver.TextureDescriptor, token driver.ShareToken) (driver.Texture, driver.ShareToken, error) {
	d := v.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if v.released {
		return nil, 0, ErrDeviceReleased
	}

	if token != 0 {
		a, err := d.shares.acquire(token, desc)
		if err != nil {
			return nil, 0, err
		}
		return &texture{d: d, alloc: a, token: token, desc: desc}, token, nil
	}

	tex, err := v.hal.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create texture %s: %w", desc, err)
	}

	a := &allocation{desc: desc, device: v.hal, tex: tex}
	token = d.shares.add(a)
	d.log().Debug("wgpu: texture allocated", "token", uintptr(token), "desc", desc.String())
	return &texture{d: d, alloc: a, token: token, desc: desc}, token, nil
}

// Release destroys an owned device. Textures still in the share table are
// destroyed first.
func (v *device) Release() {
	d := v.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if v.released {
		return
	}
	v.released = true

	for tok, a := range d.shares.entries {
		if a.device != v.hal {
			continue
		}
		d.log().Warn("wgpu: texture outlived device", "token", uintptr(tok))
		a.device.DestroyTexture(a.tex)
		delete(d.shares.entries, tok)
	}
	if !v.external {
		v.hal.Destroy()
	}
}

// texture is one reference to a share-table allocation.
type texture struct {
	d        *Driver
	alloc    *allocation
	token    driver.ShareToken
	desc     driver.TextureDescriptor
	released bool
}

func (t *texture) Descriptor() driver.TextureDescriptor { return t.desc }

// HAL returns the underlying HAL texture.
func (t *texture) HAL() hal.Texture { return t.alloc.tex }

// Release drops this reference; the HAL texture is destroyed with the last.
func (t *texture) Release() {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()

	if t.released {
		return
	}
	t.released = true
	if a := t.d.shares.release(t.token); a != nil {
		a.device.DestroyTexture(a.tex)
	}
}
