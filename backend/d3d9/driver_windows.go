// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package d3d9

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/sharetex/backend"
	"github.com/gogpu/sharetex/driver"
	"golang.org/x/sys/windows"
)

func init() {
	backend.Register(backend.BackendD3D9, func() driver.Driver {
		return New()
	})
}

var (
	d3d9dll = windows.NewLazySystemDLL("d3d9.dll")

	_Direct3DCreate9Ex = d3d9dll.NewProc("Direct3DCreate9Ex")
)

// ErrNoD3D9Ex is returned when d3d9.dll does not export Direct3DCreate9Ex.
var ErrNoD3D9Ex = errors.New("d3d9: Direct3D 9Ex not available")

const (
	sdkVersion     = 32
	adapterDefault = 0
	devTypeHAL     = 1

	createMultithreaded            = 0x00000004
	createPureDevice               = 0x00000010
	createSoftwareVertexProcessing = 0x00000020
	createHardwareVertexProcessing = 0x00000040

	swapEffectDiscard = 1
	poolDefault       = 0
)

// d3dDisplayMode is D3DDISPLAYMODE.
type d3dDisplayMode struct {
	Width       uint32
	Height      uint32
	RefreshRate uint32
	Format      d3dFormat
}

// d3dCaps9 is D3DCAPS9 up to VertexProcessingCaps, padded to cover the
// rest of the structure.
type d3dCaps9 struct {
	_                    [39]uint32
	VertexProcessingCaps uint32
	_                    [96]uint32
}

// d3dAdapterIdentifier9 is D3DADAPTER_IDENTIFIER9.
type d3dAdapterIdentifier9 struct {
	Driver           [512]byte
	Description      [512]byte
	DeviceName       [32]byte
	DriverVersion    int64
	VendorID         uint32
	DeviceID         uint32
	SubSysID         uint32
	Revision         uint32
	DeviceIdentifier windows.GUID
	WHQLLevel        uint32
}

// d3dPresentParameters is D3DPRESENT_PARAMETERS.
type d3dPresentParameters struct {
	BackBufferWidth           uint32
	BackBufferHeight          uint32
	BackBufferFormat          d3dFormat
	BackBufferCount           uint32
	MultiSampleType           uint32
	MultiSampleQuality        uint32
	SwapEffect                uint32
	DeviceWindow              windows.HWND
	Windowed                  int32
	EnableAutoDepthStencil    int32
	AutoDepthStencilFormat    d3dFormat
	Flags                     uint32
	FullScreenRefreshRateInHz uint32
	PresentationInterval      uint32
}

// Driver is the Direct3D 9Ex driver with WGL_NV_DX_interop.
type Driver struct {
	wgl    *wglInterop
	logger atomic.Pointer[slog.Logger]
}

// Interface compliance check.
var _ driver.Driver = (*Driver)(nil)

// New creates a d3d9 driver. Nothing is loaded until OpenInstance.
func New() *Driver {
	d := &Driver{}
	d.wgl = &wglInterop{d: d}
	d.logger.Store(slog.New(slog.DiscardHandler))
	return d
}

// Name returns the backend identifier.
func (d *Driver) Name() string { return backend.BackendD3D9 }

// SetLogger sets the logger used for driver diagnostics.
func (d *Driver) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d.logger.Store(l)
}

func (d *Driver) log() *slog.Logger { return d.logger.Load() }

// Interop returns the WGL_NV_DX_interop bridge. Whether the extension is
// present is only known once OpenDevice runs with a current GL context.
func (d *Driver) Interop() driver.Interop { return d.wgl }

// OpenInstance calls Direct3DCreate9Ex.
func (d *Driver) OpenInstance() (driver.Instance, error) {
	if err := _Direct3DCreate9Ex.Find(); err != nil {
		return nil, errors.Join(ErrNoD3D9Ex, err)
	}
	var obj uintptr
	hr, _, _ := _Direct3DCreate9Ex.Call(sdkVersion, uintptr(unsafe.Pointer(&obj)))
	if int32(hr) < 0 || obj == 0 {
		return nil, hresultError{Name: "Direct3DCreate9Ex", Code: uint32(hr)}
	}
	return &instance{d: d, obj: obj}, nil
}

// instance wraps IDirect3D9Ex.
type instance struct {
	d       *Driver
	obj     uintptr
	display d3dFormat // raw format of the last display mode query
}

func (i *instance) Caps() (driver.Caps, error) {
	var caps d3dCaps9
	if err := comCall("GetDeviceCaps", i.obj, d3dGetDeviceCaps,
		adapterDefault, devTypeHAL, uintptr(unsafe.Pointer(&caps))); err != nil {
		return driver.Caps{}, err
	}

	var id d3dAdapterIdentifier9
	name := ""
	if err := comCall("GetAdapterIdentifier", i.obj, d3dGetAdapterIdentifier,
		adapterDefault, 0, uintptr(unsafe.Pointer(&id))); err == nil {
		name = windows.ByteSliceToString(id.Description[:])
	}

	return driver.Caps{
		HardwareVertexProcessing: caps.VertexProcessingCaps != 0,
		AdapterName:              name,
	}, nil
}

func (i *instance) DisplayMode() (driver.DisplayMode, error) {
	var mode d3dDisplayMode
	if err := comCall("GetAdapterDisplayMode", i.obj, d3dGetAdapterDisplayMode,
		adapterDefault, uintptr(unsafe.Pointer(&mode))); err != nil {
		return driver.DisplayMode{}, err
	}
	i.display = mode.Format
	return driver.DisplayMode{
		Width:       mode.Width,
		Height:      mode.Height,
		RefreshRate: mode.RefreshRate,
		Format:      fromD3DFormat(mode.Format),
	}, nil
}

// CreateDevice creates a windowed, never-presenting device with no focus
// window.
func (i *instance) CreateDevice(params driver.DeviceParams) (driver.Device, error) {
	backFmt, err := backBufferFormat(params.BackBufferFormat, i.display)
	if err != nil {
		return nil, err
	}
	depthFmt, err := toD3DFormat(params.DepthFormat)
	if err != nil {
		return nil, err
	}

	pp := d3dPresentParameters{
		BackBufferWidth:        params.BackBufferWidth,
		BackBufferHeight:       params.BackBufferHeight,
		BackBufferFormat:       backFmt,
		BackBufferCount:        params.BackBufferCount,
		SwapEffect:             swapEffectDiscard,
		Windowed:               1,
		AutoDepthStencilFormat: depthFmt,
	}
	if params.AutoDepthStencil {
		pp.EnableAutoDepthStencil = 1
	}

	var flags uintptr
	if params.PureDevice {
		flags |= createPureDevice
	}
	if params.Multithreaded {
		flags |= createMultithreaded
	}
	if params.VertexProcessing == driver.VertexProcessingHardware {
		flags |= createHardwareVertexProcessing
	} else {
		flags |= createSoftwareVertexProcessing
	}

	var dev uintptr
	if err := comCall("CreateDeviceEx", i.obj, d3dCreateDeviceEx,
		adapterDefault, devTypeHAL, 0, flags,
		uintptr(unsafe.Pointer(&pp)), 0, uintptr(unsafe.Pointer(&dev))); err != nil {
		return nil, err
	}
	i.d.log().Info("d3d9: device created", "flags", flags)
	return &device{d: i.d, obj: dev}, nil
}

func (i *instance) Release() {
	comRelease(i.obj)
	i.obj = 0
}

// device wraps IDirect3DDevice9Ex.
type device struct {
	d   *Driver
	obj uintptr
}

// CreateTexture creates a single-level default-pool texture. A zero token
// creates a new shared allocation; a non-zero token opens it.
func (v *device) CreateTexture(desc driver.TextureDescriptor, token driver.ShareToken) (driver.Texture, driver.ShareToken, error) {
	format, err := toD3DFormat(desc.Format)
	if err != nil {
		return nil, 0, err
	}
	usage := toD3DUsage(desc.Usage, desc.NonSecure)

	var tex uintptr
	shared := windows.Handle(token)
	if err := comCall("CreateTexture", v.obj, devCreateTexture,
		uintptr(desc.Width), uintptr(desc.Height), 1,
		uintptr(usage), uintptr(format), poolDefault,
		uintptr(unsafe.Pointer(&tex)), uintptr(unsafe.Pointer(&shared))); err != nil {
		return nil, 0, err
	}
	v.d.log().Debug("d3d9: texture created", "desc", desc.String(), "shared", uintptr(shared))
	return &texture{obj: tex, desc: desc}, driver.ShareToken(shared), nil
}

func (v *device) Release() {
	comRelease(v.obj)
	v.obj = 0
}

// texture wraps IDirect3DTexture9.
type texture struct {
	obj  uintptr
	desc driver.TextureDescriptor
}

func (t *texture) Descriptor() driver.TextureDescriptor { return t.desc }

func (t *texture) Release() {
	comRelease(t.obj)
	t.obj = 0
}
