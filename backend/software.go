// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
)

// init registers the software driver on package import.
func init() {
	Register(BackendSoftware, func() driver.Driver {
		return NewSoftwareDriver()
	})
}

// Faults makes individual SoftwareDriver calls fail. Error fields make the
// matching primary call return that error; bool fields make the matching
// interop call report failure.
type Faults struct {
	OpenInstance  error
	Caps          error
	DisplayMode   error
	CreateDevice  error
	CreateTexture error

	InteropOpen    bool
	InteropClose   bool
	SetShareHandle bool
	Register       bool
	Unregister     bool
	Lock           bool
	Unlock         bool
}

// SoftwareOption configures a SoftwareDriver.
type SoftwareOption func(*SoftwareDriver)

// WithoutInterop makes the driver report no interop support.
func WithoutInterop() SoftwareOption {
	return func(d *SoftwareDriver) { d.interop = false }
}

// WithoutHardwareVertexProcessing makes the adapter caps report no
// hardware vertex processing.
func WithoutHardwareVertexProcessing() SoftwareOption {
	return func(d *SoftwareDriver) { d.hardware = false }
}

// WithReleaseOnUnregister makes unregistering a texture release the
// primary texture, like drivers that reclaim it themselves.
func WithReleaseOnUnregister() SoftwareOption {
	return func(d *SoftwareDriver) { d.releaseOnUnregister = true }
}

// WithDisplayFormat sets the format reported for the current display mode.
func WithDisplayFormat(f gputypes.TextureFormat) SoftwareOption {
	return func(d *SoftwareDriver) { d.displayFormat = f }
}

// SoftwareDriver is an in-memory driver implementing both the primary API
// and the interop bridge. Allocations live in a share table keyed by token,
// so a token handed out by one texture can be linked by another.
//
// SoftwareDriver is safe for concurrent use.
type SoftwareDriver struct {
	mu sync.Mutex

	interop             bool
	hardware            bool
	releaseOnUnregister bool
	displayFormat       gputypes.TextureFormat
	faults              Faults

	nextID        uintptr
	instances     int
	devices       int
	lastParams    driver.DeviceParams
	allocations   map[driver.ShareToken]*allocation
	requests      []driver.TextureDescriptor
	sessions      map[driver.InteropHandle]bool
	names         map[driver.TextureName]bool
	registrations map[driver.RegistrationHandle]*registration

	logger atomic.Pointer[slog.Logger]
}

// allocation is one piece of shared GPU memory, owned by the device that
// allocated it.
type allocation struct {
	desc   driver.TextureDescriptor
	device *softwareDevice
	refs   int
}

// registration binds a texture to a secondary name.
type registration struct {
	session driver.InteropHandle
	tex     *softwareTexture
	name    driver.TextureName
	access  driver.Access
	locked  bool
}

// Interface compliance checks.
var _ driver.Driver = (*SoftwareDriver)(nil)
var _ driver.Interop = softwareInterop{}

// NewSoftwareDriver creates a software driver with interop support and a
// hardware-capable adapter.
func NewSoftwareDriver(opts ...SoftwareOption) *SoftwareDriver {
	d := &SoftwareDriver{
		interop:       true,
		hardware:      true,
		displayFormat: gputypes.TextureFormatBGRA8Unorm,
		nextID:        1,
		allocations:   make(map[driver.ShareToken]*allocation),
		sessions:      make(map[driver.InteropHandle]bool),
		names:         make(map[driver.TextureName]bool),
		registrations: make(map[driver.RegistrationHandle]*registration),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger.Store(slog.New(slog.DiscardHandler))
	return d
}

// Name returns the backend identifier.
func (d *SoftwareDriver) Name() string { return BackendSoftware }

// SetLogger sets the logger used for driver diagnostics.
func (d *SoftwareDriver) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d.logger.Store(l)
}

// SetFaults replaces the active fault set.
func (d *SoftwareDriver) SetFaults(f Faults) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = f
}

func (d *SoftwareDriver) id() uintptr {
	id := d.nextID
	d.nextID++
	return id
}

// OpenInstance creates a software instance.
func (d *SoftwareDriver) OpenInstance() (driver.Instance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.OpenInstance != nil {
		return nil, d.faults.OpenInstance
	}
	d.instances++
	return &softwareInstance{d: d}, nil
}

// Interop returns the interop bridge, or nil when interop is disabled.
func (d *SoftwareDriver) Interop() driver.Interop {
	if !d.interop {
		return nil
	}
	return softwareInterop{d: d}
}

type softwareInstance struct {
	d        *SoftwareDriver
	released bool
}

func (i *softwareInstance) Caps() (driver.Caps, error) {
	i.d.mu.Lock()
	defer i.d.mu.Unlock()

	if i.d.faults.Caps != nil {
		return driver.Caps{}, i.d.faults.Caps
	}
	return driver.Caps{HardwareVertexProcessing: i.d.hardware, AdapterName: "software"}, nil
}

func (i *softwareInstance) DisplayMode() (driver.DisplayMode, error) {
	i.d.mu.Lock()
	defer i.d.mu.Unlock()

	if i.d.faults.DisplayMode != nil {
		return driver.DisplayMode{}, i.d.faults.DisplayMode
	}
	return driver.DisplayMode{Width: 1920, Height: 1080, RefreshRate: 60, Format: i.d.displayFormat}, nil
}

func (i *softwareInstance) CreateDevice(params driver.DeviceParams) (driver.Device, error) {
	i.d.mu.Lock()
	defer i.d.mu.Unlock()

	if i.d.faults.CreateDevice != nil {
		return nil, i.d.faults.CreateDevice
	}
	if params.BackBufferWidth == 0 || params.BackBufferHeight == 0 {
		return nil, fmt.Errorf("software: invalid back buffer %dx%d", params.BackBufferWidth, params.BackBufferHeight)
	}
	i.d.devices++
	i.d.lastParams = params
	return &softwareDevice{d: i.d}, nil
}

func (i *softwareInstance) Release() {
	i.d.mu.Lock()
	defer i.d.mu.Unlock()
	if !i.released {
		i.released = true
		i.d.instances--
	}
}

type softwareDevice struct {
	d        *SoftwareDriver
	released bool
}

// CreateTexture allocates or links a texture in the share table.
func (v *softwareDevice) CreateTexture(desc driver.TextureDescriptor, token driver.ShareToken) (driver.Texture, driver.ShareToken, error) {
	d := v.d
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, desc)

	if v.released {
		return nil, 0, errors.New("software: device released")
	}
	if d.faults.CreateTexture != nil {
		return nil, 0, d.faults.CreateTexture
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, 0, fmt.Errorf("software: invalid texture size %dx%d", desc.Width, desc.Height)
	}

	if token == 0 {
		token = driver.ShareToken(d.id())
		d.allocations[token] = &allocation{desc: desc, device: v, refs: 1}
		d.logger.Load().Debug("software: texture allocated", "token", uintptr(token), "desc", desc.String())
		return &softwareTexture{d: d, token: token, desc: desc}, token, nil
	}

	a, ok := d.allocations[token]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %#x", driver.ErrTokenNotFound, uintptr(token))
	}
	if !desc.Compatible(a.desc) {
		return nil, 0, fmt.Errorf("%w: have %s, got %s", driver.ErrDescriptorMismatch, a.desc, desc)
	}
	a.refs++
	d.logger.Load().Debug("software: texture linked", "token", uintptr(token), "refs", a.refs)
	return &softwareTexture{d: d, token: token, desc: desc}, token, nil
}

// Release frees the device. Allocations it made that are still referenced
// are freed with it, so their tokens stop resolving.
func (v *softwareDevice) Release() {
	d := v.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if v.released {
		return
	}
	v.released = true
	d.devices--

	for tok, a := range d.allocations {
		if a.device != v {
			continue
		}
		d.logger.Load().Warn("software: texture outlived device", "token", uintptr(tok), "refs", a.refs)
		delete(d.allocations, tok)
	}
}

type softwareTexture struct {
	d        *SoftwareDriver
	token    driver.ShareToken
	desc     driver.TextureDescriptor
	released bool
}

func (t *softwareTexture) Descriptor() driver.TextureDescriptor { return t.desc }

// Release drops one reference; the allocation is freed with the last one.
func (t *softwareTexture) Release() {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.releaseLocked()
}

func (t *softwareTexture) releaseLocked() {
	if t.released {
		return
	}
	t.released = true
	a, ok := t.d.allocations[t.token]
	if !ok {
		return
	}
	a.refs--
	if a.refs == 0 {
		delete(t.d.allocations, t.token)
	}
}

// softwareInterop implements driver.Interop on top of the share table.
type softwareInterop struct {
	d *SoftwareDriver
}

func (ip softwareInterop) OpenDevice(dev driver.Device) driver.InteropHandle {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.InteropOpen {
		return 0
	}
	if sd, ok := dev.(*softwareDevice); !ok || sd.released {
		return 0
	}
	h := driver.InteropHandle(d.id())
	d.sessions[h] = true
	return h
}

func (ip softwareInterop) CloseDevice(h driver.InteropHandle) bool {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.InteropClose || !d.sessions[h] {
		return false
	}
	delete(d.sessions, h)
	return true
}

func (ip softwareInterop) GenTexture() driver.TextureName {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	name := driver.TextureName(d.id())
	d.names[name] = true
	return name
}

func (ip softwareInterop) DeleteTexture(name driver.TextureName) {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.names, name)
}

func (ip softwareInterop) SetShareHandle(tex driver.Texture, token driver.ShareToken) bool {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.SetShareHandle {
		return false
	}
	st, ok := tex.(*softwareTexture)
	return ok && !st.released && st.token == token
}

func (ip softwareInterop) Register(h driver.InteropHandle, tex driver.Texture, name driver.TextureName, access driver.Access) driver.RegistrationHandle {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.Register || !d.sessions[h] || !d.names[name] {
		return 0
	}
	st, ok := tex.(*softwareTexture)
	if !ok || st.released {
		return 0
	}
	reg := driver.RegistrationHandle(d.id())
	d.registrations[reg] = &registration{session: h, tex: st, name: name, access: access}
	return reg
}

func (ip softwareInterop) Unregister(h driver.InteropHandle, reg driver.RegistrationHandle) bool {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.registrations[reg]
	if d.faults.Unregister || !ok || r.session != h || r.locked {
		return false
	}
	delete(d.registrations, reg)
	if d.releaseOnUnregister {
		r.tex.releaseLocked()
	}
	return true
}

func (ip softwareInterop) Lock(h driver.InteropHandle, regs ...driver.RegistrationHandle) bool {
	return ip.setLocked(h, true, regs)
}

func (ip softwareInterop) Unlock(h driver.InteropHandle, regs ...driver.RegistrationHandle) bool {
	return ip.setLocked(h, false, regs)
}

// setLocked flips the lock flag on all regs, or on none if any of them is
// unknown or already in the requested state.
func (ip softwareInterop) setLocked(h driver.InteropHandle, lock bool, regs []driver.RegistrationHandle) bool {
	d := ip.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if (lock && d.faults.Lock) || (!lock && d.faults.Unlock) || !d.sessions[h] {
		return false
	}
	for _, reg := range regs {
		r, ok := d.registrations[reg]
		if !ok || r.session != h || r.locked == lock {
			return false
		}
	}
	for _, reg := range regs {
		d.registrations[reg].locked = lock
	}
	return true
}

func (ip softwareInterop) ReleasesOnUnregister() bool { return ip.d.releaseOnUnregister }

// SoftwareStats is a snapshot of live SoftwareDriver objects.
type SoftwareStats struct {
	Instances      int
	Devices        int
	Allocations    int
	InteropOpen    int
	TextureNames   int
	Registrations  int
	LockedTextures int
}

// Stats returns a snapshot of live objects.
func (d *SoftwareDriver) Stats() SoftwareStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := SoftwareStats{
		Instances:     d.instances,
		Devices:       d.devices,
		Allocations:   len(d.allocations),
		InteropOpen:   len(d.sessions),
		TextureNames:  len(d.names),
		Registrations: len(d.registrations),
	}
	for _, r := range d.registrations {
		if r.locked {
			s.LockedTextures++
		}
	}
	return s
}

// Requests returns every texture descriptor passed to CreateTexture.
func (d *SoftwareDriver) Requests() []driver.TextureDescriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]driver.TextureDescriptor(nil), d.requests...)
}

// LastDeviceParams returns the parameters of the most recent device.
func (d *SoftwareDriver) LastDeviceParams() driver.DeviceParams {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastParams
}

// Access returns the access mode of reg and whether it is registered.
func (d *SoftwareDriver) Access(reg driver.RegistrationHandle) (driver.Access, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.registrations[reg]
	if !ok {
		return 0, false
	}
	return r.access, true
}
