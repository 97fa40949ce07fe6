package sharetex

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
)

// SessionState is the lifecycle state of the shared device.
type SessionState uint8

// Device session states.
const (
	// StateUninitialized means no device exists. A released session returns
	// here and can be created again.
	StateUninitialized SessionState = iota

	// StateDeviceReady means the primary device exists and interop has not
	// been attempted yet. It is only observable while EnsureCreated runs.
	StateDeviceReady

	// StateInteropReady means the device and an interop session are open.
	StateInteropReady

	// StateInteropUnavailable means the device is open but the secondary API
	// cannot share with it. Primary texture creation still works.
	StateInteropUnavailable
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDeviceReady:
		return "device-ready"
	case StateInteropReady:
		return "interop-ready"
	case StateInteropUnavailable:
		return "interop-unavailable"
	default:
		return fmt.Sprintf("SessionState(%d)", uint8(s))
	}
}

// deviceReady reports whether a primary device exists.
func (s SessionState) deviceReady() bool { return s != StateUninitialized }

// deviceSession owns the primary instance, the device created on it and the
// optional interop session. Callers serialize access.
type deviceSession struct {
	drv     driver.Driver
	cfg     deviceConfig
	metrics *metrics

	instance driver.Instance
	device   driver.Device
	interop  driver.Interop
	handle   driver.InteropHandle
	state    SessionState
}

// deviceConfig is the off-screen device geometry.
type deviceConfig struct {
	width, height uint32
}

func newDeviceSession(drv driver.Driver, cfg deviceConfig, m *metrics) *deviceSession {
	return &deviceSession{drv: drv, cfg: cfg, metrics: m}
}

// ensureCreated creates the instance and device if they do not exist and
// then attempts to open interop. Only device creation can fail; interop
// problems leave the session in StateInteropUnavailable.
func (s *deviceSession) ensureCreated() error {
	if s.device != nil {
		return nil
	}

	ownInstance := false
	if s.instance == nil {
		inst, err := s.drv.OpenInstance()
		if err != nil {
			return fmt.Errorf("%w: open instance: %w", ErrDeviceCreationFailed, err)
		}
		s.instance = inst
		ownInstance = true
	}

	params, err := s.deviceParams()
	if err != nil {
		s.dropInstance(ownInstance)
		return fmt.Errorf("%w: %w", ErrDeviceCreationFailed, err)
	}

	dev, err := s.instance.CreateDevice(params)
	if err != nil {
		s.dropInstance(ownInstance)
		return fmt.Errorf("%w: create device: %w", ErrDeviceCreationFailed, err)
	}
	s.device = dev
	s.state = StateDeviceReady
	s.metrics.deviceCreated()

	Logger().Info("sharetex: device created",
		"backend", s.drv.Name(),
		"vertexProcessing", params.VertexProcessing.String(),
		"backBufferFormat", uint32(params.BackBufferFormat))

	if s.tryOpenInterop() {
		s.state = StateInteropReady
	} else {
		s.state = StateInteropUnavailable
	}
	return nil
}

// deviceParams queries the adapter and builds the off-screen device
// description: hardware vertex processing when available, back buffer in
// the current display format.
func (s *deviceSession) deviceParams() (driver.DeviceParams, error) {
	caps, err := s.instance.Caps()
	if err != nil {
		return driver.DeviceParams{}, fmt.Errorf("query caps: %w", err)
	}
	mode, err := s.instance.DisplayMode()
	if err != nil {
		return driver.DeviceParams{}, fmt.Errorf("query display mode: %w", err)
	}

	vp := driver.VertexProcessingSoftware
	if caps.HardwareVertexProcessing {
		vp = driver.VertexProcessingHardware
	}

	return driver.DeviceParams{
		BackBufferWidth:  s.cfg.width,
		BackBufferHeight: s.cfg.height,
		BackBufferFormat: mode.Format,
		BackBufferCount:  1,
		DepthFormat:      gputypes.TextureFormatDepth24PlusStencil8,
		AutoDepthStencil: false,
		VertexProcessing: vp,
		Multithreaded:    true,
		PureDevice:       true,
	}, nil
}

func (s *deviceSession) dropInstance(own bool) {
	if own && s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

// tryOpenInterop opens the single interop session. It returns false when a
// session is already open, when the driver has no interop support, or when
// the driver hands back a null handle.
func (s *deviceSession) tryOpenInterop() bool {
	if s.handle != 0 {
		return false
	}
	ip := s.drv.Interop()
	if ip == nil {
		Logger().Warn("sharetex: interop not supported by driver", "backend", s.drv.Name())
		return false
	}
	h := ip.OpenDevice(s.device)
	if h == 0 {
		Logger().Warn("sharetex: interop failed to initialize", "backend", s.drv.Name())
		return false
	}
	s.interop = ip
	s.handle = h
	Logger().Info("sharetex: interop session opened", "handle", uintptr(h))
	return true
}

// closeInterop closes the interop session. A close failure after a
// successful open is reported as ErrInteropCloseFailed.
func (s *deviceSession) closeInterop() error {
	if s.handle == 0 {
		return nil
	}
	h := s.handle
	ok := s.interop.CloseDevice(h)
	s.handle = 0
	s.interop = nil
	if !ok {
		Logger().Error("sharetex: interop session failed to close", "handle", uintptr(h))
		return fmt.Errorf("%w: handle %#x", ErrInteropCloseFailed, uintptr(h))
	}
	Logger().Info("sharetex: interop session closed", "handle", uintptr(h))
	return nil
}

// teardown releases the interop session, the device and the instance in that
// order. It is safe to call on an uninitialized session. The device and
// instance are released even when closing interop fails.
func (s *deviceSession) teardown() error {
	if !s.state.deviceReady() && s.instance == nil {
		return nil
	}

	err := s.closeInterop()

	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
	s.state = StateUninitialized
	s.metrics.deviceReleased()

	Logger().Info("sharetex: device released", "backend", s.drv.Name())
	return err
}

// interopReady reports whether an interop session is open.
func (s *deviceSession) interopReady() bool { return s.state == StateInteropReady }
