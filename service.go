package sharetex

import (
	"fmt"
	"sync"

	"github.com/gogpu/sharetex/backend"
	"github.com/gogpu/sharetex/driver"
)

// Service owns one shared device and everything created on it: the open
// session handles, the interop session, the linked texture table and the
// per-texture lock state.
//
// All methods are safe for concurrent use. Lifecycle, texture and lock
// operations are serialized by a single mutex.
type Service struct {
	mu sync.Mutex

	drv      driver.Driver
	registry *handleRegistry
	session  *deviceSession
	textures *textureManager
	locks    *lockCoordinator
	metrics  *metrics
	closed   bool
}

// New creates a Service. No device is created until the first OpenSession.
func New(opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	drv := o.driver
	if drv == nil {
		if o.backend != "" {
			drv = backend.Get(o.backend)
			if drv == nil {
				return nil, fmt.Errorf("%w: %q", backend.ErrBackendNotAvailable, o.backend)
			}
		} else if drv = backend.Default(); drv == nil {
			return nil, backend.ErrBackendNotAvailable
		}
	}

	m := newMetrics(o.registerer)
	session := newDeviceSession(drv, o.device, m)
	locks := newLockCoordinator(session, m)

	s := &Service{
		drv:      drv,
		registry: newHandleRegistry(),
		session:  session,
		textures: newTextureManager(session, locks, m),
		locks:    locks,
		metrics:  m,
	}
	propagateLogger(drv)
	return s, nil
}

// Backend returns the name of the driver in use.
func (s *Service) Backend() string { return s.drv.Name() }

// OpenSession registers a new owner of the shared device and returns its
// handle. The first open creates the device; if that fails no handle is
// registered and the error wraps ErrDeviceCreationFailed.
func (s *Service) OpenSession() (SessionHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	h := s.registry.next()
	if h == 0 {
		return 0, ErrHandlesExhausted
	}
	if s.registry.len() == 0 {
		if err := s.session.ensureCreated(); err != nil {
			Logger().Warn("sharetex: open session failed", "error", err)
			return 0, err
		}
	}
	s.registry.insert(h)
	s.metrics.sessionsChanged(s.registry.len())

	Logger().Debug("sharetex: session opened", "handle", uint32(h), "open", s.registry.len())
	return h, nil
}

// CloseSession removes h and reports whether it was open. Closing the last
// open handle tears the device down; the only error it can return wraps
// ErrInteropCloseFailed, in which case the device is released anyway.
func (s *Service) CloseSession(h SessionHandle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.remove(h) {
		Logger().Debug("sharetex: close of unknown session", "handle", uint32(h))
		return false, nil
	}
	s.metrics.sessionsChanged(s.registry.len())
	Logger().Debug("sharetex: session closed", "handle", uint32(h), "open", s.registry.len())

	if s.registry.len() > 0 {
		return true, nil
	}
	return true, s.teardown()
}

// teardown releases everything hanging off the device, then the device.
func (s *Service) teardown() error {
	s.textures.releaseAll()
	s.locks.reset()
	return s.session.teardown()
}

// CreateSharedTexture creates the primary half of a shared texture. With a
// zero token it allocates new memory and returns a fresh token; otherwise it
// links to the allocation the token names.
func (s *Service) CreateSharedTexture(desc TextureDescriptor, token driver.ShareToken) (*SharedTexture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.textures.createShared(desc, token)
}

// ReleaseSharedTexture drops a texture returned by CreateSharedTexture.
// Linked textures only release the local reference; the allocation stays
// with its owner. Textures still held when the last session closes are
// released with the device, and their tokens stop resolving.
func (s *Service) ReleaseSharedTexture(t *SharedTexture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.textures.releaseShared(t)
}

// CreateLinkedTexture creates or links a primary texture and exposes it to
// the secondary API with the given access. When no interop session is open
// it returns StatusNotSupported with a nil error and creates nothing.
func (s *Service) CreateLinkedTexture(desc TextureDescriptor, token driver.ShareToken, access driver.Access) (LinkedTexture, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.textures.createLinked(desc, token, access)
}

// ReleaseLinkedTexture unregisters lt from the interop session and deletes
// its secondary texture name. Releasing the same texture twice is StatusOK,
// as is releasing one the closing of the last session already dropped.
// Otherwise, without an interop session it returns StatusNotSupported.
func (s *Service) ReleaseLinkedTexture(lt LinkedTexture) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.textures.releaseLinked(lt)
}

// LockTexture gives the secondary API exclusive access to reg. It must be
// paired with exactly one UnlockTexture before the next LockTexture.
func (s *Service) LockTexture(reg driver.RegistrationHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.locks.lock(reg)
}

// UnlockTexture returns access to reg to the primary API.
func (s *Service) UnlockTexture(reg driver.RegistrationHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.locks.unlock(reg)
}

// State returns the device session state.
func (s *Service) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.state
}

// InteropAvailable reports whether linked textures can be created.
func (s *Service) InteropAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.interopReady()
}

// OpenSessions returns the open handles in ascending order.
func (s *Service) OpenSessions() []SessionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.handles()
}

// Close drops all sessions and releases the device. Further OpenSession
// calls fail with ErrClosed. Close is idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	detachLogger(s.drv)

	for _, h := range s.registry.handles() {
		s.registry.remove(h)
	}
	s.metrics.sessionsChanged(0)
	return s.teardown()
}
