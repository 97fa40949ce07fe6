package sharetex

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
)

// TextureDescriptor describes a shared texture. It always has one mip level
// and lives in the device-default pool.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Usage is passed to the backend unchanged.
	Usage gputypes.TextureUsage

	// Format is the pixel format. When linking to an existing allocation it
	// must match the original; mismatches are reported by the backend.
	Format gputypes.TextureFormat
}

// DefaultTextureDescriptor returns a render-target descriptor of the given
// size and format.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		Format: format,
	}
}

// SharedTexture is the primary half of a shared texture.
type SharedTexture struct {
	// Texture is the backend texture object.
	Texture driver.Texture

	// Token names the allocation for other processes and APIs.
	Token driver.ShareToken

	// Owned is true when this Service allocated the memory, false when it
	// linked to an allocation made elsewhere.
	Owned bool

	released bool
}

// LinkedTexture is the secondary half of a shared texture: a texture name in
// the secondary API bound to the primary allocation through the interop
// session.
type LinkedTexture struct {
	Name         driver.TextureName
	Registration driver.RegistrationHandle
	Token        driver.ShareToken
	Access       driver.Access
}

// linkedEntry is one row of the registration table.
type linkedEntry struct {
	shared *SharedTexture
	name   driver.TextureName
	access driver.Access
}

// textureManager creates primary textures and binds them into the
// secondary API. Callers serialize access.
type textureManager struct {
	session *deviceSession
	locks   *lockCoordinator
	metrics *metrics
	linked  map[driver.RegistrationHandle]*linkedEntry
	live    map[*SharedTexture]struct{}

	// retired holds the registrations dropped by the last teardown.
	retired map[driver.RegistrationHandle]struct{}
}

func newTextureManager(session *deviceSession, locks *lockCoordinator, m *metrics) *textureManager {
	return &textureManager{
		session: session,
		locks:   locks,
		metrics: m,
		linked:  make(map[driver.RegistrationHandle]*linkedEntry),
		live:    make(map[*SharedTexture]struct{}),
		retired: make(map[driver.RegistrationHandle]struct{}),
	}
}

// createShared allocates a new texture when token is zero, or opens the
// allocation named by token.
func (m *textureManager) createShared(desc TextureDescriptor, token driver.ShareToken) (*SharedTexture, error) {
	if !m.session.state.deviceReady() {
		return nil, ErrNotInitialized
	}

	d := driver.TextureDescriptor{
		Label:     desc.Label,
		Width:     desc.Width,
		Height:    desc.Height,
		Usage:     desc.Usage,
		Format:    desc.Format,
		NonSecure: token == 0,
	}

	tex, out, err := m.session.device.CreateTexture(d, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTextureCreationFailed, d, err)
	}
	if out == 0 {
		tex.Release()
		return nil, fmt.Errorf("%w: %s: backend returned no share token", ErrTextureCreationFailed, d)
	}

	st := &SharedTexture{Texture: tex, Token: out, Owned: token == 0}
	m.live[st] = struct{}{}
	m.metrics.textureCreated(st.Owned)
	Logger().Debug("sharetex: shared texture created",
		"desc", d.String(), "token", uintptr(out), "owned", st.Owned)
	return st, nil
}

// releaseShared drops the reference held by t. It is safe to call twice.
func (m *textureManager) releaseShared(t *SharedTexture) {
	if t == nil || t.released {
		return
	}
	t.released = true
	delete(m.live, t)
	t.Texture.Release()
}

// createLinked obtains the primary half and registers it with the interop
// session. Without interop it reports StatusNotSupported and keeps no
// secondary object.
func (m *textureManager) createLinked(desc TextureDescriptor, token driver.ShareToken, access driver.Access) (LinkedTexture, Status, error) {
	shared, err := m.createShared(desc, token)
	if err != nil {
		return LinkedTexture{}, StatusFailed, err
	}

	if !m.session.interopReady() {
		m.releaseShared(shared)
		Logger().Debug("sharetex: linked texture not supported without interop")
		return LinkedTexture{}, StatusNotSupported, nil
	}

	ip, h := m.session.interop, m.session.handle
	name := ip.GenTexture()

	if !ip.SetShareHandle(shared.Texture, shared.Token) {
		ip.DeleteTexture(name)
		m.releaseShared(shared)
		return LinkedTexture{}, StatusFailed,
			fmt.Errorf("%w: set share handle %#x on texture %d", ErrInteropBindingFailed, uintptr(shared.Token), name)
	}

	reg := ip.Register(h, shared.Texture, name, access)
	if reg == 0 {
		ip.DeleteTexture(name)
		m.releaseShared(shared)
		return LinkedTexture{}, StatusFailed,
			fmt.Errorf("%w: register texture %d (%s)", ErrInteropBindingFailed, name, access)
	}

	m.linked[reg] = &linkedEntry{shared: shared, name: name, access: access}
	delete(m.retired, reg)
	m.locks.track(reg)
	m.metrics.linkedChanged(len(m.linked))

	Logger().Debug("sharetex: linked texture registered",
		"name", uint32(name), "registration", uintptr(reg), "access", access.String())

	return LinkedTexture{
		Name:         name,
		Registration: reg,
		Token:        shared.Token,
		Access:       access,
	}, StatusOK, nil
}

// releaseLinked unregisters lt and deletes its secondary name. Releasing a
// registration that is no longer in the table is a no-op. Registrations
// dropped by the last teardown stay a no-op while no interop session is open.
func (m *textureManager) releaseLinked(lt LinkedTexture) Status {
	if _, ok := m.retired[lt.Registration]; ok && lt.Registration != 0 {
		return StatusOK
	}
	if !m.session.interopReady() {
		return StatusNotSupported
	}

	if lt.Registration == 0 {
		if lt.Name != 0 {
			m.session.interop.DeleteTexture(lt.Name)
		}
		return StatusOK
	}

	entry, ok := m.linked[lt.Registration]
	if !ok {
		return StatusOK
	}
	m.dropEntry(lt.Registration, entry)
	m.metrics.linkedChanged(len(m.linked))
	return StatusOK
}

// dropEntry unregisters one row and releases what it holds. A registration
// still locked is unlocked first so the driver accepts the unregister.
func (m *textureManager) dropEntry(reg driver.RegistrationHandle, e *linkedEntry) {
	ip, h := m.session.interop, m.session.handle

	if m.locks.isLocked(reg) && !ip.Unlock(h, reg) {
		Logger().Warn("sharetex: unlock before unregister failed", "registration", uintptr(reg))
	}
	if !ip.Unregister(h, reg) {
		Logger().Warn("sharetex: unregister failed", "registration", uintptr(reg))
	}
	delete(m.linked, reg)
	m.locks.forget(reg)

	// Drivers that reclaim the primary texture on unregister must not see a
	// second release.
	if !ip.ReleasesOnUnregister() {
		m.releaseShared(e.shared)
	} else {
		e.shared.released = true
		delete(m.live, e.shared)
	}
	ip.DeleteTexture(e.name)
}

// releaseAll drops every registration, then every primary texture still
// held. Called before the interop session and the device close.
func (m *textureManager) releaseAll() {
	clear(m.retired)
	for reg := range m.linked {
		m.retired[reg] = struct{}{}
	}
	if len(m.linked) > 0 {
		if m.session.interopReady() {
			for reg, e := range m.linked {
				m.dropEntry(reg, e)
			}
		} else {
			clear(m.linked)
		}
		m.metrics.linkedChanged(0)
	}
	for st := range m.live {
		Logger().Debug("sharetex: releasing shared texture at teardown", "token", uintptr(st.Token))
		m.releaseShared(st)
	}
}
