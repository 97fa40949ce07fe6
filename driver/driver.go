package driver

import "errors"

// ErrTokenNotFound is returned by backends that keep a share table when a
// token does not name a live allocation.
var ErrTokenNotFound = errors.New("driver: share token not found")

// ErrDescriptorMismatch is returned when a link request does not describe
// the allocation behind the token compatibly.
var ErrDescriptorMismatch = errors.New("driver: descriptor does not match shared allocation")

// Driver is a graphics backend able to own a primary device and, optionally,
// bridge its textures to a secondary API.
type Driver interface {
	// Name returns the backend identifier (e.g. "software", "d3d9").
	Name() string

	// OpenInstance creates the primary API instance.
	OpenInstance() (Instance, error)

	// Interop returns the interop bridge, or nil when the secondary API's
	// driver does not support interop.
	Interop() Interop
}

// Instance is the primary API entry point.
type Instance interface {
	// Caps queries the default adapter's capabilities.
	Caps() (Caps, error)

	// DisplayMode queries the default adapter's current display mode.
	DisplayMode() (DisplayMode, error)

	// CreateDevice creates a device on the default adapter.
	CreateDevice(params DeviceParams) (Device, error)

	// Release frees the instance.
	Release()
}

// Device is a primary API device owning GPU resources.
type Device interface {
	// CreateTexture allocates a new shareable texture when token is zero and
	// returns its fresh share token. When token is non-zero it opens the
	// existing allocation instead and returns the same token.
	CreateTexture(desc TextureDescriptor, token ShareToken) (Texture, ShareToken, error)

	// Release frees the device.
	Release()
}

// Texture is the primary half of a shared texture.
type Texture interface {
	// Descriptor returns the descriptor the texture was created or opened with.
	Descriptor() TextureDescriptor

	// Release drops this reference. For a new allocation this frees the GPU
	// memory once no other opener holds it.
	Release()
}

// Interop bridges primary textures into the secondary API.
//
// Methods that return a bool report the driver's success flag unchanged.
type Interop interface {
	// OpenDevice opens an interop session on dev. A zero handle means the
	// driver failed to initialize.
	OpenDevice(dev Device) InteropHandle

	// CloseDevice closes a session opened by OpenDevice.
	CloseDevice(h InteropHandle) bool

	// GenTexture allocates a secondary-API texture name.
	GenTexture() TextureName

	// DeleteTexture frees a secondary-API texture name.
	DeleteTexture(name TextureName)

	// SetShareHandle associates tex with its share token so the secondary API
	// can resolve the underlying allocation.
	SetShareHandle(tex Texture, token ShareToken) bool

	// Register binds tex to name and returns a registration handle, or zero.
	Register(h InteropHandle, tex Texture, name TextureName, access Access) RegistrationHandle

	// Unregister removes a registration.
	Unregister(h InteropHandle, reg RegistrationHandle) bool

	// Lock grants the secondary API exclusive access to regs.
	Lock(h InteropHandle, regs ...RegistrationHandle) bool

	// Unlock returns access to the primary API.
	Unlock(h InteropHandle, regs ...RegistrationHandle) bool

	// ReleasesOnUnregister reports whether the driver frees the primary
	// texture when its registration is removed.
	ReleasesOnUnregister() bool
}
