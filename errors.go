package sharetex

import "errors"

// Errors returned by Service operations. Wrapped causes are preserved, so
// callers can match with errors.Is against both the sentinel and the driver
// error underneath.
var (
	// ErrDeviceCreationFailed is returned when the primary backend instance
	// or device could not be created.
	ErrDeviceCreationFailed = errors.New("sharetex: device creation failed")

	// ErrInteropUnavailable reports that no interop session is open. Texture
	// operations report it as StatusNotSupported; lock operations return it
	// wrapped, and StatusOf maps it back to StatusNotSupported.
	ErrInteropUnavailable = errors.New("sharetex: interop unavailable")

	// ErrInteropCloseFailed is returned when closing a previously opened
	// interop session fails. It indicates driver state corruption.
	ErrInteropCloseFailed = errors.New("sharetex: interop session failed to close")

	// ErrTextureCreationFailed is returned when the backend cannot allocate
	// or link a texture.
	ErrTextureCreationFailed = errors.New("sharetex: texture creation failed")

	// ErrInteropBindingFailed is returned when a share token cannot be bound
	// to a secondary texture or the binding cannot be registered.
	ErrInteropBindingFailed = errors.New("sharetex: interop binding failed")

	// ErrLockFailed is returned when the driver refuses a lock request.
	ErrLockFailed = errors.New("sharetex: lock failed")

	// ErrUnlockFailed is returned when the driver refuses an unlock request.
	ErrUnlockFailed = errors.New("sharetex: unlock failed")

	// ErrNotInitialized is returned for texture or lock operations attempted
	// while no session is open.
	ErrNotInitialized = errors.New("sharetex: device not initialized")

	// ErrAlreadyLocked is returned when a registration is locked twice
	// without an intervening unlock.
	ErrAlreadyLocked = errors.New("sharetex: texture already locked")

	// ErrNotLocked is returned when unlocking a registration that is not locked.
	ErrNotLocked = errors.New("sharetex: texture not locked")

	// ErrUnknownRegistration is returned for registration handles this
	// Service did not create.
	ErrUnknownRegistration = errors.New("sharetex: unknown registration handle")

	// ErrHandlesExhausted is returned by OpenSession when the largest open
	// handle is the maximum handle value.
	ErrHandlesExhausted = errors.New("sharetex: session handles exhausted")

	// ErrClosed is returned by operations on a closed Service.
	ErrClosed = errors.New("sharetex: service closed")
)
