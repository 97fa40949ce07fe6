// Package sharetex shares GPU textures between a primary graphics API and a
// second, independent API without copying.
//
// A [Service] owns exactly one primary device for however many callers
// attach to it. Each caller opens a session handle; the first open creates
// the device and, when the driver supports it, an interop session with the
// secondary API. Closing the last handle tears both down.
//
// # Shared and linked textures
//
// [Service.CreateSharedTexture] allocates a new texture and returns its
// share token, or links to an existing allocation when given a token.
// [Service.CreateLinkedTexture] additionally exposes the texture to the
// secondary API and returns its texture name and registration handle.
//
// Without interop support linking reports [StatusNotSupported]; primary
// textures keep working:
//
//	svc, err := sharetex.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer svc.Close()
//
//	h, err := svc.OpenSession()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer svc.CloseSession(h)
//
//	desc := sharetex.DefaultTextureDescriptor(256, 256, gputypes.TextureFormatBGRA8Unorm)
//	lt, status, err := svc.CreateLinkedTexture(desc, 0, driver.AccessReadOnly)
//	switch {
//	case err != nil:
//		log.Fatal(err)
//	case status == sharetex.StatusNotSupported:
//		// fall back to copying
//	}
//
// # Access windows
//
// Both APIs believe they own the memory. Every access through the secondary
// API must be bracketed by [Service.LockTexture] and [Service.UnlockTexture]:
//
//	if err := svc.LockTexture(lt.Registration); err != nil {
//		return err
//	}
//	// read or write through the secondary API
//	if err := svc.UnlockTexture(lt.Registration); err != nil {
//		return err
//	}
//
// # Errors
//
// Soft outcomes are reported as a [Status] with a nil error. Hard failures
// are errors wrapping one of the package sentinels, such as
// [ErrDeviceCreationFailed] or [ErrLockFailed]. Nothing is retried.
package sharetex
