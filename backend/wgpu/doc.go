// Package wgpu provides a sharetex driver on top of gogpu/wgpu HAL.
//
// The driver implements the primary half only: it creates a device through
// the HAL Vulkan backend (or borrows one from a gpucontext.DeviceProvider)
// and allocates textures in a process-local share table keyed by token.
// It has no interop bridge, so Service.CreateLinkedTexture reports
// StatusNotSupported and primary textures keep working.
//
// # Registration
//
// The backend registers itself when this package is imported:
//
//	import _ "github.com/gogpu/sharetex/backend/wgpu"
//
// It ranks below the d3d9 backend and above software in backend.Default.
//
// # Shared Devices
//
// When the host application already owns a GPU device, pass its provider:
//
//	drv := wgpu.New(wgpu.WithDeviceProvider(provider))
//	svc, err := sharetex.New(sharetex.WithDriver(drv))
//
// The provider must also implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. A borrowed device is never destroyed
// by the driver. The provider's surface format is reported as the display
// format.
//
// Build with the nogpu tag to leave this backend out.
package wgpu
