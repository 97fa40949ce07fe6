package backend

import "errors"

// Backend name constants.
const (
	// BackendSoftware is the name of the in-memory software driver.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go WebGPU HAL driver (gogpu/wgpu).
	BackendWGPU = "wgpu"
	// BackendD3D9 is the name of the Direct3D 9Ex + WGL_NV_DX_interop driver.
	BackendD3D9 = "d3d9"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)
