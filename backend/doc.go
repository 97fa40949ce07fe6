// Package backend provides the registry of sharetex drivers.
//
// Drivers register themselves via init() and are selected at runtime. The
// software driver is part of this package and always available:
//
//	import _ "github.com/gogpu/sharetex/backend"
//
// GPU drivers live in sub-packages and register on import:
//
//	import (
//		_ "github.com/gogpu/sharetex/backend/d3d9" // windows only
//		_ "github.com/gogpu/sharetex/backend/wgpu"
//	)
//
// # Driver Selection
//
// Use Default() to get the best available driver, or Get() to request one
// by name:
//
//	d := backend.Default()
//	d := backend.Get("software")
//
// # Available Backends
//
//   - "d3d9": Direct3D 9Ex primary device with WGL_NV_DX_interop to OpenGL
//   - "wgpu": Pure Go WebGPU HAL primary device, no interop
//   - "software": in-memory driver with both halves, for tests and tooling
package backend
