// Package d3d9 provides the Windows sharetex driver: a Direct3D 9Ex device
// as the primary API and the WGL_NV_DX_interop extension as the bridge to
// OpenGL.
//
// The package registers itself on import and ranks first in
// backend.Default:
//
//	import _ "github.com/gogpu/sharetex/backend/d3d9"
//
// On other platforms the package compiles to the format tables only and
// registers nothing.
//
// # OpenGL Context
//
// WGL extension entry points are resolved with wglGetProcAddress, which
// only succeeds while an OpenGL context is current on the calling thread.
// Open the first session, and create or release linked textures, from the
// thread that owns the context. Without a current context the driver
// reports interop as unavailable and only primary textures can be created.
//
// # Share Tokens
//
// A share token is the D3D9Ex shared resource handle. Tokens returned for
// new allocations can be passed to other processes, which link to the same
// memory by creating a texture with an identical descriptor.
package d3d9
