package driver

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ShareToken is an opaque identifier naming a cross-API shareable GPU
// allocation. Zero means "no token".
type ShareToken uintptr

// TextureName is a secondary-API texture name.
type TextureName uint32

// RegistrationHandle identifies a primary texture registered with an
// interop session. Zero means "not registered".
type RegistrationHandle uintptr

// InteropHandle identifies an open interop session. Zero is the null handle.
type InteropHandle uintptr

// Access restricts what the secondary API may do with a registered texture.
type Access uint32

// Access modes.
const (
	// AccessReadOnly allows the secondary API to read the texture only.
	AccessReadOnly Access = iota

	// AccessReadWrite allows reads and writes.
	AccessReadWrite

	// AccessWriteDiscard allows writes; previous contents are undefined.
	AccessWriteDiscard
)

// String returns the access mode name.
func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "read-only"
	case AccessReadWrite:
		return "read-write"
	case AccessWriteDiscard:
		return "write-discard"
	default:
		return fmt.Sprintf("Access(%d)", uint32(a))
	}
}

// VertexProcessing selects where the device performs vertex processing.
type VertexProcessing uint8

// Vertex processing modes.
const (
	VertexProcessingSoftware VertexProcessing = iota
	VertexProcessingHardware
)

// String returns the mode name.
func (v VertexProcessing) String() string {
	if v == VertexProcessingHardware {
		return "hardware"
	}
	return "software"
}

// Caps describes what the default adapter supports.
type Caps struct {
	// HardwareVertexProcessing reports whether vertex processing can run on
	// the GPU.
	HardwareVertexProcessing bool

	// AdapterName is a human readable adapter description, if known.
	AdapterName string
}

// DisplayMode is the current mode of the default adapter's display.
type DisplayMode struct {
	Width       uint32
	Height      uint32
	RefreshRate uint32
	Format      gputypes.TextureFormat
}

// DeviceParams describes the off-screen device sharetex creates. The device
// never presents; its back buffer only hosts the device context.
type DeviceParams struct {
	BackBufferWidth  uint32
	BackBufferHeight uint32
	BackBufferFormat gputypes.TextureFormat
	BackBufferCount  uint32
	DepthFormat      gputypes.TextureFormat
	AutoDepthStencil bool
	VertexProcessing VertexProcessing
	Multithreaded    bool
	PureDevice       bool
}

// TextureDescriptor describes a single-level, default-pool 2D texture.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Usage  gputypes.TextureUsage
	Format gputypes.TextureFormat

	// NonSecure marks a brand new allocation that may be opened by other
	// processes and APIs. It is never set when linking to an existing token.
	NonSecure bool
}

// String formats the descriptor for logs and errors.
func (d TextureDescriptor) String() string {
	return fmt.Sprintf("%dx%d usage=%#x format=%d", d.Width, d.Height, uint32(d.Usage), uint32(d.Format))
}

// Compatible reports whether a texture described by d can open an
// allocation created with o. Labels and the NonSecure flag are ignored.
func (d TextureDescriptor) Compatible(o TextureDescriptor) bool {
	return d.Width == o.Width && d.Height == o.Height &&
		d.Format == o.Format && d.Usage == o.Usage
}
