package d3d9

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// d3dFormat is a D3DFORMAT value.
type d3dFormat uint32

// D3DFORMAT values used by sharetex.
const (
	fmtUnknown  d3dFormat = 0
	fmtA8R8G8B8 d3dFormat = 21
	fmtX8R8G8B8 d3dFormat = 22
	fmtA8B8G8R8 d3dFormat = 32
	fmtX8B8G8R8 d3dFormat = 33
	fmtL8       d3dFormat = 50
	fmtD24S8    d3dFormat = 75
)

// D3DUSAGE flags.
const (
	usageRenderTarget uint32 = 0x00000001
	usageDynamic      uint32 = 0x00000200
	usageNonSecure    uint32 = 0x00800000
)

// toD3DFormat maps a texture format to its D3D9 equivalent.
func toD3DFormat(f gputypes.TextureFormat) (d3dFormat, error) {
	switch f {
	case gputypes.TextureFormatBGRA8Unorm:
		return fmtA8R8G8B8, nil
	case gputypes.TextureFormatRGBA8Unorm:
		return fmtA8B8G8R8, nil
	case gputypes.TextureFormatR8Unorm:
		return fmtL8, nil
	case gputypes.TextureFormatDepth24PlusStencil8:
		return fmtD24S8, nil
	default:
		return fmtUnknown, fmt.Errorf("d3d9: unsupported texture format %d", uint32(f))
	}
}

// fromD3DFormat maps a display or back buffer format back. Formats without
// alpha map to their alpha variant.
func fromD3DFormat(f d3dFormat) gputypes.TextureFormat {
	switch f {
	case fmtA8R8G8B8, fmtX8R8G8B8:
		return gputypes.TextureFormatBGRA8Unorm
	case fmtA8B8G8R8, fmtX8B8G8R8:
		return gputypes.TextureFormatRGBA8Unorm
	case fmtL8:
		return gputypes.TextureFormatR8Unorm
	case fmtD24S8:
		return gputypes.TextureFormatDepth24PlusStencil8
	default:
		return gputypes.TextureFormatUndefined
	}
}

// backBufferFormat picks the back buffer format for f. When f is the format
// the display mode reported, the display's own D3DFORMAT is kept so an
// X8R8G8B8 desktop gets an X8R8G8B8 back buffer.
func backBufferFormat(f gputypes.TextureFormat, display d3dFormat) (d3dFormat, error) {
	if display != fmtUnknown && fromD3DFormat(display) == f {
		return display, nil
	}
	return toD3DFormat(f)
}

// toD3DUsage maps texture usage to D3DUSAGE flags. Render attachments
// become render targets in GPU memory; textures that are only copied into
// become dynamic textures the CPU can update.
func toD3DUsage(u gputypes.TextureUsage, nonSecure bool) uint32 {
	var usage uint32
	switch {
	case u&gputypes.TextureUsageRenderAttachment != 0:
		usage = usageRenderTarget
	case u&gputypes.TextureUsageCopyDst != 0:
		usage = usageDynamic
	}
	if nonSecure {
		usage |= usageNonSecure
	}
	return usage
}
