package d3d9

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatRoundTrip(t *testing.T) {
	formats := []gputypes.TextureFormat{
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatR8Unorm,
		gputypes.TextureFormatDepth24PlusStencil8,
	}
	for _, f := range formats {
		d, err := toD3DFormat(f)
		if err != nil {
			t.Errorf("toD3DFormat(%d) error = %v", uint32(f), err)
			continue
		}
		if got := fromD3DFormat(d); got != f {
			t.Errorf("fromD3DFormat(toD3DFormat(%d)) = %d", uint32(f), uint32(got))
		}
	}
}

func TestFromD3DFormatDisplayModes(t *testing.T) {
	tests := []struct {
		in   d3dFormat
		want gputypes.TextureFormat
	}{
		{fmtX8R8G8B8, gputypes.TextureFormatBGRA8Unorm},
		{fmtX8B8G8R8, gputypes.TextureFormatRGBA8Unorm},
		{d3dFormat(23), gputypes.TextureFormatUndefined}, // R5G6B5
	}
	for _, tt := range tests {
		if got := fromD3DFormat(tt.in); got != tt.want {
			t.Errorf("fromD3DFormat(%d) = %d, want %d", tt.in, uint32(got), uint32(tt.want))
		}
	}
}

func TestBackBufferFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  gputypes.TextureFormat
		display d3dFormat
		want    d3dFormat
	}{
		{"display without alpha", gputypes.TextureFormatBGRA8Unorm, fmtX8R8G8B8, fmtX8R8G8B8},
		{"display with alpha", gputypes.TextureFormatBGRA8Unorm, fmtA8R8G8B8, fmtA8R8G8B8},
		{"rgba display", gputypes.TextureFormatRGBA8Unorm, fmtX8B8G8R8, fmtX8B8G8R8},
		{"format differs from display", gputypes.TextureFormatRGBA8Unorm, fmtX8R8G8B8, fmtA8B8G8R8},
		{"display not queried", gputypes.TextureFormatBGRA8Unorm, fmtUnknown, fmtA8R8G8B8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backBufferFormat(tt.format, tt.display)
			if err != nil {
				t.Fatalf("backBufferFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("backBufferFormat() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToD3DFormatUnsupported(t *testing.T) {
	if _, err := toD3DFormat(gputypes.TextureFormatUndefined); err == nil {
		t.Error("toD3DFormat(undefined) error = nil")
	}
}

func TestToD3DUsage(t *testing.T) {
	tests := []struct {
		name      string
		usage     gputypes.TextureUsage
		nonSecure bool
		want      uint32
	}{
		{"render target", gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding, false, usageRenderTarget},
		{"new render target", gputypes.TextureUsageRenderAttachment, true, usageRenderTarget | usageNonSecure},
		{"upload", gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding, false, usageDynamic},
		{"sampled only", gputypes.TextureUsageTextureBinding, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toD3DUsage(tt.usage, tt.nonSecure); got != tt.want {
				t.Errorf("toD3DUsage() = %#x, want %#x", got, tt.want)
			}
		})
	}
}
