package d3d9

import (
	"testing"

	"github.com/gogpu/sharetex/backend"
	"github.com/gogpu/sharetex/driver"
)

func TestRegistered(t *testing.T) {
	d := backend.Get(backend.BackendD3D9)
	if d == nil {
		t.Fatal("d3d9 backend not registered")
	}
	if d.Interop() == nil {
		t.Error("Interop() = nil")
	}
}

func TestWGLAccess(t *testing.T) {
	tests := []struct {
		in   driver.Access
		want uint32
	}{
		{driver.AccessReadOnly, wglAccessReadOnly},
		{driver.AccessReadWrite, wglAccessReadWrite},
		{driver.AccessWriteDiscard, wglAccessWriteDiscard},
	}
	for _, tt := range tests {
		if got := wglAccess(tt.in); got != tt.want {
			t.Errorf("wglAccess(%v) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

// TestInteropWithoutDevice checks that interop calls made before a device is
// opened fail without reaching WGL.
func TestInteropWithoutDevice(t *testing.T) {
	ip := New().Interop()
	if h := ip.OpenDevice(nil); h != 0 {
		t.Errorf("OpenDevice(nil) = %#x, want 0", uintptr(h))
	}
	if ip.CloseDevice(1) {
		t.Error("CloseDevice() = true before open")
	}
	if ip.Lock(1, 2) || ip.Unlock(1, 2) {
		t.Error("Lock/Unlock succeeded before open")
	}
	if reg := ip.Register(1, nil, 1, driver.AccessReadOnly); reg != 0 {
		t.Errorf("Register() = %#x, want 0", uintptr(reg))
	}
}

// TestDevice creates a real device and skips where Direct3D 9Ex is missing.
func TestDevice(t *testing.T) {
	d := New()
	inst, err := d.OpenInstance()
	if err != nil {
		t.Skipf("d3d9ex unavailable: %v", err)
	}
	defer inst.Release()

	mode, err := inst.DisplayMode()
	if err != nil {
		t.Skipf("display mode: %v", err)
	}
	dev, err := inst.CreateDevice(driver.DeviceParams{
		BackBufferWidth:  64,
		BackBufferHeight: 64,
		BackBufferFormat: mode.Format,
		BackBufferCount:  1,
		DepthFormat:      fromD3DFormat(fmtD24S8),
		VertexProcessing: driver.VertexProcessingSoftware,
		Multithreaded:    true,
	})
	if err != nil {
		t.Skipf("create device: %v", err)
	}
	defer dev.Release()

	desc := driver.TextureDescriptor{Width: 256, Height: 256, Format: mode.Format, NonSecure: true}
	tex, tok, err := dev.CreateTexture(desc, 0)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Release()
	if tok == 0 {
		t.Error("CreateTexture() returned no share handle")
	}
}
