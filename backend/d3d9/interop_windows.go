package d3d9

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/gogpu/sharetex/driver"
	"golang.org/x/sys/windows"
)

var (
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")

	_wglGetProcAddress = opengl32.NewProc("wglGetProcAddress")
	_glGenTextures     = opengl32.NewProc("glGenTextures")
	_glDeleteTextures  = opengl32.NewProc("glDeleteTextures")
)

const glTexture2D = 0x0DE1

// WGL_NV_DX_interop access modes.
const (
	wglAccessReadOnly     = 0x0000
	wglAccessReadWrite    = 0x0001
	wglAccessWriteDiscard = 0x0002
)

// wglProcs are the WGL_NV_DX_interop entry points. They are only valid for
// the GL context that was current when they were resolved.
type wglProcs struct {
	openDevice     uintptr
	closeDevice    uintptr
	setShareHandle uintptr
	registerObject uintptr
	unregister     uintptr
	lockObjects    uintptr
	unlockObjects  uintptr
}

// loadWGLProcs resolves the extension. It returns false when any entry
// point is missing, which includes the case of no current GL context.
func loadWGLProcs() (wglProcs, bool) {
	if _wglGetProcAddress.Find() != nil {
		return wglProcs{}, false
	}
	get := func(name string) uintptr {
		p, err := windows.BytePtrFromString(name)
		if err != nil {
			return 0
		}
		r, _, _ := _wglGetProcAddress.Call(uintptr(unsafe.Pointer(p)))
		return r
	}
	p := wglProcs{
		openDevice:     get("wglDXOpenDeviceNV"),
		closeDevice:    get("wglDXCloseDeviceNV"),
		setShareHandle: get("wglDXSetResourceShareHandleNV"),
		registerObject: get("wglDXRegisterObjectNV"),
		unregister:     get("wglDXUnregisterObjectNV"),
		lockObjects:    get("wglDXLockObjectsNV"),
		unlockObjects:  get("wglDXUnlockObjectsNV"),
	}
	ok := p.openDevice != 0 && p.closeDevice != 0 && p.setShareHandle != 0 &&
		p.registerObject != 0 && p.unregister != 0 && p.lockObjects != 0 && p.unlockObjects != 0
	return p, ok
}

// wglInterop implements driver.Interop with WGL_NV_DX_interop.
type wglInterop struct {
	d *Driver

	mu    sync.Mutex
	procs wglProcs
	ready bool
}

// Interface compliance check.
var _ driver.Interop = (*wglInterop)(nil)

func call(fn uintptr, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(fn, args...)
	return r
}

func (w *wglInterop) loaded() (wglProcs, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.procs, w.ready
}

// OpenDevice resolves the extension and opens the D3D device for GL
// sharing.
func (w *wglInterop) OpenDevice(dev driver.Device) driver.InteropHandle {
	dv, ok := dev.(*device)
	if !ok || dv.obj == 0 {
		return 0
	}
	procs, ok := loadWGLProcs()
	if !ok {
		w.d.log().Warn("d3d9: WGL_NV_DX_interop not available")
		return 0
	}
	h := call(procs.openDevice, dv.obj)
	if h == 0 {
		return 0
	}

	w.mu.Lock()
	w.procs, w.ready = procs, true
	w.mu.Unlock()
	return driver.InteropHandle(h)
}

func (w *wglInterop) CloseDevice(h driver.InteropHandle) bool {
	procs, ok := w.loaded()
	if !ok {
		return false
	}
	closed := call(procs.closeDevice, uintptr(h)) != 0

	w.mu.Lock()
	w.ready = false
	w.mu.Unlock()
	return closed
}

func (w *wglInterop) GenTexture() driver.TextureName {
	var name uint32
	_glGenTextures.Call(1, uintptr(unsafe.Pointer(&name)))
	return driver.TextureName(name)
}

func (w *wglInterop) DeleteTexture(name driver.TextureName) {
	n := uint32(name)
	_glDeleteTextures.Call(1, uintptr(unsafe.Pointer(&n)))
}

func (w *wglInterop) SetShareHandle(tex driver.Texture, token driver.ShareToken) bool {
	t, ok := tex.(*texture)
	procs, ready := w.loaded()
	if !ok || !ready {
		return false
	}
	return call(procs.setShareHandle, t.obj, uintptr(token)) != 0
}

func (w *wglInterop) Register(h driver.InteropHandle, tex driver.Texture, name driver.TextureName, access driver.Access) driver.RegistrationHandle {
	t, ok := tex.(*texture)
	procs, ready := w.loaded()
	if !ok || !ready {
		return 0
	}
	r := call(procs.registerObject, uintptr(h), t.obj, uintptr(name), glTexture2D, uintptr(wglAccess(access)))
	return driver.RegistrationHandle(r)
}

func (w *wglInterop) Unregister(h driver.InteropHandle, reg driver.RegistrationHandle) bool {
	procs, ready := w.loaded()
	if !ready {
		return false
	}
	return call(procs.unregister, uintptr(h), uintptr(reg)) != 0
}

func (w *wglInterop) Lock(h driver.InteropHandle, regs ...driver.RegistrationHandle) bool {
	procs, ready := w.loaded()
	if !ready || len(regs) == 0 {
		return false
	}
	return call(procs.lockObjects, uintptr(h), uintptr(len(regs)), uintptr(unsafe.Pointer(&regs[0]))) != 0
}

func (w *wglInterop) Unlock(h driver.InteropHandle, regs ...driver.RegistrationHandle) bool {
	procs, ready := w.loaded()
	if !ready || len(regs) == 0 {
		return false
	}
	return call(procs.unlockObjects, uintptr(h), uintptr(len(regs)), uintptr(unsafe.Pointer(&regs[0]))) != 0
}

// ReleasesOnUnregister is false: unregistering leaves the D3D texture
// alive.
func (w *wglInterop) ReleasesOnUnregister() bool { return false }

func wglAccess(a driver.Access) uint32 {
	switch a {
	case driver.AccessReadWrite:
		return wglAccessReadWrite
	case driver.AccessWriteDiscard:
		return wglAccessWriteDiscard
	default:
		return wglAccessReadOnly
	}
}
