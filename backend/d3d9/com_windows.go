package d3d9

import (
	"fmt"
	"syscall"
	"unsafe"
)

// IUnknown vtable slots.
const (
	vtblRelease = 2
)

// IDirect3D9Ex vtable slots.
const (
	d3dGetAdapterIdentifier  = 5
	d3dGetAdapterDisplayMode = 8
	d3dGetDeviceCaps         = 14
	d3dCreateDeviceEx        = 20
)

// IDirect3DDevice9 vtable slots.
const (
	devCreateTexture = 23
)

// hresultError is a failed HRESULT from a named call.
type hresultError struct {
	Name string
	Code uint32
}

func (e hresultError) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, e.Code)
}

// comVtblFn returns the function pointer in vtable slot idx of obj.
func comVtblFn(obj uintptr, idx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

// comCall invokes vtable slot idx of obj and converts a failed HRESULT.
func comCall(name string, obj uintptr, idx int, args ...uintptr) error {
	hr, _, _ := syscall.SyscallN(comVtblFn(obj, idx), append([]uintptr{obj}, args...)...)
	if int32(hr) < 0 {
		return hresultError{Name: name, Code: uint32(hr)}
	}
	return nil
}

// comRelease calls IUnknown::Release on obj.
func comRelease(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(comVtblFn(obj, vtblRelease), obj)
	}
}
