package sharetex

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/backend"
)

// newTestService returns a Service backed by a fresh software driver.
func newTestService(t *testing.T, opts ...backend.SoftwareOption) (*Service, *backend.SoftwareDriver) {
	t.Helper()
	drv := backend.NewSoftwareDriver(opts...)
	svc, err := New(WithDriver(drv))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, drv
}

// mustOpen opens a session or fails the test.
func mustOpen(t *testing.T, svc *Service) SessionHandle {
	t.Helper()
	h, err := svc.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	return h
}

// renderTarget is the 256x256 BGRA render-target descriptor used across tests.
func renderTarget() TextureDescriptor {
	return DefaultTextureDescriptor(256, 256, gputypes.TextureFormatBGRA8Unorm)
}
