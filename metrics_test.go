package sharetex

import (
	"testing"

	"github.com/gogpu/sharetex/backend"
	"github.com/gogpu/sharetex/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	drv := backend.NewSoftwareDriver()
	svc, err := New(WithDriver(drv), WithRegisterer(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer svc.Close()
	m := svc.metrics

	h := mustOpen(t, svc)
	mustOpen(t, svc)
	if got := testutil.ToFloat64(m.openSessions); got != 2 {
		t.Errorf("open_sessions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.deviceUp); got != 1 {
		t.Errorf("device_up = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.devicesCreated); got != 1 {
		t.Errorf("devices_created_total = %v, want 1", got)
	}

	lt, _, err := svc.CreateLinkedTexture(renderTarget(), 0, driver.AccessReadWrite)
	if err != nil {
		t.Fatalf("CreateLinkedTexture() error = %v", err)
	}
	if _, _, err := svc.CreateLinkedTexture(renderTarget(), lt.Token, driver.AccessReadOnly); err != nil {
		t.Fatalf("CreateLinkedTexture(link) error = %v", err)
	}
	if got := testutil.ToFloat64(m.texturesCreated.WithLabelValues("new")); got != 1 {
		t.Errorf("textures_created_total{kind=new} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.texturesCreated.WithLabelValues("linked")); got != 1 {
		t.Errorf("textures_created_total{kind=linked} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.linkedTextures); got != 2 {
		t.Errorf("linked_textures = %v, want 2", got)
	}

	_ = svc.LockTexture(lt.Registration)
	_ = svc.LockTexture(lt.Registration)
	_ = svc.UnlockTexture(lt.Registration)
	tests := []struct {
		op, result string
		want       float64
	}{
		{"lock", "ok", 1},
		{"lock", "misuse", 1},
		{"unlock", "ok", 1},
		{"unlock", "failed", 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.lockOps.WithLabelValues(tt.op, tt.result)); got != tt.want {
			t.Errorf("lock_operations_total{op=%s,result=%s} = %v, want %v", tt.op, tt.result, got, tt.want)
		}
	}

	svc.ReleaseLinkedTexture(lt)
	if got := testutil.ToFloat64(m.linkedTextures); got != 1 {
		t.Errorf("linked_textures after release = %v, want 1", got)
	}

	if _, err := svc.CloseSession(h); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := testutil.ToFloat64(m.deviceUp); got != 0 {
		t.Errorf("device_up after Close = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.linkedTextures); got != 0 {
		t.Errorf("linked_textures after Close = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.openSessions); got != 0 {
		t.Errorf("open_sessions after Close = %v, want 0", got)
	}
}

func TestMetricsDisabled(t *testing.T) {
	var m *metrics
	m.sessionsChanged(1)
	m.deviceCreated()
	m.deviceReleased()
	m.textureCreated(true)
	m.linkedChanged(1)
	m.lockOp("lock", "ok")
}
