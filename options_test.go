package sharetex

import (
	"testing"

	"github.com/gogpu/sharetex/backend"
	"github.com/prometheus/client_golang/prometheus"
)

// TestDefaultOptions tests the defaults used when no options are passed.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.driver != nil || o.backend != "" || o.registerer != nil {
		t.Errorf("defaultOptions() = %+v, want no driver, backend or registerer", o)
	}
	if o.device != (deviceConfig{width: 64, height: 64}) {
		t.Errorf("device = %+v, want 64x64", o.device)
	}
}

func TestWithDeviceSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		want          deviceConfig
	}{
		{"both", 128, 32, deviceConfig{128, 32}},
		{"zero width keeps default", 0, 32, deviceConfig{64, 32}},
		{"zero height keeps default", 16, 0, deviceConfig{16, 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			WithDeviceSize(tt.width, tt.height)(&o)
			if o.device != tt.want {
				t.Errorf("device = %+v, want %+v", o.device, tt.want)
			}
		})
	}
}

// TestWithDeviceSizeReachesDriver tests that the size ends up in the
// device parameters.
func TestWithDeviceSizeReachesDriver(t *testing.T) {
	drv := backend.NewSoftwareDriver()
	svc, err := New(WithDriver(drv), WithDeviceSize(320, 240))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer svc.Close()
	mustOpen(t, svc)

	p := drv.LastDeviceParams()
	if p.BackBufferWidth != 320 || p.BackBufferHeight != 240 {
		t.Errorf("back buffer = %dx%d, want 320x240", p.BackBufferWidth, p.BackBufferHeight)
	}
}

// TestWithDriverOverridesBackend tests that an injected driver wins over a
// backend name.
func TestWithDriverOverridesBackend(t *testing.T) {
	drv := backend.NewSoftwareDriver()
	svc, err := New(WithBackend("nonexistent"), WithDriver(drv))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer svc.Close()
	if svc.drv != drv {
		t.Error("Service does not use the injected driver")
	}
}

func TestWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := New(WithDriver(backend.NewSoftwareDriver()), WithRegisterer(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer svc.Close()
	if svc.metrics == nil {
		t.Fatal("metrics not enabled")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	// Vectors without observed series are not gathered.
	if len(families) < 4 {
		t.Errorf("gathered %d metric families, want at least 4", len(families))
	}
}
