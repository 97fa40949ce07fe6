package sharetex

import (
	"github.com/gogpu/sharetex/driver"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Service during creation.
//
// Example:
//
//	// Best available registered backend
//	svc, err := sharetex.New()
//
//	// Explicit driver (dependency injection)
//	svc, err := sharetex.New(sharetex.WithDriver(backend.NewSoftwareDriver()))
type Option func(*options)

// options holds optional configuration for Service creation.
type options struct {
	driver     driver.Driver
	backend    string
	registerer prometheus.Registerer
	device     deviceConfig
}

// defaultOptions returns the default service options.
func defaultOptions() options {
	return options{
		device: deviceConfig{width: 64, height: 64},
	}
}

// WithDriver sets the driver the Service uses. It takes precedence over
// WithBackend.
func WithDriver(d driver.Driver) Option {
	return func(o *options) {
		o.driver = d
	}
}

// WithBackend selects a registered backend by name (see package backend).
// Without it, the highest priority registered backend is used.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithRegisterer enables Prometheus metrics, registered with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithDeviceSize sets the back buffer size of the off-screen device.
// The device never presents, so the default 64x64 is enough for most
// drivers. Zero values keep the default.
func WithDeviceSize(width, height uint32) Option {
	return func(o *options) {
		if width > 0 {
			o.device.width = width
		}
		if height > 0 {
			o.device.height = height
		}
	}
}
