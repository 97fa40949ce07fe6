package sharetex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors of one Service. A nil *metrics is
// valid and records nothing.
type metrics struct {
	openSessions    prometheus.Gauge
	deviceUp        prometheus.Gauge
	devicesCreated  prometheus.Counter
	texturesCreated *prometheus.CounterVec
	linkedTextures  prometheus.Gauge
	lockOps         *prometheus.CounterVec
}

// newMetrics registers the collectors with reg. It returns nil when reg is
// nil. Registering two Services against the same registry panics.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		openSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "sharetex_open_sessions",
			Help: "Number of open session handles",
		}),
		deviceUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "sharetex_device_up",
			Help: "1 while the shared device exists, 0 otherwise",
		}),
		devicesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "sharetex_devices_created_total",
			Help: "Total number of shared devices created",
		}),
		texturesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sharetex_textures_created_total",
			Help: "Total number of primary textures created by kind",
		}, []string{"kind"}), // "new", "linked"
		linkedTextures: f.NewGauge(prometheus.GaugeOpts{
			Name: "sharetex_linked_textures",
			Help: "Number of textures registered with the interop session",
		}),
		lockOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sharetex_lock_operations_total",
			Help: "Total number of lock and unlock requests by result",
		}, []string{"op", "result"}), // result: "ok", "failed", "misuse"
	}
}

func (m *metrics) sessionsChanged(n int) {
	if m != nil {
		m.openSessions.Set(float64(n))
	}
}

func (m *metrics) deviceCreated() {
	if m != nil {
		m.devicesCreated.Inc()
		m.deviceUp.Set(1)
	}
}

func (m *metrics) deviceReleased() {
	if m != nil {
		m.deviceUp.Set(0)
	}
}

func (m *metrics) textureCreated(owned bool) {
	if m == nil {
		return
	}
	kind := "linked"
	if owned {
		kind = "new"
	}
	m.texturesCreated.WithLabelValues(kind).Inc()
}

func (m *metrics) linkedChanged(n int) {
	if m != nil {
		m.linkedTextures.Set(float64(n))
	}
}

func (m *metrics) lockOp(op, result string) {
	if m != nil {
		m.lockOps.WithLabelValues(op, result).Inc()
	}
}
