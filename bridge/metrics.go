package bridge

import "github.com/prometheus/client_golang/prometheus"

const namespace = "firebridge"

// Handle kinds
const (
	HandleSnapshot    = "snapshot"
	HandleListener    = "listener"
	HandleCredential  = "credential"
	HandleAuthMonitor = "auth_listener"
)

// Metrics represents bridge metrics
type Metrics struct {
	Calls    *prometheus.CounterVec
	Events   *prometheus.CounterVec
	Handles  *prometheus.GaugeVec
	Sessions prometheus.Gauge
}

// NewMetrics creates metrics and registers them with registerer when not nil
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	ret := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of bridged calls",
		}, []string{"module", "method", "outcome"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events emitted to the scripting layer",
		}, []string{"outcome"}),
		Handles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handles",
			Help:      "Number of live handles by kind",
		}, []string{"kind"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of live sessions",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(ret.Calls, ret.Events, ret.Handles, ret.Sessions)
	}
	return ret
}

// Handle returns gauge of handle kind
func (m *Metrics) Handle(kind string) prometheus.Gauge {
	if m == nil {
		return nil
	}
	return m.Handles.WithLabelValues(kind)
}
