package subscriber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danyill/oscd-subscriber-lb-siemens/metric"
)

// adapterMetrics holds Prometheus metrics for the subscriber adapter.
type adapterMetrics struct {
	cycles  *prometheus.CounterVec // by component
	intents *prometheus.CounterVec // by component and action
	skips   *prometheus.CounterVec // by component and reason
	errors  *prometheus.CounterVec // by component and error_type

	resolveDuration *prometheus.HistogramVec // by component
}

// newAdapterMetrics creates and registers the adapter metrics with the
// provided registry. A nil registry disables metrics.
func newAdapterMetrics(registry *metric.Registry) (*adapterMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &adapterMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "subscriber",
			Name:      "cycles_total",
			Help:      "Total number of edit notification cycles processed",
		}, []string{"component"}),

		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "subscriber",
			Name:      "intents_total",
			Help:      "Total number of companion edit requests emitted",
		}, []string{"component", "action"}), // action: subscribe, unsubscribe

		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "subscriber",
			Name:      "skips_total",
			Help:      "Total number of reference edits that produced no requests",
		}, []string{"component", "reason"}), // reason: vendor, no_companions

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "subscriber",
			Name:      "errors_total",
			Help:      "Total number of adapter processing errors",
		}, []string{"component", "error_type"}), // error_type: decode, encode, publish

		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sclsub",
			Subsystem: "subscriber",
			Name:      "resolve_duration_seconds",
			Help:      "Companion resolution duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"component"}),
	}

	if err := registry.Register("subscriber", "cycles_total", m.cycles); err != nil {
		return nil, err
	}
	if err := registry.Register("subscriber", "intents_total", m.intents); err != nil {
		return nil, err
	}
	if err := registry.Register("subscriber", "skips_total", m.skips); err != nil {
		return nil, err
	}
	if err := registry.Register("subscriber", "errors_total", m.errors); err != nil {
		return nil, err
	}
	if err := registry.Register("subscriber", "resolve_duration_seconds", m.resolveDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// recordCycle counts one notification cycle.
func (m *adapterMetrics) recordCycle(componentName string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(componentName).Inc()
}

// recordIntent counts one emitted edit request.
func (m *adapterMetrics) recordIntent(componentName, action string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(componentName, action).Inc()
}

// recordSkip counts one reference edit that produced nothing.
func (m *adapterMetrics) recordSkip(componentName, reason string) {
	if m == nil {
		return
	}
	m.skips.WithLabelValues(componentName, reason).Inc()
}

// recordError counts one processing error.
func (m *adapterMetrics) recordError(componentName, errorType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(componentName, errorType).Inc()
}

// recordResolve observes one resolver invocation's duration.
func (m *adapterMetrics) recordResolve(componentName string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.WithLabelValues(componentName).Observe(d.Seconds())
}
