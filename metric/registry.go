package metric

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
)

// Registry manages the registration and lifecycle of service metrics.
type Registry struct {
	prom       *prometheus.Registry
	registered map[string]prometheus.Collector
	mu         sync.Mutex
}

// NewRegistry creates a registry pre-loaded with Go runtime and process
// collectors.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		prom:       prom,
		registered: make(map[string]prometheus.Collector),
	}
}

// Handler returns the HTTP handler serving the registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}

// Register registers a collector under component.name, rejecting duplicates.
func (r *Registry) Register(component, name string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	if _, exists := r.registered[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for component %s", name, component),
			"Registry", "Register", "duplicate metric registration")
	}

	if err := r.prom.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return errors.WrapInvalid(err, "Registry", "Register",
				fmt.Sprintf("prometheus conflict for metric %s", name))
		}
		return errors.WrapFatal(err, "Registry", "Register", "register collector")
	}

	r.registered[key] = c
	return nil
}

// Unregister removes a collector. Returns false when it was never
// registered.
func (r *Registry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	c, ok := r.registered[key]
	if !ok {
		return false
	}
	delete(r.registered, key)
	return r.prom.Unregister(c)
}
