// Package metric owns the service's Prometheus registry. Components
// register their collectors under a component/metric key so duplicate
// registrations surface as invalid-config errors rather than panics, and
// the registry exposes a standard /metrics handler.
package metric
