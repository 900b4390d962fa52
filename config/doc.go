// Package config loads and validates the service configuration: the global
// enable flag, the SCL document the mirror is built from, bus subjects, and
// the gateway/metrics listen addresses. Configuration is a JSON file
// validated against an embedded JSON schema, with a small set of environment
// overrides for deployment.
package config
