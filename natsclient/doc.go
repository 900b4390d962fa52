// Package natsclient manages the NATS connection carrying the edit bus.
// It wraps connect/publish/subscribe/drain with structured logging and the
// service's error classification; JetStream is deliberately absent because
// the edit bus is fire-and-forget ordered delivery with nothing persisted.
package natsclient
