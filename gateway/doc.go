// Package gateway exposes the WebSocket ingress for edit events. The host
// editor connects to a single endpoint and streams edit notifications as
// JSON; the gateway validates each frame, applies a token-bucket rate limit,
// and forwards the event onto the edit bus for the subscriber adapter.
//
// The gateway is deliberately one-directional: inferred subscribe and
// unsubscribe requests travel back to the host over the bus subjects, not
// over the WebSocket.
package gateway
