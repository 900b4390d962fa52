// Package subscriber is the event adapter between the host editor and the
// inference core. It listens for edit events on the bus, maintains the
// service's mirror of the SCL document, captures pre-edit snapshots of
// affected references, runs the resolver for each Siemens ExtRef update,
// and publishes the inferred subscribe/unsubscribe requests back to the
// host.
//
// Each notification is one synchronous cycle: capture, apply-to-mirror,
// infer, dispatch, clear. The snapshot store is cleared unconditionally at
// the end of every cycle.
package subscriber
