// Package sclsub infers Siemens SIPROTEC 5 subscription companions for an
// IEC 61850 system configuration (SCL) document.
//
// # What it does
//
// SIPROTEC 5 relays expect two wiring conventions that a generic SCL editor
// does not enforce on its own:
//
//   - Quality pairing: a value signal and its quality descriptor travel
//     together. Subscribing a relay input to a GOOSE or report member should
//     also subscribe the matching "q" member, and unsubscribing should
//     release both.
//   - Sampled-value streams: a merging unit publishes current and voltage
//     channels as a contiguous run of value/quality members over ascending
//     logical-node instances. Binding one channel binds the whole stream.
//
// sclsub watches the host editor's edit events, detects when a subscription
// state transition happens on an ExtRef inside a Siemens IED, and answers
// with the companion subscribe or unsubscribe requests those conventions
// imply. The host remains the single writer of the document; sclsub only
// proposes edits.
//
// # Architecture
//
// The service mirrors the SCL file in memory and keeps it aligned with the
// host by applying each incoming edit batch. Elements are addressed by
// document ordinal (pre-order parse position), which stays stable because
// only attribute updates are applied to the mirror.
//
//	┌──────────┐  WebSocket   ┌─────────┐  scl.edits   ┌────────────┐
//	│   Host   ├─────────────→│ Gateway ├─────────────→│ Subscriber │
//	│  Editor  │              └─────────┘     NATS     │  Adapter   │
//	└────▲─────┘                                       └─────┬──────┘
//	     │        scl.requests.subscribe / .unsubscribe      │
//	     └───────────────────────────────────────────────────┘
//
// Each edit notification is one synchronous cycle inside the adapter:
// capture pre-edit snapshots of affected references, apply the updates to
// the mirror, run the resolver per Siemens reference, publish the inferred
// requests, clear the snapshots.
//
// # Packages
//
// Core:
//   - scl: SCL document tree, parsing, navigation, attribute views
//   - siemens: internal-address parsing, quality-pair matching, stream
//     classification, the edit-intent resolver
//   - edit: edit records, snapshots, intents
//
// Service:
//   - subscriber: the bus-facing adapter running the inference cycle
//   - gateway: WebSocket ingress for host edit events
//   - message: wire formats for events and requests
//   - natsclient: NATS connection management
//
// Infrastructure:
//   - config: configuration loading and schema validation
//   - metric: Prometheus metrics registry
//   - errors: classified error handling
//   - testutil: in-memory bus and SCL fixtures
//
// # Binary
//
// cmd/sclsub wires the pieces together:
//
//	sclsub -config sclsub.json
//
// Configuration may also come from SCLSUB_* environment variables; see the
// config package.
package sclsub
