// Package edit models the host editor's edit traffic at the service
// boundary: the edit-record variant the host emits (single records or
// arbitrarily nested batches), the pre-edit snapshots captured for one
// notification cycle, and the EditIntent values the resolver produces for
// the host to apply.
//
// Nothing in this package touches the document tree; it is the vocabulary
// shared by the subscriber adapter, the resolver and the wire envelopes.
package edit
