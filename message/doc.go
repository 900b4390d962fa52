// Package message defines the wire envelopes exchanged with the host editor
// over the edit bus: edit events flowing in, subscribe/unsubscribe requests
// flowing out. Envelopes are plain JSON with uuid identifiers; elements are
// addressed by document ordinal (see package scl).
package message
