// Package scl provides a read-only view over an IEC 61850 SCL document:
// an ordered element tree parsed from XML, document-order navigation, and
// typed views of the elements the auto-wiring logic cares about (FCDA,
// ExtRef, control blocks).
//
// The tree is deliberately small. It preserves sibling order (the matching
// heuristics depend on document order), exposes attributes as strings, and
// never validates against the SCL schema. The only mutation the package
// supports is applying attribute updates to a mirror document; structure is
// fixed after parse.
//
// Element identity across the service boundary uses document ordinals: every
// element is numbered in document order at parse time, and edit records
// address elements by that ordinal. Ordinals are stable because the mirror
// only ever applies attribute updates.
package scl
