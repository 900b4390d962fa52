// Package siemens implements the SIPROTEC 5 companion-subscription inference
// engine: pure functions that recognise the vendor's value/quality pairing
// and multi-phase sampled-value stream conventions in an SCL document, plus
// the resolver that turns one observed ExtRef subscription change into the
// subscribe/unsubscribe intents for its companions.
//
// Everything here is deterministic and side-effect free. Malformed input
// (unparseable internal addresses, missing siblings, absent control blocks)
// is never an error; it narrows the match set, and an empty match set means
// no intents.
package siemens
