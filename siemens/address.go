package siemens

import "strings"

// Address is the decomposed form of a SIPROTEC internal-address string.
// The wire forms are "<name>;<lnClass>/<doPath>/<daPath>" and the
// two-segment "<name>;<doPath>/<daPath>" with the logical-node class
// omitted.
type Address struct {
	Name    string
	LNClass string // empty in the two-segment form
	DOPath  string
	DAPath  string
}

// ParseAddress decomposes intAddr. The second return is false when the
// string does not split into exactly one semicolon-delimited pair whose
// remainder splits into two or three slash-delimited segments; callers treat
// that as "no match", never as an error.
func ParseAddress(intAddr string) (Address, bool) {
	parts := strings.Split(intAddr, ";")
	if len(parts) != 2 {
		return Address{}, false
	}

	segs := strings.Split(parts[1], "/")
	switch len(segs) {
	case 2:
		return Address{Name: parts[0], DOPath: segs[0], DAPath: segs[1]}, true
	case 3:
		return Address{Name: parts[0], LNClass: segs[0], DOPath: segs[1], DAPath: segs[2]}, true
	default:
		return Address{}, false
	}
}
