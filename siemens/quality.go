package siemens

import (
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
)

// qualityAttrName is the literal data-attribute name SIPROTEC uses for the
// quality member of a value/quality pair.
const qualityAttrName = "q"

// isQualityAttr reports whether daName's final dot-segment is the quality
// attribute. This single rule also covers the bare "q" form.
func isQualityAttr(daName string) bool {
	if daName == "" {
		return false
	}
	i := len(daName)
	for i > 0 && daName[i-1] != '.' {
		i--
	}
	return daName[i:] == qualityAttrName
}

// QualityDescriptorPair reports whether b is the quality companion of a:
// identical {ldInst, prefix, lnClass, lnInst, doName} and a quality
// data-attribute name on b. A descriptor is never its own companion.
func QualityDescriptorPair(a, b scl.FCDA) bool {
	if a.El == nil || b.El == nil || a.El == b.El {
		return false
	}
	return a.LDInst() == b.LDInst() &&
		a.Prefix() == b.Prefix() &&
		a.LNClass() == b.LNClass() &&
		a.LNInst() == b.LNInst() &&
		a.DOName() == b.DOName() &&
		isQualityAttr(b.DAName())
}

// QualityReferencePair reports whether b is the quality companion of a,
// judged on their internal addresses: equal name, logical-node class and
// data-object path, with b addressing exactly the quality attribute.
// A missing or unparseable address on either side is a non-match.
func QualityReferencePair(a, b scl.ExtRef) bool {
	if a.El == nil || b.El == nil || a.El == b.El {
		return false
	}
	aAddr, ok := ParseAddress(a.IntAddr())
	if !ok {
		return false
	}
	bAddr, ok := ParseAddress(b.IntAddr())
	if !ok {
		return false
	}
	return aAddr.Name == bAddr.Name &&
		aAddr.LNClass == bAddr.LNClass &&
		aAddr.DOPath == bAddr.DOPath &&
		bAddr.DAPath == qualityAttrName
}

// QualityCompanionDescriptor scans the descriptors following a in its
// DataSet and returns the first quality companion found.
func QualityCompanionDescriptor(a scl.FCDA) (scl.FCDA, bool) {
	for _, sib := range scl.FollowingSiblings(a.El, -1) {
		b := scl.FCDA{El: sib}
		if QualityDescriptorPair(a, b) {
			return b, true
		}
	}
	return scl.FCDA{}, false
}

// QualityCompanionReference scans the references following a in its Inputs
// block and returns the first quality companion found.
func QualityCompanionReference(a scl.ExtRef) (scl.ExtRef, bool) {
	for _, sib := range scl.FollowingSiblings(a.El, -1) {
		b := scl.ExtRef{El: sib}
		if QualityReferencePair(a, b) {
			return b, true
		}
	}
	return scl.ExtRef{}, false
}
