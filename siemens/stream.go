package siemens

import (
	"fmt"
	"math"
	"strconv"

	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
)

// maxStreamWidth is the widest plausible sampled-value stream: four
// value/quality pairs (for example four phase currents).
const maxStreamWidth = 8

// svFunctionalConstraint is the functional constraint every member of a
// sampled-value stream carries.
const svFunctionalConstraint = "MX"

// minStreamLength is the count above which a run of descriptors is treated
// as a stream. A single value/quality pair (count 2) is handled by the
// quality-pair path instead; a genuine multi-phase group needs wholesale
// joint subscription.
const minStreamLength = 2

// StreamDescriptors scans start and up to seven of its following siblings
// and returns the prefix that forms a sampled-value stream: same logical
// device, class and data object throughout, functional constraint MX,
// logical-node instances never descending, and strictly alternating
// value/quality attributes. The first violation ends the stream.
func StreamDescriptors(start scl.FCDA) []scl.FCDA {
	if start.El == nil {
		return nil
	}

	candidates := make([]scl.FCDA, 0, maxStreamWidth)
	candidates = append(candidates, start)
	for _, sib := range scl.FollowingSiblings(start.El, maxStreamWidth-1) {
		candidates = append(candidates, scl.FCDA{El: sib})
	}

	ldInst := start.LDInst()
	lnClass := start.LNClass()
	doName := start.DOName()
	runInst := math.MinInt

	var stream []scl.FCDA
	for i, c := range candidates {
		inst, err := strconv.Atoi(c.LNInst())
		if err != nil ||
			c.LDInst() != ldInst ||
			c.LNClass() != lnClass ||
			c.DOName() != doName ||
			c.FC() != svFunctionalConstraint ||
			inst < runInst {
			break
		}
		// Even positions open a pair and accept any attribute as its value
		// member; odd positions must close the pair with the quality
		// attribute.
		if i%2 == 1 && c.DAName() != qualityAttrName {
			break
		}
		runInst = inst
		stream = append(stream, c)
	}
	return stream
}

// IsStream reports whether a classified run is long enough for the stream
// path.
func IsStream(stream []scl.FCDA) bool {
	return len(stream) > minStreamLength
}

// StreamPair is one accepted (descriptor, reference) pairing. Pairs are
// independent: each is dispatched separately, there is no stream-level
// accept or reject.
type StreamPair struct {
	Descriptor scl.FCDA
	Reference  scl.ExtRef
}

// expectedIntAddr is the internal address a SIPROTEC reference carries for a
// stream descriptor.
func expectedIntAddr(d scl.FCDA) string {
	return fmt.Sprintf("%s;%s/%s/%s", d.DOName(), d.LNClass(), d.DOName(), d.DAName())
}

// MatchStreamReferences pairs stream descriptors with candidate references
// by index. Candidates must already be ordered, share the trigger's parent
// container, and not precede the trigger in document order. A pair is
// accepted when the candidate's internal address matches the descriptor, its
// enclosing logical-node class matches, and its subscription state equals
// baseline, the trigger's pre-edit state; a companion that already drifted
// away from the state the whole stream is transitioning out of is not
// touched. The first candidate (the trigger itself) always passes the
// continuity check, since it is the one that just changed.
func MatchStreamReferences(stream []scl.FCDA, candidates []scl.ExtRef, baseline bool) []StreamPair {
	if len(stream) == 0 || len(candidates) == 0 {
		return nil
	}

	var pairs []StreamPair
	for i := 0; i < len(stream) && i < len(candidates); i++ {
		d := stream[i]
		c := candidates[i]

		if c.IntAddr() != expectedIntAddr(d) {
			continue
		}
		if c.EnclosingLNClass() != d.LNClass() {
			continue
		}
		if (c.Subscribed() || i == 0) != (baseline || i == 0) {
			continue
		}
		pairs = append(pairs, StreamPair{Descriptor: d, Reference: c})
	}
	return pairs
}
