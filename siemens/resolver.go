package siemens

import (
	"log/slog"

	"github.com/danyill/oscd-subscriber-lb-siemens/edit"
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
)

// Resolver derives companion edit intents from a single observed ExtRef
// subscription change. It is stateless between calls; all document access is
// read-only.
type Resolver struct {
	doc    *scl.Document
	logger *slog.Logger
}

// NewResolver creates a resolver over the given document mirror.
func NewResolver(doc *scl.Document, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{doc: doc, logger: logger}
}

// Resolve compares the pre-edit snapshot against the live reference and,
// for a subscription transition, emits subscribe or unsubscribe intents for
// every companion the vendor conventions group with it. Unchanged state is a
// no-op; so is any missing prerequisite along the way.
func (r *Resolver) Resolve(trigger scl.ExtRef, snapshot *edit.Snapshot, flags edit.Flags) []edit.Intent {
	if trigger.El == nil || snapshot == nil {
		return nil
	}

	was := scl.IsSubscribed(snapshot)
	now := scl.IsSubscribed(trigger.El)
	if was == now {
		// Covers both ignored transitions, including both-sides-unsubscribed.
		return nil
	}
	subscribing := now && !was

	// Descriptors resolve through whichever side of the edit is bound.
	var side scl.AttrSource = trigger.El
	if !now {
		side = snapshot
	}
	fcdas := scl.FindFCDAs(r.doc, side)
	if len(fcdas) == 0 {
		r.logger.Debug("no descriptor resolves for reference, skipping",
			"intAddr", trigger.IntAddr())
		return nil
	}
	first := fcdas[0]

	controlBlock := scl.ControlBlockFor(r.doc, trigger, first)

	var intents []edit.Intent
	emitted := make(map[*scl.Node]bool)

	emit := func(target scl.ExtRef, source scl.FCDA) {
		if emitted[target.El] {
			return
		}
		if subscribing {
			if controlBlock == nil {
				return
			}
			intents = append(intents, edit.Subscribe(target.El, source.El, controlBlock, flags))
		} else {
			intents = append(intents, edit.Unsubscribe(target.El, flags.IgnoreSupervision))
		}
		emitted[target.El] = true
	}

	// Sampled-value stream path.
	if stream := StreamDescriptors(first); IsStream(stream) {
		candidates := streamCandidates(trigger, len(stream))
		for _, pair := range MatchStreamReferences(stream, candidates, was) {
			emit(pair.Reference, pair.Descriptor)
		}
	}

	// Quality-pair path. Independent of the stream path, but a companion the
	// stream already reached is not requested twice.
	if companion, ok := QualityCompanionDescriptor(first); ok {
		if reference, ok := QualityCompanionReference(trigger); ok {
			emit(reference, companion)
		}
	}

	return intents
}

// streamCandidates collects the trigger and its following sibling references
// as the ordered candidate list for stream pairing. Nothing before the
// trigger in document order is ever considered.
func streamCandidates(trigger scl.ExtRef, width int) []scl.ExtRef {
	out := []scl.ExtRef{trigger}
	for _, sib := range scl.FollowingSiblings(trigger.El, width-1) {
		out = append(out, scl.ExtRef{El: sib})
	}
	return out
}
