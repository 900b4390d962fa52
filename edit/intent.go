package edit

import (
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
)

// Action discriminates the two edit intents the resolver can emit.
type Action int

const (
	// ActionSubscribe binds a companion reference to a source descriptor.
	ActionSubscribe Action = iota
	// ActionUnsubscribe clears a companion reference's binding.
	ActionUnsubscribe
)

// String returns the string representation of Action.
func (a Action) String() string {
	switch a {
	case ActionSubscribe:
		return "subscribe"
	case ActionUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// Intent is one inferred edit request. Source and Control are set for
// subscribe intents only. Intents are values handed to the host boundary and
// never persisted.
type Intent struct {
	Action  Action
	Target  *scl.Node
	Source  *scl.Node
	Control *scl.Node

	IgnoreSupervision           bool
	CheckOnlyPreferredBasicType bool
}

// Subscribe builds a subscribe intent for target against source, published
// through control.
func Subscribe(target, source, control *scl.Node, flags Flags) Intent {
	return Intent{
		Action:                      ActionSubscribe,
		Target:                      target,
		Source:                      source,
		Control:                     control,
		IgnoreSupervision:           flags.IgnoreSupervision,
		CheckOnlyPreferredBasicType: flags.CheckOnlyPreferredBasicType,
	}
}

// Unsubscribe builds an unsubscribe intent for target.
func Unsubscribe(target *scl.Node, ignoreSupervision bool) Intent {
	return Intent{
		Action:            ActionUnsubscribe,
		Target:            target,
		IgnoreSupervision: ignoreSupervision,
	}
}
