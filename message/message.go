package message

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/danyill/oscd-subscriber-lb-siemens/edit"
	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
)

// EditEvent is one host notification: an ordered, possibly nested batch of
// edit records emitted by the editor in a single edit cycle.
type EditEvent struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	CreatedAt time.Time   `json:"createdAt"`
	Edits     []edit.Item `json:"edits"`
}

// NewEditEvent creates an edit event with a fresh identifier.
func NewEditEvent(source string, edits []edit.Item) *EditEvent {
	return &EditEvent{
		ID:        uuid.New().String(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Edits:     edits,
	}
}

// DecodeEditEvent parses an edit event from its wire form.
func DecodeEditEvent(data []byte) (*EditEvent, error) {
	var ev EditEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.WrapInvalid(err, "EditEvent", "DecodeEditEvent", "unmarshal")
	}
	return &ev, nil
}

// Encode serializes the event for the bus.
func (ev *EditEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.WrapInvalid(err, "EditEvent", "Encode", "marshal")
	}
	return data, nil
}

// SubscribeRequest asks the host to bind a sink reference to a source
// descriptor through a control block, using the host's generic subscribe
// primitive. All three elements are addressed by document ordinal.
type SubscribeRequest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Target  int `json:"target"`
	Source  int `json:"source"`
	Control int `json:"control"`

	Force                       bool `json:"force,omitempty"`
	IgnoreSupervision           bool `json:"ignoreSupervision,omitempty"`
	CheckOnlyPreferredBasicType bool `json:"checkOnlyPreferredBasicType,omitempty"`
}

// NewSubscribeRequest creates a subscribe request with a fresh identifier.
func NewSubscribeRequest(target, source, control int) *SubscribeRequest {
	return &SubscribeRequest{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Target:    target,
		Source:    source,
		Control:   control,
	}
}

// Encode serializes the request for the bus.
func (r *SubscribeRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WrapInvalid(err, "SubscribeRequest", "Encode", "marshal")
	}
	return data, nil
}

// DecodeSubscribeRequest parses a subscribe request from its wire form.
func DecodeSubscribeRequest(data []byte) (*SubscribeRequest, error) {
	var r SubscribeRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapInvalid(err, "SubscribeRequest", "DecodeSubscribeRequest", "unmarshal")
	}
	return &r, nil
}

// UnsubscribeRequest asks the host to clear the bindings of one or more sink
// references.
type UnsubscribeRequest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Targets           []int `json:"targets"`
	IgnoreSupervision bool  `json:"ignoreSupervision,omitempty"`
}

// NewUnsubscribeRequest creates an unsubscribe request with a fresh
// identifier.
func NewUnsubscribeRequest(targets ...int) *UnsubscribeRequest {
	return &UnsubscribeRequest{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Targets:   targets,
	}
}

// Encode serializes the request for the bus.
func (r *UnsubscribeRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WrapInvalid(err, "UnsubscribeRequest", "Encode", "marshal")
	}
	return data, nil
}

// DecodeUnsubscribeRequest parses an unsubscribe request from its wire form.
func DecodeUnsubscribeRequest(data []byte) (*UnsubscribeRequest, error) {
	var r UnsubscribeRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapInvalid(err, "UnsubscribeRequest", "DecodeUnsubscribeRequest", "unmarshal")
	}
	return &r, nil
}
