package edit

// Kind discriminates the edit record shapes the host emits. The auto-wiring
// core acts on updates only; inserts and removes pass through untouched so
// the record stream stays positionally aligned with the host's batch.
type Kind string

const (
	// KindUpdate is an attribute-set change on an existing element.
	KindUpdate Kind = "update"
	// KindInsert adds an element. Ignored by inference.
	KindInsert Kind = "insert"
	// KindRemove removes an element. Ignored by inference.
	KindRemove Kind = "remove"
)

// Record is one edit instruction from the host. Element addresses the edited
// element by document ordinal. Attrs carries the attribute changes of an
// update: a nil value removes the attribute, any other value sets it.
//
// IgnoreSupervision and CheckOnlyPreferredBasicType are the per-edit feature
// flags the host reads off the element that initiated the edit; they travel
// with the record because the initiating UI element never reaches the mirror.
type Record struct {
	Kind    Kind               `json:"kind"`
	Element int                `json:"element"`
	Attrs   map[string]*string `json:"attrs,omitempty"`

	IgnoreSupervision           bool `json:"ignoreSupervision,omitempty"`
	CheckOnlyPreferredBasicType bool `json:"checkOnlyPreferredBasicType,omitempty"`
}

// Item is the variant the host's polymorphic edit shape flattens from:
// exactly one of Record or Batch is set.
type Item struct {
	Record *Record `json:"record,omitempty"`
	Batch  []Item  `json:"batch,omitempty"`
}

// Flatten linearizes a nested batch into a single ordered record list.
// Items carrying neither arm are dropped.
func Flatten(items []Item) []*Record {
	var out []*Record
	for _, it := range items {
		switch {
		case it.Record != nil:
			out = append(out, it.Record)
		case it.Batch != nil:
			out = append(out, Flatten(it.Batch)...)
		}
	}
	return out
}

// Flags are the per-edit feature toggles forwarded to the resolver.
type Flags struct {
	IgnoreSupervision           bool
	CheckOnlyPreferredBasicType bool
}

// RecordFlags extracts the resolver flags from a record.
func RecordFlags(r *Record) Flags {
	return Flags{
		IgnoreSupervision:           r.IgnoreSupervision,
		CheckOnlyPreferredBasicType: r.CheckOnlyPreferredBasicType,
	}
}
