package scl

// subscriptionAttrs are the identity attributes whose joint presence marks an
// ExtRef as subscribed. Absence of any one means unsubscribed.
var subscriptionAttrs = []string{"iedName", "ldInst", "lnClass", "lnInst", "doName"}

// descriptorAttrs are the FCDA identity attributes an ExtRef binding mirrors.
var descriptorAttrs = []string{"ldInst", "prefix", "lnClass", "lnInst", "doName", "daName"}

// controlBlockTags are the control block elements a DataSet can be published
// through.
var controlBlockTags = []string{"GSEControl", "SampledValueControl", "ReportControl"}

// IsSubscribed reports the binary subscription state of an ExtRef-shaped
// attribute source: subscribed iff every identity attribute is present.
func IsSubscribed(src AttrSource) bool {
	if src == nil {
		return false
	}
	for _, a := range subscriptionAttrs {
		if !src.HasAttr(a) {
			return false
		}
	}
	return true
}

// FCDA is a read-only view of one data-source descriptor inside a DataSet.
type FCDA struct {
	El *Node
}

// LDInst returns the descriptor's logical-device instance.
func (f FCDA) LDInst() string { return f.El.Attr("ldInst") }

// Prefix returns the descriptor's logical-node prefix.
func (f FCDA) Prefix() string { return f.El.Attr("prefix") }

// LNClass returns the descriptor's logical-node class.
func (f FCDA) LNClass() string { return f.El.Attr("lnClass") }

// LNInst returns the descriptor's logical-node instance.
func (f FCDA) LNInst() string { return f.El.Attr("lnInst") }

// DOName returns the descriptor's data-object name.
func (f FCDA) DOName() string { return f.El.Attr("doName") }

// DAName returns the descriptor's data-attribute name.
func (f FCDA) DAName() string { return f.El.Attr("daName") }

// FC returns the descriptor's functional constraint.
func (f FCDA) FC() string { return f.El.Attr("fc") }

// DataSet returns the descriptor's parent DataSet element, or nil.
func (f FCDA) DataSet() *Node {
	if f.El == nil || f.El.Parent == nil || f.El.Parent.Tag != "DataSet" {
		return nil
	}
	return f.El.Parent
}

// ExtRef is a read-only view of one signal reference inside an Inputs block.
type ExtRef struct {
	El *Node
}

// IntAddr returns the vendor-internal address string, "" when absent.
func (e ExtRef) IntAddr() string { return e.El.Attr("intAddr") }

// IEDName returns the bound source device name, "" when unsubscribed.
func (e ExtRef) IEDName() string { return e.El.Attr("iedName") }

// Subscribed reports the reference's binary subscription state.
func (e ExtRef) Subscribed() bool { return IsSubscribed(e.El) }

// EnclosingLNClass returns the lnClass of the closest LN or LN0 ancestor,
// "" when the reference sits outside any logical node.
func (e ExtRef) EnclosingLNClass() string {
	if ln := e.El.AncestorByTag("LN"); ln != nil {
		return ln.Attr("lnClass")
	}
	if ln0 := e.El.AncestorByTag("LN0"); ln0 != nil {
		return ln0.Attr("lnClass")
	}
	return ""
}

// FindIED returns the IED element with the given name, or nil.
func FindIED(doc *Document, name string) *Node {
	if doc == nil || name == "" {
		return nil
	}
	for _, ied := range doc.Root.DescendantsByTag("IED") {
		if ied.Attr("name") == name {
			return ied
		}
	}
	return nil
}

// FindFCDAs resolves the data-source descriptors a bound reference points at:
// every FCDA in the source IED whose identity attributes equal the
// reference's. The source can be the live element or a pre-edit snapshot.
// An unbound or unresolvable reference yields nil.
func FindFCDAs(doc *Document, src AttrSource) []FCDA {
	if src == nil {
		return nil
	}
	ied := FindIED(doc, src.Attr("iedName"))
	if ied == nil {
		return nil
	}

	var out []FCDA
	for _, el := range ied.DescendantsByTag("FCDA") {
		match := true
		for _, a := range descriptorAttrs {
			if el.Attr(a) != src.Attr(a) {
				match = false
				break
			}
		}
		if match {
			out = append(out, FCDA{El: el})
		}
	}
	return out
}

// ControlBlockFor resolves the control block associated with a reference and
// its first descriptor. Explicit source-control-block attributes on the
// reference win; otherwise the first control block in the descriptor's
// logical node whose datSet names the descriptor's DataSet. Returns nil when
// nothing resolves, which callers treat as "skip inference".
func ControlBlockFor(doc *Document, ref ExtRef, f FCDA) *Node {
	if cb := explicitControlBlock(doc, ref); cb != nil {
		return cb
	}
	return datasetControlBlock(f)
}

func explicitControlBlock(doc *Document, ref ExtRef) *Node {
	cbName := ref.El.Attr("srcCBName")
	if cbName == "" {
		return nil
	}

	ied := FindIED(doc, ref.IEDName())
	if ied == nil {
		return nil
	}

	ldInst := ref.El.Attr("srcLDInst")
	if ldInst == "" {
		ldInst = ref.El.Attr("ldInst")
	}
	lnClass := ref.El.Attr("srcLNClass")
	if lnClass == "" {
		lnClass = "LLN0"
	}

	for _, ld := range ied.DescendantsByTag("LDevice") {
		if ld.Attr("inst") != ldInst {
			continue
		}
		for _, ln := range append(ld.ChildrenByTag("LN0"), ld.ChildrenByTag("LN")...) {
			if ln.Attr("lnClass") != lnClass {
				continue
			}
			for _, cb := range ln.Children {
				if isControlBlockTag(cb.Tag) && cb.Attr("name") == cbName {
					return cb
				}
			}
		}
	}
	return nil
}

func datasetControlBlock(f FCDA) *Node {
	ds := f.DataSet()
	if ds == nil || ds.Parent == nil {
		return nil
	}
	// First match in document order wins; a linear scan preserves tie-break
	// fidelity at expected document sizes.
	for _, cb := range ds.Parent.Children {
		if isControlBlockTag(cb.Tag) && cb.Attr("datSet") == ds.Attr("name") {
			return cb
		}
	}
	return nil
}

func isControlBlockTag(tag string) bool {
	for _, t := range controlBlockTags {
		if t == tag {
			return true
		}
	}
	return false
}
