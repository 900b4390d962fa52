package scl

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
)

// AttrSource is the read surface shared by live elements and pre-edit
// snapshots: the resolver compares subscription state across both without
// caring which side it is looking at.
type AttrSource interface {
	Attr(name string) string
	HasAttr(name string) bool
}

// Node is one element of the document tree. Children are kept in document
// order; ord is the element's position in a pre-order walk of the whole
// document.
type Node struct {
	Tag      string
	Parent   *Node
	Children []*Node

	attrs map[string]string
	ord   int
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.attrs[name]
}

// HasAttr reports whether the named attribute is present, including when it
// is present with an empty value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// SetAttr sets an attribute on a mirror element.
func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// RemoveAttr deletes an attribute from a mirror element.
func (n *Node) RemoveAttr(name string) {
	delete(n.attrs, name)
}

// CloneAttrs returns an independent copy of the element's attribute state.
// This is the snapshot primitive: the copy does not observe later updates.
func (n *Node) CloneAttrs() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// Ordinal returns the element's document-order position.
func (n *Node) Ordinal() int {
	return n.ord
}

// Document is a parsed SCL tree plus an ordinal index over its elements.
type Document struct {
	Root  *Node
	nodes []*Node
}

// NodeAt returns the element at the given document ordinal, or nil when the
// ordinal is out of range.
func (d *Document) NodeAt(ord int) *Node {
	if d == nil || ord < 0 || ord >= len(d.nodes) {
		return nil
	}
	return d.nodes[ord]
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Parse decodes an SCL document from r. Namespaces are flattened to local
// element and attribute names; text content is discarded (the auto-wiring
// logic reads elements and attributes only).
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	doc := &Document{}
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapInvalid(err, "Document", "Parse", "decode token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Tag:   t.Name.Local,
				attrs: make(map[string]string, len(t.Attr)),
				ord:   len(doc.nodes),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.Parent = parent
				parent.Children = append(parent.Children, n)
			} else if doc.Root == nil {
				doc.Root = n
			}
			doc.nodes = append(doc.nodes, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if doc.Root == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Document", "Parse", "empty document")
	}
	return doc, nil
}

// ParseString is a convenience wrapper over Parse for in-memory documents.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}
