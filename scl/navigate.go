package scl

// NextSibling returns the element immediately following n under the same
// parent, or nil when n is the last child or the root.
func (n *Node) NextSibling() *Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	sibs := n.Parent.Children
	for i, c := range sibs {
		if c == n {
			if i+1 < len(sibs) {
				return sibs[i+1]
			}
			return nil
		}
	}
	return nil
}

// FollowingSiblings returns up to count elements of n's tag that follow n
// under the same parent, in document order. Fewer siblings yield a shorter
// slice, never an error. A negative count removes the limit.
func FollowingSiblings(n *Node, count int) []*Node {
	if n == nil || n.Parent == nil || count == 0 {
		return nil
	}

	var out []*Node
	seen := false
	for _, c := range n.Parent.Children {
		if c == n {
			seen = true
			continue
		}
		if !seen || c.Tag != n.Tag {
			continue
		}
		out = append(out, c)
		if count > 0 && len(out) == count {
			break
		}
	}
	return out
}

// AncestorByTag walks up from n and returns the closest ancestor with the
// given tag, or nil. n itself is not considered.
func (n *Node) AncestorByTag(tag string) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Tag == tag {
			return p
		}
	}
	return nil
}

// DescendantsByTag returns all descendants of n with the given tag in
// document order. n itself is not included.
func (n *Node) DescendantsByTag(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// ChildrenByTag returns n's direct children with the given tag in document
// order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Precedes reports whether a comes strictly before b in document order.
func Precedes(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ord < b.ord
}
