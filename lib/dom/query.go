package dom

// Matcher selects nodes.
type Matcher func(*Node) bool

// HasAttr matches elements carrying the attribute.
func HasAttr(key string) Matcher {
	return func(n *Node) bool {
		return n.Type == ElementNode && n.HasAttr(key)
	}
}

// AttrIs matches elements whose attribute equals val.
func AttrIs(key, val string) Matcher {
	return func(n *Node) bool {
		if n.Type != ElementNode {
			return false
		}
		v, ok := n.Attr(key)
		return ok && v == val
	}
}

// Tag matches elements by tag name.
func Tag(tag string) Matcher {
	return func(n *Node) bool {
		return n.Type == ElementNode && n.Tag == tag
	}
}

// Class matches elements carrying all of the given classes.
func Class(classes ...string) Matcher {
	return func(n *Node) bool {
		if n.Type != ElementNode {
			return false
		}
		for _, c := range classes {
			if !n.HasClass(c) {
				return false
			}
		}
		return true
	}
}

// Is matches exactly the node want.
func Is(want *Node) Matcher {
	return func(n *Node) bool { return n == want }
}

// And matches when every matcher matches.
func And(ms ...Matcher) Matcher {
	return func(n *Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Or matches when any matcher matches.
func Or(ms ...Matcher) Matcher {
	return func(n *Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(n *Node) bool { return !m(n) }
}

// walk visits descendants of n in document order. Returning false from fn
// skips the visited node's subtree.
func (n *Node) walk(fn func(*Node) bool) {
	for _, c := range n.children {
		if fn(c) {
			c.walk(fn)
		}
	}
}

// Find returns all descendants of n (excluding n) matching m, in document order.
func (n *Node) Find(m Matcher) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if m(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindFirst returns the first descendant matching m, or nil.
func (n *Node) FindFirst(m Matcher) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if m(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Closest returns n or its nearest ancestor matching m, or nil.
func (n *Node) Closest(m Matcher) *Node {
	for c := n; c != nil; c = c.Parent {
		if m(c) {
			return c
		}
	}
	return nil
}

// ChildrenMatching returns the direct children matching m.
func (n *Node) ChildrenMatching(m Matcher) []*Node {
	var out []*Node
	for _, c := range n.children {
		if m(c) {
			out = append(out, c)
		}
	}
	return out
}

// ByID returns the element in n's subtree (including n) with the given id.
func (n *Node) ByID(id string) *Node {
	if id == "" {
		return nil
	}
	if n.Type == ElementNode && n.ID() == id {
		return n
	}
	return n.FindFirst(AttrIs("id", id))
}
