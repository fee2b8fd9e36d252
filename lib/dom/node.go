// Package dom is a small server-side element tree used as the document model
// for editable pages.
//
// A Node is either an element, a text node, or a document root. Elements carry
// ordered attributes, a per-node data store and named event handlers. Nothing
// in this package is safe for concurrent use; the editor owns the tree and
// mutates it from a single goroutine.
package dom

import (
	"slices"
	"strings"
)

// NodeType distinguishes the kinds of nodes in the tree.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	DocumentNode
)

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is an element, text, or document node.
type Node struct {
	Type    NodeType
	Tag     string // element tag name, lower case
	Content string // text content for TextNode

	Parent   *Node
	attrs    []Attr
	children []*Node
	data     map[string]any
	handlers map[string][]Handler
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...Attr) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	for _, a := range attrs {
		n.SetAttr(a.Key, a.Val)
	}
	return n
}

// NewText creates a detached text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, Content: s}
}

// NewDocument creates an empty document root.
func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when absent.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Attr(key); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// SetAttr sets or replaces an attribute, keeping its original position.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs[i].Val = val
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(key string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the attribute list.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.AttrOr("id", "")
}

// Classes returns the class list.
func (n *Node) Classes() []string {
	return strings.Fields(n.AttrOr("class", ""))
}

// HasClass reports whether the element carries class c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass adds one or more space separated classes.
func (n *Node) AddClass(classes string) {
	have := n.Classes()
	for _, c := range strings.Fields(classes) {
		if !slices.Contains(have, c) {
			have = append(have, c)
		}
	}
	n.SetAttr("class", strings.Join(have, " "))
}

// RemoveClass removes one or more space separated classes.
func (n *Node) RemoveClass(classes string) {
	drop := strings.Fields(classes)
	var keep []string
	for _, c := range n.Classes() {
		found := false
		for _, d := range drop {
			if c == d {
				found = true
				break
			}
		}
		if !found {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(keep, " "))
}

// Data returns a value from the node's data store.
func (n *Node) Data(key string) any {
	if n.data == nil {
		return nil
	}
	return n.data[key]
}

// SetData stores a value in the node's data store. A nil value deletes the key.
func (n *Node) SetData(key string, v any) {
	if v == nil {
		delete(n.data, key)
		return
	}
	if n.data == nil {
		n.data = make(map[string]any)
	}
	n.data[key] = v
}

// Hide marks the element hidden.
func (n *Node) Hide() {
	n.SetAttr("hidden", "")
}

// Show removes the hidden marker.
func (n *Node) Show() {
	n.RemoveAttr("hidden")
}

// Visible reports whether the element is not marked hidden.
func (n *Node) Visible() bool {
	return !n.HasAttr("hidden")
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ElementChildren returns the element children only.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Append adds child as the last child, detaching it from any previous parent.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		c.Detach()
		c.Parent = n
		n.children = append(n.children, c)
	}
}

// Prepend inserts child as the first child.
func (n *Node) Prepend(c *Node) {
	c.Detach()
	c.Parent = n
	n.children = append([]*Node{c}, n.children...)
}

// InsertBefore inserts c as the previous sibling of n.
func (n *Node) InsertBefore(c *Node) {
	p := n.Parent
	if p == nil {
		return
	}
	c.Detach()
	i := p.indexOf(n)
	c.Parent = p
	p.children = append(p.children[:i], append([]*Node{c}, p.children[i:]...)...)
}

// InsertAfter inserts c as the next sibling of n.
func (n *Node) InsertAfter(c *Node) {
	p := n.Parent
	if p == nil {
		return
	}
	c.Detach()
	i := p.indexOf(n) + 1
	c.Parent = p
	p.children = append(p.children[:i], append([]*Node{c}, p.children[i:]...)...)
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.Parent = nil
}

// Empty removes all children.
func (n *Node) Empty() {
	for _, c := range n.children {
		c.Parent = nil
	}
	n.children = nil
}

// ReplaceChildren empties n and appends the given nodes.
func (n *Node) ReplaceChildren(children ...*Node) {
	n.Empty()
	n.Append(children...)
}

func (n *Node) indexOf(c *Node) int {
	for i, have := range n.children {
		if have == c {
			return i
		}
	}
	return -1
}

// Text returns the concatenated text of n and its descendants.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Content
	}
	var sb strings.Builder
	n.walk(func(c *Node) bool {
		if c.Type == TextNode {
			sb.WriteString(c.Content)
		}
		return true
	})
	return sb.String()
}

// SetText replaces the children of n with a single text node.
func (n *Node) SetText(s string) {
	n.ReplaceChildren(NewText(s))
}

// Clone copies n. Deep clones include all descendants. Data and handlers are
// not copied.
func (n *Node) Clone(deep bool) *Node {
	c := &Node{Type: n.Type, Tag: n.Tag, Content: n.Content}
	c.attrs = n.Attrs()
	if deep {
		for _, child := range n.children {
			cc := child.Clone(true)
			cc.Parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// CloneChildren deep-clones the children of n.
func (n *Node) CloneChildren() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.Clone(true))
	}
	return out
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Contains reports whether c is n or one of its descendants.
func (n *Node) Contains(c *Node) bool {
	for ; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}
	return false
}
