package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return fromHTML(doc), nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup as the content of a <body> and returns the
// resulting detached nodes.
func ParseFragment(s string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(nodes))
	for _, hn := range nodes {
		if n := fromHTML(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// MustFragment is ParseFragment returning the first element, panicking on
// malformed input. Intended for fixed markup in code and tests.
func MustFragment(s string) *Node {
	nodes, err := ParseFragment(s)
	if err != nil {
		panic("dom: " + err.Error())
	}
	for _, n := range nodes {
		if n.Type == ElementNode {
			return n
		}
	}
	panic("dom: fragment has no element")
}

func fromHTML(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.DocumentNode:
		n = NewDocument()
	case html.ElementNode:
		n = &Node{Type: ElementNode, Tag: hn.Data}
		for _, a := range hn.Attr {
			if a.Namespace != "" {
				continue
			}
			n.attrs = append(n.attrs, Attr{Key: a.Key, Val: a.Val})
		}
	case html.TextNode:
		return NewText(hn.Data)
	default:
		// comments and doctypes are dropped
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := fromHTML(c); child != nil {
			child.Parent = n
			n.children = append(n.children, child)
		}
	}
	return n
}

func toHTML(n *Node) *html.Node {
	var hn *html.Node
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Content}
	case DocumentNode:
		hn = &html.Node{Type: html.DocumentNode}
	default:
		hn = &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
		for _, a := range n.attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	}
	for _, c := range n.children {
		hn.AppendChild(toHTML(c))
	}
	return hn
}

// Render writes n and its subtree as HTML. Documents are prefixed with a
// doctype.
func Render(w io.Writer, n *Node) error {
	if n.Type == DocumentNode {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, toHTML(n))
}

// RenderInner writes only the children of n.
func RenderInner(w io.Writer, n *Node) error {
	for _, c := range n.children {
		if err := html.Render(w, toHTML(c)); err != nil {
			return err
		}
	}
	return nil
}

// OuterHTML renders n to a string.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML renders the children of n to a string.
func InnerHTML(n *Node) string {
	var buf bytes.Buffer
	if err := RenderInner(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
