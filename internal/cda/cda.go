package cda

import "strings"

// NodeType distinguishes element nodes from text nodes.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attr is one attribute as written in the source document.
type Attr struct {
	Name  string
	Value string
}

// Node is a single node of a parsed clinical document. Children keep
// document order; text content is carried verbatim in TextNode children
// so mixed content round-trips unchanged.
type Node struct {
	Type     NodeType
	Tag      string // local element name, e.g. "renderMultiMedia"
	Attrs    []Attr // attributes in source order
	Text     string // text payload (TextNode only)
	Children []*Node
	Index    int // document-order position, assigned by the parser
}

// AttrValue returns the value of the named attribute, or "" if absent.
// Names are case-sensitive, as in the source format.
func (n *Node) AttrValue(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Walk visits n and every descendant depth-first in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// CollectText returns the concatenated text content of n's subtree.
func CollectText(n *Node) string {
	var b strings.Builder
	n.Walk(func(c *Node) {
		if c.Type == TextNode {
			b.WriteString(c.Text)
		}
	})
	return b.String()
}

// CollapseSpace trims s and collapses every whitespace run into a
// single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
