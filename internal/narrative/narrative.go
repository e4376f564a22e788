package narrative

import (
	"strings"

	"github.com/caretext/cdarender/internal/cda"
)

// Kind identifies the narrative node variants the renderer understands.
type Kind int

const (
	Unsupported Kind = iota
	Text
	Paragraph
	LinkHTML
	Pre
	Content
	Br
	List
	Item
	Caption
	Footnote
	FootnoteRef
	Table
	THead
	TFoot
	TBody
	ColGroup
	Col
	TR
	TH
	TD
	RenderMultiMedia
	ObservationMedia
	Sup
	Sub
)

// Identifier is a declared instance identifier on a media element.
type Identifier struct {
	Root      string
	Extension string
}

// Node is one node of the narrative tree. The tree is built fresh for
// each render and never mutated afterwards.
type Node struct {
	Kind     Kind
	Attrs    []cda.Attr // raw source attributes, order preserved
	Children []*Node
	Text     string // text payload (Text kind)

	ID    string // declared ID attribute, "" if absent
	IDRef string // footnoteRef target id

	// List fields.
	Ordered bool
	Caption *Node // leading caption (List, RenderMultiMedia)
	Items   []*Node

	// Media fields.
	ReferencedIDs  []string // renderMultiMedia referencedObject ids
	Reference      string   // external reference value
	MediaType      string
	Representation string
	InlineContent  string // inline payload, verbatim
	DeclaredIDs    []Identifier
}

// Build maps a parsed element onto its narrative node. Unrecognized
// tags become Unsupported, which renders as its children with no
// wrapping element.
func Build(el *cda.Node) *Node {
	if el.Type == cda.TextNode {
		return &Node{Kind: Text, Text: el.Text}
	}

	n := &Node{Kind: kindForTag(el.Tag), Attrs: el.Attrs, ID: el.AttrValue("ID")}
	switch n.Kind {
	case List:
		n.Ordered = el.AttrValue("listType") == "ordered"
		for _, c := range el.Children {
			if c.Type != cda.ElementNode {
				continue
			}
			switch c.Tag {
			case "caption":
				if n.Caption == nil {
					n.Caption = Build(c)
				}
			case "item":
				n.Items = append(n.Items, Build(c))
			}
		}
	case FootnoteRef:
		n.IDRef = el.AttrValue("IDREF")
	case RenderMultiMedia:
		n.ReferencedIDs = strings.Fields(el.AttrValue("referencedObject"))
		for _, c := range el.Children {
			if c.Type == cda.ElementNode && c.Tag == "caption" {
				n.Caption = Build(c)
				break
			}
		}
	case ObservationMedia:
		buildMedia(n, el)
	default:
		for _, c := range el.Children {
			n.Children = append(n.Children, Build(c))
		}
	}
	return n
}

func kindForTag(tag string) Kind {
	switch tag {
	case "paragraph":
		return Paragraph
	case "linkHtml":
		return LinkHTML
	case "pre":
		return Pre
	case "content":
		return Content
	case "br":
		return Br
	case "list":
		return List
	case "item":
		return Item
	case "caption":
		return Caption
	case "footnote":
		return Footnote
	case "footnoteRef":
		return FootnoteRef
	case "table":
		return Table
	case "thead":
		return THead
	case "tfoot":
		return TFoot
	case "tbody":
		return TBody
	case "colgroup":
		return ColGroup
	case "col":
		return Col
	case "tr":
		return TR
	case "th":
		return TH
	case "td":
		return TD
	case "renderMultiMedia":
		return RenderMultiMedia
	case "observationMedia":
		return ObservationMedia
	case "sup":
		return Sup
	case "sub":
		return Sub
	}
	return Unsupported
}

// buildMedia pulls the payload out of an observationMedia element: the
// declared identifiers plus the value element's media type,
// representation, external reference, and inline content.
func buildMedia(n *Node, el *cda.Node) {
	for _, c := range el.Children {
		if c.Type != cda.ElementNode {
			continue
		}
		switch c.Tag {
		case "id":
			n.DeclaredIDs = append(n.DeclaredIDs, Identifier{
				Root:      c.AttrValue("root"),
				Extension: c.AttrValue("extension"),
			})
		case "value":
			n.MediaType = c.AttrValue("mediaType")
			n.Representation = c.AttrValue("representation")
			var text strings.Builder
			for _, vc := range c.Children {
				switch {
				case vc.Type == cda.TextNode:
					text.WriteString(vc.Text)
				case vc.Tag == "reference":
					if n.Reference == "" {
						n.Reference = vc.AttrValue("value")
					}
				}
			}
			n.InlineContent = text.String()
		}
	}
}
