package render

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/narrative"
)

// DefaultMaxDepth bounds narrative nesting when Options does not.
const DefaultMaxDepth = 128

// ErrDepthExceeded is returned when narrative nesting exceeds the
// configured maximum. It is the only error a well-formed document can
// produce during rendering.
var ErrDepthExceeded = errors.New("render: narrative nesting too deep")

// Options controls rendering.
type Options struct {
	// MaxDepth caps narrative nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// state carries the per-render indexes and the synthetic id sequence.
type state struct {
	footnotes  map[string]footnoteEntry
	mediaIndex map[string]*cda.Node
	maxDepth   int
	idSeq      int
}

func (st *state) nextID() string {
	st.idSeq++
	return fmt.Sprintf("narr-media-%d", st.idSeq)
}

// Render turns one section's narrative block into a markup tree rooted
// at a div. Footnotes are numbered across the whole document; media
// references resolve against the section.
func Render(doc *cda.Document, section *cda.Section, opts Options) (*html.Node, error) {
	if section.Narrative == nil {
		return nil, fmt.Errorf("render: section %q has no narrative block", section.Title)
	}
	return run(doc.Root, section.El, section.Narrative, opts)
}

// RenderFragment renders a standalone narrative block with no
// surrounding document. Fragments whose root is not a narrative text
// element are treated as the lone child of one.
func RenderFragment(frag *cda.Node, opts Options) (*html.Node, error) {
	block := frag
	if frag.Type == cda.ElementNode && frag.Tag != "text" {
		block = &cda.Node{
			Type:     cda.ElementNode,
			Tag:      "text",
			Children: []*cda.Node{frag},
		}
	}
	return run(frag, frag, block, opts)
}

func run(doc, scope, block *cda.Node, opts Options) (*html.Node, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	st := &state{
		footnotes:  buildFootnoteIndex(doc),
		mediaIndex: buildMediaIndex(scope),
		maxDepth:   maxDepth,
	}
	tree := narrative.Build(block)
	root := el("div")
	for _, c := range tree.Children {
		rendered, err := st.renderNode(c, tree.Kind, 1)
		if err != nil {
			return nil, err
		}
		appendAll(root, rendered)
	}
	return root, nil
}

// renderNode dispatches one narrative node. Void elements return their
// rendered children as following siblings; unsupported elements vanish
// but their children survive in place.
func (st *state) renderNode(n *narrative.Node, parent narrative.Kind, depth int) ([]*html.Node, error) {
	if depth > st.maxDepth {
		return nil, ErrDepthExceeded
	}

	switch n.Kind {
	case narrative.Text:
		return []*html.Node{textNode(n.Text)}, nil

	case narrative.Paragraph:
		return st.wrap("p", n, depth)

	case narrative.LinkHTML:
		attrs := sanitizeAttrs(n.Kind, n.Attrs)
		if !hasAttrKey(attrs, "class") {
			attrs = append(attrs, attr("class", "linkHtml"))
		}
		return st.wrapWith("a", attrs, n, depth)

	case narrative.Pre:
		return st.wrap("pre", n, depth)

	case narrative.Content:
		return st.wrap("span", n, depth)

	case narrative.Br:
		return st.void("br", n, parent, depth)

	case narrative.List:
		return st.renderList(n, depth)

	case narrative.Item:
		return st.wrap("li", n, depth)

	case narrative.Caption:
		if parent == narrative.Table {
			return st.wrap("caption", n, depth)
		}
		attrs := mergeClassToken(sanitizeAttrs(n.Kind, n.Attrs), "caption")
		return st.wrapWith("div", attrs, n, depth)

	case narrative.Footnote:
		return st.renderFootnote(n, depth)

	case narrative.FootnoteRef:
		return st.renderFootnoteRef(n), nil

	case narrative.Table:
		return st.wrap("table", n, depth)

	case narrative.THead:
		return st.wrap("thead", n, depth)

	case narrative.TFoot:
		return st.wrap("tfoot", n, depth)

	case narrative.TBody:
		return st.wrap("tbody", n, depth)

	case narrative.ColGroup:
		return st.wrap("colgroup", n, depth)

	case narrative.Col:
		return st.void("col", n, parent, depth)

	case narrative.TR:
		return st.wrap("tr", n, depth)

	case narrative.TH:
		return st.wrap("th", n, depth)

	case narrative.TD:
		return st.wrap("td", n, depth)

	case narrative.RenderMultiMedia:
		return st.renderMultiMedia(n, depth)

	case narrative.ObservationMedia:
		return st.resolveMedia(n), nil

	case narrative.Sup:
		return st.wrap("sup", n, depth)

	case narrative.Sub:
		return st.wrap("sub", n, depth)
	}

	return st.renderChildren(n, parent, depth)
}

func (st *state) wrap(tag string, n *narrative.Node, depth int) ([]*html.Node, error) {
	return st.wrapWith(tag, sanitizeAttrs(n.Kind, n.Attrs), n, depth)
}

func (st *state) wrapWith(tag string, attrs []html.Attribute, n *narrative.Node, depth int) ([]*html.Node, error) {
	node := el(tag, attrs...)
	children, err := st.renderChildren(n, n.Kind, depth)
	if err != nil {
		return nil, err
	}
	appendAll(node, children)
	return []*html.Node{node}, nil
}

// void emits an element that must stay childless. Anything nested
// inside it in the source follows it as siblings.
func (st *state) void(tag string, n *narrative.Node, parent narrative.Kind, depth int) ([]*html.Node, error) {
	out := []*html.Node{el(tag, sanitizeAttrs(n.Kind, n.Attrs)...)}
	siblings, err := st.renderChildren(n, parent, depth)
	if err != nil {
		return nil, err
	}
	return append(out, siblings...), nil
}

func (st *state) renderChildren(n *narrative.Node, parent narrative.Kind, depth int) ([]*html.Node, error) {
	var out []*html.Node
	for _, c := range n.Children {
		rendered, err := st.renderNode(c, parent, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	return out, nil
}

func (st *state) renderList(n *narrative.Node, depth int) ([]*html.Node, error) {
	var out []*html.Node
	if n.Caption != nil {
		b := el("b")
		rendered, err := st.renderChildren(n.Caption, narrative.List, depth+1)
		if err != nil {
			return nil, err
		}
		appendAll(b, rendered)
		attrs := mergeClassToken(sanitizeAttrs(narrative.Caption, n.Caption.Attrs), "caption")
		div := el("div", attrs...)
		div.AppendChild(b)
		out = append(out, div)
	}

	tag := "ul"
	if n.Ordered {
		tag = "ol"
	}
	list := el(tag, sanitizeAttrs(n.Kind, n.Attrs)...)
	for _, item := range n.Items {
		rendered, err := st.renderNode(item, narrative.List, depth+1)
		if err != nil {
			return nil, err
		}
		appendAll(list, rendered)
	}
	return append(out, list), nil
}

// renderFootnote emits the footnote body as a div. When the footnote's
// id made it into the index, the body is prefixed with its ordinal so
// references and bodies read against each other.
func (st *state) renderFootnote(n *narrative.Node, depth int) ([]*html.Node, error) {
	attrs := mergeClassToken(sanitizeAttrs(n.Kind, n.Attrs), "narr_footnote")
	div := el("div", attrs...)
	if e, ok := st.footnotes[n.ID]; ok {
		div.AppendChild(textNode(fmt.Sprintf("[%d]. ", e.ordinal)))
	}
	children, err := st.renderChildren(n, n.Kind, depth)
	if err != nil {
		return nil, err
	}
	appendAll(div, children)
	return []*html.Node{div}, nil
}

// renderFootnoteRef emits a bracketed superscript anchor. Unresolved
// references keep the anchor but have no number to show.
func (st *state) renderFootnoteRef(n *narrative.Node) []*html.Node {
	sup := el("sup")
	sup.AppendChild(textNode("["))
	a := el("a", attr("href", "#"+n.IDRef))
	if e, ok := st.footnotes[n.IDRef]; ok {
		a.Attr = append(a.Attr, attr("title", footnoteRefTitle(e.text)))
		a.AppendChild(textNode(fmt.Sprintf("%d", e.ordinal)))
	}
	sup.AppendChild(a)
	sup.AppendChild(textNode("]"))
	return []*html.Node{sup}
}
