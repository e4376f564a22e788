package render

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/narrative"
)

// IsScriptRef reports whether a media reference carries a script
// scheme. Such references are never emitted as src attributes.
func IsScriptRef(ref string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ref)), "javascript")
}

// DataURI packs inline base64 content into a data: URI. Whitespace
// inside the base64 payload is stripped so line-wrapped content from
// the source document stays a valid URI.
func DataURI(mediaType, content string) string {
	var b strings.Builder
	b.Grow(len(content) + len(mediaType) + 13)
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	for _, r := range content {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mediaAltText derives alt text from the media's first declared
// identifier. Empty when the media declares none.
func mediaAltText(n *narrative.Node) string {
	if len(n.DeclaredIDs) == 0 {
		return ""
	}
	id := n.DeclaredIDs[0]
	return cda.CollapseSpace(id.Root + " " + id.Extension)
}

// resolveMedia turns one media node into markup. The first matching
// policy wins:
//
//  1. script-scheme reference: rendered as visible text, never a src
//  2. external reference: img for image types, framed otherwise
//  3. inline image content: img with a data: URI
//  4. other inline base64 content: framed data: URI
//  5. inline text content: pre block
//  6. nothing usable: dropped
func (st *state) resolveMedia(n *narrative.Node) []*html.Node {
	alt := mediaAltText(n)

	if n.Reference != "" {
		if IsScriptRef(n.Reference) {
			pre := el("pre")
			b := el("b")
			i := el("i")
			i.AppendChild(textNode(n.Reference))
			b.AppendChild(i)
			pre.AppendChild(b)
			return []*html.Node{pre}
		}
		if strings.HasPrefix(n.MediaType, "image/") {
			img := el("img",
				attr("src", n.Reference),
				attr("alt", alt),
				attr("title", alt),
			)
			return []*html.Node{img}
		}
		return []*html.Node{st.frame(n, n.Reference, alt)}
	}

	if n.InlineContent != "" {
		if strings.HasPrefix(n.MediaType, "image/") {
			img := el("img",
				attr("src", DataURI(n.MediaType, n.InlineContent)),
				attr("alt", alt),
				attr("title", alt),
			)
			return []*html.Node{img}
		}
		if n.Representation == "B64" {
			return []*html.Node{st.frame(n, DataURI(n.MediaType, n.InlineContent), alt)}
		}
		if n.MediaType == "" || n.MediaType == "text/plain" {
			pre := el("pre")
			pre.AppendChild(textNode(n.InlineContent))
			return []*html.Node{pre}
		}
	}

	return nil
}

// frame wraps non-image media in an iframe. Everything except PDF is
// sandboxed; browsers refuse to plugin-render PDFs inside a sandboxed
// frame, and PDF is the one type the frame exists to show.
func (st *state) frame(n *narrative.Node, src, alt string) *html.Node {
	id := n.ID
	if id == "" {
		id = st.nextID()
	}
	attrs := []html.Attribute{
		attr("src", src),
		attr("name", id),
		attr("id", id),
		attr("width", "100%"),
		attr("height", "600"),
		attr("title", alt),
	}
	if n.MediaType != "application/pdf" {
		attrs = append(attrs, attr("sandbox", ""))
	}
	return el("iframe", attrs...)
}

// buildMediaIndex maps every ID-carrying element in scope so that
// renderMultiMedia references can find their targets. The first
// element declaring an id wins.
func buildMediaIndex(scope *cda.Node) map[string]*cda.Node {
	index := make(map[string]*cda.Node)
	scope.Walk(func(n *cda.Node) {
		if n.Type != cda.ElementNode {
			return
		}
		id := n.AttrValue("ID")
		if id == "" {
			return
		}
		if _, dup := index[id]; dup {
			return
		}
		index[id] = n
	})
	return index
}

// mediaTargets resolves a referenced element to the media elements it
// stands for. A region of interest stands for the media nested inside
// it; anything that is not media yields nothing.
func mediaTargets(target *cda.Node) []*cda.Node {
	switch target.Tag {
	case "observationMedia":
		return []*cda.Node{target}
	case "regionOfInterest":
		var media []*cda.Node
		target.Walk(func(n *cda.Node) {
			if n.Type == cda.ElementNode && n.Tag == "observationMedia" {
				media = append(media, n)
			}
		})
		return media
	}
	return nil
}

func (st *state) renderMultiMedia(n *narrative.Node, depth int) ([]*html.Node, error) {
	div := el("div")
	if n.Caption != nil {
		rendered, err := st.renderNode(n.Caption, narrative.RenderMultiMedia, depth+1)
		if err != nil {
			return nil, err
		}
		appendAll(div, rendered)
	}
	for _, id := range n.ReferencedIDs {
		target, ok := st.mediaIndex[id]
		if !ok {
			continue
		}
		for _, media := range mediaTargets(target) {
			appendAll(div, st.resolveMedia(narrative.Build(media)))
		}
	}
	return []*html.Node{div}, nil
}
