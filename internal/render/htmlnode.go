package render

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
)

func el(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

func hasAttrKey(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// mergeClassToken guarantees token is present in the class attribute,
// prepending it to any class value sanitization already produced.
func mergeClassToken(attrs []html.Attribute, token string) []html.Attribute {
	for i, a := range attrs {
		if a.Key == "class" {
			attrs[i].Val = token + " " + a.Val
			return attrs
		}
	}
	return append(attrs, attr("class", token))
}

// HTML serializes a rendered tree. Text node data is escaped by the
// serializer; element names and structural attribute values are fixed
// literals from the dispatch tables.
func HTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}
	return buf.String(), nil
}
