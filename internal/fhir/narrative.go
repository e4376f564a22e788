package fhir

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/render"
)

// Narrative status codes.
const (
	StatusGenerated  = "generated"
	StatusExtensions = "extensions"
	StatusAdditional = "additional"
	StatusEmpty      = "empty"
)

// XHTMLNamespace is the namespace a narrative div must declare.
const XHTMLNamespace = "http://www.w3.org/1999/xhtml"

// Narrative is a FHIR narrative element: a status code plus the
// xhtml div holding the human-readable content.
type Narrative struct {
	Status string `json:"status"`
	Div    string `json:"div"`
}

// Section is one rendered document section.
type Section struct {
	Title string    `json:"title,omitempty"`
	Code  string    `json:"code,omitempty"`
	Text  Narrative `json:"text"`
}

// Document is the rendered form of a whole clinical document.
type Document struct {
	Sections []Section `json:"sections"`
}

// FromHTML wraps a rendered tree as a generated narrative. The root is
// reused when it already is a div, otherwise wrapped in one, and the
// xhtml namespace is declared either way.
func FromHTML(root *html.Node) (Narrative, error) {
	div := root
	if root.Type != html.ElementNode || root.Data != "div" {
		div = &html.Node{Type: html.ElementNode, Data: "div"}
		div.AppendChild(root)
	}
	if !hasAttr(div.Attr, "xmlns") {
		div.Attr = append([]html.Attribute{{Key: "xmlns", Val: XHTMLNamespace}}, div.Attr...)
	}
	s, err := render.HTML(div)
	if err != nil {
		return Narrative{}, err
	}
	return Narrative{Status: StatusGenerated, Div: s}, nil
}

// FromDocument renders every narrative-bearing section of a document.
// Sections without a narrative block are skipped, not errors.
func FromDocument(doc *cda.Document, maxDepth int) (Document, error) {
	var out Document
	for _, s := range doc.Sections() {
		if s.Narrative == nil {
			continue
		}
		root, err := render.Render(doc, &s, render.Options{MaxDepth: maxDepth})
		if err != nil {
			return Document{}, fmt.Errorf("render section %q: %w", s.Title, err)
		}
		n, err := FromHTML(root)
		if err != nil {
			return Document{}, fmt.Errorf("render section %q: %w", s.Title, err)
		}
		out.Sections = append(out.Sections, Section{Title: s.Title, Code: s.Code, Text: n})
	}
	return out, nil
}

// InjectNarrative sets the text element of a decoded FHIR resource.
// Hand-authored narratives (status additional or extensions) are kept;
// anything else is replaced. A narrative with no status gets the
// data-absent-reason form instead of a status field.
func InjectNarrative(resource map[string]any, n Narrative) {
	if existing, ok := resource["text"].(map[string]any); ok {
		switch existing["status"] {
		case StatusAdditional, StatusExtensions:
			return
		}
	}
	text := map[string]any{"div": n.Div}
	if n.Status != "" {
		text["status"] = n.Status
	} else {
		text["_status"] = AbsentReasonStatus()
	}
	resource["text"] = text
}

// AbsentReasonStatus is the extension object carried in place of a
// status when none is known.
func AbsentReasonStatus() map[string]any {
	return map[string]any{
		"extension": []map[string]any{
			{
				"url":       "http://hl7.org/fhir/StructureDefinition/data-absent-reason",
				"valueCode": "unknown",
			},
		},
	}
}

func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
