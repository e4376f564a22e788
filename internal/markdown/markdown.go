package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/caretext/cdarender/internal/fhir"
)

// Renderer converts markdown authoring input into a narrative div.
// Conversion output goes through a sanitization pass before it is
// wrapped, so raw markup in the source cannot reach the narrative.
type Renderer struct {
	md  goldmark.Markdown
	pol *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	return &Renderer{md: md, pol: bluemonday.UGCPolicy()}
}

// Render produces a generated narrative from markdown source.
func (r *Renderer) Render(src []byte) (fhir.Narrative, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return fhir.Narrative{}, fmt.Errorf("convert markdown: %w", err)
	}
	clean := r.pol.SanitizeReader(&buf).String()
	return fhir.Narrative{
		Status: fhir.StatusGenerated,
		Div:    `<div xmlns="` + fhir.XHTMLNamespace + `">` + clean + `</div>`,
	}, nil
}
