package docximport

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// block is one narrative paragraph taken from the document body.
type block struct {
	heading bool
	text    string
}

// Import converts a Word document into a narrative block: one
// paragraph per body paragraph, heading-styled paragraphs as bold
// captions. The output is narrative markup ready for rendering.
func Import(r io.ReaderAt, size int64) (string, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var blocks []block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		blocks = append(blocks, block{heading: headingLevel(para) > 0, text: text})
	}
	return emitNarrative(blocks), nil
}

func emitNarrative(blocks []block) string {
	var b strings.Builder
	b.WriteString("<text>\n")
	for _, bl := range blocks {
		if bl.heading {
			b.WriteString(`<paragraph><content styleCode="Bold">`)
			escapeText(&b, bl.text)
			b.WriteString("</content></paragraph>\n")
		} else {
			b.WriteString("<paragraph>")
			escapeText(&b, bl.text)
			b.WriteString("</paragraph>\n")
		}
	}
	b.WriteString("</text>\n")
	return b.String()
}

func escapeText(b *strings.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return levelForStyle(para.Properties.Style.Val)
}

// levelForStyle maps a Word style name onto a heading level. Word
// writes both "Heading1" and "heading 1" depending on the authoring
// tool.
func levelForStyle(style string) int {
	switch strings.ToLower(strings.ReplaceAll(style, " ", "")) {
	case "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4":
		return 4
	case "heading5":
		return 5
	case "heading6":
		return 6
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
