package media

import (
	"bytes"
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/fumiama/imgsz"
	pdflib "github.com/ledongthuc/pdf"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/narrative"
	"github.com/caretext/cdarender/internal/render"
)

// Verdict says how the renderer would treat a media element.
type Verdict string

const (
	VerdictBlockedScript Verdict = "blocked_script"
	VerdictExternalImage Verdict = "external_image"
	VerdictExternalFrame Verdict = "external_frame"
	VerdictInlineImage   Verdict = "inline_image"
	VerdictInlineFrame   Verdict = "inline_frame"
	VerdictInlineText    Verdict = "inline_text"
	VerdictDropped       Verdict = "dropped"
)

// Item is the inspection report for one media element.
type Item struct {
	ID             string  `json:"id,omitempty"`
	MediaType      string  `json:"media_type,omitempty"`
	Representation string  `json:"representation,omitempty"`
	Reference      string  `json:"reference,omitempty"`
	Verdict        Verdict `json:"verdict"`
	Sandboxed      bool    `json:"sandboxed,omitempty"`
	InlineBytes    int     `json:"inline_bytes,omitempty"`
	ImageFormat    string  `json:"image_format,omitempty"`
	ImageWidth     int     `json:"image_width,omitempty"`
	ImageHeight    int     `json:"image_height,omitempty"`
	PDFPages       int     `json:"pdf_pages,omitempty"`
}

// Inspect inventories every media element of a document: what it
// declares, how rendering would treat it, and for inline payloads we
// can cheaply decode, what is actually inside.
func Inspect(doc *cda.Document) []Item {
	var items []Item
	doc.Root.Walk(func(n *cda.Node) {
		if n.Type != cda.ElementNode || n.Tag != "observationMedia" {
			return
		}
		items = append(items, inspectOne(narrative.Build(n)))
	})
	return items
}

// inspectOne mirrors the renderer's media decision order, so the
// verdict always matches what a render of the same document would do.
func inspectOne(n *narrative.Node) Item {
	item := Item{
		ID:             n.ID,
		MediaType:      n.MediaType,
		Representation: n.Representation,
		Reference:      n.Reference,
	}
	switch {
	case n.Reference != "" && render.IsScriptRef(n.Reference):
		item.Verdict = VerdictBlockedScript
	case n.Reference != "":
		if strings.HasPrefix(n.MediaType, "image/") {
			item.Verdict = VerdictExternalImage
		} else {
			item.Verdict = VerdictExternalFrame
			item.Sandboxed = n.MediaType != "application/pdf"
		}
	case n.InlineContent != "" && strings.HasPrefix(n.MediaType, "image/"):
		item.Verdict = VerdictInlineImage
		probeInline(&item, n.InlineContent)
	case n.InlineContent != "" && n.Representation == "B64":
		item.Verdict = VerdictInlineFrame
		item.Sandboxed = n.MediaType != "application/pdf"
		probeInline(&item, n.InlineContent)
	case n.InlineContent != "" && (n.MediaType == "" || n.MediaType == "text/plain"):
		item.Verdict = VerdictInlineText
		item.InlineBytes = len(n.InlineContent)
	default:
		item.Verdict = VerdictDropped
	}
	return item
}

// probeInline decodes a base64 payload to size it and, for the formats
// we can read without a full decode, report dimensions or page count.
// Undecodable payloads leave the probe fields zero.
func probeInline(item *Item, content string) {
	data, err := base64.StdEncoding.DecodeString(stripSpace(content))
	if err != nil {
		return
	}
	item.InlineBytes = len(data)
	switch {
	case strings.HasPrefix(item.MediaType, "image/"):
		sz, format, err := imgsz.DecodeSize(bytes.NewReader(data))
		if err != nil {
			return
		}
		item.ImageFormat = format
		item.ImageWidth = int(sz.Width)
		item.ImageHeight = int(sz.Height)
	case item.MediaType == "application/pdf":
		r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return
		}
		item.PDFPages = r.NumPage()
	}
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
