package render

import "github.com/caretext/cdarender/internal/cda"

// footnoteEntry is one resolved footnote: its 1-based ordinal within
// the document's footnote sequence and its collapsed text content.
type footnoteEntry struct {
	ordinal int
	text    string
}

// buildFootnoteIndex collects every footnote element of the document in
// one forward pass. The ordinal recorded for an id is the position of
// the first footnote carrying that id; later duplicates keep their
// place in the sequence but do not replace the entry.
func buildFootnoteIndex(doc *cda.Node) map[string]footnoteEntry {
	index := make(map[string]footnoteEntry)
	ordinal := 0
	doc.Walk(func(n *cda.Node) {
		if n.Type != cda.ElementNode || n.Tag != "footnote" {
			return
		}
		ordinal++
		id := n.AttrValue("ID")
		if id == "" {
			return
		}
		if _, dup := index[id]; dup {
			return
		}
		index[id] = footnoteEntry{
			ordinal: ordinal,
			text:    cda.CollapseSpace(cda.CollectText(n)),
		}
	})
	return index
}

// footnoteRefTitle is the hover text for a footnote reference: the
// first 50 characters of the footnote text, marked when truncated.
func footnoteRefTitle(s string) string {
	const max = 50
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
