package render

import (
	"strings"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/narrative"
	"golang.org/x/net/html"
)

// Per-kind attribute allow-lists. Output follows list order, keeping
// renders deterministic.
var tableAttrs = []string{
	"border", "frame", "rules", "cellpadding", "cellspacing", "span",
	"summary", "width", "align", "valign", "char", "charoff", "abbr",
	"scope", "headers", "axis", "colspan", "rowspan",
}

var linkAttrs = []string{"name", "rel", "href", "title", "rev"}

func allowListFor(kind narrative.Kind) []string {
	switch kind {
	case narrative.Table, narrative.THead, narrative.TFoot, narrative.TBody,
		narrative.ColGroup, narrative.Col, narrative.TR, narrative.TH, narrative.TD:
		return tableAttrs
	case narrative.LinkHTML:
		return linkAttrs
	}
	return nil
}

// sanitizeAttrs maps raw source attributes onto the safe output set for
// one node kind: the universal renames first, then the kind's
// allow-list. A name without a rule here never reaches output,
// whatever the kind; that is the attribute-injection boundary.
func sanitizeAttrs(kind narrative.Kind, attrs []cda.Attr) []html.Attribute {
	get := func(name string) (string, bool) {
		for _, a := range attrs {
			if a.Name == name {
				return a.Value, true
			}
		}
		return "", false
	}

	var out []html.Attribute
	emitted := map[string]bool{}
	emit := func(key, val string) {
		if emitted[key] {
			return
		}
		emitted[key] = true
		out = append(out, attr(key, val))
	}

	if v, ok := get("ID"); ok {
		emit("id", v)
	}

	revised, hasRevised := get("revised")
	var class []string
	if hasRevised {
		class = append(class, "revision_"+revised+"_final")
	}
	if v, ok := get("styleCode"); ok {
		class = append(class, strings.Fields(v)...)
	}
	if v, ok := get("class"); ok {
		class = append(class, strings.Fields(v)...)
	}
	if len(class) > 0 {
		emit("class", strings.Join(class, " "))
	}

	if hasRevised {
		orig, _ := get("title")
		emit("title", strings.TrimSpace(revised+" "+orig))
	}

	if v, ok := get("language"); ok {
		emit("lang", v)
	}
	if v, ok := get("IDREF"); ok {
		emit("idref", v)
	}

	// Tables always carry explicit cell spacing and padding.
	if kind == narrative.Table {
		if _, ok := get("cellspacing"); !ok {
			emit("cellspacing", "1")
		}
		if _, ok := get("cellpadding"); !ok {
			emit("cellpadding", "1")
		}
	}

	for _, name := range allowListFor(kind) {
		if v, ok := get(name); ok {
			emit(name, v)
		}
	}
	return out
}
