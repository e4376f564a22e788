package render

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/narrative"
)

func attrVal(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestSanitizeAttrs_UniversalRenames(t *testing.T) {
	attrs := sanitizeAttrs(narrative.Paragraph, []cda.Attr{
		{Name: "ID", Value: "p1"},
		{Name: "styleCode", Value: "Bold"},
		{Name: "language", Value: "en-US"},
	})
	if v := attrVal(attrs, "id"); v != "p1" {
		t.Errorf("expected id %q, got %q", "p1", v)
	}
	if v := attrVal(attrs, "class"); v != "Bold" {
		t.Errorf("expected class %q, got %q", "Bold", v)
	}
	if v := attrVal(attrs, "lang"); v != "en-US" {
		t.Errorf("expected lang %q, got %q", "en-US", v)
	}
	if hasAttrKey(attrs, "ID") || hasAttrKey(attrs, "styleCode") || hasAttrKey(attrs, "language") {
		t.Errorf("source attribute names leaked into output: %v", attrs)
	}
}

func TestSanitizeAttrs_RevisedMarksRevision(t *testing.T) {
	attrs := sanitizeAttrs(narrative.Content, []cda.Attr{
		{Name: "revised", Value: "delete"},
	})
	if v := attrVal(attrs, "class"); v != "revision_delete_final" {
		t.Errorf("expected revision class, got %q", v)
	}
	if v := attrVal(attrs, "title"); v != "delete" {
		t.Errorf("expected title %q, got %q", "delete", v)
	}
}

func TestSanitizeAttrs_RevisedPrependsExistingTitle(t *testing.T) {
	attrs := sanitizeAttrs(narrative.LinkHTML, []cda.Attr{
		{Name: "revised", Value: "insert"},
		{Name: "title", Value: "source note"},
	})
	if v := attrVal(attrs, "title"); v != "insert source note" {
		t.Errorf("expected merged title, got %q", v)
	}
	// The allow-list must not emit a second title.
	seen := 0
	for _, a := range attrs {
		if a.Key == "title" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("expected exactly one title attribute, got %d", seen)
	}
}

func TestSanitizeAttrs_ClassMergesAllSources(t *testing.T) {
	attrs := sanitizeAttrs(narrative.Content, []cda.Attr{
		{Name: "revised", Value: "insert"},
		{Name: "styleCode", Value: "Bold Italics"},
		{Name: "class", Value: "extra"},
	})
	want := "revision_insert_final Bold Italics extra"
	if v := attrVal(attrs, "class"); v != want {
		t.Errorf("expected class %q, got %q", want, v)
	}
}

func TestSanitizeAttrs_DropsEverythingUnknown(t *testing.T) {
	attrs := sanitizeAttrs(narrative.Paragraph, []cda.Attr{
		{Name: "onclick", Value: "alert(1)"},
		{Name: "style", Value: "color:red"},
		{Name: "src", Value: "http://evil.example"},
		{Name: "href", Value: "http://evil.example"},
	})
	if len(attrs) != 0 {
		t.Errorf("expected no attributes for paragraph, got %v", attrs)
	}
}

func TestSanitizeAttrs_LinkAllowList(t *testing.T) {
	attrs := sanitizeAttrs(narrative.LinkHTML, []cda.Attr{
		{Name: "href", Value: "#dest"},
		{Name: "rel", Value: "noopener"},
		{Name: "onclick", Value: "alert(1)"},
	})
	if v := attrVal(attrs, "href"); v != "#dest" {
		t.Errorf("expected href %q, got %q", "#dest", v)
	}
	if v := attrVal(attrs, "rel"); v != "noopener" {
		t.Errorf("expected rel %q, got %q", "noopener", v)
	}
	if hasAttrKey(attrs, "onclick") {
		t.Error("onclick must never survive sanitization")
	}
}

func TestSanitizeAttrs_TableSpacingDefaults(t *testing.T) {
	cases := []struct {
		name    string
		in      []cda.Attr
		spacing string
		padding string
	}{
		{"both absent", nil, "1", "1"},
		{"explicit padding kept", []cda.Attr{{Name: "cellpadding", Value: "3"}}, "1", "3"},
		{"explicit spacing kept", []cda.Attr{{Name: "cellspacing", Value: "0"}}, "0", "1"},
	}
	for _, c := range cases {
		attrs := sanitizeAttrs(narrative.Table, c.in)
		if v := attrVal(attrs, "cellspacing"); v != c.spacing {
			t.Errorf("%s: expected cellspacing %q, got %q", c.name, c.spacing, v)
		}
		if v := attrVal(attrs, "cellpadding"); v != c.padding {
			t.Errorf("%s: expected cellpadding %q, got %q", c.name, c.padding, v)
		}
	}
}

func TestSanitizeAttrs_TableDefaultsOnlyOnTable(t *testing.T) {
	attrs := sanitizeAttrs(narrative.TD, []cda.Attr{{Name: "colspan", Value: "2"}})
	if hasAttrKey(attrs, "cellspacing") || hasAttrKey(attrs, "cellpadding") {
		t.Errorf("cell defaults leaked onto td: %v", attrs)
	}
	if v := attrVal(attrs, "colspan"); v != "2" {
		t.Errorf("expected colspan %q, got %q", "2", v)
	}
}

func TestSanitizeAttrs_DeterministicOrder(t *testing.T) {
	in := []cda.Attr{
		{Name: "align", Value: "left"},
		{Name: "styleCode", Value: "Bold"},
		{Name: "ID", Value: "t1"},
		{Name: "border", Value: "1"},
	}
	first := sanitizeAttrs(narrative.Table, in)
	for range 10 {
		again := sanitizeAttrs(narrative.Table, in)
		if len(again) != len(first) {
			t.Fatalf("expected stable length %d, got %d", len(first), len(again))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("attribute order changed at %d: %v vs %v", i, first[i], again[i])
			}
		}
	}
}

func TestMergeClassToken_PrependsToExisting(t *testing.T) {
	attrs := mergeClassToken([]html.Attribute{{Key: "class", Val: "Bold"}}, "caption")
	if v := attrVal(attrs, "class"); v != "caption Bold" {
		t.Errorf("expected class %q, got %q", "caption Bold", v)
	}
}

func TestMergeClassToken_AddsWhenMissing(t *testing.T) {
	attrs := mergeClassToken(nil, "narr_footnote")
	if v := attrVal(attrs, "class"); v != "narr_footnote" {
		t.Errorf("expected class %q, got %q", "narr_footnote", v)
	}
}
