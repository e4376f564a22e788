package render

import (
	"strings"
	"testing"
)

func TestBuildFootnoteIndex_DocumentOrder(t *testing.T) {
	doc := mustFragment(t, `<doc>
		<text><footnote ID="f1">First note</footnote></text>
		<text><footnote ID="f2">Second note</footnote><footnote ID="f3">Third note</footnote></text>
	</doc>`)
	index := buildFootnoteIndex(doc)
	if len(index) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(index))
	}
	for id, want := range map[string]int{"f1": 1, "f2": 2, "f3": 3} {
		e, ok := index[id]
		if !ok {
			t.Fatalf("expected entry for %q", id)
		}
		if e.ordinal != want {
			t.Errorf("%s: expected ordinal %d, got %d", id, want, e.ordinal)
		}
	}
	if index["f2"].text != "Second note" {
		t.Errorf("expected text %q, got %q", "Second note", index["f2"].text)
	}
}

func TestBuildFootnoteIndex_FirstOccurrenceWins(t *testing.T) {
	doc := mustFragment(t, `<doc>
		<footnote ID="f1">original</footnote>
		<footnote ID="f1">duplicate</footnote>
		<footnote ID="f2">second id</footnote>
	</doc>`)
	index := buildFootnoteIndex(doc)
	if e := index["f1"]; e.ordinal != 1 || e.text != "original" {
		t.Errorf("expected first occurrence of f1 to win, got %+v", e)
	}
	// The duplicate still occupies position 2 in the sequence.
	if e := index["f2"]; e.ordinal != 3 {
		t.Errorf("expected f2 at ordinal 3, got %d", e.ordinal)
	}
}

func TestBuildFootnoteIndex_AnonymousFootnotesCountButDoNotResolve(t *testing.T) {
	doc := mustFragment(t, `<doc>
		<footnote>no id here</footnote>
		<footnote ID="f1">named</footnote>
	</doc>`)
	index := buildFootnoteIndex(doc)
	if len(index) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(index))
	}
	if e := index["f1"]; e.ordinal != 2 {
		t.Errorf("expected f1 at ordinal 2, got %d", e.ordinal)
	}
}

func TestBuildFootnoteIndex_CollapsesNestedText(t *testing.T) {
	doc := mustFragment(t, `<doc><footnote ID="f1">
		see   <content>reference</content>
		below
	</footnote></doc>`)
	index := buildFootnoteIndex(doc)
	if e := index["f1"]; e.text != "see reference below" {
		t.Errorf("expected collapsed text, got %q", e.text)
	}
}

func TestFootnoteRefTitle_Truncation(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short unchanged", "brief", "brief"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"sixty truncated", strings.Repeat("a", 60), strings.Repeat("a", 50) + "..."},
		{"multibyte runes", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
	}
	for _, c := range cases {
		if got := footnoteRefTitle(c.in); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
}
