package narrative

import (
	"strings"
	"testing"

	"github.com/caretext/cdarender/internal/cda"
)

func mustFragment(t *testing.T, src string) *cda.Node {
	t.Helper()
	frag, err := cda.ParseFragment(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return frag
}

func TestBuild_KindMapping(t *testing.T) {
	cases := []struct {
		src  string
		want Kind
	}{
		{`<paragraph/>`, Paragraph},
		{`<linkHtml/>`, LinkHTML},
		{`<content/>`, Content},
		{`<br/>`, Br},
		{`<list/>`, List},
		{`<caption/>`, Caption},
		{`<footnote/>`, Footnote},
		{`<footnoteRef/>`, FootnoteRef},
		{`<table/>`, Table},
		{`<thead/>`, THead},
		{`<tbody/>`, TBody},
		{`<colgroup/>`, ColGroup},
		{`<col/>`, Col},
		{`<tr/>`, TR},
		{`<th/>`, TH},
		{`<td/>`, TD},
		{`<renderMultiMedia/>`, RenderMultiMedia},
		{`<observationMedia/>`, ObservationMedia},
		{`<sup/>`, Sup},
		{`<sub/>`, Sub},
		{`<blink/>`, Unsupported},
		{`<Paragraph/>`, Unsupported}, // tag names are case-sensitive
	}
	for _, c := range cases {
		n := Build(mustFragment(t, c.src))
		if n.Kind != c.want {
			t.Errorf("Build(%s): expected kind %d, got %d", c.src, c.want, n.Kind)
		}
	}
}

func TestBuild_TextAndChildren(t *testing.T) {
	n := Build(mustFragment(t, `<paragraph ID="p1">hello <content>world</content></paragraph>`))
	if n.ID != "p1" {
		t.Errorf("expected ID %q, got %q", "p1", n.ID)
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(n.Children))
	}
	if n.Children[0].Kind != Text || n.Children[0].Text != "hello " {
		t.Errorf("expected leading text child, got %+v", n.Children[0])
	}
	if n.Children[1].Kind != Content {
		t.Errorf("expected content child, got kind %d", n.Children[1].Kind)
	}
}

func TestBuild_ListFields(t *testing.T) {
	n := Build(mustFragment(t, `<list listType="ordered"><caption>Meds</caption><item>one</item><item>two</item>stray</list>`))
	if !n.Ordered {
		t.Error("expected ordered list")
	}
	if n.Caption == nil || n.Caption.Kind != Caption {
		t.Fatalf("expected caption node, got %+v", n.Caption)
	}
	if len(n.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(n.Items))
	}
	if n.Items[0].Kind != Item {
		t.Errorf("expected item kind, got %d", n.Items[0].Kind)
	}
	// Non-item children of a list do not survive the build.
	if len(n.Children) != 0 {
		t.Errorf("expected no generic children, got %d", len(n.Children))
	}
}

func TestBuild_UnorderedByDefault(t *testing.T) {
	n := Build(mustFragment(t, `<list><item>a</item></list>`))
	if n.Ordered {
		t.Error("expected unordered list without listType")
	}
}

func TestBuild_FootnoteRefIDRef(t *testing.T) {
	n := Build(mustFragment(t, `<footnoteRef IDREF="fn3"/>`))
	if n.IDRef != "fn3" {
		t.Errorf("expected IDRef %q, got %q", "fn3", n.IDRef)
	}
}

func TestBuild_RenderMultiMediaReferencedIDs(t *testing.T) {
	n := Build(mustFragment(t, `<renderMultiMedia referencedObject="MM1 MM2  MM3"><caption>Scan</caption></renderMultiMedia>`))
	want := []string{"MM1", "MM2", "MM3"}
	if len(n.ReferencedIDs) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), n.ReferencedIDs)
	}
	for i := range want {
		if n.ReferencedIDs[i] != want[i] {
			t.Errorf("id %d: expected %q, got %q", i, want[i], n.ReferencedIDs[i])
		}
	}
	if n.Caption == nil {
		t.Error("expected caption node")
	}
}

func TestBuild_ObservationMediaFields(t *testing.T) {
	src := `<observationMedia ID="MM1">
  <id root="1.2.840.114350" extension="img-7"/>
  <value mediaType="image/jpeg" representation="B64">QUJD</value>
</observationMedia>`
	n := Build(mustFragment(t, src))
	if n.ID != "MM1" {
		t.Errorf("expected ID %q, got %q", "MM1", n.ID)
	}
	if n.MediaType != "image/jpeg" {
		t.Errorf("expected mediaType image/jpeg, got %q", n.MediaType)
	}
	if n.Representation != "B64" {
		t.Errorf("expected representation B64, got %q", n.Representation)
	}
	if n.InlineContent != "QUJD" {
		t.Errorf("expected inline content QUJD, got %q", n.InlineContent)
	}
	if len(n.DeclaredIDs) != 1 {
		t.Fatalf("expected 1 declared id, got %d", len(n.DeclaredIDs))
	}
	if n.DeclaredIDs[0].Root != "1.2.840.114350" || n.DeclaredIDs[0].Extension != "img-7" {
		t.Errorf("unexpected declared id %+v", n.DeclaredIDs[0])
	}
}

func TestBuild_ObservationMediaReference(t *testing.T) {
	src := `<observationMedia><value mediaType="application/pdf"><reference value="report.pdf"/></value></observationMedia>`
	n := Build(mustFragment(t, src))
	if n.Reference != "report.pdf" {
		t.Errorf("expected reference report.pdf, got %q", n.Reference)
	}
	if n.MediaType != "application/pdf" {
		t.Errorf("expected mediaType application/pdf, got %q", n.MediaType)
	}
}

func TestBuild_UnsupportedKeepsChildren(t *testing.T) {
	n := Build(mustFragment(t, `<custom><paragraph>kept</paragraph></custom>`))
	if n.Kind != Unsupported {
		t.Fatalf("expected Unsupported, got %d", n.Kind)
	}
	if len(n.Children) != 1 || n.Children[0].Kind != Paragraph {
		t.Errorf("expected paragraph child preserved, got %+v", n.Children)
	}
}
