package cda

// Document is a parsed clinical document.
type Document struct {
	Root *Node
}

// Section pairs a section element with its narrative block.
type Section struct {
	El        *Node
	Narrative *Node // the section's <text> element, nil if absent
	Title     string
	Code      string
}

// Sections returns every section of the document in document order,
// with title, code and narrative block extracted from direct children.
func (d *Document) Sections() []Section {
	var out []Section
	d.Root.Walk(func(n *Node) {
		if n.Type != ElementNode || n.Tag != "section" {
			return
		}
		s := Section{El: n}
		for _, c := range n.Children {
			if c.Type != ElementNode {
				continue
			}
			switch c.Tag {
			case "title":
				if s.Title == "" {
					s.Title = CollapseSpace(CollectText(c))
				}
			case "code":
				if s.Code == "" {
					s.Code = c.AttrValue("displayName")
					if s.Code == "" {
						s.Code = c.AttrValue("code")
					}
				}
			case "text":
				if s.Narrative == nil {
					s.Narrative = c
				}
			}
		}
		out = append(out, s)
	})
	return out
}
