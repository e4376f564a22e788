package cda

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// maxElementDepth bounds element nesting during parsing so hostile
// input cannot exhaust the call stack downstream.
const maxElementDepth = 256

// ErrTooDeep is returned when input nesting exceeds maxElementDepth.
var ErrTooDeep = errors.New("cda: element nesting too deep")

// ParseDocument reads a complete clinical document.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// ParseFragment reads a standalone narrative block or any single
// narrative element.
func ParseFragment(r io.Reader) (*Node, error) {
	return parse(r)
}

func parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var (
		root  *Node
		stack []*Node
		index int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) >= maxElementDepth {
				return nil, ErrTooDeep
			}
			n := &Node{Type: ElementNode, Tag: t.Name.Local, Index: index}
			index++
			for _, a := range t.Attr {
				// Namespace declarations are plumbing, not content.
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Node{Type: TextNode, Text: string(t), Index: index})
			index++
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	return root, nil
}
