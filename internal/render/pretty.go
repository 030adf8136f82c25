// Package render serializes validated profiles into SciENcv XML.
package render

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Pretty re-indents an XML document two spaces per depth, keeping every
// leaf element on one line. The declaration is normalized to Header. Like
// XML, the output is deterministic for a given input.
func Pretty(doc string) (string, error) {
	root, err := parseTree(doc)
	if err != nil {
		return "", &FormatError{Message: "reformatting XML", Cause: err}
	}

	var b strings.Builder
	b.Grow(len(doc) * 2)
	b.WriteString(Header)
	root.write(&b, 0)
	return b.String(), nil
}

// node is one element of the reparsed document. Character data is folded
// into text; the documents this package emits have no mixed content.
type node struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*node
}

func parseTree(doc string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			s := strings.TrimSpace(string(t))
			if s == "" {
				continue
			}
			cur := stack[len(stack)-1]
			if cur.text != "" {
				cur.text += " "
			}
			cur.text += s
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

func (n *node) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.name)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		b.WriteString(EscapeXML(a.Value))
		b.WriteByte('"')
	}

	if len(n.children) == 0 {
		if n.text == "" {
			b.WriteString("/>\n")
			return
		}
		b.WriteByte('>')
		b.WriteString(EscapeXML(n.text))
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteString(">\n")
		return
	}

	b.WriteString(">\n")
	if n.text != "" {
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(EscapeXML(n.text))
		b.WriteByte('\n')
	}
	for _, c := range n.children {
		c.write(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(n.name)
	b.WriteString(">\n")
}
