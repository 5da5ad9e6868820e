package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Document is a parsed XML part. It is a transparent container whose
// children are the prolog nodes and the root element.
type Document struct {
	Element
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Element {
	for _, c := range d.Children {
		if el, ok := c.(*Element); ok {
			return el
		}
	}
	return nil
}

// Node returns the document as a container element, the outermost root
// for tree queries.
func (d *Document) Node() *Element {
	return &d.Element
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{Element: *d.Element.Clone()}
}

// Parse decodes an XML document.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}

	stack := []*Element{doc.Node()}
	scopes := []map[string]string{{"xml": NamespaceXML}}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			bindings := declareNamespaces(scopes[len(scopes)-1], t.Attr)
			el := &Element{Name: resolveName(t.Name, bindings, true)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: resolveName(a.Name, bindings, false), Value: a.Value})
			}
			top.AppendChild(el)
			stack = append(stack, el)
			scopes = append(scopes, bindings)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("failed to parse xml: unexpected end element </%s>", rawName(t.Name))
			}
			if top.Name.Prefix != t.Name.Space || top.Name.Local != t.Name.Local {
				return nil, fmt.Errorf("failed to parse xml: element <%s> closed by </%s>", top.Name, rawName(t.Name))
			}
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		case xml.CharData:
			// Whitespace around the prolog carries no content.
			if len(stack) == 1 && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			top.AppendChild(&Text{Value: string(t)})
		case xml.Comment:
			top.AppendChild(&Comment{Value: string(t)})
		case xml.ProcInst:
			top.AppendChild(&ProcInst{Target: t.Target, Inst: string(t.Inst)})
		case xml.Directive:
			top.AppendChild(&RawDirective{Value: string(t)})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("failed to parse xml: element <%s> is not closed", stack[len(stack)-1].Name)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("failed to parse xml: no root element")
	}
	return doc, nil
}

// ParseBytes decodes an XML document held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// declareNamespaces returns the prefix bindings in effect inside an element
// carrying attrs. The parent map is copied only when attrs declare something.
func declareNamespaces(parent map[string]string, attrs []xml.Attr) map[string]string {
	var bindings map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		default:
			continue
		}
		if bindings == nil {
			bindings = make(map[string]string, len(parent)+1)
			for k, v := range parent {
				bindings[k] = v
			}
		}
		bindings[prefix] = a.Value
	}
	if bindings == nil {
		return parent
	}
	return bindings
}

// resolveName maps a raw prefixed name to a Name. Unprefixed attributes are
// in no namespace; unprefixed elements take the default namespace.
func resolveName(n xml.Name, bindings map[string]string, element bool) Name {
	name := Name{Prefix: n.Space, Local: n.Local}
	if n.Space == "" && !element {
		return name
	}
	if n.Space == "xmlns" || (n.Space == "" && n.Local == "xmlns") {
		return name
	}
	name.Space = bindings[n.Space]
	return name
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
