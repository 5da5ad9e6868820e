package xml

import "strings"

// Node is any item that can appear in an element's children.
type Node interface {
	// CloneNode returns a deep copy of the node.
	CloneNode() Node
}

// Name is a qualified XML name.
type Name struct {
	// Prefix is the prefix as written in the source, empty if none.
	Prefix string
	Local  string
	// Space is the namespace URI the prefix was bound to.
	Space string
}

// Is reports whether n is the name local in namespace space.
func (n Name) Is(space, local string) bool {
	return n.Space == space && n.Local == local
}

// String returns the name as written in the source.
func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attr is an attribute of an element.
type Attr struct {
	Name  Name
	Value string
}

// Element is an XML element. An element with an empty local name is a
// transparent container: it serialises as its children only. Documents and
// detached holders use this.
type Element struct {
	Name     Name
	Attrs    []Attr
	Children []Node
}

// Text is character data.
type Text struct {
	Value string
}

// Comment is an XML comment.
type Comment struct {
	Value string
}

// ProcInst is a processing instruction such as the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

// RawDirective is a <!...> declaration kept verbatim.
type RawDirective struct {
	Value string
}

// NewElement creates an element with the given name and no content.
func NewElement(name Name) *Element {
	return &Element{Name: name}
}

// NewText creates a text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// CloneNode implements Node.
func (e *Element) CloneNode() Node {
	return e.Clone()
}

// Clone returns a deep copy of the subtree rooted at e.
func (e *Element) Clone() *Element {
	c := &Element{Name: e.Name}
	if len(e.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if len(e.Children) > 0 {
		c.Children = make([]Node, len(e.Children))
		for i, child := range e.Children {
			c.Children[i] = child.CloneNode()
		}
	}
	return c
}

func (t *Text) CloneNode() Node         { return &Text{Value: t.Value} }
func (c *Comment) CloneNode() Node      { return &Comment{Value: c.Value} }
func (p *ProcInst) CloneNode() Node     { return &ProcInst{Target: p.Target, Inst: p.Inst} }
func (d *RawDirective) CloneNode() Node { return &RawDirective{Value: d.Value} }

// Attr returns the value of the attribute local in namespace space.
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Is(space, local) {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one with the same
// namespace and local name.
func (e *Element) SetAttr(name Name, value string) {
	for i, a := range e.Attrs {
		if a.Name.Is(name.Space, name.Local) {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the attribute local in namespace space.
func (e *Element) RemoveAttr(space, local string) {
	for i, a := range e.Attrs {
		if a.Name.Is(space, local) {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// AppendChild adds n as the last child.
func (e *Element) AppendChild(n Node) {
	e.Children = append(e.Children, n)
}

// SetChildren replaces all children of e.
func (e *Element) SetChildren(nodes ...Node) {
	e.Children = append([]Node(nil), nodes...)
}

// IndexOf returns the position of child among e's children, or -1. Nodes
// are compared by identity.
func (e *Element) IndexOf(child Node) int {
	for i, c := range e.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertBefore inserts nodes directly before ref. It reports false if ref
// is not a child of e.
func (e *Element) InsertBefore(ref Node, nodes ...Node) bool {
	i := e.IndexOf(ref)
	if i < 0 {
		return false
	}
	children := make([]Node, 0, len(e.Children)+len(nodes))
	children = append(children, e.Children[:i]...)
	children = append(children, nodes...)
	children = append(children, e.Children[i:]...)
	e.Children = children
	return true
}

// RemoveChild detaches child from e. It reports false if child is not a
// child of e.
func (e *Element) RemoveChild(child Node) bool {
	i := e.IndexOf(child)
	if i < 0 {
		return false
	}
	e.Children = append(e.Children[:i], e.Children[i+1:]...)
	return true
}

// Walk visits every descendant of e in document order. Returning false
// from fn stops the walk; Walk then returns false as well. e itself is not
// visited.
func (e *Element) Walk(fn func(n Node) bool) bool {
	for _, child := range e.Children {
		if !fn(child) {
			return false
		}
		if el, ok := child.(*Element); ok {
			if !el.Walk(fn) {
				return false
			}
		}
	}
	return true
}

// FindAll returns every descendant element named local in namespace space,
// in document order.
func (e *Element) FindAll(space, local string) []*Element {
	var found []*Element
	e.Walk(func(n Node) bool {
		if el, ok := n.(*Element); ok && el.Name.Is(space, local) {
			found = append(found, el)
		}
		return true
	})
	return found
}

// Find returns the first descendant element named local in namespace space.
func (e *Element) Find(space, local string) *Element {
	var found *Element
	e.Walk(func(n Node) bool {
		if el, ok := n.(*Element); ok && el.Name.Is(space, local) {
			found = el
			return false
		}
		return true
	})
	return found
}

// ChildElements returns the direct element children of e.
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Text returns the concatenated character data of all descendants.
func (e *Element) Text() string {
	var b strings.Builder
	e.Walk(func(n Node) bool {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.Value)
		}
		return true
	})
	return b.String()
}

// Ancestors returns the chain of elements from root down to the parent of
// target. The boolean is false when target is not a descendant of root,
// for example because it has been removed from the tree.
func Ancestors(root *Element, target Node) ([]*Element, bool) {
	chain := []*Element{root}
	if ancestors(root, target, &chain) {
		return chain, true
	}
	return nil, false
}

func ancestors(el *Element, target Node, chain *[]*Element) bool {
	for _, child := range el.Children {
		if child == target {
			return true
		}
		if c, ok := child.(*Element); ok {
			*chain = append(*chain, c)
			if ancestors(c, target, chain) {
				return true
			}
			*chain = (*chain)[:len(*chain)-1]
		}
	}
	return false
}

// Parent returns the element directly containing target under root.
func Parent(root *Element, target Node) (*Element, bool) {
	chain, ok := Ancestors(root, target)
	if !ok {
		return nil, false
	}
	return chain[len(chain)-1], true
}

// Contains reports whether target is a descendant of root.
func Contains(root *Element, target Node) bool {
	_, ok := Ancestors(root, target)
	return ok
}
