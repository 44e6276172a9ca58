package gpx

import "strings"

// Node is a read-only view of one element in a GPX document. Names are
// local names: namespace prefixes such as "gpxtpx:" are not part of them.
type Node interface {
	Name() string
	// Attr returns the attribute value and whether it was present.
	Attr(name string) (string, bool)
	// Child returns the first child element with the given name, or nil.
	Child(name string) Node
	// Children returns the child elements with the given name in document
	// order. An empty name returns every child element.
	Children(name string) []Node
	// Text returns the element's own character data with surrounding
	// whitespace removed.
	Text() string
}

// Element is the in-memory Node implementation produced by Decode. It can
// also be assembled by hand to feed synthetic trees to the parser.
type Element struct {
	Local   string
	Attrs   map[string]string
	Content string
	Nodes   []*Element
}

// NewElement builds an element with the given children.
func NewElement(name string, children ...*Element) *Element {
	return &Element{Local: name, Nodes: children}
}

// NewText builds a leaf element holding character data.
func NewText(name, text string) *Element {
	return &Element{Local: name, Content: text}
}

// WithAttr sets an attribute and returns the element for chaining.
func (e *Element) WithAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
	return e
}

// Append adds children and returns the element for chaining.
func (e *Element) Append(children ...*Element) *Element {
	e.Nodes = append(e.Nodes, children...)
	return e
}

// The read methods treat a nil *Element as an empty element.

func (e *Element) Name() string {
	if e == nil {
		return ""
	}
	return e.Local
}

func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

func (e *Element) Child(name string) Node {
	if e == nil {
		return nil
	}
	for _, n := range e.Nodes {
		if n.Local == name {
			return n
		}
	}
	// nil interface, not a typed nil pointer
	return nil
}

func (e *Element) Children(name string) []Node {
	if e == nil {
		return nil
	}
	var out []Node
	for _, n := range e.Nodes {
		if name == "" || n.Local == name {
			out = append(out, n)
		}
	}
	return out
}

func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Content)
}

// ChildText returns the text of the named child, or "" if there is none.
func ChildText(n Node, name string) string {
	c := n.Child(name)
	if c == nil {
		return ""
	}
	return c.Text()
}

// Path walks down the first child matching each name in turn and returns
// the final node, or nil as soon as a step is missing.
func Path(n Node, names ...string) Node {
	for _, name := range names {
		if n == nil {
			return nil
		}
		n = n.Child(name)
	}
	return n
}
