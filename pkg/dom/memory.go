package dom

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Element is a node of a Tree.
type Element struct {
	Tag      string
	ID       string
	Attrs    map[string]string
	Value    string
	Children []Node
	Parent   *Element

	listeners map[string][]*Listener
}

// Text is a text node of a Tree.
type Text struct {
	Data   string
	Parent *Element
}

// Tree is an in-memory Document. It backs `iko run` and tests.
type Tree struct {
	roots map[string]*Element
	ids   []string
}

var _ Document = (*Tree)(nil)

// NewTree creates a document with one empty mount root per id.
func NewTree(rootIDs ...string) *Tree {
	t := &Tree{roots: make(map[string]*Element)}
	for _, id := range rootIDs {
		t.roots[id] = &Element{Tag: "div", ID: id, Attrs: map[string]string{}}
		t.ids = append(t.ids, id)
	}
	return t
}

func element(n Node) *Element {
	el, ok := n.(*Element)
	if !ok {
		panic(fmt.Sprintf("dom: %T is not an element", n))
	}
	return el
}

func (t *Tree) CreateElement(tag string) Node {
	return &Element{Tag: tag, Attrs: map[string]string{}}
}

func (t *Tree) CreateTextNode(text string) Node {
	return &Text{Data: text}
}

func (t *Tree) SetText(n Node, text string) {
	n.(*Text).Data = text
}

// SetAttribute sets an attribute. Setting `value` also resets the node's
// current value, like assigning the property in a browser.
func (t *Tree) SetAttribute(n Node, name, value string) {
	el := element(n)
	el.Attrs[name] = value
	if name == "value" {
		el.Value = value
	}
}

func (t *Tree) AddEventListener(n Node, event string, l *Listener) {
	el := element(n)
	if el.listeners == nil {
		el.listeners = make(map[string][]*Listener)
	}
	el.listeners[event] = append(el.listeners[event], l)
}

func (t *Tree) RemoveEventListener(n Node, event string, l *Listener) {
	el := element(n)
	ls := el.listeners[event]
	for i, x := range ls {
		if x == l {
			el.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (t *Tree) InsertBefore(parent, n, ref Node) {
	p := element(parent)
	detach(n)
	at := len(p.Children)
	if ref != nil {
		at = indexOf(p, ref)
		if at < 0 {
			panic("dom: reference node is not a child of parent")
		}
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[at+1:], p.Children[at:])
	p.Children[at] = n
	setParent(n, p)
}

func (t *Tree) RemoveChild(parent, n Node) {
	p := element(parent)
	if indexOf(p, n) < 0 {
		panic("dom: node is not a child of parent")
	}
	detach(n)
}

func (t *Tree) ReadValue(n Node) string {
	return element(n).Value
}

func (t *Tree) Root(id string) (Node, bool) {
	el, ok := t.roots[id]
	return el, ok
}

func (t *Tree) ChildCount(n Node) int {
	return len(element(n).Children)
}

func (t *Tree) RemoveChildren(n Node) {
	el := element(n)
	for _, c := range el.Children {
		setParent(c, nil)
	}
	el.Children = nil
}

// Listeners returns the number of listeners registered for event.
func (t *Tree) Listeners(n Node, event string) int {
	return len(element(n).listeners[event])
}

// Dispatch runs the listeners registered on n for event.
func (t *Tree) Dispatch(n Node, event string) {
	for _, l := range append([]*Listener(nil), element(n).listeners[event]...) {
		l.Handle()
	}
}

// Input simulates typing: it sets the node's value and dispatches `input`.
func (t *Tree) Input(n Node, value string) {
	element(n).Value = value
	t.Dispatch(n, "input")
}

// Find returns the first element with the given tag under n, depth first.
func (t *Tree) Find(n Node, tag string) (*Element, bool) {
	el, ok := n.(*Element)
	if !ok {
		return nil, false
	}
	for _, c := range el.Children {
		if ce, ok := c.(*Element); ok {
			if ce.Tag == tag {
				return ce, true
			}
			if found, ok := t.Find(ce, tag); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// TextContent concatenates every text node under n.
func TextContent(n Node) string {
	switch c := n.(type) {
	case *Text:
		return c.Data
	case *Element:
		var b strings.Builder
		for _, child := range c.Children {
			b.WriteString(TextContent(child))
		}
		return b.String()
	}
	return ""
}

// HTML serializes n. Attributes are written in name order.
func HTML(n Node) string {
	var b strings.Builder
	writeHTML(&b, n)
	return b.String()
}

// HTML serializes every mount root, one per line.
func (t *Tree) HTML() string {
	var b strings.Builder
	for _, id := range t.ids {
		writeHTML(&b, t.roots[id])
		b.WriteString("\n")
	}
	return b.String()
}

func writeHTML(b *strings.Builder, n Node) {
	switch c := n.(type) {
	case *Text:
		b.WriteString(html.EscapeString(c.Data))
	case *Element:
		b.WriteString("<" + c.Tag)
		if c.ID != "" {
			b.WriteString(` id="` + html.EscapeString(c.ID) + `"`)
		}
		names := make([]string, 0, len(c.Attrs))
		for name := range c.Attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(" " + name + `="` + html.EscapeString(c.Attrs[name]) + `"`)
		}
		b.WriteString(">")
		for _, child := range c.Children {
			writeHTML(b, child)
		}
		b.WriteString("</" + c.Tag + ">")
	}
}

func indexOf(p *Element, n Node) int {
	for i, c := range p.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func parentOf(n Node) *Element {
	switch c := n.(type) {
	case *Element:
		return c.Parent
	case *Text:
		return c.Parent
	}
	return nil
}

func setParent(n Node, p *Element) {
	switch c := n.(type) {
	case *Element:
		c.Parent = p
	case *Text:
		c.Parent = p
	}
}

func detach(n Node) {
	p := parentOf(n)
	if p == nil {
		return
	}
	if i := indexOf(p, n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	setParent(n, nil)
}
