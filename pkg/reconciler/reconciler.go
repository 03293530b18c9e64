// Package reconciler updates a host tree to match the values a render
// function returns, reusing host nodes wherever the previous render left
// one of the right shape.
package reconciler

import (
	"container/list"
	"fmt"
	"strings"

	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

// Rendered is what the reconciler remembers of a materialized value.
type Rendered interface {
	rendered() // sealed marker
}

// TextNode is a rendered string, number or boolean.
type TextNode struct {
	Node dom.Node
	Text string
}

// ElementNode is a rendered markup element.
type ElementNode struct {
	Node      dom.Node
	Tag       string
	Attrs     map[string]string
	Children  Rendered
	Container *Parent

	listeners []listener
	input     *dom.Listener
	bound     evaluator.Reference
}

// ListNode is a rendered list. Items may be nil for values that render
// nothing.
type ListNode struct {
	Items []Rendered
}

func (*TextNode) rendered()    {}
func (*ElementNode) rendered() {}
func (*ListNode) rendered()    {}

type listener struct {
	event string
	l     *dom.Listener
}

// Parent tracks the order of the host children the reconciler placed
// under a node, so that placing them again only moves what changed.
type Parent struct {
	Node  dom.Node
	order *list.List
	elems map[dom.Node]*list.Element
}

// NewParent wraps a host node the reconciler owns the children of.
func NewParent(n dom.Node) *Parent {
	return &Parent{Node: n, order: list.New(), elems: make(map[dom.Node]*list.Element)}
}

// Reconciler applies renders to a document.
type Reconciler struct {
	doc      dom.Document
	in       *evaluator.Interpreter
	policy   *capabilities.Policy
	dispatch func(evaluator.Task)
}

// New creates a reconciler. Event handlers and reference-bound inputs
// hand their work to dispatch, which must run it as a top-level mut task.
// A nil policy allows only the value attribute.
func New(doc dom.Document, in *evaluator.Interpreter, policy *capabilities.Policy, dispatch func(evaluator.Task)) *Reconciler {
	if policy == nil {
		policy = capabilities.Default()
	}
	return &Reconciler{doc: doc, in: in, policy: policy, dispatch: dispatch}
}

// Update reconciles v against prev under parent and returns the new
// rendered tree. Mappings tell which items of a list moved since prev
// was rendered; lists without a mapping are matched by index.
func (r *Reconciler) Update(parent *Parent, prev Rendered, v evaluator.Value, mappings *evaluator.ListMappings) (Rendered, error) {
	next, err := r.update(parent, prev, v, mappings)
	if err != nil {
		return nil, err
	}
	r.place(parent, hostNodes(next, nil))
	return next, nil
}

// Unmount removes every host node of r from parent.
func (r *Reconciler) Unmount(parent *Parent, rendered Rendered) {
	for _, n := range hostNodes(rendered, nil) {
		r.remove(parent, n)
	}
}

func (r *Reconciler) update(parent *Parent, prev Rendered, v evaluator.Value, mappings *evaluator.ListMappings) (Rendered, error) {
	switch val := v.(type) {
	case nil:
		r.Unmount(parent, prev)
		return nil, nil
	case evaluator.Str, evaluator.Num, evaluator.Bool:
		return r.updateText(parent, prev, evaluator.Display(val)), nil
	case *evaluator.List:
		return r.updateList(parent, prev, val, mappings)
	case *evaluator.Object:
		tag, attrs, children, ok := r.in.Element(val)
		if !ok {
			return nil, renderError(diagnostics.EType, "cannot render %s, expected an element", evaluator.TypeName(v))
		}
		return r.updateElement(parent, prev, tag, attrs, children, mappings)
	}
	return nil, renderError(diagnostics.EType, "cannot render %s", evaluator.TypeName(v))
}

func (r *Reconciler) updateText(parent *Parent, prev Rendered, text string) Rendered {
	if t, ok := prev.(*TextNode); ok {
		if t.Text != text {
			r.doc.SetText(t.Node, text)
			t.Text = text
		}
		return t
	}
	r.Unmount(parent, prev)
	return &TextNode{Node: r.doc.CreateTextNode(text), Text: text}
}

func (r *Reconciler) updateList(parent *Parent, prev Rendered, l *evaluator.List, mappings *evaluator.ListMappings) (Rendered, error) {
	var old []Rendered
	if pl, ok := prev.(*ListNode); ok {
		old = pl.Items
	} else {
		r.Unmount(parent, prev)
	}
	ranges, recorded := mappings.Get(l)
	used := make([]bool, len(old))
	next := &ListNode{Items: make([]Rendered, len(l.Items))}
	for i, item := range l.Items {
		var p Rendered
		if orig, ok := evaluator.Origin(ranges, recorded, i); ok && orig < len(old) && !used[orig] {
			used[orig] = true
			p = old[orig]
		}
		rendered, err := r.update(parent, p, item, mappings)
		if err != nil {
			return nil, err
		}
		next.Items[i] = rendered
	}
	for i, p := range old {
		if !used[i] {
			r.Unmount(parent, p)
		}
	}
	return next, nil
}

func (r *Reconciler) updateElement(parent *Parent, prev Rendered, tag string, attrs *evaluator.Object, children *evaluator.List, mappings *evaluator.ListMappings) (Rendered, error) {
	el, ok := prev.(*ElementNode)
	if !ok || el.Tag != tag {
		r.Unmount(parent, prev)
		n := r.doc.CreateElement(tag)
		el = &ElementNode{Node: n, Tag: tag, Attrs: make(map[string]string), Container: NewParent(n)}
	}
	if err := r.applyAttrs(el, attrs); err != nil {
		return nil, err
	}
	rendered, err := r.update(el.Container, el.Children, children, mappings)
	if err != nil {
		return nil, err
	}
	el.Children = rendered
	r.place(el.Container, hostNodes(rendered, nil))
	return el, nil
}

func (r *Reconciler) applyAttrs(el *ElementNode, attrs *evaluator.Object) error {
	for _, l := range el.listeners {
		r.doc.RemoveEventListener(el.Node, l.event, l.l)
	}
	el.listeners = el.listeners[:0]

	bound := false
	for _, f := range attrs.Fields {
		if isHandler(f.Name) {
			if err := r.addHandler(el, f.Name, f.Value); err != nil {
				return err
			}
			continue
		}
		if !r.policy.IsAllowed(f.Name) {
			return renderError(diagnostics.EAttr, "attribute `%s` is not allowed on <%s>", f.Name, el.Tag)
		}
		v := f.Value
		if rv, ok := v.(*evaluator.RefVal); ok {
			if f.Name != capabilities.ValueAttribute {
				return renderError(diagnostics.EType, "attribute `%s` cannot be bound to a reference", f.Name)
			}
			cur, err := r.in.ReadRef(rv.Ref)
			if err != nil {
				return err
			}
			r.bindInput(el, rv.Ref)
			bound = true
			v = cur
		}
		text := evaluator.Display(v)
		if old, ok := el.Attrs[f.Name]; !ok || old != text {
			r.doc.SetAttribute(el.Node, f.Name, text)
			el.Attrs[f.Name] = text
		}
	}
	if !bound && el.input != nil {
		r.doc.RemoveEventListener(el.Node, "input", el.input)
		el.input = nil
		el.bound = nil
	}
	return nil
}

func isHandler(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on")
}

func (r *Reconciler) addHandler(el *ElementNode, name string, fn evaluator.Value) error {
	switch fn.(type) {
	case *evaluator.Closure, *evaluator.Builtin:
	default:
		return renderError(diagnostics.EType, "handler `%s` must be a function, got %s", name, evaluator.TypeName(fn))
	}
	event := strings.ToLower(name[2:])
	l := &dom.Listener{Handle: func() { r.dispatch(r.in.CallTask(fn)) }}
	r.doc.AddEventListener(el.Node, event, l)
	el.listeners = append(el.listeners, listener{event: event, l: l})
	return nil
}

// bindInput makes input events write the node's value back through ref.
// An element has at most one such listener; rebinding only swaps the
// reference it writes to.
func (r *Reconciler) bindInput(el *ElementNode, ref evaluator.Reference) {
	el.bound = ref
	if el.input != nil {
		return
	}
	el.input = &dom.Listener{Handle: func() {
		if el.bound == nil {
			return
		}
		r.dispatch(r.in.WriteTask(el.bound, evaluator.Str(r.doc.ReadValue(el.Node))))
	}}
	r.doc.AddEventListener(el.Node, "input", el.input)
}

// place makes nodes the children of parent, in order, touching only the
// nodes that are not already where they belong.
func (r *Reconciler) place(parent *Parent, nodes []dom.Node) {
	var next dom.Node
	var nextElem *list.Element
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		e, ok := parent.elems[n]
		if !ok || e.Next() != nextElem {
			r.doc.InsertBefore(parent.Node, n, next)
			if ok {
				parent.order.Remove(e)
			}
			if nextElem == nil {
				e = parent.order.PushBack(n)
			} else {
				e = parent.order.InsertBefore(n, nextElem)
			}
			parent.elems[n] = e
		}
		next, nextElem = n, e
	}
}

func (r *Reconciler) remove(parent *Parent, n dom.Node) {
	e, ok := parent.elems[n]
	if !ok {
		return
	}
	r.doc.RemoveChild(parent.Node, n)
	parent.order.Remove(e)
	delete(parent.elems, n)
}

// hostNodes appends the top-level host nodes of a rendered tree.
func hostNodes(rendered Rendered, out []dom.Node) []dom.Node {
	switch n := rendered.(type) {
	case *TextNode:
		out = append(out, n.Node)
	case *ElementNode:
		out = append(out, n.Node)
	case *ListNode:
		for _, item := range n.Items {
			out = hostNodes(item, out)
		}
	}
	return out
}

func renderError(code, format string, args ...any) error {
	return &evaluator.RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}
