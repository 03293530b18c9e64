//go:generate mockgen -source=dom.go -destination=../../internal/mock/pkg/dom/dom.go -package=mock_dom

// Package dom defines the host UI tree the reconciler renders into, and an
// in-memory implementation of it.
package dom

// Node is an opaque handle to a host node.
type Node interface{}

// Listener is an event handler. Listeners are compared by identity, so
// the same *Listener must be passed to remove one.
type Listener struct {
	Handle func()
}

// Document is the host tree.
type Document interface {
	CreateElement(tag string) Node
	CreateTextNode(text string) Node
	SetText(n Node, text string)
	SetAttribute(n Node, name, value string)
	AddEventListener(n Node, event string, l *Listener)
	RemoveEventListener(n Node, event string, l *Listener)
	// InsertBefore moves or inserts n under parent before ref, or at the
	// end when ref is nil.
	InsertBefore(parent, n, ref Node)
	RemoveChild(parent, n Node)
	// ReadValue returns the current value of an input-like node.
	ReadValue(n Node) string
	// Root finds a mount root by id.
	Root(id string) (Node, bool)
	ChildCount(n Node) int
	RemoveChildren(n Node)
}
