package evaluator

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
)

// Kind is the execution mode of an evaluation.
type Kind int

const (
	// Mut allows slot writes and calls to mut functions.
	Mut Kind = iota
	// Pure allows local let mutation only.
	Pure
	// Reactive is Pure plus per-call-site slot persistence.
	Reactive
)

func (k Kind) String() string {
	switch k {
	case Mut:
		return "mut"
	case Pure:
		return "pure"
	case Reactive:
		return "reactive"
	}
	return "unknown"
}

// Context is threaded through every evaluation call.
type Context struct {
	Kind Kind
	// Box holds the current call site's slot context. Reactive only.
	Box *SlotContextBox
	// Mappings records list mutations of the current pass. Nil in Pure.
	Mappings *ListMappings
}

// MutContext returns a top-level mut context with fresh list mappings.
func MutContext() Context {
	return Context{Kind: Mut, Mappings: NewListMappings()}
}

// ReactiveContext returns a reactive context rooted at box.
func ReactiveContext(box *SlotContextBox, mappings *ListMappings) Context {
	if mappings == nil {
		mappings = NewListMappings()
	}
	return Context{Kind: Reactive, Box: box, Mappings: mappings}
}

// SlotContext is persistent storage keyed by call-site identity. A
// function context holds slot cells and nested call-site contexts; a list
// context holds one sub-context per element of a mapped list.
type SlotContext struct {
	List  bool
	Slots map[ast.Node]*SlotCell
	Subs  map[ast.Node]*SlotContextBox
	Items []*SlotContextBox
}

// SlotContextBox is a mutable cell holding a SlotContext.
type SlotContextBox struct {
	Ctx *SlotContext
}

// function returns the box's function context, creating it on first use.
func (b *SlotContextBox) function() *SlotContext {
	if b.Ctx == nil || b.Ctx.List {
		b.Ctx = &SlotContext{
			Slots: make(map[ast.Node]*SlotCell),
			Subs:  make(map[ast.Node]*SlotContextBox),
		}
	}
	return b.Ctx
}

// sub returns the nested box for a call site.
func (b *SlotContextBox) sub(site ast.Node) *SlotContextBox {
	fn := b.function()
	box, ok := fn.Subs[site]
	if !ok {
		box = &SlotContextBox{}
		fn.Subs[site] = box
	}
	return box
}

func (b *SlotContextBox) items() []*SlotContextBox {
	if b.Ctx == nil || !b.Ctx.List {
		return nil
	}
	return b.Ctx.Items
}

// ListMapping is a range of current indices [Start, End) whose elements
// were at [Orig, Orig+End-Start) before the pass's mutations.
type ListMapping struct {
	Start int
	End   int
	Orig  int
}

// ListMappings records, per list allocation, how its current indices map
// onto its indices at the start of a pass.
type ListMappings struct {
	lists map[*List][]ListMapping
}

// NewListMappings creates an empty table.
func NewListMappings() *ListMappings {
	return &ListMappings{lists: make(map[*List][]ListMapping)}
}

// Get returns the recorded ranges for l.
func (m *ListMappings) Get(l *List) ([]ListMapping, bool) {
	if m == nil {
		return nil, false
	}
	r, ok := m.lists[l]
	return r, ok
}

// Set records ranges for l.
func (m *ListMappings) Set(l *List, ranges []ListMapping) {
	if m == nil {
		return
	}
	m.lists[l] = ranges
}

// Touch records the identity mapping for l unless one exists. It must be
// called before the first mutation of l in a pass.
func (m *ListMappings) Touch(l *List) {
	if m == nil {
		return
	}
	if _, ok := m.lists[l]; ok {
		return
	}
	if len(l.Items) == 0 {
		m.lists[l] = []ListMapping{}
		return
	}
	m.lists[l] = []ListMapping{{Start: 0, End: len(l.Items), Orig: 0}}
}

// Splice records the removal of count elements at index and the
// insertion of inserted new elements in their place.
func (m *ListMappings) Splice(l *List, index, count, inserted int) {
	if m == nil {
		return
	}
	m.Touch(l)
	ranges := SplitListMappings(m.lists[l], index, count)
	for i := range ranges {
		if ranges[i].Start >= index {
			ranges[i].Start += inserted
			ranges[i].End += inserted
		}
	}
	m.lists[l] = ranges
}

// SplitListMappings removes the current indices [cut, cut+count) from
// ranges. Ranges after the cut shift down by count; a range straddling the
// cut splits into the part before it and the part after it.
func SplitListMappings(ranges []ListMapping, cut, count int) []ListMapping {
	out := make([]ListMapping, 0, len(ranges)+1)
	add := func(r ListMapping) {
		if r.End > r.Start {
			out = append(out, r)
		}
	}
	for _, r := range ranges {
		switch {
		case r.End <= cut:
			add(r)
		case r.Start >= cut+count:
			add(ListMapping{Start: r.Start - count, End: r.End - count, Orig: r.Orig})
		default:
			add(ListMapping{Start: r.Start, End: cut, Orig: r.Orig})
			if r.End > cut+count {
				add(ListMapping{Start: cut, End: r.End - count, Orig: r.Orig + (cut + count - r.Start)})
			}
		}
	}
	return out
}

// Origin returns the pre-pass index of the element now at index, using
// identity when no ranges are recorded.
func Origin(ranges []ListMapping, recorded bool, index int) (int, bool) {
	if !recorded {
		return index, true
	}
	for _, r := range ranges {
		if index >= r.Start && index < r.End {
			return r.Orig + index - r.Start, true
		}
	}
	return 0, false
}
