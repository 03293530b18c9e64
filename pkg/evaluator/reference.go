package evaluator

import (
	"fmt"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
)

// Reference describes where a mutable value lives: a let binding, a slot
// cell, or a field, index or key path chained onto another reference.
type Reference interface {
	reference() // sealed marker
}

// LetRef points at a let binding of the current invocation.
type LetRef struct {
	Scope *Scope
	Name  string
}

// SlotRef points at a slot cell.
type SlotRef struct {
	Cell *SlotCell
	Name string
}

// FieldRef points at an object field.
type FieldRef struct {
	Parent Reference
	Name   string
}

// IndexRef points at a list element.
type IndexRef struct {
	Parent Reference
	Index  int
}

// KeyRef points at a dict entry, which may not exist yet.
type KeyRef struct {
	Parent Reference
	Key    Value
	hash   string
}

func (*LetRef) reference()   {}
func (*SlotRef) reference()  {}
func (*FieldRef) reference() {}
func (*IndexRef) reference() {}
func (*KeyRef) reference()   {}

// rootName returns the binding name a reference chain starts from.
func rootName(ref Reference) string {
	switch r := ref.(type) {
	case *LetRef:
		return r.Name
	case *SlotRef:
		return r.Name
	case *FieldRef:
		return rootName(r.Parent)
	case *IndexRef:
		return rootName(r.Parent)
	case *KeyRef:
		return rootName(r.Parent)
	}
	return "?"
}

// readRef returns the current value at ref.
func (in *Interpreter) readRef(ref Reference, span ast.Span) (Value, error) {
	switch r := ref.(type) {
	case *LetRef:
		b, ok := r.Scope.bindings[r.Name]
		if !ok {
			return nil, in.errorf(diagnostics.EUnbound, span, "unbound name `%s`", r.Name)
		}
		return b.value, nil
	case *SlotRef:
		return r.Cell.Value, nil
	case *FieldRef:
		parent, err := in.readRef(r.Parent, span)
		if err != nil {
			return nil, err
		}
		obj, ok := parent.(*Object)
		if !ok {
			return nil, in.errorf(diagnostics.EType, span, "cannot access field `%s` of %s", r.Name, TypeName(parent))
		}
		v, ok := obj.Get(r.Name)
		if !ok {
			return nil, in.errorf(diagnostics.EField, span, "%s has no field `%s`", TypeName(obj), r.Name)
		}
		return v, nil
	case *IndexRef:
		parent, err := in.readRef(r.Parent, span)
		if err != nil {
			return nil, err
		}
		list, ok := parent.(*List)
		if !ok {
			return nil, in.errorf(diagnostics.EType, span, "cannot index %s", TypeName(parent))
		}
		if r.Index < 0 || r.Index >= len(list.Items) {
			return nil, in.errorf(diagnostics.EIndex, span, "index %d out of range for list of length %d", r.Index, len(list.Items))
		}
		return list.Items[r.Index], nil
	case *KeyRef:
		parent, err := in.readRef(r.Parent, span)
		if err != nil {
			return nil, err
		}
		d, ok := parent.(*Dict)
		if !ok {
			return nil, in.errorf(diagnostics.EType, span, "cannot look up a key in %s", TypeName(parent))
		}
		i, ok := d.lookup(r.hash)
		if !ok {
			return nil, in.errorf(diagnostics.EKey, span, "key %s not found", Inspect(r.Key))
		}
		return d.Entries[i].Value, nil
	}
	panic(fmt.Sprintf("evaluator: unknown reference %T", ref))
}

// update walks ref from the outermost binding inwards, making every
// container on the way unique, applies f to the innermost value and
// stores the results back into each parent.
func (in *Interpreter) update(ref Reference, cx Context, span ast.Span, f func(Value) (Value, error)) error {
	switch r := ref.(type) {
	case *LetRef:
		b, ok := r.Scope.bindings[r.Name]
		if !ok {
			return in.errorf(diagnostics.EUnbound, span, "unbound name `%s`", r.Name)
		}
		v, err := f(b.value)
		if err != nil {
			return err
		}
		b.value = v
		return nil
	case *SlotRef:
		if cx.Kind != Mut {
			return in.errorf(diagnostics.EContext, span, "cannot assign to slot `%s` outside a mut context", r.Name)
		}
		v, err := f(r.Cell.Value)
		if err != nil {
			return err
		}
		r.Cell.Value = v
		return nil
	case *FieldRef:
		return in.update(r.Parent, cx, span, func(parent Value) (Value, error) {
			obj, ok := parent.(*Object)
			if !ok {
				return nil, in.errorf(diagnostics.EType, span, "cannot assign field `%s` of %s", r.Name, TypeName(parent))
			}
			obj = makeUnique(obj).(*Object)
			old, _ := obj.Get(r.Name)
			v, err := f(old)
			if err != nil {
				return nil, err
			}
			obj.put(r.Name, v)
			return obj, nil
		})
	case *IndexRef:
		return in.update(r.Parent, cx, span, func(parent Value) (Value, error) {
			list, ok := parent.(*List)
			if !ok {
				return nil, in.errorf(diagnostics.EType, span, "cannot index %s", TypeName(parent))
			}
			if r.Index < 0 || r.Index >= len(list.Items) {
				return nil, in.errorf(diagnostics.EIndex, span, "index %d out of range for list of length %d", r.Index, len(list.Items))
			}
			list = makeUnique(list).(*List)
			cx.Mappings.Touch(list)
			v, err := f(list.Items[r.Index])
			if err != nil {
				return nil, err
			}
			list.Items[r.Index] = v
			return list, nil
		})
	case *KeyRef:
		return in.update(r.Parent, cx, span, func(parent Value) (Value, error) {
			d, ok := parent.(*Dict)
			if !ok {
				return nil, in.errorf(diagnostics.EType, span, "cannot look up a key in %s", TypeName(parent))
			}
			d = makeUnique(d).(*Dict)
			var old Value
			i, exists := d.lookup(r.hash)
			if exists {
				old = d.Entries[i].Value
			}
			v, err := f(old)
			if err != nil {
				return nil, err
			}
			if exists {
				d.Entries[i].Value = v
			} else {
				incRef(r.Key)
				d.index[r.hash] = len(d.Entries)
				d.Entries = append(d.Entries, DictEntry{Key: r.Key, Value: v, hash: r.hash})
			}
			return d, nil
		})
	}
	panic(fmt.Sprintf("evaluator: unknown reference %T", ref))
}

// setRef stores v at ref. The new value gains a holder and the old one
// loses one.
func (in *Interpreter) setRef(ref Reference, v Value, cx Context, span ast.Span) error {
	return in.update(ref, cx, span, func(old Value) (Value, error) {
		incRef(v)
		decRef(old)
		return v, nil
	})
}

// mutateRef makes the value at ref unique and hands it to f for in-place
// mutation.
func (in *Interpreter) mutateRef(ref Reference, cx Context, span ast.Span, f func(Value) error) error {
	return in.update(ref, cx, span, func(old Value) (Value, error) {
		v := makeUnique(old)
		if err := f(v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// SetRef stores v through ref. Hosts use it to write input values back.
func (in *Interpreter) SetRef(ref Reference, v Value, cx Context) error {
	return in.setRef(ref, v, cx, ast.Span{})
}

// ReadRef returns the current value through ref.
func (in *Interpreter) ReadRef(ref Reference) (Value, error) {
	return in.readRef(ref, ast.Span{})
}
