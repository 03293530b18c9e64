// Package evaluator implements the iko tree-walking evaluator.
package evaluator

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
)

// Value is the interface for all runtime values. A Go nil Value means
// "no value", which is what statements such as an `if` without `else`
// produce.
type Value interface {
	value() // sealed marker
}

// Str is a string value.
type Str string

// Num is a numeric value. Integer literals are stored as float64.
type Num float64

// Bool is a boolean value.
type Bool bool

func (Str) value()  {}
func (Num) value()  {}
func (Bool) value() {}

// RefVal is a first-class reference produced by `&`.
type RefVal struct {
	Ref Reference
	key uint64
}

func (*RefVal) value() {}

// BuiltinFunc implements a builtin function.
type BuiltinFunc func(c *Call, args []Value) (Value, error)

// Builtin is a function implemented in Go.
type Builtin struct {
	Name string
	Mut  bool
	Fn   BuiltinFunc
	key  uint64
}

func (*Builtin) value() {}

// NewBuiltin creates a builtin function value.
func NewBuiltin(name string, mut bool, fn BuiltinFunc) *Builtin {
	return &Builtin{Name: name, Mut: mut, Fn: fn}
}

// Closure is a user function with its captured lexical scope.
type Closure struct {
	Def   *ast.FuncLit
	Scope *Scope
	key   uint64
}

func (*Closure) value() {}

// Struct is a record of static members. It doubles as a type tag for
// objects and as a namespace.
type Struct struct {
	Name    string
	Members map[string]Value
	Order   []string
	key     uint64
}

func (*Struct) value() {}

// NewStruct creates a struct from members in declaration order.
func NewStruct(name string, members ...Member) *Struct {
	s := &Struct{Name: name, Members: make(map[string]Value, len(members))}
	for _, m := range members {
		s.Set(m.Name, m.Value)
	}
	return s
}

// Member is a named struct member.
type Member struct {
	Name  string
	Value Value
}

// Set adds or replaces a member.
func (s *Struct) Set(name string, v Value) {
	if _, ok := s.Members[name]; !ok {
		s.Order = append(s.Order, name)
	}
	s.Members[name] = v
}

// Get returns a member.
func (s *Struct) Get(name string) (Value, bool) {
	v, ok := s.Members[name]
	return v, ok
}

// Field is a named object field.
type Field struct {
	Name  string
	Value Value
}

// Object is a refcounted record with an optional struct tag.
type Object struct {
	Tag    *Struct
	Fields []Field
	refs   int
}

func (*Object) value() {}

// NewObject creates an object. Field values are captured.
func NewObject(tag *Struct, fields ...Field) *Object {
	o := &Object{Tag: tag, Fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		o.Set(f.Name, f.Value)
	}
	return o
}

// Get returns a field value.
func (o *Object) Get(name string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set stores a field without adjusting refcounts of the old value; the
// new value is captured.
func (o *Object) Set(name string, v Value) {
	incRef(v)
	o.put(name, v)
}

func (o *Object) put(name string, v Value) {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields[i].Value = v
			return
		}
	}
	o.Fields = append(o.Fields, Field{Name: name, Value: v})
}

// List is a refcounted ordered sequence.
type List struct {
	Items []Value
	refs  int
}

func (*List) value() {}

// NewList creates a list. Items are captured.
func NewList(items ...Value) *List {
	l := &List{Items: make([]Value, len(items))}
	for i, v := range items {
		incRef(v)
		l.Items[i] = v
	}
	return l
}

// Append adds items at the end, capturing them.
func (l *List) Append(items ...Value) {
	for _, v := range items {
		incRef(v)
		l.Items = append(l.Items, v)
	}
}

// Splice removes count items at index and inserts items in their place.
// The removed items are released and returned.
func (l *List) Splice(index, count int, items ...Value) []Value {
	removed := append([]Value(nil), l.Items[index:index+count]...)
	for _, v := range removed {
		decRef(v)
	}
	for _, v := range items {
		incRef(v)
	}
	tail := append([]Value(nil), l.Items[index+count:]...)
	l.Items = append(append(l.Items[:index], items...), tail...)
	return removed
}

// DictEntry is one key/value pair of a dict.
type DictEntry struct {
	Key   Value
	Value Value
	hash  string
}

// Dict is a refcounted insertion-ordered map keyed by value.
type Dict struct {
	Entries []DictEntry
	index   map[string]int
	refs    int
}

func (*Dict) value() {}

func newDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

func (d *Dict) lookup(hash string) (int, bool) {
	i, ok := d.index[hash]
	return i, ok
}

// put stores an entry, capturing key and value. Replacing an entry keeps
// its position.
func (d *Dict) put(hash string, k, v Value) {
	incRef(v)
	if i, ok := d.index[hash]; ok {
		d.Entries[i].Value = v
		return
	}
	incRef(k)
	d.index[hash] = len(d.Entries)
	d.Entries = append(d.Entries, DictEntry{Key: k, Value: v, hash: hash})
}

func (d *Dict) remove(hash string) bool {
	i, ok := d.index[hash]
	if !ok {
		return false
	}
	decRef(d.Entries[i].Key)
	decRef(d.Entries[i].Value)
	d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
	delete(d.index, hash)
	for j := i; j < len(d.Entries); j++ {
		d.index[d.Entries[j].hash] = j
	}
	return true
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.Entries) }

// --- reference counting ---

// Refs returns the number of live holders of a composite value, or -1
// for values that are not refcounted.
func Refs(v Value) int {
	switch c := v.(type) {
	case *Object:
		return c.refs
	case *List:
		return c.refs
	case *Dict:
		return c.refs
	}
	return -1
}

func incRef(v Value) {
	switch c := v.(type) {
	case *Object:
		c.refs++
	case *List:
		c.refs++
	case *Dict:
		c.refs++
	}
}

func decRef(v Value) {
	switch c := v.(type) {
	case *Object:
		if c.refs > 0 {
			c.refs--
		}
	case *List:
		if c.refs > 0 {
			c.refs--
		}
	case *Dict:
		if c.refs > 0 {
			c.refs--
		}
	}
}

// Release drops a temporary value that no holder owns, letting go of
// everything it captured.
func Release(v Value) {
	if Refs(v) != 0 {
		return
	}
	var children []Value
	switch c := v.(type) {
	case *Object:
		for _, f := range c.Fields {
			children = append(children, f.Value)
		}
	case *List:
		children = c.Items
	case *Dict:
		for _, e := range c.Entries {
			children = append(children, e.Key, e.Value)
		}
	}
	for _, child := range children {
		if Refs(child) > 0 {
			decRef(child)
			Release(child)
		}
	}
}

// makeUnique returns v itself when at most one holder shares it, and a
// shallow clone otherwise. The clone starts with one holder and captures
// every child; the original loses one holder.
func makeUnique(v Value) Value {
	switch c := v.(type) {
	case *Object:
		if c.refs <= 1 {
			return c
		}
		c.refs--
		clone := &Object{Tag: c.Tag, Fields: make([]Field, len(c.Fields)), refs: 1}
		for i, f := range c.Fields {
			incRef(f.Value)
			clone.Fields[i] = f
		}
		return clone
	case *List:
		if c.refs <= 1 {
			return c
		}
		c.refs--
		clone := &List{Items: make([]Value, len(c.Items)), refs: 1}
		for i, item := range c.Items {
			incRef(item)
			clone.Items[i] = item
		}
		return clone
	case *Dict:
		if c.refs <= 1 {
			return c
		}
		c.refs--
		clone := &Dict{Entries: make([]DictEntry, len(c.Entries)), index: make(map[string]int, len(c.Entries)), refs: 1}
		for i, e := range c.Entries {
			incRef(e.Key)
			incRef(e.Value)
			clone.Entries[i] = e
			clone.index[e.hash] = i
		}
		return clone
	}
	return v
}

// TypeName describes the kind of a value for error messages.
func TypeName(v Value) string {
	switch c := v.(type) {
	case nil:
		return "nothing"
	case Str:
		return "string"
	case Num:
		return "number"
	case Bool:
		return "boolean"
	case *RefVal:
		return "reference"
	case *Builtin, *Closure:
		return "function"
	case *Struct:
		return "struct"
	case *Object:
		if c.Tag != nil && c.Tag.Name != "" {
			return c.Tag.Name
		}
		return "object"
	case *List:
		return "list"
	case *Dict:
		return "dict"
	}
	return "value"
}

// IsMut reports whether a callable value was declared `mut`.
func IsMut(fn Value) bool {
	switch f := fn.(type) {
	case *Builtin:
		return f.Mut
	case *Closure:
		return f.Def.Mut
	}
	return false
}
