// Package stdlib provides the iko `std` module.
package stdlib

import (
	"sort"
	"strings"

	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

// Fn represents a standard library function. Dotted names place the
// function in a nested struct, so "List.push" becomes `std.List.push`.
type Fn struct {
	Name    string
	Mut     bool
	Execute evaluator.BuiltinFunc
}

// Registry holds registered stdlib functions.
type Registry struct {
	fns     map[string]*Fn
	structs []string
}

// NewRegistry creates a new empty stdlib registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a stdlib function to the registry.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// RegisterStruct declares an empty struct member, such as a markup tag.
func (r *Registry) RegisterStruct(name string) {
	r.structs = append(r.structs, name)
}

// Get retrieves a stdlib function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered stdlib functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Module builds the `std` struct.
func (r *Registry) Module() *evaluator.Struct {
	std := evaluator.NewStruct("std")
	for _, name := range r.structs {
		namespace(std, strings.Split(name, "."))
	}

	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := r.fns[name]
		parts := strings.Split(name, ".")
		parent := namespace(std, parts[:len(parts)-1])
		short := parts[len(parts)-1]
		parent.Set(short, evaluator.NewBuiltin(short, fn.Mut, fn.Execute))
	}
	return std
}

// namespace walks path from s, creating nested structs as needed.
func namespace(s *evaluator.Struct, path []string) *evaluator.Struct {
	for _, seg := range path {
		child, ok := s.Members[seg].(*evaluator.Struct)
		if !ok {
			child = evaluator.NewStruct(seg)
			s.Set(seg, child)
		}
		s = child
	}
	return s
}

// New returns the default `std` module.
func New() *evaluator.Struct {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Module()
}
