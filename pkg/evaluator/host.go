//go:generate mockgen -source=host.go -destination=../../internal/mock/pkg/evaluator/host.go -package=mock_evaluator
package evaluator

import (
	"time"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
)

// Host is the environment a running program talks to. The runtime
// implements it with an event loop.
type Host interface {
	// Print writes one line of output.
	Print(line string)
	// Schedule runs fn as a top-level mut invocation after delay.
	Schedule(delay time.Duration, fn Value)
	// BindTTY registers a render function whose output is printed after
	// every top-level mut invocation.
	BindTTY(render Value)
	// BindNode registers a render function whose output is reconciled into
	// the host tree under the root with the given id.
	BindNode(render Value, root string) error
}

// Call is what a builtin sees of its invocation.
type Call struct {
	In   *Interpreter
	Ctx  Context
	Span ast.Span
	Name string
}

// Errorf builds a runtime error located at the call site.
func (c *Call) Errorf(code, format string, args ...any) error {
	return c.In.errorf(code, c.Span, format, args...)
}

// Host returns the interpreter's host, failing when none is attached.
func (c *Call) Host() (Host, error) {
	if c.In.host == nil {
		return nil, c.Errorf(diagnostics.EHost, "`%s` needs a host", c.Name)
	}
	return c.In.host, nil
}

// Mappings returns the list mappings of the current pass. Nil in a pure
// context.
func (c *Call) Mappings() *ListMappings {
	return c.Ctx.Mappings
}

// Invoke calls fn from the builtin, in the builtin's context.
func (c *Call) Invoke(fn Value, args ...Value) (Value, error) {
	return c.In.invoke(fn, args, c.Ctx, c.Span)
}

// Mutate makes the value behind a reference argument unique and passes it
// to f for in-place mutation.
func (c *Call) Mutate(target Value, f func(Value) error) error {
	rv, ok := target.(*RefVal)
	if !ok {
		return c.Errorf(diagnostics.ERef, "`%s` expects a reference, got %s", c.Name, TypeName(target))
	}
	return c.In.mutateRef(rv.Ref, c.Ctx, c.Span, f)
}

// Arity checks the argument count.
func (c *Call) Arity(args []Value, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return c.Errorf(diagnostics.EArgs, "`%s` takes %d arguments, got %d", c.Name, min, len(args))
		}
		return c.Errorf(diagnostics.EArgs, "`%s` takes %d to %d arguments, got %d", c.Name, min, max, len(args))
	}
	return nil
}

// Task is a unit of top-level work, such as a timer callback or a host
// event, run to completion by the host's loop.
type Task func(cx Context) error

// CallTask returns a task invoking fn with args.
func (in *Interpreter) CallTask(fn Value, args ...Value) Task {
	return func(cx Context) error {
		_, err := in.Invoke(fn, args, cx)
		return err
	}
}

// WriteTask returns a task storing v through ref. Hosts use it to write
// input values back into the program.
func (in *Interpreter) WriteTask(ref Reference, v Value) Task {
	return func(cx Context) error {
		return in.SetRef(ref, v, cx)
	}
}

// --- dict helpers for builtins ---

// NewDict creates an empty dict.
func (in *Interpreter) NewDict() *Dict {
	return newDict()
}

// DictGet looks up key.
func (in *Interpreter) DictGet(d *Dict, key Value) (Value, bool) {
	i, ok := d.lookup(in.hashKey(key))
	if !ok {
		return nil, false
	}
	return d.Entries[i].Value, true
}

// DictPut stores key and value, capturing both.
func (in *Interpreter) DictPut(d *Dict, key, v Value) {
	hash := in.hashKey(key)
	if i, ok := d.lookup(hash); ok {
		decRef(d.Entries[i].Value)
	}
	d.put(hash, key, v)
}

// DictRemove deletes key, reporting whether it was present.
func (in *Interpreter) DictRemove(d *Dict, key Value) bool {
	return d.remove(in.hashKey(key))
}

// StructOf returns the struct tag of a value: the object's tag, or the
// builtin List, Dict and String structs.
func (in *Interpreter) StructOf(v Value) (Value, bool) {
	switch c := v.(type) {
	case *Object:
		if c.Tag == nil {
			return nil, false
		}
		return c.Tag, true
	case *List:
		return in.list, true
	case *Dict:
		return in.dict, true
	case Str:
		return in.str, true
	}
	return nil, false
}
