package stdlib

import (
	"math"
	"time"

	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

// DefaultRoot is the mount root id bindNode uses when none is given.
const DefaultRoot = "root"

// maxRange bounds the lists range may build.
const maxRange = 1000000

// RegisterDefaults adds all stdlib functions.
func RegisterDefaults(r *Registry) {
	r.RegisterStruct("Element")

	// Host
	r.Register(Fn{Name: "print", Mut: true, Execute: stdlibPrint})
	r.Register(Fn{Name: "schedule", Mut: true, Execute: stdlibSchedule})
	r.Register(Fn{Name: "bindTTY", Mut: true, Execute: stdlibBindTTY})
	r.Register(Fn{Name: "bindNode", Mut: true, Execute: stdlibBindNode})

	// Values
	r.Register(Fn{Name: "inspect", Execute: stdlibInspect})
	r.Register(Fn{Name: "structOf", Execute: stdlibStructOf})
	r.Register(Fn{Name: "range", Execute: stdlibRange})
	r.Register(Fn{Name: "typeOf", Execute: stdlibTypeOf})

	// List ops
	r.Register(Fn{Name: "List.push", Mut: true, Execute: stdlibPush})
	r.Register(Fn{Name: "List.splice", Mut: true, Execute: stdlibSplice})
	r.Register(Fn{Name: "List.map", Execute: stdlibMap})
	r.Register(Fn{Name: "List.size", Execute: stdlibSize})
	r.Register(Fn{Name: "List.contains", Execute: stdlibListContains})
	r.Register(Fn{Name: "List.join", Execute: stdlibListJoin})

	// Dict ops
	r.Register(Fn{Name: "Dict.size", Execute: stdlibDictSize})
	r.Register(Fn{Name: "Dict.has", Execute: stdlibDictHas})
	r.Register(Fn{Name: "Dict.keys", Execute: stdlibDictKeys})
	r.Register(Fn{Name: "Dict.remove", Mut: true, Execute: stdlibDictRemove})

	// String ops, also called as methods on strings
	r.Register(Fn{Name: "String.size", Execute: stdlibStrSize})
	r.Register(Fn{Name: "String.split", Execute: stdlibStrSplit})
	r.Register(Fn{Name: "String.startsWith", Execute: stdlibStrStartsWith})
	r.Register(Fn{Name: "String.endsWith", Execute: stdlibStrEndsWith})
	r.Register(Fn{Name: "String.contains", Execute: stdlibStrContains})
	r.Register(Fn{Name: "String.replace", Execute: stdlibStrReplace})
	r.Register(Fn{Name: "String.upper", Execute: stdlibStrUpper})
	r.Register(Fn{Name: "String.lower", Execute: stdlibStrLower})
	r.Register(Fn{Name: "String.trim", Execute: stdlibStrTrim})

	// Object ops
	r.Register(Fn{Name: "Object.keys", Execute: stdlibObjectKeys})
	r.Register(Fn{Name: "Object.values", Execute: stdlibObjectValues})
	r.Register(Fn{Name: "Object.merge", Execute: stdlibObjectMerge})

	// Math
	r.Register(Fn{Name: "Math.max", Execute: stdlibMathMax})
	r.Register(Fn{Name: "Math.min", Execute: stdlibMathMin})
	r.Register(Fn{Name: "Math.floor", Execute: stdlibMathFloor})
}

// print(value) writes one line to the host's output.
func stdlibPrint(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	host, err := c.Host()
	if err != nil {
		return nil, err
	}
	host.Print(evaluator.Display(args[0]))
	return nil, nil
}

// schedule(delayMs, callback) runs callback once after the delay.
func stdlibSchedule(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	ms, ok := args[0].(evaluator.Num)
	if !ok || ms < 0 || math.IsInf(float64(ms), 0) || math.IsNaN(float64(ms)) {
		return nil, c.Errorf(diagnostics.EType, "`schedule` delay must be a non-negative number, got %s", evaluator.Inspect(args[0]))
	}
	if err := callable(c, args[1]); err != nil {
		return nil, err
	}
	host, err := c.Host()
	if err != nil {
		return nil, err
	}
	host.Schedule(time.Duration(float64(ms)*float64(time.Millisecond)), args[1])
	return nil, nil
}

// bindTTY(render) prints render's result after every mutation.
func stdlibBindTTY(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	if err := renderer(c, args[0]); err != nil {
		return nil, err
	}
	host, err := c.Host()
	if err != nil {
		return nil, err
	}
	host.BindTTY(args[0])
	return nil, nil
}

// bindNode(render, rootId?) reconciles render's result into the host tree.
func stdlibBindNode(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 2); err != nil {
		return nil, err
	}
	if err := renderer(c, args[0]); err != nil {
		return nil, err
	}
	root := DefaultRoot
	if len(args) == 2 {
		s, ok := args[1].(evaluator.Str)
		if !ok {
			return nil, c.Errorf(diagnostics.EType, "`bindNode` root id must be a string, got %s", evaluator.TypeName(args[1]))
		}
		root = string(s)
	}
	host, err := c.Host()
	if err != nil {
		return nil, err
	}
	if err := host.BindNode(args[0], root); err != nil {
		return nil, c.Errorf(diagnostics.EHost, "%v", err)
	}
	return nil, nil
}

// inspect(value) → debug string
func stdlibInspect(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	return evaluator.Str(evaluator.Inspect(args[0])), nil
}

// structOf(value) → the struct tagging value
func stdlibStructOf(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	s, ok := c.In.StructOf(args[0])
	if !ok {
		return nil, c.Errorf(diagnostics.EType, "%s has no struct", evaluator.TypeName(args[0]))
	}
	return s, nil
}

// range(from, to) → [from, from+1, ..., to-1]
func stdlibRange(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	from, err := integer(c, args[0])
	if err != nil {
		return nil, err
	}
	to, err := integer(c, args[1])
	if err != nil {
		return nil, err
	}
	if to <= from {
		return evaluator.NewList(), nil
	}
	if to-from > maxRange {
		return nil, c.Errorf(diagnostics.EArgs, "range too large: %d items", to-from)
	}
	items := make([]evaluator.Value, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, evaluator.Num(i))
	}
	return evaluator.NewList(items...), nil
}

func callable(c *evaluator.Call, fn evaluator.Value) error {
	switch fn.(type) {
	case *evaluator.Closure, *evaluator.Builtin:
		return nil
	}
	return c.Errorf(diagnostics.EType, "`%s` expects a function, got %s", c.Name, evaluator.TypeName(fn))
}

// renderer checks that fn can run in a reactive context.
func renderer(c *evaluator.Call, fn evaluator.Value) error {
	if err := callable(c, fn); err != nil {
		return err
	}
	if evaluator.IsMut(fn) {
		return c.Errorf(diagnostics.EContext, "`%s` needs a function that is not mut", c.Name)
	}
	return nil
}

func integer(c *evaluator.Call, v evaluator.Value) (int, error) {
	n, ok := v.(evaluator.Num)
	if !ok || float64(n) != math.Trunc(float64(n)) || math.Abs(float64(n)) > 1<<53-1 {
		return 0, c.Errorf(diagnostics.EType, "`%s` expects an integer, got %s", c.Name, evaluator.Inspect(v))
	}
	return int(n), nil
}
