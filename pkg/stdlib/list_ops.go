package stdlib

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

func asList(c *evaluator.Call, v evaluator.Value) (*evaluator.List, error) {
	l, ok := v.(*evaluator.List)
	if !ok {
		return nil, c.Errorf(diagnostics.EType, "`%s` expects a list, got %s", c.Name, evaluator.TypeName(v))
	}
	return l, nil
}

// push(&list, items...) appends in place. Existing elements keep their
// indices, so the recorded mapping only needs to exist.
func stdlibPush(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if len(args) < 2 {
		return nil, c.Errorf(diagnostics.EArgs, "`push` takes a list and at least one item")
	}
	err := c.Mutate(args[0], func(v evaluator.Value) error {
		l, err := asList(c, v)
		if err != nil {
			return err
		}
		c.Mappings().Touch(l)
		l.Append(args[1:]...)
		return nil
	})
	return nil, err
}

// splice(&list, index, count, items...) replaces count elements at index
// and returns the removed ones.
func stdlibSplice(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if len(args) < 3 {
		return nil, c.Errorf(diagnostics.EArgs, "`splice` takes a list, an index and a count")
	}
	index, err := integer(c, args[1])
	if err != nil {
		return nil, err
	}
	count, err := integer(c, args[2])
	if err != nil {
		return nil, err
	}
	var removed []evaluator.Value
	err = c.Mutate(args[0], func(v evaluator.Value) error {
		l, err := asList(c, v)
		if err != nil {
			return err
		}
		if index < 0 || index > len(l.Items) {
			return c.Errorf(diagnostics.EIndex, "splice index %d out of range for list of length %d", index, len(l.Items))
		}
		if count < 0 || index+count > len(l.Items) {
			return c.Errorf(diagnostics.EIndex, "cannot remove %d items at index %d from list of length %d", count, index, len(l.Items))
		}
		c.Mappings().Splice(l, index, count, len(args)-3)
		removed = l.Splice(index, count, args[3:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evaluator.NewList(removed...), nil
}

// map(list, fn) → list
func stdlibMap(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	l, err := asList(c, args[0])
	if err != nil {
		return nil, err
	}
	if err := callable(c, args[1]); err != nil {
		return nil, err
	}
	return c.MapList(l, args[1])
}

// size(list) → number
func stdlibSize(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	l, err := asList(c, args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Num(len(l.Items)), nil
}
