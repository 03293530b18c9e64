package stdlib

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

func asDict(c *evaluator.Call, v evaluator.Value) (*evaluator.Dict, error) {
	d, ok := v.(*evaluator.Dict)
	if !ok {
		return nil, c.Errorf(diagnostics.EType, "`%s` expects a dict, got %s", c.Name, evaluator.TypeName(v))
	}
	return d, nil
}

// size(dict) → number
func stdlibDictSize(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	d, err := asDict(c, args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Num(d.Len()), nil
}

// has(dict, key) → bool
func stdlibDictHas(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	d, err := asDict(c, args[0])
	if err != nil {
		return nil, err
	}
	_, ok := c.In.DictGet(d, args[1])
	return evaluator.Bool(ok), nil
}

// keys(dict) → list of keys in insertion order
func stdlibDictKeys(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	d, err := asDict(c, args[0])
	if err != nil {
		return nil, err
	}
	keys := make([]evaluator.Value, len(d.Entries))
	for i, e := range d.Entries {
		keys[i] = e.Key
	}
	return evaluator.NewList(keys...), nil
}

// remove(&dict, key) → whether the key was present
func stdlibDictRemove(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	var removed bool
	err := c.Mutate(args[0], func(v evaluator.Value) error {
		d, err := asDict(c, v)
		if err != nil {
			return err
		}
		removed = c.In.DictRemove(d, args[1])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evaluator.Bool(removed), nil
}
