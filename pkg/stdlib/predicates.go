package stdlib

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

// contains(list, value) → whether an item equals value deeply
func stdlibListContains(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	l, err := asList(c, args[0])
	if err != nil {
		return nil, err
	}
	for _, item := range l.Items {
		if evaluator.Equal(item, args[1]) {
			return evaluator.Bool(true), nil
		}
	}
	return evaluator.Bool(false), nil
}

// typeOf(value) → "string", "number", "list", a struct name, ...
func stdlibTypeOf(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	return evaluator.Str(evaluator.TypeName(args[0])), nil
}
