package stdlib

import (
	"math"

	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

// numbers reads a non-empty list of numbers.
func numbers(c *evaluator.Call, args []evaluator.Value) ([]float64, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	l, err := asList(c, args[0])
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, c.Errorf(diagnostics.EArgs, "`%s` needs at least one number", c.Name)
	}
	out := make([]float64, len(l.Items))
	for i, item := range l.Items {
		n, ok := item.(evaluator.Num)
		if !ok {
			return nil, c.Errorf(diagnostics.EType, "`%s` expects numbers, got %s at index %d", c.Name, evaluator.TypeName(item), i)
		}
		out[i] = float64(n)
	}
	return out, nil
}

// max(list) → the largest number
func stdlibMathMax(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	ns, err := numbers(c, args)
	if err != nil {
		return nil, err
	}
	max := math.Inf(-1)
	for _, n := range ns {
		max = math.Max(max, n)
	}
	return evaluator.Num(max), nil
}

// min(list) → the smallest number
func stdlibMathMin(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	ns, err := numbers(c, args)
	if err != nil {
		return nil, err
	}
	min := math.Inf(1)
	for _, n := range ns {
		min = math.Min(min, n)
	}
	return evaluator.Num(min), nil
}

// floor(number) → number
func stdlibMathFloor(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	n, ok := args[0].(evaluator.Num)
	if !ok {
		return nil, c.Errorf(diagnostics.EType, "`floor` expects a number, got %s", evaluator.TypeName(args[0]))
	}
	return evaluator.Num(math.Floor(float64(n))), nil
}
