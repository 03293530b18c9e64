package stdlib

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

func asObject(c *evaluator.Call, v evaluator.Value) (*evaluator.Object, error) {
	o, ok := v.(*evaluator.Object)
	if !ok {
		return nil, c.Errorf(diagnostics.EType, "`%s` expects an object, got %s", c.Name, evaluator.TypeName(v))
	}
	return o, nil
}

// keys(object) → field names in order
func stdlibObjectKeys(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	o, err := asObject(c, args[0])
	if err != nil {
		return nil, err
	}
	keys := make([]evaluator.Value, len(o.Fields))
	for i, f := range o.Fields {
		keys[i] = evaluator.Str(f.Name)
	}
	return evaluator.NewList(keys...), nil
}

// values(object) → field values in order
func stdlibObjectValues(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	o, err := asObject(c, args[0])
	if err != nil {
		return nil, err
	}
	values := make([]evaluator.Value, len(o.Fields))
	for i, f := range o.Fields {
		values[i] = f.Value
	}
	return evaluator.NewList(values...), nil
}

// merge(a, b) → a new object with a's tag, a's fields then b's; b wins on
// conflicts
func stdlibObjectMerge(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	a, err := asObject(c, args[0])
	if err != nil {
		return nil, err
	}
	b, err := asObject(c, args[1])
	if err != nil {
		return nil, err
	}
	fields := append([]evaluator.Field(nil), a.Fields...)
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	for _, f := range b.Fields {
		if i, ok := index[f.Name]; ok {
			fields[i].Value = f.Value
			continue
		}
		index[f.Name] = len(fields)
		fields = append(fields, f)
	}
	return evaluator.NewObject(a.Tag, fields...), nil
}
