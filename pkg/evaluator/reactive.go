package evaluator

// MapList applies fn to every item of list. A closure taking two
// parameters also receives the index.
//
// In a reactive context every item runs in its own slot context, kept in
// a list-kind context on the call site's box. Items that survived the
// pass's mutations keep the context they had before, new items get an
// empty one. Without a recorded mapping the list is assumed unchanged.
// The output list inherits the input's mapping so the reconciler can
// realign what it rendered.
func (c *Call) MapList(list *List, fn Value) (*List, error) {
	withIndex := false
	if cl, ok := fn.(*Closure); ok && len(cl.Def.Params) >= 2 {
		withIndex = true
	}
	ranges, recorded := c.Ctx.Mappings.Get(list)

	var boxes []*SlotContextBox
	if c.Ctx.Kind == Reactive && c.Ctx.Box != nil {
		prev := c.Ctx.Box.items()
		used := make([]bool, len(prev))
		boxes = make([]*SlotContextBox, len(list.Items))
		for i := range boxes {
			orig, ok := Origin(ranges, recorded, i)
			if ok && orig < len(prev) && !used[orig] {
				used[orig] = true
				boxes[i] = prev[orig]
				continue
			}
			boxes[i] = &SlotContextBox{}
		}
		c.Ctx.Box.Ctx = &SlotContext{List: true, Items: boxes}
	}

	out := make([]Value, len(list.Items))
	for i, item := range list.Items {
		args := []Value{item}
		if withIndex {
			args = append(args, Num(i))
		}
		cx := c.Ctx
		if boxes != nil {
			cx.Box = boxes[i]
		}
		v, err := c.In.invoke(fn, args, cx, c.Span)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	result := NewList(out...)
	if recorded {
		c.Ctx.Mappings.Set(result, append([]ListMapping(nil), ranges...))
	}
	return result, nil
}
