package evaluator

import (
	"sort"
	"strconv"
	"strings"
)

// FormatNumber renders a number without a trailing fraction when it is
// integral.
func FormatNumber(n Num) string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Display renders a value the way print and string interpolation show it:
// strings as-is, everything else as Inspect does.
func Display(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return Inspect(v)
}

// Inspect renders a value as debug text.
func Inspect(v Value) string {
	var b strings.Builder
	inspect(&b, v)
	return b.String()
}

func inspect(b *strings.Builder, v Value) {
	switch c := v.(type) {
	case nil:
		b.WriteString("nothing")
	case Str:
		b.WriteString(strconv.Quote(string(c)))
	case Num:
		b.WriteString(FormatNumber(c))
	case Bool:
		b.WriteString(strconv.FormatBool(bool(c)))
	case *RefVal:
		b.WriteString("&" + rootName(c.Ref))
	case *Builtin:
		b.WriteString("<builtin " + c.Name + ">")
	case *Closure:
		if c.Def.Mut {
			b.WriteString("<mut function>")
		} else {
			b.WriteString("<function>")
		}
	case *Struct:
		if c.Name != "" {
			b.WriteString("struct " + c.Name)
		} else {
			b.WriteString("struct")
		}
	case *Object:
		if c.Tag != nil && c.Tag.Name != "" {
			b.WriteString(c.Tag.Name + " ")
		}
		if len(c.Fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, f := range c.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name + ": ")
			inspect(b, f.Value)
		}
		b.WriteString(" }")
	case *List:
		b.WriteString("[")
		for i, item := range c.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, item)
		}
		b.WriteString("]")
	case *Dict:
		if len(c.Entries) == 0 {
			b.WriteString("dict []")
			return
		}
		b.WriteString("dict [ ")
		for i, e := range c.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, e.Key)
			b.WriteString(": ")
			inspect(b, e.Value)
		}
		b.WriteString(" ]")
	}
}

// Equal reports deep structural equality. Objects are equal when they
// share a tag and have equal field sets; functions, structs and
// references compare by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Str, Num, Bool:
		return a == b
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Tag != y.Tag || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			other, ok := y.Get(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || len(x.Entries) != len(y.Entries) {
			return false
		}
		for _, e := range x.Entries {
			j, ok := y.lookup(e.hash)
			if !ok || !Equal(e.Value, y.Entries[j].Value) {
				return false
			}
		}
		return true
	}
	return a == b
}

// hashKey derives the dict key of a value. Structurally equal values get
// the same key; functions, structs and references get an opaque key from
// the interpreter's sequence.
func (in *Interpreter) hashKey(v Value) string {
	var b strings.Builder
	in.writeKey(&b, v)
	return b.String()
}

func (in *Interpreter) opaque(key *uint64) uint64 {
	if *key == 0 {
		in.nextKey++
		*key = in.nextKey
	}
	return *key
}

func (in *Interpreter) writeKey(b *strings.Builder, v Value) {
	switch c := v.(type) {
	case nil:
		b.WriteString("_")
	case Str:
		b.WriteString("s" + strconv.Quote(string(c)))
	case Num:
		if c == 0 {
			c = 0 // -0 and 0 are the same key
		}
		b.WriteString("n" + FormatNumber(c))
	case Bool:
		b.WriteString("b" + strconv.FormatBool(bool(c)))
	case *RefVal:
		b.WriteString("#r" + strconv.FormatUint(in.opaque(&c.key), 10))
	case *Builtin:
		b.WriteString("#f" + strconv.FormatUint(in.opaque(&c.key), 10))
	case *Closure:
		b.WriteString("#f" + strconv.FormatUint(in.opaque(&c.key), 10))
	case *Struct:
		b.WriteString("#t" + strconv.FormatUint(in.opaque(&c.key), 10))
	case *Object:
		b.WriteString("o")
		if c.Tag != nil {
			in.writeKey(b, c.Tag)
		}
		fields := append([]Field(nil), c.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		b.WriteString("{")
		for _, f := range fields {
			b.WriteString(strconv.Quote(f.Name) + ":")
			in.writeKey(b, f.Value)
			b.WriteString(",")
		}
		b.WriteString("}")
	case *List:
		b.WriteString("l[")
		for _, item := range c.Items {
			in.writeKey(b, item)
			b.WriteString(",")
		}
		b.WriteString("]")
	case *Dict:
		hashes := make([]string, len(c.Entries))
		for i, e := range c.Entries {
			var eb strings.Builder
			eb.WriteString(e.hash + ":")
			in.writeKey(&eb, e.Value)
			hashes[i] = eb.String()
		}
		sort.Strings(hashes)
		b.WriteString("d[" + strings.Join(hashes, ",") + "]")
	}
}
