package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

type session struct {
	t     *testing.T
	in    *evaluator.Interpreter
	scope *evaluator.Scope
}

func newSession(t *testing.T) *session {
	return &session{
		t:     t,
		in:    evaluator.New(nil, stdlib.New(), nil),
		scope: evaluator.NewScope(),
	}
}

func (s *session) exec(src string) (evaluator.Value, error) {
	s.t.Helper()
	stmt, err := parser.ParseStatement(src, "std.iko")
	require.NoError(s.t, err, src)
	return s.in.ExecStatement(stmt, s.scope, nil)
}

func (s *session) inspect(src string) string {
	s.t.Helper()
	v, err := s.exec(src)
	require.NoError(s.t, err, src)
	return evaluator.Inspect(v)
}

func TestModule(t *testing.T) {
	t.Parallel()

	std := stdlib.New()
	for _, ns := range []string{"Element", "List", "Dict", "String", "Object", "Math"} {
		v, ok := std.Get(ns)
		require.True(t, ok, ns)
		assert.IsType(t, &evaluator.Struct{}, v, ns)
	}

	list, _ := std.Get("List")
	push, ok := list.(*evaluator.Struct).Get("push")
	require.True(t, ok)
	assert.True(t, evaluator.IsMut(push))
}

func TestFunctions(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		src, want string
	}{
		{`std.range(0, 3)`, `[0, 1, 2]`},
		{`std.range(3, 0)`, `[]`},
		{`std.typeOf("x")`, `"string"`},
		{`std.typeOf([])`, `"list"`},
		{`std.inspect(dict ["a": [1]])`, `"dict [ \"a\": [1] ]"`},

		{`[1, 2, 3].size()`, `3`},
		{`[1, [2]].contains([2])`, `true`},
		{`[1, 2].contains("1")`, `false`},
		{`["a", 1, true].join(", ")`, `"a, 1, true"`},
		{`[].join("-")`, `""`},

		{`dict ["a": 1, "b": 2].keys()`, `["a", "b"]`},
		{`dict ["a": 1].has("b")`, `false`},

		{`"héllo".size()`, `5`},
		{`"a,b,,c".split(",")`, `["a", "b", "", "c"]`},
		{`"iko lang".startsWith("iko")`, `true`},
		{`"iko lang".endsWith("iko")`, `false`},
		{`"iko lang".contains("o l")`, `true`},
		{`"a-b-c".replace("-", "+")`, `"a+b+c"`},
		{`"Mixed".upper()`, `"MIXED"`},
		{`"Mixed".lower()`, `"mixed"`},
		{`"  padded \n".trim()`, `"padded"`},
		{`std.String.upper("direct")`, `"DIRECT"`},

		{`std.Object.keys({ a: 1, b: 2 })`, `["a", "b"]`},
		{`std.Object.values({ a: 1, b: "x" })`, `[1, "x"]`},
		{`std.Object.merge({ a: 1, b: 2 }, { b: 3, c: 4 })`, `{ a: 1, b: 3, c: 4 }`},

		{`std.Math.max([3, 9, -1])`, `9`},
		{`std.Math.min([3, 9, -1])`, `-1`},
		{`std.Math.floor(2.7)`, `2`},
	} {
		assert.Equal(t, tt.want, newSession(t).inspect(tt.src), tt.src)
	}
}

func TestFunctionErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		src, code string
	}{
		{`std.range(0.5, 2)`, diagnostics.EType},
		{`std.range(0, 2000000)`, diagnostics.EArgs},
		{`std.String.size(1)`, diagnostics.EType},
		{`"a".split()`, diagnostics.EArgs},
		{`"a".missing()`, diagnostics.EField},
		{`[1].join(0)`, diagnostics.EType},
		{`std.Object.keys([1])`, diagnostics.EType},
		{`std.Math.max([])`, diagnostics.EArgs},
		{`std.Math.max([1, "2"])`, diagnostics.EType},
		{`std.Math.floor("1")`, diagnostics.EType},
		{`std.schedule(0, mut () { 1 })`, diagnostics.EHost},
	} {
		_, err := newSession(t).exec(tt.src)
		var rerr *evaluator.RuntimeError
		require.ErrorAs(t, err, &rerr, tt.src)
		assert.Equal(t, tt.code, rerr.Code, "%s: %s", tt.src, rerr.Message)
	}
}

func TestMergeCopiesOnWrite(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	_, err := s.exec(`let a = { items: [1] }`)
	require.NoError(t, err)
	_, err = s.exec(`let b = std.Object.merge(a, { extra: true })`)
	require.NoError(t, err)
	_, err = s.exec(`b.items.push(2)`)
	require.NoError(t, err)

	assert.Equal(t, `{ items: [1] }`, s.inspect("a"))
	assert.Equal(t, `{ items: [1, 2], extra: true }`, s.inspect("b"))
}
