package evaluator_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mock_evaluator "github.com/jeanlauliac/ikolang-sub001/internal/mock/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

// --- helpers ---

type timer struct {
	delay time.Duration
	fn    evaluator.Value
}

// fakeHost records what a program asks of its host.
type fakeHost struct {
	lines  []string
	timers []timer
	tty    []evaluator.Value
	nodes  map[string]evaluator.Value
}

func (h *fakeHost) Print(line string) { h.lines = append(h.lines, line) }

func (h *fakeHost) Schedule(delay time.Duration, fn evaluator.Value) {
	h.timers = append(h.timers, timer{delay, fn})
}

func (h *fakeHost) BindTTY(render evaluator.Value) { h.tty = append(h.tty, render) }

func (h *fakeHost) BindNode(render evaluator.Value, root string) error {
	if h.nodes == nil {
		h.nodes = make(map[string]evaluator.Value)
	}
	if _, ok := h.nodes[root]; ok {
		return errors.New("root already bound")
	}
	h.nodes[root] = render
	return nil
}

// session evaluates statements one at a time in a persistent mut scope,
// the way the REPL does.
type session struct {
	t     *testing.T
	host  *fakeHost
	in    *evaluator.Interpreter
	scope *evaluator.Scope
}

func newSession(t *testing.T) *session {
	t.Helper()
	host := &fakeHost{}
	return &session{
		t:     t,
		host:  host,
		in:    evaluator.New(nil, stdlib.New(), host),
		scope: evaluator.NewScope(),
	}
}

func (s *session) execWith(src string, mappings *evaluator.ListMappings) (evaluator.Value, error) {
	s.t.Helper()
	stmt, err := parser.ParseStatement(src, "test.iko")
	require.NoError(s.t, err, src)
	return s.in.ExecStatement(stmt, s.scope, mappings)
}

func (s *session) exec(src string) (evaluator.Value, error) {
	s.t.Helper()
	return s.execWith(src, nil)
}

func (s *session) must(src string) evaluator.Value {
	s.t.Helper()
	v, err := s.exec(src)
	require.NoError(s.t, err, src)
	return v
}

func (s *session) mustFail(src, code string) *evaluator.RuntimeError {
	s.t.Helper()
	_, err := s.exec(src)
	return requireCode(s.t, err, code)
}

func requireCode(t *testing.T, err error, code string) *evaluator.RuntimeError {
	t.Helper()
	require.Error(t, err)
	var rerr *evaluator.RuntimeError
	require.True(t, errors.As(err, &rerr), "expected a runtime error, got %v", err)
	require.Equal(t, code, rerr.Code, rerr.Message)
	return rerr
}

func load(t *testing.T, src string, host evaluator.Host) *evaluator.Interpreter {
	t.Helper()
	mod, err := parser.Parse(src, "test.iko")
	require.NoError(t, err)
	return evaluator.New(mod, stdlib.New(), host)
}

func runMain(t *testing.T, in *evaluator.Interpreter) error {
	t.Helper()
	main, err := in.Main()
	if err != nil {
		return err
	}
	_, err = in.Invoke(main, nil, evaluator.MutContext())
	return err
}

// --- expressions ---

func TestExpressions(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		src  string
		want evaluator.Value
	}{
		{"1 + 2 * 3", evaluator.Num(7)},
		{"(1 + 2) * 3", evaluator.Num(9)},
		{"10 / 4", evaluator.Num(2.5)},
		{"7 - 2 - 1", evaluator.Num(4)},
		{"-3 + 1", evaluator.Num(-2)},
		{"1 < 2", evaluator.Bool(true)},
		{"2 <= 1", evaluator.Bool(false)},
		{"!(1 == 2)", evaluator.Bool(true)},
		{"true && false || true", evaluator.Bool(true)},
		{`"a{1 + 1}b"`, evaluator.Str("a2b")},
		{`"x: {"nested {true}"}"`, evaluator.Str("x: nested true")},
		{"[1, 2] == [1, 2]", evaluator.Bool(true)},
		{`dict [1: "a"] == dict [1: "a"]`, evaluator.Bool(true)},
		{"{ a: 1, b: 2 } == { b: 2, a: 1 }", evaluator.Bool(true)},
		{"if (1 < 2) { 3 } else { 4 }", evaluator.Num(3)},
		{"if (1 > 2) { 3 }", nil},
		{"[10, 20, 30][1]", evaluator.Num(20)},
		{`dict ["k": 5]["k"]`, evaluator.Num(5)},
		{"{ a: { b: 7 } }.a.b", evaluator.Num(7)},
		{"((x, y) { x * y })(6, 7)", evaluator.Num(42)},
		{"std.inspect([1, \"two\", true])", evaluator.Str(`[1, "two", true]`)},
	} {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			got := newSession(t).must(tt.src)
			assert.True(t, evaluator.Equal(tt.want, got), "got %s", evaluator.Inspect(got))
		})
	}
}

func TestShortCircuit(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let n = 0")
	s.must("false && (++n == 1)")
	s.must("true || (++n == 1)")
	assert.Equal(t, evaluator.Num(0), s.must("n"))
}

func TestRuntimeErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		src  string
		code string
	}{
		{"1 + true", diagnostics.EType},
		{`"a" < "b"`, diagnostics.EType},
		{"!1", diagnostics.EType},
		{"1 && true", diagnostics.EType},
		{"1 / 0", diagnostics.EDivZero},
		{"nope", diagnostics.EUnbound},
		{"[1][3]", diagnostics.EIndex},
		{"[1][true]", diagnostics.EType},
		{`dict []["x"]`, diagnostics.EKey},
		{"{ a: 1 }.b", diagnostics.EField},
		{"std.nope", diagnostics.EField},
		{`"x"()`, diagnostics.EType},
		{"if (1) { 2 }", diagnostics.EType},
		{"((x) { x })(1, 2)", diagnostics.EArgs},
		{"&1", diagnostics.ERef},
		{"^1", diagnostics.EType},
		{"1 = 2", diagnostics.ERef},
		{"++1", diagnostics.ERef},
		{`"{if (false) { 1 }}"`, diagnostics.EType},
		{"std.print { a: 1 }", diagnostics.EType},
	} {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			newSession(t).mustFail(tt.src, tt.code)
		})
	}
}

func TestRuntimeErrorSpan(t *testing.T) {
	t.Parallel()

	rerr := newSession(t).mustFail("1 + (2 / 0)", diagnostics.EDivZero)
	require.NotNil(t, rerr.Span)
	assert.Equal(t, 1, rerr.Span.StartLine)
	assert.Equal(t, 6, rerr.Span.StartCol)
	assert.Equal(t, diagnostics.EDivZero, rerr.Diagnostic().Code)
}

// --- value semantics ---

func TestValueSemantics(t *testing.T) {
	t.Parallel()

	t.Run("Object", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		s.must("let a = { x: 1 }")
		s.must("let b = a")
		s.must("b.x = 2")
		assert.Equal(t, evaluator.Num(1), s.must("a.x"))
		assert.Equal(t, evaluator.Num(2), s.must("b.x"))
	})

	t.Run("List", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		s.must("let a = [1, 2]")
		s.must("let b = a")
		s.must("b[0] = 9")
		s.must("b.push(3)")
		assert.Equal(t, `[1, 2]`, evaluator.Inspect(s.must("a")))
		assert.Equal(t, `[9, 2, 3]`, evaluator.Inspect(s.must("b")))
	})

	t.Run("Dict", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		s.must(`let d = dict ["value": 10]`)
		s.must("let other = d")
		s.must(`other["style"] = "color: red"`)
		assert.Equal(t, `dict [ "value": 10 ]`, evaluator.Inspect(s.must("d")))
		assert.Equal(t, `dict [ "value": 10, "style": "color: red" ]`, evaluator.Inspect(s.must("other")))
	})

	t.Run("Nested", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		s.must("let a = { items: [1, 2] }")
		s.must("let b = a")
		s.must("b.items[1] = 5")
		assert.Equal(t, `{ items: [1, 2] }`, evaluator.Inspect(s.must("a")))
		assert.Equal(t, `{ items: [1, 5] }`, evaluator.Inspect(s.must("b")))
	})

	t.Run("Parameter", func(t *testing.T) {
		t.Parallel()
		s := newSession(t)
		s.must("let a = [1]")
		s.must("let f = (l) { l[0] = 2; l }")
		assert.Equal(t, `[2]`, evaluator.Inspect(s.must("f(a)")))
		assert.Equal(t, `[1]`, evaluator.Inspect(s.must("a")))
	})
}

func TestCopyOnWrite(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let a = [1, 2]")
	s.must("let b = a")
	s.must("let c = b")

	a := s.must("a").(*evaluator.List)
	require.Same(t, a, s.must("c"), "reading aliases must not clone")
	assert.Equal(t, 3, evaluator.Refs(a))

	s.must("c[0] = 5")
	require.Same(t, a, s.must("a"))
	assert.NotSame(t, a, s.must("c"))
	assert.Equal(t, 2, evaluator.Refs(a))

	unique := s.must("c").(*evaluator.List)
	assert.Equal(t, 1, evaluator.Refs(unique))
	s.must("c[1] = 6")
	assert.Same(t, unique, s.must("c"), "unique values mutate in place")
}

func TestLocalsReleasedOnReturn(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let keep = [1]")
	s.must("let f = (x) { let y = x; 0 }")
	s.must("f(keep)")
	assert.Equal(t, 1, evaluator.Refs(s.must("keep")))

	s.must("let g = () { let local = [2]; local }")
	assert.Equal(t, 0, evaluator.Refs(s.must("g()")))
}

func TestClosuresKeepOnlyTheLetsTheyName(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let keep = [1]")
	s.must("let h = (x) { let y = x; let z = x; let c = () { y }; 0 }")
	s.must("h(keep)")
	assert.Equal(t, 2, evaluator.Refs(s.must("keep")), "only y stays held")

	s.must("let fresh = [1]")
	s.must("let mk = (x) { () { x } }")
	s.must("let get = mk(fresh)")
	s.must("fresh.push(9)")
	assert.Equal(t, `[1]`, evaluator.Inspect(s.must("get()")))
	assert.Equal(t, `[1, 9]`, evaluator.Inspect(s.must("fresh")))
}

func TestReferences(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let a = 1")
	s.must("let r = &a")
	assert.Equal(t, "&a", evaluator.Inspect(s.must("r")))
	s.must("^r = 5")
	assert.Equal(t, evaluator.Num(5), s.must("a"))

	s.must("let o = { n: [1] }")
	s.must("let set = (ref, v) { ^ref = v }")
	s.must("set(&o.n, [2])")
	assert.Equal(t, `{ n: [2] }`, evaluator.Inspect(s.must("o")))
}

func TestOuterLetsAreReadOnly(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let x = 1")
	s.must("let f = () { x = 2 }")
	s.mustFail("f()", diagnostics.ERef)
	assert.Equal(t, evaluator.Num(1), s.must("x"))
}

// --- methods and structs ---

func TestMethodShorthand(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let Point = struct { norm: (p) { p.x * p.x + p.y * p.y } }")
	assert.Equal(t, evaluator.Num(25), s.must("Point { x: 3, y: 4 }.norm()"))

	s.must("let Counter = struct { bump: mut (c) { (^c).n = (^c).n + 1 } }")
	s.must("let c = Counter { n: 0 }")
	s.must("c.bump()")
	s.must("c.bump()")
	assert.Equal(t, evaluator.Num(2), s.must("c.n"))
	assert.Equal(t, "Counter { n: 2 }", evaluator.Inspect(s.must("c")))

	s.mustFail("Counter { n: 0 }.bump()", diagnostics.ERef)
	s.mustFail("c.missing()", diagnostics.EField)
	s.mustFail("(1).size()", diagnostics.EType)

	assert.Equal(t, evaluator.Num(3), s.must("[1, 2, 3].size()"))
	assert.Same(t, s.must("Point"), s.must("std.structOf(Point {})"))
	assert.Equal(t, "struct Point", evaluator.Inspect(s.must("Point")))
}

func TestDictMethods(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must(`let d = dict ["a": 1, [1, 2]: "list"]`)
	assert.Equal(t, evaluator.Bool(true), s.must("d.has([1, 2])"))
	assert.Equal(t, evaluator.Str("list"), s.must("d[[1, 2]]"))
	assert.Equal(t, evaluator.Num(2), s.must("d.size()"))
	assert.Equal(t, evaluator.Bool(true), s.must(`d.remove("a")`))
	assert.Equal(t, evaluator.Bool(false), s.must(`d.remove("a")`))
	assert.Equal(t, `[[1, 2]]`, evaluator.Inspect(s.must("d.keys()")))
}

func TestDictNegativeZeroKey(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must(`let d = dict [0: "zero"]`)
	assert.Equal(t, evaluator.Str("zero"), s.must("d[-0]"))
	assert.Equal(t, evaluator.Bool(true), s.must("d.has(-0)"))

	s.must(`d[-0] = "neg"`)
	assert.Equal(t, `dict [ 0: "neg" ]`, evaluator.Inspect(s.must("d")))
	assert.Equal(t, evaluator.Num(1), s.must("d.size()"))

	assert.Equal(t, evaluator.Bool(true), s.must("dict [0: 1] == dict [-0: 1]"))
	assert.Equal(t, evaluator.Bool(true), s.must("dict [[0]: 1].has([-0])"))
}

func TestFunctionKeys(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let f = () { 1 }")
	s.must("let g = () { 1 }")
	s.must(`let d = dict [f: "f"]`)
	assert.Equal(t, evaluator.Bool(true), s.must("d.has(f)"))
	assert.Equal(t, evaluator.Bool(false), s.must("d.has(g)"))
}

// --- contexts ---

func TestSlotWritesNeedMutContext(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("slot count = 1")
	s.must("count = 2")
	s.must("++count")
	assert.Equal(t, evaluator.Num(3), s.must("count"))

	s.must("let pure = () { count = 10 }")
	rerr := s.mustFail("pure()", diagnostics.EContext)
	assert.Contains(t, rerr.Message, "mut context")

	s.must("let incr = () { ++count }")
	s.mustFail("incr()", diagnostics.EContext)

	render := s.must("() { count = 20 }")
	_, err := s.in.Render(render, &evaluator.SlotContextBox{}, nil)
	rerr = requireCode(t, err, diagnostics.EContext)
	assert.Contains(t, rerr.Message, "mut context")

	s.must("let write = mut () { count = 30 }")
	s.must("write()")
	assert.Equal(t, evaluator.Num(30), s.must("count"))
}

func TestMutFunctionGating(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let pure = () { 1 }")
	s.must("let effect = mut () { 2 }")
	assert.Equal(t, evaluator.Num(1), s.must("pure()"))
	assert.Equal(t, evaluator.Num(2), s.must("effect()"))

	s.must("let wrapper = () { effect() }")
	rerr := s.mustFail("wrapper()", diagnostics.EContext)
	assert.Contains(t, rerr.Message, "pure")

	s.must(`let printer = () { std.print("x") }`)
	rerr = s.mustFail("printer()", diagnostics.EContext)
	assert.Equal(t, "cannot call mut function `print` from a pure context", rerr.Message)

	_, err := s.in.Render(s.must("effect"), &evaluator.SlotContextBox{}, nil)
	requireCode(t, err, diagnostics.EContext)
}

func TestLocalLetsMutableInPure(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let f = () { let l = [1]; l[0] = 2; let n = 0; ++n; l[0] + n }")
	assert.Equal(t, evaluator.Num(3), s.must("f()"))
}

// --- reactivity ---

func TestReactiveSlotsPersist(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let counter = (start) { slot n = start; { value: n, bump: mut () { ++n } } }")
	render := s.must("() { [counter(10), counter(20)] }")

	box := &evaluator.SlotContextBox{}
	first, err := s.in.Render(render, box, nil)
	require.NoError(t, err)
	assert.Equal(t, `[10, 20]`, values(t, first))

	bump, ok := first.(*evaluator.List).Items[0].(*evaluator.Object).Get("bump")
	require.True(t, ok)
	_, err = s.in.Invoke(bump, nil, evaluator.MutContext())
	require.NoError(t, err)

	second, err := s.in.Render(render, box, nil)
	require.NoError(t, err)
	assert.Equal(t, `[11, 20]`, values(t, second), "slots persist per call site")

	fresh, err := s.in.Render(render, &evaluator.SlotContextBox{}, nil)
	require.NoError(t, err)
	assert.Equal(t, `[10, 20]`, values(t, fresh))
}

func values(t *testing.T, v evaluator.Value) string {
	t.Helper()
	list := v.(*evaluator.List)
	out := make([]evaluator.Value, len(list.Items))
	for i, item := range list.Items {
		n, ok := item.(*evaluator.Object).Get("value")
		require.True(t, ok)
		out[i] = n
	}
	return evaluator.Inspect(evaluator.NewList(out...))
}

func TestSplitListMappings(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name       string
		ranges     []evaluator.ListMapping
		cut, count int
		want       []evaluator.ListMapping
	}{
		{
			name:   "Middle",
			ranges: []evaluator.ListMapping{{Start: 0, End: 10, Orig: 0}},
			cut:    5, count: 2,
			want: []evaluator.ListMapping{{Start: 0, End: 5, Orig: 0}, {Start: 5, End: 8, Orig: 7}},
		},
		{
			name:   "AfterEverything",
			ranges: []evaluator.ListMapping{{Start: 0, End: 3, Orig: 0}, {Start: 3, End: 5, Orig: 4}},
			cut:    5, count: 1,
			want: []evaluator.ListMapping{{Start: 0, End: 3, Orig: 0}, {Start: 3, End: 5, Orig: 4}},
		},
		{
			name:   "WholeRange",
			ranges: []evaluator.ListMapping{{Start: 0, End: 4, Orig: 0}},
			cut:    0, count: 4,
			want: []evaluator.ListMapping{},
		},
		{
			name:   "Prefix",
			ranges: []evaluator.ListMapping{{Start: 0, End: 4, Orig: 0}},
			cut:    0, count: 1,
			want: []evaluator.ListMapping{{Start: 0, End: 3, Orig: 1}},
		},
		{
			name:   "AcrossRanges",
			ranges: []evaluator.ListMapping{{Start: 0, End: 2, Orig: 0}, {Start: 3, End: 6, Orig: 2}},
			cut:    1, count: 3,
			want: []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 1, End: 3, Orig: 3}},
		},
		{
			name:   "ShiftsLaterRanges",
			ranges: []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 4, End: 6, Orig: 1}},
			cut:    2, count: 1,
			want: []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 3, End: 5, Orig: 1}},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := evaluator.SplitListMappings(tt.ranges, tt.cut, tt.count)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, evaluator.SplitListMappings(got, 100, 3), "cuts after every range are a no-op")
		})
	}
}

func TestListMutationsRecordMappings(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must(`slot items = ["a", "b", "c", "d"]`)
	mappings := evaluator.NewListMappings()
	for _, stmt := range []string{
		`items.push(" today?")`,
		`items.splice(1, 1)`,
		`items.push("!")`,
	} {
		_, err := s.execWith(stmt, mappings)
		require.NoError(t, err, stmt)
	}

	list := s.must("items").(*evaluator.List)
	assert.Equal(t, `["a", "c", "d", " today?", "!"]`, evaluator.Inspect(list))
	ranges, ok := mappings.Get(list)
	require.True(t, ok)
	assert.Equal(t, []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 1, End: 3, Orig: 2}}, ranges)
}

func TestIndexAssignmentTouchesMappings(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must(`slot items = ["a", "b"]`)
	mappings := evaluator.NewListMappings()
	_, err := s.execWith(`items[1] = "z"`, mappings)
	require.NoError(t, err)

	list := s.must("items").(*evaluator.List)
	assert.Equal(t, `["a", "z"]`, evaluator.Inspect(list))
	ranges, ok := mappings.Get(list)
	require.True(t, ok)
	assert.Equal(t, []evaluator.ListMapping{{Start: 0, End: 2, Orig: 0}}, ranges)
}

func TestSpliceInsertsAndReturnsRemoved(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must("let l = [1, 2, 3, 4]")
	mappings := evaluator.NewListMappings()
	removed, err := s.execWith("l.splice(1, 2, 9, 8, 7)", mappings)
	require.NoError(t, err)
	assert.Equal(t, `[2, 3]`, evaluator.Inspect(removed))

	list := s.must("l").(*evaluator.List)
	assert.Equal(t, `[1, 9, 8, 7, 4]`, evaluator.Inspect(list))
	ranges, _ := mappings.Get(list)
	assert.Equal(t, []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 4, End: 5, Orig: 3}}, ranges)

	s.mustFail("l.splice(6, 0)", diagnostics.EIndex)
	s.mustFail("l.splice(4, 2)", diagnostics.EIndex)
}

func TestMapListRealignsSlotContexts(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.must(`slot items = ["a", "b", "c", "d"]`)
	render := s.must("() { items.map((item) { slot seen = item; seen }) }")
	box := &evaluator.SlotContextBox{}

	out, err := s.in.Render(render, box, nil)
	require.NoError(t, err)
	assert.Equal(t, `["a", "b", "c", "d"]`, evaluator.Inspect(out))

	mappings := evaluator.NewListMappings()
	_, err = s.execWith("items.splice(1, 1)", mappings)
	require.NoError(t, err)
	_, err = s.execWith(`items.push("e")`, mappings)
	require.NoError(t, err)

	out, err = s.in.Render(render, box, mappings)
	require.NoError(t, err)
	assert.Equal(t, `["a", "c", "d", "e"]`, evaluator.Inspect(out))

	ranges, ok := mappings.Get(out.(*evaluator.List))
	require.True(t, ok, "mapped lists inherit the input mapping")
	assert.Equal(t, []evaluator.ListMapping{{Start: 0, End: 1, Orig: 0}, {Start: 1, End: 3, Orig: 2}}, ranges)

	// Without a recorded mapping the list is assumed unchanged, so the
	// slot contexts line up by index.
	_, err = s.exec("items.splice(0, 1)")
	require.NoError(t, err)
	out, err = s.in.Render(render, box, nil)
	require.NoError(t, err)
	assert.Equal(t, `["a", "c", "d"]`, evaluator.Inspect(out))
}

func TestMapListIndex(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	assert.Equal(t, `["0:x", "1:y"]`, evaluator.Inspect(s.must(`["x", "y"].map((v, i) { "{i}:{v}" })`)))
}

// --- markup ---

func TestElements(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	v := s.must(`<div class="a" value={1 + 1}>hi {1}<br/></div>`)
	tag, attrs, children, ok := s.in.Element(v)
	require.True(t, ok)
	assert.Equal(t, "div", tag)
	assert.Equal(t, `{ class: "a", value: 2 }`, evaluator.Inspect(attrs))
	require.Len(t, children.Items, 3)
	assert.Equal(t, evaluator.Str("hi "), children.Items[0])
	assert.Equal(t, evaluator.Num(1), children.Items[1])

	tag, _, _, ok = s.in.Element(children.Items[2])
	require.True(t, ok)
	assert.Equal(t, "br", tag)

	_, _, _, ok = s.in.Element(s.must("{ tag: \"div\" }"))
	assert.False(t, ok)
	assert.Same(t, s.must("std.Element"), s.must("std.structOf(<p></p>)"))
}

// --- modules ---

func TestModuleLets(t *testing.T) {
	t.Parallel()

	host := &fakeHost{}
	in := load(t, `
use std.print

let Shape = struct { sides: 4 }
let total = double(base) + 1
let double = (n) { n * 2 }
let base = 20
let base = 21

pub let main = mut () {
  print("{total} {std.inspect(Shape)} {Shape.sides}")
}
`, host)
	require.NoError(t, runMain(t, in))
	assert.Equal(t, []string{"43 struct Shape 4"}, host.lines)
}

func TestModuleCycle(t *testing.T) {
	t.Parallel()

	in := load(t, `
let a = b + 1
let b = a + 1
pub let main = mut () { a }
`, &fakeHost{})
	requireCode(t, runMain(t, in), diagnostics.ECycle)
}

func TestEntryPoint(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"let x = 1\n",
		"let main = mut () { 1 }\n",
		"pub let main = 1\n",
	} {
		err := runMain(t, load(t, src, &fakeHost{}))
		requireCode(t, err, diagnostics.EEntry)
	}
}

func TestHelloWorld(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	host := mock_evaluator.NewMockHost(ctrl)
	host.EXPECT().Print("hello, world").Times(1)

	in := load(t, `pub let main = mut () { std.print("hello, world") }`, host)
	require.NoError(t, runMain(t, in))
}

func TestHostBuiltins(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	host := mock_evaluator.NewMockHost(ctrl)
	host.EXPECT().Schedule(1500*time.Millisecond, gomock.Any()).Times(1)
	host.EXPECT().BindTTY(gomock.Any()).Times(1)
	host.EXPECT().BindNode(gomock.Any(), "root").Return(nil).Times(1)
	host.EXPECT().BindNode(gomock.Any(), "other").Return(errors.New("no such root")).Times(1)

	in := load(t, `
pub let main = mut () {
  std.schedule(1500, mut () { 1 })
  std.bindTTY(() { "tty" })
  std.bindNode(() { <p></p> })
  std.bindNode(() { <p></p> }, "other")
}
`, host)
	requireCode(t, runMain(t, in), diagnostics.EHost)
}

func TestBindRequiresPureRenderer(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.mustFail("std.bindTTY(mut () { 1 })", diagnostics.EContext)
	s.mustFail("std.schedule(-1, mut () { 1 })", diagnostics.EType)
	s.mustFail("std.schedule(0, 1)", diagnostics.EType)

	s.must("let n = 9007199254740991")
	s.must("let inf = " + strings.Repeat("n * ", 19) + "n")
	s.mustFail("std.schedule(inf, mut () { 1 })", diagnostics.EType)
	s.mustFail("std.schedule(inf - inf, mut () { 1 })", diagnostics.EType)
	assert.Empty(t, s.host.tty)
	assert.Empty(t, s.host.timers)
}

func TestNoHost(t *testing.T) {
	t.Parallel()

	in := evaluator.New(nil, stdlib.New(), nil)
	std, err := in.Global("std")
	require.NoError(t, err)
	fn, ok := std.(*evaluator.Struct).Get("print")
	require.True(t, ok)
	_, err = in.Invoke(fn, []evaluator.Value{evaluator.Str("x")}, evaluator.MutContext())
	requireCode(t, err, diagnostics.EHost)
}
