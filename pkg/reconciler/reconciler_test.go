package reconciler_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mock_dom "github.com/jeanlauliac/ikolang-sub001/internal/mock/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/reconciler"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

// harness binds one render function to a document, the way the runtime
// does, with statements run one at a time in a persistent mut scope.
type harness struct {
	t        *testing.T
	in       *evaluator.Interpreter
	scope    *evaluator.Scope
	doc      dom.Document
	parent   *reconciler.Parent
	rec      *reconciler.Reconciler
	box      *evaluator.SlotContextBox
	render   evaluator.Value
	rendered reconciler.Rendered
	tasks    []evaluator.Task
}

func newHarness(t *testing.T, doc dom.Document, root dom.Node, policy *capabilities.Policy) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		in:     evaluator.New(nil, stdlib.New(), nil),
		scope:  evaluator.NewScope(),
		doc:    doc,
		parent: reconciler.NewParent(root),
		box:    &evaluator.SlotContextBox{},
	}
	h.rec = reconciler.New(doc, h.in, policy, func(task evaluator.Task) {
		h.tasks = append(h.tasks, task)
	})
	return h
}

func newTreeHarness(t *testing.T, policy *capabilities.Policy) (*harness, *dom.Tree, *dom.Element) {
	t.Helper()
	tree := dom.NewTree("root")
	root, _ := tree.Root("root")
	return newHarness(t, tree, root, policy), tree, root.(*dom.Element)
}

func (h *harness) exec(src string, mappings *evaluator.ListMappings) evaluator.Value {
	h.t.Helper()
	stmt, err := parser.ParseStatement(src, "test.iko")
	require.NoError(h.t, err, src)
	v, err := h.in.ExecStatement(stmt, h.scope, mappings)
	require.NoError(h.t, err, src)
	return v
}

func (h *harness) mount(src string) error {
	h.t.Helper()
	h.render = h.exec(src, nil)
	return h.refresh(nil)
}

func (h *harness) refresh(mappings *evaluator.ListMappings) error {
	v, err := h.in.Render(h.render, h.box, mappings)
	if err != nil {
		return err
	}
	rendered, err := h.rec.Update(h.parent, h.rendered, v, mappings)
	if err != nil {
		return err
	}
	h.rendered = rendered
	return nil
}

// update runs statements as one mut pass and re-renders with the
// mappings they recorded.
func (h *harness) update(stmts ...string) {
	h.t.Helper()
	mappings := evaluator.NewListMappings()
	for _, src := range stmts {
		h.exec(src, mappings)
	}
	require.NoError(h.t, h.refresh(mappings))
}

// drain runs the dispatched tasks as top-level mut invocations, each
// followed by a refresh.
func (h *harness) drain() {
	h.t.Helper()
	tasks := h.tasks
	h.tasks = nil
	for _, task := range tasks {
		cx := evaluator.MutContext()
		require.NoError(h.t, task(cx))
		require.NoError(h.t, h.refresh(cx.Mappings))
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var rerr *evaluator.RuntimeError
	require.True(t, errors.As(err, &rerr), "expected a runtime error, got %v", err)
	assert.Equal(t, code, rerr.Code, rerr.Message)
}

func TestListItemsKeepTheirNodes(t *testing.T) {
	t.Parallel()

	h, tree, root := newTreeHarness(t, nil)
	h.exec(`slot items = ["a", "b", "c", "d"]`, nil)
	require.NoError(t, h.mount(`() { <p>{items.map((w) { <span>{w}</span> })}</p> }`))
	assert.Equal(t, `<div id="root"><p><span>a</span><span>b</span><span>c</span><span>d</span></p></div>`, dom.HTML(root))

	p := root.Children[0].(*dom.Element)
	spans := make(map[string]*dom.Element)
	for _, c := range p.Children {
		span := c.(*dom.Element)
		spans[dom.TextContent(span)] = span
	}

	h.update(`items.push(" today?")`, `items.splice(1, 1)`, `items.push("!")`)

	assert.Equal(t, `<div id="root"><p><span>a</span><span>c</span><span>d</span><span> today?</span><span>!</span></p></div>`+"\n", tree.HTML())
	require.Len(t, p.Children, 5)
	assert.Same(t, spans["a"], p.Children[0])
	assert.Same(t, spans["c"], p.Children[1])
	assert.Same(t, spans["d"], p.Children[2])
	assert.Nil(t, spans["b"].Parent, "the removed item is detached")
	for _, c := range p.Children[3:] {
		for _, old := range spans {
			assert.NotSame(t, old, c)
		}
	}
}

func TestListWithoutMappingMatchesByIndex(t *testing.T) {
	t.Parallel()

	h, _, root := newTreeHarness(t, nil)
	h.exec(`slot items = ["a", "b", "c"]`, nil)
	require.NoError(t, h.mount(`() { <ul>{items.map((w) { <li>{w}</li> })}</ul> }`))
	ul := root.Children[0].(*dom.Element)
	first := ul.Children[0]

	h.exec(`items.splice(0, 1)`, nil)
	require.NoError(t, h.refresh(nil))

	assert.Equal(t, `<div id="root"><ul><li>b</li><li>c</li></ul></div>`, dom.HTML(root))
	assert.Same(t, first, ul.Children[0], "index 0 is reused and its text updated")
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doc := mock_dom.NewMockDocument(ctrl)
	h := newHarness(t, doc, "root", capabilities.Allow("title"))
	h.exec(`slot label = "hi"`, nil)

	gomock.InOrder(
		doc.EXPECT().CreateElement("p").Return("p"),
		doc.EXPECT().SetAttribute("p", "title", "hi"),
		doc.EXPECT().CreateTextNode("hi").Return("text"),
		doc.EXPECT().InsertBefore("p", "text", nil),
		doc.EXPECT().InsertBefore("root", "p", nil),
	)
	require.NoError(t, h.mount(`() { <p title={label}>{label}</p> }`))

	// Nothing changed, so nothing is written.
	require.NoError(t, h.refresh(nil))

	doc.EXPECT().SetAttribute("p", "title", "bye")
	doc.EXPECT().SetText("text", "bye")
	h.update(`label = "bye"`)
}

func TestValueKindChanges(t *testing.T) {
	t.Parallel()

	h, _, root := newTreeHarness(t, nil)
	h.exec(`slot mode = 0`, nil)
	require.NoError(t, h.mount(`() { if (mode == 0) { "text" } else { if (mode == 1) { <p>1</p> } else { <div>2</div> } } }`))
	assert.Equal(t, `<div id="root">text</div>`, dom.HTML(root))

	h.update(`mode = 1`)
	assert.Equal(t, `<div id="root"><p>1</p></div>`, dom.HTML(root))
	p := root.Children[0]

	h.update(`mode = 2`)
	assert.Equal(t, `<div id="root"><div>2</div></div>`, dom.HTML(root))
	assert.NotSame(t, p, root.Children[0], "a different tag gets a new node")

	h.update(`mode = 0`)
	assert.Equal(t, `<div id="root">text</div>`, dom.HTML(root))
}

func TestNothingRendersNothing(t *testing.T) {
	t.Parallel()

	h, _, root := newTreeHarness(t, nil)
	h.exec(`slot show = true`, nil)
	require.NoError(t, h.mount(`() { <p>a{if (show) { <b>b</b> }}c</p> }`))
	assert.Equal(t, `<div id="root"><p>a<b>b</b>c</p></div>`, dom.HTML(root))

	h.update(`show = false`)
	assert.Equal(t, `<div id="root"><p>ac</p></div>`, dom.HTML(root))

	h.update(`show = true`)
	assert.Equal(t, `<div id="root"><p>a<b>b</b>c</p></div>`, dom.HTML(root))
}

func TestEventHandlers(t *testing.T) {
	t.Parallel()

	h, tree, root := newTreeHarness(t, nil)
	h.exec(`slot count = 0`, nil)
	require.NoError(t, h.mount(`() { <button onClick={mut () { ++count }}>{count}</button> }`))

	button := root.Children[0]
	assert.Equal(t, 1, tree.Listeners(button, "click"))

	tree.Dispatch(button, "click")
	tree.Dispatch(button, "click")
	require.Len(t, h.tasks, 2, "handlers run as separate tasks")
	h.drain()

	assert.Equal(t, "2", dom.TextContent(root))
	assert.Equal(t, 1, tree.Listeners(button, "click"), "handlers are replaced on every render")
}

func TestReferenceBoundValue(t *testing.T) {
	t.Parallel()

	h, tree, root := newTreeHarness(t, nil)
	h.exec(`slot name = "ada"`, nil)
	h.exec(`slot bound = true`, nil)
	require.NoError(t, h.mount(`() { if (bound) { <input value={&name}/> } else { <input value={name}/> } }`))

	input := root.Children[0]
	assert.Equal(t, "ada", tree.ReadValue(input))
	assert.Equal(t, 1, tree.Listeners(input, "input"))

	tree.Input(input, "grace")
	h.drain()
	assert.Equal(t, evaluator.Str("grace"), h.exec("name", nil))
	assert.Equal(t, 1, tree.Listeners(input, "input"), "one input listener per element")

	h.update(`name = "lovelace"`)
	assert.Equal(t, "lovelace", tree.ReadValue(input))

	h.update(`bound = false`)
	assert.Same(t, input, root.Children[0])
	assert.Equal(t, 0, tree.Listeners(input, "input"))
	tree.Input(input, "ignored")
	assert.Empty(t, h.tasks)
}

func TestAttributeErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name, src, code string
	}{
		{"NotAllowed", `() { <p class="x"></p> }`, diagnostics.EAttr},
		{"ReferenceOnOtherAttribute", `() { <p title={&x}></p> }`, diagnostics.EType},
		{"HandlerNotFunction", `() { <p onClick={1}></p> }`, diagnostics.EType},
		{"PlainObject", `() { let o = { a: 1 }; o }`, diagnostics.EType},
		{"Function", `() { std.inspect }`, diagnostics.EType},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _, _ := newTreeHarness(t, capabilities.Allow("title"))
			h.exec(`slot x = 1`, nil)
			requireCode(t, h.mount(tt.src), tt.code)
		})
	}
}

func TestUnmount(t *testing.T) {
	t.Parallel()

	h, tree, root := newTreeHarness(t, nil)
	require.NoError(t, h.mount(`() { [<p>a</p>, "b", [<i>c</i>]] }`))
	assert.Equal(t, 3, tree.ChildCount(root))

	h.rec.Unmount(h.parent, h.rendered)
	assert.Equal(t, 0, tree.ChildCount(root))
}
