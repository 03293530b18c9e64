package runtime

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lthibault/log"
	"github.com/pkg/errors"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/reconciler"
)

// timer is a pending schedule() callback. Timers due at the same instant
// fire in the order they were scheduled.
type timer struct {
	at  time.Time
	seq uint64
	fn  evaluator.Value
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	t := old[len(old)-1]
	*h = old[:len(old)-1]
	return t
}

// binding is a render function registered with bindTTY or bindNode.
type binding interface {
	refresh(mappings *evaluator.ListMappings) error
	unmount()
}

// loop owns one interpreter and runs everything it does as top-level mut
// tasks, one at a time. Host events may be posted from any goroutine.
type loop struct {
	rt  *Runtime
	log log.Logger
	in  *evaluator.Interpreter
	rec *reconciler.Reconciler

	timers   timerHeap
	seq      uint64
	bindings []binding
	roots    map[string]bool
	tasks    uint64

	mu    sync.Mutex
	queue []evaluator.Task
	wake  chan struct{}
}

var _ evaluator.Host = (*loop)(nil)

func newLoop(rt *Runtime, mod *ast.Module) *loop {
	l := &loop{
		rt:    rt,
		log:   rt.log.WithField("run", rt.runID),
		roots: make(map[string]bool),
		wake:  make(chan struct{}, 1),
	}
	l.in = evaluator.New(mod, rt.stdlib.Module(), l)
	if rt.doc != nil {
		l.rec = reconciler.New(rt.doc, l.in, rt.policy, l.post)
	}
	return l
}

// run invokes main, then fires timers and host events until the program
// is idle. Errors and cancellation tear down every timer and binding.
func (l *loop) run(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			l.log.WithError(err).Error("run aborted")
			l.teardown()
		}
	}()

	main, err := l.in.Main()
	if err != nil {
		return err
	}
	if err = l.runTask("main", l.in.CallTask(main)); err != nil {
		return err
	}
	return l.wait(ctx)
}

// wait runs tasks as they become ready until no timer is pending and no
// binding keeps the program alive.
func (l *loop) wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		if task, ok := l.pop(); ok {
			if err := l.runTask("event", task); err != nil {
				return err
			}
			continue
		}
		if t, ok := l.due(); ok {
			if err := l.fire(t); err != nil {
				return err
			}
			continue
		}
		if l.idle() {
			l.log.WithField("tasks", l.tasks).Debug("run finished")
			return nil
		}

		var (
			fire  <-chan time.Time
			timer interface{ Stop() bool }
		)
		if len(l.timers) > 0 {
			t := l.rt.clock.Timer(l.timers[0].at.Sub(l.rt.clock.Now()))
			fire, timer = t.C, t
		}
		select {
		case <-ctx.Done():
		case <-l.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *loop) idle() bool {
	return len(l.timers) == 0 && (len(l.bindings) == 0 || !l.rt.keepAlive)
}

// due pops the earliest timer if its time has come.
func (l *loop) due() (*timer, bool) {
	if len(l.timers) == 0 || l.timers[0].at.After(l.rt.clock.Now()) {
		return nil, false
	}
	return heap.Pop(&l.timers).(*timer), true
}

func (l *loop) fire(t *timer) error {
	return l.runTask("timer", l.in.CallTask(t.fn))
}

// runTask runs one top-level mut invocation, then refreshes every binding
// with the list mappings it recorded.
func (l *loop) runTask(kind string, task evaluator.Task) error {
	l.tasks++
	cx := evaluator.MutContext()
	l.log.
		WithField("task", kind).
		WithField("seq", l.tasks).
		Trace("running task")
	if err := task(cx); err != nil {
		return err
	}
	return l.refresh(cx.Mappings)
}

func (l *loop) refresh(mappings *evaluator.ListMappings) error {
	if len(l.bindings) == 0 {
		return nil
	}
	l.log.WithField("bindings", len(l.bindings)).Trace("refreshing")
	for _, b := range l.bindings {
		if err := b.refresh(mappings); err != nil {
			return err
		}
	}
	return nil
}

// post queues a task. It is safe to call from any goroutine.
func (l *loop) post(task evaluator.Task) {
	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *loop) pop() (evaluator.Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue = l.queue[1:]
	return task, true
}

// teardown drops pending timers and events and unmounts every binding.
func (l *loop) teardown() {
	l.timers = nil
	l.mu.Lock()
	l.queue = nil
	l.mu.Unlock()

	for _, b := range l.bindings {
		b.unmount()
	}
	l.bindings = nil
	l.roots = make(map[string]bool)
}

func cancelled(err error) error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.ECancelled,
		Message: fmt.Sprintf("run cancelled: %v", err),
	}
}

// --- evaluator.Host ---

func (l *loop) Print(line string) {
	fmt.Fprintln(l.rt.out, line)
}

func (l *loop) Schedule(delay time.Duration, fn evaluator.Value) {
	l.seq++
	heap.Push(&l.timers, &timer{at: l.rt.clock.Now().Add(delay), seq: l.seq, fn: fn})
	l.log.WithField("delay", delay).Trace("timer scheduled")
}

func (l *loop) BindTTY(render evaluator.Value) {
	l.bindings = append(l.bindings, &ttyBinding{
		l:      l,
		render: render,
		box:    &evaluator.SlotContextBox{},
	})
	l.log.Debug("bound tty")
}

func (l *loop) BindNode(render evaluator.Value, root string) error {
	if l.rec == nil {
		return errors.New("no document to render into")
	}
	n, ok := l.rt.doc.Root(root)
	if !ok {
		return errors.Errorf("no root node with id %q", root)
	}
	if l.roots[root] || l.rt.doc.ChildCount(n) > 0 {
		return errors.Errorf("root %q is not empty", root)
	}
	l.roots[root] = true
	l.bindings = append(l.bindings, &nodeBinding{
		l:      l,
		render: render,
		box:    &evaluator.SlotContextBox{},
		root:   n,
		parent: reconciler.NewParent(n),
	})
	l.log.WithField("root", root).Debug("bound node")
	return nil
}

// ttyBinding prints its render's result on every refresh.
type ttyBinding struct {
	l      *loop
	render evaluator.Value
	box    *evaluator.SlotContextBox
}

func (b *ttyBinding) refresh(mappings *evaluator.ListMappings) error {
	v, err := b.l.in.Render(b.render, b.box, mappings)
	if err != nil {
		return err
	}
	b.l.Print(evaluator.Display(v))
	evaluator.Release(v)
	return nil
}

func (b *ttyBinding) unmount() {}

// nodeBinding reconciles its render's result under a document root.
type nodeBinding struct {
	l        *loop
	render   evaluator.Value
	box      *evaluator.SlotContextBox
	root     dom.Node
	parent   *reconciler.Parent
	rendered reconciler.Rendered
}

func (b *nodeBinding) refresh(mappings *evaluator.ListMappings) error {
	v, err := b.l.in.Render(b.render, b.box, mappings)
	if err != nil {
		return err
	}
	defer evaluator.Release(v)

	rendered, err := b.l.rec.Update(b.parent, b.rendered, v, mappings)
	if err != nil {
		return err
	}
	b.rendered = rendered
	return nil
}

// unmount empties the root, including anything a failed update left
// behind.
func (b *nodeBinding) unmount() {
	b.l.rt.doc.RemoveChildren(b.root)
	b.rendered = nil
	b.parent = reconciler.NewParent(b.root)
}
