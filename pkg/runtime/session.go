package runtime

import (
	"context"

	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
)

// ReplFile is the file name statements typed into a session are reported
// under.
const ReplFile = "<repl>"

// Session evaluates statements one at a time against a persistent scope,
// each as its own top-level mut invocation. Bindings made in one
// statement refresh after the following ones.
type Session struct {
	l     *loop
	scope *evaluator.Scope
}

// NewSession starts an interactive session with no module.
func (rt *Runtime) NewSession() *Session {
	return &Session{l: newLoop(rt, nil), scope: evaluator.NewScope()}
}

// Exec parses and runs one statement. Work that became ready since the
// last statement, posted host events and timers that are due, runs before
// and after it. An error tears down timers and bindings but keeps the
// session's names.
func (s *Session) Exec(source string) (evaluator.Value, error) {
	stmt, err := parser.ParseStatement(source, ReplFile)
	if err != nil {
		return nil, err
	}
	var v evaluator.Value
	err = s.settle()
	if err == nil {
		err = s.l.runTask("statement", func(cx evaluator.Context) error {
			var err error
			v, err = s.l.in.ExecStatement(stmt, s.scope, cx.Mappings)
			return err
		})
	}
	if err == nil {
		err = s.settle()
	}
	if err != nil {
		s.l.log.WithError(err).Debug("statement failed")
		s.l.teardown()
		return nil, err
	}
	return v, nil
}

// settle runs ready work without blocking.
func (s *Session) settle() error {
	for {
		if task, ok := s.l.pop(); ok {
			if err := s.l.runTask("event", task); err != nil {
				return err
			}
			continue
		}
		if t, ok := s.l.due(); ok {
			if err := s.l.fire(t); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// Wait blocks until no timer is pending and no binding keeps the session
// alive, or until ctx is cancelled.
func (s *Session) Wait(ctx context.Context) error {
	if err := s.l.wait(ctx); err != nil {
		s.l.teardown()
		return err
	}
	return nil
}

// Post queues a task as if a host event had fired. It is safe to call
// from any goroutine; the task runs at the next Exec or Wait.
func (s *Session) Post(task evaluator.Task) {
	s.l.post(task)
}
