// Package runtime provides the top-level iko runtime: it parses a module,
// runs its entry point and drives the event loop that fires timers, runs
// host events and refreshes reactive bindings.
package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/lthibault/log"
	"github.com/pkg/errors"

	"github.com/jeanlauliac/ikolang-sub001/internal/logutil"
	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/formatter"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/resolver"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

// Runtime wires together all iko components for program execution.
type Runtime struct {
	log       log.Logger
	clock     clock.Clock
	doc       dom.Document
	out       io.Writer
	keepAlive bool
	policy    *capabilities.Policy
	stdlib    *stdlib.Registry
	runID     string
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Runs log at debug level.
func WithLogger(l log.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithClock sets the clock timers are measured against.
func WithClock(c clock.Clock) Option {
	return func(rt *Runtime) {
		rt.clock = c
	}
}

// WithDocument sets the host tree bindNode renders into. Without one,
// bindNode fails.
func WithDocument(doc dom.Document) Option {
	return func(rt *Runtime) {
		rt.doc = doc
	}
}

// WithOutput sets where print and TTY bindings write.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithKeepAlive keeps a run going while bindings are active, waiting for
// host events, until its context is cancelled.
func WithKeepAlive(keep bool) Option {
	return func(rt *Runtime) {
		rt.keepAlive = keep
	}
}

// WithPolicy sets the attribute policy for bound trees.
func WithPolicy(p *capabilities.Policy) Option {
	return func(rt *Runtime) {
		rt.policy = p
	}
}

// WithStdlib sets the registry the std module is built from.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithRunID sets the identifier attached to the run's log entries.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// New creates a new Runtime with the given options. By default output is
// discarded, logs are silent, the policy allows only `value` and there is
// no document.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		log:    logutil.Discard(),
		clock:  clock.New(),
		out:    io.Discard,
		policy: capabilities.Default(),
		stdlib: reg,
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and checks a module, then runs `pub let main` and the event
// loop until nothing is left to do, an error aborts the run, or ctx is
// cancelled.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	mod, err := rt.load(source, filename)
	if err != nil {
		return err
	}
	return newLoop(rt, mod).run(ctx)
}

// Check parses and checks a module without running it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	mod, err := parser.Parse(source, filename)
	if err != nil {
		return Diagnostics(err)
	}
	return resolver.Check(mod)
}

// Format parses and formats a module.
func (rt *Runtime) Format(source, filename string) (string, error) {
	mod, err := parser.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(mod), nil
}

func (rt *Runtime) load(source, filename string) (*ast.Module, error) {
	mod, err := parser.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	if diags := resolver.Check(mod); len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return mod, nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Diagnostics extracts the diagnostics an error carries: syntax errors,
// check failures and runtime errors. Other errors yield nil.
func Diagnostics(err error) []diagnostics.Diagnostic {
	var (
		derr *DiagnosticError
		serr *parser.SyntaxError
		rerr *evaluator.RuntimeError
	)
	switch {
	case errors.As(err, &derr):
		return derr.Diagnostics
	case errors.As(err, &serr):
		return []diagnostics.Diagnostic{serr.Diag}
	case errors.As(err, &rerr):
		return []diagnostics.Diagnostic{rerr.Diagnostic()}
	}
	return nil
}
