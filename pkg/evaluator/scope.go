package evaluator

import (
	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
)

// SlotCell is the persistent storage behind a `slot` binding.
type SlotCell struct {
	Value Value
}

type binding struct {
	name  string
	kind  ast.VarKind
	value Value     // VarLet
	cell  *SlotCell // VarSlot
}

// frame tracks the let bindings of one function invocation so they can be
// released when it returns. Lets whose names a closure created during the
// invocation may read stay held.
type frame struct {
	lets     []*binding
	captured map[string]bool
	pinned   bool
}

// Scope is a lexical name table with a parent link. Scopes created for
// the same invocation share a frame.
type Scope struct {
	bindings map[string]*binding
	parent   *Scope
	frame    *frame
}

func newScope(parent *Scope, fr *frame) *Scope {
	return &Scope{bindings: make(map[string]*binding), parent: parent, frame: fr}
}

// NewScope creates a root scope for statement-at-a-time execution. It is
// never released.
func NewScope() *Scope {
	return newScope(nil, &frame{pinned: true})
}

// child creates a nested scope in the same invocation.
func (s *Scope) child() *Scope {
	return newScope(s, s.frame)
}

func (s *Scope) lookup(name string) (*binding, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.bindings[name]; ok {
			return b, sc
		}
	}
	return nil, nil
}

func (s *Scope) declareLet(name string, v Value) {
	incRef(v)
	b := &binding{name: name, kind: ast.VarLet, value: v}
	s.bindings[name] = b
	s.frame.lets = append(s.frame.lets, b)
}

func (s *Scope) declareSlot(name string, cell *SlotCell) {
	s.bindings[name] = &binding{name: name, kind: ast.VarSlot, cell: cell}
}

// Has reports whether name is bound in this scope chain.
func (s *Scope) Has(name string) bool {
	b, _ := s.lookup(name)
	return b != nil
}

// capture keeps the lets a closure may read. A nil names set pins the
// whole frame.
func (fr *frame) capture(names map[string]bool) {
	if names == nil {
		fr.pinned = true
		return
	}
	if fr.captured == nil {
		fr.captured = make(map[string]bool, len(names))
	}
	for name := range names {
		fr.captured[name] = true
	}
}

func (fr *frame) release() {
	if fr.pinned {
		return
	}
	for _, b := range fr.lets {
		if !fr.captured[b.name] {
			decRef(b.value)
		}
	}
}

// freeNames returns every identifier a function literal's body mentions,
// including nested functions. Names the body binds itself are included
// too, which only keeps more lets alive. A nil result means the body holds
// a form it cannot walk.
func freeNames(fn *ast.FuncLit) map[string]bool {
	names := make(map[string]bool)
	if !namesInBlock(fn.Body, names) {
		return nil
	}
	return names
}

func namesInBlock(stmts []ast.Stmt, names map[string]bool) bool {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			if !namesIn(s.Expr, names) {
				return false
			}
		case *ast.VarDecl:
			if !namesIn(s.Value, names) {
				return false
			}
		case *ast.UseStmt:
		default:
			return false
		}
	}
	return true
}

func namesIn(e ast.Expr, names map[string]bool) bool {
	ok := true
	walk := func(es ...ast.Expr) {
		for _, x := range es {
			if ok && !namesIn(x, names) {
				ok = false
			}
		}
	}
	switch e := e.(type) {
	case nil:
	case *ast.IntLiteral, *ast.BoolLiteral:
	case *ast.StringTemplate:
		for _, part := range e.Parts {
			walk(part.Expr)
		}
	case *ast.Ident:
		names[e.Name] = true
	case *ast.FuncLit:
		ok = namesInBlock(e.Body, names)
	case *ast.CallExpr:
		walk(e.Callee)
		walk(e.Args...)
	case *ast.MemberExpr:
		walk(e.Target)
	case *ast.IndexExpr:
		walk(e.Target, e.Index)
	case *ast.UnaryExpr:
		walk(e.Operand)
	case *ast.BinaryExpr:
		walk(e.Left, e.Right)
	case *ast.ObjectLit:
		walk(e.Tag)
		for _, f := range e.Fields {
			walk(f.Value)
		}
	case *ast.ListLit:
		walk(e.Items...)
	case *ast.DictLit:
		for _, entry := range e.Entries {
			walk(entry.Key, entry.Value)
		}
	case *ast.StructLit:
		for _, m := range e.Members {
			walk(m.Value)
		}
	case *ast.IfExpr:
		walk(e.Cond)
		ok = ok && namesInBlock(e.Then, names) && namesInBlock(e.Else, names)
	case *ast.ElementExpr:
		for _, a := range e.Attrs {
			walk(a.Value)
		}
		walk(e.Children...)
	default:
		return false
	}
	return ok
}
