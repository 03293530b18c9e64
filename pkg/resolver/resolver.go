// Package resolver builds the module-level name table and checks that
// every identifier in a module refers to something.
package resolver

import (
	"fmt"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
)

// BuiltinModule is the name of the only module that can be imported.
const BuiltinModule = "std"

// Table maps module-level names to the declaration that binds them.
type Table map[string]ast.Stmt

// Resolve returns the name table for mod. A later declaration of a name
// silently replaces an earlier one.
func Resolve(mod *ast.Module) Table {
	table := make(Table, len(mod.Decls))
	for _, decl := range mod.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			table[d.Name] = d
		case *ast.UseStmt:
			table[d.Name()] = d
		}
	}
	return table
}

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type checker struct {
	diags []diagnostics.Diagnostic
}

// Check reports identifiers that are not bound by a parameter, a local
// declaration in scope, a module-level declaration or the builtin module,
// and `use` paths outside the builtin module.
func Check(mod *ast.Module) []diagnostics.Diagnostic {
	c := &checker{}
	global := newScope(nil)
	global.add(BuiltinModule)
	for name := range Resolve(mod) {
		global.add(name)
	}

	for _, decl := range mod.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.expr(d.Value, global)
		case *ast.UseStmt:
			c.use(d)
		}
	}
	return c.diags
}

func (c *checker) addDiag(code, msg string, span ast.Span) {
	c.diags = append(c.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

func (c *checker) use(u *ast.UseStmt) {
	if len(u.Path) == 0 || u.Path[0] != BuiltinModule {
		c.addDiag(diagnostics.EUnbound, fmt.Sprintf("unknown module `%s`", u.Path[0]), u.Span)
	}
}

func (c *checker) block(stmts []ast.Stmt, sc *scope) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			c.expr(s.Expr, sc)
		case *ast.VarDecl:
			// The name is bound after its initializer.
			c.expr(s.Value, sc)
			sc.add(s.Name)
		case *ast.UseStmt:
			c.use(s)
			sc.add(s.Name())
		}
	}
}

func (c *checker) expr(e ast.Expr, sc *scope) {
	switch e := e.(type) {
	case nil:
	case *ast.IntLiteral, *ast.BoolLiteral:
	case *ast.StringTemplate:
		for _, part := range e.Parts {
			if part.Expr != nil {
				c.expr(part.Expr, sc)
			}
		}
	case *ast.Ident:
		if !sc.has(e.Name) {
			c.addDiag(diagnostics.EUnbound, fmt.Sprintf("unbound name `%s`", e.Name), e.Span)
		}
	case *ast.FuncLit:
		fnScope := newScope(sc)
		for _, p := range e.Params {
			fnScope.add(p.Name)
		}
		c.block(e.Body, fnScope)
	case *ast.CallExpr:
		c.expr(e.Callee, sc)
		for _, arg := range e.Args {
			c.expr(arg, sc)
		}
	case *ast.MemberExpr:
		c.expr(e.Target, sc)
	case *ast.IndexExpr:
		c.expr(e.Target, sc)
		c.expr(e.Index, sc)
	case *ast.UnaryExpr:
		c.expr(e.Operand, sc)
	case *ast.BinaryExpr:
		c.expr(e.Left, sc)
		c.expr(e.Right, sc)
	case *ast.ObjectLit:
		c.expr(e.Tag, sc)
		for _, f := range e.Fields {
			c.expr(f.Value, sc)
		}
	case *ast.ListLit:
		for _, item := range e.Items {
			c.expr(item, sc)
		}
	case *ast.DictLit:
		for _, entry := range e.Entries {
			c.expr(entry.Key, sc)
			c.expr(entry.Value, sc)
		}
	case *ast.StructLit:
		for _, m := range e.Members {
			c.expr(m.Value, sc)
		}
	case *ast.IfExpr:
		c.expr(e.Cond, sc)
		c.block(e.Then, newScope(sc))
		if e.Else != nil {
			c.block(e.Else, newScope(sc))
		}
	case *ast.ElementExpr:
		for _, a := range e.Attrs {
			c.expr(a.Value, sc)
		}
		for _, child := range e.Children {
			c.expr(child, sc)
		}
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %T", e))
	}
}
