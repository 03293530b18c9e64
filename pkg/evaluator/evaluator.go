package evaluator

import (
	"fmt"
	"math"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/resolver"
)

// maxSafeInt bounds integers that index lists.
const maxSafeInt = 1<<53 - 1

// RuntimeError is an evaluation error.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Span.File, e.Span.StartLine, e.Span.StartCol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Diagnostic converts the error for reporting.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// Interpreter evaluates one module. It is not safe for concurrent use.
type Interpreter struct {
	std     *Struct
	host    Host
	table   resolver.Table
	scope   *Scope
	globals map[string]Value
	loading map[string]bool
	nextKey uint64
	names   map[*ast.FuncLit]map[string]bool

	element *Struct
	list    *Struct
	dict    *Struct
	str     *Struct
}

// New creates an interpreter for mod. The std struct provides the builtin
// module; its Element member tags markup values and its List, Dict and
// String members supply methods.
func New(mod *ast.Module, std *Struct, host Host) *Interpreter {
	if mod == nil {
		mod = &ast.Module{}
	}
	in := &Interpreter{
		std:     std,
		host:    host,
		table:   resolver.Resolve(mod),
		scope:   NewScope(),
		globals: make(map[string]Value),
		loading: make(map[string]bool),
		names:   make(map[*ast.FuncLit]map[string]bool),
	}
	in.element = in.stdStruct("Element")
	in.list = in.stdStruct("List")
	in.dict = in.stdStruct("Dict")
	in.str = in.stdStruct("String")
	return in
}

func (in *Interpreter) stdStruct(name string) *Struct {
	if in.std != nil {
		if s, ok := in.std.Members[name].(*Struct); ok {
			return s
		}
	}
	return NewStruct(name)
}

// Host returns the host the interpreter talks to.
func (in *Interpreter) Host() Host { return in.host }

// Std returns the builtin module.
func (in *Interpreter) Std() *Struct { return in.std }

func (in *Interpreter) errorf(code string, span ast.Span, format string, args ...any) error {
	err := &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
	if span != (ast.Span{}) {
		err.Span = &span
	}
	return err
}

// Global returns the value of a module-level name, evaluating it on first
// use.
func (in *Interpreter) Global(name string) (Value, error) {
	return in.global(name, ast.Span{})
}

func (in *Interpreter) global(name string, span ast.Span) (Value, error) {
	if v, ok := in.globals[name]; ok {
		return v, nil
	}
	decl, ok := in.table[name]
	if !ok {
		if name == resolver.BuiltinModule && in.std != nil {
			return in.std, nil
		}
		return nil, in.errorf(diagnostics.EUnbound, span, "unbound name `%s`", name)
	}
	if in.loading[name] {
		return nil, in.errorf(diagnostics.ECycle, span, "`%s` depends on its own value", name)
	}
	in.loading[name] = true
	defer delete(in.loading, name)

	var v Value
	var err error
	switch d := decl.(type) {
	case *ast.VarDecl:
		v, _, err = in.eval(d.Value, in.scope, Context{Kind: Pure})
		nameStruct(v, d.Name)
	case *ast.UseStmt:
		v, err = in.usePath(d)
	default:
		panic(fmt.Sprintf("evaluator: unexpected module declaration %T", decl))
	}
	if err != nil {
		return nil, err
	}
	incRef(v)
	in.globals[name] = v
	return v, nil
}

func (in *Interpreter) usePath(u *ast.UseStmt) (Value, error) {
	if u.Path[0] != resolver.BuiltinModule || in.std == nil {
		return nil, in.errorf(diagnostics.EUnbound, u.Span, "unknown module `%s`", u.Path[0])
	}
	var v Value = in.std
	for _, seg := range u.Path[1:] {
		s, ok := v.(*Struct)
		if !ok {
			return nil, in.errorf(diagnostics.EType, u.Span, "cannot use `%s` from %s", seg, TypeName(v))
		}
		if v, ok = s.Get(seg); !ok {
			return nil, in.errorf(diagnostics.EField, u.Span, "%s has no member `%s`", Inspect(s), seg)
		}
	}
	return v, nil
}

func nameStruct(v Value, name string) {
	if s, ok := v.(*Struct); ok && s.Name == "" {
		s.Name = name
	}
}

// Main returns the module's `pub let main` function.
func (in *Interpreter) Main() (Value, error) {
	decl, ok := in.table["main"].(*ast.VarDecl)
	if !ok {
		return nil, in.errorf(diagnostics.EEntry, ast.Span{}, "module has no `main` declaration")
	}
	if !decl.Pub {
		return nil, in.errorf(diagnostics.EEntry, decl.Span, "`main` must be declared `pub`")
	}
	fn, err := in.global("main", decl.Span)
	if err != nil {
		return nil, err
	}
	switch fn.(type) {
	case *Closure, *Builtin:
		return fn, nil
	}
	return nil, in.errorf(diagnostics.EEntry, decl.Span, "`main` must be a function, got %s", TypeName(fn))
}

// Invoke calls fn with args in cx.
func (in *Interpreter) Invoke(fn Value, args []Value, cx Context) (Value, error) {
	return in.invoke(fn, args, cx, ast.Span{})
}

// Render calls a bound render function in a reactive context rooted at box.
func (in *Interpreter) Render(fn Value, box *SlotContextBox, mappings *ListMappings) (Value, error) {
	return in.invoke(fn, nil, ReactiveContext(box, mappings), ast.Span{})
}

// ExecStatement runs one statement in a persistent mut scope and returns
// its value, or nil for declarations that produce none.
func (in *Interpreter) ExecStatement(stmt ast.Stmt, sc *Scope, mappings *ListMappings) (Value, error) {
	if mappings == nil {
		mappings = NewListMappings()
	}
	return in.exec(stmt, sc, Context{Kind: Mut, Mappings: mappings})
}

// --- statements ---

func (in *Interpreter) execBlock(stmts []ast.Stmt, sc *Scope, cx Context) (Value, error) {
	var last Value
	for _, s := range stmts {
		v, err := in.exec(s, sc, cx)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interpreter) exec(s ast.Stmt, sc *Scope, cx Context) (Value, error) {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		v, _, err := in.eval(stmt.Expr, sc, cx)
		return v, err
	case *ast.VarDecl:
		if stmt.Var == ast.VarSlot {
			return in.declareSlot(stmt, sc, cx)
		}
		v, _, err := in.eval(stmt.Value, sc, cx)
		if err != nil {
			return nil, err
		}
		nameStruct(v, stmt.Name)
		sc.declareLet(stmt.Name, v)
		return v, nil
	case *ast.UseStmt:
		v, err := in.usePath(stmt)
		if err != nil {
			return nil, err
		}
		sc.declareLet(stmt.Name(), v)
		return v, nil
	}
	panic(fmt.Sprintf("evaluator: unexpected statement %T", s))
}

// declareSlot binds a slot. In a reactive context the cell lives in the
// call site's slot context, so the initializer only runs the first time.
func (in *Interpreter) declareSlot(decl *ast.VarDecl, sc *Scope, cx Context) (Value, error) {
	var slots map[ast.Node]*SlotCell
	if cx.Kind == Reactive && cx.Box != nil {
		slots = cx.Box.function().Slots
		if cell, ok := slots[decl]; ok {
			sc.declareSlot(decl.Name, cell)
			return cell.Value, nil
		}
	}
	v, _, err := in.eval(decl.Value, sc, cx)
	if err != nil {
		return nil, err
	}
	incRef(v)
	cell := &SlotCell{Value: v}
	if slots != nil {
		slots[decl] = cell
	}
	sc.declareSlot(decl.Name, cell)
	return v, nil
}

// --- expressions ---

// eval evaluates e and returns its value along with a reference when the
// expression denotes an assignable place.
func (in *Interpreter) eval(e ast.Expr, sc *Scope, cx Context) (Value, Reference, error) {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return Num(expr.Value), nil, nil
	case *ast.BoolLiteral:
		return Bool(expr.Value), nil, nil
	case *ast.StringTemplate:
		v, err := in.evalTemplate(expr, sc, cx)
		return v, nil, err
	case *ast.Ident:
		return in.evalIdent(expr, sc)
	case *ast.FuncLit:
		names, ok := in.names[expr]
		if !ok {
			names = freeNames(expr)
			in.names[expr] = names
		}
		sc.frame.capture(names)
		return &Closure{Def: expr, Scope: sc}, nil, nil
	case *ast.CallExpr:
		v, err := in.evalCall(expr, sc, cx)
		return v, nil, err
	case *ast.MemberExpr:
		return in.evalMember(expr, sc, cx)
	case *ast.IndexExpr:
		return in.evalIndex(expr, sc, cx, false)
	case *ast.UnaryExpr:
		return in.evalUnary(expr, sc, cx)
	case *ast.BinaryExpr:
		return in.evalBinary(expr, sc, cx)
	case *ast.ObjectLit:
		v, err := in.evalObject(expr, sc, cx)
		return v, nil, err
	case *ast.ListLit:
		items := make([]Value, len(expr.Items))
		for i, item := range expr.Items {
			v, _, err := in.eval(item, sc, cx)
			if err != nil {
				return nil, nil, err
			}
			items[i] = v
		}
		return NewList(items...), nil, nil
	case *ast.DictLit:
		d := newDict()
		for _, entry := range expr.Entries {
			k, _, err := in.eval(entry.Key, sc, cx)
			if err != nil {
				return nil, nil, err
			}
			v, _, err := in.eval(entry.Value, sc, cx)
			if err != nil {
				return nil, nil, err
			}
			d.put(in.hashKey(k), k, v)
		}
		return d, nil, nil
	case *ast.StructLit:
		s := NewStruct("")
		for _, m := range expr.Members {
			v, _, err := in.eval(m.Value, sc, cx)
			if err != nil {
				return nil, nil, err
			}
			incRef(v)
			s.Set(m.Name, v)
		}
		return s, nil, nil
	case *ast.IfExpr:
		v, err := in.evalIf(expr, sc, cx)
		return v, nil, err
	case *ast.ElementExpr:
		v, err := in.evalElement(expr, sc, cx)
		return v, nil, err
	}
	panic(fmt.Sprintf("evaluator: unexpected expression %T", e))
}

func (in *Interpreter) evalTemplate(s *ast.StringTemplate, sc *Scope, cx Context) (Value, error) {
	if len(s.Parts) == 1 && s.Parts[0].Expr == nil {
		return Str(s.Parts[0].Text), nil
	}
	var out []byte
	for _, part := range s.Parts {
		if part.Expr == nil {
			out = append(out, part.Text...)
			continue
		}
		v, _, err := in.eval(part.Expr, sc, cx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, in.errorf(diagnostics.EType, part.Expr.NodeSpan(), "cannot interpolate nothing into a string")
		}
		out = append(out, Display(v)...)
	}
	return Str(out), nil
}

func (in *Interpreter) evalIdent(id *ast.Ident, sc *Scope) (Value, Reference, error) {
	b, owner := sc.lookup(id.Name)
	if b == nil {
		v, err := in.global(id.Name, id.Span)
		return v, nil, err
	}
	if b.kind == ast.VarSlot {
		return b.cell.Value, &SlotRef{Cell: b.cell, Name: id.Name}, nil
	}
	if owner.frame == sc.frame {
		return b.value, &LetRef{Scope: owner, Name: id.Name}, nil
	}
	return b.value, nil, nil
}

func (in *Interpreter) evalMember(m *ast.MemberExpr, sc *Scope, cx Context) (Value, Reference, error) {
	target, ref, err := in.eval(m.Target, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	switch t := target.(type) {
	case *Struct:
		v, ok := t.Get(m.Name)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EField, m.Span, "%s has no member `%s`", Inspect(t), m.Name)
		}
		return v, nil, nil
	case *Object:
		v, ok := t.Get(m.Name)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EField, m.Span, "%s has no field `%s`", TypeName(t), m.Name)
		}
		if ref == nil {
			return v, nil, nil
		}
		return v, &FieldRef{Parent: ref, Name: m.Name}, nil
	}
	return nil, nil, in.errorf(diagnostics.EType, m.Span, "cannot access `%s` on %s", m.Name, TypeName(target))
}

// evalIndex evaluates an index expression. When place is set, a missing
// dict key is not an error since the caller is about to assign it.
func (in *Interpreter) evalIndex(ix *ast.IndexExpr, sc *Scope, cx Context, place bool) (Value, Reference, error) {
	target, ref, err := in.eval(ix.Target, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	key, _, err := in.eval(ix.Index, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	switch t := target.(type) {
	case *List:
		n, ok := key.(Num)
		if !ok || n != Num(math.Trunc(float64(n))) || math.Abs(float64(n)) > maxSafeInt {
			return nil, nil, in.errorf(diagnostics.EType, ix.Index.NodeSpan(), "list index must be an integer, got %s", Inspect(key))
		}
		i := int(n)
		if i < 0 || i >= len(t.Items) {
			return nil, nil, in.errorf(diagnostics.EIndex, ix.Span, "index %d out of range for list of length %d", i, len(t.Items))
		}
		if ref == nil {
			return t.Items[i], nil, nil
		}
		return t.Items[i], &IndexRef{Parent: ref, Index: i}, nil
	case *Dict:
		hash := in.hashKey(key)
		var v Value
		j, ok := t.lookup(hash)
		if ok {
			v = t.Entries[j].Value
		} else if !place {
			return nil, nil, in.errorf(diagnostics.EKey, ix.Span, "key %s not found", Inspect(key))
		}
		if ref == nil {
			return v, nil, nil
		}
		return v, &KeyRef{Parent: ref, Key: key, hash: hash}, nil
	}
	return nil, nil, in.errorf(diagnostics.EType, ix.Span, "cannot index %s", TypeName(target))
}

// evalPlace evaluates the left side of an assignment. Missing dict keys
// and object fields are allowed there.
func (in *Interpreter) evalPlace(e ast.Expr, sc *Scope, cx Context) (Reference, error) {
	var ref Reference
	var err error
	switch expr := e.(type) {
	case *ast.IndexExpr:
		_, ref, err = in.evalIndex(expr, sc, cx, true)
	case *ast.MemberExpr:
		var target Value
		var parent Reference
		target, parent, err = in.eval(expr.Target, sc, cx)
		if err != nil {
			return nil, err
		}
		if _, ok := target.(*Object); !ok {
			return nil, in.errorf(diagnostics.EType, expr.Span, "cannot assign `%s` on %s", expr.Name, TypeName(target))
		}
		if parent != nil {
			ref = &FieldRef{Parent: parent, Name: expr.Name}
		}
	default:
		_, ref, err = in.eval(e, sc, cx)
	}
	if err != nil {
		return nil, err
	}
	if ref == nil {
		if id, ok := e.(*ast.Ident); ok {
			return nil, in.errorf(diagnostics.ERef, e.NodeSpan(), "cannot assign to `%s` from here", id.Name)
		}
		return nil, in.errorf(diagnostics.ERef, e.NodeSpan(), "cannot assign to this expression")
	}
	return ref, nil
}

func (in *Interpreter) evalUnary(u *ast.UnaryExpr, sc *Scope, cx Context) (Value, Reference, error) {
	v, ref, err := in.eval(u.Operand, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	switch u.Op {
	case ast.OpRef:
		if ref == nil {
			return nil, nil, in.errorf(diagnostics.ERef, u.Operand.NodeSpan(), "cannot take a reference to this expression")
		}
		return &RefVal{Ref: ref}, nil, nil
	case ast.OpDeref:
		rv, ok := v.(*RefVal)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EType, u.Span, "cannot dereference %s", TypeName(v))
		}
		target, err := in.readRef(rv.Ref, u.Span)
		if err != nil {
			return nil, nil, err
		}
		return target, rv.Ref, nil
	case ast.OpNot:
		b, ok := v.(Bool)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EType, u.Span, "operand of `!` must be a boolean, got %s", TypeName(v))
		}
		return !b, nil, nil
	case ast.OpNeg:
		n, ok := v.(Num)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EType, u.Span, "operand of `-` must be a number, got %s", TypeName(v))
		}
		return -n, nil, nil
	case ast.OpIncr, ast.OpDecr:
		if ref == nil {
			return nil, nil, in.errorf(diagnostics.ERef, u.Operand.NodeSpan(), "operand of `%s` must be assignable", u.Op)
		}
		n, ok := v.(Num)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EType, u.Span, "operand of `%s` must be a number, got %s", u.Op, TypeName(v))
		}
		if u.Op == ast.OpIncr {
			n++
		} else {
			n--
		}
		if err := in.setRef(ref, n, cx, u.Span); err != nil {
			return nil, nil, err
		}
		return n, ref, nil
	}
	panic(fmt.Sprintf("evaluator: unexpected unary operator %q", u.Op))
}

func (in *Interpreter) evalBinary(b *ast.BinaryExpr, sc *Scope, cx Context) (Value, Reference, error) {
	switch b.Op {
	case ast.OpAssign:
		ref, err := in.evalPlace(b.Left, sc, cx)
		if err != nil {
			return nil, nil, err
		}
		v, _, err := in.eval(b.Right, sc, cx)
		if err != nil {
			return nil, nil, err
		}
		if err := in.setRef(ref, v, cx, b.Span); err != nil {
			return nil, nil, err
		}
		return v, ref, nil
	case ast.OpAnd, ast.OpOr:
		left, err := in.evalBool(b.Left, b.Op, sc, cx)
		if err != nil {
			return nil, nil, err
		}
		if (b.Op == ast.OpAnd) != bool(left) {
			return left, nil, nil
		}
		right, err := in.evalBool(b.Right, b.Op, sc, cx)
		return right, nil, err
	}

	left, _, err := in.eval(b.Left, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	right, _, err := in.eval(b.Right, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	switch b.Op {
	case ast.OpEqEq:
		return Bool(Equal(left, right)), nil, nil
	case ast.OpNeq:
		return Bool(!Equal(left, right)), nil, nil
	}

	x, xok := left.(Num)
	y, yok := right.(Num)
	if !xok || !yok {
		return nil, nil, in.errorf(diagnostics.EType, b.Span, "operands of `%s` must be numbers, got %s and %s", b.Op, TypeName(left), TypeName(right))
	}
	switch b.Op {
	case ast.OpLt:
		return Bool(x < y), nil, nil
	case ast.OpGt:
		return Bool(x > y), nil, nil
	case ast.OpLtEq:
		return Bool(x <= y), nil, nil
	case ast.OpGtEq:
		return Bool(x >= y), nil, nil
	case ast.OpAdd:
		return x + y, nil, nil
	case ast.OpSub:
		return x - y, nil, nil
	case ast.OpMul:
		return x * y, nil, nil
	case ast.OpDiv:
		if y == 0 {
			return nil, nil, in.errorf(diagnostics.EDivZero, b.Span, "division by zero")
		}
		return x / y, nil, nil
	}
	panic(fmt.Sprintf("evaluator: unexpected binary operator %q", b.Op))
}

func (in *Interpreter) evalBool(e ast.Expr, op ast.BinaryOp, sc *Scope, cx Context) (Bool, error) {
	v, _, err := in.eval(e, sc, cx)
	if err != nil {
		return false, err
	}
	b, ok := v.(Bool)
	if !ok {
		return false, in.errorf(diagnostics.EType, e.NodeSpan(), "operands of `%s` must be booleans, got %s", op, TypeName(v))
	}
	return b, nil
}

func (in *Interpreter) evalObject(o *ast.ObjectLit, sc *Scope, cx Context) (Value, error) {
	var tag *Struct
	if o.Tag != nil {
		v, _, err := in.eval(o.Tag, sc, cx)
		if err != nil {
			return nil, err
		}
		s, ok := v.(*Struct)
		if !ok {
			return nil, in.errorf(diagnostics.EType, o.Tag.NodeSpan(), "object tag must be a struct, got %s", TypeName(v))
		}
		tag = s
	}
	obj := NewObject(tag)
	for _, f := range o.Fields {
		v, _, err := in.eval(f.Value, sc, cx)
		if err != nil {
			return nil, err
		}
		if old, ok := obj.Get(f.Name); ok {
			decRef(old)
		}
		obj.Set(f.Name, v)
	}
	return obj, nil
}

func (in *Interpreter) evalIf(e *ast.IfExpr, sc *Scope, cx Context) (Value, error) {
	v, _, err := in.eval(e.Cond, sc, cx)
	if err != nil {
		return nil, err
	}
	cond, ok := v.(Bool)
	if !ok {
		return nil, in.errorf(diagnostics.EType, e.Cond.NodeSpan(), "`if` condition must be a boolean, got %s", TypeName(v))
	}
	if cond {
		return in.execBlock(e.Then, sc.child(), cx)
	}
	if e.Else != nil {
		return in.execBlock(e.Else, sc.child(), cx)
	}
	return nil, nil
}

func (in *Interpreter) evalElement(el *ast.ElementExpr, sc *Scope, cx Context) (Value, error) {
	attrs := NewObject(nil)
	for _, a := range el.Attrs {
		v, _, err := in.eval(a.Value, sc, cx)
		if err != nil {
			return nil, err
		}
		attrs.Set(a.Name, v)
	}
	children := make([]Value, len(el.Children))
	for i, child := range el.Children {
		v, _, err := in.eval(child, sc, cx)
		if err != nil {
			return nil, err
		}
		children[i] = v
	}
	return NewElement(in.element, el.Tag, attrs, NewList(children...)), nil
}

// NewElement builds a markup value tagged with the Element struct.
func NewElement(tag *Struct, name string, attrs *Object, children *List) *Object {
	return NewObject(tag,
		Field{Name: "tag", Value: Str(name)},
		Field{Name: "attributes", Value: attrs},
		Field{Name: "children", Value: children},
	)
}

// Element unpacks a markup value.
func (in *Interpreter) Element(v Value) (tag string, attrs *Object, children *List, ok bool) {
	obj, isObj := v.(*Object)
	if !isObj || obj.Tag != in.element {
		return "", nil, nil, false
	}
	t, _ := obj.Get("tag")
	a, _ := obj.Get("attributes")
	c, _ := obj.Get("children")
	tagStr, ok1 := t.(Str)
	attrs, ok2 := a.(*Object)
	children, ok3 := c.(*List)
	if !ok1 || !ok2 || !ok3 {
		return "", nil, nil, false
	}
	return string(tagStr), attrs, children, true
}

// --- calls ---

func (in *Interpreter) evalCall(call *ast.CallExpr, sc *Scope, cx Context) (Value, error) {
	var fn Value
	var args []Value
	if m, ok := call.Callee.(*ast.MemberExpr); ok {
		method, self, err := in.method(m, sc, cx)
		if err != nil {
			return nil, err
		}
		fn = method
		if self != nil {
			args = append(args, self)
		}
	} else {
		v, _, err := in.eval(call.Callee, sc, cx)
		if err != nil {
			return nil, err
		}
		fn = v
	}
	for _, a := range call.Args {
		v, _, err := in.eval(a, sc, cx)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	callee := cx
	if cx.Kind == Reactive && cx.Box != nil {
		callee.Box = cx.Box.sub(call)
	}
	return in.invoke(fn, args, callee, call.Span)
}

// method resolves the callee of `target.name(...)`. Struct members and
// object fields are called as they are; otherwise name is looked up on the
// value's struct and the target is passed as the first argument, by
// reference when the method is mut.
func (in *Interpreter) method(m *ast.MemberExpr, sc *Scope, cx Context) (Value, Value, error) {
	target, ref, err := in.eval(m.Target, sc, cx)
	if err != nil {
		return nil, nil, err
	}
	var ns *Struct
	switch t := target.(type) {
	case *Struct:
		v, ok := t.Get(m.Name)
		if !ok {
			return nil, nil, in.errorf(diagnostics.EField, m.Span, "%s has no member `%s`", Inspect(t), m.Name)
		}
		return v, nil, nil
	case *Object:
		if v, ok := t.Get(m.Name); ok {
			return v, nil, nil
		}
		ns = t.Tag
	case *List:
		ns = in.list
	case *Dict:
		ns = in.dict
	case Str:
		ns = in.str
	}
	if ns == nil {
		return nil, nil, in.errorf(diagnostics.EType, m.Span, "%s has no method `%s`", TypeName(target), m.Name)
	}
	fn, ok := ns.Get(m.Name)
	if !ok {
		return nil, nil, in.errorf(diagnostics.EField, m.Span, "%s has no method `%s`", TypeName(target), m.Name)
	}
	if !IsMut(fn) {
		return fn, target, nil
	}
	if ref == nil {
		return nil, nil, in.errorf(diagnostics.ERef, m.Target.NodeSpan(), "`%s` mutates its receiver, which must be assignable", m.Name)
	}
	return fn, &RefVal{Ref: ref}, nil
}

func (in *Interpreter) invoke(fn Value, args []Value, cx Context, span ast.Span) (Value, error) {
	switch f := fn.(type) {
	case *Builtin:
		if f.Mut && cx.Kind != Mut {
			return nil, in.errorf(diagnostics.EContext, span, "cannot call mut function `%s` from a %s context", f.Name, cx.Kind)
		}
		return f.Fn(&Call{In: in, Ctx: cx, Span: span, Name: f.Name}, args)
	case *Closure:
		if f.Def.Mut && cx.Kind != Mut {
			return nil, in.errorf(diagnostics.EContext, span, "cannot call a mut function from a %s context", cx.Kind)
		}
		if len(args) != len(f.Def.Params) {
			return nil, in.errorf(diagnostics.EArgs, span, "function takes %d arguments, got %d", len(f.Def.Params), len(args))
		}
		inner := cx
		if cx.Kind == Mut && !f.Def.Mut {
			inner = Context{Kind: Pure}
		}
		fr := &frame{}
		sc := newScope(f.Scope, fr)
		for i, p := range f.Def.Params {
			sc.declareLet(p.Name, args[i])
		}
		v, err := in.execBlock(f.Def.Body, sc, inner)
		// The result outlives the frame, so it is held while locals are
		// released.
		incRef(v)
		fr.release()
		decRef(v)
		return v, err
	}
	return nil, in.errorf(diagnostics.EType, span, "%s is not callable", TypeName(fn))
}
