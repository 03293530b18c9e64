// Package formatter implements the iko source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
)

const indent = "  "

// maxInline is the longest single-line rendering of a literal before it is
// split across lines.
const maxInline = 72

const precPrimary = 100

func exprPrec(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.BinaryExpr:
		return parser.BinaryPrecedence(e.Op)
	case *ast.UnaryExpr:
		return parser.UnaryPrecedence(e.Op)
	case *ast.MemberExpr:
		return parser.PrecMember
	case *ast.CallExpr, *ast.IndexExpr:
		return parser.PrecCall
	case *ast.ObjectLit:
		if e.Tag != nil {
			return parser.PrecCall
		}
	}
	return precPrimary
}

func needsParens(child ast.Expr, parentOp ast.BinaryOp, isRight bool) bool {
	if _, ok := child.(*ast.BinaryExpr); !ok {
		return false
	}
	childPrec := exprPrec(child)
	parentPrec := parser.BinaryPrecedence(parentOp)
	if childPrec < parentPrec {
		return true
	}
	if childPrec == parentPrec {
		// Assignment groups to the right, everything else to the left.
		return isRight != (parentOp == ast.OpAssign)
	}
	return false
}

// needsPostfixParens reports whether target must be wrapped before a
// postfix operator is applied to it. Postfix operators chain freely, and
// only `^` binds tighter than them.
func needsPostfixParens(target ast.Expr) bool {
	switch t := target.(type) {
	case *ast.BinaryExpr:
		return true
	case *ast.UnaryExpr:
		if t.Op != ast.OpDeref {
			return true
		}
		_, nested := t.Operand.(*ast.UnaryExpr)
		return nested
	}
	return false
}

// Format pretty-prints a module back to source code.
func Format(mod *ast.Module) string {
	var b strings.Builder
	prevMulti := false
	for i, d := range mod.Decls {
		text := formatStmt(d, 0)
		multi := strings.Contains(text, "\n")
		if i > 0 && (multi || prevMulti) {
			b.WriteString("\n")
		}
		b.WriteString(text)
		b.WriteString("\n")
		prevMulti = multi
	}
	return b.String()
}

// FormatExpr pretty-prints a single expression.
func FormatExpr(e ast.Expr) string {
	return formatExpr(e, 0)
}

// HasComments reports whether source contains `//` comments, which the
// formatter does not preserve.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '\n':
			inString = false
		case '/':
			if !inString && i+1 < len(source) && source[i+1] == '/' {
				return true
			}
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.VarDecl:
		out := prefix
		if stmt.Pub {
			out += "pub "
		}
		return out + string(stmt.Var) + " " + stmt.Name + " = " + formatExpr(stmt.Value, depth)
	case *ast.UseStmt:
		return prefix + "use " + strings.Join(stmt.Path, ".")
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr, depth)
	}
	return ""
}

// formatBlock renders `{ ... }` with the statements indented one level.
func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.StringTemplate:
		return formatString(expr, depth)
	case *ast.Ident:
		return expr.Name
	case *ast.FuncLit:
		params := make([]string, len(expr.Params))
		for i, p := range expr.Params {
			params[i] = p.Name
		}
		out := "(" + strings.Join(params, ", ") + ") " + formatBlock(expr.Body, depth)
		if expr.Mut {
			out = "mut " + out
		}
		return out
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a, depth)
		}
		return postfixTarget(expr.Callee, depth) + "(" + strings.Join(args, ", ") + ")"
	case *ast.MemberExpr:
		return postfixTarget(expr.Target, depth) + "." + expr.Name
	case *ast.IndexExpr:
		return postfixTarget(expr.Target, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.UnaryExpr:
		operand := formatExpr(expr.Operand, depth)
		_, nested := expr.Operand.(*ast.UnaryExpr)
		if nested || exprPrec(expr.Operand) < parser.UnaryPrecedence(expr.Op) {
			operand = "(" + operand + ")"
		}
		return string(expr.Op) + operand
	case *ast.BinaryExpr:
		left := formatExpr(expr.Left, depth)
		right := formatExpr(expr.Right, depth)
		if needsParens(expr.Left, expr.Op, false) {
			left = "(" + left + ")"
		}
		if needsParens(expr.Right, expr.Op, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(expr.Op) + " " + right
	case *ast.ObjectLit:
		fields := make([]string, len(expr.Fields))
		for i, f := range expr.Fields {
			fields[i] = f.Name + ": " + formatExpr(f.Value, depth+1)
		}
		out := enclose("{ ", "{", fields, " }", "}", depth)
		if expr.Tag != nil {
			out = formatExpr(expr.Tag, depth) + " " + out
		}
		return out
	case *ast.ListLit:
		items := make([]string, len(expr.Items))
		for i, item := range expr.Items {
			items[i] = formatExpr(item, depth+1)
		}
		return enclose("[", "[", items, "]", "]", depth)
	case *ast.DictLit:
		entries := make([]string, len(expr.Entries))
		for i, entry := range expr.Entries {
			entries[i] = formatExpr(entry.Key, depth+1) + ": " + formatExpr(entry.Value, depth+1)
		}
		return "dict " + enclose("[ ", "[", entries, " ]", "]", depth)
	case *ast.StructLit:
		members := make([]string, len(expr.Members))
		for i, m := range expr.Members {
			members[i] = m.Name + ": " + formatExpr(m.Value, depth+1)
		}
		return "struct " + enclose("{ ", "{", members, " }", "}", depth)
	case *ast.IfExpr:
		out := "if (" + formatExpr(expr.Cond, depth) + ") " + formatBlock(expr.Then, depth)
		if expr.Else != nil {
			out += " else " + formatBlock(expr.Else, depth)
		}
		return out
	case *ast.ElementExpr:
		return formatElement(expr, depth)
	}
	return ""
}

func postfixTarget(target ast.Expr, depth int) string {
	out := formatExpr(target, depth)
	if needsPostfixParens(target) {
		return "(" + out + ")"
	}
	return out
}

// enclose renders items inline when short, one per line otherwise.
func enclose(open, openMulti string, items []string, closing, closeMulti string, depth int) string {
	if len(items) == 0 {
		return strings.TrimSpace(open) + strings.TrimSpace(closing)
	}
	inline := open + strings.Join(items, ", ") + closing
	if len(inline) <= maxInline && !strings.Contains(inline, "\n") {
		return inline
	}
	inner := strings.Repeat(indent, depth+1)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = inner + item
	}
	return openMulti + "\n" + strings.Join(parts, ",\n") + "\n" + strings.Repeat(indent, depth) + closeMulti
}

func formatString(s *ast.StringTemplate, depth int) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, part := range s.Parts {
		if part.Expr != nil {
			b.WriteString("{" + formatExpr(part.Expr, depth) + "}")
			continue
		}
		b.WriteString(escapeText(part.Text))
	}
	b.WriteByte('"')
	return b.String()
}

func escapeText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '{':
			b.WriteString(`\{`)
		case '}':
			b.WriteString(`\}`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatElement(el *ast.ElementExpr, depth int) string {
	var b strings.Builder
	b.WriteString("<" + el.Tag)
	for _, a := range el.Attrs {
		b.WriteString(" " + a.Name + "=")
		if s, ok := a.Value.(*ast.StringTemplate); ok {
			b.WriteString(formatString(s, depth))
		} else {
			b.WriteString("{" + formatExpr(a.Value, depth) + "}")
		}
	}
	if el.SelfClosing {
		b.WriteString(" />")
		return b.String()
	}
	b.WriteString(">")
	for i, child := range el.Children {
		if s, ok := child.(*ast.StringTemplate); ok && rawText(s, i == 0, i == len(el.Children)-1) {
			b.WriteString(s.Parts[0].Text)
			continue
		}
		if inner, ok := child.(*ast.ElementExpr); ok {
			b.WriteString(formatElement(inner, depth))
			continue
		}
		b.WriteString("{" + formatExpr(child, depth) + "}")
	}
	b.WriteString("</" + el.Tag + ">")
	return b.String()
}

// rawText reports whether a text child survives markup whitespace rules
// when written without braces.
func rawText(s *ast.StringTemplate, first, last bool) bool {
	if len(s.Parts) != 1 || s.Parts[0].Expr != nil {
		return false
	}
	text := s.Parts[0].Text
	if text == "" || strings.ContainsAny(text, "<{\n\r\t") || strings.Contains(text, "  ") {
		return false
	}
	if first && text[0] == ' ' {
		return false
	}
	if last && text[len(text)-1] == ' ' {
		return false
	}
	return true
}
