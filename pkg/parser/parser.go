// Package parser implements the iko language parser.
//
// Expressions are parsed by precedence climbing over a fixed operator
// order. Statements, blocks, declarations and embedded markup have their
// own sub-parsers that share one memoizing lexer.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/lexer"
)

// SyntaxError is raised for lex and parse failures. Incomplete is set when
// the only problem is that the input ended where more was required.
type SyntaxError struct {
	Diag       diagnostics.Diagnostic
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return e.Diag.Message
}

// IsIncomplete reports whether err is a syntax error caused only by
// reaching the end of input.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

// Precedence levels, lowest first.
const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precCompare
	precAdd
	precMul
	precIncr
	precNot
	precRef
	precMember
	precCall
	precDeref
)

var binaryOps = map[string]struct {
	prec int
	op   ast.BinaryOp
}{
	"=":  {precAssign, ast.OpAssign},
	"||": {precOr, ast.OpOr},
	"&&": {precAnd, ast.OpAnd},
	"==": {precCompare, ast.OpEqEq},
	"!=": {precCompare, ast.OpNeq},
	"<":  {precCompare, ast.OpLt},
	">":  {precCompare, ast.OpGt},
	"<=": {precCompare, ast.OpLtEq},
	">=": {precCompare, ast.OpGtEq},
	"+":  {precAdd, ast.OpAdd},
	"-":  {precAdd, ast.OpSub},
	"*":  {precMul, ast.OpMul},
	"/":  {precMul, ast.OpDiv},
}

var prefixOps = map[string]struct {
	prec int
	op   ast.UnaryOp
}{
	"++": {precIncr, ast.OpIncr},
	"--": {precIncr, ast.OpDecr},
	"!":  {precNot, ast.OpNot},
	"-":  {precNot, ast.OpNeg},
	"&":  {precRef, ast.OpRef},
	"^":  {precDeref, ast.OpDeref},
}

// BinaryPrecedence returns the precedence level of a binary operator.
// The formatter uses it to decide where parentheses are needed.
func BinaryPrecedence(op ast.BinaryOp) int {
	for _, b := range binaryOps {
		if b.op == op {
			return b.prec
		}
	}
	return precLowest
}

// UnaryPrecedence returns the precedence level of a prefix operator.
func UnaryPrecedence(op ast.UnaryOp) int {
	for _, u := range prefixOps {
		if u.op == op {
			return u.prec
		}
	}
	return precLowest
}

// Postfix precedence levels, exported for the formatter.
const (
	PrecMember = precMember
	PrecCall   = precCall
)

type parser struct {
	lex  *lexer.Lexer
	st   lexer.State
	last ast.Span // span of the last consumed token
}

func newParser(source, filename string) *parser {
	p := &parser{lex: lexer.New(source, filename), st: lexer.Start()}
	p.lex.Embed = p.embed
	return p
}

// Parse parses a module.
func Parse(source, filename string) (*ast.Module, error) {
	p := newParser(source, filename)
	return p.parseModule()
}

// ParseStatement parses exactly one function-level statement, as typed at
// an interactive prompt.
func ParseStatement(source, filename string) (ast.Stmt, error) {
	p := newParser(source, filename)
	if err := p.skipSeparators(); err != nil {
		return nil, err
	}
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if err := p.skipSeparators(); err != nil {
		return nil, err
	}
	tok, err := p.peek(lexer.Default)
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokEnd {
		return nil, p.errorAt(tok, fmt.Sprintf("expected a single statement, got %s", describe(tok)))
	}
	return stmt, nil
}

// ParseExpr parses a single expression.
func ParseExpr(source, filename string) (ast.Expr, error) {
	p := newParser(source, filename)
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	tok, err := p.peek(lexer.Default)
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokEnd {
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected %s after expression", describe(tok)))
	}
	return expr, nil
}

// Tokens parses a module and returns its semantic tokens. On a syntax
// error the tokens classified so far are returned with the error.
func Tokens(source, filename string) ([]lexer.SemanticToken, error) {
	p := newParser(source, filename)
	_, err := p.parseModule()
	return p.lex.SemanticTokens(), err
}

// --- token plumbing ---

func (p *parser) peek(pl lexer.Placement) (lexer.Token, error) {
	tok, _, err := p.lex.Next(p.st, pl)
	if err != nil {
		return tok, p.wrapLexError(err)
	}
	return tok, nil
}

func (p *parser) next(pl lexer.Placement) (lexer.Token, error) {
	tok, next, err := p.lex.Next(p.st, pl)
	if err != nil {
		return tok, p.wrapLexError(err)
	}
	p.st = next
	p.last = tok.Span
	return tok, nil
}

func (p *parser) wrapLexError(err error) error {
	var le *lexer.LexError
	if errors.As(err, &le) {
		return &SyntaxError{Diag: le.Diag}
	}
	return err
}

// peekOp reports whether the next token is the operator or keyword text.
func (p *parser) peekOp(text string, pl lexer.Placement) (bool, error) {
	tok, err := p.peek(pl)
	if err != nil {
		return false, err
	}
	return tok.Is(text), nil
}

func (p *parser) expectOp(text string, pl lexer.Placement) (lexer.Token, error) {
	tok, err := p.peek(pl)
	if err != nil {
		return tok, err
	}
	if !tok.Is(text) {
		return tok, p.unexpected(tok, fmt.Sprintf("`%s`", text))
	}
	return p.next(pl)
}

func (p *parser) expectIdent(pl lexer.Placement) (lexer.Token, error) {
	tok, err := p.peek(pl)
	if err != nil {
		return tok, err
	}
	if tok.Type != lexer.TokIdent {
		return tok, p.unexpected(tok, "a name")
	}
	return p.next(pl)
}

func (p *parser) skipNewlines() error {
	for {
		tok, err := p.peek(lexer.Default)
		if err != nil {
			return err
		}
		if tok.Type != lexer.TokNewline {
			return nil
		}
		if _, err := p.next(lexer.Default); err != nil {
			return err
		}
	}
}

func (p *parser) skipSeparators() error {
	for {
		tok, err := p.peek(lexer.Default)
		if err != nil {
			return err
		}
		if tok.Type != lexer.TokNewline && !tok.Is(";") {
			return nil
		}
		if _, err := p.next(lexer.Default); err != nil {
			return err
		}
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokEnd, lexer.TokNewline, lexer.TokString:
		return tok.Type.String()
	case lexer.TokTagStart:
		return "`<`"
	default:
		return fmt.Sprintf("`%s`", tok.Value)
	}
}

func (p *parser) errorAt(tok lexer.Token, msg string) error {
	span := tok.Span
	return &SyntaxError{Diag: diagnostics.MakeDiag(diagnostics.EParse, msg, &span, "")}
}

// unexpected reports that want was expected at tok, flagging the error as
// incomplete when tok is the end of input.
func (p *parser) unexpected(tok lexer.Token, want string) error {
	span := tok.Span
	if tok.Type == lexer.TokEnd {
		msg := fmt.Sprintf("unexpected end of input, expected %s", want)
		return &SyntaxError{Diag: diagnostics.MakeDiag(diagnostics.EIncomplete, msg, &span, ""), Incomplete: true}
	}
	return p.errorAt(tok, fmt.Sprintf("expected %s, got %s", want, describe(tok)))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// spanFrom closes a span at the end of the last consumed token.
func (p *parser) spanFrom(start ast.Span) ast.Span {
	return p.spanFromTo(start, p.last)
}

// embed parses a `{expr}` interpolation inside a string literal.
func (p *parser) embed(start lexer.State) (ast.Expr, lexer.State, error) {
	saved, savedLast := p.st, p.last
	defer func() { p.st, p.last = saved, savedLast }()

	p.st = start
	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, start, err
	}
	if _, err := p.expectOp("}", lexer.Default); err != nil {
		return nil, start, err
	}
	return expr, p.st, nil
}

// --- Module ---

func (p *parser) parseModule() (*ast.Module, error) {
	start, err := p.peek(lexer.Default)
	if err != nil {
		return nil, err
	}
	mod := &ast.Module{}
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		tok, err := p.peek(lexer.Default)
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.TokEnd {
			break
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		mod.Decls = append(mod.Decls, decl)
		if err := p.expectTerminator(false); err != nil {
			return nil, err
		}
	}
	mod.Span = p.spanFrom(start.Span)
	return mod, nil
}

func (p *parser) parseDecl() (ast.Stmt, error) {
	tok, err := p.peek(lexer.Default)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Is("pub"):
		p.next(lexer.Default)
		letTok, err := p.peek(lexer.Default)
		if err != nil {
			return nil, err
		}
		if !letTok.Is("let") {
			return nil, p.unexpected(letTok, "`let` after `pub`")
		}
		decl, err := p.parseVarDecl(ast.VarLet)
		if err != nil {
			return nil, err
		}
		decl.Pub = true
		decl.Span = p.spanFrom(tok.Span)
		return decl, nil
	case tok.Is("let"):
		return p.parseVarDecl(ast.VarLet)
	case tok.Is("use"):
		return p.parseUse()
	default:
		return nil, p.unexpected(tok, "a `let` or `use` declaration")
	}
}

// expectTerminator requires a statement to be followed by a newline, `;`,
// the end of input, or (inside blocks) a closing brace.
func (p *parser) expectTerminator(inBlock bool) error {
	tok, err := p.peek(lexer.Default)
	if err != nil {
		return err
	}
	switch {
	case tok.Type == lexer.TokNewline, tok.Is(";"):
		return nil
	case tok.Type == lexer.TokEnd:
		if inBlock {
			return p.unexpected(tok, "`}`")
		}
		return nil
	case inBlock && tok.Is("}"):
		return nil
	}
	return p.errorAt(tok, fmt.Sprintf("expected newline or `;` after statement, got %s", describe(tok)))
}

// --- Statements ---

func (p *parser) parseStmt() (ast.Stmt, error) {
	tok, err := p.peek(lexer.PrimitiveExp)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Is("let"):
		return p.parseVarDecl(ast.VarLet)
	case tok.Is("slot"):
		return p.parseVarDecl(ast.VarSlot)
	case tok.Is("use"):
		return p.parseUse()
	case tok.Is("pub"):
		return nil, p.errorAt(tok, "`pub` is only allowed on module-level declarations")
	}
	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Span: expr.NodeSpan(), Expr: expr}, nil
}

func (p *parser) parseVarDecl(kind ast.VarKind) (*ast.VarDecl, error) {
	start, err := p.next(lexer.Default) // consume 'let' or 'slot'
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent(lexer.Default)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("=", lexer.Default); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{
		Span:  p.spanFromTo(start.Span, value.NodeSpan()),
		Var:   kind,
		Name:  name.Value,
		Value: value,
	}, nil
}

func (p *parser) parseUse() (*ast.UseStmt, error) {
	start, err := p.next(lexer.Default) // consume 'use'
	if err != nil {
		return nil, err
	}
	first, err := p.expectIdent(lexer.Default)
	if err != nil {
		return nil, err
	}
	path := []string{first.Value}
	for {
		dot, err := p.peekOp(".", lexer.Default)
		if err != nil {
			return nil, err
		}
		if !dot {
			break
		}
		p.next(lexer.Default)
		seg, err := p.expectIdent(lexer.Default)
		if err != nil {
			return nil, err
		}
		path = append(path, seg.Value)
	}
	return &ast.UseStmt{Span: p.spanFrom(start.Span), Path: path}, nil
}

// parseBlock parses `{ stmts }`.
func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expectOp("{", lexer.Default); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		tok, err := p.peek(lexer.PrimitiveExp)
		if err != nil {
			return nil, err
		}
		if tok.Is("}") {
			p.next(lexer.Default)
			return stmts, nil
		}
		if tok.Type == lexer.TokEnd {
			return nil, p.unexpected(tok, "`}`")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if err := p.expectTerminator(true); err != nil {
			return nil, err
		}
	}
}

// parseEnumeration parses the items of a bracketed, comma or newline
// separated list after its opening token, up to and including closing.
// A trailing separator is allowed.
func (p *parser) parseEnumeration(closing string, item func() error) error {
	for {
		if err := p.skipNewlines(); err != nil {
			return err
		}
		tok, err := p.peek(lexer.PrimitiveExp)
		if err != nil {
			return err
		}
		if tok.Is(closing) {
			_, err := p.next(lexer.PrimitiveExp)
			return err
		}
		if tok.Type == lexer.TokEnd {
			return p.unexpected(tok, fmt.Sprintf("`%s`", closing))
		}
		if err := item(); err != nil {
			return err
		}

		sep, err := p.peek(lexer.Default)
		if err != nil {
			return err
		}
		switch {
		case sep.Is(","), sep.Type == lexer.TokNewline:
			p.next(lexer.Default)
		case sep.Is(closing):
			_, err := p.next(lexer.Default)
			return err
		default:
			return p.unexpected(sep, fmt.Sprintf("`,` or `%s`", closing))
		}
	}
}

// --- Expressions ---

func (p *parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek(lexer.Default)
		if err != nil {
			return nil, err
		}
		if tok.Type != lexer.TokOperator {
			return left, nil
		}

		if bin, ok := binaryOps[tok.Value]; ok {
			if bin.prec < minPrec {
				return left, nil
			}
			p.next(lexer.Default)
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			nextMin := bin.prec + 1
			if bin.op == ast.OpAssign {
				nextMin = bin.prec
			}
			right, err := p.parseExpr(nextMin)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{
				Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
				Op:    bin.op,
				Left:  left,
				Right: right,
			}
			continue
		}

		switch {
		case tok.Value == "." && precMember >= minPrec:
			p.next(lexer.Default)
			name, err := p.peek(lexer.Default)
			if err != nil {
				return nil, err
			}
			if name.Type != lexer.TokIdent && name.Type != lexer.TokKeyword {
				return nil, p.unexpected(name, "a member name")
			}
			p.next(lexer.Default)
			left = &ast.MemberExpr{Span: p.spanFrom(left.NodeSpan()), Target: left, Name: name.Value}
		case tok.Value == "(" && precCall >= minPrec:
			p.next(lexer.Default)
			var args []ast.Expr
			err := p.parseEnumeration(")", func() error {
				arg, err := p.parseExpr(precLowest)
				args = append(args, arg)
				return err
			})
			if err != nil {
				return nil, err
			}
			left = &ast.CallExpr{Span: p.spanFrom(left.NodeSpan()), Callee: left, Args: args}
		case tok.Value == "[" && precCall >= minPrec:
			p.next(lexer.Default)
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			index, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			if _, err := p.expectOp("]", lexer.Default); err != nil {
				return nil, err
			}
			left = &ast.IndexExpr{Span: p.spanFrom(left.NodeSpan()), Target: left, Index: index}
		case tok.Value == "{" && precCall >= minPrec && isTagExpr(left):
			p.next(lexer.Default)
			fields, err := p.parseFields()
			if err != nil {
				return nil, err
			}
			left = &ast.ObjectLit{Span: p.spanFrom(left.NodeSpan()), Tag: left, Fields: fields}
		default:
			return left, nil
		}
	}
}

// isTagExpr reports whether e may prefix an object literal as its struct tag.
func isTagExpr(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return true
	case *ast.MemberExpr:
		return isTagExpr(e.Target)
	}
	return false
}

func (p *parser) parseUnary() (ast.Expr, error) {
	tok, err := p.peek(lexer.PrimitiveExp)
	if err != nil {
		return nil, err
	}
	if tok.Type == lexer.TokOperator {
		if pre, ok := prefixOps[tok.Value]; ok {
			p.next(lexer.PrimitiveExp)
			operand, err := p.parseExpr(pre.prec)
			if err != nil {
				return nil, err
			}
			return &ast.UnaryExpr{
				Span:    p.spanFromTo(tok.Span, operand.NodeSpan()),
				Op:      pre.op,
				Operand: operand,
			}, nil
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok, err := p.peek(lexer.PrimitiveExp)
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.TokEnd, lexer.TokNewline:
		return nil, p.unexpected(tok, "an expression")
	case lexer.TokInteger:
		p.next(lexer.PrimitiveExp)
		return &ast.IntLiteral{Span: tok.Span, Value: tok.Int}, nil
	case lexer.TokString:
		p.next(lexer.PrimitiveExp)
		return &ast.StringTemplate{Span: tok.Span, Parts: tok.Parts}, nil
	case lexer.TokIdent:
		p.next(lexer.PrimitiveExp)
		return &ast.Ident{Span: tok.Span, Name: tok.Value}, nil
	case lexer.TokTagStart:
		return p.parseElement()
	case lexer.TokKeyword:
		switch tok.Value {
		case "true", "false":
			p.next(lexer.PrimitiveExp)
			return &ast.BoolLiteral{Span: tok.Span, Value: tok.Value == "true"}, nil
		case "if":
			return p.parseIf()
		case "struct":
			return p.parseStruct()
		case "dict":
			return p.parseDict()
		case "mut":
			p.next(lexer.PrimitiveExp)
			if _, err := p.expectOp("(", lexer.Default); err != nil {
				return nil, err
			}
			params, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			return p.parseFunctionBody(tok.Span, params, true)
		}
	case lexer.TokOperator:
		switch tok.Value {
		case "(":
			return p.parseParenthesized()
		case "[":
			return p.parseList()
		case "{":
			start, _ := p.next(lexer.PrimitiveExp)
			fields, err := p.parseFields()
			if err != nil {
				return nil, err
			}
			return &ast.ObjectLit{Span: p.spanFrom(start.Span), Fields: fields}, nil
		}
	}
	return nil, p.errorAt(tok, fmt.Sprintf("unexpected %s, expected an expression", describe(tok)))
}

// parseParenthesized disambiguates a function literal from a grouping by
// backtracking: an identifier list followed by `{` is a function.
func (p *parser) parseParenthesized() (ast.Expr, error) {
	open, err := p.next(lexer.PrimitiveExp)
	if err != nil {
		return nil, err
	}
	saved, savedLast := p.st, p.last

	if params, err := p.parseParams(); err == nil {
		brace, err := p.peekOp("{", lexer.Default)
		if err != nil {
			return nil, err
		}
		if brace {
			return p.parseFunctionBody(open.Span, params, false)
		}
	}

	p.st, p.last = saved, savedLast
	var items []ast.Expr
	err = p.parseEnumeration(")", func() error {
		item, err := p.parseExpr(precLowest)
		items = append(items, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	closeSpan := p.last

	brace, err := p.peekOp("{", lexer.Default)
	if err != nil {
		return nil, err
	}
	switch {
	case brace:
		return nil, p.errorAt(lexer.Token{Span: open.Span}, "function parameters must be plain names")
	case len(items) == 0:
		return nil, p.errorAt(lexer.Token{Span: closeSpan}, "expected an expression inside parentheses")
	case len(items) > 1:
		return nil, p.errorAt(lexer.Token{Span: items[1].NodeSpan()}, "unexpected second expression inside parentheses")
	}
	return items[0], nil
}

// parseParams parses `a, b)` after an opening parenthesis.
func (p *parser) parseParams() ([]*ast.Param, error) {
	var params []*ast.Param
	err := p.parseEnumeration(")", func() error {
		name, err := p.expectIdent(lexer.PrimitiveExp)
		if err != nil {
			return err
		}
		params = append(params, &ast.Param{Span: name.Span, Name: name.Value})
		return nil
	})
	return params, err
}

func (p *parser) parseFunctionBody(start ast.Span, params []*ast.Param, mut bool) (ast.Expr, error) {
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncLit{Span: p.spanFrom(start), Mut: mut, Params: params, Body: body}, nil
}

func (p *parser) parseList() (ast.Expr, error) {
	start, err := p.next(lexer.PrimitiveExp) // consume '['
	if err != nil {
		return nil, err
	}
	var items []ast.Expr
	err = p.parseEnumeration("]", func() error {
		item, err := p.parseExpr(precLowest)
		items = append(items, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ast.ListLit{Span: p.spanFrom(start.Span), Items: items}, nil
}

// parseFields parses `name: expr, ...}` after an opening brace.
func (p *parser) parseFields() ([]*ast.Field, error) {
	var fields []*ast.Field
	err := p.parseEnumeration("}", func() error {
		name, err := p.expectIdent(lexer.PrimitiveExp)
		if err != nil {
			return err
		}
		if _, err := p.expectOp(":", lexer.Default); err != nil {
			return err
		}
		if err := p.skipNewlines(); err != nil {
			return err
		}
		value, err := p.parseExpr(precLowest)
		if err != nil {
			return err
		}
		fields = append(fields, &ast.Field{
			Span:  p.spanFromTo(name.Span, value.NodeSpan()),
			Name:  name.Value,
			Value: value,
		})
		return nil
	})
	return fields, err
}

func (p *parser) parseStruct() (ast.Expr, error) {
	start, err := p.next(lexer.PrimitiveExp) // consume 'struct'
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("{", lexer.Default); err != nil {
		return nil, err
	}
	members, err := p.parseFields()
	if err != nil {
		return nil, err
	}
	return &ast.StructLit{Span: p.spanFrom(start.Span), Members: members}, nil
}

func (p *parser) parseDict() (ast.Expr, error) {
	start, err := p.next(lexer.PrimitiveExp) // consume 'dict'
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("[", lexer.Default); err != nil {
		return nil, err
	}
	var entries []*ast.DictEntry
	err = p.parseEnumeration("]", func() error {
		key, err := p.parseExpr(precLowest)
		if err != nil {
			return err
		}
		if _, err := p.expectOp(":", lexer.Default); err != nil {
			return err
		}
		if err := p.skipNewlines(); err != nil {
			return err
		}
		value, err := p.parseExpr(precLowest)
		if err != nil {
			return err
		}
		entries = append(entries, &ast.DictEntry{
			Span:  p.spanFromTo(key.NodeSpan(), value.NodeSpan()),
			Key:   key,
			Value: value,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ast.DictLit{Span: p.spanFrom(start.Span), Entries: entries}, nil
}

func (p *parser) parseIf() (ast.Expr, error) {
	start, err := p.next(lexer.PrimitiveExp) // consume 'if'
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("(", lexer.Default); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if _, err := p.expectOp(")", lexer.Default); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	expr := &ast.IfExpr{Cond: cond, Then: then}

	// `else` may follow on a later line.
	saved, savedLast := p.st, p.last
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	isElse, err := p.peekOp("else", lexer.Default)
	if err != nil {
		return nil, err
	}
	if !isElse {
		p.st, p.last = saved, savedLast
		expr.Span = p.spanFrom(start.Span)
		return expr, nil
	}
	p.next(lexer.Default)
	isIf, err := p.peekOp("if", lexer.Default)
	if err != nil {
		return nil, err
	}
	if isIf {
		tok, _ := p.peek(lexer.Default)
		return nil, p.errorAt(tok, "`else if` is not supported, nest an `if` inside the `else` block")
	}
	els, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if els == nil {
		els = []ast.Stmt{}
	}
	expr.Else = els
	expr.Span = p.spanFrom(start.Span)
	return expr, nil
}

// --- Markup ---

type markupChild struct {
	text  string
	start lexer.State
	end   lexer.State
	expr  ast.Expr
}

func (p *parser) parseElement() (ast.Expr, error) {
	start, err := p.next(lexer.PrimitiveExp) // consume '<'
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent(lexer.HTMLTag)
	if err != nil {
		return nil, err
	}
	el := &ast.ElementExpr{Tag: name.Value}

	for {
		tok, err := p.peek(lexer.HTMLTag)
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Type == lexer.TokIdent:
			attr, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, attr)
			continue
		case tok.Is("/>"):
			p.next(lexer.HTMLTag)
			el.SelfClosing = true
			el.Span = p.spanFrom(start.Span)
			return el, nil
		case tok.Is(">"):
			p.next(lexer.HTMLTag)
		default:
			return nil, p.unexpected(tok, "an attribute, `>` or `/>`")
		}
		break
	}

	children, err := p.parseMarkupChildren(el.Tag)
	if err != nil {
		return nil, err
	}
	el.Children = children
	el.Span = p.spanFrom(start.Span)
	return el, nil
}

func (p *parser) parseAttribute() (*ast.Attribute, error) {
	name, err := p.next(lexer.HTMLTag)
	if err != nil {
		return nil, err
	}
	p.lex.Mark(name.Span, lexer.SemAttribute)
	if _, err := p.expectOp("=", lexer.HTMLTag); err != nil {
		return nil, err
	}
	tok, err := p.peek(lexer.HTMLTag)
	if err != nil {
		return nil, err
	}
	var value ast.Expr
	switch {
	case tok.Type == lexer.TokString:
		p.next(lexer.HTMLTag)
		value = &ast.StringTemplate{Span: tok.Span, Parts: tok.Parts}
	case tok.Is("{"):
		value, err = p.parseBraced()
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected(tok, "a string or `{expression}` attribute value")
	}
	return &ast.Attribute{Span: p.spanFrom(name.Span), Name: name.Value, Value: value}, nil
}

// parseBraced parses `{ expr }`; blanks and newlines are allowed inside.
func (p *parser) parseBraced() (ast.Expr, error) {
	if _, err := p.next(lexer.HTMLTag); err != nil { // consume '{'
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if _, err := p.expectOp("}", lexer.Default); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseMarkupChildren(tag string) ([]ast.Expr, error) {
	var raw []markupChild
	for {
		text, next := p.lex.MarkupText(p.st)
		if text != "" {
			raw = append(raw, markupChild{text: text, start: p.st, end: next})
		}
		p.st = next

		if p.lex.AtEnd(p.st) {
			tok, _ := p.peek(lexer.Default)
			return nil, p.unexpected(tok, fmt.Sprintf("`</%s>`", tag))
		}

		switch {
		case p.lex.HasPrefix(p.st, "</"):
			closeStart := p.st
			p.st = p.lex.Advance(p.st, 2)
			name, err := p.expectIdent(lexer.HTMLTag)
			if err != nil {
				return nil, err
			}
			if name.Value != tag {
				return nil, p.errorAt(lexer.Token{Span: p.lex.Span(closeStart, p.st)},
					fmt.Sprintf("mismatched closing tag: expected `</%s>`, got `</%s>`", tag, name.Value))
			}
			if _, err := p.expectOp(">", lexer.HTMLTag); err != nil {
				return nil, err
			}
			return p.finishChildren(raw), nil
		case p.lex.HasPrefix(p.st, "{"):
			expr, err := p.parseBraced()
			if err != nil {
				return nil, err
			}
			raw = append(raw, markupChild{expr: expr})
		default:
			tok, err := p.peek(lexer.PrimitiveExp)
			if err != nil {
				return nil, err
			}
			if tok.Type != lexer.TokTagStart {
				return nil, p.errorAt(tok, "unexpected `<` in markup text")
			}
			child, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			raw = append(raw, markupChild{expr: child})
		}
	}
}

// finishChildren applies markup whitespace rules: the block is trimmed at
// both ends, every other whitespace run collapses to one space, and empty
// text is dropped.
func (p *parser) finishChildren(raw []markupChild) []ast.Expr {
	var out []ast.Expr
	for i, c := range raw {
		if c.expr != nil {
			out = append(out, c.expr)
			continue
		}
		text := c.text
		if i == 0 {
			text = strings.TrimLeft(text, " \t\r\n")
		}
		if i == len(raw)-1 {
			text = strings.TrimRight(text, " \t\r\n")
		}
		text = collapseSpaces(text)
		if text == "" {
			continue
		}
		out = append(out, &ast.StringTemplate{
			Span:  p.lex.Span(c.start, c.end),
			Parts: []ast.TemplatePart{{Text: text}},
		})
	}
	return out
}

func collapseSpaces(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
