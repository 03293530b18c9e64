// Package lexer implements the iko language tokenizer.
//
// The lexer is pure with respect to its input State: Next never mutates
// the state it is given, so the parser can backtrack by keeping an old
// State around. Results are memoized per (offset, placement).
package lexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokEnd TokenType = iota
	TokNewline
	TokIdent
	TokKeyword
	TokOperator
	TokInteger
	TokString
	TokTagStart // '<' opening embedded markup
)

func (t TokenType) String() string {
	switch t {
	case TokEnd:
		return "end of input"
	case TokNewline:
		return "newline"
	case TokIdent:
		return "identifier"
	case TokKeyword:
		return "keyword"
	case TokOperator:
		return "operator"
	case TokInteger:
		return "integer"
	case TokString:
		return "string"
	case TokTagStart:
		return "markup"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Placement tells the lexer what the parser expects at this position.
type Placement int

const (
	// Default is operator position: '<' is less-than.
	Default Placement = iota
	// PrimitiveExp is operand position: '<' followed by a letter opens markup.
	PrimitiveExp
	// HTMLTag is inside a tag head: newlines are blanks, identifiers are
	// markup names and keywords are not reserved.
	HTMLTag
)

// MaxSafeInteger is the largest integer literal accepted.
const MaxSafeInteger = 1<<53 - 1

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Int   int64
	Parts []ast.TemplatePart // TokString only
	Span  ast.Span
}

// Is reports whether the token is the operator or keyword text.
func (t Token) Is(text string) bool {
	return (t.Type == TokOperator || t.Type == TokKeyword) && t.Value == text
}

// State is a position in the source. It is a plain value.
type State struct {
	Offset int
	Line   int
	Col    int
}

// Start returns the state at the beginning of a source text.
func Start() State {
	return State{Offset: 0, Line: 1, Col: 1}
}

var keywords = map[string]bool{
	"let":    true,
	"slot":   true,
	"mut":    true,
	"pub":    true,
	"use":    true,
	"if":     true,
	"else":   true,
	"true":   true,
	"false":  true,
	"struct": true,
	"dict":   true,
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	return keywords[name]
}

// operators in priority order: longer spellings first.
var operators = []string{
	"++", "--", "==", "!=", "<=", ">=", "&&", "||", "/>",
	"+", "-", "*", "/", "=", "<", ">", "!", "&", "^",
	".", ",", ":", ";", "(", ")", "[", "]", "{", "}",
}

// EmbedFunc parses an interpolated expression starting right after the
// opening '{' of a string and returns the state after the closing '}'.
type EmbedFunc func(start State) (ast.Expr, State, error)

type memoKey struct {
	offset    int
	placement Placement
}

type memoEntry struct {
	tok  Token
	next State
	err  error
}

// Lexer tokenizes one source text. It is owned by a single parse session.
type Lexer struct {
	source   string
	filename string
	memo     map[memoKey]memoEntry
	semantic map[[2]int]SemanticToken

	// Embed is installed by the parser to handle string interpolation.
	Embed EmbedFunc
}

// New creates a lexer for source.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		memo:     make(map[memoKey]memoEntry),
		semantic: make(map[[2]int]SemanticToken),
	}
}

// Source returns the text being lexed.
func (l *Lexer) Source() string { return l.source }

// Filename returns the name used in spans.
func (l *Lexer) Filename() string { return l.filename }

// Next returns the token at st for the given placement and the state
// right after it.
func (l *Lexer) Next(st State, pl Placement) (Token, State, error) {
	key := memoKey{offset: st.Offset, placement: pl}
	if e, ok := l.memo[key]; ok {
		return e.tok, e.next, e.err
	}
	s := l.scannerAt(st)
	tok, err := s.nextToken(pl)
	e := memoEntry{tok: tok, next: s.state(), err: err}
	l.memo[key] = e
	return e.tok, e.next, e.err
}

// MarkupText returns the raw text at st up to the next '<' or '{' (or the
// end of input) and the state after it.
func (l *Lexer) MarkupText(st State) (string, State) {
	s := l.scannerAt(st)
	start := s.pos
	for !s.atEnd() && s.peek() != '<' && s.peek() != '{' {
		s.advance()
	}
	return l.source[start:s.pos], s.state()
}

// SkipBlanks returns the state after any spaces, tabs and newlines at st.
func (l *Lexer) SkipBlanks(st State) State {
	s := l.scannerAt(st)
	for !s.atEnd() && isBlank(s.peek()) {
		s.advance()
	}
	return s.state()
}

// HasPrefix reports whether the raw source at st starts with prefix.
func (l *Lexer) HasPrefix(st State, prefix string) bool {
	return strings.HasPrefix(l.source[st.Offset:], prefix)
}

// AtEnd reports whether st is at the end of input.
func (l *Lexer) AtEnd(st State) bool {
	return st.Offset >= len(l.source)
}

// Advance moves st forward by n bytes.
func (l *Lexer) Advance(st State, n int) State {
	s := l.scannerAt(st)
	for i := 0; i < n && !s.atEnd(); i++ {
		s.advance()
	}
	return s.state()
}

// Span returns a span from a to b.
func (l *Lexer) Span(a, b State) ast.Span {
	return ast.Span{File: l.filename, StartLine: a.Line, StartCol: a.Col, EndLine: b.Line, EndCol: b.Col}
}

func (l *Lexer) scannerAt(st State) *scanner {
	if st.Line == 0 {
		st = Start()
	}
	return &scanner{lex: l, source: l.source, filename: l.filename, pos: st.Offset, line: st.Line, col: st.Col}
}

type scanner struct {
	lex      *Lexer
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func (s *scanner) state() State {
	return State{Offset: s.pos, Line: s.line, Col: s.col}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// skipSpaces skips blanks and comments. Newlines are only skipped when
// skipNewlines is set.
func (s *scanner) skipSpaces(skipNewlines bool) {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			s.advance()
		case ch == '\n' && skipNewlines:
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			s.skipComment()
		default:
			return
		}
	}
}

func (s *scanner) skipComment() {
	startLine, startCol := s.line, s.col
	for !s.atEnd() && s.peek() != '\n' {
		s.advance()
	}
	s.lex.mark(s.span(startLine, startCol), SemComment)
}

func (s *scanner) nextToken(pl Placement) (Token, error) {
	s.skipSpaces(pl == HTMLTag)

	if !s.atEnd() && s.peek() == '\n' {
		startLine, startCol := s.line, s.col
		s.advance()
		end := s.span(startLine, startCol)
		// Coalesce newline runs, including comment-only lines.
		s.skipSpaces(true)
		return Token{Type: TokNewline, Value: "\n", Span: end}, nil
	}

	if s.atEnd() {
		return Token{Type: TokEnd, Span: s.span(s.line, s.col)}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch {
	case isAlpha(ch):
		return s.scanIdentOrKeyword(pl), nil
	case isDigit(ch):
		return s.scanInteger()
	case ch == '"':
		return s.scanString()
	case ch == '<' && pl == PrimitiveExp && isAlpha(s.peekAt(1)):
		s.advance()
		tok := Token{Type: TokTagStart, Value: "<", Span: s.span(startLine, startCol)}
		s.lex.mark(tok.Span, SemOperator)
		return tok, nil
	}

	for _, op := range operators {
		if strings.HasPrefix(s.source[s.pos:], op) {
			for i := 0; i < len(op); i++ {
				s.advance()
			}
			tok := Token{Type: TokOperator, Value: op, Span: s.span(startLine, startCol)}
			s.lex.mark(tok.Span, SemOperator)
			return tok, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character '%c'", r))
}

func (s *scanner) scanIdentOrKeyword(pl Placement) Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	span := s.span(startLine, startCol)

	if pl == HTMLTag {
		s.lex.mark(span, SemTag)
		return Token{Type: TokIdent, Value: text, Span: span}
	}
	if keywords[text] {
		s.lex.mark(span, SemKeyword)
		return Token{Type: TokKeyword, Value: text, Span: span}
	}
	s.lex.mark(span, SemVariable)
	return Token{Type: TokIdent, Value: text, Span: span}
}

func (s *scanner) scanInteger() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n > MaxSafeInteger {
		return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("integer literal %s is out of the safe range", text))
	}
	span := s.span(startLine, startCol)
	s.lex.mark(span, SemNumber)
	return Token{Type: TokInteger, Value: text, Int: n, Span: span}, nil
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening "

	var parts []ast.TemplatePart
	var buf strings.Builder
	segLine, segCol := s.line, s.col

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, ast.TemplatePart{Text: buf.String()})
			buf.Reset()
		}
		if s.line == segLine && s.col > segCol {
			s.lex.mark(s.span(segLine, segCol), SemString)
		}
	}

	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == '"':
			s.advance() // consume closing "
			flush()
			return Token{
				Type:  TokString,
				Parts: parts,
				Span:  s.span(startLine, startCol),
			}, nil
		case ch == '\\':
			s.advance() // consume backslash
			if s.atEnd() {
				return Token{}, s.lexError(startLine, startCol, "unterminated string escape")
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '{':
				buf.WriteByte('{')
			case '}':
				buf.WriteByte('}')
			default:
				return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
			}
		case ch == '{':
			s.advance()
			flush()
			if s.lex.Embed == nil {
				return Token{}, s.lexError(startLine, startCol, "string interpolation is not available here")
			}
			expr, next, err := s.lex.Embed(s.state())
			if err != nil {
				return Token{}, err
			}
			parts = append(parts, ast.TemplatePart{Expr: expr})
			s.pos, s.line, s.col = next.Offset, next.Line, next.Col
			segLine, segCol = s.line, s.col
		case ch == '\n':
			return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
		default:
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			for i := 0; i < size; i++ {
				s.advance()
			}
		}
	}
	return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

// --- semantic tokens ---

// Semantic token types.
const (
	SemKeyword   = "keyword"
	SemVariable  = "variable"
	SemNumber    = "number"
	SemString    = "string"
	SemOperator  = "operator"
	SemComment   = "comment"
	SemTag       = "tag"
	SemAttribute = "attribute"
)

// SemanticToken classifies a source range for syntax highlighting.
type SemanticToken struct {
	Line   int    `json:"line"`
	Col    int    `json:"col"`
	Length int    `json:"length"`
	Type   string `json:"type"`
}

func (l *Lexer) mark(span ast.Span, typ string) {
	if span.EndLine != span.StartLine || span.EndCol <= span.StartCol {
		return
	}
	l.semantic[[2]int{span.StartLine, span.StartCol}] = SemanticToken{
		Line:   span.StartLine,
		Col:    span.StartCol,
		Length: span.EndCol - span.StartCol,
		Type:   typ,
	}
}

// Mark reclassifies the token at span. The parser uses it for attribute
// names, which the lexer alone cannot tell apart from tag names.
func (l *Lexer) Mark(span ast.Span, typ string) {
	l.mark(span, typ)
}

// SemanticTokens returns every classified range sorted by position.
func (l *Lexer) SemanticTokens() []SemanticToken {
	out := make([]SemanticToken, 0, len(l.semantic))
	for _, t := range l.semantic {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Col < out[j].Col
	})
	return out
}
