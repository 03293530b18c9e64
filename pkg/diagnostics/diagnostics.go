// Package diagnostics defines iko diagnostic types for parse/check/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex        = "E_LEX"
	EParse      = "E_PARSE"
	EIncomplete = "E_INCOMPLETE"
	EUnbound    = "E_UNBOUND"
	ECycle      = "E_CYCLE"
	EType       = "E_TYPE"
	EContext    = "E_CONTEXT"
	ERef        = "E_REF"
	EField      = "E_FIELD"
	EIndex      = "E_INDEX"
	EKey        = "E_KEY"
	EArgs       = "E_ARGS"
	EDivZero    = "E_DIV_ZERO"
	EAttr       = "E_ATTR"
	EHost       = "E_HOST"
	EEntry      = "E_ENTRY"
	ECancelled  = "E_CANCELLED"
	EIO         = "E_IO"
)

// Diagnostic represents a parse, check, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// wrapWidth is the column at which Render wraps messages.
const wrapWidth = 72

// Render formats d against its source text: a header line, the offending
// source line with its neighbours, a caret underline spanning the range
// (clamped to the first line) and the wrapped message.
func Render(source string, d Diagnostic) string {
	if d.Span == nil {
		return FormatDiagnostic(d, true)
	}
	lines := strings.Split(source, "\n")
	line, col := d.Span.StartLine, d.Span.StartCol
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error[%s] at %s:%d:%d\n\n", d.Code, d.Span.File, line, col)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])

	width := 1
	if d.Span.EndLine == d.Span.StartLine && d.Span.EndCol > col {
		width = d.Span.EndCol - col
	}
	fmt.Fprintf(&b, "     | %s^%s\n", strings.Repeat(" ", col-1), strings.Repeat("~", width-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	b.WriteString("\n")
	for _, l := range wrap(d.Message, wrapWidth) {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "  hint: %s\n", d.Hint)
	}
	return b.String()
}

func wrap(msg string, width int) []string {
	words := strings.Fields(msg)
	if len(words) == 0 {
		return nil
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			out = append(out, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(out, cur)
}
