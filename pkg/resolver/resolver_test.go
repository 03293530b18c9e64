package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/resolver"
)

func mustParse(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, err := parser.Parse(source, "test.iko")
	require.NoError(t, err)
	return mod
}

func TestResolveNames(t *testing.T) {
	mod := mustParse(t, "use std.List\nlet a = 1\npub let main = mut () { a }")
	table := resolver.Resolve(mod)
	require.Len(t, table, 3)
	assert.IsType(t, &ast.UseStmt{}, table["List"])
	assert.Equal(t, "main", table["main"].(*ast.VarDecl).Name)
}

func TestResolveLastDefinitionWins(t *testing.T) {
	mod := mustParse(t, "let a = 1\nlet a = 2")
	table := resolver.Resolve(mod)
	lit := table["a"].(*ast.VarDecl).Value.(*ast.IntLiteral)
	assert.Equal(t, int64(2), lit.Value)
	assert.Empty(t, resolver.Check(mod))
}

func TestCheckAcceptsBoundNames(t *testing.T) {
	src := `
use std.List
let later = () { helper(1) }
let helper = (x) {
  let y = x + 1
  slot z = y
  if (z > 1) { let w = z; w } else { y }
}
pub let main = mut () {
  let items = [1, 2]
  List.push(&items, 3)
  std.print("{later()}")
  <div value={&items}>{items.size()}</div>
}
`
	assert.Empty(t, resolver.Check(mustParse(t, src)))
}

func TestCheckReportsUnboundNames(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"module level", "let a = b", "unbound name `b`"},
		{"use before let", "let f = () { x; let x = 1 }", "unbound name `x`"},
		{"if scope", "let f = () { if (true) { let y = 1 }; y }", "unbound name `y`"},
		{"interpolation", `let f = () { "{nope}" }`, "unbound name `nope`"},
		{"markup", "let f = () { <p>{nope}</p> }", "unbound name `nope`"},
		{"unknown module", "use fs.read", "unknown module `fs`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := resolver.Check(mustParse(t, tt.source))
			require.Len(t, diags, 1)
			assert.Equal(t, diagnostics.EUnbound, diags[0].Code)
			assert.Equal(t, tt.want, diags[0].Message)
			assert.NotNil(t, diags[0].Span)
		})
	}
}

func TestCheckParamsShadow(t *testing.T) {
	mod := mustParse(t, "let f = (std) { std }\nlet g = (a) { (b) { a + b } }")
	assert.Empty(t, resolver.Check(mod))
}
