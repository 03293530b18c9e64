package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeanlauliac/ikolang-sub001/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: 42},
		&ast.BoolLiteral{Value: true},
		&ast.StringTemplate{},
		&ast.Ident{Name: "x"},
		&ast.FuncLit{},
		&ast.CallExpr{},
		&ast.MemberExpr{},
		&ast.IndexExpr{},
		&ast.ElementExpr{},
		&ast.ObjectLit{},
		&ast.ListLit{},
		&ast.DictLit{},
		&ast.StructLit{},
		&ast.IfExpr{},
	}

	expected := []string{
		"IntLiteral", "BoolLiteral", "StringTemplate", "Ident", "FuncLit",
		"CallExpr", "MemberExpr", "IndexExpr", "ElementExpr", "ObjectLit",
		"ListLit", "DictLit", "StructLit", "IfExpr",
	}

	for i, node := range nodes {
		assert.Equal(t, expected[i], node.Kind(), "node %d", i)
	}
}

func TestStringTemplateIsPlain(t *testing.T) {
	plain := &ast.StringTemplate{Parts: []ast.TemplatePart{{Text: "hi"}}}
	assert.True(t, plain.IsPlain())

	interp := &ast.StringTemplate{Parts: []ast.TemplatePart{
		{Text: "count: "},
		{Expr: &ast.Ident{Name: "n"}},
	}}
	assert.False(t, interp.IsPlain())
}

func TestUseStmtName(t *testing.T) {
	u := &ast.UseStmt{Path: []string{"std", "List"}}
	assert.Equal(t, "List", u.Name())
}
