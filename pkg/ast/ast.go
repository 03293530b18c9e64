// Package ast defines the iko language AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAssign BinaryOp = "="
	OpOr     BinaryOp = "||"
	OpAnd    BinaryOp = "&&"
	OpEqEq   BinaryOp = "=="
	OpNeq    BinaryOp = "!="
	OpLt     BinaryOp = "<"
	OpGt     BinaryOp = ">"
	OpLtEq   BinaryOp = "<="
	OpGtEq   BinaryOp = ">="
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
)

// UnaryOp represents a prefix operator.
type UnaryOp string

const (
	OpIncr  UnaryOp = "++"
	OpDecr  UnaryOp = "--"
	OpNot   UnaryOp = "!"
	OpNeg   UnaryOp = "-"
	OpRef   UnaryOp = "&"
	OpDeref UnaryOp = "^"
)

// VarKind distinguishes `let` from `slot` definitions.
type VarKind string

const (
	VarLet  VarKind = "let"
	VarSlot VarKind = "slot"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

// TemplatePart is one segment of a string template: literal text when
// Expr is nil, an interpolated expression otherwise.
type TemplatePart struct {
	Text string
	Expr Expr
}

type StringTemplate struct {
	Span  Span
	Parts []TemplatePart
}

func (n *StringTemplate) Kind() string   { return "StringTemplate" }
func (n *StringTemplate) NodeSpan() Span { return n.Span }
func (n *StringTemplate) exprNode()      {}

// IsPlain reports whether the template has no interpolated expression.
func (n *StringTemplate) IsPlain() bool {
	for _, p := range n.Parts {
		if p.Expr != nil {
			return false
		}
	}
	return true
}

// --- Identifiers ---

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

// --- Functions ---

type Param struct {
	Span Span
	Name string
}

func (n *Param) Kind() string   { return "Param" }
func (n *Param) NodeSpan() Span { return n.Span }

type FuncLit struct {
	Span   Span
	Mut    bool
	Params []*Param
	Body   []Stmt
}

func (n *FuncLit) Kind() string   { return "FuncLit" }
func (n *FuncLit) NodeSpan() Span { return n.Span }
func (n *FuncLit) exprNode()      {}

type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// --- Access ---

type MemberExpr struct {
	Span   Span
	Target Expr
	Name   string
}

func (n *MemberExpr) Kind() string   { return "MemberExpr" }
func (n *MemberExpr) NodeSpan() Span { return n.Span }
func (n *MemberExpr) exprNode()      {}

type IndexExpr struct {
	Span   Span
	Target Expr
	Index  Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// --- Operators ---

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// --- Collections ---

// Field is a named entry of an object or struct literal.
type Field struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *Field) Kind() string   { return "Field" }
func (n *Field) NodeSpan() Span { return n.Span }

// ObjectLit is `{ a: 1 }`, or `Tag { a: 1 }` when Tag is set.
type ObjectLit struct {
	Span   Span
	Tag    Expr
	Fields []*Field
}

func (n *ObjectLit) Kind() string   { return "ObjectLit" }
func (n *ObjectLit) NodeSpan() Span { return n.Span }
func (n *ObjectLit) exprNode()      {}

type ListLit struct {
	Span  Span
	Items []Expr
}

func (n *ListLit) Kind() string   { return "ListLit" }
func (n *ListLit) NodeSpan() Span { return n.Span }
func (n *ListLit) exprNode()      {}

type DictEntry struct {
	Span  Span
	Key   Expr
	Value Expr
}

func (n *DictEntry) Kind() string   { return "DictEntry" }
func (n *DictEntry) NodeSpan() Span { return n.Span }

type DictLit struct {
	Span    Span
	Entries []*DictEntry
}

func (n *DictLit) Kind() string   { return "DictLit" }
func (n *DictLit) NodeSpan() Span { return n.Span }
func (n *DictLit) exprNode()      {}

type StructLit struct {
	Span    Span
	Members []*Field
}

func (n *StructLit) Kind() string   { return "StructLit" }
func (n *StructLit) NodeSpan() Span { return n.Span }
func (n *StructLit) exprNode()      {}

// --- Control Flow ---

// IfExpr has no `else if` form; Else is nil when absent.
type IfExpr struct {
	Span Span
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}

// --- Markup ---

type Attribute struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *Attribute) Kind() string   { return "Attribute" }
func (n *Attribute) NodeSpan() Span { return n.Span }

// ElementExpr is an embedded markup element. Text children are plain
// StringTemplate nodes with whitespace already collapsed.
type ElementExpr struct {
	Span        Span
	Tag         string
	Attrs       []*Attribute
	Children    []Expr
	SelfClosing bool
}

func (n *ElementExpr) Kind() string   { return "ElementExpr" }
func (n *ElementExpr) NodeSpan() Span { return n.Span }
func (n *ElementExpr) exprNode()      {}

// --- Statements ---

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// VarDecl is a `let` or `slot` definition. Pub is only set at module level.
type VarDecl struct {
	Span  Span
	Var   VarKind
	Pub   bool
	Name  string
	Value Expr
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

// UseStmt imports a member path; it binds the last path segment.
type UseStmt struct {
	Span Span
	Path []string
}

func (n *UseStmt) Kind() string   { return "UseStmt" }
func (n *UseStmt) NodeSpan() Span { return n.Span }
func (n *UseStmt) stmtNode()      {}

// Name returns the name a use statement binds.
func (n *UseStmt) Name() string {
	return n.Path[len(n.Path)-1]
}

// --- Module ---

type Module struct {
	Span  Span
	Decls []Stmt
}

func (n *Module) Kind() string   { return "Module" }
func (n *Module) NodeSpan() Span { return n.Span }
