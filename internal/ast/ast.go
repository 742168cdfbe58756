// Package ast defines the abstract syntax tree for Lox.
package ast

import (
	"golox/internal/span"
	"golox/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
	GetID() int
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span and ID fields for all AST nodes.
// ID is a per-parse unique integer assigned by the parser; the resolver
// keys its depth side-table by it.
type NodeBase struct {
	Span span.Span
	ID   int
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }
func (n NodeBase) GetID() int         { return n.ID }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// NumberLiteral represents a number literal. All Lox numbers are
// double-precision floats.
type NumberLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NilLiteral represents nil.
type NilLiteral struct {
	ExprBase
}

// IdentExpr represents a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// AssignExpr represents an assignment to a variable: name = value.
// Assignment is an expression and associates to the right.
type AssignExpr struct {
	ExprBase
	Name  string
	Value Expr
}

// GroupingExpr represents a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents an arithmetic/comparison operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// LogicalExpr represents a short-circuiting operation: a and b, a or b.
type LogicalExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr represents a call: f(a, b). Class values are called to
// instantiate them.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// GetExpr represents property access: obj.name.
type GetExpr struct {
	ExprBase
	Object   Expr
	Property string
}

// SetExpr represents property assignment: obj.name = value.
type SetExpr struct {
	ExprBase
	Object   Expr
	Property string
	Value    Expr
}

// ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	ExprBase
}

// SuperExpr represents a superclass method reference: super.name.
type SuperExpr struct {
	ExprBase
	Method string
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt represents: print expr;
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a variable declaration: var x = expr;
type VarDeclStmt struct {
	StmtBase
	Name string
	Init Expr // may be nil if no initializer
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents an if/else statement. Branches may be any statement,
// not only blocks; else-if chains nest through Else.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. For loops are desugared to while
// at parse time; the for clause's increment lands in Incr so that
// continue still runs it.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
	Incr      Expr // may be nil; evaluated after each iteration
}

// FuncDeclStmt represents a function declaration or a class method.
type FuncDeclStmt struct {
	StmtBase
	Name   string
	Params []string
	Body   *BlockStmt
}

// ClassDeclStmt represents a class declaration: class Name < Super { methods }.
type ClassDeclStmt struct {
	StmtBase
	Name    string
	Super   *IdentExpr // may be nil if no superclass
	Methods []*FuncDeclStmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	StmtBase
}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	StmtBase
}
