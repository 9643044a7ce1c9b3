// Package ast defines the tagged tree produced by pkg/parser: the pure,
// arena-scoped tree of nodes described in spec §3.
package ast

import (
	"github.com/go-wacc/wacc/pkg/diag"
	"github.com/go-wacc/wacc/pkg/token"
)

// Node is the base interface every tree node satisfies.
type Node interface {
	Pos() diag.Position
}

// Statement is any node that can appear in a statement list.
type Statement interface {
	Node
	stmtNode()
}

// Expression is any node that evaluates to exactly one i32 value.
type Expression interface {
	Node
	exprNode()
}

// Program is the root of the tree: the sole function this subset allows.
type Program struct {
	Function *Function
	StartPos diag.Position
}

func (p *Program) Pos() diag.Position { return p.StartPos }

// Function is a parameter-less function with a name and an ordered
// statement list.
type Function struct {
	Name     string
	Body     []Statement
	StartPos diag.Position
}

func (f *Function) Pos() diag.Position { return f.StartPos }

// ReturnStmt is `return <expr>;`.
type ReturnStmt struct {
	Value    Expression
	StartPos diag.Position
}

func (s *ReturnStmt) Pos() diag.Position { return s.StartPos }
func (s *ReturnStmt) stmtNode()          {}

// VarDecl is `int name [= init];`.
type VarDecl struct {
	Name     string
	Init     Expression // nil if no initializer
	StartPos diag.Position
}

func (s *VarDecl) Pos() diag.Position { return s.StartPos }
func (s *VarDecl) stmtNode()          {}
func (s *VarDecl) declNode()          {}

// VarRef is a bare identifier used as an expression.
type VarRef struct {
	Name     string
	StartPos diag.Position
}

func (e *VarRef) Pos() diag.Position { return e.StartPos }
func (e *VarRef) exprNode()          {}

// Assignment is `name = value`. It is both a statement (when used bare,
// followed by `;`) and an expression (its value is the assigned value).
type Assignment struct {
	Name     string
	Value    Expression
	StartPos diag.Position
}

func (e *Assignment) Pos() diag.Position { return e.StartPos }
func (e *Assignment) exprNode()          {}
func (e *Assignment) stmtNode()          {}

// UnaryOp is `!`, `~`, or unary `-` applied to an operand.
type UnaryOp struct {
	Op       token.Kind
	Operand  Expression
	StartPos diag.Position
}

func (e *UnaryOp) Pos() diag.Position { return e.StartPos }
func (e *UnaryOp) exprNode()          {}

// BinaryOp is any non-assignment binary operator.
type BinaryOp struct {
	Op       token.Kind
	Left     Expression
	Right    Expression
	StartPos diag.Position
}

func (e *BinaryOp) Pos() diag.Position { return e.StartPos }
func (e *BinaryOp) exprNode()          {}

// Ternary is `cond ? then : else`.
type Ternary struct {
	Cond     Expression
	Then     Expression
	Else     Expression
	StartPos diag.Position
}

func (e *Ternary) Pos() diag.Position { return e.StartPos }
func (e *Ternary) exprNode()          {}

// IfStmt is `if (cond) then [else elseStmt]`.
type IfStmt struct {
	Cond     Expression
	Then     Statement
	Else     Statement // nil if no else branch
	StartPos diag.Position
}

func (s *IfStmt) Pos() diag.Position { return s.StartPos }
func (s *IfStmt) stmtNode()          {}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Cond     Expression
	Body     Statement
	StartPos diag.Position
}

func (s *WhileStmt) Pos() diag.Position { return s.StartPos }
func (s *WhileStmt) stmtNode()          {}

// BreakStmt is `break;`.
type BreakStmt struct {
	StartPos diag.Position
}

func (s *BreakStmt) Pos() diag.Position { return s.StartPos }
func (s *BreakStmt) stmtNode()          {}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	StartPos diag.Position
}

func (s *ContinueStmt) Pos() diag.Position { return s.StartPos }
func (s *ContinueStmt) stmtNode()          {}

// Compound is `{ stmt* }`: a block that introduces a new lexical scope.
type Compound struct {
	Stmts    []Statement
	StartPos diag.Position
}

func (s *Compound) Pos() diag.Position { return s.StartPos }
func (s *Compound) stmtNode()          {}

// IntLiteral is an integer constant expression.
type IntLiteral struct {
	Value    int64
	StartPos diag.Position
}

func (e *IntLiteral) Pos() diag.Position { return e.StartPos }
func (e *IntLiteral) exprNode()          {}

// ExprStmt wraps a bare expression used as a statement (its value is
// discarded).
type ExprStmt struct {
	X        Expression
	StartPos diag.Position
}

func (s *ExprStmt) Pos() diag.Position { return s.StartPos }
func (s *ExprStmt) stmtNode()          {}
