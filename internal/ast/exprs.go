package ast

import "github.com/kievzenit/cyc/internal/lexer"

// LiteralExpr holds an int32, float64, string, bool or nil for null.
type LiteralExpr struct {
	StartToken *lexer.Token

	Value any
}

type VariableExpr struct {
	StartToken *lexer.Token

	Name string
}

type AssignExpr struct {
	StartToken *lexer.Token

	Name  string
	Value Expr
}

// BinaryExpr also covers the logical and/or operators.
type BinaryExpr struct {
	StartToken *lexer.Token

	Left     Expr
	Operator lexer.TokenKind
	Right    Expr
}

type UnaryExpr struct {
	StartToken *lexer.Token

	Operator lexer.TokenKind
	Operand  Expr
}

type CallExpr struct {
	StartToken *lexer.Token

	Callee Expr
	Args   []Expr
}

type GetExpr struct {
	StartToken *lexer.Token

	Object Expr
	Name   string
}

type SetExpr struct {
	StartToken *lexer.Token

	Object Expr
	Name   string
	Value  Expr
}

type GroupingExpr struct {
	StartToken *lexer.Token

	Expr Expr
}

func (*LiteralExpr) astNode()  {}
func (*VariableExpr) astNode() {}
func (*AssignExpr) astNode()   {}
func (*BinaryExpr) astNode()   {}
func (*UnaryExpr) astNode()    {}
func (*CallExpr) astNode()     {}
func (*GetExpr) astNode()      {}
func (*SetExpr) astNode()      {}
func (*GroupingExpr) astNode() {}

func (*LiteralExpr) exprNode()  {}
func (*VariableExpr) exprNode() {}
func (*AssignExpr) exprNode()   {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*GetExpr) exprNode()      {}
func (*SetExpr) exprNode()      {}
func (*GroupingExpr) exprNode() {}

func (e *LiteralExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *VariableExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *AssignExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *BinaryExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *UnaryExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *CallExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *GetExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *SetExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
func (e *GroupingExpr) FirstToken() *lexer.Token {
	return e.StartToken
}
