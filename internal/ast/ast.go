package ast

import "github.com/kievzenit/cyc/internal/lexer"

// Node is implemented only by the statement and expression types of this
// package, so the set of variants stays closed.
type Node interface {
	astNode()
	FirstToken() *lexer.Token
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// TranslationUnit is the parse result of one source file.
type TranslationUnit struct {
	FileName string
	Module   string
	Stmts    []Stmt
}
