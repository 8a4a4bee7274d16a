package ast

import (
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/types"
)

// TypeStmt is a reference to a primitive or user type. Def is nil until the
// type table builder binds it.
type TypeStmt struct {
	StartToken *lexer.Token

	Def types.Definition
}

func NewTypeStmt(token *lexer.Token) *TypeStmt {
	return &TypeStmt{StartToken: token}
}

func (t *TypeStmt) TypeName() string {
	return t.StartToken.Lexeme
}

func (t *TypeStmt) IsPrimitive() bool {
	return t.StartToken.Kind.IsPrimitiveType()
}

func (t *TypeStmt) IsVoid() bool {
	return t.StartToken.Kind == lexer.VOID
}

func (t *TypeStmt) IsResolved() bool {
	return t.Def != nil
}

func (*TypeStmt) astNode()  {}
func (*TypeStmt) stmtNode() {}
func (t *TypeStmt) FirstToken() *lexer.Token {
	return t.StartToken
}
