package ast

import "github.com/kievzenit/cyc/internal/lexer"

type BlockStmt struct {
	StartToken *lexer.Token

	Stmts []Stmt
}

type ExprStmt struct {
	StartToken *lexer.Token

	Expr Expr
}

type VarDeclStmt struct {
	StartToken *lexer.Token

	Type  *TypeStmt
	Name  string
	Value Expr
}

type ParamStmt struct {
	StartToken *lexer.Token

	Type *TypeStmt
	Name string
}

type FuncDeclStmt struct {
	StartToken *lexer.Token

	ReturnType *TypeStmt
	Name       string
	Params     []*ParamStmt
	Body       *BlockStmt
}

type ClassDeclStmt struct {
	StartToken *lexer.Token

	Name    string
	Members []*VarDeclStmt
	Methods []*FuncDeclStmt
	Classes []*ClassDeclStmt
}

type IfStmt struct {
	StartToken *lexer.Token

	Cond Expr
	Then *BlockStmt
	// Else is nil, a *BlockStmt or an *IfStmt for an else-if chain.
	Else Stmt
}

type ForStmt struct {
	StartToken *lexer.Token

	Init Stmt
	Cond Expr
	Incr Expr
	Body *BlockStmt
}

type WhileStmt struct {
	StartToken *lexer.Token

	Cond Expr
	Body *BlockStmt
}

type ReturnStmt struct {
	StartToken *lexer.Token

	Value Expr
}

func (*BlockStmt) astNode()     {}
func (*ExprStmt) astNode()      {}
func (*VarDeclStmt) astNode()   {}
func (*ParamStmt) astNode()     {}
func (*FuncDeclStmt) astNode()  {}
func (*ClassDeclStmt) astNode() {}
func (*IfStmt) astNode()        {}
func (*ForStmt) astNode()       {}
func (*WhileStmt) astNode()     {}
func (*ReturnStmt) astNode()    {}

func (*BlockStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()      {}
func (*VarDeclStmt) stmtNode()   {}
func (*ParamStmt) stmtNode()     {}
func (*FuncDeclStmt) stmtNode()  {}
func (*ClassDeclStmt) stmtNode() {}
func (*IfStmt) stmtNode()        {}
func (*ForStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()    {}

func (s *BlockStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *ExprStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *VarDeclStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *ParamStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *FuncDeclStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *ClassDeclStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *IfStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *ForStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *WhileStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
func (s *ReturnStmt) FirstToken() *lexer.Token {
	return s.StartToken
}
