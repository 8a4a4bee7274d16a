package ast

import "fmt"

// Visitor is the fixed set of operations every tree consumer implements. The
// context value is passed through to children unchanged unless a visitor
// chooses otherwise.
type Visitor[C any] interface {
	VisitBlockStmt(stmt *BlockStmt, ctx C) error
	VisitClassDeclStmt(stmt *ClassDeclStmt, ctx C) error
	VisitExprStmt(stmt *ExprStmt, ctx C) error
	VisitFuncDeclStmt(stmt *FuncDeclStmt, ctx C) error
	VisitParamStmt(stmt *ParamStmt, ctx C) error
	VisitIfStmt(stmt *IfStmt, ctx C) error
	VisitReturnStmt(stmt *ReturnStmt, ctx C) error
	VisitTypeStmt(stmt *TypeStmt, ctx C) error
	VisitVarDeclStmt(stmt *VarDeclStmt, ctx C) error
	VisitForStmt(stmt *ForStmt, ctx C) error
	VisitWhileStmt(stmt *WhileStmt, ctx C) error

	VisitGroupingExpr(expr *GroupingExpr, ctx C) error
	VisitAssignExpr(expr *AssignExpr, ctx C) error
	VisitBinaryExpr(expr *BinaryExpr, ctx C) error
	VisitCallExpr(expr *CallExpr, ctx C) error
	VisitGetExpr(expr *GetExpr, ctx C) error
	VisitLiteralExpr(expr *LiteralExpr, ctx C) error
	VisitSetExpr(expr *SetExpr, ctx C) error
	VisitUnaryExpr(expr *UnaryExpr, ctx C) error
	VisitVariableExpr(expr *VariableExpr, ctx C) error
}

// Accept dispatches node to the matching visitor method. A nil node is a no-op.
func Accept[C any](node Node, v Visitor[C], ctx C) error {
	switch n := node.(type) {
	case nil:
		return nil

	case *BlockStmt:
		return v.VisitBlockStmt(n, ctx)
	case *ClassDeclStmt:
		return v.VisitClassDeclStmt(n, ctx)
	case *ExprStmt:
		return v.VisitExprStmt(n, ctx)
	case *FuncDeclStmt:
		return v.VisitFuncDeclStmt(n, ctx)
	case *ParamStmt:
		return v.VisitParamStmt(n, ctx)
	case *IfStmt:
		return v.VisitIfStmt(n, ctx)
	case *ReturnStmt:
		return v.VisitReturnStmt(n, ctx)
	case *TypeStmt:
		return v.VisitTypeStmt(n, ctx)
	case *VarDeclStmt:
		return v.VisitVarDeclStmt(n, ctx)
	case *ForStmt:
		return v.VisitForStmt(n, ctx)
	case *WhileStmt:
		return v.VisitWhileStmt(n, ctx)

	case *GroupingExpr:
		return v.VisitGroupingExpr(n, ctx)
	case *AssignExpr:
		return v.VisitAssignExpr(n, ctx)
	case *BinaryExpr:
		return v.VisitBinaryExpr(n, ctx)
	case *CallExpr:
		return v.VisitCallExpr(n, ctx)
	case *GetExpr:
		return v.VisitGetExpr(n, ctx)
	case *LiteralExpr:
		return v.VisitLiteralExpr(n, ctx)
	case *SetExpr:
		return v.VisitSetExpr(n, ctx)
	case *UnaryExpr:
		return v.VisitUnaryExpr(n, ctx)
	case *VariableExpr:
		return v.VisitVariableExpr(n, ctx)
	}

	panic(fmt.Sprintf("ast.Accept(): received illegal node: %T", node))
}

// AcceptAll visits nodes in order and stops at the first error.
func AcceptAll[C any, N Node](nodes []N, v Visitor[C], ctx C) error {
	for _, node := range nodes {
		if err := Accept(node, v, ctx); err != nil {
			return err
		}
	}
	return nil
}
