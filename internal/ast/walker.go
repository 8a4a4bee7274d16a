package ast

// Walker visits every child of every node and does nothing else. Analyses embed
// it and override the methods they care about; Self must then point at the
// embedding visitor so children are dispatched back to it.
type Walker[C any] struct {
	Self Visitor[C]
}

func (w *Walker[C]) self() Visitor[C] {
	if w.Self != nil {
		return w.Self
	}
	return w
}

func (w *Walker[C]) VisitBlockStmt(stmt *BlockStmt, ctx C) error {
	return AcceptAll(stmt.Stmts, w.self(), ctx)
}

func (w *Walker[C]) VisitClassDeclStmt(stmt *ClassDeclStmt, ctx C) error {
	if err := AcceptAll(stmt.Members, w.self(), ctx); err != nil {
		return err
	}
	if err := AcceptAll(stmt.Methods, w.self(), ctx); err != nil {
		return err
	}
	return AcceptAll(stmt.Classes, w.self(), ctx)
}

func (w *Walker[C]) VisitExprStmt(stmt *ExprStmt, ctx C) error {
	return Accept(stmt.Expr, w.self(), ctx)
}

func (w *Walker[C]) VisitFuncDeclStmt(stmt *FuncDeclStmt, ctx C) error {
	if err := Accept(stmt.ReturnType, w.self(), ctx); err != nil {
		return err
	}
	if err := AcceptAll(stmt.Params, w.self(), ctx); err != nil {
		return err
	}
	return Accept(stmt.Body, w.self(), ctx)
}

func (w *Walker[C]) VisitParamStmt(stmt *ParamStmt, ctx C) error {
	return Accept(stmt.Type, w.self(), ctx)
}

func (w *Walker[C]) VisitIfStmt(stmt *IfStmt, ctx C) error {
	if err := Accept(stmt.Cond, w.self(), ctx); err != nil {
		return err
	}
	if err := Accept(stmt.Then, w.self(), ctx); err != nil {
		return err
	}
	return Accept(stmt.Else, w.self(), ctx)
}

func (w *Walker[C]) VisitReturnStmt(stmt *ReturnStmt, ctx C) error {
	return Accept(stmt.Value, w.self(), ctx)
}

func (w *Walker[C]) VisitTypeStmt(stmt *TypeStmt, ctx C) error {
	return nil
}

func (w *Walker[C]) VisitVarDeclStmt(stmt *VarDeclStmt, ctx C) error {
	if err := Accept(stmt.Type, w.self(), ctx); err != nil {
		return err
	}
	return Accept(stmt.Value, w.self(), ctx)
}

func (w *Walker[C]) VisitForStmt(stmt *ForStmt, ctx C) error {
	if err := Accept(stmt.Init, w.self(), ctx); err != nil {
		return err
	}
	if err := Accept(stmt.Cond, w.self(), ctx); err != nil {
		return err
	}
	if err := Accept(stmt.Incr, w.self(), ctx); err != nil {
		return err
	}
	return Accept(stmt.Body, w.self(), ctx)
}

func (w *Walker[C]) VisitWhileStmt(stmt *WhileStmt, ctx C) error {
	if err := Accept(stmt.Cond, w.self(), ctx); err != nil {
		return err
	}
	return Accept(stmt.Body, w.self(), ctx)
}

func (w *Walker[C]) VisitGroupingExpr(expr *GroupingExpr, ctx C) error {
	return Accept(expr.Expr, w.self(), ctx)
}

func (w *Walker[C]) VisitAssignExpr(expr *AssignExpr, ctx C) error {
	return Accept(expr.Value, w.self(), ctx)
}

func (w *Walker[C]) VisitBinaryExpr(expr *BinaryExpr, ctx C) error {
	if err := Accept(expr.Left, w.self(), ctx); err != nil {
		return err
	}
	return Accept(expr.Right, w.self(), ctx)
}

func (w *Walker[C]) VisitCallExpr(expr *CallExpr, ctx C) error {
	if err := Accept(expr.Callee, w.self(), ctx); err != nil {
		return err
	}
	return AcceptAll(expr.Args, w.self(), ctx)
}

func (w *Walker[C]) VisitGetExpr(expr *GetExpr, ctx C) error {
	return Accept(expr.Object, w.self(), ctx)
}

func (w *Walker[C]) VisitLiteralExpr(expr *LiteralExpr, ctx C) error {
	return nil
}

func (w *Walker[C]) VisitSetExpr(expr *SetExpr, ctx C) error {
	if err := Accept(expr.Object, w.self(), ctx); err != nil {
		return err
	}
	return Accept(expr.Value, w.self(), ctx)
}

func (w *Walker[C]) VisitUnaryExpr(expr *UnaryExpr, ctx C) error {
	return Accept(expr.Operand, w.self(), ctx)
}

func (w *Walker[C]) VisitVariableExpr(expr *VariableExpr, ctx C) error {
	return nil
}
