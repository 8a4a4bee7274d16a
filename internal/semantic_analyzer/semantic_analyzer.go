package semantic_analyzer

import (
	"fmt"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/types"
)

type scope struct {
	parent    *scope
	variables map[string]types.Definition

	function *ast.FuncDeclStmt
	class    *types.ObjectType
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, variables: make(map[string]types.Definition)}
}

func (s *scope) lookupVar(name string) (types.Definition, bool) {
	def, ok := s.variables[name]
	if ok {
		return def, true
	}

	if s.parent != nil {
		return s.parent.lookupVar(name)
	}

	return nil, false
}

// defineVar binds name in this scope and reports false if it already was.
func (s *scope) defineVar(name string, def types.Definition) bool {
	if _, ok := s.variables[name]; ok {
		return false
	}
	s.variables[name] = def
	return true
}

func (s *scope) enclosingFunction() *ast.FuncDeclStmt {
	for curr := s; curr != nil; curr = curr.parent {
		if curr.function != nil {
			return curr.function
		}
	}
	return nil
}

func (s *scope) enclosingClass() *types.ObjectType {
	for curr := s; curr != nil; curr = curr.parent {
		if curr.class != nil {
			return curr.class
		}
	}
	return nil
}

// SemanticAnalyzer checks names across the whole program: variables must be
// declared before use and only once per block, called functions and accessed
// members must exist, and return only appears inside functions. It runs after
// the type table has been built.
type SemanticAnalyzer struct {
	ast.Walker[*scope]

	eh       compiler_errors.ErrorHandler
	resolver *TypeResolver

	globals *scope
	funcs   map[string]*ast.FuncDeclStmt
	classes map[*ast.ClassDeclStmt]*types.ObjectType
	decls   map[*types.ObjectType]*ast.ClassDeclStmt

	exprType types.Definition
}

func NewSemanticAnalyzer(eh compiler_errors.ErrorHandler, table *types.Table) *SemanticAnalyzer {
	sa := &SemanticAnalyzer{
		eh:       eh,
		resolver: NewTypeResolver(table),

		globals: newScope(nil),
		funcs:   make(map[string]*ast.FuncDeclStmt),
		classes: make(map[*ast.ClassDeclStmt]*types.ObjectType),
		decls:   make(map[*types.ObjectType]*ast.ClassDeclStmt),
	}
	sa.Self = sa
	return sa
}

func (sa *SemanticAnalyzer) Analyze(units []*ast.TranslationUnit) {
	for _, unit := range units {
		sa.scanTranslationUnit(unit)
	}

	for _, unit := range units {
		_ = ast.AcceptAll(unit.Stmts, sa.Self, sa.globals)
	}
}

// scanTranslationUnit predeclares top-level functions and globals so they can
// be used before their declaration, and indexes class declarations.
func (sa *SemanticAnalyzer) scanTranslationUnit(unit *ast.TranslationUnit) {
	for _, stmt := range unit.Stmts {
		switch decl := stmt.(type) {
		case *ast.FuncDeclStmt:
			if _, exists := sa.funcs[decl.Name]; exists {
				sa.addError(decl.FirstToken(), "function '%s' is already declared", decl.Name)
				continue
			}
			if _, exists := sa.globals.variables[decl.Name]; exists {
				sa.addError(decl.FirstToken(), "'%s' is already declared", decl.Name)
				continue
			}
			sa.funcs[decl.Name] = decl

		case *ast.VarDeclStmt:
			// functions and globals share one namespace
			if _, exists := sa.funcs[decl.Name]; exists {
				sa.addError(decl.FirstToken(), "'%s' is already declared", decl.Name)
				continue
			}
			if !sa.globals.defineVar(decl.Name, decl.Type.Def) {
				sa.addError(decl.FirstToken(), "'%s' is already declared", decl.Name)
			}
		}
	}

	indexer := &classIndexer{resolver: sa.resolver, classes: sa.classes, decls: sa.decls}
	indexer.Self = indexer
	_ = ast.AcceptAll(unit.Stmts, ast.Visitor[*declContext](indexer), &declContext{unit: unit, scope: unit.Module})
}

func (sa *SemanticAnalyzer) VisitBlockStmt(stmt *ast.BlockStmt, s *scope) error {
	return ast.AcceptAll(stmt.Stmts, sa.Self, newScope(s))
}

func (sa *SemanticAnalyzer) VisitClassDeclStmt(stmt *ast.ClassDeclStmt, s *scope) error {
	obj := sa.classes[stmt]

	members := newScope(s)
	members.class = obj
	for _, member := range stmt.Members {
		members.defineVar(member.Name, member.Type.Def)
	}

	for _, method := range stmt.Methods {
		_ = sa.analyzeFunction(method, members)
	}

	return ast.AcceptAll(stmt.Classes, sa.Self, s)
}

func (sa *SemanticAnalyzer) VisitFuncDeclStmt(stmt *ast.FuncDeclStmt, s *scope) error {
	if s.enclosingFunction() != nil {
		sa.addError(stmt.FirstToken(), "function '%s' cannot be declared inside another function", stmt.Name)
		return nil
	}
	return sa.analyzeFunction(stmt, s)
}

func (sa *SemanticAnalyzer) analyzeFunction(stmt *ast.FuncDeclStmt, s *scope) error {
	fs := newScope(s)
	fs.function = stmt

	for _, param := range stmt.Params {
		if !fs.defineVar(param.Name, param.Type.Def) {
			sa.addError(param.FirstToken(), "duplicate parameter '%s'", param.Name)
		}
	}

	return ast.AcceptAll(stmt.Body.Stmts, sa.Self, fs)
}

func (sa *SemanticAnalyzer) VisitVarDeclStmt(stmt *ast.VarDeclStmt, s *scope) error {
	if err := ast.Accept(stmt.Value, sa.Self, s); err != nil {
		return err
	}

	if s == sa.globals {
		return nil
	}

	if !s.defineVar(stmt.Name, stmt.Type.Def) {
		sa.addError(stmt.FirstToken(), "'%s' is already declared in this block", stmt.Name)
	}
	return nil
}

func (sa *SemanticAnalyzer) VisitForStmt(stmt *ast.ForStmt, s *scope) error {
	return sa.Walker.VisitForStmt(stmt, newScope(s))
}

func (sa *SemanticAnalyzer) VisitReturnStmt(stmt *ast.ReturnStmt, s *scope) error {
	if err := ast.Accept(stmt.Value, sa.Self, s); err != nil {
		return err
	}

	fn := s.enclosingFunction()
	if fn == nil {
		sa.addError(stmt.FirstToken(), "return outside of a function")
		return nil
	}

	switch {
	case fn.ReturnType.IsVoid() && stmt.Value != nil:
		sa.addError(stmt.FirstToken(), "void function '%s' cannot return a value", fn.Name)
	case !fn.ReturnType.IsVoid() && stmt.Value == nil:
		sa.addError(stmt.FirstToken(), "function '%s' must return a value", fn.Name)
	}
	return nil
}

func (sa *SemanticAnalyzer) VisitGroupingExpr(expr *ast.GroupingExpr, s *scope) error {
	return ast.Accept(expr.Expr, sa.Self, s)
}

func (sa *SemanticAnalyzer) VisitAssignExpr(expr *ast.AssignExpr, s *scope) error {
	if err := ast.Accept(expr.Value, sa.Self, s); err != nil {
		return err
	}

	def, ok := s.lookupVar(expr.Name)
	if !ok {
		sa.addError(expr.FirstToken(), "undefined variable '%s'", expr.Name)
	}
	sa.exprType = def
	return nil
}

func (sa *SemanticAnalyzer) VisitBinaryExpr(expr *ast.BinaryExpr, s *scope) error {
	if err := ast.Accept(expr.Left, sa.Self, s); err != nil {
		return err
	}
	left := sa.exprType

	if err := ast.Accept(expr.Right, sa.Self, s); err != nil {
		return err
	}
	right := sa.exprType

	switch expr.Operator {
	case lexer.EQUAL_EQUAL, lexer.BANG_EQUAL, lexer.LESS, lexer.LESS_EQUAL,
		lexer.GREATER, lexer.GREATER_EQUAL, lexer.AND, lexer.OR:
		sa.exprType = sa.resolver.BoolType()
	default:
		sa.exprType = left
		if left == nil {
			sa.exprType = right
		}
	}
	return nil
}

func (sa *SemanticAnalyzer) VisitUnaryExpr(expr *ast.UnaryExpr, s *scope) error {
	if err := ast.Accept(expr.Operand, sa.Self, s); err != nil {
		return err
	}

	if expr.Operator == lexer.BANG {
		sa.exprType = sa.resolver.BoolType()
	}
	return nil
}

func (sa *SemanticAnalyzer) VisitLiteralExpr(expr *ast.LiteralExpr, s *scope) error {
	sa.exprType = sa.resolver.LiteralType(expr.Value)
	return nil
}

func (sa *SemanticAnalyzer) VisitVariableExpr(expr *ast.VariableExpr, s *scope) error {
	def, ok := s.lookupVar(expr.Name)
	if !ok {
		sa.addError(expr.FirstToken(), "undefined variable '%s'", expr.Name)
	}
	sa.exprType = def
	return nil
}

func (sa *SemanticAnalyzer) VisitCallExpr(expr *ast.CallExpr, s *scope) error {
	var target *ast.FuncDeclStmt

	switch callee := expr.Callee.(type) {
	case *ast.VariableExpr:
		target = sa.lookupFunction(callee.Name, s)
		if target == nil {
			sa.addError(callee.FirstToken(), "unknown function '%s'", callee.Name)
		}

	case *ast.GetExpr:
		if err := ast.Accept(callee.Object, sa.Self, s); err != nil {
			return err
		}
		if obj, ok := sa.exprType.(*types.ObjectType); ok {
			target = sa.lookupMethod(obj, callee.Name)
			if target == nil {
				sa.addError(callee.FirstToken(), "type '%s' has no method '%s'", obj.Name(), callee.Name)
			}
		}

	default:
		if err := ast.Accept(expr.Callee, sa.Self, s); err != nil {
			return err
		}
		sa.addError(expr.FirstToken(), "expression is not callable")
	}

	if err := ast.AcceptAll(expr.Args, sa.Self, s); err != nil {
		return err
	}

	sa.exprType = nil
	if target == nil {
		return nil
	}

	if len(expr.Args) != len(target.Params) {
		sa.addError(expr.FirstToken(), "'%s' expects %d arguments, got %d", target.Name, len(target.Params), len(expr.Args))
	}
	sa.exprType = target.ReturnType.Def
	return nil
}

func (sa *SemanticAnalyzer) lookupFunction(name string, s *scope) *ast.FuncDeclStmt {
	if class := s.enclosingClass(); class != nil {
		if method := sa.lookupMethod(class, name); method != nil {
			return method
		}
	}
	return sa.funcs[name]
}

func (sa *SemanticAnalyzer) lookupMethod(obj *types.ObjectType, name string) *ast.FuncDeclStmt {
	decl, ok := sa.decls[obj]
	if !ok {
		return nil
	}

	for _, method := range decl.Methods {
		if method.Name == name {
			return method
		}
	}
	return nil
}

func (sa *SemanticAnalyzer) VisitGetExpr(expr *ast.GetExpr, s *scope) error {
	if err := ast.Accept(expr.Object, sa.Self, s); err != nil {
		return err
	}

	sa.exprType = sa.memberType(sa.exprType, expr.Name, expr.FirstToken())
	return nil
}

func (sa *SemanticAnalyzer) VisitSetExpr(expr *ast.SetExpr, s *scope) error {
	if err := ast.Accept(expr.Object, sa.Self, s); err != nil {
		return err
	}
	member := sa.memberType(sa.exprType, expr.Name, expr.FirstToken())

	if err := ast.Accept(expr.Value, sa.Self, s); err != nil {
		return err
	}
	sa.exprType = member
	return nil
}

func (sa *SemanticAnalyzer) memberType(def types.Definition, name string, token *lexer.Token) types.Definition {
	if def == nil {
		return nil
	}

	obj, ok := def.(*types.ObjectType)
	if !ok {
		sa.addError(token, "type '%s' has no members", def.Name())
		return nil
	}

	child, ok := obj.GetMember(name)
	if !ok {
		sa.addError(token, "type '%s' has no member '%s'", obj.Name(), name)
		return nil
	}
	return child.Type
}

func (sa *SemanticAnalyzer) addError(token *lexer.Token, format string, args ...any) {
	sa.eh.AddError(compiler_errors.NewSourceError(
		compiler_errors.PhaseSemantic,
		token.FileName,
		token.Line,
		token.Offset,
		fmt.Sprintf(format, args...),
	))
}

// classIndexer maps every class declaration to its registered ObjectType.
type classIndexer struct {
	ast.Walker[*declContext]

	resolver *TypeResolver
	classes  map[*ast.ClassDeclStmt]*types.ObjectType
	decls    map[*types.ObjectType]*ast.ClassDeclStmt
}

func (ci *classIndexer) VisitClassDeclStmt(stmt *ast.ClassDeclStmt, ctx *declContext) error {
	inner := ctx.enter(stmt.Name)
	if obj, ok := ci.resolver.GetUserType(inner.scope); ok {
		ci.classes[stmt] = obj
		ci.decls[obj] = stmt
	}

	if err := ast.AcceptAll(stmt.Methods, ci.Self, inner); err != nil {
		return err
	}
	return ast.AcceptAll(stmt.Classes, ci.Self, inner)
}

func (ci *classIndexer) VisitFuncDeclStmt(stmt *ast.FuncDeclStmt, ctx *declContext) error {
	return ast.Accept(stmt.Body, ci.Self, ctx.enter(stmt.Name))
}
