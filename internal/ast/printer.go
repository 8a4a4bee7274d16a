package ast

import (
	"fmt"
	"strings"

	"github.com/kievzenit/cyc/internal/lexer"
)

var operatorSymbols = map[lexer.TokenKind]string{
	lexer.MINUS:         "-",
	lexer.MINUS_MINUS:   "--",
	lexer.PLUS:          "+",
	lexer.PLUS_PLUS:     "++",
	lexer.SLASH:         "/",
	lexer.STAR:          "*",
	lexer.PERCENT:       "%",
	lexer.BANG:          "!",
	lexer.BANG_EQUAL:    "!=",
	lexer.EQUAL_EQUAL:   "==",
	lexer.GREATER:       ">",
	lexer.GREATER_EQUAL: ">=",
	lexer.LESS:          "<",
	lexer.LESS_EQUAL:    "<=",
	lexer.AND:           "and",
	lexer.OR:            "or",
}

func OperatorSymbol(kind lexer.TokenKind) string {
	if symbol, ok := operatorSymbols[kind]; ok {
		return symbol
	}
	return kind.String()
}

// Printer renders nodes as fully parenthesized s-expressions into the builder
// it is given as context.
type Printer struct{}

// Print renders a single node.
func Print(node Node) string {
	var sb strings.Builder
	_ = Accept(node, Visitor[*strings.Builder](&Printer{}), &sb)
	return sb.String()
}

// PrintUnit renders each top-level statement of a file on its own line.
func PrintUnit(unit *TranslationUnit) string {
	var sb strings.Builder
	for _, stmt := range unit.Stmts {
		sb.WriteString(Print(stmt))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *Printer) parenthesize(sb *strings.Builder, name string, parts ...any) error {
	sb.WriteByte('(')
	sb.WriteString(name)

	for _, part := range parts {
		sb.WriteByte(' ')

		switch v := part.(type) {
		case string:
			sb.WriteString(v)
		case Node:
			if isNilNode(v) {
				sb.WriteString("nil")
				continue
			}
			if err := Accept(v, Visitor[*strings.Builder](p), sb); err != nil {
				return err
			}
		case nil:
			sb.WriteString("nil")
		default:
			panic(fmt.Sprintf("Printer.parenthesize(): received illegal part: %T", part))
		}
	}

	sb.WriteByte(')')
	return nil
}

func isNilNode(node Node) bool {
	switch n := node.(type) {
	case *BlockStmt:
		return n == nil
	case *TypeStmt:
		return n == nil
	}
	return node == nil
}

func (p *Printer) VisitBlockStmt(stmt *BlockStmt, sb *strings.Builder) error {
	parts := make([]any, 0, len(stmt.Stmts))
	for _, s := range stmt.Stmts {
		parts = append(parts, s)
	}
	return p.parenthesize(sb, "block", parts...)
}

func (p *Printer) VisitClassDeclStmt(stmt *ClassDeclStmt, sb *strings.Builder) error {
	parts := []any{stmt.Name}
	for _, m := range stmt.Members {
		parts = append(parts, m)
	}
	for _, m := range stmt.Methods {
		parts = append(parts, m)
	}
	for _, c := range stmt.Classes {
		parts = append(parts, c)
	}
	return p.parenthesize(sb, "class", parts...)
}

func (p *Printer) VisitExprStmt(stmt *ExprStmt, sb *strings.Builder) error {
	return p.parenthesize(sb, "expr", stmt.Expr)
}

func (p *Printer) VisitFuncDeclStmt(stmt *FuncDeclStmt, sb *strings.Builder) error {
	parts := []any{stmt.ReturnType, stmt.Name}
	for _, param := range stmt.Params {
		parts = append(parts, param)
	}
	parts = append(parts, stmt.Body)
	return p.parenthesize(sb, "func", parts...)
}

func (p *Printer) VisitParamStmt(stmt *ParamStmt, sb *strings.Builder) error {
	return p.parenthesize(sb, "param", stmt.Type, stmt.Name)
}

func (p *Printer) VisitIfStmt(stmt *IfStmt, sb *strings.Builder) error {
	if stmt.Else == nil {
		return p.parenthesize(sb, "if", stmt.Cond, stmt.Then)
	}
	return p.parenthesize(sb, "if", stmt.Cond, stmt.Then, stmt.Else)
}

func (p *Printer) VisitReturnStmt(stmt *ReturnStmt, sb *strings.Builder) error {
	if stmt.Value == nil {
		return p.parenthesize(sb, "return")
	}
	return p.parenthesize(sb, "return", stmt.Value)
}

func (p *Printer) VisitTypeStmt(stmt *TypeStmt, sb *strings.Builder) error {
	sb.WriteString(stmt.TypeName())
	return nil
}

func (p *Printer) VisitVarDeclStmt(stmt *VarDeclStmt, sb *strings.Builder) error {
	if stmt.Value == nil {
		return p.parenthesize(sb, "var", stmt.Type, stmt.Name)
	}
	return p.parenthesize(sb, "var", stmt.Type, stmt.Name, stmt.Value)
}

func (p *Printer) VisitForStmt(stmt *ForStmt, sb *strings.Builder) error {
	return p.parenthesize(sb, "for", stmt.Init, stmt.Cond, stmt.Incr, stmt.Body)
}

func (p *Printer) VisitWhileStmt(stmt *WhileStmt, sb *strings.Builder) error {
	return p.parenthesize(sb, "while", stmt.Cond, stmt.Body)
}

func (p *Printer) VisitGroupingExpr(expr *GroupingExpr, sb *strings.Builder) error {
	return p.parenthesize(sb, "group", expr.Expr)
}

func (p *Printer) VisitAssignExpr(expr *AssignExpr, sb *strings.Builder) error {
	return p.parenthesize(sb, "=", expr.Name, expr.Value)
}

func (p *Printer) VisitBinaryExpr(expr *BinaryExpr, sb *strings.Builder) error {
	return p.parenthesize(sb, OperatorSymbol(expr.Operator), expr.Left, expr.Right)
}

func (p *Printer) VisitCallExpr(expr *CallExpr, sb *strings.Builder) error {
	parts := []any{expr.Callee}
	for _, arg := range expr.Args {
		parts = append(parts, arg)
	}
	return p.parenthesize(sb, "call", parts...)
}

func (p *Printer) VisitGetExpr(expr *GetExpr, sb *strings.Builder) error {
	return p.parenthesize(sb, ".", expr.Object, expr.Name)
}

func (p *Printer) VisitLiteralExpr(expr *LiteralExpr, sb *strings.Builder) error {
	switch v := expr.Value.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		fmt.Fprintf(sb, "%q", v)
	default:
		fmt.Fprintf(sb, "%v", v)
	}
	return nil
}

func (p *Printer) VisitSetExpr(expr *SetExpr, sb *strings.Builder) error {
	sb.WriteString("(= ")
	if err := p.parenthesize(sb, ".", expr.Object, expr.Name); err != nil {
		return err
	}
	sb.WriteByte(' ')
	if err := Accept(expr.Value, Visitor[*strings.Builder](p), sb); err != nil {
		return err
	}
	sb.WriteByte(')')
	return nil
}

func (p *Printer) VisitUnaryExpr(expr *UnaryExpr, sb *strings.Builder) error {
	return p.parenthesize(sb, OperatorSymbol(expr.Operator), expr.Operand)
}

func (p *Printer) VisitVariableExpr(expr *VariableExpr, sb *strings.Builder) error {
	sb.WriteString(expr.Name)
	return nil
}
