package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/backend"
	"github.com/kievzenit/cyc/internal/ir"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/types"
)

var intOps = map[lexer.TokenKind]string{
	lexer.PLUS:    "add",
	lexer.MINUS:   "sub",
	lexer.STAR:    "mul",
	lexer.SLASH:   "sdiv",
	lexer.PERCENT: "srem",
}

var floatOps = map[lexer.TokenKind]string{
	lexer.PLUS:    "fadd",
	lexer.MINUS:   "fsub",
	lexer.STAR:    "fmul",
	lexer.SLASH:   "fdiv",
	lexer.PERCENT: "frem",
}

var intPredicates = map[lexer.TokenKind]string{
	lexer.EQUAL_EQUAL:   "eq",
	lexer.BANG_EQUAL:    "ne",
	lexer.LESS:          "slt",
	lexer.LESS_EQUAL:    "sle",
	lexer.GREATER:       "sgt",
	lexer.GREATER_EQUAL: "sge",
}

var floatPredicates = map[lexer.TokenKind]string{
	lexer.EQUAL_EQUAL:   "oeq",
	lexer.BANG_EQUAL:    "une",
	lexer.LESS:          "olt",
	lexer.LESS_EQUAL:    "ole",
	lexer.GREATER:       "ogt",
	lexer.GREATER_EQUAL: "oge",
}

// funcEmitter generates one function. Every expression visit leaves its
// result in value; void calls leave nil.
type funcEmitter struct {
	ast.Walker[*strings.Builder]

	e       *Emitter
	unit    *ast.TranslationUnit
	fn      *ast.FuncDeclStmt
	path    string
	tracker *ir.Tracker

	value             *ir.Instance
	labels            int
	controlFlowHappen bool
}

func newFuncEmitter(e *Emitter, unit *ast.TranslationUnit, fn *ast.FuncDeclStmt) *funcEmitter {
	f := &funcEmitter{
		e:       e,
		unit:    unit,
		fn:      fn,
		path:    unit.Module,
		tracker: ir.NewTracker(e.mapper),
	}
	if fn != nil {
		f.path = unit.Module + "." + fn.Name
	}
	f.Self = f
	return f
}

func (f *funcEmitter) emit(sb *strings.Builder, format string, args ...any) {
	sb.WriteString("  ")
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}

func (f *funcEmitter) label(sb *strings.Builder, name string) {
	sb.WriteString(name)
	sb.WriteString(":\n")
	f.controlFlowHappen = false
}

func (f *funcEmitter) nextLabel() string {
	f.labels++
	return strconv.Itoa(f.labels)
}

func (f *funcEmitter) errorf(node ast.Node, format string, args ...any) error {
	return unsupported(f.unit, node, format, args...)
}

func (f *funcEmitter) emitForFuncDeclStmt() (string, error) {
	sb := &strings.Builder{}

	retType, err := f.e.mapper.BackendType(f.fn.ReturnType.Def)
	if err != nil {
		return "", err
	}

	params := make([]string, 0, len(f.fn.Params))
	for _, param := range f.fn.Params {
		typ, err := f.e.mapper.BackendType(param.Type.Def)
		if err != nil {
			return "", err
		}
		params = append(params, typ+" "+backend.Identifier('%', "p."+param.Name))
	}

	fmt.Fprintf(sb, "define %s %s(%s) {\n", retType, backend.Identifier('@', f.fn.Name), strings.Join(params, ", "))

	f.tracker.NewScope()
	for _, param := range f.fn.Params {
		slot, err := f.tracker.NewInstance(param.Type.Def, f.path+"."+param.Name)
		if err != nil {
			return "", err
		}
		f.emit(sb, "%s = alloca %s", slot.Name, slot.Type)
		f.emit(sb, "store %s %s, ptr %s", slot.Type, backend.Identifier('%', "p."+param.Name), slot.Name)
	}

	if err := ast.Accept(f.fn.Body, f.Self, sb); err != nil {
		return "", err
	}

	if !f.controlFlowHappen {
		if f.fn.ReturnType.IsVoid() {
			f.emit(sb, "ret void")
		} else {
			f.emit(sb, "unreachable")
		}
	}

	if err := f.tracker.EndScope(); err != nil {
		return "", err
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

func (f *funcEmitter) VisitBlockStmt(stmt *ast.BlockStmt, sb *strings.Builder) error {
	f.tracker.NewBlockScope()

	for _, s := range stmt.Stmts {
		if f.controlFlowHappen {
			break
		}
		if err := ast.Accept(s, f.Self, sb); err != nil {
			return err
		}
	}

	return f.tracker.EndScope()
}

func (f *funcEmitter) VisitClassDeclStmt(stmt *ast.ClassDeclStmt, _ *strings.Builder) error {
	return checkNoMethods(f.unit, stmt)
}

func (f *funcEmitter) VisitFuncDeclStmt(stmt *ast.FuncDeclStmt, _ *strings.Builder) error {
	return f.errorf(stmt, "nested function '%s' is not supported", stmt.Name)
}

func (f *funcEmitter) VisitExprStmt(stmt *ast.ExprStmt, sb *strings.Builder) error {
	_, err := f.eval(stmt.Expr, sb)
	return err
}

func (f *funcEmitter) VisitVarDeclStmt(stmt *ast.VarDeclStmt, sb *strings.Builder) error {
	def := stmt.Type.Def

	// the name is bound after the initializer so it still sees the outer one
	slot, err := f.tracker.NewTempInstance(def)
	if err != nil {
		return err
	}
	f.emit(sb, "%s = alloca %s", slot.Name, slot.Type)

	if stmt.Value != nil {
		value, err := f.operand(stmt.Value, sb)
		if err != nil {
			return err
		}
		if value, err = f.convert(stmt, value, def, sb); err != nil {
			return err
		}
		f.emit(sb, "store %s, ptr %s", value.Operand(), slot.Name)
	}

	return f.tracker.Bind(slot, f.path+"."+stmt.Name)
}

func (f *funcEmitter) VisitIfStmt(stmt *ast.IfStmt, sb *strings.Builder) error {
	cond, err := f.condition(stmt.Cond, sb)
	if err != nil {
		return err
	}

	n := f.nextLabel()
	ifBody, ifElse, ifAfter := "ifbody"+n, "ifelse"+n, "ifafter"+n

	falseTarget := ifAfter
	if stmt.Else != nil {
		falseTarget = ifElse
	}
	f.emit(sb, "br i1 %s, label %%%s, label %%%s", cond.Name, ifBody, falseTarget)

	f.label(sb, ifBody)
	if err := ast.Accept(stmt.Then, f.Self, sb); err != nil {
		return err
	}
	if !f.controlFlowHappen {
		f.emit(sb, "br label %%%s", ifAfter)
	}

	if stmt.Else != nil {
		f.label(sb, ifElse)
		if err := ast.Accept(stmt.Else, f.Self, sb); err != nil {
			return err
		}
		if !f.controlFlowHappen {
			f.emit(sb, "br label %%%s", ifAfter)
		}
	}

	f.label(sb, ifAfter)
	return nil
}

func (f *funcEmitter) VisitWhileStmt(stmt *ast.WhileStmt, sb *strings.Builder) error {
	n := f.nextLabel()
	whileCheck, whileBody, whileAfter := "whilecheck"+n, "whilebody"+n, "whileafter"+n

	f.emit(sb, "br label %%%s", whileCheck)
	f.label(sb, whileCheck)

	cond, err := f.condition(stmt.Cond, sb)
	if err != nil {
		return err
	}
	f.emit(sb, "br i1 %s, label %%%s, label %%%s", cond.Name, whileBody, whileAfter)

	f.label(sb, whileBody)
	if err := ast.Accept(stmt.Body, f.Self, sb); err != nil {
		return err
	}
	if !f.controlFlowHappen {
		f.emit(sb, "br label %%%s", whileCheck)
	}

	f.label(sb, whileAfter)
	return nil
}

func (f *funcEmitter) VisitForStmt(stmt *ast.ForStmt, sb *strings.Builder) error {
	f.tracker.NewBlockScope()

	if err := ast.Accept(stmt.Init, f.Self, sb); err != nil {
		return err
	}

	n := f.nextLabel()
	forCheck, forBody, forInc, forAfter := "forcheck"+n, "forbody"+n, "forinc"+n, "forafter"+n

	f.emit(sb, "br label %%%s", forCheck)
	f.label(sb, forCheck)

	if stmt.Cond != nil {
		cond, err := f.condition(stmt.Cond, sb)
		if err != nil {
			return err
		}
		f.emit(sb, "br i1 %s, label %%%s, label %%%s", cond.Name, forBody, forAfter)
	} else {
		f.emit(sb, "br label %%%s", forBody)
	}

	f.label(sb, forBody)
	if err := ast.Accept(stmt.Body, f.Self, sb); err != nil {
		return err
	}
	if !f.controlFlowHappen {
		f.emit(sb, "br label %%%s", forInc)
	}

	f.label(sb, forInc)
	if stmt.Incr != nil {
		if _, err := f.eval(stmt.Incr, sb); err != nil {
			return err
		}
	}
	f.emit(sb, "br label %%%s", forCheck)

	f.label(sb, forAfter)
	return f.tracker.EndScope()
}

func (f *funcEmitter) VisitReturnStmt(stmt *ast.ReturnStmt, sb *strings.Builder) error {
	retDef := f.fn.ReturnType.Def

	if stmt.Value == nil {
		if retDef.Format() != types.FormatVoid {
			return f.errorf(stmt, "function '%s' must return a value", f.fn.Name)
		}
		f.emit(sb, "ret void")
		f.controlFlowHappen = true
		return nil
	}

	if retDef.Format() == types.FormatVoid {
		return f.errorf(stmt, "void function '%s' cannot return a value", f.fn.Name)
	}

	value, err := f.operand(stmt.Value, sb)
	if err != nil {
		return err
	}
	if value, err = f.convert(stmt, value, retDef, sb); err != nil {
		return err
	}

	f.emit(sb, "ret %s", value.Operand())
	f.controlFlowHappen = true
	return nil
}
