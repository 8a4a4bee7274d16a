package emitter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/backend"
	"github.com/kievzenit/cyc/internal/ir"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/types"
)

func (f *funcEmitter) eval(expr ast.Expr, sb *strings.Builder) (*ir.Instance, error) {
	f.value = nil
	if err := ast.Accept(expr, f.Self, sb); err != nil {
		return nil, err
	}
	return f.value, nil
}

// operand evaluates expr and requires it to produce a value.
func (f *funcEmitter) operand(expr ast.Expr, sb *strings.Builder) (*ir.Instance, error) {
	value, err := f.eval(expr, sb)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, f.errorf(expr, "void value used as an operand")
	}
	return value, nil
}

// condition evaluates expr as an i1. Numbers compare against zero.
func (f *funcEmitter) condition(expr ast.Expr, sb *strings.Builder) (*ir.Instance, error) {
	value, err := f.operand(expr, sb)
	if err != nil {
		return nil, err
	}

	switch value.Def.Format() {
	case types.FormatBool:
		return value, nil
	case types.FormatInt:
		return f.instruction(f.e.resolver.BoolType(), sb, "icmp ne %s, 0", value.Operand())
	case types.FormatFloat:
		return f.instruction(f.e.resolver.BoolType(), sb, "fcmp une %s, 0.0", value.Operand())
	}

	return nil, f.errorf(expr, "condition must be a bool or a number, got '%s'", value.Def.Name())
}

// instruction emits "%N = <text>" into a fresh temporary of type def.
func (f *funcEmitter) instruction(def types.Definition, sb *strings.Builder, format string, args ...any) (*ir.Instance, error) {
	tmp, err := f.tracker.NewTempInstance(def)
	if err != nil {
		return nil, err
	}

	f.emit(sb, "%s = "+format, append([]any{tmp.Name}, args...)...)
	return tmp, nil
}

func (f *funcEmitter) VisitGroupingExpr(expr *ast.GroupingExpr, sb *strings.Builder) error {
	return ast.Accept(expr.Expr, f.Self, sb)
}

func (f *funcEmitter) VisitLiteralExpr(expr *ast.LiteralExpr, _ *strings.Builder) error {
	var err error

	switch v := expr.Value.(type) {
	case int32:
		f.value, err = f.tracker.NewLiteral(f.e.resolver.IntType(32), strconv.FormatInt(int64(v), 10))
	case float64:
		f.value, err = f.tracker.NewLiteral(f.e.resolver.FloatType(64), floatConst(v, 64))
	case bool:
		f.value, err = f.tracker.NewLiteral(f.e.resolver.BoolType(), strconv.FormatBool(v))
	case string:
		return f.errorf(expr, "string literals are not supported")
	case nil:
		return f.errorf(expr, "null literals are not supported")
	default:
		return f.errorf(expr, "unsupported literal %v", v)
	}

	return err
}

func (f *funcEmitter) VisitVariableExpr(expr *ast.VariableExpr, sb *strings.Builder) error {
	ptr, def, err := f.variableAddress(expr, expr.Name)
	if err != nil {
		return err
	}

	f.value, err = f.load(def, ptr, sb)
	return err
}

func (f *funcEmitter) VisitGetExpr(expr *ast.GetExpr, sb *strings.Builder) error {
	ptr, def, err := f.memberAddress(expr.Object, expr.Name, sb)
	if err != nil {
		return err
	}

	f.value, err = f.load(def, ptr, sb)
	return err
}

func (f *funcEmitter) VisitAssignExpr(expr *ast.AssignExpr, sb *strings.Builder) error {
	ptr, def, err := f.variableAddress(expr, expr.Name)
	if err != nil {
		return err
	}
	return f.store(expr, expr.Value, def, ptr, sb)
}

func (f *funcEmitter) VisitSetExpr(expr *ast.SetExpr, sb *strings.Builder) error {
	ptr, def, err := f.memberAddress(expr.Object, expr.Name, sb)
	if err != nil {
		return err
	}
	return f.store(expr, expr.Value, def, ptr, sb)
}

func (f *funcEmitter) load(def types.Definition, ptr string, sb *strings.Builder) (*ir.Instance, error) {
	tmp, err := f.tracker.NewTempInstance(def)
	if err != nil {
		return nil, err
	}

	f.emit(sb, "%s = load %s, ptr %s", tmp.Name, tmp.Type, ptr)
	return tmp, nil
}

func (f *funcEmitter) store(node ast.Node, valueExpr ast.Expr, def types.Definition, ptr string, sb *strings.Builder) error {
	value, err := f.operand(valueExpr, sb)
	if err != nil {
		return err
	}
	if value, err = f.convert(node, value, def, sb); err != nil {
		return err
	}

	f.emit(sb, "store %s, ptr %s", value.Operand(), ptr)
	f.value = value
	return nil
}

// address returns a pointer to the storage named by expr along with the
// type stored there.
func (f *funcEmitter) address(expr ast.Expr, sb *strings.Builder) (string, types.Definition, error) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		return f.variableAddress(e, e.Name)
	case *ast.GetExpr:
		return f.memberAddress(e.Object, e.Name, sb)
	case *ast.GroupingExpr:
		return f.address(e.Expr, sb)
	}
	return "", nil, f.errorf(expr, "expression is not addressable")
}

func (f *funcEmitter) variableAddress(node ast.Node, name string) (string, types.Definition, error) {
	if slot, ok := f.tracker.GetInstance(f.path + "." + name); ok {
		return slot.Name, slot.Def, nil
	}

	if global, ok := f.e.globalsMap[name]; ok {
		return backend.Identifier('@', name), global.Type.Def, nil
	}

	return "", nil, f.errorf(node, "undefined variable '%s'", name)
}

func (f *funcEmitter) memberAddress(object ast.Expr, name string, sb *strings.Builder) (string, types.Definition, error) {
	base, def, err := f.address(object, sb)
	if err != nil {
		return "", nil, err
	}

	obj, ok := def.(*types.ObjectType)
	if !ok {
		return "", nil, f.errorf(object, "type '%s' has no members", def.Name())
	}

	index := obj.MemberIndex(name)
	if index < 0 {
		return "", nil, f.errorf(object, "type '%s' has no member '%s'", obj.FQN, name)
	}
	member := obj.Children[index]

	st, err := f.e.mapper.Struct(obj)
	if err != nil {
		return "", nil, err
	}

	tmp, err := f.tracker.NewTempInstance(member.Type)
	if err != nil {
		return "", nil, err
	}
	f.emit(sb, "%s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d", tmp.Name, st.Ref, base, st.FieldIndex[index])

	return tmp.Name, member.Type, nil
}

func (f *funcEmitter) VisitCallExpr(expr *ast.CallExpr, sb *strings.Builder) error {
	callee, ok := expr.Callee.(*ast.VariableExpr)
	if !ok {
		if _, isGet := expr.Callee.(*ast.GetExpr); isGet {
			return f.errorf(expr, "method calls are not supported")
		}
		return f.errorf(expr, "expression is not callable")
	}

	fn, ok := f.e.funcsMap[callee.Name]
	if !ok {
		return f.errorf(expr, "unknown function '%s'", callee.Name)
	}
	if len(fn.Params) != len(expr.Args) {
		return f.errorf(expr, "'%s' expects %d arguments, got %d", fn.Name, len(fn.Params), len(expr.Args))
	}

	args := make([]string, 0, len(expr.Args))
	for i, arg := range expr.Args {
		value, err := f.operand(arg, sb)
		if err != nil {
			return err
		}
		if value, err = f.convert(arg, value, fn.Params[i].Type.Def, sb); err != nil {
			return err
		}
		args = append(args, value.Operand())
	}

	retDef := fn.ReturnType.Def
	target := backend.Identifier('@', fn.Name)

	if retDef.Format() == types.FormatVoid {
		f.emit(sb, "call void %s(%s)", target, strings.Join(args, ", "))
		f.value = nil
		return nil
	}

	retType, err := f.e.mapper.BackendType(retDef)
	if err != nil {
		return err
	}

	f.value, err = f.instruction(retDef, sb, "call %s %s(%s)", retType, target, strings.Join(args, ", "))
	return err
}

func (f *funcEmitter) VisitUnaryExpr(expr *ast.UnaryExpr, sb *strings.Builder) error {
	switch expr.Operator {
	case lexer.BANG:
		cond, err := f.condition(expr.Operand, sb)
		if err != nil {
			return err
		}
		if cond.Literal {
			f.value, err = f.tracker.NewLiteral(cond.Def, strconv.FormatBool(cond.Name != "true"))
			return err
		}
		f.value, err = f.instruction(cond.Def, sb, "xor %s, true", cond.Operand())
		return err

	case lexer.MINUS:
		value, err := f.operand(expr.Operand, sb)
		if err != nil {
			return err
		}
		f.value, err = f.negate(expr, value, sb)
		return err

	case lexer.PLUS_PLUS, lexer.MINUS_MINUS:
		return f.step(expr, sb)
	}

	return f.errorf(expr, "unsupported unary operator '%s'", expr.Operator)
}

func (f *funcEmitter) negate(node ast.Node, value *ir.Instance, sb *strings.Builder) (*ir.Instance, error) {
	switch value.Def.Format() {
	case types.FormatInt:
		if value.Literal {
			if trimmed, ok := strings.CutPrefix(value.Name, "-"); ok {
				return f.tracker.NewLiteral(value.Def, trimmed)
			}
			return f.tracker.NewLiteral(value.Def, "-"+value.Name)
		}
		return f.instruction(value.Def, sb, "sub %s 0, %s", value.Type, value.Name)

	case types.FormatFloat:
		if value.Literal {
			return f.tracker.NewLiteral(value.Def, floatConst(-literalFloat(value), value.Def.BitSize()))
		}
		return f.instruction(value.Def, sb, "fneg %s", value.Operand())
	}

	return nil, f.errorf(node, "cannot negate a value of type '%s'", value.Def.Name())
}

// step implements prefix ++ and --. The result is the updated value.
func (f *funcEmitter) step(expr *ast.UnaryExpr, sb *strings.Builder) error {
	ptr, def, err := f.address(expr.Operand, sb)
	if err != nil {
		return err
	}

	var op, one string
	switch def.Format() {
	case types.FormatInt:
		op, one = intOps[lexer.PLUS], "1"
		if expr.Operator == lexer.MINUS_MINUS {
			op = intOps[lexer.MINUS]
		}
	case types.FormatFloat:
		op, one = floatOps[lexer.PLUS], floatConst(1, def.BitSize())
		if expr.Operator == lexer.MINUS_MINUS {
			op = floatOps[lexer.MINUS]
		}
	default:
		return f.errorf(expr, "operator '%s' requires a numeric operand", expr.Operator)
	}

	current, err := f.load(def, ptr, sb)
	if err != nil {
		return err
	}

	updated, err := f.instruction(def, sb, "%s %s, %s", op, current.Operand(), one)
	if err != nil {
		return err
	}

	f.emit(sb, "store %s, ptr %s", updated.Operand(), ptr)
	f.value = updated
	return nil
}

func (f *funcEmitter) VisitBinaryExpr(expr *ast.BinaryExpr, sb *strings.Builder) error {
	if expr.Operator == lexer.AND || expr.Operator == lexer.OR {
		return f.logical(expr, sb)
	}

	left, err := f.operand(expr.Left, sb)
	if err != nil {
		return err
	}
	right, err := f.operand(expr.Right, sb)
	if err != nil {
		return err
	}

	left, right, err = f.unify(expr, left, right, sb)
	if err != nil {
		return err
	}

	format := left.Def.Format()

	if _, ok := intPredicates[expr.Operator]; ok {
		boolType := f.e.resolver.BoolType()
		switch format {
		case types.FormatInt, types.FormatBool:
			f.value, err = f.instruction(boolType, sb, "icmp %s %s, %s", intPredicates[expr.Operator], left.Operand(), right.Name)
		case types.FormatFloat:
			f.value, err = f.instruction(boolType, sb, "fcmp %s %s, %s", floatPredicates[expr.Operator], left.Operand(), right.Name)
		default:
			return f.errorf(expr, "cannot compare values of type '%s'", left.Def.Name())
		}
		return err
	}

	var ops map[lexer.TokenKind]string
	switch format {
	case types.FormatInt:
		ops = intOps
	case types.FormatFloat:
		ops = floatOps
	default:
		return f.errorf(expr, "operator '%s' requires numeric operands, got '%s'", expr.Operator, left.Def.Name())
	}

	op, ok := ops[expr.Operator]
	if !ok {
		return f.errorf(expr, "unsupported binary operator '%s'", expr.Operator)
	}

	f.value, err = f.instruction(left.Def, sb, "%s %s, %s", op, left.Operand(), right.Name)
	return err
}

// logical evaluates both sides of and/or and combines them as i1 values.
func (f *funcEmitter) logical(expr *ast.BinaryExpr, sb *strings.Builder) error {
	left, err := f.condition(expr.Left, sb)
	if err != nil {
		return err
	}
	right, err := f.condition(expr.Right, sb)
	if err != nil {
		return err
	}

	op := "and"
	if expr.Operator == lexer.OR {
		op = "or"
	}

	f.value, err = f.instruction(f.e.resolver.BoolType(), sb, "%s %s, %s", op, left.Operand(), right.Name)
	return err
}

// unify brings both operands to one type. A literal adopts the type of the
// other operand, otherwise the narrower side is widened.
func (f *funcEmitter) unify(node ast.Node, left, right *ir.Instance, sb *strings.Builder) (*ir.Instance, *ir.Instance, error) {
	if left.Def.Name() == right.Def.Name() {
		return left, right, nil
	}

	var err error
	switch {
	case right.Literal && !left.Literal:
		right, err = f.convert(node, right, left.Def, sb)
	case left.Literal && !right.Literal:
		left, err = f.convert(node, left, right.Def, sb)
	case left.Def.CanBeImplicitlyCastedTo(right.Def):
		left, err = f.convert(node, left, right.Def, sb)
	case right.Def.CanBeImplicitlyCastedTo(left.Def):
		right, err = f.convert(node, right, left.Def, sb)
	case left.Def.Format() == types.FormatInt && right.Def.Format() == types.FormatFloat:
		left, err = f.convert(node, left, right.Def, sb)
	case left.Def.Format() == types.FormatFloat && right.Def.Format() == types.FormatInt:
		right, err = f.convert(node, right, left.Def, sb)
	default:
		return nil, nil, f.errorf(node, "mismatched operand types '%s' and '%s'", left.Def.Name(), right.Def.Name())
	}

	return left, right, err
}

// convert changes value to type to. Literals are rewritten in place where the
// constant form allows it, other values get a cast instruction.
func (f *funcEmitter) convert(node ast.Node, value *ir.Instance, to types.Definition, sb *strings.Builder) (*ir.Instance, error) {
	if value.Def.Name() == to.Name() {
		return value, nil
	}

	from := value.Def
	if value.Literal {
		switch {
		case from.Format() == types.FormatInt && to.Format() == types.FormatInt,
			from.Format() == types.FormatBool && to.Format() == types.FormatBool:
			return f.tracker.NewLiteral(to, value.Name)
		case from.Format() == types.FormatInt && to.Format() == types.FormatFloat && to.BitSize() <= 64:
			n, err := strconv.ParseInt(value.Name, 10, 64)
			if err != nil {
				return nil, f.errorf(node, "invalid integer constant %s", value.Name)
			}
			return f.tracker.NewLiteral(to, floatConst(float64(n), to.BitSize()))
		case from.Format() == types.FormatFloat && to.Format() == types.FormatFloat && to.BitSize() <= 64:
			return f.tracker.NewLiteral(to, floatConst(literalFloat(value), to.BitSize()))
		}
	}

	toType, err := f.e.mapper.BackendType(to)
	if err != nil {
		return nil, err
	}

	if value.Type == toType && from.Format() == to.Format() {
		return &ir.Instance{Name: value.Name, Type: toType, Def: to, Literal: value.Literal}, nil
	}

	var op string
	switch {
	case from.Format() == types.FormatInt && to.Format() == types.FormatInt:
		op = "sext"
		if from.BitSize() > to.BitSize() {
			op = "trunc"
		}
	case from.Format() == types.FormatFloat && to.Format() == types.FormatFloat:
		op = "fpext"
		if from.BitSize() > to.BitSize() {
			op = "fptrunc"
		}
	case from.Format() == types.FormatInt && to.Format() == types.FormatFloat:
		op = "sitofp"
	case from.Format() == types.FormatFloat && to.Format() == types.FormatInt:
		op = "fptosi"
	case from.Format() == types.FormatBool && to.Format() == types.FormatInt:
		op = "zext"
	case from.Format() == types.FormatBool && to.Format() == types.FormatFloat:
		op = "uitofp"
	default:
		return nil, f.errorf(node, "cannot convert '%s' to '%s'", from.Name(), to.Name())
	}

	return f.instruction(to, sb, "%s %s to %s", op, value.Operand(), toType)
}

// floatConst renders a float in the hexadecimal form the IR accepts for any
// value. Single precision constants must be exactly representable, so the
// value is rounded first.
func floatConst(v float64, bits int) string {
	if bits == 32 {
		v = float64(float32(v))
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(v))
}

func literalFloat(value *ir.Instance) float64 {
	bits, err := strconv.ParseUint(strings.TrimPrefix(value.Name, "0x"), 16, 64)
	if err != nil {
		panic("literalFloat(): malformed float constant: " + value.Name)
	}
	return math.Float64frombits(bits)
}
