package semantic_analyzer

import (
	"errors"
	"fmt"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/types"
)

// declContext is threaded through the tree walks. scope is the dotted path of
// the enclosing module, classes and functions.
type declContext struct {
	unit  *ast.TranslationUnit
	scope string
}

func (c *declContext) enter(name string) *declContext {
	return &declContext{
		unit:  c.unit,
		scope: c.scope + "." + name,
	}
}

// BuildTypeTable registers every class of every file, binds every type
// reference in the program, lays out the object types and seals the table.
// Any failure aborts construction and no table is returned.
func BuildTypeTable(units []*ast.TranslationUnit, policy types.LayoutPolicy) (*types.Table, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	table := types.NewPrimitiveTable(policy.PointerSize)

	registrar := newTypeRegistrar(table)
	for _, unit := range units {
		ctx := &declContext{unit: unit, scope: unit.Module}
		if err := ast.AcceptAll(unit.Stmts, ast.Visitor[*declContext](registrar), ctx); err != nil {
			return nil, err
		}
	}

	resolver := NewTypeResolver(table)
	if err := resolveChildren(table, resolver); err != nil {
		return nil, err
	}

	binder := newTypeBinder(resolver)
	for _, unit := range units {
		ctx := &declContext{unit: unit, scope: unit.Module}
		_ = ast.AcceptAll(unit.Stmts, ast.Visitor[*declContext](binder), ctx)
	}
	if len(binder.errs) > 0 {
		return nil, errors.Join(binder.errs...)
	}

	if err := newLayoutEngine(policy).layoutAll(table.Objects()); err != nil {
		return nil, err
	}

	table.Seal()
	return table, nil
}

// typeRegistrar creates an ObjectType for every class declaration, nested
// classes included, and records its members.
type typeRegistrar struct {
	ast.Walker[*declContext]

	table *types.Table
}

func newTypeRegistrar(table *types.Table) *typeRegistrar {
	r := &typeRegistrar{table: table}
	r.Self = r
	return r
}

func (r *typeRegistrar) VisitClassDeclStmt(stmt *ast.ClassDeclStmt, ctx *declContext) error {
	inner := ctx.enter(stmt.Name)
	line := stmt.FirstToken().Line

	obj := types.NewObjectType(inner.scope, ctx.unit.Module, ctx.scope)
	obj.FileName = ctx.unit.FileName
	obj.Line = line

	for _, member := range stmt.Members {
		if _, exists := obj.GetMember(member.Name); exists {
			return compiler_errors.NewTypeError(
				compiler_errors.CodeInvalidMember,
				inner.scope,
				"duplicate member '%s'", member.Name,
			).At(ctx.unit.FileName, member.FirstToken().Line)
		}

		obj.AddChild(&types.ObjectChild{
			Name:     member.Name,
			TypeName: member.Type.TypeName(),
			Line:     member.FirstToken().Line,
		})
	}

	if err := r.table.Register(obj); err != nil {
		var te *compiler_errors.TypeError
		if errors.As(err, &te) {
			return te.At(ctx.unit.FileName, line)
		}
		return err
	}

	if err := ast.AcceptAll(stmt.Methods, r.Self, inner); err != nil {
		return err
	}
	return ast.AcceptAll(stmt.Classes, r.Self, inner)
}

func (r *typeRegistrar) VisitFuncDeclStmt(stmt *ast.FuncDeclStmt, ctx *declContext) error {
	return ast.Accept(stmt.Body, r.Self, ctx.enter(stmt.Name))
}

// resolveChildren binds the type of every object member. void members are
// rejected here.
func resolveChildren(table *types.Table, resolver *TypeResolver) error {
	errs := make([]error, 0)

	for _, obj := range table.Objects() {
		for _, child := range obj.Children {
			def, err := resolver.Resolve(child.TypeName, obj.FQN)
			if err != nil {
				errs = append(errs, locate(err, obj.FileName, child.Line))
				continue
			}

			if def.Format() == types.FormatVoid {
				errs = append(errs, compiler_errors.NewTypeError(
					compiler_errors.CodeInvalidMember,
					obj.FQN,
					"member '%s' cannot be void", child.Name,
				).At(obj.FileName, child.Line))
				continue
			}

			child.Type = def
		}
	}

	return errors.Join(errs...)
}

// typeBinder resolves every TypeStmt in the program: members, parameters,
// return types and locals.
type typeBinder struct {
	ast.Walker[*declContext]

	resolver *TypeResolver
	errs     []error
}

func newTypeBinder(resolver *TypeResolver) *typeBinder {
	b := &typeBinder{resolver: resolver}
	b.Self = b
	return b
}

func (b *typeBinder) VisitTypeStmt(stmt *ast.TypeStmt, ctx *declContext) error {
	def, err := b.resolver.Resolve(stmt.TypeName(), ctx.scope)
	if err != nil {
		b.errs = append(b.errs, locate(err, ctx.unit.FileName, stmt.FirstToken().Line))
		return nil
	}

	stmt.Def = def
	return nil
}

func (b *typeBinder) VisitClassDeclStmt(stmt *ast.ClassDeclStmt, ctx *declContext) error {
	return b.Walker.VisitClassDeclStmt(stmt, ctx.enter(stmt.Name))
}

func (b *typeBinder) VisitFuncDeclStmt(stmt *ast.FuncDeclStmt, ctx *declContext) error {
	_ = ast.Accept(stmt.ReturnType, b.Self, ctx)

	inner := ctx.enter(stmt.Name)
	_ = ast.AcceptAll(stmt.Params, b.Self, inner)
	return ast.Accept(stmt.Body, b.Self, inner)
}

func (b *typeBinder) VisitParamStmt(stmt *ast.ParamStmt, ctx *declContext) error {
	return b.bindValueType(stmt.Type, ctx, fmt.Sprintf("parameter '%s'", stmt.Name))
}

func (b *typeBinder) VisitVarDeclStmt(stmt *ast.VarDeclStmt, ctx *declContext) error {
	if err := b.bindValueType(stmt.Type, ctx, fmt.Sprintf("variable '%s'", stmt.Name)); err != nil {
		return err
	}
	return ast.Accept(stmt.Value, b.Self, ctx)
}

// bindValueType binds a type that must hold a value, which excludes void.
func (b *typeBinder) bindValueType(stmt *ast.TypeStmt, ctx *declContext, what string) error {
	if err := ast.Accept(stmt, b.Self, ctx); err != nil {
		return err
	}

	if stmt.IsResolved() && stmt.Def.Format() == types.FormatVoid {
		b.errs = append(b.errs, compiler_errors.NewTypeError(
			compiler_errors.CodeUnsupported,
			"void",
			"%s: void is only valid as a return type", what,
		).At(ctx.unit.FileName, stmt.FirstToken().Line))
	}
	return nil
}

func locate(err error, fileName string, line int) error {
	var te *compiler_errors.TypeError
	if errors.As(err, &te) {
		return te.At(fileName, line)
	}
	return err
}
