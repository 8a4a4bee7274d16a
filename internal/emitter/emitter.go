package emitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/backend"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/semantic_analyzer"
	"github.com/kievzenit/cyc/internal/types"
)

// Emitter writes textual LLVM IR for a whole program. It expects units that
// passed type table construction and scope analysis.
type Emitter struct {
	moduleName string
	units      []*ast.TranslationUnit
	table      *types.Table

	mapper   *backend.TypeMapper
	resolver *semantic_analyzer.TypeResolver
	logger   *slog.Logger

	funcsMap   map[string]*ast.FuncDeclStmt
	globalsMap map[string]*ast.VarDeclStmt

	funcs       []*function
	globalDecls []*ast.VarDeclStmt
	globalUnits []*ast.TranslationUnit
}

type function struct {
	unit *ast.TranslationUnit
	decl *ast.FuncDeclStmt
}

func NewEmitter(moduleName string, units []*ast.TranslationUnit, table *types.Table, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Emitter{
		moduleName: moduleName,
		units:      units,
		table:      table,

		mapper:   backend.NewTypeMapper(table),
		resolver: semantic_analyzer.NewTypeResolver(table),
		logger:   logger,

		funcsMap:   make(map[string]*ast.FuncDeclStmt),
		globalsMap: make(map[string]*ast.VarDeclStmt),

		funcs:       make([]*function, 0),
		globalDecls: make([]*ast.VarDeclStmt, 0),
		globalUnits: make([]*ast.TranslationUnit, 0),
	}
}

// Emit returns the IR text. Functions are generated concurrently, each with
// its own tracker, and written out in source order.
func (e *Emitter) Emit(ctx context.Context) (string, error) {
	if err := e.declareTopStmts(); err != nil {
		return "", err
	}

	out := &strings.Builder{}
	fmt.Fprintf(out, "; ModuleID = '%s'\n", e.moduleName)
	fmt.Fprintf(out, "source_filename = \"%s\"\n", e.moduleName)

	if err := e.emitTypes(out); err != nil {
		return "", err
	}
	if err := e.emitGlobals(out); err != nil {
		return "", err
	}

	bodies, err := e.emitFunctions(ctx)
	if err != nil {
		return "", err
	}
	for _, body := range bodies {
		out.WriteString("\n")
		out.WriteString(body)
	}

	return out.String(), nil
}

func (e *Emitter) declareTopStmts() error {
	errs := make([]error, 0)

	for _, unit := range e.units {
		for _, stmt := range unit.Stmts {
			switch s := stmt.(type) {
			case *ast.FuncDeclStmt:
				e.funcsMap[s.Name] = s
				e.funcs = append(e.funcs, &function{unit: unit, decl: s})
			case *ast.VarDeclStmt:
				e.globalsMap[s.Name] = s
				e.globalDecls = append(e.globalDecls, s)
				e.globalUnits = append(e.globalUnits, unit)
			case *ast.ClassDeclStmt:
				if err := checkNoMethods(unit, s); err != nil {
					errs = append(errs, err)
				}
			default:
				errs = append(errs, unsupported(unit, stmt, "statements outside of functions are not supported"))
			}
		}
	}

	return errors.Join(errs...)
}

func checkNoMethods(unit *ast.TranslationUnit, stmt *ast.ClassDeclStmt) error {
	if len(stmt.Methods) > 0 {
		return unsupported(unit, stmt.Methods[0], "methods are not supported (class %s)", stmt.Name)
	}
	for _, nested := range stmt.Classes {
		if err := checkNoMethods(unit, nested); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitTypes(out *strings.Builder) error {
	objects := e.table.Objects()
	if len(objects) == 0 {
		return nil
	}

	out.WriteString("\n")
	for _, obj := range objects {
		st, err := e.mapper.Struct(obj)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = type %s\n", st.Ref, st.Body)
	}
	return nil
}

func (e *Emitter) emitGlobals(out *strings.Builder) error {
	if len(e.globalDecls) == 0 {
		return nil
	}

	out.WriteString("\n")
	for i, decl := range e.globalDecls {
		unit := e.globalUnits[i]

		typ, err := e.mapper.BackendType(decl.Type.Def)
		if err != nil {
			return err
		}

		init, err := e.globalInitializer(unit, decl)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s = global %s %s\n", backend.Identifier('@', decl.Name), typ, init)
	}
	return nil
}

// globalInitializer folds a global's initializer. Only literals and negated
// literals are accepted.
func (e *Emitter) globalInitializer(unit *ast.TranslationUnit, decl *ast.VarDeclStmt) (string, error) {
	if decl.Value == nil {
		return "zeroinitializer", nil
	}

	fe := newFuncEmitter(e, unit, nil)
	fe.tracker.NewScope()

	value, err := fe.operand(decl.Value, &strings.Builder{})
	if err != nil {
		return "", err
	}
	if !value.Literal {
		return "", unsupported(unit, decl, "initializer of global '%s' must be a constant", decl.Name)
	}

	value, err = fe.convert(decl, value, decl.Type.Def, &strings.Builder{})
	if err != nil {
		return "", err
	}
	if !value.Literal {
		return "", unsupported(unit, decl, "initializer of global '%s' must be a constant", decl.Name)
	}
	return value.Name, nil
}

func (e *Emitter) emitFunctions(ctx context.Context) ([]string, error) {
	bodies := make([]string, len(e.funcs))
	errs := make([]error, len(e.funcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, fn := range e.funcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			body, err := newFuncEmitter(e, fn.unit, fn.decl).emitForFuncDeclStmt()
			bodies[i], errs[i] = body, err
			if err == nil {
				e.logger.Debug("function emitted", "function", fn.decl.Name, "file", fn.unit.FileName)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return bodies, nil
}

func unsupported(unit *ast.TranslationUnit, node ast.Node, format string, args ...any) error {
	line := 0
	if token := node.FirstToken(); token != nil {
		line = token.Line
	}

	return compiler_errors.NewTypeError(
		compiler_errors.CodeUnsupported,
		"",
		format, args...,
	).At(unit.FileName, line)
}
