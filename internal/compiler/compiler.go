package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/config"
	"github.com/kievzenit/cyc/internal/emitter"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/parser"
	"github.com/kievzenit/cyc/internal/semantic_analyzer"
	"github.com/kievzenit/cyc/internal/types"
)

type Source struct {
	Name string
	Text string
}

// Result holds everything a compilation produced. Units and Tokens follow
// input order. Types is nil when compilation stopped before the type table
// was built, IR is empty unless the config asked for it.
type Result struct {
	Files  []*lexer.SourceFile
	Tokens [][]lexer.Token
	Units  []*ast.TranslationUnit
	Types  *types.Table
	IR     string

	Diagnostics []compiler_errors.CompilerError
}

func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// LineSources indexes the source files by name for diagnostics.
func (r *Result) LineSources() map[string]compiler_errors.LineSource {
	sources := make(map[string]compiler_errors.LineSource, len(r.Files))
	for _, file := range r.Files {
		sources[file.Name] = file
	}
	return sources
}

type parsedFile struct {
	file   *lexer.SourceFile
	tokens []lexer.Token
	unit   *ast.TranslationUnit
	eh     compiler_errors.ErrorHandler
}

// Compile runs the pipeline over sources. Lexical, syntax and semantic errors
// are returned in Result.Diagnostics; type table and emission failures are
// returned as the error.
func Compile(ctx context.Context, cfg *config.Config, sources []Source, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parsed, err := parseAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files:       make([]*lexer.SourceFile, 0, len(parsed)),
		Tokens:      make([][]lexer.Token, 0, len(parsed)),
		Units:       make([]*ast.TranslationUnit, 0, len(parsed)),
		Diagnostics: make([]compiler_errors.CompilerError, 0),
	}
	for _, p := range parsed {
		result.Files = append(result.Files, p.file)
		result.Tokens = append(result.Tokens, p.tokens)
		result.Units = append(result.Units, p.unit)
		result.Diagnostics = append(result.Diagnostics, p.eh.Errors()...)

		logger.Debug("file parsed", "file", p.file.Name, "tokens", len(p.tokens), "statements", len(p.unit.Stmts))
	}

	result.Diagnostics = append(result.Diagnostics, checkModuleNames(result.Units)...)

	if result.HasErrors() {
		logger.Debug("stopping after syntax errors", "errors", len(result.Diagnostics))
		return result, nil
	}

	table, err := semantic_analyzer.BuildTypeTable(result.Units, cfg.Layout.Policy())
	if err != nil {
		return result, err
	}
	result.Types = table
	logger.Debug("type table built", "types", table.Len(), "objects", len(table.Objects()))

	eh := compiler_errors.NewErrorHandler()
	semantic_analyzer.NewSemanticAnalyzer(eh, table).Analyze(result.Units)
	result.Diagnostics = append(result.Diagnostics, eh.Errors()...)
	if result.HasErrors() {
		logger.Debug("stopping after semantic errors", "errors", len(result.Diagnostics))
		return result, nil
	}

	if !cfg.EmitsIR() {
		return result, nil
	}

	ir, err := emitter.NewEmitter(moduleName(cfg, result.Units), result.Units, table, logger).Emit(ctx)
	if err != nil {
		return result, err
	}
	result.IR = ir
	logger.Debug("ir emitted", "bytes", len(ir))

	return result, nil
}

// parseAll scans and parses every source concurrently. Each file gets its
// own error handler so diagnostics can be merged in input order.
func parseAll(ctx context.Context, sources []Source) ([]*parsedFile, error) {
	parsed := make([]*parsedFile, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			file := lexer.NewSourceFile(source.Name, source.Text)
			eh := compiler_errors.NewErrorHandler()
			tokens := lexer.NewLexer(file, eh).Tokenize()
			unit := parser.NewParser(file.Name, lexer.NewTokenCursor(tokens), eh).Parse()

			parsed[i] = &parsedFile{
				file:   file,
				tokens: tokens,
				unit:   unit,
				eh:     eh,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

// checkModuleNames rejects files that share a base name and with it the module
// that qualifies their type names.
func checkModuleNames(units []*ast.TranslationUnit) []compiler_errors.CompilerError {
	errs := make([]compiler_errors.CompilerError, 0)
	seen := make(map[string]string, len(units))

	for _, unit := range units {
		if first, exists := seen[unit.Module]; exists {
			errs = append(errs, compiler_errors.NewSourceError(
				compiler_errors.PhaseSemantic,
				unit.FileName, 1, 0,
				fmt.Sprintf("module '%s' is already defined by %s", unit.Module, first),
			))
			continue
		}
		seen[unit.Module] = unit.FileName
	}
	return errs
}

func moduleName(cfg *config.Config, units []*ast.TranslationUnit) string {
	if cfg.Output != "" {
		base := filepath.Base(cfg.Output)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if len(units) > 0 {
		return units[0].Module
	}
	return "cyc"
}
