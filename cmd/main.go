package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/kievzenit/cyc/internal/compiler"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/config"
	"github.com/kievzenit/cyc/internal/dump"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	inputs []string
	set    map[string]bool

	configPath string
	watch      bool
	showAll    bool

	output      string
	tabSize     int
	tokens      bool
	ast         bool
	rawAST      bool
	types       bool
	ir          bool
	verbose     bool
	noColor     bool
	minAlign    int
	maxAlign    int
	pointerSize int
	nestedAlign string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("cyc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: cyc [flags] [file.cy | pattern ...]")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.configPath, "config", config.DefaultFileName, "config file")
	fs.BoolVar(&f.watch, "watch", false, "recompile when sources change")
	fs.BoolVar(&f.showAll, "all-tokens", false, "include ignored tokens in the token dump")

	fs.StringVar(&f.output, "o", "", "write IR to this file")
	fs.IntVar(&f.tabSize, "tab-size", 0, "tab width used to align diagnostics")
	fs.BoolVar(&f.tokens, "tokens", false, "dump tokens")
	fs.BoolVar(&f.ast, "ast", false, "dump the AST as s-expressions")
	fs.BoolVar(&f.rawAST, "raw-ast", false, "dump the raw AST structure")
	fs.BoolVar(&f.types, "types", false, "dump the type table")
	fs.BoolVar(&f.ir, "ir", false, "print the emitted IR")
	fs.BoolVar(&f.verbose, "verbose", false, "debug logging")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored diagnostics")
	fs.IntVar(&f.minAlign, "min-align", 0, "minimum field alignment")
	fs.IntVar(&f.maxAlign, "max-align", 0, "maximum field alignment")
	fs.IntVar(&f.pointerSize, "pointer-size", 0, "pointer size in bytes")
	fs.StringVar(&f.nestedAlign, "nested-align", "", "nested object alignment: largest-field or floor")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	f.inputs = fs.Args()

	return f, nil
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(f *flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.set["config"] {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadOptional(f.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if len(f.inputs) > 0 {
		cfg.Inputs = f.inputs
	}

	overrides := map[string]func(){
		"o":            func() { cfg.Output = f.output },
		"tab-size":     func() { cfg.TabSize = f.tabSize },
		"tokens":       func() { cfg.Display.Tokens = f.tokens },
		"ast":          func() { cfg.Display.AST = f.ast },
		"raw-ast":      func() { cfg.Display.RawAST = f.rawAST },
		"types":        func() { cfg.Display.Types = f.types },
		"ir":           func() { cfg.Display.IR = f.ir },
		"verbose":      func() { cfg.Display.Verbose = f.verbose },
		"no-color":     func() { cfg.Display.Color = !f.noColor },
		"min-align":    func() { cfg.Layout.MinAlign = f.minAlign },
		"max-align":    func() { cfg.Layout.MaxAlign = f.maxAlign },
		"pointer-size": func() { cfg.Layout.PointerSize = f.pointerSize },
		"nested-align": func() { cfg.Layout.NestedAlign = f.nestedAlign },
	}
	for name, apply := range overrides {
		if f.set[name] {
			apply()
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("no input files")
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := newLogger(stderr, cfg.Display.Verbose)
	display := newDiagnosticDisplay(stderr, cfg.TabSize, cfg.Display.Color)

	if f.watch {
		if err := watch(ctx, cfg, f, stdout, display, logger); err != nil {
			logger.Error("watch failed", "error", err)
			return 1
		}
		return 0
	}

	return build(ctx, cfg, f.showAll, stdout, display, logger)
}

// build compiles the configured inputs once and reports the outcome as an
// exit code.
func build(ctx context.Context, cfg *config.Config, allTokens bool, stdout io.Writer, display *diagnosticDisplay, logger *slog.Logger) int {
	files, err := config.ResolveInputs(cfg)
	if err != nil {
		logger.Error("resolving inputs failed", "error", err)
		return 2
	}

	sources := make([]compiler.Source, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Error("reading source failed", "file", file, "error", err)
			return 2
		}
		sources = append(sources, compiler.Source{Name: file, Text: string(data)})
	}
	logger.Debug("compiling", "files", len(sources))

	result, err := compiler.Compile(ctx, cfg, sources, logger)
	if result != nil {
		if dumpErr := writeDumps(stdout, cfg, result, allTokens); dumpErr != nil {
			logger.Error("writing dumps failed", "error", dumpErr)
			return 1
		}
	}

	if err != nil {
		display.ShowError(err, result)
		return 1
	}

	if result.HasErrors() {
		compiler_errors.ShowAll(display, result.Diagnostics, result.LineSources())
		return 1
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, []byte(result.IR), 0o644); err != nil {
			logger.Error("writing output failed", "file", cfg.Output, "error", err)
			return 1
		}
		logger.Debug("ir written", "file", cfg.Output)
	}
	if cfg.Display.IR {
		fmt.Fprint(stdout, result.IR)
	}

	return 0
}

func writeDumps(w io.Writer, cfg *config.Config, result *compiler.Result, allTokens bool) error {
	for i, unit := range result.Units {
		if cfg.Display.Tokens {
			fmt.Fprintf(w, "== tokens: %s\n", unit.FileName)
			if err := dump.Tokens(w, result.Tokens[i], allTokens); err != nil {
				return err
			}
		}
		if cfg.Display.AST {
			fmt.Fprintf(w, "== ast: %s\n", unit.FileName)
			if err := dump.AST(w, unit); err != nil {
				return err
			}
		}
		if cfg.Display.RawAST {
			fmt.Fprintf(w, "== raw ast: %s\n", unit.FileName)
			if err := dump.Raw(w, unit); err != nil {
				return err
			}
		}
	}

	if cfg.Display.Types && result.Types != nil {
		fmt.Fprintln(w, "== types")
		if err := dump.TypeTable(w, result.Types); err != nil {
			return err
		}
	}
	return nil
}
