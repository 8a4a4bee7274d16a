package config

import (
	"github.com/kievzenit/cyc/internal/types"
)

const (
	DefaultFileName = "cyc.toml"
	SourceExtension = ".cy"
)

type Config struct {
	Inputs       []string `toml:"inputs"`
	IncludePaths []string `toml:"include_paths"`
	Output       string   `toml:"output"`
	TabSize      int      `toml:"tab_size"`

	Layout  LayoutConfig  `toml:"layout"`
	Display DisplayConfig `toml:"display"`
}

type LayoutConfig struct {
	MinAlign    int    `toml:"min_align"`
	MaxAlign    int    `toml:"max_align"`
	PointerSize int    `toml:"pointer_size"`
	NestedAlign string `toml:"nested_align"`
}

// DisplayConfig selects the diagnostic dumps printed after compilation.
type DisplayConfig struct {
	Tokens  bool `toml:"tokens"`
	AST     bool `toml:"ast"`
	RawAST  bool `toml:"raw_ast"`
	Types   bool `toml:"types"`
	IR      bool `toml:"ir"`
	Verbose bool `toml:"verbose"`
	Color   bool `toml:"color"`
}

func Default() *Config {
	policy := types.DefaultLayoutPolicy()

	return &Config{
		Inputs:       make([]string, 0),
		IncludePaths: []string{"."},
		TabSize:      4,
		Layout: LayoutConfig{
			MinAlign:    policy.MinAlign,
			MaxAlign:    policy.MaxAlign,
			PointerSize: policy.PointerSize,
			NestedAlign: string(policy.NestedAlign),
		},
		Display: DisplayConfig{
			Color: true,
		},
	}
}

func (l LayoutConfig) Policy() types.LayoutPolicy {
	return types.LayoutPolicy{
		MinAlign:    l.MinAlign,
		MaxAlign:    l.MaxAlign,
		PointerSize: l.PointerSize,
		NestedAlign: types.NestedAlign(l.NestedAlign),
	}
}

// EmitsIR reports whether compilation has to run the emitter.
func (c *Config) EmitsIR() bool {
	return c.Display.IR || c.Output != ""
}
