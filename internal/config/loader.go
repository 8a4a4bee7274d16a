package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads a config file. Keys missing from the file keep their Default
// values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(string(data))
}

func Parse(data string) (*Config, error) {
	cfg := Default()

	meta, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional loads path when it exists and falls back to Default otherwise.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		applyDefaults(cfg)
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	defaults := Default()

	if cfg.TabSize <= 0 {
		cfg.TabSize = defaults.TabSize
	}
	if len(cfg.IncludePaths) == 0 {
		cfg.IncludePaths = defaults.IncludePaths
	}
	if strings.TrimSpace(cfg.Layout.NestedAlign) == "" {
		cfg.Layout.NestedAlign = defaults.Layout.NestedAlign
	}
	if cfg.Layout.MinAlign == 0 {
		cfg.Layout.MinAlign = defaults.Layout.MinAlign
	}
	if cfg.Layout.MaxAlign == 0 {
		cfg.Layout.MaxAlign = defaults.Layout.MaxAlign
	}
	if cfg.Layout.PointerSize == 0 {
		cfg.Layout.PointerSize = defaults.Layout.PointerSize
	}
}

func Validate(cfg *Config) error {
	if err := validateLayout(cfg); err != nil {
		return err
	}
	if err := validateInputs(cfg); err != nil {
		return err
	}
	if cfg.TabSize < 1 {
		return fmt.Errorf("tab_size must be positive, got %d", cfg.TabSize)
	}
	return nil
}

func validateLayout(cfg *Config) error {
	if err := cfg.Layout.Policy().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

func validateInputs(cfg *Config) error {
	for _, input := range cfg.Inputs {
		if strings.TrimSpace(input) == "" {
			return errors.New("inputs: empty entry")
		}
	}
	for _, path := range cfg.IncludePaths {
		if strings.TrimSpace(path) == "" {
			return errors.New("include_paths: empty entry")
		}
	}
	return nil
}
