// Package config handles codvm.toml / codvm.yaml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files FindAndLoad looks for, in order
var FileNames = []string{"codvm.toml", "codvm.yaml", "codvm.yml"}

// Config holds run settings. Command-line flags take precedence over it.
type Config struct {
	Trace       bool   `toml:"trace" yaml:"trace"`
	MaxSteps    int    `toml:"max_steps" yaml:"max_steps"`
	Prompt      string `toml:"prompt" yaml:"prompt"`
	NoColor     bool   `toml:"no_color" yaml:"no_color"`
	Verbose     bool   `toml:"verbose" yaml:"verbose"`
	LineEditing bool   `toml:"line_editing" yaml:"line_editing"`

	// Path is the file the config was read from, empty for defaults
	Path string `toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{Trace: true, LineEditing: true}
}

// Load parses the file at path. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data as TOML or YAML depending on the extension of path
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// FindAndLoad walks up from startDir to the first directory holding one of
// FileNames. Defaults are returned when none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("%s: max_steps must not be negative, got %d", path, c.MaxSteps)
	}
	return nil
}
