package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by `report.format`.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents the noisec.yaml project configuration.
type Config struct {
	// Package is the package name; module vids start with it.
	// Defaults to the name of the directory holding noisec.yaml.
	Package string `yaml:"package"`

	// Src is the directory with AST files, relative to noisec.yaml. Defaults to ".".
	Src string `yaml:"src,omitempty"`

	// Std overrides the embedded standard library with a directory of AST
	// files (relative to noisec.yaml).
	Std string `yaml:"std,omitempty"`

	// WarningsAsErrors makes any warning fail the run.
	WarningsAsErrors bool `yaml:"warnings_as_errors,omitempty"`

	Report ReportConfig `yaml:"report,omitempty"`

	// Dir is the directory holding the config file. Not read from YAML.
	Dir string `yaml:"-"`
}

// ReportConfig selects how diagnostics are surfaced.
type ReportConfig struct {
	// Format is one of text, json, yaml. Defaults to text.
	Format string `yaml:"format,omitempty"`

	// SQLite is an optional database path where every run and its
	// diagnostics are recorded.
	SQLite string `yaml:"sqlite,omitempty"`
}

// Default returns the configuration used when no noisec.yaml exists.
func Default(dir string) *Config {
	cfg := &Config{Dir: dir}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a noisec.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses noisec.yaml content from bytes.
// The path argument is used for error messages and to resolve relative directories.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for noisec.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Package == StdPackageName {
		return fmt.Errorf("%s: package name %q is reserved", path, StdPackageName)
	}
	for _, r := range c.Package {
		if r == ':' || r == '/' || r == ' ' {
			return fmt.Errorf("%s: invalid package name %q", path, c.Package)
		}
	}
	switch c.Report.Format {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%s: report.format: unknown format %q (want text, json or yaml)", path, c.Report.Format)
	}
	if c.Std != "" {
		info, err := os.Stat(c.resolve(c.Std))
		if err != nil {
			return fmt.Errorf("%s: std: %w", path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s: std: %s is not a directory", path, c.Std)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Src == "" {
		c.Src = "."
	}
	if c.Package == "" {
		abs, err := filepath.Abs(c.Dir)
		if err == nil {
			c.Package = filepath.Base(abs)
		} else {
			c.Package = "main"
		}
	}
	if c.Report.Format == "" {
		c.Report.Format = FormatText
	}
}

// SrcDir is the absolute-or-relative directory holding the package AST files.
func (c *Config) SrcDir() string { return c.resolve(c.Src) }

// StdDir is the standard library override directory, or "" for the embedded one.
func (c *Config) StdDir() string {
	if c.Std == "" {
		return ""
	}
	return c.resolve(c.Std)
}

// ReportDB is the SQLite history database path, or "" when disabled.
func (c *Config) ReportDB() string {
	if c.Report.SQLite == "" {
		return ""
	}
	return c.resolve(c.Report.SQLite)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
