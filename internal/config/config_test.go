package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte(`
package: shapes
src: ast
std: lib
warnings_as_errors: true
report:
  format: json
  sqlite: out/history.db
`)
	cfg, err := ParseConfig(data, filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Package != "shapes" || !cfg.WarningsAsErrors || cfg.Report.Format != FormatJSON {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SrcDir() != filepath.Join(dir, "ast") {
		t.Errorf("SrcDir = %s", cfg.SrcDir())
	}
	if cfg.StdDir() != filepath.Join(dir, "lib") {
		t.Errorf("StdDir = %s", cfg.StdDir())
	}
	if cfg.ReportDB() != filepath.Join(dir, "out", "history.db") {
		t.Errorf("ReportDB = %s", cfg.ReportDB())
	}
}

func TestDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "geometry")
	cfg := Default(dir)
	if cfg.Package != "geometry" {
		t.Errorf("package should default to the directory name, got %q", cfg.Package)
	}
	if cfg.Src != "." || cfg.Report.Format != FormatText {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.StdDir() != "" || cfg.ReportDB() != "" {
		t.Error("std override and report database should be off by default")
	}
}

func TestParseConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		data   string
		substr string
	}{
		{"reserved package", "package: std", "reserved"},
		{"invalid package", "package: a::b", "invalid package name"},
		{"unknown format", "report: {format: xml}", "unknown format"},
		{"missing std", "std: nowhere", "std:"},
		{"bad yaml", "package: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), filepath.Join(dir, ConfigFileName))
			if err == nil {
				t.Fatalf("expected an error for %q", tt.data)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("expected error containing %q, got: %v", tt.substr, err)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(path, []byte("package: app\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != path {
		t.Errorf("FindConfig = %s, want %s", found, path)
	}

	cfg, err := LoadConfig(found)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != root || cfg.Package != "app" {
		t.Errorf("unexpected config %+v", cfg)
	}
}
