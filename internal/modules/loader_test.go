package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/pipeline"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func TestLoadFSModuleVids(t *testing.T) {
	fsys := mapFS(map[string]string{
		"main.ast.yaml":          "statements: []",
		"geo/point.ast.yaml":     "statements: []",
		"geo/index.ast.yaml":     "statements: []",
		"geo/notes.txt":          "ignored",
		".cache/stale.ast.yaml":  "statements: [",
		"deep/er/shape.ast.yaml": "statements: []",
	})
	pkg, err := NewLoader().LoadFS("app", fsys, "src", false)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	var got []string
	for _, m := range pkg.Modules {
		got = append(got, m.Vid.String())
	}
	want := []string{"app::deep::er::shape", "app::geo", "app::geo::point", "app::main"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("module vids = %v, want %v", got, want)
	}
	for _, m := range pkg.Modules {
		if m.Compiled {
			t.Errorf("%s should not be compiled", m.Vid)
		}
		if !strings.HasPrefix(m.File(), "src") {
			t.Errorf("%s: file %q should be rooted at src", m.Vid, m.File())
		}
	}
}

func TestLoadFSCachesPackages(t *testing.T) {
	l := NewLoader()
	fsys := mapFS(map[string]string{"a.ast.yaml": "statements: []"})
	first, err := l.LoadFS("app", fsys, "", false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.LoadFS("app", mapFS(nil), "", false)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the cached package")
	}
	if l.Loaded("app") != first {
		t.Error("Loaded should return the cached package")
	}
	if l.Loaded("other") != nil {
		t.Error("Loaded should return nil for unknown packages")
	}
}

func TestLoadFSErrors(t *testing.T) {
	t.Run("decode error", func(t *testing.T) {
		_, err := NewLoader().LoadFS("app", mapFS(map[string]string{"bad.ast.yaml": "statements:\n  - {nope: 1}"}), "", false)
		if err == nil || !strings.Contains(err.Error(), "bad.ast.yaml") {
			t.Fatalf("expected a decode error naming the file, got %v", err)
		}
	})
	t.Run("duplicate module", func(t *testing.T) {
		_, err := NewLoader().LoadFS("app", mapFS(map[string]string{
			"geo.ast.yaml":       "statements: []",
			"geo/index.ast.yaml": "statements: []",
		}), "", false)
		if err == nil || !strings.Contains(err.Error(), "module app::geo is defined by both") {
			t.Fatalf("expected a duplicate module error, got %v", err)
		}
	})
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.ast.yaml"), []byte("statements: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	pkg, err := NewLoader().LoadDir("app", dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkg.Modules) != 1 || pkg.Modules[0].File() != filepath.Join(dir, "main.ast.yaml") {
		t.Errorf("unexpected modules %v", pkg.Modules)
	}

	if _, err := NewLoader().LoadDir("app", filepath.Join(dir, "missing"), false); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if _, err := NewLoader().LoadDir("app", filepath.Join(dir, "main.ast.yaml"), false); err == nil {
		t.Error("expected an error for a file")
	}
	if _, err := NewLoader().LoadDir("app", t.TempDir(), false); err == nil || !strings.Contains(err.Error(), "no .ast.yaml files") {
		t.Errorf("expected a no files error, got %v", err)
	}
}

func TestLoaderProcessor(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.ast.yaml"), []byte("statements: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default(dir)
	cfg.Package = "app"

	ctx := (&LoaderProcessor{}).Process(pipeline.NewContext(cfg))
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	if len(ctx.Packages) != 2 || ctx.Packages[0].Name != config.StdPackageName || ctx.Packages[1].Name != "app" {
		t.Fatalf("unexpected packages %v", ctx.Packages)
	}
	for _, m := range ctx.Packages[0].Modules {
		if !m.Compiled {
			t.Errorf("std module %s should be compiled", m.Vid)
		}
	}
	if ctx.Package("app") == nil {
		t.Error("Package should find the loaded package")
	}
}

func TestLoaderProcessorSkipsAfterError(t *testing.T) {
	ctx := pipeline.NewContext(config.Default(t.TempDir()))
	ctx.Err = os.ErrNotExist
	ctx = (&LoaderProcessor{}).Process(ctx)
	if len(ctx.Packages) != 0 {
		t.Error("processor should not run after an error")
	}
}
