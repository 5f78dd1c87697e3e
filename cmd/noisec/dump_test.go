package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/noisec/internal/analyzer"
	"github.com/funvibe/noisec/internal/modules"
	"github.com/funvibe/noisec/internal/pipeline"
)

func analyzeDir(t *testing.T, dir string) *analyzer.Context {
	t.Helper()
	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	sap := &analyzer.SemanticAnalyzerProcessor{}
	ctx := pipeline.New(&modules.LoaderProcessor{}, sap).Run(pipeline.NewContext(cfg))
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	return sap.Context
}

func TestDumpModule(t *testing.T) {
	ac := analyzeDir(t, filepath.Join("testdata", "modules"))

	var buf bytes.Buffer
	if err := dumpModule(&buf, ac, "app::geo::point"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{`"origin"`, `"Point::Point"`, `"variant"`, `"fn"`} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %s in dump:\n%s", s, out)
		}
	}
}

func TestDumpUnknownModule(t *testing.T) {
	ac := analyzeDir(t, filepath.Join("testdata", "hello"))
	var buf bytes.Buffer
	err := dumpModule(&buf, ac, "hello::nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
