package analyzer

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/modules"
	"github.com/funvibe/noisec/internal/stdlib"
	"github.com/funvibe/noisec/internal/symbols"
)

// analyzePackage checks the AST files of package app (file name -> YAML)
// together with the standard library.
func analyzePackage(t *testing.T, files map[string]string) *Context {
	t.Helper()
	loader := modules.NewLoader()
	std, err := loader.LoadFS("std", stdlib.FS(), stdlib.Root, true)
	if err != nil {
		t.Fatalf("loading std: %v", err)
	}
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(strings.TrimLeft(src, "\n"))}
	}
	app, err := loader.LoadFS("app", fsys, "", false)
	if err != nil {
		t.Fatalf("loading app: %v", err)
	}
	ctx := NewContext(std, app)
	Analyze(ctx)
	return ctx
}

// analyzeSource checks input as the only module of package app.
func analyzeSource(t *testing.T, input string) *Context {
	t.Helper()
	return analyzePackage(t, map[string]string{"main.ast.yaml": input})
}

func messages(ds []*diagnostics.DiagnosticError) string {
	var msgs []string
	for _, d := range ds {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

// expectAnalyzerError asserts that at least one error with the given code is produced.
func expectAnalyzerError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := analyzeSource(t, input).SortedErrors()
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, messages(errs), input)
	return nil
}

// expectAnalyzerErrorContains asserts an error with the given code whose message contains substr.
func expectAnalyzerErrorContains(t *testing.T, input string, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	e := expectAnalyzerError(t, input, code)
	if !strings.Contains(e.Message, substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, e.Error())
	}
}

// expectAnalyzerWarning asserts that a warning with the given code is produced.
func expectAnalyzerWarning(t *testing.T, input string, code diagnostics.ErrorCode) {
	t.Helper()
	ctx := analyzeSource(t, input)
	for _, w := range ctx.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Fatalf("expected warning %s, got:\n%s\ninput: %s", code, messages(ctx.Warnings), input)
}

// expectNoAnalyzerErrors asserts that analysis produces no errors.
func expectNoAnalyzerErrors(t *testing.T, input string) *Context {
	t.Helper()
	ctx := analyzeSource(t, input)
	if errs := ctx.SortedErrors(); len(errs) > 0 {
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", messages(errs), input)
	}
	return ctx
}

// findModule returns the module named v of the checked packages.
func findModule(t *testing.T, ctx *Context, v string) *symbols.Module {
	t.Helper()
	for _, p := range ctx.Packages {
		for _, m := range p.Modules {
			if m.Vid.String() == v {
				return m
			}
		}
	}
	t.Fatalf("module %s not found", v)
	return nil
}
