package pipeline

import (
	"errors"
	"testing"

	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/token"
)

type recordStage struct {
	name string
	seen *[]string
}

func (r recordStage) Process(ctx *PipelineContext) *PipelineContext {
	*r.seen = append(*r.seen, r.name)
	if r.name == "fail" {
		ctx.Err = errors.New("boom")
	}
	return ctx
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	var seen []string
	p := New(recordStage{"load", &seen}, recordStage{"fail", &seen}, recordStage{"report", &seen})
	ctx := p.Run(NewContext(config.Default(t.TempDir())))
	if len(seen) != 3 || seen[2] != "report" {
		t.Errorf("stages run = %v", seen)
	}
	if ctx.Err == nil {
		t.Error("expected the stage error to be kept")
	}
}

func TestFailed(t *testing.T) {
	cfg := config.Default(t.TempDir())
	warn := diagnostics.NewWarning(diagnostics.WarnW001, token.Token{})

	ctx := NewContext(cfg)
	if ctx.Failed() {
		t.Error("a clean run should not fail")
	}
	ctx.Warnings = append(ctx.Warnings, warn)
	if ctx.Failed() {
		t.Error("warnings alone should not fail")
	}
	cfg.WarningsAsErrors = true
	if !ctx.Failed() {
		t.Error("warnings should fail with warnings_as_errors")
	}

	ctx = NewContext(nil)
	ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrA001, token.Token{}, "`x`"))
	if !ctx.Failed() {
		t.Error("errors should fail")
	}
}

func TestPackage(t *testing.T) {
	ctx := NewContext(nil)
	app := &symbols.Package{Name: "app"}
	ctx.Packages = []*symbols.Package{{Name: "std"}, app}
	if ctx.Package("app") != app || ctx.Package("nope") != nil {
		t.Error("Package lookup")
	}
}
