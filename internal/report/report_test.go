package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/pipeline"
	"github.com/funvibe/noisec/internal/token"
)

func sampleContext(t *testing.T) *pipeline.PipelineContext {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Package = "app"
	ctx := pipeline.NewContext(cfg)

	e := diagnostics.NewError(diagnostics.ErrA001, token.Token{Line: 3, Column: 7}, "`x`")
	e.File = "main.ast.yaml"
	e.Module = "app::main"
	w := diagnostics.NewWarning(diagnostics.WarnW001, token.Token{Line: 9, Column: 5})
	w.File = "main.ast.yaml"
	ctx.Errors = append(ctx.Errors, e)
	ctx.Warnings = append(ctx.Warnings, w)
	return ctx
}

func TestNewDocument(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	doc := NewDocument(sampleContext(t), started)

	if doc.RunID == "" {
		t.Error("expected a run id")
	}
	if doc.Package != "app" || !doc.Failed || doc.Fatal != "" {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.StartedAt.Location() != time.UTC {
		t.Error("start time should be UTC")
	}
	if len(doc.Errors) != 1 || len(doc.Warnings) != 1 {
		t.Fatalf("expected 1 error and 1 warning, got %d and %d", len(doc.Errors), len(doc.Warnings))
	}
	want := Entry{Code: "A001", Severity: "error", File: "main.ast.yaml", Line: 3, Column: 7, Module: "app::main", Message: "`x` not found"}
	if doc.Errors[0] != want {
		t.Errorf("error entry = %+v, want %+v", doc.Errors[0], want)
	}
	if doc.Warnings[0].Severity != "warning" || doc.Warnings[0].Message != "unreachable statement" {
		t.Errorf("unexpected warning entry %+v", doc.Warnings[0])
	}

	other := NewDocument(sampleContext(t), started)
	if other.RunID == doc.RunID {
		t.Error("run ids should be unique")
	}
}

func TestNewDocumentFatal(t *testing.T) {
	ctx := pipeline.NewContext(config.Default(t.TempDir()))
	ctx.Err = errors.New("loading package app: no files")
	doc := NewDocument(ctx, time.Now())
	if doc.Fatal != "loading package app: no files" || !doc.Failed {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestWriteJSON(t *testing.T) {
	doc := NewDocument(sampleContext(t), time.Now())
	var buf bytes.Buffer
	if err := Write(&buf, doc, config.FormatJSON); err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if back.RunID != doc.RunID || len(back.Errors) != 1 || back.Errors[0].Code != "A001" {
		t.Errorf("unexpected decoded document %+v", back)
	}
	if strings.Contains(buf.String(), `"fatal"`) {
		t.Error("empty fatal should be omitted")
	}
}

func TestWriteYAML(t *testing.T) {
	doc := NewDocument(sampleContext(t), time.Now())
	var buf bytes.Buffer
	if err := Write(&buf, doc, config.FormatYAML); err != nil {
		t.Fatal(err)
	}
	var back map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if back["package"] != "app" || back["failed"] != true {
		t.Errorf("unexpected YAML document:\n%s", buf.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, &Document{}, "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestTextPrinter(t *testing.T) {
	doc := NewDocument(sampleContext(t), time.Now())
	var buf bytes.Buffer
	(&TextPrinter{Out: &buf}).Print(doc)

	want := "main.ast.yaml:3:7: error[A001]: `x` not found\n" +
		"main.ast.yaml:9:5: warning[W001]: unreachable statement\n" +
		"app: 1 error, 1 warning\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTextPrinterColor(t *testing.T) {
	doc := NewDocument(sampleContext(t), time.Now())
	var buf bytes.Buffer
	(&TextPrinter{Out: &buf, Color: true}).Print(doc)
	if !strings.Contains(buf.String(), ansiRed+"error[A001]"+ansiReset) {
		t.Errorf("expected a red severity label, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), ansiYellow+"warning[W001]"+ansiReset) {
		t.Errorf("expected a yellow severity label, got %q", buf.String())
	}
}

func TestTextPrinterFatal(t *testing.T) {
	var buf bytes.Buffer
	(&TextPrinter{Out: &buf}).Print(&Document{Package: "app", Fatal: "boom"})
	if buf.String() != "fatal: boom\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	sink, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	ctx := context.Background()
	doc := NewDocument(sampleContext(t), time.Now())
	if err := sink.Record(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := sink.Record(ctx, NewDocument(sampleContext(t), time.Now())); err != nil {
		t.Fatal(err)
	}

	n, err := sink.RunCount(ctx, "app")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 runs, got %d", n)
	}

	got, err := sink.Entries(ctx, doc.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != doc.Errors[0] {
		t.Errorf("first entry = %+v, want %+v", got[0], doc.Errors[0])
	}
	if got[1].Code != "W001" || got[1].Module != "" {
		t.Errorf("unexpected warning entry %+v", got[1])
	}
}

func TestReportProcessor(t *testing.T) {
	ctx := sampleContext(t)
	ctx.Config.Report.Format = config.FormatJSON
	ctx.Config.Report.SQLite = "runs.db"

	var buf bytes.Buffer
	rp := &ReportProcessor{Out: &buf}
	ctx = rp.Process(ctx)
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	if rp.Document == nil || !strings.Contains(buf.String(), rp.Document.RunID) {
		t.Fatalf("expected the JSON report on the output, got:\n%s", buf.String())
	}

	sink, err := OpenSQLite(ctx.Config.ReportDB())
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	n, err := sink.RunCount(context.Background(), "app")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 recorded run, got %d", n)
	}
}
