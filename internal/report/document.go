// Package report surfaces the diagnostics of a run: as text for terminals,
// as JSON or YAML documents for tools, and as rows in a SQLite history
// database.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/pipeline"
)

// Entry is one diagnostic in a report document.
type Entry struct {
	Code     string `json:"code" yaml:"code"`
	Severity string `json:"severity" yaml:"severity"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Module   string `json:"module,omitempty" yaml:"module,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// Document is the result of one run.
type Document struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Package   string    `json:"package" yaml:"package"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Failed    bool      `json:"failed" yaml:"failed"`
	// Fatal is set when the run stopped before analysis.
	Fatal    string  `json:"fatal,omitempty" yaml:"fatal,omitempty"`
	Errors   []Entry `json:"errors" yaml:"errors"`
	Warnings []Entry `json:"warnings" yaml:"warnings"`
}

// NewDocument builds the report of a finished pipeline run.
func NewDocument(ctx *pipeline.PipelineContext, started time.Time) *Document {
	doc := &Document{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
		Failed:    ctx.Failed(),
		Errors:    entries(ctx.Errors),
		Warnings:  entries(ctx.Warnings),
	}
	if ctx.Config != nil {
		doc.Package = ctx.Config.Package
	}
	if ctx.Err != nil {
		doc.Fatal = ctx.Err.Error()
	}
	return doc
}

func entries(ds []*diagnostics.DiagnosticError) []Entry {
	out := make([]Entry, 0, len(ds))
	for _, d := range ds {
		out = append(out, newEntry(d))
	}
	return out
}

func newEntry(d *diagnostics.DiagnosticError) Entry {
	return Entry{
		Code:     string(d.Code),
		Severity: d.Severity.String(),
		File:     d.File,
		Line:     d.Token.Line,
		Column:   d.Token.Column,
		Module:   d.Module,
		Message:  d.Message,
	}
}
