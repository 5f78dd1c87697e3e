package report

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/pipeline"
)

// ReportProcessor is the last pipeline stage: it prints the run's
// diagnostics and records them in the configured history database.
type ReportProcessor struct {
	Out       io.Writer // defaults to os.Stdout
	StartedAt time.Time

	// Document is the report of the last run.
	Document *Document
}

func (rp *ReportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	started := rp.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	doc := NewDocument(ctx, started)
	rp.Document = doc

	format := config.FormatText
	if ctx.Config != nil {
		format = ctx.Config.Report.Format
	}

	out := rp.Out
	if out == nil {
		out = os.Stdout
	}
	if format == config.FormatText {
		printer := &TextPrinter{Out: out}
		if f, ok := out.(*os.File); ok {
			printer = NewTextPrinter(f)
		}
		printer.Print(doc)
	} else if err := Write(out, doc, format); err != nil && ctx.Err == nil {
		ctx.Err = err
	}

	if ctx.Config != nil && ctx.Config.ReportDB() != "" {
		if err := record(ctx.Config.ReportDB(), doc); err != nil && ctx.Err == nil {
			ctx.Err = err
		}
	}
	return ctx
}

func record(path string, doc *Document) error {
	sink, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer sink.Close()
	return sink.Record(context.Background(), doc)
}
