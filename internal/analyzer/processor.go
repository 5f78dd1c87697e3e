package analyzer

import (
	"github.com/funvibe/noisec/internal/pipeline"
)

type SemanticAnalyzerProcessor struct {
	// Context is the checking context of the last run, kept for callers
	// that need the full side table.
	Context *Context
}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Err != nil || len(ctx.Packages) == 0 {
		return ctx
	}

	ac := NewContext(ctx.Packages...)
	ac.Verbose = ctx.Verbose
	Analyze(ac)
	sap.Context = ac

	ctx.TypeMap = ac.Info.Types // Export inferred types to context
	ctx.Impls = ac.Info.Impls   // Export operator and method implementations
	ctx.Relations = ac.Impls    // Export every trait and impl relation

	ctx.Errors = append(ctx.Errors, ac.SortedErrors()...)
	ctx.Warnings = append(ctx.Warnings, ac.SortedWarnings()...)
	return ctx
}
