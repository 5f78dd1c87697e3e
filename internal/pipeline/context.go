package pipeline

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state handed from stage to stage.
type PipelineContext struct {
	Config  *config.Config
	Verbose bool

	// Packages are filled by the loader: the standard library first, then
	// the checked package.
	Packages []*symbols.Package

	// Err is an infrastructure failure (unreadable directory, malformed AST
	// file). Later stages skip their work once it is set.
	Err error

	Errors   []*diagnostics.DiagnosticError
	Warnings []*diagnostics.DiagnosticError

	// Results of the semantic analysis.
	TypeMap   map[ast.Node]typesystem.Type
	Impls     map[ast.Node]*symbols.InstanceRelation
	Relations []*symbols.InstanceRelation
}

// NewContext creates a context for checking the project described by cfg.
func NewContext(cfg *config.Config) *PipelineContext {
	return &PipelineContext{Config: cfg}
}

// Failed reports whether the run must exit with a failure status.
func (c *PipelineContext) Failed() bool {
	if c.Err != nil || len(c.Errors) > 0 {
		return true
	}
	return c.Config != nil && c.Config.WarningsAsErrors && len(c.Warnings) > 0
}

// Package returns the loaded package called name.
func (c *PipelineContext) Package(name string) *symbols.Package {
	for _, p := range c.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}
