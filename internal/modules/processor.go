package modules

import (
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/pipeline"
	"github.com/funvibe/noisec/internal/stdlib"
	"github.com/funvibe/noisec/internal/symbols"
)

// LoaderProcessor loads the standard library and the configured package
// into the pipeline context.
type LoaderProcessor struct {
	// Loader is created on first use when nil. Packages carry checking
	// state, so a loader must not be shared between runs.
	Loader *Loader
}

func (lp *LoaderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Err != nil || ctx.Config == nil {
		return ctx
	}
	if lp.Loader == nil {
		lp.Loader = NewLoader()
	}
	loader := lp.Loader
	loader.Verbose = ctx.Verbose

	std, err := lp.loadStd(ctx.Config)
	if err != nil {
		ctx.Err = err
		return ctx
	}
	pkg, err := loader.LoadDir(ctx.Config.Package, ctx.Config.SrcDir(), false)
	if err != nil {
		ctx.Err = err
		return ctx
	}

	ctx.Packages = append(ctx.Packages, std, pkg)
	return ctx
}

func (lp *LoaderProcessor) loadStd(cfg *config.Config) (*symbols.Package, error) {
	if dir := cfg.StdDir(); dir != "" {
		return lp.Loader.LoadDir(config.StdPackageName, dir, true)
	}
	return lp.Loader.LoadFS(config.StdPackageName, stdlib.FS(), stdlib.Root, true)
}
