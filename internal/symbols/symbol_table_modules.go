package symbols

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/vid"
)

// Import is a resolved (or yet to be resolved) `use` path.
type Import struct {
	Vid  vid.Vid
	Node *ast.Name
}

// Module is one AST file of a package.
type Module struct {
	Vid      vid.Vid
	Program  *ast.Program
	Compiled bool // bodies are trusted, only signatures are checked

	// TopScope is built by the pre-pass and never changes afterwards.
	TopScope *ModuleScope
	// ScopeStack is only non-empty while the module is being checked.
	ScopeStack []Scope

	References []Import // private `use` paths
	ReExports  []Import // `pub use` paths

	Checking bool
	Checked  bool

	relImports   []*InstanceRelation
	relImportSet *set.Set[*InstanceRelation]
}

// NewModule creates a module for a decoded program.
func NewModule(v vid.Vid, program *ast.Program, compiled bool) *Module {
	return &Module{
		Vid:          v,
		Program:      program,
		Compiled:     compiled,
		relImportSet: set.New[*InstanceRelation](0),
	}
}

// AddRelImport records an instance relation the module's generated code uses.
// Duplicates are dropped; insertion order is kept.
func (m *Module) AddRelImport(rels ...*InstanceRelation) {
	if m.relImportSet == nil {
		m.relImportSet = set.New[*InstanceRelation](len(rels))
	}
	for _, r := range rels {
		if r == nil {
			continue
		}
		if m.relImportSet.Insert(r) {
			m.relImports = append(m.relImports, r)
		}
	}
}

// RelImports returns the deduplicated instance relations used by the module.
func (m *Module) RelImports() []*InstanceRelation { return m.relImports }

// File returns the source path of the module's program.
func (m *Module) File() string {
	if m.Program == nil {
		return ""
	}
	return m.Program.File
}

// Package is a named collection of modules.
type Package struct {
	Name    string
	Modules []*Module
}

// FindModule returns the module whose vid equals v.
func (p *Package) FindModule(v vid.Vid) *Module {
	for _, m := range p.Modules {
		if m.Vid.Equal(v) {
			return m
		}
	}
	return nil
}
