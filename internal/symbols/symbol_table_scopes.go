package symbols

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// Scope is one frame of a module's scope stack. The set of implementations
// is closed: ModuleScope, BlockScope, FnScope, InstanceScope, TypeScope.
type Scope interface {
	Defs() DefinitionMap
	scopeFrame()
}

// ModuleScope holds a module's top-level definitions. It is built once,
// before any statement of the module is checked.
type ModuleScope struct {
	Definitions DefinitionMap
}

func (s *ModuleScope) Defs() DefinitionMap { return s.Definitions }
func (s *ModuleScope) scopeFrame()         {}

// BlockScope is pushed for every block. AllBranchesReturned accumulates
// flow termination of the statements checked so far.
type BlockScope struct {
	Definitions         DefinitionMap
	IsLoop              bool
	AllBranchesReturned bool
	// Closures created in this block whose type is still malleable.
	Malleable []*ast.ClosureExpr
}

func (s *BlockScope) Defs() DefinitionMap { return s.Definitions }
func (s *BlockScope) scopeFrame()         {}

// FnScope is pushed for a function or closure body.
type FnScope struct {
	Definitions DefinitionMap
	Fn          ast.Node // *ast.FnDef or *ast.ClosureExpr
	// Returns collects every expression that may become the return value.
	Returns []ast.Expression
}

func (s *FnScope) Defs() DefinitionMap { return s.Definitions }
func (s *FnScope) scopeFrame()         {}

// IsClosure reports whether the frame belongs to a closure.
func (s *FnScope) IsClosure() bool {
	_, ok := s.Fn.(*ast.ClosureExpr)
	return ok
}

// InstanceScope is pushed for trait and impl bodies.
type InstanceScope struct {
	Definitions DefinitionMap
	SelfType    typesystem.Type
	Rel         *InstanceRelation
}

func (s *InstanceScope) Defs() DefinitionMap { return s.Definitions }
func (s *InstanceScope) scopeFrame()         {}

// TypeScope is pushed while checking the variants of a type definition.
type TypeScope struct {
	Definitions DefinitionMap
	Def         *ast.TypeDef
	Vid         vid.Vid
}

func (s *TypeScope) Defs() DefinitionMap { return s.Definitions }
func (s *TypeScope) scopeFrame()         {}

// NewBlockScope returns an empty block frame.
func NewBlockScope(isLoop bool) *BlockScope {
	return &BlockScope{Definitions: DefinitionMap{}, IsLoop: isLoop}
}
