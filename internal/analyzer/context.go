package analyzer

import (
	"log"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/token"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// Ref is the result of resolving a Vid.
type Ref struct {
	Vid    vid.Vid // fully qualified when the definition lives in a module scope
	Module *symbols.Module
	Def    symbols.Definition
}

// GenericImpls records, for one generic of a called function, the trait
// implementations selected by an explicit type argument.
type GenericImpls struct {
	Generic *typesystem.Generic
	Impls   []*symbols.InstanceRelation
}

// Info is the side table the checker fills instead of mutating the AST.
// Every map is keyed by node identity.
type Info struct {
	Types        map[ast.Node]typesystem.Type
	Refs         map[ast.Node]*Ref
	Impls        map[ast.Node]*symbols.InstanceRelation // operator and method call implementations
	Upcasts      map[ast.Node]*symbols.Upcast
	CallGenerics map[ast.Node][]GenericImpls
	Variants     map[*ast.CallExpr]*symbols.VariantDef
	Static       map[*ast.FnDef]bool // fns without a `self` receiver
	Relations    map[ast.Instance]*symbols.InstanceRelation
	Signatures   map[*ast.FnDef]*typesystem.FnType
	Constructors map[*ast.Variant]*typesystem.FnType

	checked map[ast.Node]bool
}

// NewInfo returns an empty side table.
func NewInfo() *Info {
	return &Info{
		Types:        make(map[ast.Node]typesystem.Type),
		Refs:         make(map[ast.Node]*Ref),
		Impls:        make(map[ast.Node]*symbols.InstanceRelation),
		Upcasts:      make(map[ast.Node]*symbols.Upcast),
		CallGenerics: make(map[ast.Node][]GenericImpls),
		Variants:     make(map[*ast.CallExpr]*symbols.VariantDef),
		Static:       make(map[*ast.FnDef]bool),
		Relations:    make(map[ast.Instance]*symbols.InstanceRelation),
		Signatures:   make(map[*ast.FnDef]*typesystem.FnType),
		Constructors: make(map[*ast.Variant]*typesystem.FnType),
		checked:      make(map[ast.Node]bool),
	}
}

// TypeOf returns the type attached to n, or unknown.
func (i *Info) TypeOf(n ast.Node) typesystem.Type {
	if t, ok := i.Types[n]; ok && t != nil {
		return t
	}
	return typesystem.Unknown()
}

// Reset clears every attached result so the packages can be checked again.
func (i *Info) Reset() {
	*i = *NewInfo()
}

// Context is the state shared by the whole checking pass.
type Context struct {
	Packages    []*symbols.Package
	ModuleStack []*symbols.Module
	Impls       []*symbols.InstanceRelation
	Errors      []*diagnostics.DiagnosticError
	Warnings    []*diagnostics.DiagnosticError
	Info        *Info

	// Silent suppresses diagnostics during speculative resolution.
	Silent bool
	// Verbose enables progress logging.
	Verbose bool

	// prepass disables forced definition checks while relations are built.
	prepass bool

	useStack      []ast.Node // use paths whose target module is being checked
	defVids       map[ast.Node]vid.Vid
	generics      map[*ast.Generic]*typesystem.Generic
	closureScopes map[*ast.ClosureExpr][]symbols.Scope
}

// NewContext creates a checking context over packages.
func NewContext(packages ...*symbols.Package) *Context {
	return &Context{
		Packages:      packages,
		Info:          NewInfo(),
		defVids:       make(map[ast.Node]vid.Vid),
		generics:      make(map[*ast.Generic]*typesystem.Generic),
		closureScopes: make(map[*ast.ClosureExpr][]symbols.Scope),
	}
}

func (c *Context) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf("[noisec] "+format, args...)
	}
}

// Module returns the module on top of the module stack.
func (c *Context) Module() *symbols.Module {
	if len(c.ModuleStack) == 0 {
		return nil
	}
	return c.ModuleStack[len(c.ModuleStack)-1]
}

func (c *Context) addError(err *diagnostics.DiagnosticError) {
	if c.Silent {
		return
	}
	c.stamp(err)
	c.Errors = append(c.Errors, err)
}

func (c *Context) addWarning(warn *diagnostics.DiagnosticError) {
	if c.Silent {
		return
	}
	c.stamp(warn)
	c.Warnings = append(c.Warnings, warn)
}

func (c *Context) stamp(d *diagnostics.DiagnosticError) {
	if m := c.Module(); m != nil {
		if d.File == "" {
			d.File = m.File()
		}
		if d.Module == "" {
			d.Module = m.Vid.String()
		}
	}
}

func (c *Context) errorf(code diagnostics.ErrorCode, node ast.Node, args ...interface{}) {
	c.addError(diagnostics.NewError(code, getNodeToken(node), args...))
}

func (c *Context) warnf(code diagnostics.ErrorCode, node ast.Node, args ...interface{}) {
	c.addWarning(diagnostics.NewWarning(code, getNodeToken(node), args...))
}

// getNodeToken extracts token from AST node if possible
func getNodeToken(node ast.Node) token.Token {
	if node == nil {
		return token.Token{}
	}
	return node.GetToken()
}

func (c *Context) scopes() []symbols.Scope {
	m := c.Module()
	if m == nil {
		return nil
	}
	return m.ScopeStack
}

func (c *Context) scope() symbols.Scope {
	s := c.scopes()
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

func (c *Context) pushScope(s symbols.Scope) {
	m := c.Module()
	m.ScopeStack = append(m.ScopeStack, s)
}

func (c *Context) popScope() {
	m := c.Module()
	m.ScopeStack = m.ScopeStack[:len(m.ScopeStack)-1]
}

// define adds d to the innermost scope.
func (c *Context) define(d symbols.Definition) {
	if s := c.scope(); s != nil {
		s.Defs().Add(d)
	}
}

// instanceScope returns the innermost trait/impl frame.
func (c *Context) instanceScope() *symbols.InstanceScope {
	s := c.scopes()
	for i := len(s) - 1; i >= 0; i-- {
		if is, ok := s[i].(*symbols.InstanceScope); ok {
			return is
		}
	}
	return nil
}

// fnScope returns the innermost function or closure frame.
func (c *Context) fnScope() *symbols.FnScope {
	s := c.scopes()
	for i := len(s) - 1; i >= 0; i-- {
		if fs, ok := s[i].(*symbols.FnScope); ok {
			return fs
		}
	}
	return nil
}

// blockScope returns the innermost block frame.
func (c *Context) blockScope() *symbols.BlockScope {
	s := c.scopes()
	for i := len(s) - 1; i >= 0; i-- {
		if bs, ok := s[i].(*symbols.BlockScope); ok {
			return bs
		}
	}
	return nil
}

// unwindScope lists the frames innermost first.
func (c *Context) unwindScope() []symbols.Scope {
	s := c.scopes()
	out := make([]symbols.Scope, len(s))
	for i := range s {
		out[i] = s[len(s)-1-i]
	}
	return out
}

func (c *Context) setType(n ast.Node, t typesystem.Type) {
	if t == nil {
		t = typesystem.Unknown()
	}
	c.Info.Types[n] = t
}

func (c *Context) typeOf(n ast.Node) typesystem.Type { return c.Info.TypeOf(n) }

// silently runs f with diagnostics suppressed.
func (c *Context) silently(f func()) {
	old := c.Silent
	c.Silent = true
	defer func() { c.Silent = old }()
	f()
}

func (c *Context) findPackage(name string) *symbols.Package {
	for _, p := range c.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (c *Context) findModule(v vid.Vid) *symbols.Module {
	if v.IsZero() {
		return nil
	}
	p := c.findPackage(v.First())
	if p == nil {
		return nil
	}
	return p.FindModule(v)
}
