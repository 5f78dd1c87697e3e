package symbols

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
)

// DefKind tags a Definition. It is part of the definition key so that a type
// and a function with the same name can coexist in one scope.
type DefKind int

const (
	ModuleKind DefKind = iota
	NameKind
	FnKind
	TraitKind
	ImplKind
	TypeKind
	VariantKind
	GenericKind
	SelfKind
	MethodKind
)

var defKindNames = [...]string{
	ModuleKind:  "module",
	NameKind:    "name-def",
	FnKind:      "fn-def",
	TraitKind:   "trait-def",
	ImplKind:    "impl-def",
	TypeKind:    "type-def",
	VariantKind: "variant",
	GenericKind: "generic",
	SelfKind:    "self",
	MethodKind:  "method-def",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return "unknown"
}

// TypeKinds are the definition kinds a type annotation may resolve to.
var TypeKinds = []DefKind{TypeKind, TraitKind, GenericKind, SelfKind}

// Definition is what a name resolves to. The set of implementations is closed.
type Definition interface {
	Kind() DefKind
	DefName() string
}

// ModuleDef refers to a whole module.
type ModuleDef struct {
	Module *Module
}

func (d *ModuleDef) Kind() DefKind   { return ModuleKind }
func (d *ModuleDef) DefName() string { return d.Module.Vid.Last() }

// NameDef is a variable binding introduced by a pattern.
type NameDef struct {
	Name   *ast.Name
	VarDef *ast.VarDef // owning statement, nil for params and pattern bindings
}

func (d *NameDef) Kind() DefKind   { return NameKind }
func (d *NameDef) DefName() string { return d.Name.Value }

type FnDef struct {
	Fn *ast.FnDef
}

func (d *FnDef) Kind() DefKind   { return FnKind }
func (d *FnDef) DefName() string { return d.Fn.Name.Value }

type TraitDef struct {
	Trait *ast.TraitDef
}

func (d *TraitDef) Kind() DefKind   { return TraitKind }
func (d *TraitDef) DefName() string { return d.Trait.Name.Value }

type ImplDef struct {
	Impl *ast.ImplDef
}

func (d *ImplDef) Kind() DefKind   { return ImplKind }
func (d *ImplDef) DefName() string { return d.Impl.InstanceName() }

type TypeDef struct {
	Type *ast.TypeDef
}

func (d *TypeDef) Kind() DefKind   { return TypeKind }
func (d *TypeDef) DefName() string { return d.Type.Name.Value }

// VariantDef is a variant together with the type that declares it.
type VariantDef struct {
	Variant *ast.Variant
	TypeDef *ast.TypeDef
}

func (d *VariantDef) Kind() DefKind   { return VariantKind }
func (d *VariantDef) DefName() string { return d.Variant.Name.Value }

type GenericDef struct {
	Generic *ast.Generic
}

func (d *GenericDef) Kind() DefKind   { return GenericKind }
func (d *GenericDef) DefName() string { return d.Generic.Name.Value }

// SelfDef is the receiver type of the enclosing instance.
type SelfDef struct{}

func (d *SelfDef) Kind() DefKind   { return SelfKind }
func (d *SelfDef) DefName() string { return config.SelfTypeName }

// DefKey identifies a definition inside one scope.
type DefKey struct {
	Kind DefKind
	Name string
}

// KeyOf returns the scope key of d.
func KeyOf(d Definition) DefKey { return DefKey{Kind: d.Kind(), Name: d.DefName()} }

// DefinitionMap holds the definitions of one scope frame.
type DefinitionMap map[DefKey]Definition

// Add inserts d, replacing an earlier definition with the same key.
func (m DefinitionMap) Add(d Definition) { m[KeyOf(d)] = d }

// Lookup finds name under the first matching kind. With no kinds every kind is tried.
func (m DefinitionMap) Lookup(name string, kinds ...DefKind) (Definition, bool) {
	if len(kinds) == 0 {
		kinds = allKinds
	}
	for _, k := range kinds {
		if d, ok := m[DefKey{Kind: k, Name: name}]; ok {
			return d, true
		}
	}
	return nil, false
}

var allKinds = []DefKind{
	NameKind, FnKind, TypeKind, TraitKind, VariantKind, GenericKind, SelfKind, MethodKind, ImplKind, ModuleKind,
}

// KindAllowed reports whether k is in kinds; an empty filter allows everything.
func KindAllowed(k DefKind, kinds []DefKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, a := range kinds {
		if a == k {
			return true
		}
	}
	return false
}

// GenericDefs builds a definition map from declared generics.
func GenericDefs(generics []*ast.Generic) DefinitionMap {
	m := DefinitionMap{}
	for _, g := range generics {
		m.Add(&GenericDef{Generic: g})
	}
	return m
}
