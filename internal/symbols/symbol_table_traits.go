package symbols

import (
	"sort"
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// InstanceRelation binds a trait or impl body to the type it applies to.
//
// For `trait T<G>` the relation is the trait's own default-method table:
// ForType and ImplType are both T<G>. For `impl<G> Tr<A> for Ty<B>` ForType is
// Ty<B>, ImplType is Tr<A> and ImplVid is Tr's vid. An inherent `impl Ty` has
// ForType == ImplType == Ty.
type InstanceRelation struct {
	Module   *Module
	Instance ast.Instance // *ast.TraitDef or *ast.ImplDef
	ImplVid  vid.Vid      // vid of the implemented trait (or type, for inherent impls)
	ImplDef  Definition   // *TraitDef or *TypeDef that ImplVid names
	ForType  typesystem.Type
	ImplType typesystem.Type
	Generics []*typesystem.Generic

	// SuperMethods are inherited default methods the impl does not override.
	// Filled when the impl is checked.
	SuperMethods []*MethodDef
}

// IsTraitDef reports whether the relation is a trait's own default table.
func (r *InstanceRelation) IsTraitDef() bool {
	_, ok := r.Instance.(*ast.TraitDef)
	return ok
}

// ImplementsTrait reports whether ImplVid names a trait.
func (r *InstanceRelation) ImplementsTrait() bool {
	_, ok := r.ImplDef.(*TraitDef)
	return ok
}

// Methods returns the fn definitions declared in the relation's body.
func (r *InstanceRelation) Methods() []*ast.FnDef {
	block := r.Instance.InstanceBlock()
	if block == nil {
		return nil
	}
	var fns []*ast.FnDef
	for _, s := range block.Statements {
		if fn, ok := s.(*ast.FnDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Method finds a method by name in the relation's body.
func (r *InstanceRelation) Method(name string) *ast.FnDef {
	for _, fn := range r.Methods() {
		if fn.Name.Value == name {
			return fn
		}
	}
	return nil
}

func (r *InstanceRelation) String() string {
	if r.IsTraitDef() {
		return "trait " + r.ImplVid.String()
	}
	if r.ForType == nil || r.ImplType == nil {
		return "impl " + r.ImplVid.String()
	}
	if typesystem.Equal(r.ForType, r.ImplType) {
		return "impl " + r.ForType.String()
	}
	return "impl " + r.ImplType.String() + " for " + r.ForType.String()
}

// MethodDef is a function together with the relation that owns it.
type MethodDef struct {
	Fn  *ast.FnDef
	Rel *InstanceRelation
	// ParamUpcasts holds, per parameter, the upcast an inherited method needs
	// to treat the implementing value as its declaring trait. Entries may be nil.
	ParamUpcasts []*Upcast
}

func (d *MethodDef) Kind() DefKind   { return MethodKind }
func (d *MethodDef) DefName() string { return d.Fn.Name.Value }

// Upcast is the recipe to view a concrete value as a trait instance: the
// relation providing each trait's method table, and the same recipe for every
// type argument.
type Upcast struct {
	Traits   map[string]*InstanceRelation // trait vid -> implementing relation
	Generics []*Upcast
}

// Empty reports whether the upcast carries no work.
func (u *Upcast) Empty() bool {
	if u == nil {
		return true
	}
	if len(u.Traits) > 0 {
		return false
	}
	for _, g := range u.Generics {
		if !g.Empty() {
			return false
		}
	}
	return true
}

func (u *Upcast) String() string {
	if u.Empty() {
		return "{}"
	}
	keys := make([]string, 0, len(u.Traits))
	for k := range u.Traits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+len(u.Generics))
	for _, k := range keys {
		parts = append(parts, k+": "+u.Traits[k].String())
	}
	for _, g := range u.Generics {
		if !g.Empty() {
			parts = append(parts, "<"+g.String()+">")
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
