package analyzer

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/vid"
)

// maxReExportDepth bounds chains of `pub use` re-exports.
const maxReExportDepth = 8

// resolveVid looks v up in this order, first match wins:
//  1. `Self` inside an instance
//  2. the scope stack, innermost frame first
//  3. v as a fully qualified vid
//  4. the module's imports and the default imports, spliced onto v
//
// A nil result means v does not resolve; the caller reports it.
func (w *walker) resolveVid(v vid.Vid, kinds ...symbols.DefKind) *Ref {
	if v.IsZero() {
		return nil
	}

	if v.Len() == 1 && v.First() == config.SelfTypeName && w.instanceScope() != nil &&
		symbols.KindAllowed(symbols.SelfKind, kinds) {
		return &Ref{Vid: v, Module: w.Module(), Def: &symbols.SelfDef{}}
	}

	if ref := w.resolveScope(v, kinds); ref != nil {
		return ref
	}

	if ref := w.resolveQualified(v, kinds, 0); ref != nil {
		return ref
	}

	return w.resolveImported(v, kinds)
}

func (w *walker) resolveScope(v vid.Vid, kinds []symbols.DefKind) *Ref {
	m := w.Module()
	if m == nil || v.Len() > 2 {
		return nil
	}
	for _, frame := range w.unwindScope() {
		def := w.lookupFrame(frame.Defs(), v, kinds)
		if def == nil {
			continue
		}
		if _, ok := frame.(*symbols.ModuleScope); ok {
			ref := &Ref{Vid: m.Vid.Concat(v), Module: m, Def: def}
			w.checkTopLevelDefinition(m, def)
			return ref
		}
		return &Ref{Vid: v, Module: m, Def: def}
	}
	return nil
}

// lookupFrame resolves a one or two component vid inside one definition map.
func (w *walker) lookupFrame(defs symbols.DefinitionMap, v vid.Vid, kinds []symbols.DefKind) symbols.Definition {
	switch v.Len() {
	case 1:
		if d, ok := defs.Lookup(v.First(), kinds...); ok {
			return d
		}
	case 2:
		if symbols.KindAllowed(symbols.VariantKind, kinds) {
			if d := lookupVariant(defs, v.First(), v.Last()); d != nil {
				return d
			}
		}
		if symbols.KindAllowed(symbols.MethodKind, kinds) {
			if d := w.lookupMethod(defs, v.First(), v.Last()); d != nil {
				return d
			}
		}
	}
	return nil
}

func lookupVariant(defs symbols.DefinitionMap, typeName, variantName string) *symbols.VariantDef {
	d, ok := defs.Lookup(typeName, symbols.TypeKind)
	if !ok {
		return nil
	}
	td := d.(*symbols.TypeDef).Type
	for _, v := range td.Variants {
		if v.Name.Value == variantName {
			return &symbols.VariantDef{Variant: v, TypeDef: td}
		}
	}
	return nil
}

// lookupMethod resolves `Owner::method` where Owner is a trait, a type with
// impls, or a bounded generic.
func (w *walker) lookupMethod(defs symbols.DefinitionMap, owner, method string) *symbols.MethodDef {
	if d, ok := defs.Lookup(owner, symbols.TraitKind); ok {
		rel := w.Info.Relations[d.(*symbols.TraitDef).Trait]
		if md := w.traitMethod(rel, method); md != nil {
			return md
		}
	}
	if d, ok := defs.Lookup(owner, symbols.TypeKind); ok {
		typeVid, known := w.defVids[d.(*symbols.TypeDef).Type]
		if known {
			if md := w.typeMethod(typeVid, method); md != nil {
				return md
			}
		}
	}
	if d, ok := defs.Lookup(owner, symbols.ImplKind); ok {
		if rel := w.Info.Relations[d.(*symbols.ImplDef).Impl]; rel != nil {
			if fn := rel.Method(method); fn != nil {
				return &symbols.MethodDef{Fn: fn, Rel: rel}
			}
		}
	}
	if d, ok := defs.Lookup(owner, symbols.GenericKind); ok {
		g := w.genericType(d.(*symbols.GenericDef).Generic)
		for _, b := range g.Bounds {
			bv, ok := traitVidOf(b)
			if !ok {
				continue
			}
			if md := w.traitMethod(w.traitRel(bv), method); md != nil {
				return md
			}
		}
	}
	return nil
}

// traitMethod finds method in the trait relation, then along its supertrait
// chains.
func (w *walker) traitMethod(rel *symbols.InstanceRelation, method string) *symbols.MethodDef {
	if rel == nil {
		return nil
	}
	if fn := rel.Method(method); fn != nil {
		return &symbols.MethodDef{Fn: fn, Rel: rel}
	}
	for _, chain := range w.findSuperRelChains(rel.ImplVid) {
		sup := w.traitRel(chain[len(chain)-1].ImplVid)
		if sup == nil || sup == rel {
			continue
		}
		if fn := sup.Method(method); fn != nil {
			return &symbols.MethodDef{Fn: fn, Rel: sup}
		}
	}
	return nil
}

// typeMethod finds method among the impls for the type named typeVid,
// inherent impls first, then trait defaults.
func (w *walker) typeMethod(typeVid vid.Vid, method string) *symbols.MethodDef {
	var traitImpls []*symbols.InstanceRelation
	for _, rel := range w.Impls {
		if rel.IsTraitDef() || !forTypeIs(rel, typeVid) {
			continue
		}
		if rel.ImplementsTrait() {
			traitImpls = append(traitImpls, rel)
			continue
		}
		if fn := rel.Method(method); fn != nil {
			return &symbols.MethodDef{Fn: fn, Rel: rel}
		}
	}
	for _, rel := range traitImpls {
		if fn := rel.Method(method); fn != nil {
			return &symbols.MethodDef{Fn: fn, Rel: rel}
		}
	}
	for _, rel := range traitImpls {
		if md := w.traitMethod(w.traitRel(rel.ImplVid), method); md != nil {
			return md
		}
	}
	return nil
}

// resolveQualified resolves v when its first component names a package.
func (w *walker) resolveQualified(v vid.Vid, kinds []symbols.DefKind, depth int) *Ref {
	if v.Len() < 2 || w.findPackage(v.First()) == nil {
		return nil
	}

	if symbols.KindAllowed(symbols.ModuleKind, kinds) {
		if m := w.findModule(v); m != nil {
			return &Ref{Vid: v, Module: m, Def: &symbols.ModuleDef{Module: m}}
		}
	}

	if m := w.findModule(v.Drop(1)); m != nil && m.TopScope != nil {
		if def := w.lookupFrame(m.TopScope.Defs(), v.Tail(v.Len()-1), kinds); def != nil {
			w.checkTopLevelDefinition(m, def)
			return &Ref{Vid: v, Module: m, Def: def}
		}
	}

	if v.Len() > 2 {
		if m := w.findModule(v.Drop(2)); m != nil && m.TopScope != nil {
			if def := w.lookupFrame(m.TopScope.Defs(), v.Tail(v.Len()-2), kinds); def != nil {
				w.checkTopLevelDefinition(m, def)
				return &Ref{Vid: v, Module: m, Def: def}
			}
		}
	}

	if depth >= maxReExportDepth {
		return nil
	}
	for drop := 1; drop <= 2 && drop < v.Len(); drop++ {
		m := w.findModule(v.Drop(drop))
		if m == nil {
			continue
		}
		rest := v.Tail(v.Len() - drop)
		for _, re := range m.ReExports {
			if re.Vid.Last() != rest.First() {
				continue
			}
			if ref := w.resolveQualified(re.Vid.Append(rest.Names()[1:]...), kinds, depth+1); ref != nil {
				return ref
			}
		}
	}
	return nil
}

// resolveImported splices an import whose last component equals v's first
// onto v and retries qualified resolution. Imports are not chained.
func (w *walker) resolveImported(v vid.Vid, kinds []symbols.DefKind) *Ref {
	m := w.Module()
	if m == nil {
		return nil
	}
	rest := v.Names()[1:]
	for _, imp := range w.moduleImports(m) {
		if imp.Last() != v.First() {
			continue
		}
		if ref := w.resolveQualified(imp.Append(rest...), kinds, 0); ref != nil {
			return ref
		}
	}
	return nil
}

// moduleImports lists the module's own imports followed by the default ones.
func (w *walker) moduleImports(m *symbols.Module) []vid.Vid {
	imports := make([]vid.Vid, 0, len(m.References)+len(m.ReExports)+len(config.DefaultImports))
	for _, imp := range m.References {
		imports = append(imports, imp.Vid)
	}
	for _, imp := range m.ReExports {
		imports = append(imports, imp.Vid)
	}
	for _, s := range config.DefaultImports {
		imports = append(imports, vid.FromString(s))
	}
	return imports
}

// checkTopLevelDefinition makes sure the statement owning def has been
// checked, so a cross reference always sees a fully typed definition.
func (w *walker) checkTopLevelDefinition(m *symbols.Module, def symbols.Definition) {
	if w.prepass {
		return
	}
	var node ast.Statement
	switch d := def.(type) {
	case *symbols.FnDef:
		node = d.Fn
	case *symbols.TraitDef:
		node = d.Trait
	case *symbols.TypeDef:
		node = d.Type
	case *symbols.VariantDef:
		node = d.TypeDef
	case *symbols.ImplDef:
		node = d.Impl
	case *symbols.NameDef:
		if d.VarDef != nil {
			node = d.VarDef
		}
	case *symbols.MethodDef:
		if d.Rel != nil {
			node = d.Rel.Instance
			m = d.Rel.Module
		}
	}
	if node == nil || w.Info.checked[node] {
		return
	}

	oldSilent := w.Silent
	w.Silent = false
	defer func() { w.Silent = oldSilent }()
	w.withModule(m, func() {
		node.Accept(w)
	})
}
