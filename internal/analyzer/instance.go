package analyzer

import (
	"fmt"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

func (w *walker) VisitTraitDef(td *ast.TraitDef) { w.checkInstance(td) }
func (w *walker) VisitImplDef(id *ast.ImplDef)   { w.checkInstance(id) }

// checkInstance checks a trait or impl body. Signatures of every method are
// built before any body so that methods may call each other in any order.
func (w *walker) checkInstance(inst ast.Instance) {
	w.setType(inst, unitType())
	if w.Info.checked[inst] {
		return
	}
	w.Info.checked[inst] = true

	rel := w.Info.Relations[inst]
	if rel == nil {
		w.errorf(diagnostics.ErrA001, inst, fmt.Sprintf("`%s`", inst.InstanceName()))
		return
	}

	is := &symbols.InstanceScope{
		Definitions: symbols.GenericDefs(inst.InstanceGenerics()),
		Rel:         rel,
	}
	if rel.IsTraitDef() {
		is.SelfType = typesystem.Self
	} else {
		is.SelfType = rel.ForType
	}
	w.pushScope(is)
	defer w.popScope()

	w.genericTypes(inst.InstanceGenerics())
	if id, ok := inst.(*ast.ImplDef); ok {
		w.checkImplHeader(id, rel)
	}

	var fns []*ast.FnDef
	if block := inst.InstanceBlock(); block != nil {
		for _, stmt := range block.Statements {
			fn, ok := stmt.(*ast.FnDef)
			if !ok {
				w.errorf(diagnostics.ErrA013, stmt,
					fmt.Sprintf("`%s` is not allowed inside `%s`", describeStatement(stmt), rel))
				continue
			}
			fns = append(fns, fn)
		}
	}

	for _, fn := range fns {
		w.pushScope(&symbols.FnScope{Definitions: symbols.GenericDefs(fn.Generics), Fn: fn})
		w.fnSignature(fn)
		w.popScope()
	}
	for _, fn := range fns {
		fn.Accept(w)
	}

	if !rel.IsTraitDef() && rel.ImplementsTrait() {
		w.checkImplMethods(rel, fns)
	}
}

// checkImplHeader resolves the implemented trait (or type) and the receiver
// type again, this time reporting problems.
func (w *walker) checkImplHeader(id *ast.ImplDef, rel *symbols.InstanceRelation) {
	if id.Identifier == nil {
		return
	}
	if w.resolveVid(vid.New(id.Identifier.Path()...), symbols.TraitKind, symbols.TypeKind) == nil {
		w.errorf(diagnostics.ErrA001, id.Identifier, fmt.Sprintf("trait `%s`", id.Identifier))
		return
	}
	w.typeToVirtual(id.Identifier)
	if id.ForType != nil {
		w.typeToVirtual(id.ForType)
	}
}

// checkImplMethods compares the methods of `impl Tr for T` with what Tr and
// its supertraits declare, and records the default methods the impl
// inherits. Supertrait methods come from the `impl Super for Tr` bodies
// reachable from Tr.
func (w *walker) checkImplMethods(rel *symbols.InstanceRelation, fns []*ast.FnDef) {
	tr := w.traitRel(rel.ImplVid)
	if tr == nil {
		return
	}
	traitRels := []*symbols.InstanceRelation{tr}
	for _, chain := range w.findSuperRelChains(rel.ImplVid) {
		traitRels = append(traitRels, chain...)
	}

	var traitMethods []*symbols.MethodDef
	for _, tr := range traitRels {
		for _, fn := range tr.Methods() {
			traitMethods = append(traitMethods, &symbols.MethodDef{Fn: fn, Rel: tr})
		}
	}
	lookup := func(name string) *symbols.MethodDef {
		for _, md := range traitMethods {
			if md.Fn.Name.Value == name {
				return md
			}
		}
		return nil
	}

	own := make(map[string]*ast.FnDef, len(fns))
	for _, fn := range fns {
		own[fn.Name.Value] = fn
	}
	for _, md := range traitMethods {
		if md.Fn.Block == nil && own[md.Fn.Name.Value] == nil {
			w.errorf(diagnostics.ErrA008, rel.Instance,
				fmt.Sprintf("missing method implementation `%s`", methodVid(tr, md.Fn)))
		}
	}
	for _, fn := range fns {
		md := lookup(fn.Name.Value)
		if md == nil {
			w.errorf(diagnostics.ErrA008, fn,
				fmt.Sprintf("method `%s` is not defined by implemented trait", methodVid(tr, fn)))
			continue
		}
		w.checkRelation(md.Rel)
		w.checkMethodSignature(rel, md.Rel, md.Fn, fn)
	}

	rel.SuperMethods = nil
	for _, md := range traitMethods {
		if md.Fn.Block == nil || own[md.Fn.Name.Value] != nil {
			continue
		}
		w.checkRelation(md.Rel)
		if sig, ok := w.Info.Signatures[md.Fn]; ok {
			md.ParamUpcasts = w.superMethodUpcasts(rel, md.Rel, sig)
		}
		rel.SuperMethods = append(rel.SuperMethods, md)
		w.Module().AddRelImport(md.Rel)
	}
}

// checkRelation makes sure the body of a trait or impl relation has been
// checked, so its method signatures are known.
func (w *walker) checkRelation(rel *symbols.InstanceRelation) {
	switch inst := rel.Instance.(type) {
	case *ast.TraitDef:
		w.checkTopLevelDefinition(rel.Module, &symbols.TraitDef{Trait: inst})
	case *ast.ImplDef:
		w.checkTopLevelDefinition(rel.Module, &symbols.ImplDef{Impl: inst})
	}
}

// checkMethodSignature compares an implemented method with its declaration
// in tr, after both are instantiated for the impl's receiver. tr is the trait
// itself or an `impl Super for Sub` relation on one of its supertraits.
func (w *walker) checkMethodSignature(rel, tr *symbols.InstanceRelation, tfn, fn *ast.FnDef) {
	traitSig, ok := w.Info.Signatures[tfn]
	if !ok {
		return
	}
	implSig, ok := w.Info.Signatures[fn]
	if !ok {
		return
	}

	traitMap := typesystem.GenericMap{}
	if declaring, ok := traitVidOf(tr.ForType); ok {
		if sup := w.ConcreteSupertype(rel.ImplType, declaring); sup != nil {
			traitMap = typesystem.MapOverStructure(sup, tr.ForType, nil)
		}
	}
	expected := typesystem.ReplaceSelf(typesystem.Resolve(traitSig, traitMap), rel.ForType)
	actual := typesystem.ReplaceSelf(implSig, rel.ForType)

	if !w.sameSignature(expected, actual) {
		w.errorf(diagnostics.ErrA002, fn, expected.String(), actual.String())
	}
}

// sameSignature compares two method types by shape. Method generics are
// matched by position, not by name.
func (w *walker) sameSignature(expected, actual typesystem.Type) bool {
	ef, ok1 := expected.(*typesystem.FnType)
	af, ok2 := actual.(*typesystem.FnType)
	if !ok1 || !ok2 {
		return typesystem.Equal(expected, actual)
	}
	if len(ef.Generics) != len(af.Generics) || len(ef.Params) != len(af.Params) {
		return false
	}
	rename := typesystem.GenericMap{}
	for i, g := range af.Generics {
		rename[g.Name] = ef.Generics[i]
	}
	af = typesystem.Resolve(af, rename).(*typesystem.FnType)
	for i := range ef.Params {
		if !typesystem.Equal(ef.Params[i], af.Params[i]) {
			return false
		}
	}
	return typesystem.Equal(ef.Return, af.Return)
}
