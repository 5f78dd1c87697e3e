package analyzer

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// prepareModule builds the module's top scope and import lists. All
// top-level definitions are declared before any body is checked, so
// statements may refer to definitions that follow them.
func (w *walker) prepareModule(m *symbols.Module) {
	defs := symbols.DefinitionMap{}
	m.TopScope = &symbols.ModuleScope{Definitions: defs}
	m.References = nil
	m.ReExports = nil

	if m.Program == nil {
		return
	}
	for _, use := range m.Program.Uses {
		for _, leaf := range use.Flatten() {
			imp := symbols.Import{Vid: vid.New(leaf.Names...), Node: leaf.Node}
			if leaf.Pub {
				m.ReExports = append(m.ReExports, imp)
			} else {
				m.References = append(m.References, imp)
			}
		}
	}
	if m.Program.Block == nil {
		return
	}

	for _, stmt := range m.Program.Block.Statements {
		switch s := stmt.(type) {
		case *ast.FnDef:
			defs.Add(&symbols.FnDef{Fn: s})
			w.defVids[s] = m.Vid.Append(s.Name.Value)
		case *ast.TraitDef:
			defs.Add(&symbols.TraitDef{Trait: s})
			w.defVids[s] = m.Vid.Append(s.Name.Value)
		case *ast.TypeDef:
			defs.Add(&symbols.TypeDef{Type: s})
			typeVid := m.Vid.Append(s.Name.Value)
			w.defVids[s] = typeVid
			for _, v := range s.Variants {
				defs.Add(&symbols.VariantDef{Variant: v, TypeDef: s})
				w.defVids[v] = typeVid.Append(v.Name.Value)
			}
		case *ast.ImplDef:
			defs.Add(&symbols.ImplDef{Impl: s})
		case *ast.VarDef:
			for _, name := range patternNames(s.Pattern) {
				defs.Add(&symbols.NameDef{Name: name, VarDef: s})
				w.defVids[name] = m.Vid.Append(name.Value)
			}
		}
	}
}

// patternNames lists the names a pattern binds, in order.
func patternNames(p ast.Pattern) []*ast.Name {
	var names []*ast.Name
	var walk func(ast.Pattern)
	walk = func(p ast.Pattern) {
		switch pt := p.(type) {
		case *ast.Name:
			names = append(names, pt)
		case *ast.ConPattern:
			for _, f := range pt.Fields {
				if f.Pattern == nil {
					names = append(names, f.Name)
				} else {
					walk(f.Pattern)
				}
			}
		}
	}
	walk(p)
	return names
}

// buildRelations registers an InstanceRelation for every trait and impl
// definition of every module. It runs silently and without forcing
// definition checks; problems in the headers are reported when the
// instance itself is checked.
func (w *walker) buildRelations() {
	oldPrepass := w.prepass
	w.prepass = true
	defer func() { w.prepass = oldPrepass }()

	w.silently(func() {
		for _, p := range w.Packages {
			for _, m := range p.Modules {
				if m.Program == nil || m.Program.Block == nil {
					continue
				}
				w.withModule(m, func() {
					for _, stmt := range m.Program.Block.Statements {
						if inst, ok := stmt.(ast.Instance); ok {
							w.registerRelation(m, inst)
						}
					}
				})
			}
		}
	})
}

func (w *walker) registerRelation(m *symbols.Module, inst ast.Instance) *symbols.InstanceRelation {
	if rel, ok := w.Info.Relations[inst]; ok {
		return rel
	}

	rel := &symbols.InstanceRelation{Module: m, Instance: inst}
	w.pushScope(&symbols.InstanceScope{
		Definitions: symbols.GenericDefs(inst.InstanceGenerics()),
		SelfType:    typesystem.Self,
	})
	defer w.popScope()

	rel.Generics = w.genericTypes(inst.InstanceGenerics())

	switch d := inst.(type) {
	case *ast.TraitDef:
		args := make([]typesystem.Type, len(rel.Generics))
		for i, g := range rel.Generics {
			args[i] = g
		}
		t := &typesystem.VidType{Vid: w.defVids[d], TypeArgs: args}
		rel.ImplVid = t.Vid
		rel.ImplDef = &symbols.TraitDef{Trait: d}
		rel.ForType = t
		rel.ImplType = t
	case *ast.ImplDef:
		if d.Identifier == nil {
			return nil
		}
		ref := w.resolveVid(vid.New(d.Identifier.Path()...), symbols.TraitKind, symbols.TypeKind)
		if ref != nil {
			rel.ImplVid = ref.Vid
			rel.ImplDef = ref.Def
		}
		rel.ImplType = w.typeToVirtual(d.Identifier)
		if d.ForType != nil {
			rel.ForType = w.typeToVirtual(d.ForType)
		} else {
			rel.ForType = rel.ImplType
		}
	}

	w.Info.Relations[inst] = rel
	w.Impls = append(w.Impls, rel)
	return rel
}

// withModule runs f with m on top of the module stack and only m's top scope
// visible.
func (w *walker) withModule(m *symbols.Module, f func()) {
	saved := m.ScopeStack
	m.ScopeStack = []symbols.Scope{m.TopScope}
	w.ModuleStack = append(w.ModuleStack, m)
	defer func() {
		w.ModuleStack = w.ModuleStack[:len(w.ModuleStack)-1]
		m.ScopeStack = saved
	}()
	f()
}
