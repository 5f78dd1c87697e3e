package symbols

import (
	"testing"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

func name(s string) *ast.Name { return &ast.Name{Value: s} }

func TestDefinitionMapLookup(t *testing.T) {
	m := DefinitionMap{}
	fn := &FnDef{Fn: &ast.FnDef{Name: name("Point")}}
	ty := &TypeDef{Type: &ast.TypeDef{Name: name("Point")}}
	m.Add(fn)
	m.Add(ty)

	if d, ok := m.Lookup("Point", TypeKind); !ok || d != ty {
		t.Errorf("Lookup(TypeKind) = %v", d)
	}
	if d, ok := m.Lookup("Point", VariantKind, FnKind); !ok || d != fn {
		t.Errorf("Lookup(VariantKind, FnKind) = %v", d)
	}
	if d, ok := m.Lookup("Point"); !ok || d != fn {
		t.Errorf("Lookup() should prefer fns over types, got %v", d)
	}
	if _, ok := m.Lookup("Point", TraitKind); ok {
		t.Error("Lookup(TraitKind) should fail")
	}

	shadow := &FnDef{Fn: &ast.FnDef{Name: name("Point")}}
	m.Add(shadow)
	if d, _ := m.Lookup("Point", FnKind); d != shadow {
		t.Error("Add should replace a definition with the same key")
	}
}

func TestKindAllowed(t *testing.T) {
	if !KindAllowed(FnKind, nil) {
		t.Error("an empty filter allows everything")
	}
	if !KindAllowed(FnKind, []DefKind{NameKind, FnKind}) || KindAllowed(TypeKind, []DefKind{NameKind}) {
		t.Error("KindAllowed")
	}
}

func TestGenericDefs(t *testing.T) {
	m := GenericDefs([]*ast.Generic{{Name: name("T")}, {Name: name("U")}})
	if _, ok := m.Lookup("U", GenericKind); !ok || len(m) != 2 {
		t.Errorf("unexpected generic defs %v", m)
	}
}

func TestRelImportsDeduplicated(t *testing.T) {
	m := NewModule(vid.FromString("app::main"), nil, false)
	a, b := &InstanceRelation{}, &InstanceRelation{}
	m.AddRelImport(a, nil, b)
	m.AddRelImport(a)
	got := m.RelImports()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("RelImports = %v", got)
	}
	if m.File() != "" {
		t.Error("module without program has no file")
	}
}

func TestPackageFindModule(t *testing.T) {
	main := NewModule(vid.FromString("app::main"), &ast.Program{File: "main.ast.yaml"}, false)
	p := &Package{Name: "app", Modules: []*Module{main}}
	if p.FindModule(vid.FromString("app::main")) != main {
		t.Error("FindModule should find app::main")
	}
	if p.FindModule(vid.FromString("app::other")) != nil {
		t.Error("FindModule should not find app::other")
	}
	if main.File() != "main.ast.yaml" {
		t.Errorf("File = %q", main.File())
	}
}

func TestInstanceRelation(t *testing.T) {
	greet := &ast.FnDef{Name: name("greet")}
	trait := &ast.TraitDef{Name: name("Greet"), Block: &ast.Block{Statements: []ast.Statement{greet}}}
	greetT := typesystem.NewVidType("app::main::Greet")
	traitRel := &InstanceRelation{
		Instance: trait,
		ImplVid:  vid.FromString("app::main::Greet"),
		ImplDef:  &TraitDef{Trait: trait},
		ForType:  greetT,
		ImplType: greetT,
	}
	if !traitRel.IsTraitDef() || !traitRel.ImplementsTrait() {
		t.Error("trait relation flags")
	}
	if traitRel.Method("greet") != greet || traitRel.Method("other") != nil {
		t.Error("Method lookup")
	}
	if got := traitRel.String(); got != "trait app::main::Greet" {
		t.Errorf("String = %q", got)
	}

	dog := typesystem.NewVidType("app::main::Dog")
	impl := &InstanceRelation{
		Instance: &ast.ImplDef{},
		ImplVid:  vid.FromString("app::main::Greet"),
		ImplDef:  &TraitDef{Trait: trait},
		ForType:  dog,
		ImplType: greetT,
	}
	if impl.IsTraitDef() || !impl.ImplementsTrait() {
		t.Error("impl relation flags")
	}
	if got := impl.String(); got != "impl Greet for Dog" {
		t.Errorf("String = %q", got)
	}
	if impl.Methods() != nil {
		t.Error("impl without body has no methods")
	}

	inherent := &InstanceRelation{
		Instance: &ast.ImplDef{},
		ImplVid:  vid.FromString("app::main::Dog"),
		ImplDef:  &TypeDef{Type: &ast.TypeDef{Name: name("Dog")}},
		ForType:  dog,
		ImplType: dog,
	}
	if inherent.ImplementsTrait() {
		t.Error("inherent impls implement no trait")
	}
	if got := inherent.String(); got != "impl Dog" {
		t.Errorf("String = %q", got)
	}
}

func TestUpcast(t *testing.T) {
	var nilUp *Upcast
	if !nilUp.Empty() || !(&Upcast{Generics: []*Upcast{nil, {}}}).Empty() {
		t.Error("upcasts without traits are empty")
	}
	rel := &InstanceRelation{
		Instance: &ast.ImplDef{},
		ImplVid:  vid.FromString("std::string::Show"),
		ForType:  typesystem.NewVidType("std::int::Int"),
		ImplType: typesystem.NewVidType("std::string::Show"),
	}
	u := &Upcast{Generics: []*Upcast{{Traits: map[string]*InstanceRelation{"std::string::Show": rel}}}}
	if u.Empty() {
		t.Error("nested trait makes the upcast non empty")
	}
	if got := u.String(); got != "{<{std::string::Show: impl Show for Int}>}" {
		t.Errorf("String = %q", got)
	}
}
