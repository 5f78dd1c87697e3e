package analyzer

import (
	"fmt"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

func stdType(v string, args ...typesystem.Type) *typesystem.VidType {
	return typesystem.NewVidType(v, args...)
}

func unitType() typesystem.Type   { return stdType(config.UnitTypeVid) }
func neverType() typesystem.Type  { return stdType(config.NeverTypeVid) }
func boolType() typesystem.Type   { return stdType(config.BoolTypeVid) }
func stringType() typesystem.Type { return stdType(config.StringTypeVid) }

func isNever(t typesystem.Type) bool {
	return typesystem.IsVid(t, vid.FromString(config.NeverTypeVid))
}

func isUnit(t typesystem.Type) bool {
	return typesystem.IsVid(t, vid.FromString(config.UnitTypeVid))
}

// typeToVirtual converts a syntactic type annotation into a VirtualType,
// reporting unresolved names and wrong type argument counts.
func (w *walker) typeToVirtual(te ast.TypeExpr) typesystem.Type {
	switch t := te.(type) {
	case nil:
		return unitType()
	case *ast.HoleTypeExpr:
		return typesystem.Hole
	case *ast.FnTypeExpr:
		fn := &typesystem.FnType{Generics: w.genericTypes(t.Generics)}
		for _, p := range t.Params {
			fn.Params = append(fn.Params, w.typeToVirtual(p))
		}
		fn.Return = w.typeToVirtual(t.ReturnType)
		return fn
	case *ast.TypeRef:
		return w.typeRefToVirtual(t)
	}
	return typesystem.Unknown()
}

func (w *walker) typeRefToVirtual(t *ast.TypeRef) typesystem.Type {
	ref := w.resolveVid(vid.New(t.Path()...), symbols.TypeKinds...)
	if ref == nil {
		w.errorf(diagnostics.ErrA001, t, fmt.Sprintf("type `%s`", t.String()))
		return typesystem.Unknown()
	}

	args := make([]typesystem.Type, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		args[i] = w.typeToVirtual(a)
	}

	var generics []*ast.Generic
	switch d := ref.Def.(type) {
	case *symbols.TypeDef:
		generics = d.Type.Generics
	case *symbols.TraitDef:
		generics = d.Trait.Generics
	case *symbols.GenericDef:
		if len(args) > 0 {
			w.errorf(diagnostics.ErrA014, t, fmt.Sprintf("generic `%s` does not accept type arguments", d.Generic.Name.Value))
		}
		return w.genericType(d.Generic)
	case *symbols.SelfDef:
		if len(args) > 0 {
			w.errorf(diagnostics.ErrA014, t, "`Self` does not accept type arguments")
		}
		return typesystem.Self
	default:
		w.errorf(diagnostics.ErrA001, t, fmt.Sprintf("type `%s`", t.String()))
		return typesystem.Unknown()
	}

	if len(args) != len(generics) {
		w.errorf(diagnostics.ErrA014, t,
			fmt.Sprintf("expected %d type arguments, got %d", len(generics), len(args)))
		fixed := make([]typesystem.Type, len(generics))
		for i := range fixed {
			if i < len(args) {
				fixed[i] = args[i]
			} else {
				fixed[i] = typesystem.Hole
			}
		}
		args = fixed
	}
	return &typesystem.VidType{Vid: ref.Vid, TypeArgs: args}
}

// genericType returns the shared VirtualType of a declared generic.
func (w *walker) genericType(g *ast.Generic) *typesystem.Generic {
	if gt, ok := w.generics[g]; ok {
		return gt
	}
	gt := &typesystem.Generic{Name: g.Name.Value}
	w.generics[g] = gt
	gt.Bounds = w.genericBounds(g)
	return gt
}

// genericTypes converts declared generics in the current scope. Bounds are
// resolved again so that problems in them are reported outside the prepass.
func (w *walker) genericTypes(generics []*ast.Generic) []*typesystem.Generic {
	out := make([]*typesystem.Generic, len(generics))
	for i, g := range generics {
		_, seen := w.generics[g]
		gt := w.genericType(g)
		if seen {
			gt.Bounds = w.genericBounds(g)
		}
		out[i] = gt
	}
	return out
}

func (w *walker) genericBounds(g *ast.Generic) []typesystem.Type {
	var bounds []typesystem.Type
	for _, b := range g.Bounds {
		bt := w.typeToVirtual(b)
		if vt, ok := bt.(*typesystem.VidType); ok && !w.prepass && !w.isTrait(vt.Vid) {
			w.errorf(diagnostics.ErrA002, b, "trait", vt.String())
			continue
		}
		bounds = append(bounds, bt)
	}
	return bounds
}

// fnSignature builds (once) the type of a function definition. Generics are
// expected to be defined in the current scope.
func (w *walker) fnSignature(fn *ast.FnDef) *typesystem.FnType {
	if sig, ok := w.Info.Signatures[fn]; ok {
		return sig
	}
	sig := &typesystem.FnType{Generics: w.genericTypes(fn.Generics)}
	inInstance := w.instanceScope() != nil
	for i, p := range fn.Params {
		switch {
		case p.Type != nil:
			sig.Params = append(sig.Params, w.typeToVirtual(p.Type))
		case i == 0 && inInstance && isSelfParam(p):
			sig.Params = append(sig.Params, typesystem.Self)
		default:
			w.errorf(diagnostics.ErrA013, p, "parameter type annotation required")
			sig.Params = append(sig.Params, typesystem.Unknown())
		}
	}
	sig.Return = w.typeToVirtual(fn.ReturnType)
	w.Info.Signatures[fn] = sig
	w.Info.Static[fn] = len(fn.Params) == 0 || !isSelfParam(fn.Params[0])
	return sig
}

func isSelfParam(p *ast.Param) bool {
	n, ok := p.Pattern.(*ast.Name)
	return ok && n.Value == config.SelfParamName
}

// variantSignature returns the constructor type of a variant. The owning
// type definition is checked first so the signature exists.
func (w *walker) variantSignature(vd *symbols.VariantDef) *typesystem.FnType {
	if sig, ok := w.Info.Constructors[vd.Variant]; ok {
		return sig
	}
	return &typesystem.FnType{Return: typesystem.Unknown()}
}

// defType returns the value type of a resolved definition.
func (w *walker) defType(ref *Ref) typesystem.Type {
	switch d := ref.Def.(type) {
	case *symbols.NameDef:
		return w.typeOf(d.Name)
	case *symbols.FnDef:
		if sig, ok := w.Info.Signatures[d.Fn]; ok {
			return sig
		}
	case *symbols.MethodDef:
		sig, ok := w.Info.Signatures[d.Fn]
		if !ok {
			break
		}
		if d.Rel != nil && !d.Rel.IsTraitDef() {
			return typesystem.ReplaceSelf(sig, d.Rel.ForType)
		}
		return sig
	case *symbols.VariantDef:
		return w.variantSignature(d)
	}
	return typesystem.Unknown()
}

// resolveSelf replaces a top-level Self with the receiver type of the
// enclosing impl. Inside a trait Self stays abstract.
func (w *walker) resolveSelf(t typesystem.Type) typesystem.Type {
	if _, ok := t.(*typesystem.SelfType); !ok {
		return t
	}
	is := w.instanceScope()
	if is == nil || is.SelfType == nil {
		return t
	}
	return is.SelfType
}

// eraseForeignGenerics replaces every generic of t that is not declared by
// an enclosing scope with a hole. Such generics belong to a callee and were
// not fixed by the call.
func (w *walker) eraseForeignGenerics(t typesystem.Type) typesystem.Type {
	return typesystem.EraseGenerics(t, w.genericInScope)
}

func (w *walker) genericInScope(g *typesystem.Generic) bool {
	for _, frame := range w.scopes() {
		d, ok := frame.Defs().Lookup(g.Name, symbols.GenericKind)
		if ok && w.generics[d.(*symbols.GenericDef).Generic] == g {
			return true
		}
	}
	return false
}
