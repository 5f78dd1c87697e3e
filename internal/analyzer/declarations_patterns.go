package analyzer

import (
	"fmt"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// bindPattern checks p against a value of type t and defines every name it
// binds in the innermost scope. owner is the var definition the pattern
// belongs to, if any.
func (w *walker) bindPattern(p ast.Pattern, t typesystem.Type, owner *ast.VarDef) {
	switch pat := p.(type) {
	case *ast.Name:
		w.define(&symbols.NameDef{Name: pat, VarDef: owner})
		w.setType(pat, t)
	case *ast.HolePattern:
		w.setType(pat, t)
	case *ast.LiteralPattern:
		lt := w.checkExpr(pat.Value)
		if !w.isAssignable(lt, t) {
			w.errorf(diagnostics.ErrA002, pat, t.String(), lt.String())
		}
		w.setType(pat, t)
	case *ast.ConPattern:
		w.bindConPattern(pat, t, owner)
	}
}

func (w *walker) bindConPattern(pat *ast.ConPattern, t typesystem.Type, owner *ast.VarDef) {
	w.setType(pat, t)
	fail := func() {
		for _, f := range pat.Fields {
			if f.Pattern == nil {
				w.bindPattern(f.Name, typesystem.Unknown(), owner)
			} else {
				w.bindPattern(f.Pattern, typesystem.Unknown(), owner)
			}
		}
	}

	ref := w.resolveVid(vid.New(pat.Identifier.Path()...), symbols.VariantKind)
	if ref == nil {
		w.errorf(diagnostics.ErrA001, pat.Identifier, fmt.Sprintf("variant `%s`", pat.Identifier))
		fail()
		return
	}
	w.Info.Refs[pat.Identifier] = ref
	vd := ref.Def.(*symbols.VariantDef)
	sig := w.variantSignature(vd)

	st := w.resolveSelf(t)
	if !typesystem.IsUnknown(st) && !typesystem.IsHole(st) {
		vt, ok := st.(*typesystem.VidType)
		ret, _ := sig.Return.(*typesystem.VidType)
		if !ok || ret == nil || !vt.Vid.Equal(ret.Vid) {
			w.errorf(diagnostics.ErrA002, pat, st.String(), vd.TypeDef.Name.Value)
			fail()
			return
		}
	}

	m := typesystem.MapOverStructure(st, sig.Return, nil)
	for _, f := range pat.Fields {
		idx := fieldIndex(vd.Variant, f.Name.Value)
		if idx < 0 {
			w.errorf(diagnostics.ErrA005, f, fmt.Sprintf("field `%s` not found in variant `%s`", f.Name.Value, vd.Variant.Name.Value))
			if f.Pattern != nil {
				w.bindPattern(f.Pattern, typesystem.Unknown(), owner)
			}
			continue
		}
		var ft typesystem.Type = typesystem.Unknown()
		if idx < len(sig.Params) {
			ft = w.eraseForeignGenerics(typesystem.Resolve(sig.Params[idx], m))
		}
		if f.Pattern == nil {
			w.bindPattern(f.Name, ft, owner)
		} else {
			w.bindPattern(f.Pattern, ft, owner)
		}
	}
}

func fieldIndex(v *ast.Variant, name string) int {
	for i, f := range v.Fields {
		if f.Name.Value == name {
			return i
		}
	}
	return -1
}
