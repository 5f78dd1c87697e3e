package analyzer

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// targetTraits lists the traits a value must be viewed as to fit target.
func (w *walker) targetTraits(target typesystem.Type) []vid.Vid {
	switch t := target.(type) {
	case *typesystem.VidType:
		if w.isTrait(t.Vid) {
			return []vid.Vid{t.Vid}
		}
	case *typesystem.Generic:
		var out []vid.Vid
		for _, b := range t.Bounds {
			if bv, ok := traitVidOf(b); ok {
				out = append(out, bv)
			}
		}
		return out
	}
	return nil
}

// makeUpcast computes how a value of concrete type t is given the method
// tables of the traits target asks for, recursively for type arguments.
// Nil when nothing needs to happen.
func (w *walker) makeUpcast(t, target typesystem.Type) *symbols.Upcast {
	vt, ok := t.(*typesystem.VidType)
	if !ok || target == nil {
		return nil
	}
	u := &symbols.Upcast{Traits: map[string]*symbols.InstanceRelation{}}
	for _, traitVid := range w.targetTraits(target) {
		for _, tv := range w.superTraits(traitVid) {
			if rel := w.resolveTypeImpl(vt, tv); rel != nil {
				u.Traits[tv.String()] = rel
			}
		}
	}

	if tt, ok := target.(*typesystem.VidType); ok {
		var args []typesystem.Type
		if tt.Vid.Equal(vt.Vid) {
			args = vt.TypeArgs
		} else if sup, ok := w.ConcreteSupertype(vt, tt.Vid).(*typesystem.VidType); ok {
			args = sup.TypeArgs
		}
		for i := 0; i < len(args) && i < len(tt.TypeArgs); i++ {
			u.Generics = append(u.Generics, w.makeUpcast(args[i], tt.TypeArgs[i]))
		}
	}

	if u.Empty() {
		return nil
	}
	return u
}

// attachUpcast records the upcast node needs to fit target and registers the
// relations it uses with the current module.
func (w *walker) attachUpcast(node ast.Node, t, target typesystem.Type) {
	u := w.makeUpcast(t, target)
	if u == nil {
		return
	}
	w.Info.Upcasts[node] = u
	w.importUpcast(u)
}

func (w *walker) importUpcast(u *symbols.Upcast) {
	if u == nil {
		return
	}
	m := w.Module()
	if m == nil {
		return
	}
	for _, rel := range u.Traits {
		m.AddRelImport(rel)
	}
	for _, g := range u.Generics {
		w.importUpcast(g)
	}
}

// superMethodUpcasts builds, for an inherited method, the upcast each
// parameter needs when it mentions a generic of the implementing relation
// rather than of the declaring trait.
func (w *walker) superMethodUpcasts(rel, declaring *symbols.InstanceRelation, sig *typesystem.FnType) []*symbols.Upcast {
	owned := map[string]bool{}
	for _, g := range declaring.Generics {
		owned[g.Name] = true
	}
	traitType := declaring.ForType
	ups := make([]*symbols.Upcast, len(sig.Params))
	found := false
	for i, p := range sig.Params {
		if _, isSelf := p.(*typesystem.SelfType); isSelf {
			ups[i] = w.makeUpcast(rel.ForType, traitType)
		} else {
			for _, name := range typesystem.Generics(p) {
				if !owned[name] {
					ups[i] = w.makeUpcast(typesystem.ReplaceSelf(p, rel.ForType), p)
					break
				}
			}
		}
		if ups[i] != nil {
			found = true
		}
	}
	if !found {
		return nil
	}
	return ups
}
