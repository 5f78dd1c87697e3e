package analyzer

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// forTypeIs reports whether rel applies to the type named v.
func forTypeIs(rel *symbols.InstanceRelation, v vid.Vid) bool {
	ft, ok := rel.ForType.(*typesystem.VidType)
	return ok && ft.Vid.Equal(v)
}

// traitVidOf returns the vid of a trait-shaped type.
func traitVidOf(t typesystem.Type) (vid.Vid, bool) {
	vt, ok := t.(*typesystem.VidType)
	if !ok {
		return vid.Vid{}, false
	}
	return vt.Vid, true
}

// traitRel returns the default-method relation of the trait named v.
func (w *walker) traitRel(v vid.Vid) *symbols.InstanceRelation {
	for _, rel := range w.Impls {
		if rel.IsTraitDef() && rel.ImplVid.Equal(v) {
			return rel
		}
	}
	return nil
}

func (w *walker) isTrait(v vid.Vid) bool { return w.traitRel(v) != nil }

// findSuperRelChains walks `impl Super for Sub` edges upwards from the trait
// named v, in breadth order. Every returned chain starts at an impl for v and
// ends at an impl of some ancestor trait.
func (w *walker) findSuperRelChains(v vid.Vid) [][]*symbols.InstanceRelation {
	var chains [][]*symbols.InstanceRelation
	visited := set.New[string](4)
	visited.Insert(v.String())

	type item struct {
		at    vid.Vid
		chain []*symbols.InstanceRelation
	}
	queue := []item{{at: v}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, rel := range w.Impls {
			if rel.IsTraitDef() || !rel.ImplementsTrait() || !forTypeIs(rel, cur.at) {
				continue
			}
			if !visited.Insert(rel.ImplVid.String()) {
				continue
			}
			chain := make([]*symbols.InstanceRelation, len(cur.chain), len(cur.chain)+1)
			copy(chain, cur.chain)
			chain = append(chain, rel)
			chains = append(chains, chain)
			queue = append(queue, item{at: rel.ImplVid, chain: chain})
		}
	}
	return chains
}

// superTraits lists v followed by every ancestor trait vid.
func (w *walker) superTraits(v vid.Vid) []vid.Vid {
	out := []vid.Vid{v}
	for _, chain := range w.findSuperRelChains(v) {
		out = append(out, chain[len(chain)-1].ImplVid)
	}
	return out
}

// findTypeTraits returns the impl relations whose ForType accepts t.
func (w *walker) findTypeTraits(t typesystem.Type) []*symbols.InstanceRelation {
	vt, ok := t.(*typesystem.VidType)
	if !ok {
		return nil
	}
	var rels []*symbols.InstanceRelation
	for _, rel := range w.Impls {
		if rel.IsTraitDef() || !forTypeIs(rel, vt.Vid) {
			continue
		}
		if w.getInstanceForType(rel, vt) != nil {
			rels = append(rels, rel)
		}
	}
	return rels
}

// getInstanceForType instantiates rel.ForType for t; nil if rel does not
// apply to t.
func (w *walker) getInstanceForType(rel *symbols.InstanceRelation, t *typesystem.VidType) typesystem.Type {
	m := typesystem.MapOverStructure(t, rel.ForType, nil)
	inst := typesystem.Resolve(rel.ForType, m)
	if !w.isAssignable(t, inst) {
		return nil
	}
	return inst
}

// resolveTypeImpl returns the relation that implements the trait traitVid
// for the concrete type t, or nil.
func (w *walker) resolveTypeImpl(t typesystem.Type, traitVid vid.Vid) *symbols.InstanceRelation {
	for _, rel := range w.findTypeTraits(t) {
		if rel.ImplVid.Equal(traitVid) {
			return rel
		}
	}
	return nil
}

// ConcreteSupertype implements typesystem.Resolver.
func (w *walker) ConcreteSupertype(t typesystem.Type, traitVid vid.Vid) typesystem.Type {
	return w.concreteSupertype(t, traitVid, set.New[string](4))
}

// concreteSupertype views t as the trait traitVid with concrete type
// arguments, following impl and supertrait edges. Nil when t does not
// implement the trait. visited holds the vids on the current path only.
func (w *walker) concreteSupertype(t typesystem.Type, traitVid vid.Vid, visited *set.Set[string]) typesystem.Type {
	switch tt := t.(type) {
	case *typesystem.VidType:
		if tt.Vid.Equal(traitVid) {
			return tt
		}
		if !visited.Insert(tt.Vid.String()) {
			return nil
		}
		defer visited.Remove(tt.Vid.String())
		for _, rel := range w.Impls {
			if rel.IsTraitDef() || !rel.ImplementsTrait() || !forTypeIs(rel, tt.Vid) {
				continue
			}
			m := typesystem.MapOverStructure(tt, rel.ForType, nil)
			implType := typesystem.Resolve(rel.ImplType, m)
			if sup := w.concreteSupertype(implType, traitVid, visited); sup != nil {
				return sup
			}
		}
	case *typesystem.Generic:
		for _, b := range tt.Bounds {
			if sup := w.concreteSupertype(b, traitVid, visited); sup != nil {
				return sup
			}
		}
	case *typesystem.SelfType:
		is := w.instanceScope()
		if is == nil || is.Rel == nil {
			return nil
		}
		if _, abstract := is.SelfType.(*typesystem.SelfType); !abstract && is.SelfType != nil {
			return w.concreteSupertype(is.SelfType, traitVid, visited)
		}
		return w.concreteSupertype(is.Rel.ForType, traitVid, visited)
	}
	return nil
}
