package typesystem

import (
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/vid"
)

// Resolver lets structural matching look through trait implementations
// without the typesystem depending on the relation registry.
type Resolver interface {
	// ConcreteSupertype returns t viewed as the trait traitVid with concrete
	// type arguments, or nil if t does not implement it.
	ConcreteSupertype(t Type, traitVid vid.Vid) Type
}

// GenericMap maps generic names to the types they were unified with.
type GenericMap map[string]Type

// Set binds name unless it is already bound. The first binding wins and
// later conflicting ones are dropped without a diagnostic.
func (m GenericMap) Set(name string, t Type) {
	if _, ok := m[name]; ok {
		return
	}
	m[name] = t
}

// Merge adds every binding of o that m does not have yet.
func (m GenericMap) Merge(o GenericMap) {
	for k, v := range o {
		m.Set(k, v)
	}
}

// Without returns a copy of m without name.
func (m GenericMap) Without(name string) GenericMap {
	out := make(GenericMap, len(m))
	for k, v := range m {
		if k != name {
			out[k] = v
		}
	}
	return out
}

// MapOverStructure unifies the generic positions of param with the matching
// parts of arg. When arg and param name different types and r is set, arg is
// first lifted to param's trait through r.
func MapOverStructure(arg, param Type, r Resolver) GenericMap {
	m := GenericMap{}
	mapOver(arg, param, r, m)
	return m
}

func mapOver(arg, param Type, r Resolver, m GenericMap) {
	if arg == nil || param == nil {
		return
	}
	switch p := param.(type) {
	case *Generic:
		switch arg.(type) {
		case *HoleType, *MalleableType:
			return
		}
		m.Set(p.Name, arg)
	case *SelfType:
		switch arg.(type) {
		case *HoleType, *MalleableType, *SelfType:
			return
		}
		m.Set(config.SelfTypeName, arg)
	case *VidType:
		a := liftTo(arg, p.Vid, r)
		if a == nil {
			return
		}
		for i := 0; i < len(p.TypeArgs) && i < len(a.TypeArgs); i++ {
			mapOver(a.TypeArgs[i], p.TypeArgs[i], r, m)
		}
	case *FnType:
		a, ok := arg.(*FnType)
		if !ok {
			return
		}
		for i := 0; i < len(p.Params) && i < len(a.Params); i++ {
			mapOver(a.Params[i], p.Params[i], r, m)
		}
		mapOver(a.Return, p.Return, r, m)
	}
}

func liftTo(arg Type, v vid.Vid, r Resolver) *VidType {
	if a, ok := arg.(*VidType); ok && a.Vid.Equal(v) {
		return a
	}
	if r == nil {
		return nil
	}
	switch arg.(type) {
	case *VidType, *Generic:
		if sup, ok := r.ConcreteSupertype(arg, v).(*VidType); ok && sup.Vid.Equal(v) {
			return sup
		}
	}
	return nil
}

// FnTypeArgMap binds fn's generics positionally to explicit type arguments.
func FnTypeArgMap(fn *FnType, typeArgs []Type) GenericMap {
	m := GenericMap{}
	for i, g := range fn.Generics {
		if i >= len(typeArgs) {
			break
		}
		m.Set(g.Name, typeArgs[i])
	}
	return m
}

// FnArgMap unifies fn's parameter shapes with the argument types of a call.
func FnArgMap(fn *FnType, args []Type, r Resolver) GenericMap {
	m := GenericMap{}
	for i, p := range fn.Params {
		if i >= len(args) {
			break
		}
		mapOver(args[i], p, r, m)
	}
	return m
}
