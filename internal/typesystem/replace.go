package typesystem

import (
	"github.com/funvibe/noisec/internal/config"
)

// Resolve substitutes generics (and Self) in t with the binding from the first
// map, in list order, that binds the name. Unbound generics are left intact.
func Resolve(t Type, maps ...GenericMap) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case *Generic:
		for _, m := range maps {
			if b, ok := m[typ.Name]; ok {
				return b
			}
		}
		return typ
	case *SelfType:
		for _, m := range maps {
			if b, ok := m[config.SelfTypeName]; ok {
				return b
			}
		}
		return typ
	case *VidType:
		if len(typ.TypeArgs) == 0 {
			return typ
		}
		args := make([]Type, len(typ.TypeArgs))
		for i, a := range typ.TypeArgs {
			args[i] = Resolve(a, maps...)
		}
		return &VidType{Vid: typ.Vid, TypeArgs: args}
	case *FnType:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = Resolve(p, maps...)
		}
		var generics []*Generic
		for _, g := range typ.Generics {
			if !bound(g.Name, maps) {
				generics = append(generics, g)
			}
		}
		return &FnType{Generics: generics, Params: params, Return: Resolve(typ.Return, maps...)}
	default:
		return t
	}
}

func bound(name string, maps []GenericMap) bool {
	for _, m := range maps {
		if _, ok := m[name]; ok {
			return true
		}
	}
	return false
}

// EraseGenerics replaces every generic of t for which keep returns false
// with a hole. A nil keep erases them all.
func EraseGenerics(t Type, keep func(*Generic) bool) Type {
	switch typ := t.(type) {
	case *Generic:
		if keep != nil && keep(typ) {
			return typ
		}
		return Hole
	case *VidType:
		if len(typ.TypeArgs) == 0 {
			return typ
		}
		args := make([]Type, len(typ.TypeArgs))
		for i, a := range typ.TypeArgs {
			args[i] = EraseGenerics(a, keep)
		}
		return &VidType{Vid: typ.Vid, TypeArgs: args}
	case *FnType:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = EraseGenerics(p, keep)
		}
		return &FnType{Params: params, Return: EraseGenerics(typ.Return, keep)}
	default:
		return t
	}
}

// ReplaceSelf substitutes the receiver type for Self.
func ReplaceSelf(t Type, self Type) Type {
	if self == nil {
		return t
	}
	return Resolve(t, GenericMap{config.SelfTypeName: self})
}
