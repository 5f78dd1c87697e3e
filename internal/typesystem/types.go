package typesystem

import (
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/vid"
)

// Type is the interface for all virtual types. The set of implementations is
// closed: VidType, FnType, Generic, SelfType, HoleType, UnknownType, MalleableType.
type Type interface {
	String() string
	typeNode()
}

// VidType is a named type applied to type arguments: std::option::Option<T>.
type VidType struct {
	Vid      vid.Vid
	TypeArgs []Type
}

func (t *VidType) typeNode() {}

func (t *VidType) String() string {
	name := t.Vid.Last()
	if len(t.TypeArgs) == 0 {
		return name
	}
	return name + "<" + joinTypes(t.TypeArgs) + ">"
}

// FnType is the type of a function, method, variant constructor or closure.
type FnType struct {
	Generics []*Generic
	Params   []Type
	Return   Type
}

func (t *FnType) typeNode() {}

func (t *FnType) String() string {
	var sb strings.Builder
	if len(t.Generics) > 0 {
		gs := make([]Type, len(t.Generics))
		for i, g := range t.Generics {
			gs[i] = g
		}
		sb.WriteString("<" + joinTypes(gs) + ">")
	}
	sb.WriteString("|" + joinTypes(t.Params) + "|: ")
	if t.Return == nil {
		sb.WriteString("?")
	} else {
		sb.WriteString(t.Return.String())
	}
	return sb.String()
}

// Generic is a type parameter with trait bounds.
type Generic struct {
	Name   string
	Bounds []Type
}

func (t *Generic) typeNode()      {}
func (t *Generic) String() string { return t.Name }

// SelfType is the implicit receiver type inside a trait or impl.
type SelfType struct{}

func (t *SelfType) typeNode()      {}
func (t *SelfType) String() string { return config.SelfTypeName }

// HoleType is a deliberately erased type: `_`.
type HoleType struct{}

func (t *HoleType) typeNode()      {}
func (t *HoleType) String() string { return "_" }

// UnknownType marks a type that could not be determined. It may carry the
// branch types that failed to combine, for the diagnostic reported later.
type UnknownType struct {
	MismatchedBranches     *BranchMismatch
	MismatchedMatchClauses []Type
}

// BranchMismatch holds the types of the branches of an if expression.
// Else is nil when the if has no else branch.
type BranchMismatch struct {
	Then Type
	Else Type
}

func (t *UnknownType) typeNode()      {}
func (t *UnknownType) String() string { return "?" }

// MalleableType stands for a closure whose parameter types are fixed by its
// first call site.
type MalleableType struct {
	Closure *ast.ClosureExpr
}

func (t *MalleableType) typeNode()      {}
func (t *MalleableType) String() string { return "|?|: ?" }

var (
	Self = &SelfType{}
	Hole = &HoleType{}
)

// Unknown returns a fresh unknown type without payload.
func Unknown() *UnknownType { return &UnknownType{} }

func IsUnknown(t Type) bool {
	_, ok := t.(*UnknownType)
	return t == nil || ok
}

func IsHole(t Type) bool {
	_, ok := t.(*HoleType)
	return ok
}

// IsVid reports whether t is a VidType named v.
func IsVid(t Type, v vid.Vid) bool {
	vt, ok := t.(*VidType)
	return ok && vt.Vid.Equal(v)
}

// NewVidType builds a VidType from a vid string and arguments.
func NewVidType(s string, args ...Type) *VidType {
	return &VidType{Vid: vid.FromString(s), TypeArgs: args}
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Equal is structural type equality.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *VidType:
		bt, ok := b.(*VidType)
		if !ok || !at.Vid.Equal(bt.Vid) || len(at.TypeArgs) != len(bt.TypeArgs) {
			return false
		}
		for i := range at.TypeArgs {
			if !Equal(at.TypeArgs[i], bt.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *FnType:
		bt, ok := b.(*FnType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case *Generic:
		bt, ok := b.(*Generic)
		return ok && at.Name == bt.Name
	case *SelfType:
		_, ok := b.(*SelfType)
		return ok
	case *HoleType:
		_, ok := b.(*HoleType)
		return ok
	case *UnknownType:
		_, ok := b.(*UnknownType)
		return ok || b == nil
	case *MalleableType:
		bt, ok := b.(*MalleableType)
		return ok && at.Closure == bt.Closure
	case nil:
		return b == nil
	}
	return false
}

// Generics lists the names of generics a type mentions, in first-use order.
func Generics(t Type) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch tt := t.(type) {
		case *VidType:
			for _, a := range tt.TypeArgs {
				walk(a)
			}
		case *FnType:
			for _, p := range tt.Params {
				walk(p)
			}
			walk(tt.Return)
		case *Generic:
			if !seen[tt.Name] {
				seen[tt.Name] = true
				names = append(names, tt.Name)
			}
		}
	}
	walk(t)
	return names
}
