package typesystem

import (
	"testing"

	"github.com/funvibe/noisec/internal/vid"
)

var (
	intT    = NewVidType("std::int::Int")
	boolT   = NewVidType("std::bool::Bool")
	stringT = NewVidType("std::string::String")
)

func option(t Type) *VidType { return NewVidType("std::option::Option", t) }
func list(t Type) *VidType   { return NewVidType("std::list::List", t) }

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{intT, "Int"},
		{option(&Generic{Name: "T"}), "Option<T>"},
		{&FnType{Params: []Type{intT, boolT}, Return: stringT}, "|Int, Bool|: String"},
		{&FnType{Generics: []*Generic{{Name: "T"}}, Params: []Type{&Generic{Name: "T"}}, Return: list(&Generic{Name: "T"})}, "<T>|T|: List<T>"},
		{&FnType{Params: []Type{nil}}, "|?|: ?"},
		{Self, "Self"},
		{Hole, "_"},
		{Unknown(), "?"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same vid", intT, NewVidType("std::int::Int"), true},
		{"different vid", intT, boolT, false},
		{"same args", option(intT), option(intT), true},
		{"different args", option(intT), option(boolT), false},
		{"generic names", &Generic{Name: "T"}, &Generic{Name: "T"}, true},
		{"generic vs vid", &Generic{Name: "T"}, intT, false},
		{"fn", &FnType{Params: []Type{intT}, Return: boolT}, &FnType{Params: []Type{intT}, Return: boolT}, true},
		{"fn arity", &FnType{Params: []Type{intT}, Return: boolT}, &FnType{Return: boolT}, false},
		{"self", Self, &SelfType{}, true},
		{"hole", Hole, &HoleType{}, true},
		{"unknown and nil", Unknown(), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsUnknown(nil) || !IsUnknown(Unknown()) || IsUnknown(intT) {
		t.Error("IsUnknown")
	}
	if !IsHole(Hole) || IsHole(intT) {
		t.Error("IsHole")
	}
	if !IsVid(intT, vid.FromString("std::int::Int")) || IsVid(intT, vid.FromString("std::bool::Bool")) || IsVid(Hole, vid.FromString("std::int::Int")) {
		t.Error("IsVid")
	}
}

func TestGenerics(t *testing.T) {
	T, U := &Generic{Name: "T"}, &Generic{Name: "U"}
	fn := &FnType{Params: []Type{U, option(T)}, Return: list(U)}
	got := Generics(fn)
	if len(got) != 2 || got[0] != "U" || got[1] != "T" {
		t.Errorf("Generics = %v, want [U T]", got)
	}
	if len(Generics(intT)) != 0 {
		t.Error("Int has no generics")
	}
}
