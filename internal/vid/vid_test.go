package vid

import "testing"

func TestFromPath(t *testing.T) {
	tests := []struct {
		path, pkg, want string
	}{
		{"main.ast.yaml", "app", "app::main"},
		{"geo/point.ast.yaml", "app", "app::geo::point"},
		{"geo/index.ast.yaml", "app", "app::geo"},
		{"index.ast.yaml", "app", "app"},
		{"./a/b.ast.yaml", "app", "app::a::b"},
		{"option.ast.yaml", "std", "std::option"},
		{"x.ast.yaml", "", "x"},
	}
	for _, tt := range tests {
		if got := FromPath(tt.path, tt.pkg).String(); got != tt.want {
			t.Errorf("FromPath(%q, %q) = %s, want %s", tt.path, tt.pkg, got, tt.want)
		}
	}
}

func TestOperations(t *testing.T) {
	v := FromString("std::option::Option")
	if v.Len() != 3 || v.First() != "std" || v.Last() != "Option" || v.At(1) != "option" {
		t.Errorf("unexpected components of %s", v)
	}
	if got := v.Scope().String(); got != "std::option" {
		t.Errorf("Scope = %s", got)
	}
	if got := v.Drop(2).String(); got != "std" {
		t.Errorf("Drop(2) = %s", got)
	}
	if !v.Drop(3).IsZero() || !v.Tail(5).IsZero() {
		t.Error("dropping everything should give the zero vid")
	}
	if got := v.Tail(1).String(); got != "option::Option" {
		t.Errorf("Tail(1) = %s", got)
	}
	if got := v.Append("Some").String(); got != "std::option::Option::Some" {
		t.Errorf("Append = %s", got)
	}
	if got := New("app").Concat(FromString("geo::point")).String(); got != "app::geo::point" {
		t.Errorf("Concat = %s", got)
	}
	if !v.HasPrefix(FromString("std::option")) || v.HasPrefix(FromString("std::list")) || FromString("std").HasPrefix(v) {
		t.Error("HasPrefix")
	}
	if !v.Equal(New("std", "option", "Option")) || v.Equal(v.Scope()) {
		t.Error("Equal")
	}
	if !FromString("").IsZero() || FromString("").First() != "" || FromString("").Last() != "" {
		t.Error("zero vid")
	}
}

func TestImmutable(t *testing.T) {
	names := []string{"a", "b"}
	v := New(names...)
	names[0] = "z"
	if v.First() != "a" {
		t.Error("New must copy its input")
	}
	out := v.Names()
	out[1] = "z"
	if v.Last() != "b" {
		t.Error("Names must return a copy")
	}
	base := v.Drop(1)
	_ = base.Append("x")
	_ = base.Append("y")
	if v.String() != "a::b" {
		t.Errorf("Append changed the receiver: %s", v)
	}
}
