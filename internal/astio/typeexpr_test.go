package astio

import (
	"testing"

	"github.com/funvibe/noisec/internal/token"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Int", "Int"},
		{"Option<T>", "Option<T>"},
		{"std::list::List<Int>", "std::list::List<Int>"},
		{"Map< String , List<Int> >", "Map<String, List<Int>>"},
		{"|Int, Int|: Bool", "|Int, Int|: Bool"},
		{"||", "||: Unit"},
		{"|T|: Option<T>", "|T|: Option<T>"},
		{"_", "_"},
		{"_Private", "_Private"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input, token.Token{Line: 1, Column: 1})
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, input := range []string{"", "Option<", "Option<Int", "Int>", "|Int", "a::", "Int Int"} {
		if _, err := ParseType(input, token.Token{}); err == nil {
			t.Errorf("ParseType(%q): expected an error", input)
		}
	}
}

func TestParseGeneric(t *testing.T) {
	g, err := parseGeneric("T: Show + std::op::Eq<T>", token.Token{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Name.Value != "T" {
		t.Errorf("expected name T, got %s", g.Name.Value)
	}
	if len(g.Bounds) != 2 || g.Bounds[0].String() != "Show" || g.Bounds[1].String() != "std::op::Eq<T>" {
		t.Errorf("unexpected bounds %v", g.Bounds)
	}
}

func TestParseUsePath(t *testing.T) {
	use, err := parseUsePath("pub shapes::{circle::Circle, Square}", token.Token{})
	if err != nil {
		t.Fatal(err)
	}
	if !use.Pub {
		t.Error("expected a pub use")
	}
	leaves := use.Flatten()
	want := []string{"shapes::circle::Circle", "shapes::Square"}
	if len(leaves) != len(want) {
		t.Fatalf("expected %d leaves, got %d", len(want), len(leaves))
	}
	for i, l := range leaves {
		got := ""
		for j, n := range l.Names {
			if j > 0 {
				got += "::"
			}
			got += n
		}
		if got != want[i] {
			t.Errorf("leaf %d: expected %s, got %s", i, want[i], got)
		}
		if !l.Pub {
			t.Errorf("leaf %d should inherit pub", i)
		}
	}
}
