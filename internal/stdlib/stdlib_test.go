package stdlib

import (
	"io/fs"
	"testing"
)

func TestModules(t *testing.T) {
	names := Modules()
	want := map[string]bool{
		"op": true, "string": true, "int": true, "float": true, "bool": true, "char": true,
		"unit": true, "never": true, "option": true, "list": true, "iter": true,
		"io": true, "panic": true, "unwrap": true,
	}
	for _, n := range names {
		delete(want, n)
	}
	if len(want) > 0 {
		t.Errorf("missing std modules: %v (got %v)", want, names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("modules not sorted: %v", names)
		}
	}
}

func TestFS(t *testing.T) {
	data, err := fs.ReadFile(FS(), "option.ast.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("option.ast.yaml is empty")
	}
}
