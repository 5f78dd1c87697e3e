package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/noisec/internal/analyzer"
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/vid"
)

// dumpEntry is one top-level definition of a dumped module.
type dumpEntry struct {
	Name string
	Kind string
	Type string
	At   string
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpModule prints the checked types of the top-level definitions of the
// module named moduleVid.
func dumpModule(w io.Writer, ac *analyzer.Context, moduleVid string) error {
	if ac == nil {
		return fmt.Errorf("nothing was analyzed")
	}
	v := vid.FromString(moduleVid)
	var m *symbols.Module
	for _, p := range ac.Packages {
		if m = p.FindModule(v); m != nil {
			break
		}
	}
	if m == nil {
		return fmt.Errorf("module %s not found", moduleVid)
	}
	dumpConfig.Fdump(w, moduleEntries(ac.Info, m))
	return nil
}

func moduleEntries(info *analyzer.Info, m *symbols.Module) []dumpEntry {
	var out []dumpEntry
	if m.Program == nil || m.Program.Block == nil {
		return out
	}
	for _, stmt := range m.Program.Block.Statements {
		switch s := stmt.(type) {
		case *ast.FnDef:
			out = append(out, dumpEntry{Name: s.Name.Value, Kind: "fn", Type: typeString(info, s), At: s.Token.String()})
		case *ast.VarDef:
			for _, name := range boundNames(s.Pattern) {
				out = append(out, dumpEntry{Name: name.Value, Kind: "let", Type: info.TypeOf(name).String(), At: name.Token.String()})
			}
		case *ast.TypeDef:
			for _, v := range s.Variants {
				t := "?"
				if sig, ok := info.Constructors[v]; ok {
					t = sig.String()
				}
				out = append(out, dumpEntry{Name: s.Name.Value + "::" + v.Name.Value, Kind: "variant", Type: t, At: v.Token.String()})
			}
		case *ast.TraitDef, *ast.ImplDef:
			inst := s.(ast.Instance)
			rel := info.Relations[inst]
			kind := "impl"
			if _, ok := s.(*ast.TraitDef); ok {
				kind = "trait"
			}
			name := inst.InstanceName()
			if rel != nil {
				name = rel.String()
			}
			out = append(out, dumpEntry{Name: name, Kind: kind, At: s.GetToken().String()})
			if block := inst.InstanceBlock(); block != nil {
				for _, ms := range block.Statements {
					if fn, ok := ms.(*ast.FnDef); ok {
						out = append(out, dumpEntry{Name: name + "::" + fn.Name.Value, Kind: "method", Type: typeString(info, fn), At: fn.Token.String()})
					}
				}
			}
		}
	}
	return out
}

func typeString(info *analyzer.Info, fn *ast.FnDef) string {
	if sig, ok := info.Signatures[fn]; ok {
		return sig.String()
	}
	return "?"
}

func boundNames(p ast.Pattern) []*ast.Name {
	switch pt := p.(type) {
	case *ast.Name:
		return []*ast.Name{pt}
	case *ast.ConPattern:
		var names []*ast.Name
		for _, f := range pt.Fields {
			if f.Pattern == nil {
				names = append(names, f.Name)
			} else {
				names = append(names, boundNames(f.Pattern)...)
			}
		}
		return names
	}
	return nil
}
