package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

func TestValidPrograms(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "hello",
			input: `
statements:
  - fn: main
    body:
      - {call: println, args: [{str: hello}]}
`,
		},
		{
			name: "arithmetic and comparison",
			input: `
statements:
  - fn: main
    body:
      - let: x
        value: {op: "+", left: 1, right: {op: "*", left: 2, right: 3}}
      - {if: {op: "<", left: x, right: 10}, then: [{call: println, args: [x]}]}
`,
		},
		{
			name: "top level constant",
			input: `
statements:
  - let: limit
    type: Int
    value: 3
  - fn: main
    body:
      - {call: println, args: [limit]}
`,
		},
		{
			name: "generic identity",
			input: `
statements:
  - fn: id
    generics: [T]
    params: ["x: T"]
    returns: T
    body: [x]
  - fn: main
    body:
      - let: a
        type: Int
        value: {call: id, args: [1]}
      - let: b
        type: String
        value: {call: id, args: [{str: b}]}
`,
		},
		{
			name: "trait and impl",
			input: `
statements:
  - trait: Area
    body:
      - fn: area
        params: [self]
        returns: Float
  - type: Shape
    variants:
      - Circle: {radius: Float}
      - Square: {side: Float}
  - impl: Area
    for: Shape
    body:
      - fn: area
        params: [self]
        returns: Float
        body:
          - match: self
            clauses:
              - case: {con: Circle, fields: {radius: r}}
                body: [{op: "*", left: 3.14, right: {op: "*", left: r, right: r}}]
              - case: {con: Square, fields: {side: s}}
                body: [{op: "*", left: s, right: s}]
  - fn: main
    body:
      - let: c
        value: {call: Circle, args: [2.0]}
      - {call: println, args: [{method: area, on: c}]}
`,
		},
		{
			name: "named constructor arguments",
			input: `
statements:
  - type: Point
    variants:
      - Point: {x: Int, y: Int}
  - fn: main
    body:
      - let: p
        value: {call: Point, named: {x: 1, y: 2}}
      - {call: println, args: [{field: x, on: p}]}
`,
		},
		{
			name: "for over list",
			input: `
statements:
  - fn: sum
    params: ["xs: List<Int>"]
    returns: Int
    body:
      - let: total
        value: 0
      - for: x
        in: xs
        body:
          - {assign: total, value: {op: "+", left: total, right: x}}
      - total
  - fn: main
    body:
      - {call: println, args: [{call: sum, args: [{list: [1, 2, 3]}]}]}
`,
		},
		{
			name: "while with break",
			input: `
statements:
  - fn: main
    body:
      - let: i
        value: 0
      - while: true
        body:
          - {if: {op: ">", left: i, right: 3}, then: [{break: null}]}
          - {assign: i, value: {op: "+", left: i, right: 1}}
`,
		},
		{
			name: "closure typed by call site",
			input: `
statements:
  - fn: apply
    params: ["f: |Int|: Int", "x: Int"]
    returns: Int
    body: [{call: f, args: [x]}]
  - fn: main
    body:
      - let: inc
        value: {closure: [n], body: [{op: "+", left: n, right: 1}]}
      - {call: println, args: [{call: apply, args: [inc, 41]}]}
`,
		},
		{
			name: "exhaustive option match",
			input: `
statements:
  - fn: get
    params: ["o: Option<Int>"]
    returns: Int
    body:
      - match: o
        clauses:
          - case: {con: Some, fields: {value: v}}
            body: [v]
          - case: None
            body: [0]
`,
		},
		{
			name: "bind operator",
			input: `
statements:
  - fn: plus_one
    params: ["o: Option<Int>"]
    returns: Option<Int>
    body:
      - let: v
        value: {bind: o}
      - {call: Some, args: [{op: "+", left: v, right: 1}]}
`,
		},
		{
			name: "if let",
			input: `
statements:
  - fn: show
    params: ["o: Option<String>"]
    body:
      - if_let: {con: Some, fields: {value: s}}
        value: o
        then: [{call: println, args: [s]}]
        else: [{call: println, args: [{str: none}]}]
`,
		},
		{
			name: "string interpolation",
			input: `
statements:
  - fn: main
    body:
      - let: n
        value: 3
      - {call: println, args: [{interp: [{str: "n = "}, n]}]}
`,
		},
		{
			name: "trait default method",
			input: `
statements:
  - trait: Named
    body:
      - fn: name
        params: [self]
        returns: String
      - fn: greeting
        params: [self]
        returns: String
        body: [{op: "+", left: {str: "hello "}, right: {method: name, on: self}}]
  - type: Cat
    variants: [Cat]
  - impl: Named
    for: Cat
    body:
      - fn: name
        params: [self]
        returns: String
        body: [{str: cat}]
  - fn: greet
    params: ["c: Cat"]
    returns: String
    body: [{method: greeting, on: c}]
`,
		},
		{
			name: "generic bound",
			input: `
statements:
  - fn: describe
    generics: ["T: Show"]
    params: ["x: T"]
    returns: String
    body: [{method: show, on: x}]
  - fn: main
    body:
      - {call: println, args: [{call: describe, args: [1]}]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoAnalyzerErrors(t, tt.input)
		})
	}
}

func fnBody(t *testing.T, p *ast.Program, name string) []ast.Statement {
	t.Helper()
	for _, s := range p.Block.Statements {
		if fn, ok := s.(*ast.FnDef); ok && fn.Name.Value == name {
			return fn.Block.Statements
		}
	}
	t.Fatalf("fn %s not found", name)
	return nil
}

func TestInferredTypes(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - fn: main
    body:
      - let: a
        value: {op: "+", left: 1, right: 2}
      - let: b
        value: {op: "==", left: a, right: 3}
      - let: c
        value: {list: [{str: x}]}
      - let: d
        value: {call: Some, args: [1.5]}
`)
	body := fnBody(t, findModule(t, ctx, "app::main").Program, "main")

	want := []string{"Int", "Bool", "List<String>", "Option<Float>"}
	for i, w := range want {
		vd := body[i].(*ast.VarDef)
		got := ctx.Info.Types[vd.Value]
		if got == nil {
			t.Fatalf("statement %d: no type recorded", i)
		}
		if got.String() != w {
			t.Errorf("statement %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestOperatorImplRecorded(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - fn: main
    body:
      - {op: "+", left: 1, right: 2}
`)
	body := fnBody(t, findModule(t, ctx, "app::main").Program, "main")
	rel := ctx.Info.Impls[body[0]]
	if rel == nil {
		t.Fatal("expected an impl for `+`")
	}
	if got := rel.ImplVid.String(); got != "std::op::Add" {
		t.Errorf("expected std::op::Add, got %s", got)
	}
}

func TestMalleableClosureRetyped(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - fn: apply
    params: ["f: |Int|: Int"]
    returns: Int
    body: [{call: f, args: [1]}]
  - fn: main
    body:
      - let: f
        value: {closure: [n], body: [n]}
      - {call: apply, args: [f]}
`)
	body := fnBody(t, findModule(t, ctx, "app::main").Program, "main")
	ft, ok := ctx.Info.Types[body[0].(*ast.VarDef).Value].(*typesystem.FnType)
	if !ok {
		t.Fatalf("expected a fn type, got %v", ctx.Info.Types[body[0].(*ast.VarDef).Value])
	}
	if len(ft.Params) != 1 || ft.Params[0].String() != "Int" {
		t.Errorf("expected closure retyped to take Int, got %s", ft)
	}
}

func TestModuleCycle(t *testing.T) {
	ctx := analyzePackage(t, map[string]string{
		"a.ast.yaml": `
use: [app::b::g]
statements:
  - fn: f
    pub: true
    body: []
`,
		"b.ast.yaml": `
use: [app::a::f]
statements:
  - fn: g
    pub: true
    body: []
`,
	})
	var cycles []*diagnostics.DiagnosticError
	for _, e := range ctx.Errors {
		if e.Code == diagnostics.ErrA006 {
			cycles = append(cycles, e)
		}
	}
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one error %s, got:\n%s", diagnostics.ErrA006, messages(ctx.Errors))
	}
	cycle := cycles[0]
	if !strings.Contains(cycle.Message, "app::a") || !strings.Contains(cycle.Message, "app::b") {
		t.Errorf("cycle message should name both modules: %s", cycle.Message)
	}
}

func TestCrossModuleAccess(t *testing.T) {
	t.Run("private fn", func(t *testing.T) {
		ctx := analyzePackage(t, map[string]string{
			"lib.ast.yaml": `
statements:
  - fn: helper
    body: []
`,
			"main.ast.yaml": `
use: [app::lib::helper]
statements:
  - fn: main
    body:
      - {call: helper}
`,
		})
		for _, e := range ctx.Errors {
			if e.Code == diagnostics.ErrA010 && strings.Contains(e.Message, "app::lib::helper") {
				return
			}
		}
		t.Fatalf("expected error %s, got:\n%s", diagnostics.ErrA010, messages(ctx.Errors))
	})

	t.Run("pub fn", func(t *testing.T) {
		ctx := analyzePackage(t, map[string]string{
			"lib.ast.yaml": `
statements:
  - fn: helper
    pub: true
    returns: Int
    body: [1]
`,
			"main.ast.yaml": `
use: [app::lib::helper]
statements:
  - fn: main
    body:
      - {call: println, args: [{call: helper}]}
`,
		})
		if len(ctx.Errors) > 0 {
			t.Fatalf("expected no errors, got:\n%s", messages(ctx.Errors))
		}
	})

	t.Run("re-export", func(t *testing.T) {
		ctx := analyzePackage(t, map[string]string{
			"inner.ast.yaml": `
statements:
  - fn: helper
    pub: true
    body: []
`,
			"outer.ast.yaml": `
use: ["pub app::inner::helper"]
statements: []
`,
			"main.ast.yaml": `
use: [app::outer::helper]
statements:
  - fn: main
    body:
      - {call: helper}
`,
		})
		if len(ctx.Errors) > 0 {
			t.Fatalf("expected no errors, got:\n%s", messages(ctx.Errors))
		}
	})
}

func TestStdChecksClean(t *testing.T) {
	ctx := analyzePackage(t, map[string]string{})
	if len(ctx.Errors) > 0 {
		t.Fatalf("std produced errors:\n%s", messages(ctx.Errors))
	}
	if len(ctx.Warnings) > 0 {
		t.Fatalf("std produced warnings:\n%s", messages(ctx.Warnings))
	}
}

const supertraitProgram = `
statements:
  - trait: Named
    body:
      - fn: name
        params: [self]
        returns: String
  - trait: Greet
    body:
      - fn: greet
        params: [self]
        returns: String
        body: [{str: hello}]
  - impl: Named
    for: Greet
    body:
      - fn: name
        params: [self]
        returns: String
        body: [{str: someone}]
  - type: Dog
    variants: [Dog]
  - type: Cat
    variants: [Cat]
  - impl: Greet
    for: Dog
    body:
      - fn: name
        params: [self]
        returns: String
        body: [{str: dog}]
  - impl: Greet
    for: Cat
  - fn: main
    body:
      - let: d
        value: {call: Dog}
      - {call: println, args: [{method: name, on: d}]}
      - {call: println, args: [{method: greet, on: d}]}
`

func implFor(t *testing.T, ctx *Context, trait, forType string) *symbols.InstanceRelation {
	t.Helper()
	for _, rel := range ctx.Info.Relations {
		if rel.IsTraitDef() || rel.ForType == nil {
			continue
		}
		if rel.ImplVid.Last() == trait && rel.ForType.String() == forType {
			return rel
		}
	}
	t.Fatalf("impl %s for %s not found", trait, forType)
	return nil
}

func TestSupertraitImpl(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, supertraitProgram)

	tests := []struct {
		forType string
		methods []string
	}{
		// name is overridden by the impl itself
		{forType: "Dog", methods: []string{"greet"}},
		// name comes from `impl Named for Greet`
		{forType: "Cat", methods: []string{"greet", "name"}},
	}
	for _, tt := range tests {
		t.Run(tt.forType, func(t *testing.T) {
			rel := implFor(t, ctx, "Greet", tt.forType)
			var got []string
			for _, md := range rel.SuperMethods {
				got = append(got, md.Fn.Name.Value)
			}
			if strings.Join(got, ",") != strings.Join(tt.methods, ",") {
				t.Errorf("expected super methods %v, got %v", tt.methods, got)
			}
		})
	}
}

func TestSuperMethodUpcasts(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, supertraitProgram)
	rel := implFor(t, ctx, "Greet", "Cat")

	var name *symbols.MethodDef
	for _, md := range rel.SuperMethods {
		if md.Fn.Name.Value == "name" {
			name = md
		}
	}
	if name == nil {
		t.Fatal("expected `name` among the inherited methods")
	}
	if name.Rel.IsTraitDef() || name.Rel.ImplVid.Last() != "Named" {
		t.Errorf("expected `name` declared by impl Named for Greet, got %s", name.Rel)
	}
	if len(name.ParamUpcasts) != 1 || name.ParamUpcasts[0] == nil {
		t.Fatalf("expected an upcast for the receiver, got %v", name.ParamUpcasts)
	}
	impl := name.ParamUpcasts[0].Traits["app::main::Greet"]
	if impl != rel {
		t.Errorf("expected receiver upcast through %s, got %v", rel, impl)
	}

	found := false
	for _, r := range findModule(t, ctx, "app::main").RelImports() {
		if r == name.Rel {
			found = true
		}
	}
	if !found {
		t.Error("expected the declaring relation among the module's relation imports")
	}
}

func TestNamedArgumentBinding(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "identifiers named like fields",
			input: `
statements:
  - type: P
    variants:
      - P: {a: Int, b: String}
  - fn: main
    body:
      - let: b
        value: {str: s}
      - let: a
        value: 1
      - let: p
        value: {call: P, args: [b, a]}
`,
		},
		{
			name: "identifiers not named like fields",
			input: `
statements:
  - type: P
    variants:
      - P: {a: Int, b: String}
  - fn: main
    body:
      - let: x
        value: 1
      - let: y
        value: {str: s}
      - let: p
        value: {call: P, args: [x, y]}
`,
		},
		{
			name: "positional with a known name",
			input: `
statements:
  - type: P
    variants:
      - P: {a: Int, b: String}
  - fn: main
    body:
      - let: p
        value: {call: P, args: [1], named: {b: {str: s}}}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoAnalyzerErrors(t, tt.input)
		})
	}
}

func TestShadowing(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - let: x
    type: Int
    value: 1
  - fn: param
    params: ["x: String"]
    returns: String
    body: [x]
  - fn: main
    body:
      - if: true
        then:
          - let: x
            value: {str: inner}
          - let: inner
            value: x
      - let: outer
        value: x
`)
	want := map[string]string{"inner": "String", "outer": "Int"}
	got := map[string]string{}
	ast.Inspect(findModule(t, ctx, "app::main").Program, func(n ast.Node) bool {
		vd, ok := n.(*ast.VarDef)
		if !ok {
			return true
		}
		if name, ok := vd.Pattern.(*ast.Name); ok {
			if _, tracked := want[name.Value]; tracked {
				got[name.Value] = ctx.Info.TypeOf(vd.Value).String()
			}
		}
		return true
	})
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s: expected %s, got %s", name, w, got[name])
		}
	}
}

func TestWildcardClauseIsExhaustive(t *testing.T) {
	tests := []struct {
		name  string
		param string
		cases string
	}{
		{name: "option", param: "Option<Int>", cases: `
          - case: {con: Some, fields: {value: v}}
            body: [v]
          - case: _
            body: [0]`},
		{name: "bool", param: "Bool", cases: `
          - case: true
            body: [1]
          - case: _
            body: [0]`},
		{name: "int", param: "Int", cases: `
          - case: 1
            body: [1]
          - case: _
            body: [0]`},
		{name: "only wildcard", param: "Option<Bool>", cases: `
          - case: _
            body: [0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoAnalyzerErrors(t, `
statements:
  - fn: f
    params: ["o: `+tt.param+`"]
    returns: Int
    body:
      - match: o
        clauses:`+tt.cases+"\n")
		})
	}
}

func TestAssignabilityProperties(t *testing.T) {
	ctx := analyzePackage(t, map[string]string{})
	w := &walker{Context: ctx}

	intT := stdType(config.IntTypeVid)
	types := []typesystem.Type{
		intT,
		stringType(),
		boolType(),
		unitType(),
		neverType(),
		stdType(config.OptionTypeVid, intT),
		stdType(config.ListTypeVid, stringType()),
		&typesystem.FnType{Params: []typesystem.Type{intT}, Return: boolType()},
	}

	for _, a := range types {
		if !w.isAssignable(a, a) {
			t.Errorf("%s should be assignable to itself", a)
		}
		for _, b := range types {
			ab, okAB := w.combine(a, b)
			ba, okBA := w.combine(b, a)
			if okAB != okBA {
				t.Errorf("combine(%s, %s) = %v but combine(%s, %s) = %v", a, b, okAB, b, a, okBA)
				continue
			}
			if okAB && !typesystem.Equal(ab, ba) {
				t.Errorf("combine(%s, %s) = %s but combine(%s, %s) = %s", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestGenericCallsResolve(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - fn: id
    generics: [T]
    params: ["x: T"]
    returns: T
    body: [x]
  - fn: wrap
    generics: [T]
    params: ["x: T"]
    returns: List<T>
    body: [{list: [x]}]
  - fn: main
    body:
      - let: a
        value: {call: id, args: [1]}
      - let: b
        value: {call: wrap, args: [{str: s}]}
      - let: c
        value: {call: Some, args: [true]}
      - let: d
        value: {call: id, args: [{call: wrap, args: [2.5]}]}
`)
	body := fnBody(t, findModule(t, ctx, "app::main").Program, "main")

	want := []string{"Int", "List<String>", "Option<Bool>", "List<Float>"}
	for i, w := range want {
		got := ctx.Info.TypeOf(body[i].(*ast.VarDef).Value)
		if got.String() != w {
			t.Errorf("statement %d: expected %s, got %s", i, w, got)
		}
		if gs := typesystem.Generics(got); len(gs) > 0 {
			t.Errorf("statement %d: unresolved generics %v in %s", i, gs, got)
		}
	}
}

func TestConcreteSupertypeDiamond(t *testing.T) {
	ctx := expectNoAnalyzerErrors(t, `
statements:
  - trait: Base
    generics: [T]
    body: []
  - trait: Left
    body: []
  - trait: Right
    body: []
  - impl: Base<Int>
    for: Left
  - impl: Base<Int>
    for: Right
  - type: Dog
    variants: [Dog]
  - impl: Left
    for: Dog
  - impl: Right
    for: Dog
`)
	w := &walker{Context: ctx}
	dog := &typesystem.VidType{Vid: vid.FromString("app::main::Dog")}
	sup := w.ConcreteSupertype(dog, vid.FromString("app::main::Base"))
	if sup == nil || sup.String() != "Base<Int>" {
		t.Errorf("expected Dog viewed as Base<Int>, got %v", sup)
	}
	if sup := w.ConcreteSupertype(dog, vid.FromString("app::main::Missing")); sup != nil {
		t.Errorf("expected no supertype, got %s", sup)
	}
}
