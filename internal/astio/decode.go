// Package astio decodes the YAML AST files produced by the external AST
// builder into internal/ast nodes.
//
// A file is a mapping with two optional keys:
//
//	use:
//	  - std::io::println
//	  - pub shapes::{Circle, Square}
//	statements:
//	  - fn: main
//	    body:
//	      - call: println
//	        args: [{str: hello}]
//
// Every node is a mapping whose first key names its kind, or a scalar for
// identifiers and literals. Node positions are taken from the YAML source.
package astio

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/token"
)

// Decode parses one AST file. file is recorded in the program and in errors.
func Decode(data []byte, file string) (*ast.Program, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "%s", file)
	}
	d := &decoder{file: file}
	prog := &ast.Program{
		File:  file,
		Token: token.Token{Kind: "program", Lexeme: file, Line: 1, Column: 1},
		Block: &ast.Block{Token: token.Token{Kind: "block", Line: 1, Column: 1}},
	}
	if len(doc.Content) == 0 {
		return prog, nil
	}
	root := doc.Content[0]
	if isNull(root) {
		return prog, nil
	}
	m, err := d.mapping(root)
	if err != nil {
		return nil, err
	}
	if err := m.only("use", "statements"); err != nil {
		return nil, err
	}

	if uses := m.get("use"); uses != nil {
		items, err := d.sequence(uses)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			s, err := d.str(item)
			if err != nil {
				return nil, err
			}
			use, err := parseUsePath(s, d.tok(item, "use", s))
			if err != nil {
				return nil, d.wrap(item, err)
			}
			prog.Uses = append(prog.Uses, use)
		}
	}
	if stmts := m.get("statements"); stmts != nil {
		block, err := d.block(stmts)
		if err != nil {
			return nil, err
		}
		prog.Block = block
	}
	return prog, nil
}

// DecodeFile reads and decodes the AST file at path.
func DecodeFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read AST file")
	}
	return Decode(data, path)
}

type decoder struct {
	file string
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return errors.Errorf("%s:%d:%d: "+format, append([]interface{}{d.file, n.Line, n.Column}, args...)...)
}

func (d *decoder) wrap(n *yaml.Node, err error) error {
	return errors.Wrapf(err, "%s:%d:%d", d.file, n.Line, n.Column)
}

func (d *decoder) tok(n *yaml.Node, kind, lexeme string) token.Token {
	t := token.Token{Kind: kind, Lexeme: lexeme}
	if n != nil {
		t.Line, t.Column = n.Line, n.Column
	}
	return t
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// mapNode is a decoded YAML mapping that remembers its key order.
type mapNode struct {
	d      *decoder
	node   *yaml.Node
	keys   []*yaml.Node
	values map[string]*yaml.Node
}

func (d *decoder) mapping(n *yaml.Node) (*mapNode, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping")
	}
	m := &mapNode{d: d, node: n, values: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, d.errorf(k, "mapping keys must be scalars")
		}
		if _, dup := m.values[k.Value]; dup {
			return nil, d.errorf(k, "duplicate key %q", k.Value)
		}
		m.keys = append(m.keys, k)
		m.values[k.Value] = v
	}
	if len(m.keys) == 0 {
		return nil, d.errorf(n, "empty mapping")
	}
	return m, nil
}

// kind is the first key, which names the node kind.
func (m *mapNode) kind() string { return m.keys[0].Value }

// head is the value of the first key.
func (m *mapNode) head() *yaml.Node { return m.values[m.kind()] }

// at is the position of the node: its first key.
func (m *mapNode) at() *yaml.Node { return m.keys[0] }

// get returns the value of key, or nil when it is absent or null.
func (m *mapNode) get(key string) *yaml.Node {
	v := m.values[key]
	if isNull(v) {
		return nil
	}
	return v
}

func (m *mapNode) has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *mapNode) only(allowed ...string) error {
	for _, k := range m.keys {
		ok := false
		for _, a := range allowed {
			if k.Value == a {
				ok = true
				break
			}
		}
		if !ok {
			return m.d.errorf(k, "unexpected key %q in %q node", k.Value, m.kind())
		}
	}
	return nil
}

func (m *mapNode) flag(key string) (bool, error) {
	v := m.get(key)
	if v == nil {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, m.d.errorf(v, "%q must be a boolean", key)
	}
	return b, nil
}

func (d *decoder) sequence(n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list")
	}
	return n.Content, nil
}

func (d *decoder) str(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", d.errorf(n, "expected a string")
	}
	return n.Value, nil
}

func (d *decoder) name(n *yaml.Node) (*ast.Name, error) {
	s, err := d.str(n)
	if err != nil {
		return nil, err
	}
	if s == "" || strings.ContainsAny(s, " :<>|") {
		return nil, d.errorf(n, "invalid name %q", s)
	}
	return &ast.Name{Token: d.tok(n, "name", s), Value: s}, nil
}

func (d *decoder) typeExpr(n *yaml.Node) (ast.TypeExpr, error) {
	s, err := d.str(n)
	if err != nil {
		return nil, err
	}
	t, err := ParseType(s, d.tok(n, "type", s))
	if err != nil {
		return nil, d.wrap(n, err)
	}
	return t, nil
}

func (d *decoder) typeRef(n *yaml.Node) (*ast.TypeRef, error) {
	t, err := d.typeExpr(n)
	if err != nil {
		return nil, err
	}
	ref, ok := t.(*ast.TypeRef)
	if !ok {
		return nil, d.errorf(n, "expected a named type, got %q", n.Value)
	}
	return ref, nil
}

func (d *decoder) typeList(n *yaml.Node) ([]ast.TypeExpr, error) {
	if n == nil {
		return nil, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]ast.TypeExpr, 0, len(items))
	for _, item := range items {
		t, err := d.typeExpr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *decoder) generics(n *yaml.Node) ([]*ast.Generic, error) {
	if n == nil {
		return nil, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Generic, 0, len(items))
	for _, item := range items {
		s, err := d.str(item)
		if err != nil {
			return nil, err
		}
		g, err := parseGeneric(s, d.tok(item, "generic", s))
		if err != nil {
			return nil, d.wrap(item, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// params reads fn and closure parameters. A parameter is either a string
// `name` or `name: Type`, or a mapping {param: <pattern>, type: Type}.
func (d *decoder) params(n *yaml.Node) ([]*ast.Param, error) {
	if n == nil {
		return nil, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Param, 0, len(items))
	for _, item := range items {
		p, err := d.param(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) param(n *yaml.Node) (*ast.Param, error) {
	if n.Kind == yaml.MappingNode {
		m, err := d.mapping(n)
		if err != nil {
			return nil, err
		}
		if m.kind() != "param" {
			return nil, d.errorf(n, "expected a param node, got %q", m.kind())
		}
		if err := m.only("param", "type"); err != nil {
			return nil, err
		}
		pat, err := d.pattern(m.head())
		if err != nil {
			return nil, err
		}
		p := &ast.Param{Token: d.tok(m.at(), "param", pat.TokenLiteral()), Pattern: pat}
		if t := m.get("type"); t != nil {
			if p.Type, err = d.typeExpr(t); err != nil {
				return nil, err
			}
		}
		return p, nil
	}

	s, err := d.str(n)
	if err != nil {
		return nil, err
	}
	namePart, typePart, typed := strings.Cut(s, ":")
	namePart = strings.TrimSpace(namePart)
	at := d.tok(n, "param", namePart)
	var pat ast.Pattern
	if namePart == "_" {
		pat = &ast.HolePattern{Token: d.tok(n, "hole-pattern", "_")}
	} else {
		pat = &ast.Name{Token: d.tok(n, "name", namePart), Value: namePart}
	}
	p := &ast.Param{Token: at, Pattern: pat}
	if typed {
		src := strings.TrimSpace(typePart)
		if p.Type, err = ParseType(src, d.tok(n, "type", src)); err != nil {
			return nil, d.wrap(n, err)
		}
	}
	return p, nil
}

// block reads a list of statements. A null list is an empty block.
func (d *decoder) block(n *yaml.Node) (*ast.Block, error) {
	b := &ast.Block{Token: d.tok(n, "block", "")}
	if isNull(n) {
		return b, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		s, err := d.statement(item)
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, s)
	}
	return b, nil
}

// optBlock reads key as a block when present.
func (d *decoder) optBlock(m *mapNode, key string) (*ast.Block, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return d.block(v)
}

func (d *decoder) statement(n *yaml.Node) (ast.Statement, error) {
	if n.Kind != yaml.MappingNode {
		return d.expr(n)
	}
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	switch m.kind() {
	case "let":
		return d.varDef(m)
	case "fn":
		return d.fnDef(m)
	case "trait":
		return d.traitDef(m)
	case "impl":
		return d.implDef(m)
	case "type":
		return d.typeDef(m)
	case "return":
		if err := m.only("return"); err != nil {
			return nil, err
		}
		rs := &ast.ReturnStmt{Token: d.tok(m.at(), "return", "return")}
		if v := m.get("return"); v != nil {
			if rs.Value, err = d.expr(v); err != nil {
				return nil, err
			}
		}
		return rs, nil
	case "break":
		if err := m.only("break"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Token: d.tok(m.at(), "break", "break")}, nil
	}
	return d.exprMapping(m)
}

func (d *decoder) varDef(m *mapNode) (ast.Statement, error) {
	if err := m.only("let", "pub", "type", "value"); err != nil {
		return nil, err
	}
	pat, err := d.pattern(m.head())
	if err != nil {
		return nil, err
	}
	vd := &ast.VarDef{Token: d.tok(m.at(), "let", "let"), Pattern: pat}
	if vd.Pub, err = m.flag("pub"); err != nil {
		return nil, err
	}
	if t := m.get("type"); t != nil {
		if vd.VarType, err = d.typeExpr(t); err != nil {
			return nil, err
		}
	}
	if v := m.get("value"); v != nil {
		if vd.Value, err = d.expr(v); err != nil {
			return nil, err
		}
	}
	return vd, nil
}

func (d *decoder) fnDef(m *mapNode) (ast.Statement, error) {
	if err := m.only("fn", "pub", "generics", "params", "returns", "body"); err != nil {
		return nil, err
	}
	name, err := d.name(m.head())
	if err != nil {
		return nil, err
	}
	fn := &ast.FnDef{Token: d.tok(m.at(), "fn", "fn"), Name: name}
	if fn.Pub, err = m.flag("pub"); err != nil {
		return nil, err
	}
	if fn.Generics, err = d.generics(m.get("generics")); err != nil {
		return nil, err
	}
	if fn.Params, err = d.params(m.get("params")); err != nil {
		return nil, err
	}
	if r := m.get("returns"); r != nil {
		if fn.ReturnType, err = d.typeExpr(r); err != nil {
			return nil, err
		}
	}
	if fn.Block, err = d.optBlock(m, "body"); err != nil {
		return nil, err
	}
	return fn, nil
}

func (d *decoder) traitDef(m *mapNode) (ast.Statement, error) {
	if err := m.only("trait", "pub", "generics", "body"); err != nil {
		return nil, err
	}
	name, err := d.name(m.head())
	if err != nil {
		return nil, err
	}
	td := &ast.TraitDef{Token: d.tok(m.at(), "trait", "trait"), Name: name}
	if td.Pub, err = m.flag("pub"); err != nil {
		return nil, err
	}
	if td.Generics, err = d.generics(m.get("generics")); err != nil {
		return nil, err
	}
	if td.Block, err = d.block(m.values["body"]); err != nil {
		return nil, err
	}
	return td, nil
}

func (d *decoder) implDef(m *mapNode) (ast.Statement, error) {
	if err := m.only("impl", "for", "generics", "body"); err != nil {
		return nil, err
	}
	id := &ast.ImplDef{Token: d.tok(m.at(), "impl", "impl")}
	var err error
	if id.Identifier, err = d.typeRef(m.head()); err != nil {
		return nil, err
	}
	if f := m.get("for"); f != nil {
		if id.ForType, err = d.typeRef(f); err != nil {
			return nil, err
		}
	}
	if id.Generics, err = d.generics(m.get("generics")); err != nil {
		return nil, err
	}
	if id.Block, err = d.block(m.values["body"]); err != nil {
		return nil, err
	}
	return id, nil
}

// typeDef reads a type with its variants. A variant is a bare name, or a
// single-key mapping from the name to its ordered fields:
//
//	variants:
//	  - None
//	  - Some: {value: T}
func (d *decoder) typeDef(m *mapNode) (ast.Statement, error) {
	if err := m.only("type", "pub", "generics", "variants"); err != nil {
		return nil, err
	}
	name, err := d.name(m.head())
	if err != nil {
		return nil, err
	}
	td := &ast.TypeDef{Token: d.tok(m.at(), "type", "type"), Name: name}
	if td.Pub, err = m.flag("pub"); err != nil {
		return nil, err
	}
	if td.Generics, err = d.generics(m.get("generics")); err != nil {
		return nil, err
	}
	vs := m.get("variants")
	if vs == nil {
		return td, nil
	}
	items, err := d.sequence(vs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		v, err := d.variant(item)
		if err != nil {
			return nil, err
		}
		td.Variants = append(td.Variants, v)
	}
	return td, nil
}

func (d *decoder) variant(n *yaml.Node) (*ast.Variant, error) {
	if n.Kind == yaml.ScalarNode {
		name, err := d.name(n)
		if err != nil {
			return nil, err
		}
		return &ast.Variant{Token: d.tok(n, "variant", name.Value), Name: name}, nil
	}
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	if len(m.keys) != 1 {
		return nil, d.errorf(n, "a variant has exactly one name")
	}
	name, err := d.name(m.at())
	if err != nil {
		return nil, err
	}
	v := &ast.Variant{Token: d.tok(m.at(), "variant", name.Value), Name: name}
	fields := m.head()
	if isNull(fields) {
		return v, nil
	}
	fm, err := d.mapping(fields)
	if err != nil {
		return nil, err
	}
	for _, k := range fm.keys {
		fname, err := d.name(k)
		if err != nil {
			return nil, err
		}
		ft, err := d.typeExpr(fm.values[k.Value])
		if err != nil {
			return nil, err
		}
		v.Fields = append(v.Fields, &ast.FieldDef{Token: d.tok(k, "field", fname.Value), Name: fname, Type: ft})
	}
	return v, nil
}
