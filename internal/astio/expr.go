package astio

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/noisec/internal/ast"
)

func (d *decoder) expr(n *yaml.Node) (ast.Expression, error) {
	if n.Kind == yaml.ScalarNode {
		return d.scalarExpr(n)
	}
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	return d.exprMapping(m)
}

func (d *decoder) exprList(n *yaml.Node) ([]ast.Expression, error) {
	if n == nil {
		return nil, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Expression, 0, len(items))
	for _, item := range items {
		e, err := d.expr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// scalarExpr reads literals by their YAML tag. Plain strings are
// identifiers; string literals need the {str: ...} form.
func (d *decoder) scalarExpr(n *yaml.Node) (ast.Expression, error) {
	switch n.Tag {
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return nil, d.errorf(n, "invalid integer %q", n.Value)
		}
		return &ast.IntLiteral{Token: d.tok(n, "int", n.Value), Value: v}, nil
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return nil, d.errorf(n, "invalid float %q", n.Value)
		}
		return &ast.FloatLiteral{Token: d.tok(n, "float", n.Value), Value: v}, nil
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return nil, d.errorf(n, "invalid boolean %q", n.Value)
		}
		return &ast.BoolLiteral{Token: d.tok(n, "bool", n.Value), Value: v}, nil
	case "!!null":
		return nil, d.errorf(n, "expected an expression")
	}
	id, err := parseIdentifier(n.Value, d.tok(n, "identifier", n.Value))
	if err != nil {
		return nil, d.wrap(n, err)
	}
	return id, nil
}

func (d *decoder) exprMapping(m *mapNode) (ast.Expression, error) {
	switch m.kind() {
	case "str":
		return d.stringLiteral(m)
	case "char":
		return d.charLiteral(m)
	case "ident":
		return d.identExpr(m)
	case "interp":
		return d.interpolation(m)
	case "list":
		return d.listExpr(m)
	case "if":
		return d.ifExpr(m)
	case "if_let":
		return d.ifLetExpr(m)
	case "while":
		return d.whileExpr(m)
	case "for":
		return d.forExpr(m)
	case "match":
		return d.matchExpr(m)
	case "closure":
		return d.closureExpr(m)
	case "op":
		return d.opExpr(m)
	case "assign":
		return d.assignExpr(m)
	case "call":
		return d.callExpr(m)
	case "method":
		return d.methodCallExpr(m)
	case "field":
		return d.fieldAccessExpr(m)
	case "unwrap":
		return d.unaryForm(m, func(e ast.Expression) ast.Expression {
			return &ast.UnwrapExpr{Token: d.tok(m.at(), "unwrap", "!"), Operand: e}
		})
	case "bind":
		return d.unaryForm(m, func(e ast.Expression) ast.Expression {
			return &ast.BindExpr{Token: d.tok(m.at(), "bind", "?"), Operand: e}
		})
	}
	return nil, d.errorf(m.at(), "unknown node kind %q", m.kind())
}

func (d *decoder) stringLiteral(m *mapNode) (ast.Expression, error) {
	if err := m.only("str"); err != nil {
		return nil, err
	}
	v := m.head()
	if v.Kind != yaml.ScalarNode {
		return nil, d.errorf(v, "string literal must be a scalar")
	}
	return &ast.StringLiteral{Token: d.tok(m.at(), "string", strconv.Quote(v.Value)), Value: v.Value}, nil
}

func (d *decoder) charLiteral(m *mapNode) (ast.Expression, error) {
	if err := m.only("char"); err != nil {
		return nil, err
	}
	v := m.head()
	if v.Kind != yaml.ScalarNode || utf8.RuneCountInString(v.Value) != 1 {
		return nil, d.errorf(v, "char literal must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(v.Value)
	return &ast.CharLiteral{Token: d.tok(m.at(), "char", strconv.QuoteRune(r)), Value: v.Value}, nil
}

func (d *decoder) identExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("ident", "type_args"); err != nil {
		return nil, err
	}
	s, err := d.str(m.head())
	if err != nil {
		return nil, err
	}
	id, err := parseIdentifier(s, d.tok(m.at(), "identifier", s))
	if err != nil {
		return nil, d.wrap(m.head(), err)
	}
	extra, err := d.typeList(m.get("type_args"))
	if err != nil {
		return nil, err
	}
	id.TypeArgs = append(id.TypeArgs, extra...)
	return id, nil
}

func (d *decoder) interpolation(m *mapNode) (ast.Expression, error) {
	if err := m.only("interp"); err != nil {
		return nil, err
	}
	parts, err := d.exprList(m.head())
	if err != nil {
		return nil, err
	}
	return &ast.StringInterpolation{Token: d.tok(m.at(), "interp", "\""), Parts: parts}, nil
}

func (d *decoder) listExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("list"); err != nil {
		return nil, err
	}
	items, err := d.exprList(m.get("list"))
	if err != nil {
		return nil, err
	}
	return &ast.ListExpr{Token: d.tok(m.at(), "list", "["), Items: items}, nil
}

func (d *decoder) ifExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("if", "then", "else"); err != nil {
		return nil, err
	}
	cond, err := d.expr(m.head())
	if err != nil {
		return nil, err
	}
	ie := &ast.IfExpr{Token: d.tok(m.at(), "if", "if"), Condition: cond}
	if ie.Then, err = d.block(m.values["then"]); err != nil {
		return nil, err
	}
	if ie.Else, err = d.optBlock(m, "else"); err != nil {
		return nil, err
	}
	return ie, nil
}

func (d *decoder) ifLetExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("if_let", "value", "then", "else"); err != nil {
		return nil, err
	}
	pat, err := d.pattern(m.head())
	if err != nil {
		return nil, err
	}
	v := m.get("value")
	if v == nil {
		return nil, d.errorf(m.at(), "if_let needs a value")
	}
	ie := &ast.IfLetExpr{Token: d.tok(m.at(), "if_let", "if"), Pattern: pat}
	if ie.Value, err = d.expr(v); err != nil {
		return nil, err
	}
	if ie.Then, err = d.block(m.values["then"]); err != nil {
		return nil, err
	}
	if ie.Else, err = d.optBlock(m, "else"); err != nil {
		return nil, err
	}
	return ie, nil
}

func (d *decoder) whileExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("while", "body"); err != nil {
		return nil, err
	}
	cond, err := d.expr(m.head())
	if err != nil {
		return nil, err
	}
	we := &ast.WhileExpr{Token: d.tok(m.at(), "while", "while"), Condition: cond}
	if we.Block, err = d.block(m.values["body"]); err != nil {
		return nil, err
	}
	return we, nil
}

func (d *decoder) forExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("for", "in", "body"); err != nil {
		return nil, err
	}
	pat, err := d.pattern(m.head())
	if err != nil {
		return nil, err
	}
	in := m.get("in")
	if in == nil {
		return nil, d.errorf(m.at(), "for needs an iterable under \"in\"")
	}
	fe := &ast.ForExpr{Token: d.tok(m.at(), "for", "for"), Pattern: pat}
	if fe.Iterable, err = d.expr(in); err != nil {
		return nil, err
	}
	if fe.Block, err = d.block(m.values["body"]); err != nil {
		return nil, err
	}
	return fe, nil
}

// matchExpr reads clauses of the form {case: <pattern or list>, guard, body}.
func (d *decoder) matchExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("match", "clauses"); err != nil {
		return nil, err
	}
	value, err := d.expr(m.head())
	if err != nil {
		return nil, err
	}
	me := &ast.MatchExpr{Token: d.tok(m.at(), "match", "match"), Value: value}
	cs := m.get("clauses")
	if cs == nil {
		return me, nil
	}
	items, err := d.sequence(cs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		cm, err := d.mapping(item)
		if err != nil {
			return nil, err
		}
		if cm.kind() != "case" {
			return nil, d.errorf(item, "expected a case clause, got %q", cm.kind())
		}
		if err := cm.only("case", "guard", "body"); err != nil {
			return nil, err
		}
		clause := &ast.MatchClause{Token: d.tok(cm.at(), "case", "case")}
		pats := cm.head()
		if pats.Kind == yaml.SequenceNode {
			for _, pn := range pats.Content {
				p, err := d.pattern(pn)
				if err != nil {
					return nil, err
				}
				clause.Patterns = append(clause.Patterns, p)
			}
		} else {
			p, err := d.pattern(pats)
			if err != nil {
				return nil, err
			}
			clause.Patterns = []ast.Pattern{p}
		}
		if g := cm.get("guard"); g != nil {
			if clause.Guard, err = d.expr(g); err != nil {
				return nil, err
			}
		}
		if clause.Block, err = d.block(cm.values["body"]); err != nil {
			return nil, err
		}
		me.Clauses = append(me.Clauses, clause)
	}
	return me, nil
}

func (d *decoder) closureExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("closure", "returns", "body"); err != nil {
		return nil, err
	}
	ce := &ast.ClosureExpr{Token: d.tok(m.at(), "closure", "|")}
	var err error
	if ce.Params, err = d.params(m.get("closure")); err != nil {
		return nil, err
	}
	if r := m.get("returns"); r != nil {
		if ce.ReturnType, err = d.typeExpr(r); err != nil {
			return nil, err
		}
	}
	if ce.Block, err = d.block(m.values["body"]); err != nil {
		return nil, err
	}
	return ce, nil
}

// opExpr reads {op: +, left: a, right: b} or {op: "-", operand: a}.
func (d *decoder) opExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("op", "left", "right", "operand"); err != nil {
		return nil, err
	}
	op, err := d.str(m.head())
	if err != nil {
		return nil, err
	}
	if operand := m.get("operand"); operand != nil {
		if m.has("left") || m.has("right") {
			return nil, d.errorf(m.at(), "operator %q has both an operand and left/right sides", op)
		}
		e, err := d.expr(operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: d.tok(m.at(), "unary", op), Op: op, Operand: e}, nil
	}
	left, right := m.get("left"), m.get("right")
	if left == nil || right == nil {
		return nil, d.errorf(m.at(), "binary operator %q needs left and right", op)
	}
	be := &ast.BinaryExpr{Token: d.tok(m.at(), "binary", op), Op: op}
	if be.Left, err = d.expr(left); err != nil {
		return nil, err
	}
	if be.Right, err = d.expr(right); err != nil {
		return nil, err
	}
	return be, nil
}

func (d *decoder) assignExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("assign", "value"); err != nil {
		return nil, err
	}
	target, err := d.expr(m.head())
	if err != nil {
		return nil, err
	}
	v := m.get("value")
	if v == nil {
		return nil, d.errorf(m.at(), "assignment needs a value")
	}
	value, err := d.expr(v)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Token: d.tok(m.at(), "binary", ast.OpAssign), Op: ast.OpAssign, Left: target, Right: value}, nil
}

// callExpr reads positional args from "args" and named args from the
// ordered "named" mapping.
func (d *decoder) callExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("call", "args", "named"); err != nil {
		return nil, err
	}
	callee, err := d.expr(m.head())
	if err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Token: d.tok(m.at(), "call", callee.TokenLiteral()), Callee: callee}
	if a := m.get("args"); a != nil {
		items, err := d.sequence(a)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			e, err := d.expr(item)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, &ast.Arg{Token: d.tok(item, "arg", ""), Value: e})
		}
	}
	if nm := m.get("named"); nm != nil {
		named, err := d.mapping(nm)
		if err != nil {
			return nil, err
		}
		for _, k := range named.keys {
			name, err := d.name(k)
			if err != nil {
				return nil, err
			}
			e, err := d.expr(named.values[k.Value])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, &ast.Arg{Token: d.tok(k, "arg", name.Value), Name: name, Value: e})
		}
	}
	return call, nil
}

func (d *decoder) methodCallExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("method", "on", "args", "type_args"); err != nil {
		return nil, err
	}
	name, err := d.name(m.head())
	if err != nil {
		return nil, err
	}
	on := m.get("on")
	if on == nil {
		return nil, d.errorf(m.at(), "method call %q needs a receiver under \"on\"", name.Value)
	}
	mc := &ast.MethodCallExpr{Token: d.tok(m.at(), "method", name.Value), Method: name}
	if mc.Receiver, err = d.expr(on); err != nil {
		return nil, err
	}
	if mc.TypeArgs, err = d.typeList(m.get("type_args")); err != nil {
		return nil, err
	}
	if mc.Args, err = d.exprList(m.get("args")); err != nil {
		return nil, err
	}
	return mc, nil
}

func (d *decoder) fieldAccessExpr(m *mapNode) (ast.Expression, error) {
	if err := m.only("field", "on"); err != nil {
		return nil, err
	}
	name, err := d.name(m.head())
	if err != nil {
		return nil, err
	}
	on := m.get("on")
	if on == nil {
		return nil, d.errorf(m.at(), "field access %q needs a receiver under \"on\"", name.Value)
	}
	fa := &ast.FieldAccessExpr{Token: d.tok(m.at(), "field", name.Value), Field: name}
	if fa.Receiver, err = d.expr(on); err != nil {
		return nil, err
	}
	return fa, nil
}

func (d *decoder) unaryForm(m *mapNode, build func(ast.Expression) ast.Expression) (ast.Expression, error) {
	if err := m.only(m.kind()); err != nil {
		return nil, err
	}
	v := m.get(m.kind())
	if v == nil {
		return nil, d.errorf(m.at(), "%q needs an operand", m.kind())
	}
	e, err := d.expr(v)
	if err != nil {
		return nil, err
	}
	return build(e), nil
}

// pattern reads a pattern. Scalars: `_` is a hole, a path starting with an
// upper case letter or containing `::` is a field-less variant, any other
// string binds a name, and numbers or booleans are literals. Mappings are
// {con: Path, fields: {f: <pattern or null>}}, {str: ...} or {char: ...}.
func (d *decoder) pattern(n *yaml.Node) (ast.Pattern, error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Tag {
		case "!!int", "!!float", "!!bool":
			e, err := d.scalarExpr(n)
			if err != nil {
				return nil, err
			}
			return &ast.LiteralPattern{Token: d.tok(n, "literal-pattern", n.Value), Value: e}, nil
		case "!!null":
			return nil, d.errorf(n, "expected a pattern")
		}
		if n.Value == "_" {
			return &ast.HolePattern{Token: d.tok(n, "hole-pattern", "_")}, nil
		}
		if isVariantPath(n.Value) {
			id, err := parseIdentifier(n.Value, d.tok(n, "identifier", n.Value))
			if err != nil {
				return nil, d.wrap(n, err)
			}
			return &ast.ConPattern{Token: d.tok(n, "con-pattern", n.Value), Identifier: id}, nil
		}
		return d.name(n)
	}

	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	switch m.kind() {
	case "str", "char":
		e, err := d.exprMapping(m)
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Token: d.tok(m.at(), "literal-pattern", e.TokenLiteral()), Value: e}, nil
	case "con":
		return d.conPattern(m)
	}
	return nil, d.errorf(m.at(), "unknown pattern kind %q", m.kind())
}

func (d *decoder) conPattern(m *mapNode) (ast.Pattern, error) {
	if err := m.only("con", "fields"); err != nil {
		return nil, err
	}
	s, err := d.str(m.head())
	if err != nil {
		return nil, err
	}
	id, err := parseIdentifier(s, d.tok(m.head(), "identifier", s))
	if err != nil {
		return nil, d.wrap(m.head(), err)
	}
	cp := &ast.ConPattern{Token: d.tok(m.at(), "con-pattern", s), Identifier: id}
	fs := m.get("fields")
	if fs == nil {
		return cp, nil
	}
	fm, err := d.mapping(fs)
	if err != nil {
		return nil, err
	}
	for _, k := range fm.keys {
		name, err := d.name(k)
		if err != nil {
			return nil, err
		}
		fp := &ast.FieldPattern{Token: d.tok(k, "field-pattern", name.Value), Name: name}
		if v := fm.values[k.Value]; !isNull(v) {
			if fp.Pattern, err = d.pattern(v); err != nil {
				return nil, err
			}
		}
		cp.Fields = append(cp.Fields, fp)
	}
	return cp, nil
}

func isVariantPath(s string) bool {
	if strings.Contains(s, "::") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
