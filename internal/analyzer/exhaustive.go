package analyzer

import (
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// space is a pattern reduced to what matters for coverage: a wildcard, or a
// constructor applied to sub-patterns.
type space struct {
	wild bool
	ctor string
	args []*space
}

var wildSpace = &space{wild: true}

func (s *space) String() string {
	if s.wild {
		return config.HoleName
	}
	if len(s.args) == 0 {
		return s.ctor
	}
	parts := make([]string, len(s.args))
	for i, a := range s.args {
		parts[i] = a.String()
	}
	return s.ctor + "(" + strings.Join(parts, ", ") + ")"
}

// ctorInfo describes one constructor of a finite type.
type ctorInfo struct {
	name   string
	fields []typesystem.Type
}

// checkExhaustive reports whether the unguarded clauses of me cover every
// value of t. When they do not, the first result is an unmatched value.
func (w *walker) checkExhaustive(me *ast.MatchExpr, t typesystem.Type) (string, bool) {
	var rows [][]*space
	for _, clause := range me.Clauses {
		if clause.Guard != nil {
			continue
		}
		for _, p := range clause.Patterns {
			rows = append(rows, []*space{w.patternSpace(p)})
		}
	}
	witness, useful := w.useful(rows, []*space{wildSpace}, []typesystem.Type{t})
	if !useful {
		return "", false
	}
	return witness[0].String(), true
}

func (w *walker) patternSpace(p ast.Pattern) *space {
	switch pat := p.(type) {
	case *ast.ConPattern:
		ref := w.Info.Refs[pat.Identifier]
		if ref == nil {
			return wildSpace
		}
		vd, ok := ref.Def.(*symbols.VariantDef)
		if !ok {
			return wildSpace
		}
		s := &space{ctor: vd.Variant.Name.Value, args: make([]*space, len(vd.Variant.Fields))}
		for i := range s.args {
			s.args[i] = wildSpace
		}
		for _, f := range pat.Fields {
			idx := fieldIndex(vd.Variant, f.Name.Value)
			if idx < 0 || f.Pattern == nil {
				continue
			}
			s.args[idx] = w.patternSpace(f.Pattern)
		}
		return s
	case *ast.LiteralPattern:
		if b, ok := pat.Value.(*ast.BoolLiteral); ok {
			if b.Value {
				return &space{ctor: config.BoolTrueLexeme}
			}
			return &space{ctor: config.BoolFalseLexeme}
		}
		return &space{ctor: literalKey(pat.Value)}
	}
	return wildSpace
}

func literalKey(e ast.Expression) string {
	if e == nil {
		return ""
	}
	return e.TokenLiteral()
}

// constructors lists the constructors of t. The second result is false for
// types with an unbounded set of values.
func (w *walker) constructors(t typesystem.Type) ([]ctorInfo, bool) {
	vt, ok := w.resolveSelf(t).(*typesystem.VidType)
	if !ok {
		return nil, false
	}
	if vt.Vid.Equal(vid.FromString(config.BoolTypeVid)) {
		return []ctorInfo{{name: config.BoolTrueLexeme}, {name: config.BoolFalseLexeme}}, true
	}
	ref := w.resolveQualified(vt.Vid, []symbols.DefKind{symbols.TypeKind}, 0)
	if ref == nil {
		return nil, false
	}
	td := ref.Def.(*symbols.TypeDef).Type
	ctors := make([]ctorInfo, 0, len(td.Variants))
	for _, v := range td.Variants {
		sig := w.variantSignature(&symbols.VariantDef{Variant: v, TypeDef: td})
		m := typesystem.MapOverStructure(vt, sig.Return, nil)
		c := ctorInfo{name: v.Name.Value, fields: make([]typesystem.Type, len(v.Fields))}
		for i := range v.Fields {
			if i < len(sig.Params) {
				c.fields[i] = typesystem.Resolve(sig.Params[i], m)
			} else {
				c.fields[i] = typesystem.Unknown()
			}
		}
		ctors = append(ctors, c)
	}
	return ctors, len(ctors) > 0
}

// useful decides whether vector matches some value no row of matrix
// matches, and returns such a value.
func (w *walker) useful(matrix [][]*space, vector []*space, types []typesystem.Type) ([]*space, bool) {
	if len(vector) == 0 {
		if len(matrix) == 0 {
			return []*space{}, true
		}
		return nil, false
	}

	head, rest := vector[0], vector[1:]
	if !head.wild {
		arity := len(head.args)
		fields := w.ctorFields(types[0], head.ctor, arity)
		sub := specialize(matrix, head.ctor, arity)
		vec := append(append([]*space{}, head.args...), rest...)
		wit, ok := w.useful(sub, vec, append(fields, types[1:]...))
		if !ok {
			return nil, false
		}
		return rebuild(head.ctor, arity, wit), true
	}

	ctors, finite := w.constructors(types[0])
	used := map[string]bool{}
	for _, row := range matrix {
		if !row[0].wild {
			used[row[0].ctor] = true
		}
	}

	complete := finite
	for _, c := range ctors {
		if !used[c.name] {
			complete = false
			break
		}
	}

	if complete {
		for _, c := range ctors {
			arity := len(c.fields)
			sub := specialize(matrix, c.name, arity)
			vec := make([]*space, 0, arity+len(rest))
			for i := 0; i < arity; i++ {
				vec = append(vec, wildSpace)
			}
			vec = append(vec, rest...)
			if wit, ok := w.useful(sub, vec, append(append([]typesystem.Type{}, c.fields...), types[1:]...)); ok {
				return rebuild(c.name, arity, wit), true
			}
		}
		return nil, false
	}

	var def [][]*space
	for _, row := range matrix {
		if row[0].wild {
			def = append(def, row[1:])
		}
	}
	wit, ok := w.useful(def, rest, types[1:])
	if !ok {
		return nil, false
	}
	missing := wildSpace
	if finite {
		for _, c := range ctors {
			if used[c.name] {
				continue
			}
			missing = &space{ctor: c.name, args: make([]*space, len(c.fields))}
			for i := range missing.args {
				missing.args[i] = wildSpace
			}
			break
		}
	}
	return append([]*space{missing}, wit...), true
}

// ctorFields returns the field types of the constructor name of t, or
// unknown types when t is not a finite type.
func (w *walker) ctorFields(t typesystem.Type, name string, arity int) []typesystem.Type {
	ctors, _ := w.constructors(t)
	for _, c := range ctors {
		if c.name == name && len(c.fields) == arity {
			return append([]typesystem.Type{}, c.fields...)
		}
	}
	fields := make([]typesystem.Type, arity)
	for i := range fields {
		fields[i] = typesystem.Unknown()
	}
	return fields
}

// specialize keeps the rows whose first column can match ctor and replaces
// that column with the constructor's sub-patterns.
func specialize(matrix [][]*space, ctor string, arity int) [][]*space {
	var out [][]*space
	for _, row := range matrix {
		first := row[0]
		var head []*space
		switch {
		case first.wild:
			head = make([]*space, arity)
			for i := range head {
				head[i] = wildSpace
			}
		case first.ctor == ctor && len(first.args) == arity:
			head = first.args
		default:
			continue
		}
		out = append(out, append(append([]*space{}, head...), row[1:]...))
	}
	return out
}

// rebuild folds the first arity witnesses back into a constructor.
func rebuild(ctor string, arity int, wit []*space) []*space {
	s := &space{ctor: ctor, args: append([]*space{}, wit[:arity]...)}
	return append([]*space{s}, wit[arity:]...)
}
