package astio

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/token"
)

// typeReader reads the compact type notation used inside AST files:
//
//	Int   Option<T>   std::list::List<Int>   |Int, Int|: Bool   _
//
// Positions of every produced node are the position of the YAML scalar.
type typeReader struct {
	src string
	pos int
	at  token.Token
}

func newTypeReader(src string, at token.Token) *typeReader {
	return &typeReader{src: src, at: at}
}

func (r *typeReader) tok(kind, lexeme string) token.Token {
	t := r.at
	t.Kind = kind
	t.Lexeme = lexeme
	return t
}

func (r *typeReader) skipSpace() {
	for r.pos < len(r.src) && r.src[r.pos] == ' ' {
		r.pos++
	}
}

func (r *typeReader) peek() byte {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return 0
	}
	return r.src[r.pos]
}

func (r *typeReader) accept(s string) bool {
	r.skipSpace()
	if strings.HasPrefix(r.src[r.pos:], s) {
		r.pos += len(s)
		return true
	}
	return false
}

func (r *typeReader) expect(s string) error {
	if !r.accept(s) {
		return errors.Errorf("type %q: expected %q at offset %d", r.src, s, r.pos)
	}
	return nil
}

func (r *typeReader) done() error {
	r.skipSpace()
	if r.pos != len(r.src) {
		return errors.Errorf("type %q: unexpected %q", r.src, r.src[r.pos:])
	}
	return nil
}

func (r *typeReader) name() (*ast.Name, error) {
	r.skipSpace()
	start := r.pos
	for r.pos < len(r.src) {
		c := rune(r.src[r.pos])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		r.pos++
	}
	if start == r.pos {
		return nil, errors.Errorf("type %q: expected a name at offset %d", r.src, start)
	}
	v := r.src[start:r.pos]
	return &ast.Name{Token: r.tok("name", v), Value: v}, nil
}

// path reads `a::b::c`.
func (r *typeReader) path() ([]*ast.Name, error) {
	var names []*ast.Name
	for {
		n, err := r.name()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if !r.accept("::") {
			return names, nil
		}
	}
}

// typeArgs reads an optional `<T, U>` list.
func (r *typeReader) typeArgs() ([]ast.TypeExpr, error) {
	if !r.accept("<") {
		return nil, nil
	}
	var args []ast.TypeExpr
	for {
		t, err := r.typeExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if r.accept(">") {
			return args, nil
		}
		if err := r.expect(","); err != nil {
			return nil, err
		}
	}
}

func (r *typeReader) typeExpr() (ast.TypeExpr, error) {
	switch r.peek() {
	case '|':
		return r.fnType()
	case '_':
		save := r.pos
		r.pos++
		if r.pos >= len(r.src) || !isNameByte(r.src[r.pos]) {
			return &ast.HoleTypeExpr{Token: r.tok("hole-type", "_")}, nil
		}
		r.pos = save
	}
	names, err := r.path()
	if err != nil {
		return nil, err
	}
	args, err := r.typeArgs()
	if err != nil {
		return nil, err
	}
	lexeme := names[len(names)-1].Value
	return &ast.TypeRef{Token: r.tok("type-ref", lexeme), Names: names, TypeArgs: args}, nil
}

func (r *typeReader) fnType() (ast.TypeExpr, error) {
	if err := r.expect("|"); err != nil {
		return nil, err
	}
	fn := &ast.FnTypeExpr{Token: r.tok("fn-type", "|")}
	if !r.accept("|") {
		for {
			p, err := r.typeExpr()
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, p)
			if r.accept("|") {
				break
			}
			if err := r.expect(","); err != nil {
				return nil, err
			}
		}
	}
	if r.accept(":") {
		ret, err := r.typeExpr()
		if err != nil {
			return nil, err
		}
		fn.ReturnType = ret
	}
	return fn, nil
}

func isNameByte(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

// ParseType reads a type annotation in the compact notation.
func ParseType(src string, at token.Token) (ast.TypeExpr, error) {
	r := newTypeReader(src, at)
	t, err := r.typeExpr()
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseGeneric reads `T` or `T: Show + Eq`.
func parseGeneric(src string, at token.Token) (*ast.Generic, error) {
	r := newTypeReader(src, at)
	name, err := r.name()
	if err != nil {
		return nil, err
	}
	g := &ast.Generic{Token: r.tok("generic", name.Value), Name: name}
	if r.accept(":") {
		for {
			b, err := r.typeExpr()
			if err != nil {
				return nil, err
			}
			g.Bounds = append(g.Bounds, b)
			if !r.accept("+") {
				break
			}
		}
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return g, nil
}

// parseIdentifier reads an expression path with optional type arguments:
// x, Option::Some, std::io::println, id<Int>
func parseIdentifier(src string, at token.Token) (*ast.Identifier, error) {
	r := newTypeReader(src, at)
	names, err := r.path()
	if err != nil {
		return nil, err
	}
	args, err := r.typeArgs()
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return &ast.Identifier{Token: r.tok("identifier", src), Names: names, TypeArgs: args}, nil
}

// parseUsePath reads `a::b::c`, `a::b::{c, d::e}` with an optional `pub `
// prefix.
func parseUsePath(src string, at token.Token) (*ast.UseExpr, error) {
	r := newTypeReader(src, at)
	pub := false
	if strings.HasPrefix(strings.TrimSpace(src), "pub ") {
		pub = true
		r.pos = strings.Index(src, "pub ") + len("pub ")
	}
	use, err := r.useTree()
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	use.Pub = pub
	return use, nil
}

func (r *typeReader) useTree() (*ast.UseExpr, error) {
	use := &ast.UseExpr{Token: r.tok("use", "use")}
	for {
		if r.accept("{") {
			for {
				nested, err := r.useTree()
				if err != nil {
					return nil, err
				}
				use.Nested = append(use.Nested, nested)
				if r.accept("}") {
					return use, nil
				}
				if err := r.expect(","); err != nil {
					return nil, err
				}
			}
		}
		n, err := r.name()
		if err != nil {
			return nil, err
		}
		use.Path = append(use.Path, n)
		if !r.accept("::") {
			return use, nil
		}
	}
}
