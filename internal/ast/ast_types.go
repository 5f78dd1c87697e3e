package ast

import (
	"strings"

	"github.com/funvibe/noisec/internal/token"
)

// TypeExpr is a syntactic type annotation.
type TypeExpr interface {
	Node
	typeNode()
	String() string
}

// TypeRef names a type, trait or generic: Option<Int>, std::list::List<T>, Self
type TypeRef struct {
	Token    token.Token
	Names    []*Name
	TypeArgs []TypeExpr
}

func (t *TypeRef) typeNode()            {}
func (t *TypeRef) TokenLiteral() string { return t.Token.Lexeme }
func (t *TypeRef) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// Path returns the name components.
func (t *TypeRef) Path() []string {
	out := make([]string, len(t.Names))
	for i, n := range t.Names {
		out[i] = n.Value
	}
	return out
}

// Last returns the last name component.
func (t *TypeRef) Last() *Name {
	if len(t.Names) == 0 {
		return nil
	}
	return t.Names[len(t.Names)-1]
}

func (t *TypeRef) String() string {
	s := strings.Join(t.Path(), "::")
	if len(t.TypeArgs) > 0 {
		args := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = a.String()
		}
		s += "<" + strings.Join(args, ", ") + ">"
	}
	return s
}

// FnTypeExpr: |Int, String|: Bool
type FnTypeExpr struct {
	Token      token.Token
	Generics   []*Generic
	Params     []TypeExpr
	ReturnType TypeExpr
}

func (t *FnTypeExpr) typeNode()            {}
func (t *FnTypeExpr) TokenLiteral() string { return t.Token.Lexeme }
func (t *FnTypeExpr) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

func (t *FnTypeExpr) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	ret := "Unit"
	if t.ReturnType != nil {
		ret = t.ReturnType.String()
	}
	return "|" + strings.Join(params, ", ") + "|: " + ret
}

// HoleTypeExpr is the erased type `_`.
type HoleTypeExpr struct {
	Token token.Token
}

func (t *HoleTypeExpr) typeNode()            {}
func (t *HoleTypeExpr) TokenLiteral() string { return t.Token.Lexeme }
func (t *HoleTypeExpr) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}
func (t *HoleTypeExpr) String() string { return "_" }

// Generic is a declared type parameter with optional trait bounds: T: Show + Eq
type Generic struct {
	Token  token.Token
	Name   *Name
	Bounds []TypeExpr
}

func (g *Generic) TokenLiteral() string { return g.Token.Lexeme }
func (g *Generic) GetToken() token.Token {
	if g == nil {
		return token.Token{}
	}
	return g.Token
}

// Param is a function or closure parameter.
type Param struct {
	Token   token.Token
	Pattern Pattern
	Type    TypeExpr // Optional for `self` and closure params
}

func (p *Param) TokenLiteral() string { return p.Token.Lexeme }
func (p *Param) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// Pattern is a destructuring pattern. *Name is the binding pattern.
type Pattern interface {
	Node
	patternNode()
}

// HolePattern matches anything and binds nothing: _
type HolePattern struct {
	Token token.Token
}

func (p *HolePattern) patternNode()         {}
func (p *HolePattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *HolePattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// ConPattern matches a variant: Some(value), Point(x: px, y: _)
type ConPattern struct {
	Token      token.Token
	Identifier *Identifier
	Fields     []*FieldPattern
}

func (p *ConPattern) patternNode()         {}
func (p *ConPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *ConPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FieldPattern matches one variant field by name. A nil Pattern binds the
// field to a variable of the same name.
type FieldPattern struct {
	Token   token.Token
	Name    *Name
	Pattern Pattern
}

func (p *FieldPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *FieldPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// LiteralPattern matches a literal value.
type LiteralPattern struct {
	Token token.Token
	Value Expression // one of the literal expressions
}

func (p *LiteralPattern) patternNode()         {}
func (p *LiteralPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *LiteralPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}
