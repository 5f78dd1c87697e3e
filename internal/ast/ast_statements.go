package ast

import (
	"github.com/funvibe/noisec/internal/token"
)

// VarDef is a variable binding.
// let x: Int = 1
type VarDef struct {
	Token   token.Token // The 'let' token
	Pub     bool
	Pattern Pattern
	VarType TypeExpr   // Optional
	Value   Expression // Optional for compiled top-level declarations
}

func (vd *VarDef) Accept(v Visitor)     { v.VisitVarDef(vd) }
func (vd *VarDef) statementNode()       {}
func (vd *VarDef) TokenLiteral() string { return vd.Token.Lexeme }
func (vd *VarDef) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// FnDef is a function or method definition.
// A nil Block marks a bodyless declaration: a required trait method or a native function.
type FnDef struct {
	Token      token.Token // The 'fn' token
	Pub        bool
	Name       *Name
	Generics   []*Generic
	Params     []*Param
	ReturnType TypeExpr // Optional, Unit when absent
	Block      *Block
}

func (fd *FnDef) Accept(v Visitor)     { v.VisitFnDef(fd) }
func (fd *FnDef) statementNode()       {}
func (fd *FnDef) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FnDef) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// Instance is implemented by the two definitions whose blocks hold methods.
type Instance interface {
	Statement
	InstanceName() string
	InstanceGenerics() []*Generic
	InstanceBlock() *Block
}

// TraitDef declares a trait.
// trait Show { fn show(self): String }
type TraitDef struct {
	Token    token.Token // The 'trait' token
	Pub      bool
	Name     *Name
	Generics []*Generic
	Block    *Block
}

func (td *TraitDef) Accept(v Visitor)     { v.VisitTraitDef(td) }
func (td *TraitDef) statementNode()       {}
func (td *TraitDef) TokenLiteral() string { return td.Token.Lexeme }
func (td *TraitDef) GetToken() token.Token {
	if td == nil {
		return token.Token{}
	}
	return td.Token
}
func (td *TraitDef) InstanceName() string         { return td.Name.Value }
func (td *TraitDef) InstanceGenerics() []*Generic { return td.Generics }
func (td *TraitDef) InstanceBlock() *Block        { return td.Block }

// ImplDef implements a trait for a type, or adds inherent methods to a type.
// impl<T> Show for Option<T> { ... }   -> Identifier = Show, ForType = Option<T>
// impl Foo { ... }                     -> Identifier = Foo, ForType = nil
type ImplDef struct {
	Token      token.Token // The 'impl' token
	Generics   []*Generic
	Identifier *TypeRef
	ForType    *TypeRef
	Block      *Block
}

func (id *ImplDef) Accept(v Visitor)     { v.VisitImplDef(id) }
func (id *ImplDef) statementNode()       {}
func (id *ImplDef) TokenLiteral() string { return id.Token.Lexeme }
func (id *ImplDef) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}
func (id *ImplDef) InstanceName() string {
	if id.Identifier == nil || len(id.Identifier.Names) == 0 {
		return ""
	}
	return id.Identifier.Names[len(id.Identifier.Names)-1].Value
}
func (id *ImplDef) InstanceGenerics() []*Generic { return id.Generics }
func (id *ImplDef) InstanceBlock() *Block        { return id.Block }

// TypeDef declares an algebraic data type.
// type Option<T> { Some(value: T), None() }
type TypeDef struct {
	Token    token.Token // The 'type' token
	Pub      bool
	Name     *Name
	Generics []*Generic
	Variants []*Variant
}

func (td *TypeDef) Accept(v Visitor)     { v.VisitTypeDef(td) }
func (td *TypeDef) statementNode()       {}
func (td *TypeDef) TokenLiteral() string { return td.Token.Lexeme }
func (td *TypeDef) GetToken() token.Token {
	if td == nil {
		return token.Token{}
	}
	return td.Token
}

// Variant is one constructor of a TypeDef.
type Variant struct {
	Token  token.Token
	Name   *Name
	Fields []*FieldDef
}

func (v *Variant) TokenLiteral() string { return v.Token.Lexeme }
func (v *Variant) GetToken() token.Token {
	if v == nil {
		return token.Token{}
	}
	return v.Token
}

// Field returns the field with the given name, or nil.
func (v *Variant) Field(name string) *FieldDef {
	for _, f := range v.Fields {
		if f.Name.Value == name {
			return f
		}
	}
	return nil
}

// FieldDef is a named, typed variant field.
type FieldDef struct {
	Token token.Token
	Name  *Name
	Type  TypeExpr
}

func (f *FieldDef) TokenLiteral() string { return f.Token.Lexeme }
func (f *FieldDef) GetToken() token.Token {
	if f == nil {
		return token.Token{}
	}
	return f.Token
}

// ReturnStmt returns a value from the enclosing function.
type ReturnStmt struct {
	Token token.Token // The 'return' token
	Value Expression
}

func (rs *ReturnStmt) Accept(v Visitor)     { v.VisitReturnStmt(rs) }
func (rs *ReturnStmt) statementNode()       {}
func (rs *ReturnStmt) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStmt) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// BreakStmt leaves the innermost loop.
type BreakStmt struct {
	Token token.Token // The 'break' token
}

func (bs *BreakStmt) Accept(v Visitor)     { v.VisitBreakStmt(bs) }
func (bs *BreakStmt) statementNode()       {}
func (bs *BreakStmt) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStmt) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}
