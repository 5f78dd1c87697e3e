package ast

import (
	"github.com/funvibe/noisec/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenProvider
	TokenLiteral() string
}

// Statement is a Node that can appear in a block.
type Statement interface {
	Node
	Accept(v Visitor)
	statementNode()
}

// Expression is a Statement that produces a value.
type Expression interface {
	Statement
	expressionNode()
}

// Visitor dispatches over every statement and expression kind. Adding a node
// kind without a Visit method is a compile error in every walker.
type Visitor interface {
	VisitVarDef(n *VarDef)
	VisitFnDef(n *FnDef)
	VisitTraitDef(n *TraitDef)
	VisitImplDef(n *ImplDef)
	VisitTypeDef(n *TypeDef)
	VisitReturnStmt(n *ReturnStmt)
	VisitBreakStmt(n *BreakStmt)

	VisitIdentifier(n *Identifier)
	VisitStringLiteral(n *StringLiteral)
	VisitStringInterpolation(n *StringInterpolation)
	VisitCharLiteral(n *CharLiteral)
	VisitIntLiteral(n *IntLiteral)
	VisitFloatLiteral(n *FloatLiteral)
	VisitBoolLiteral(n *BoolLiteral)
	VisitListExpr(n *ListExpr)
	VisitIfExpr(n *IfExpr)
	VisitIfLetExpr(n *IfLetExpr)
	VisitWhileExpr(n *WhileExpr)
	VisitForExpr(n *ForExpr)
	VisitMatchExpr(n *MatchExpr)
	VisitClosureExpr(n *ClosureExpr)
	VisitUnaryExpr(n *UnaryExpr)
	VisitBinaryExpr(n *BinaryExpr)
	VisitCallExpr(n *CallExpr)
	VisitMethodCallExpr(n *MethodCallExpr)
	VisitFieldAccessExpr(n *FieldAccessExpr)
	VisitUnwrapExpr(n *UnwrapExpr)
	VisitBindExpr(n *BindExpr)
}

// Program is the root node of every AST file handed over by the AST builder.
type Program struct {
	File  string // Source file path
	Token token.Token
	Uses  []*UseExpr
	Block *Block
}

func (p *Program) TokenLiteral() string { return p.Token.Lexeme }
func (p *Program) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// Name is a single, unqualified name: a binding, a definition name or one
// component of a path.
type Name struct {
	Token token.Token
	Value string
}

func (n *Name) TokenLiteral() string { return n.Token.Lexeme }
func (n *Name) GetToken() token.Token {
	if n == nil {
		return token.Token{}
	}
	return n.Token
}
func (n *Name) patternNode() {}

// Block is an ordered list of statements; its value is the value of the last one.
type Block struct {
	Token      token.Token
	Statements []Statement
}

func (b *Block) TokenLiteral() string { return b.Token.Lexeme }
func (b *Block) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// UseExpr is an import: `use std::iter::{Iter, Iterable}`.
// A leaf has no Nested entries and imports the full Path.
type UseExpr struct {
	Token  token.Token
	Pub    bool
	Path   []*Name
	Nested []*UseExpr
}

func (u *UseExpr) TokenLiteral() string { return u.Token.Lexeme }
func (u *UseExpr) GetToken() token.Token {
	if u == nil {
		return token.Token{}
	}
	return u.Token
}

// UseLeaf is one imported path produced by flattening a UseExpr tree.
type UseLeaf struct {
	Names []string
	Node  *Name // last path component, used for diagnostics
	Pub   bool
}

// Flatten expands nested use expressions into the list of imported paths.
func (u *UseExpr) Flatten() []UseLeaf {
	return u.flatten(nil, u.Pub)
}

func (u *UseExpr) flatten(prefix []string, pub bool) []UseLeaf {
	names := make([]string, 0, len(prefix)+len(u.Path))
	names = append(names, prefix...)
	for _, n := range u.Path {
		names = append(names, n.Value)
	}
	if len(u.Nested) == 0 {
		if len(u.Path) == 0 {
			return nil
		}
		return []UseLeaf{{Names: names, Node: u.Path[len(u.Path)-1], Pub: pub}}
	}
	var leaves []UseLeaf
	for _, n := range u.Nested {
		leaves = append(leaves, n.flatten(names, pub)...)
	}
	return leaves
}
