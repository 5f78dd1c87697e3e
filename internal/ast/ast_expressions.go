package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/noisec/internal/token"
)

// Identifier is a possibly qualified name with optional type arguments.
// Option::Some, std::io::println, foo<Int>
type Identifier struct {
	Token    token.Token
	Names    []*Name
	TypeArgs []TypeExpr
}

func (i *Identifier) Accept(v Visitor)     { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()      {}
func (i *Identifier) statementNode()       {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// Path returns the name components.
func (i *Identifier) Path() []string {
	out := make([]string, len(i.Names))
	for j, n := range i.Names {
		out[j] = n.Value
	}
	return out
}

func (i *Identifier) String() string { return strings.Join(i.Path(), "::") }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Accept(v Visitor)     { v.VisitStringLiteral(sl) }
func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) statementNode()       {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// StringInterpolation is a string literal with embedded expressions.
// Literal pieces are kept as *StringLiteral parts.
type StringInterpolation struct {
	Token token.Token
	Parts []Expression
}

func (si *StringInterpolation) Accept(v Visitor)     { v.VisitStringInterpolation(si) }
func (si *StringInterpolation) expressionNode()      {}
func (si *StringInterpolation) statementNode()       {}
func (si *StringInterpolation) TokenLiteral() string { return si.Token.Lexeme }
func (si *StringInterpolation) GetToken() token.Token {
	if si == nil {
		return token.Token{}
	}
	return si.Token
}

type CharLiteral struct {
	Token token.Token
	Value string
}

func (cl *CharLiteral) Accept(v Visitor)     { v.VisitCharLiteral(cl) }
func (cl *CharLiteral) expressionNode()      {}
func (cl *CharLiteral) statementNode()       {}
func (cl *CharLiteral) TokenLiteral() string { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token {
	if cl == nil {
		return token.Token{}
	}
	return cl.Token
}

type IntLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntLiteral) Accept(v Visitor)     { v.VisitIntLiteral(il) }
func (il *IntLiteral) expressionNode()      {}
func (il *IntLiteral) statementNode()       {}
func (il *IntLiteral) TokenLiteral() string { return strconv.FormatInt(il.Value, 10) }
func (il *IntLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) Accept(v Visitor) { v.VisitFloatLiteral(fl) }
func (fl *FloatLiteral) expressionNode()  {}
func (fl *FloatLiteral) statementNode()   {}
func (fl *FloatLiteral) TokenLiteral() string {
	return strconv.FormatFloat(fl.Value, 'g', -1, 64)
}
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BoolLiteral) Accept(v Visitor)     { v.VisitBoolLiteral(bl) }
func (bl *BoolLiteral) expressionNode()      {}
func (bl *BoolLiteral) statementNode()       {}
func (bl *BoolLiteral) TokenLiteral() string { return strconv.FormatBool(bl.Value) }
func (bl *BoolLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

// ListExpr is a list literal: [1, 2, 3]
type ListExpr struct {
	Token token.Token
	Items []Expression
}

func (le *ListExpr) Accept(v Visitor)     { v.VisitListExpr(le) }
func (le *ListExpr) expressionNode()      {}
func (le *ListExpr) statementNode()       {}
func (le *ListExpr) TokenLiteral() string { return le.Token.Lexeme }
func (le *ListExpr) GetToken() token.Token {
	if le == nil {
		return token.Token{}
	}
	return le.Token
}

// IfExpr: if cond { ... } else { ... }
type IfExpr struct {
	Token     token.Token
	Condition Expression
	Then      *Block
	Else      *Block // Optional
}

func (ie *IfExpr) Accept(v Visitor)     { v.VisitIfExpr(ie) }
func (ie *IfExpr) expressionNode()      {}
func (ie *IfExpr) statementNode()       {}
func (ie *IfExpr) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IfExpr) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// IfLetExpr: if let Some(value) = x { ... } else { ... }
type IfLetExpr struct {
	Token   token.Token
	Pattern Pattern
	Value   Expression
	Then    *Block
	Else    *Block // Optional
}

func (ie *IfLetExpr) Accept(v Visitor)     { v.VisitIfLetExpr(ie) }
func (ie *IfLetExpr) expressionNode()      {}
func (ie *IfLetExpr) statementNode()       {}
func (ie *IfLetExpr) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IfLetExpr) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

type WhileExpr struct {
	Token     token.Token
	Condition Expression
	Block     *Block
}

func (we *WhileExpr) Accept(v Visitor)     { v.VisitWhileExpr(we) }
func (we *WhileExpr) expressionNode()      {}
func (we *WhileExpr) statementNode()       {}
func (we *WhileExpr) TokenLiteral() string { return we.Token.Lexeme }
func (we *WhileExpr) GetToken() token.Token {
	if we == nil {
		return token.Token{}
	}
	return we.Token
}

// ForExpr: for x in xs { ... }
type ForExpr struct {
	Token    token.Token
	Pattern  Pattern
	Iterable Expression
	Block    *Block
}

func (fe *ForExpr) Accept(v Visitor)     { v.VisitForExpr(fe) }
func (fe *ForExpr) expressionNode()      {}
func (fe *ForExpr) statementNode()       {}
func (fe *ForExpr) TokenLiteral() string { return fe.Token.Lexeme }
func (fe *ForExpr) GetToken() token.Token {
	if fe == nil {
		return token.Token{}
	}
	return fe.Token
}

type MatchExpr struct {
	Token   token.Token
	Value   Expression
	Clauses []*MatchClause
}

func (me *MatchExpr) Accept(v Visitor)     { v.VisitMatchExpr(me) }
func (me *MatchExpr) expressionNode()      {}
func (me *MatchExpr) statementNode()       {}
func (me *MatchExpr) TokenLiteral() string { return me.Token.Lexeme }
func (me *MatchExpr) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// MatchClause: p1 | p2 if guard -> { ... }
type MatchClause struct {
	Token    token.Token
	Patterns []Pattern
	Guard    Expression // Optional
	Block    *Block
}

func (mc *MatchClause) TokenLiteral() string { return mc.Token.Lexeme }
func (mc *MatchClause) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// ClosureExpr: |a: Int, b| { a + b }
type ClosureExpr struct {
	Token      token.Token
	Params     []*Param
	ReturnType TypeExpr // Optional
	Block      *Block
}

func (ce *ClosureExpr) Accept(v Visitor)     { v.VisitClosureExpr(ce) }
func (ce *ClosureExpr) expressionNode()      {}
func (ce *ClosureExpr) statementNode()       {}
func (ce *ClosureExpr) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *ClosureExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// FullyTyped reports whether every parameter and the return type are annotated.
func (ce *ClosureExpr) FullyTyped() bool {
	if ce.ReturnType == nil {
		return false
	}
	for _, p := range ce.Params {
		if p.Type == nil {
			return false
		}
	}
	return true
}

// UnaryExpr is a prefix operator application: -x, !x
type UnaryExpr struct {
	Token   token.Token
	Op      string
	Operand Expression
}

func (ue *UnaryExpr) Accept(v Visitor)     { v.VisitUnaryExpr(ue) }
func (ue *UnaryExpr) expressionNode()      {}
func (ue *UnaryExpr) statementNode()       {}
func (ue *UnaryExpr) TokenLiteral() string { return ue.Token.Lexeme }
func (ue *UnaryExpr) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

// BinaryExpr is an infix operator application, including assignment.
type BinaryExpr struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

// OpAssign is the assignment operator.
const OpAssign = "="

func (be *BinaryExpr) Accept(v Visitor)     { v.VisitBinaryExpr(be) }
func (be *BinaryExpr) expressionNode()      {}
func (be *BinaryExpr) statementNode()       {}
func (be *BinaryExpr) TokenLiteral() string { return be.Token.Lexeme }
func (be *BinaryExpr) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// CallExpr calls a function or constructs a variant.
type CallExpr struct {
	Token  token.Token
	Callee Expression
	Args   []*Arg
}

func (ce *CallExpr) Accept(v Visitor)     { v.VisitCallExpr(ce) }
func (ce *CallExpr) expressionNode()      {}
func (ce *CallExpr) statementNode()       {}
func (ce *CallExpr) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// Arg is a call argument, optionally named: Point(x: 1, y: 2)
type Arg struct {
	Token token.Token
	Name  *Name // Optional
	Value Expression
}

func (a *Arg) TokenLiteral() string { return a.Token.Lexeme }
func (a *Arg) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	return a.Token
}

// MethodCallExpr: recv.method<T>(args)
type MethodCallExpr struct {
	Token    token.Token
	Receiver Expression
	Method   *Name
	TypeArgs []TypeExpr
	Args     []Expression
}

func (mc *MethodCallExpr) Accept(v Visitor)     { v.VisitMethodCallExpr(mc) }
func (mc *MethodCallExpr) expressionNode()      {}
func (mc *MethodCallExpr) statementNode()       {}
func (mc *MethodCallExpr) TokenLiteral() string { return mc.Token.Lexeme }
func (mc *MethodCallExpr) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// FieldAccessExpr: recv.field
type FieldAccessExpr struct {
	Token    token.Token
	Receiver Expression
	Field    *Name
}

func (fa *FieldAccessExpr) Accept(v Visitor)     { v.VisitFieldAccessExpr(fa) }
func (fa *FieldAccessExpr) expressionNode()      {}
func (fa *FieldAccessExpr) statementNode()       {}
func (fa *FieldAccessExpr) TokenLiteral() string { return fa.Token.Lexeme }
func (fa *FieldAccessExpr) GetToken() token.Token {
	if fa == nil {
		return token.Token{}
	}
	return fa.Token
}

// UnwrapExpr is the postfix `!` operator.
type UnwrapExpr struct {
	Token   token.Token
	Operand Expression
}

func (ue *UnwrapExpr) Accept(v Visitor)     { v.VisitUnwrapExpr(ue) }
func (ue *UnwrapExpr) expressionNode()      {}
func (ue *UnwrapExpr) statementNode()       {}
func (ue *UnwrapExpr) TokenLiteral() string { return ue.Token.Lexeme }
func (ue *UnwrapExpr) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

// BindExpr is the postfix `?` operator: unwraps or returns early.
type BindExpr struct {
	Token   token.Token
	Operand Expression
}

func (be *BindExpr) Accept(v Visitor)     { v.VisitBindExpr(be) }
func (be *BindExpr) expressionNode()      {}
func (be *BindExpr) statementNode()       {}
func (be *BindExpr) TokenLiteral() string { return be.Token.Lexeme }
func (be *BindExpr) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}
