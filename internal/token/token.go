package token

import "fmt"

// Token is the slice of source an AST node was built from. The external AST
// builder fills it in; nodes decoded without position information carry a
// zero Token.
type Token struct {
	Kind   string // node kind tag as emitted by the builder, e.g. "fn-def"
	Lexeme string
	Line   int // 1-based, 0 when unknown
	Column int // 1-based, 0 when unknown
}

// IsZero reports whether the token carries no position.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0
}

func (t Token) String() string {
	if t.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
