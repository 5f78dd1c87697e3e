package diagnostics

import (
	"testing"

	"github.com/funvibe/noisec/internal/token"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		code ErrorCode
		args []interface{}
		want string
	}{
		{ErrA001, []interface{}{"`x`"}, "`x` not found"},
		{ErrA002, []interface{}{"Int", "String"}, "type error: expected `Int`, got `String`"},
		{ErrA004, []interface{}{2, 1}, "expected 2 arguments, got 1"},
		{ErrA010, []interface{}{"fn", "app::lib::f"}, "fn `app::lib::f` is private"},
		{ErrA011, []interface{}{"None"}, "non-exhaustive match expression, unmatched: None"},
		{WarnW003, nil, "duplicate import"},
	}
	for _, tt := range tests {
		if got := NewError(tt.code, token.Token{}, tt.args...).Message; got != tt.want {
			t.Errorf("%s: message = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDiagnosticString(t *testing.T) {
	e := NewError(ErrA001, token.Token{Line: 3, Column: 7}, "`x`")
	e.File = "main.ast.yaml"
	if got := e.Error(); got != "main.ast.yaml:3:7: error[A001]: `x` not found" {
		t.Errorf("Error() = %q", got)
	}
	w := NewWarning(WarnW001, token.Token{Line: 1, Column: 1})
	if !w.IsWarning() || e.IsWarning() {
		t.Error("IsWarning")
	}
	if w.Severity.String() != "warning" || e.Severity.String() != "error" {
		t.Error("Severity.String")
	}
}
