package diagnostics

import (
	"fmt"

	"github.com/funvibe/noisec/internal/token"
)

// ErrorCode identifies a class of diagnostic. Codes are stable across releases
// and are what tests and report consumers key on.
type ErrorCode string

const (
	ErrA001 ErrorCode = "A001" // not found
	ErrA002 ErrorCode = "A002" // type mismatch
	ErrA003 ErrorCode = "A003" // use of an erroneous (unknown) type
	ErrA004 ErrorCode = "A004" // argument count
	ErrA005 ErrorCode = "A005" // field / named argument
	ErrA006 ErrorCode = "A006" // circular module reference
	ErrA007 ErrorCode = "A007" // call of a non-callable value
	ErrA008 ErrorCode = "A008" // trait implementation
	ErrA009 ErrorCode = "A009" // control flow misuse
	ErrA010 ErrorCode = "A010" // private access
	ErrA011 ErrorCode = "A011" // non-exhaustive match
	ErrA012 ErrorCode = "A012" // unresolved closure type
	ErrA013 ErrorCode = "A013" // misplaced definition
	ErrA014 ErrorCode = "A014" // type argument count
	ErrA015 ErrorCode = "A015" // method clash

	WarnW001 ErrorCode = "W001" // unreachable statement
	WarnW002 ErrorCode = "W002" // unnecessary self import
	WarnW003 ErrorCode = "W003" // duplicate import
	WarnW004 ErrorCode = "W004" // visibility notice
	WarnW005 ErrorCode = "W005" // bodyless function assumed native
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

var templates = map[ErrorCode]string{
	ErrA001:  "%s not found",
	ErrA002:  "type error: expected `%s`, got `%s`",
	ErrA003:  "%s",
	ErrA004:  "expected %d arguments, got %d",
	ErrA005:  "%s",
	ErrA006:  "circular module reference: %s",
	ErrA007:  "type `%s` is not callable",
	ErrA008:  "%s",
	ErrA009:  "%s",
	ErrA010:  "%s `%s` is private",
	ErrA011:  "non-exhaustive match expression, unmatched: %s",
	ErrA012:  "unresolved closure type: %s",
	ErrA013:  "%s",
	ErrA014:  "%s",
	ErrA015:  "clashing method name `%s` across traits: %s",
	WarnW001: "unreachable statement",
	WarnW002: "unnecessary self import",
	WarnW003: "duplicate import",
	WarnW004: "%s",
	WarnW005: "%s",
}

// DiagnosticError is a single error or warning tied to a source position.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	File     string
	Module   string // Vid of the module being checked when reported
	Message  string
}

func (e *DiagnosticError) Error() string {
	loc := e.Token.String()
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, e.Severity, e.Code, e.Message)
}

// IsWarning reports whether the diagnostic does not fail the run.
func (e *DiagnosticError) IsWarning() bool { return e.Severity == SeverityWarning }

// NewError formats the template registered for code with args.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:     code,
		Severity: SeverityError,
		Token:    tok,
		Message:  format(code, args),
	}
}

// NewWarning is NewError with warning severity.
func NewWarning(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	d := NewError(code, tok, args...)
	d.Severity = SeverityWarning
	return d
}

func format(code ErrorCode, args []interface{}) string {
	tmpl, ok := templates[code]
	if !ok {
		return fmt.Sprint(args...)
	}
	return fmt.Sprintf(tmpl, args...)
}
