package config

// AstFileExt is the extension of AST interchange files produced by the AST builder.
const AstFileExt = ".ast.yaml"

// ConfigFileName is the project configuration file searched for by the CLI.
const ConfigFileName = "noisec.yaml"

// IsTestMode indicates if the program is running under `go test` helpers.
var IsTestMode = false

// Reserved names
const (
	SelfTypeName  = "Self"
	SelfParamName = "self"
	HoleName      = "_"
)

// Standard library package and module vids
const (
	StdPackageName = "std"

	StringTypeVid   = "std::string::String"
	ShowTraitVid    = "std::string::Show"
	CharTypeVid     = "std::char::Char"
	IntTypeVid      = "std::int::Int"
	FloatTypeVid    = "std::float::Float"
	BoolTypeVid     = "std::bool::Bool"
	UnitTypeVid     = "std::unit::Unit"
	NeverTypeVid    = "std::never::Never"
	ListTypeVid     = "std::list::List"
	OptionTypeVid   = "std::option::Option"
	IterTraitVid    = "std::iter::Iter"
	IterableVid     = "std::iter::Iterable"
	UnwrapTraitVid  = "std::unwrap::Unwrap"
	OpModuleVid     = "std::op"
	PanicFnVid      = "std::panic::panic"
	PrintlnFnVid    = "std::io::println"
	OptionSomeVid   = "std::option::Some"
	OptionNoneVid   = "std::option::None"
	IterableIterFn  = "iter"
	IterNextFn      = "next"
	UnwrapBindFn    = "bind"
	ShowMethodName  = "show"
	BoolTrueLexeme  = "true"
	BoolFalseLexeme = "false"
)

// DefaultImports are visible in every module without a `use`.
var DefaultImports = []string{
	OptionTypeVid,
	OptionSomeVid,
	OptionNoneVid,
	IntTypeVid,
	FloatTypeVid,
	BoolTypeVid,
	CharTypeVid,
	StringTypeVid,
	ShowTraitVid,
	UnitTypeVid,
	NeverTypeVid,
	ListTypeVid,
	IterTraitVid,
	IterableVid,
	PrintlnFnVid,
	PanicFnVid,
}

// BinaryOperators maps infix operators to the `std::op` trait method implementing them.
var BinaryOperators = map[string]string{
	"+":  "std::op::Add::add",
	"-":  "std::op::Sub::sub",
	"*":  "std::op::Mul::mul",
	"/":  "std::op::Div::div",
	"^":  "std::op::Exp::exp",
	"%":  "std::op::Rem::rem",
	"==": "std::op::Eq::eq",
	"!=": "std::op::Eq::ne",
	"<":  "std::op::Ord::lt",
	"<=": "std::op::Ord::le",
	">":  "std::op::Ord::gt",
	">=": "std::op::Ord::ge",
	"&&": "std::op::And::and",
	"||": "std::op::Or::or",
}

// UnaryOperators maps prefix operators to their trait method.
var UnaryOperators = map[string]string{
	"-": "std::op::Neg::neg",
	"!": "std::op::Not::not",
}
