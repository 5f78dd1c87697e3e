package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/vid"
)

// walker implements ast.Visitor. Every Visit method attaches the node's type
// to the side table and reports problems through the shared Context.
type walker struct {
	*Context
}

var _ ast.Visitor = (*walker)(nil)

// Analyze checks every module of the context's packages. Diagnostics are
// accumulated in ctx.Errors and ctx.Warnings; results are attached to ctx.Info.
func Analyze(ctx *Context) {
	w := &walker{Context: ctx}
	w.prepare()
	for _, p := range ctx.Packages {
		for _, m := range p.Modules {
			w.checkModule(m)
		}
	}
	ctx.logf("analyzed %d packages: %d errors, %d warnings", len(ctx.Packages), len(ctx.Errors), len(ctx.Warnings))
}

// prepare runs the forward declaration pass of every module and registers
// every instance relation.
func (w *walker) prepare() {
	for _, p := range w.Packages {
		for _, m := range p.Modules {
			w.prepareModule(m)
		}
	}
	w.buildRelations()
}

// checkModule fully checks m unless it is already checked. It returns false
// when m is already being checked further up the stack, after reporting the
// circular reference.
func (w *walker) checkModule(m *symbols.Module) bool {
	if m.Checked {
		return true
	}
	if m.Checking {
		w.errorf(diagnostics.ErrA006, w.currentUseNode(), w.moduleChain(m))
		return false
	}

	w.logf("checking module %s", m.Vid)
	m.Checking = true
	w.withModule(m, func() {
		if m.Program == nil {
			return
		}
		for _, use := range m.Program.Uses {
			w.checkUseExpr(use)
		}
		if m.Program.Block == nil {
			return
		}
		for _, stmt := range m.Program.Block.Statements {
			w.checkTopLevelStatement(stmt)
		}
	})
	m.Checking = false
	m.Checked = true
	return true
}

// moduleChain renders the cycle that leads back to m: a -> b -> a
func (w *walker) moduleChain(m *symbols.Module) string {
	start := 0
	for i := len(w.ModuleStack) - 1; i >= 0; i-- {
		if w.ModuleStack[i] == m {
			start = i
			break
		}
	}
	var names []string
	for _, sm := range w.ModuleStack[start:] {
		if len(names) > 0 && names[len(names)-1] == sm.Vid.String() {
			continue
		}
		names = append(names, sm.Vid.String())
	}
	names = append(names, m.Vid.String())
	return strings.Join(names, " -> ")
}

func (w *walker) checkTopLevelStatement(stmt ast.Statement) {
	switch stmt.(type) {
	case *ast.VarDef, *ast.FnDef, *ast.TraitDef, *ast.ImplDef, *ast.TypeDef:
		stmt.Accept(w)
	default:
		w.errorf(diagnostics.ErrA013, stmt, fmt.Sprintf("top level `%s` is not allowed", describeStatement(stmt)))
	}
}

// describeStatement names a statement kind for diagnostics.
func describeStatement(s ast.Statement) string {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return "return"
	case *ast.BreakStmt:
		return "break"
	case *ast.Identifier:
		return n.String()
	case *ast.CallExpr:
		return "call"
	case *ast.MethodCallExpr:
		return "method call"
	case *ast.BinaryExpr:
		return n.Op
	case *ast.IfExpr, *ast.IfLetExpr:
		return "if"
	case *ast.WhileExpr:
		return "while"
	case *ast.ForExpr:
		return "for"
	case *ast.MatchExpr:
		return "match"
	case *ast.ClosureExpr:
		return "closure"
	case *ast.TraitDef:
		return "trait"
	case *ast.ImplDef:
		return "impl"
	case *ast.TypeDef:
		return "type"
	}
	return "expression"
}

// checkUseExpr validates one `use` tree: every path must resolve, a module
// must not import itself and a path must not be imported twice. Imported
// modules are checked before the importing module continues.
func (w *walker) checkUseExpr(use *ast.UseExpr) {
	m := w.Module()
	for _, leaf := range use.Flatten() {
		v := vid.New(leaf.Names...)
		node := leaf.Node
		if node == nil {
			continue
		}

		if v.HasPrefix(m.Vid) {
			w.warnf(diagnostics.WarnW002, node)
			continue
		}
		if w.isDuplicateImport(m, v, node) {
			w.warnf(diagnostics.WarnW003, node)
			continue
		}

		if w.findPackage(v.First()) == nil {
			w.errorf(diagnostics.ErrA001, node, fmt.Sprintf("package `%s`", v.First()))
			continue
		}

		target := w.importedModule(v)
		if target != nil && target != m {
			w.useStack = append(w.useStack, node)
			ok := w.checkModule(target)
			w.useStack = w.useStack[:len(w.useStack)-1]
			if !ok {
				continue
			}
		}

		if w.resolveQualified(v, nil, 0) == nil {
			w.errorf(diagnostics.ErrA001, node, fmt.Sprintf("`%s`", v))
		}
	}
}

// isDuplicateImport reports whether v was already imported by an earlier
// use path of m.
func (w *walker) isDuplicateImport(m *symbols.Module, v vid.Vid, node *ast.Name) bool {
	for _, list := range [][]symbols.Import{m.References, m.ReExports} {
		for _, imp := range list {
			if imp.Node == node {
				return false
			}
			if imp.Vid.Equal(v) {
				return true
			}
		}
	}
	return false
}

// importedModule finds the module a use path points into.
func (w *walker) importedModule(v vid.Vid) *symbols.Module {
	for drop := 0; drop <= 2 && drop < v.Len(); drop++ {
		if m := w.findModule(v.Drop(drop)); m != nil {
			return m
		}
	}
	return nil
}

func (w *walker) currentUseNode() ast.Node {
	if len(w.useStack) == 0 {
		return nil
	}
	return w.useStack[len(w.useStack)-1]
}

// SortedErrors returns the accumulated errors sorted by file and position.
func (c *Context) SortedErrors() []*diagnostics.DiagnosticError {
	return sortDiagnostics(c.Errors)
}

// SortedWarnings is SortedErrors for warnings.
func (c *Context) SortedWarnings() []*diagnostics.DiagnosticError {
	return sortDiagnostics(c.Warnings)
}

func sortDiagnostics(ds []*diagnostics.DiagnosticError) []*diagnostics.DiagnosticError {
	result := make([]*diagnostics.DiagnosticError, len(ds))
	copy(result, ds)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		if result[i].Token.Line != result[j].Token.Line {
			return result[i].Token.Line < result[j].Token.Line
		}
		return result[i].Token.Column < result[j].Token.Column
	})
	return result
}
