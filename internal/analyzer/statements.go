package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
)

// checkBlock checks the statements of b inside scope and returns the type of
// the block: Never when it terminates, otherwise the type of the last
// statement, or Unit when empty. prelude runs after the scope is pushed and
// may bind pattern names into it.
func (w *walker) checkBlock(b *ast.Block, scope *symbols.BlockScope, prelude func()) typesystem.Type {
	w.pushScope(scope)
	defer w.popScope()
	if prelude != nil {
		prelude()
	}

	var last typesystem.Type = unitType()
	if b == nil {
		return last
	}
	for _, stmt := range b.Statements {
		if scope.AllBranchesReturned {
			w.warnf(diagnostics.WarnW001, stmt)
		}
		w.checkStatement(stmt)
		last = w.statementType(stmt)
		if isNever(last) {
			scope.AllBranchesReturned = true
		}
	}

	w.reportMalleable(scope)

	if scope.AllBranchesReturned {
		return neverType()
	}
	return last
}

func (w *walker) checkStatement(stmt ast.Statement) {
	switch stmt.(type) {
	case *ast.TraitDef, *ast.ImplDef, *ast.TypeDef:
		w.errorf(diagnostics.ErrA013, stmt, fmt.Sprintf("`%s` definition is only allowed at top level", describeStatement(stmt)))
		return
	}
	stmt.Accept(w)
}

// statementType is the value a statement contributes to its block.
func (w *walker) statementType(stmt ast.Statement) typesystem.Type {
	switch stmt.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt:
		return neverType()
	case ast.Expression:
		return w.typeOf(stmt)
	}
	return unitType()
}

// reportMalleable reports closures created in scope whose type was never
// fixed by a call site.
func (w *walker) reportMalleable(scope *symbols.BlockScope) {
	for _, c := range scope.Malleable {
		if _, still := w.typeOf(c).(*typesystem.MalleableType); still {
			w.errorf(diagnostics.ErrA012, c, closureSignature(c))
			w.setType(c, typesystem.Unknown())
		}
	}
	scope.Malleable = nil
}

func closureSignature(c *ast.ClosureExpr) string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		s := "_"
		if n, ok := p.Pattern.(*ast.Name); ok {
			s = n.Value
		}
		if p.Type != nil {
			s += ": " + p.Type.String()
		}
		params[i] = s
	}
	return "|" + strings.Join(params, ", ") + "|"
}

func (w *walker) VisitVarDef(vd *ast.VarDef) {
	if w.Info.checked[vd] {
		return
	}
	w.Info.checked[vd] = true
	w.setType(vd, unitType())

	_, topLevel := w.scope().(*symbols.ModuleScope)
	m := w.Module()
	if topLevel {
		if vd.VarType == nil {
			w.errorf(diagnostics.ErrA013, vd, "top level variable requires a type annotation")
		}
		if vd.Value == nil && !m.Compiled {
			w.errorf(diagnostics.ErrA013, vd, "top level variable requires a value")
		}
	}

	var declared typesystem.Type
	if vd.VarType != nil {
		declared = w.typeToVirtual(vd.VarType)
	}

	var bound typesystem.Type = declared
	if vd.Value != nil && !(topLevel && m.Compiled) {
		t := w.checkExpr(vd.Value)
		if mt, ok := t.(*typesystem.MalleableType); ok {
			if fn, ok := declared.(*typesystem.FnType); ok {
				t = w.retypeMalleable(mt.Closure, fn)
			}
		}
		w.checkTypeUse(vd.Value, t)
		if declared != nil {
			if !w.isAssignable(t, declared) {
				w.errorf(diagnostics.ErrA002, vd.Value, declared.String(), t.String())
			} else {
				w.attachUpcast(vd.Value, t, declared)
			}
		} else {
			bound = t
		}
	}
	if bound == nil {
		bound = typesystem.Unknown()
	}

	w.bindPattern(vd.Pattern, bound, vd)
}

func (w *walker) VisitFnDef(fn *ast.FnDef) {
	w.setType(fn, unitType())
	if w.Info.checked[fn] {
		return
	}
	w.Info.checked[fn] = true

	m := w.Module()
	is := w.instanceScope()
	inTrait := is != nil && is.Rel != nil && is.Rel.IsTraitDef()

	if _, block := w.scope().(*symbols.BlockScope); block {
		w.define(&symbols.FnDef{Fn: fn})
	}

	fs := &symbols.FnScope{Definitions: symbols.GenericDefs(fn.Generics), Fn: fn}
	w.pushScope(fs)
	defer w.popScope()

	sig := w.fnSignature(fn)

	if fn.Pub && inTrait {
		w.warnf(diagnostics.WarnW004, fn, fmt.Sprintf("trait method `%s` is always public", fn.Name.Value))
	}
	if fn.Block == nil {
		if !m.Compiled && !inTrait {
			w.warnf(diagnostics.WarnW005, fn, fmt.Sprintf("fn `%s` has no body -> must be native", fn.Name.Value))
		}
		return
	}
	if m.Compiled {
		return
	}

	for i, p := range fn.Params {
		w.bindParam(p, sig.Params[i])
	}
	w.checkFnBody(fn.Block, fs, sig.Return)
}

// checkFnBody checks a function or closure body against its declared return
// type, including every early return.
func (w *walker) checkFnBody(body *ast.Block, fs *symbols.FnScope, ret typesystem.Type) typesystem.Type {
	blockType := w.checkBlock(body, symbols.NewBlockScope(false), nil)

	for _, r := range fs.Returns {
		var rt typesystem.Type = unitType()
		var at ast.Node = fs.Fn
		if r != nil {
			rt = w.typeOf(r)
			at = r
		}
		w.checkTypeUse(at, rt)
		if !w.isAssignable(rt, ret) {
			w.errorf(diagnostics.ErrA002, at, ret.String(), rt.String())
		}
	}

	if !isUnit(ret) && !w.isAssignable(blockType, ret) {
		var at ast.Node = body
		if n := len(body.Statements); n > 0 {
			at = body.Statements[n-1]
		}
		w.checkTypeUse(at, blockType)
		w.errorf(diagnostics.ErrA002, at, ret.String(), blockType.String())
	}
	return blockType
}

func (w *walker) bindParam(p *ast.Param, t typesystem.Type) {
	w.bindPattern(p.Pattern, t, nil)
}

func (w *walker) VisitTypeDef(td *ast.TypeDef) {
	w.setType(td, unitType())
	if w.Info.checked[td] {
		return
	}
	w.Info.checked[td] = true

	typeVid := w.defVids[td]
	w.pushScope(&symbols.TypeScope{Definitions: symbols.GenericDefs(td.Generics), Def: td, Vid: typeVid})
	defer w.popScope()

	generics := w.genericTypes(td.Generics)
	args := make([]typesystem.Type, len(generics))
	for i, g := range generics {
		args[i] = g
	}
	self := &typesystem.VidType{Vid: typeVid, TypeArgs: args}

	seenVariants := map[string]bool{}
	for _, v := range td.Variants {
		if seenVariants[v.Name.Value] {
			w.errorf(diagnostics.ErrA005, v, fmt.Sprintf("duplicate variant `%s`", v.Name.Value))
		}
		seenVariants[v.Name.Value] = true

		sig := &typesystem.FnType{Generics: generics, Return: self}
		seenFields := map[string]bool{}
		for _, f := range v.Fields {
			if seenFields[f.Name.Value] {
				w.errorf(diagnostics.ErrA005, f, fmt.Sprintf("duplicate field `%s`", f.Name.Value))
			}
			seenFields[f.Name.Value] = true
			sig.Params = append(sig.Params, w.typeToVirtual(f.Type))
		}
		w.Info.Constructors[v] = sig
	}
}

func (w *walker) VisitReturnStmt(rs *ast.ReturnStmt) {
	w.setType(rs, neverType())
	if rs.Value != nil {
		w.checkExpr(rs.Value)
	}
	fs := w.fnScope()
	if fs == nil {
		w.errorf(diagnostics.ErrA009, rs, "return outside of function")
		return
	}
	fs.Returns = append(fs.Returns, rs.Value)
	if bs := w.blockScope(); bs != nil {
		bs.AllBranchesReturned = true
	}
}

func (w *walker) VisitBreakStmt(bs *ast.BreakStmt) {
	w.setType(bs, neverType())
	for _, frame := range w.unwindScope() {
		switch f := frame.(type) {
		case *symbols.BlockScope:
			if f.IsLoop {
				if inner := w.blockScope(); inner != nil {
					inner.AllBranchesReturned = true
				}
				return
			}
		case *symbols.FnScope:
			if f.IsClosure() && w.loopOutside(f) {
				w.errorf(diagnostics.ErrA009, bs, "cannot break from within the closure")
			} else {
				w.errorf(diagnostics.ErrA009, bs, "break outside of loop")
			}
			return
		}
	}
	w.errorf(diagnostics.ErrA009, bs, "break outside of loop")
}

// loopOutside reports whether a loop frame encloses the function frame fs.
func (w *walker) loopOutside(fs *symbols.FnScope) bool {
	past := false
	for _, frame := range w.unwindScope() {
		if frame == symbols.Scope(fs) {
			past = true
			continue
		}
		if bs, ok := frame.(*symbols.BlockScope); ok && past && bs.IsLoop {
			return true
		}
	}
	return false
}

// checkTypeUse reports an unknown type that carries the branch types which
// failed to combine, at the point where a value of that type is consumed.
func (w *walker) checkTypeUse(node ast.Node, t typesystem.Type) {
	u, ok := t.(*typesystem.UnknownType)
	if !ok {
		return
	}
	switch {
	case u.MismatchedBranches != nil:
		mb := u.MismatchedBranches
		w.errorf(diagnostics.ErrA003, node,
			fmt.Sprintf("if branches have incompatible types `%s` and `%s`", mb.Then, mb.Else))
	case len(u.MismatchedMatchClauses) > 0:
		parts := make([]string, len(u.MismatchedMatchClauses))
		for i, c := range u.MismatchedMatchClauses {
			parts[i] = "`" + c.String() + "`"
		}
		w.errorf(diagnostics.ErrA003, node,
			"match clauses have incompatible types "+strings.Join(parts, ", "))
	}
}
