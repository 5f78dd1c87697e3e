package analyzer

import (
	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

func (w *walker) checkCondition(cond ast.Expression) {
	t := w.checkExpr(cond)
	if !w.isAssignable(t, boolType()) {
		w.errorf(diagnostics.ErrA002, cond, boolType().String(), t.String())
	}
}

func (w *walker) VisitIfExpr(ie *ast.IfExpr) {
	w.checkCondition(ie.Condition)
	thenType := w.checkBlock(ie.Then, symbols.NewBlockScope(false), nil)
	w.setType(ie, w.branchType(thenType, ie.Else, nil))
}

func (w *walker) VisitIfLetExpr(ie *ast.IfLetExpr) {
	vt := w.checkExpr(ie.Value)
	thenType := w.checkBlock(ie.Then, symbols.NewBlockScope(false), func() {
		w.bindPattern(ie.Pattern, vt, nil)
	})
	w.setType(ie, w.branchType(thenType, ie.Else, nil))
}

// branchType combines the then type with the else block. An if without an
// else is Unit. Branches that do not combine give an unknown type carrying
// both sides.
func (w *walker) branchType(thenType typesystem.Type, elseBlock *ast.Block, prelude func()) typesystem.Type {
	if elseBlock == nil {
		return unitType()
	}
	elseType := w.checkBlock(elseBlock, symbols.NewBlockScope(false), prelude)
	c, ok := w.combine(thenType, elseType)
	if !ok {
		return &typesystem.UnknownType{
			MismatchedBranches: &typesystem.BranchMismatch{Then: thenType, Else: elseType},
		}
	}
	return c
}

func (w *walker) VisitWhileExpr(we *ast.WhileExpr) {
	w.checkCondition(we.Condition)
	w.checkBlock(we.Block, symbols.NewBlockScope(true), nil)
	w.setType(we, unitType())
}

func (w *walker) VisitForExpr(fe *ast.ForExpr) {
	item := w.iterItemType(fe, w.checkExpr(fe.Iterable))
	w.checkBlock(fe.Block, symbols.NewBlockScope(true), func() {
		w.bindPattern(fe.Pattern, item, nil)
	})
	w.setType(fe, unitType())
}

// iterItemType returns T for an iterable implementing Iter<T> or
// Iterable<T>.
func (w *walker) iterItemType(fe *ast.ForExpr, t typesystem.Type) typesystem.Type {
	if typesystem.IsUnknown(t) || typesystem.IsHole(t) {
		return typesystem.Unknown()
	}
	for _, traitName := range []string{config.IterTraitVid, config.IterableVid} {
		traitVid := vid.FromString(traitName)
		sup, ok := w.ConcreteSupertype(t, traitVid).(*typesystem.VidType)
		if !ok {
			continue
		}
		if impl := w.resolveTypeImpl(t, traitVid); impl != nil {
			w.Info.Impls[fe] = impl
			w.Module().AddRelImport(impl)
		}
		if len(sup.TypeArgs) == 0 {
			return typesystem.Unknown()
		}
		return sup.TypeArgs[0]
	}
	w.errorf(diagnostics.ErrA002, fe.Iterable, "Iterable", t.String())
	return typesystem.Unknown()
}

func (w *walker) VisitMatchExpr(me *ast.MatchExpr) {
	vt := w.checkExpr(me.Value)
	errorsBefore := len(w.Errors)

	var clauseTypes []typesystem.Type
	for _, clause := range me.Clauses {
		ct := w.checkBlock(clause.Block, symbols.NewBlockScope(false), func() {
			for _, p := range clause.Patterns {
				w.bindPattern(p, vt, nil)
			}
			if clause.Guard != nil {
				w.checkCondition(clause.Guard)
			}
		})
		clauseTypes = append(clauseTypes, ct)
	}

	var result typesystem.Type = neverType()
	for _, ct := range clauseTypes {
		c, ok := w.combine(result, ct)
		if !ok {
			result = &typesystem.UnknownType{MismatchedMatchClauses: clauseTypes}
			break
		}
		result = c
	}
	if len(me.Clauses) == 0 {
		result = unitType()
	}

	if len(w.Errors) == errorsBefore && !w.Silent {
		if witness, missing := w.checkExhaustive(me, vt); missing {
			w.errorf(diagnostics.ErrA011, me, witness)
		}
	}
	w.setType(me, result)
}

func (w *walker) VisitClosureExpr(ce *ast.ClosureExpr) {
	w.closureScopes[ce] = append([]symbols.Scope(nil), w.scopes()...)
	if ce.FullyTyped() {
		params := make([]typesystem.Type, len(ce.Params))
		for i, p := range ce.Params {
			params[i] = w.typeToVirtual(p.Type)
		}
		w.checkClosureBody(ce, params, w.typeToVirtual(ce.ReturnType))
		return
	}
	w.setType(ce, &typesystem.MalleableType{Closure: ce})
	if bs := w.blockScope(); bs != nil {
		bs.Malleable = append(bs.Malleable, ce)
	}
}

// retypeMalleable fixes the type of a malleable closure from the function
// type expected at its first use. Annotated parameters keep their
// annotation; a return type still unknown after substitution is inferred
// from the body.
func (w *walker) retypeMalleable(ce *ast.ClosureExpr, expected *typesystem.FnType) typesystem.Type {
	if t, ok := w.Info.Types[ce]; ok {
		if _, still := t.(*typesystem.MalleableType); !still {
			return t
		}
	}
	if len(expected.Params) != len(ce.Params) {
		w.errorf(diagnostics.ErrA004, ce, len(expected.Params), len(ce.Params))
		w.setType(ce, typesystem.Unknown())
		return typesystem.Unknown()
	}

	m := w.Module()
	saved := m.ScopeStack
	if scopes, ok := w.closureScopes[ce]; ok {
		m.ScopeStack = scopes
	}
	defer func() { m.ScopeStack = saved }()

	params := make([]typesystem.Type, len(ce.Params))
	for i, p := range ce.Params {
		if p.Type != nil {
			params[i] = w.typeToVirtual(p.Type)
		} else {
			params[i] = expected.Params[i]
		}
	}
	var ret typesystem.Type
	if ce.ReturnType != nil {
		ret = w.typeToVirtual(ce.ReturnType)
	} else {
		ret = expected.Return
	}
	return w.checkClosureBody(ce, params, ret)
}

// checkClosureBody checks the closure with known parameter types. A hole or
// unknown return type is inferred from the body and its returns.
func (w *walker) checkClosureBody(ce *ast.ClosureExpr, params []typesystem.Type, ret typesystem.Type) typesystem.Type {
	fn := &typesystem.FnType{Params: params, Return: ret}
	w.setType(ce, fn)

	fs := &symbols.FnScope{Definitions: symbols.DefinitionMap{}, Fn: ce}
	w.pushScope(fs)
	defer w.popScope()
	for i, p := range ce.Params {
		w.bindParam(p, params[i])
	}

	infer := ret == nil || typesystem.IsHole(ret) || typesystem.IsUnknown(ret)
	if !infer {
		w.checkFnBody(ce.Block, fs, ret)
		return fn
	}

	blockType := w.checkBlock(ce.Block, symbols.NewBlockScope(false), nil)
	inferred := blockType
	for _, r := range fs.Returns {
		var rt typesystem.Type = unitType()
		if r != nil {
			rt = w.typeOf(r)
		}
		c, ok := w.combine(inferred, rt)
		if !ok {
			w.errorf(diagnostics.ErrA002, r, inferred.String(), rt.String())
			continue
		}
		inferred = c
	}
	fn.Return = inferred
	return fn
}
