package analyzer

import (
	"fmt"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// checkExpr dispatches e and returns the type attached to it.
func (w *walker) checkExpr(e ast.Expression) typesystem.Type {
	if e == nil {
		return unitType()
	}
	e.Accept(w)
	if _, ok := w.Info.Types[e]; !ok {
		w.setType(e, typesystem.Unknown())
	}
	return w.typeOf(e)
}

func (w *walker) VisitIdentifier(id *ast.Identifier) {
	v := vid.New(id.Path()...)
	ref := w.resolveVid(v, symbols.NameKind, symbols.FnKind, symbols.VariantKind, symbols.MethodKind)
	if ref == nil {
		w.errorf(diagnostics.ErrA001, id, fmt.Sprintf("`%s`", id))
		w.setType(id, typesystem.Unknown())
		return
	}
	w.Info.Refs[id] = ref
	w.checkAccess(id, ref)

	t := w.defType(ref)
	if md, ok := ref.Def.(*symbols.MethodDef); ok {
		if md.Rel != nil && md.Rel.IsTraitDef() {
			t = typesystem.ReplaceSelf(t, w.resolveSelf(typesystem.Self))
		}
	}

	if len(id.TypeArgs) > 0 {
		fn, ok := t.(*typesystem.FnType)
		if !ok {
			w.errorf(diagnostics.ErrA014, id, fmt.Sprintf("`%s` does not accept type arguments", id))
		} else {
			if len(id.TypeArgs) != len(fn.Generics) {
				w.errorf(diagnostics.ErrA014, id,
					fmt.Sprintf("expected %d type arguments, got %d", len(fn.Generics), len(id.TypeArgs)))
			}
			args := make([]typesystem.Type, len(id.TypeArgs))
			for i, a := range id.TypeArgs {
				args[i] = w.typeToVirtual(a)
			}
			w.recordCallGenerics(id, fn.Generics, args)
			t = typesystem.Resolve(fn, typesystem.FnTypeArgMap(fn, args))
		}
	}
	w.setType(id, t)
}

// checkAccess reports a reference to a private definition of another module.
func (w *walker) checkAccess(node ast.Node, ref *Ref) {
	if ref.Module == nil || ref.Module == w.Module() {
		return
	}
	switch d := ref.Def.(type) {
	case *symbols.FnDef:
		if !d.Fn.Pub {
			w.errorf(diagnostics.ErrA010, node, "fn", ref.Vid.String())
		}
	case *symbols.NameDef:
		if d.VarDef != nil && !d.VarDef.Pub {
			w.errorf(diagnostics.ErrA010, node, "variable", ref.Vid.String())
		}
	case *symbols.MethodDef:
		if d.Rel != nil && !d.Rel.IsTraitDef() && !d.Rel.ImplementsTrait() && !d.Fn.Pub {
			w.errorf(diagnostics.ErrA010, node, "method", ref.Vid.String())
		}
	}
}

// recordCallGenerics attaches the trait implementations that explicit type
// arguments select for bounded generics.
func (w *walker) recordCallGenerics(node ast.Node, generics []*typesystem.Generic, args []typesystem.Type) {
	var out []GenericImpls
	for i, g := range generics {
		if i >= len(args) || len(g.Bounds) == 0 {
			continue
		}
		gi := GenericImpls{Generic: g}
		for _, traitVid := range w.targetTraits(g) {
			if rel := w.resolveTypeImpl(args[i], traitVid); rel != nil {
				gi.Impls = append(gi.Impls, rel)
				w.Module().AddRelImport(rel)
			}
		}
		out = append(out, gi)
	}
	if len(out) > 0 {
		w.Info.CallGenerics[node] = out
	}
}

func (w *walker) VisitStringLiteral(sl *ast.StringLiteral) { w.setType(sl, stringType()) }
func (w *walker) VisitCharLiteral(cl *ast.CharLiteral)     { w.setType(cl, stdType(config.CharTypeVid)) }
func (w *walker) VisitIntLiteral(il *ast.IntLiteral)       { w.setType(il, stdType(config.IntTypeVid)) }
func (w *walker) VisitFloatLiteral(fl *ast.FloatLiteral)   { w.setType(fl, stdType(config.FloatTypeVid)) }
func (w *walker) VisitBoolLiteral(bl *ast.BoolLiteral)     { w.setType(bl, boolType()) }

func (w *walker) VisitStringInterpolation(si *ast.StringInterpolation) {
	show := stdType(config.ShowTraitVid)
	for _, part := range si.Parts {
		if _, lit := part.(*ast.StringLiteral); lit {
			w.checkExpr(part)
			continue
		}
		t := w.checkExpr(part)
		if !w.isAssignable(t, show) {
			w.errorf(diagnostics.ErrA002, part, show.String(), t.String())
			continue
		}
		w.attachUpcast(part, t, show)
	}
	w.setType(si, stringType())
}

func (w *walker) VisitListExpr(le *ast.ListExpr) {
	var elem typesystem.Type = typesystem.Hole
	for _, item := range le.Items {
		t := w.checkExpr(item)
		c, ok := w.combine(elem, t)
		if !ok {
			w.errorf(diagnostics.ErrA002, item, elem.String(), t.String())
			continue
		}
		elem = c
	}
	w.setType(le, stdType(config.ListTypeVid, elem))
}

func (w *walker) VisitUnaryExpr(ue *ast.UnaryExpr) {
	method, ok := config.UnaryOperators[ue.Op]
	if !ok {
		w.checkExpr(ue.Operand)
		w.errorf(diagnostics.ErrA001, ue, fmt.Sprintf("operator `%s`", ue.Op))
		w.setType(ue, typesystem.Unknown())
		return
	}
	w.setType(ue, w.checkOperator(ue, method, []ast.Expression{ue.Operand}))
}

func (w *walker) VisitBinaryExpr(be *ast.BinaryExpr) {
	if be.Op == ast.OpAssign {
		w.checkAssign(be)
		return
	}
	method, ok := config.BinaryOperators[be.Op]
	if !ok {
		w.checkExpr(be.Left)
		w.checkExpr(be.Right)
		w.errorf(diagnostics.ErrA001, be, fmt.Sprintf("operator `%s`", be.Op))
		w.setType(be, typesystem.Unknown())
		return
	}
	w.setType(be, w.checkOperator(be, method, []ast.Expression{be.Left, be.Right}))
}

func (w *walker) checkAssign(be *ast.BinaryExpr) {
	w.setType(be, unitType())
	switch be.Left.(type) {
	case *ast.Identifier, *ast.FieldAccessExpr:
	default:
		w.checkExpr(be.Left)
		w.checkExpr(be.Right)
		w.errorf(diagnostics.ErrA013, be.Left, "invalid assignment target")
		return
	}
	lt := w.checkExpr(be.Left)
	rt := w.checkExpr(be.Right)
	if mt, ok := rt.(*typesystem.MalleableType); ok {
		if fn, ok := lt.(*typesystem.FnType); ok {
			rt = w.retypeMalleable(mt.Closure, fn)
		}
	}
	w.checkTypeUse(be.Right, rt)
	if !w.isAssignable(rt, lt) {
		w.errorf(diagnostics.ErrA002, be.Right, lt.String(), rt.String())
		return
	}
	w.attachUpcast(be.Right, rt, lt)
}

// checkOperator types an operator application as a call of the `std::op`
// trait method it maps to, with the first operand as receiver.
func (w *walker) checkOperator(node ast.Node, method string, operands []ast.Expression) typesystem.Type {
	types := make([]typesystem.Type, len(operands))
	for i, o := range operands {
		types[i] = w.checkExpr(o)
	}

	ref := w.resolveVid(vid.FromString(method), symbols.MethodKind)
	if ref == nil {
		w.errorf(diagnostics.ErrA001, node, fmt.Sprintf("`%s`", method))
		return typesystem.Unknown()
	}
	md := ref.Def.(*symbols.MethodDef)
	rel := md.Rel
	sig, ok := w.Info.Signatures[md.Fn]
	if !ok {
		return typesystem.Unknown()
	}

	left := w.resolveSelf(types[0])
	if typesystem.IsUnknown(left) {
		return typesystem.Unknown()
	}
	if !w.isAssignable(left, rel.ForType) {
		w.errorf(diagnostics.ErrA002, operands[0], rel.ForType.String(), left.String())
		return typesystem.Unknown()
	}
	if len(sig.Params) != len(operands) {
		w.errorf(diagnostics.ErrA004, node, len(sig.Params), len(operands))
		return typesystem.Unknown()
	}

	maps := []typesystem.GenericMap{
		typesystem.MapOverStructure(left, rel.ForType, w),
		typesystem.FnArgMap(sig, types, w),
	}
	for i := 1; i < len(operands); i++ {
		param := typesystem.Resolve(sig.Params[i], maps...)
		if !w.isAssignable(types[i], param) {
			w.errorf(diagnostics.ErrA002, operands[i], param.String(), types[i].String())
		}
	}

	if impl := w.resolveTypeImpl(left, rel.ImplVid); impl != nil {
		w.Info.Impls[node] = impl
		w.Module().AddRelImport(impl)
	}
	return w.eraseForeignGenerics(typesystem.Resolve(sig.Return, maps...))
}

func (w *walker) VisitFieldAccessExpr(fa *ast.FieldAccessExpr) {
	w.setType(fa, w.checkFieldAccess(fa))
}

// checkFieldAccess types recv.field. The field must exist in every variant
// of the receiver's type, with the same type in each.
func (w *walker) checkFieldAccess(fa *ast.FieldAccessExpr) typesystem.Type {
	rt := w.resolveSelf(w.checkExpr(fa.Receiver))
	if typesystem.IsUnknown(rt) || typesystem.IsHole(rt) {
		return typesystem.Unknown()
	}
	name := fa.Field.Value
	vt, ok := rt.(*typesystem.VidType)
	if !ok {
		w.errorf(diagnostics.ErrA005, fa.Field, fmt.Sprintf("field `%s` not found in type `%s`", name, rt))
		return typesystem.Unknown()
	}
	ref := w.resolveQualified(vt.Vid, []symbols.DefKind{symbols.TypeKind}, 0)
	if ref == nil {
		w.errorf(diagnostics.ErrA005, fa.Field, fmt.Sprintf("field `%s` not found in type `%s`", name, rt))
		return typesystem.Unknown()
	}
	td := ref.Def.(*symbols.TypeDef).Type

	var fieldType typesystem.Type
	for _, v := range td.Variants {
		idx := fieldIndex(v, name)
		if idx < 0 {
			w.errorf(diagnostics.ErrA005, fa.Field,
				fmt.Sprintf("field `%s` not found in variant `%s`", name, v.Name.Value))
			return typesystem.Unknown()
		}
		sig := w.variantSignature(&symbols.VariantDef{Variant: v, TypeDef: td})
		if idx >= len(sig.Params) {
			return typesystem.Unknown()
		}
		m := typesystem.MapOverStructure(vt, sig.Return, nil)
		ft := w.eraseForeignGenerics(typesystem.Resolve(sig.Params[idx], m))
		if fieldType != nil && !typesystem.Equal(fieldType, ft) {
			w.errorf(diagnostics.ErrA005, fa.Field,
				fmt.Sprintf("field `%s` has different types across variants of `%s`", name, td.Name.Value))
			return typesystem.Unknown()
		}
		fieldType = ft
	}
	if fieldType == nil {
		w.errorf(diagnostics.ErrA005, fa.Field, fmt.Sprintf("field `%s` not found in type `%s`", name, rt))
		return typesystem.Unknown()
	}
	return fieldType
}

func (w *walker) VisitUnwrapExpr(ue *ast.UnwrapExpr) {
	w.setType(ue, w.checkUnwrap(ue, ue.Operand))
}

func (w *walker) VisitBindExpr(be *ast.BindExpr) {
	t := w.checkUnwrap(be, be.Operand)
	fs := w.fnScope()
	if fs == nil {
		w.errorf(diagnostics.ErrA009, be, "`?` outside of function")
	} else {
		fs.Returns = append(fs.Returns, be.Operand)
	}
	w.setType(be, t)
}

// checkUnwrap returns the item type T of an operand implementing
// std::unwrap::Unwrap<T>.
func (w *walker) checkUnwrap(node ast.Node, operand ast.Expression) typesystem.Type {
	t := w.checkExpr(operand)
	if typesystem.IsUnknown(t) {
		return typesystem.Unknown()
	}
	unwrapVid := vid.FromString(config.UnwrapTraitVid)
	sup, ok := w.ConcreteSupertype(t, unwrapVid).(*typesystem.VidType)
	if !ok || len(sup.TypeArgs) == 0 {
		w.errorf(diagnostics.ErrA002, operand, "Unwrap", t.String())
		return typesystem.Unknown()
	}
	if impl := w.resolveTypeImpl(t, unwrapVid); impl != nil {
		w.Info.Impls[node] = impl
		w.Module().AddRelImport(impl)
	}
	return sup.TypeArgs[0]
}
