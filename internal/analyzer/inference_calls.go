package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/noisec/internal/ast"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/diagnostics"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/typesystem"
	"github.com/funvibe/noisec/internal/vid"
)

// settled returns the fixed type of a malleable closure that has already
// been retyped at an earlier use.
func (w *walker) settled(t typesystem.Type) typesystem.Type {
	mt, ok := t.(*typesystem.MalleableType)
	if !ok {
		return t
	}
	if ct, ok := w.Info.Types[mt.Closure]; ok {
		if _, still := ct.(*typesystem.MalleableType); !still {
			return ct
		}
	}
	return t
}

func (w *walker) VisitCallExpr(ce *ast.CallExpr) {
	calleeType := w.settled(w.checkExpr(ce.Callee))

	if ref := w.Info.Refs[ce.Callee]; ref != nil {
		if vd, ok := ref.Def.(*symbols.VariantDef); ok {
			w.setType(ce, w.checkVariantCall(ce, vd, calleeType))
			return
		}
	}

	args := make([]ast.Expression, len(ce.Args))
	argTypes := make([]typesystem.Type, len(ce.Args))
	for i, a := range ce.Args {
		if a.Name != nil {
			w.errorf(diagnostics.ErrA005, a, fmt.Sprintf("unexpected named argument `%s`", a.Name.Value))
		}
		args[i] = a.Value
		argTypes[i] = w.checkExpr(a.Value)
	}

	if typesystem.IsUnknown(calleeType) || typesystem.IsHole(calleeType) {
		w.setType(ce, typesystem.Unknown())
		return
	}
	if mt, ok := calleeType.(*typesystem.MalleableType); ok {
		params := make([]typesystem.Type, len(argTypes))
		for i, t := range argTypes {
			params[i] = w.settled(t)
		}
		calleeType = w.retypeMalleable(mt.Closure, &typesystem.FnType{Params: params, Return: typesystem.Hole})
	}
	sig, ok := calleeType.(*typesystem.FnType)
	if !ok {
		if !typesystem.IsUnknown(calleeType) {
			w.errorf(diagnostics.ErrA007, ce.Callee, calleeType.String())
		}
		w.setType(ce, typesystem.Unknown())
		return
	}
	if len(sig.Params) != len(args) {
		w.errorf(diagnostics.ErrA004, ce, len(sig.Params), len(args))
		w.setType(ce, typesystem.Unknown())
		return
	}

	ret, maps := w.checkCallArgs(ce, sig, nil, args, argTypes)
	w.recordStaticMethodImpl(ce, maps)
	w.setType(ce, ret)
}

// recordStaticMethodImpl attaches the implementation selected for a trait
// method called by path, such as `Show::show(x)`.
func (w *walker) recordStaticMethodImpl(ce *ast.CallExpr, maps []typesystem.GenericMap) {
	ref := w.Info.Refs[ce.Callee]
	if ref == nil {
		return
	}
	md, ok := ref.Def.(*symbols.MethodDef)
	if !ok || md.Rel == nil || !md.Rel.IsTraitDef() {
		return
	}
	self := w.resolveSelf(typesystem.Resolve(typesystem.Self, maps...))
	if impl := w.resolveTypeImpl(self, md.Rel.ImplVid); impl != nil {
		w.Info.Impls[ce] = impl
		w.Module().AddRelImport(impl)
	}
}

// checkCallArgs checks already typed arguments against sig. pre holds
// bindings known before the arguments are looked at, such as the receiver.
// Malleable closures are retyped from their parameter, with callee generics
// not yet bound erased to holes. It returns the instantiated return type.
func (w *walker) checkCallArgs(call ast.Node, sig *typesystem.FnType, pre []typesystem.GenericMap,
	args []ast.Expression, argTypes []typesystem.Type) (typesystem.Type, []typesystem.GenericMap) {

	for i := range argTypes {
		argTypes[i] = w.settled(argTypes[i])
	}
	maps := append(append([]typesystem.GenericMap(nil), pre...), typesystem.FnArgMap(sig, argTypes, w))

	retyped := false
	for i, t := range argTypes {
		mt, ok := t.(*typesystem.MalleableType)
		if !ok {
			continue
		}
		expected, ok := w.eraseForeignGenerics(typesystem.Resolve(sig.Params[i], maps...)).(*typesystem.FnType)
		if !ok {
			continue
		}
		argTypes[i] = w.retypeMalleable(mt.Closure, expected)
		retyped = true
	}
	if retyped {
		maps = append(append([]typesystem.GenericMap(nil), pre...), typesystem.FnArgMap(sig, argTypes, w))
	}

	for i, arg := range args {
		param := typesystem.Resolve(sig.Params[i], maps...)
		w.checkTypeUse(arg, argTypes[i])
		if !w.isAssignable(argTypes[i], param) {
			w.errorf(diagnostics.ErrA002, arg, param.String(), argTypes[i].String())
			continue
		}
		w.attachUpcast(arg, argTypes[i], sig.Params[i])
	}

	if _, explicit := w.Info.CallGenerics[call]; !explicit && len(sig.Generics) > 0 {
		inferred := make([]typesystem.Type, len(sig.Generics))
		for i, g := range sig.Generics {
			inferred[i] = typesystem.Resolve(g, maps...)
		}
		w.recordCallGenerics(call, sig.Generics, inferred)
	}

	return w.eraseForeignGenerics(typesystem.Resolve(sig.Return, maps...)), maps
}

// checkVariantCall checks a constructor call. When every argument names a
// field, either explicitly or as a bare identifier with the field's name,
// arguments are put back in field order. Otherwise they bind by position.
func (w *walker) checkVariantCall(ce *ast.CallExpr, vd *symbols.VariantDef, calleeType typesystem.Type) typesystem.Type {
	w.Info.Variants[ce] = vd

	argTypes := make(map[*ast.Arg]typesystem.Type, len(ce.Args))
	for _, a := range ce.Args {
		argTypes[a] = w.checkExpr(a.Value)
	}

	sig, ok := calleeType.(*typesystem.FnType)
	if !ok {
		return typesystem.Unknown()
	}

	byName := len(ce.Args) > 0
	for _, a := range ce.Args {
		n := argName(a)
		if n == nil || fieldIndex(vd.Variant, n.Value) < 0 {
			byName = false
			break
		}
	}

	errorsBefore := len(w.Errors)
	ordered := ce.Args
	if byName {
		ordered = w.orderNamedArgs(ce, vd.Variant)
	} else {
		for _, a := range ce.Args {
			if a.Name != nil && fieldIndex(vd.Variant, a.Name.Value) < 0 {
				w.errorf(diagnostics.ErrA005, a.Name,
					fmt.Sprintf("field `%s` not found in variant `%s`", a.Name.Value, vd.Variant.Name.Value))
			}
		}
	}
	if len(w.Errors) > errorsBefore {
		return typesystem.Unknown()
	}
	if len(ordered) != len(sig.Params) {
		w.errorf(diagnostics.ErrA004, ce, len(sig.Params), len(ordered))
		return typesystem.Unknown()
	}

	args := make([]ast.Expression, len(ordered))
	types := make([]typesystem.Type, len(ordered))
	for i, a := range ordered {
		args[i] = a.Value
		types[i] = argTypes[a]
	}
	ret, _ := w.checkCallArgs(ce, sig, nil, args, types)
	return ret
}

// argName is the field an argument addresses: its explicit name, or the
// identifier itself when the value is a single-name identifier.
func argName(a *ast.Arg) *ast.Name {
	if a.Name != nil {
		return a.Name
	}
	if id, ok := a.Value.(*ast.Identifier); ok && len(id.Names) == 1 && len(id.TypeArgs) == 0 {
		return id.Names[0]
	}
	return nil
}

// orderNamedArgs arranges name-addressed arguments in field order.
func (w *walker) orderNamedArgs(ce *ast.CallExpr, v *ast.Variant) []*ast.Arg {
	byField := make(map[string]*ast.Arg, len(ce.Args))
	for _, a := range ce.Args {
		n := argName(a)
		if _, dup := byField[n.Value]; dup {
			w.errorf(diagnostics.ErrA005, n, fmt.Sprintf("duplicate named argument `%s`", n.Value))
			continue
		}
		byField[n.Value] = a
	}
	ordered := make([]*ast.Arg, 0, len(v.Fields))
	var missing []string
	for _, f := range v.Fields {
		a, ok := byField[f.Name.Value]
		if !ok {
			missing = append(missing, "`"+f.Name.Value+"`")
			continue
		}
		ordered = append(ordered, a)
	}
	if len(missing) > 0 {
		w.errorf(diagnostics.ErrA005, ce, "missing fields: "+strings.Join(missing, ", "))
	}
	return ordered
}

func (w *walker) VisitMethodCallExpr(mc *ast.MethodCallExpr) {
	recv := w.resolveSelf(w.checkExpr(mc.Receiver))
	argTypes := make([]typesystem.Type, len(mc.Args))
	for i, a := range mc.Args {
		argTypes[i] = w.checkExpr(a)
	}
	if typesystem.IsUnknown(recv) || typesystem.IsHole(recv) {
		w.setType(mc, typesystem.Unknown())
		return
	}

	name := mc.Method.Value
	candidates := w.methodCandidates(recv, name)
	switch {
	case len(candidates) == 0:
		w.errorf(diagnostics.ErrA001, mc.Method, fmt.Sprintf("method `%s` of `%s`", name, recv))
		w.setType(mc, typesystem.Unknown())
		return
	case len(candidates) > 1:
		owners := make([]string, len(candidates))
		for i, c := range candidates {
			owners[i] = c.Rel.ImplVid.String()
		}
		w.errorf(diagnostics.ErrA015, mc.Method, name, strings.Join(owners, ", "))
		w.setType(mc, typesystem.Unknown())
		return
	}

	md := candidates[0]
	rel := md.Rel
	w.checkTopLevelDefinition(rel.Module, md)
	ref := &Ref{Vid: rel.ImplVid.Append(name), Module: rel.Module, Def: md}
	w.Info.Refs[mc] = ref
	w.checkAccess(mc.Method, ref)

	sig, ok := w.Info.Signatures[md.Fn]
	if !ok {
		w.setType(mc, typesystem.Unknown())
		return
	}
	if len(sig.Params) != len(mc.Args)+1 {
		w.errorf(diagnostics.ErrA004, mc, len(sig.Params)-1, len(mc.Args))
		w.setType(mc, typesystem.Unknown())
		return
	}

	pre := []typesystem.GenericMap{
		{config.SelfTypeName: recv},
		typesystem.MapOverStructure(recv, rel.ForType, w).Without(config.SelfTypeName),
	}
	if len(mc.TypeArgs) > 0 {
		if len(mc.TypeArgs) != len(sig.Generics) {
			w.errorf(diagnostics.ErrA014, mc.Method,
				fmt.Sprintf("expected %d type arguments, got %d", len(sig.Generics), len(mc.TypeArgs)))
		}
		typeArgs := make([]typesystem.Type, len(mc.TypeArgs))
		for i, a := range mc.TypeArgs {
			typeArgs[i] = w.typeToVirtual(a)
		}
		w.recordCallGenerics(mc, sig.Generics, typeArgs)
		pre = append(pre, typesystem.FnTypeArgMap(sig, typeArgs))
	}

	args := append([]ast.Expression{mc.Receiver}, mc.Args...)
	types := append([]typesystem.Type{recv}, argTypes...)
	ret, _ := w.checkCallArgs(mc, sig, pre, args, types)

	if impl := w.methodImpl(recv, rel); impl != nil {
		w.Info.Impls[mc] = impl
		w.Module().AddRelImport(impl)
	}
	w.setType(mc, ret)
}

// methodImpl returns the relation that provides the method table for a call
// on recv of a method declared by rel.
func (w *walker) methodImpl(recv typesystem.Type, rel *symbols.InstanceRelation) *symbols.InstanceRelation {
	if _, concrete := recv.(*typesystem.VidType); !concrete {
		return nil
	}
	if !rel.IsTraitDef() {
		return rel
	}
	return w.resolveTypeImpl(recv, rel.ImplVid)
}

// methodCandidates lists the receiver methods called name that a value of
// type t can use, one per declaring trait or impl. An override in an impl
// hides the trait default it replaces.
func (w *walker) methodCandidates(t typesystem.Type, name string) []*symbols.MethodDef {
	var out []*symbols.MethodDef
	seen := map[string]bool{}
	add := func(md *symbols.MethodDef) {
		if md == nil || !hasReceiver(md.Fn) {
			return
		}
		key := md.Rel.ImplVid.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, md)
	}

	switch tt := t.(type) {
	case *typesystem.VidType:
		rels := w.findTypeTraits(tt)
		for _, rel := range rels {
			if fn := rel.Method(name); fn != nil {
				add(&symbols.MethodDef{Fn: fn, Rel: rel})
			}
		}
		for _, rel := range rels {
			// an impl overriding an inherited method hides the supertrait's
			if !rel.ImplementsTrait() || rel.Method(name) != nil {
				continue
			}
			for _, tv := range w.superTraits(rel.ImplVid) {
				if seen[tv.String()] {
					continue
				}
				if tr := w.traitRel(tv); tr != nil {
					if fn := tr.Method(name); fn != nil {
						add(&symbols.MethodDef{Fn: fn, Rel: tr})
					}
				}
			}
		}
		if w.isTrait(tt.Vid) {
			add(w.traitMethod(w.traitRel(tt.Vid), name))
		}
	case *typesystem.Generic:
		for _, b := range tt.Bounds {
			if bv, ok := traitVidOf(b); ok {
				add(w.traitMethod(w.traitRel(bv), name))
			}
		}
	case *typesystem.SelfType:
		if is := w.instanceScope(); is != nil && is.Rel != nil {
			if is.Rel.IsTraitDef() {
				add(w.traitMethod(is.Rel, name))
			}
		}
	}
	return out
}

func hasReceiver(fn *ast.FnDef) bool {
	return len(fn.Params) > 0 && isSelfParam(fn.Params[0])
}

// methodVid names a method for diagnostics: Owner::method
func methodVid(rel *symbols.InstanceRelation, fn *ast.FnDef) vid.Vid {
	return rel.ImplVid.Append(fn.Name.Value)
}
