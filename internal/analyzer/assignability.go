package analyzer

import (
	"github.com/funvibe/noisec/internal/typesystem"
)

// isAssignable reports whether a value of type src may be used where dst is
// expected. Holes and unknown types are assignable both ways so that one
// error does not cascade. Function types are matched exactly, without
// variance.
func (w *walker) isAssignable(src, dst typesystem.Type) bool {
	if typesystem.IsUnknown(src) || typesystem.IsUnknown(dst) {
		return true
	}
	if typesystem.IsHole(src) || typesystem.IsHole(dst) {
		return true
	}
	if isNever(src) {
		return true
	}
	src = w.resolveSelf(src)
	dst = w.resolveSelf(dst)
	if typesystem.Equal(src, dst) {
		return true
	}

	switch d := dst.(type) {
	case *typesystem.SelfType:
		return false
	case *typesystem.Generic:
		if s, ok := src.(*typesystem.Generic); ok && s.Name == d.Name {
			return true
		}
		for _, b := range d.Bounds {
			if !w.isAssignable(src, b) {
				return false
			}
		}
		return true
	case *typesystem.FnType:
		switch s := src.(type) {
		case *typesystem.MalleableType:
			return len(s.Closure.Params) == len(d.Params)
		case *typesystem.FnType:
			if len(s.Params) != len(d.Params) {
				return false
			}
			for i := range s.Params {
				if !w.isAssignable(s.Params[i], d.Params[i]) || !w.isAssignable(d.Params[i], s.Params[i]) {
					return false
				}
			}
			if !w.isAssignable(s.Return, d.Return) {
				return false
			}
			return isNever(s.Return) || w.isAssignable(d.Return, s.Return)
		}
		return false
	case *typesystem.MalleableType:
		s, ok := src.(*typesystem.MalleableType)
		return ok && s.Closure == d.Closure
	case *typesystem.VidType:
		if s, ok := src.(*typesystem.VidType); ok && s.Vid.Equal(d.Vid) {
			return w.argsAssignable(s.TypeArgs, d.TypeArgs)
		}
		switch src.(type) {
		case *typesystem.VidType, *typesystem.Generic, *typesystem.SelfType:
		default:
			return false
		}
		if !w.isTrait(d.Vid) {
			return false
		}
		sup, ok := w.ConcreteSupertype(src, d.Vid).(*typesystem.VidType)
		if !ok {
			return false
		}
		return w.argsAssignable(sup.TypeArgs, d.TypeArgs)
	}
	return false
}

func (w *walker) argsAssignable(src, dst []typesystem.Type) bool {
	for i := 0; i < len(src) && i < len(dst); i++ {
		if !w.isAssignable(src[i], dst[i]) {
			return false
		}
	}
	return true
}

// combine returns the widest type both a and b can be used as: the type of
// an if or match whose branches produced a and b. The second result is false
// when the two types do not combine.
func (w *walker) combine(a, b typesystem.Type) (typesystem.Type, bool) {
	switch {
	case isNever(a):
		return b, true
	case isNever(b):
		return a, true
	case typesystem.IsHole(a):
		return b, true
	case typesystem.IsHole(b):
		return a, true
	case typesystem.IsUnknown(a) || typesystem.IsUnknown(b):
		return typesystem.Unknown(), true
	}

	if m, ok := a.(*typesystem.MalleableType); ok {
		if fn, ok := b.(*typesystem.FnType); ok {
			return w.retypeMalleable(m.Closure, fn), true
		}
	}
	if m, ok := b.(*typesystem.MalleableType); ok {
		if fn, ok := a.(*typesystem.FnType); ok {
			return w.retypeMalleable(m.Closure, fn), true
		}
	}

	switch at := a.(type) {
	case *typesystem.VidType:
		if bt, ok := b.(*typesystem.VidType); ok && at.Vid.Equal(bt.Vid) && len(at.TypeArgs) == len(bt.TypeArgs) {
			args := make([]typesystem.Type, len(at.TypeArgs))
			for i := range at.TypeArgs {
				c, ok := w.combine(at.TypeArgs[i], bt.TypeArgs[i])
				if !ok {
					return nil, false
				}
				args[i] = c
			}
			return &typesystem.VidType{Vid: at.Vid, TypeArgs: args}, true
		}
	case *typesystem.FnType:
		if bt, ok := b.(*typesystem.FnType); ok && len(at.Params) == len(bt.Params) {
			fn := &typesystem.FnType{Params: make([]typesystem.Type, len(at.Params))}
			for i := range at.Params {
				c, ok := w.combine(at.Params[i], bt.Params[i])
				if !ok {
					return nil, false
				}
				fn.Params[i] = c
			}
			ret, ok := w.combine(at.Return, bt.Return)
			if !ok {
				return nil, false
			}
			fn.Return = ret
			return fn, true
		}
	}

	if w.isAssignable(a, b) {
		return b, true
	}
	if w.isAssignable(b, a) {
		return a, true
	}
	return nil, false
}
