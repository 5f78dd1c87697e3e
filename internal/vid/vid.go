// Package vid implements virtual identifiers: canonical, order-sensitive
// paths used as the key of every name lookup.
package vid

import (
	"path/filepath"
	"strings"
)

// Separator joins Vid components in the string form.
const Separator = "::"

// Vid is an immutable, ordered list of name components, e.g. std::option::Option.
// The zero Vid has no components and is used as "absent".
type Vid struct {
	names []string
}

// New builds a Vid from its components.
func New(names ...string) Vid {
	cp := make([]string, len(names))
	copy(cp, names)
	return Vid{names: cp}
}

// FromString parses the `a::b::c` form.
func FromString(s string) Vid {
	if s == "" {
		return Vid{}
	}
	return Vid{names: strings.Split(s, Separator)}
}

// FromPath derives a module Vid from a path relative to the package root.
// The extension is dropped and a trailing `index` component collapses into
// its directory: pkgName + "a/b/index.no" -> pkgName::a::b
func FromPath(path, pkgName string) Vid {
	path = filepath.ToSlash(path)
	if ext := filepath.Ext(path); ext != "" {
		path = strings.TrimSuffix(path, ext)
	}
	// multi-part extensions such as `.ast.yaml`
	if i := strings.Index(filepath.Base(path), "."); i >= 0 {
		path = path[:len(path)-len(filepath.Base(path))+i]
	}
	var names []string
	if pkgName != "" {
		names = append(names, pkgName)
	}
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			names = append(names, part)
		}
	}
	if len(names) > 1 && strings.EqualFold(names[len(names)-1], "index") {
		names = names[:len(names)-1]
	}
	return Vid{names: names}
}

func (v Vid) String() string { return strings.Join(v.names, Separator) }

// Names returns a copy of the components.
func (v Vid) Names() []string {
	cp := make([]string, len(v.names))
	copy(cp, v.names)
	return cp
}

func (v Vid) Len() int         { return len(v.names) }
func (v Vid) IsZero() bool     { return len(v.names) == 0 }
func (v Vid) At(i int) string { return v.names[i] }

func (v Vid) First() string {
	if len(v.names) == 0 {
		return ""
	}
	return v.names[0]
}

func (v Vid) Last() string {
	if len(v.names) == 0 {
		return ""
	}
	return v.names[len(v.names)-1]
}

// Scope drops the last component.
func (v Vid) Scope() Vid { return v.Drop(1) }

// Drop removes the last n components.
func (v Vid) Drop(n int) Vid {
	if n >= len(v.names) {
		return Vid{}
	}
	return New(v.names[:len(v.names)-n]...)
}

// Tail removes the first n components.
func (v Vid) Tail(n int) Vid {
	if n >= len(v.names) {
		return Vid{}
	}
	return New(v.names[n:]...)
}

// Append returns a new Vid with names added at the end.
func (v Vid) Append(names ...string) Vid {
	out := make([]string, 0, len(v.names)+len(names))
	out = append(out, v.names...)
	out = append(out, names...)
	return Vid{names: out}
}

// Concat appends all components of o.
func (v Vid) Concat(o Vid) Vid { return v.Append(o.names...) }

func (v Vid) Equal(o Vid) bool {
	if len(v.names) != len(o.names) {
		return false
	}
	for i := range v.names {
		if v.names[i] != o.names[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p is a leading part of v.
func (v Vid) HasPrefix(p Vid) bool {
	if len(p.names) > len(v.names) {
		return false
	}
	for i := range p.names {
		if v.names[i] != p.names[i] {
			return false
		}
	}
	return true
}
