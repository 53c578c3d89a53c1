package method

import (
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/value"
)

// BindKwargs resolves the keyword-argument map for a call against m's
// declared kwarg names/defaults (spec.md §4.2: "keyword arguments do not
// participate in dispatch, only positional parameters do" — kwargs are
// bound after Dispatch has already picked m from positional types alone).
// Names not declared by m fall into m.KwSplat if present, else raise
// ArgumentError; a declared name missing from given falls back to
// m.KwDefault, or raises ArgumentError if it has no default.
func BindKwargs(m *Method, given map[string]value.Value) (map[string]value.Value, error) {
	bound := make(map[string]value.Value, len(m.KwNames))
	var extra map[string]value.Value
	declared := map[string]bool{}
	for _, n := range m.KwNames {
		declared[n] = true
	}
	for name, v := range given {
		if declared[name] {
			bound[name] = v
			continue
		}
		if m.KwSplat == "" {
			return nil, jlerror.NewArgumentError("unrecognized keyword argument: " + name)
		}
		if extra == nil {
			extra = map[string]value.Value{}
		}
		extra[name] = v
	}
	for _, name := range m.KwNames {
		if _, ok := bound[name]; ok {
			continue
		}
		def, ok := m.KwDefault[name]
		if !ok {
			return nil, jlerror.NewArgumentError("missing required keyword argument: " + name)
		}
		bound[name] = def
	}
	if m.KwSplat != "" && extra != nil {
		names := make([]string, 0, len(extra))
		for n := range extra {
			names = append(names, n)
		}
		elems := make([]value.Value, len(names))
		for i, n := range names {
			elems[i] = extra[n]
		}
		bound[m.KwSplat] = value.Obj(value.NewNamedTuple(names, elems))
	}
	return bound, nil
}
